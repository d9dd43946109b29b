package rag_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/akolanti/DocChatAPI/internal/config"
	"github.com/akolanti/DocChatAPI/internal/domain/docModel"
	"github.com/akolanti/DocChatAPI/internal/rag"
	"github.com/akolanti/DocChatAPI/internal/rag/vectorDB"
)

func TestChat_Scenarios(t *testing.T) {
	tests := []struct {
		name           string
		setupMocks     func(e *MockEmbedder, v *MockVectorDB, l *MockLLM, c *MockConversationStore)
		expectedAnswer string
		expectedErr    error
		wantErr        bool
		wantTurnSaved  bool
	}{
		{
			name: "Success_Full_Flow",
			setupMocks: func(e *MockEmbedder, v *MockVectorDB, l *MockLLM, c *MockConversationStore) {
				l.OnGenerate = func(ctx context.Context, q string, m []string, h []string) (string, error) {
					return "final answer", nil
				}
			},
			expectedAnswer: "final answer",
			wantTurnSaved:  true,
		},
		{
			name: "Document_Not_Ready",
			setupMocks: func(e *MockEmbedder, v *MockVectorDB, l *MockLLM, c *MockConversationStore) {
				v.OnCollectionExists = func(ctx context.Context, name string) (bool, error) {
					return false, nil
				}
			},
			expectedErr: rag.ErrCollectionNotReady,
			wantErr:     true,
		},
		{
			name: "Failure_Embedding",
			setupMocks: func(e *MockEmbedder, v *MockVectorDB, l *MockLLM, c *MockConversationStore) {
				e.OnEmbed = func(ctx context.Context, text string) ([]float32, error) {
					return nil, errors.New("api limit")
				}
			},
			wantErr: true,
		},
		{
			name: "Failure_Vector_Search",
			setupMocks: func(e *MockEmbedder, v *MockVectorDB, l *MockLLM, c *MockConversationStore) {
				v.OnQuery = func(ctx context.Context, collection string, vector []float32, limit uint64) ([]vectorDB.ScoredPoint, error) {
					return nil, errors.New("db timeout")
				}
			},
			wantErr: true,
		},
		{
			name: "Failure_LLM_Generation",
			setupMocks: func(e *MockEmbedder, v *MockVectorDB, l *MockLLM, c *MockConversationStore) {
				l.OnGenerate = func(ctx context.Context, q string, m []string, h []string) (string, error) {
					return "", errors.New("provider down")
				}
			},
			wantErr: true,
		},
		{
			name: "History_Lookup_Failure_Degrades_Gracefully",
			setupMocks: func(e *MockEmbedder, v *MockVectorDB, l *MockLLM, c *MockConversationStore) {
				c.OnRecentTurns = func(ctx context.Context, id string, limit int) ([]docModel.ConversationTurn, error) {
					return nil, errors.New("redis down")
				}
				l.OnGenerate = func(ctx context.Context, q string, m []string, h []string) (string, error) {
					if len(h) != 0 {
						return "", errors.New("expected empty history")
					}
					return "answer without history", nil
				}
			},
			expectedAnswer: "answer without history",
			wantTurnSaved:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mEmbed := &MockEmbedder{}
			mVec := &MockVectorDB{}
			mLLM := &MockLLM{}
			mConv := &MockConversationStore{}

			tt.setupMocks(mEmbed, mVec, mLLM, mConv)

			s := rag.NewService(mVec, mLLM, mEmbed, mConv)

			ctx := context.WithValue(context.Background(), config.TRACE_ID_KEY, "test-trace")
			result, err := s.Chat(ctx, "doc-1", "test question", "conv-1")

			if tt.wantErr {
				if err == nil {
					t.Fatal("expected an error, got none")
				}
				if tt.expectedErr != nil && !errors.Is(err, tt.expectedErr) {
					t.Errorf("error got %v, want %v", err, tt.expectedErr)
				}
			} else if err != nil {
				t.Fatalf("Chat failed: %v", err)
			}

			if tt.expectedAnswer != "" && result.Answer != tt.expectedAnswer {
				t.Errorf("Answer got %s, want %s", result.Answer, tt.expectedAnswer)
			}

			// Only successful exchanges become history
			if tt.wantTurnSaved && len(mConv.Appended) != 1 {
				t.Errorf("expected 1 saved turn, got %d", len(mConv.Appended))
			}
			if !tt.wantTurnSaved && len(mConv.Appended) != 0 {
				t.Errorf("failed exchange must not be saved, got %d turns", len(mConv.Appended))
			}
		})
	}
}

func TestChat_RetrievalAndHistoryWiring(t *testing.T) {
	mEmbed := &MockEmbedder{}
	mVec := &MockVectorDB{}
	mLLM := &MockLLM{}
	mConv := &MockConversationStore{}

	var gotLimit uint64
	var gotCollection string
	mVec.OnQuery = func(ctx context.Context, collection string, vector []float32, limit uint64) ([]vectorDB.ScoredPoint, error) {
		gotCollection = collection
		gotLimit = limit
		return []vectorDB.ScoredPoint{
			{Payload: vectorDB.PointPayload{Content: "first match"}, Score: 0.95},
			{Payload: vectorDB.PointPayload{Content: "second match"}, Score: 0.80},
		}, nil
	}

	var gotHistoryLimit int
	mConv.OnRecentTurns = func(ctx context.Context, id string, limit int) ([]docModel.ConversationTurn, error) {
		gotHistoryLimit = limit
		return []docModel.ConversationTurn{
			{Query: "earlier question", Response: "earlier answer"},
		}, nil
	}

	var gotMatches, gotHistory []string
	mLLM.OnGenerate = func(ctx context.Context, q string, matches []string, history []string) (string, error) {
		gotMatches = matches
		gotHistory = history
		return "wired answer", nil
	}

	s := rag.NewService(mVec, mLLM, mEmbed, mConv)
	ctx := context.WithValue(context.Background(), config.TRACE_ID_KEY, "wiring-trace")

	result, err := s.Chat(ctx, "doc-wired", "what now?", "conv-wired")
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}

	if gotCollection != "doc-wired" {
		t.Errorf("queried collection %q, want the doc id", gotCollection)
	}
	if gotLimit != config.RetrievalTopK {
		t.Errorf("retrieval limit got %d, want %d", gotLimit, config.RetrievalTopK)
	}
	if gotHistoryLimit != config.HistoryTurnWindow {
		t.Errorf("history limit got %d, want %d", gotHistoryLimit, config.HistoryTurnWindow)
	}

	if len(gotMatches) != 2 || gotMatches[0] != "first match" {
		t.Errorf("matches passed to the LLM: %v", gotMatches)
	}
	if len(gotHistory) != 1 || !strings.Contains(gotHistory[0], "Human: earlier question") {
		t.Errorf("history passed to the LLM: %v", gotHistory)
	}

	if result.ConversationId != "conv-wired" {
		t.Errorf("conversation id got %q, want the caller's", result.ConversationId)
	}
}

func TestChat_MintsConversationId(t *testing.T) {
	s := rag.NewService(&MockVectorDB{}, &MockLLM{}, &MockEmbedder{}, &MockConversationStore{})
	ctx := context.Background()

	result, err := s.Chat(ctx, "doc-1", "hello", "")
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}
	if result.ConversationId == "" {
		t.Error("expected a minted conversation id for an empty request id")
	}
}

func TestFormatHistory(t *testing.T) {
	turns := []docModel.ConversationTurn{
		{Query: "first q", Response: "first a"},
		{Query: "second q", Response: "second a"},
	}

	lines := rag.FormatHistory(turns)
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	if lines[0] != "Human: first q\nAssistant: first a" {
		t.Errorf("line 0 got %q", lines[0])
	}
	if lines[1] != "Human: second q\nAssistant: second a" {
		t.Errorf("line 1 got %q", lines[1])
	}
}
