package rag_test

import (
	"context"

	"github.com/akolanti/DocChatAPI/internal/domain/docModel"
	"github.com/akolanti/DocChatAPI/internal/rag/vectorDB"
)

// MockVectorDB implements vectorDB.Gateway
type MockVectorDB struct {
	// Control fields to simulate different behaviors
	OnCollectionExists func(ctx context.Context, name string) (bool, error)
	OnCreateCollection func(ctx context.Context, name string, dimension uint64) error
	OnUpsertPoint      func(ctx context.Context, collection string, point vectorDB.Point) error
	OnQuery            func(ctx context.Context, collection string, vector []float32, limit uint64) ([]vectorDB.ScoredPoint, error)
}

func (m *MockVectorDB) CollectionExists(ctx context.Context, name string) (bool, error) {
	if m.OnCollectionExists != nil {
		return m.OnCollectionExists(ctx, name)
	}
	return true, nil
}

func (m *MockVectorDB) CreateCollection(ctx context.Context, name string, dimension uint64) error {
	if m.OnCreateCollection != nil {
		return m.OnCreateCollection(ctx, name, dimension)
	}
	return nil
}

func (m *MockVectorDB) UpsertPoint(ctx context.Context, collection string, point vectorDB.Point) error {
	if m.OnUpsertPoint != nil {
		return m.OnUpsertPoint(ctx, collection, point)
	}
	return nil
}

func (m *MockVectorDB) Query(ctx context.Context, collection string, vector []float32, limit uint64) ([]vectorDB.ScoredPoint, error) {
	if m.OnQuery != nil {
		return m.OnQuery(ctx, collection, vector, limit)
	}
	return []vectorDB.ScoredPoint{
		{Payload: vectorDB.PointPayload{Content: "default context"}, Score: 0.9},
	}, nil
}

type MockEmbedder struct {
	OnEmbed func(ctx context.Context, text string) ([]float32, error)
}

func (m *MockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if m.OnEmbed != nil {
		return m.OnEmbed(ctx, text)
	}
	return []float32{0.1, 0.2}, nil
}

// MockLLM implements llm.Provider
type MockLLM struct {
	OnGenerate func(ctx context.Context, query string, matches []string, history []string) (string, error)
}

func (m *MockLLM) Generate(ctx context.Context, q string, matches []string, history []string) (string, error) {
	if m.OnGenerate != nil {
		return m.OnGenerate(ctx, q, matches, history)
	}
	return "mocked llm response", nil
}

// MockConversationStore implements docModel.ConversationStore
type MockConversationStore struct {
	OnAppendTurn  func(ctx context.Context, conversationId string, turn docModel.ConversationTurn) error
	OnRecentTurns func(ctx context.Context, conversationId string, limit int) ([]docModel.ConversationTurn, error)

	Appended []docModel.ConversationTurn
}

func (m *MockConversationStore) AppendTurn(ctx context.Context, conversationId string, turn docModel.ConversationTurn) error {
	m.Appended = append(m.Appended, turn)
	if m.OnAppendTurn != nil {
		return m.OnAppendTurn(ctx, conversationId, turn)
	}
	return nil
}

func (m *MockConversationStore) RecentTurns(ctx context.Context, conversationId string, limit int) ([]docModel.ConversationTurn, error) {
	if m.OnRecentTurns != nil {
		return m.OnRecentTurns(ctx, conversationId, limit)
	}
	return nil, nil
}
