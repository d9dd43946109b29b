package rag

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/akolanti/DocChatAPI/internal/adapter/utils"
	"github.com/akolanti/DocChatAPI/internal/config"
	"github.com/akolanti/DocChatAPI/internal/domain/docModel"
	"github.com/akolanti/DocChatAPI/internal/rag/embedding"
	"github.com/akolanti/DocChatAPI/internal/rag/llm"
	"github.com/akolanti/DocChatAPI/internal/rag/vectorDB"
	"github.com/akolanti/DocChatAPI/pkg/logger_i"
)

// ErrCollectionNotReady means the document's collection does not exist yet.
// Distinct from generic failure: the caller should retry after ingestion
// finishes, not treat the request as broken.
var ErrCollectionNotReady = errors.New("document collection not found, processing may still be ongoing")

type ChatResult struct {
	Answer         string
	DocId          string
	ConversationId string
}

// Service is the retrieval-augmented query engine. Handlers only see this
// contract - they never touch the vector store, embedder or LLM directly.
type Service interface {
	Chat(ctx context.Context, docId string, query string, conversationId string) (ChatResult, error)
}

type service struct {
	vectorDB      vectorDB.Gateway
	llmProvider   llm.Provider
	embedder      embedding.Embedder
	conversations docModel.ConversationStore
	logger        *logger_i.Logger
}

// NewService constructor
func NewService(vector vectorDB.Gateway, llm llm.Provider, em embedding.Embedder, conversations docModel.ConversationStore) Service {
	return &service{
		vectorDB:      vector,
		llmProvider:   llm,
		embedder:      em,
		conversations: conversations,
		logger:        logger_i.NewLogger("Chat Service :"),
	}
}

func (s *service) Chat(ctx context.Context, docId string, query string, conversationId string) (ChatResult, error) {
	inMethodLogger := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "docId", docId)

	processContext, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if conversationId == "" {
		conversationId = utils.GetNewUUID()
		inMethodLogger.Debug("Minted new conversation", "conversationId", conversationId)
	}

	// Readiness check - the doc may still be mid-pipeline
	exists, err := s.vectorDB.CollectionExists(processContext, docId)
	if err != nil {
		inMethodLogger.Error("COLLECTION_CHECK_FAILURE", "error", err)
		return ChatResult{}, fmt.Errorf("checking collection: %w", err)
	}
	if !exists {
		inMethodLogger.Debug("Collection not found, document not ready")
		return ChatResult{}, ErrCollectionNotReady
	}

	queryVector, err := s.executeEmbeddingStep(processContext, inMethodLogger, query)
	if err != nil {
		inMethodLogger.Error("EMBEDDING_FAILURE", "error", err)
		return ChatResult{}, fmt.Errorf("embedding query: %w", err)
	}

	matches, err := s.executeVectorSearchStep(processContext, inMethodLogger, docId, queryVector)
	if err != nil {
		inMethodLogger.Error("VECTOR_DB_FAILURE", "error", err)
		return ChatResult{}, fmt.Errorf("searching collection: %w", err)
	}

	history := s.executeHistoryStep(processContext, inMethodLogger, conversationId)

	answer, err := s.executeLLMStep(processContext, inMethodLogger, query, matches, history)
	if err != nil {
		inMethodLogger.Error("LLM_GENERATION_FAILURE", "error", err)
		return ChatResult{}, fmt.Errorf("generating answer: %w", err)
	}

	// Only a successful exchange becomes history
	turn := docModel.ConversationTurn{Query: query, Response: answer}
	if err := s.conversations.AppendTurn(ctx, conversationId, turn); err != nil {
		inMethodLogger.Error("Failed to save conversation turn", "error", err)
	}

	return ChatResult{
		Answer:         answer,
		DocId:          docId,
		ConversationId: conversationId,
	}, nil
}
