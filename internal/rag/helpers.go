package rag

import (
	"context"
	"fmt"
	"time"

	"github.com/akolanti/DocChatAPI/internal/config"
	"github.com/akolanti/DocChatAPI/internal/domain/docModel"
	"github.com/akolanti/DocChatAPI/internal/metrics"
	"github.com/akolanti/DocChatAPI/pkg/logger_i"
)

func (s *service) executeEmbeddingStep(ctx context.Context, log *logger_i.Logger, query string) ([]float32, error) {
	log.Debug("Chat", "Current Step", "EmbeddingAPI")

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("embedding", time.Since(start)) }()

	return s.embedder.Embed(ctx, query)
}

func (s *service) executeVectorSearchStep(ctx context.Context, log *logger_i.Logger, docId string, queryVector []float32) ([]string, error) {
	log.Debug("Chat", "Current Step", "VectorDB")

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("vector_search", time.Since(start)) }()

	hits, err := s.vectorDB.Query(ctx, docId, queryVector, config.RetrievalTopK)
	if err != nil {
		return nil, err
	}

	matches := make([]string, 0, len(hits))
	for _, hit := range hits {
		matches = append(matches, hit.Payload.Content)
	}
	return matches, nil
}

func (s *service) executeHistoryStep(ctx context.Context, log *logger_i.Logger, conversationId string) []string {
	log.Debug("Chat", "Current Step", "History")

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("history_lookup", time.Since(start)) }()

	turns, err := s.conversations.RecentTurns(ctx, conversationId, config.HistoryTurnWindow)
	if err != nil {
		// History is additive context; a miss degrades the answer, not the request
		log.Error("Failed to get conversation history", "error", err)
		return nil
	}
	return FormatHistory(turns)
}

func (s *service) executeLLMStep(ctx context.Context, log *logger_i.Logger, query string, matches []string, history []string) (string, error) {
	log.Debug("Chat", "Current Step", "LLM")

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("llm_generation", time.Since(start)) }()

	return s.llmProvider.Generate(ctx, query, matches, history)
}

// FormatHistory renders turns as alternating question/answer lines, oldest first.
func FormatHistory(turns []docModel.ConversationTurn) []string {
	lines := make([]string, 0, len(turns))
	for _, turn := range turns {
		lines = append(lines, fmt.Sprintf("Human: %s\nAssistant: %s", turn.Query, turn.Response))
	}
	return lines
}
