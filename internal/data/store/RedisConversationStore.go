package store

import (
	"context"
	"encoding/json"

	"github.com/akolanti/DocChatAPI/internal/config"
	"github.com/akolanti/DocChatAPI/internal/data/redisStore"
	"github.com/akolanti/DocChatAPI/internal/domain/docModel"
	"github.com/akolanti/DocChatAPI/pkg/logger_i"
)

// RedisConversationStore keeps one list of JSON turns per conversation id so
// history survives restarts and is visible to every api instance.
type RedisConversationStore struct {
	store  *redisStore.Store
	logger *logger_i.Logger
}

func GetRedisConversationStore(ctx context.Context) *RedisConversationStore {
	inner := redisStore.GetRedisStore(ctx, config.RedisConversationStore)
	if inner == nil {
		return nil
	}
	return &RedisConversationStore{
		store:  inner,
		logger: logger_i.NewLogger("ConversationStore"),
	}
}

func (s *RedisConversationStore) AppendTurn(ctx context.Context, conversationId string, turn docModel.ConversationTurn) error {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "conversation Id", conversationId)

	data, err := json.Marshal(turn)
	if err != nil {
		return err
	}

	if err := s.store.ListAppend(ctx, conversationId, data); err != nil {
		log.Error("error saving turn", "error:", err)
		return err
	}
	if err := s.store.Expire(ctx, conversationId, config.RedisConversationStoreTTL); err != nil {
		log.Error("error refreshing conversation ttl", "error:", err)
	}
	log.Debug("Saved turn")
	return nil
}

func (s *RedisConversationStore) RecentTurns(ctx context.Context, conversationId string, limit int) ([]docModel.ConversationTurn, error) {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "conversation Id", conversationId)
	log.Debug("Getting recent turns")

	raw, err := s.store.ListTail(ctx, conversationId, int64(limit))
	if err != nil {
		log.Error("Error getting turns", "error:", err)
		return nil, err
	}

	//LRange with a negative start already yields the tail in original order
	turns := make([]docModel.ConversationTurn, 0, len(raw))
	for _, entry := range raw {
		var turn docModel.ConversationTurn
		if err := json.Unmarshal([]byte(entry), &turn); err != nil {
			log.Error("Error unmarshalling turn", "error:", err)
			continue
		}
		turns = append(turns, turn)
	}
	return turns, nil
}

func TestConversationStore(store *redisStore.Store) *RedisConversationStore {
	return &RedisConversationStore{
		store:  store,
		logger: logger_i.NewLogger("test conversation store"),
	}
}
