package store

import (
	"context"
	"sync"

	"github.com/akolanti/DocChatAPI/internal/domain/docModel"
	"github.com/akolanti/DocChatAPI/pkg/logger_i"
)

var inMemLogger = logger_i.NewLogger("InMem ConversationStore")

// InMemoryConversationStore is the fallback when Redis is offline at startup.
// History is process-local and lost on restart.
type InMemoryConversationStore struct {
	chatLock *sync.RWMutex
	chatMap  map[string][]docModel.ConversationTurn
}

func InitInMemoryConversationStore() *InMemoryConversationStore {
	return &InMemoryConversationStore{
		chatLock: new(sync.RWMutex),
		chatMap:  make(map[string][]docModel.ConversationTurn),
	}
}

func (store *InMemoryConversationStore) AppendTurn(ctx context.Context, conversationId string, turn docModel.ConversationTurn) error {
	store.chatLock.Lock()
	defer store.chatLock.Unlock()
	store.chatMap[conversationId] = append(store.chatMap[conversationId], turn)
	inMemLogger.Debug(conversationId, " : Saved turn to conversation store")
	return nil
}

func (store *InMemoryConversationStore) RecentTurns(ctx context.Context, conversationId string, limit int) ([]docModel.ConversationTurn, error) {
	store.chatLock.RLock()
	defer store.chatLock.RUnlock()
	turns := store.chatMap[conversationId]
	if len(turns) > limit {
		turns = turns[len(turns)-limit:]
	}
	out := make([]docModel.ConversationTurn, len(turns))
	copy(out, turns)
	return out, nil
}
