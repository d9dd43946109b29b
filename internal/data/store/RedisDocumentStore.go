package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/akolanti/DocChatAPI/internal/config"
	"github.com/akolanti/DocChatAPI/internal/data/redisStore"
	"github.com/akolanti/DocChatAPI/internal/domain/docModel"
	"github.com/akolanti/DocChatAPI/pkg/logger_i"
)

type RedisDocumentStore struct {
	store  *redisStore.Store
	logger *logger_i.Logger
}

func GetRedisDocumentStore(ctx context.Context) *RedisDocumentStore {
	inner := redisStore.GetRedisStore(ctx, config.RedisDocumentStore)
	if inner == nil {
		return nil
	}
	return &RedisDocumentStore{
		store:  inner,
		logger: logger_i.NewLogger("DocumentStore"),
	}
}

func (s *RedisDocumentStore) SaveDocument(ctx context.Context, doc docModel.Document) error {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "doc Id", doc.DocId)
	log.Debug("saving document")
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	err = s.store.Set(ctx, doc.DocId, data, config.RedisDocumentStoreTTL)
	if err == nil {
		log.Debug("Saved document to Redis")
	}
	return err
}

func (s *RedisDocumentStore) GetDocument(ctx context.Context, docId string) (docModel.Document, bool) {
	var doc docModel.Document
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "doc Id", docId)
	val, err := s.store.Get(ctx, docId)
	if s.store.IsNil(err) {
		return doc, false
	} else if err != nil {
		log.Error("Error getting document", "error:", err)
		return doc, false
	}

	if err = json.Unmarshal([]byte(val), &doc); err != nil {
		log.Error("Error unmarshalling document", "error:", err)
		return doc, false
	}
	return doc, true
}

func (s *RedisDocumentStore) SetState(ctx context.Context, docId string, state docModel.ProcessingState) error {
	doc, found := s.GetDocument(ctx, docId)
	if !found {
		doc = docModel.Document{DocId: docId}
	}
	doc.State = state
	doc.UpdatedTime = time.Now()
	return s.SaveDocument(ctx, doc)
}

func TestDocumentStore(store *redisStore.Store) *RedisDocumentStore {
	return &RedisDocumentStore{
		store:  store,
		logger: logger_i.NewLogger("test document store"),
	}
}
