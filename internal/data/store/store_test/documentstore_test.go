package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/akolanti/DocChatAPI/internal/config"
	"github.com/akolanti/DocChatAPI/internal/data/redisStore"
	"github.com/akolanti/DocChatAPI/internal/data/store"
	"github.com/akolanti/DocChatAPI/internal/domain/docModel"
)

func TestRedisDocumentStore_Lifecycle(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	docStore := store.TestDocumentStore(redisStore.NewTestStore(client))

	ctx := context.WithValue(context.Background(), config.TRACE_ID_KEY, "doc-trace")
	docID := "doc_abc_123"

	testDoc := docModel.Document{
		DocId:        docID,
		FilePath:     "uploads/doc_abc_123.pdf",
		State:        docModel.StateQueued,
		UploadedTime: time.Now(),
	}

	t.Run("Save and Get Roundtrip", func(t *testing.T) {
		if err := docStore.SaveDocument(ctx, testDoc); err != nil {
			t.Fatalf("SaveDocument failed: %v", err)
		}

		retrieved, found := docStore.GetDocument(ctx, docID)
		if !found {
			t.Fatal("Document was saved but not found in Redis")
		}
		if retrieved.FilePath != testDoc.FilePath || retrieved.State != docModel.StateQueued {
			t.Errorf("Data mismatch! Got %+v, want %+v", retrieved, testDoc)
		}
	})

	t.Run("Get Non-Existent Document", func(t *testing.T) {
		_, found := docStore.GetDocument(ctx, "ghost-id")
		if found {
			t.Error("Expected found=false for non-existent key")
		}
	})

	t.Run("State Transitions", func(t *testing.T) {
		transitions := []docModel.ProcessingState{
			docModel.StateProcessing,
			docModel.StateProcessed,
		}

		for _, state := range transitions {
			if err := docStore.SetState(ctx, docID, state); err != nil {
				t.Fatalf("SetState(%s) failed: %v", state, err)
			}
			doc, found := docStore.GetDocument(ctx, docID)
			if !found || doc.State != state {
				t.Errorf("State got %v, want %v", doc.State, state)
			}
			if doc.FilePath != testDoc.FilePath {
				t.Errorf("SetState dropped other fields, FilePath got %q", doc.FilePath)
			}
		}
	})

	t.Run("SetState For Unknown Document", func(t *testing.T) {
		// A crash between publish and save can leave the worker seeing a job
		// with no stored document; the state write must still land
		if err := docStore.SetState(ctx, "orphan-doc", docModel.StateFailed); err != nil {
			t.Fatalf("SetState failed: %v", err)
		}
		doc, found := docStore.GetDocument(ctx, "orphan-doc")
		if !found || doc.State != docModel.StateFailed {
			t.Errorf("orphan document state got %v, want %v", doc.State, docModel.StateFailed)
		}
	})
}
