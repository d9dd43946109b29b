package queue

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/akolanti/DocChatAPI/internal/config"
	"github.com/akolanti/DocChatAPI/internal/data/redisStore"
	"github.com/akolanti/DocChatAPI/internal/domain/docModel"
)

func newTestQueue(t *testing.T) (*RedisQueue, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return TestQueue(redisStore.NewTestStore(client)), mr
}

func TestRedisQueue_PublishConsumeRoundtrip(t *testing.T) {
	q, mr := newTestQueue(t)
	ctx := context.WithValue(context.Background(), config.TRACE_ID_KEY, "queue-trace")

	job := docModel.Job{DocId: "doc-1", FilePath: "uploads/doc-1.pdf"}
	if err := q.Publish(ctx, job); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	delivery, err := q.Consume(ctx)
	if err != nil {
		t.Fatalf("Consume failed: %v", err)
	}

	got := delivery.Job()
	if got.DocId != job.DocId || got.FilePath != job.FilePath {
		t.Errorf("delivered job mismatch: got %+v, want %+v", got, job)
	}
	if got.Attempts != 0 {
		t.Errorf("fresh job should have 0 attempts, got %d", got.Attempts)
	}

	// Consumed but unacked jobs must sit on the in-flight list, not vanish
	inflight, err := mr.List(config.QueueProcessingList)
	if err != nil || len(inflight) != 1 {
		t.Errorf("expected 1 in-flight entry, got %v (err %v)", inflight, err)
	}
	if mr.Exists(config.QueueReadyList) {
		t.Error("ready list should be empty after consume")
	}
}

func TestRedisQueue_AckRemovesInFlight(t *testing.T) {
	q, mr := newTestQueue(t)
	ctx := context.Background()

	_ = q.Publish(ctx, docModel.Job{DocId: "doc-ack"})
	delivery, err := q.Consume(ctx)
	if err != nil {
		t.Fatalf("Consume failed: %v", err)
	}

	if err := delivery.Ack(ctx); err != nil {
		t.Fatalf("Ack failed: %v", err)
	}

	if mr.Exists(config.QueueProcessingList) {
		t.Error("in-flight entry survived the ack")
	}
	if mr.Exists(config.QueueReadyList) || mr.Exists(config.QueueDeadList) {
		t.Error("acked job leaked onto another list")
	}
}

func TestRedisQueue_NackRequeueIncrementsAttempts(t *testing.T) {
	q, mr := newTestQueue(t)
	ctx := context.Background()

	_ = q.Publish(ctx, docModel.Job{DocId: "doc-retry"})
	delivery, _ := q.Consume(ctx)

	if err := delivery.Nack(ctx, true); err != nil {
		t.Fatalf("Nack(requeue) failed: %v", err)
	}

	if mr.Exists(config.QueueProcessingList) {
		t.Error("in-flight entry survived the nack")
	}

	redelivered, err := q.Consume(ctx)
	if err != nil {
		t.Fatalf("Consume after requeue failed: %v", err)
	}
	if got := redelivered.Job().Attempts; got != 1 {
		t.Errorf("requeued job should carry 1 attempt, got %d", got)
	}
}

func TestRedisQueue_NackDeadLetters(t *testing.T) {
	q, mr := newTestQueue(t)
	ctx := context.Background()

	_ = q.Publish(ctx, docModel.Job{DocId: "doc-dead"})
	delivery, _ := q.Consume(ctx)

	if err := delivery.Nack(ctx, false); err != nil {
		t.Fatalf("Nack(dead-letter) failed: %v", err)
	}

	dead, err := mr.List(config.QueueDeadList)
	if err != nil || len(dead) != 1 {
		t.Fatalf("expected 1 dead-lettered entry, got %v (err %v)", dead, err)
	}
	if mr.Exists(config.QueueReadyList) || mr.Exists(config.QueueProcessingList) {
		t.Error("dead-lettered job is still on a live list")
	}
}

func TestRedisQueue_NackWritesDestinationBeforeRemoval(t *testing.T) {
	q, mr := newTestQueue(t)
	ctx := context.Background()

	_ = q.Publish(ctx, docModel.Job{DocId: "doc-interrupted"})
	delivery, err := q.Consume(ctx)
	if err != nil {
		t.Fatalf("Consume failed: %v", err)
	}

	// Break the in-flight removal: the job must already sit on the ready
	// list when it fails, so an interrupted nack duplicates instead of losing
	mr.Del(config.QueueProcessingList)
	if err := mr.Set(config.QueueProcessingList, "wrong type"); err != nil {
		t.Fatalf("seeding wrong-type key: %v", err)
	}

	if err := delivery.Nack(ctx, true); err == nil {
		t.Fatal("expected an error from the broken removal")
	}

	ready, listErr := mr.List(config.QueueReadyList)
	if listErr != nil || len(ready) != 1 {
		t.Fatalf("requeued job must be on the ready list despite the failure, got %v (err %v)", ready, listErr)
	}

	mr.Del(config.QueueProcessingList)
	redelivered, err := q.Consume(ctx)
	if err != nil {
		t.Fatalf("Consume after requeue failed: %v", err)
	}
	if got := redelivered.Job().Attempts; got != 1 {
		t.Errorf("requeued job should carry 1 attempt, got %d", got)
	}
}

func TestRedisQueue_PoisonPayloadDeadLetters(t *testing.T) {
	q, mr := newTestQueue(t)
	ctx := context.Background()

	mr.Lpush(config.QueueReadyList, "not json at all")

	_, err := q.Consume(ctx)
	if err != ErrNoJob {
		t.Fatalf("poison payload should surface as ErrNoJob, got %v", err)
	}

	dead, listErr := mr.List(config.QueueDeadList)
	if listErr != nil || len(dead) != 1 || dead[0] != "not json at all" {
		t.Errorf("poison payload should land on the dead list, got %v (err %v)", dead, listErr)
	}
	if mr.Exists(config.QueueProcessingList) {
		t.Error("poison payload stuck on the in-flight list")
	}
}

func TestRedisQueue_ReapInFlight(t *testing.T) {
	q, mr := newTestQueue(t)
	ctx := context.Background()

	// Simulate a worker that consumed two jobs and crashed
	_ = q.Publish(ctx, docModel.Job{DocId: "doc-a"})
	_ = q.Publish(ctx, docModel.Job{DocId: "doc-b"})
	if _, err := q.Consume(ctx); err != nil {
		t.Fatalf("Consume failed: %v", err)
	}
	if _, err := q.Consume(ctx); err != nil {
		t.Fatalf("Consume failed: %v", err)
	}

	reaped, err := q.ReapInFlight(ctx)
	if err != nil {
		t.Fatalf("ReapInFlight failed: %v", err)
	}
	if reaped != 2 {
		t.Errorf("expected 2 reclaimed jobs, got %d", reaped)
	}

	ready, listErr := mr.List(config.QueueReadyList)
	if listErr != nil || len(ready) != 2 {
		t.Errorf("expected 2 jobs back on the ready list, got %v (err %v)", ready, listErr)
	}
	if mr.Exists(config.QueueProcessingList) {
		t.Error("in-flight list should be empty after reaping")
	}
}
