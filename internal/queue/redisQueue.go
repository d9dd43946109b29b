package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/akolanti/DocChatAPI/internal/config"
	"github.com/akolanti/DocChatAPI/internal/data/redisStore"
	"github.com/akolanti/DocChatAPI/internal/domain/docModel"
	"github.com/akolanti/DocChatAPI/internal/metrics"
	"github.com/akolanti/DocChatAPI/pkg/logger_i"
)

// RedisQueue is a durable FIFO over a pair of Redis lists. Publish pushes the
// JSON job onto the ready list; Consume moves it atomically onto the in-flight
// list where it stays until acked or nacked, so a worker crash never loses it.
type RedisQueue struct {
	store          *redisStore.Store
	readyList      string
	processingList string
	deadList       string
	logger         *logger_i.Logger
}

func GetRedisQueue(ctx context.Context) *RedisQueue {
	inner := redisStore.GetRedisStore(ctx, config.RedisQueueStore)
	if inner == nil {
		return nil
	}
	return newQueue(inner)
}

func newQueue(inner *redisStore.Store) *RedisQueue {
	return &RedisQueue{
		store:          inner,
		readyList:      config.QueueReadyList,
		processingList: config.QueueProcessingList,
		deadList:       config.QueueDeadList,
		logger:         logger_i.NewLogger("JobQueue"),
	}
}

func (q *RedisQueue) Publish(ctx context.Context, job docModel.Job) error {
	log := q.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "doc Id", job.DocId)

	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshalling job: %w", err)
	}
	if err := q.store.ListPrepend(ctx, q.readyList, data); err != nil {
		log.Error("publish failed", "error", err)
		return fmt.Errorf("publishing job: %w", err)
	}
	metrics.IncrementJobsInQueue()
	log.Debug("Published job", "attempts", job.Attempts)
	return nil
}

func (q *RedisQueue) Consume(ctx context.Context) (Delivery, error) {
	raw, err := q.store.BlockingMoveTail(ctx, q.readyList, q.processingList, config.QueuePollTimeout)
	if q.store.IsNil(err) {
		return nil, ErrNoJob
	}
	if err != nil {
		return nil, fmt.Errorf("consuming job: %w", err)
	}

	var job docModel.Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		//poison payload - drop it on the dead list so it can't wedge the worker
		q.logger.Error("Unparseable job payload, dead-lettering", "error", err)
		_ = q.store.ListRemove(ctx, q.processingList, raw)
		_ = q.store.ListPrepend(ctx, q.deadList, raw)
		return nil, ErrNoJob
	}

	metrics.DecrementJobsInQueue()
	return &redisDelivery{queue: q, job: job, raw: raw}, nil
}

// ReapInFlight returns every stale in-flight entry to the ready list. Called
// on worker start: anything still in-flight belongs to a dead consumer.
func (q *RedisQueue) ReapInFlight(ctx context.Context) (int, error) {
	reaped := 0
	for {
		_, err := q.store.MoveTail(ctx, q.processingList, q.readyList)
		if q.store.IsNil(err) {
			return reaped, nil
		}
		if err != nil {
			return reaped, err
		}
		reaped++
		metrics.IncrementJobsInQueue()
	}
}

type redisDelivery struct {
	queue *RedisQueue
	job   docModel.Job
	raw   string
}

func (d *redisDelivery) Job() docModel.Job {
	return d.job
}

func (d *redisDelivery) Ack(ctx context.Context) error {
	return d.queue.store.ListRemove(ctx, d.queue.processingList, d.raw)
}

// Nack writes to the destination list before removing the in-flight entry.
// A crash between the two calls leaves a duplicate, never a lost job.
func (d *redisDelivery) Nack(ctx context.Context, requeue bool) error {
	if !requeue {
		metrics.IncrementDeadLetteredJobs()
		if err := d.queue.store.ListPrepend(ctx, d.queue.deadList, d.raw); err != nil {
			return err
		}
		return d.queue.store.ListRemove(ctx, d.queue.processingList, d.raw)
	}

	redelivered := d.job
	redelivered.Attempts++
	if err := d.queue.Publish(ctx, redelivered); err != nil {
		return err
	}
	return d.queue.store.ListRemove(ctx, d.queue.processingList, d.raw)
}

// TestQueue wraps an externally created store. Only for _test.go files.
func TestQueue(store *redisStore.Store) *RedisQueue {
	return newQueue(store)
}
