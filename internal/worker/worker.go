package worker

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"time"

	"github.com/akolanti/DocChatAPI/internal/adapter/utils"
	"github.com/akolanti/DocChatAPI/internal/config"
	"github.com/akolanti/DocChatAPI/internal/domain/docModel"
	"github.com/akolanti/DocChatAPI/internal/metrics"
	"github.com/akolanti/DocChatAPI/internal/queue"
	"github.com/akolanti/DocChatAPI/internal/rag/embedding"
	"github.com/akolanti/DocChatAPI/internal/rag/vectorDB"
	"github.com/akolanti/DocChatAPI/pkg/logger_i"
)

// Consumer drives the ingestion pipeline for one job at a time. Multiple
// consumer processes may run in parallel - work is partitioned by doc id, so
// no cross-worker coordination is needed.
type Consumer struct {
	queue     queue.JobQueue
	embedder  embedding.Embedder
	vectorDB  vectorDB.Gateway
	documents docModel.DocumentStore
	logger    *logger_i.Logger
	dimension uint64 //learned once per consumer lifetime from a probe embedding
}

func NewConsumer(q queue.JobQueue, em embedding.Embedder, vector vectorDB.Gateway, documents docModel.DocumentStore) *Consumer {
	return &Consumer{
		queue:     q,
		embedder:  em,
		vectorDB:  vector,
		documents: documents,
		logger:    logger_i.NewLogger("IngestionWorker"),
	}
}

// Run consumes until the context is cancelled. Strictly one in-flight job.
func (c *Consumer) Run(ctx context.Context) {
	c.logger.Info("Worker waiting for document processing jobs")
	for {
		select {
		case <-ctx.Done():
			c.logger.Info("Worker stopped")
			return
		default:
		}

		delivery, err := c.queue.Consume(ctx)
		if errors.Is(err, queue.ErrNoJob) {
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				c.logger.Info("Worker stopped")
				return
			}
			c.logger.Error("Consume failed", "error", err)
			time.Sleep(time.Second)
			continue
		}

		c.handleDelivery(ctx, delivery)
	}
}

func (c *Consumer) handleDelivery(ctx context.Context, delivery queue.Delivery) {
	job := delivery.Job()

	outcome := "error"
	start := time.Now()
	defer func() { metrics.CaptureIngestMetrics(outcome, time.Since(start)) }()

	traceCtx := context.WithValue(ctx, config.TRACE_ID_KEY, utils.GetNewUUID())
	log := c.logger.With("traceId", traceCtx.Value(config.TRACE_ID_KEY), "docId", job.DocId, "attempt", job.Attempts+1)
	log.Info("Processing document", "path", job.FilePath)

	c.saveDocumentState(traceCtx, job.DocId, docModel.StateProcessing)

	err := c.processJob(traceCtx, job)

	switch {
	case err == nil:
		if ackErr := delivery.Ack(traceCtx); ackErr != nil {
			log.Error("Ack failed, job will be redelivered", "error", ackErr)
			return
		}
		c.saveDocumentState(traceCtx, job.DocId, docModel.StateProcessed)
		c.removeSourceFile(log, job.FilePath)
		outcome = "complete"
		log.Info("Processing complete")

	case errors.Is(err, fs.ErrNotExist):
		// Permanent: the file is gone and no retry can bring it back
		log.Error("File missing, rejecting without redelivery", "error", err)
		c.rejectPermanently(traceCtx, delivery, job)
		outcome = "failed_permanent"

	case job.Attempts+1 >= config.MaxIngestAttempts:
		log.Error("Retries exhausted, dead-lettering", "error", err)
		c.rejectPermanently(traceCtx, delivery, job)
		outcome = "failed_exhausted"

	default:
		log.Error("Transient failure, requeueing", "error", err)
		if nackErr := delivery.Nack(traceCtx, true); nackErr != nil {
			log.Error("Nack failed", "error", nackErr)
		}
		outcome = "retried"
	}
}

func (c *Consumer) rejectPermanently(ctx context.Context, delivery queue.Delivery, job docModel.Job) {
	if err := delivery.Nack(ctx, false); err != nil {
		c.logger.Error("Nack failed", "error", err)
	}
	c.saveDocumentState(ctx, job.DocId, docModel.StateFailed)
}

func (c *Consumer) saveDocumentState(ctx context.Context, docId string, state docModel.ProcessingState) {
	if err := c.documents.SetState(ctx, docId, state); err != nil {
		c.logger.Error("Failed to update document state", "docId", docId, "state", state, "error", err)
	}
}

func (c *Consumer) removeSourceFile(log *logger_i.Logger, path string) {
	if err := os.Remove(path); err != nil {
		log.Error("Error removing file", "error", err)
	}
}
