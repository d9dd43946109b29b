package worker

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/akolanti/DocChatAPI/internal/config"
	"github.com/akolanti/DocChatAPI/internal/domain/docModel"
	"github.com/akolanti/DocChatAPI/internal/metrics"
	"github.com/akolanti/DocChatAPI/internal/rag/ingest"
	"github.com/akolanti/DocChatAPI/internal/rag/vectorDB"
)

// processJob runs one full ingestion pass: extract, chunk, ensure collection,
// then embed and upsert every chunk in sequence order. Any error aborts the
// pass; recovery policy lives in handleDelivery.
func (c *Consumer) processJob(ctx context.Context, job docModel.Job) error {
	log := c.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "docId", job.DocId)

	if _, err := os.Stat(job.FilePath); err != nil {
		//the *PathError keeps fs.ErrNotExist wrapped for the caller's check
		return fmt.Errorf("validating file: %w", err)
	}

	pages, err := ingest.ExtractText(job.FilePath)
	if err != nil {
		return fmt.Errorf("extracting text: %w", err)
	}

	chunks := ingest.PrepareChunks(pages, filepath.Base(job.FilePath))
	log.Debug("Prepared chunks", "pages", len(pages), "chunks", len(chunks))

	dimension, err := c.ensureDimension(ctx)
	if err != nil {
		return fmt.Errorf("probing embedding dimensionality: %w", err)
	}

	if err := c.vectorDB.CreateCollection(ctx, job.DocId, dimension); err != nil {
		return fmt.Errorf("ensuring collection: %w", err)
	}

	for _, chunk := range chunks {
		vector, err := c.embedder.Embed(ctx, chunk.Content)
		if err != nil {
			return fmt.Errorf("embedding chunk %d: %w", chunk.SequenceIndex, err)
		}

		point := vectorDB.Point{
			Id:     uint64(chunk.SequenceIndex),
			Vector: vector,
			Payload: vectorDB.PointPayload{
				Content: chunk.Content,
				Source:  chunk.Source,
				Page:    chunk.PageNum,
			},
		}
		if err := c.vectorDB.UpsertPoint(ctx, job.DocId, point); err != nil {
			return fmt.Errorf("upserting chunk %d: %w", chunk.SequenceIndex, err)
		}
	}

	return nil
}

// ensureDimension embeds the probe text once and caches the vector length for
// the consumer's lifetime. Every collection this consumer creates uses it.
func (c *Consumer) ensureDimension(ctx context.Context) (uint64, error) {
	if c.dimension != 0 {
		return c.dimension, nil
	}

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("dimension_probe", time.Since(start)) }()

	probe, err := c.embedder.Embed(ctx, config.DimensionProbeText)
	if err != nil {
		return 0, err
	}
	if len(probe) == 0 {
		return 0, fmt.Errorf("probe embedding came back empty")
	}

	c.dimension = uint64(len(probe))
	c.logger.Info("Learned embedding dimensionality", "dimension", c.dimension)
	return c.dimension, nil
}
