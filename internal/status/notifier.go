package status

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/akolanti/DocChatAPI/internal/adapter"
	"github.com/akolanti/DocChatAPI/internal/api"
	"github.com/akolanti/DocChatAPI/internal/config"
	"github.com/akolanti/DocChatAPI/internal/domain/docModel"
	"github.com/akolanti/DocChatAPI/internal/metrics"
	"github.com/akolanti/DocChatAPI/internal/rag/vectorDB"
	"github.com/akolanti/DocChatAPI/pkg/logger_i"
)

// Notifier streams document processing state over SSE. Completion is observed
// the same way the query engine sees it: the collection exists. The document
// store supplies the failed terminal state the collection check can't see.
type Notifier struct {
	vectorDB  vectorDB.Gateway
	documents docModel.DocumentStore
	interval  time.Duration
	logger    *logger_i.Logger
}

func NewNotifier(vector vectorDB.Gateway, documents docModel.DocumentStore, interval time.Duration) *Notifier {
	if interval <= 0 {
		interval = config.StatusPollInterval
	}
	return &Notifier{
		vectorDB:  vector,
		documents: documents,
		interval:  interval,
		logger:    logger_i.NewLogger("StatusNotifier"),
	}
}

// Stream writes one event per poll until a terminal event or the client
// disconnects. The stream always closes after "processed" or "failed".
func (n *Notifier) Stream(w http.ResponseWriter, r *http.Request, docId string) {
	log := n.logger.With("traceId", r.Context().Value(config.TRACE_ID_KEY), "docId", docId)

	flusher, ok := w.(http.Flusher)
	if !ok {
		log.Error("Streaming unsupported by response writer")
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	metrics.IncrementOpenStatusStreams()
	defer metrics.DecrementOpenStatusStreams()

	ctx := r.Context()
	ticker := time.NewTicker(n.interval)
	defer ticker.Stop()

	for {
		event := n.checkOnce(ctx, docId)
		if err := writeEvent(w, event); err != nil {
			log.Debug("Client write failed, closing stream", "error", err)
			return
		}
		flusher.Flush()

		if event.Status != api.StatusProcessing {
			log.Debug("Terminal status emitted, closing stream", "status", event.Status)
			return
		}

		select {
		case <-ctx.Done():
			log.Debug("Client disconnected, closing stream")
			return
		case <-ticker.C:
		}
	}
}

func (n *Notifier) checkOnce(ctx context.Context, docId string) api.StatusEvent {
	exists, err := n.vectorDB.CollectionExists(ctx, docId)
	if err != nil {
		n.logger.Error("Collection check failed", "docId", docId, "error", err)
		exists = false
	}

	state := docModel.StateQueued
	if doc, found := n.documents.GetDocument(ctx, docId); found {
		state = doc.State
	}

	return adapter.ToStatusEvent(docId, exists, state)
}

func writeEvent(w http.ResponseWriter, event api.StatusEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "data: %s\n\n", data)
	return err
}
