package docModel

import (
	"context"
	"time"
)

type ProcessingState string

const (
	StateQueued     ProcessingState = "queued"
	StateProcessing ProcessingState = "processing"
	StateProcessed  ProcessingState = "processed"
	StateFailed     ProcessingState = "failed"
)

// Document is the pipeline's record of one uploaded file. DocId is assigned once
// at intake and never changes; only the Ingestion Worker moves State past queued.
type Document struct {
	DocId        string          `json:"doc_id"`
	FilePath     string          `json:"file_path"`
	State        ProcessingState `json:"processing_state"`
	UploadedTime time.Time       `json:"uploaded_time"`
	UpdatedTime  time.Time       `json:"updated_time,omitempty"`
}

// Job is the queue payload. Attempts counts deliveries so far; it rides inside
// the message so redelivery survives worker restarts.
type Job struct {
	DocId    string `json:"doc_id"`
	FilePath string `json:"file_path"`
	Attempts int    `json:"attempts,omitempty"`
}

type ConversationTurn struct {
	Query    string `json:"query"`
	Response string `json:"response"`
}

type DocumentStore interface {
	SaveDocument(ctx context.Context, doc Document) error
	GetDocument(ctx context.Context, docId string) (Document, bool)
	SetState(ctx context.Context, docId string, state ProcessingState) error
}

type ConversationStore interface {
	AppendTurn(ctx context.Context, conversationId string, turn ConversationTurn) error
	//RecentTurns returns up to limit most recent turns in original order
	RecentTurns(ctx context.Context, conversationId string, limit int) ([]ConversationTurn, error)
}
