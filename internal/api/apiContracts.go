package api

type UploadResponse struct {
	DocId string `json:"doc_id" example:"550e8400-e29b-41d4-a716-446655440000"`
}

type ChatRequest struct {
	DocId          string `json:"doc_id" validate:"required"`
	Query          string `json:"query" validate:"required"`
	ConversationId string `json:"conversation_id,omitempty"`
}

type ChatResponse struct {
	Answer         string `json:"answer"`
	DocId          string `json:"doc_id"`
	ConversationId string `json:"conversation_id"`
}

// StatusEvent is one SSE payload on the document-status stream.
type StatusEvent struct {
	Status string `json:"status" example:"processing"`
	DocId  string `json:"doc_id"`
}

type ErrorResponse struct {
	Code    int    `json:"code" example:"400"`
	Message string `json:"message" example:"Bad Request"`
}

const (
	StatusProcessing = "processing"
	StatusProcessed  = "processed"
	StatusFailed     = "failed"
)
