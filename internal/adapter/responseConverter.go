package adapter

import (
	"github.com/akolanti/DocChatAPI/internal/api"
	"github.com/akolanti/DocChatAPI/internal/domain/docModel"
	"github.com/akolanti/DocChatAPI/internal/rag"
)

func ToUploadResponse(docId string) api.UploadResponse {
	return api.UploadResponse{DocId: docId}
}

func ToChatResponse(result rag.ChatResult) api.ChatResponse {
	return api.ChatResponse{
		Answer:         result.Answer,
		DocId:          result.DocId,
		ConversationId: result.ConversationId,
	}
}

// ToStatusEvent maps collection presence plus stored document state to the
// wire status. Presence wins: a queryable collection is "processed" no matter
// what the state store says.
func ToStatusEvent(docId string, collectionExists bool, state docModel.ProcessingState) api.StatusEvent {
	status := api.StatusProcessing
	if collectionExists {
		status = api.StatusProcessed
	} else if state == docModel.StateFailed {
		status = api.StatusFailed
	}
	return api.StatusEvent{Status: status, DocId: docId}
}

func BadRequest(code int, message string) api.ErrorResponse {
	return api.ErrorResponse{
		Code:    code,
		Message: message,
	}
}
