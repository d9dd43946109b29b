package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/akolanti/DocChatAPI/internal/adapter"
	"github.com/akolanti/DocChatAPI/internal/adapter/utils"
	"github.com/akolanti/DocChatAPI/internal/api"
	"github.com/akolanti/DocChatAPI/internal/rag"
)

// ChatHandler answers one question against one processed document. Runs
// synchronously: either a fully grounded answer or an error, never partial.
func ChatHandler(w http.ResponseWriter, request *http.Request) {
	if !validateContext(request.Context()) {
		logRH.Warn("Invalid Context by request ", request.RemoteAddr)
		return
	}

	var requestData api.ChatRequest
	defer func(Body io.ReadCloser) {
		err := Body.Close()
		if err != nil {
			logRH.Error("Couldn't close the Chat handler reader :", "error", err)
		}
	}(request.Body)

	if err := json.NewDecoder(request.Body).Decode(&requestData); err != nil || !validateChatRequest(requestData) {
		logRH.Warn("Bad Chat Request: ", "error:", err, "request data:", requestData)
		WriteErrorResponse(w, http.StatusBadRequest, "Document ID and query are required")
		return
	}

	result, err := handlerInstance.chatService.Chat(request.Context(), requestData.DocId, requestData.Query, requestData.ConversationId)
	if err != nil {
		if errors.Is(err, rag.ErrCollectionNotReady) {
			WriteErrorResponse(w, http.StatusNotFound, rag.ErrCollectionNotReady.Error())
			return
		}
		WriteErrorResponse(w, http.StatusInternalServerError, "Chat failed")
		return
	}

	writeJsonResponse(w, http.StatusOK, adapter.ToChatResponse(result))
}

// StatusStreamHandler opens the SSE stream reporting a document's pipeline state.
func StatusStreamHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		logRH.Warn("Invalid Context by request ", r.RemoteAddr)
		return
	}

	docId := utils.GetChiURLParam(r, "doc_id")
	if docId == "" {
		WriteErrorResponse(w, http.StatusBadRequest, "doc_id is required")
		return
	}

	handlerInstance.notifier.Stream(w, r, docId)
}

func validateChatRequest(chatReq api.ChatRequest) bool {
	if handlerInstance == nil {
		return false
	}
	return chatReq.DocId != "" && chatReq.Query != ""
}
