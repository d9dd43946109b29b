package handlers

import (
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/akolanti/DocChatAPI/internal/adapter"
	"github.com/akolanti/DocChatAPI/internal/adapter/utils"
	"github.com/akolanti/DocChatAPI/internal/config"
	"github.com/akolanti/DocChatAPI/internal/domain/commonModels"
	"github.com/akolanti/DocChatAPI/internal/domain/docModel"
	"github.com/akolanti/DocChatAPI/internal/rag/ingest"
)

// UploadHandler accepts a document, assigns a doc id, persists the file and
// enqueues exactly one ingestion job. The returned doc id is a promise -
// processing happens later and completion is observed on the status stream.
func UploadHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		logRH.Warn("Invalid Context by request ", r.RemoteAddr)
		return
	}

	targetDir, errString := getUploadsDirectory()
	if errString != "" {
		logRH.Error("Couldn't get uploads directory :", "err", errString)
		WriteErrorResponse(w, http.StatusInternalServerError, errString)
		return
	}

	if err := r.ParseMultipartForm(config.MaxUploadSizeByte); err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "File too large or bad request")
		return
	}

	fileReader, fileMetadata, err := r.FormFile("document")
	if err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "Could not retrieve file")
		return
	}
	defer fileReader.Close()

	if ingest.DocTypeOf(fileMetadata.Filename) == commonModels.ERR {
		logRH.Warn("Rejected upload", "filename", fileMetadata.Filename)
		WriteErrorResponse(w, http.StatusBadRequest, "Only PDF, DOCX, TXT or RTF files are allowed")
		return
	}

	docId := utils.GetNewUUID()
	filePath := filepath.Join(targetDir, docId+strings.ToLower(filepath.Ext(fileMetadata.Filename)))

	destinationFileWriter, err := os.Create(filePath)
	if err != nil {
		WriteErrorResponse(w, http.StatusInternalServerError, "Storage error")
		return
	}
	defer destinationFileWriter.Close()

	if _, err := io.Copy(destinationFileWriter, fileReader); err != nil {
		WriteErrorResponse(w, http.StatusInternalServerError, "Write error")
		return
	}

	job := docModel.Job{DocId: docId, FilePath: filePath}
	if err := handlerInstance.jobQueue.Publish(r.Context(), job); err != nil {
		// No job, no promise - undo the intake
		logRH.Error("Failed to publish ingestion job", "error", err)
		_ = os.Remove(filePath)
		WriteErrorResponse(w, http.StatusInternalServerError, "Could not enqueue document for processing")
		return
	}

	doc := docModel.Document{
		DocId:        docId,
		FilePath:     filePath,
		State:        docModel.StateQueued,
		UploadedTime: time.Now(),
	}
	if err := handlerInstance.documents.SaveDocument(r.Context(), doc); err != nil {
		// The worker's state writes repair this record on dequeue
		logRH.Error("Failed to record document", "error", err)
	}

	logRH.Info("Enqueued document for ingestion", "docId", docId)
	writeJsonResponse(w, http.StatusAccepted, adapter.ToUploadResponse(docId))
}
