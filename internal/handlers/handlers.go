package handlers

import (
	"sync"

	"github.com/akolanti/DocChatAPI/internal/domain/docModel"
	"github.com/akolanti/DocChatAPI/internal/queue"
	"github.com/akolanti/DocChatAPI/internal/rag"
	"github.com/akolanti/DocChatAPI/internal/status"
	"github.com/akolanti/DocChatAPI/pkg/logger_i"
)

var (
	handlerInstance *handlerDeps //private singleton
	once            sync.Once
	logRH           *logger_i.Logger
)

type handlerDeps struct {
	chatService rag.Service
	jobQueue    queue.JobQueue
	documents   docModel.DocumentStore
	notifier    *status.Notifier
}

func InitHandlers(chatService rag.Service, jobQueue queue.JobQueue, documents docModel.DocumentStore, notifier *status.Notifier) {
	once.Do(func() {
		handlerInstance = &handlerDeps{
			chatService: chatService,
			jobQueue:    jobQueue,
			documents:   documents,
			notifier:    notifier,
		}

		logRH = logger_i.NewLogger("RequestHandler")
		logRH.Info("Starting request handlers")
	})
}
