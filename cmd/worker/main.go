package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/akolanti/DocChatAPI/internal/config"
	"github.com/akolanti/DocChatAPI/internal/data/store"
	"github.com/akolanti/DocChatAPI/internal/queue"
	"github.com/akolanti/DocChatAPI/internal/rag/embedding"
	"github.com/akolanti/DocChatAPI/internal/rag/embedding/googleEmbedding"
	"github.com/akolanti/DocChatAPI/internal/rag/embedding/openaiEmbedding"
	"github.com/akolanti/DocChatAPI/internal/rag/vectorDB/qdrantDB"
	"github.com/akolanti/DocChatAPI/internal/worker"
	"github.com/akolanti/DocChatAPI/pkg/logger_i"
)

func main() {

	logger_i.Init()
	var logger = logger_i.NewLogger("worker-main")

	if err := godotenv.Load(); err != nil {
		logger.Debug("No .env file found, relying on process environment")
	}
	if err := config.ValidateRequiredEnv(); err != nil {
		logger.Error("Missing required configuration", "error", err)
		os.Exit(1)
	}

	serviceContext, closeExternalServices := context.WithCancel(context.Background())
	defer closeExternalServices()

	jobQueue := queue.GetRedisQueue(serviceContext)
	documentStore := store.GetRedisDocumentStore(serviceContext)
	if jobQueue == nil || documentStore == nil {
		logger.Error("Redis is offline, the worker cannot run without its queue. Shutting down.")
		return
	}

	//jobs stranded in-flight by a previous crash go back on the ready list
	if reclaimed, err := jobQueue.ReapInFlight(serviceContext); err != nil {
		logger.Error("Failed to reclaim in-flight jobs", "error", err)
	} else if reclaimed > 0 {
		logger.Info("Reclaimed in-flight jobs", "count", reclaimed)
	}

	vectorDB := qdrantDB.GetQdrantClient(serviceContext)

	var embeddingService embedding.Embedder
	if config.EmbeddingProvider() == config.EmbeddingProviderOpenAI {
		embeddingService = openaiEmbedding.GetOpenAIEmbeddingClient(config.OpenAIEmbeddingModel, config.OpenAIAPIKey())
	} else {
		embeddingService = googleEmbedding.GetGoogleEmbeddingClient(serviceContext, config.GoogleEmbeddingModel, config.GoogleAPIKey())
	}

	if vectorDB == nil || embeddingService == nil {
		logger.Error("One or more external services failed to initialize. Shutting down.")
		logger.Debug("Available services : ", "VectorDB", vectorDB != nil, "EmbeddingService", embeddingService != nil)
		return
	}

	consumer := worker.NewConsumer(jobQueue, embeddingService, vectorDB, documentStore)

	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		state := <-gracefulShutdown
		logger.Info("Worker is shutting down", "signal", state.String())
		closeExternalServices()
	}()

	logger.Info("Worker started")
	consumer.Run(serviceContext)
	logger.Info("Worker stopped")
}
