package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/akolanti/DocChatAPI/internal/config"
	"github.com/akolanti/DocChatAPI/internal/data/store"
	"github.com/akolanti/DocChatAPI/internal/domain/docModel"
	"github.com/akolanti/DocChatAPI/internal/handlers"
	"github.com/akolanti/DocChatAPI/internal/queue"
	"github.com/akolanti/DocChatAPI/internal/rag"
	"github.com/akolanti/DocChatAPI/internal/rag/embedding"
	"github.com/akolanti/DocChatAPI/internal/rag/embedding/googleEmbedding"
	"github.com/akolanti/DocChatAPI/internal/rag/embedding/openaiEmbedding"
	"github.com/akolanti/DocChatAPI/internal/rag/llm/gemini"
	"github.com/akolanti/DocChatAPI/internal/rag/vectorDB/qdrantDB"
	"github.com/akolanti/DocChatAPI/internal/server"
	"github.com/akolanti/DocChatAPI/internal/status"
	"github.com/akolanti/DocChatAPI/pkg/logger_i"
)

var listenAddr string

func main() {

	logger_i.Init()
	var logger = logger_i.NewLogger("main")

	if err := godotenv.Load(); err != nil {
		logger.Debug("No .env file found, relying on process environment")
	}
	if err := config.ValidateRequiredEnv(); err != nil {
		logger.Error("Missing required configuration", "error", err)
		os.Exit(1)
	}

	//config
	flag.StringVar(&listenAddr, "listen-addr", config.ServerListenAddr, "server listen address")
	flag.Parse()

	serviceContext, closeExternalServices := context.WithCancel(context.Background())
	defer closeExternalServices()

	documentStore := store.GetRedisDocumentStore(serviceContext)
	jobQueue := queue.GetRedisQueue(serviceContext)
	if documentStore == nil || jobQueue == nil {
		//these are shared with the worker process, an in-memory stand-in would desync them
		logger.Error("Redis is offline, document store and job queue are unavailable. Shutting down.")
		return
	}

	var conversationStore docModel.ConversationStore
	if redisConversations := store.GetRedisConversationStore(serviceContext); redisConversations != nil {
		conversationStore = redisConversations
	} else {
		logger.Error("Redis conversation store is offline")
		if !config.FALLBACK_REDIS_TO_INTERNALSTORE {
			return
		}
		conversationStore = store.InitInMemoryConversationStore()
	}

	vectorDB := qdrantDB.GetQdrantClient(serviceContext)

	var embeddingService embedding.Embedder
	if config.EmbeddingProvider() == config.EmbeddingProviderOpenAI {
		embeddingService = openaiEmbedding.GetOpenAIEmbeddingClient(config.OpenAIEmbeddingModel, config.OpenAIAPIKey())
	} else {
		embeddingService = googleEmbedding.GetGoogleEmbeddingClient(serviceContext, config.GoogleEmbeddingModel, config.GoogleAPIKey())
	}
	llmProvider := gemini.GetGeminiClient(serviceContext, config.GeminiModelName, config.GoogleAPIKey())

	if vectorDB == nil || embeddingService == nil || llmProvider == nil {
		logger.Error("One or more external services failed to initialize. Shutting down.")
		logger.Debug("Available services : ", "VectorDB", vectorDB != nil, "EmbeddingService", embeddingService != nil, "LLMProvider", llmProvider != nil)
		return
	}

	ragService := rag.NewService(vectorDB, llmProvider, embeddingService, conversationStore)
	statusNotifier := status.NewNotifier(vectorDB, documentStore, config.StatusPollInterval)

	handlers.InitHandlers(ragService, jobQueue, documentStore, statusNotifier)

	//server handling
	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)
	stopExecution := make(chan bool, 1)

	shutdownParams := server.ShutdownParams{
		GracefulShutdown: gracefulShutdown,
		StopExecution:    stopExecution,
		CloseServices:    closeExternalServices,
	}
	go server.ShutDownHandler(shutdownParams)
	go server.CreateServer(listenAddr)

	<-stopExecution
	logger.Info("Server stopped")
}
