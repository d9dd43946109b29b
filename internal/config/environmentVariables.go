package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"
)

const (
	IS_PROD                          = false
	LOG_LEVEL_PROD                   = slog.LevelInfo
	FALLBACK_REDIS_TO_INTERNALSTORE  = true //if redis init fails, the api falls back to an in-memory conversation store
	TRACE_ID_KEY                     = "traceId"
	RATE_LIMIT_PER_SECOND            = 2
	BURST_RATE_LIMIT_PER_SECOND      = 5

	//chunking - tuned for focused retrieval
	MaxChunkSize = 800 //characters
	ChunkOverlap = 100 //characters

	//retrieval
	RetrievalTopK uint64 = 5

	//conversation context window - last N exchanges injected into the prompt
	HistoryTurnWindow = 3

	//probe text used once per worker lifetime to learn embedding dimensionality
	DimensionProbeText = "test"

	//ingestion retry policy
	MaxIngestAttempts = 5

	//status stream
	StatusPollInterval = 2 * time.Second

	//serverTimeouts
	ReadTimeout            = 5 * time.Second
	WriteTimeout           = 0 //SSE responses outlive any fixed write deadline
	IdleTimeout            = 120 * time.Second
	ShutdownContextTimeout = 10 * time.Second

	//server listening port
	ServerListenAddr = ":3000"

	//uploads
	UploadsDirName    = "uploads"
	MaxUploadSizeByte = 32 << 20 //32mb

	//vectorDB
	QdrantConnectionTimeout = 30 * time.Second
	QdrantHost              = "127.0.0.1"
	QdrantGrpcPort          = 6334
	QdrantUseTLS            = false //set for https
	QdrantPoolSize          = 1     //2-5 is preferred for prod according to documentation

	//llm
	GeminiModelName  = "gemini-2.5-flash-lite"
	ModelTemperature float32 = 0.3

	GroundingInstruction = "You are an assistant for question-answering tasks. " +
		"Use the following pieces of retrieved context to answer the question. " +
		"If you don't know the answer, say that you don't know. " +
		"Use three sentences maximum and keep the answer concise. " +
		"Always refer to the context when answering."

	//embeddings
	GoogleEmbeddingModel                = "gemini-embedding-001"
	OpenAIEmbeddingModel                = "text-embedding-3-small"
	EmbeddingOutputDimensionality int32 = 1536

	//redis
	redisHost = "127.0.0.1"
	redisPort = "6379"
	RedisAddr = redisHost + ":" + redisPort

	//redis has 16 DB we can use
	RedisDocumentStore     = 0
	RedisConversationStore = 1
	RedisQueueStore        = 2

	//redis timeouts
	RedisDocumentStoreTTL     = 24 * time.Hour
	RedisConversationStoreTTL = 24 * time.Hour

	//job queue keys
	QueueReadyList      = "ingest:jobs"
	QueueProcessingList = "ingest:jobs:processing"
	QueueDeadList       = "ingest:jobs:dead"
	QueuePollTimeout    = 5 * time.Second
)

// EmbeddingProviderGoogle is the default; set EMBEDDING_PROVIDER=openai to switch.
const (
	EmbeddingProviderGoogle = "google"
	EmbeddingProviderOpenAI = "openai"
)

func GoogleAPIKey() string {
	return os.Getenv("GOOGLE_API_KEY")
}

func OpenAIAPIKey() string {
	return os.Getenv("OPENAI_API_KEY")
}

func EmbeddingProvider() string {
	p := strings.ToLower(os.Getenv("EMBEDDING_PROVIDER"))
	if p == "" {
		return EmbeddingProviderGoogle
	}
	return p
}

// ValidateRequiredEnv returns an error naming every missing startup variable.
// Absence of any of these is fatal - the process must refuse to start.
func ValidateRequiredEnv() error {
	required := []string{"GOOGLE_API_KEY", "QDRANT_HOST", "REDIS_ADDR"}
	if EmbeddingProvider() == EmbeddingProviderOpenAI {
		required = append(required, "OPENAI_API_KEY")
	}

	var missing []string
	for _, name := range required {
		if os.Getenv(name) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	return nil
}
