package gemini

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/akolanti/DocChatAPI/internal/config"
	"github.com/akolanti/DocChatAPI/internal/rag/llm"
	"github.com/akolanti/DocChatAPI/pkg/logger_i"
	"google.golang.org/genai"
)

type llmClient struct {
	client    *genai.Client
	modelName string
}

var logger *logger_i.Logger
var geminiClient *llmClient
var once sync.Once

func GetGeminiClient(ctx context.Context, modelName string, apikey string) llm.Provider {
	once.Do(func() {
		logger = logger_i.NewLogger("llm_gemini")
		newGeminiClient(ctx, modelName, apikey)
	})

	if geminiClient == nil {
		return nil
	}
	return &llmClient{client: geminiClient.client, modelName: geminiClient.modelName}
}

func newGeminiClient(ctx context.Context, modelName string, apikey string) {

	c, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apikey})
	if err != nil {
		logger.Error("Error creating Gemini client:", "error", err)
	}
	if c != nil {
		geminiClient = &llmClient{client: c, modelName: modelName}
		logger.Info("Gemini client created", "model", modelName)
		go closeClient(ctx, geminiClient)
	}

}

// Generate makes the single grounded call: the system instruction restricts
// the answer to retrieved context, the user prompt carries history, context
// and the live question.
func (c *llmClient) Generate(ctx context.Context, userQuery string, matches []string, messageHistory []string) (string, error) {
	log := logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	systemInstruction := &genai.Content{
		Parts: []*genai.Part{
			{Text: config.GroundingInstruction},
		},
	}

	userPrompt := BuildPrompt(userQuery, matches, messageHistory)

	temperature := config.ModelTemperature
	contentConfig := &genai.GenerateContentConfig{
		SystemInstruction: systemInstruction,
		Temperature:       &temperature,
	}

	result, err := c.client.Models.GenerateContent(
		ctx,
		c.modelName,
		genai.Text(userPrompt),
		contentConfig,
	)
	if err != nil {
		log.Error("Error generating answer", "error", err)
		return "", err
	}
	return result.Text(), nil
}

// BuildPrompt assembles history, retrieved context and the question into one
// prompt body. Exported so tests can assert on the assembled text.
func BuildPrompt(userQuery string, matches []string, messageHistory []string) string {
	var b strings.Builder

	if len(messageHistory) > 0 {
		b.WriteString("Conversation History:\n")
		b.WriteString(strings.Join(messageHistory, "\n"))
		b.WriteString("\n\n")
	}

	b.WriteString("Retrieved Context:\n")
	b.WriteString(strings.Join(matches, "\n"))

	return fmt.Sprintf("%s\n\nUser Question: %s", b.String(), userQuery)
}

func closeClient(ctx context.Context, llm *llmClient) {
	<-ctx.Done()
	logger.Info("Closing Gemini client")
	llm.client = nil
	llm.modelName = ""
}
