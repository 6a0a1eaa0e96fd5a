// Package llm wraps the Gemini client in a conversational interface used by
// the generation pipeline. Conversations are held in an injected cache so
// follow-up turns (template selection, corrective retries) keep context.
package llm

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
	"google.golang.org/genai"

	"blogsmith/internal/logger"
)

const (
	// DefaultModel is the default Gemini model for content generation.
	DefaultModel = "gemini-1.5-pro"

	// apologyResponse is returned in the result body when a chat turn fails,
	// so callers always have displayable text alongside the error.
	apologyResponse = "I'm sorry, I was unable to generate a response. Please try again."

	// defaultSystemPrompt seeds every new conversation.
	defaultSystemPrompt = "You are a knowledgeable writing assistant for a blog platform. " +
		"Provide accurate, well-structured responses and follow the requested output format exactly. " +
		"If you do not know something, say so instead of inventing information."
)

// Client represents a client for interacting with an LLM.
type Client struct {
	apiKey      string
	modelName   string
	temperature float32
	maxTokens   int32
	gClient     *genai.Client
	cache       ConversationCache
}

// ChatResult is the outcome of one chat turn. Err is set when the turn
// failed; Response then carries an apology rather than model output.
type ChatResult struct {
	Response       string
	ConversationID string
	Model          string
	ProcessingTime time.Duration
	Timestamp      time.Time
	Err            error
}

// NewClient creates a new LLM client. The API key is resolved from the
// environment first, then viper configuration, and the constructor fails
// fast when none is found.
func NewClient(modelName string, cache ConversationCache) (*Client, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		if apiKey = os.Getenv("GOOGLE_GEMINI_API_KEY"); apiKey == "" {
			apiKey = viper.GetString("gemini.api_key")
		}
	}
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required. Set GEMINI_API_KEY environment variable or gemini.api_key in config file")
	}

	if modelName == "" {
		modelName = viper.GetString("gemini.model")
		if modelName == "" {
			modelName = DefaultModel
		}
	}

	ctx := context.Background()
	gClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	if cache == nil {
		cache = NewMemoryCache(DefaultCacheTTL, DefaultCacheMax)
	}

	temperature := float32(viper.GetFloat64("gemini.temperature"))
	if temperature == 0 {
		temperature = 0.7
	}
	maxTokens := viper.GetInt32("gemini.max_tokens")
	if maxTokens == 0 {
		maxTokens = 8192
	}

	return &Client{
		apiKey:      apiKey,
		modelName:   modelName,
		temperature: temperature,
		maxTokens:   maxTokens,
		gClient:     gClient,
		cache:       cache,
	}, nil
}

// Model returns the model name in use.
func (c *Client) Model() string {
	return c.modelName
}

// Chat sends a user message within the named conversation and records the
// model reply back into it. Errors are folded into the result so pipeline
// stages can degrade instead of aborting.
func (c *Client) Chat(ctx context.Context, conversationID, message string) ChatResult {
	start := time.Now()
	result := ChatResult{
		ConversationID: conversationID,
		Model:          c.modelName,
		Timestamp:      start,
	}

	conv := c.cache.Get(conversationID)
	conv.EnsureSystemPrompt(defaultSystemPrompt)
	conv.Append(Message{Role: RoleUser, Content: message})

	contents := conv.GeminiContents()
	cfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(c.temperature),
		MaxOutputTokens: c.maxTokens,
	}

	resp, err := c.gClient.Models.GenerateContent(ctx, c.modelName, contents, cfg)
	if err != nil {
		logger.Error("chat turn failed", err, "conversation_id", conversationID)
		result.Response = apologyResponse
		result.Err = fmt.Errorf("failed to generate content: %w", err)
		result.ProcessingTime = time.Since(start)
		return result
	}

	text := resp.Text()
	if text == "" {
		logger.Warn("empty model response", "conversation_id", conversationID)
		result.Response = apologyResponse
		result.Err = fmt.Errorf("empty response from model")
		result.ProcessingTime = time.Since(start)
		return result
	}

	conv.Append(Message{Role: RoleModel, Content: text})
	c.cache.Put(conversationID, conv)

	result.Response = text
	result.ProcessingTime = time.Since(start)
	return result
}

// AddTemplateContext injects the template catalog into the conversation as a
// system message. The injection is idempotent: if the conversation already
// carries a TEMPLATE INFORMATION block, nothing changes.
func (c *Client) AddTemplateContext(conversationID, contextMessage string) {
	conv := c.cache.Get(conversationID)
	if conv.HasTemplateContext() {
		return
	}
	conv.EnsureSystemPrompt(defaultSystemPrompt)
	conv.InsertSystem(contextMessage)
	c.cache.Put(conversationID, conv)
}

// ResetConversation drops the named conversation from the cache.
func (c *Client) ResetConversation(conversationID string) {
	c.cache.Evict(conversationID)
}
