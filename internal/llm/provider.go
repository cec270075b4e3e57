package llm

import (
	"context"
	"time"

	"github.com/dkrasnov/docureel/internal/model"
)

// Provider defines the interface for model backends. Implementations
// are plain transports: rate gating and retry live in Client.
type Provider interface {
	// Name returns the provider name.
	Name() string

	// GenerateText sends a prompt and returns the raw text response.
	GenerateText(ctx context.Context, modelName, prompt string) (string, error)

	// GenerateJSON sends a prompt with the backend's JSON response mode
	// enabled and returns the raw JSON text.
	GenerateJSON(ctx context.Context, modelName, prompt string) (string, error)
}

// Config holds model backend configuration.
type Config struct {
	// Provider name: "gemini" or "openai"
	Provider string

	// Model is the default model for planning and scripting.
	Model string

	// ExtractionModel is the cheaper model used for high-volume fact
	// extraction. Falls back to Model when empty.
	ExtractionModel string

	// APIKey authenticates against the backend.
	APIKey string

	// BaseURL overrides the backend endpoint (custom gateways, tests).
	BaseURL string

	// Timeout bounds a single request.
	Timeout time.Duration

	// MaxTokens limits response length where the backend supports it.
	MaxTokens int

	// MinInterval is the process-wide minimum spacing between calls.
	MinInterval time.Duration

	// Retry policy for quota errors.
	MaxRetries  int
	RetryBase   time.Duration
	RetryJitter time.Duration
}

// DefaultConfig returns sensible defaults matching the free-tier quota
// of the Gemini API (15 requests/minute).
func DefaultConfig() Config {
	return Config{
		Provider:    "gemini",
		Model:       "gemini-2.5-flash",
		Timeout:     60 * time.Second,
		MaxTokens:   4096,
		MinInterval: 4 * time.Second,
		MaxRetries:  5,
		RetryBase:   10 * time.Second,
		RetryJitter: 2 * time.Second,
	}
}

// ConfigFromModel converts model.LLMConfig to llm.Config.
func ConfigFromModel(mc model.LLMConfig) Config {
	return Config{
		Provider:        mc.Provider,
		Model:           mc.Model,
		ExtractionModel: mc.ExtractionModel,
		APIKey:          mc.APIKey,
		BaseURL:         mc.BaseURL,
		Timeout:         mc.Timeout,
		MaxTokens:       mc.MaxTokens,
		MinInterval:     mc.MinInterval,
		MaxRetries:      mc.MaxRetries,
		RetryBase:       mc.RetryBase,
		RetryJitter:     mc.RetryJitter,
	}
}
