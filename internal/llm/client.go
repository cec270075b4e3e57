package llm

import (
	"context"
	"log/slog"
)

// Client is the rate-limited model client: a Provider bound to one
// model name, throttled by the shared RateGate and hardened with the
// retry policy. Multiple clients (planning, extraction, scripting) hold
// the same gate so the process never exceeds the global call rate.
type Client struct {
	provider  Provider
	modelName string
	gate      *RateGate
	retry     RetryPolicy
	logger    *slog.Logger
}

// NewClient binds a provider and model to the shared gate.
func NewClient(provider Provider, modelName string, gate *RateGate, retry RetryPolicy, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		provider:  provider,
		modelName: modelName,
		gate:      gate,
		retry:     retry,
		logger:    logger.With("component", "llm", "model", modelName),
	}
}

// GenerateJSON issues a JSON-mode generation through the gate, retrying
// quota errors with backoff.
func (c *Client) GenerateJSON(ctx context.Context, prompt string) (string, error) {
	return c.retry.Do(ctx, func(ctx context.Context) (string, error) {
		if err := c.gate.Wait(ctx); err != nil {
			return "", err
		}
		out, err := c.provider.GenerateJSON(ctx, c.modelName, prompt)
		if err != nil && IsQuotaError(err) {
			c.logger.Warn("rate limit hit, backing off", "error", err)
		}
		return out, err
	})
}

// GenerateText issues a plain-text generation through the gate.
func (c *Client) GenerateText(ctx context.Context, prompt string) (string, error) {
	return c.retry.Do(ctx, func(ctx context.Context) (string, error) {
		if err := c.gate.Wait(ctx); err != nil {
			return "", err
		}
		out, err := c.provider.GenerateText(ctx, c.modelName, prompt)
		if err != nil && IsQuotaError(err) {
			c.logger.Warn("rate limit hit, backing off", "error", err)
		}
		return out, err
	})
}

// Model returns the bound model name.
func (c *Client) Model() string {
	return c.modelName
}
