// Package llm wraps a chat-completion model as the text-completion
// capability used for glossary mining and segment translation.
package llm

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"
)

// Request is one chat-completion call.
type Request struct {
	System      string
	User        string
	Temperature float32
	MaxTokens   int
	// JSON asks the backend to constrain output to a JSON object.
	JSON bool
}

// Backend performs a single completion and returns the raw reply text.
type Backend interface {
	Complete(ctx context.Context, req Request) (string, error)
}

type BackendConfig struct {
	Provider string        `mapstructure:"provider" json:"provider"`
	BaseURL  string        `mapstructure:"base_url" json:"base_url"`
	APIKey   string        `mapstructure:"api_key" json:"api_key"`
	Model    string        `mapstructure:"model" json:"model"`
	Timeout  time.Duration `mapstructure:"timeout" json:"timeout"`
}

// NewBackend builds the backend named by cfg.Provider: "openai" (the
// default, also used for vLLM and other compatible servers) or "gemini".
func NewBackend(ctx context.Context, cfg BackendConfig) (Backend, error) {
	switch strings.ToLower(cfg.Provider) {
	case "", "openai", "vllm", "openrouter":
		return NewOpenAIBackend(cfg), nil
	case "gemini":
		return NewGeminiBackend(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}

// Close releases backend resources when the backend holds any.
func Close(b Backend) error {
	if c, ok := b.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
