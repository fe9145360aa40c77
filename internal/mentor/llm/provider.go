// Package llm contains the interchangeable mentor backends. Each adapter
// speaks its provider's transport and returns the raw structured payload;
// parsing and validation happen one layer up in the schema enforcer.
package llm

import (
	"context"
	"fmt"

	"github.com/mrdaaan1/cofounder-ai/config"
	"github.com/mrdaaan1/cofounder-ai/internal/mentor/domain"
)

// Provider is the single capability the mentor protocol depends on: turn a
// system instruction plus conversation history into a raw model payload.
// The concrete backend is chosen once at process configuration time.
type Provider interface {
	Name() string
	Converse(ctx context.Context, instruction string, history []domain.ChatMessage) (string, error)
}

// FromConfig selects the provider adapter named in the mentor config.
func FromConfig(cfg *config.MentorConfig) (Provider, error) {
	switch cfg.Provider {
	case "gemini":
		return NewGeminiProvider(cfg.APIKey, cfg.Model)
	case "openai":
		return NewOpenAICompatProvider(cfg.APIKey, cfg.Model), nil
	case "proxy":
		return NewProxyProvider(cfg.ProxyBaseURL), nil
	default:
		return nil, fmt.Errorf("unknown mentor provider %q", cfg.Provider)
	}
}
