// Package service implements the mentor session protocol: one stateless
// request/response cycle against whichever LLM backend is configured.
package service

import (
	"context"
	"errors"
	"log"

	"github.com/mrdaaan1/cofounder-ai/internal/catalog"
	"github.com/mrdaaan1/cofounder-ai/internal/mentor/domain"
	"github.com/mrdaaan1/cofounder-ai/internal/mentor/llm"
	"github.com/mrdaaan1/cofounder-ai/internal/mentor/schema"
)

// User-facing fallback replies per transport failure class. The conversation
// must survive every external failure, so these go into the chat stream
// instead of an error bubbling up.
const (
	replyUnauthorized = "Ошибка авторизации API. Проверьте ваш API ключ."
	replyRateLimited  = "Превышен лимит запросов. Пожалуйста, подождите немного."
	replyUnreachable  = "Не удалось подключиться к серверу ментора. Проверьте соединение и попробуйте еще раз."
)

// Mentor orchestrates one conversation turn. It owns no conversation state;
// the caller supplies the full history and current artifacts each time.
type Mentor struct {
	provider llm.Provider
}

func NewMentor(provider llm.Provider) *Mentor {
	return &Mentor{provider: provider}
}

// ProviderName identifies the configured backend (health reporting).
func (m *Mentor) ProviderName() string { return m.provider.Name() }

// Converse sends the full history plus an artifact snapshot to the backend
// and returns a validated response. Transport failures never propagate:
// they are converted into a reply the founder can act on, with no artifact
// update attached.
func (m *Mentor) Converse(ctx context.Context, history []domain.ChatMessage, artifacts []catalog.Artifact) domain.AIResponse {
	instruction := buildInstruction(artifacts)

	raw, err := m.provider.Converse(ctx, instruction, history)
	if err != nil {
		log.Printf("[mentor] %s converse failed: %v", m.provider.Name(), err)
		return domain.AIResponse{Reply: fallbackReply(err)}
	}

	return schema.Normalize(raw, artifacts)
}

func fallbackReply(err error) string {
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		return replyUnauthorized
	case errors.Is(err, domain.ErrRateLimited):
		return replyRateLimited
	default:
		return replyUnreachable
	}
}
