package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mrdaaan1/cofounder-ai/internal/mentor/domain"
)

// ProxyProvider talks to an intermediary backend exposing POST /api/chat
// with a {history, systemInstruction} body and the structured response shape
// as its reply. This indirection is a first-class transport: it is how
// providers without a public browser-safe SDK (GigaChat) are reached.
type ProxyProvider struct {
	BaseURL string
	HTTP    *http.Client
}

func NewProxyProvider(baseURL string) *ProxyProvider {
	return &ProxyProvider{
		BaseURL: baseURL,
		HTTP:    &http.Client{Timeout: 60 * time.Second},
	}
}

func (p *ProxyProvider) Name() string { return "proxy" }

type proxyChatRequest struct {
	History           []domain.ChatMessage `json:"history"`
	SystemInstruction string               `json:"systemInstruction"`
}

func (p *ProxyProvider) Converse(ctx context.Context, instruction string, history []domain.ChatMessage) (string, error) {
	body, _ := json.Marshal(proxyChatRequest{
		History:           history,
		SystemInstruction: instruction,
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.BaseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.HTTP.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrUnreachable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return "", fmt.Errorf("%w: status %d", domain.ErrUnauthorized, resp.StatusCode)
	case resp.StatusCode == http.StatusTooManyRequests:
		return "", fmt.Errorf("%w: status %d", domain.ErrRateLimited, resp.StatusCode)
	case resp.StatusCode >= 400:
		return "", fmt.Errorf("%w: status %d", domain.ErrUnreachable, resp.StatusCode)
	}

	// The proxy already answers in the structured response shape; hand the
	// body to the enforcer untouched.
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read proxy response: %w", err)
	}
	return string(raw), nil
}
