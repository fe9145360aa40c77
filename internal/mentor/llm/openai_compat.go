package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/mrdaaan1/cofounder-ai/internal/mentor/domain"
)

const (
	defaultOpenAIBaseURL = "https://api.openai.com/v1"
	defaultOpenAIModel   = "gpt-4o-mini"
)

// OpenAICompatProvider calls any chat-completions compatible endpoint
// directly. The model is prompted for pure JSON and the payload is parsed
// manually downstream; unlike the Gemini adapter there is no server-side
// schema enforcement, which is exactly what the normalization boundary is
// for.
type OpenAICompatProvider struct {
	baseURL string
	apiKey  string
	model   string
	http    *http.Client
}

func NewOpenAICompatProvider(apiKey, model string) *OpenAICompatProvider {
	if model == "" {
		model = defaultOpenAIModel
	}
	return &OpenAICompatProvider{
		baseURL: defaultOpenAIBaseURL,
		apiKey:  apiKey,
		model:   model,
		http:    &http.Client{Timeout: 60 * time.Second},
	}
}

// WithBaseURL points the adapter at a non-default endpoint (self-hosted
// gateways, tests).
func (p *OpenAICompatProvider) WithBaseURL(base string) *OpenAICompatProvider {
	p.baseURL = base
	return p
}

func (p *OpenAICompatProvider) Name() string { return "openai/" + p.model }

type chatCompletionMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model    string                  `json:"model"`
	Messages []chatCompletionMessage `json:"messages"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message chatCompletionMessage `json:"message"`
	} `json:"choices"`
}

func (p *OpenAICompatProvider) Converse(ctx context.Context, instruction string, history []domain.ChatMessage) (string, error) {
	messages := make([]chatCompletionMessage, 0, len(history)+1)
	messages = append(messages, chatCompletionMessage{Role: "system", Content: instruction})
	for _, msg := range history {
		// chat-completions vocabulary uses "assistant" for the model role
		role := "user"
		if msg.Role == domain.RoleMentor {
			role = "assistant"
		}
		messages = append(messages, chatCompletionMessage{Role: role, Content: msg.Text})
	}

	body, _ := json.Marshal(chatCompletionRequest{Model: p.model, Messages: messages})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.http.Do(req)
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

	var out chatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode completion: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("completion has no choices")
	}

	return out.Choices[0].Message.Content, nil
}
