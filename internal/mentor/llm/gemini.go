package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/genai"

	"github.com/mrdaaan1/cofounder-ai/internal/mentor/domain"
)

const defaultGeminiModel = "gemini-3-flash-preview"

// GeminiProvider calls the hosted Gemini API with native structured output:
// the response schema is enforced server-side, so the payload comes back as
// JSON matching the contract without prompt gymnastics.
type GeminiProvider struct {
	client *genai.Client
	model  string
	schema *genai.Schema
}

func NewGeminiProvider(apiKey, model string) (*GeminiProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if model == "" {
		model = defaultGeminiModel
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return &GeminiProvider{
		client: client,
		model:  model,
		schema: responseSchema(),
	}, nil
}

func (p *GeminiProvider) Name() string { return "gemini/" + p.model }

func (p *GeminiProvider) Converse(ctx context.Context, instruction string, history []domain.ChatMessage) (string, error) {
	contents := make([]*genai.Content, 0, len(history))
	for _, msg := range history {
		role := genai.Role(genai.RoleUser)
		if msg.Role == domain.RoleMentor {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(msg.Text, role))
	}

	result, err := p.client.Models.GenerateContent(ctx, p.model, contents, &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(instruction, genai.RoleUser),
		ResponseMIMEType:  "application/json",
		ResponseSchema:    p.schema,
	})
	if err != nil {
		return "", mapGeminiError(err)
	}

	return result.Text(), nil
}

func mapGeminiError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("%w: %s", domain.ErrUnauthorized, apiErr.Message)
		case http.StatusTooManyRequests:
			return fmt.Errorf("%w: %s", domain.ErrRateLimited, apiErr.Message)
		}
	}
	return fmt.Errorf("%w: %v", domain.ErrUnreachable, err)
}

// responseSchema declares the structured-output contract: reply is required,
// artifactUpdate and suggestedAction are optional.
func responseSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"reply": {Type: genai.TypeString},
			"artifactUpdate": {
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"id":          {Type: genai.TypeString},
					"content":     {Type: genai.TypeString},
					"isCompleted": {Type: genai.TypeBoolean},
				},
				Required: []string{"id", "content", "isCompleted"},
			},
			"suggestedAction": {Type: genai.TypeString},
		},
		Required: []string{"reply"},
	}
}
