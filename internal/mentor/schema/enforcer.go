// Package schema narrows raw model replies to the canonical AIResponse.
// Providers differ in how strictly they honor the response contract, so
// every payload is treated as untrusted input regardless of origin.
package schema

import (
	"encoding/json"
	"log"
	"strings"

	"github.com/mrdaaan1/cofounder-ai/internal/catalog"
	"github.com/mrdaaan1/cofounder-ai/internal/mentor/domain"
)

// FallbackReply is returned whenever a payload cannot be parsed at all.
const FallbackReply = "Произошла ошибка при обработке ответа. Попробуйте еще раз."

// rawResponse mirrors the wire shape with just enough looseness to accept
// partial conformance: isCompleted may be omitted by providers that do not
// enforce the full schema.
type rawResponse struct {
	Reply          string `json:"reply"`
	ArtifactUpdate *struct {
		ID          string `json:"id"`
		Content     string `json:"content"`
		IsCompleted *bool  `json:"isCompleted"`
	} `json:"artifactUpdate"`
	SuggestedAction string `json:"suggestedAction"`
}

// Normalize validates a raw provider payload against the response contract
// and returns a canonical AIResponse. It never fails: structurally broken
// payloads degrade to a fallback reply with no update, and updates targeting
// unknown artifact ids are dropped while the reply is kept.
//
// prior supplies the current artifact state so an omitted isCompleted keeps
// the artifact's existing value.
func Normalize(raw string, prior []catalog.Artifact) domain.AIResponse {
	payload := extractJSON(raw)

	var r rawResponse
	if err := json.Unmarshal([]byte(payload), &r); err != nil || strings.TrimSpace(r.Reply) == "" {
		if err != nil {
			log.Printf("[mentor] unparseable model payload (%d bytes): %v", len(raw), err)
		} else {
			log.Printf("[mentor] model payload missing reply")
		}
		return domain.AIResponse{Reply: FallbackReply}
	}

	out := domain.AIResponse{
		Reply:           r.Reply,
		SuggestedAction: strings.TrimSpace(r.SuggestedAction),
	}

	if r.ArtifactUpdate == nil || strings.TrimSpace(r.ArtifactUpdate.ID) == "" {
		return out
	}

	id := strings.TrimSpace(r.ArtifactUpdate.ID)
	if !catalog.ValidID(id) {
		log.Printf("[mentor] dropping update for unknown artifact id %q", id)
		return out
	}

	completed := priorCompleted(prior, id)
	if r.ArtifactUpdate.IsCompleted != nil {
		completed = *r.ArtifactUpdate.IsCompleted
	}

	out.ArtifactUpdate = &domain.ArtifactUpdate{
		ID:          id,
		Content:     r.ArtifactUpdate.Content,
		IsCompleted: completed,
	}
	return out
}

func priorCompleted(artifacts []catalog.Artifact, id string) bool {
	for _, a := range artifacts {
		if a.ID == id {
			return a.IsCompleted
		}
	}
	return false
}

// extractJSON strips markdown code fences and surrounding prose. Models
// prompted for "pure JSON" still wrap it in ```json blocks often enough
// that this has to be handled here rather than per provider.
func extractJSON(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if i := strings.LastIndex(s, "```"); i >= 0 {
			s = s[:i]
		}
		return strings.TrimSpace(s)
	}

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start >= 0 && end > start {
		return s[start : end+1]
	}
	return s
}
