package domain

const (
	RoleUser   = "user"
	RoleMentor = "model"
)

// ChatMessage is one turn of the mentor conversation. Roles follow the
// catalog of the web client ("user" / "model"); provider adapters remap
// them to whatever vocabulary their backend expects.
type ChatMessage struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// ArtifactUpdate is a mentor-proposed change to a single artifact.
type ArtifactUpdate struct {
	ID          string `json:"id"`
	Content     string `json:"content"`
	IsCompleted bool   `json:"isCompleted"`
}

// AIResponse is the canonical structured mentor reply. Reply is always
// non-empty after normalization; ArtifactUpdate and SuggestedAction are
// optional.
type AIResponse struct {
	Reply           string          `json:"reply"`
	ArtifactUpdate  *ArtifactUpdate `json:"artifactUpdate,omitempty"`
	SuggestedAction string          `json:"suggestedAction,omitempty"`
}
