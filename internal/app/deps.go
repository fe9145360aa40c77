// Package app is the application controller: it ties the user session, the
// active project and the mentor protocol together, owning the in-memory
// artifact set and chat transcript for each active founder.
package app

import (
	"context"
	"errors"
	"time"

	"github.com/mrdaaan1/cofounder-ai/internal/catalog"
	mdomain "github.com/mrdaaan1/cofounder-ai/internal/mentor/domain"
	pdomain "github.com/mrdaaan1/cofounder-ai/internal/projects/domain"
)

var (
	ErrNoProject       = errors.New("no active project")
	ErrChatBusy        = errors.New("a mentor call is already in flight")
	ErrInitInFlight    = errors.New("session initialization already in flight")
	ErrStaleTurn       = errors.New("mentor reply arrived for a stale context")
	ErrUnknownArtifact = errors.New("unknown artifact id")
	ErrNothingToExport = errors.New("all artifacts are empty")
)

// ProjectStore is the durable project collection.
type ProjectStore interface {
	Create(ctx context.Context, userID, title string) (*pdomain.Project, error)
	List(ctx context.Context, userID string) ([]pdomain.Project, error)
	Get(ctx context.Context, userID, projectID string) (*pdomain.Project, error)
	Delete(ctx context.Context, userID, projectID string) error
}

// ArtifactStore persists per-project artifact sets with full-replace
// semantics.
type ArtifactStore interface {
	Load(ctx context.Context, projectID string) ([]catalog.Artifact, error)
	Save(ctx context.Context, projectID string, artifacts []catalog.Artifact) error
}

// TranscriptStore mirrors chat messages for history display; writes are
// best-effort and never block the conversation.
type TranscriptStore interface {
	Append(ctx context.Context, projectID string, msg mdomain.ChatMessage) error
	Clear(ctx context.Context, projectID string) error
}

// Converser is the mentor session protocol boundary.
type Converser interface {
	Converse(ctx context.Context, history []mdomain.ChatMessage, artifacts []catalog.Artifact) mdomain.AIResponse
}

// Deps bundles everything a session needs. Transcripts may be nil when no
// Redis is configured.
type Deps struct {
	Mentor       Converser
	Projects     ProjectStore
	Artifacts    ArtifactStore
	Transcripts  TranscriptStore
	AutosaveWait time.Duration
}

const defaultAutosaveWait = 2 * time.Second

func (d Deps) autosaveWait() time.Duration {
	if d.AutosaveWait <= 0 {
		return defaultAutosaveWait
	}
	return d.AutosaveWait
}
