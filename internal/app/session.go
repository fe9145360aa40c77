package app

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/mrdaaan1/cofounder-ai/internal/catalog"
	mdomain "github.com/mrdaaan1/cofounder-ai/internal/mentor/domain"
	pdomain "github.com/mrdaaan1/cofounder-ai/internal/projects/domain"
)

// Greeting opens every fresh conversation; switching projects resets the
// transcript back to exactly this message.
const Greeting = "Привет! Я твой ИИ-ментор для построения стартапа. Расскажи мне, на какой стадии сейчас твой проект? У тебя есть только идея, или уже есть первые результаты?"

// Session is one founder's live workspace: the active project, its in-memory
// artifact set and the running conversation. Exactly one mutator exists (the
// founder's own requests), so a single mutex around the state is enough.
type Session struct {
	userID string
	deps   Deps

	mu           sync.Mutex
	project      *pdomain.Project
	artifacts    []catalog.Artifact
	messages     []mdomain.ChatMessage
	lastTouched  string // artifact id the mentor updated most recently
	epoch        uint64 // bumped on switch/logout; stale replies carry an older value
	chatPending  bool
	initInFlight bool
	dirty        bool
	saveTimer    *time.Timer
	lastActive   time.Time
}

func newSession(userID string, deps Deps) *Session {
	return &Session{
		userID:     userID,
		deps:       deps,
		artifacts:  catalog.Defaults(),
		messages:   []mdomain.ChatMessage{{Role: mdomain.RoleMentor, Text: Greeting}},
		lastActive: time.Now(),
	}
}

// Snapshot is the controller state handed to the presentation layer.
type Snapshot struct {
	Project           *pdomain.Project      `json:"project"`
	Artifacts         []catalog.Artifact    `json:"artifacts"`
	Messages          []mdomain.ChatMessage `json:"messages"`
	LastTouchedID     string                `json:"last_touched_id,omitempty"`
	CompletedCount    int                   `json:"completed_count"`
	CompletionPercent int                   `json:"completion_percent"`
}

// ChatTurn is the outcome of one sendMessage intent.
type ChatTurn struct {
	Response mdomain.AIResponse `json:"response"`
	Snapshot Snapshot           `json:"snapshot"`
}

// Bootstrap resolves the session's initial project: the most recently
// updated one if any exist, otherwise a newly created default-named project.
// Idempotent once a project is loaded; a concurrent trigger while
// initialization is in flight is rejected so only one project can ever be
// created.
func (s *Session) Bootstrap(ctx context.Context) (Snapshot, error) {
	s.mu.Lock()
	s.lastActive = time.Now()
	if s.project != nil {
		snap := s.snapshotLocked()
		s.mu.Unlock()
		return snap, nil
	}
	if s.initInFlight {
		s.mu.Unlock()
		return Snapshot{}, ErrInitInFlight
	}
	s.initInFlight = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.initInFlight = false
		s.mu.Unlock()
	}()

	list, err := s.deps.Projects.List(ctx, s.userID)
	if err != nil {
		return Snapshot{}, err
	}

	var project *pdomain.Project
	if len(list) > 0 {
		project = &list[0] // most recently updated first
	} else {
		project, err = s.deps.Projects.Create(ctx, s.userID, pdomain.DefaultTitle)
		if err != nil {
			return Snapshot{}, err
		}
	}

	artifacts, err := s.deps.Artifacts.Load(ctx, project.ID)
	if err != nil {
		return Snapshot{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.project = project
	s.artifacts = artifacts
	s.resetTranscriptLocked()
	return s.snapshotLocked(), nil
}

// SendMessage runs one conversation turn. A second message while a mentor
// call is outstanding is rejected; the protocol has no concept of concurrent
// turns. A reply that arrives after the founder switched projects or logged
// out is discarded by epoch mismatch.
func (s *Session) SendMessage(ctx context.Context, text string) (ChatTurn, error) {
	s.mu.Lock()
	if s.project == nil {
		s.mu.Unlock()
		return ChatTurn{}, ErrNoProject
	}
	if s.chatPending {
		s.mu.Unlock()
		return ChatTurn{}, ErrChatBusy
	}
	s.chatPending = true
	s.lastActive = time.Now()

	userMsg := mdomain.ChatMessage{Role: mdomain.RoleUser, Text: text}
	s.messages = append(s.messages, userMsg)

	history := make([]mdomain.ChatMessage, len(s.messages))
	copy(history, s.messages)
	artifacts := make([]catalog.Artifact, len(s.artifacts))
	copy(artifacts, s.artifacts)
	projectID := s.project.ID
	epoch := s.epoch
	s.mu.Unlock()

	go s.mirror(projectID, userMsg)

	resp := s.deps.Mentor.Converse(ctx, history, artifacts)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.chatPending = false

	if s.project == nil || s.project.ID != projectID || s.epoch != epoch {
		log.Printf("[app] discarding stale mentor reply for project %s", projectID)
		return ChatTurn{}, ErrStaleTurn
	}

	mentorMsg := mdomain.ChatMessage{Role: mdomain.RoleMentor, Text: resp.Reply}
	s.messages = append(s.messages, mentorMsg)
	go s.mirror(projectID, mentorMsg)

	if u := resp.ArtifactUpdate; u != nil {
		for i := range s.artifacts {
			if s.artifacts[i].ID == u.ID {
				s.artifacts[i].Content = u.Content
				s.artifacts[i].IsCompleted = u.IsCompleted
				s.lastTouched = u.ID
				s.scheduleSaveLocked()
				break
			}
		}
	}

	return ChatTurn{Response: resp, Snapshot: s.snapshotLocked()}, nil
}

// EditArtifact is the founder's direct override of an artifact's content,
// independent of chat. Completion state is untouched. Concurrent with an
// in-flight mentor update to the same artifact, last write wins.
func (s *Session) EditArtifact(id, content string) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.project == nil {
		return Snapshot{}, ErrNoProject
	}

	for i := range s.artifacts {
		if s.artifacts[i].ID == id {
			s.artifacts[i].Content = content
			s.lastActive = time.Now()
			s.scheduleSaveLocked()
			return s.snapshotLocked(), nil
		}
	}
	return Snapshot{}, ErrUnknownArtifact
}

// SwitchProject activates another of the founder's projects: pending changes
// for the old project are flushed, its late mentor replies are invalidated,
// artifacts are reloaded and the conversation starts over from the greeting.
func (s *Session) SwitchProject(ctx context.Context, projectID string) (Snapshot, error) {
	project, err := s.deps.Projects.Get(ctx, s.userID, projectID)
	if err != nil {
		return Snapshot{}, err
	}

	s.flush(ctx)

	artifacts, err := s.deps.Artifacts.Load(ctx, project.ID)
	if err != nil {
		return Snapshot{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.project = project
	s.artifacts = artifacts
	s.epoch++
	s.lastTouched = ""
	s.lastActive = time.Now()
	s.resetTranscriptLocked()
	return s.snapshotLocked(), nil
}

// Logout flushes pending changes and resets the session to its
// pre-authenticated shape: catalog defaults, greeting-only transcript, no
// active project.
func (s *Session) Logout(ctx context.Context) {
	s.flush(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.project = nil
	s.artifacts = catalog.Defaults()
	s.epoch++
	s.lastTouched = ""
	s.resetTranscriptLocked()
}

// ProjectDeleted reacts to the active project being removed: the session
// falls back to the uninitialized state and the next bootstrap picks or
// creates a project again.
func (s *Session) ProjectDeleted(projectID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.project == nil || s.project.ID != projectID {
		return
	}
	s.stopSaveTimerLocked()
	s.dirty = false
	s.project = nil
	s.artifacts = catalog.Defaults()
	s.epoch++
	s.lastTouched = ""
	s.resetTranscriptLocked()
}

// Snapshot returns the current controller state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() Snapshot {
	artifacts := make([]catalog.Artifact, len(s.artifacts))
	copy(artifacts, s.artifacts)
	messages := make([]mdomain.ChatMessage, len(s.messages))
	copy(messages, s.messages)

	completed := 0
	for _, a := range artifacts {
		if a.IsCompleted {
			completed++
		}
	}
	percent := 0
	if len(artifacts) > 0 {
		percent = completed * 100 / len(artifacts)
	}

	var project *pdomain.Project
	if s.project != nil {
		p := *s.project
		project = &p
	}

	return Snapshot{
		Project:           project,
		Artifacts:         artifacts,
		Messages:          messages,
		LastTouchedID:     s.lastTouched,
		CompletedCount:    completed,
		CompletionPercent: percent,
	}
}

func (s *Session) resetTranscriptLocked() {
	s.messages = []mdomain.ChatMessage{{Role: mdomain.RoleMentor, Text: Greeting}}
}

func (s *Session) mirror(projectID string, msg mdomain.ChatMessage) {
	if s.deps.Transcripts == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.deps.Transcripts.Append(ctx, projectID, msg); err != nil {
		log.Printf("[app] transcript mirror failed for project %s: %v", projectID, err)
	}
}
