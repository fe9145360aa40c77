package app

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrdaaan1/cofounder-ai/internal/catalog"
	mdomain "github.com/mrdaaan1/cofounder-ai/internal/mentor/domain"
	pdomain "github.com/mrdaaan1/cofounder-ai/internal/projects/domain"
)

type fakeStore struct {
	mu        sync.Mutex
	projects  []pdomain.Project
	artifacts map[string][]catalog.Artifact
	saves     int
	creates   int
	failSave  bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{artifacts: make(map[string][]catalog.Artifact)}
}

func (f *fakeStore) Create(_ context.Context, userID, title string) (*pdomain.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates++
	p := pdomain.Project{
		ID:        uuid.New().String(),
		UserID:    userID,
		Title:     title,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	f.projects = append(f.projects, p)
	return &p, nil
}

func (f *fakeStore) List(_ context.Context, userID string) ([]pdomain.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]pdomain.Project, 0)
	for _, p := range f.projects {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	// updated_at descending, like the repository
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[j].UpdatedAt.After(out[i].UpdatedAt) {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	return out, nil
}

func (f *fakeStore) Get(_ context.Context, userID, projectID string) (*pdomain.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.projects {
		if p.UserID == userID && p.ID == projectID {
			cp := p
			return &cp, nil
		}
	}
	return nil, pdomain.ErrNotFound
}

func (f *fakeStore) Delete(_ context.Context, userID, projectID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, p := range f.projects {
		if p.UserID == userID && p.ID == projectID {
			f.projects = append(f.projects[:i], f.projects[i+1:]...)
			delete(f.artifacts, projectID)
			return nil
		}
	}
	return pdomain.ErrNotFound
}

func (f *fakeStore) Load(_ context.Context, projectID string) ([]catalog.Artifact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return catalog.Backfill(f.artifacts[projectID]), nil
}

func (f *fakeStore) Save(_ context.Context, projectID string, artifacts []catalog.Artifact) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failSave {
		return fmt.Errorf("storage rejected write")
	}
	f.saves++
	cp := make([]catalog.Artifact, len(artifacts))
	copy(cp, artifacts)
	f.artifacts[projectID] = cp
	return nil
}

func (f *fakeStore) saveCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.saves
}

type scriptedMentor struct {
	mu      sync.Mutex
	resp    mdomain.AIResponse
	block   chan struct{} // when set, Converse waits until closed
	started chan struct{}
}

func (m *scriptedMentor) Converse(_ context.Context, _ []mdomain.ChatMessage, _ []catalog.Artifact) mdomain.AIResponse {
	m.mu.Lock()
	block := m.block
	started := m.started
	resp := m.resp
	m.mu.Unlock()

	if started != nil {
		close(started)
		m.mu.Lock()
		m.started = nil
		m.mu.Unlock()
	}
	if block != nil {
		<-block
	}
	return resp
}

func newTestSession(t *testing.T, store *fakeStore, mentor Converser) *Session {
	t.Helper()
	if mentor == nil {
		mentor = &scriptedMentor{resp: mdomain.AIResponse{Reply: "ok"}}
	}
	return newSession("user-1", Deps{
		Mentor:       mentor,
		Projects:     store,
		Artifacts:    store,
		AutosaveWait: 30 * time.Millisecond,
	})
}

func TestBootstrap_FirstLoginCreatesOneProject(t *testing.T) {
	store := newFakeStore()
	s := newTestSession(t, store, nil)

	snap, err := s.Bootstrap(context.Background())
	require.NoError(t, err)

	require.NotNil(t, snap.Project)
	assert.Equal(t, pdomain.DefaultTitle, snap.Project.Title)
	assert.Equal(t, 1, store.creates)

	require.Len(t, snap.Artifacts, 11)
	for _, a := range snap.Artifacts {
		assert.Empty(t, a.Content)
		assert.False(t, a.IsCompleted)
	}

	require.Len(t, snap.Messages, 1)
	assert.Equal(t, mdomain.RoleMentor, snap.Messages[0].Role)
	assert.Equal(t, Greeting, snap.Messages[0].Text)
	assert.Equal(t, 0, snap.CompletionPercent)
}

func TestBootstrap_PicksMostRecentlyUpdatedProject(t *testing.T) {
	store := newFakeStore()
	older, _ := store.Create(context.Background(), "user-1", "Старый")
	newer, _ := store.Create(context.Background(), "user-1", "Новый")

	store.mu.Lock()
	for i := range store.projects {
		if store.projects[i].ID == older.ID {
			store.projects[i].UpdatedAt = time.Now().Add(-time.Hour)
		}
	}
	store.mu.Unlock()

	s := newTestSession(t, store, nil)
	snap, err := s.Bootstrap(context.Background())
	require.NoError(t, err)
	assert.Equal(t, newer.ID, snap.Project.ID)
	assert.Equal(t, 2, store.creates, "no extra project created")
}

func TestBootstrap_Idempotent(t *testing.T) {
	store := newFakeStore()
	s := newTestSession(t, store, nil)

	first, err := s.Bootstrap(context.Background())
	require.NoError(t, err)
	second, err := s.Bootstrap(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first.Project.ID, second.Project.ID)
	assert.Equal(t, 1, store.creates)
}

func TestBootstrap_ConcurrentTriggersCreateExactlyOne(t *testing.T) {
	store := newFakeStore()
	s := newTestSession(t, store, nil)

	const n = 8
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			_, err := s.Bootstrap(context.Background())
			if err != nil {
				assert.ErrorIs(t, err, ErrInitInFlight)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, store.creates, "in-flight guard must suppress duplicates")
}

func TestSendMessage_MergesArtifactUpdate(t *testing.T) {
	store := newFakeStore()
	mentor := &scriptedMentor{resp: mdomain.AIResponse{
		Reply: "Отлично!",
		ArtifactUpdate: &mdomain.ArtifactUpdate{
			ID: "idea", Content: "X", IsCompleted: true,
		},
	}}
	s := newTestSession(t, store, mentor)

	_, err := s.Bootstrap(context.Background())
	require.NoError(t, err)

	turn, err := s.SendMessage(context.Background(), "Моя идея — X")
	require.NoError(t, err)

	assert.Equal(t, "Отлично!", turn.Response.Reply)
	assert.Equal(t, "idea", turn.Snapshot.LastTouchedID)

	// transcript: greeting, user message, mentor reply
	require.Len(t, turn.Snapshot.Messages, 3)
	assert.Equal(t, "Отлично!", turn.Snapshot.Messages[2].Text)

	for _, a := range turn.Snapshot.Artifacts {
		if a.ID == "idea" {
			assert.Equal(t, "X", a.Content)
			assert.True(t, a.IsCompleted)
		} else {
			assert.Empty(t, a.Content)
		}
	}
	assert.Equal(t, 1, turn.Snapshot.CompletedCount)
}

func TestSendMessage_FallbackReplyLeavesArtifactsAlone(t *testing.T) {
	store := newFakeStore()
	mentor := &scriptedMentor{resp: mdomain.AIResponse{Reply: "Не удалось подключиться."}}
	s := newTestSession(t, store, mentor)

	_, err := s.Bootstrap(context.Background())
	require.NoError(t, err)

	turn, err := s.SendMessage(context.Background(), "привет")
	require.NoError(t, err)

	assert.Empty(t, turn.Snapshot.LastTouchedID)
	for _, a := range turn.Snapshot.Artifacts {
		assert.Empty(t, a.Content)
	}
	// no artifact mutation, so no autosave either
	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, 0, store.saveCount())
}

func TestSendMessage_RejectsSecondTurnWhileInFlight(t *testing.T) {
	store := newFakeStore()
	mentor := &scriptedMentor{
		resp:    mdomain.AIResponse{Reply: "ok"},
		block:   make(chan struct{}),
		started: make(chan struct{}),
	}
	s := newTestSession(t, store, mentor)

	_, err := s.Bootstrap(context.Background())
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, err := s.SendMessage(context.Background(), "первое")
		assert.NoError(t, err)
	}()

	<-mentor.started
	_, err = s.SendMessage(context.Background(), "второе")
	assert.ErrorIs(t, err, ErrChatBusy)

	close(mentor.block)
	<-done

	// the turn is over, sending works again
	_, err = s.SendMessage(context.Background(), "третье")
	assert.NoError(t, err)
}

func TestSendMessage_StaleReplyDiscardedAfterSwitch(t *testing.T) {
	store := newFakeStore()
	p1, _ := store.Create(context.Background(), "user-1", "Первый")
	p2, _ := store.Create(context.Background(), "user-1", "Второй")
	_ = p1

	mentor := &scriptedMentor{
		resp: mdomain.AIResponse{
			Reply:          "Поздний ответ",
			ArtifactUpdate: &mdomain.ArtifactUpdate{ID: "idea", Content: "старый проект", IsCompleted: true},
		},
		block:   make(chan struct{}),
		started: make(chan struct{}),
	}
	s := newTestSession(t, store, mentor)

	_, err := s.Bootstrap(context.Background())
	require.NoError(t, err)

	errCh := make(chan error, 1)
	go func() {
		_, err := s.SendMessage(context.Background(), "вопрос")
		errCh <- err
	}()

	<-mentor.started
	_, err = s.SwitchProject(context.Background(), p2.ID)
	require.NoError(t, err)

	close(mentor.block)
	assert.ErrorIs(t, <-errCh, ErrStaleTurn)

	snap := s.Snapshot()
	assert.Equal(t, p2.ID, snap.Project.ID)
	for _, a := range snap.Artifacts {
		assert.Empty(t, a.Content, "stale update must not touch the new project")
	}
	require.Len(t, snap.Messages, 1, "transcript stays at the greeting")
}

func TestEditArtifact_ContentOnly(t *testing.T) {
	store := newFakeStore()
	mentor := &scriptedMentor{resp: mdomain.AIResponse{
		Reply:          "Готово",
		ArtifactUpdate: &mdomain.ArtifactUpdate{ID: "mvp", Content: "бот", IsCompleted: true},
	}}
	s := newTestSession(t, store, mentor)

	_, err := s.Bootstrap(context.Background())
	require.NoError(t, err)
	_, err = s.SendMessage(context.Background(), "mvp готов")
	require.NoError(t, err)

	snap, err := s.EditArtifact("mvp", "бот v2")
	require.NoError(t, err)

	for _, a := range snap.Artifacts {
		if a.ID == "mvp" {
			assert.Equal(t, "бот v2", a.Content)
			assert.True(t, a.IsCompleted, "direct edit must not change completion")
		}
	}
}

func TestEditArtifact_UnknownID(t *testing.T) {
	store := newFakeStore()
	s := newTestSession(t, store, nil)
	_, err := s.Bootstrap(context.Background())
	require.NoError(t, err)

	_, err = s.EditArtifact("elevator_pitch", "x")
	assert.ErrorIs(t, err, ErrUnknownArtifact)
}

func TestAutosave_CoalescesRapidEdits(t *testing.T) {
	store := newFakeStore()
	s := newTestSession(t, store, nil)

	snap, err := s.Bootstrap(context.Background())
	require.NoError(t, err)
	projectID := snap.Project.ID

	for i := 0; i < 5; i++ {
		_, err := s.EditArtifact("idea", fmt.Sprintf("draft %d", i))
		require.NoError(t, err)
	}

	require.Eventually(t, func() bool { return store.saveCount() == 1 },
		time.Second, 5*time.Millisecond, "rapid edits should coalesce into one save")

	saved, err := store.Load(context.Background(), projectID)
	require.NoError(t, err)
	for _, a := range saved {
		if a.ID == "idea" {
			assert.Equal(t, "draft 4", a.Content, "last write before the window elapsed wins")
		}
	}

	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, 1, store.saveCount(), "timer fires at most once per quiet window")
}

func TestAutosave_FailedSaveRetriesNextCycle(t *testing.T) {
	store := newFakeStore()
	s := newTestSession(t, store, nil)

	snap, err := s.Bootstrap(context.Background())
	require.NoError(t, err)

	store.mu.Lock()
	store.failSave = true
	store.mu.Unlock()

	_, err = s.EditArtifact("idea", "важный текст")
	require.NoError(t, err)
	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, 0, store.saveCount())

	// memory still authoritative
	assert.Equal(t, "важный текст", findArtifact(s.Snapshot().Artifacts, "idea").Content)

	store.mu.Lock()
	store.failSave = false
	store.mu.Unlock()

	_, err = s.EditArtifact("idea", "важный текст v2")
	require.NoError(t, err)

	require.Eventually(t, func() bool { return store.saveCount() == 1 }, time.Second, 5*time.Millisecond)
	saved, _ := store.Load(context.Background(), snap.Project.ID)
	assert.Equal(t, "важный текст v2", findArtifact(saved, "idea").Content)
}

func TestSwitchProject_ResetsConversationAndReloads(t *testing.T) {
	store := newFakeStore()
	s := newTestSession(t, store, nil)

	snap, err := s.Bootstrap(context.Background())
	require.NoError(t, err)
	first := snap.Project.ID

	second, err := store.Create(context.Background(), "user-1", "Второй")
	require.NoError(t, err)

	_, err = s.SendMessage(context.Background(), "наполняем транскрипт")
	require.NoError(t, err)
	_, err = s.EditArtifact("idea", "идея первого проекта")
	require.NoError(t, err)

	snap, err = s.SwitchProject(context.Background(), second.ID)
	require.NoError(t, err)

	assert.Equal(t, second.ID, snap.Project.ID)
	require.Len(t, snap.Messages, 1)
	assert.Equal(t, Greeting, snap.Messages[0].Text)
	for _, a := range snap.Artifacts {
		assert.Empty(t, a.Content)
	}

	// pending edit for the first project was flushed on the way out
	saved, _ := store.Load(context.Background(), first)
	assert.Equal(t, "идея первого проекта", findArtifact(saved, "idea").Content)
}

func TestSwitchProject_SameProjectIsIdempotent(t *testing.T) {
	store := newFakeStore()
	s := newTestSession(t, store, nil)

	snap, err := s.Bootstrap(context.Background())
	require.NoError(t, err)
	id := snap.Project.ID

	_, err = s.EditArtifact("team", "CEO")
	require.NoError(t, err)
	require.Eventually(t, func() bool { return store.saveCount() == 1 }, time.Second, 5*time.Millisecond)

	again, err := s.SwitchProject(context.Background(), id)
	require.NoError(t, err)

	assert.Equal(t, id, again.Project.ID)
	require.Len(t, again.Messages, 1)
	assert.Equal(t, Greeting, again.Messages[0].Text)
	assert.Equal(t, "CEO", findArtifact(again.Artifacts, "team").Content)
	assert.Equal(t, 1, store.saveCount(), "no duplicate writes beyond the triggered reload")
}

func TestSwitchProject_UnknownProject(t *testing.T) {
	store := newFakeStore()
	s := newTestSession(t, store, nil)
	_, err := s.Bootstrap(context.Background())
	require.NoError(t, err)

	_, err = s.SwitchProject(context.Background(), uuid.New().String())
	assert.ErrorIs(t, err, pdomain.ErrNotFound)
}

func TestExportSummary_Format(t *testing.T) {
	store := newFakeStore()
	s := newTestSession(t, store, nil)
	_, err := s.Bootstrap(context.Background())
	require.NoError(t, err)

	_, err = s.EditArtifact("idea", "Проблема и решение")
	require.NoError(t, err)

	doc, err := s.ExportSummary()
	require.NoError(t, err)

	assert.Contains(t, doc, "# Питч-дек проекта\n")
	assert.Contains(t, doc, "## Идея (Проблема и Решение)\nПроблема и решение\n")
	assert.Contains(t, doc, "## Команда\nИнформация отсутствует\n")
	assert.Contains(t, doc, "\n---\n\n")
}

func TestExportSummary_EmptyDeckRefused(t *testing.T) {
	store := newFakeStore()
	s := newTestSession(t, store, nil)
	_, err := s.Bootstrap(context.Background())
	require.NoError(t, err)

	_, err = s.ExportSummary()
	assert.ErrorIs(t, err, ErrNothingToExport)
}

func TestLogout_ResetsEverything(t *testing.T) {
	store := newFakeStore()
	s := newTestSession(t, store, nil)

	snap, err := s.Bootstrap(context.Background())
	require.NoError(t, err)
	id := snap.Project.ID

	_, err = s.EditArtifact("idea", "черновик")
	require.NoError(t, err)

	s.Logout(context.Background())

	after := s.Snapshot()
	assert.Nil(t, after.Project)
	for _, a := range after.Artifacts {
		assert.Empty(t, a.Content)
	}
	require.Len(t, after.Messages, 1)
	assert.Equal(t, Greeting, after.Messages[0].Text)

	// pending edit was flushed before the reset
	saved, _ := store.Load(context.Background(), id)
	assert.Equal(t, "черновик", findArtifact(saved, "idea").Content)
}

func findArtifact(artifacts []catalog.Artifact, id string) catalog.Artifact {
	for _, a := range artifacts {
		if a.ID == id {
			return a
		}
	}
	return catalog.Artifact{}
}
