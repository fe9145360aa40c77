package app

import (
	"context"
	"log"
	"time"

	"github.com/mrdaaan1/cofounder-ai/internal/catalog"
)

// Autosave model: each artifact mutation (re)schedules a single pending save
// for the active project. A new mutation within the quiet window cancels the
// prior timer, so rapid edits coalesce into one full-replace write. A failed
// save keeps the in-memory state as source of truth; the dirty flag stays
// set and the next mutation or flush retries.

func (s *Session) scheduleSaveLocked() {
	s.dirty = true
	s.stopSaveTimerLocked()
	s.saveTimer = time.AfterFunc(s.deps.autosaveWait(), func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.flush(ctx)
	})
}

func (s *Session) stopSaveTimerLocked() {
	if s.saveTimer != nil {
		s.saveTimer.Stop()
		s.saveTimer = nil
	}
}

// flush writes the current artifact set now if there are unsaved changes.
// Called by the autosave timer and synchronously before switch/logout/evict.
func (s *Session) flush(ctx context.Context) {
	s.mu.Lock()
	s.stopSaveTimerLocked()
	if !s.dirty || s.project == nil {
		s.mu.Unlock()
		return
	}
	projectID := s.project.ID
	artifacts := make([]catalog.Artifact, len(s.artifacts))
	copy(artifacts, s.artifacts)
	s.dirty = false
	s.mu.Unlock()

	if err := s.deps.Artifacts.Save(ctx, projectID, artifacts); err != nil {
		log.Printf("[app] autosave failed for project %s: %v", projectID, err)
		s.mu.Lock()
		// retry on the next cycle; memory stays authoritative
		if s.project != nil && s.project.ID == projectID {
			s.dirty = true
		}
		s.mu.Unlock()
	}
}
