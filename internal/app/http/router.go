// Package http maps founder intents onto the application controller.
package http

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/mrdaaan1/cofounder-ai/internal/app"
	mdomain "github.com/mrdaaan1/cofounder-ai/internal/mentor/domain"
)

// TranscriptStore adds transcript reads on top of what the controller needs.
type TranscriptStore interface {
	app.TranscriptStore
	History(ctx context.Context, projectID string, limit int) ([]mdomain.ChatMessage, error)
}

// Handler exposes the controller and project lifecycle over Gin.
type Handler struct {
	sessions    *app.Manager
	projects    app.ProjectStore
	transcripts TranscriptStore // may be nil
}

func New(sessions *app.Manager, projects app.ProjectStore, transcripts TranscriptStore) *Handler {
	return &Handler{
		sessions:    sessions,
		projects:    projects,
		transcripts: transcripts,
	}
}

func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.POST("/session/bootstrap", h.bootstrap)
	rg.POST("/logout", h.logout)

	rg.GET("/projects", h.listProjects)
	rg.POST("/projects", h.createProject)
	rg.DELETE("/projects/:project_id", h.deleteProject)
	rg.POST("/projects/:project_id/select", h.selectProject)

	rg.GET("/artifacts", h.listArtifacts)
	rg.PUT("/artifacts/:artifact_id", h.editArtifact)

	rg.POST("/chat", h.chat)
	rg.GET("/messages", h.messages)
	rg.GET("/export", h.export)
}
