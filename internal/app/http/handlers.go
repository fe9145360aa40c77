package http

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrdaaan1/cofounder-ai/internal/app"
	"github.com/mrdaaan1/cofounder-ai/internal/auth"
	pdomain "github.com/mrdaaan1/cofounder-ai/internal/projects/domain"
)

func (h *Handler) bootstrap(c *gin.Context) {
	userID := auth.UserID(c)

	snap, err := h.sessions.Session(userID).Bootstrap(c.Request.Context())
	if err != nil {
		if errors.Is(err, app.ErrInitInFlight) {
			c.JSON(http.StatusConflict, gin.H{"ok": false, "error": "initialization in progress"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "session": snap})
}

func (h *Handler) logout(c *gin.Context) {
	h.sessions.Logout(c.Request.Context(), auth.UserID(c))
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) listProjects(c *gin.Context) {
	items, err := h.projects.List(c.Request.Context(), auth.UserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "projects": items})
}

func (h *Handler) createProject(c *gin.Context) {
	var req createProjectReq
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Title) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	p, err := h.projects.Create(c.Request.Context(), auth.UserID(c), strings.TrimSpace(req.Title))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"ok": true, "project": p})
}

func (h *Handler) deleteProject(c *gin.Context) {
	userID := auth.UserID(c)
	projectID := c.Param("project_id")

	if err := h.projects.Delete(c.Request.Context(), userID, projectID); err != nil {
		if errors.Is(err, pdomain.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "project not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}

	if h.transcripts != nil {
		_ = h.transcripts.Clear(c.Request.Context(), projectID)
	}
	h.sessions.Session(userID).ProjectDeleted(projectID)

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) selectProject(c *gin.Context) {
	userID := auth.UserID(c)

	snap, err := h.sessions.Session(userID).SwitchProject(c.Request.Context(), c.Param("project_id"))
	if err != nil {
		if errors.Is(err, pdomain.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "project not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "session": snap})
}

func (h *Handler) listArtifacts(c *gin.Context) {
	snap := h.sessions.Session(auth.UserID(c)).Snapshot()
	if snap.Project == nil {
		c.JSON(http.StatusConflict, gin.H{"ok": false, "error": "no active project"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"ok":                 true,
		"artifacts":          snap.Artifacts,
		"completed_count":    snap.CompletedCount,
		"completion_percent": snap.CompletionPercent,
	})
}

func (h *Handler) editArtifact(c *gin.Context) {
	var req editArtifactReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	snap, err := h.sessions.Session(auth.UserID(c)).EditArtifact(c.Param("artifact_id"), req.Content)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrNoProject):
			c.JSON(http.StatusConflict, gin.H{"ok": false, "error": "no active project"})
		case errors.Is(err, app.ErrUnknownArtifact):
			c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "unknown artifact id"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "artifacts": snap.Artifacts})
}

func (h *Handler) chat(c *gin.Context) {
	var req sendMessageReq
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Text) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	turn, err := h.sessions.Session(auth.UserID(c)).SendMessage(c.Request.Context(), strings.TrimSpace(req.Text))
	if err != nil {
		switch {
		case errors.Is(err, app.ErrNoProject):
			c.JSON(http.StatusConflict, gin.H{"ok": false, "error": "no active project"})
		case errors.Is(err, app.ErrChatBusy):
			c.JSON(http.StatusConflict, gin.H{"ok": false, "error": "a mentor reply is already pending"})
		case errors.Is(err, app.ErrStaleTurn):
			// the founder already moved on; nothing to render
			c.JSON(http.StatusGone, gin.H{"ok": false, "error": "reply discarded after project switch"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "turn": turn})
}

// messages serves the mirrored transcript when Redis is wired, falling back
// to the in-memory conversation otherwise.
func (h *Handler) messages(c *gin.Context) {
	snap := h.sessions.Session(auth.UserID(c)).Snapshot()
	if snap.Project == nil {
		c.JSON(http.StatusConflict, gin.H{"ok": false, "error": "no active project"})
		return
	}

	if h.transcripts != nil {
		history, err := h.transcripts.History(c.Request.Context(), snap.Project.ID, 50)
		if err == nil {
			c.JSON(http.StatusOK, gin.H{"ok": true, "messages": history})
			return
		}
		log.Printf("[http] transcript read failed for project %s: %v", snap.Project.ID, err)
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "messages": snap.Messages})
}

func (h *Handler) export(c *gin.Context) {
	doc, err := h.sessions.Session(auth.UserID(c)).ExportSummary()
	if err != nil {
		switch {
		case errors.Is(err, app.ErrNoProject):
			c.JSON(http.StatusConflict, gin.H{"ok": false, "error": "no active project"})
		case errors.Is(err, app.ErrNothingToExport):
			c.JSON(http.StatusConflict, gin.H{"ok": false, "error": "fill at least one artifact before exporting"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		}
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+app.ExportFilename+`"`)
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(doc))
}
