package domain

import (
	"errors"
	"time"
)

// DefaultTitle names the project auto-created on a founder's first login.
const DefaultTitle = "Мой первый проект"

// Project is a founder's isolated workspace: one artifact set, one active
// conversation.
type Project struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

var ErrNotFound = errors.New("project not found")
