package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mrdaaan1/cofounder-ai/internal/mentor/domain"
)

const (
	transcriptKeyPrefix = "chat:transcript:" // chat:transcript:{project_id}
	transcriptTTL       = 7 * 24 * time.Hour
	transcriptCap       = 200 // keep the tail of long conversations
)

// TranscriptRepo keeps a per-project copy of the chat transcript in Redis.
// The conversation itself lives in the active session; this copy exists for
// diagnostics and history display and is written best-effort.
type TranscriptRepo struct {
	client *redis.Client
}

func NewTranscriptRepo(client *redis.Client) *TranscriptRepo {
	return &TranscriptRepo{client: client}
}

func (r *TranscriptRepo) key(projectID string) string {
	return transcriptKeyPrefix + projectID
}

// Append pushes one message onto the project's transcript and refreshes the
// TTL, trimming to the newest entries.
func (r *TranscriptRepo) Append(ctx context.Context, projectID string, msg domain.ChatMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	key := r.key(projectID)
	pipe := r.client.Pipeline()
	pipe.RPush(ctx, key, data)
	pipe.LTrim(ctx, key, -transcriptCap, -1)
	pipe.Expire(ctx, key, transcriptTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("append transcript: %w", err)
	}
	return nil
}

// History returns up to limit of the newest messages in chronological order.
func (r *TranscriptRepo) History(ctx context.Context, projectID string, limit int) ([]domain.ChatMessage, error) {
	if limit <= 0 || limit > transcriptCap {
		limit = transcriptCap
	}

	raw, err := r.client.LRange(ctx, r.key(projectID), int64(-limit), -1).Result()
	if err != nil {
		return nil, fmt.Errorf("read transcript: %w", err)
	}

	out := make([]domain.ChatMessage, 0, len(raw))
	for _, item := range raw {
		var msg domain.ChatMessage
		if err := json.Unmarshal([]byte(item), &msg); err != nil {
			continue // skip corrupt entries, keep the rest readable
		}
		out = append(out, msg)
	}
	return out, nil
}

// Clear drops the project's transcript (project deletion, logout).
func (r *TranscriptRepo) Clear(ctx context.Context, projectID string) error {
	return r.client.Del(ctx, r.key(projectID)).Err()
}
