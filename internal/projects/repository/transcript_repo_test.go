package repository

import (
	"context"
	"fmt"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrdaaan1/cofounder-ai/internal/mentor/domain"
)

func setupTranscriptRepo(t *testing.T) *TranscriptRepo {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewTranscriptRepo(client)
}

func TestTranscriptRepo_AppendAndHistory(t *testing.T) {
	repo := setupTranscriptRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Append(ctx, "p1", domain.ChatMessage{Role: domain.RoleMentor, Text: "Привет!"}))
	require.NoError(t, repo.Append(ctx, "p1", domain.ChatMessage{Role: domain.RoleUser, Text: "У меня есть идея."}))

	history, err := repo.History(ctx, "p1", 10)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, domain.RoleMentor, history[0].Role)
	assert.Equal(t, "У меня есть идея.", history[1].Text)
}

func TestTranscriptRepo_ProjectsAreIsolated(t *testing.T) {
	repo := setupTranscriptRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Append(ctx, "p1", domain.ChatMessage{Role: domain.RoleUser, Text: "один"}))
	require.NoError(t, repo.Append(ctx, "p2", domain.ChatMessage{Role: domain.RoleUser, Text: "два"}))

	h1, err := repo.History(ctx, "p1", 10)
	require.NoError(t, err)
	require.Len(t, h1, 1)
	assert.Equal(t, "один", h1[0].Text)
}

func TestTranscriptRepo_TrimsToCap(t *testing.T) {
	repo := setupTranscriptRepo(t)
	ctx := context.Background()

	for i := 0; i < transcriptCap+25; i++ {
		require.NoError(t, repo.Append(ctx, "p1", domain.ChatMessage{Role: domain.RoleUser, Text: fmt.Sprintf("msg %d", i)}))
	}

	history, err := repo.History(ctx, "p1", transcriptCap)
	require.NoError(t, err)
	assert.Len(t, history, transcriptCap)
	assert.Equal(t, "msg 25", history[0].Text, "oldest messages are trimmed first")
}

func TestTranscriptRepo_Clear(t *testing.T) {
	repo := setupTranscriptRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Append(ctx, "p1", domain.ChatMessage{Role: domain.RoleUser, Text: "x"}))
	require.NoError(t, repo.Clear(ctx, "p1"))

	history, err := repo.History(ctx, "p1", 10)
	require.NoError(t, err)
	assert.Empty(t, history)
}
