package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mrdaaan1/cofounder-ai/internal/catalog"
)

// ArtifactRepo persists the per-project artifact set. Saves are full-replace:
// the set is small and fixed, so rewriting all rows beats diffing them.
type ArtifactRepo struct {
	db *pgxpool.Pool
}

func NewArtifactRepo(db *pgxpool.Pool) *ArtifactRepo {
	return &ArtifactRepo{db: db}
}

// Load returns a catalog-shaped artifact set for the project. Slots missing
// from storage come back as defaults, so the result is never short even
// after the catalog grows.
func (r *ArtifactRepo) Load(ctx context.Context, projectID string) ([]catalog.Artifact, error) {
	const q = `
select artifact_type, content, is_completed, updated_at
from artifacts
where project_id = $1;
`
	rows, err := r.db.Query(ctx, q, projectID)
	if err != nil {
		return nil, fmt.Errorf("load artifacts: %w", err)
	}
	defer rows.Close()

	stored := make([]catalog.Artifact, 0, catalog.Size())
	for rows.Next() {
		var a catalog.Artifact
		if err := rows.Scan(&a.ID, &a.Content, &a.IsCompleted, &a.UpdatedAt); err != nil {
			return nil, err
		}
		stored = append(stored, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return catalog.Backfill(stored), nil
}

// Save replaces the project's stored artifacts with the given set and
// refreshes the project's updated_at, atomically. On failure nothing is
// written and the caller's in-memory state stays the source of truth.
func (r *ArtifactRepo) Save(ctx context.Context, projectID string, artifacts []catalog.Artifact) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `delete from artifacts where project_id = $1`, projectID); err != nil {
		return fmt.Errorf("clear artifacts: %w", err)
	}

	const ins = `
insert into artifacts (project_id, artifact_type, content, is_completed, updated_at)
values ($1, $2, $3, $4, now());
`
	for _, a := range artifacts {
		if _, err := tx.Exec(ctx, ins, projectID, a.ID, a.Content, a.IsCompleted); err != nil {
			return fmt.Errorf("insert artifact %s: %w", a.ID, err)
		}
	}

	if _, err := tx.Exec(ctx, `update projects set updated_at = now() where id = $1`, projectID); err != nil {
		return fmt.Errorf("touch project: %w", err)
	}

	return tx.Commit(ctx)
}
