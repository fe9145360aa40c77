package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mrdaaan1/cofounder-ai/internal/projects/domain"
)

// ProjectRepo provides persistence operations for projects.
type ProjectRepo struct {
	db *pgxpool.Pool
}

func NewProjectRepo(db *pgxpool.Pool) *ProjectRepo {
	return &ProjectRepo{db: db}
}

// Create inserts a new project for the given user with both timestamps set
// to now.
func (r *ProjectRepo) Create(ctx context.Context, userID, title string) (*domain.Project, error) {
	if userID == "" {
		return nil, fmt.Errorf("user id required")
	}
	if title == "" {
		title = domain.DefaultTitle
	}

	const q = `
insert into projects (id, user_id, title, created_at, updated_at)
values ($1, $2, $3, now(), now())
returning id, user_id, title, created_at, updated_at;
`
	var p domain.Project
	err := r.db.QueryRow(ctx, q, uuid.New().String(), userID, title).
		Scan(&p.ID, &p.UserID, &p.Title, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}
	return &p, nil
}

// List returns the user's projects ordered by updated_at descending; the
// first entry is the one that auto-loads on login.
func (r *ProjectRepo) List(ctx context.Context, userID string) ([]domain.Project, error) {
	const q = `
select id, user_id, title, created_at, updated_at
from projects
where user_id = $1
order by updated_at desc;
`
	rows, err := r.db.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Project, 0, 8)
	for rows.Next() {
		var p domain.Project
		if err := rows.Scan(&p.ID, &p.UserID, &p.Title, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Get fetches one project scoped to its owner.
func (r *ProjectRepo) Get(ctx context.Context, userID, projectID string) (*domain.Project, error) {
	const q = `
select id, user_id, title, created_at, updated_at
from projects
where user_id = $1 and id = $2;
`
	var p domain.Project
	err := r.db.QueryRow(ctx, q, userID, projectID).
		Scan(&p.ID, &p.UserID, &p.Title, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// Delete removes a project and cascades artifact deletion in one
// transaction.
func (r *ProjectRepo) Delete(ctx context.Context, userID, projectID string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin delete: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `delete from artifacts where project_id = $1`, projectID); err != nil {
		return fmt.Errorf("delete artifacts: %w", err)
	}

	ct, err := tx.Exec(ctx, `delete from projects where user_id = $1 and id = $2`, userID, projectID)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrNotFound
	}

	return tx.Commit(ctx)
}
