package postgres

import (
	"context"
	"database/sql"

	"teamdesk/internal/domain"
)

type commentRepository struct {
	DB *sql.DB
}

func NewCommentRepository(db *sql.DB) domain.CommentRepository {
	return &commentRepository{DB: db}
}

func (r *commentRepository) Create(ctx context.Context, c *domain.Comment) error {
	query := `
		INSERT INTO task_comments (task_id, author_id, text, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query, c.TaskID, c.AuthorID, c.Text, c.CreatedAt).Scan(&c.ID)
}

func (r *commentRepository) ListByTaskID(ctx context.Context, taskID string) ([]*domain.Comment, error) {
	query := `
		SELECT id, task_id, author_id, text, created_at
		FROM task_comments
		WHERE task_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.DB.QueryContext(ctx, query, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	comments := make([]*domain.Comment, 0)
	for rows.Next() {
		c := &domain.Comment{}
		if err := rows.Scan(&c.ID, &c.TaskID, &c.AuthorID, &c.Text, &c.CreatedAt); err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}
