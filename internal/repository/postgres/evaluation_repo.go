package postgres

import (
	"context"
	"database/sql"
	"errors"

	"teamdesk/internal/domain"
)

type evaluationRepository struct {
	DB *sql.DB
}

func NewEvaluationRepository(db *sql.DB) domain.EvaluationRepository {
	return &evaluationRepository{DB: db}
}

func (r *evaluationRepository) Create(ctx context.Context, e *domain.Evaluation) error {
	query := `
		INSERT INTO evaluations (task_id, rank, created_at)
		VALUES ($1, $2, $3)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query, e.TaskID, e.Rank, e.CreatedAt).Scan(&e.ID)
}

func (r *evaluationRepository) GetByID(ctx context.Context, id string) (*domain.Evaluation, error) {
	query := `SELECT id, task_id, rank, created_at FROM evaluations WHERE id = $1`
	e := &domain.Evaluation{}
	err := r.DB.QueryRowContext(ctx, query, id).Scan(&e.ID, &e.TaskID, &e.Rank, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *evaluationRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM evaluations WHERE id = $1`
	result, err := r.DB.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *evaluationRepository) ListByTaskID(ctx context.Context, taskID string) ([]*domain.Evaluation, error) {
	query := `SELECT id, task_id, rank, created_at FROM evaluations WHERE task_id = $1 ORDER BY created_at DESC`
	rows, err := r.DB.QueryContext(ctx, query, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	evals := make([]*domain.Evaluation, 0)
	for rows.Next() {
		e := &domain.Evaluation{}
		if err := rows.Scan(&e.ID, &e.TaskID, &e.Rank, &e.CreatedAt); err != nil {
			return nil, err
		}
		evals = append(evals, e)
	}
	return evals, rows.Err()
}
