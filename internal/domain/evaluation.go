package domain

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors for evaluation operations.
var (
	ErrTaskNotDone = errors.New("only a done task can be evaluated")
	ErrInvalidRank = errors.New("rank must be between 1 and 5")
)

// Evaluation is a 1..5 rating of a completed task
// swagger:model Evaluation
type Evaluation struct {
	ID        string    `json:"id"`
	TaskID    string    `json:"task_id"`
	Rank      int       `json:"rank"`
	CreatedAt time.Time `json:"created_at"`
}

// NewEvaluation returns a new Evaluation. ID is typically set by the repository on create.
func NewEvaluation(taskID string, rank int, createdAt time.Time) *Evaluation {
	return &Evaluation{
		TaskID:    taskID,
		Rank:      rank,
		CreatedAt: createdAt,
	}
}

// EvaluationRepository defines the interface for evaluation storage
type EvaluationRepository interface {
	Create(ctx context.Context, evaluation *Evaluation) error
	GetByID(ctx context.Context, id string) (*Evaluation, error)
	Delete(ctx context.Context, id string) error
	ListByTaskID(ctx context.Context, taskID string) ([]*Evaluation, error)
}

// EvaluationService defines the business logic for task evaluations. Only the
// task creator may create or delete, and only done tasks can be rated.
type EvaluationService interface {
	CreateEvaluation(ctx context.Context, taskID, callerID string, rank int) (*Evaluation, error)
	DeleteEvaluation(ctx context.Context, evaluationID, callerID string) error
}
