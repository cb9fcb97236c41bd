package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"teamdesk/internal/domain"
)

type evaluationService struct {
	evaluationRepo domain.EvaluationRepository
	taskRepo       domain.TaskRepository
	contextTimeout time.Duration
}

func NewEvaluationService(evaluationRepo domain.EvaluationRepository, taskRepo domain.TaskRepository, timeout time.Duration) domain.EvaluationService {
	return &evaluationService{
		evaluationRepo: evaluationRepo,
		taskRepo:       taskRepo,
		contextTimeout: timeout,
	}
}

func (s *evaluationService) CreateEvaluation(ctx context.Context, taskID, callerID string, rank int) (*domain.Evaluation, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if rank < 1 || rank > 5 {
		return nil, domain.ErrInvalidRank
	}
	task, err := s.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get task: %w", err)
	}
	if task.CreatedByID != callerID {
		return nil, domain.ErrForbidden
	}
	if task.Status != domain.TaskStatusDone {
		return nil, domain.ErrTaskNotDone
	}

	evaluation := domain.NewEvaluation(taskID, rank, time.Now())
	if err := s.evaluationRepo.Create(ctx, evaluation); err != nil {
		return nil, fmt.Errorf("create evaluation: %w", err)
	}
	return evaluation, nil
}

func (s *evaluationService) DeleteEvaluation(ctx context.Context, evaluationID, callerID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	evaluation, err := s.evaluationRepo.GetByID(ctx, evaluationID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get evaluation: %w", err)
	}
	task, err := s.taskRepo.GetByID(ctx, evaluation.TaskID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get task: %w", err)
	}
	if task.CreatedByID != callerID {
		return domain.ErrForbidden
	}
	if err := s.evaluationRepo.Delete(ctx, evaluationID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete evaluation: %w", err)
	}
	return nil
}
