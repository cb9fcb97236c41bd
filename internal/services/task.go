package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"teamdesk/internal/domain"
)

type taskService struct {
	taskRepo       domain.TaskRepository
	commentRepo    domain.CommentRepository
	teamRepo       domain.TeamRepository
	userRepo       domain.UserRepository
	emailService   domain.EmailService
	logger         *slog.Logger
	contextTimeout time.Duration
}

func NewTaskService(taskRepo domain.TaskRepository,
	commentRepo domain.CommentRepository,
	teamRepo domain.TeamRepository,
	userRepo domain.UserRepository,
	emailService domain.EmailService,
	logger *slog.Logger,
	timeout time.Duration,
) domain.TaskService {
	return &taskService{
		taskRepo:       taskRepo,
		commentRepo:    commentRepo,
		teamRepo:       teamRepo,
		userRepo:       userRepo,
		emailService:   emailService,
		logger:         logger,
		contextTimeout: timeout,
	}
}

// resolveAssignee maps an assignee email to a user and checks team membership.
func (s *taskService) resolveAssignee(ctx context.Context, teamID, email string) (*domain.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("get assignee: %w", err)
	}
	if user.TeamID == nil || *user.TeamID != teamID {
		return nil, domain.ErrAssigneeNotInTeam
	}
	return user, nil
}

func (s *taskService) CreateTask(ctx context.Context, creatorID, teamID string, task *domain.Task, assigneeEmail string) (*domain.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get team: %w", err)
	}
	if task.Deadline.Before(time.Now()) {
		return nil, domain.ErrDeadlineInPast
	}

	var assignee *domain.User
	if assigneeEmail != "" {
		assignee, err = s.resolveAssignee(ctx, teamID, assigneeEmail)
		if err != nil {
			return nil, err
		}
		task.AssignedTo = &assignee.ID
	}

	task.CreatedByID = creatorID
	task.TeamID = teamID
	if task.Status == "" {
		task.Status = domain.TaskStatusOpen
	}
	task.CreatedAt = time.Now()
	task.UpdatedAt = time.Now()
	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}

	if assignee != nil {
		s.notifyAssigned(ctx, task, team.Name, assignee)
	}
	return task, nil
}

func (s *taskService) UpdateTask(ctx context.Context, taskID, callerID string, upd domain.TaskUpdate, assigneeEmail *string) (*domain.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

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
	if upd.Deadline != nil && upd.Deadline.Before(time.Now()) {
		return nil, domain.ErrDeadlineInPast
	}
	if upd.Status != nil && !domain.ValidTaskStatus(*upd.Status) {
		return nil, fmt.Errorf("%w: unknown status %q", domain.ErrInvalidInput, *upd.Status)
	}

	// Track the assignee transition explicitly so the notification decision
	// stays in this function rather than in save hooks.
	oldAssignee := task.AssignedTo
	var newAssignee *domain.User
	if assigneeEmail != nil {
		if *assigneeEmail == "" {
			empty := ""
			upd.AssignedTo = &empty
		} else {
			newAssignee, err = s.resolveAssignee(ctx, task.TeamID, *assigneeEmail)
			if err != nil {
				return nil, err
			}
			upd.AssignedTo = &newAssignee.ID
		}
	}

	updated, err := s.taskRepo.Update(ctx, taskID, upd)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update task: %w", err)
	}

	if newAssignee != nil && (oldAssignee == nil || *oldAssignee != newAssignee.ID) {
		team, terr := s.teamRepo.GetByID(ctx, updated.TeamID)
		teamName := ""
		if terr == nil {
			teamName = team.Name
		}
		s.notifyAssigned(ctx, updated, teamName, newAssignee)
	}
	return updated, nil
}

func (s *taskService) DeleteTask(ctx context.Context, taskID, callerID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	task, err := s.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get task: %w", err)
	}
	if task.CreatedByID != callerID {
		return domain.ErrForbidden
	}
	if err := s.taskRepo.Delete(ctx, taskID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}

func (s *taskService) ListOwn(ctx context.Context, userID, status string) ([]*domain.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if status != "" && !domain.ValidTaskStatus(status) {
		return nil, fmt.Errorf("%w: unknown status %q", domain.ErrInvalidInput, status)
	}
	tasks, err := s.taskRepo.ListForUser(ctx, userID, status)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	if tasks == nil {
		tasks = []*domain.Task{}
	}
	return tasks, nil
}

func (s *taskService) AddComment(ctx context.Context, taskID, authorID, text string) (*domain.Comment, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: comment text is required", domain.ErrInvalidInput)
	}
	if _, err := s.taskRepo.GetByID(ctx, taskID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get task: %w", err)
	}
	comment := &domain.Comment{
		TaskID:    taskID,
		AuthorID:  authorID,
		Text:      text,
		CreatedAt: time.Now(),
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	return comment, nil
}

// notifyAssigned emails the assignee about the task. Best-effort.
func (s *taskService) notifyAssigned(ctx context.Context, task *domain.Task, teamName string, assignee *domain.User) {
	author, err := s.userRepo.GetByID(ctx, task.CreatedByID)
	authorName := ""
	if err == nil {
		authorName = author.FullName()
	}
	data := &domain.TaskAssignedEmailData{
		Email:        assignee.Email,
		AssigneeName: assignee.FullName(),
		Title:        task.Title,
		Description:  task.Description,
		Deadline:     task.Deadline.Format("02-01-2006 15:04"),
		Status:       task.Status,
		TeamName:     teamName,
		AuthorName:   authorName,
	}
	if err := s.emailService.SendTaskAssigned(ctx, data); err != nil {
		s.logger.Warn("task assignment notification failed", "email", assignee.Email, "task_id", task.ID, "err", err)
	}
}
