package domain

import (
	"context"
	"errors"
	"time"
)

// Task statuses.
const (
	TaskStatusOpen       = "open"
	TaskStatusInProgress = "in_progress"
	TaskStatusDone       = "done"
)

// ValidTaskStatus reports whether s is a known task status.
func ValidTaskStatus(s string) bool {
	return s == TaskStatusOpen || s == TaskStatusInProgress || s == TaskStatusDone
}

// Sentinel errors for task operations.
var (
	ErrAssigneeNotInTeam = errors.New("assignee must be a member of the team")
	ErrDeadlineInPast    = errors.New("deadline cannot be in the past")
)

// Task represents a unit of work owned by a team
// swagger:model Task
type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Deadline    time.Time  `json:"deadline"`
	Status      string     `json:"status"`
	CreatedByID string     `json:"created_by"`
	AssignedTo  *string    `json:"assigned_to,omitempty"`
	TeamID      string     `json:"team_id"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// NewTask returns a new Task with the given fields. ID is typically set by the repository on create.
func NewTask(title, description string, deadline time.Time, createdByID, teamID string, createdAt, updatedAt time.Time) *Task {
	return &Task{
		Title:       title,
		Description: description,
		Deadline:    deadline,
		Status:      TaskStatusOpen,
		CreatedByID: createdByID,
		TeamID:      teamID,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}
}

// Comment is a user comment attached to a task
// swagger:model Comment
type Comment struct {
	ID        string    `json:"id"`
	TaskID    string    `json:"task_id"`
	AuthorID  string    `json:"author_id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// TaskUpdate holds optional task fields; nil means unchanged. AssignedTo is a
// user ID; a pointer to the empty string unassigns the task.
type TaskUpdate struct {
	Title       *string
	Description *string
	Deadline    *time.Time
	Status      *string
	AssignedTo  *string
}

// TaskRepository defines the interface for task storage
type TaskRepository interface {
	Create(ctx context.Context, task *Task) error
	GetByID(ctx context.Context, id string) (*Task, error)
	Update(ctx context.Context, taskID string, upd TaskUpdate) (*Task, error)
	Delete(ctx context.Context, id string) error
	// ListForUser returns tasks where the user is creator or assignee,
	// optionally filtered by status (empty means all).
	ListForUser(ctx context.Context, userID, status string) ([]*Task, error)
	// ListForUserInWindow returns tasks where the user is creator or assignee
	// and the deadline falls in [start, end).
	ListForUserInWindow(ctx context.Context, userID string, start, end time.Time) ([]*Task, error)
	// ListDueForReminder returns unfinished tasks whose deadline falls in
	// [start, end) and whose reminder flag named by flag is still unset.
	ListDueForReminder(ctx context.Context, flag string, start, end time.Time) ([]*Task, error)
	MarkReminderSent(ctx context.Context, taskID, flag string) error
}

// CommentRepository defines the interface for task comment storage
type CommentRepository interface {
	Create(ctx context.Context, comment *Comment) error
	ListByTaskID(ctx context.Context, taskID string) ([]*Comment, error)
}

// TaskService defines the business logic for task management.
type TaskService interface {
	CreateTask(ctx context.Context, creatorID, teamID string, task *Task, assigneeEmail string) (*Task, error)
	// UpdateTask applies a partial update. assigneeEmail, when non-nil,
	// reassigns the task (empty string unassigns).
	UpdateTask(ctx context.Context, taskID, callerID string, upd TaskUpdate, assigneeEmail *string) (*Task, error)
	DeleteTask(ctx context.Context, taskID, callerID string) error
	ListOwn(ctx context.Context, userID, status string) ([]*Task, error)
	AddComment(ctx context.Context, taskID, authorID, text string) (*Comment, error)
}
