package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"teamdesk/internal/domain"
)

type taskRepository struct {
	DB *sql.DB
}

func NewTaskRepository(db *sql.DB) domain.TaskRepository {
	return &taskRepository{DB: db}
}

const taskColumns = `id, title, description, deadline, status, created_by, assigned_to, team_id, created_at, updated_at`

// reminderFlags whitelists the reminder flag columns updatable through
// MarkReminderSent and queryable through ListDueForReminder.
var reminderFlags = map[string]struct{}{
	"reminder_7days_sent":   {},
	"reminder_1day_sent":    {},
	"overdue_reminder_sent": {},
}

func scanTask(row interface{ Scan(...any) error }) (*domain.Task, error) {
	t := &domain.Task{}
	var assigned sql.NullString
	err := row.Scan(&t.ID, &t.Title, &t.Description, &t.Deadline, &t.Status, &t.CreatedByID, &assigned, &t.TeamID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if assigned.Valid {
		t.AssignedTo = &assigned.String
	}
	return t, nil
}

func (r *taskRepository) Create(ctx context.Context, t *domain.Task) error {
	query := `
		INSERT INTO tasks (title, description, deadline, status, created_by, assigned_to, team_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`
	var assigned any
	if t.AssignedTo != nil {
		assigned = *t.AssignedTo
	}
	return r.DB.QueryRowContext(ctx, query,
		t.Title, t.Description, t.Deadline, t.Status, t.CreatedByID, assigned, t.TeamID, t.CreatedAt, t.UpdatedAt,
	).Scan(&t.ID)
}

func (r *taskRepository) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`
	t, err := scanTask(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return t, nil
}

func (r *taskRepository) Update(ctx context.Context, taskID string, upd domain.TaskUpdate) (*domain.Task, error) {
	setClauses := []string{"updated_at = NOW()"}
	args := []interface{}{}
	n := 1
	if upd.Title != nil {
		setClauses = append(setClauses, fmt.Sprintf("title = $%d", n))
		args = append(args, *upd.Title)
		n++
	}
	if upd.Description != nil {
		setClauses = append(setClauses, fmt.Sprintf("description = $%d", n))
		args = append(args, *upd.Description)
		n++
	}
	if upd.Deadline != nil {
		setClauses = append(setClauses, fmt.Sprintf("deadline = $%d", n))
		args = append(args, *upd.Deadline)
		n++
	}
	if upd.Status != nil {
		setClauses = append(setClauses, fmt.Sprintf("status = $%d", n))
		args = append(args, *upd.Status)
		n++
	}
	if upd.AssignedTo != nil {
		if *upd.AssignedTo == "" {
			setClauses = append(setClauses, "assigned_to = NULL")
		} else {
			setClauses = append(setClauses, fmt.Sprintf("assigned_to = $%d", n))
			args = append(args, *upd.AssignedTo)
			n++
		}
	}
	if n == 1 && upd.AssignedTo == nil {
		return r.GetByID(ctx, taskID)
	}
	args = append(args, taskID)
	query := fmt.Sprintf(`
		UPDATE tasks SET %s
		WHERE id = $%d
		RETURNING `+taskColumns+`
	`, strings.Join(setClauses, ", "), n)
	t, err := scanTask(r.DB.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return t, nil
}

func (r *taskRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM tasks WHERE id = $1`
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

func (r *taskRepository) ListForUser(ctx context.Context, userID, status string) ([]*domain.Task, error) {
	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE (created_by = $1 OR assigned_to = $1)
	`
	args := []interface{}{userID}
	if status != "" {
		query += ` AND status = $2`
		args = append(args, status)
	}
	query += ` ORDER BY deadline`
	return r.queryTasks(ctx, query, args...)
}

func (r *taskRepository) ListForUserInWindow(ctx context.Context, userID string, start, end time.Time) ([]*domain.Task, error) {
	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE (created_by = $1 OR assigned_to = $1)
		  AND deadline >= $2 AND deadline < $3
		ORDER BY deadline
	`
	return r.queryTasks(ctx, query, userID, start, end)
}

func (r *taskRepository) ListDueForReminder(ctx context.Context, flag string, start, end time.Time) ([]*domain.Task, error) {
	if _, ok := reminderFlags[flag]; !ok {
		return nil, fmt.Errorf("unknown reminder flag %q", flag)
	}
	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE status <> 'done'
		  AND NOT ` + flag + `
		  AND deadline >= $1 AND deadline < $2
		ORDER BY deadline
	`
	return r.queryTasks(ctx, query, start, end)
}

func (r *taskRepository) MarkReminderSent(ctx context.Context, taskID, flag string) error {
	if _, ok := reminderFlags[flag]; !ok {
		return fmt.Errorf("unknown reminder flag %q", flag)
	}
	query := `UPDATE tasks SET ` + flag + ` = TRUE WHERE id = $1`
	result, err := r.DB.ExecContext(ctx, query, taskID)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *taskRepository) queryTasks(ctx context.Context, query string, args ...interface{}) ([]*domain.Task, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	tasks := make([]*domain.Task, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}
