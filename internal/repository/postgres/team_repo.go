package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"teamdesk/internal/domain"
)

type teamRepository struct {
	DB *sql.DB
}

func NewTeamRepository(db *sql.DB) domain.TeamRepository {
	return &teamRepository{DB: db}
}

func (r *teamRepository) Create(ctx context.Context, t *domain.Team) error {
	query := `
		INSERT INTO teams (name, description, creator_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query, t.Name, t.Description, t.CreatorID, t.CreatedAt, t.UpdatedAt).Scan(&t.ID)
}

func (r *teamRepository) GetByID(ctx context.Context, id string) (*domain.Team, error) {
	query := `
		SELECT id, name, description, creator_id, created_at, updated_at
		FROM teams
		WHERE id = $1
	`
	t := &domain.Team{}
	err := r.DB.QueryRowContext(ctx, query, id).Scan(&t.ID, &t.Name, &t.Description, &t.CreatorID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return t, nil
}

func (r *teamRepository) List(ctx context.Context) ([]*domain.Team, error) {
	query := `
		SELECT id, name, description, creator_id, created_at, updated_at
		FROM teams
		ORDER BY name
	`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	teams := make([]*domain.Team, 0)
	for rows.Next() {
		t := &domain.Team{}
		if err := rows.Scan(&t.ID, &t.Name, &t.Description, &t.CreatorID, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		teams = append(teams, t)
	}
	return teams, rows.Err()
}

func (r *teamRepository) Update(ctx context.Context, teamID string, name, description *string) (*domain.Team, error) {
	setClauses := []string{"updated_at = NOW()"}
	args := []interface{}{}
	n := 1
	if name != nil {
		setClauses = append(setClauses, fmt.Sprintf("name = $%d", n))
		args = append(args, *name)
		n++
	}
	if description != nil {
		setClauses = append(setClauses, fmt.Sprintf("description = $%d", n))
		args = append(args, *description)
		n++
	}
	if n == 1 {
		return r.GetByID(ctx, teamID)
	}
	args = append(args, teamID)
	query := fmt.Sprintf(`
		UPDATE teams SET %s
		WHERE id = $%d
		RETURNING id, name, description, creator_id, created_at, updated_at
	`, strings.Join(setClauses, ", "), n)
	t := &domain.Team{}
	err := r.DB.QueryRowContext(ctx, query, args...).Scan(&t.ID, &t.Name, &t.Description, &t.CreatorID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return t, nil
}

func (r *teamRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM teams WHERE id = $1`
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

func (r *teamRepository) ListMembers(ctx context.Context, teamID string) ([]*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE team_id = $1 ORDER BY email`
	rows, err := r.DB.QueryContext(ctx, query, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	users := make([]*domain.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *teamRepository) HasMember(ctx context.Context, teamID, userID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM users WHERE team_id = $1 AND id = $2)`
	var exists bool
	if err := r.DB.QueryRowContext(ctx, query, teamID, userID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}
