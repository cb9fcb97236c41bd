package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"teamdesk/internal/domain"
)

type userRepository struct {
	DB *sql.DB
}

func NewUserRepository(db *sql.DB) domain.UserRepository {
	return &userRepository{DB: db}
}

const userColumns = `id, email, password_hash, salt, first_name, last_name, role, birthday, team_id, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (*domain.User, error) {
	u := &domain.User{}
	var birthday sql.NullTime
	var teamID sql.NullString
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Salt, &u.FirstName, &u.LastName, &u.Role, &birthday, &teamID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if birthday.Valid {
		u.Birthday = &birthday.Time
	}
	if teamID.Valid {
		u.TeamID = &teamID.String
	}
	return u, nil
}

func (r *userRepository) Create(ctx context.Context, u *domain.User) error {
	query := `
		INSERT INTO users (email, password_hash, salt, first_name, last_name, role, birthday, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`
	var birthday any
	if u.Birthday != nil {
		birthday = *u.Birthday
	}
	err := r.DB.QueryRowContext(ctx, query,
		u.Email, u.PasswordHash, u.Salt, u.FirstName, u.LastName, u.Role, birthday, u.CreatedAt, u.UpdatedAt,
	).Scan(&u.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return domain.ErrDuplicateEmail
		}
		return err
	}
	return nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	u, err := scanUser(r.DB.QueryRowContext(ctx, query, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	u, err := scanUser(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

func (r *userRepository) List(ctx context.Context) ([]*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY email`
	rows, err := r.DB.QueryContext(ctx, query)
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

func (r *userRepository) ListByEmails(ctx context.Context, emails []string) ([]*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = ANY($1)`
	rows, err := r.DB.QueryContext(ctx, query, pq.Array(emails))
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

func (r *userRepository) Update(ctx context.Context, u *domain.User) error {
	query := `
		UPDATE users
		SET first_name = $1, last_name = $2, birthday = $3, updated_at = NOW()
		WHERE id = $4
	`
	var birthday any
	if u.Birthday != nil {
		birthday = *u.Birthday
	}
	result, err := r.DB.ExecContext(ctx, query, u.FirstName, u.LastName, birthday, u.ID)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *userRepository) SetTeam(ctx context.Context, userID string, teamID *string) error {
	query := `UPDATE users SET team_id = $1, updated_at = NOW() WHERE id = $2`
	var team any
	if teamID != nil {
		team = *teamID
	}
	result, err := r.DB.ExecContext(ctx, query, team, userID)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *userRepository) SetRole(ctx context.Context, userID, role string) error {
	query := `UPDATE users SET role = $1, updated_at = NOW() WHERE id = $2`
	result, err := r.DB.ExecContext(ctx, query, role, userID)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *userRepository) DeleteByEmail(ctx context.Context, email string) error {
	query := `DELETE FROM users WHERE email = $1`
	result, err := r.DB.ExecContext(ctx, query, email)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}
