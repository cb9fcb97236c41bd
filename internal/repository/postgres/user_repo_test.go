package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"

	"teamdesk/internal/domain"
)

func userRows(users ...*domain.User) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{"id", "email", "password_hash", "salt", "first_name", "last_name", "role", "birthday", "team_id", "created_at", "updated_at"})
	for _, u := range users {
		var birthday, teamID any
		if u.Birthday != nil {
			birthday = *u.Birthday
		}
		if u.TeamID != nil {
			teamID = *u.TeamID
		}
		rows.AddRow(u.ID, u.Email, u.PasswordHash, u.Salt, u.FirstName, u.LastName, u.Role, birthday, teamID, u.CreatedAt, u.UpdatedAt)
	}
	return rows
}

func TestUserRepository_Create(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	t.Run("sets id on success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		u := domain.NewUser("ann@example.com", "Ann", "Lee", domain.RoleUser, now, now)
		u.PasswordHash = "hash"
		u.Salt = "salt"
		mock.ExpectQuery(`INSERT INTO users`).
			WithArgs("ann@example.com", "hash", "salt", "Ann", "Lee", domain.RoleUser, nil, now, now).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("user-1"))

		repo := NewUserRepository(db)
		require.NoError(t, repo.Create(ctx, u))
		require.Equal(t, "user-1", u.ID)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate email maps to sentinel", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		u := domain.NewUser("ann@example.com", "Ann", "Lee", domain.RoleUser, now, now)
		mock.ExpectQuery(`INSERT INTO users`).
			WillReturnError(&pq.Error{Code: "23505"})

		repo := NewUserRepository(db)
		err = repo.Create(ctx, u)
		require.True(t, errors.Is(err, domain.ErrDuplicateEmail))
	})
}

func TestUserRepository_GetByEmail(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	t.Run("found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		teamID := "team-1"
		u := domain.NewUser("bob@example.com", "Bob", "Kim", domain.RoleManager, now, now)
		u.ID = "user-2"
		u.TeamID = &teamID
		mock.ExpectQuery(`FROM users WHERE email = \$1`).
			WithArgs("bob@example.com").
			WillReturnRows(userRows(u))

		repo := NewUserRepository(db)
		got, err := repo.GetByEmail(ctx, "bob@example.com")
		require.NoError(t, err)
		require.Equal(t, "user-2", got.ID)
		require.NotNil(t, got.TeamID)
		require.Equal(t, "team-1", *got.TeamID)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`FROM users WHERE email = \$1`).
			WithArgs("nobody@example.com").
			WillReturnError(sql.ErrNoRows)

		repo := NewUserRepository(db)
		_, err = repo.GetByEmail(ctx, "nobody@example.com")
		require.True(t, errors.Is(err, domain.ErrUserNotFound))
	})
}

func TestUserRepository_ListByEmails(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	a := domain.NewUser("a@example.com", "A", "A", domain.RoleUser, now, now)
	a.ID = "user-a"
	b := domain.NewUser("b@example.com", "B", "B", domain.RoleUser, now, now)
	b.ID = "user-b"
	emails := []string{"a@example.com", "b@example.com"}
	mock.ExpectQuery(`WHERE email = ANY\(\$1\)`).
		WithArgs(pq.Array(emails)).
		WillReturnRows(userRows(a, b))

	repo := NewUserRepository(db)
	users, err := repo.ListByEmails(ctx, emails)
	require.NoError(t, err)
	require.Len(t, users, 2)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_SetTeam(t *testing.T) {
	ctx := context.Background()

	t.Run("attach", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		teamID := "team-1"
		mock.ExpectExec(`UPDATE users SET team_id = \$1`).
			WithArgs("team-1", "user-1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		repo := NewUserRepository(db)
		require.NoError(t, repo.SetTeam(ctx, "user-1", &teamID))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("detach writes NULL", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec(`UPDATE users SET team_id = \$1`).
			WithArgs(nil, "user-1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		repo := NewUserRepository(db)
		require.NoError(t, repo.SetTeam(ctx, "user-1", nil))
	})

	t.Run("missing user", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec(`UPDATE users SET team_id = \$1`).
			WithArgs(nil, "ghost").
			WillReturnResult(sqlmock.NewResult(0, 0))

		repo := NewUserRepository(db)
		err = repo.SetTeam(ctx, "ghost", nil)
		require.True(t, errors.Is(err, domain.ErrUserNotFound))
	})
}

func TestUserRepository_DeleteByEmail(t *testing.T) {
	ctx := context.Background()

	t.Run("deletes", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec(`DELETE FROM users WHERE email = \$1`).
			WithArgs("ann@example.com").
			WillReturnResult(sqlmock.NewResult(0, 1))

		repo := NewUserRepository(db)
		require.NoError(t, repo.DeleteByEmail(ctx, "ann@example.com"))
	})

	t.Run("missing user", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec(`DELETE FROM users WHERE email = \$1`).
			WithArgs("ghost@example.com").
			WillReturnResult(sqlmock.NewResult(0, 0))

		repo := NewUserRepository(db)
		err = repo.DeleteByEmail(ctx, "ghost@example.com")
		require.True(t, errors.Is(err, domain.ErrUserNotFound))
	})
}
