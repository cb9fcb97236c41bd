package domain

import (
	"context"
	"errors"
	"strings"
	"time"
)

// Sentinel errors for user operations.
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrDuplicateEmail     = errors.New("email already in use")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// Application roles. Admins manage teams, tasks, meetings, and evaluations;
// managers and users consume them.
const (
	RoleUser    = "user"
	RoleManager = "manager"
	RoleAdmin   = "admin"
)

// ValidRole reports whether code is a known role.
func ValidRole(code string) bool {
	return code == RoleUser || code == RoleManager || code == RoleAdmin
}

// User represents a registered user
// swagger:model User
type User struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	FirstName    string     `json:"first_name"`
	LastName     string     `json:"last_name"`
	Role         string     `json:"role"`
	Birthday     *time.Time `json:"birthday,omitempty"`
	TeamID       *string    `json:"team_id,omitempty"`
	PasswordHash string     `json:"-"`
	Salt         string     `json:"-"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// NewUser returns a new User with the given fields. ID is typically set by the repository on create.
func NewUser(email, firstName, lastName, role string, createdAt, updatedAt time.Time) *User {
	return &User{
		Email:     email,
		FirstName: firstName,
		LastName:  lastName,
		Role:      role,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}
}

// FullName returns "FirstName LastName" with each part trimmed.
func (u *User) FullName() string {
	return strings.TrimSpace(strings.TrimSpace(u.FirstName) + " " + strings.TrimSpace(u.LastName))
}

// Age returns the user's age in full years, or nil if birthday is unset.
func (u *User) Age(now time.Time) *int {
	if u.Birthday == nil {
		return nil
	}
	b := *u.Birthday
	age := now.Year() - b.Year()
	if now.Month() < b.Month() || (now.Month() == b.Month() && now.Day() < b.Day()) {
		age--
	}
	return &age
}

// PasswordHasher handles salt generation, hashing, and verification.
// Implementations may use bcrypt, argon2, etc.
type PasswordHasher interface {
	GenerateSalt() (string, error)
	Hash(salt, password string) (hash string, err error)
	Compare(hash, salt, password string) error
}

// TokenIssuer issues tokens (e.g. JWT) for an authenticated user.
type TokenIssuer interface {
	Issue(userID, email, role string, expiry time.Duration) (string, error)
}

// TokenVerifier verifies a token and returns the authenticated user identity.
type TokenVerifier interface {
	Verify(token string) (userID, role string, err error)
}

// UserRepository defines the interface for user storage
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	List(ctx context.Context) ([]*User, error)
	ListByEmails(ctx context.Context, emails []string) ([]*User, error)
	Update(ctx context.Context, user *User) error
	SetTeam(ctx context.Context, userID string, teamID *string) error
	SetRole(ctx context.Context, userID, role string) error
	DeleteByEmail(ctx context.Context, email string) error
}

// RegisterParams holds input for user registration.
type RegisterParams struct {
	Email     string
	FirstName string
	LastName  string
	Password  string
	Birthday  *time.Time
}

// UserProfileUpdate holds optional profile fields; nil means unchanged.
type UserProfileUpdate struct {
	FirstName *string
	LastName  *string
	Birthday  *time.Time
}

// UserService defines the business logic for user profile and authentication.
type UserService interface {
	Register(ctx context.Context, params RegisterParams) (*User, error)
	Login(ctx context.Context, email, password string) (token string, user *User, err error)
	GetByID(ctx context.Context, id string) (*User, error)
	UpdateProfile(ctx context.Context, userID string, upd UserProfileUpdate) (*User, error)
	List(ctx context.Context) ([]*User, error)
	DeleteByEmail(ctx context.Context, callerID, email string) error
}
