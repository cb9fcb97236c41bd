package domain

import (
	"context"
	"errors"
	"time"
)

// ErrAlreadyInTeam is returned when adding a user who already belongs to a team.
var ErrAlreadyInTeam = errors.New("user already belongs to a team")

// ErrNotInTeam is returned when removing a user who has no team.
var ErrNotInTeam = errors.New("user does not belong to a team")

// Team represents a working group of users
// swagger:model Team
type Team struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatorID   string    `json:"creator_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewTeam returns a new Team with the given fields. ID is typically set by the repository on create.
func NewTeam(name, description, creatorID string, createdAt, updatedAt time.Time) *Team {
	return &Team{
		Name:        name,
		Description: description,
		CreatorID:   creatorID,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}
}

// TeamRepository defines the interface for team storage
type TeamRepository interface {
	Create(ctx context.Context, team *Team) error
	GetByID(ctx context.Context, id string) (*Team, error)
	List(ctx context.Context) ([]*Team, error)
	Update(ctx context.Context, teamID string, name, description *string) (*Team, error)
	Delete(ctx context.Context, id string) error
	ListMembers(ctx context.Context, teamID string) ([]*User, error)
	HasMember(ctx context.Context, teamID, userID string) (bool, error)
}

// TeamService defines the business logic for team management and membership.
type TeamService interface {
	CreateTeam(ctx context.Context, team *Team) error
	UpdateTeam(ctx context.Context, teamID string, name, description *string) (*Team, error)
	DeleteTeam(ctx context.Context, teamID string) error
	ListTeams(ctx context.Context) ([]*Team, error)
	// GetCurrentTeam returns the caller's team and its members.
	GetCurrentTeam(ctx context.Context, userID string) (*Team, []*User, error)
	AddMember(ctx context.Context, teamID, email string) (*User, error)
	RemoveMember(ctx context.Context, email string) error
	ChangeMemberRole(ctx context.Context, teamID, email, role string) (*User, error)
}
