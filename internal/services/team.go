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

type teamService struct {
	teamRepo       domain.TeamRepository
	userRepo       domain.UserRepository
	emailService   domain.EmailService
	logger         *slog.Logger
	contextTimeout time.Duration
}

func NewTeamService(teamRepo domain.TeamRepository,
	userRepo domain.UserRepository,
	emailService domain.EmailService,
	logger *slog.Logger,
	timeout time.Duration,
) domain.TeamService {
	return &teamService{
		teamRepo:       teamRepo,
		userRepo:       userRepo,
		emailService:   emailService,
		logger:         logger,
		contextTimeout: timeout,
	}
}

func (s *teamService) CreateTeam(ctx context.Context, team *domain.Team) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if team.CreatorID == "" {
		return fmt.Errorf("team creator is required")
	}
	team.CreatedAt = time.Now()
	team.UpdatedAt = time.Now()
	return s.teamRepo.Create(ctx, team)
}

func (s *teamService) UpdateTeam(ctx context.Context, teamID string, name, description *string) (*domain.Team, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	team, err := s.teamRepo.Update(ctx, teamID, name, description)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update team: %w", err)
	}
	return team, nil
}

func (s *teamService) DeleteTeam(ctx context.Context, teamID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.teamRepo.Delete(ctx, teamID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete team: %w", err)
	}
	return nil
}

func (s *teamService) ListTeams(ctx context.Context) ([]*domain.Team, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	teams, err := s.teamRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}
	if teams == nil {
		teams = []*domain.Team{}
	}
	return teams, nil
}

func (s *teamService) GetCurrentTeam(ctx context.Context, userID string) (*domain.Team, []*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("get user: %w", err)
	}
	if user.TeamID == nil {
		return nil, nil, domain.ErrNotInTeam
	}
	team, err := s.teamRepo.GetByID(ctx, *user.TeamID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil, domain.ErrNotFound
		}
		return nil, nil, fmt.Errorf("get team: %w", err)
	}
	members, err := s.teamRepo.ListMembers(ctx, team.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("list members: %w", err)
	}
	if members == nil {
		members = []*domain.User{}
	}
	return team, members, nil
}

func (s *teamService) AddMember(ctx context.Context, teamID, email string) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get team: %w", err)
	}
	user, err := s.lookupUser(ctx, email)
	if err != nil {
		return nil, err
	}
	if user.TeamID != nil {
		return nil, domain.ErrAlreadyInTeam
	}
	if err := s.userRepo.SetTeam(ctx, user.ID, &teamID); err != nil {
		return nil, fmt.Errorf("set team: %w", err)
	}
	user.TeamID = &teamID

	s.notifyMembership(ctx, user.Email, team.Name, true)
	return user, nil
}

func (s *teamService) RemoveMember(ctx context.Context, email string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	user, err := s.lookupUser(ctx, email)
	if err != nil {
		return err
	}
	if user.TeamID == nil {
		return domain.ErrNotInTeam
	}
	teamName := ""
	if team, terr := s.teamRepo.GetByID(ctx, *user.TeamID); terr == nil {
		teamName = team.Name
	}
	if err := s.userRepo.SetTeam(ctx, user.ID, nil); err != nil {
		return fmt.Errorf("clear team: %w", err)
	}

	s.notifyMembership(ctx, user.Email, teamName, false)
	return nil
}

func (s *teamService) ChangeMemberRole(ctx context.Context, teamID, email, role string) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if !domain.ValidRole(role) {
		return nil, fmt.Errorf("%w: unknown role %q", domain.ErrInvalidInput, role)
	}
	user, err := s.lookupUser(ctx, email)
	if err != nil {
		return nil, err
	}
	if user.TeamID == nil || *user.TeamID != teamID {
		return nil, domain.ErrNotInTeam
	}
	if err := s.userRepo.SetRole(ctx, user.ID, role); err != nil {
		return nil, fmt.Errorf("set role: %w", err)
	}
	user.Role = role
	return user, nil
}

func (s *teamService) lookupUser(ctx context.Context, email string) (*domain.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return nil, domain.ErrInvalidInput
	}
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return user, nil
}

// notifyMembership emails the user about being added to or removed from a team. Best-effort.
func (s *teamService) notifyMembership(ctx context.Context, email, teamName string, added bool) {
	data := &domain.TeamMembershipEmailData{
		Email:    email,
		TeamName: teamName,
		Added:    added,
	}
	if err := s.emailService.SendTeamMembershipChange(ctx, data); err != nil {
		s.logger.Warn("team membership notification failed", "email", email, "team", teamName, "err", err)
	}
}
