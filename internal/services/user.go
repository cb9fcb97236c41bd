package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"teamdesk/internal/domain"
)

const minimumAge = 18

type userService struct {
	userRepo       domain.UserRepository
	hasher         domain.PasswordHasher
	issuer         domain.TokenIssuer
	tokenExpiry    time.Duration
	contextTimeout time.Duration
}

func NewUserService(userRepo domain.UserRepository,
	hasher domain.PasswordHasher,
	issuer domain.TokenIssuer,
	tokenExpiry time.Duration,
	timeout time.Duration,
) domain.UserService {
	return &userService{
		userRepo:       userRepo,
		hasher:         hasher,
		issuer:         issuer,
		tokenExpiry:    tokenExpiry,
		contextTimeout: timeout,
	}
}

// validateBirthday rejects future dates and users younger than minimumAge.
func validateBirthday(birthday time.Time, now time.Time) error {
	if birthday.After(now) {
		return fmt.Errorf("%w: birthday cannot be in the future", domain.ErrInvalidInput)
	}
	age := now.Year() - birthday.Year()
	if now.Month() < birthday.Month() || (now.Month() == birthday.Month() && now.Day() < birthday.Day()) {
		age--
	}
	if age < minimumAge {
		return fmt.Errorf("%w: minimum age is %d, got %d", domain.ErrInvalidInput, minimumAge, age)
	}
	return nil
}

func (s *userService) Register(ctx context.Context, params domain.RegisterParams) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	email := strings.TrimSpace(strings.ToLower(params.Email))
	if email == "" || params.FirstName == "" || params.LastName == "" {
		return nil, fmt.Errorf("%w: email, first_name and last_name are required", domain.ErrInvalidInput)
	}
	if len(params.Password) < 8 {
		return nil, fmt.Errorf("%w: password must be at least 8 characters", domain.ErrInvalidInput)
	}
	if params.Birthday != nil {
		if err := validateBirthday(*params.Birthday, time.Now()); err != nil {
			return nil, err
		}
	}

	salt, err := s.hasher.GenerateSalt()
	if err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}
	hash, err := s.hasher.Hash(salt, params.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now()
	user := domain.NewUser(email, params.FirstName, params.LastName, domain.RoleUser, now, now)
	user.Birthday = params.Birthday
	user.PasswordHash = hash
	user.Salt = salt
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			return nil, domain.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

func (s *userService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	email = strings.TrimSpace(strings.ToLower(email))
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return "", nil, domain.ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("get user: %w", err)
	}
	if err := s.hasher.Compare(user.PasswordHash, user.Salt, password); err != nil {
		return "", nil, domain.ErrInvalidCredentials
	}
	token, err := s.issuer.Issue(user.ID, user.Email, user.Role, s.tokenExpiry)
	if err != nil {
		return "", nil, fmt.Errorf("issue token: %w", err)
	}
	return token, user, nil
}

func (s *userService) GetByID(ctx context.Context, id string) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	return s.userRepo.GetByID(ctx, id)
}

func (s *userService) UpdateProfile(ctx context.Context, userID string, upd domain.UserProfileUpdate) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	if upd.FirstName != nil {
		user.FirstName = *upd.FirstName
	}
	if upd.LastName != nil {
		user.LastName = *upd.LastName
	}
	if upd.Birthday != nil {
		if err := validateBirthday(*upd.Birthday, time.Now()); err != nil {
			return nil, err
		}
		user.Birthday = upd.Birthday
	}
	if user.FirstName == "" || user.LastName == "" {
		return nil, fmt.Errorf("%w: first_name and last_name cannot be empty", domain.ErrInvalidInput)
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return user, nil
}

func (s *userService) List(ctx context.Context) ([]*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	if users == nil {
		users = []*domain.User{}
	}
	return users, nil
}

func (s *userService) DeleteByEmail(ctx context.Context, callerID, email string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	email = strings.TrimSpace(strings.ToLower(email))
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.ErrUserNotFound
		}
		return fmt.Errorf("get user: %w", err)
	}
	if user.ID == callerID {
		return fmt.Errorf("%w: cannot delete own account", domain.ErrInvalidInput)
	}
	if err := s.userRepo.DeleteByEmail(ctx, email); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.ErrUserNotFound
		}
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}
