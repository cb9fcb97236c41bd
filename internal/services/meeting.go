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

type meetingService struct {
	meetingRepo    domain.MeetingRepository
	userRepo       domain.UserRepository
	emailService   domain.EmailService
	logger         *slog.Logger
	contextTimeout time.Duration
}

func NewMeetingService(meetingRepo domain.MeetingRepository,
	userRepo domain.UserRepository,
	emailService domain.EmailService,
	logger *slog.Logger,
	timeout time.Duration,
) domain.MeetingService {
	return &meetingService{
		meetingRepo:    meetingRepo,
		userRepo:       userRepo,
		emailService:   emailService,
		logger:         logger,
		contextTimeout: timeout,
	}
}

// validateInterval checks the temporal invariants of a proposed meeting:
// end after start, and start not behind now.
func validateInterval(m *domain.Meeting, now time.Time) error {
	if err := domain.ParseTimeOfDay(m.StartTime); err != nil {
		return fmt.Errorf("%w: start_time: %v", domain.ErrInvalidInput, err)
	}
	if err := domain.ParseTimeOfDay(m.EndTime); err != nil {
		return fmt.Errorf("%w: end_time: %v", domain.ErrInvalidInput, err)
	}
	if !m.EndInstant().After(m.StartInstant()) {
		return domain.ErrInvalidInterval
	}
	if m.StartInstant().Before(now) {
		return domain.ErrMeetingInPast
	}
	return nil
}

// resolveParticipants maps member emails to users and appends the creator,
// deduplicated. Every email must identify an existing user.
func (s *meetingService) resolveParticipants(ctx context.Context, creatorID string, memberEmails []string) ([]*domain.User, error) {
	creator, err := s.userRepo.GetByID(ctx, creatorID)
	if err != nil {
		return nil, fmt.Errorf("get creator: %w", err)
	}

	seen := map[string]struct{}{creator.ID: {}}
	participants := []*domain.User{creator}

	emails := make([]string, 0, len(memberEmails))
	for _, e := range memberEmails {
		e = strings.TrimSpace(strings.ToLower(e))
		if e != "" {
			emails = append(emails, e)
		}
	}
	if len(emails) == 0 {
		return participants, nil
	}

	users, err := s.userRepo.ListByEmails(ctx, emails)
	if err != nil {
		return nil, fmt.Errorf("resolve members: %w", err)
	}
	byEmail := make(map[string]*domain.User, len(users))
	for _, u := range users {
		byEmail[u.Email] = u
	}
	for _, e := range emails {
		u, ok := byEmail[e]
		if !ok {
			return nil, fmt.Errorf("%w: %s", domain.ErrUserNotFound, e)
		}
		if _, dup := seen[u.ID]; dup {
			continue
		}
		seen[u.ID] = struct{}{}
		participants = append(participants, u)
	}
	return participants, nil
}

func (s *meetingService) Create(ctx context.Context, creatorID string, meeting *domain.Meeting, memberEmails []string) (*domain.Meeting, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	meeting.CreatorID = creatorID
	if err := validateInterval(meeting, time.Now()); err != nil {
		return nil, err
	}

	participants, err := s.resolveParticipants(ctx, creatorID, memberEmails)
	if err != nil {
		return nil, err
	}
	memberIDs := make([]string, len(participants))
	for i, u := range participants {
		memberIDs[i] = u.ID
	}

	meeting.CreatedAt = time.Now()
	meeting.UpdatedAt = time.Now()
	conflicts, err := s.meetingRepo.Create(ctx, meeting, memberIDs)
	if err != nil {
		return nil, fmt.Errorf("create meeting: %w", err)
	}
	if len(conflicts) > 0 {
		return nil, &domain.ConflictError{Emails: conflicts}
	}
	meeting.Members = participants

	s.notifyCreated(ctx, meeting, participants)
	return meeting, nil
}

func (s *meetingService) Update(ctx context.Context, meetingID, callerID string, upd domain.MeetingUpdate) (*domain.Meeting, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	meeting, err := s.meetingRepo.GetByID(ctx, meetingID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get meeting: %w", err)
	}
	if meeting.CreatorID != callerID {
		return nil, domain.ErrForbidden
	}
	// A meeting that has already ended is immutable, whatever the change.
	if meeting.IsPast(time.Now()) {
		return nil, domain.ErrMeetingInPast
	}

	if upd.Topic != nil {
		meeting.Topic = *upd.Topic
	}
	if upd.Date != nil {
		meeting.Date = *upd.Date
	}
	if upd.StartTime != nil {
		meeting.StartTime = *upd.StartTime
	}
	if upd.EndTime != nil {
		meeting.EndTime = *upd.EndTime
	}
	if err := validateInterval(meeting, time.Now()); err != nil {
		return nil, err
	}

	var participants []*domain.User
	if upd.Members != nil {
		participants, err = s.resolveParticipants(ctx, meeting.CreatorID, upd.Members)
		if err != nil {
			return nil, err
		}
	} else {
		participants = meeting.Members
	}
	memberIDs := make([]string, len(participants))
	for i, u := range participants {
		memberIDs[i] = u.ID
	}

	meeting.UpdatedAt = time.Now()
	conflicts, err := s.meetingRepo.Update(ctx, meeting, memberIDs)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update meeting: %w", err)
	}
	if len(conflicts) > 0 {
		return nil, &domain.ConflictError{Emails: conflicts}
	}
	meeting.Members = participants
	return meeting, nil
}

func (s *meetingService) Delete(ctx context.Context, meetingID, callerID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	meeting, err := s.meetingRepo.GetByID(ctx, meetingID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get meeting: %w", err)
	}
	if meeting.CreatorID != callerID {
		return domain.ErrForbidden
	}
	if err := s.meetingRepo.Delete(ctx, meetingID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete meeting: %w", err)
	}
	return nil
}

// notifyCreated emails every participant about the new meeting. Failures are
// logged and never surfaced; delivery is best-effort.
func (s *meetingService) notifyCreated(ctx context.Context, meeting *domain.Meeting, participants []*domain.User) {
	var creator *domain.User
	for _, u := range participants {
		if u.ID == meeting.CreatorID {
			creator = u
			break
		}
	}
	if creator == nil {
		return
	}
	for _, u := range participants {
		data := &domain.MeetingCreatedEmailData{
			Email:        u.Email,
			Topic:        meeting.Topic,
			Date:         meeting.Date.Format("2006-01-02"),
			StartTime:    meeting.StartTime,
			EndTime:      meeting.EndTime,
			CreatorEmail: creator.Email,
			CreatorName:  creator.FullName(),
		}
		if err := s.emailService.SendMeetingCreated(ctx, data); err != nil {
			s.logger.Warn("meeting created notification failed", "email", u.Email, "meeting_id", meeting.ID, "err", err)
		}
	}
}
