package domain

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Sentinel errors for meeting operations.
var (
	// ErrInvalidInterval means end_time is not after start_time.
	ErrInvalidInterval = errors.New("end time must be after start time")
	// ErrMeetingInPast means the relevant instant is already behind "now":
	// the proposed start on create, or the existing end on update.
	ErrMeetingInPast = errors.New("meeting cannot be in the past")
)

// ConflictError reports participants already committed to an overlapping
// meeting. Emails identifies every double-booked user.
type ConflictError struct {
	Emails []string
}

func (e *ConflictError) Error() string {
	emails := append([]string(nil), e.Emails...)
	sort.Strings(emails)
	return fmt.Sprintf("users already busy in another meeting: %s", strings.Join(emails, ", "))
}

// TimeOfDayLayout is the wire format for meeting start and end times.
const TimeOfDayLayout = "15:04"

// ParseTimeOfDay validates an HH:MM string.
func ParseTimeOfDay(s string) error {
	_, err := time.Parse(TimeOfDayLayout, s)
	return err
}

// CombineDateTime combines a calendar date with an HH:MM time of day into an
// instant in the local timezone. The time string must be pre-validated.
func CombineDateTime(date time.Time, timeOfDay string) time.Time {
	t, _ := time.Parse(TimeOfDayLayout, timeOfDay)
	return time.Date(date.Year(), date.Month(), date.Day(), t.Hour(), t.Minute(), 0, 0, time.Local)
}

// Meeting represents a scheduled block of time with participants
// swagger:model Meeting
type Meeting struct {
	ID        string    `json:"id"`
	Topic     string    `json:"topic"`
	Date      time.Time `json:"date"`
	StartTime string    `json:"start_time"`
	EndTime   string    `json:"end_time"`
	CreatorID string    `json:"creator_id"`
	Members   []*User   `json:"members,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewMeeting returns a new Meeting with the given fields. ID is typically set by the repository on create.
func NewMeeting(topic string, date time.Time, startTime, endTime, creatorID string, createdAt, updatedAt time.Time) *Meeting {
	return &Meeting{
		Topic:     topic,
		Date:      date,
		StartTime: startTime,
		EndTime:   endTime,
		CreatorID: creatorID,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}
}

// StartInstant is the meeting's start as an instant in local time.
func (m *Meeting) StartInstant() time.Time {
	return CombineDateTime(m.Date, m.StartTime)
}

// EndInstant is the meeting's end as an instant in local time.
func (m *Meeting) EndInstant() time.Time {
	return CombineDateTime(m.Date, m.EndTime)
}

// IsPast reports whether the meeting has already ended at now. "Past" is a
// derived predicate, not a stored status.
func (m *Meeting) IsPast(now time.Time) bool {
	return m.EndInstant().Before(now)
}

// MeetingUpdate holds optional meeting fields; nil means unchanged.
type MeetingUpdate struct {
	Topic     *string
	Date      *time.Time
	StartTime *string
	EndTime   *string
	// Members, when non-nil, replaces the invited member set (emails).
	Members []string
}

// MeetingRepository defines the interface for meeting storage. Create and
// Update run the overlap conflict check and the write in one transaction;
// they return the emails of conflicting users instead of writing when the
// conflict set is non-empty.
type MeetingRepository interface {
	Create(ctx context.Context, meeting *Meeting, memberIDs []string) (conflicts []string, err error)
	Update(ctx context.Context, meeting *Meeting, memberIDs []string) (conflicts []string, err error)
	GetByID(ctx context.Context, id string) (*Meeting, error)
	Delete(ctx context.Context, id string) error
	// ListForUserBetween returns meetings where the user is a member and the
	// meeting date falls in [startDate, endDate).
	ListForUserBetween(ctx context.Context, userID string, startDate, endDate time.Time) ([]*Meeting, error)
	// ListDueForReminder returns meetings on the given dates whose reminder
	// flag is unset. The caller narrows by start instant.
	ListDueForReminder(ctx context.Context, dates []time.Time) ([]*Meeting, error)
	MarkReminderSent(ctx context.Context, meetingID string) error
}

// MeetingService defines the scheduling engine business logic.
type MeetingService interface {
	// Create schedules a meeting for the creator plus the users identified by
	// memberEmails. It fails with *ConflictError, ErrInvalidInterval, or
	// ErrMeetingInPast.
	Create(ctx context.Context, creatorID string, meeting *Meeting, memberEmails []string) (*Meeting, error)
	Update(ctx context.Context, meetingID, callerID string, upd MeetingUpdate) (*Meeting, error)
	Delete(ctx context.Context, meetingID, callerID string) error
}
