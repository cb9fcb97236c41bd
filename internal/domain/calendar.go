package domain

import (
	"context"
	"errors"
	"time"
)

// ErrInvalidQuery means the calendar request carried contradictory or
// malformed date parameters. It is reported before any storage access.
var ErrInvalidQuery = errors.New("invalid calendar query")

// Calendar event types.
const (
	EventTypeTask    = "task"
	EventTypeMeeting = "meeting"
)

// CalendarEvent is a normalized projection of a task or meeting. It is
// derived on every read and never persisted.
// swagger:model CalendarEvent
type CalendarEvent struct {
	ID     string    `json:"id"`
	Type   string    `json:"type"`
	Time   time.Time `json:"time"`
	IsPast bool      `json:"is_past"`

	// Task fields.
	Title       string     `json:"title,omitempty"`
	Description string     `json:"description,omitempty"`
	Deadline    *time.Time `json:"deadline,omitempty"`
	Status      string     `json:"status,omitempty"`

	// Meeting fields.
	Topic     string `json:"topic,omitempty"`
	Date      string `json:"date,omitempty"`
	StartTime string `json:"start_time,omitempty"`
	EndTime   string `json:"end_time,omitempty"`
}

// CalendarData is the aggregated calendar view for one user and window.
// swagger:model CalendarData
type CalendarData struct {
	Period string           `json:"period"`
	Count  int              `json:"count"`
	Events []*CalendarEvent `json:"events"`
}

// CalendarQuery carries the raw date parameters: either Date, or Start and
// End, all in YYYY-MM-DD form.
type CalendarQuery struct {
	Date  string
	Start string
	End   string
}

// CalendarService merges a user's tasks and meetings into one chronological view.
type CalendarService interface {
	GetCalendarData(ctx context.Context, userID string, query CalendarQuery) (*CalendarData, error)
}
