package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"teamdesk/internal/domain"
)

// dateLayout is the wire format for calendar dates.
const dateLayout = "2006-01-02"

type calendarService struct {
	taskRepo       domain.TaskRepository
	meetingRepo    domain.MeetingRepository
	contextTimeout time.Duration
}

func NewCalendarService(taskRepo domain.TaskRepository, meetingRepo domain.MeetingRepository, timeout time.Duration) domain.CalendarService {
	return &calendarService{
		taskRepo:       taskRepo,
		meetingRepo:    meetingRepo,
		contextTimeout: timeout,
	}
}

// resolveWindow turns the raw query into a [start, end) window in local time
// and a period label. Exactly one of date or start+end must be supplied.
func resolveWindow(q domain.CalendarQuery) (start, end time.Time, period string, err error) {
	if q.Date != "" && (q.Start != "" || q.End != "") {
		return time.Time{}, time.Time{}, "", fmt.Errorf("%w: use either date or start+end", domain.ErrInvalidQuery)
	}
	if q.Date != "" {
		day, perr := time.ParseInLocation(dateLayout, q.Date, time.Local)
		if perr != nil {
			return time.Time{}, time.Time{}, "", fmt.Errorf("%w: bad date format: %v", domain.ErrInvalidQuery, perr)
		}
		return day, day.AddDate(0, 0, 1), q.Date, nil
	}
	if q.Start == "" || q.End == "" {
		return time.Time{}, time.Time{}, "", fmt.Errorf("%w: a range needs both start and end", domain.ErrInvalidQuery)
	}
	from, perr := time.ParseInLocation(dateLayout, q.Start, time.Local)
	if perr != nil {
		return time.Time{}, time.Time{}, "", fmt.Errorf("%w: bad date format: %v", domain.ErrInvalidQuery, perr)
	}
	to, perr := time.ParseInLocation(dateLayout, q.End, time.Local)
	if perr != nil {
		return time.Time{}, time.Time{}, "", fmt.Errorf("%w: bad date format: %v", domain.ErrInvalidQuery, perr)
	}
	// The end day is inclusive.
	return from, to.AddDate(0, 0, 1), q.Start + " - " + q.End, nil
}

func taskEvent(t *domain.Task, now time.Time) *domain.CalendarEvent {
	deadline := t.Deadline
	return &domain.CalendarEvent{
		ID:          t.ID,
		Type:        domain.EventTypeTask,
		Time:        t.Deadline,
		IsPast:      t.Deadline.Before(now),
		Title:       t.Title,
		Description: t.Description,
		Deadline:    &deadline,
		Status:      t.Status,
	}
}

func meetingEvent(m *domain.Meeting, now time.Time) *domain.CalendarEvent {
	return &domain.CalendarEvent{
		ID:        m.ID,
		Type:      domain.EventTypeMeeting,
		Time:      m.StartInstant(),
		IsPast:    m.EndInstant().Before(now),
		Topic:     m.Topic,
		Date:      m.Date.Format(dateLayout),
		StartTime: m.StartTime,
		EndTime:   m.EndTime,
	}
}

func (s *calendarService) GetCalendarData(ctx context.Context, userID string, query domain.CalendarQuery) (*domain.CalendarData, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	start, end, period, err := resolveWindow(query)
	if err != nil {
		return nil, err
	}

	tasks, err := s.taskRepo.ListForUserInWindow(ctx, userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	meetings, err := s.meetingRepo.ListForUserBetween(ctx, userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("list meetings: %w", err)
	}

	now := time.Now()
	events := make([]*domain.CalendarEvent, 0, len(tasks)+len(meetings))
	for _, t := range tasks {
		events = append(events, taskEvent(t, now))
	}
	for _, m := range meetings {
		events = append(events, meetingEvent(m, now))
	}
	// Stable so that equal instants keep the task-before-meeting order.
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Time.Before(events[j].Time)
	})

	return &domain.CalendarData{
		Period: period,
		Count:  len(events),
		Events: events,
	}, nil
}
