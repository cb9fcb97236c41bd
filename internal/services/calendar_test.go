package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"teamdesk/internal/domain"
)

func calendarTask(id, title string, deadline time.Time) *domain.Task {
	t := domain.NewTask(title, "", deadline, "user-1", "team-1", time.Now(), time.Now())
	t.ID = id
	return t
}

func calendarMeeting(id, topic string, date time.Time, start, end string) *domain.Meeting {
	m := domain.NewMeeting(topic, date, start, end, "user-1", time.Now(), time.Now())
	m.ID = id
	return m
}

func TestCalendarService_GetCalendarData(t *testing.T) {
	day := time.Date(2026, 9, 14, 0, 0, 0, 0, time.Local)

	t.Run("single day merges and sorts chronologically", func(t *testing.T) {
		tasks := newFakeTaskRepo()
		tasks.listed = []*domain.Task{
			calendarTask("task-1", "ship release", day.Add(16*time.Hour)),
			calendarTask("task-2", "write notes", day.Add(9*time.Hour)),
		}
		meetings := newFakeMeetingRepo()
		meetings.listed = []*domain.Meeting{
			calendarMeeting("meeting-1", "standup", day, "10:00", "10:15"),
		}
		svc := NewCalendarService(tasks, meetings, time.Second)

		data, err := svc.GetCalendarData(context.Background(), "user-1", domain.CalendarQuery{Date: "2026-09-14"})
		require.NoError(t, err)

		assert.Equal(t, "2026-09-14", data.Period)
		assert.Equal(t, 3, data.Count)
		require.Len(t, data.Events, 3)
		assert.Equal(t, "task-2", data.Events[0].ID)
		assert.Equal(t, "meeting-1", data.Events[1].ID)
		assert.Equal(t, "task-1", data.Events[2].ID)
	})

	t.Run("equal instants keep tasks before meetings", func(t *testing.T) {
		tasks := newFakeTaskRepo()
		tasks.listed = []*domain.Task{
			calendarTask("task-1", "due at ten", day.Add(10*time.Hour)),
		}
		meetings := newFakeMeetingRepo()
		meetings.listed = []*domain.Meeting{
			calendarMeeting("meeting-1", "standup", day, "10:00", "10:30"),
		}
		svc := NewCalendarService(tasks, meetings, time.Second)

		data, err := svc.GetCalendarData(context.Background(), "user-1", domain.CalendarQuery{Date: "2026-09-14"})
		require.NoError(t, err)

		require.Len(t, data.Events, 2)
		assert.Equal(t, domain.EventTypeTask, data.Events[0].Type)
		assert.Equal(t, domain.EventTypeMeeting, data.Events[1].Type)
	})

	t.Run("range end day is inclusive", func(t *testing.T) {
		tasks := newFakeTaskRepo()
		tasks.listed = []*domain.Task{
			calendarTask("task-1", "on the last day", day.AddDate(0, 0, 2).Add(12*time.Hour)),
		}
		meetings := newFakeMeetingRepo()
		svc := NewCalendarService(tasks, meetings, time.Second)

		data, err := svc.GetCalendarData(context.Background(), "user-1",
			domain.CalendarQuery{Start: "2026-09-14", End: "2026-09-16"})
		require.NoError(t, err)

		assert.Equal(t, "2026-09-14 - 2026-09-16", data.Period)
		assert.Equal(t, 1, data.Count)
	})

	t.Run("empty window", func(t *testing.T) {
		svc := NewCalendarService(newFakeTaskRepo(), newFakeMeetingRepo(), time.Second)

		data, err := svc.GetCalendarData(context.Background(), "user-1", domain.CalendarQuery{Date: "2026-09-14"})
		require.NoError(t, err)

		assert.Equal(t, 0, data.Count)
		assert.Empty(t, data.Events)
	})

	t.Run("event projections carry source fields", func(t *testing.T) {
		deadline := day.Add(16 * time.Hour)
		tasks := newFakeTaskRepo()
		tasks.listed = []*domain.Task{calendarTask("task-1", "ship release", deadline)}
		meetings := newFakeMeetingRepo()
		meetings.listed = []*domain.Meeting{calendarMeeting("meeting-1", "standup", day, "10:00", "10:15")}
		svc := NewCalendarService(tasks, meetings, time.Second)

		data, err := svc.GetCalendarData(context.Background(), "user-1", domain.CalendarQuery{Date: "2026-09-14"})
		require.NoError(t, err)
		require.Len(t, data.Events, 2)

		meetingEv := data.Events[0]
		assert.Equal(t, "standup", meetingEv.Topic)
		assert.Equal(t, "2026-09-14", meetingEv.Date)
		assert.Equal(t, "10:00", meetingEv.StartTime)
		assert.Equal(t, "10:15", meetingEv.EndTime)

		taskEv := data.Events[1]
		assert.Equal(t, "ship release", taskEv.Title)
		require.NotNil(t, taskEv.Deadline)
		assert.True(t, taskEv.Deadline.Equal(deadline))
		assert.Equal(t, domain.TaskStatusOpen, taskEv.Status)
	})

	badQueries := []struct {
		name  string
		query domain.CalendarQuery
	}{
		{"date and range together", domain.CalendarQuery{Date: "2026-09-14", Start: "2026-09-14", End: "2026-09-16"}},
		{"date with start only", domain.CalendarQuery{Date: "2026-09-14", Start: "2026-09-14"}},
		{"start without end", domain.CalendarQuery{Start: "2026-09-14"}},
		{"end without start", domain.CalendarQuery{End: "2026-09-16"}},
		{"nothing at all", domain.CalendarQuery{}},
		{"malformed date", domain.CalendarQuery{Date: "14.09.2026"}},
		{"malformed range end", domain.CalendarQuery{Start: "2026-09-14", End: "yesterday"}},
	}
	for _, tc := range badQueries {
		t.Run(tc.name, func(t *testing.T) {
			svc := NewCalendarService(newFakeTaskRepo(), newFakeMeetingRepo(), time.Second)

			_, err := svc.GetCalendarData(context.Background(), "user-1", tc.query)
			require.ErrorIs(t, err, domain.ErrInvalidQuery)
		})
	}
}
