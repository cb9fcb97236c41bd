package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"teamdesk/internal/domain"
)

// Meeting reminders go out when the start is this far away. The window is
// wider than the tick so a slow or skipped tick still catches the meeting.
const (
	meetingReminderMin = 50 * time.Minute
	meetingReminderMax = 70 * time.Minute
)

// Task reminder tiers: reminder flag column paired with how far from the
// deadline the reminder fires and the wording used in the email.
var taskReminderTiers = []struct {
	flag string
	lead string
	// window returns [start, end) of deadlines the tier covers at now.
	window func(now time.Time) (time.Time, time.Time)
}{
	{
		flag: "reminder_7days_sent",
		lead: "due in 7 days",
		window: func(now time.Time) (time.Time, time.Time) {
			return now.AddDate(0, 0, 6), now.AddDate(0, 0, 7)
		},
	},
	{
		flag: "reminder_1day_sent",
		lead: "due tomorrow",
		window: func(now time.Time) (time.Time, time.Time) {
			return now, now.AddDate(0, 0, 1)
		},
	},
	{
		flag: "overdue_reminder_sent",
		lead: "overdue",
		window: func(now time.Time) (time.Time, time.Time) {
			// Anything already behind now, bounded to keep the scan cheap.
			return now.AddDate(-1, 0, 0), now
		},
	},
}

// ReminderJob periodically emails users about upcoming meetings and task
// deadlines. Every send is flagged in storage so a reminder goes out once.
type ReminderJob struct {
	logger   *slog.Logger
	meetings domain.MeetingRepository
	tasks    domain.TaskRepository
	users    domain.UserRepository
	emails   domain.EmailService

	cron *cron.Cron
}

// NewReminderJob creates a ReminderJob wired to the given repositories and email service.
func NewReminderJob(
	logger *slog.Logger,
	meetings domain.MeetingRepository,
	tasks domain.TaskRepository,
	users domain.UserRepository,
	emails domain.EmailService,
) *ReminderJob {
	return &ReminderJob{
		logger:   logger,
		meetings: meetings,
		tasks:    tasks,
		users:    users,
		emails:   emails,
	}
}

// Start registers the job under spec (standard 5-field cron) and starts the
// scheduler. Ticks run sequentially; a tick that overruns delays the next one.
func (j *ReminderJob) Start(spec string) error {
	c := cron.New(cron.WithLocation(time.Local))
	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		j.Run(ctx, time.Now())
	})
	if err != nil {
		return fmt.Errorf("register reminder job: %w", err)
	}
	c.Start()
	j.cron = c
	j.logger.Info("reminder job started", "spec", spec)
	return nil
}

// Stop stops the scheduler and waits for a running tick to finish.
func (j *ReminderJob) Stop() {
	if j.cron != nil {
		<-j.cron.Stop().Done()
	}
}

// Run executes one reminder pass at now. Exported so ticks are testable
// without a running scheduler.
func (j *ReminderJob) Run(ctx context.Context, now time.Time) {
	j.remindMeetings(ctx, now)
	j.remindTasks(ctx, now)
}

func (j *ReminderJob) remindMeetings(ctx context.Context, now time.Time) {
	// The reminder window can cross midnight, so fetch today's and
	// tomorrow's unsent meetings and narrow by start instant here.
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local)
	meetings, err := j.meetings.ListDueForReminder(ctx, []time.Time{today, today.AddDate(0, 0, 1)})
	if err != nil {
		j.logger.Error("reminder job: list meetings", "err", err)
		return
	}
	for _, m := range meetings {
		until := m.StartInstant().Sub(now)
		if until < meetingReminderMin || until > meetingReminderMax {
			continue
		}
		emails := make([]string, 0, len(m.Members))
		for _, u := range m.Members {
			emails = append(emails, u.Email)
		}
		var creator *domain.User
		for _, u := range m.Members {
			if u.ID == m.CreatorID {
				creator = u
				break
			}
		}
		if creator == nil {
			c, err := j.users.GetByID(ctx, m.CreatorID)
			if err != nil {
				j.logger.Error("reminder job: load meeting creator", "meeting_id", m.ID, "err", err)
				continue
			}
			creator = c
		}
		for _, u := range m.Members {
			data := &domain.MeetingReminderEmailData{
				Email:        u.Email,
				Topic:        m.Topic,
				Date:         m.Date.Format("2006-01-02"),
				StartTime:    m.StartTime,
				EndTime:      m.EndTime,
				CreatorEmail: creator.Email,
				CreatorName:  creator.FullName(),
				MemberEmails: strings.Join(emails, ", "),
			}
			if err := j.emails.SendMeetingReminder(ctx, data); err != nil {
				j.logger.Warn("reminder job: send meeting reminder", "meeting_id", m.ID, "to", u.Email, "err", err)
			}
		}
		if err := j.meetings.MarkReminderSent(ctx, m.ID); err != nil {
			j.logger.Error("reminder job: mark meeting reminded", "meeting_id", m.ID, "err", err)
		}
	}
}

func (j *ReminderJob) remindTasks(ctx context.Context, now time.Time) {
	for _, tier := range taskReminderTiers {
		start, end := tier.window(now)
		tasks, err := j.tasks.ListDueForReminder(ctx, tier.flag, start, end)
		if err != nil {
			j.logger.Error("reminder job: list tasks", "flag", tier.flag, "err", err)
			continue
		}
		for _, t := range tasks {
			if t.AssignedTo == nil {
				// Nobody to remind; flag it so the tier does not rescan it.
				if err := j.tasks.MarkReminderSent(ctx, t.ID, tier.flag); err != nil {
					j.logger.Error("reminder job: mark task reminded", "task_id", t.ID, "flag", tier.flag, "err", err)
				}
				continue
			}
			assignee, err := j.users.GetByID(ctx, *t.AssignedTo)
			if err != nil {
				j.logger.Error("reminder job: load assignee", "task_id", t.ID, "err", err)
				continue
			}
			data := &domain.TaskReminderEmailData{
				Email:    assignee.Email,
				Title:    t.Title,
				Deadline: t.Deadline.Format("2006-01-02 15:04"),
				Lead:     tier.lead,
			}
			if err := j.emails.SendTaskReminder(ctx, data); err != nil {
				j.logger.Warn("reminder job: send task reminder", "task_id", t.ID, "to", assignee.Email, "err", err)
				continue
			}
			if err := j.tasks.MarkReminderSent(ctx, t.ID, tier.flag); err != nil {
				j.logger.Error("reminder job: mark task reminded", "task_id", t.ID, "flag", tier.flag, "err", err)
			}
		}
	}
}
