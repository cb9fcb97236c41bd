package domain

import "context"

// Mailer defines the contract for sending emails (infrastructure port).
type Mailer interface {
	Send(to, subject, html, text string) error
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// TaskAssignedEmailData holds data for the task assignment notification.
type TaskAssignedEmailData struct {
	Email        string
	AssigneeName string
	Title        string
	Description  string
	Deadline     string
	Status       string
	TeamName     string
	AuthorName   string
}

// TeamMembershipEmailData holds data for the added-to/removed-from team notification.
type TeamMembershipEmailData struct {
	Email    string
	TeamName string
	Added    bool
}

// MeetingCreatedEmailData holds data for the meeting invitation notification.
type MeetingCreatedEmailData struct {
	Email        string
	Topic        string
	Date         string
	StartTime    string
	EndTime      string
	CreatorEmail string
	CreatorName  string
}

// MeetingReminderEmailData holds data for the one-hour meeting reminder.
type MeetingReminderEmailData struct {
	Email        string
	Topic        string
	Date         string
	StartTime    string
	EndTime      string
	CreatorEmail string
	CreatorName  string
	MemberEmails string
}

// TaskReminderEmailData holds data for the deadline reminder emails.
type TaskReminderEmailData struct {
	Email    string
	Title    string
	Deadline string
	// Lead describes how far the deadline is: "in 7 days", "tomorrow", "overdue".
	Lead string
}

// EmailService defines the contract for sending domain-level emails.
// All sends are best-effort; callers log failures and move on.
type EmailService interface {
	SendTaskAssigned(ctx context.Context, data *TaskAssignedEmailData) error
	SendTeamMembershipChange(ctx context.Context, data *TeamMembershipEmailData) error
	SendMeetingCreated(ctx context.Context, data *MeetingCreatedEmailData) error
	SendMeetingReminder(ctx context.Context, data *MeetingReminderEmailData) error
	SendTaskReminder(ctx context.Context, data *TaskReminderEmailData) error
}
