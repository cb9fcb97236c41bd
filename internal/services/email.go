package services

import (
	"context"
	"fmt"
	"log"

	"teamdesk/internal/domain"
)

type emailService struct {
	mailer   domain.Mailer
	renderer domain.EmailTemplateRenderer
}

// NewEmailService returns an EmailService that uses the given Mailer and template renderer.
func NewEmailService(mailer domain.Mailer, renderer domain.EmailTemplateRenderer) domain.EmailService {
	return &emailService{mailer: mailer, renderer: renderer}
}

// SendTaskAssigned notifies the assignee using the "task_assigned" template.
func (s *emailService) SendTaskAssigned(ctx context.Context, data *domain.TaskAssignedEmailData) error {
	if data == nil {
		return fmt.Errorf("task assigned data is nil")
	}
	return s.send("task_assigned", data.Email, data)
}

// SendTeamMembershipChange notifies a user about being added to or removed from a team.
func (s *emailService) SendTeamMembershipChange(ctx context.Context, data *domain.TeamMembershipEmailData) error {
	if data == nil {
		return fmt.Errorf("team membership data is nil")
	}
	return s.send("team_membership", data.Email, data)
}

// SendMeetingCreated notifies a participant about a newly scheduled meeting.
func (s *emailService) SendMeetingCreated(ctx context.Context, data *domain.MeetingCreatedEmailData) error {
	if data == nil {
		return fmt.Errorf("meeting created data is nil")
	}
	return s.send("meeting_created", data.Email, data)
}

// SendMeetingReminder sends the one-hour meeting reminder.
func (s *emailService) SendMeetingReminder(ctx context.Context, data *domain.MeetingReminderEmailData) error {
	if data == nil {
		return fmt.Errorf("meeting reminder data is nil")
	}
	return s.send("meeting_reminder", data.Email, data)
}

// SendTaskReminder sends a deadline reminder (7 days, 1 day, or overdue).
func (s *emailService) SendTaskReminder(ctx context.Context, data *domain.TaskReminderEmailData) error {
	if data == nil {
		return fmt.Errorf("task reminder data is nil")
	}
	return s.send("task_reminder", data.Email, data)
}

func (s *emailService) send(templateName, to string, data any) error {
	subject, htmlBody, textBody, err := s.renderer.Render(templateName, data)
	if err != nil {
		return fmt.Errorf("failed to render %s template: %w", templateName, err)
	}
	if err := s.mailer.Send(to, subject, htmlBody, textBody); err != nil {
		return fmt.Errorf("failed to send %s email: %w", templateName, err)
	}
	log.Printf("[EMAIL] %s email sent to %s", templateName, to)
	return nil
}
