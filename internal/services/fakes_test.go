package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"teamdesk/internal/domain"
)

// fakeUserRepo implements domain.UserRepository for tests.
type fakeUserRepo struct {
	byID      map[string]*domain.User
	byEmail   map[string]*domain.User
	createErr error
	getErr    error
	deleted   []string
}

func newFakeUserRepo(users ...*domain.User) *fakeUserRepo {
	f := &fakeUserRepo{
		byID:    make(map[string]*domain.User),
		byEmail: make(map[string]*domain.User),
	}
	for _, u := range users {
		f.byID[u.ID] = u
		f.byEmail[u.Email] = u
	}
	return f
}

func (f *fakeUserRepo) Create(ctx context.Context, u *domain.User) error {
	if f.createErr != nil {
		return f.createErr
	}
	if _, ok := f.byEmail[u.Email]; ok {
		return domain.ErrDuplicateEmail
	}
	u.ID = "user-" + strconv.Itoa(len(f.byID)+1)
	f.byID[u.ID] = u
	f.byEmail[u.Email] = u
	return nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if u, ok := f.byEmail[email]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, domain.ErrUserNotFound
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if u, ok := f.byID[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, domain.ErrUserNotFound
}

func (f *fakeUserRepo) List(ctx context.Context) ([]*domain.User, error) {
	var users []*domain.User
	for _, u := range f.byID {
		users = append(users, u)
	}
	return users, nil
}

func (f *fakeUserRepo) ListByEmails(ctx context.Context, emails []string) ([]*domain.User, error) {
	var users []*domain.User
	for _, e := range emails {
		if u, ok := f.byEmail[e]; ok {
			users = append(users, u)
		}
	}
	return users, nil
}

func (f *fakeUserRepo) Update(ctx context.Context, u *domain.User) error {
	if _, ok := f.byID[u.ID]; !ok {
		return domain.ErrUserNotFound
	}
	f.byID[u.ID] = u
	f.byEmail[u.Email] = u
	return nil
}

func (f *fakeUserRepo) SetTeam(ctx context.Context, userID string, teamID *string) error {
	u, ok := f.byID[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.TeamID = teamID
	return nil
}

func (f *fakeUserRepo) SetRole(ctx context.Context, userID, role string) error {
	u, ok := f.byID[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.Role = role
	return nil
}

func (f *fakeUserRepo) DeleteByEmail(ctx context.Context, email string) error {
	u, ok := f.byEmail[email]
	if !ok {
		return domain.ErrUserNotFound
	}
	delete(f.byID, u.ID)
	delete(f.byEmail, email)
	f.deleted = append(f.deleted, email)
	return nil
}

// fakeTeamRepo implements domain.TeamRepository for tests.
type fakeTeamRepo struct {
	byID    map[string]*domain.Team
	members map[string][]*domain.User
}

func newFakeTeamRepo(teams ...*domain.Team) *fakeTeamRepo {
	f := &fakeTeamRepo{
		byID:    make(map[string]*domain.Team),
		members: make(map[string][]*domain.User),
	}
	for _, t := range teams {
		f.byID[t.ID] = t
	}
	return f
}

func (f *fakeTeamRepo) Create(ctx context.Context, t *domain.Team) error {
	t.ID = "team-" + strconv.Itoa(len(f.byID)+1)
	f.byID[t.ID] = t
	return nil
}

func (f *fakeTeamRepo) GetByID(ctx context.Context, id string) (*domain.Team, error) {
	if t, ok := f.byID[id]; ok {
		return t, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeTeamRepo) List(ctx context.Context) ([]*domain.Team, error) {
	var teams []*domain.Team
	for _, t := range f.byID {
		teams = append(teams, t)
	}
	return teams, nil
}

func (f *fakeTeamRepo) Update(ctx context.Context, teamID string, name, description *string) (*domain.Team, error) {
	t, ok := f.byID[teamID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if name != nil {
		t.Name = *name
	}
	if description != nil {
		t.Description = *description
	}
	return t, nil
}

func (f *fakeTeamRepo) Delete(ctx context.Context, id string) error {
	if _, ok := f.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeTeamRepo) ListMembers(ctx context.Context, teamID string) ([]*domain.User, error) {
	return f.members[teamID], nil
}

func (f *fakeTeamRepo) HasMember(ctx context.Context, teamID, userID string) (bool, error) {
	for _, u := range f.members[teamID] {
		if u.ID == userID {
			return true, nil
		}
	}
	return false, nil
}

// fakeTaskRepo implements domain.TaskRepository for tests.
type fakeTaskRepo struct {
	byID      map[string]*domain.Task
	listed    []*domain.Task
	reminders map[string][]string // taskID -> flags marked
	listErr   error
}

func newFakeTaskRepo(tasks ...*domain.Task) *fakeTaskRepo {
	f := &fakeTaskRepo{
		byID:      make(map[string]*domain.Task),
		reminders: make(map[string][]string),
	}
	for _, t := range tasks {
		f.byID[t.ID] = t
	}
	return f
}

func (f *fakeTaskRepo) Create(ctx context.Context, t *domain.Task) error {
	t.ID = "task-" + strconv.Itoa(len(f.byID)+1)
	f.byID[t.ID] = t
	return nil
}

func (f *fakeTaskRepo) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	if t, ok := f.byID[id]; ok {
		cp := *t
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeTaskRepo) Update(ctx context.Context, taskID string, upd domain.TaskUpdate) (*domain.Task, error) {
	t, ok := f.byID[taskID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if upd.Title != nil {
		t.Title = *upd.Title
	}
	if upd.Description != nil {
		t.Description = *upd.Description
	}
	if upd.Deadline != nil {
		t.Deadline = *upd.Deadline
	}
	if upd.Status != nil {
		t.Status = *upd.Status
	}
	if upd.AssignedTo != nil {
		if *upd.AssignedTo == "" {
			t.AssignedTo = nil
		} else {
			id := *upd.AssignedTo
			t.AssignedTo = &id
		}
	}
	cp := *t
	return &cp, nil
}

func (f *fakeTaskRepo) Delete(ctx context.Context, id string) error {
	if _, ok := f.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeTaskRepo) ListForUser(ctx context.Context, userID, status string) ([]*domain.Task, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.listed, nil
}

func (f *fakeTaskRepo) ListForUserInWindow(ctx context.Context, userID string, start, end time.Time) ([]*domain.Task, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var tasks []*domain.Task
	for _, t := range f.listed {
		if !t.Deadline.Before(start) && t.Deadline.Before(end) {
			tasks = append(tasks, t)
		}
	}
	return tasks, nil
}

func (f *fakeTaskRepo) ListDueForReminder(ctx context.Context, flag string, start, end time.Time) ([]*domain.Task, error) {
	var tasks []*domain.Task
	for _, t := range f.byID {
		if t.Status == domain.TaskStatusDone {
			continue
		}
		marked := false
		for _, fl := range f.reminders[t.ID] {
			if fl == flag {
				marked = true
			}
		}
		if marked {
			continue
		}
		if !t.Deadline.Before(start) && t.Deadline.Before(end) {
			tasks = append(tasks, t)
		}
	}
	return tasks, nil
}

func (f *fakeTaskRepo) MarkReminderSent(ctx context.Context, taskID, flag string) error {
	if _, ok := f.byID[taskID]; !ok {
		return domain.ErrNotFound
	}
	f.reminders[taskID] = append(f.reminders[taskID], flag)
	return nil
}

// fakeCommentRepo implements domain.CommentRepository for tests.
type fakeCommentRepo struct {
	created []*domain.Comment
}

func (f *fakeCommentRepo) Create(ctx context.Context, c *domain.Comment) error {
	c.ID = "comment-" + strconv.Itoa(len(f.created)+1)
	f.created = append(f.created, c)
	return nil
}

func (f *fakeCommentRepo) ListByTaskID(ctx context.Context, taskID string) ([]*domain.Comment, error) {
	var comments []*domain.Comment
	for _, c := range f.created {
		if c.TaskID == taskID {
			comments = append(comments, c)
		}
	}
	return comments, nil
}

// fakeMeetingRepo implements domain.MeetingRepository for tests.
type fakeMeetingRepo struct {
	byID      map[string]*domain.Meeting
	conflicts []string
	createErr error
	// lastMemberIDs records what the service resolved for the write.
	lastMemberIDs []string
	listed        []*domain.Meeting
	reminded      []string
}

func newFakeMeetingRepo(meetings ...*domain.Meeting) *fakeMeetingRepo {
	f := &fakeMeetingRepo{byID: make(map[string]*domain.Meeting)}
	for _, m := range meetings {
		f.byID[m.ID] = m
	}
	return f
}

func (f *fakeMeetingRepo) Create(ctx context.Context, m *domain.Meeting, memberIDs []string) ([]string, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.lastMemberIDs = memberIDs
	if f.conflicts != nil {
		return f.conflicts, nil
	}
	m.ID = "meeting-" + strconv.Itoa(len(f.byID)+1)
	f.byID[m.ID] = m
	return nil, nil
}

func (f *fakeMeetingRepo) Update(ctx context.Context, m *domain.Meeting, memberIDs []string) ([]string, error) {
	if _, ok := f.byID[m.ID]; !ok {
		return nil, domain.ErrNotFound
	}
	f.lastMemberIDs = memberIDs
	if f.conflicts != nil {
		return f.conflicts, nil
	}
	f.byID[m.ID] = m
	return nil, nil
}

func (f *fakeMeetingRepo) GetByID(ctx context.Context, id string) (*domain.Meeting, error) {
	if m, ok := f.byID[id]; ok {
		cp := *m
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeMeetingRepo) Delete(ctx context.Context, id string) error {
	if _, ok := f.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeMeetingRepo) ListForUserBetween(ctx context.Context, userID string, startDate, endDate time.Time) ([]*domain.Meeting, error) {
	var meetings []*domain.Meeting
	for _, m := range f.listed {
		if !m.Date.Before(startDate) && m.Date.Before(endDate) {
			meetings = append(meetings, m)
		}
	}
	return meetings, nil
}

func (f *fakeMeetingRepo) ListDueForReminder(ctx context.Context, dates []time.Time) ([]*domain.Meeting, error) {
	return f.listed, nil
}

func (f *fakeMeetingRepo) MarkReminderSent(ctx context.Context, meetingID string) error {
	f.reminded = append(f.reminded, meetingID)
	return nil
}

// fakeEvaluationRepo implements domain.EvaluationRepository for tests.
type fakeEvaluationRepo struct {
	byID map[string]*domain.Evaluation
}

func newFakeEvaluationRepo(evals ...*domain.Evaluation) *fakeEvaluationRepo {
	f := &fakeEvaluationRepo{byID: make(map[string]*domain.Evaluation)}
	for _, e := range evals {
		f.byID[e.ID] = e
	}
	return f
}

func (f *fakeEvaluationRepo) Create(ctx context.Context, e *domain.Evaluation) error {
	e.ID = "eval-" + strconv.Itoa(len(f.byID)+1)
	f.byID[e.ID] = e
	return nil
}

func (f *fakeEvaluationRepo) GetByID(ctx context.Context, id string) (*domain.Evaluation, error) {
	if e, ok := f.byID[id]; ok {
		return e, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeEvaluationRepo) Delete(ctx context.Context, id string) error {
	if _, ok := f.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeEvaluationRepo) ListByTaskID(ctx context.Context, taskID string) ([]*domain.Evaluation, error) {
	var evals []*domain.Evaluation
	for _, e := range f.byID {
		if e.TaskID == taskID {
			evals = append(evals, e)
		}
	}
	return evals, nil
}

// fakeEmailService records sends; implements domain.EmailService.
type fakeEmailService struct {
	taskAssigned    []*domain.TaskAssignedEmailData
	membership      []*domain.TeamMembershipEmailData
	meetingCreated  []*domain.MeetingCreatedEmailData
	meetingReminder []*domain.MeetingReminderEmailData
	taskReminder    []*domain.TaskReminderEmailData
	err             error
}

func (f *fakeEmailService) SendTaskAssigned(ctx context.Context, data *domain.TaskAssignedEmailData) error {
	f.taskAssigned = append(f.taskAssigned, data)
	return f.err
}

func (f *fakeEmailService) SendTeamMembershipChange(ctx context.Context, data *domain.TeamMembershipEmailData) error {
	f.membership = append(f.membership, data)
	return f.err
}

func (f *fakeEmailService) SendMeetingCreated(ctx context.Context, data *domain.MeetingCreatedEmailData) error {
	f.meetingCreated = append(f.meetingCreated, data)
	return f.err
}

func (f *fakeEmailService) SendMeetingReminder(ctx context.Context, data *domain.MeetingReminderEmailData) error {
	f.meetingReminder = append(f.meetingReminder, data)
	return f.err
}

func (f *fakeEmailService) SendTaskReminder(ctx context.Context, data *domain.TaskReminderEmailData) error {
	f.taskReminder = append(f.taskReminder, data)
	return f.err
}

// fakePasswordHasher implements domain.PasswordHasher for tests.
type fakePasswordHasher struct {
	compareErr error
}

func (f *fakePasswordHasher) GenerateSalt() (string, error) { return "salt", nil }
func (f *fakePasswordHasher) Hash(salt, password string) (string, error) {
	return "hash-" + password, nil
}
func (f *fakePasswordHasher) Compare(hash, salt, password string) error {
	if f.compareErr != nil {
		return f.compareErr
	}
	if hash != "hash-"+password {
		return errors.New("mismatch")
	}
	return nil
}

// fakeTokenIssuer implements domain.TokenIssuer for tests.
type fakeTokenIssuer struct {
	err error
}

func (f *fakeTokenIssuer) Issue(userID, email, role string, expiry time.Duration) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return fmt.Sprintf("token-%s-%s", userID, role), nil
}

func ptr[T any](v T) *T { return &v }

func testUser(id, email string, teamID *string) *domain.User {
	now := time.Now()
	u := domain.NewUser(email, "First", "Last", domain.RoleUser, now, now)
	u.ID = id
	u.TeamID = teamID
	return u
}
