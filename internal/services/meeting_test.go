package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"teamdesk/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func futureMeeting(topic string) *domain.Meeting {
	date := time.Now().AddDate(0, 0, 7)
	return domain.NewMeeting(topic, date, "10:00", "11:00", "", time.Time{}, time.Time{})
}

func TestMeetingService_Create(t *testing.T) {
	creator := testUser("user-1", "creator@acme.io", nil)
	alice := testUser("user-2", "alice@acme.io", nil)
	bob := testUser("user-3", "bob@acme.io", nil)

	t.Run("creator is always a participant", func(t *testing.T) {
		users := newFakeUserRepo(creator, alice, bob)
		meetings := newFakeMeetingRepo()
		emails := &fakeEmailService{}
		svc := NewMeetingService(meetings, users, emails, testLogger(), time.Second)

		m, err := svc.Create(context.Background(), creator.ID, futureMeeting("standup"),
			[]string{"alice@acme.io", "bob@acme.io"})
		require.NoError(t, err)

		assert.Equal(t, []string{"user-1", "user-2", "user-3"}, meetings.lastMemberIDs)
		assert.Equal(t, creator.ID, m.CreatorID)
		assert.Len(t, m.Members, 3)
		assert.Len(t, emails.meetingCreated, 3)
	})

	t.Run("duplicate emails and creator email collapse", func(t *testing.T) {
		users := newFakeUserRepo(creator, alice)
		meetings := newFakeMeetingRepo()
		svc := NewMeetingService(meetings, users, &fakeEmailService{}, testLogger(), time.Second)

		_, err := svc.Create(context.Background(), creator.ID, futureMeeting("1:1"),
			[]string{"alice@acme.io", "Alice@acme.io ", "creator@acme.io"})
		require.NoError(t, err)

		assert.Equal(t, []string{"user-1", "user-2"}, meetings.lastMemberIDs)
	})

	t.Run("unknown member email", func(t *testing.T) {
		users := newFakeUserRepo(creator)
		svc := NewMeetingService(newFakeMeetingRepo(), users, &fakeEmailService{}, testLogger(), time.Second)

		_, err := svc.Create(context.Background(), creator.ID, futureMeeting("standup"),
			[]string{"ghost@acme.io"})
		require.ErrorIs(t, err, domain.ErrUserNotFound)
		assert.Contains(t, err.Error(), "ghost@acme.io")
	})

	t.Run("conflict surfaces busy emails", func(t *testing.T) {
		users := newFakeUserRepo(creator, alice)
		meetings := newFakeMeetingRepo()
		meetings.conflicts = []string{"alice@acme.io"}
		emails := &fakeEmailService{}
		svc := NewMeetingService(meetings, users, emails, testLogger(), time.Second)

		_, err := svc.Create(context.Background(), creator.ID, futureMeeting("standup"),
			[]string{"alice@acme.io"})

		var conflictErr *domain.ConflictError
		require.ErrorAs(t, err, &conflictErr)
		assert.Equal(t, []string{"alice@acme.io"}, conflictErr.Emails)
		assert.Empty(t, emails.meetingCreated)
	})

	t.Run("end not after start", func(t *testing.T) {
		users := newFakeUserRepo(creator)
		svc := NewMeetingService(newFakeMeetingRepo(), users, &fakeEmailService{}, testLogger(), time.Second)

		m := futureMeeting("standup")
		m.StartTime = "11:00"
		m.EndTime = "11:00"
		_, err := svc.Create(context.Background(), creator.ID, m, nil)
		require.ErrorIs(t, err, domain.ErrInvalidInterval)
	})

	t.Run("start in the past", func(t *testing.T) {
		users := newFakeUserRepo(creator)
		svc := NewMeetingService(newFakeMeetingRepo(), users, &fakeEmailService{}, testLogger(), time.Second)

		m := futureMeeting("standup")
		m.Date = time.Now().AddDate(0, 0, -1)
		_, err := svc.Create(context.Background(), creator.ID, m, nil)
		require.ErrorIs(t, err, domain.ErrMeetingInPast)
	})

	t.Run("malformed time of day", func(t *testing.T) {
		users := newFakeUserRepo(creator)
		svc := NewMeetingService(newFakeMeetingRepo(), users, &fakeEmailService{}, testLogger(), time.Second)

		m := futureMeeting("standup")
		m.StartTime = "25:99"
		_, err := svc.Create(context.Background(), creator.ID, m, nil)
		require.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("repository failure", func(t *testing.T) {
		users := newFakeUserRepo(creator)
		meetings := newFakeMeetingRepo()
		meetings.createErr = errors.New("db down")
		svc := NewMeetingService(meetings, users, &fakeEmailService{}, testLogger(), time.Second)

		_, err := svc.Create(context.Background(), creator.ID, futureMeeting("standup"), nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "db down")
	})
}

func TestMeetingService_Update(t *testing.T) {
	creator := testUser("user-1", "creator@acme.io", nil)
	alice := testUser("user-2", "alice@acme.io", nil)

	existing := func() *domain.Meeting {
		m := futureMeeting("planning")
		m.ID = "meeting-1"
		m.CreatorID = creator.ID
		m.Members = []*domain.User{creator, alice}
		return m
	}

	t.Run("only the creator may update", func(t *testing.T) {
		meetings := newFakeMeetingRepo(existing())
		svc := NewMeetingService(meetings, newFakeUserRepo(creator, alice), &fakeEmailService{}, testLogger(), time.Second)

		_, err := svc.Update(context.Background(), "meeting-1", alice.ID, domain.MeetingUpdate{Topic: ptr("renamed")})
		require.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("past meeting is immutable", func(t *testing.T) {
		m := existing()
		m.Date = time.Now().AddDate(0, 0, -2)
		meetings := newFakeMeetingRepo(m)
		svc := NewMeetingService(meetings, newFakeUserRepo(creator), &fakeEmailService{}, testLogger(), time.Second)

		_, err := svc.Update(context.Background(), "meeting-1", creator.ID, domain.MeetingUpdate{Topic: ptr("renamed")})
		require.ErrorIs(t, err, domain.ErrMeetingInPast)
	})

	t.Run("nil members keeps the existing set", func(t *testing.T) {
		meetings := newFakeMeetingRepo(existing())
		svc := NewMeetingService(meetings, newFakeUserRepo(creator, alice), &fakeEmailService{}, testLogger(), time.Second)

		updated, err := svc.Update(context.Background(), "meeting-1", creator.ID, domain.MeetingUpdate{Topic: ptr("renamed")})
		require.NoError(t, err)

		assert.Equal(t, "renamed", updated.Topic)
		assert.Equal(t, []string{"user-1", "user-2"}, meetings.lastMemberIDs)
	})

	t.Run("members replaces the invited set", func(t *testing.T) {
		meetings := newFakeMeetingRepo(existing())
		svc := NewMeetingService(meetings, newFakeUserRepo(creator, alice), &fakeEmailService{}, testLogger(), time.Second)

		updated, err := svc.Update(context.Background(), "meeting-1", creator.ID, domain.MeetingUpdate{Members: []string{}})
		require.NoError(t, err)

		assert.Equal(t, []string{"user-1"}, meetings.lastMemberIDs)
		assert.Len(t, updated.Members, 1)
	})

	t.Run("reschedule into an occupied slot", func(t *testing.T) {
		meetings := newFakeMeetingRepo(existing())
		meetings.conflicts = []string{"alice@acme.io"}
		svc := NewMeetingService(meetings, newFakeUserRepo(creator, alice), &fakeEmailService{}, testLogger(), time.Second)

		_, err := svc.Update(context.Background(), "meeting-1", creator.ID,
			domain.MeetingUpdate{StartTime: ptr("14:00"), EndTime: ptr("15:00")})

		var conflictErr *domain.ConflictError
		require.ErrorAs(t, err, &conflictErr)
	})

	t.Run("missing meeting", func(t *testing.T) {
		svc := NewMeetingService(newFakeMeetingRepo(), newFakeUserRepo(creator), &fakeEmailService{}, testLogger(), time.Second)

		_, err := svc.Update(context.Background(), "nope", creator.ID, domain.MeetingUpdate{})
		require.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestMeetingService_Delete(t *testing.T) {
	creator := testUser("user-1", "creator@acme.io", nil)
	other := testUser("user-2", "other@acme.io", nil)

	m := futureMeeting("retro")
	m.ID = "meeting-1"
	m.CreatorID = creator.ID

	t.Run("creator deletes", func(t *testing.T) {
		meetings := newFakeMeetingRepo(m)
		svc := NewMeetingService(meetings, newFakeUserRepo(creator), &fakeEmailService{}, testLogger(), time.Second)

		require.NoError(t, svc.Delete(context.Background(), "meeting-1", creator.ID))
		_, err := meetings.GetByID(context.Background(), "meeting-1")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("non-creator is rejected", func(t *testing.T) {
		meetings := newFakeMeetingRepo(m)
		svc := NewMeetingService(meetings, newFakeUserRepo(creator, other), &fakeEmailService{}, testLogger(), time.Second)

		err := svc.Delete(context.Background(), "meeting-1", other.ID)
		require.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("missing meeting", func(t *testing.T) {
		svc := NewMeetingService(newFakeMeetingRepo(), newFakeUserRepo(creator), &fakeEmailService{}, testLogger(), time.Second)

		err := svc.Delete(context.Background(), "nope", creator.ID)
		require.ErrorIs(t, err, domain.ErrNotFound)
	})
}
