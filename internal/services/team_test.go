package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"teamdesk/internal/domain"
)

func TestTeamService_AddMember(t *testing.T) {
	team := &domain.Team{ID: "team-1", Name: "Backend"}

	t.Run("free agent joins and is notified", func(t *testing.T) {
		user := testUser("user-1", "dev@acme.io", nil)
		users := newFakeUserRepo(user)
		emails := &fakeEmailService{}
		svc := NewTeamService(newFakeTeamRepo(team), users, emails, testLogger(), time.Second)

		added, err := svc.AddMember(context.Background(), team.ID, "dev@acme.io")
		require.NoError(t, err)

		require.NotNil(t, added.TeamID)
		assert.Equal(t, team.ID, *added.TeamID)
		require.Len(t, emails.membership, 1)
		assert.True(t, emails.membership[0].Added)
		assert.Equal(t, "Backend", emails.membership[0].TeamName)
	})

	t.Run("already teamed user is rejected", func(t *testing.T) {
		user := testUser("user-1", "dev@acme.io", ptr("team-2"))
		svc := NewTeamService(newFakeTeamRepo(team), newFakeUserRepo(user), &fakeEmailService{}, testLogger(), time.Second)

		_, err := svc.AddMember(context.Background(), team.ID, "dev@acme.io")
		require.ErrorIs(t, err, domain.ErrAlreadyInTeam)
	})

	t.Run("unknown email", func(t *testing.T) {
		svc := NewTeamService(newFakeTeamRepo(team), newFakeUserRepo(), &fakeEmailService{}, testLogger(), time.Second)

		_, err := svc.AddMember(context.Background(), team.ID, "ghost@acme.io")
		require.ErrorIs(t, err, domain.ErrUserNotFound)
	})

	t.Run("missing team", func(t *testing.T) {
		user := testUser("user-1", "dev@acme.io", nil)
		svc := NewTeamService(newFakeTeamRepo(), newFakeUserRepo(user), &fakeEmailService{}, testLogger(), time.Second)

		_, err := svc.AddMember(context.Background(), "team-404", "dev@acme.io")
		require.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestTeamService_RemoveMember(t *testing.T) {
	team := &domain.Team{ID: "team-1", Name: "Backend"}

	t.Run("member is detached and notified", func(t *testing.T) {
		user := testUser("user-1", "dev@acme.io", ptr("team-1"))
		users := newFakeUserRepo(user)
		emails := &fakeEmailService{}
		svc := NewTeamService(newFakeTeamRepo(team), users, emails, testLogger(), time.Second)

		require.NoError(t, svc.RemoveMember(context.Background(), "dev@acme.io"))

		stored, err := users.GetByID(context.Background(), user.ID)
		require.NoError(t, err)
		assert.Nil(t, stored.TeamID)
		require.Len(t, emails.membership, 1)
		assert.False(t, emails.membership[0].Added)
	})

	t.Run("user without a team", func(t *testing.T) {
		user := testUser("user-1", "dev@acme.io", nil)
		svc := NewTeamService(newFakeTeamRepo(team), newFakeUserRepo(user), &fakeEmailService{}, testLogger(), time.Second)

		err := svc.RemoveMember(context.Background(), "dev@acme.io")
		require.ErrorIs(t, err, domain.ErrNotInTeam)
	})
}

func TestTeamService_ChangeMemberRole(t *testing.T) {
	team := &domain.Team{ID: "team-1", Name: "Backend"}

	t.Run("role changes for a member", func(t *testing.T) {
		user := testUser("user-1", "dev@acme.io", ptr("team-1"))
		users := newFakeUserRepo(user)
		svc := NewTeamService(newFakeTeamRepo(team), users, &fakeEmailService{}, testLogger(), time.Second)

		changed, err := svc.ChangeMemberRole(context.Background(), team.ID, "dev@acme.io", domain.RoleManager)
		require.NoError(t, err)

		assert.Equal(t, domain.RoleManager, changed.Role)
		stored, _ := users.GetByID(context.Background(), user.ID)
		assert.Equal(t, domain.RoleManager, stored.Role)
	})

	t.Run("member of another team", func(t *testing.T) {
		user := testUser("user-1", "dev@acme.io", ptr("team-2"))
		svc := NewTeamService(newFakeTeamRepo(team), newFakeUserRepo(user), &fakeEmailService{}, testLogger(), time.Second)

		_, err := svc.ChangeMemberRole(context.Background(), team.ID, "dev@acme.io", domain.RoleManager)
		require.ErrorIs(t, err, domain.ErrNotInTeam)
	})

	t.Run("unknown role", func(t *testing.T) {
		user := testUser("user-1", "dev@acme.io", ptr("team-1"))
		svc := NewTeamService(newFakeTeamRepo(team), newFakeUserRepo(user), &fakeEmailService{}, testLogger(), time.Second)

		_, err := svc.ChangeMemberRole(context.Background(), team.ID, "dev@acme.io", "owner")
		require.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestTeamService_GetCurrentTeam(t *testing.T) {
	team := &domain.Team{ID: "team-1", Name: "Backend"}

	t.Run("returns team with members", func(t *testing.T) {
		user := testUser("user-1", "dev@acme.io", ptr("team-1"))
		teams := newFakeTeamRepo(team)
		teams.members["team-1"] = []*domain.User{user}
		svc := NewTeamService(teams, newFakeUserRepo(user), &fakeEmailService{}, testLogger(), time.Second)

		got, members, err := svc.GetCurrentTeam(context.Background(), user.ID)
		require.NoError(t, err)

		assert.Equal(t, "Backend", got.Name)
		require.Len(t, members, 1)
		assert.Equal(t, user.ID, members[0].ID)
	})

	t.Run("caller without a team", func(t *testing.T) {
		user := testUser("user-1", "dev@acme.io", nil)
		svc := NewTeamService(newFakeTeamRepo(team), newFakeUserRepo(user), &fakeEmailService{}, testLogger(), time.Second)

		_, _, err := svc.GetCurrentTeam(context.Background(), user.ID)
		require.ErrorIs(t, err, domain.ErrNotInTeam)
	})
}

func TestTeamService_CreateTeam(t *testing.T) {
	t.Run("creator is required", func(t *testing.T) {
		svc := NewTeamService(newFakeTeamRepo(), newFakeUserRepo(), &fakeEmailService{}, testLogger(), time.Second)

		err := svc.CreateTeam(context.Background(), &domain.Team{Name: "Backend"})
		require.Error(t, err)
	})

	t.Run("team is stored with timestamps", func(t *testing.T) {
		teams := newFakeTeamRepo()
		svc := NewTeamService(teams, newFakeUserRepo(), &fakeEmailService{}, testLogger(), time.Second)

		team := &domain.Team{Name: "Backend", CreatorID: "user-1"}
		require.NoError(t, svc.CreateTeam(context.Background(), team))

		assert.NotEmpty(t, team.ID)
		assert.False(t, team.CreatedAt.IsZero())
	})
}
