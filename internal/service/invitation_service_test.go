package service

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskboard/internal/model"
	"taskboard/internal/repository"
)

func newInvitationFixture(t *testing.T) (*fixture, *InvitationService, *test.Hook) {
	t.Helper()
	f := newFixture(PolicyTeam)
	seedTeamWorld(f)
	logger, hook := test.NewNullLogger()
	svc := NewInvitationService(
		f.tx, fakeInvitations{f.db}, fakeTeams{f.db}, fakeUsers{f.db},
		f.notifier, "https://kanban.example.com/", logger,
	)
	return f, svc, hook
}

func TestInvitationService_Invite(t *testing.T) {
	f, svc, _ := newInvitationFixture(t)

	inv, err := svc.Invite(context.Background(), " A@X.com ", 5, 1)

	require.NoError(t, err)
	assert.Equal(t, "a@x.com", inv.Email)
	assert.Equal(t, "platform", inv.Team.Name)
	require.Len(t, f.notifier.sent, 1)
	msg := f.notifier.sent[0]
	assert.Equal(t, "Invitation to join platform on Kanban", msg.Subject)
	assert.Equal(t, []string{"a@x.com"}, msg.To)
	assert.Contains(t, msg.Text, "https://kanban.example.com/accept-invitation/"+inv.ID.String()+"/")
}

func TestInvitationService_Invite_TwiceIsConflict(t *testing.T) {
	f, svc, _ := newInvitationFixture(t)
	ctx := context.Background()

	_, err := svc.Invite(ctx, "a@x.com", 5, 1)
	require.NoError(t, err)

	_, err = svc.Invite(ctx, "A@x.com", 5, 2)
	assert.ErrorIs(t, err, ErrConflict)
	assert.Len(t, f.db.invitations, 1)

	_, err = svc.Invite(ctx, "a@x.com", 6, 4)
	assert.NoError(t, err, "the same email may be invited to another team")
}

func TestInvitationService_Invite_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		team    uint
		inviter uint
		want    error
	}{
		{"malformed email", "not-an-email", 5, 1, ErrValidation},
		{"empty email", "", 5, 1, ErrValidation},
		{"unknown team", "a@x.com", 99, 1, ErrNotFound},
		{"inviter outside team", "a@x.com", 5, 4, ErrUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, svc, _ := newInvitationFixture(t)

			_, err := svc.Invite(context.Background(), tt.email, tt.team, tt.inviter)

			assert.ErrorIs(t, err, tt.want)
			assert.Empty(t, f.db.invitations)
			assert.Empty(t, f.notifier.sent)
		})
	}
}

func TestInvitationService_Invite_EmailFailureIsLogged(t *testing.T) {
	f, svc, hook := newInvitationFixture(t)
	f.notifier.err = errSMTPDown

	inv, err := svc.Invite(context.Background(), "a@x.com", 5, 1)

	require.NoError(t, err)
	assert.Contains(t, f.db.invitations, inv.ID)
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
}

func TestInvitationService_Accept_NewUser(t *testing.T) {
	f, svc, _ := newInvitationFixture(t)
	ctx := context.Background()
	inv, err := svc.Invite(ctx, "new@x.com", 5, 1)
	require.NoError(t, err)
	f.notifier.sent = nil

	user, err := svc.Accept(ctx, inv.ID, " Nora ", "Newman")

	require.NoError(t, err)
	assert.Equal(t, "new@x.com", user.Username)
	assert.Equal(t, "new@x.com", user.Email)
	assert.Equal(t, "Nora", user.FirstName)
	assert.NotEmpty(t, user.HashedPassword)
	assert.True(t, f.db.members[5][user.ID])
	assert.True(t, f.db.invitations[inv.ID].Accepted)

	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, "Your Temporary Password", f.notifier.sent[0].Subject)
	assert.Equal(t, []string{"new@x.com"}, f.notifier.sent[0].To)
}

func TestInvitationService_Accept_ExistingUser(t *testing.T) {
	f, svc, _ := newInvitationFixture(t)
	ctx := context.Background()
	inv, err := svc.Invite(ctx, "DAVE@example.com", 5, 1)
	require.NoError(t, err)
	f.notifier.sent = nil

	user, err := svc.Accept(ctx, inv.ID, "Dave", "Doe")

	require.NoError(t, err)
	assert.Equal(t, uint(4), user.ID)
	assert.Equal(t, "Doe", f.db.users[4].LastName)
	assert.True(t, f.db.members[5][4])
	assert.Empty(t, f.notifier.sent, "existing users keep their password")
}

func TestInvitationService_Accept_TwiceIsConflict(t *testing.T) {
	f, svc, _ := newInvitationFixture(t)
	ctx := context.Background()
	inv, err := svc.Invite(ctx, "new@x.com", 5, 1)
	require.NoError(t, err)

	_, err = svc.Accept(ctx, inv.ID, "Nora", "Newman")
	require.NoError(t, err)
	users := len(f.db.users)

	_, err = svc.Accept(ctx, inv.ID, "Nora", "Newman")
	assert.ErrorIs(t, err, ErrConflict)
	assert.Len(t, f.db.users, users)
}

func TestInvitationService_Accept_Rejections(t *testing.T) {
	f, svc, _ := newInvitationFixture(t)
	ctx := context.Background()
	inv, err := svc.Invite(ctx, "new@x.com", 5, 1)
	require.NoError(t, err)

	_, err = svc.Accept(ctx, uuid.New(), "Nora", "Newman")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Accept(ctx, inv.ID, "Nora", "  ")
	assert.ErrorIs(t, err, ErrValidation)
	assert.False(t, f.db.invitations[inv.ID].Accepted)
}

func TestInvitationService_Accept_PasswordEmailFailureIgnored(t *testing.T) {
	f, svc, hook := newInvitationFixture(t)
	ctx := context.Background()
	inv, err := svc.Invite(ctx, "new@x.com", 5, 1)
	require.NoError(t, err)
	f.notifier.err = errSMTPDown

	user, err := svc.Accept(ctx, inv.ID, "Nora", "Newman")

	require.NoError(t, err)
	assert.True(t, f.db.members[5][user.ID])
	assert.Equal(t, user.ID, hook.LastEntry().Data["user_id"])
}

func TestInvitationService_ListSent(t *testing.T) {
	_, svc, _ := newInvitationFixture(t)
	ctx := context.Background()
	_, err := svc.Invite(ctx, "a@x.com", 5, 1)
	require.NoError(t, err)
	_, err = svc.Invite(ctx, "b@x.com", 5, 2)
	require.NoError(t, err)

	sent, err := svc.ListSent(ctx, 1)

	require.NoError(t, err)
	require.Len(t, sent, 1)
	assert.Equal(t, "a@x.com", sent[0].Email)
}

func TestGeneratePassword(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		pw, err := generatePassword()
		require.NoError(t, err)
		assert.Len(t, pw, tempPasswordLength)
		for _, r := range pw {
			assert.True(t, strings.ContainsRune(tempPasswordAlphabet, r))
		}
		seen[pw] = true
	}
	assert.Greater(t, len(seen), 1)
}

// lostRaceInvitations sees no pending invitation but loses the insert to the
// unique index.
type lostRaceInvitations struct{ fakeInvitations }

func (lostRaceInvitations) HasPending(context.Context, string, uint) (bool, error) {
	return false, nil
}

func (lostRaceInvitations) Create(context.Context, *model.Invitation) error {
	return repository.ErrDuplicate
}

func TestInvitationService_Invite_UniqueIndexIsConflict(t *testing.T) {
	f, _, _ := newInvitationFixture(t)
	svc := NewInvitationService(
		f.tx, lostRaceInvitations{fakeInvitations{f.db}}, fakeTeams{f.db}, fakeUsers{f.db},
		f.notifier, "https://kanban.example.com/", logrus.New(),
	)

	_, err := svc.Invite(context.Background(), "a@x.com", 5, 1)

	assert.ErrorIs(t, err, ErrConflict)
	assert.Empty(t, f.notifier.sent)
}

// takenUsernames rejects every new account as a duplicate.
type takenUsernames struct{ fakeUsers }

func (takenUsernames) Create(context.Context, *model.User) error {
	return repository.ErrDuplicate
}

func TestInvitationService_Accept_UsernameTakenIsConflict(t *testing.T) {
	f, svc, _ := newInvitationFixture(t)
	ctx := context.Background()
	inv, err := svc.Invite(ctx, "new@x.com", 5, 1)
	require.NoError(t, err)
	f.notifier.sent = nil

	svc = NewInvitationService(
		f.tx, fakeInvitations{f.db}, fakeTeams{f.db}, takenUsernames{fakeUsers{f.db}},
		f.notifier, "https://kanban.example.com/", logrus.New(),
	)
	_, err = svc.Accept(ctx, inv.ID, "Nora", "Newman")

	assert.ErrorIs(t, err, ErrConflict)
	assert.False(t, f.db.invitations[inv.ID].Accepted)
	assert.Empty(t, f.notifier.sent)
}
