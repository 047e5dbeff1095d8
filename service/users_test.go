package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskhub/service"
)

func register(t *testing.T, f *fixture, name string) *service.AuthResult {
	t.Helper()
	res, err := f.svc.Register(t.Context(), service.RegisterInput{
		Name:     name,
		Email:    name + "@example.com",
		Password: "secret1",
	})
	require.NoError(t, err)
	return res
}

func TestRegisterAndLogin(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()

	res := register(t, f, "ann")
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, "ann@example.com", res.User.Email)

	f.svc.Wait()
	sent := f.mailer.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "ann@example.com", sent[0].To)
	assert.Equal(t, "Welcome to TaskHub", sent[0].Subject)

	_, err := f.svc.Register(ctx, service.RegisterInput{Name: "ann", Email: "ANN@example.com", Password: "secret1"})
	requireKind(t, err, service.KindConflict)

	_, err = f.svc.Register(ctx, service.RegisterInput{Name: "bob", Email: "bob@example.com", Password: "123"})
	requireKind(t, err, service.KindValidation)

	login, err := f.svc.Login(ctx, "ann@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, login.User.ID)

	_, err = f.svc.Login(ctx, "ann@example.com", "wrong")
	requireKind(t, err, service.KindUnauthenticated)
	_, err = f.svc.Login(ctx, "nobody@example.com", "secret1")
	requireKind(t, err, service.KindUnauthenticated)
}

func TestRegisterSurvivesMailerFailure(t *testing.T) {
	f := newFixture(t)
	f.mailer.err = assert.AnError

	res := register(t, f, "ann")
	f.svc.Wait()
	assert.NotEmpty(t, res.Token)
}

func TestAuthenticate(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()
	res := register(t, f, "ann")

	user, err := f.svc.Authenticate(ctx, res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, user.ID)

	_, err = f.svc.Authenticate(ctx, "")
	requireKind(t, err, service.KindUnauthenticated)
	_, err = f.svc.Authenticate(ctx, "garbage")
	requireKind(t, err, service.KindUnauthenticated)

	require.NoError(t, f.svc.DeleteAccount(ctx, res.User.ID))
	_, err = f.svc.Authenticate(ctx, res.Token)
	requireKind(t, err, service.KindUnauthenticated)
}

func TestUpdateUser(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()
	ann := register(t, f, "ann")
	bob := register(t, f, "bob")

	name := "Ann Smith"
	_, err := f.svc.UpdateUser(ctx, ann.User.ID, bob.User.ID, service.UpdateUserInput{Name: &name})
	requireKind(t, err, service.KindForbidden)

	taken := "BOB@example.com"
	_, err = f.svc.UpdateUser(ctx, ann.User.ID, ann.User.ID, service.UpdateUserInput{Email: &taken})
	requireKind(t, err, service.KindConflict)

	email := "ann.smith@example.com"
	user, err := f.svc.UpdateUser(ctx, ann.User.ID, ann.User.ID, service.UpdateUserInput{Name: &name, Email: &email})
	require.NoError(t, err)
	assert.Equal(t, "Ann Smith", user.Name)
	assert.Equal(t, "ann.smith@example.com", user.Email)

	avatar := "https://img.test/a.png"
	user, err = f.svc.UpdateProfile(ctx, ann.User.ID, service.ProfileInput{Avatar: &avatar})
	require.NoError(t, err)
	assert.Equal(t, avatar, user.Avatar)
	assert.Equal(t, "Ann Smith", user.Name)

	_, err = f.svc.Login(ctx, "ann.smith@example.com", "secret1")
	assert.NoError(t, err)
}

func TestChangePassword(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()
	ann := register(t, f, "ann")

	requireKind(t, f.svc.ChangePassword(ctx, ann.User.ID, "wrong", "newsecret"), service.KindBadRequest)
	requireKind(t, f.svc.ChangePassword(ctx, ann.User.ID, "secret1", "123"), service.KindValidation)
	require.NoError(t, f.svc.ChangePassword(ctx, ann.User.ID, "secret1", "newsecret"))

	_, err := f.svc.Login(ctx, "ann@example.com", "secret1")
	requireKind(t, err, service.KindUnauthenticated)
	_, err = f.svc.Login(ctx, "ann@example.com", "newsecret")
	assert.NoError(t, err)
}

func TestDeleteAccountKeepsTeams(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()
	ann := register(t, f, "ann")
	bob := f.user(t, "bob")

	team, err := f.svc.CreateTeam(ctx, ann.User.ID, service.CreateTeamInput{Name: "Eng", Members: []uint{bob.ID}})
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteAccount(ctx, ann.User.ID))
	requireKind(t, f.svc.DeleteAccount(ctx, ann.User.ID), service.KindNotFound)

	_, err = f.svc.GetUser(ctx, ann.User.ID)
	requireKind(t, err, service.KindNotFound)

	got, err := f.svc.GetTeam(ctx, team.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, ann.User.ID, got.OwnerID)
	assert.False(t, got.View().Owner.Resolved())

	users, err := f.svc.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "bob", users[0].Name)
}
