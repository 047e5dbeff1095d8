package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskhub/models"
	"taskhub/service"
	"taskhub/store"
)

func TestTeamLifecycleScenario(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()
	a := f.user(t, "a")
	b := f.user(t, "b")

	team, err := f.svc.CreateTeam(ctx, a.ID, service.CreateTeamInput{Name: "Eng"})
	require.NoError(t, err)
	assert.Equal(t, a.ID, team.OwnerID)
	assert.Equal(t, []uint{a.ID}, team.MemberIDs())

	team, err = f.svc.InviteMember(ctx, team.ID, "b@example.com", a.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{a.ID, b.ID}, team.MemberIDs())

	res, err := f.svc.LeaveTeam(ctx, team.ID, a.ID)
	require.NoError(t, err)
	require.False(t, res.Deleted)
	assert.Equal(t, b.ID, res.Team.OwnerID)
	assert.Equal(t, []uint{b.ID}, res.Team.MemberIDs())

	res, err = f.svc.LeaveTeam(ctx, team.ID, b.ID)
	require.NoError(t, err)
	assert.True(t, res.Deleted)
	assert.Nil(t, res.Team)

	_, err = f.store.TeamByID(ctx, team.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestOwnerLeaveHandsOverToRemainingMember(t *testing.T) {
	f := newFixture(t, service.WithSuccessor(service.RandomSuccessor{}))
	ctx := t.Context()
	owner := f.user(t, "owner")
	var others []uint
	for _, name := range []string{"m1", "m2", "m3", "m4"} {
		others = append(others, f.user(t, name).ID)
	}

	for size := 1; size <= len(others); size++ {
		team, err := f.svc.CreateTeam(ctx, owner.ID, service.CreateTeamInput{Name: "t", Members: others[:size]})
		require.NoError(t, err)

		res, err := f.svc.LeaveTeam(ctx, team.ID, owner.ID)
		require.NoError(t, err)
		require.False(t, res.Deleted)
		assert.Contains(t, others[:size], res.Team.OwnerID)
		assert.NotContains(t, res.Team.MemberIDs(), owner.ID)
		assert.Len(t, res.Team.MemberIDs(), size)
	}
}

func TestSuccessorPolicyIsPluggable(t *testing.T) {
	last := service.SuccessorFunc(func(members []uint) uint { return members[len(members)-1] })
	f := newFixture(t, service.WithSuccessor(last))
	ctx := t.Context()
	a, b, c := f.user(t, "a"), f.user(t, "b"), f.user(t, "c")

	team, err := f.svc.CreateTeam(ctx, a.ID, service.CreateTeamInput{Name: "t", Members: []uint{a.ID, b.ID, c.ID}})
	require.NoError(t, err)

	res, err := f.svc.LeaveTeam(ctx, team.ID, a.ID)
	require.NoError(t, err)
	assert.Equal(t, c.ID, res.Team.OwnerID)
}

func TestCreateTeam(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()
	a, b := f.user(t, "a"), f.user(t, "b")

	team, err := f.svc.CreateTeam(ctx, a.ID, service.CreateTeamInput{Name: "  Eng  ", Members: []uint{b.ID, b.ID}})
	require.NoError(t, err)
	assert.Equal(t, "Eng", team.Name)
	assert.Equal(t, []uint{b.ID, a.ID}, team.MemberIDs())

	view := team.View()
	require.True(t, view.Owner.Resolved())
	assert.Equal(t, "a", view.Owner.Profile.Name)

	_, err = f.svc.CreateTeam(ctx, a.ID, service.CreateTeamInput{Name: "   "})
	requireKind(t, err, service.KindValidation)
}

func TestTeamAccess(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()
	a, b, c := f.user(t, "a"), f.user(t, "b"), f.user(t, "c")

	team, err := f.svc.CreateTeam(ctx, a.ID, service.CreateTeamInput{Name: "Eng", Members: []uint{b.ID}})
	require.NoError(t, err)

	_, err = f.svc.GetTeam(ctx, team.ID, b.ID)
	assert.NoError(t, err)
	_, err = f.svc.GetTeam(ctx, team.ID, c.ID)
	requireKind(t, err, service.KindForbidden)
	_, err = f.svc.GetTeam(ctx, 999, a.ID)
	requireKind(t, err, service.KindNotFound)

	name := "Platform"
	_, err = f.svc.UpdateTeam(ctx, team.ID, b.ID, service.UpdateTeamInput{Name: &name})
	requireKind(t, err, service.KindForbidden)

	updated, err := f.svc.UpdateTeam(ctx, team.ID, a.ID, service.UpdateTeamInput{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Platform", updated.Name)

	requireKind(t, f.svc.DeleteTeam(ctx, team.ID, b.ID), service.KindForbidden)
	require.NoError(t, f.svc.DeleteTeam(ctx, team.ID, a.ID))

	teams, err := f.svc.ListTeams(ctx, b.ID)
	require.NoError(t, err)
	assert.Empty(t, teams)
}

func TestInviteMember(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()
	a, b, c := f.user(t, "a"), f.user(t, "b"), f.user(t, "c")

	team, err := f.svc.CreateTeam(ctx, a.ID, service.CreateTeamInput{Name: "Eng"})
	require.NoError(t, err)

	_, err = f.svc.InviteMember(ctx, team.ID, "", a.ID)
	requireKind(t, err, service.KindBadRequest)

	_, err = f.svc.InviteMember(ctx, team.ID, "ghost@example.com", a.ID)
	requireKind(t, err, service.KindNotFound)

	_, err = f.svc.InviteMember(ctx, team.ID, "not an address", a.ID)
	requireKind(t, err, service.KindNotFound)

	_, err = f.svc.InviteMember(ctx, 999, "b@example.com", a.ID)
	requireKind(t, err, service.KindNotFound)

	_, err = f.svc.InviteMember(ctx, team.ID, "b@example.com", c.ID)
	requireKind(t, err, service.KindForbidden)

	_, err = f.svc.InviteMember(ctx, team.ID, "B@Example.com", a.ID)
	require.NoError(t, err)

	_, err = f.svc.InviteMember(ctx, team.ID, "b@example.com", a.ID)
	requireKind(t, err, service.KindConflict)

	notes := f.notifications(t, b.ID)
	require.Len(t, notes, 1)
	assert.Equal(t, models.NotificationSystem, notes[0].Type)
	assert.Contains(t, notes[0].Message, "Eng")
}

func TestRemoveMember(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()
	a, b, c := f.user(t, "a"), f.user(t, "b"), f.user(t, "c")
	outsider := f.user(t, "outsider")

	team, err := f.svc.CreateTeam(ctx, a.ID, service.CreateTeamInput{Name: "Eng", Members: []uint{b.ID, c.ID}})
	require.NoError(t, err)

	_, err = f.svc.RemoveMember(ctx, team.ID, c.ID, b.ID)
	requireKind(t, err, service.KindForbidden)

	// self-removal from a team one never joined must not reveal the team
	got, err := f.svc.RemoveMember(ctx, team.ID, outsider.ID, outsider.ID)
	requireKind(t, err, service.KindBadRequest)
	assert.Nil(t, got)

	_, err = f.svc.RemoveMember(ctx, team.ID, a.ID, a.ID)
	requireKind(t, err, service.KindBadRequest)

	team, err = f.svc.RemoveMember(ctx, team.ID, b.ID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{c.ID, a.ID}, team.MemberIDs())

	team, err = f.svc.RemoveMember(ctx, team.ID, c.ID, a.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{a.ID}, team.MemberIDs())

	// removing someone who is not there changes nothing
	team, err = f.svc.RemoveMember(ctx, team.ID, b.ID, a.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{a.ID}, team.MemberIDs())
}

func TestLeaveTeamRules(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()
	a, b, c := f.user(t, "a"), f.user(t, "b"), f.user(t, "c")

	team, err := f.svc.CreateTeam(ctx, a.ID, service.CreateTeamInput{Name: "Eng", Members: []uint{b.ID}})
	require.NoError(t, err)

	_, err = f.svc.LeaveTeam(ctx, team.ID, c.ID)
	requireKind(t, err, service.KindBadRequest)

	_, err = f.svc.LeaveTeamAsMember(ctx, team.ID, a.ID)
	requireKind(t, err, service.KindBadRequest)

	_, err = f.svc.LeaveTeamAsMember(ctx, team.ID, c.ID)
	requireKind(t, err, service.KindBadRequest)

	team, err = f.svc.LeaveTeamAsMember(ctx, team.ID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, a.ID, team.OwnerID)
	assert.Equal(t, []uint{a.ID}, team.MemberIDs())
}
