package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskhub/models"
	"taskhub/service"
)

func TestMarkAllNotificationsReadIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()
	a := f.user(t, "a")

	for _, msg := range []string{"one", "two"} {
		_, err := f.svc.CreateNotification(ctx, service.NotificationInput{Message: msg, UserID: a.ID, Type: models.NotificationMention})
		require.NoError(t, err)
	}
	unread, err := f.svc.UnreadCount(ctx, a.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, unread)

	changed, err := f.svc.MarkAllNotificationsRead(ctx, a.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, changed)
	unread, err = f.svc.UnreadCount(ctx, a.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, unread)

	changed, err = f.svc.MarkAllNotificationsRead(ctx, a.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, changed)
	unread, err = f.svc.UnreadCount(ctx, a.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, unread)
}

func TestNotificationOwnership(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()
	a, b := f.user(t, "a"), f.user(t, "b")

	n, err := f.svc.CreateNotification(ctx, service.NotificationInput{Message: "hi", UserID: a.ID, Type: models.NotificationComment, RelatedItemID: "12"})
	require.NoError(t, err)
	assert.False(t, n.IsRead)

	_, err = f.svc.MarkNotificationRead(ctx, n.ID, b.ID)
	requireKind(t, err, service.KindForbidden)
	requireKind(t, f.svc.DeleteNotification(ctx, n.ID, b.ID), service.KindForbidden)

	read, err := f.svc.MarkNotificationRead(ctx, n.ID, a.ID)
	require.NoError(t, err)
	assert.True(t, read.IsRead)
	assert.Equal(t, "12", read.RelatedItemID)

	require.NoError(t, f.svc.DeleteNotification(ctx, n.ID, a.ID))
	requireKind(t, f.svc.DeleteNotification(ctx, n.ID, a.ID), service.KindNotFound)
	_, err = f.svc.MarkNotificationRead(ctx, n.ID, a.ID)
	requireKind(t, err, service.KindNotFound)
}

func TestCreateNotificationValidation(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()
	a := f.user(t, "a")

	cases := map[string]service.NotificationInput{
		"no message":   {UserID: a.ID, Type: models.NotificationTask},
		"no recipient": {Message: "m", Type: models.NotificationTask},
		"no type":      {Message: "m", UserID: a.ID},
		"bad type":     {Message: "m", UserID: a.ID, Type: "alert"},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.svc.CreateNotification(ctx, in)
			requireKind(t, err, service.KindValidation)
		})
	}
	assert.Empty(t, f.notifications(t, a.ID))
}

func TestListNotificationsNewestFirstCapped(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()
	a := f.user(t, "a")

	for i := 0; i < service.NotificationListLimit+5; i++ {
		_, err := f.svc.CreateNotification(ctx, service.NotificationInput{Message: "m", UserID: a.ID, Type: models.NotificationSystem})
		require.NoError(t, err)
	}

	list := f.notifications(t, a.ID)
	require.Len(t, list, service.NotificationListLimit)
	assert.Greater(t, list[0].ID, list[len(list)-1].ID)
}

func TestCommentsAreReadable(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()
	a, b := f.user(t, "a"), f.user(t, "b")

	require.NoError(t, f.store.CreateComment(ctx, &models.Comment{Content: "first", TaskID: 1, UserID: a.ID, Mentions: []uint{b.ID}}))

	comments, err := f.svc.ListComments(ctx, 1)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	view := comments[0].View()
	assert.Equal(t, []uint{b.ID}, view.Mentions)
	assert.True(t, view.User.Resolved())

	empty, err := f.svc.ListComments(ctx, 2)
	require.NoError(t, err)
	assert.Empty(t, empty)
}
