package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"taskhub/internal/testutil"
	"taskhub/models"
	"taskhub/notify"
	"taskhub/service"
	"taskhub/store"
	"taskhub/utils"
)

type fakeMailer struct {
	mu   sync.Mutex
	sent []utils.Mail
	err  error
}

func (m *fakeMailer) Send(_ context.Context, mail utils.Mail) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return "", m.err
	}
	m.sent = append(m.sent, mail)
	return "<test@taskhub.dev>", nil
}

func (m *fakeMailer) Sent() []utils.Mail {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]utils.Mail(nil), m.sent...)
}

type fixture struct {
	svc    *service.Service
	store  *store.Store
	mailer *fakeMailer
	hub    *notify.Hub
}

func newFixture(t *testing.T, opts ...service.Option) *fixture {
	t.Helper()
	f := &fixture{
		store:  testutil.NewTestStore(t),
		mailer: &fakeMailer{},
		hub:    notify.NewHub(16),
	}
	base := []service.Option{
		service.WithMailer(f.mailer),
		service.WithPublisher(f.hub),
		service.WithSuccessor(service.FirstSuccessor),
	}
	f.svc = service.New(f.store, utils.NewTokenIssuer("test-secret", time.Hour), append(base, opts...)...)
	t.Cleanup(f.svc.Wait)
	return f
}

func (f *fixture) user(t *testing.T, name string) *models.User {
	t.Helper()
	return testutil.MustUser(t, f.store, name)
}

func (f *fixture) notifications(t *testing.T, userID uint) []models.Notification {
	t.Helper()
	list, err := f.svc.ListNotifications(t.Context(), userID)
	require.NoError(t, err)
	return list
}

func requireKind(t *testing.T, err error, kind service.Kind) {
	t.Helper()
	require.Error(t, err)
	var se *service.Error
	require.True(t, errors.As(err, &se), "expected *service.Error, got %T: %v", err, err)
	require.Equal(t, kind, se.Kind, se.Message)
}
