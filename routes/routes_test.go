package routes_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskhub/internal/testutil"
	"taskhub/middleware"
	"taskhub/models"
	"taskhub/notify"
	"taskhub/routes"
	"taskhub/service"
	"taskhub/utils"
)

type server struct {
	app *fiber.App
	svc *service.Service
}

func newServer(t *testing.T, rateLimit int) *server {
	t.Helper()
	db := testutil.NewTestStore(t)
	hub := notify.NewHub(8)
	svc := service.New(db, utils.NewTokenIssuer("routes-secret", time.Hour),
		service.WithPublisher(hub),
		service.WithSuccessor(service.FirstSuccessor),
	)
	t.Cleanup(svc.Wait)

	app := fiber.New()
	metrics := middleware.NewMetrics()
	app.Use(metrics.Middleware())
	routes.SetupRoutes(app, routes.Deps{
		Service:       svc,
		Hub:           hub,
		DB:            db,
		Metrics:       metrics,
		FrontendURL:   "http://app.test",
		RateLimitAuth: rateLimit,
	})
	return &server{app: app, svc: svc}
}

func (s *server) do(t *testing.T, method, path, token string, body interface{}) (int, []byte) {
	t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, out
}

type authBody struct {
	Token string             `json:"token"`
	User  models.UserProfile `json:"user"`
}

func (s *server) register(t *testing.T, name string) authBody {
	t.Helper()
	status, body := s.do(t, http.MethodPost, "/api/users/register", "", map[string]string{
		"name":     name,
		"email":    strings.ToLower(name) + "@example.com",
		"password": "secret123",
	})
	require.Equal(t, http.StatusCreated, status, string(body))
	var res authBody
	require.NoError(t, json.Unmarshal(body, &res))
	require.NotEmpty(t, res.Token)
	return res
}

func decode[T any](t *testing.T, body []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(body, &v), string(body))
	return v
}

func TestStatusAndHealth(t *testing.T) {
	s := newServer(t, 0)

	status, body := s.do(t, http.MethodGet, "/api/status", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"status":"API is running"}`, string(body))

	status, body = s.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), `"database":"up"`)

	status, body = s.do(t, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), "taskhub_http_requests_total")

	status, body = s.do(t, http.MethodGet, "/api/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Contains(t, string(body), `"success":false`)
}

func TestRegisterLoginAndMe(t *testing.T) {
	s := newServer(t, 0)
	alice := s.register(t, "Alice")

	status, body := s.do(t, http.MethodPost, "/api/users/register", "", map[string]string{
		"name": "Again", "email": "alice@example.com", "password": "secret123",
	})
	assert.Equal(t, http.StatusConflict, status, string(body))

	status, _ = s.do(t, http.MethodPost, "/api/users/login", "", map[string]string{
		"email": "alice@example.com", "password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, status)

	status, body = s.do(t, http.MethodPost, "/api/users/login", "", map[string]string{
		"email": "ALICE@example.com", "password": "secret123",
	})
	require.Equal(t, http.StatusOK, status, string(body))
	login := decode[authBody](t, body)
	assert.Equal(t, alice.User.ID, login.User.ID)

	status, body = s.do(t, http.MethodGet, "/api/users/me", login.Token, nil)
	require.Equal(t, http.StatusOK, status)
	me := decode[map[string]interface{}](t, body)
	assert.Equal(t, "Alice", me["name"])
	assert.NotContains(t, me, "password_hash")
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	s := newServer(t, 0)

	status, body := s.do(t, http.MethodGet, "/api/tasks", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Contains(t, string(body), "No token")

	status, _ = s.do(t, http.MethodGet, "/api/tasks", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestTaskEndpoints(t *testing.T) {
	s := newServer(t, 0)
	alice := s.register(t, "Alice")
	bob := s.register(t, "Bob")
	carol := s.register(t, "Carol")

	status, body := s.do(t, http.MethodPost, "/api/tasks", alice.Token, map[string]interface{}{
		"title":       "Write report",
		"assignee_id": bob.User.ID,
		"tags":        []string{"docs"},
	})
	require.Equal(t, http.StatusCreated, status, string(body))
	task := decode[map[string]interface{}](t, body)
	assert.Equal(t, "todo", task["status"])
	assert.Equal(t, "medium", task["priority"])
	id := int(task["id"].(float64))
	path := "/api/tasks/" + strconv.Itoa(id)

	status, body = s.do(t, http.MethodGet, path, carol.Token, nil)
	assert.Equal(t, http.StatusForbidden, status, string(body))

	status, body = s.do(t, http.MethodPut, path, bob.Token, map[string]interface{}{"status": "in-progress"})
	require.Equal(t, http.StatusOK, status, string(body))
	updated := decode[map[string]interface{}](t, body)
	assert.Equal(t, "in-progress", updated["status"])
	assert.Equal(t, "Write report", updated["title"])

	status, _ = s.do(t, http.MethodPut, path, bob.Token, map[string]interface{}{"priority": "whenever"})
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = s.do(t, http.MethodGet, "/api/tasks?tag=docs", bob.Token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decode[[]map[string]interface{}](t, body), 1)

	status, _ = s.do(t, http.MethodGet, "/api/tasks?due_from=yesterday", bob.Token, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = s.do(t, http.MethodDelete, path, bob.Token, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, body = s.do(t, http.MethodDelete, path, alice.Token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"message":"Task deleted successfully"}`, string(body))

	status, _ = s.do(t, http.MethodGet, path, alice.Token, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = s.do(t, http.MethodGet, "/api/tasks/abc", alice.Token, nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestTeamLeaveEndpoints(t *testing.T) {
	s := newServer(t, 0)
	alice := s.register(t, "Alice")
	bob := s.register(t, "Bob")

	status, body := s.do(t, http.MethodPost, "/api/teams", alice.Token, map[string]interface{}{"name": "Core"})
	require.Equal(t, http.StatusCreated, status, string(body))
	team := decode[map[string]interface{}](t, body)
	path := "/api/teams/" + strconv.Itoa(int(team["id"].(float64)))

	status, body = s.do(t, http.MethodPost, path+"/members/invite", alice.Token, map[string]string{"email": "bob@example.com"})
	require.Equal(t, http.StatusOK, status, string(body))

	status, _ = s.do(t, http.MethodPost, path+"/members/invite", alice.Token, map[string]string{"email": "bob@example.com"})
	assert.Equal(t, http.StatusConflict, status)

	status, _ = s.do(t, http.MethodDelete, path+"/membership", alice.Token, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = s.do(t, http.MethodDelete, path+"/leave", alice.Token, nil)
	require.Equal(t, http.StatusOK, status, string(body))
	assert.Contains(t, string(body), "Left the team successfully")

	status, body = s.do(t, http.MethodGet, path, bob.Token, nil)
	require.Equal(t, http.StatusOK, status)
	owner := decode[map[string]interface{}](t, body)["owner_id"].(map[string]interface{})
	assert.EqualValues(t, bob.User.ID, owner["id"])

	status, body = s.do(t, http.MethodDelete, path+"/leave", bob.Token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), "team was deleted")

	status, _ = s.do(t, http.MethodGet, path, bob.Token, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestProjectEndpoints(t *testing.T) {
	s := newServer(t, 0)
	alice := s.register(t, "Alice")
	bob := s.register(t, "Bob")

	status, body := s.do(t, http.MethodPost, "/api/projects", alice.Token, map[string]string{"name": "Launch"})
	require.Equal(t, http.StatusCreated, status, string(body))
	project := decode[map[string]interface{}](t, body)
	assert.Equal(t, "#9b87f5", project["color"])
	path := "/api/projects/" + strconv.Itoa(int(project["id"].(float64)))

	status, _ = s.do(t, http.MethodPost, path+"/members", alice.Token, map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = s.do(t, http.MethodPost, path+"/members", alice.Token, map[string]interface{}{"user_id": bob.User.ID})
	require.Equal(t, http.StatusOK, status, string(body))

	status, _ = s.do(t, http.MethodPost, path+"/members", bob.Token, map[string]interface{}{"user_id": bob.User.ID})
	assert.Equal(t, http.StatusForbidden, status)

	status, body = s.do(t, http.MethodGet, path+"/tasks", bob.Token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `[]`, string(body))

	status, body = s.do(t, http.MethodDelete, path, alice.Token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"message":"Project deleted successfully"}`, string(body))
}

func TestNotificationEndpoints(t *testing.T) {
	s := newServer(t, 0)
	alice := s.register(t, "Alice")
	bob := s.register(t, "Bob")

	for _, msg := range []string{"one", "two"} {
		_, err := s.svc.CreateNotification(t.Context(), service.NotificationInput{
			Message: msg, UserID: alice.User.ID, Type: models.NotificationSystem,
		})
		require.NoError(t, err)
	}

	status, body := s.do(t, http.MethodGet, "/api/notifications/unread-count", alice.Token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"count":2}`, string(body))

	status, body = s.do(t, http.MethodGet, "/api/notifications", alice.Token, nil)
	require.Equal(t, http.StatusOK, status)
	list := decode[[]models.Notification](t, body)
	require.Len(t, list, 2)

	notePath := "/api/notifications/" + strconv.Itoa(int(list[0].ID))
	status, _ = s.do(t, http.MethodPut, notePath+"/read", bob.Token, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, body = s.do(t, http.MethodPut, "/api/notifications/read-all", alice.Token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"message":"All notifications marked as read","count":2}`, string(body))

	status, body = s.do(t, http.MethodPut, "/api/notifications/read-all", alice.Token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"message":"All notifications marked as read","count":0}`, string(body))

	status, _ = s.do(t, http.MethodDelete, notePath, alice.Token, nil)
	assert.Equal(t, http.StatusOK, status)

	status, _ = s.do(t, http.MethodGet, "/api/notifications/ws", alice.Token, nil)
	assert.Equal(t, http.StatusUpgradeRequired, status)
}

func TestEmailEndpoints(t *testing.T) {
	s := newServer(t, 0)
	alice := s.register(t, "Alice")

	status, body := s.do(t, http.MethodPost, "/api/email/send", alice.Token, map[string]string{"to": "x@example.com"})
	assert.Equal(t, http.StatusBadRequest, status, string(body))

	status, body = s.do(t, http.MethodPost, "/api/email/send", alice.Token, map[string]string{
		"to": "x@example.com", "subject": "Hi", "text": "hello",
	})
	require.Equal(t, http.StatusOK, status, string(body))
	assert.Contains(t, string(body), `"success":true`)

	status, _ = s.do(t, http.MethodPost, "/api/email/password-reset", "", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, status)

	for _, email := range []string{"alice@example.com", "nobody@example.com"} {
		status, body = s.do(t, http.MethodPost, "/api/email/password-reset", "", map[string]string{"email": email})
		require.Equal(t, http.StatusOK, status)
		assert.JSONEq(t, `{"message":"`+service.PasswordResetSent+`"}`, string(body))
	}

	status, _ = s.do(t, http.MethodPost, "/api/email/password-reset/confirm", "", map[string]string{
		"token": "unknown", "password": "another1",
	})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestAuthRateLimit(t *testing.T) {
	s := newServer(t, 2)
	creds := map[string]string{"email": "ghost@example.com", "password": "whatever"}

	for i := 0; i < 2; i++ {
		status, _ := s.do(t, http.MethodPost, "/api/users/login", "", creds)
		assert.Equal(t, http.StatusUnauthorized, status)
	}
	status, _ := s.do(t, http.MethodPost, "/api/users/login", "", creds)
	assert.Equal(t, http.StatusTooManyRequests, status)
}
