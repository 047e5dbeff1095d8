package middleware

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskhub/models"
)

type tokenTable map[string]*models.User

func (t tokenTable) Authenticate(_ context.Context, token string) (*models.User, error) {
	if u, ok := t[token]; ok {
		return u, nil
	}
	return nil, errors.New("unknown token")
}

func protectedApp() *fiber.App {
	user := &models.User{Name: "ann"}
	user.ID = 7
	app := fiber.New()
	app.Get("/me", Protected(tokenTable{"good": user}), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"id": UserID(c), "name": CurrentUser(c).Name})
	})
	return app
}

func TestProtected(t *testing.T) {
	app := protectedApp()

	cases := []struct {
		name   string
		setup  func(r *http.Request)
		target string
		status int
	}{
		{"bearer header", func(r *http.Request) { r.Header.Set("Authorization", "Bearer good") }, "/me", 200},
		{"cookie", func(r *http.Request) { r.AddCookie(&http.Cookie{Name: "access_token", Value: "good"}) }, "/me", 200},
		{"query", func(r *http.Request) {}, "/me?token=good", 200},
		{"missing", func(r *http.Request) {}, "/me", 401},
		{"bad scheme", func(r *http.Request) { r.Header.Set("Authorization", "Token good") }, "/me", 401},
		{"unknown token", func(r *http.Request) { r.Header.Set("Authorization", "Bearer nope") }, "/me", 401},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.target, nil)
			tc.setup(req)
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tc.status, resp.StatusCode)
		})
	}
}

func TestProtectedSetsLocals(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer good")
	resp, err := protectedApp().Test(req)
	require.NoError(t, err)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":7,"name":"ann"}`, string(body))
}

func TestCORS(t *testing.T) {
	app := fiber.New()
	app.Use(CORS(DefaultCORSConfig("https://app.taskhub.dev/")))
	app.Get("/x", func(c *fiber.Ctx) error { return c.SendString("ok") })

	req := httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "https://app.taskhub.dev")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "https://app.taskhub.dev", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "3600", resp.Header.Get("Access-Control-Max-Age"))

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "https://evil.example")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Empty(t, resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestAuthRateLimiter(t *testing.T) {
	app := fiber.New()
	app.Post("/login", AuthRateLimiter(2, nil), func(c *fiber.Ctx) error { return c.SendString("ok") })

	for i := 0; i < 2; i++ {
		resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/login", nil))
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
	}
	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/login", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "60", resp.Header.Get("Retry-After"))
}

func TestMetrics(t *testing.T) {
	m := NewMetrics()
	app := fiber.New()
	app.Use(m.Middleware())
	app.Get("/metrics", m.Handler())
	app.Get("/items/:id", func(c *fiber.Ctx) error { return c.SendString("ok") })

	for _, path := range []string{"/items/1", "/items/2"} {
		_, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil))
		require.NoError(t, err)
	}

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `taskhub_http_requests_total{method="GET",route="/items/:id",status="200"} 2`)
}
