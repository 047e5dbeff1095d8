// Package client talks to the TaskHub HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"taskhub/models"
)

// APIError is a non-2xx response from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("taskhub: %d %s", e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("taskhub: %d %s", e.Status, e.Message)
}

// IsUnauthorized reports whether err is a 401 from the server.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}

// Client is safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client

	mu             sync.RWMutex
	token          string
	onUnauthorized func()
}

// New returns a client for the API rooted at baseURL, e.g.
// "http://localhost:5000/api".
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// setUnauthorizedHook registers fn to run after any authenticated request
// is rejected with 401.
func (c *Client) setUnauthorizedHook(fn func()) {
	c.mu.Lock()
	c.onUnauthorized = fn
	c.mu.Unlock()
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		r = bytes.NewReader(raw)
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, target, r)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.mu.RLock()
	token, hook := c.token, c.onUnauthorized
	c.mu.RUnlock()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode}
		var payload struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}
		if json.NewDecoder(resp.Body).Decode(&payload) == nil {
			apiErr.Message = payload.Error
			if apiErr.Message == "" {
				apiErr.Message = payload.Message
			}
		}
		if resp.StatusCode == http.StatusUnauthorized && token != "" && hook != nil {
			hook()
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s %s: %w", method, path, err)
	}
	return nil
}

type AuthResponse struct {
	Token string             `json:"token"`
	User  models.UserProfile `json:"user"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func (c *Client) Register(ctx context.Context, name, email, password string) (*AuthResponse, error) {
	var out AuthResponse
	err := c.do(ctx, http.MethodPost, "/users/register", nil, map[string]string{
		"name":     name,
		"email":    email,
		"password": password,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	var out AuthResponse
	err := c.do(ctx, http.MethodPost, "/users/login", nil, map[string]string{
		"email":    email,
		"password": password,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Me(ctx context.Context) (*models.UserProfile, error) {
	var out models.UserProfile
	if err := c.do(ctx, http.MethodGet, "/users/me", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// TaskQuery mirrors the server's list filters. Empty fields are omitted.
type TaskQuery struct {
	Status    string
	Priority  string
	ProjectID uint
	Tag       string
	DueFrom   string
	DueTo     string
}

func (q TaskQuery) values() url.Values {
	v := url.Values{}
	set := func(k, val string) {
		if val != "" {
			v.Set(k, val)
		}
	}
	set("status", q.Status)
	set("priority", q.Priority)
	set("tag", q.Tag)
	set("due_from", q.DueFrom)
	set("due_to", q.DueTo)
	if q.ProjectID != 0 {
		v.Set("project_id", strconv.FormatUint(uint64(q.ProjectID), 10))
	}
	return v
}

func (c *Client) ListTasks(ctx context.Context, q TaskQuery) ([]models.TaskView, error) {
	var out []models.TaskView
	if err := c.do(ctx, http.MethodGet, "/tasks", q.values(), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// NewTask is the create-task payload.
type NewTask struct {
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Status      string     `json:"status,omitempty"`
	Priority    string     `json:"priority,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	AssigneeID  *uint      `json:"assignee_id,omitempty"`
	ProjectID   *uint      `json:"project_id,omitempty"`
	Tags        []string   `json:"tags,omitempty"`
}

func (c *Client) CreateTask(ctx context.Context, t NewTask) (*models.TaskView, error) {
	var out models.TaskView
	if err := c.do(ctx, http.MethodPost, "/tasks", nil, t, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateTask sends a partial update; only the keys present in fields change.
func (c *Client) UpdateTask(ctx context.Context, id uint, fields map[string]interface{}) (*models.TaskView, error) {
	var out models.TaskView
	if err := c.do(ctx, http.MethodPut, "/tasks/"+idPath(id), nil, fields, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteTask(ctx context.Context, id uint) error {
	return c.do(ctx, http.MethodDelete, "/tasks/"+idPath(id), nil, nil, nil)
}

func (c *Client) ListTeams(ctx context.Context) ([]models.TeamView, error) {
	var out []models.TeamView
	if err := c.do(ctx, http.MethodGet, "/teams", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateTeam(ctx context.Context, name, description string) (*models.TeamView, error) {
	var out models.TeamView
	err := c.do(ctx, http.MethodPost, "/teams", nil, map[string]string{
		"name":        name,
		"description": description,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) InviteMember(ctx context.Context, teamID uint, email string) (*models.TeamView, error) {
	var out models.TeamView
	err := c.do(ctx, http.MethodPost, "/teams/"+idPath(teamID)+"/members/invite", nil, map[string]string{"email": email}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// LeaveTeam returns the server's message describing what happened.
func (c *Client) LeaveTeam(ctx context.Context, teamID uint) (string, error) {
	var out messageResponse
	if err := c.do(ctx, http.MethodDelete, "/teams/"+idPath(teamID)+"/leave", nil, nil, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

func (c *Client) ListProjects(ctx context.Context) ([]models.ProjectView, error) {
	var out []models.ProjectView
	if err := c.do(ctx, http.MethodGet, "/projects", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateProject(ctx context.Context, name, description, color string) (*models.ProjectView, error) {
	var out models.ProjectView
	err := c.do(ctx, http.MethodPost, "/projects", nil, map[string]string{
		"name":        name,
		"description": description,
		"color":       color,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListNotifications(ctx context.Context) ([]models.Notification, error) {
	var out []models.Notification
	if err := c.do(ctx, http.MethodGet, "/notifications", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) UnreadCount(ctx context.Context) (int64, error) {
	var out struct {
		Count int64 `json:"count"`
	}
	if err := c.do(ctx, http.MethodGet, "/notifications/unread-count", nil, nil, &out); err != nil {
		return 0, err
	}
	return out.Count, nil
}

func (c *Client) MarkAllNotificationsRead(ctx context.Context) (int64, error) {
	var out struct {
		Count int64 `json:"count"`
	}
	if err := c.do(ctx, http.MethodPut, "/notifications/read-all", nil, nil, &out); err != nil {
		return 0, err
	}
	return out.Count, nil
}

func idPath(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
