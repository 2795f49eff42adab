// Package api is the typed HTTP client for the todovault server. Every
// endpoint of the public contract has a method here; server error
// responses are decoded back into the shared sentinel errors so callers
// can branch with errors.Is.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/avoronov/todovault/internal/common"
)

type Client struct {
	baseURL string
	http    *http.Client
	token   string
}

func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// SetToken installs the bearer token sent with subsequent requests; an
// empty string clears it.
func (c *Client) SetToken(token string) {
	c.token = token
}

func (c *Client) Token() string {
	return c.token
}

// mapError turns a server error body into a sentinel-wrapped error. The
// server prefixes messages with the sentinel text, so a prefix match
// recovers the exact sentinel; otherwise the status code decides.
func mapError(status int, message string) error {
	sentinels := []error{
		common.ErrorValidation,
		common.ErrorAlreadyExists,
		common.ErrorInvalidCredentials,
		common.ErrorInvalidToken,
		common.ErrorNotFound,
	}
	for _, s := range sentinels {
		if strings.HasPrefix(message, s.Error()) {
			return fmt.Errorf("%w%s", s, strings.TrimPrefix(message, s.Error()))
		}
	}

	switch status {
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", common.ErrorNotFound, message)
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: %s", common.ErrorInvalidToken, message)
	case http.StatusBadRequest:
		return fmt.Errorf("%w: %s", common.ErrorValidation, message)
	}
	return fmt.Errorf("%w: %s", common.ErrorInternal, message)
}

// do performs one request and decodes a successful JSON response into out
// (when out is non-nil). Error responses are decoded and mapped.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errBody struct {
			Message string `json:"message"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&errBody); err != nil {
			return mapError(resp.StatusCode, resp.Status)
		}
		return mapError(resp.StatusCode, errBody.Message)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("response decode error: %w", err)
	}
	return nil
}

func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/api/health", nil, nil)
}

func (c *Client) Register(ctx context.Context, name, email, password string) (*Session, error) {
	var s Session
	err := c.do(ctx, http.MethodPost, "/api/auth/register",
		map[string]string{"name": name, "email": email, "password": password}, &s)
	if err != nil {
		return nil, err
	}
	c.token = s.Token
	return &s, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (*Session, error) {
	var s Session
	err := c.do(ctx, http.MethodPost, "/api/auth/login",
		map[string]string{"email": email, "password": password}, &s)
	if err != nil {
		return nil, err
	}
	c.token = s.Token
	return &s, nil
}

func (c *Client) Me(ctx context.Context) (*User, error) {
	var out struct {
		User User `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, &out); err != nil {
		return nil, err
	}
	return &out.User, nil
}

func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	return c.do(ctx, http.MethodPost, "/api/auth/forgot-password",
		map[string]string{"email": email}, nil)
}

func (c *Client) ResetPassword(ctx context.Context, token, password string) (*Session, error) {
	var s Session
	err := c.do(ctx, http.MethodPut, "/api/auth/reset-password/"+token,
		map[string]string{"password": password}, &s)
	if err != nil {
		return nil, err
	}
	c.token = s.Token
	return &s, nil
}

// ListTodos returns the user's todos; the server sends a bare JSON array,
// newest first.
func (c *Client) ListTodos(ctx context.Context) ([]Todo, error) {
	var out []Todo
	if err := c.do(ctx, http.MethodGet, "/api/todos", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateTodo(ctx context.Context, req CreateTodoRequest) (*Todo, error) {
	var out Todo
	if err := c.do(ctx, http.MethodPost, "/api/todos", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetTodo(ctx context.Context, id string) (*Todo, error) {
	var out Todo
	if err := c.do(ctx, http.MethodGet, "/api/todos/"+id, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateTodo(ctx context.Context, id string, req UpdateTodoRequest) (*Todo, error) {
	var out Todo
	if err := c.do(ctx, http.MethodPut, "/api/todos/"+id, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteTodo(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/todos/"+id, nil, nil)
}

func (c *Client) ToggleTodo(ctx context.Context, id string) (*Todo, error) {
	var out Todo
	if err := c.do(ctx, http.MethodPatch, "/api/todos/"+id+"/toggle", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) AddSubtask(ctx context.Context, todoID, title string) (*Todo, error) {
	var out Todo
	err := c.do(ctx, http.MethodPost, "/api/todos/"+todoID+"/subtasks",
		map[string]string{"title": title}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ToggleSubtask(ctx context.Context, todoID, subtaskID string) (*Todo, error) {
	var out Todo
	err := c.do(ctx, http.MethodPatch, "/api/todos/"+todoID+"/subtasks/"+subtaskID+"/toggle", nil, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) RenameSubtask(ctx context.Context, todoID, subtaskID, title string) (*Todo, error) {
	var out Todo
	err := c.do(ctx, http.MethodPut, "/api/todos/"+todoID+"/subtasks/"+subtaskID,
		map[string]string{"title": title}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) RemoveSubtask(ctx context.Context, todoID, subtaskID string) (*Todo, error) {
	var out Todo
	err := c.do(ctx, http.MethodDelete, "/api/todos/"+todoID+"/subtasks/"+subtaskID, nil, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) BulkSubtasks(ctx context.Context, todoID, action string, subtaskIDs []string) (*Todo, error) {
	var out Todo
	err := c.do(ctx, http.MethodPatch, "/api/todos/"+todoID+"/subtasks/bulk",
		map[string]any{"action": action, "subtaskIds": subtaskIDs}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}
