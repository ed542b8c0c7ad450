// Package client is a typed HTTP client for the todo API. Every call
// decodes the server's result envelope and collapses transport errors,
// non-2xx statuses and success:false payloads into a single error return.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"todo-tracker/internal/models"
)

var ErrNotFound = errors.New("todo not found")

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// TodoPatch carries the fields of a partial update. Nil fields are
// omitted from the request body and keep their server-side values.
type TodoPatch struct {
	Title     *string `json:"title,omitempty"`
	Completed *bool   `json:"completed,omitempty"`
}

type resultEnvelope struct {
	Success bool          `json:"success"`
	Error   string        `json:"error"`
	Message string        `json:"message"`
	Todo    *models.Todo  `json:"todo"`
	Todos   []models.Todo `json:"todos"`
}

func (c *Client) ListTodos(ctx context.Context) ([]models.Todo, error) {
	env, err := c.do(ctx, http.MethodGet, "/todos", nil)
	if err != nil {
		return nil, err
	}
	return env.Todos, nil
}

func (c *Client) GetTodo(ctx context.Context, id string) (models.Todo, error) {
	env, err := c.do(ctx, http.MethodGet, "/todos/"+id, nil)
	if err != nil {
		return models.Todo{}, err
	}
	if env.Todo == nil {
		return models.Todo{}, fmt.Errorf("response missing todo payload")
	}
	return *env.Todo, nil
}

func (c *Client) CreateTodo(ctx context.Context, title string, completed bool) (models.Todo, error) {
	body := map[string]interface{}{
		"title":     title,
		"completed": completed,
	}
	env, err := c.do(ctx, http.MethodPost, "/todos", body)
	if err != nil {
		return models.Todo{}, err
	}
	if env.Todo == nil {
		return models.Todo{}, fmt.Errorf("response missing todo payload")
	}
	return *env.Todo, nil
}

func (c *Client) UpdateTodo(ctx context.Context, id string, patch TodoPatch) (models.Todo, error) {
	env, err := c.do(ctx, http.MethodPut, "/todos/"+id, patch)
	if err != nil {
		return models.Todo{}, err
	}
	if env.Todo == nil {
		return models.Todo{}, fmt.Errorf("response missing todo payload")
	}
	return *env.Todo, nil
}

func (c *Client) DeleteTodo(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, "/todos/"+id, nil)
	return err
}

func (c *Client) do(ctx context.Context, method, path string, body interface{}) (*resultEnvelope, error) {
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	var env resultEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode >= 400 || !env.Success {
		if env.Error != "" {
			return nil, fmt.Errorf("server error: %s", env.Error)
		}
		return nil, fmt.Errorf("server returned status %d", resp.StatusCode)
	}

	return &env, nil
}
