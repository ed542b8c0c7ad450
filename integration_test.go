package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"todo-tracker/internal/config"
	"todo-tracker/internal/handlers"
	"todo-tracker/internal/middleware"
	"todo-tracker/internal/models"
	"todo-tracker/internal/monitoring"
	"todo-tracker/internal/store"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mr := miniredis.RunT(t)
	cfg := store.DefaultStoreConfig()
	cfg.Addr = mr.Addr()
	s := store.NewTodoStore(cfg)
	t.Cleanup(func() { s.Close() })

	router := gin.New()
	router.Use(middleware.RecoveryWithLog())
	router.Use(monitoring.MetricsMiddleware())
	handlers.NewTodoHandler(s).RegisterRoutes(router)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return server
}

type apiResponse struct {
	Success bool          `json:"success"`
	Error   string        `json:"error"`
	Message string        `json:"message"`
	Todo    *models.Todo  `json:"todo"`
	Todos   []models.Todo `json:"todos"`
}

func doJSON(t *testing.T, method, url string, body interface{}) (int, apiResponse) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded apiResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))

	return resp.StatusCode, decoded
}

func TestApplicationStartup(t *testing.T) {
	os.Setenv("ENVIRONMENT", "development")
	os.Setenv("REDIS_HOST", "localhost")
	defer func() {
		os.Unsetenv("ENVIRONMENT")
		os.Unsetenv("REDIS_HOST")
	}()

	cfg, err := config.LoadConfig()
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "localhost:6379", cfg.GetRedisAddr())
}

func TestCreateThenGetScenario(t *testing.T) {
	server := newTestServer(t)

	status, created := doJSON(t, "POST", server.URL+"/todos", map[string]interface{}{
		"title": "Buy milk",
	})

	require.Equal(t, http.StatusCreated, status)
	require.True(t, created.Success)
	require.NotNil(t, created.Todo)
	assert.NotEmpty(t, created.Todo.ID)
	assert.Equal(t, "Buy milk", created.Todo.Title)
	assert.False(t, created.Todo.Completed)
	assert.Equal(t, created.Todo.CreatedAt, created.Todo.UpdatedAt)

	status, fetched := doJSON(t, "GET", server.URL+"/todos/"+created.Todo.ID, nil)
	require.Equal(t, http.StatusOK, status)
	require.NotNil(t, fetched.Todo)
	assert.Equal(t, *created.Todo, *fetched.Todo)
}

func TestUpdateScenario(t *testing.T) {
	server := newTestServer(t)

	_, created := doJSON(t, "POST", server.URL+"/todos", map[string]interface{}{
		"title": "Walk the dog",
	})
	require.NotNil(t, created.Todo)

	status, updated := doJSON(t, "PUT", server.URL+"/todos/"+created.Todo.ID, map[string]interface{}{
		"completed": true,
	})

	require.Equal(t, http.StatusOK, status)
	require.NotNil(t, updated.Todo)
	assert.True(t, updated.Todo.Completed)
	assert.Equal(t, "Walk the dog", updated.Todo.Title)
	assert.NotEqual(t, created.Todo.UpdatedAt, updated.Todo.UpdatedAt)

	prior, err := time.Parse(time.RFC3339Nano, created.Todo.UpdatedAt)
	require.NoError(t, err)
	current, err := time.Parse(time.RFC3339Nano, updated.Todo.UpdatedAt)
	require.NoError(t, err)
	assert.True(t, current.After(prior))

	status, notFound := doJSON(t, "PUT", server.URL+"/todos/nonexistent-id", map[string]interface{}{
		"completed": true,
	})
	require.Equal(t, http.StatusNotFound, status)
	assert.False(t, notFound.Success)
	assert.Equal(t, "Todo not found", notFound.Error)
}

func TestDeleteScenario(t *testing.T) {
	server := newTestServer(t)

	_, created := doJSON(t, "POST", server.URL+"/todos", map[string]interface{}{
		"title": "Ship release",
	})
	require.NotNil(t, created.Todo)

	status, deleted := doJSON(t, "DELETE", server.URL+"/todos/"+created.Todo.ID, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Todo deleted successfully", deleted.Message)

	status, _ = doJSON(t, "GET", server.URL+"/todos/"+created.Todo.ID, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = doJSON(t, "DELETE", server.URL+"/todos/"+created.Todo.ID, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestValidationScenario(t *testing.T) {
	server := newTestServer(t)

	status, resp := doJSON(t, "POST", server.URL+"/todos", map[string]interface{}{
		"completed": true,
	})

	require.Equal(t, http.StatusBadRequest, status)
	assert.False(t, resp.Success)
	assert.Equal(t, "Title is required", resp.Error)

	status, list := doJSON(t, "GET", server.URL+"/todos", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, list.Todos)
}

func TestListScenario(t *testing.T) {
	server := newTestServer(t)

	for _, title := range []string{"First", "Second", "Third"} {
		status, _ := doJSON(t, "POST", server.URL+"/todos", map[string]interface{}{"title": title})
		require.Equal(t, http.StatusCreated, status)
	}

	status, list := doJSON(t, "GET", server.URL+"/todos", nil)
	require.Equal(t, http.StatusOK, status)
	require.True(t, list.Success)
	assert.Len(t, list.Todos, 3)

	seen := map[string]bool{}
	for _, todo := range list.Todos {
		seen[todo.Title] = true
	}
	for _, title := range []string{"First", "Second", "Third"} {
		assert.True(t, seen[title], "expected %s in listing", title)
	}
}
