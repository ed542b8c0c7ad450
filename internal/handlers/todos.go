package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"

	"todo-tracker/internal/models"
	"todo-tracker/internal/store"

	"github.com/gin-gonic/gin"
)

// TodoStore is the slice of the persistence layer the handlers need.
type TodoStore interface {
	List(ctx context.Context) ([]models.Todo, error)
	Get(ctx context.Context, id string) (models.Todo, error)
	Put(ctx context.Context, todo models.Todo) error
	Update(ctx context.Context, id string, apply func(models.Todo) models.Todo) (models.Todo, error)
	Delete(ctx context.Context, id string) error
}

type TodoHandler struct {
	store TodoStore
}

func NewTodoHandler(store TodoStore) *TodoHandler {
	return &TodoHandler{store: store}
}

// RegisterRoutes mounts the collection and item endpoints.
func (h *TodoHandler) RegisterRoutes(r gin.IRouter) {
	r.GET("/todos", h.ListTodos)
	r.POST("/todos", h.CreateTodo)
	r.GET("/todos/:id", h.GetTodo)
	r.PUT("/todos/:id", h.UpdateTodo)
	r.DELETE("/todos/:id", h.DeleteTodo)
}

func (h *TodoHandler) ListTodos(c *gin.Context) {
	todos, err := h.store.List(c.Request.Context())
	if err != nil {
		log.Printf("Error fetching todos: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to fetch todos",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"todos":   todos,
	})
}

func (h *TodoHandler) GetTodo(c *gin.Context) {
	id := c.Param("id")

	todo, err := h.store.Get(c.Request.Context(), id)
	if err != nil {
		handleTodoError(c, err, "Failed to fetch todo")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"todo":    todo,
	})
}

func (h *TodoHandler) CreateTodo(c *gin.Context) {
	var input struct {
		Title     string `json:"title"`
		Completed bool   `json:"completed"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Title is required",
		})
		return
	}

	if input.Title == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Title is required",
		})
		return
	}

	todo, err := models.NewTodo(input.Title, input.Completed)
	if err != nil {
		log.Printf("Error generating todo ID: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to create todo",
		})
		return
	}

	if err := h.store.Put(c.Request.Context(), todo); err != nil {
		log.Printf("Error creating todo: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to create todo",
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"todo":    todo,
	})
}

func (h *TodoHandler) UpdateTodo(c *gin.Context) {
	id := c.Param("id")

	var input struct {
		Title     *string `json:"title"`
		Completed *bool   `json:"completed"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid request body",
		})
		return
	}

	// Supplied fields overwrite stored values, omitted fields are kept,
	// and UpdatedAt is refreshed even when nothing else changed.
	todo, err := h.store.Update(c.Request.Context(), id, func(current models.Todo) models.Todo {
		if input.Title != nil {
			current.Title = *input.Title
		}
		if input.Completed != nil {
			current.Completed = *input.Completed
		}
		current.UpdatedAt = models.Timestamp()
		return current
	})
	if err != nil {
		handleTodoError(c, err, "Failed to update todo")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"todo":    todo,
	})
}

func (h *TodoHandler) DeleteTodo(c *gin.Context) {
	id := c.Param("id")

	if err := h.store.Delete(c.Request.Context(), id); err != nil {
		handleTodoError(c, err, "Failed to delete todo")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Todo deleted successfully",
	})
}

// handleTodoError maps store failures onto the wire contract: a missing
// record is 404 "Todo not found", anything else is a 500 with a fixed
// per-operation message so store internals never leak.
func handleTodoError(c *gin.Context, err error, message string) {
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   "Todo not found",
		})
		return
	}

	log.Printf("Error processing todo request: %v", err)
	c.JSON(http.StatusInternalServerError, gin.H{
		"success": false,
		"error":   message,
	})
}
