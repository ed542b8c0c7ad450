package models

import (
	"time"

	"github.com/gofrs/uuid"
)

// Todo is the single persisted entity. Timestamps are RFC3339 strings so
// the record round-trips through the store and the API without reformatting.
type Todo struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// NewTodo builds a fresh record with a generated ID and both timestamps
// set to the same instant.
func NewTodo(title string, completed bool) (Todo, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return Todo{}, err
	}

	now := Timestamp()
	return Todo{
		ID:        id.String(),
		Title:     title,
		Completed: completed,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Timestamp returns the current UTC time in the wire format used for
// CreatedAt/UpdatedAt. Nanosecond precision keeps successive updates
// distinguishable.
func Timestamp() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}
