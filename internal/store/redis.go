package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"todo-tracker/internal/models"

	"github.com/redis/go-redis/v9"
)

var ErrNotFound = errors.New("todo not found")

const keyPrefix = "todo:"

// txRetries bounds how often a WATCH-guarded update is retried when a
// concurrent write invalidates the transaction.
const txRetries = 5

type TodoStore struct {
	client *redis.Client
}

type StoreConfig struct {
	Addr         string
	Password     string
	DB           int
	PoolSize     int
	MinIdleConns int
	MaxRetries   int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

func DefaultStoreConfig() *StoreConfig {
	return &StoreConfig{
		Addr:         "localhost:6379",
		Password:     "",
		DB:           0,
		PoolSize:     10,
		MinIdleConns: 5,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}
}

func NewTodoStore(config *StoreConfig) *TodoStore {
	if config == nil {
		config = DefaultStoreConfig()
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:         config.Addr,
		Password:     config.Password,
		DB:           config.DB,
		PoolSize:     config.PoolSize,
		MinIdleConns: config.MinIdleConns,
		MaxRetries:   config.MaxRetries,
		DialTimeout:  config.DialTimeout,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
	})

	return &TodoStore{client: rdb}
}

func todoKey(id string) string {
	return keyPrefix + id
}

// List returns every stored record. Order is unspecified.
func (s *TodoStore) List(ctx context.Context) ([]models.Todo, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	var keys []string
	iter := s.client.Scan(ctx, 0, keyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan todos: %w", err)
	}

	todos := make([]models.Todo, 0, len(keys))
	if len(keys) == 0 {
		return todos, nil
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch todos: %w", err)
	}

	for _, value := range values {
		data, ok := value.(string)
		if !ok {
			// key deleted between scan and fetch
			continue
		}
		var todo models.Todo
		if err := json.Unmarshal([]byte(data), &todo); err != nil {
			return nil, fmt.Errorf("failed to unmarshal todo: %w", err)
		}
		todos = append(todos, todo)
	}

	return todos, nil
}

func (s *TodoStore) Get(ctx context.Context, id string) (models.Todo, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	data, err := s.client.Get(ctx, todoKey(id)).Result()
	if err != nil {
		if err == redis.Nil {
			return models.Todo{}, ErrNotFound
		}
		return models.Todo{}, fmt.Errorf("failed to get todo: %w", err)
	}

	var todo models.Todo
	if err := json.Unmarshal([]byte(data), &todo); err != nil {
		return models.Todo{}, fmt.Errorf("failed to unmarshal todo: %w", err)
	}

	return todo, nil
}

// Put writes the full record unconditionally.
func (s *TodoStore) Put(ctx context.Context, todo models.Todo) error {
	data, err := json.Marshal(todo)
	if err != nil {
		return fmt.Errorf("failed to marshal todo: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := s.client.Set(ctx, todoKey(todo.ID), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to put todo: %w", err)
	}

	return nil
}

// Update performs a read-modify-write of the record under WATCH, so a
// concurrent writer invalidates the transaction instead of being silently
// overwritten. Returns ErrNotFound when no record exists for id.
func (s *TodoStore) Update(ctx context.Context, id string, apply func(models.Todo) models.Todo) (models.Todo, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	key := todoKey(id)
	var updated models.Todo

	txn := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Result()
		if err != nil {
			if err == redis.Nil {
				return ErrNotFound
			}
			return err
		}

		var current models.Todo
		if err := json.Unmarshal([]byte(data), &current); err != nil {
			return fmt.Errorf("failed to unmarshal todo: %w", err)
		}

		updated = apply(current)

		payload, err := json.Marshal(updated)
		if err != nil {
			return fmt.Errorf("failed to marshal todo: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, 0)
			return nil
		})
		return err
	}

	for i := 0; i < txRetries; i++ {
		err := s.client.Watch(ctx, txn, key)
		if err == nil {
			return updated, nil
		}
		if err == redis.TxFailedErr {
			continue
		}
		if errors.Is(err, ErrNotFound) {
			return models.Todo{}, ErrNotFound
		}
		return models.Todo{}, fmt.Errorf("failed to update todo: %w", err)
	}

	return models.Todo{}, fmt.Errorf("failed to update todo: %w", redis.TxFailedErr)
}

// Delete removes the record and reports ErrNotFound when nothing was
// stored under id. DEL's removed-count makes the existence check and the
// removal a single store operation.
func (s *TodoStore) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	removed, err := s.client.Del(ctx, todoKey(id)).Result()
	if err != nil {
		return fmt.Errorf("failed to delete todo: %w", err)
	}
	if removed == 0 {
		return ErrNotFound
	}

	return nil
}

func (s *TodoStore) Health() error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	return s.client.Ping(ctx).Err()
}

func (s *TodoStore) Close() error {
	return s.client.Close()
}
