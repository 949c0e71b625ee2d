// Package service defines the backend-agnostic interface for task operations.
package service

import (
	"context"
	"encoding/json"
)

// Service defines the interface for task store operations.
// All remote task store calls go through this interface.
// The list store and commands never speak HTTP directly.
type Service interface {
	// ListTasks returns every task in store order.
	ListTasks(ctx context.Context) ([]Task, error)

	// CreateTask creates a task with completed=false and returns the
	// stored record, including its server-assigned ID.
	CreateTask(ctx context.Context, title string) (Task, error)

	// DeleteTask deletes a task by ID.
	DeleteTask(ctx context.Context, id TaskID) error

	// SetCompleted sets the completed flag of a task.
	SetCompleted(ctx context.Context, id TaskID, completed bool) error

	// TriggerError calls the store's diagnostic endpoint and returns
	// whatever JSON it answered with.
	TriggerError(ctx context.Context) (json.RawMessage, error)
}
