// Package service defines the backend-agnostic interface for task operations.
package service

import (
	"context"

	"taskflow/internal/tasks"
)

// Service defines the interface for task backend operations.
// All task API calls go through this interface.
// Commands and the dashboard never build HTTP requests directly.
type Service interface {
	// Login exchanges credentials for a session.
	Login(ctx context.Context, creds Credentials) (AuthResult, error)

	// Register creates an account and returns its session.
	Register(ctx context.Context, creds Credentials) (AuthResult, error)

	// ListTasks returns the full task collection in API order.
	// A response that is not a JSON array yields an empty slice.
	ListTasks(ctx context.Context, token string) ([]tasks.Task, error)

	// CreateTask creates a task.
	CreateTask(ctx context.Context, token string, nt tasks.NewTask) error

	// UpdateTask sends exactly the fields set in patch.
	UpdateTask(ctx context.Context, token string, id tasks.ID, patch tasks.Patch) error

	// DeleteTask deletes a task.
	DeleteTask(ctx context.Context, token string, id tasks.ID) error
}
