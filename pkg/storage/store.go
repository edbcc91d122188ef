package storage

import (
	"context"

	"github.com/taskriser/taskriser/pkg/api"
)

// UserStore handles hunter records.
type UserStore interface {
	// CreateUser inserts a new user. Returns ErrConflict when the
	// username or email is already taken.
	CreateUser(ctx context.Context, user *api.User) (*api.User, error)

	// GetUserByEmail returns the user with the given email, or ErrNotFound.
	GetUserByEmail(ctx context.Context, email string) (*api.User, error)

	// GetUserByID returns the user with the given ID, or ErrNotFound.
	GetUserByID(ctx context.Context, id int64) (*api.User, error)

	// UpdateProfile updates username and avatar. Returns ErrConflict
	// when the new username is taken, ErrNotFound when the user is gone.
	UpdateProfile(ctx context.Context, id int64, username, avatar string) (*api.User, error)

	// AddExp adds delta to the user's total EXP and returns the updated user.
	AddExp(ctx context.Context, id int64, delta int64) (*api.User, error)

	// TopByExp returns up to n users ordered by total EXP descending.
	TopByExp(ctx context.Context, n int) ([]api.PublicUser, error)
}

// TaskStore handles quest records.
type TaskStore interface {
	// CreateTask inserts a new task and returns it with its assigned ID.
	CreateTask(ctx context.Context, task *api.Task) (*api.Task, error)

	// ListTasksByUser returns the user's tasks, newest first.
	ListTasksByUser(ctx context.Context, userID int64) ([]*api.Task, error)

	// GetTask returns the task with the given ID, or ErrNotFound.
	GetTask(ctx context.Context, id int64) (*api.Task, error)

	// UpdateTask overwrites the mutable fields of an existing task.
	UpdateTask(ctx context.Context, task *api.Task) (*api.Task, error)

	// DeleteTask removes a task, or returns ErrNotFound.
	DeleteTask(ctx context.Context, id int64) error
}

// Store bundles the per-entity stores a backend provides.
type Store interface {
	UserStore
	TaskStore
}
