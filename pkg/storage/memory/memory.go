// Package memory provides an in-memory storage.Store for testing and
// lightweight deployments. Records are lost when the process restarts.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/taskriser/taskriser/pkg/api"
	"github.com/taskriser/taskriser/pkg/storage"
)

// Store is an in-memory implementation of storage.Store.
type Store struct {
	mu         sync.RWMutex
	users      map[int64]*api.User
	tasks      map[int64]*api.Task
	nextUserID int64
	nextTaskID int64
}

// Ensure Store implements storage.Store at compile time.
var _ storage.Store = (*Store)(nil)

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		users:      make(map[int64]*api.User),
		tasks:      make(map[int64]*api.Task),
		nextUserID: 1,
		nextTaskID: 1,
	}
}

// CreateUser inserts a new user, enforcing username and email uniqueness.
func (s *Store) CreateUser(_ context.Context, user *api.User) (*api.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Email, user.Email) || strings.EqualFold(u.Username, user.Username) {
			return nil, storage.ErrConflict
		}
	}

	clone := *user
	clone.ID = s.nextUserID
	s.nextUserID++
	if clone.CreatedAt.IsZero() {
		clone.CreatedAt = time.Now()
	}
	s.users[clone.ID] = &clone

	result := clone
	return &result, nil
}

// GetUserByEmail returns the user with the given email.
func (s *Store) GetUserByEmail(_ context.Context, email string) (*api.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			clone := *u
			return &clone, nil
		}
	}
	return nil, storage.ErrNotFound
}

// GetUserByID returns the user with the given ID.
func (s *Store) GetUserByID(_ context.Context, id int64) (*api.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	clone := *u
	return &clone, nil
}

// UpdateProfile updates username and avatar.
func (s *Store) UpdateProfile(_ context.Context, id int64, username, avatar string) (*api.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, storage.ErrNotFound
	}

	if username != "" && !strings.EqualFold(username, u.Username) {
		for otherID, other := range s.users {
			if otherID != id && strings.EqualFold(other.Username, username) {
				return nil, storage.ErrConflict
			}
		}
		u.Username = username
	}
	if avatar != "" {
		u.Avatar = avatar
	}

	clone := *u
	return &clone, nil
}

// AddExp adds delta to the user's total EXP.
func (s *Store) AddExp(_ context.Context, id int64, delta int64) (*api.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	u.TotalExp += delta
	if u.TotalExp < 0 {
		u.TotalExp = 0
	}

	clone := *u
	return &clone, nil
}

// TopByExp returns up to n users ordered by total EXP descending.
func (s *Store) TopByExp(_ context.Context, n int) ([]api.PublicUser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ranked := make([]api.PublicUser, 0, len(s.users))
	for _, u := range s.users {
		ranked = append(ranked, u.Public())
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].TotalExp != ranked[j].TotalExp {
			return ranked[i].TotalExp > ranked[j].TotalExp
		}
		return ranked[i].ID < ranked[j].ID
	})

	if n > 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked, nil
}

// CreateTask inserts a new task.
func (s *Store) CreateTask(_ context.Context, task *api.Task) (*api.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	clone := *task
	clone.ID = s.nextTaskID
	s.nextTaskID++
	now := time.Now()
	if clone.CreatedAt.IsZero() {
		clone.CreatedAt = now
	}
	clone.UpdatedAt = now
	s.tasks[clone.ID] = &clone

	result := clone
	return &result, nil
}

// ListTasksByUser returns the user's tasks, newest first.
func (s *Store) ListTasksByUser(_ context.Context, userID int64) ([]*api.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var tasks []*api.Task
	for _, t := range s.tasks {
		if t.UserID == userID {
			clone := *t
			tasks = append(tasks, &clone)
		}
	}
	sort.Slice(tasks, func(i, j int) bool {
		if !tasks[i].CreatedAt.Equal(tasks[j].CreatedAt) {
			return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
		}
		return tasks[i].ID > tasks[j].ID
	})
	return tasks, nil
}

// GetTask returns the task with the given ID.
func (s *Store) GetTask(_ context.Context, id int64) (*api.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tasks[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	clone := *t
	return &clone, nil
}

// UpdateTask overwrites the mutable fields of an existing task.
func (s *Store) UpdateTask(_ context.Context, task *api.Task) (*api.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.tasks[task.ID]
	if !ok {
		return nil, storage.ErrNotFound
	}

	clone := *task
	clone.UserID = existing.UserID
	clone.CreatedAt = existing.CreatedAt
	clone.UpdatedAt = time.Now()
	s.tasks[clone.ID] = &clone

	result := clone
	return &result, nil
}

// DeleteTask removes a task.
func (s *Store) DeleteTask(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tasks[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.tasks, id)
	return nil
}
