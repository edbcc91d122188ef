// Package postgres provides a PostgreSQL implementation of storage.Store.
// It uses pgx/v5 for connection pooling and JSONB for task tags.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taskriser/taskriser/pkg/api"
	"github.com/taskriser/taskriser/pkg/storage"
)

// Store is a PostgreSQL-backed storage.Store.
type Store struct {
	pool *pgxpool.Pool
}

// Ensure Store implements storage.Store at compile time.
var _ storage.Store = (*Store)(nil)

// New creates a new PostgreSQL store with the given configuration.
// If MigrateOnStart is true, schema migrations are applied automatically.
func New(ctx context.Context, cfg Config) (*Store, error) {
	cfg.defaults()

	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parsing DSN: %w", err)
	}

	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	// Verify connectivity.
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	s := &Store{pool: pool}

	if cfg.MigrateOnStart {
		if err := s.migrate(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("running migrations: %w", err)
		}
	}

	return s, nil
}

// Close releases the connection pool.
func (s *Store) Close() {
	s.pool.Close()
}

const userColumns = "id, username, email, password_hash, avatar, total_exp, created_at"

// CreateUser inserts a new user. Unique violations on username or email
// map to storage.ErrConflict.
func (s *Store) CreateUser(ctx context.Context, user *api.User) (*api.User, error) {
	row := s.pool.QueryRow(ctx,
		`INSERT INTO users (username, email, password_hash, avatar, total_exp)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+userColumns,
		user.Username, user.Email, user.PasswordHash, user.Avatar, user.TotalExp,
	)

	created, err := scanUser(row)
	if err != nil {
		if isDuplicateKey(err) {
			return nil, storage.ErrConflict
		}
		return nil, fmt.Errorf("inserting user: %w", err)
	}
	return created, nil
}

// GetUserByEmail returns the user with the given email.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*api.User, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, email)

	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("querying user by email: %w", err)
	}
	return user, nil
}

// GetUserByID returns the user with the given ID.
func (s *Store) GetUserByID(ctx context.Context, id int64) (*api.User, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id)

	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("querying user by id: %w", err)
	}
	return user, nil
}

// UpdateProfile updates username and avatar. Empty values leave the
// current field unchanged.
func (s *Store) UpdateProfile(ctx context.Context, id int64, username, avatar string) (*api.User, error) {
	row := s.pool.QueryRow(ctx,
		`UPDATE users
		 SET username = COALESCE(NULLIF($2, ''), username),
		     avatar = COALESCE(NULLIF($3, ''), avatar)
		 WHERE id = $1
		 RETURNING `+userColumns,
		id, username, avatar,
	)

	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		if isDuplicateKey(err) {
			return nil, storage.ErrConflict
		}
		return nil, fmt.Errorf("updating profile: %w", err)
	}
	return user, nil
}

// AddExp adds delta to the user's total EXP, clamping at zero.
func (s *Store) AddExp(ctx context.Context, id int64, delta int64) (*api.User, error) {
	row := s.pool.QueryRow(ctx,
		`UPDATE users SET total_exp = GREATEST(total_exp + $2, 0)
		 WHERE id = $1
		 RETURNING `+userColumns,
		id, delta,
	)

	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("adding exp: %w", err)
	}
	return user, nil
}

// TopByExp returns up to n users ordered by total EXP descending.
func (s *Store) TopByExp(ctx context.Context, n int) ([]api.PublicUser, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, username, total_exp FROM users
		 ORDER BY total_exp DESC, id ASC
		 LIMIT $1`, n)
	if err != nil {
		return nil, fmt.Errorf("querying ranking: %w", err)
	}
	defer rows.Close()

	var ranked []api.PublicUser
	for rows.Next() {
		var u api.PublicUser
		if err := rows.Scan(&u.ID, &u.Username, &u.TotalExp); err != nil {
			return nil, fmt.Errorf("scanning ranking row: %w", err)
		}
		ranked = append(ranked, u)
	}
	return ranked, rows.Err()
}

const taskColumns = "id, user_id, title, description, difficulty, status, priority, tags, exp_reward, due_date, created_at, updated_at"

// CreateTask inserts a new task.
func (s *Store) CreateTask(ctx context.Context, task *api.Task) (*api.Task, error) {
	tags, err := marshalTags(task.Tags)
	if err != nil {
		return nil, err
	}

	row := s.pool.QueryRow(ctx,
		`INSERT INTO tasks (user_id, title, description, difficulty, status, priority, tags, exp_reward, due_date)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING `+taskColumns,
		task.UserID, task.Title, task.Description, task.Difficulty,
		task.Status, task.Priority, tags, task.ExpReward, task.DueDate,
	)

	created, err := scanTask(row)
	if err != nil {
		return nil, fmt.Errorf("inserting task: %w", err)
	}
	return created, nil
}

// ListTasksByUser returns the user's tasks, newest first.
func (s *Store) ListTasksByUser(ctx context.Context, userID int64) ([]*api.Task, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+taskColumns+` FROM tasks
		 WHERE user_id = $1
		 ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*api.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning task row: %w", err)
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

// GetTask returns the task with the given ID.
func (s *Store) GetTask(ctx context.Context, id int64) (*api.Task, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id)

	task, err := scanTask(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("querying task: %w", err)
	}
	return task, nil
}

// UpdateTask overwrites the mutable fields of an existing task.
func (s *Store) UpdateTask(ctx context.Context, task *api.Task) (*api.Task, error) {
	tags, err := marshalTags(task.Tags)
	if err != nil {
		return nil, err
	}

	row := s.pool.QueryRow(ctx,
		`UPDATE tasks
		 SET title = $2, description = $3, difficulty = $4, status = $5,
		     priority = $6, tags = $7, exp_reward = $8, due_date = $9,
		     updated_at = now()
		 WHERE id = $1
		 RETURNING `+taskColumns,
		task.ID, task.Title, task.Description, task.Difficulty, task.Status,
		task.Priority, tags, task.ExpReward, task.DueDate,
	)

	updated, err := scanTask(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("updating task: %w", err)
	}
	return updated, nil
}

// DeleteTask removes a task.
func (s *Store) DeleteTask(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// rowScanner abstracts pgx.Row and pgx.Rows for the scan helpers.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*api.User, error) {
	var u api.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash,
		&u.Avatar, &u.TotalExp, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func scanTask(row rowScanner) (*api.Task, error) {
	var t api.Task
	var tags []byte
	err := row.Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &t.Difficulty,
		&t.Status, &t.Priority, &tags, &t.ExpReward, &t.DueDate,
		&t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if len(tags) > 0 {
		if err := json.Unmarshal(tags, &t.Tags); err != nil {
			return nil, fmt.Errorf("decoding tags: %w", err)
		}
	}
	return &t, nil
}

func marshalTags(tags []string) ([]byte, error) {
	if tags == nil {
		tags = []string{}
	}
	data, err := json.Marshal(tags)
	if err != nil {
		return nil, fmt.Errorf("encoding tags: %w", err)
	}
	return data, nil
}

// isDuplicateKey checks if the error is a PostgreSQL unique violation (23505).
func isDuplicateKey(err error) bool {
	return err != nil && strings.Contains(err.Error(), "23505")
}
