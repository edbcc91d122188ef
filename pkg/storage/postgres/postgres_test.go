package postgres

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	pgmodule "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/taskriser/taskriser/pkg/api"
	"github.com/taskriser/taskriser/pkg/storage"
)

func init() {
	// Configure testcontainers to use podman.
	// Detect the podman socket from `podman machine inspect`.
	if os.Getenv("DOCKER_HOST") == "" {
		out, err := exec.Command("podman", "machine", "inspect", "--format", "{{.ConnectionInfo.PodmanSocket.Path}}").Output()
		if err == nil {
			sock := strings.TrimSpace(string(out))
			if sock != "" {
				os.Setenv("DOCKER_HOST", "unix://"+sock)
			}
		}
	}
	// Ryuk needs privileged mode with podman.
	if os.Getenv("TESTCONTAINERS_RYUK_CONTAINER_PRIVILEGED") == "" {
		os.Setenv("TESTCONTAINERS_RYUK_CONTAINER_PRIVILEGED", "true")
	}
}

// setupTestDB starts a PostgreSQL container and returns a connected Store.
// Tests are skipped if no container runtime is available.
func setupTestDB(t *testing.T) *Store {
	t.Helper()

	if os.Getenv("SKIP_INTEGRATION") == "true" {
		t.Skip("SKIP_INTEGRATION=true, skipping PostgreSQL integration tests")
	}

	if _, err := exec.LookPath("podman"); err != nil {
		t.Skip("podman not found, skipping integration tests")
	}

	ctx := context.Background()

	container, err := pgmodule.Run(ctx,
		"postgres:16-alpine",
		pgmodule.WithDatabase("taskriser_test"),
		pgmodule.WithUsername("test"),
		pgmodule.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Skipf("skipping: could not start PostgreSQL container (is podman running?): %v", err)
	}

	t.Cleanup(func() {
		container.Terminate(context.Background())
	})

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("getting connection string: %v", err)
	}

	store, err := New(ctx, Config{
		DSN:            connStr,
		MaxConns:       5,
		MinConns:       1,
		MigrateOnStart: true,
	})
	if err != nil {
		t.Fatalf("creating store: %v", err)
	}

	t.Cleanup(func() {
		store.Close()
	})

	return store
}

func uniqueName(prefix string) string {
	return fmt.Sprintf("%s_%d", prefix, time.Now().UnixNano())
}

func createTestUser(t *testing.T, store *Store) *api.User {
	t.Helper()
	name := uniqueName("hunter")
	user, err := store.CreateUser(context.Background(), &api.User{
		Username:     name,
		Email:        name + "@hunters.example",
		PasswordHash: "$2a$10$fakehashfortesting",
	})
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	return user
}

func TestPostgres_CreateAndGetUser(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()

	user := createTestUser(t, store)
	if user.ID == 0 {
		t.Fatal("user ID not assigned")
	}

	got, err := store.GetUserByEmail(ctx, user.Email)
	if err != nil {
		t.Fatalf("GetUserByEmail failed: %v", err)
	}
	if got.Username != user.Username {
		t.Errorf("Username = %q, want %q", got.Username, user.Username)
	}
	if got.PasswordHash == "" {
		t.Error("PasswordHash not loaded")
	}

	byID, err := store.GetUserByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetUserByID failed: %v", err)
	}
	if byID.Email != user.Email {
		t.Errorf("Email = %q, want %q", byID.Email, user.Email)
	}
}

func TestPostgres_DuplicateUser(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()

	user := createTestUser(t, store)

	_, err := store.CreateUser(ctx, &api.User{
		Username:     strings.ToUpper(user.Username),
		Email:        "other@hunters.example",
		PasswordHash: "hash",
	})
	if !errors.Is(err, storage.ErrConflict) {
		t.Errorf("duplicate username: expected ErrConflict, got %v", err)
	}
}

func TestPostgres_UserNotFound(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()

	if _, err := store.GetUserByEmail(ctx, "ghost@hunters.example"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := store.GetUserByID(ctx, 999999); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestPostgres_AddExpClamps(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()

	user := createTestUser(t, store)

	after, err := store.AddExp(ctx, user.ID, 120)
	if err != nil {
		t.Fatalf("AddExp failed: %v", err)
	}
	if after.TotalExp != 120 {
		t.Errorf("TotalExp = %d, want 120", after.TotalExp)
	}

	after, err = store.AddExp(ctx, user.ID, -500)
	if err != nil {
		t.Fatalf("AddExp failed: %v", err)
	}
	if after.TotalExp != 0 {
		t.Errorf("TotalExp = %d, want 0 after negative overshoot", after.TotalExp)
	}
}

func TestPostgres_TaskLifecycle(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()

	user := createTestUser(t, store)

	due := time.Now().Add(24 * time.Hour).UTC().Truncate(time.Second)
	task, err := store.CreateTask(ctx, &api.Task{
		UserID:     user.ID,
		Title:      "clear the red gate",
		Difficulty: api.DifficultyA,
		Status:     api.StatusPending,
		Priority:   api.PriorityHigh,
		Tags:       []string{"raid", "urgent"},
		ExpReward:  50,
		DueDate:    &due,
	})
	if err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}
	if task.ID == 0 {
		t.Fatal("task ID not assigned")
	}

	got, err := store.GetTask(ctx, task.ID)
	if err != nil {
		t.Fatalf("GetTask failed: %v", err)
	}
	if len(got.Tags) != 2 || got.Tags[0] != "raid" {
		t.Errorf("Tags = %v, want [raid urgent]", got.Tags)
	}
	if got.DueDate == nil || !got.DueDate.Equal(due) {
		t.Errorf("DueDate = %v, want %v", got.DueDate, due)
	}

	got.Status = api.StatusCompleted
	updated, err := store.UpdateTask(ctx, got)
	if err != nil {
		t.Fatalf("UpdateTask failed: %v", err)
	}
	if updated.Status != api.StatusCompleted {
		t.Errorf("Status = %q, want Completed", updated.Status)
	}

	tasks, err := store.ListTasksByUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("ListTasksByUser failed: %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("len(tasks) = %d, want 1", len(tasks))
	}

	if err := store.DeleteTask(ctx, task.ID); err != nil {
		t.Fatalf("DeleteTask failed: %v", err)
	}
	if _, err := store.GetTask(ctx, task.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestPostgres_TopByExp(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()

	low := createTestUser(t, store)
	high := createTestUser(t, store)
	store.AddExp(ctx, low.ID, 10)
	store.AddExp(ctx, high.ID, 1000)

	top, err := store.TopByExp(ctx, 10)
	if err != nil {
		t.Fatalf("TopByExp failed: %v", err)
	}
	if len(top) < 2 {
		t.Fatalf("len(top) = %d, want >= 2", len(top))
	}
	if top[0].Username != high.Username {
		t.Errorf("top[0] = %q, want %q", top[0].Username, high.Username)
	}
	for _, u := range top {
		if u.ID == high.ID && u.TotalExp != 1000 {
			t.Errorf("TotalExp = %d, want 1000", u.TotalExp)
		}
	}
}
