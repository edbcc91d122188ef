package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/taskriser/taskriser/pkg/api"
	"github.com/taskriser/taskriser/pkg/auth"
	"github.com/taskriser/taskriser/pkg/leveling"
	"github.com/taskriser/taskriser/pkg/storage"
	"github.com/taskriser/taskriser/pkg/transport"
)

type taskRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Difficulty  string     `json:"difficulty"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	Tags        []string   `json:"tags"`
	DueDate     *time.Time `json:"dueDate"`
}

// taskUpdateResponse wraps an updated task with the EXP reward details
// when the update completed the task.
type taskUpdateResponse struct {
	Task      *api.Task `json:"task"`
	ExpGained int64     `json:"expGained,omitempty"`
	TotalExp  int64     `json:"totalExp,omitempty"`
	Level     int       `json:"level,omitempty"`
	Rank      string    `json:"rank,omitempty"`
	LeveledUp bool      `json:"leveledUp,omitempty"`
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	id := auth.IdentityFromContext(r.Context())
	tasks, err := s.store.ListTasksByUser(r.Context(), id.UserID)
	if err != nil {
		s.logger.Error("listing tasks", "user_id", id.UserID, "error", err)
		transport.WriteAPIError(w, api.NewServerError("could not list tasks"))
		return
	}
	transport.WriteJSON(w, http.StatusOK, map[string]any{"tasks": tasks})
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	id := auth.IdentityFromContext(r.Context())

	var req taskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		transport.WriteAPIError(w, api.NewInvalidRequestError("", "invalid JSON body"))
		return
	}

	if req.Title == "" {
		transport.WriteAPIError(w, api.NewInvalidRequestError("title", "title is required"))
		return
	}
	if req.Difficulty == "" {
		req.Difficulty = api.DifficultyE
	}
	if req.Status == "" {
		req.Status = api.StatusPending
	}
	if apiErr := validateTaskFields(&req); apiErr != nil {
		transport.WriteAPIError(w, apiErr)
		return
	}

	task, err := s.store.CreateTask(r.Context(), &api.Task{
		UserID:      id.UserID,
		Title:       req.Title,
		Description: req.Description,
		Difficulty:  req.Difficulty,
		Status:      req.Status,
		Priority:    req.Priority,
		Tags:        req.Tags,
		ExpReward:   leveling.DifficultyReward(req.Difficulty),
		DueDate:     req.DueDate,
	})
	if err != nil {
		s.logger.Error("creating task", "user_id", id.UserID, "error", err)
		transport.WriteAPIError(w, api.NewServerError("could not create task"))
		return
	}

	transport.WriteJSON(w, http.StatusCreated, task)
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	task, apiErr := s.ownedTask(r)
	if apiErr != nil {
		transport.WriteAPIError(w, apiErr)
		return
	}
	transport.WriteJSON(w, http.StatusOK, task)
}

// handleUpdateTask applies the mutable fields of the request to the
// task. A transition into Completed awards the task's EXP reward once;
// the response then carries the hunter's new totals.
func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	identity := auth.IdentityFromContext(r.Context())

	task, apiErr := s.ownedTask(r)
	if apiErr != nil {
		transport.WriteAPIError(w, apiErr)
		return
	}

	var req taskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		transport.WriteAPIError(w, api.NewInvalidRequestError("", "invalid JSON body"))
		return
	}
	if apiErr := validateTaskFields(&req); apiErr != nil {
		transport.WriteAPIError(w, apiErr)
		return
	}

	wasCompleted := task.Status == api.StatusCompleted

	if req.Title != "" {
		task.Title = req.Title
	}
	if req.Description != "" {
		task.Description = req.Description
	}
	if req.Difficulty != "" && !wasCompleted {
		// The reward is fixed once the task is done.
		task.Difficulty = req.Difficulty
		task.ExpReward = leveling.DifficultyReward(req.Difficulty)
	}
	if req.Status != "" {
		task.Status = req.Status
	}
	if req.Priority != "" {
		task.Priority = req.Priority
	}
	if req.Tags != nil {
		task.Tags = req.Tags
	}
	if req.DueDate != nil {
		task.DueDate = req.DueDate
	}

	updated, err := s.store.UpdateTask(r.Context(), task)
	if err != nil {
		s.logger.Error("updating task", "task_id", task.ID, "error", err)
		transport.WriteAPIError(w, api.NewServerError("could not update task"))
		return
	}

	resp := taskUpdateResponse{Task: updated}
	if !wasCompleted && updated.Status == api.StatusCompleted {
		user, err := s.store.AddExp(r.Context(), identity.UserID, updated.ExpReward)
		if err != nil {
			s.logger.Error("awarding exp", "user_id", identity.UserID, "error", err)
			transport.WriteAPIError(w, api.NewServerError("could not award exp"))
			return
		}
		level := leveling.Level(user.TotalExp)
		resp.ExpGained = updated.ExpReward
		resp.TotalExp = user.TotalExp
		resp.Level = level
		resp.Rank = leveling.Rank(level)
		resp.LeveledUp = level > leveling.Level(user.TotalExp-updated.ExpReward)
		s.logger.Info("quest completed",
			"user_id", identity.UserID,
			"task_id", updated.ID,
			"exp_gained", updated.ExpReward,
			"total_exp", user.TotalExp,
			"level", level,
		)
	}

	transport.WriteJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	task, apiErr := s.ownedTask(r)
	if apiErr != nil {
		transport.WriteAPIError(w, apiErr)
		return
	}

	if err := s.store.DeleteTask(r.Context(), task.ID); err != nil {
		s.logger.Error("deleting task", "task_id", task.ID, "error", err)
		transport.WriteAPIError(w, api.NewServerError("could not delete task"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ownedTask loads the task from the path ID and checks ownership.
// Tasks belonging to another hunter read as not found, so task IDs
// cannot be probed for existence.
func (s *Server) ownedTask(r *http.Request) (*api.Task, *api.APIError) {
	taskID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		return nil, api.NewInvalidRequestError("id", "task id must be an integer")
	}

	task, err := s.store.GetTask(r.Context(), taskID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, api.NewNotFoundError("task not found")
		}
		s.logger.Error("loading task", "task_id", taskID, "error", err)
		return nil, api.NewServerError("could not load task")
	}

	identity := auth.IdentityFromContext(r.Context())
	if identity == nil || task.UserID != identity.UserID {
		return nil, api.NewNotFoundError("task not found")
	}
	return task, nil
}

// validateTaskFields checks the enum fields that are set.
func validateTaskFields(req *taskRequest) *api.APIError {
	if req.Difficulty != "" && !api.ValidDifficulty(req.Difficulty) {
		return api.NewInvalidRequestError("difficulty", "difficulty must be one of: "+api.Difficulties())
	}
	if req.Status != "" && !api.ValidStatus(req.Status) {
		return api.NewInvalidRequestError("status", "status must be one of: "+api.Statuses())
	}
	if req.Priority != "" && !api.ValidPriority(req.Priority) {
		return api.NewInvalidRequestError("priority", "priority must be one of: "+api.Priorities())
	}
	return nil
}
