package handlers

import (
	"net/http"
	"strings"

	"github.com/vaughan-dsouza/freelancehub/internal/models"
	"github.com/vaughan-dsouza/freelancehub/internal/utils"
)

// TaskHandler serves tasks; assignment_id is the owning project.
type TaskHandler struct {
	base
}

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	var body struct {
		AssignmentID int64  `json:"assignment_id"`
		Description  string `json:"description"`
	}
	if err := utils.DecodeJSON(w, r, &body); err != nil {
		return
	}
	body.Description = strings.TrimSpace(body.Description)
	if body.AssignmentID <= 0 || body.Description == "" {
		utils.JSONError(w, http.StatusBadRequest, "assignment_id and description are required")
		return
	}

	if _, ok := h.project(w, r, body.AssignmentID); !ok {
		return
	}

	t := models.Task{AssignmentID: body.AssignmentID, Description: body.Description, Status: models.TaskToDo}
	if err := h.store.CreateTask(r.Context(), &t); err != nil {
		h.dbError(w, r, "create task", err, "")
		return
	}
	utils.JSON(w, http.StatusCreated, t)
}

func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	id, ok := utils.QueryID(r, "assignment_id")
	if !ok {
		utils.JSONError(w, http.StatusBadRequest, "assignment_id is required")
		return
	}
	if _, ok := h.project(w, r, id); !ok {
		return
	}

	tasks, err := h.store.ListTasks(r.Context(), id)
	if err != nil {
		h.dbError(w, r, "list tasks", err, "")
		return
	}
	utils.JSON(w, http.StatusOK, tasks)
}

// task loads a task and checks access through its project.
func (h *TaskHandler) task(w http.ResponseWriter, r *http.Request, id int64) (*models.Task, bool) {
	t, err := h.store.TaskByID(r.Context(), id)
	if err != nil {
		h.dbError(w, r, "load task", err, "Task not found")
		return nil, false
	}
	if _, ok := h.project(w, r, t.AssignmentID); !ok {
		return nil, false
	}
	return t, true
}

func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ID          int64   `json:"id"`
		Description *string `json:"description"`
		Status      *string `json:"status"`
	}
	if err := utils.DecodeJSON(w, r, &body); err != nil {
		return
	}
	if body.ID <= 0 {
		utils.JSONError(w, http.StatusBadRequest, "id is required")
		return
	}

	t, ok := h.task(w, r, body.ID)
	if !ok {
		return
	}
	if body.Description != nil {
		d := strings.TrimSpace(*body.Description)
		if d == "" {
			utils.JSONError(w, http.StatusBadRequest, "description cannot be empty")
			return
		}
		t.Description = d
	}
	if body.Status != nil {
		s := strings.TrimSpace(*body.Status)
		if s == "" {
			utils.JSONError(w, http.StatusBadRequest, "status cannot be empty")
			return
		}
		t.Status = s
	}

	if err := h.store.UpdateTask(r.Context(), t); err != nil {
		h.dbError(w, r, "update task", err, "Task not found")
		return
	}
	utils.JSON(w, http.StatusOK, t)
}

func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := utils.QueryID(r, "id")
	if !ok {
		utils.JSONError(w, http.StatusBadRequest, "id is required")
		return
	}
	if _, ok := h.task(w, r, id); !ok {
		return
	}

	if err := h.store.DeleteTask(r.Context(), id); err != nil {
		h.dbError(w, r, "delete task", err, "Task not found")
		return
	}
	utils.JSONMessage(w, http.StatusOK, "Task deleted")
}
