package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/vaughan-dsouza/freelancehub/internal/events"
	"github.com/vaughan-dsouza/freelancehub/internal/metrics"
	"github.com/vaughan-dsouza/freelancehub/internal/models"
	"github.com/vaughan-dsouza/freelancehub/internal/store"
	"github.com/vaughan-dsouza/freelancehub/internal/utils"
)

const maxHoursPerLog = 24

type TimeLogHandler struct {
	base
}

type timeLogCreated struct {
	TimeLog *models.TimeLog `json:"time_log"`
	Charge  *models.Charge  `json:"charge"`
}

// Create records hours for the calling freelancer and bills them at the
// freelancer's current rate.
func (h *TimeLogHandler) Create(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ProjectID   int64   `json:"project_id"`
		TaskID      *int64  `json:"task_id"`
		HoursLogged float64 `json:"hours_logged"`
		LogDate     *string `json:"log_date"`
		Description string  `json:"description"`
	}
	if err := utils.DecodeJSON(w, r, &body); err != nil {
		return
	}
	if body.ProjectID <= 0 {
		utils.JSONError(w, http.StatusBadRequest, "project_id is required")
		return
	}
	if body.HoursLogged <= 0 || body.HoursLogged > maxHoursPerLog {
		utils.JSONError(w, http.StatusBadRequest, fmt.Sprintf("hours_logged must be between 0 and %d", maxHoursPerLog))
		return
	}
	logDate := time.Now().UTC().Truncate(24 * time.Hour)
	if d, err := optionalDate(body.LogDate); err != nil {
		utils.JSONError(w, http.StatusBadRequest, err.Error())
		return
	} else if d != nil {
		logDate = *d
	}

	c := callerFrom(r)
	p, err := h.store.ProjectByID(r.Context(), body.ProjectID)
	if err != nil {
		h.dbError(w, r, "load project", err, "Project not found")
		return
	}
	if p.FreelancerID == nil || *p.FreelancerID != c.ID {
		utils.JSONError(w, http.StatusForbidden, "You are not assigned to this project")
		return
	}

	if body.TaskID != nil {
		t, err := h.store.TaskByID(r.Context(), *body.TaskID)
		if errors.Is(err, store.ErrNotFound) || (err == nil && t.AssignmentID != p.ID) {
			utils.JSONError(w, http.StatusBadRequest, "task_id does not belong to this project")
			return
		}
		if err != nil {
			h.dbError(w, r, "load task", err, "")
			return
		}
	}

	// the charge uses the rate in effect now; later rate changes do not touch it
	freelancer, err := h.store.UserByID(r.Context(), c.ID)
	if err != nil {
		h.dbError(w, r, "load freelancer", err, "User not found")
		return
	}

	tl := &models.TimeLog{
		FreelancerID: c.ID,
		ProjectID:    p.ID,
		TaskID:       body.TaskID,
		Hours:        body.HoursLogged,
		LogDate:      logDate,
		Description:  strings.TrimSpace(body.Description),
		Status:       models.TimeLogPending,
	}
	ch := models.NewCharge(tl, p.ClientID, freelancer.Rate)

	if err := h.store.CreateTimeLog(r.Context(), tl, ch); err != nil {
		h.dbError(w, r, "create time log", err, "")
		return
	}
	metrics.RecordCharge(ch.Amount)

	h.notify(r.Context(), p.ClientID, "New time log",
		fmt.Sprintf("%s logged %.2f hours on %s", freelancer.Name, tl.Hours, p.Title), models.NotifyTimeLog)
	h.publish(r.Context(), events.TimeLogCreated, map[string]any{
		"time_log_id":   tl.ID,
		"charge_id":     ch.ID,
		"project_id":    p.ID,
		"client_id":     p.ClientID,
		"freelancer_id": c.ID,
		"hours":         tl.Hours,
		"amount":        ch.Amount,
	})

	utils.JSON(w, http.StatusCreated, timeLogCreated{TimeLog: tl, Charge: ch})
}

// billingScope turns the caller and an optional project_id into a filter.
// Non-admins are always pinned to their own rows.
func (b *base) billingScope(w http.ResponseWriter, r *http.Request) (store.BillingFilter, bool) {
	var f store.BillingFilter
	if raw := r.URL.Query().Get("project_id"); raw != "" {
		id, ok := utils.QueryID(r, "project_id")
		if !ok {
			utils.JSONError(w, http.StatusBadRequest, "invalid project_id")
			return f, false
		}
		if _, ok := b.project(w, r, id); !ok {
			return f, false
		}
		f.ProjectID = id
	}

	c := callerFrom(r)
	switch c.Role {
	case models.RoleFreelancer:
		f.FreelancerID = c.ID
	case models.RoleClient:
		f.ClientID = c.ID
	}
	return f, true
}

func (h *TimeLogHandler) List(w http.ResponseWriter, r *http.Request) {
	f, ok := h.billingScope(w, r)
	if !ok {
		return
	}

	logs, err := h.store.ListTimeLogs(r.Context(), f)
	if err != nil {
		h.dbError(w, r, "list time logs", err, "")
		return
	}
	utils.JSON(w, http.StatusOK, logs)
}

// UpdateStatus lets the project's client (or an admin) approve or reject.
func (h *TimeLogHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ID     int64  `json:"id"`
		Status string `json:"status"`
	}
	if err := utils.DecodeJSON(w, r, &body); err != nil {
		return
	}
	status := models.TimeLogStatus(body.Status)
	if body.ID <= 0 || !status.Valid() {
		utils.JSONError(w, http.StatusBadRequest, "id and a valid status are required")
		return
	}

	tl, err := h.store.TimeLogByID(r.Context(), body.ID)
	if err != nil {
		h.dbError(w, r, "load time log", err, "Time log not found")
		return
	}
	if _, ok := h.ownedProject(w, r, tl.ProjectID); !ok {
		return
	}

	if err := h.store.UpdateTimeLogStatus(r.Context(), tl.ID, status); err != nil {
		h.dbError(w, r, "update time log", err, "Time log not found")
		return
	}
	tl.Status = status

	h.notify(r.Context(), tl.FreelancerID, "Time log "+strings.ToLower(string(status)),
		fmt.Sprintf("Your entry of %.2f hours was marked %s", tl.Hours, status), models.NotifyTimeLog)
	utils.JSON(w, http.StatusOK, tl)
}

// Delete removes a pending entry of the caller's, or any entry for admins.
func (h *TimeLogHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := utils.QueryID(r, "id")
	if !ok {
		utils.JSONError(w, http.StatusBadRequest, "id is required")
		return
	}

	tl, err := h.store.TimeLogByID(r.Context(), id)
	if err != nil {
		h.dbError(w, r, "load time log", err, "Time log not found")
		return
	}

	c := callerFrom(r)
	if !c.admin() {
		if tl.FreelancerID != c.ID {
			utils.JSONError(w, http.StatusForbidden, "Access forbidden")
			return
		}
		if tl.Status != models.TimeLogPending {
			utils.JSONError(w, http.StatusBadRequest, "Only pending time logs can be deleted")
			return
		}
	}

	if err := h.store.DeleteTimeLog(r.Context(), id); err != nil {
		h.dbError(w, r, "delete time log", err, "Time log not found")
		return
	}
	utils.JSONMessage(w, http.StatusOK, "Time log deleted")
}
