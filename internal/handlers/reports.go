package handlers

import (
	"net/http"
	"time"

	"github.com/vaughan-dsouza/freelancehub/internal/models"
	"github.com/vaughan-dsouza/freelancehub/internal/utils"
)

type ReportHandler struct {
	base
}

// dateRange reads the optional from/to query parameters.
func dateRange(w http.ResponseWriter, r *http.Request) (from, to *time.Time, ok bool) {
	q := r.URL.Query()
	for key, dst := range map[string]**time.Time{"from": &from, "to": &to} {
		raw := q.Get(key)
		if raw == "" {
			continue
		}
		d, err := utils.ParseDate(raw)
		if err != nil {
			utils.JSONError(w, http.StatusBadRequest, key+": "+err.Error())
			return nil, nil, false
		}
		*dst = &d
	}
	if from != nil && to != nil && to.Before(*from) {
		utils.JSONError(w, http.StatusBadRequest, "to must not be before from")
		return nil, nil, false
	}
	return from, to, true
}

func (h *ReportHandler) ProjectStatus(w http.ResponseWriter, r *http.Request) {
	rows, err := h.store.ProjectStatusReport(r.Context())
	if err != nil {
		h.dbError(w, r, "build project status report", err, "")
		return
	}
	utils.JSON(w, http.StatusOK, rows)
}

func (h *ReportHandler) FreelancerHours(w http.ResponseWriter, r *http.Request) {
	from, to, ok := dateRange(w, r)
	if !ok {
		return
	}
	rows, err := h.store.FreelancerHours(r.Context(), from, to)
	if err != nil {
		h.dbError(w, r, "build freelancer hours report", err, "")
		return
	}
	utils.JSON(w, http.StatusOK, rows)
}

func (h *ReportHandler) Revenue(w http.ResponseWriter, r *http.Request) {
	from, to, ok := dateRange(w, r)
	if !ok {
		return
	}
	rows, err := h.store.RevenueByMonth(r.Context(), from, to)
	if err != nil {
		h.dbError(w, r, "build revenue report", err, "")
		return
	}
	utils.JSON(w, http.StatusOK, rows)
}

// ClientSpend is open to admins for any client and to clients for themselves.
func (h *ReportHandler) ClientSpend(w http.ResponseWriter, r *http.Request) {
	c := callerFrom(r)
	clientID := c.ID
	if c.admin() {
		id, ok := utils.QueryID(r, "client_id")
		if !ok {
			utils.JSONError(w, http.StatusBadRequest, "client_id is required")
			return
		}
		clientID = id
	} else if c.Role != models.RoleClient {
		utils.JSONError(w, http.StatusForbidden, "Access forbidden")
		return
	} else if raw := r.URL.Query().Get("client_id"); raw != "" {
		if id, ok := utils.QueryID(r, "client_id"); !ok || id != c.ID {
			utils.JSONError(w, http.StatusForbidden, "Access forbidden")
			return
		}
	}

	rows, err := h.store.ClientSpend(r.Context(), clientID)
	if err != nil {
		h.dbError(w, r, "build client spend report", err, "")
		return
	}
	utils.JSON(w, http.StatusOK, rows)
}
