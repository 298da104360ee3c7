package handlers

import (
	"net/http"
	"strings"

	"github.com/vaughan-dsouza/freelancehub/internal/models"
	"github.com/vaughan-dsouza/freelancehub/internal/utils"
)

type UserHandler struct {
	base
}

func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	u, err := h.store.UserByID(r.Context(), callerFrom(r).ID)
	if err != nil {
		h.dbError(w, r, "load user", err, "User not found")
		return
	}
	utils.JSON(w, http.StatusOK, u)
}

func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name    *string  `json:"name"`
		Company *string  `json:"company"`
		Rate    *float64 `json:"rate"`
	}
	if err := utils.DecodeJSON(w, r, &body); err != nil {
		return
	}

	u, err := h.store.UserByID(r.Context(), callerFrom(r).ID)
	if err != nil {
		h.dbError(w, r, "load user", err, "User not found")
		return
	}

	if body.Name != nil {
		name := strings.TrimSpace(*body.Name)
		if name == "" {
			utils.JSONError(w, http.StatusBadRequest, "name cannot be empty")
			return
		}
		u.Name = name
	}
	if body.Company != nil {
		u.Company = strings.TrimSpace(*body.Company)
	}
	if body.Rate != nil {
		if *body.Rate < 0 {
			utils.JSONError(w, http.StatusBadRequest, "rate cannot be negative")
			return
		}
		u.Rate = *body.Rate
	}

	if err := h.store.UpdateUser(r.Context(), u); err != nil {
		h.dbError(w, r, "update user", err, "User not found")
		return
	}
	utils.JSON(w, http.StatusOK, u)
}

// List is admin only.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	role := models.Role(r.URL.Query().Get("role"))
	if role != "" && !role.Valid() {
		utils.JSONError(w, http.StatusBadRequest, "unknown role")
		return
	}

	users, err := h.store.ListUsers(r.Context(), role)
	if err != nil {
		h.dbError(w, r, "list users", err, "")
		return
	}
	utils.JSON(w, http.StatusOK, users)
}

type freelancerView struct {
	ID      int64   `json:"id"`
	Name    string  `json:"name"`
	Company string  `json:"company"`
	Rate    float64 `json:"rate"`
}

// Freelancers lists who a client can assign, without contact details.
func (h *UserHandler) Freelancers(w http.ResponseWriter, r *http.Request) {
	users, err := h.store.ListUsers(r.Context(), models.RoleFreelancer)
	if err != nil {
		h.dbError(w, r, "list freelancers", err, "")
		return
	}

	out := make([]freelancerView, 0, len(users))
	for _, u := range users {
		out = append(out, freelancerView{ID: u.ID, Name: u.Name, Company: u.Company, Rate: u.Rate})
	}
	utils.JSON(w, http.StatusOK, out)
}
