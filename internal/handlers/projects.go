package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/vaughan-dsouza/freelancehub/internal/events"
	"github.com/vaughan-dsouza/freelancehub/internal/models"
	"github.com/vaughan-dsouza/freelancehub/internal/store"
	"github.com/vaughan-dsouza/freelancehub/internal/utils"
)

type ProjectHandler struct {
	base
}

// optionalDate parses an optional YYYY-MM-DD string.
func optionalDate(s *string) (*time.Time, error) {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil, nil
	}
	t, err := utils.ParseDate(*s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ---------------------- CREATE ----------------------

func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Title    string  `json:"title"`
		Budget   float64 `json:"budget"`
		Deadline *string `json:"deadline"`
		ClientID int64   `json:"client_id"`
	}
	if err := utils.DecodeJSON(w, r, &body); err != nil {
		return
	}

	c := callerFrom(r)
	body.Title = strings.TrimSpace(body.Title)
	if body.Title == "" {
		utils.JSONError(w, http.StatusBadRequest, "title is required")
		return
	}
	if body.Budget < 0 {
		utils.JSONError(w, http.StatusBadRequest, "budget cannot be negative")
		return
	}
	deadline, err := optionalDate(body.Deadline)
	if err != nil {
		utils.JSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	clientID := c.ID
	if c.admin() {
		if body.ClientID == 0 {
			utils.JSONError(w, http.StatusBadRequest, "client_id is required")
			return
		}
		client, err := h.store.UserByID(r.Context(), body.ClientID)
		if errors.Is(err, store.ErrNotFound) || (err == nil && client.Role != models.RoleClient) {
			utils.JSONError(w, http.StatusBadRequest, "client_id must reference a client")
			return
		}
		if err != nil {
			h.dbError(w, r, "load client", err, "")
			return
		}
		clientID = client.ID
	}

	p := models.Project{
		Title:    body.Title,
		ClientID: clientID,
		Status:   models.StatusOpen,
		Budget:   body.Budget,
		Deadline: deadline,
	}
	if err := h.store.CreateProject(r.Context(), &p); err != nil {
		h.dbError(w, r, "create project", err, "")
		return
	}

	utils.JSON(w, http.StatusCreated, p)
}

// ---------------------- GET ONE ----------------------

func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := utils.QueryID(r, "id")
	if !ok {
		utils.JSONError(w, http.StatusBadRequest, "id is required")
		return
	}

	p, ok := h.listedProject(w, r, id)
	if !ok {
		return
	}
	utils.JSON(w, http.StatusOK, p)
}

// ---------------------- LIST ----------------------

func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	status := models.ProjectStatus(r.URL.Query().Get("status"))
	if status != "" && !status.Valid() {
		utils.JSONError(w, http.StatusBadRequest, "invalid status")
		return
	}

	f := store.ProjectFilter{Status: status}
	c := callerFrom(r)
	switch c.Role {
	case models.RoleClient:
		f.ClientID = c.ID
	case models.RoleFreelancer:
		f.FreelancerID = c.ID
		f.IncludeOpen = true
	}

	projects, err := h.store.ListProjects(r.Context(), f)
	if err != nil {
		h.dbError(w, r, "list projects", err, "")
		return
	}
	utils.JSON(w, http.StatusOK, projects)
}

// ---------------------- UPDATE ----------------------

func (h *ProjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ID       int64    `json:"id"`
		Title    *string  `json:"title"`
		Budget   *float64 `json:"budget"`
		Deadline *string  `json:"deadline"`
		Status   *string  `json:"status"`
	}
	if err := utils.DecodeJSON(w, r, &body); err != nil {
		return
	}
	if body.ID <= 0 {
		utils.JSONError(w, http.StatusBadRequest, "id is required")
		return
	}

	p, ok := h.ownedProject(w, r, body.ID)
	if !ok {
		return
	}

	if body.Title != nil {
		title := strings.TrimSpace(*body.Title)
		if title == "" {
			utils.JSONError(w, http.StatusBadRequest, "title cannot be empty")
			return
		}
		p.Title = title
	}
	if body.Budget != nil {
		if *body.Budget < 0 {
			utils.JSONError(w, http.StatusBadRequest, "budget cannot be negative")
			return
		}
		p.Budget = *body.Budget
	}
	if body.Deadline != nil {
		d, err := optionalDate(body.Deadline)
		if err != nil {
			utils.JSONError(w, http.StatusBadRequest, err.Error())
			return
		}
		p.Deadline = d
	}
	if body.Status != nil {
		s := models.ProjectStatus(*body.Status)
		if !s.Valid() {
			utils.JSONError(w, http.StatusBadRequest, "invalid status")
			return
		}
		p.Status = s
	}

	if err := h.store.UpdateProject(r.Context(), p); err != nil {
		h.dbError(w, r, "update project", err, "Project not found")
		return
	}
	utils.JSON(w, http.StatusOK, p)
}

// ---------------------- APPLY / ASSIGN ----------------------

type projectRef struct {
	ProjectID    int64 `json:"project_id"`
	FreelancerID int64 `json:"freelancer_id"`
}

// Apply lets a freelancer claim an Open project, pending the client's approval.
func (h *ProjectHandler) Apply(w http.ResponseWriter, r *http.Request) {
	var body projectRef
	if err := utils.DecodeJSON(w, r, &body); err != nil {
		return
	}
	if body.ProjectID <= 0 {
		utils.JSONError(w, http.StatusBadRequest, "project_id is required")
		return
	}

	p, err := h.store.ProjectByID(r.Context(), body.ProjectID)
	if err != nil {
		h.dbError(w, r, "load project", err, "Project not found")
		return
	}

	c := callerFrom(r)
	err = h.store.ApplyToProject(r.Context(), p.ID, c.ID)
	if errors.Is(err, store.ErrNotFound) {
		utils.JSONError(w, http.StatusBadRequest, "Project is not open")
		return
	}
	if err != nil {
		h.dbError(w, r, "apply to project", err, "")
		return
	}

	h.notify(r.Context(), p.ClientID, "New application", "A freelancer applied to "+p.Title, models.NotifyProject)
	utils.JSONMessage(w, http.StatusOK, "Application submitted")
}

func (h *ProjectHandler) Assign(w http.ResponseWriter, r *http.Request) {
	var body projectRef
	if err := utils.DecodeJSON(w, r, &body); err != nil {
		return
	}
	if body.ProjectID <= 0 || body.FreelancerID <= 0 {
		utils.JSONError(w, http.StatusBadRequest, "project_id and freelancer_id are required")
		return
	}

	p, ok := h.ownedProject(w, r, body.ProjectID)
	if !ok {
		return
	}

	f, err := h.store.UserByID(r.Context(), body.FreelancerID)
	if errors.Is(err, store.ErrNotFound) || (err == nil && f.Role != models.RoleFreelancer) {
		utils.JSONError(w, http.StatusBadRequest, "freelancer_id must reference a freelancer")
		return
	}
	if err != nil {
		h.dbError(w, r, "load freelancer", err, "")
		return
	}

	if err := h.store.AssignFreelancer(r.Context(), p.ID, f.ID); err != nil {
		h.dbError(w, r, "assign freelancer", err, "Project not found")
		return
	}
	p.FreelancerID = &f.ID
	p.Status = models.StatusInProgress

	h.notify(r.Context(), f.ID, "Project assigned", "You have been assigned to "+p.Title, models.NotifyProject)
	h.publish(r.Context(), events.ProjectAssigned, map[string]any{
		"project_id":    p.ID,
		"client_id":     p.ClientID,
		"freelancer_id": f.ID,
	})
	utils.JSON(w, http.StatusOK, p)
}

// ---------------------- DELETE ----------------------

func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := utils.QueryID(r, "id")
	if !ok {
		utils.JSONError(w, http.StatusBadRequest, "id is required")
		return
	}

	if _, ok := h.ownedProject(w, r, id); !ok {
		return
	}

	if err := h.store.DeleteProject(r.Context(), id); err != nil {
		h.dbError(w, r, "delete project", err, "Project not found")
		return
	}
	utils.JSONMessage(w, http.StatusOK, "Project deleted")
}

// ---------------------- SKILLS ----------------------

func (h *ProjectHandler) AddSkill(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ProjectID int64  `json:"project_id"`
		SkillName string `json:"skill_name"`
	}
	if err := utils.DecodeJSON(w, r, &body); err != nil {
		return
	}
	skill := strings.TrimSpace(body.SkillName)
	if body.ProjectID <= 0 || skill == "" {
		utils.JSONError(w, http.StatusBadRequest, "project_id and skill_name are required")
		return
	}

	if _, ok := h.ownedProject(w, r, body.ProjectID); !ok {
		return
	}

	added, err := h.store.AddProjectSkill(r.Context(), body.ProjectID, skill)
	if err != nil {
		h.dbError(w, r, "add skill", err, "")
		return
	}
	if !added {
		utils.JSONMessage(w, http.StatusOK, "Skill already associated with project")
		return
	}
	utils.JSONMessage(w, http.StatusCreated, "Skill added to project")
}

func (h *ProjectHandler) ListSkills(w http.ResponseWriter, r *http.Request) {
	id, ok := utils.QueryID(r, "project_id")
	if !ok {
		utils.JSONError(w, http.StatusBadRequest, "project_id is required")
		return
	}
	if _, ok := h.listedProject(w, r, id); !ok {
		return
	}

	skills, err := h.store.ListProjectSkills(r.Context(), id)
	if err != nil {
		h.dbError(w, r, "list skills", err, "")
		return
	}
	utils.JSON(w, http.StatusOK, skills)
}

func (h *ProjectHandler) RemoveSkill(w http.ResponseWriter, r *http.Request) {
	id, ok := utils.QueryID(r, "project_id")
	skill := strings.TrimSpace(r.URL.Query().Get("skill_name"))
	if !ok || skill == "" {
		utils.JSONError(w, http.StatusBadRequest, "project_id and skill_name are required")
		return
	}
	if _, ok := h.ownedProject(w, r, id); !ok {
		return
	}

	if err := h.store.RemoveProjectSkill(r.Context(), id, skill); err != nil {
		h.dbError(w, r, "remove skill", err, "Skill not associated with project")
		return
	}
	utils.JSONMessage(w, http.StatusOK, "Skill removed from project")
}
