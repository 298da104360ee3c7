package handlers

import (
	"net/http"
	"strings"

	"github.com/vaughan-dsouza/freelancehub/internal/events"
	"github.com/vaughan-dsouza/freelancehub/internal/models"
	"github.com/vaughan-dsouza/freelancehub/internal/utils"
)

type MessageHandler struct {
	base
}

func (h *MessageHandler) Send(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ProjectID   int64  `json:"project_id"`
		MessageText string `json:"message_text"`
	}
	if err := utils.DecodeJSON(w, r, &body); err != nil {
		return
	}
	text := strings.TrimSpace(body.MessageText)
	if body.ProjectID <= 0 || text == "" {
		utils.JSONError(w, http.StatusBadRequest, "project_id and message_text are required")
		return
	}

	p, ok := h.project(w, r, body.ProjectID)
	if !ok {
		return
	}

	c := callerFrom(r)
	m := models.ProjectMessage{ProjectID: p.ID, UserID: c.ID, MessageText: text}
	if err := h.store.CreateMessage(r.Context(), &m); err != nil {
		h.dbError(w, r, "send message", err, "")
		return
	}

	for _, uid := range recipients(p, c.ID) {
		h.notify(r.Context(), uid, "New message", "New message on "+p.Title, models.NotifyMessage)
	}
	h.publish(r.Context(), events.MessageSent, map[string]any{
		"message_id": m.ID,
		"project_id": p.ID,
		"user_id":    c.ID,
	})

	utils.JSON(w, http.StatusCreated, m)
}

// recipients is everyone on the project except the sender.
func recipients(p *models.Project, sender int64) []int64 {
	var out []int64
	if p.ClientID != sender {
		out = append(out, p.ClientID)
	}
	if p.FreelancerID != nil && *p.FreelancerID != sender {
		out = append(out, *p.FreelancerID)
	}
	return out
}

func (h *MessageHandler) List(w http.ResponseWriter, r *http.Request) {
	id, ok := utils.QueryID(r, "project_id")
	if !ok {
		utils.JSONError(w, http.StatusBadRequest, "project_id is required")
		return
	}
	if _, ok := h.project(w, r, id); !ok {
		return
	}

	msgs, err := h.store.ListMessages(r.Context(), id)
	if err != nil {
		h.dbError(w, r, "list messages", err, "")
		return
	}
	utils.JSON(w, http.StatusOK, msgs)
}
