package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/vaughan-dsouza/freelancehub/internal/models"
	"github.com/vaughan-dsouza/freelancehub/internal/utils"
)

const (
	defaultNotificationLimit = 50
	maxNotificationLimit     = 200
)

type NotificationHandler struct {
	base
}

func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit := defaultNotificationLimit
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			utils.JSONError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = min(n, maxNotificationLimit)
	}
	unread := q.Get("unread") == "1" || q.Get("unread") == "true"

	notes, err := h.store.ListNotifications(r.Context(), callerFrom(r).ID, unread, limit)
	if err != nil {
		h.dbError(w, r, "list notifications", err, "")
		return
	}
	utils.JSON(w, http.StatusOK, notes)
}

func (h *NotificationHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	n, err := h.store.UnreadNotificationCount(r.Context(), callerFrom(r).ID)
	if err != nil {
		h.dbError(w, r, "count notifications", err, "")
		return
	}
	utils.JSON(w, http.StatusOK, map[string]int64{"count": n})
}

// MarkRead marks one notification when notification_id is given, otherwise
// all of the caller's.
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	var body struct {
		NotificationID *int64 `json:"notification_id"`
	}
	if err := utils.DecodeOptionalJSON(w, r, &body); err != nil {
		return
	}

	c := callerFrom(r)
	if body.NotificationID == nil {
		n, err := h.store.MarkAllNotificationsRead(r.Context(), c.ID)
		if err != nil {
			h.dbError(w, r, "mark notifications read", err, "")
			return
		}
		utils.JSON(w, http.StatusOK, map[string]any{
			"message": "All notifications marked as read",
			"updated": n,
		})
		return
	}

	if *body.NotificationID <= 0 {
		utils.JSONError(w, http.StatusBadRequest, "invalid notification_id")
		return
	}
	if err := h.store.MarkNotificationRead(r.Context(), c.ID, *body.NotificationID); err != nil {
		h.dbError(w, r, "mark notification read", err, "Notification not found")
		return
	}
	utils.JSON(w, http.StatusOK, map[string]any{
		"message": "Notification marked as read",
		"updated": 1,
	})
}

// Create is admin only.
func (h *NotificationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var body struct {
		UserID  int64  `json:"user_id"`
		Title   string `json:"title"`
		Message string `json:"message"`
		Type    string `json:"type"`
	}
	if err := utils.DecodeJSON(w, r, &body); err != nil {
		return
	}
	body.Title = strings.TrimSpace(body.Title)
	if body.UserID <= 0 || body.Title == "" {
		utils.JSONError(w, http.StatusBadRequest, "user_id and title are required")
		return
	}
	if body.Type == "" {
		body.Type = models.NotifySystem
	}

	if _, err := h.store.UserByID(r.Context(), body.UserID); err != nil {
		h.dbError(w, r, "load user", err, "User not found")
		return
	}

	n := models.Notification{UserID: body.UserID, Title: body.Title, Message: body.Message, Type: body.Type}
	if err := h.store.CreateNotification(r.Context(), &n); err != nil {
		h.dbError(w, r, "create notification", err, "")
		return
	}
	utils.JSON(w, http.StatusCreated, n)
}

func (h *NotificationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := utils.QueryID(r, "id")
	if !ok {
		utils.JSONError(w, http.StatusBadRequest, "id is required")
		return
	}
	if err := h.store.DeleteNotification(r.Context(), callerFrom(r).ID, id); err != nil {
		h.dbError(w, r, "delete notification", err, "Notification not found")
		return
	}
	utils.JSONMessage(w, http.StatusOK, "Notification deleted")
}
