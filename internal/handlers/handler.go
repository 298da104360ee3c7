package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/vaughan-dsouza/freelancehub/internal/events"
	"github.com/vaughan-dsouza/freelancehub/internal/models"
	"github.com/vaughan-dsouza/freelancehub/internal/ratelimit"
	"github.com/vaughan-dsouza/freelancehub/internal/store"
	"github.com/vaughan-dsouza/freelancehub/internal/utils"
)

// TokenConfig holds the signing secrets and lifetimes for issued tokens.
type TokenConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

type Deps struct {
	Store   *store.Store
	Log     *zap.Logger
	Events  events.Publisher
	Limiter ratelimit.Limiter
	Tokens  TokenConfig
}

type Handler struct {
	Auth          *AuthHandler
	Users         *UserHandler
	Projects      *ProjectHandler
	Tasks         *TaskHandler
	TimeLogs      *TimeLogHandler
	Billing       *BillingHandler
	Messages      *MessageHandler
	Notifications *NotificationHandler
	Reports       *ReportHandler
}

func NewHandler(d Deps) *Handler {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	if d.Events == nil {
		d.Events = events.Nop{}
	}
	if d.Limiter == nil {
		d.Limiter = ratelimit.Nop{}
	}

	b := base{store: d.Store, log: d.Log, events: d.Events}
	return &Handler{
		Auth:          &AuthHandler{base: b, limiter: d.Limiter, tokens: d.Tokens},
		Users:         &UserHandler{base: b},
		Projects:      &ProjectHandler{base: b},
		Tasks:         &TaskHandler{base: b},
		TimeLogs:      &TimeLogHandler{base: b},
		Billing:       &BillingHandler{base: b},
		Messages:      &MessageHandler{base: b},
		Notifications: &NotificationHandler{base: b},
		Reports:       &ReportHandler{base: b},
	}
}

// base is shared by every resource handler.
type base struct {
	store  *store.Store
	log    *zap.Logger
	events events.Publisher
}

type caller struct {
	ID   int64
	Role models.Role
}

func (c caller) admin() bool { return c.Role == models.RoleAdmin }

func callerFrom(r *http.Request) caller {
	id, role, _ := utils.Identity(r.Context())
	return caller{ID: id, Role: models.Role(role)}
}

// dbError logs err and writes a generic 503. ErrNotFound becomes a 404 with
// notFoundMsg.
func (b *base) dbError(w http.ResponseWriter, r *http.Request, op string, err error, notFoundMsg string) {
	if errors.Is(err, store.ErrNotFound) && notFoundMsg != "" {
		utils.JSONError(w, http.StatusNotFound, notFoundMsg)
		return
	}
	b.log.Error("database operation failed",
		zap.String("op", op),
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)
	utils.JSONError(w, http.StatusServiceUnavailable, "Unable to "+op+".")
}

// project loads a project and checks the caller is an admin or one of its
// participants. It writes the response and returns false when the request
// should stop.
func (b *base) project(w http.ResponseWriter, r *http.Request, id int64) (*models.Project, bool) {
	return b.loadProject(w, r, id, false)
}

// listedProject is project for the public listing data (the project row and
// its skills): any freelancer may also read an Open project so they can apply.
func (b *base) listedProject(w http.ResponseWriter, r *http.Request, id int64) (*models.Project, bool) {
	return b.loadProject(w, r, id, true)
}

func (b *base) loadProject(w http.ResponseWriter, r *http.Request, id int64, allowOpen bool) (*models.Project, bool) {
	p, err := b.store.ProjectByID(r.Context(), id)
	if err != nil {
		b.dbError(w, r, "load project", err, "Project not found")
		return nil, false
	}
	c := callerFrom(r)
	if c.admin() || p.IsParticipant(c.ID) {
		return p, true
	}
	if allowOpen && c.Role == models.RoleFreelancer && p.Status == models.StatusOpen {
		return p, true
	}
	utils.JSONError(w, http.StatusForbidden, "Access forbidden")
	return nil, false
}

// ownedProject is project restricted to the owning client or an admin.
func (b *base) ownedProject(w http.ResponseWriter, r *http.Request, id int64) (*models.Project, bool) {
	p, err := b.store.ProjectByID(r.Context(), id)
	if err != nil {
		b.dbError(w, r, "load project", err, "Project not found")
		return nil, false
	}
	c := callerFrom(r)
	if !c.admin() && p.ClientID != c.ID {
		utils.JSONError(w, http.StatusForbidden, "Access forbidden")
		return nil, false
	}
	return p, true
}

// notify stores a notification. Failures are logged, not returned: the
// triggering write has already succeeded.
func (b *base) notify(ctx context.Context, userID int64, title, message, kind string) {
	n := &models.Notification{UserID: userID, Title: title, Message: message, Type: kind}
	if err := b.store.CreateNotification(ctx, n); err != nil {
		b.log.Error("create notification", zap.Int64("user_id", userID), zap.Error(err))
	}
}

func (b *base) publish(ctx context.Context, key string, payload any) {
	if err := b.events.Publish(ctx, key, payload); err != nil {
		b.log.Warn("publish event", zap.String("routing_key", key), zap.Error(err))
	}
}
