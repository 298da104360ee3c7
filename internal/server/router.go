package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/vaughan-dsouza/freelancehub/internal/handlers"
	"github.com/vaughan-dsouza/freelancehub/internal/metrics"
	"github.com/vaughan-dsouza/freelancehub/internal/middleware"
	"github.com/vaughan-dsouza/freelancehub/internal/models"
	"github.com/vaughan-dsouza/freelancehub/internal/utils"
)

// Pinger reports whether the database is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Options struct {
	Handlers     *handlers.Handler
	DB           Pinger
	Log          *zap.Logger
	AccessSecret string
	CORSOrigin   string
	Timeout      time.Duration
}

func NewRouter(o Options) http.Handler {
	if o.Log == nil {
		o.Log = zap.NewNop()
	}
	if o.Timeout <= 0 {
		o.Timeout = 30 * time.Second
	}
	h := o.Handlers

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(o.Log))
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(o.Timeout))
	r.Use(middleware.CORS(o.CORSOrigin))

	r.Handle("/metrics", metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			utils.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})
		r.Get("/ready", func(w http.ResponseWriter, r *http.Request) {
			if o.DB == nil || o.DB.Ping(r.Context()) != nil {
				utils.JSONError(w, http.StatusServiceUnavailable, "Database unavailable")
				return
			}
			utils.JSON(w, http.StatusOK, map[string]string{"status": "ready"})
		})

		// Public
		r.Post("/auth/signup", h.Auth.SignUp)
		r.Post("/auth/login", h.Auth.Login)
		r.Post("/auth/refresh", h.Auth.Refresh)

		// Protected
		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(o.AccessSecret))
			admin := middleware.RequireRole(models.RoleAdmin)

			r.Post("/auth/logout", h.Auth.Logout)

			r.Get("/users/me", h.Users.Me)
			r.Put("/users/update", h.Users.Update)
			r.With(admin).Get("/users/list", h.Users.List)
			r.Get("/users/freelancers", h.Users.Freelancers)

			r.With(middleware.RequireRole(models.RoleClient, models.RoleAdmin)).
				Post("/projects/create", h.Projects.Create)
			r.Get("/projects/list", h.Projects.List)
			r.Get("/projects/get", h.Projects.Get)
			r.Put("/projects/update", h.Projects.Update)
			r.With(middleware.RequireRole(models.RoleFreelancer)).
				Post("/projects/apply", h.Projects.Apply)
			r.Post("/projects/assign", h.Projects.Assign)
			r.Delete("/projects/delete", h.Projects.Delete)

			r.Post("/projects/skills/add", h.Projects.AddSkill)
			r.Get("/projects/skills/list", h.Projects.ListSkills)
			r.Delete("/projects/skills/remove", h.Projects.RemoveSkill)

			r.Post("/tasks/create", h.Tasks.Create)
			r.Get("/tasks/list", h.Tasks.List)
			r.Put("/tasks/update", h.Tasks.Update)
			r.Delete("/tasks/delete", h.Tasks.Delete)

			r.With(middleware.RequireRole(models.RoleFreelancer)).
				Post("/timelogs/create", h.TimeLogs.Create)
			r.Get("/timelogs/list", h.TimeLogs.List)
			r.Put("/timelogs/update_status", h.TimeLogs.UpdateStatus)
			r.Delete("/timelogs/delete", h.TimeLogs.Delete)

			r.Get("/billing/charges", h.Billing.Charges)
			r.Post("/billing/purchase_hours", h.Billing.PurchaseHours)
			r.Get("/billing/purchased_hours", h.Billing.PurchasedHours)
			r.Get("/billing/summary", h.Billing.Summary)

			r.Post("/messages/send", h.Messages.Send)
			r.Get("/messages/list", h.Messages.List)

			r.Get("/notifications/list", h.Notifications.List)
			r.Get("/notifications/unread_count", h.Notifications.UnreadCount)
			r.Post("/notifications/mark_read", h.Notifications.MarkRead)
			r.With(admin).Post("/notifications/create", h.Notifications.Create)
			r.Delete("/notifications/delete", h.Notifications.Delete)

			r.With(admin).Get("/reports/project_status", h.Reports.ProjectStatus)
			r.With(admin).Get("/reports/freelancer_hours", h.Reports.FreelancerHours)
			r.With(admin).Get("/reports/revenue", h.Reports.Revenue)
			r.Get("/reports/client_spend", h.Reports.ClientSpend)
		})
	})

	return r
}
