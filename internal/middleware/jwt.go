package middleware

import (
	"net/http"
	"strings"

	"github.com/vaughan-dsouza/freelancehub/internal/models"
	"github.com/vaughan-dsouza/freelancehub/internal/utils"
)

// AuthMiddleware verifies the bearer token and puts {id, role} into the
// request context.
func AuthMiddleware(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

			auth := r.Header.Get("Authorization")
			if strings.TrimSpace(auth) == "" {
				utils.JSONError(w, http.StatusUnauthorized, "No token provided")
				return
			}

			parts := strings.SplitN(auth, " ", 2)
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				utils.JSONError(w, http.StatusUnauthorized, "Access denied")
				return
			}

			token := strings.TrimSpace(parts[1])
			if token == "" {
				utils.JSONError(w, http.StatusUnauthorized, "No token provided")
				return
			}

			claims, err := utils.VerifyToken(token, secret)
			if err != nil {
				utils.JSONError(w, http.StatusUnauthorized, "Access denied")
				return
			}

			// push caller into context
			ctx := utils.WithIdentity(r.Context(), claims.ID, claims.Role)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole rejects callers whose role is not listed. It must run after
// AuthMiddleware.
func RequireRole(roles ...models.Role) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[string(r)] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, role, ok := utils.Identity(r.Context())
			if !ok {
				utils.JSONError(w, http.StatusUnauthorized, "No token provided")
				return
			}
			if _, ok := allowed[role]; !ok {
				utils.JSONError(w, http.StatusForbidden, "Access forbidden")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
