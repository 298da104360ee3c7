package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/vaughan-dsouza/freelancehub/internal/metrics"
	"github.com/vaughan-dsouza/freelancehub/internal/models"
	"github.com/vaughan-dsouza/freelancehub/internal/ratelimit"
	"github.com/vaughan-dsouza/freelancehub/internal/store"
	"github.com/vaughan-dsouza/freelancehub/internal/utils"
)

type AuthHandler struct {
	base
	limiter ratelimit.Limiter
	tokens  TokenConfig
}

// ----------- Request/Response DTOs -------------

type signUpReq struct {
	Name     string  `json:"name"`
	Company  string  `json:"company"`
	Email    string  `json:"email"`
	Password string  `json:"password"`
	Role     string  `json:"role"`
	Rate     float64 `json:"rate"`
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}

type tokenResp struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	ExpiresIn    int64        `json:"expires_in"` // seconds until the access token expires
	User         *models.User `json:"user,omitempty"`
}

// -------------- SIGN UP ----------------------

func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req signUpReq
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Name = strings.TrimSpace(req.Name)

	if req.Name == "" || req.Email == "" || req.Password == "" {
		utils.JSONError(w, http.StatusBadRequest, "name, email and password required")
		return
	}
	if len(req.Password) < 6 {
		utils.JSONError(w, http.StatusBadRequest, "password must be at least 6 characters")
		return
	}
	role := models.Role(req.Role)
	if role != models.RoleClient && role != models.RoleFreelancer {
		utils.JSONError(w, http.StatusBadRequest, "role must be client or freelancer")
		return
	}
	if req.Rate < 0 {
		utils.JSONError(w, http.StatusBadRequest, "rate cannot be negative")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.JSONError(w, http.StatusInternalServerError, "internal error")
		return
	}

	u := models.User{
		Name:     req.Name,
		Company:  strings.TrimSpace(req.Company),
		Email:    req.Email,
		Password: string(hash),
		Rate:     req.Rate,
		Role:     role,
	}
	err = h.store.CreateUser(r.Context(), &u)
	if errors.Is(err, store.ErrDuplicate) {
		utils.JSONError(w, http.StatusBadRequest, "Email already registered")
		return
	}
	if err != nil {
		h.dbError(w, r, "create user", err, "")
		return
	}

	utils.JSON(w, http.StatusCreated, map[string]any{
		"message": "user created",
		"id":      u.ID,
	})
}

// -------------- LOGIN ------------------------

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	allowed, err := h.limiter.Allow(r.Context(), req.Email)
	if err != nil {
		// fail open when Redis is down
		h.log.Warn("login limiter unavailable", zap.Error(err))
		allowed = true
	}
	if !allowed {
		metrics.IncrementLoginFailure("throttled")
		utils.JSONError(w, http.StatusTooManyRequests, "Too many login attempts")
		return
	}

	u, err := h.store.UserByEmail(r.Context(), req.Email)
	if errors.Is(err, store.ErrNotFound) {
		metrics.IncrementLoginFailure("credentials")
		utils.JSONError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	if err != nil {
		h.dbError(w, r, "load user", err, "")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(req.Password)); err != nil {
		metrics.IncrementLoginFailure("credentials")
		utils.JSONError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	if err := h.limiter.Reset(r.Context(), req.Email); err != nil {
		h.log.Warn("reset login limiter", zap.Error(err))
	}

	resp, ok := h.issue(w, r, u.ID, u.Role)
	if !ok {
		return
	}
	if err := h.store.SaveRefreshToken(r.Context(), u.ID, resp.RefreshToken, time.Now().Add(h.tokens.RefreshTTL)); err != nil {
		h.dbError(w, r, "save refresh token", err, "")
		return
	}

	resp.User = u
	utils.JSON(w, http.StatusOK, resp)
}

// issue signs a fresh access/refresh pair.
func (h *AuthHandler) issue(w http.ResponseWriter, r *http.Request, userID int64, role models.Role) (*tokenResp, bool) {
	access, _, err := utils.GenerateToken(userID, string(role), h.tokens.AccessSecret, h.tokens.AccessTTL)
	if err != nil {
		h.log.Error("sign access token", zap.Error(err))
		utils.JSONError(w, http.StatusInternalServerError, "token error")
		return nil, false
	}

	refresh, _, err := utils.GenerateToken(userID, string(role), h.tokens.RefreshSecret, h.tokens.RefreshTTL)
	if err != nil {
		h.log.Error("sign refresh token", zap.Error(err))
		utils.JSONError(w, http.StatusInternalServerError, "token error")
		return nil, false
	}

	return &tokenResp{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(h.tokens.AccessTTL.Seconds()),
	}, true
}

// ---------------- REFRESH ---------------------

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshReq
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		return
	}

	claims, err := utils.VerifyToken(req.RefreshToken, h.tokens.RefreshSecret)
	if err != nil {
		utils.JSONError(w, http.StatusUnauthorized, "invalid token")
		return
	}

	valid, err := h.store.RefreshTokenValid(r.Context(), claims.ID, req.RefreshToken)
	if err != nil {
		h.dbError(w, r, "check refresh token", err, "")
		return
	}
	if !valid {
		utils.JSONError(w, http.StatusUnauthorized, "refresh token expired or invalid")
		return
	}

	// the role may have changed since the refresh token was issued
	u, err := h.store.UserByID(r.Context(), claims.ID)
	if errors.Is(err, store.ErrNotFound) {
		utils.JSONError(w, http.StatusUnauthorized, "refresh token expired or invalid")
		return
	}
	if err != nil {
		h.dbError(w, r, "load user", err, "")
		return
	}

	resp, ok := h.issue(w, r, u.ID, u.Role)
	if !ok {
		return
	}

	err = h.store.RotateRefreshToken(r.Context(), u.ID, req.RefreshToken, resp.RefreshToken, time.Now().Add(h.tokens.RefreshTTL))
	if errors.Is(err, store.ErrNotFound) {
		// already rotated by a concurrent refresh
		utils.JSONError(w, http.StatusUnauthorized, "refresh token expired or invalid")
		return
	}
	if err != nil {
		h.dbError(w, r, "rotate refresh token", err, "")
		return
	}

	utils.JSON(w, http.StatusOK, resp)
}

// -------------- LOGOUT -----------------------

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var req refreshReq
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		return
	}

	if err := h.store.DeleteRefreshToken(r.Context(), callerFrom(r).ID, req.RefreshToken); err != nil {
		h.dbError(w, r, "delete refresh token", err, "")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
