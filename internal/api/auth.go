package api

import (
	"net/http"

	"github.com/erazemk/mechatrack/internal/auth"
	"github.com/erazemk/mechatrack/internal/errs"
	"github.com/erazemk/mechatrack/internal/logger"
	"github.com/erazemk/mechatrack/internal/model"
	"github.com/erazemk/mechatrack/internal/store"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	Service *auth.Service
	Revoked *store.RevokedTokens
	Logger  *logger.Logger
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Signup handles POST /api/auth/signup.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req model.Signup
	if err := decodeJSON(r, &req); err != nil {
		writeError(ctx, h.Logger, w, err)
		return
	}

	user, err := h.Service.Register(ctx, req)
	if err != nil {
		writeError(ctx, h.Logger, w, err)
		return
	}

	h.Logger.Info(h.Logger.WithField(ctx, "new_user_id", user.ID), "auth.signup")
	jsonMessage(w, http.StatusCreated, "User created")
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(ctx, h.Logger, w, err)
		return
	}

	session, err := h.Service.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		if errs.Is(err, errs.CodeUnauthorized) {
			h.Logger.Warn(h.Logger.WithField(ctx, "remote", clientIP(r)), "auth.login.failed")
		}
		writeError(ctx, h.Logger, w, err)
		return
	}

	h.Logger.Info(h.Logger.WithField(ctx, "user_id", session.User.ID), "auth.login")
	jsonResponse(w, http.StatusOK, session)
}

// Logout handles POST /api/auth/logout by revoking the presented token.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	claims := GetClaims(ctx)
	if claims == nil {
		writeError(ctx, h.Logger, w, errs.Unauthorized(auth.MsgTokenMissing))
		return
	}

	if err := h.Revoked.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		writeError(ctx, h.Logger, w, err)
		return
	}

	h.Logger.Info(ctx, "auth.logout")
	jsonMessage(w, http.StatusOK, "Logged out")
}

// Me handles GET /api/auth/me.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	claims := GetClaims(ctx)
	if claims == nil {
		writeError(ctx, h.Logger, w, errs.Unauthorized(auth.MsgTokenMissing))
		return
	}

	user, err := h.Service.CurrentUser(ctx, claims)
	if err != nil {
		writeError(ctx, h.Logger, w, err)
		return
	}
	jsonResponse(w, http.StatusOK, user)
}
