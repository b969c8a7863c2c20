package handlers

import (
	"net/http"
	"time"

	"eventbook/config"
	"eventbook/internal/services"

	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
)

type AuthHandler struct {
	auth *services.AuthService
	cfg  *config.Config
}

func NewAuthHandler(auth *services.AuthService, cfg *config.Config) *AuthHandler {
	return &AuthHandler{auth: auth, cfg: cfg}
}

func (h *AuthHandler) Register(e *core.RequestEvent) error {
	var req services.RegisterInput
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}
	if req.Role == "" {
		req.Role = "user"
	}

	user, err := h.auth.Register(e.Request.Context(), req)
	if err != nil {
		return apiError(err)
	}

	return e.JSON(http.StatusCreated, map[string]any{
		"message": "Registration successful",
		"user":    user,
	})
}

// Login returns the token pair and also drops the access token into the
// session cookie so browser-based booking works without a bearer header.
func (h *AuthHandler) Login(e *core.RequestEvent) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}

	user, pair, err := h.auth.Login(e.Request.Context(), req.Email, req.Password)
	if err != nil {
		return apiError(err)
	}

	h.setSessionCookie(e, pair.AccessToken, h.cfg.AccessTokenTTL)

	return e.JSON(http.StatusOK, map[string]any{
		"user":          user,
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
	})
}

func (h *AuthHandler) Refresh(e *core.RequestEvent) error {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}

	access, err := h.auth.Refresh(e.Request.Context(), req.RefreshToken)
	if err != nil {
		return apiError(err)
	}

	h.setSessionCookie(e, access, h.cfg.AccessTokenTTL)

	return e.JSON(http.StatusOK, map[string]any{"access_token": access})
}

func (h *AuthHandler) Logout(e *core.RequestEvent) error {
	user := authUser(e)
	if err := h.auth.Logout(e.Request.Context(), user.ID); err != nil {
		return apiError(err)
	}

	h.setSessionCookie(e, "", -time.Hour)

	return e.JSON(http.StatusOK, map[string]any{"message": "Logged out"})
}

func (h *AuthHandler) ForgotPassword(e *core.RequestEvent) error {
	var req struct {
		Email string `json:"email"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}

	if err := h.auth.RequestPasswordReset(e.Request.Context(), req.Email); err != nil {
		return apiError(err)
	}

	// Identical response whether or not the account exists.
	return e.JSON(http.StatusOK, map[string]any{
		"message": "If the email is registered, an OTP has been sent",
	})
}

func (h *AuthHandler) ResetPassword(e *core.RequestEvent) error {
	var req struct {
		Email    string `json:"email"`
		OTP      string `json:"otp"`
		Password string `json:"password"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}

	if err := h.auth.ResetPassword(e.Request.Context(), req.Email, req.OTP, req.Password); err != nil {
		return apiError(err)
	}

	return e.JSON(http.StatusOK, map[string]any{"message": "Password updated"})
}

func (h *AuthHandler) Me(e *core.RequestEvent) error {
	return e.JSON(http.StatusOK, map[string]any{"user": authUser(e)})
}

func (h *AuthHandler) UpdateProfile(e *core.RequestEvent) error {
	var req struct {
		Name string `json:"name"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}

	user, err := h.auth.UpdateProfile(e.Request.Context(), authUser(e).ID, req.Name)
	if err != nil {
		return apiError(err)
	}

	return e.JSON(http.StatusOK, map[string]any{"user": user})
}

func (h *AuthHandler) setSessionCookie(e *core.RequestEvent, value string, ttl time.Duration) {
	http.SetCookie(e.Response, &http.Cookie{
		Name:     h.cfg.SessionCookie,
		Value:    value,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   h.cfg.Environment == "production",
	})
}
