package handlers

import (
	"errors"
	"net/http"
	"strings"

	"eventbook/internal/services"
	"eventbook/internal/status"
	"eventbook/internal/store"
	"eventbook/models"

	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
)

const authUserKey = "authUser"

// AuthMiddleware resolves the request's user from a bearer token or, for the
// interactive booking flow, the session cookie. Handlers downstream read the
// user with authUser(e); nothing is stored globally.
type AuthMiddleware struct {
	auth       *services.AuthService
	store      store.Store
	cookieName string
}

func NewAuthMiddleware(auth *services.AuthService, st store.Store, cookieName string) *AuthMiddleware {
	return &AuthMiddleware{auth: auth, store: st, cookieName: cookieName}
}

func (m *AuthMiddleware) token(e *core.RequestEvent) string {
	header := e.Request.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	if cookie, err := e.Request.Cookie(m.cookieName); err == nil {
		return cookie.Value
	}
	return ""
}

// Resolve loads the user when a credential is present but does not require
// one. Public routes use it so they can personalize responses.
func (m *AuthMiddleware) Resolve(e *core.RequestEvent) *models.User {
	if cached, ok := e.Get(authUserKey).(*models.User); ok {
		return cached
	}

	token := m.token(e)
	if token == "" {
		return nil
	}
	userID, err := m.auth.ParseAccessToken(token)
	if err != nil {
		return nil
	}
	user, err := m.store.UserByID(userID)
	if err != nil {
		return nil
	}
	e.Set(authUserKey, user)
	return user
}

// Require wraps a handler so it only runs with an authenticated user.
func (m *AuthMiddleware) Require(next func(*core.RequestEvent) error) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		if m.Resolve(e) == nil {
			return apis.NewUnauthorizedError("Authentication required", nil)
		}
		return next(e)
	}
}

// RequireAdmin additionally checks the user's role.
func (m *AuthMiddleware) RequireAdmin(next func(*core.RequestEvent) error) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		user := m.Resolve(e)
		if user == nil {
			return apis.NewUnauthorizedError("Authentication required", nil)
		}
		if !user.IsAdmin() {
			return apis.NewForbiddenError("Admin access required", nil)
		}
		return next(e)
	}
}

func authUser(e *core.RequestEvent) *models.User {
	user, _ := e.Get(authUserKey).(*models.User)
	return user
}

// apiError translates service errors into HTTP responses. Sentinel causes
// map onto the obvious status codes; anything else is a 500 without leaking
// the underlying error text.
func apiError(err error) error {
	switch {
	case errors.Is(err, status.ErrNotFound):
		return apis.NewNotFoundError("Not found", err)
	case errors.Is(err, status.ErrValidation):
		return apis.NewBadRequestError(err.Error(), err)
	case errors.Is(err, status.ErrInvalidLogin):
		return apis.NewUnauthorizedError("Invalid email or password", err)
	case errors.Is(err, status.ErrForbidden):
		return apis.NewForbiddenError("Forbidden", err)
	case errors.Is(err, status.ErrCapacityExceeded):
		return apis.NewApiError(http.StatusConflict, "Not enough capacity left", err)
	case errors.Is(err, status.ErrConflict):
		return apis.NewApiError(http.StatusConflict, err.Error(), err)
	default:
		return apis.NewApiError(http.StatusInternalServerError, "Something went wrong", err)
	}
}
