package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/staplewise/marketplace-backend/internal/handler"
	"github.com/staplewise/marketplace-backend/internal/model"
	"github.com/staplewise/marketplace-backend/internal/reqctx"
)

// Authenticator resolves a session token to an active user.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*model.User, error)
}

type AuthMiddleware struct {
	auth Authenticator
}

func NewAuthMiddleware(auth Authenticator) *AuthMiddleware {
	return &AuthMiddleware{auth: auth}
}

func bearerToken(r *http.Request) (string, bool) {
	authz := r.Header.Get("Authorization")
	if !strings.HasPrefix(authz, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer "))
	return token, token != ""
}

func (m *AuthMiddleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token, ok := bearerToken(c.Request())
		if !ok {
			return c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("unauthorized", "authentication required"))
		}
		u, err := m.auth.Authenticate(c.Request().Context(), token)
		if err != nil {
			return c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("invalid_token", "invalid or expired token"))
		}
		setActor(c, u)
		return next(c)
	}
}

// OptionalAuth attaches the caller when a valid token is sent and
// otherwise lets the request through anonymously.
func (m *AuthMiddleware) OptionalAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if token, ok := bearerToken(c.Request()); ok {
			if u, err := m.auth.Authenticate(c.Request().Context(), token); err == nil {
				setActor(c, u)
			}
		}
		return next(c)
	}
}

func setActor(c echo.Context, u *model.User) {
	c.Set(handler.ContextUserID, u.ID)
	c.Set(handler.ContextRole, u.Role)
	req := c.Request()
	c.SetRequest(req.WithContext(reqctx.WithActor(req.Context(), u.ID, string(u.Role))))
}

// RequirePermission must run after RequireAuth. The caller's role has to
// hold at least one of perms.
func RequirePermission(perms ...model.Permission) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get(handler.ContextRole).(model.Role)
			if !model.CanAny(role, perms...) {
				return c.JSON(http.StatusForbidden, handler.NewErrorResponse("forbidden", "access denied"))
			}
			return next(c)
		}
	}
}
