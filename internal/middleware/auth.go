// Package middleware provides the request pipeline stages every protected
// route passes through: rate limiting, the auth gate and schema validation.
// Stages either call through to the next handler or terminate the request
// with their own error envelope; nothing after a termination executes.
package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/soniahiltner/finance-tracker-sub001/internal/auth"
	"github.com/soniahiltner/finance-tracker-sub001/internal/model"
	"github.com/soniahiltner/finance-tracker-sub001/internal/repository"
)

// Context keys set by the auth gate for downstream handlers.
const (
	ctxUserKey   = "user"
	ctxUserIDKey = "user_id"
)

// UserFinder is the user-store collaborator the auth gate resolves token
// subjects against. The returned user never carries the password hash into
// the request context.
type UserFinder interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
}

// Auth returns the auth gate middleware: it extracts the Bearer token,
// verifies it with the codec, resolves the subject via the user store and
// attaches the identity to the request context. Any failure terminates the
// request with 401; the wording distinguishes missing token, bad token and
// unknown subject but never internal verification detail.
func Auth(codec *auth.Codec, users UserFinder) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{
					"success": false,
					"message": "Not authorized, no token provided",
				})
			}
			raw := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))

			subject, err := codec.Verify(raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{
					"success": false,
					"message": "Not authorized, token failed",
				})
			}

			ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
			defer cancel()

			u, err := users.FindByID(ctx, subject)
			if err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return c.JSON(http.StatusUnauthorized, echo.Map{
						"success": false,
						"message": "Not authorized, user not found",
					})
				}
				c.Logger().Errorf("auth gate: user lookup: %v", err)
				return c.JSON(http.StatusInternalServerError, echo.Map{
					"success": false,
					"message": "Server error",
				})
			}

			// Identity lives only for this request.
			u.PasswordHash = ""
			c.Set(ctxUserKey, *u)
			c.Set(ctxUserIDKey, u.ID)
			return next(c)
		}
	}
}

// CurrentUser returns the identity attached by the auth gate. The zero
// value means the gate did not run.
func CurrentUser(c echo.Context) model.User {
	if u, ok := c.Get(ctxUserKey).(model.User); ok {
		return u
	}
	return model.User{}
}

// UserID returns the authenticated subject id, or "" when unauthenticated.
func UserID(c echo.Context) string {
	if id, ok := c.Get(ctxUserIDKey).(string); ok {
		return id
	}
	return ""
}
