// Package handler implements the HTTP endpoints. Handlers run after the
// pipeline stages (rate limit, auth gate, validation) and only contain
// business logic; malformed or unauthorized requests never reach them.
package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/soniahiltner/finance-tracker-sub001/internal/auth"
	"github.com/soniahiltner/finance-tracker-sub001/internal/config"
	"github.com/soniahiltner/finance-tracker-sub001/internal/middleware"
	"github.com/soniahiltner/finance-tracker-sub001/internal/model"
	"github.com/soniahiltner/finance-tracker-sub001/internal/queue"
	"github.com/soniahiltner/finance-tracker-sub001/internal/repository"
)

// UserStore is the persistence surface the auth endpoints need.
type UserStore interface {
	Create(ctx context.Context, name, email, passwordHash string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByID(ctx context.Context, id string) (*model.User, error)
	UpdateProfile(ctx context.Context, id, name, email string) (*model.User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
}

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Cfg    config.Config
	Codec  *auth.Codec
	Users  UserStore
	Events *queue.Publisher
}

func NewAuthHandler(cfg config.Config, codec *auth.Codec, users UserStore, events *queue.Publisher) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Codec: codec, Users: users, Events: events}
}

// Register creates a user and returns a session token immediately.
// Password hashing is an explicit step here, before the stored record is
// ever constructed.
func (h *AuthHandler) Register(c echo.Context) error {
	in := middleware.Input(c)
	email, password, name := in.Str("email"), in.Str("password"), in.Str("name")

	hash, err := auth.HashPassword(password, h.Cfg.BcryptCost)
	if err != nil {
		c.Logger().Errorf("register: hash password: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "Server error"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.Create(ctx, name, email, hash)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return c.JSON(http.StatusBadRequest, echo.Map{
				"success": false,
				"message": "User already exists with this email",
			})
		}
		c.Logger().Errorf("register: create user: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "Server error"})
	}

	token, err := h.Codec.Issue(u.ID)
	if err != nil {
		c.Logger().Errorf("register: issue token: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "Server error"})
	}

	h.publishRegistered(u)

	return c.JSON(http.StatusCreated, echo.Map{
		"success": true,
		"user":    u.Public(),
		"token":   token,
	})
}

// Login verifies credentials and returns a fresh session token. Failures
// are deliberately indistinguishable between unknown email and wrong
// password. Failed attempts count against the auth rate-limit budget;
// successful ones do not.
func (h *AuthHandler) Login(c echo.Context) error {
	in := middleware.Input(c)
	email, password := in.Str("email"), in.Str("password")

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "message": "Invalid credentials"})
		}
		c.Logger().Errorf("login: find user: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "Server error"})
	}
	if !auth.VerifyPassword(u.PasswordHash, password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "message": "Invalid credentials"})
	}

	token, err := h.Codec.Issue(u.ID)
	if err != nil {
		c.Logger().Errorf("login: issue token: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "Server error"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"user":    u.Public(),
		"token":   token,
	})
}

// Me returns the authenticated user's profile.
func (h *AuthHandler) Me(c echo.Context) error {
	u := middleware.CurrentUser(c)
	return c.JSON(http.StatusOK, echo.Map{"success": true, "user": u.Public()})
}

// UpdateProfile changes name and/or email.
func (h *AuthHandler) UpdateProfile(c echo.Context) error {
	in := middleware.Input(c)
	name, email := in.Str("name"), in.Str("email")
	if name == "" && email == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "Nothing to update"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.UpdateProfile(ctx, middleware.UserID(c), name, email)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "Email already in use"})
		}
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"success": false, "message": "User not found"})
		}
		c.Logger().Errorf("profile: update: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "Server error"})
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "user": u.Public()})
}

// UpdatePassword verifies the current password before storing a new hash.
func (h *AuthHandler) UpdatePassword(c echo.Context) error {
	in := middleware.Input(c)
	current, next := in.Str("currentPassword"), in.Str("newPassword")

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	// The context identity has the hash stripped; load the stored record.
	u, err := h.Users.FindByID(ctx, middleware.UserID(c))
	if err != nil {
		c.Logger().Errorf("password: find user: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "Server error"})
	}
	if !auth.VerifyPassword(u.PasswordHash, current) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "message": "Current password is incorrect"})
	}

	hash, err := auth.HashPassword(next, h.Cfg.BcryptCost)
	if err != nil {
		c.Logger().Errorf("password: hash: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "Server error"})
	}
	if err := h.Users.UpdatePassword(ctx, u.ID, hash); err != nil {
		c.Logger().Errorf("password: update: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "Server error"})
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Password updated"})
}

// publishRegistered emits the user.registered event for the email
// consumer. Runs detached: a broker outage never fails registration.
func (h *AuthHandler) publishRegistered(u *model.User) {
	if !h.Events.Enabled() {
		return
	}
	event := queue.UserRegisteredEvent{
		UserID:       u.ID,
		Email:        u.Email,
		Name:         u.Name,
		RegisteredAt: time.Now().UTC().Format(time.RFC3339),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = h.Events.Publish(ctx, queue.UserRegisteredQueue, event)
	}()
}
