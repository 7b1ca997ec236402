package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/soniahiltner/finance-tracker-sub001/internal/middleware"
	"github.com/soniahiltner/finance-tracker-sub001/internal/model"
	"github.com/soniahiltner/finance-tracker-sub001/internal/queue"
	"github.com/soniahiltner/finance-tracker-sub001/internal/repository"
)

// SavingsGoalStore is the persistence surface the savings goal endpoints
// need.
type SavingsGoalStore interface {
	Create(ctx context.Context, g model.SavingsGoal) (*model.SavingsGoal, error)
	List(ctx context.Context, userID string) ([]model.SavingsGoal, error)
	FindByID(ctx context.Context, userID, id string) (*model.SavingsGoal, error)
	Update(ctx context.Context, userID, id string, upd model.SavingsGoalUpdate) (*model.SavingsGoal, error)
	AddProgress(ctx context.Context, userID, id string, amount float64) (*model.SavingsGoal, error)
	Delete(ctx context.Context, userID, id string) error
}

// SavingsGoalHandler bundles dependencies for savings goal endpoints.
type SavingsGoalHandler struct {
	Goals  SavingsGoalStore
	Events *queue.Publisher
}

func NewSavingsGoalHandler(store SavingsGoalStore, events *queue.Publisher) *SavingsGoalHandler {
	return &SavingsGoalHandler{Goals: store, Events: events}
}

// List returns all of the user's goals.
func (h *SavingsGoalHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	goals, err := h.Goals.List(ctx, middleware.UserID(c))
	if err != nil {
		c.Logger().Errorf("goals: list: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "Server error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "goals": goals})
}

// Create adds a goal with zero progress.
func (h *SavingsGoalHandler) Create(c echo.Context) error {
	in := middleware.Input(c)
	g := model.SavingsGoal{
		UserID:       middleware.UserID(c),
		Name:         in.Str("name"),
		TargetAmount: in.Num("targetAmount"),
	}
	if d, ok := in.Time("deadline"); ok {
		g.Deadline = &d
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	created, err := h.Goals.Create(ctx, g)
	if err != nil {
		c.Logger().Errorf("goals: create: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "Server error"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"success": true, "goal": created})
}

// Get returns one goal.
func (h *SavingsGoalHandler) Get(c echo.Context) error {
	in := middleware.Input(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	g, err := h.Goals.FindByID(ctx, middleware.UserID(c), in.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"success": false, "message": "Savings goal not found"})
		}
		c.Logger().Errorf("goals: get: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "Server error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "goal": g})
}

// Update applies a partial update.
func (h *SavingsGoalHandler) Update(c echo.Context) error {
	in := middleware.Input(c)

	var upd model.SavingsGoalUpdate
	if in.Has("name") {
		v := in.Str("name")
		upd.Name = &v
	}
	if in.Has("targetAmount") {
		v := in.Num("targetAmount")
		upd.TargetAmount = &v
	}
	if d, ok := in.Time("deadline"); ok {
		upd.Deadline = &d
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	g, err := h.Goals.Update(ctx, middleware.UserID(c), in.Param("id"), upd)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"success": false, "message": "Savings goal not found"})
		}
		c.Logger().Errorf("goals: update: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "Server error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "goal": g})
}

// Progress adds to the goal's current amount. Reaching the target for the
// first time publishes the goal.reached event.
func (h *SavingsGoalHandler) Progress(c echo.Context) error {
	in := middleware.Input(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	before, err := h.Goals.FindByID(ctx, middleware.UserID(c), in.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"success": false, "message": "Savings goal not found"})
		}
		c.Logger().Errorf("goals: progress lookup: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "Server error"})
	}

	g, err := h.Goals.AddProgress(ctx, middleware.UserID(c), in.Param("id"), in.Num("amount"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"success": false, "message": "Savings goal not found"})
		}
		c.Logger().Errorf("goals: progress: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "Server error"})
	}

	if !before.Reached() && g.Reached() {
		h.publishReached(g)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "goal": g})
}

// Delete removes one goal.
func (h *SavingsGoalHandler) Delete(c echo.Context) error {
	in := middleware.Input(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Goals.Delete(ctx, middleware.UserID(c), in.Param("id")); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"success": false, "message": "Savings goal not found"})
		}
		c.Logger().Errorf("goals: delete: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "Server error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Savings goal deleted"})
}

func (h *SavingsGoalHandler) publishReached(g *model.SavingsGoal) {
	if !h.Events.Enabled() {
		return
	}
	event := queue.GoalReachedEvent{
		UserID:       g.UserID,
		GoalID:       g.ID,
		GoalName:     g.Name,
		TargetAmount: g.TargetAmount,
		ReachedAt:    time.Now().UTC().Format(time.RFC3339),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = h.Events.Publish(ctx, queue.GoalReachedQueue, event)
	}()
}
