package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/soniahiltner/finance-tracker-sub001/internal/middleware"
	"github.com/soniahiltner/finance-tracker-sub001/internal/model"
	"github.com/soniahiltner/finance-tracker-sub001/internal/repository"
)

// CategoryStore is the persistence surface the category endpoints need.
type CategoryStore interface {
	Create(ctx context.Context, userID, name, typ string) (*model.Category, error)
	List(ctx context.Context, userID string) ([]model.Category, error)
	Update(ctx context.Context, userID, id, name, typ string) (*model.Category, error)
	Delete(ctx context.Context, userID, id string) error
}

// CategoryHandler bundles dependencies for category endpoints.
type CategoryHandler struct {
	Categories CategoryStore
}

func NewCategoryHandler(store CategoryStore) *CategoryHandler {
	return &CategoryHandler{Categories: store}
}

// List returns all of the user's categories.
func (h *CategoryHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	cats, err := h.Categories.List(ctx, middleware.UserID(c))
	if err != nil {
		c.Logger().Errorf("categories: list: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "Server error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "categories": cats})
}

// Create adds a category; duplicates per (name, type) are rejected.
func (h *CategoryHandler) Create(c echo.Context) error {
	in := middleware.Input(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	cat, err := h.Categories.Create(ctx, middleware.UserID(c), in.Str("name"), in.Str("type"))
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateCategory) {
			return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "Category already exists"})
		}
		c.Logger().Errorf("categories: create: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "Server error"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"success": true, "category": cat})
}

// Update renames and/or retypes a category.
func (h *CategoryHandler) Update(c echo.Context) error {
	in := middleware.Input(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	cat, err := h.Categories.Update(ctx, middleware.UserID(c), in.Param("id"), in.Str("name"), in.Str("type"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"success": false, "message": "Category not found"})
		}
		if errors.Is(err, repository.ErrDuplicateCategory) {
			return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "Category already exists"})
		}
		c.Logger().Errorf("categories: update: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "Server error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "category": cat})
}

// Delete removes a category.
func (h *CategoryHandler) Delete(c echo.Context) error {
	in := middleware.Input(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Categories.Delete(ctx, middleware.UserID(c), in.Param("id")); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"success": false, "message": "Category not found"})
		}
		c.Logger().Errorf("categories: delete: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "Server error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Category deleted"})
}
