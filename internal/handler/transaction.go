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

// TransactionStore is the persistence surface the transaction endpoints
// need.
type TransactionStore interface {
	Create(ctx context.Context, t model.Transaction) (*model.Transaction, error)
	FindByID(ctx context.Context, userID, id string) (*model.Transaction, error)
	List(ctx context.Context, userID string, f model.TransactionFilter) ([]model.Transaction, int64, error)
	Update(ctx context.Context, userID, id string, upd model.TransactionUpdate) (*model.Transaction, error)
	Delete(ctx context.Context, userID, id string) error
	Stats(ctx context.Context, userID string, from, to time.Time) (*model.TransactionStats, error)
}

// TransactionHandler bundles dependencies for transaction endpoints.
type TransactionHandler struct {
	Transactions TransactionStore
}

func NewTransactionHandler(store TransactionStore) *TransactionHandler {
	return &TransactionHandler{Transactions: store}
}

// List returns a filtered, paginated page of the user's transactions.
func (h *TransactionHandler) List(c echo.Context) error {
	in := middleware.Input(c)
	f := model.TransactionFilter{
		Type:       in.QStr("type"),
		CategoryID: in.QStr("category"),
		Page:       in.QInt("page"),
		Limit:      in.QInt("limit"),
	}
	if t, ok := in.QTime("from"); ok {
		f.From = t
	}
	if t, ok := in.QTime("to"); ok {
		f.To = t
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, total, err := h.Transactions.List(ctx, middleware.UserID(c), f)
	if err != nil {
		c.Logger().Errorf("transactions: list: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "Server error"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success":      true,
		"transactions": items,
		"total":        total,
		"page":         f.Page,
		"limit":        f.Limit,
	})
}

// Create records a new transaction.
func (h *TransactionHandler) Create(c echo.Context) error {
	in := middleware.Input(c)
	t := model.Transaction{
		UserID:      middleware.UserID(c),
		Type:        in.Str("type"),
		Amount:      in.Num("amount"),
		CategoryID:  in.Str("category"),
		Description: in.Str("description"),
	}
	if d, ok := in.Time("date"); ok {
		t.Date = d
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	created, err := h.Transactions.Create(ctx, t)
	if err != nil {
		c.Logger().Errorf("transactions: create: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "Server error"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"success": true, "transaction": created})
}

// Get returns a single transaction owned by the user.
func (h *TransactionHandler) Get(c echo.Context) error {
	in := middleware.Input(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	t, err := h.Transactions.FindByID(ctx, middleware.UserID(c), in.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"success": false, "message": "Transaction not found"})
		}
		c.Logger().Errorf("transactions: get: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "Server error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "transaction": t})
}

// Update applies a partial update to one transaction.
func (h *TransactionHandler) Update(c echo.Context) error {
	in := middleware.Input(c)

	var upd model.TransactionUpdate
	if in.Has("type") {
		v := in.Str("type")
		upd.Type = &v
	}
	if in.Has("amount") {
		v := in.Num("amount")
		upd.Amount = &v
	}
	if in.Has("category") {
		v := in.Str("category")
		upd.CategoryID = &v
	}
	if in.Has("description") {
		v := in.Str("description")
		upd.Description = &v
	}
	if d, ok := in.Time("date"); ok {
		upd.Date = &d
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	t, err := h.Transactions.Update(ctx, middleware.UserID(c), in.Param("id"), upd)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"success": false, "message": "Transaction not found"})
		}
		c.Logger().Errorf("transactions: update: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "Server error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "transaction": t})
}

// Delete removes one transaction.
func (h *TransactionHandler) Delete(c echo.Context) error {
	in := middleware.Input(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Transactions.Delete(ctx, middleware.UserID(c), in.Param("id")); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"success": false, "message": "Transaction not found"})
		}
		c.Logger().Errorf("transactions: delete: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "Server error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Transaction deleted"})
}

// Stats returns the aggregated income/expense summary. Registered ahead of
// the /:id routes so "stats" is never parsed as an id.
func (h *TransactionHandler) Stats(c echo.Context) error {
	in := middleware.Input(c)
	var from, to time.Time
	if t, ok := in.QTime("from"); ok {
		from = t
	}
	if t, ok := in.QTime("to"); ok {
		to = t
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	stats, err := h.Transactions.Stats(ctx, middleware.UserID(c), from, to)
	if err != nil {
		c.Logger().Errorf("transactions: stats: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "Server error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "stats": stats})
}
