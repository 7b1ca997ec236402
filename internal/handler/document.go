package handler

import (
	"context"
	"encoding/base64"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/soniahiltner/finance-tracker-sub001/internal/ai"
	"github.com/soniahiltner/finance-tracker-sub001/internal/middleware"
)

// DocumentHandler implements the AI-assisted import endpoint: an uploaded
// receipt or bank statement is sent to the external text-extraction service
// and the recovered text is parsed into draft transactions.
type DocumentHandler struct {
	Extractor ai.Extractor
}

func NewDocumentHandler(extractor ai.Extractor) *DocumentHandler {
	return &DocumentHandler{Extractor: extractor}
}

// Import handles POST /api/documents/import. Subject to the AI rate-limit
// policy; nothing is persisted here, the drafts go back to the client for
// review.
func (h *DocumentHandler) Import(c echo.Context) error {
	if h.Extractor == nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{
			"success": false,
			"message": "Document import is not configured",
		})
	}
	in := middleware.Input(c)

	data, err := base64.StdEncoding.DecodeString(in.Str("data"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"success": false,
			"message": "Invalid request body",
			"errors":  []echo.Map{{"field": "data", "message": "data must be base64 encoded"}},
		})
	}

	// Extraction is slow; give it more room than a database call.
	ctx, cancel := context.WithTimeout(c.Request().Context(), 60*time.Second)
	defer cancel()

	text, err := h.Extractor.Extract(ctx, data, in.Str("mimeType"))
	if err != nil {
		c.Logger().Errorf("documents: extract %q: %v", in.Str("filename"), err)
		return c.JSON(http.StatusBadGateway, echo.Map{
			"success": false,
			"message": "Document could not be processed",
		})
	}

	drafts := ai.ParseTransactions(text)
	return c.JSON(http.StatusOK, echo.Map{
		"success":      true,
		"transactions": drafts,
	})
}
