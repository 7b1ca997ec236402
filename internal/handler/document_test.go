package handler_test

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soniahiltner/finance-tracker-sub001/internal/handler"
	"github.com/soniahiltner/finance-tracker-sub001/internal/middleware"
	"github.com/soniahiltner/finance-tracker-sub001/internal/validate"
)

type extractorFunc func(ctx context.Context, data []byte, mimeType string) (string, error)

func (f extractorFunc) Extract(ctx context.Context, data []byte, mimeType string) (string, error) {
	return f(ctx, data, mimeType)
}

func importApp(h *handler.DocumentHandler) *echo.Echo {
	e := echo.New()
	e.POST("/import", h.Import, middleware.Validate(&validate.DocumentImport))
	return e
}

func postImport(e *echo.Echo, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/import", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestDocumentImport_ReturnsDrafts(t *testing.T) {
	var gotMime string
	extractor := extractorFunc(func(_ context.Context, data []byte, mimeType string) (string, error) {
		gotMime = mimeType
		return "Card purchase COFFEE 3.50\nSalary 1,000.00", nil
	})
	e := importApp(handler.NewDocumentHandler(extractor))

	payload := base64.StdEncoding.EncodeToString([]byte("raw receipt bytes"))
	rec := postImport(e, `{"filename":"receipt.pdf","mimeType":"application/pdf","data":"`+payload+`"}`)
	require.Equal(t, http.StatusOK, rec.Code, "body: %s", rec.Body.String())
	assert.Equal(t, "application/pdf", gotMime)

	env := envelope(t, rec)
	drafts := env["transactions"].([]any)
	require.Len(t, drafts, 2)
	assert.Equal(t, "expense", drafts[0].(map[string]any)["type"])
	assert.Equal(t, "income", drafts[1].(map[string]any)["type"])
}

func TestDocumentImport_Unconfigured(t *testing.T) {
	e := importApp(handler.NewDocumentHandler(nil))
	payload := base64.StdEncoding.EncodeToString([]byte("x"))
	rec := postImport(e, `{"filename":"a.txt","mimeType":"text/plain","data":"`+payload+`"}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "Document import is not configured", envelope(t, rec)["message"])
}

func TestDocumentImport_BadBase64(t *testing.T) {
	extractor := extractorFunc(func(context.Context, []byte, string) (string, error) {
		t.Fatal("extractor must not be called for invalid payloads")
		return "", nil
	})
	e := importApp(handler.NewDocumentHandler(extractor))
	rec := postImport(e, `{"filename":"a.txt","mimeType":"text/plain","data":"%%%not-base64%%%"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDocumentImport_ExtractorFailure(t *testing.T) {
	extractor := extractorFunc(func(context.Context, []byte, string) (string, error) {
		return "", errors.New("upstream timeout")
	})
	e := importApp(handler.NewDocumentHandler(extractor))
	payload := base64.StdEncoding.EncodeToString([]byte("x"))
	rec := postImport(e, `{"filename":"a.txt","mimeType":"text/plain","data":"`+payload+`"}`)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "Document could not be processed", envelope(t, rec)["message"])
}

func TestDocumentImport_RejectsUnknownMimeType(t *testing.T) {
	e := importApp(handler.NewDocumentHandler(nil))
	payload := base64.StdEncoding.EncodeToString([]byte("x"))
	rec := postImport(e, `{"filename":"a.zip","mimeType":"application/zip","data":"`+payload+`"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Validation failed", envelope(t, rec)["message"])
}
