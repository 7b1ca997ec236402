package middleware_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soniahiltner/finance-tracker-sub001/internal/auth"
	"github.com/soniahiltner/finance-tracker-sub001/internal/middleware"
	"github.com/soniahiltner/finance-tracker-sub001/internal/model"
	"github.com/soniahiltner/finance-tracker-sub001/internal/repository"
)

type finderFunc func(ctx context.Context, id string) (*model.User, error)

func (f finderFunc) FindByID(ctx context.Context, id string) (*model.User, error) {
	return f(ctx, id)
}

const testUserID = "64a1f0c2e4b0a1b2c3d4e5f6"

func knownUser(ctx context.Context, id string) (*model.User, error) {
	if id != testUserID {
		return nil, repository.ErrNotFound
	}
	return &model.User{ID: id, Name: "Ana", Email: "ana@example.com", PasswordHash: "hash"}, nil
}

// runGate sends a request through the auth gate into a probe handler that
// records the identity it sees.
func runGate(t *testing.T, codec *auth.Codec, finder finderFunc, header string) (*httptest.ResponseRecorder, *model.User) {
	t.Helper()
	e := echo.New()
	var seen *model.User
	probe := func(c echo.Context) error {
		u := middleware.CurrentUser(c)
		seen = &u
		return c.JSON(http.StatusOK, echo.Map{"success": true, "id": middleware.UserID(c)})
	}
	e.GET("/probe", probe, middleware.Auth(codec, finder))

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec, seen
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m))
	return m
}

func TestAuthGate_ValidToken(t *testing.T) {
	codec := auth.NewCodec("test-secret", time.Hour)
	token, err := codec.Issue(testUserID)
	require.NoError(t, err)

	rec, seen := runGate(t, codec, knownUser, "Bearer "+token)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, seen)
	assert.Equal(t, testUserID, seen.ID)
	assert.Empty(t, seen.PasswordHash, "hash must not enter the request context")
}

func TestAuthGate_MissingToken(t *testing.T) {
	codec := auth.NewCodec("test-secret", time.Hour)

	for _, header := range []string{"", "Basic abc", "bearer lowercase"} {
		rec, _ := runGate(t, codec, knownUser, header)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		env := decodeEnvelope(t, rec)
		assert.Equal(t, false, env["success"])
		assert.Equal(t, "Not authorized, no token provided", env["message"])
	}
}

func TestAuthGate_BadToken(t *testing.T) {
	codec := auth.NewCodec("test-secret", time.Hour)
	other, err := auth.NewCodec("other-secret", time.Hour).Issue(testUserID)
	require.NoError(t, err)

	for _, token := range []string{"garbage", other} {
		rec, _ := runGate(t, codec, knownUser, "Bearer "+token)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Not authorized, token failed", decodeEnvelope(t, rec)["message"])
	}
}

func TestAuthGate_ExpiredToken(t *testing.T) {
	past := time.Now().Add(-48 * time.Hour)
	issuer := auth.NewCodec("test-secret", time.Hour).WithClock(func() time.Time { return past })
	token, err := issuer.Issue(testUserID)
	require.NoError(t, err)

	rec, _ := runGate(t, auth.NewCodec("test-secret", time.Hour), knownUser, "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Not authorized, token failed", decodeEnvelope(t, rec)["message"])
}

func TestAuthGate_UnknownSubject(t *testing.T) {
	codec := auth.NewCodec("test-secret", time.Hour)
	token, err := codec.Issue("ffffffffffffffffffffffff")
	require.NoError(t, err)

	rec, _ := runGate(t, codec, knownUser, "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Not authorized, user not found", decodeEnvelope(t, rec)["message"])
}
