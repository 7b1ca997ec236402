package handler_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golang.org/x/crypto/bcrypt"

	"github.com/soniahiltner/finance-tracker-sub001/internal/auth"
	"github.com/soniahiltner/finance-tracker-sub001/internal/config"
	"github.com/soniahiltner/finance-tracker-sub001/internal/handler"
	"github.com/soniahiltner/finance-tracker-sub001/internal/model"
	"github.com/soniahiltner/finance-tracker-sub001/internal/queue"
	"github.com/soniahiltner/finance-tracker-sub001/internal/repository"
	"github.com/soniahiltner/finance-tracker-sub001/internal/router"
)

// fakeUsers is an in-memory UserStore for exercising the auth endpoints
// without a database.
type fakeUsers struct {
	mu      sync.Mutex
	byID    map[string]model.User
	byEmail map[string]string // email -> id
	seq     int
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byID: make(map[string]model.User), byEmail: make(map[string]string)}
}

func (s *fakeUsers) Create(_ context.Context, name, email, passwordHash string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byEmail[email]; exists {
		return nil, repository.ErrEmailExists
	}
	s.seq++
	u := model.User{
		ID:           fmt.Sprintf("%024x", s.seq),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}
	s.byID[u.ID] = u
	s.byEmail[u.Email] = u.ID
	return &u, nil
}

func (s *fakeUsers) FindByEmail(_ context.Context, email string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byEmail[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	u := s.byID[id]
	return &u, nil
}

func (s *fakeUsers) FindByID(_ context.Context, id string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (s *fakeUsers) UpdateProfile(_ context.Context, id, name, email string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if email != "" && email != u.Email {
		if _, taken := s.byEmail[email]; taken {
			return nil, repository.ErrEmailExists
		}
		delete(s.byEmail, u.Email)
		u.Email = email
		s.byEmail[email] = id
	}
	if name != "" {
		u.Name = name
	}
	u.UpdatedAt = time.Now().UTC()
	s.byID[id] = u
	return &u, nil
}

func (s *fakeUsers) UpdatePassword(_ context.Context, id, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.PasswordHash = passwordHash
	s.byID[id] = u
	return nil
}

// testApp wires the full route table against in-memory fakes. Rate limiters
// are left nil so their policies never interfere with handler tests.
type testApp struct {
	e     *echo.Echo
	users *fakeUsers
	codec *auth.Codec
	tx    *fakeTxStore
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	cfg := config.Config{BcryptCost: bcrypt.MinCost}
	codec := auth.NewCodec("test-secret", time.Hour)
	users := newFakeUsers()
	tx := newFakeTxStore()
	events := queue.NewPublisher("")

	e := echo.New()
	e.Logger.SetOutput(nopWriter{})
	router.Register(e, router.Deps{
		Cfg:   cfg,
		Auth:  handler.NewAuthHandler(cfg, codec, users, events),
		Tx:    handler.NewTransactionHandler(tx),
		Cats:  handler.NewCategoryHandler(nil),
		Goals: handler.NewSavingsGoalHandler(nil, events),
		Docs:  handler.NewDocumentHandler(nil),
		Users: users,
	})
	return &testApp{e: e, users: users, codec: codec, tx: tx}
}

type nopWriter struct{}

func (nopWriter) Write(p []byte) (int, error) { return len(p), nil }

func (a *testApp) request(method, path, token, body string) *httptest.ResponseRecorder {
	var r *http.Request
	if body != "" {
		r = httptest.NewRequest(method, path, strings.NewReader(body))
		r.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		r = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, r)
	return rec
}

func envelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m), "body: %s", rec.Body.String())
	return m
}

// register creates a user and returns its id and session token.
func (a *testApp) register(t *testing.T, email, password, name string) (id, token string) {
	t.Helper()
	body := fmt.Sprintf(`{"email":%q,"password":%q,"name":%q}`, email, password, name)
	rec := a.request(http.MethodPost, "/api/auth/register", "", body)
	require.Equal(t, http.StatusCreated, rec.Code, "body: %s", rec.Body.String())
	env := envelope(t, rec)
	token = env["token"].(string)
	id = env["user"].(map[string]any)["id"].(string)
	return id, token
}

func TestRegister_ReturnsWorkingToken(t *testing.T) {
	app := newTestApp(t)
	id, token := app.register(t, "ana@example.com", "secret1", "Ana")

	sub, err := app.codec.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, id, sub)

	// The response user projection never includes password material.
	rec := app.request(http.MethodGet, "/api/auth/me", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "password")
	user := envelope(t, rec)["user"].(map[string]any)
	assert.Equal(t, "ana@example.com", user["email"])
	assert.Equal(t, "Ana", user["name"])
}

func TestRegister_DuplicateEmail(t *testing.T) {
	app := newTestApp(t)
	app.register(t, "ana@example.com", "secret1", "Ana")

	rec := app.request(http.MethodPost, "/api/auth/register", "",
		`{"email":"ana@example.com","password":"other12","name":"Other"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "User already exists with this email", envelope(t, rec)["message"])
}

func TestRegister_ValidationFailure(t *testing.T) {
	app := newTestApp(t)
	rec := app.request(http.MethodPost, "/api/auth/register", "",
		`{"email":"bad","password":"123"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	env := envelope(t, rec)
	assert.Equal(t, "Validation failed", env["message"])
	assert.NotEmpty(t, env["errors"])
}

func TestLogin(t *testing.T) {
	app := newTestApp(t)
	id, _ := app.register(t, "ana@example.com", "secret1", "Ana")

	rec := app.request(http.MethodPost, "/api/auth/login", "",
		`{"email":"ana@example.com","password":"secret1"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	env := envelope(t, rec)
	sub, err := app.codec.Verify(env["token"].(string))
	require.NoError(t, err)
	assert.Equal(t, id, sub)

	// Wrong password and unknown email read identically.
	for _, body := range []string{
		`{"email":"ana@example.com","password":"wrong11"}`,
		`{"email":"ghost@example.com","password":"secret1"}`,
	} {
		rec := app.request(http.MethodPost, "/api/auth/login", "", body)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Invalid credentials", envelope(t, rec)["message"])
	}
}

func TestProtectedRoute_TokenStates(t *testing.T) {
	app := newTestApp(t)
	id, _ := app.register(t, "ana@example.com", "secret1", "Ana")

	rec := app.request(http.MethodGet, "/api/auth/me", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Not authorized, no token provided", envelope(t, rec)["message"])

	expiredIssuer := auth.NewCodec("test-secret", time.Hour).
		WithClock(func() time.Time { return time.Now().Add(-2 * time.Hour) })
	expired, err := expiredIssuer.Issue(id)
	require.NoError(t, err)
	rec = app.request(http.MethodGet, "/api/auth/me", expired, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Not authorized, token failed", envelope(t, rec)["message"])

	orphan, err := app.codec.Issue("ffffffffffffffffffffffff")
	require.NoError(t, err)
	rec = app.request(http.MethodGet, "/api/auth/me", orphan, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Not authorized, user not found", envelope(t, rec)["message"])
}

func TestUpdateProfile(t *testing.T) {
	app := newTestApp(t)
	_, token := app.register(t, "ana@example.com", "secret1", "Ana")
	app.register(t, "taken@example.com", "secret1", "Other")

	rec := app.request(http.MethodPut, "/api/auth/profile", token, `{"name":"Ana Maria"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	user := envelope(t, rec)["user"].(map[string]any)
	assert.Equal(t, "Ana Maria", user["name"])
	assert.Equal(t, "ana@example.com", user["email"])

	rec = app.request(http.MethodPut, "/api/auth/profile", token, `{"email":"taken@example.com"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Email already in use", envelope(t, rec)["message"])

	rec = app.request(http.MethodPut, "/api/auth/profile", token, `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdatePassword(t *testing.T) {
	app := newTestApp(t)
	_, token := app.register(t, "ana@example.com", "secret1", "Ana")

	rec := app.request(http.MethodPut, "/api/auth/password", token,
		`{"currentPassword":"wrong11","newPassword":"fresh12"}`)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Current password is incorrect", envelope(t, rec)["message"])

	rec = app.request(http.MethodPut, "/api/auth/password", token,
		`{"currentPassword":"secret1","newPassword":"fresh12"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	// Old password no longer works, the new one does.
	rec = app.request(http.MethodPost, "/api/auth/login", "",
		`{"email":"ana@example.com","password":"secret1"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = app.request(http.MethodPost, "/api/auth/login", "",
		`{"email":"ana@example.com","password":"fresh12"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
}
