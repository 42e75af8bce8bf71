package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/sakif/hodeway/internal/auth"
	"github.com/sakif/hodeway/internal/handler"
	"github.com/sakif/hodeway/internal/model"
	"github.com/sakif/hodeway/internal/repository/sqlite"
	"github.com/sakif/hodeway/internal/service"
)

// testEnv wires the real services over an in-memory SQLite store.
// Handler tests exercise the HTTP translation; the business rules have
// their own tests in the service package.
type testEnv struct {
	store         *sqlite.DB
	tokens        *auth.TokenService
	auth          *handler.AuthHandler
	itineraries   *handler.ItineraryHandler
	destinations  *handler.DestinationHandler
	expenses      *handler.ExpenseHandler
	transports    *handler.TransportHandler
	collaborators *handler.CollaboratorHandler
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store, err := sqlite.New(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	tokens, err := auth.NewTokenService("handler-test-secret-key", "HS256", 30*time.Minute)
	require.NoError(t, err)
	passwords, err := auth.NewPasswordService(bcrypt.MinCost)
	require.NoError(t, err)

	logger := discardLogger()
	authService := service.NewAuthService(store.Users(), tokens, passwords, logger)
	itineraryService := service.NewItineraryService(store.Itineraries(), logger)
	destinationService := service.NewDestinationService(store.Itineraries(), store.Destinations(), logger)
	expenseService := service.NewExpenseService(store.Itineraries(), store.Expenses(), store.Destinations(), logger)
	transportService := service.NewTransportService(store.Itineraries(), store.Transports(), logger)
	collaboratorService := service.NewCollaboratorService(store.Itineraries(), store.Collaborators(), store.Users(), logger)

	return &testEnv{
		store:         store,
		tokens:        tokens,
		auth:          handler.NewAuthHandler(authService, logger),
		itineraries:   handler.NewItineraryHandler(itineraryService, logger),
		destinations:  handler.NewDestinationHandler(destinationService, logger),
		expenses:      handler.NewExpenseHandler(expenseService, logger),
		transports:    handler.NewTransportHandler(transportService, logger),
		collaborators: handler.NewCollaboratorHandler(collaboratorService, logger),
	}
}

func (e *testEnv) register(t *testing.T, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/auth/register", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	e.auth.HandleRegister(rr, req)
	return rr
}

func (e *testEnv) login(t *testing.T, username, password string) *httptest.ResponseRecorder {
	t.Helper()
	form := url.Values{"username": {username}, "password": {password}}
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	e.auth.HandleLogin(rr, req)
	return rr
}

func decodeToken(t *testing.T, rr *httptest.ResponseRecorder) handler.TokenResponse {
	t.Helper()
	var res handler.TokenResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&res))
	return res
}

// =========================================================================
// REGISTER
// =========================================================================

func TestAuthHandler_Register(t *testing.T) {
	t.Run("returns a bearer token for the email", func(t *testing.T) {
		env := newTestEnv(t)

		rr := env.register(t, `{"email":"alice@example.com","full_name":"Alice","password":"hunter22"}`)

		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		res := decodeToken(t, rr)
		assert.Equal(t, "bearer", res.TokenType)

		subject, err := env.tokens.Decode(res.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, "alice@example.com", subject)
	})

	t.Run("duplicate email is a conflict", func(t *testing.T) {
		env := newTestEnv(t)
		require.Equal(t, http.StatusOK, env.register(t, `{"email":"alice@example.com","password":"hunter22"}`).Code)

		rr := env.register(t, `{"email":"alice@example.com","password":"other-pass"}`)

		assert.Equal(t, http.StatusConflict, rr.Code)
		assert.JSONEq(t, `{"error":"conflict","message":"email is already registered","field":"email"}`, rr.Body.String())
	})

	t.Run("invalid JSON", func(t *testing.T) {
		env := newTestEnv(t)
		rr := env.register(t, `{"email":`)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("unknown field", func(t *testing.T) {
		env := newTestEnv(t)
		rr := env.register(t, `{"email":"alice@example.com","password":"hunter22","is_admin":true}`)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("invalid email", func(t *testing.T) {
		env := newTestEnv(t)
		rr := env.register(t, `{"email":"not-an-email","password":"hunter22"}`)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), `"field":"email"`)
	})
}

// =========================================================================
// LOGIN
// =========================================================================

func TestAuthHandler_Login(t *testing.T) {
	env := newTestEnv(t)
	require.Equal(t, http.StatusOK, env.register(t, `{"email":"alice@example.com","password":"hunter22"}`).Code)

	t.Run("correct credentials", func(t *testing.T) {
		rr := env.login(t, "alice@example.com", "hunter22")

		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		res := decodeToken(t, rr)
		assert.Equal(t, "bearer", res.TokenType)

		subject, err := env.tokens.Decode(res.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, "alice@example.com", subject)
	})

	t.Run("wrong password and unknown email look the same", func(t *testing.T) {
		wrong := env.login(t, "alice@example.com", "wrongpass")
		unknown := env.login(t, "nobody@example.com", "hunter22")

		assert.Equal(t, http.StatusUnauthorized, wrong.Code)
		assert.Equal(t, http.StatusUnauthorized, unknown.Code)
		assert.Equal(t, wrong.Body.String(), unknown.Body.String())
		assert.JSONEq(t, `{"error":"invalid_credentials","message":"incorrect email or password"}`, wrong.Body.String())
	})

	t.Run("missing fields", func(t *testing.T) {
		assert.Equal(t, http.StatusBadRequest, env.login(t, "", "hunter22").Code)
		assert.Equal(t, http.StatusBadRequest, env.login(t, "alice@example.com", "").Code)
	})

	t.Run("JSON body is not a form", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/auth/login",
			bytes.NewBufferString(`{"username":"alice@example.com","password":"hunter22"}`))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()

		env.auth.HandleLogin(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

// =========================================================================
// ME
// =========================================================================

func TestAuthHandler_Me(t *testing.T) {
	env := newTestEnv(t)

	t.Run("returns the resolved user without the hash", func(t *testing.T) {
		user := &model.User{ID: "u-1", Email: "alice@example.com", FullName: "Alice", PasswordHash: "$2a$04$secret"}
		req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
		req = req.WithContext(auth.WithUser(req.Context(), user))
		rr := httptest.NewRecorder()

		env.auth.HandleMe(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		assert.NotContains(t, rr.Body.String(), "secret")

		var got map[string]any
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&got))
		assert.Equal(t, "u-1", got["id"])
		assert.Equal(t, "alice@example.com", got["email"])
		assert.Equal(t, "Alice", got["full_name"])
	})

	t.Run("no user in context", func(t *testing.T) {
		rr := httptest.NewRecorder()
		env.auth.HandleMe(rr, httptest.NewRequest(http.MethodGet, "/auth/me", nil))

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Equal(t, "Bearer", rr.Header().Get("WWW-Authenticate"))
	})
}
