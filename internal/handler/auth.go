package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/hodeway/internal/apperror"
	"github.com/sakif/hodeway/internal/auth"
	"github.com/sakif/hodeway/internal/service"
)

// AuthHandler exposes registration, login and the current-user profile.
//
// HANDLER RESPONSIBILITIES:
//   - HandleRegister → JSON body in, bearer token out
//   - HandleLogin    → OAuth2 password-style form in, bearer token out
//   - HandleMe       → return the user RequireAuth resolved from the token
//
// All business rules (validation, duplicate detection, password checks) live
// in service.AuthService. The handler only translates HTTP to Go calls and
// results back to HTTP.
type AuthHandler struct {
	auth   *service.AuthService
	logger *slog.Logger
}

// NewAuthHandler creates an AuthHandler. All dependencies are injected here;
// the handler has no knowledge of how they're constructed.
func NewAuthHandler(svc *service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		auth:   svc,
		logger: logger,
	}
}

// TokenResponse is the body of a successful register or login.
// token_type is always "bearer": clients send it back as
// "Authorization: Bearer <access_token>".
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type registerRequest struct {
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Password string `json:"password"`
}

// HandleRegister creates an account and logs it in.
//
// HTTP: POST /auth/register
// REQUEST BODY: {"email": "alice@example.com", "full_name": "Alice", "password": "hunter22"}
// RESPONSE:     200 {"access_token": "eyJ...", "token_type": "bearer"}
//
// A taken email is a 409 with field "email". Registration may reveal that an
// email exists; login never does.
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	result, err := h.auth.Register(r.Context(), service.RegisterInput{
		Email:    req.Email,
		FullName: req.FullName,
		Password: req.Password,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, TokenResponse{AccessToken: result.Token, TokenType: "bearer"})
}

// HandleLogin exchanges credentials for a token.
//
// HTTP: POST /auth/login
// REQUEST BODY (application/x-www-form-urlencoded): username=alice@example.com&password=hunter22
//
// WHY A FORM AND NOT JSON?
// This is the OAuth2 "password" grant shape, so standard OAuth2 clients and
// API explorers can log in without custom code. The email goes in "username".
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	if err := r.ParseForm(); err != nil {
		writeError(w, apperror.ValidationFailed("body", "request body must be a valid form"))
		return
	}

	username := r.PostForm.Get("username")
	password := r.PostForm.Get("password")
	if username == "" {
		writeError(w, apperror.ValidationFailed("username", "username is required"))
		return
	}
	if password == "" {
		writeError(w, apperror.ValidationFailed("password", "password is required"))
		return
	}

	result, err := h.auth.Login(r.Context(), username, password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, TokenResponse{AccessToken: result.Token, TokenType: "bearer"})
}

// HandleMe returns the currently authenticated user's profile.
//
// HTTP: GET /auth/me
// Auth: Required (RequireAuth puts the resolved user in the context)
//
// model.User never serialises PasswordHash (json:"-").
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		// Only reachable if the route was mounted without RequireAuth.
		h.logger.Error("HandleMe: no user in context")
		writeError(w, apperror.Unauthorized())
		return
	}

	writeJSON(w, http.StatusOK, user)
}
