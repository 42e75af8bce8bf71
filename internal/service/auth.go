// Authentication business logic.
//
// AuthService is the session issuer. It sits between the HTTP handlers and
// the repository/auth utilities:
//
//	AuthHandler (HTTP) → AuthService (business rules) → UserRepository (DB)
//	                   ↘ PasswordService (bcrypt), TokenService (JWT)
//
// KEY RESPONSIBILITIES:
//   - Register: validate, reject duplicates, hash, issue a token, persist
//   - Login: check credentials without revealing which part was wrong
//   - Translate store failures into apperror values the HTTP layer understands

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/sakif/hodeway/internal/apperror"
	"github.com/sakif/hodeway/internal/auth"
	"github.com/sakif/hodeway/internal/model"
	"github.com/sakif/hodeway/internal/repository"
)

const (
	MaxEmailLength    = 254
	MaxFullNameLength = 100
	MaxPasswordBytes  = 72
)

// AuthService handles the authentication business logic.
//
// DEPENDENCIES (injected via NewAuthService):
//   - users      repository.UserRepository  → read/write user records
//   - tokens     *auth.TokenService         → issue JWTs
//   - passwords  *auth.PasswordService      → bcrypt hashing
//   - logger     *slog.Logger               → structured logging
//
// None of these are mutated after construction, so one AuthService serves
// every request goroutine.
type AuthService struct {
	users     repository.UserRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	logger    *slog.Logger
}

// NewAuthService creates an AuthService with all required dependencies.
// Call this in server.go when wiring the dependency graph.
func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		logger:    logger,
	}
}

// AuthResult is returned by authentication operations.
// It bundles the user record and the issued JWT together so the caller
// (the HTTP handler) can respond in one step.
type AuthResult struct {
	User  *model.User
	Token string
}

// RegisterInput is the registration form.
type RegisterInput struct {
	Email    string
	FullName string
	Password string
}

// Register creates an account and returns a token for it.
//
// ORDER OF OPERATIONS:
//  1. Validate the input
//  2. Reject an email that is already registered (fast path, friendly error)
//  3. Hash the password
//  4. Issue the token BEFORE the insert
//  5. Insert the user
//
// Issuing first means nothing can fail after the row is written, so the
// caller either gets a persisted account plus its token, or an error and no
// account. There is never an orphan row to clean up.
//
// The check in step 2 is only a fast path. Two concurrent registrations can
// both pass it; the store's unique constraint then rejects the second insert
// and that is reported as the same DuplicateUser error.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	email, err := validateEmail(in.Email)
	if err != nil {
		return nil, err
	}

	fullName, err := cleanText("full_name", in.FullName, MaxFullNameLength, false)
	if err != nil {
		return nil, err
	}

	if err := validatePassword(in.Password); err != nil {
		return nil, err
	}

	_, err = s.users.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, apperror.DuplicateUser()
	case !errors.Is(err, apperror.ErrNotFound):
		return nil, s.storeFailure("looking up email for registration", err)
	}

	hash, err := s.passwords.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("service/auth: hashing password: %w", err)
	}

	token, err := s.tokens.Issue(email)
	if err != nil {
		return nil, fmt.Errorf("service/auth: issuing token: %w", err)
	}

	user := &model.User{
		Email:        email,
		FullName:     fullName,
		PasswordHash: hash,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			return nil, apperror.DuplicateUser()
		}
		return nil, s.storeFailure("inserting user", err)
	}

	s.logger.Info("user registered", slog.String("userID", user.ID))

	return &AuthResult{User: user, Token: token}, nil
}

// Login checks credentials and returns a fresh token.
//
// An unknown email and a wrong password return the identical
// apperror.InvalidCredentials value. Both paths also do one bcrypt
// comparison (the unknown-email path against a decoy hash), so response
// time doesn't reveal which emails are registered either.
//
// An email that isn't valid UTF-8 can't belong to any account, so it takes
// the unknown-email path without a store round-trip.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.TrimSpace(email)
	if !utf8.ValidString(email) {
		s.passwords.VerifyDecoy(password)
		return nil, apperror.InvalidCredentials()
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			s.passwords.VerifyDecoy(password)
			return nil, apperror.InvalidCredentials()
		}
		return nil, s.storeFailure("looking up email for login", err)
	}

	if !s.passwords.Verify(user.PasswordHash, password) {
		return nil, apperror.InvalidCredentials()
	}

	token, err := s.tokens.Issue(user.Email)
	if err != nil {
		return nil, fmt.Errorf("service/auth: issuing token: %w", err)
	}

	s.logger.Info("user logged in", slog.String("userID", user.ID))

	return &AuthResult{User: user, Token: token}, nil
}

// storeFailure logs a persistence error and converts it to StoreUnavailable.
// The cause stays in the chain for logs; clients only see the AppError message.
func (s *AuthService) storeFailure(op string, err error) error {
	s.logger.Error("service/auth: store failure",
		slog.String("op", op),
		slog.String("error", err.Error()),
	)
	return fmt.Errorf("%w: %w", apperror.StoreUnavailable(), err)
}

// validateEmail trims surrounding whitespace and checks the address is a
// bare addr-spec ("a@b.c", not "Alice <a@b.c>"). The result is stored and
// compared exactly as returned: no case folding.
func validateEmail(raw string) (string, error) {
	email := strings.TrimSpace(raw)
	if email == "" {
		return "", apperror.ValidationFailed("email", "email is required")
	}
	if !utf8.ValidString(email) {
		return "", apperror.ValidationFailed("email", "invalid email format")
	}
	if len(email) > MaxEmailLength {
		return "", apperror.ValidationFailed("email",
			fmt.Sprintf("email must be %d characters or less", MaxEmailLength))
	}

	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || addr.Name != "" {
		return "", apperror.ValidationFailed("email", "invalid email format")
	}

	return email, nil
}

func validatePassword(password string) error {
	if password == "" {
		return apperror.ValidationFailed("password", "password is required")
	}
	if len(password) > MaxPasswordBytes {
		return apperror.ValidationFailed("password",
			fmt.Sprintf("password must be %d bytes or less", MaxPasswordBytes))
	}
	return nil
}
