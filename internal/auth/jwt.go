// Package auth implements the authentication core: password hashing, access
// token issuance and verification, and resolving the acting user from a
// bearer token.
//
// AUTHENTICATION FLOW OVERVIEW:
//  1. POST /auth/register or /auth/login → the session issuer (service.AuthService)
//     checks credentials and asks TokenService for a signed access token
//  2. The client sends it back as "Authorization: Bearer <token>"
//  3. RequireAuth decodes the token, loads the user by the token subject, and
//     stores the *model.User in the request context
//
// JWT STRUCTURE (three base64url parts separated by dots):
//
//	HEADER.PAYLOAD.SIGNATURE
//	- Header: {"alg":"HS256","typ":"JWT"}
//	- Payload: {"sub":"alice@example.com","iat":...,"exp":...,"iss":"hodeway"}
//	- Signature: HMAC(header+"."+payload, secret)
//
// Verification needs only the secret, no database round-trip. The price is
// that a token cannot be revoked before it expires.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// issuer is stamped into every token and required on decode.
const issuer = "hodeway"

// minSecretLength guards against trivially guessable HMAC keys.
const minSecretLength = 16

// Decode outcomes other than a valid subject. Callers that only need an
// authorization decision treat all three as "unauthenticated".
var (
	ErrTokenExpired          = errors.New("auth: token expired")
	ErrTokenMalformed        = errors.New("auth: token malformed")
	ErrTokenSignatureInvalid = errors.New("auth: token signature invalid")
)

// supportedAlgorithms are the HMAC methods a shared secret can drive.
var supportedAlgorithms = map[string]jwt.SigningMethod{
	jwt.SigningMethodHS256.Alg(): jwt.SigningMethodHS256,
	jwt.SigningMethodHS384.Alg(): jwt.SigningMethodHS384,
	jwt.SigningMethodHS512.Alg(): jwt.SigningMethodHS512,
}

// TokenService is the token codec: it issues and decodes access tokens.
//
// All fields are set once by NewTokenService and never mutated, so a single
// instance is shared by every request goroutine.
type TokenService struct {
	secret []byte
	method jwt.SigningMethod
	ttl    time.Duration

	// parser carries the decode rules (algorithm, issuer, strict base64).
	parser *jwt.Parser

	// now is the clock used for iat/exp and for expiry checks.
	now func() time.Time
}

// NewTokenService creates a TokenService signing with the given secret and
// algorithm. Tokens expire ttl after issuance.
func NewTokenService(secret, algorithm string, ttl time.Duration) (*TokenService, error) {
	if len(secret) < minSecretLength {
		return nil, fmt.Errorf("auth: signing secret must be at least %d characters", minSecretLength)
	}

	method, ok := supportedAlgorithms[algorithm]
	if !ok {
		return nil, fmt.Errorf("auth: unsupported signing algorithm %q", algorithm)
	}

	if ttl <= 0 {
		return nil, fmt.Errorf("auth: token TTL must be positive, got %s", ttl)
	}

	s := &TokenService{
		secret: []byte(secret),
		method: method,
		ttl:    ttl,
		now:    time.Now,
	}
	// The time func is a closure over s so tests can swap s.now afterwards.
	s.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{method.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithStrictDecoding(),
		jwt.WithTimeFunc(func() time.Time { return s.now() }),
	)
	return s, nil
}

// TTL returns the lifetime of issued tokens.
func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

// Issue signs a token whose subject is the given value.
//
// The claim set is exactly {sub, iat, exp, iss}. Nothing else is trusted on
// decode, so there is no claim a client could edit to gain privileges.
func (s *TokenService) Issue(subject string) (string, error) {
	if subject == "" {
		return "", fmt.Errorf("auth: token subject must not be empty")
	}

	now := s.now()
	c := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		Issuer:    issuer,
	}

	token := jwt.NewWithClaims(s.method, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}

	return signed, nil
}

// Decode verifies a token and returns its subject.
//
// On failure the error is one of ErrTokenExpired, ErrTokenSignatureInvalid or
// ErrTokenMalformed. The library verifies the signature before it looks at
// any claim, so a forged token never reports "expired".
//
// ALGORITHM CONFUSION:
// Only the configured algorithm is accepted. A token announcing "none" or a
// different HMAC size fails with ErrTokenSignatureInvalid.
//
// STRICT BASE64:
// The last base64url character of a signature can carry unused low bits.
// Lenient decoding ignores them, so several spellings of one signature would
// all verify. Strict decoding rejects every spelling but the canonical one,
// and a signature segment that fails to decode counts as a bad signature.
func (s *TokenService) Decode(tokenStr string) (string, error) {
	var c jwt.RegisteredClaims

	_, err := s.parser.ParseWithClaims(
		tokenStr,
		&c,
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenMalformed) && s.onlySignatureUndecodable(tokenStr) {
			return "", fmt.Errorf("%w: %w", ErrTokenSignatureInvalid, err)
		}
		return "", classify(err)
	}

	if c.Subject == "" {
		return "", fmt.Errorf("%w: missing subject", ErrTokenMalformed)
	}

	return c.Subject, nil
}

// onlySignatureUndecodable reports whether the header and payload segments
// decode but the signature segment does not.
func (s *TokenService) onlySignatureUndecodable(tokenStr string) bool {
	parts := strings.Split(tokenStr, ".")
	if len(parts) != 3 {
		return false
	}
	for _, seg := range parts[:2] {
		if _, err := s.parser.DecodeSegment(seg); err != nil {
			return false
		}
	}
	_, err := s.parser.DecodeSegment(parts[2])
	return err != nil
}

// classify maps jwt library errors onto the codec's three failure outcomes.
func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return fmt.Errorf("%w: %w", ErrTokenSignatureInvalid, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %w", ErrTokenExpired, err)
	default:
		return fmt.Errorf("%w: %w", ErrTokenMalformed, err)
	}
}
