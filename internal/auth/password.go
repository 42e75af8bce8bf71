// Password hashing.
//
// WHY BCRYPT?
// bcrypt is deliberately slow, salts every hash with fresh random bytes, and
// embeds both the salt and the cost in its output:
//
//	$2a$12$<22-char salt><31-char hash>
//	 ^   ^
//	 |   cost (12 → 2^12 iterations)
//	 version
//
// so the database stores one self-contained string per user.

package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// maxPasswordBytes is bcrypt's input limit. Longer inputs are rejected
// instead of being silently truncated.
const maxPasswordBytes = 72

// ErrPasswordTooLong is returned by Hash for inputs over 72 bytes.
var ErrPasswordTooLong = errors.New("auth: password must be 72 bytes or fewer")

// decoyPassword is hashed once at construction. Login runs a comparison
// against it when the email is unknown, so "no such user" costs the same
// bcrypt work as "wrong password".
const decoyPassword = "hodeway-decoy-password"

// PasswordService is the credential hasher.
//
// It's a struct (not free functions) so that the cost can be injected:
// production reads BCRYPT_COST (default 12), tests use bcrypt.MinCost (4).
type PasswordService struct {
	cost      int
	decoyHash []byte
}

// NewPasswordService creates a PasswordService with the given bcrypt cost.
// The cost must be within [bcrypt.MinCost, bcrypt.MaxCost].
func NewPasswordService(cost int) (*PasswordService, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("auth: bcrypt cost %d out of range [%d, %d]", cost, bcrypt.MinCost, bcrypt.MaxCost)
	}

	decoy, err := bcrypt.GenerateFromPassword([]byte(decoyPassword), cost)
	if err != nil {
		return nil, fmt.Errorf("auth: preparing decoy hash: %w", err)
	}

	return &PasswordService{cost: cost, decoyHash: decoy}, nil
}

// Hash hashes the given plaintext password with bcrypt.
//
// Two calls with the same input return different strings (random salt);
// both verify against the input.
func (p *PasswordService) Hash(plaintext string) (string, error) {
	if len(plaintext) > maxPasswordBytes {
		return "", ErrPasswordTooLong
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), p.cost)
	if err != nil {
		return "", fmt.Errorf("auth: hashing password: %w", err)
	}

	return string(hashed), nil
}

// Verify reports whether plaintext matches the stored bcrypt hash.
//
// It returns false for a mismatch, a malformed hash, or any internal error.
// Callers making authorization decisions get a plain bool and cannot tell
// those cases apart.
//
// bcrypt.CompareHashAndPassword compares in constant time.
func (p *PasswordService) Verify(hash, plaintext string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}

// VerifyDecoy spends the same CPU as Verify against the precomputed decoy
// hash and always returns false.
func (p *PasswordService) VerifyDecoy(plaintext string) bool {
	_ = bcrypt.CompareHashAndPassword(p.decoyHash, []byte(plaintext))
	return false
}
