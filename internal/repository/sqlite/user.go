package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sakif/hodeway/internal/apperror"
	"github.com/sakif/hodeway/internal/model"
	"github.com/sakif/hodeway/internal/repository"
)

// compile-time check that *UserDB implements repository.UserRepository
var _ repository.UserRepository = (*UserDB)(nil)

// UserDB is the users table.
type UserDB struct {
	conn *sql.DB
}

// CreateUser inserts a new user and fills in ID and timestamps.
//
// UNIQUENESS LIVES IN THE SCHEMA:
// users.email carries a UNIQUE constraint, so two concurrent registrations
// for the same address cannot both succeed no matter how their earlier
// "does this email exist?" checks interleaved. The loser's INSERT fails with
// SQLITE_CONSTRAINT_UNIQUE, which is reported as apperror.DuplicateUser.
//
// IDs are random UUIDv4 values: not sequential, not guessable.
func (u *UserDB) CreateUser(ctx context.Context, user *model.User) error {
	id, err := uuid.NewRandom()
	if err != nil {
		return fmt.Errorf("sqlite: generating user id: %w", err)
	}

	now := time.Now().UTC()

	_, err = u.conn.ExecContext(ctx,
		`INSERT INTO users (id, email, full_name, hashed_password, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		id.String(),
		user.Email,
		user.FullName,
		user.PasswordHash,
		now,
		now,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.DuplicateUser()
		}
		return fmt.Errorf("sqlite: inserting user: %w", err)
	}

	user.ID = id.String()
	user.CreatedAt = now
	user.UpdatedAt = now

	return nil
}

// GetUserByEmail retrieves a user by exact (case-sensitive) email.
// Returns apperror.ErrNotFound if no user has that email.
func (u *UserDB) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	user, err := u.getOne(ctx, `WHERE email = ?`, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NotFound("user", email)
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: getting user by email: %w", err)
	}
	return user, nil
}

// GetUserByID retrieves a user by their internal ID.
// Returns apperror.ErrNotFound if no user exists with that ID.
func (u *UserDB) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	user, err := u.getOne(ctx, `WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NotFound("user", id)
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: getting user %s: %w", id, err)
	}
	return user, nil
}

func (u *UserDB) getOne(ctx context.Context, where string, arg any) (*model.User, error) {
	var user model.User

	err := u.conn.QueryRowContext(ctx,
		`SELECT id, email, full_name, hashed_password, created_at, updated_at
		 FROM users `+where,
		arg,
	).Scan(
		&user.ID,
		&user.Email,
		&user.FullName,
		&user.PasswordHash,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &user, nil
}
