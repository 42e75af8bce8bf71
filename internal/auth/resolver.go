package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/sakif/hodeway/internal/apperror"
	"github.com/sakif/hodeway/internal/model"
	"github.com/sakif/hodeway/internal/repository"
)

// Resolver is the identity resolver: bearer token in, acting user out.
//
// It holds only immutable collaborators, so Resolve is safe to call from any
// number of request goroutines and returns the same answer for the same
// token and store state.
type Resolver struct {
	tokens *TokenService
	users  repository.UserRepository
}

func NewResolver(tokens *TokenService, users repository.UserRepository) *Resolver {
	return &Resolver{tokens: tokens, users: users}
}

// Resolve decodes the token and loads the user named by its subject.
//
// Every token problem (expired, tampered, malformed) and a subject with no
// matching user all collapse into apperror.Unauthorized. A client learns
// only that it must authenticate again. A failing store is reported as
// apperror.StoreUnavailable instead, so an outage never looks like a logout.
func (r *Resolver) Resolve(ctx context.Context, token string) (*model.User, error) {
	subject, err := r.tokens.Decode(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperror.Unauthorized(), err)
	}

	user, err := r.users.GetUserByEmail(ctx, subject)
	if errors.Is(err, apperror.ErrNotFound) {
		return nil, apperror.Unauthorized()
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperror.StoreUnavailable(), err)
	}

	return user, nil
}
