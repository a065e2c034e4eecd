package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/ayush/blog-api/internal/models"
	"github.com/ayush/blog-api/internal/store"
)

// ErrInvalidCredentials is returned for an unknown username and for a wrong
// password alike.
var ErrInvalidCredentials = errors.New("incorrect username or password")

// UserLookup is the part of the user store the verifier needs.
type UserLookup interface {
	FindUserByUsername(ctx context.Context, username string) (models.User, error)
}

// Verifier checks a username and plaintext password against the stored hash.
type Verifier struct {
	users  UserLookup
	hasher Hasher
	// compared against when the user does not exist so both failure paths
	// spend the same hashing work
	dummyHash string
}

func NewVerifier(users UserLookup, hasher Hasher) (*Verifier, error) {
	dummy, err := hasher.Hash("blog-api-dummy-password")
	if err != nil {
		return nil, fmt.Errorf("dummy hash: %w", err)
	}
	return &Verifier{users: users, hasher: hasher, dummyHash: dummy}, nil
}

// Verify returns the stored user when password matches. Unknown users and
// mismatched passwords both yield [ErrInvalidCredentials]; store failures are
// returned wrapped.
func (v *Verifier) Verify(ctx context.Context, username, password string) (models.User, error) {
	user, err := v.users.FindUserByUsername(ctx, username)
	if errors.Is(err, store.ErrNotFound) {
		v.hasher.Verify(password, v.dummyHash)
		return models.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return models.User{}, fmt.Errorf("lookup user: %w", err)
	}
	if !v.hasher.Verify(password, user.PasswordHash) {
		return models.User{}, ErrInvalidCredentials
	}
	return user, nil
}
