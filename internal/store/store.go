// Package store persists posts and users. MongoStore is the production engine,
// PostgresStore can hold users instead, and MemoryStore backs tests and
// in-memory development runs.
package store

import (
	"context"
	"errors"

	"github.com/ayush/blog-api/internal/models"
)

var (
	// ErrNotFound is returned when an id or username does not resolve. Ids the
	// engine cannot parse are reported the same way.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned when a create violates the username unique
	// constraint.
	ErrAlreadyExists = errors.New("already exists")
)

// PostStore is the persistence surface for blog posts.
type PostStore interface {
	CreatePost(ctx context.Context, post models.Post) (models.Post, error)
	// GetPost returns [ErrNotFound] if id does not resolve.
	GetPost(ctx context.Context, id string) (models.Post, error)
	ListPosts(ctx context.Context) ([]models.Post, error)
	// UpdatePost applies update atomically and returns the post as stored
	// afterwards, or [ErrNotFound].
	UpdatePost(ctx context.Context, id string, update models.PostUpdate) (models.Post, error)
	// DeletePost returns [ErrNotFound] if nothing was removed.
	DeletePost(ctx context.Context, id string) error
}

// UserStore is the persistence surface for users.
type UserStore interface {
	// CreateUser returns [ErrAlreadyExists] if the username is taken. This is
	// enforced by the engine, not by a prior read.
	CreateUser(ctx context.Context, user models.User) (models.User, error)
	CountUsersByUsername(ctx context.Context, username string) (int64, error)
	// FindUserByUsername returns [ErrNotFound] for unknown usernames.
	FindUserByUsername(ctx context.Context, username string) (models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
}
