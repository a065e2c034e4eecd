package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ayush/blog-api/internal/models"
)

func TestMemoryStore_Posts(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	s := NewMemoryStore()

	created, err := s.CreatePost(ctx, models.Post{
		Title:   "Hello",
		Content: "World",
		Author:  models.Author{FirstName: "Ada", LastName: "Lovelace"},
	})
	require.NoError(t, err)
	assert.Len(t, created.ID, 24)
	assert.False(t, created.Created.IsZero())

	got, err := s.GetPost(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)

	title := "Hello again"
	updated, err := s.UpdatePost(ctx, created.ID, models.PostUpdate{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Hello again", updated.Title)
	assert.Equal(t, "World", updated.Content)
	assert.Equal(t, created.Author, updated.Author)

	posts, err := s.ListPosts(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.Post{updated}, posts)

	require.NoError(t, s.DeletePost(ctx, created.ID))
	require.ErrorIs(t, s.DeletePost(ctx, created.ID), ErrNotFound)

	_, err = s.GetPost(ctx, created.ID)
	require.ErrorIs(t, err, ErrNotFound)
	_, err = s.UpdatePost(ctx, created.ID, models.PostUpdate{Title: &title})
	require.ErrorIs(t, err, ErrNotFound)

	posts, err = s.ListPosts(ctx)
	require.NoError(t, err)
	assert.Empty(t, posts)
}

func TestMemoryStore_Users(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	s := NewMemoryStore()

	n, err := s.CountUsersByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = s.FindUserByUsername(ctx, "alice")
	require.ErrorIs(t, err, ErrNotFound)

	alice, err := s.CreateUser(ctx, models.User{Username: "alice", PasswordHash: "hash-1"})
	require.NoError(t, err)
	assert.NotEmpty(t, alice.ID)

	_, err = s.CreateUser(ctx, models.User{Username: "alice", PasswordHash: "hash-2"})
	require.ErrorIs(t, err, ErrAlreadyExists)

	found, err := s.FindUserByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "hash-1", found.PasswordHash)

	n, err = s.CountUsersByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	users, err := s.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestMemoryStore_ConcurrentCreateUser(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	s := NewMemoryStore()

	const attempts = 32
	var (
		wg      sync.WaitGroup
		created atomic.Int32
		dupes   atomic.Int32
	)
	for i := range attempts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.CreateUser(ctx, models.User{Username: "bob", PasswordHash: fmt.Sprint(i)})
			switch {
			case err == nil:
				created.Add(1)
			case errors.Is(err, ErrAlreadyExists):
				dupes.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), created.Load())
	assert.Equal(t, int32(attempts-1), dupes.Load())
}

func TestMongoStore_MalformedIDs(t *testing.T) {
	t.Parallel()

	// Connect does not dial; the malformed-id paths return before any I/O.
	client, err := mongo.Connect(context.Background(), options.Client().ApplyURI("mongodb://127.0.0.1:1"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Disconnect(context.Background()) })

	s := NewMongoStore(client.Database("blog_api_test"))
	ctx := t.Context()

	_, err = s.GetPost(ctx, "not-an-object-id")
	require.ErrorIs(t, err, ErrNotFound)

	title := "x"
	_, err = s.UpdatePost(ctx, "nope", models.PostUpdate{Title: &title})
	require.ErrorIs(t, err, ErrNotFound)

	require.ErrorIs(t, s.DeletePost(ctx, "nope"), ErrNotFound)
}

func TestMapFindErr(t *testing.T) {
	t.Parallel()

	require.ErrorIs(t, mapFindErr("get post", mongo.ErrNoDocuments), ErrNotFound)

	boom := errors.New("boom")
	err := mapFindErr("get post", boom)
	require.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestIsUniqueViolation(t *testing.T) {
	t.Parallel()

	assert.True(t, isUniqueViolation(&pgconn.PgError{Code: "23505"}))
	assert.True(t, isUniqueViolation(fmt.Errorf("wrapped: %w", &pgconn.PgError{Code: "23505"})))
	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, isUniqueViolation(errors.New("other")))
	assert.False(t, isUniqueViolation(nil))
}

func TestMapInsertUserErr(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		err       error
		duplicate bool
	}{
		{"write exception 11000", mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000, Message: "E11000 duplicate key"}}}, true},
		{"wrapped write exception", fmt.Errorf("insert: %w", mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000}}}), true},
		{"command error 11000", mongo.CommandError{Code: 11000}, true},
		{"other write error", mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 121}}}, false},
		{"network", errors.New("connection reset"), false},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			err := mapInsertUserErr(test.err)
			if test.duplicate {
				require.ErrorIs(t, err, ErrAlreadyExists)
				return
			}
			require.Error(t, err)
			assert.NotErrorIs(t, err, ErrAlreadyExists)
			assert.Contains(t, err.Error(), "mongo insert user")
		})
	}
}

func TestUsernameIndex(t *testing.T) {
	t.Parallel()

	idx := usernameIndex()
	assert.Equal(t, bson.D{{Key: "username", Value: 1}}, idx.Keys)
	require.NotNil(t, idx.Options)
	require.NotNil(t, idx.Options.Unique)
	assert.True(t, *idx.Options.Unique)
	require.NotNil(t, idx.Options.Name)
	assert.Equal(t, "username_unique", *idx.Options.Name)
}
