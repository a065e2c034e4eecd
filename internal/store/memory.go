package store

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ayush/blog-api/internal/models"
)

// MemoryStore keeps posts and users in process memory. Ids are ObjectID hex
// strings so they look the same as those issued by MongoStore.
type MemoryStore struct {
	mu        sync.RWMutex
	posts     map[string]models.Post
	postOrder []string
	users     map[string]models.User
	userOrder []string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		posts: make(map[string]models.Post),
		users: make(map[string]models.User),
	}
}

func (s *MemoryStore) CreatePost(_ context.Context, post models.Post) (models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	post.ID = primitive.NewObjectID().Hex()
	if post.Created.IsZero() {
		post.Created = time.Now().UTC()
	}
	s.posts[post.ID] = post
	s.postOrder = append(s.postOrder, post.ID)
	return post, nil
}

func (s *MemoryStore) GetPost(_ context.Context, id string) (models.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	post, ok := s.posts[id]
	if !ok {
		return models.Post{}, ErrNotFound
	}
	return post, nil
}

func (s *MemoryStore) ListPosts(_ context.Context) ([]models.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	posts := make([]models.Post, 0, len(s.postOrder))
	for _, id := range s.postOrder {
		posts = append(posts, s.posts[id])
	}
	return posts, nil
}

func (s *MemoryStore) UpdatePost(_ context.Context, id string, update models.PostUpdate) (models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	post, ok := s.posts[id]
	if !ok {
		return models.Post{}, ErrNotFound
	}
	post = update.Apply(post)
	s.posts[id] = post
	return post, nil
}

func (s *MemoryStore) DeletePost(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.posts[id]; !ok {
		return ErrNotFound
	}
	delete(s.posts, id)
	for i, existing := range s.postOrder {
		if existing == id {
			s.postOrder = append(s.postOrder[:i], s.postOrder[i+1:]...)
			break
		}
	}
	return nil
}

func (s *MemoryStore) CreateUser(_ context.Context, user models.User) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[user.Username]; ok {
		return models.User{}, ErrAlreadyExists
	}
	user.ID = primitive.NewObjectID().Hex()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	s.users[user.Username] = user
	s.userOrder = append(s.userOrder, user.Username)
	return user, nil
}

func (s *MemoryStore) CountUsersByUsername(_ context.Context, username string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.users[username]; ok {
		return 1, nil
	}
	return 0, nil
}

func (s *MemoryStore) FindUserByUsername(_ context.Context, username string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[username]
	if !ok {
		return models.User{}, ErrNotFound
	}
	return user, nil
}

func (s *MemoryStore) ListUsers(_ context.Context) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]models.User, 0, len(s.userOrder))
	for _, name := range s.userOrder {
		users = append(users, s.users[name])
	}
	return users, nil
}

var (
	_ PostStore = (*MemoryStore)(nil)
	_ UserStore = (*MemoryStore)(nil)
)
