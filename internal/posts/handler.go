// Package posts serves the blog post resource.
package posts

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ayush/blog-api/internal/models"
	"github.com/ayush/blog-api/internal/render"
	"github.com/ayush/blog-api/internal/store"
)

var requiredFields = []string{"title", "content", "author"}

// Handler holds post HTTP handlers.
type Handler struct {
	posts  store.PostStore
	logger *slog.Logger
}

func NewHandler(posts store.PostStore, logger *slog.Logger) *Handler {
	return &Handler{posts: posts, logger: logger}
}

// List returns every post.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	posts, err := h.posts.ListPosts(r.Context())
	if err != nil {
		render.InternalError(w, r, h.logger, "list posts", err)
		return
	}
	out := make([]models.PostResponse, 0, len(posts))
	for _, p := range posts {
		out = append(out, p.Response())
	}
	render.JSON(w, http.StatusOK, out)
}

// Get returns a single post.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	post, err := h.posts.GetPost(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, store.ErrNotFound) {
		render.Error(w, http.StatusNotFound, "post not found")
		return
	}
	if err != nil {
		render.InternalError(w, r, h.logger, "get post", err)
		return
	}
	render.JSON(w, http.StatusOK, post.Response())
}

// Create stores a new post. title, content and author must all be present.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	fields, ok := decodeFields(w, r)
	if !ok {
		return
	}
	for _, field := range requiredFields {
		if _, ok := fields[field]; !ok {
			render.Error(w, http.StatusBadRequest, fmt.Sprintf("Missing `%s` in request body", field))
			return
		}
	}

	update, ok := parseUpdate(w, fields)
	if !ok {
		return
	}
	post := update.Apply(models.Post{})

	created, err := h.posts.CreatePost(r.Context(), post)
	if err != nil {
		render.InternalError(w, r, h.logger, "create post", err)
		return
	}
	h.logger.InfoContext(r.Context(), "post created", slog.String("id", created.ID))
	render.JSON(w, http.StatusCreated, created.Response())
}

// Update applies the whitelisted fields present in the body. The body id must
// equal the path id.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	fields, ok := decodeFields(w, r)
	if !ok {
		return
	}

	var bodyID string
	raw, present := fields["id"]
	if !present || json.Unmarshal(raw, &bodyID) != nil || id == "" || bodyID != id {
		render.Error(w, http.StatusBadRequest, "Request path id and request body id values must match")
		return
	}

	update, ok := parseUpdate(w, fields)
	if !ok {
		return
	}

	post, err := h.posts.UpdatePost(r.Context(), id, update)
	if errors.Is(err, store.ErrNotFound) {
		render.Error(w, http.StatusNotFound, "post not found")
		return
	}
	if err != nil {
		render.InternalError(w, r, h.logger, "update post", err)
		return
	}
	render.JSON(w, http.StatusCreated, post.Response())
}

// Delete removes a post. It answers 204 whether or not the post existed.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	err := h.posts.DeletePost(r.Context(), id)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		render.InternalError(w, r, h.logger, "delete post", err)
		return
	}
	if err == nil {
		h.logger.InfoContext(r.Context(), "post deleted", slog.String("id", id))
	}
	render.NoContent(w)
}

func decodeFields(w http.ResponseWriter, r *http.Request) (map[string]json.RawMessage, bool) {
	fields, err := render.DecodeObject(w, r)
	if err != nil {
		render.Error(w, http.StatusBadRequest, err.Error())
		return nil, false
	}
	return fields, true
}

// parseUpdate extracts the whitelisted fields. Anything else in the body is
// ignored.
func parseUpdate(w http.ResponseWriter, fields map[string]json.RawMessage) (models.PostUpdate, bool) {
	var update models.PostUpdate
	if raw, ok := fields["title"]; ok {
		var title string
		if err := json.Unmarshal(raw, &title); err != nil {
			render.Error(w, http.StatusBadRequest, "`title` must be a string")
			return update, false
		}
		if strings.TrimSpace(title) == "" {
			render.Error(w, http.StatusBadRequest, "`title` must not be empty")
			return update, false
		}
		update.Title = &title
	}
	if raw, ok := fields["content"]; ok {
		var content string
		if err := json.Unmarshal(raw, &content); err != nil {
			render.Error(w, http.StatusBadRequest, "`content` must be a string")
			return update, false
		}
		update.Content = &content
	}
	if raw, ok := fields["author"]; ok {
		var author models.Author
		if err := json.Unmarshal(raw, &author); err != nil {
			render.Error(w, http.StatusBadRequest, "`author` must be a name or an object with firstName and lastName")
			return update, false
		}
		update.Author = &author
	}
	return update, true
}
