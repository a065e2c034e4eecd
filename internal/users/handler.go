// Package users serves registration, listing and the authenticated identity.
package users

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/ayush/blog-api/internal/auth"
	"github.com/ayush/blog-api/internal/models"
	"github.com/ayush/blog-api/internal/render"
	"github.com/ayush/blog-api/internal/store"
)

const msgUsernameTaken = "username already taken"

// Handler holds user HTTP handlers.
type Handler struct {
	users  store.UserStore
	hasher auth.Hasher
	logger *slog.Logger
}

func NewHandler(users store.UserStore, hasher auth.Hasher, logger *slog.Logger) *Handler {
	return &Handler{users: users, hasher: hasher, logger: logger}
}

type registerRequest struct {
	Username  string
	Password  string
	FirstName string
	LastName  string
}

// Create registers a new user.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	req, msg := parseRegister(w, r)
	if msg != "" {
		render.Error(w, http.StatusBadRequest, msg)
		return
	}

	n, err := h.users.CountUsersByUsername(r.Context(), req.Username)
	if err != nil {
		render.InternalError(w, r, h.logger, "count users", err)
		return
	}
	if n > 0 {
		render.Error(w, http.StatusBadRequest, msgUsernameTaken)
		return
	}

	hashed, err := h.hasher.Hash(req.Password)
	if err != nil {
		render.InternalError(w, r, h.logger, "hash password", err)
		return
	}

	user, err := h.users.CreateUser(r.Context(), models.User{
		Username:     req.Username,
		PasswordHash: hashed,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
	})
	if errors.Is(err, store.ErrAlreadyExists) {
		render.Error(w, http.StatusBadRequest, msgUsernameTaken)
		return
	}
	if err != nil {
		render.InternalError(w, r, h.logger, "create user", err)
		return
	}

	h.logger.InfoContext(r.Context(), "user registered", slog.String("username", user.Username))
	render.JSON(w, http.StatusCreated, user.Response())
}

// List returns every user.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.ListUsers(r.Context())
	if err != nil {
		render.InternalError(w, r, h.logger, "list users", err)
		return
	}
	out := make([]models.UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, u.Response())
	}
	render.JSON(w, http.StatusOK, out)
}

// Me returns the user resolved by the Basic auth middleware.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		render.Error(w, http.StatusUnauthorized, auth.ErrInvalidCredentials.Error())
		return
	}
	render.JSON(w, http.StatusOK, user.Response())
}

// parseRegister validates the registration body. A non-empty message means
// the request must be rejected with 400.
func parseRegister(w http.ResponseWriter, r *http.Request) (registerRequest, string) {
	var req registerRequest
	fields, err := render.DecodeObject(w, r)
	if err != nil {
		return req, err.Error()
	}

	for _, name := range []string{"username", "password"} {
		if _, ok := fields[name]; !ok {
			return req, "Missing required field: " + name
		}
	}

	var fullName string
	strs := map[string]*string{
		"username":  &req.Username,
		"password":  &req.Password,
		"firstName": &req.FirstName,
		"lastName":  &req.LastName,
		"fullName":  &fullName,
	}
	for _, name := range []string{"username", "password", "firstName", "lastName", "fullName"} {
		raw, ok := fields[name]
		if !ok {
			continue
		}
		if err := json.Unmarshal(raw, strs[name]); err != nil {
			return req, fmt.Sprintf("Incorrect field type: expected string for %s", name)
		}
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Password = strings.TrimSpace(req.Password)
	if req.Username == "" {
		return req, "username must not be empty"
	}
	if req.Password == "" {
		return req, "password must not be empty"
	}
	if len(req.Password) > auth.MaxPasswordBytes {
		return req, fmt.Sprintf("password must be at most %d bytes", auth.MaxPasswordBytes)
	}

	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	if req.FirstName == "" && req.LastName == "" && fullName != "" {
		req.FirstName, req.LastName = models.DecomposeFullName(fullName)
	}
	return req, ""
}
