package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ayush/blog-api/internal/auth"
	"github.com/ayush/blog-api/internal/middleware"
	"github.com/ayush/blog-api/internal/posts"
	"github.com/ayush/blog-api/internal/render"
	"github.com/ayush/blog-api/internal/store"
	"github.com/ayush/blog-api/internal/users"
)

// Deps are the collaborators the HTTP surface is built from.
type Deps struct {
	Posts          store.PostStore
	Users          store.UserStore
	Hasher         auth.Hasher
	Verifier       middleware.CredentialVerifier
	Logger         *slog.Logger
	AllowedOrigins []string
}

// NewRouter wires every route of the API.
func NewRouter(d Deps) http.Handler {
	postHandler := posts.NewHandler(d.Posts, d.Logger)
	userHandler := users.NewHandler(d.Users, d.Hasher, d.Logger)

	origins := d.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(d.Logger))
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
		ExposedHeaders: []string{middleware.RequestIDHeader},
		MaxAge:         300,
	}))

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		render.Error(w, http.StatusNotFound, "Not Found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		render.Error(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	})

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		render.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/posts", func(r chi.Router) {
		r.Get("/", postHandler.List)
		r.Post("/", postHandler.Create)
		r.Get("/{id}", postHandler.Get)
		r.Put("/{id}", postHandler.Update)
		r.Delete("/{id}", postHandler.Delete)
	})

	r.Route("/users", func(r chi.Router) {
		r.Get("/", userHandler.List)
		r.Post("/", userHandler.Create)
		r.With(middleware.RequireBasicAuth(d.Verifier, d.Logger)).Get("/me", userHandler.Me)
	})

	return r
}
