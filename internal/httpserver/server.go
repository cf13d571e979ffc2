// HTTP server wiring for the blog backend.
// Responsibilities:
//   - Router + middleware (request IDs, panic recovery, timeouts, JSON,
//     credentialed CORS for the frontend origin).
//   - Route registration with per-route gate composition: the validation
//     gate checks field shape, the auth gate checks identity, and each
//     route declares its own sequence.
//   - Public endpoints: "/", GET /posts, GET /posts/{id}, /uploads/*.
//   - Gated endpoints: /auth/me, POST/PATCH/DELETE /posts, POST /upload.

package httpserver

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/trcaa/goblog/internal/auth"
	"github.com/trcaa/goblog/internal/store"
	"github.com/trcaa/goblog/internal/validate"
)

// Options carries the collaborators a Server needs. Everything is injected;
// the server holds no ambient state.
type Options struct {
	Users  store.Users
	Posts  store.Posts
	Hasher *auth.Hasher
	Tokens *auth.Tokens

	// ClientOrigin is the frontend origin allowed by CORS.
	ClientOrigin string
	// UploadDir is where POST /upload writes image files.
	UploadDir string
}

// Server bundles the router and its collaborators.
type Server struct {
	r      *chi.Mux
	users  store.Users
	posts  store.Posts
	hasher *auth.Hasher
	tokens *auth.Tokens

	uploadDir string
}

// Rule sets, bound per route. Declaration order defines the order of
// reported failures.
var (
	loginRules = validate.Rules{
		validate.Email("email", "invalid email format"),
		validate.MinString("password", 5, "password must be at least 5 characters"),
	}
	registerRules = validate.Rules{
		validate.Email("email", "invalid email format"),
		validate.MinString("password", 5, "password must be at least 5 characters"),
		validate.MinString("fullName", 3, "enter your name"),
		validate.Optional(validate.URL("avatarUrl", "invalid avatar url")),
	}
	postRules = validate.Rules{
		validate.MinString("title", 3, "enter a post title"),
		validate.MinString("text", 3, "enter the post text"),
		validate.Optional(validate.Array("tags", "invalid tags format")),
		validate.Optional(validate.String("imageUrl", "invalid image url")),
	}
)

// New constructs a Server, installs middleware, and registers routes.
func New(opts Options) *Server {
	s := &Server{
		r:         chi.NewRouter(),
		users:     opts.Users,
		posts:     opts.Posts,
		hasher:    opts.Hasher,
		tokens:    opts.Tokens,
		uploadDir: opts.UploadDir,
	}

	// --- middleware ---
	s.r.Use(chimw.RequestID)
	s.r.Use(chimw.RealIP)
	s.r.Use(chimw.Recoverer)
	s.r.Use(chimw.Timeout(10 * time.Second))
	s.r.Use(jsonContentType)
	s.r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{opts.ClientOrigin},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	requireAuth := auth.RequireAuth(s.tokens)

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"service":"goblog","endpoints":["/auth/*","/posts","/upload"]}`))
	})

	// --- auth ---
	s.r.With(validate.Gate(registerRules)).Post("/auth/register", s.handleRegister)
	s.r.With(validate.Gate(loginRules)).Post("/auth/login", s.handleLogin)
	s.r.With(requireAuth).Get("/auth/me", s.handleMe)

	// --- posts ---
	s.r.Get("/posts", s.handleListPosts)
	s.r.Get("/posts/{id}", s.handleGetPost)
	s.r.With(requireAuth, validate.Gate(postRules)).Post("/posts", s.handleCreatePost)
	s.r.With(requireAuth, validate.Gate(postRules)).Patch("/posts/{id}", s.handleUpdatePost)
	s.r.With(requireAuth).Delete("/posts/{id}", s.handleDeletePost)

	// --- uploads ---
	s.r.With(requireAuth).Post("/upload", s.handleUpload)
	s.r.Handle("/uploads/*", http.StripPrefix("/uploads/",
		http.FileServer(http.Dir(opts.UploadDir))))

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"not found","path":"`+r.URL.Path+`"}`, http.StatusNotFound)
	})

	return s
}

// Start begins serving HTTP on addr.
func (s *Server) Start(addr string) error { return http.ListenAndServe(addr, s.r) }

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// writeJSON encodes v as the response body.
func writeJSON(w http.ResponseWriter, v any) {
	_ = json.NewEncoder(w).Encode(v)
}
