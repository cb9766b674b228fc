// Package api exposes the content engine over HTTP.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"

	"github.com/ghostpen/engine/internal/content"
	"github.com/ghostpen/engine/internal/imagegen"
	"github.com/ghostpen/engine/internal/platform"
	"github.com/ghostpen/engine/internal/storage"
)

// Server represents the API server.
type Server struct {
	router   *chi.Mux
	handlers *Handlers
	addr     string
	server   *http.Server
}

// NewServer creates a new API server. The store and renderer may be nil
// when blog storage or image generation is not configured.
func NewServer(gen *content.Generator, reg *platform.Registry, store storage.BlogStore, renderer *imagegen.Renderer, addr string) *Server {
	handlers := NewHandlers(gen, reg, store, renderer)

	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Generation can take minutes on a local model.
	r.Use(middleware.Timeout(5 * time.Minute))

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Routes
	r.Route("/api", func(r chi.Router) {
		// Health
		r.Get("/health", handlers.HealthCheck)

		// Generation and posting
		r.Post("/generate", handlers.GenerateContent)
		r.Post("/post/{platform}", handlers.PostContent)
		r.Get("/platforms", handlers.ListPlatforms)

		// Blog reads
		r.Route("/posts", func(r chi.Router) {
			r.Get("/", handlers.GetPosts)
			r.Get("/{slug}", handlers.GetPostBySlug)
		})

		// Images
		r.Post("/generate-image-prompt", handlers.GenerateImagePrompt)
		r.Post("/generate-image", handlers.GenerateImage)
	})

	r.Get("/images/{filename}", handlers.ServeImage)

	return &Server{
		router:   r,
		handlers: handlers,
		addr:     addr,
	}
}

// Handler returns the underlying router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the API server.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.addr,
		Handler:      s.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	log.Info().Str("addr", s.addr).Msg("Starting API server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
