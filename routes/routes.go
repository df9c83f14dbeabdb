package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/upb/llm-cascade/app"
	"github.com/upb/llm-cascade/handlers"
	"github.com/upb/llm-cascade/middleware"
)

// SetupRoutes configures all application routes and middleware
func SetupRoutes(deps *app.Dependencies) http.Handler {
	r := chi.NewRouter()

	// Core middleware
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	// The cascade can legitimately spend a while in backoff before the
	// fallback answers, so the request timeout is generous.
	r.Use(chimiddleware.Timeout(120 * time.Second))

	// CORS middleware
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"http://localhost:*", "https://*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	// Health check endpoint
	r.Get("/healthz", handlers.HandleHealth)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/chat/completions", deps.ChatHandler.HandleChatCompletion)
		r.Get("/providers", deps.ProviderHandler.HandleListProviders)
	})

	// 404 handler
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"not_found","message":"Route not found"}`))
	})

	return r
}
