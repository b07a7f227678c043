package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	mw "github.com/kiranshivaraju/boxdscrape/internal/api/middleware"
	"github.com/kiranshivaraju/boxdscrape/internal/api/response"
)

// Dependencies holds all handler and middleware dependencies for the router.
// A nil handler is served as 501; a nil RateLimit disables rate limiting.
type Dependencies struct {
	RateLimit *mw.RateLimit

	HealthHandler       http.HandlerFunc
	SubmitScrapeHandler http.HandlerFunc
	ScrapeStatusHandler http.HandlerFunc
	UserRatingsHandler  http.HandlerFunc
}

// NewRouter builds the Chi router with middleware stack and all routes.
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(mw.Logger)
	r.Use(mw.Recovery)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, http.StatusNotFound, "Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", orNotImplemented(deps.HealthHandler))

		r.With(deps.RateLimit.Limit).Post("/scrape", orNotImplemented(deps.SubmitScrapeHandler))
		r.Get("/scrape/status", orNotImplemented(deps.ScrapeStatusHandler))

		r.Get("/users/{username}/ratings", orNotImplemented(deps.UserRatingsHandler))
	})

	return r
}

// orNotImplemented returns the handler if non-nil, or a 501 placeholder.
func orNotImplemented(h http.HandlerFunc) http.HandlerFunc {
	if h != nil {
		return h
	}
	return func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, http.StatusNotImplemented, "Endpoint not available")
	}
}
