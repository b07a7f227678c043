package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/kiranshivaraju/boxdscrape/internal/api/response"
	"github.com/kiranshivaraju/boxdscrape/internal/store"
	"github.com/kiranshivaraju/boxdscrape/pkg/models"
)

// RatingsReader reads archived ratings.
type RatingsReader interface {
	ListRatings(ctx context.Context, username string) ([]models.UserRating, error)
}

type ratingsResponse struct {
	Username string              `json:"username"`
	Ratings  []models.UserRating `json:"ratings"`
}

// NewRatingsHandler returns an http.HandlerFunc for
// GET /api/v1/users/{username}/ratings.
func NewRatingsHandler(rr RatingsReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		username := strings.TrimSpace(chi.URLParam(r, "username"))
		if username == "" {
			response.Error(w, http.StatusBadRequest, "Username is required")
			return
		}

		ratings, err := rr.ListRatings(r.Context(), username)
		switch {
		case errors.Is(err, store.ErrNotFound):
			response.Error(w, http.StatusNotFound, "No archived ratings for "+username)
			return
		case err != nil:
			response.InternalError(w, "Failed to read ratings", err)
			return
		}
		if ratings == nil {
			ratings = []models.UserRating{}
		}

		response.JSON(w, ratingsResponse{Username: username, Ratings: ratings})
	}
}
