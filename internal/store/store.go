package store

import (
	"context"
	"errors"

	"github.com/kiranshivaraju/boxdscrape/pkg/models"
)

var ErrNotFound = errors.New("resource not found")

// Store is the ratings archive. All database operations go through here.
type Store interface {
	Ping(ctx context.Context) error

	// SaveScrape replaces the archived films of username with films. A nil
	// profile keeps the previously archived summary.
	SaveScrape(ctx context.Context, username string, profile *models.ProfileSummary, films []models.FilmRecord) error
	GetProfile(ctx context.Context, username string) (*models.ProfileSummary, error)
	ListFilms(ctx context.Context, username string) ([]models.FilmRecord, error)
	ListRatings(ctx context.Context, username string) ([]models.UserRating, error)
}
