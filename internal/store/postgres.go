package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kiranshivaraju/boxdscrape/pkg/models"
)

// PostgresStore implements the Store interface using pgx/v5.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgresStore.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Ping checks database connectivity.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func normalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// --- Scrapes ---

func (s *PostgresStore) SaveScrape(ctx context.Context, username string, profile *models.ProfileSummary, films []models.FilmRecord) error {
	username = normalizeUsername(username)
	if username == "" {
		return fmt.Errorf("save scrape: username is required")
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("save scrape: begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := upsertProfile(ctx, tx, username, profile); err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `DELETE FROM film_ratings WHERE username = $1`, username); err != nil {
		return fmt.Errorf("clear film ratings: %w", err)
	}

	b := &pgx.Batch{}
	for i, f := range films {
		if f.Slug == "" {
			continue
		}
		var year *string
		if f.Year != "" {
			year = &f.Year
		}
		b.Queue(
			`INSERT INTO film_ratings (username, slug, position, name, year, uri, rating, scraped_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
			 ON CONFLICT (username, slug) DO UPDATE SET
			   position = EXCLUDED.position,
			   name = EXCLUDED.name,
			   year = EXCLUDED.year,
			   uri = EXCLUDED.uri,
			   rating = EXCLUDED.rating,
			   scraped_at = EXCLUDED.scraped_at`,
			username, f.Slug, i, f.Name, year, f.URI, f.Rating)
	}
	if b.Len() > 0 {
		if err := tx.SendBatch(ctx, b).Close(); err != nil {
			return fmt.Errorf("insert film ratings: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("save scrape: commit: %w", err)
	}
	return nil
}

func upsertProfile(ctx context.Context, tx pgx.Tx, username string, p *models.ProfileSummary) error {
	if p == nil {
		_, err := tx.Exec(ctx,
			`INSERT INTO profiles (username, display_name) VALUES ($1, $1)
			 ON CONFLICT (username) DO UPDATE SET last_scraped_at = NOW()`, username)
		if err != nil {
			return fmt.Errorf("touch profile: %w", err)
		}
		return nil
	}

	_, err := tx.Exec(ctx,
		`INSERT INTO profiles (username, display_name, avatar_url, location, bio,
		   total_films, films_this_year, following, followers, last_scraped_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
		 ON CONFLICT (username) DO UPDATE SET
		   display_name = EXCLUDED.display_name,
		   avatar_url = EXCLUDED.avatar_url,
		   location = EXCLUDED.location,
		   bio = EXCLUDED.bio,
		   total_films = EXCLUDED.total_films,
		   films_this_year = EXCLUDED.films_this_year,
		   following = EXCLUDED.following,
		   followers = EXCLUDED.followers,
		   last_scraped_at = EXCLUDED.last_scraped_at`,
		username, p.DisplayName, p.AvatarURL, p.Location, p.Bio,
		p.Stats.TotalFilms, p.Stats.FilmsThisYear, p.Stats.Following, p.Stats.Followers)
	if err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}
	return nil
}

// --- Profiles ---

func (s *PostgresStore) GetProfile(ctx context.Context, username string) (*models.ProfileSummary, error) {
	username = normalizeUsername(username)
	p := models.ProfileSummary{Username: username}
	err := s.pool.QueryRow(ctx,
		`SELECT display_name, avatar_url, location, bio,
		        total_films, films_this_year, following, followers
		 FROM profiles WHERE username = $1`, username,
	).Scan(&p.DisplayName, &p.AvatarURL, &p.Location, &p.Bio,
		&p.Stats.TotalFilms, &p.Stats.FilmsThisYear, &p.Stats.Following, &p.Stats.Followers)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return &p, nil
}

// --- Ratings ---

func (s *PostgresStore) ListFilms(ctx context.Context, username string) ([]models.FilmRecord, error) {
	username = normalizeUsername(username)
	if err := s.profileExists(ctx, username); err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx,
		`SELECT slug, name, COALESCE(year, ''), uri, rating
		 FROM film_ratings WHERE username = $1 ORDER BY position`, username)
	if err != nil {
		return nil, fmt.Errorf("list films: %w", err)
	}
	defer rows.Close()

	films := []models.FilmRecord{}
	for rows.Next() {
		var f models.FilmRecord
		if err := rows.Scan(&f.Slug, &f.Name, &f.Year, &f.URI, &f.Rating); err != nil {
			return nil, fmt.Errorf("scan film: %w", err)
		}
		films = append(films, f)
	}
	return films, rows.Err()
}

// ListRatings returns the rated films of username in listing order.
func (s *PostgresStore) ListRatings(ctx context.Context, username string) ([]models.UserRating, error) {
	films, err := s.ListFilms(ctx, username)
	if err != nil {
		return nil, err
	}
	return models.ToUserRatings(films), nil
}

func (s *PostgresStore) profileExists(ctx context.Context, username string) error {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM profiles WHERE username = $1)`, username).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check profile: %w", err)
	}
	if !exists {
		return ErrNotFound
	}
	return nil
}

var _ Store = (*PostgresStore)(nil)
