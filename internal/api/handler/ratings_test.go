package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/kiranshivaraju/boxdscrape/internal/store"
	"github.com/kiranshivaraju/boxdscrape/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockRatings struct {
	ratings map[string][]models.UserRating
	err     error
	asked   string
}

func (m *mockRatings) ListRatings(_ context.Context, username string) ([]models.UserRating, error) {
	m.asked = username
	if m.err != nil {
		return nil, m.err
	}
	r, ok := m.ratings[username]
	if !ok {
		return nil, store.ErrNotFound
	}
	return r, nil
}

func getRatings(t *testing.T, rr RatingsReader, path string) *httptest.ResponseRecorder {
	t.Helper()
	r := chi.NewRouter()
	r.Get("/api/v1/users/{username}/ratings", NewRatingsHandler(rr))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestRatings_OK(t *testing.T) {
	rr := &mockRatings{ratings: map[string][]models.UserRating{
		"alice": {{ID: "arrival-2016", GenreIDs: []int{}, UserRating: 4.5}},
	}}
	rec := getRatings(t, rr, "/api/v1/users/alice/ratings")

	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "alice", body["username"])
	ratings := body["ratings"].([]any)
	require.Len(t, ratings, 1)
	first := ratings[0].(map[string]any)
	assert.Equal(t, "arrival-2016", first["id"])
	assert.InDelta(t, 4.5, first["user_rating"], 1e-9)
	assert.Equal(t, []any{}, first["genre_ids"])
}

func TestRatings_EmptyHistory(t *testing.T) {
	rr := &mockRatings{ratings: map[string][]models.UserRating{"alice": nil}}
	body := decode(t, getRatings(t, rr, "/api/v1/users/alice/ratings"))
	assert.Equal(t, []any{}, body["ratings"])
}

func TestRatings_UnknownUser(t *testing.T) {
	rec := getRatings(t, &mockRatings{}, "/api/v1/users/bob/ratings")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, decode(t, rec)["message"], "bob")
}

func TestRatings_StoreError(t *testing.T) {
	rec := getRatings(t, &mockRatings{err: errors.New("db down")}, "/api/v1/users/alice/ratings")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "db down", decode(t, rec)["error"])
}

func TestRatings_BlankUsername(t *testing.T) {
	rr := &mockRatings{}
	rec := getRatings(t, rr, "/api/v1/users/%20/ratings")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, rr.asked)
}
