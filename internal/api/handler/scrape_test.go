package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kiranshivaraju/boxdscrape/internal/jobs"
	"github.com/kiranshivaraju/boxdscrape/internal/scraper"
	"github.com/kiranshivaraju/boxdscrape/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- mock Scraper ---

type mockScraper struct {
	submitted []string
	submitErr error
	jobs      map[string]models.Job
	statusErr error
}

func (m *mockScraper) Submit(_ context.Context, username string) (string, error) {
	if m.submitErr != nil {
		return "", m.submitErr
	}
	m.submitted = append(m.submitted, username)
	return "job_123", nil
}

func (m *mockScraper) Status(_ context.Context, jobID string) (models.Job, error) {
	if m.statusErr != nil {
		return models.Job{}, m.statusErr
	}
	job, ok := m.jobs[jobID]
	if !ok {
		return models.Job{}, jobs.ErrNotFound
	}
	return job, nil
}

// --- helpers ---

func submit(t *testing.T, svc Scraper, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/scrape", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	NewSubmitHandler(svc)(rec, req)
	return rec
}

func poll(t *testing.T, svc Scraper, query string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/scrape/status"+query, nil)
	rec := httptest.NewRecorder()
	NewStatusHandler(svc)(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

func strPtr(s string) *string { return &s }

// --- submit ---

func TestSubmit_Created(t *testing.T) {
	svc := &mockScraper{}
	rec := submit(t, svc, `{"username":"alice"}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "job_123", body["jobId"])
	assert.Equal(t, "pending", body["status"])
	assert.NotEmpty(t, body["message"])
	assert.Equal(t, []string{"alice"}, svc.submitted)
}

func TestSubmit_MalformedJSON(t *testing.T) {
	svc := &mockScraper{}
	for _, body := range []string{"", "{", "not json", `{"username": 42}`} {
		rec := submit(t, svc, body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.Equal(t, "Invalid JSON body", decode(t, rec)["message"])
	}
	assert.Empty(t, svc.submitted)
}

func TestSubmit_InvalidUsername(t *testing.T) {
	svc := &mockScraper{submitErr: scraper.ErrInvalidUsername}
	rec := submit(t, svc, `{"username":"  "}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "Username is required", body["message"])
	assert.NotContains(t, body, "jobId")
}

func TestSubmit_ShuttingDown(t *testing.T) {
	svc := &mockScraper{submitErr: scraper.ErrShuttingDown}
	rec := submit(t, svc, `{"username":"alice"}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "error", body["status"])
	assert.Equal(t, scraper.ErrShuttingDown.Error(), body["error"])
	assert.NotEmpty(t, body["message"])
}

// --- status ---

func TestStatus_MissingJobID(t *testing.T) {
	rec := poll(t, &mockScraper{}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "jobId is required", decode(t, rec)["message"])
}

func TestStatus_UnknownJob(t *testing.T) {
	rec := poll(t, &mockScraper{jobs: map[string]models.Job{}}, "?jobId=job_missing")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Job not found", decode(t, rec)["message"])
}

func TestStatus_StoreFailure(t *testing.T) {
	rec := poll(t, &mockScraper{statusErr: errors.New("boom")}, "?jobId=job_1")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "boom", decode(t, rec)["error"])
}

func TestStatus_InProgressHidesData(t *testing.T) {
	svc := &mockScraper{jobs: map[string]models.Job{
		"job_1": {
			ID:         "job_1",
			Status:     models.JobStatusInProgress,
			Progress:   0.5,
			TotalPages: 2,
			Data:       []models.FilmRecord{{Name: "Arrival", Year: "2016", Rating: 4.5}},
		},
	}}
	rec := poll(t, svc, "?jobId=job_1")

	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "in-progress", body["status"])
	assert.InDelta(t, 0.5, body["progress"], 1e-9)
	assert.EqualValues(t, 2, body["totalPages"])
	assert.Equal(t, []any{}, body["data"])
	assert.Nil(t, body["profileData"])
	assert.Nil(t, body["error"])
}

func TestStatus_CompletedReturnsData(t *testing.T) {
	svc := &mockScraper{jobs: map[string]models.Job{
		"job_1": {
			ID:          "job_1",
			Status:      models.JobStatusCompleted,
			Progress:    1,
			TotalPages:  1,
			Data:        []models.FilmRecord{{Name: "Arrival", Year: "2016", URI: "https://letterboxd.com/film/arrival-2016/", Rating: 4.5}},
			ProfileData: &models.ProfileSummary{DisplayName: "Alice", Username: "alice"},
		},
	}}
	rec := poll(t, svc, "?jobId=job_1")

	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "completed", body["status"])
	data := body["data"].([]any)
	require.Len(t, data, 1)
	assert.Equal(t, "Arrival", data[0].(map[string]any)["name"])
	assert.Equal(t, "alice", body["profileData"].(map[string]any)["username"])
}

func TestStatus_FailedKeepsPartialData(t *testing.T) {
	svc := &mockScraper{jobs: map[string]models.Job{
		"job_1": {
			ID:         "job_1",
			Status:     models.JobStatusFailed,
			Progress:   0.5,
			TotalPages: 2,
			Data:       []models.FilmRecord{{Name: "Arrival", Rating: 4.5}},
			Error:      strPtr("failed on listing page 2: session closed"),
		},
	}}
	rec := poll(t, svc, "?jobId=job_1")

	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "failed", body["status"])
	assert.Len(t, body["data"], 1)
	assert.Equal(t, "failed on listing page 2: session closed", body["error"])
}

func TestStatus_TerminalWithNilData(t *testing.T) {
	svc := &mockScraper{jobs: map[string]models.Job{
		"job_1": {ID: "job_1", Status: models.JobStatusFailed, TotalPages: 1, Error: strPtr("x")},
	}}
	body := decode(t, poll(t, svc, "?jobId=job_1"))
	assert.Equal(t, []any{}, body["data"])
}
