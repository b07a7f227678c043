// Package handler holds the HTTP handlers of the scrape API.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/kiranshivaraju/boxdscrape/internal/api/response"
	"github.com/kiranshivaraju/boxdscrape/internal/jobs"
	"github.com/kiranshivaraju/boxdscrape/internal/scraper"
	"github.com/kiranshivaraju/boxdscrape/pkg/models"
)

const maxBodyBytes = 1 << 20

// Scraper defines the interface the scrape handlers depend on.
type Scraper interface {
	Submit(ctx context.Context, username string) (string, error)
	Status(ctx context.Context, jobID string) (models.Job, error)
}

type submitRequest struct {
	Username string `json:"username"`
}

type submitResponse struct {
	JobID   string           `json:"jobId"`
	Status  models.JobStatus `json:"status"`
	Message string           `json:"message"`
}

// NewSubmitHandler returns an http.HandlerFunc for POST /api/v1/scrape.
func NewSubmitHandler(svc Scraper) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req submitRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
			response.Error(w, http.StatusBadRequest, "Invalid JSON body")
			return
		}

		jobID, err := svc.Submit(r.Context(), req.Username)
		switch {
		case errors.Is(err, scraper.ErrInvalidUsername):
			response.Error(w, http.StatusBadRequest, "Username is required")
			return
		case err != nil:
			response.InternalError(w, "Failed to start scraping job", err)
			return
		}

		response.Created(w, submitResponse{
			JobID:   jobID,
			Status:  models.JobStatusPending,
			Message: "Scraping job started",
		})
	}
}

type statusResponse struct {
	Status      models.JobStatus       `json:"status"`
	Progress    float64                `json:"progress"`
	TotalPages  int                    `json:"totalPages"`
	Data        []models.FilmRecord    `json:"data"`
	ProfileData *models.ProfileSummary `json:"profileData"`
	Error       *string                `json:"error"`
}

// NewStatusHandler returns an http.HandlerFunc for GET /api/v1/scrape/status.
// Records are only returned once the job is terminal.
func NewStatusHandler(svc Scraper) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		jobID := r.URL.Query().Get("jobId")
		if jobID == "" {
			response.Error(w, http.StatusBadRequest, "jobId is required")
			return
		}

		job, err := svc.Status(r.Context(), jobID)
		switch {
		case errors.Is(err, jobs.ErrNotFound):
			response.Error(w, http.StatusBadRequest, "Job not found")
			return
		case err != nil:
			response.InternalError(w, "Failed to read job status", err)
			return
		}

		data := []models.FilmRecord{}
		if job.Status.Terminal() && job.Data != nil {
			data = job.Data
		}
		response.JSON(w, statusResponse{
			Status:      job.Status,
			Progress:    job.Progress,
			TotalPages:  job.TotalPages,
			Data:        data,
			ProfileData: job.ProfileData,
			Error:       job.Error,
		})
	}
}
