package models

import "time"

// JobStatus is the lifecycle state of a scrape job.
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusInProgress JobStatus = "in-progress"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// Terminal reports whether no further transitions are allowed from s.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// Job tracks one scrape request. The API returns its ID on POST /api/v1/scrape;
// the client polls GET /api/v1/scrape/status until status is completed or failed.
type Job struct {
	ID          string          `json:"id"`
	Username    string          `json:"username"`
	Status      JobStatus       `json:"status"`
	Progress    float64         `json:"progress"`
	TotalPages  int             `json:"totalPages"`
	Data        []FilmRecord    `json:"data"`
	ProfileData *ProfileSummary `json:"profileData"`
	Error       *string         `json:"error"`
	CreatedAt   time.Time       `json:"createdAt"`
	StartedAt   *time.Time      `json:"startedAt,omitempty"`
	FinishedAt  *time.Time      `json:"finishedAt,omitempty"`
}

// Clone returns a deep copy so readers never share slices or pointers with the writer.
func (j Job) Clone() Job {
	out := j
	out.Data = make([]FilmRecord, len(j.Data))
	copy(out.Data, j.Data)
	if j.ProfileData != nil {
		p := j.ProfileData.Clone()
		out.ProfileData = &p
	}
	if j.Error != nil {
		e := *j.Error
		out.Error = &e
	}
	if j.StartedAt != nil {
		t := *j.StartedAt
		out.StartedAt = &t
	}
	if j.FinishedAt != nil {
		t := *j.FinishedAt
		out.FinishedAt = &t
	}
	return out
}
