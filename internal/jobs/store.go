// Package jobs is the in-memory registry of scrape jobs.
package jobs

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/boxdscrape/pkg/models"
)

// Sentinel errors for store operations.
var (
	ErrNotFound          = errors.New("job not found")
	ErrJobFinalized      = errors.New("job already finished")
	ErrInvalidTransition = errors.New("invalid job status transition")
	ErrInvariant         = errors.New("job update violates invariant")
)

// IDPrefix starts every job id.
const IDPrefix = "job_"

var validTransitions = map[models.JobStatus][]models.JobStatus{
	models.JobStatusPending:    {models.JobStatusPending, models.JobStatusInProgress, models.JobStatusFailed},
	models.JobStatusInProgress: {models.JobStatusInProgress, models.JobStatusCompleted, models.JobStatusFailed},
}

// Store keeps jobs in a mutex-guarded map. Reads return deep copies, so
// pollers never observe a half-applied update.
type Store struct {
	mu     sync.RWMutex
	jobs   map[string]*models.Job
	timers map[string]*time.Timer

	now   func() time.Time
	newID func() string
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator overrides how job ids are generated.
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) { s.newID = fn }
}

// New creates an empty store.
func New(opts ...Option) *Store {
	s := &Store{
		jobs:   make(map[string]*models.Job),
		timers: make(map[string]*time.Timer),
		now:    func() time.Time { return time.Now().UTC() },
		newID:  func() string { return IDPrefix + uuid.NewString() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create registers a pending job for username and returns its id.
func (s *Store) Create(username string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.newID()
	for _, exists := s.jobs[id]; exists; _, exists = s.jobs[id] {
		id = s.newID()
	}

	s.jobs[id] = &models.Job{
		ID:         id,
		Username:   username,
		Status:     models.JobStatusPending,
		Progress:   0,
		TotalPages: 1,
		Data:       []models.FilmRecord{},
		CreatedAt:  s.now(),
	}
	return id
}

// Get returns a snapshot of the job.
func (s *Store) Get(id string) (models.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, ok := s.jobs[id]
	if !ok {
		return models.Job{}, ErrNotFound
	}
	return job.Clone(), nil
}

// Update applies mutate to a working copy of the job and commits it only if
// the result respects the job invariants. Entering a terminal state stamps
// FinishedAt; terminal jobs reject every further update.
func (s *Store) Update(id string, mutate func(*models.Job)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.jobs[id]
	if !ok {
		return ErrNotFound
	}
	if cur.Status.Terminal() {
		return fmt.Errorf("%w: %s is %s", ErrJobFinalized, id, cur.Status)
	}

	next := cur.Clone()
	mutate(&next)
	if err := validate(cur, &next); err != nil {
		return err
	}

	if next.Status != cur.Status {
		now := s.now()
		if next.Status == models.JobStatusInProgress {
			next.StartedAt = &now
		}
		if next.Status.Terminal() {
			next.FinishedAt = &now
		}
	}
	s.jobs[id] = &next
	return nil
}

// ScheduleEviction deletes the job after delay. Rescheduling replaces the
// previous timer.
func (s *Store) ScheduleEviction(id string, delay time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.jobs[id]; !ok {
		return ErrNotFound
	}
	if t, ok := s.timers[id]; ok {
		t.Stop()
	}
	s.timers[id] = time.AfterFunc(delay, func() { s.evict(id) })
	return nil
}

// Len returns the number of stored jobs.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.jobs)
}

// Close stops all pending eviction timers. Stored jobs stay readable.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}
}

func (s *Store) evict(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.jobs, id)
	delete(s.timers, id)
}

func validate(cur, next *models.Job) error {
	if next.ID != cur.ID {
		return fmt.Errorf("%w: id is immutable", ErrInvariant)
	}

	allowed := false
	for _, st := range validTransitions[cur.Status] {
		if st == next.Status {
			allowed = true
			break
		}
	}
	if !allowed {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, cur.Status, next.Status)
	}

	switch {
	case next.Progress < cur.Progress:
		return fmt.Errorf("%w: progress decreased from %.3f to %.3f", ErrInvariant, cur.Progress, next.Progress)
	case next.Progress > 1:
		return fmt.Errorf("%w: progress %.3f exceeds 1", ErrInvariant, next.Progress)
	case len(next.Data) < len(cur.Data):
		return fmt.Errorf("%w: data shrank from %d to %d records", ErrInvariant, len(cur.Data), len(next.Data))
	case next.TotalPages < 1:
		return fmt.Errorf("%w: totalPages must be at least 1", ErrInvariant)
	case cur.ProfileData != nil && next.ProfileData == nil:
		return fmt.Errorf("%w: profile data cannot be cleared", ErrInvariant)
	case next.Error != nil && next.Status != models.JobStatusFailed:
		return fmt.Errorf("%w: error set on a %s job", ErrInvariant, next.Status)
	}
	return nil
}
