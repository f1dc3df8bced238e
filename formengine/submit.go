package formengine

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mmdatafocus/kvk_backend/models"
	"github.com/mmdatafocus/kvk_backend/utils"
)

var (
	ErrSubmissionInProgress = errors.New("a save for this form is already in progress")
	ErrNotEditing           = errors.New("no report is open for editing")
)

// API is the slice of the REST surface the form engine saves through.
type API interface {
	CreateReport(ctx context.Context, input *models.NewReport) (*models.Report, error)
	UpdateReport(ctx context.Context, id int, input *models.NewReport) (*models.Report, error)
	SubmitReport(ctx context.Context, id int) (*models.Report, error)
}

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status  int
	Message string
	Errors  []utils.FieldError
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return http.StatusText(e.Status)
	}
	return e.Message
}

// IsNetworkFailure reports whether err is a transport failure or a 5xx answer.
// Validation, auth and other 4xx answers are never network failures, nor is caller cancellation.
func IsNetworkFailure(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status >= http.StatusInternalServerError
	}
	var appErr *utils.AppError
	return !errors.As(err, &appErr)
}

// FallbackEntry is a record that could not reach the server.
type FallbackEntry struct {
	ReportID int
	Report   *models.NewReport
	Submit   bool
	SavedAt  time.Time
	Cause    error
}

// Fallback keeps unsaved records in memory only; nothing survives the process.
type Fallback struct {
	mu      sync.Mutex
	entries map[int]FallbackEntry
}

func NewFallback() *Fallback {
	return &Fallback{entries: map[int]FallbackEntry{}}
}

func (f *Fallback) Put(e FallbackEntry) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[e.ReportID] = e
}

func (f *Fallback) Get(reportID int) (FallbackEntry, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.entries[reportID]
	return e, ok
}

func (f *Fallback) Drop(reportID int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.entries, reportID)
}

func (f *Fallback) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.entries)
}

// Outcome describes a finished save. Offline means the record only reached the Fallback.
type Outcome struct {
	Report  *models.Report
	Offline bool
	Cause   error
}

// Submitter saves one form; a second save while one is running fails with ErrSubmissionInProgress.
type Submitter struct {
	API      API
	Session  *Session
	Fallback *Fallback

	inFlight atomic.Bool
}

func NewSubmitter(api API, session *Session) *Submitter {
	return &Submitter{API: api, Session: session, Fallback: NewFallback()}
}

// SaveDraft stores the form without changing its status. Required inputs are left to the server.
func (s *Submitter) SaveDraft(ctx context.Context, f *Form) (*Outcome, error) {
	return s.save(ctx, f, false)
}

// Submit validates the form, saves it and then moves a draft to submitted.
func (s *Submitter) Submit(ctx context.Context, f *Form) (*Outcome, error) {
	return s.save(ctx, f, true)
}

func (s *Submitter) save(ctx context.Context, f *Form, submit bool) (*Outcome, error) {
	if !s.inFlight.CompareAndSwap(false, true) {
		return nil, ErrSubmissionInProgress
	}
	defer s.inFlight.Store(false)

	id, editing := s.Session.EditingID()
	if !editing {
		return nil, ErrNotEditing
	}
	if submit {
		if err := f.Validate(); err != nil {
			return nil, err
		}
	}
	input, err := f.Extract()
	if err != nil {
		return nil, err
	}
	// New reports start as drafts; an update keeps whatever status the server holds.
	if id == 0 {
		input.Status = models.ReportStatusDraft
	}

	report, err := s.persist(ctx, id, input)
	if err == nil {
		id = report.ID
		s.Session.Saved(report)
		f.Version = &report.Version
		if submit && report.Status == models.ReportStatusDraft {
			report, err = s.API.SubmitReport(ctx, id)
		}
	}
	if err != nil {
		if !IsNetworkFailure(err) {
			return nil, err
		}
		s.Fallback.Put(FallbackEntry{ReportID: id, Report: input, Submit: submit, SavedAt: time.Now(), Cause: err})
		return &Outcome{Offline: true, Cause: err}, nil
	}

	s.Fallback.Drop(id)
	s.Session.Saved(report)
	f.Version = &report.Version
	return &Outcome{Report: report}, nil
}

func (s *Submitter) persist(ctx context.Context, id int, input *models.NewReport) (*models.Report, error) {
	if id == 0 {
		return s.API.CreateReport(ctx, input)
	}
	return s.API.UpdateReport(ctx, id, input)
}
