package formengine

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"

	"github.com/mmdatafocus/kvk_backend/models"
	"github.com/mmdatafocus/kvk_backend/utils"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	mu     sync.Mutex
	calls  []string
	inputs []*models.NewReport
	create func(*models.NewReport) (*models.Report, error)
	update func(int, *models.NewReport) (*models.Report, error)
	submit func(int) (*models.Report, error)
}

func (a *fakeAPI) record(call string, in *models.NewReport) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls = append(a.calls, call)
	if in != nil {
		a.inputs = append(a.inputs, in)
	}
}

func (a *fakeAPI) CreateReport(_ context.Context, in *models.NewReport) (*models.Report, error) {
	a.record("create", in)
	if a.create != nil {
		return a.create(in)
	}
	return &models.Report{ID: 7, Status: models.ReportStatusDraft, Version: 1}, nil
}

func (a *fakeAPI) UpdateReport(_ context.Context, id int, in *models.NewReport) (*models.Report, error) {
	a.record("update", in)
	if a.update != nil {
		return a.update(id, in)
	}
	return &models.Report{ID: id, Status: models.ReportStatusDraft, Version: 2}, nil
}

func (a *fakeAPI) SubmitReport(_ context.Context, id int) (*models.Report, error) {
	a.record("submit", nil)
	if a.submit != nil {
		return a.submit(id)
	}
	return &models.Report{ID: id, Status: models.ReportStatusSubmitted, Version: 2}, nil
}

func editingSession(t *testing.T, reportID int) *Session {
	t.Helper()
	s := NewSession()
	require.NoError(t, s.Login(&models.UserSummary{ID: 1, Username: "alice"}, "tok"))
	require.NoError(t, s.BeginEdit(reportID))
	return s
}

func filledForm(t *testing.T) *Form {
	t.Helper()
	f := NewForm()
	mustSet(t, f, requiredValues())
	return f
}

func TestSubmitCreatesThenSubmits(t *testing.T) {
	api := &fakeAPI{}
	s := NewSubmitter(api, editingSession(t, 0))

	out, err := s.Submit(context.Background(), filledForm(t))
	require.NoError(t, err)
	require.False(t, out.Offline)
	require.Equal(t, models.ReportStatusSubmitted, out.Report.Status)
	require.Equal(t, []string{"create", "submit"}, api.calls)
	require.Equal(t, models.ReportStatusDraft, api.inputs[0].Status)

	id, _ := s.Session.EditingID()
	require.Equal(t, 7, id)
	_, cached := s.Session.CachedReport(7)
	require.True(t, cached)
}

func TestSaveDraftUpdatesWithVersion(t *testing.T) {
	api := &fakeAPI{}
	s := NewSubmitter(api, editingSession(t, 12))
	f := filledForm(t)
	version := 1
	f.Version = &version

	out, err := s.SaveDraft(context.Background(), f)
	require.NoError(t, err)
	require.Equal(t, 12, out.Report.ID)
	require.Equal(t, []string{"update"}, api.calls)
	require.Equal(t, 1, *api.inputs[0].Version)
	require.Empty(t, api.inputs[0].Status)
	require.Equal(t, 2, *f.Version)
}

func TestSubmitValidatesBeforeCallingAPI(t *testing.T) {
	api := &fakeAPI{}
	s := NewSubmitter(api, editingSession(t, 0))

	_, err := s.Submit(context.Background(), NewForm())
	require.Equal(t, utils.KindValidation, utils.AsAppError(err).Kind)
	require.Empty(t, api.calls)

	// drafts leave required fields to the server
	_, err = s.SaveDraft(context.Background(), NewForm())
	require.NoError(t, err)
}

func TestSaveRequiresEditingSession(t *testing.T) {
	s := NewSubmitter(&fakeAPI{}, NewSession())
	_, err := s.SaveDraft(context.Background(), filledForm(t))
	require.ErrorIs(t, err, ErrNotEditing)
}

func TestConcurrentSaveIsRejected(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	api := &fakeAPI{create: func(*models.NewReport) (*models.Report, error) {
		close(started)
		<-release
		return &models.Report{ID: 7, Version: 1}, nil
	}}
	s := NewSubmitter(api, editingSession(t, 0))

	first := filledForm(t)
	done := make(chan error, 1)
	go func() {
		_, err := s.SaveDraft(context.Background(), first)
		done <- err
	}()
	<-started

	_, err := s.Submit(context.Background(), filledForm(t))
	require.ErrorIs(t, err, ErrSubmissionInProgress)

	close(release)
	require.NoError(t, <-done)

	_, err = s.SaveDraft(context.Background(), filledForm(t))
	require.NoError(t, err)
}

func TestNetworkFailuresUseFallback(t *testing.T) {
	cases := []struct {
		name string
		err  error
	}{
		{"server error", &APIError{Status: http.StatusServiceUnavailable}},
		{"transport", errors.New("dial tcp 127.0.0.1:8080: connect: connection refused")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			api := &fakeAPI{update: func(int, *models.NewReport) (*models.Report, error) { return nil, tc.err }}
			s := NewSubmitter(api, editingSession(t, 12))

			out, err := s.Submit(context.Background(), filledForm(t))
			require.NoError(t, err)
			require.True(t, out.Offline)
			require.ErrorIs(t, out.Cause, tc.err)

			entry, ok := s.Fallback.Get(12)
			require.True(t, ok)
			require.True(t, entry.Submit)
			require.Equal(t, "KVK Alpha", entry.Report.KvkName)
			require.Equal(t, []string{"update"}, api.calls)
		})
	}
}

func TestClientErrorsSkipFallback(t *testing.T) {
	for _, status := range []int{http.StatusBadRequest, http.StatusForbidden, http.StatusConflict} {
		api := &fakeAPI{update: func(int, *models.NewReport) (*models.Report, error) {
			return nil, &APIError{Status: status, Message: "nope"}
		}}
		s := NewSubmitter(api, editingSession(t, 12))

		_, err := s.SaveDraft(context.Background(), filledForm(t))
		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		require.Equal(t, status, apiErr.Status)
		require.Zero(t, s.Fallback.Len())
	}
}

func TestSuccessfulSaveClearsFallback(t *testing.T) {
	fail := true
	api := &fakeAPI{update: func(id int, _ *models.NewReport) (*models.Report, error) {
		if fail {
			return nil, &APIError{Status: http.StatusBadGateway}
		}
		return &models.Report{ID: id, Version: 3}, nil
	}}
	s := NewSubmitter(api, editingSession(t, 12))

	_, err := s.SaveDraft(context.Background(), filledForm(t))
	require.NoError(t, err)
	require.Equal(t, 1, s.Fallback.Len())

	fail = false
	out, err := s.SaveDraft(context.Background(), filledForm(t))
	require.NoError(t, err)
	require.False(t, out.Offline)
	require.Zero(t, s.Fallback.Len())
}

func TestIsNetworkFailure(t *testing.T) {
	require.False(t, IsNetworkFailure(nil))
	require.False(t, IsNetworkFailure(context.Canceled))
	require.False(t, IsNetworkFailure(utils.NewValidationError("")))
	require.False(t, IsNetworkFailure(&APIError{Status: http.StatusUnauthorized}))
	require.True(t, IsNetworkFailure(&APIError{Status: http.StatusInternalServerError}))
	require.True(t, IsNetworkFailure(context.DeadlineExceeded))
}
