package formengine

import (
	"errors"
	"fmt"
	"sync"

	"github.com/mmdatafocus/kvk_backend/models"
)

var ErrInvalidSessionTransition = errors.New("invalid session transition")

type SessionState int

const (
	StateLoggedOut SessionState = iota
	StateLoggedIn
	StateEditing
)

func (s SessionState) String() string {
	switch s {
	case StateLoggedOut:
		return "logged-out"
	case StateLoggedIn:
		return "logged-in"
	case StateEditing:
		return "editing"
	}
	return fmt.Sprintf("SessionState(%d)", int(s))
}

// Session is the client's explicit state: LoggedOut -> LoggedIn(user) -> Editing(reportID?).
// It also holds the in-memory report cache, which is dropped on logout.
type Session struct {
	mu      sync.RWMutex
	state   SessionState
	user    *models.UserSummary
	token   string
	editID  int
	reports map[int]*models.Report
}

func NewSession() *Session {
	return &Session{reports: map[int]*models.Report{}}
}

func (s *Session) transition(from []SessionState, to SessionState) error {
	for _, f := range from {
		if s.state == f {
			s.state = to
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidSessionTransition, s.state, to)
}

func (s *Session) Login(user *models.UserSummary, token string) error {
	if user == nil || token == "" {
		return fmt.Errorf("%w: login needs a user and a token", ErrInvalidSessionTransition)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.transition([]SessionState{StateLoggedOut}, StateLoggedIn); err != nil {
		return err
	}
	s.user, s.token = user, token
	return nil
}

func (s *Session) Logout() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.transition([]SessionState{StateLoggedIn, StateEditing}, StateLoggedOut); err != nil {
		return err
	}
	s.user, s.token, s.editID = nil, "", 0
	s.reports = map[int]*models.Report{}
	return nil
}

// BeginEdit opens the editor; reportID 0 means a new report.
func (s *Session) BeginEdit(reportID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.transition([]SessionState{StateLoggedIn}, StateEditing); err != nil {
		return err
	}
	s.editID = reportID
	return nil
}

func (s *Session) EndEdit() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.transition([]SessionState{StateEditing}, StateLoggedIn); err != nil {
		return err
	}
	s.editID = 0
	return nil
}

// Saved records the server's copy after a save; a new report's editor adopts the assigned id.
func (s *Session) Saved(report *models.Report) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateLoggedOut || report == nil {
		return
	}
	if s.state == StateEditing && s.editID == 0 {
		s.editID = report.ID
	}
	s.reports[report.ID] = report
}

func (s *Session) State() SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Session) User() *models.UserSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// EditingID is the report under edit; ok is false outside Editing, id is 0 for an unsaved report.
func (s *Session) EditingID() (id int, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.editID, s.state == StateEditing
}

func (s *Session) CacheReports(reports []*models.Report) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateLoggedOut {
		return
	}
	for _, r := range reports {
		s.reports[r.ID] = r
	}
}

func (s *Session) CachedReport(id int) (*models.Report, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.reports[id]
	return r, ok
}

func (s *Session) ForgetReport(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.reports, id)
}
