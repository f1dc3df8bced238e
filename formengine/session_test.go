package formengine

import (
	"errors"
	"testing"

	"github.com/mmdatafocus/kvk_backend/models"
)

func TestSessionTransitions(t *testing.T) {
	user := &models.UserSummary{ID: 1, Username: "alice"}
	s := NewSession()

	steps := []struct {
		name string
		do   func() error
		ok   bool
		want SessionState
	}{
		{"logout while logged out", s.Logout, false, StateLoggedOut},
		{"edit while logged out", func() error { return s.BeginEdit(0) }, false, StateLoggedOut},
		{"login without token", func() error { return s.Login(user, "") }, false, StateLoggedOut},
		{"login", func() error { return s.Login(user, "tok") }, true, StateLoggedIn},
		{"login twice", func() error { return s.Login(user, "tok") }, false, StateLoggedIn},
		{"end edit while not editing", s.EndEdit, false, StateLoggedIn},
		{"begin edit", func() error { return s.BeginEdit(7) }, true, StateEditing},
		{"begin edit twice", func() error { return s.BeginEdit(8) }, false, StateEditing},
		{"end edit", s.EndEdit, true, StateLoggedIn},
		{"begin new", func() error { return s.BeginEdit(0) }, true, StateEditing},
		{"logout while editing", s.Logout, true, StateLoggedOut},
	}
	for _, step := range steps {
		err := step.do()
		if step.ok && err != nil {
			t.Fatalf("%s: %v", step.name, err)
		}
		if !step.ok && !errors.Is(err, ErrInvalidSessionTransition) {
			t.Fatalf("%s: err = %v, want ErrInvalidSessionTransition", step.name, err)
		}
		if got := s.State(); got != step.want {
			t.Fatalf("%s: state = %s, want %s", step.name, got, step.want)
		}
	}
}

func TestSessionCacheAndEditID(t *testing.T) {
	s := NewSession()
	s.CacheReports([]*models.Report{{ID: 1}})
	if _, ok := s.CachedReport(1); ok {
		t.Fatalf("logged-out session cached a report")
	}

	if err := s.Login(&models.UserSummary{ID: 1}, "tok"); err != nil {
		t.Fatal(err)
	}
	if err := s.BeginEdit(0); err != nil {
		t.Fatal(err)
	}
	s.Saved(&models.Report{ID: 42})
	if id, editing := s.EditingID(); !editing || id != 42 {
		t.Fatalf("EditingID = %d, %v", id, editing)
	}
	s.Saved(&models.Report{ID: 43})
	if id, _ := s.EditingID(); id != 42 {
		t.Fatalf("editor switched to %d", id)
	}
	if _, ok := s.CachedReport(43); !ok {
		t.Fatalf("saved report not cached")
	}

	s.ForgetReport(43)
	if _, ok := s.CachedReport(43); ok {
		t.Fatalf("ForgetReport kept the report")
	}
	if err := s.Logout(); err != nil {
		t.Fatal(err)
	}
	if _, ok := s.CachedReport(42); ok || s.Token() != "" || s.User() != nil {
		t.Fatalf("logout kept session data")
	}
}
