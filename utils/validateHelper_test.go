package utils

import (
	"errors"
	"testing"
)

type registerProbe struct {
	Username string `json:"username" validate:"required,min=3,max=30,username"`
	Password string `json:"password" validate:"required,min=6,strongpassword"`
	Mobile   string `json:"mobile" validate:"omitempty,phone"`
	Date     string `json:"date" validate:"required,isodate"`
}

func TestValidateStruct(t *testing.T) {
	cases := []struct {
		name   string
		in     registerProbe
		fields []string
	}{
		{"valid", registerProbe{"kvk_user1", "Secret1", "9876543210", "2024-03-31"}, nil},
		{"bad username", registerProbe{"kvk user", "Secret1", "", "2024-03-31"}, []string{"username"}},
		{"weak password", registerProbe{"kvk_user", "secret", "", "2024-03-31T10:00:00Z"}, []string{"password"}},
		{"bad phone and date", registerProbe{"kvk_user", "Secret1", "12", "31/03/2024"}, []string{"mobile", "date"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateStruct(tc.in)
			if len(tc.fields) == 0 {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			var appErr *AppError
			if !errors.As(err, &appErr) || appErr.Kind != KindValidation {
				t.Fatalf("expected validation AppError, got %v", err)
			}
			if len(appErr.Errors) != len(tc.fields) {
				t.Fatalf("got %d field errors %+v, want %v", len(appErr.Errors), appErr.Errors, tc.fields)
			}
			for i, f := range tc.fields {
				if appErr.Errors[i].Field != f {
					t.Fatalf("field[%d] = %q, want %q", i, appErr.Errors[i].Field, f)
				}
			}
		})
	}
}

func TestAppErrorStatus(t *testing.T) {
	cases := []struct {
		err  *AppError
		want int
	}{
		{NewValidationError(""), 400},
		{NewInvalidTransition("Only draft reports can be submitted"), 400},
		{NewUnauthenticated("Token expired", ErrTokenExpired), 401},
		{NewForbidden("Access denied"), 403},
		{NewNotFound("Report not found"), 404},
		{NewConflict("Username already exists", nil), 409},
		{NewUpstream("Internal server error", errors.New("boom")), 500},
	}
	for _, tc := range cases {
		if got := tc.err.Status(); got != tc.want {
			t.Fatalf("%q status = %d, want %d", tc.err.Message, got, tc.want)
		}
	}
	if got := AsAppError(errors.New("UNIQUE constraint failed: users.email")); got.Kind != KindConflict {
		t.Fatalf("duplicate key should map to conflict, got %v", got.Kind)
	}
}
