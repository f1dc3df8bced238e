package models

import (
	"context"
	"errors"
	"testing"

	"github.com/mmdatafocus/kvk_backend/utils"
)

func asApp(t *testing.T, err error) *utils.AppError {
	t.Helper()
	var appErr *utils.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected AppError, got %T %v", err, err)
	}
	return appErr
}

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to ReportStatus
		want     bool
	}{
		{ReportStatusDraft, ReportStatusSubmitted, true},
		{ReportStatusDraft, ReportStatusApproved, false},
		{ReportStatusSubmitted, ReportStatusReviewed, true},
		{ReportStatusSubmitted, ReportStatusApproved, true},
		{ReportStatusReviewed, ReportStatusApproved, true},
		{ReportStatusReviewed, ReportStatusReviewed, true},
		{ReportStatusApproved, ReportStatusReviewed, false},
		{ReportStatusSubmitted, ReportStatusDraft, false},
	}
	for _, tc := range cases {
		if got := CanTransition(tc.from, tc.to); got != tc.want {
			t.Fatalf("CanTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestCreateReportStatus(t *testing.T) {
	db := setupDB(t)
	owner := seedUser(t, db, "owner", UserRoleUser)
	ctx := context.Background()

	draft := mustCreate(t, owner, "Draft KVK")
	if draft.Status != ReportStatusDraft || draft.SubmittedBy != owner.UserID {
		t.Fatalf("unexpected draft: status=%s owner=%d", draft.Status, draft.SubmittedBy)
	}

	in := sampleReport("Direct KVK")
	in.Status = ReportStatusSubmitted
	submitted, err := CreateReport(ctx, owner, in)
	if err != nil || submitted.Status != ReportStatusSubmitted {
		t.Fatalf("create submitted: %v %v", err, submitted)
	}

	in = sampleReport("Cheat KVK")
	in.Status = ReportStatusApproved
	_, err = CreateReport(ctx, owner, in)
	if asApp(t, err).Kind != utils.KindValidation {
		t.Fatalf("creating approved should be a validation failure, got %v", err)
	}
	if n := countAudits(t, db, AuditActionCreate, draft.ID); n != 1 {
		t.Fatalf("create audits = %d, want 1", n)
	}
}

func TestApprovedReportIsImmutableForNonAdmins(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	owner := seedUser(t, db, "owner", UserRoleUser)
	admin := seedUser(t, db, "admin", UserRoleAdmin)
	report := mustCreate(t, owner, "Approved KVK")

	if _, err := SubmitReport(ctx, owner, report.ID); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, err := ReviewReport(ctx, admin, report.ID, &ReviewInput{Status: ReportStatusApproved, ReviewComments: "ok"}); err != nil {
		t.Fatalf("approve: %v", err)
	}

	_, err := UpdateReport(ctx, owner, report.ID, sampleReport("Changed"), nil)
	if e := asApp(t, err); e.Kind != utils.KindForbidden || e.Message != "Cannot update approved reports" {
		t.Fatalf("owner update of approved: %v", err)
	}
	_, err = DeleteReport(ctx, owner, report.ID)
	if e := asApp(t, err); e.Kind != utils.KindForbidden || e.Message != "Cannot delete approved reports" {
		t.Fatalf("owner delete of approved: %v", err)
	}

	updated, err := UpdateReport(ctx, admin, report.ID, sampleReport("Admin Fix"), nil)
	if err != nil {
		t.Fatalf("admin update: %v", err)
	}
	if updated.KvkName != "Admin Fix" || updated.Status != ReportStatusApproved {
		t.Fatalf("admin update result: %s %s", updated.KvkName, updated.Status)
	}
	if _, err := DeleteReport(ctx, admin, report.ID); err != nil {
		t.Fatalf("admin delete: %v", err)
	}
	if n := countAudits(t, db, AuditActionDelete, report.ID); n != 1 {
		t.Fatalf("delete audits = %d, want 1", n)
	}
}

func TestSubmitAndReviewGuards(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	owner := seedUser(t, db, "owner", UserRoleUser)
	other := seedUser(t, db, "other", UserRoleUser)
	admin := seedUser(t, db, "admin", UserRoleAdmin)
	report := mustCreate(t, owner, "Guard KVK")

	if _, err := ReviewReport(ctx, admin, report.ID, &ReviewInput{Status: ReportStatusReviewed}); asApp(t, err).Kind != utils.KindInvalidTransition {
		t.Fatalf("reviewing a draft: %v", err)
	}
	if _, err := SubmitReport(ctx, other, report.ID); asApp(t, err).Kind != utils.KindForbidden {
		t.Fatalf("submit by stranger: %v", err)
	}
	if _, err := SubmitReport(ctx, owner, report.ID); err != nil {
		t.Fatalf("submit: %v", err)
	}
	_, err := SubmitReport(ctx, owner, report.ID)
	if e := asApp(t, err); e.Kind != utils.KindInvalidTransition || e.Message != "Only draft reports can be submitted" {
		t.Fatalf("double submit: %v", err)
	}
	if _, err := ReviewReport(ctx, owner, report.ID, &ReviewInput{Status: ReportStatusApproved}); asApp(t, err).Kind != utils.KindForbidden {
		t.Fatalf("review by non-admin: %v", err)
	}
	if _, err := ReviewReport(ctx, admin, report.ID, &ReviewInput{Status: ReportStatusDraft}); asApp(t, err).Kind != utils.KindValidation {
		t.Fatalf("review to draft: %v", err)
	}

	reviewed, err := ReviewReport(ctx, admin, report.ID, &ReviewInput{Status: ReportStatusReviewed, ReviewComments: "needs data"})
	if err != nil {
		t.Fatalf("review: %v", err)
	}
	if reviewed.ReviewedBy == nil || *reviewed.ReviewedBy != admin.UserID || reviewed.ReviewedAt == nil {
		t.Fatalf("review metadata not set: %+v", reviewed)
	}
	if _, err := ReviewReport(ctx, admin, report.ID, &ReviewInput{Status: ReportStatusApproved}); err != nil {
		t.Fatalf("reviewed -> approved: %v", err)
	}
	// submit + review + approve
	if n := countAudits(t, db, AuditActionUpdate, report.ID); n != 3 {
		t.Fatalf("transition audits = %d, want 3", n)
	}
}

func TestCrossUserAccess(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	userA := seedUser(t, db, "user_a", UserRoleUser)
	userB := seedUser(t, db, "user_b", UserRoleUser)
	admin := seedUser(t, db, "admin", UserRoleAdmin)
	report := mustCreate(t, userA, "A KVK")

	if _, err := GetReport(ctx, userB, report.ID); asApp(t, err).Kind != utils.KindForbidden {
		t.Fatalf("cross-user fetch should be 403, got %v", err)
	}
	if _, err := GetReport(ctx, userB, report.ID+100); asApp(t, err).Kind != utils.KindNotFound {
		t.Fatalf("missing id should be 404, got %v", err)
	}
	if _, err := UpdateReport(ctx, userB, report.ID, sampleReport("Hijack"), nil); asApp(t, err).Kind != utils.KindForbidden {
		t.Fatalf("cross-user update should be 403, got %v", err)
	}
	if _, err := GetReport(ctx, admin, report.ID); err != nil {
		t.Fatalf("admin fetch: %v", err)
	}
	if n := countAudits(t, db, AuditActionView, report.ID); n != 1 {
		t.Fatalf("view audits = %d, want 1", n)
	}
}

func TestUpdateReportVersionConflict(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	owner := seedUser(t, db, "owner", UserRoleUser)
	report := mustCreate(t, owner, "Versioned KVK")

	stale := report.Version
	if _, err := UpdateReport(ctx, owner, report.ID, sampleReport("First"), &stale); err != nil {
		t.Fatalf("first update: %v", err)
	}
	_, err := UpdateReport(ctx, owner, report.ID, sampleReport("Second"), &stale)
	if e := asApp(t, err); e.Kind != utils.KindConflict || !errors.Is(err, utils.ErrVersionConflict) {
		t.Fatalf("stale version should conflict, got %v", err)
	}
	// without a version the last writer wins
	last, err := UpdateReport(ctx, owner, report.ID, sampleReport("Third"), nil)
	if err != nil || last.KvkName != "Third" || last.Version != stale+2 {
		t.Fatalf("unversioned update: %v %+v", err, last)
	}
}

func TestUpdateReportRejectsStatusChangeByOwner(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	owner := seedUser(t, db, "owner", UserRoleUser)
	report := mustCreate(t, owner, "Sneaky KVK")

	in := sampleReport("Sneaky KVK")
	in.Status = ReportStatusApproved
	if _, err := UpdateReport(ctx, owner, report.ID, in, nil); asApp(t, err).Kind != utils.KindInvalidTransition {
		t.Fatalf("owner status change: %v", err)
	}
}

func TestOwnerEditsReportAwaitingReview(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	owner := seedUser(t, db, "owner", UserRoleUser)
	admin := seedUser(t, db, "admin", UserRoleAdmin)
	report := mustCreate(t, owner, "Pending KVK")
	if _, err := SubmitReport(ctx, owner, report.ID); err != nil {
		t.Fatalf("submit: %v", err)
	}

	// asking for draft again is a transition the owner may not make
	back := sampleReport("Pending KVK")
	back.Status = ReportStatusDraft
	if _, err := UpdateReport(ctx, owner, report.ID, back, nil); asApp(t, err).Kind != utils.KindInvalidTransition {
		t.Fatalf("owner moving submitted back to draft: %v", err)
	}

	edited, err := UpdateReport(ctx, owner, report.ID, sampleReport("Pending KVK Revised"), nil)
	if err != nil {
		t.Fatalf("owner edit of submitted report: %v", err)
	}
	if edited.KvkName != "Pending KVK Revised" || edited.Status != ReportStatusSubmitted {
		t.Fatalf("edit result: %s %s", edited.KvkName, edited.Status)
	}

	if _, err := ReviewReport(ctx, admin, report.ID, &ReviewInput{Status: ReportStatusReviewed}); err != nil {
		t.Fatalf("review: %v", err)
	}
	same := sampleReport("Reviewed KVK")
	same.Status = ReportStatusReviewed
	edited, err = UpdateReport(ctx, owner, report.ID, same, nil)
	if err != nil || edited.Status != ReportStatusReviewed {
		t.Fatalf("owner edit of reviewed report: %v %+v", err, edited)
	}

	if _, err := ReviewReport(ctx, admin, report.ID, &ReviewInput{Status: ReportStatusApproved}); err != nil {
		t.Fatalf("approve: %v", err)
	}
	_, err = UpdateReport(ctx, owner, report.ID, sampleReport("Too Late"), nil)
	if e := asApp(t, err); e.Kind != utils.KindForbidden || e.Message != "Cannot update approved reports" {
		t.Fatalf("owner edit of approved report: %v", err)
	}
}
