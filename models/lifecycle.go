package models

import (
	"github.com/mmdatafocus/kvk_backend/utils"
)

// ReportActor is the authenticated caller of a report operation.
type ReportActor struct {
	UserID int
	Role   UserRole
	Email  string
}

func (a ReportActor) IsAdmin() bool {
	return a.Role == UserRoleAdmin
}

var reportTransitions = map[ReportStatus][]ReportStatus{
	ReportStatusDraft:     {ReportStatusSubmitted},
	ReportStatusSubmitted: {ReportStatusReviewed, ReportStatusApproved},
	ReportStatusReviewed:  {ReportStatusReviewed, ReportStatusApproved},
}

// CanTransition reports whether the status graph has an edge from -> to.
func CanTransition(from, to ReportStatus) bool {
	for _, next := range reportTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// checkReadAccess: admins read everything, everyone else only their own reports.
func checkReadAccess(actor ReportActor, report *Report) error {
	if actor.IsAdmin() || report.SubmittedBy == actor.UserID {
		return nil
	}
	return utils.NewForbidden("Access denied")
}

// checkMutateAccess guards update and delete. verb is "update" or "delete".
func checkMutateAccess(actor ReportActor, report *Report, verb string) error {
	if actor.IsAdmin() {
		return nil
	}
	if report.SubmittedBy != actor.UserID {
		return utils.NewForbidden("Access denied")
	}
	if report.Status == ReportStatusApproved {
		return utils.NewForbidden("Cannot " + verb + " approved reports")
	}
	return nil
}

func checkSubmit(actor ReportActor, report *Report) error {
	if !actor.IsAdmin() && report.SubmittedBy != actor.UserID {
		return utils.NewForbidden("Access denied")
	}
	if !CanTransition(report.Status, ReportStatusSubmitted) {
		return utils.NewInvalidTransition("Only draft reports can be submitted")
	}
	return nil
}

func checkReview(actor ReportActor, report *Report, target ReportStatus) error {
	if !actor.IsAdmin() {
		return utils.NewForbidden("Insufficient permissions")
	}
	if target != ReportStatusReviewed && target != ReportStatusApproved {
		return utils.NewValidationError("Validation failed", utils.FieldError{
			Field: "status", Message: "Status must be either reviewed or approved",
		})
	}
	if !CanTransition(report.Status, target) {
		return utils.NewInvalidTransition("Only submitted or reviewed reports can be reviewed")
	}
	return nil
}

// initialStatus: new reports are drafts unless the caller submits immediately.
func initialStatus(requested ReportStatus) (ReportStatus, error) {
	switch requested {
	case "", ReportStatusDraft:
		return ReportStatusDraft, nil
	case ReportStatusSubmitted:
		return ReportStatusSubmitted, nil
	}
	return "", utils.NewValidationError("Validation failed", utils.FieldError{
		Field: "status", Message: "New reports can only be saved as draft or submitted",
	})
}
