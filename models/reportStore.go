package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mmdatafocus/kvk_backend/config"
	"github.com/mmdatafocus/kvk_backend/utils"
	"gorm.io/gorm"
)

/*
caches:
	ReportGeneration (counter, bumped on every report write)
*/

const ReportGenerationKey = "ReportGeneration"

var incrCounter = config.IncrRedisCounter

// bumpReportGeneration invalidates every cached report listing. Listings join
// owner fields, so user writes bump it too.
func bumpReportGeneration(ctx context.Context) {
	if _, err := incrCounter(ctx, ReportGenerationKey); err != nil {
		config.LogError(config.GetLogger(), "models", "bumpReportGeneration", "redis incr", nil, err)
	}
}

// withReportLock serialises transitions of one report across instances when Redis is available.
func withReportLock(ctx context.Context, id int, fn func() error) error {
	lock, err := config.ObtainLock(ctx, fmt.Sprintf("lock:report:%d", id), 10*time.Second)
	if err != nil {
		config.GetLogger().WithField("reportId", id).Warn("report lock not obtained: " + err.Error())
	}
	if lock != nil {
		defer func() {
			_ = lock.Release(context.Background())
		}()
	}
	return fn()
}

// findReport locks the row for the surrounding transaction.
func findReport(tx *gorm.DB, id int) (*Report, error) {
	return loadReport(lockForUpdate(tx), id)
}

func loadReport(tx *gorm.DB, id int) (*Report, error) {
	var report Report
	if err := tx.First(&report, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NewNotFound("Report not found")
		}
		return nil, err
	}
	return &report, nil
}

func reportSnapshot(r *Report) map[string]any {
	return map[string]any{"kvkName": r.KvkName, "status": r.Status}
}

func CreateReport(ctx context.Context, actor ReportActor, input *NewReport) (*Report, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	status, err := initialStatus(input.Status)
	if err != nil {
		return nil, err
	}
	reportDate, _ := utils.ParseReportDate(input.ReportDate)

	report := Report{
		ReportContent: input.ReportContent,
		ReportDate:    reportDate,
		Status:        status,
		SubmittedBy:   actor.UserID,
		Version:       1,
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&report).Error; err != nil {
			return err
		}
		return writeAudit(tx, auditEntry{
			Action:       AuditActionCreate,
			ResourceType: AuditResourceReport,
			ResourceId:   &report.ID,
			UserId:       &actor.UserID,
			UserEmail:    actor.Email,
			Metadata:     map[string]any{"kvkName": report.KvkName, "status": report.Status},
		})
	})
	if err != nil {
		return nil, err
	}
	bumpReportGeneration(ctx)
	report.normalize()
	return &report, nil
}

// GetReport enforces ownership (403 for another user's report, 404 when missing) and records a VIEW.
func GetReport(ctx context.Context, actor ReportActor, id int) (*Report, error) {
	db := config.GetDB()
	report, err := loadReport(db.WithContext(ctx), id)
	if err != nil {
		return nil, err
	}
	if err := checkReadAccess(actor, report); err != nil {
		return nil, err
	}
	RecordAudit(ctx, auditEntry{
		Action:       AuditActionView,
		ResourceType: AuditResourceReport,
		ResourceId:   &report.ID,
		UserId:       &actor.UserID,
		UserEmail:    actor.Email,
	})
	return report, nil
}

// UpdateReport replaces the authored content. A non-nil expectedVersion enables the optimistic check.
// Workflow fields only change through SubmitReport and ReviewReport.
func UpdateReport(ctx context.Context, actor ReportActor, id int, input *NewReport, expectedVersion *int) (*Report, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	reportDate, _ := utils.ParseReportDate(input.ReportDate)
	if expectedVersion == nil {
		expectedVersion = input.Version
	}

	var updated *Report
	err := withReportLock(ctx, id, func() error {
		db := config.GetDB()
		return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			report, err := findReport(tx, id)
			if err != nil {
				return err
			}
			if err := checkMutateAccess(actor, report, "update"); err != nil {
				return err
			}
			if expectedVersion != nil && *expectedVersion != report.Version {
				return utils.NewConflict("Report was modified by another request", utils.ErrVersionConflict)
			}
			if input.Status != "" && input.Status != report.Status {
				if !actor.IsAdmin() || !CanTransition(report.Status, input.Status) {
					return utils.NewInvalidTransition("Status can only change through submit or review")
				}
			}

			before := reportSnapshot(report)
			previousVersion := report.Version
			report.ReportContent = input.ReportContent
			report.ReportDate = reportDate
			if input.Status != "" {
				report.Status = input.Status
			}
			report.Version = previousVersion + 1

			result := tx.Model(report).
				Where("version = ?", previousVersion).
				Select("*").
				Omit("id", "created_at", "submitted_by").
				Updates(report)
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return utils.NewConflict("Report was modified by another request", utils.ErrVersionConflict)
			}
			updated = report
			return writeAudit(tx, auditEntry{
				Action:       AuditActionUpdate,
				ResourceType: AuditResourceReport,
				ResourceId:   &report.ID,
				UserId:       &actor.UserID,
				UserEmail:    actor.Email,
				Changes:      map[string]any{"from": before, "to": reportSnapshot(report)},
			})
		})
	})
	if err != nil {
		return nil, err
	}
	bumpReportGeneration(ctx)
	updated.normalize()
	return updated, nil
}

func DeleteReport(ctx context.Context, actor ReportActor, id int) (*Report, error) {
	var deleted *Report
	err := withReportLock(ctx, id, func() error {
		db := config.GetDB()
		return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			report, err := findReport(tx, id)
			if err != nil {
				return err
			}
			if err := checkMutateAccess(actor, report, "delete"); err != nil {
				return err
			}
			if err := tx.Delete(&Report{}, report.ID).Error; err != nil {
				return err
			}
			deleted = report
			return writeAudit(tx, auditEntry{
				Action:       AuditActionDelete,
				ResourceType: AuditResourceReport,
				ResourceId:   &report.ID,
				UserId:       &actor.UserID,
				UserEmail:    actor.Email,
				Metadata:     map[string]any{"kvkName": report.KvkName, "deletedStatus": report.Status},
			})
		})
	})
	if err != nil {
		return nil, err
	}
	bumpReportGeneration(ctx)
	return deleted, nil
}

func SubmitReport(ctx context.Context, actor ReportActor, id int) (*Report, error) {
	var submitted *Report
	err := withReportLock(ctx, id, func() error {
		db := config.GetDB()
		return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			report, err := findReport(tx, id)
			if err != nil {
				return err
			}
			if err := checkSubmit(actor, report); err != nil {
				return err
			}
			from := report.Status
			report.Status = ReportStatusSubmitted
			report.Version++
			if err := tx.Model(report).Updates(map[string]any{
				"status":  report.Status,
				"version": report.Version,
			}).Error; err != nil {
				return err
			}
			submitted = report
			return writeAudit(tx, auditEntry{
				Action:       AuditActionUpdate,
				ResourceType: AuditResourceReport,
				ResourceId:   &report.ID,
				UserId:       &actor.UserID,
				UserEmail:    actor.Email,
				Changes:      map[string]any{"from": map[string]any{"status": from}, "to": map[string]any{"status": report.Status}},
				Metadata:     map[string]any{"action": "report_submitted"},
			})
		})
	})
	if err != nil {
		return nil, err
	}
	bumpReportGeneration(ctx)
	return submitted, nil
}

type ReviewInput struct {
	Status         ReportStatus `json:"status" validate:"required"`
	ReviewComments string       `json:"reviewComments" validate:"max=1000"`
}

func ReviewReport(ctx context.Context, actor ReportActor, id int, input *ReviewInput) (*Report, error) {
	if err := utils.ValidateStruct(input); err != nil {
		return nil, err
	}
	var reviewed *Report
	err := withReportLock(ctx, id, func() error {
		db := config.GetDB()
		return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			report, err := findReport(tx, id)
			if err != nil {
				return err
			}
			if err := checkReview(actor, report, input.Status); err != nil {
				return err
			}
			from := report.Status
			now := time.Now().UTC()
			report.Status = input.Status
			report.ReviewedBy = &actor.UserID
			report.ReviewedAt = &now
			report.ReviewComments = input.ReviewComments
			report.Version++
			if err := tx.Model(report).Updates(map[string]any{
				"status":          report.Status,
				"reviewed_by":     report.ReviewedBy,
				"reviewed_at":     report.ReviewedAt,
				"review_comments": report.ReviewComments,
				"version":         report.Version,
			}).Error; err != nil {
				return err
			}
			reviewed = report
			return writeAudit(tx, auditEntry{
				Action:       AuditActionUpdate,
				ResourceType: AuditResourceReport,
				ResourceId:   &report.ID,
				UserId:       &actor.UserID,
				UserEmail:    actor.Email,
				Changes:      map[string]any{"from": map[string]any{"status": from}, "to": map[string]any{"status": report.Status}},
				Metadata: map[string]any{
					"action":      "report_reviewed",
					"newStatus":   report.Status,
					"hasComments": report.ReviewComments != "",
				},
			})
		})
	})
	if err != nil {
		return nil, err
	}
	bumpReportGeneration(ctx)
	return reviewed, nil
}

// AttachFiles appends stored upload metadata to a report the actor may modify.
func AttachFiles(ctx context.Context, actor ReportActor, id int, files []Attachment) (*Report, error) {
	var updated *Report
	err := withReportLock(ctx, id, func() error {
		db := config.GetDB()
		return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			report, err := findReport(tx, id)
			if err != nil {
				return err
			}
			if err := checkMutateAccess(actor, report, "update"); err != nil {
				return err
			}
			report.Attachments = append(report.Attachments, files...)
			report.Version++
			if err := tx.Model(report).Select("attachments", "version").Updates(report).Error; err != nil {
				return err
			}
			updated = report
			names := make([]string, 0, len(files))
			for _, f := range files {
				names = append(names, f.OriginalName)
			}
			return writeAudit(tx, auditEntry{
				Action:       AuditActionUpdate,
				ResourceType: AuditResourceReport,
				ResourceId:   &report.ID,
				UserId:       &actor.UserID,
				UserEmail:    actor.Email,
				Metadata:     map[string]any{"action": "attachments_added", "files": names},
			})
		})
	})
	if err != nil {
		return nil, err
	}
	bumpReportGeneration(ctx)
	return updated, nil
}
