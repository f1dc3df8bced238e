package models

import (
	"context"
	"strings"
	"time"

	"github.com/mmdatafocus/kvk_backend/config"
	"gorm.io/gorm"
)

var reportSortColumns = map[string]string{
	"createdAt":  "created_at",
	"updatedAt":  "updated_at",
	"reportDate": "report_date",
	"kvkName":    "kvk_name",
	"status":     "status",
}

type ReportFilter struct {
	Page      int
	Limit     int
	Search    string
	KvkName   string
	Status    ReportStatus
	DateFrom  *time.Time
	DateTo    *time.Time
	SortBy    string
	SortOrder string
}

type ReportList struct {
	Reports    []*Report  `json:"reports"`
	Pagination Pagination `json:"pagination"`
}

// ParseDateBound parses a filter date. A date-only upper bound covers the whole day.
func ParseDateBound(raw string, upper bool) (*time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, true
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		if upper {
			t = t.Add(24*time.Hour - time.Nanosecond)
		}
		return &t, true
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, true
	}
	return nil, false
}

// ScopeReports applies ownership and the shared filters. Non-admins only ever see their own rows.
func ScopeReports(q *gorm.DB, actor ReportActor, filter ReportFilter) *gorm.DB {
	if !actor.IsAdmin() {
		q = q.Where("submitted_by = ?", actor.UserID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where("LOWER(kvk_name) LIKE ? OR LOWER(host_org_name) LIKE ? OR LOWER(head_name) LIKE ? OR LOWER(report_prepared_by) LIKE ?",
			like, like, like, like)
	}
	if k := strings.TrimSpace(filter.KvkName); k != "" {
		q = q.Where("LOWER(kvk_name) LIKE ?", "%"+strings.ToLower(k)+"%")
	}
	if filter.DateFrom != nil {
		q = q.Where("report_date >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		q = q.Where("report_date <= ?", *filter.DateTo)
	}
	return q
}

func reportOrder(filter ReportFilter) string {
	column, ok := reportSortColumns[filter.SortBy]
	if !ok {
		column = "created_at"
	}
	direction := "DESC"
	if strings.EqualFold(filter.SortOrder, "asc") {
		direction = "ASC"
	}
	return column + " " + direction
}

func ListReports(ctx context.Context, actor ReportActor, filter ReportFilter) (*ReportList, error) {
	db := config.GetDB()
	page, limit := normalizePage(filter.Page, filter.Limit)

	q := ScopeReports(db.WithContext(ctx).Model(&Report{}), actor, filter)
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, err
	}

	reports := []*Report{}
	if err := q.Order(reportOrder(filter)).Order("id DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&reports).Error; err != nil {
		return nil, err
	}
	return &ReportList{Reports: reports, Pagination: newPagination(page, limit, total)}, nil
}

// ReportsForExport returns every matching report, newest first.
func ReportsForExport(ctx context.Context, actor ReportActor, filter ReportFilter) ([]*Report, error) {
	db := config.GetDB()
	reports := []*Report{}
	err := ScopeReports(db.WithContext(ctx).Model(&Report{}), actor, filter).
		Order("created_at DESC").Order("id DESC").
		Find(&reports).Error
	return reports, err
}

type ReportSummary struct {
	TotalReports     int64 `json:"totalReports"`
	DraftReports     int64 `json:"draftReports"`
	SubmittedReports int64 `json:"submittedReports"`
	ApprovedReports  int64 `json:"approvedReports"`
	RecentReports    int64 `json:"recentReports"`
}

// SummaryStats counts scoped reports per status plus those created in the last 30 days.
func SummaryStats(ctx context.Context, actor ReportActor) (*ReportSummary, error) {
	db := config.GetDB()
	base := func() *gorm.DB {
		return ScopeReports(db.WithContext(ctx).Model(&Report{}), actor, ReportFilter{})
	}

	var s ReportSummary
	if err := base().Count(&s.TotalReports).Error; err != nil {
		return nil, err
	}
	for status, dest := range map[ReportStatus]*int64{
		ReportStatusDraft:     &s.DraftReports,
		ReportStatusSubmitted: &s.SubmittedReports,
		ReportStatusApproved:  &s.ApprovedReports,
	} {
		if err := base().Where("status = ?", status).Count(dest).Error; err != nil {
			return nil, err
		}
	}
	since := time.Now().UTC().AddDate(0, 0, -30)
	if err := base().Where("created_at >= ?", since).Count(&s.RecentReports).Error; err != nil {
		return nil, err
	}
	return &s, nil
}
