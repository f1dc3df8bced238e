package reports

import (
	"context"
	"time"

	"github.com/mmdatafocus/kvk_backend/config"
	"github.com/mmdatafocus/kvk_backend/models"
	"gorm.io/gorm"
)

type RecentActivity struct {
	ID          int                 `json:"id"`
	KvkName     string              `json:"kvkName"`
	Status      models.ReportStatus `json:"status"`
	CreatedAt   time.Time           `json:"createdAt"`
	SubmittedBy *models.UserSummary `json:"submittedBy"`
}

type DashboardStatsResponse struct {
	TotalReports          int64            `json:"totalReports"`
	DraftReports          int64            `json:"draftReports"`
	SubmittedReports      int64            `json:"submittedReports"`
	ReviewedReports       int64            `json:"reviewedReports"`
	ApprovedReports       int64            `json:"approvedReports"`
	TotalFarmersReached   int64            `json:"totalFarmersReached"`
	TotalTrainingPrograms int64            `json:"totalTrainingPrograms"`
	TotalDemonstrations   int64            `json:"totalDemonstrations"`
	RecentActivity        []RecentActivity `json:"recentActivity"`
}

type statusCount struct {
	Status models.ReportStatus
	Total  int64
}

type achievementTotals struct {
	Farmers  int64
	Training int64
	Demos    int64
}

func scoped(ctx context.Context, actor models.ReportActor) *gorm.DB {
	return models.ScopeReports(config.GetDB().WithContext(ctx).Model(&models.Report{}), actor, models.ReportFilter{})
}

// DashboardStats is read-only; two calls without intervening writes return equal results.
func DashboardStats(ctx context.Context, actor models.ReportActor) (*DashboardStatsResponse, error) {
	return cached(ctx, cacheKey("stats", actor, ""), func() (*DashboardStatsResponse, error) {
		started := time.Now()
		defer logSlowReport(ctx, "DashboardStats", started, nil)
		return loadDashboardStats(ctx, actor)
	})
}

func loadDashboardStats(ctx context.Context, actor models.ReportActor) (*DashboardStatsResponse, error) {
	var counts []statusCount
	if err := scoped(ctx, actor).
		Select("status, COUNT(*) AS total").
		Group("status").
		Scan(&counts).Error; err != nil {
		return nil, err
	}

	resp := DashboardStatsResponse{RecentActivity: []RecentActivity{}}
	for _, c := range counts {
		resp.TotalReports += c.Total
		switch c.Status {
		case models.ReportStatusDraft:
			resp.DraftReports = c.Total
		case models.ReportStatusSubmitted:
			resp.SubmittedReports = c.Total
		case models.ReportStatusReviewed:
			resp.ReviewedReports = c.Total
		case models.ReportStatusApproved:
			resp.ApprovedReports = c.Total
		}
	}

	var totals achievementTotals
	if err := scoped(ctx, actor).Select(
		"COALESCE(SUM(oft_farmers_target + fld_farmers_target), 0) AS farmers, " +
			"COALESCE(SUM(training_courses_achievement), 0) AS training, " +
			"COALESCE(SUM(fld_number_achievement), 0) AS demos",
	).Scan(&totals).Error; err != nil {
		return nil, err
	}
	resp.TotalFarmersReached = totals.Farmers
	resp.TotalTrainingPrograms = totals.Training
	resp.TotalDemonstrations = totals.Demos

	var recent []models.Report
	if err := scoped(ctx, actor).
		Select("id", "kvk_name", "status", "created_at", "submitted_by").
		Order("created_at DESC").Order("id DESC").
		Limit(5).
		Find(&recent).Error; err != nil {
		return nil, err
	}
	owners, err := userSummaries(ctx, recent)
	if err != nil {
		return nil, err
	}
	for _, r := range recent {
		resp.RecentActivity = append(resp.RecentActivity, RecentActivity{
			ID:          r.ID,
			KvkName:     r.KvkName,
			Status:      r.Status,
			CreatedAt:   r.CreatedAt,
			SubmittedBy: owners[r.SubmittedBy],
		})
	}
	return &resp, nil
}

func userSummaries(ctx context.Context, reports []models.Report) (map[int]*models.UserSummary, error) {
	ids := make([]int, 0, len(reports))
	for _, r := range reports {
		ids = append(ids, r.SubmittedBy)
	}
	out := map[int]*models.UserSummary{}
	if len(ids) == 0 {
		return out, nil
	}
	var users []models.User
	if err := config.GetDB().WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	for i := range users {
		s := users[i].Summary()
		s.Role = ""
		out[users[i].ID] = s
	}
	return out, nil
}
