package reports

import (
	"context"

	"github.com/mmdatafocus/kvk_backend/config"
	"github.com/mmdatafocus/kvk_backend/models"
)

type SystemOverviewResponse struct {
	TotalUsers             int64 `json:"totalUsers"`
	ActiveUsers            int64 `json:"activeUsers"`
	TotalKVKs              int64 `json:"totalKVKs"`
	TotalFarmersImpacted   int64 `json:"totalFarmersImpacted"`
	TotalTrainingConducted int64 `json:"totalTrainingConducted"`
}

// SystemOverview covers all users and reports; callers gate it to admins.
func SystemOverview(ctx context.Context) (*SystemOverviewResponse, error) {
	admin := models.ReportActor{Role: models.UserRoleAdmin}
	return cached(ctx, cacheKey("system", admin, ""), func() (*SystemOverviewResponse, error) {
		db := config.GetDB().WithContext(ctx)
		var resp SystemOverviewResponse

		if err := db.Model(&models.User{}).Count(&resp.TotalUsers).Error; err != nil {
			return nil, err
		}
		if err := db.Model(&models.User{}).Where("is_active = ?", true).Count(&resp.ActiveUsers).Error; err != nil {
			return nil, err
		}
		if err := db.Model(&models.User{}).
			Where("kvk_name IS NOT NULL AND kvk_name <> ''").
			Distinct("kvk_name").
			Count(&resp.TotalKVKs).Error; err != nil {
			return nil, err
		}

		var totals achievementTotals
		if err := db.Model(&models.Report{}).Select(
			"COALESCE(SUM(oft_farmers_target + fld_farmers_target), 0) AS farmers, " +
				"COALESCE(SUM(training_courses_achievement), 0) AS training",
		).Scan(&totals).Error; err != nil {
			return nil, err
		}
		resp.TotalFarmersImpacted = totals.Farmers
		resp.TotalTrainingConducted = totals.Training
		return &resp, nil
	})
}
