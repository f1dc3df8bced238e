package middlewares

import (
	"context"

	"github.com/graph-gophers/dataloader/v7"
	"github.com/mmdatafocus/kvk_backend/models"
	"gorm.io/gorm"
)

type userSummaryReader struct {
	db *gorm.DB
}

// getUserSummaries answers a batch of ids in one query; unknown ids resolve to nil.
func (r *userSummaryReader) getUserSummaries(ctx context.Context, ids []int) []*dataloader.Result[*models.UserSummary] {
	var users []models.User
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return handleError[*models.UserSummary](len(ids), err)
	}
	resultMap := make(map[int]*models.UserSummary, len(users))
	for i := range users {
		s := users[i].Summary()
		s.Role = ""
		resultMap[users[i].ID] = s
	}
	loaderResults := make([]*dataloader.Result[*models.UserSummary], 0, len(ids))
	for _, id := range ids {
		loaderResults = append(loaderResults, &dataloader.Result[*models.UserSummary]{Data: resultMap[id]})
	}
	return loaderResults
}

// AttachReportUsers fills submittedByUser and reviewedByUser on every report with one batched lookup.
func AttachReportUsers(ctx context.Context, reports ...*models.Report) error {
	loaders := For(ctx)
	type pending struct {
		dst   **models.UserSummary
		thunk dataloader.Thunk[*models.UserSummary]
	}
	var waits []pending
	for _, r := range reports {
		if r == nil {
			continue
		}
		waits = append(waits, pending{&r.SubmittedByUser, loaders.userSummaryLoader.Load(ctx, r.SubmittedBy)})
		if r.ReviewedBy != nil {
			waits = append(waits, pending{&r.ReviewedByUser, loaders.userSummaryLoader.Load(ctx, *r.ReviewedBy)})
		}
	}
	for _, w := range waits {
		user, err := w.thunk()
		if err != nil {
			return err
		}
		*w.dst = user
	}
	return nil
}
