package formengine

import (
	"context"
	"testing"

	"github.com/mmdatafocus/kvk_backend/internal/testdb"
	"github.com/mmdatafocus/kvk_backend/models"
	"github.com/mmdatafocus/kvk_backend/utils"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// storeAPI saves straight through the report store, so the status rules are the server's own.
type storeAPI struct {
	actor   models.ReportActor
	submits int
}

func (a *storeAPI) CreateReport(ctx context.Context, in *models.NewReport) (*models.Report, error) {
	return models.CreateReport(ctx, a.actor, in)
}

func (a *storeAPI) UpdateReport(ctx context.Context, id int, in *models.NewReport) (*models.Report, error) {
	return models.UpdateReport(ctx, a.actor, id, in, nil)
}

func (a *storeAPI) SubmitReport(ctx context.Context, id int) (*models.Report, error) {
	a.submits++
	return models.SubmitReport(ctx, a.actor, id)
}

func seedActor(t *testing.T, db *gorm.DB, username string, role models.UserRole) models.ReportActor {
	t.Helper()
	u := &models.User{Username: username, Email: username + "@example.org", Password: "x", Role: role, IsActive: utils.NewTrue()}
	require.NoError(t, db.Create(u).Error)
	return models.ReportActor{UserID: u.ID, Role: role, Email: u.Email}
}

func TestEditAfterSubmitAgainstStore(t *testing.T) {
	t.Setenv("AUDIT_PUBSUB_TOPIC", "")
	db := testdb.Open(t, &models.User{}, &models.Report{}, &models.AuditLog{})
	owner := seedActor(t, db, "alice", models.UserRoleUser)
	admin := seedActor(t, db, "root", models.UserRoleAdmin)
	ctx := context.Background()

	api := &storeAPI{actor: owner}
	s := NewSubmitter(api, editingSession(t, 0))
	f := filledForm(t)

	out, err := s.Submit(ctx, f)
	require.NoError(t, err)
	require.Equal(t, models.ReportStatusSubmitted, out.Report.Status)
	id := out.Report.ID

	require.NoError(t, f.Set("kvk_name", "KVK Alpha Revised"))
	out, err = s.SaveDraft(ctx, f)
	require.NoError(t, err)
	require.False(t, out.Offline)
	require.Equal(t, models.ReportStatusSubmitted, out.Report.Status)
	require.Equal(t, "KVK Alpha Revised", out.Report.KvkName)

	// already submitted, so only the content is saved
	out, err = s.Submit(ctx, f)
	require.NoError(t, err)
	require.Equal(t, models.ReportStatusSubmitted, out.Report.Status)
	require.Equal(t, 1, api.submits)

	_, err = models.ReviewReport(ctx, admin, id, &models.ReviewInput{Status: models.ReportStatusApproved})
	require.NoError(t, err)

	_, err = s.SaveDraft(ctx, f)
	appErr := utils.AsAppError(err)
	require.Equal(t, utils.KindForbidden, appErr.Kind)
	require.Equal(t, "Cannot update approved reports", appErr.Message)
	require.Zero(t, s.Fallback.Len())
}
