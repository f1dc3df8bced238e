package reports

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/mmdatafocus/kvk_backend/internal/testdb"
	"github.com/mmdatafocus/kvk_backend/models"
	"github.com/mmdatafocus/kvk_backend/utils"
	"gorm.io/gorm"
)

func seedActor(t *testing.T, db *gorm.DB, username string, role models.UserRole, kvk string) models.ReportActor {
	t.Helper()
	u := models.User{Username: username, Email: username + "@example.org", Password: "x", Role: role, KvkName: kvk, IsActive: utils.NewTrue()}
	if err := db.Create(&u).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return models.ReportActor{UserID: u.ID, Role: role, Email: u.Email}
}

func seedReport(t *testing.T, actor models.ReportActor, oftFarmers, fldFarmers, courses, fldDemos int) *models.Report {
	t.Helper()
	in := &models.NewReport{
		ReportContent: models.ReportContent{
			KvkName: "Dash KVK", KvkAddress: "Road", HostOrgName: "SAU", HeadName: "Head", ReportPreparedBy: "Head",
			TechnicalAchievements: models.TechnicalAchievements{
				Oft:      models.OftTargets{FarmersTarget: oftFarmers},
				Fld:      models.FldTargets{FarmersTarget: fldFarmers, NumberAchievement: fldDemos},
				Training: models.TrainingTargets{CoursesAchievement: courses},
			},
		},
		ReportDate: "2024-03-31",
	}
	r, err := models.CreateReport(context.Background(), actor, in)
	if err != nil {
		t.Fatalf("CreateReport: %v", err)
	}
	return r
}

func TestDashboardStats(t *testing.T) {
	t.Setenv("ENABLE_REPORT_CACHE", "")
	db := testdb.Open(t, &models.User{}, &models.Report{}, &models.AuditLog{})
	ctx := context.Background()
	owner := seedActor(t, db, "owner", models.UserRoleUser, "North KVK")
	other := seedActor(t, db, "other", models.UserRoleUser, "South KVK")
	admin := seedActor(t, db, "admin", models.UserRoleAdmin, "")

	r := seedReport(t, owner, 100, 50, 4, 7)
	seedReport(t, owner, 10, 5, 1, 2)
	seedReport(t, other, 1000, 1000, 100, 100)
	if _, err := models.SubmitReport(ctx, owner, r.ID); err != nil {
		t.Fatalf("submit: %v", err)
	}

	stats, err := DashboardStats(ctx, owner)
	if err != nil {
		t.Fatalf("DashboardStats: %v", err)
	}
	if stats.TotalReports != 2 || stats.DraftReports != 1 || stats.SubmittedReports != 1 {
		t.Fatalf("counts: %+v", stats)
	}
	if stats.TotalFarmersReached != 165 || stats.TotalTrainingPrograms != 5 || stats.TotalDemonstrations != 9 {
		t.Fatalf("sums: farmers=%d training=%d demos=%d", stats.TotalFarmersReached, stats.TotalTrainingPrograms, stats.TotalDemonstrations)
	}
	if len(stats.RecentActivity) != 2 || stats.RecentActivity[0].SubmittedBy == nil || stats.RecentActivity[0].SubmittedBy.Username != "owner" {
		t.Fatalf("recent activity: %+v", stats.RecentActivity)
	}

	again, err := DashboardStats(ctx, owner)
	if err != nil {
		t.Fatalf("DashboardStats again: %v", err)
	}
	if diff := cmp.Diff(stats, again); diff != "" {
		t.Fatalf("dashboard stats not idempotent (-first +second):\n%s", diff)
	}

	all, err := DashboardStats(ctx, admin)
	if err != nil || all.TotalReports != 3 {
		t.Fatalf("admin stats: %v %+v", err, all)
	}
}

func TestDashboardStatsEmpty(t *testing.T) {
	db := testdb.Open(t, &models.User{}, &models.Report{}, &models.AuditLog{})
	owner := seedActor(t, db, "owner", models.UserRoleUser, "")

	stats, err := DashboardStats(context.Background(), owner)
	if err != nil {
		t.Fatalf("DashboardStats: %v", err)
	}
	if stats.TotalReports != 0 || stats.TotalFarmersReached != 0 || stats.RecentActivity == nil {
		t.Fatalf("empty stats: %+v", stats)
	}
}

func TestSystemOverview(t *testing.T) {
	db := testdb.Open(t, &models.User{}, &models.Report{}, &models.AuditLog{})
	ctx := context.Background()
	a := seedActor(t, db, "a", models.UserRoleUser, "North KVK")
	seedActor(t, db, "b", models.UserRoleUser, "North KVK")
	c := seedActor(t, db, "c", models.UserRoleKvkHead, "South KVK")
	seedActor(t, db, "admin", models.UserRoleAdmin, "")
	if err := db.Model(&models.User{}).Where("id = ?", c.UserID).Update("is_active", false).Error; err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	seedReport(t, a, 10, 20, 3, 0)

	o, err := SystemOverview(ctx)
	if err != nil {
		t.Fatalf("SystemOverview: %v", err)
	}
	want := SystemOverviewResponse{TotalUsers: 4, ActiveUsers: 3, TotalKVKs: 2, TotalFarmersImpacted: 30, TotalTrainingConducted: 3}
	if *o != want {
		t.Fatalf("overview = %+v, want %+v", *o, want)
	}
}

func TestBucketTrends(t *testing.T) {
	at := func(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 10, 0, 0, 0, time.UTC) }
	rows := []trendRow{
		{at(2024, 3, 2), models.ReportStatusApproved},
		{at(2023, 12, 30), models.ReportStatusSubmitted},
		{at(2024, 3, 20), models.ReportStatusDraft},
		{at(2024, 3, 21), models.ReportStatusSubmitted},
	}
	got := bucketTrends(rows)
	want := []TrendBucket{
		{Year: 2023, Month: 12, Count: 1, Submitted: 1},
		{Year: 2024, Month: 3, Count: 3, Submitted: 1, Approved: 1},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("bucketTrends = %+v, want %+v", got, want)
	}
	if clampMonths(0) != 12 || clampMonths(100) != 60 || clampMonths(6) != 6 {
		t.Fatalf("clampMonths bounds")
	}
}
