package models

import (
	"context"
	"testing"

	"github.com/mmdatafocus/kvk_backend/internal/testdb"
	"github.com/mmdatafocus/kvk_backend/utils"
	"gorm.io/gorm"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	t.Setenv("AUDIT_PUBSUB_TOPIC", "")
	return testdb.Open(t, &User{}, &Report{}, &AuditLog{})
}

func seedUser(t *testing.T, db *gorm.DB, username string, role UserRole) ReportActor {
	t.Helper()
	hashed, err := utils.HashPassword("Secret123")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	u := User{
		Username: username,
		Email:    username + "@example.org",
		Password: string(hashed),
		Role:     role,
		KvkName:  "KVK " + username,
		IsActive: utils.NewTrue(),
	}
	if err := db.Create(&u).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return ReportActor{UserID: u.ID, Role: role, Email: u.Email}
}

func sampleReport(kvkName string) *NewReport {
	return &NewReport{
		ReportContent: ReportContent{
			KvkName:          kvkName,
			KvkAddress:       "Main Road",
			HostOrgName:      "State Agricultural University",
			HeadName:         "Dr. Rao",
			ReportPreparedBy: "Dr. Rao",
			LandDetails:      LandDetails{Buildings: 1.5, DemoUnits: 2, Crops: 10, Orchard: 3.5, Others: 1},
			CerealsDemo: []Demonstration{
				{Crop: "Paddy", DemoYield: 55, CheckYield: 44, PercentageIncrease: 999},
				{Crop: "Maize", DemoYield: 0, CheckYield: 30, PercentageIncrease: 7},
			},
		},
		ReportDate: "2024-03-31",
	}
}

func mustCreate(t *testing.T, actor ReportActor, kvkName string) *Report {
	t.Helper()
	r, err := CreateReport(context.Background(), actor, sampleReport(kvkName))
	if err != nil {
		t.Fatalf("CreateReport: %v", err)
	}
	return r
}

func countAudits(t *testing.T, db *gorm.DB, action AuditAction, resourceId int) int64 {
	t.Helper()
	var n int64
	if err := db.Model(&AuditLog{}).Where("action = ? AND resource_id = ?", action, resourceId).Count(&n).Error; err != nil {
		t.Fatalf("count audits: %v", err)
	}
	return n
}
