package models

import (
	"strings"
	"testing"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// mysqlDryRun builds MySQL statements without a server and records the SQL of every query.
func mysqlDryRun(t *testing.T) (*gorm.DB, *[]string) {
	t.Helper()
	db, err := gorm.Open(mysql.New(mysql.Config{
		DSN:                       "kvk:kvk@tcp(127.0.0.1:3306)/kvk?parseTime=true",
		SkipInitializeWithVersion: true,
	}), &gorm.Config{DryRun: true, DisableAutomaticPing: true})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	sqlDB, _ := db.DB()
	t.Cleanup(func() { _ = sqlDB.Close() })

	var statements []string
	err = db.Callback().Query().After("gorm:query").Register("test:capture", func(tx *gorm.DB) {
		statements = append(statements, tx.Statement.SQL.String())
	})
	if err != nil {
		t.Fatalf("register callback: %v", err)
	}
	return db, &statements
}

func TestReportReadsDoNotLock(t *testing.T) {
	db, statements := mysqlDryRun(t)

	_, _ = loadReport(db, 7)
	_, _ = findReport(db, 7)

	if len(*statements) != 2 {
		t.Fatalf("captured %d statements", len(*statements))
	}
	if read := (*statements)[0]; strings.Contains(read, "FOR UPDATE") {
		t.Fatalf("plain read locks the row: %s", read)
	}
	if locked := (*statements)[1]; !strings.Contains(locked, "FOR UPDATE") {
		t.Fatalf("transition read does not lock: %s", locked)
	}
}
