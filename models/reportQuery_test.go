package models

import (
	"context"
	"testing"
)

func TestListReportsScopesToOwner(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	userA := seedUser(t, db, "user_a", UserRoleUser)
	userB := seedUser(t, db, "user_b", UserRoleUser)
	admin := seedUser(t, db, "admin", UserRoleAdmin)

	for _, name := range []string{"Alpha KVK", "Beta KVK", "Gamma KVK"} {
		mustCreate(t, userA, name)
	}
	mustCreate(t, userB, "Delta KVK")

	list, err := ListReports(ctx, userA, ReportFilter{Limit: 2})
	if err != nil {
		t.Fatalf("ListReports: %v", err)
	}
	if list.Pagination.Total != 3 || list.Pagination.Pages != 2 || len(list.Reports) != 2 {
		t.Fatalf("unexpected pagination %+v with %d rows", list.Pagination, len(list.Reports))
	}
	for _, r := range list.Reports {
		if r.SubmittedBy != userA.UserID {
			t.Fatalf("user A saw report of user %d", r.SubmittedBy)
		}
	}

	all, err := ListReports(ctx, admin, ReportFilter{})
	if err != nil || all.Pagination.Total != 4 {
		t.Fatalf("admin list: %v %+v", err, all)
	}

	found, err := ListReports(ctx, admin, ReportFilter{Search: "gAmMa"})
	if err != nil || found.Pagination.Total != 1 || found.Reports[0].KvkName != "Gamma KVK" {
		t.Fatalf("search: %v %+v", err, found)
	}

	sorted, err := ListReports(ctx, admin, ReportFilter{SortBy: "kvkName", SortOrder: "asc"})
	if err != nil || sorted.Reports[0].KvkName != "Alpha KVK" {
		t.Fatalf("sort by kvkName: %v", err)
	}
}

func TestListReportsDateRange(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	owner := seedUser(t, db, "owner", UserRoleUser)

	for _, d := range []string{"2024-01-15", "2024-03-31", "2024-06-01"} {
		in := sampleReport("KVK " + d)
		in.ReportDate = d
		if _, err := CreateReport(ctx, owner, in); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	from, _ := ParseDateBound("2024-02-01", false)
	to, _ := ParseDateBound("2024-03-31", true)
	list, err := ListReports(ctx, owner, ReportFilter{DateFrom: from, DateTo: to})
	if err != nil {
		t.Fatalf("ListReports: %v", err)
	}
	if list.Pagination.Total != 1 || list.Reports[0].KvkName != "KVK 2024-03-31" {
		t.Fatalf("date range returned %+v", list.Pagination)
	}
}

func TestSummaryStats(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	owner := seedUser(t, db, "owner", UserRoleUser)
	r := mustCreate(t, owner, "One")
	mustCreate(t, owner, "Two")
	if _, err := SubmitReport(ctx, owner, r.ID); err != nil {
		t.Fatalf("submit: %v", err)
	}

	s, err := SummaryStats(ctx, owner)
	if err != nil {
		t.Fatalf("SummaryStats: %v", err)
	}
	if s.TotalReports != 2 || s.DraftReports != 1 || s.SubmittedReports != 1 || s.RecentReports != 2 {
		t.Fatalf("unexpected summary %+v", s)
	}
}
