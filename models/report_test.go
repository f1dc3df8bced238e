package models

import (
	"context"
	"encoding/json"
	"math"
	"testing"
)

func TestDemonstrationRecomputeIncrease(t *testing.T) {
	cases := []struct {
		name string
		in   Demonstration
		want float64
	}{
		{"both positive", Demonstration{DemoYield: 55, CheckYield: 44, PercentageIncrease: 1}, 25},
		{"decrease", Demonstration{DemoYield: 30, CheckYield: 40}, -25},
		{"missing check keeps value", Demonstration{DemoYield: 30, CheckYield: 0, PercentageIncrease: 12}, 12},
		{"missing demo keeps value", Demonstration{DemoYield: 0, CheckYield: 20, PercentageIncrease: 3}, 3},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := tc.in
			d.RecomputeIncrease()
			if math.Abs(d.PercentageIncrease-tc.want) > 1e-9 {
				t.Fatalf("PercentageIncrease = %v, want %v", d.PercentageIncrease, tc.want)
			}
		})
	}
}

func TestReportPersistRecomputesDerivedFields(t *testing.T) {
	db := setupDB(t)
	owner := seedUser(t, db, "owner", UserRoleUser)
	created := mustCreate(t, owner, "Test KVK")

	var stored Report
	if err := db.First(&stored, created.ID).Error; err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := stored.CerealsDemo[0].PercentageIncrease; got != 25 {
		t.Fatalf("paddy increase = %v, want 25", got)
	}
	if got := stored.CerealsDemo[1].PercentageIncrease; got != 7 {
		t.Fatalf("maize increase should be untouched, got %v", got)
	}

	input := sampleReport("Test KVK")
	input.CerealsDemo[0].DemoYield = 66
	updated, err := UpdateReport(context.Background(), owner, created.ID, input, nil)
	if err != nil {
		t.Fatalf("UpdateReport: %v", err)
	}
	if got := updated.CerealsDemo[0].PercentageIncrease; got != 50 {
		t.Fatalf("after update increase = %v, want 50", got)
	}
}

func TestReportTotalLandIsDerived(t *testing.T) {
	db := setupDB(t)
	if db.Migrator().HasColumn(&Report{}, "total_land") {
		t.Fatalf("total_land must not be stored")
	}
	owner := seedUser(t, db, "owner", UserRoleUser)
	created := mustCreate(t, owner, "Land KVK")

	report, err := GetReport(context.Background(), owner, created.ID)
	if err != nil {
		t.Fatalf("GetReport: %v", err)
	}
	raw, err := json.Marshal(report)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out["totalLand"] != 18.0 {
		t.Fatalf("totalLand = %v, want 18", out["totalLand"])
	}
	if _, ok := out["staff"].([]any); !ok {
		t.Fatalf("empty sub-tables should serialise as arrays, got %T", out["staff"])
	}
}

func TestNewReportValidate(t *testing.T) {
	in := sampleReport("")
	in.ReportDate = "not a date"
	in.Staff = []StaffMember{{Name: "A", Status: "Permanent", Category: "Alien"}}
	in.Infra = []Infrastructure{{Name: "Lab", Status: "Totally completed", UnderUse: "Maybe"}}

	err := in.Validate()
	if err == nil {
		t.Fatalf("expected validation error")
	}
	appErr := asApp(t, err)
	fields := map[string]bool{}
	for _, f := range appErr.Errors {
		fields[f.Field] = true
	}
	for _, want := range []string{"kvkName", "reportDate", "staff[0].category", "infrastructure[0].underUse"} {
		if !fields[want] {
			t.Fatalf("missing field error %q in %+v", want, appErr.Errors)
		}
	}
	if fields["staff[0].status"] {
		t.Fatalf("valid status reported as invalid")
	}
}
