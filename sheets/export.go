package sheets

import (
	"bytes"
	"fmt"
	"time"

	"github.com/mmdatafocus/kvk_backend/models"
	"github.com/xuri/excelize/v2"
)

const ExportSheet = "Reports"

type exportColumn struct {
	Header string
	Value  func(r *models.Report) interface{}
}

var exportColumns = []exportColumn{
	{"Report ID", func(r *models.Report) interface{} { return r.ID }},
	{"KVK Name", func(r *models.Report) interface{} { return r.KvkName }},
	{"Address", func(r *models.Report) interface{} { return r.KvkAddress }},
	{"Host Organization", func(r *models.Report) interface{} { return r.HostOrgName }},
	{"Senior Scientist", func(r *models.Report) interface{} { return r.HeadName }},
	{"Status", func(r *models.Report) interface{} { return string(r.Status) }},
	{"Report Date", func(r *models.Report) interface{} { return dateOnly(r.ReportDate) }},
	{"Submitted By", func(r *models.Report) interface{} {
		if r.SubmittedByUser != nil {
			return r.SubmittedByUser.Username
		}
		return ""
	}},
	{"Created Date", func(r *models.Report) interface{} { return dateOnly(r.CreatedAt) }},
	{"OFT Target", func(r *models.Report) interface{} { return r.TechnicalAchievements.Oft.NumberTarget }},
	{"OFT Achievement", func(r *models.Report) interface{} { return r.TechnicalAchievements.Oft.NumberAchievement }},
	{"FLD Target", func(r *models.Report) interface{} { return r.TechnicalAchievements.Fld.NumberTarget }},
	{"FLD Achievement", func(r *models.Report) interface{} { return r.TechnicalAchievements.Fld.NumberAchievement }},
	{"Training Courses", func(r *models.Report) interface{} { return r.TechnicalAchievements.Training.CoursesAchievement }},
	{"Training Participants", func(r *models.Report) interface{} { return r.TechnicalAchievements.Training.ParticipantsAchievement }},
}

func dateOnly(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.DateOnly)
}

func ExportHeaders() []string {
	out := make([]string, len(exportColumns))
	for i, c := range exportColumns {
		out[i] = c.Header
	}
	return out
}

// ExportFilename is kvk_reports_YYYY-MM-DD.xlsx for the given day.
func ExportFilename(now time.Time) string {
	return fmt.Sprintf("kvk_reports_%s.xlsx", now.UTC().Format(time.DateOnly))
}

// ExportReports writes one summary row per report in the order given.
// SubmittedByUser should be attached by the caller for the "Submitted By" column.
func ExportReports(reports []*models.Report) (*bytes.Buffer, error) {
	f, err := newSheetFile(ExportSheet)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	width := func(h string) float64 { return float64(max(len(h), 15)) }
	if err := writeHeaderRow(f, ExportSheet, ExportHeaders(), width); err != nil {
		return nil, err
	}

	for i, r := range reports {
		row := make([]interface{}, len(exportColumns))
		for j, c := range exportColumns {
			row[j] = c.Value(r)
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(ExportSheet, cell, &row); err != nil {
			return nil, err
		}
	}
	return f.WriteToBuffer()
}
