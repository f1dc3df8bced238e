package sheets

import (
	"bytes"

	"github.com/xuri/excelize/v2"
)

const (
	TemplateSheet    = "KVK Report Template"
	TemplateFilename = "kvk_annual_report_template.xlsx"
	templateWidth    = 20
)

// GenerateTemplate builds a blank single-row workbook whose header row is exactly
// the set of columns ParseSingleRow recognises.
func GenerateTemplate() (*bytes.Buffer, error) {
	return writeHeaderWorkbook(TemplateSheet, ReportSchema.Headers(), func(string) float64 { return templateWidth })
}

func writeHeaderWorkbook(sheet string, headers []string, width func(header string) float64) (*bytes.Buffer, error) {
	f, err := newSheetFile(sheet)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if err := writeHeaderRow(f, sheet, headers, width); err != nil {
		return nil, err
	}
	return f.WriteToBuffer()
}

func newSheetFile(sheet string) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

func writeHeaderRow(f *excelize.File, sheet string, headers []string, width func(header string) float64) error {
	row := make([]interface{}, len(headers))
	for i, h := range headers {
		row[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &row); err != nil {
		return err
	}

	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	for i, h := range headers {
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, name, name, width(h)); err != nil {
			return err
		}
	}
	last, err := excelize.CoordinatesToCellName(len(headers), 1)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, "A1", last, style)
}
