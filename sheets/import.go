package sheets

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/mmdatafocus/kvk_backend/models"
	"github.com/xuri/excelize/v2"
)

var ErrEmptyWorkbook = errors.New("Excel file is empty or invalid format")

// Result is what an import recovers from a workbook. The record is never persisted here.
type Result struct {
	Report   *models.NewReport `json:"report"`
	Warnings []Warning         `json:"warnings"`
}

func (r *Result) warn(sheet, section, format string, args ...any) {
	r.Warnings = append(r.Warnings, Warning{Sheet: sheet, Section: section, Message: fmt.Sprintf(format, args...)})
}

func openWorkbook(rd io.Reader) (*excelize.File, error) {
	f, err := excelize.OpenReader(rd)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	return f, nil
}

func sheetRows(f *excelize.File, sheet string) ([][]string, error) {
	return f.GetRows(sheet, excelize.Options{RawCellValue: true})
}

func newResult() *Result {
	return &Result{Report: &models.NewReport{}, Warnings: []Warning{}}
}

// ParseSingleRow reads the flat template: a header row followed by one data row on the first sheet.
// Blank rows before either are skipped.
func ParseSingleRow(rd io.Reader) (*Result, error) {
	f, err := openWorkbook(rd)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptyWorkbook
	}
	rows, err := sheetRows(f, sheets[0])
	if err != nil {
		return nil, err
	}
	headerAt := firstFilledRow(rows, 0)
	dataAt := firstFilledRow(rows, headerAt+1)
	if headerAt < 0 || dataAt < 0 {
		return nil, ErrEmptyWorkbook
	}
	header, data := rows[headerAt], rows[dataAt]

	values := map[string]string{}
	for i, h := range header {
		h = strings.TrimSpace(h)
		if h == "" {
			continue
		}
		if _, seen := values[h]; seen {
			continue
		}
		if i < len(data) {
			values[h] = data[i]
		} else {
			values[h] = ""
		}
	}
	if len(values) == 0 {
		return nil, ErrEmptyWorkbook
	}

	res := newResult()
	applyRow(ReportSchema, res, sheets[0], values)
	return res, nil
}

// firstFilledRow returns the index of the first row at or after from with a non-blank cell, or -1.
func firstFilledRow(rows [][]string, from int) int {
	if from < 0 {
		return -1
	}
	for i := from; i < len(rows); i++ {
		for _, v := range rows[i] {
			if strings.TrimSpace(v) != "" {
				return i
			}
		}
	}
	return -1
}

func applyRow(schema Schema, res *Result, sheet string, values map[string]string) {
	cell := func(header string) (string, bool) {
		v, ok := values[header]
		return v, ok
	}
	warn := func(header string, err error) {
		res.warn(sheet, header, "%v; stored as 0", err)
	}
	for _, c := range schema.Columns {
		raw, ok := cell(c.Name)
		if !ok {
			continue
		}
		if err := c.assign(res.Report, raw); err != nil {
			warn(c.Name, err)
		}
	}
	for _, g := range schema.Groups {
		g.extract(res.Report, cell, warn)
	}
}
