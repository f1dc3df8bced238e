package sheets

import (
	"fmt"
	"io"
	"strings"

	"github.com/mmdatafocus/kvk_backend/models"
	"github.com/xuri/excelize/v2"
)

// SheetSpec describes one sheet of the structured annual-report workbook.
type SheetSpec struct {
	Name     string
	Cells    []CellBinding
	Labels   []LabelBinding
	Sections []sectionSpec
}

// CellBinding maps a fixed address such as B6.
type CellBinding struct {
	Addr  string
	Field Column
}

// LabelBinding maps a key/value row: the label sits in column B and the value in column C.
type LabelBinding struct {
	Label    string
	Contains bool
	Field    Column
}

func (l LabelBinding) matches(cell string) bool {
	cell = strings.TrimSpace(cell)
	if l.Contains {
		return cell != "" && strings.Contains(strings.ToLower(cell), strings.ToLower(l.Label))
	}
	return cell == l.Label
}

type sheetRow struct {
	N     int
	Cells []string
}

func (r sheetRow) at(col int) string {
	if col < len(r.Cells) {
		return strings.TrimSpace(r.Cells[col])
	}
	return ""
}

func (r sheetRow) blank() bool {
	for _, c := range r.Cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

type cellError func(row sheetRow, col int, err error)

type sectionSpec interface {
	name() string
	matches(row sheetRow) bool
	skipHeaderRow() bool
	apply(r *models.NewReport, body []sheetRow, fail cellError)
}

// SectionHead locates a section by the exact text of its title cell. A trailing
// parenthetical such as "(as on 1st January, 2023)" is tolerated.
type SectionHead struct {
	Name      string
	Header    string
	HeaderCol int
	HeaderRow bool
}

func (h SectionHead) name() string        { return h.Name }
func (h SectionHead) skipHeaderRow() bool { return h.HeaderRow }

func (h SectionHead) matches(row sheetRow) bool {
	cell := row.at(h.HeaderCol)
	return cell == h.Header || strings.HasPrefix(cell, h.Header+" (")
}

type TableColumn[T any] struct {
	Col   int
	Field Field[T]
}

// Table is a repeated-row section. A row becomes an entry only when its Anchor column is non-blank.
type Table[T any] struct {
	SectionHead
	Columns []TableColumn[T]
	Anchor  int
	Append  func(r *models.NewReport, row T)
}

func (t Table[T]) apply(r *models.NewReport, body []sheetRow, fail cellError) {
	for _, row := range body {
		if row.at(t.Anchor) == "" {
			continue
		}
		var item T
		for _, c := range t.Columns {
			if err := c.Field.assign(&item, row.at(c.Col)); err != nil {
				fail(row, c.Col, err)
			}
		}
		t.Append(r, item)
	}
}

// LabelSection applies label bindings to the rows of one section only.
type LabelSection struct {
	SectionHead
	Labels []LabelBinding
}

func (s LabelSection) apply(r *models.NewReport, body []sheetRow, fail cellError) {
	applyLabels(r, s.Labels, body, fail)
}

// Grid binds fixed offsets below the section header: Rows[i][j] is data row i, column j+1.
type Grid struct {
	SectionHead
	Rows [][]*Column
}

func (g Grid) apply(r *models.NewReport, body []sheetRow, fail cellError) {
	for i, bindings := range g.Rows {
		if i >= len(body) {
			return
		}
		for j, c := range bindings {
			if c == nil {
				continue
			}
			if err := c.assign(r, body[i].at(j+1)); err != nil {
				fail(body[i], j+1, err)
			}
		}
	}
}

func applyLabels(r *models.NewReport, labels []LabelBinding, rows []sheetRow, fail cellError) {
	for _, row := range rows {
		label := row.at(1)
		if label == "" || row.at(2) == "" {
			continue
		}
		for _, l := range labels {
			if !l.matches(label) {
				continue
			}
			if err := l.Field.assign(r, row.at(2)); err != nil {
				fail(row, 2, err)
			}
			break
		}
	}
}

func cellName(row sheetRow, col int) string {
	name, err := excelize.CoordinatesToCellName(col+1, row.N+1)
	if err != nil {
		return fmt.Sprintf("R%dC%d", row.N+1, col+1)
	}
	return name
}

// sectionBody returns the rows after a section title, up to the next recognised
// title or the first blank row.
func sectionBody(rows []sheetRow, start int, sec sectionSpec, all []sectionSpec) []sheetRow {
	i := start + 1
	if sec.skipHeaderRow() && i < len(rows) && !rows[i].blank() {
		i++
	}
	var body []sheetRow
	for ; i < len(rows); i++ {
		row := rows[i]
		if row.blank() {
			break
		}
		if isTitle(row, all) {
			break
		}
		body = append(body, row)
	}
	return body
}

func isTitle(row sheetRow, all []sectionSpec) bool {
	for _, s := range all {
		if s.matches(row) {
			return true
		}
	}
	return false
}

// ParseWorkbook reads the structured multi-sheet workbook. Missing sheets or
// sections and unparseable numeric cells are reported as warnings.
func ParseWorkbook(rd io.Reader) (*Result, error) {
	return parseWorkbook(rd, ReportWorkbook)
}

func parseWorkbook(rd io.Reader, specs []SheetSpec) (*Result, error) {
	f, err := openWorkbook(rd)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	present := map[string]bool{}
	for _, name := range f.GetSheetList() {
		present[name] = true
	}

	res := newResult()
	found := 0
	for _, sheet := range specs {
		if !present[sheet.Name] {
			res.warn(sheet.Name, "", "sheet %q not found", sheet.Name)
			continue
		}
		found++
		if err := parseSheet(f, sheet, res); err != nil {
			return nil, err
		}
	}
	if found == 0 {
		return nil, ErrEmptyWorkbook
	}
	res.Report.RecomputeDerived()
	return res, nil
}

func parseSheet(f *excelize.File, sheet SheetSpec, res *Result) error {
	for _, c := range sheet.Cells {
		raw, err := f.GetCellValue(sheet.Name, c.Addr, excelize.Options{RawCellValue: true})
		if err != nil {
			return err
		}
		if err := c.Field.assign(res.Report, raw); err != nil {
			res.warn(sheet.Name, "", "cell %s: %v; stored as 0", c.Addr, err)
		}
	}

	raw, err := sheetRows(f, sheet.Name)
	if err != nil {
		return err
	}
	rows := make([]sheetRow, len(raw))
	for i, cells := range raw {
		rows[i] = sheetRow{N: i, Cells: cells}
	}

	failIn := func(section string) cellError {
		return func(row sheetRow, col int, err error) {
			res.warn(sheet.Name, section, "cell %s: %v; stored as 0", cellName(row, col), err)
		}
	}

	if len(sheet.Labels) > 0 {
		applyLabels(res.Report, sheet.Labels, rows, failIn(""))
	}

	for _, sec := range sheet.Sections {
		start := -1
		for i, row := range rows {
			if sec.matches(row) {
				start = i
				break
			}
		}
		if start < 0 {
			res.warn(sheet.Name, sec.name(), "section %q not found", sec.name())
			continue
		}
		sec.apply(res.Report, sectionBody(rows, start, sec, sheet.Sections), failIn(sec.name()))
	}
	return nil
}
