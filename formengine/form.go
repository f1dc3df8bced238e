package formengine

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mmdatafocus/kvk_backend/models"
	"github.com/mmdatafocus/kvk_backend/utils"
)

var (
	ErrUnknownInput  = errors.New("unknown form input")
	ErrUnknownTable  = errors.New("unknown row table")
	ErrRowOutOfRange = errors.New("row out of range")
)

const requiredMessage = "Please fill in all required fields marked with *"

// Form is the flat input state of one report editor: input identifier to raw text, plus a row count per table.
type Form struct {
	// Version is the report version the form was populated from; nil for new reports.
	Version *int

	values map[string]string
	rows   map[string]int
}

// NewForm returns an empty form with the initial rows (staff, infrastructure, equipment) in place.
func NewForm() *Form {
	f := &Form{values: map[string]string{}, rows: map[string]int{}}
	for _, t := range RowTables {
		for n := 1; n <= t.Initial(); n++ {
			f.rows[t.Prefix()] = n
			for suffix, v := range t.defaults(n) {
				f.values[RowInput(t, suffix, n)] = v
			}
		}
	}
	return f
}

func trimmed(s string) string { return strings.TrimSpace(s) }

// Set stores raw text for a scalar input or an existing row input.
func (f *Form) Set(input, value string) error {
	if _, ok := LookupByInput(input); ok {
		f.values[input] = value
		return nil
	}
	t, _, n, ok := LookupRowInput(input)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownInput, input)
	}
	if n > f.rows[t.Prefix()] {
		return fmt.Errorf("%w: %s", ErrRowOutOfRange, input)
	}
	f.values[input] = value
	return nil
}

func (f *Form) Value(input string) string {
	return f.values[input]
}

func (f *Form) Rows(prefix string) int {
	return f.rows[prefix]
}

// AddRow appends an empty row and returns its number.
func (f *Form) AddRow(prefix string) (int, error) {
	if _, ok := TableByPrefix(prefix); !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownTable, prefix)
	}
	f.rows[prefix]++
	return f.rows[prefix], nil
}

// DeleteRow removes row n and renumbers the rows after it so numbering stays contiguous.
func (f *Form) DeleteRow(prefix string, n int) error {
	t, ok := TableByPrefix(prefix)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTable, prefix)
	}
	count := f.rows[prefix]
	if n < 1 || n > count {
		return fmt.Errorf("%w: %s row %d of %d", ErrRowOutOfRange, prefix, n, count)
	}
	for _, field := range t.Fields() {
		for i := n; i < count; i++ {
			next := RowInput(t, field.Suffix, i+1)
			if v, ok := f.values[next]; ok {
				f.values[RowInput(t, field.Suffix, i)] = v
			} else {
				delete(f.values, RowInput(t, field.Suffix, i))
			}
		}
		delete(f.values, RowInput(t, field.Suffix, count))
	}
	f.rows[prefix] = count - 1
	return nil
}

func (f *Form) rowCells(t RowTable, n int) map[string]string {
	cells := make(map[string]string, len(t.Fields()))
	for _, field := range t.Fields() {
		cells[field.Suffix] = f.values[RowInput(t, field.Suffix, n)]
	}
	return cells
}

func (f *Form) tableRows(t RowTable) []map[string]string {
	rows := make([]map[string]string, f.rows[t.Prefix()])
	for i := range rows {
		rows[i] = f.rowCells(t, i+1)
	}
	return rows
}

// Validate reports every required input left blank, by input identifier.
func (f *Form) Validate() error {
	var missing []utils.FieldError
	for _, b := range Bindings {
		if b.Required && trimmed(f.values[b.Input]) == "" {
			missing = append(missing, utils.FieldError{Field: b.Input, Message: b.Label + " is required"})
		}
	}
	if len(missing) > 0 {
		return utils.NewValidationError(requiredMessage, missing...)
	}
	return nil
}

// Extract builds the nested record. Numeric inputs that are blank or unparseable become 0 and
// all-blank rows are dropped; only malformed dates are rejected.
func (f *Form) Extract() (*models.NewReport, error) {
	r := &models.NewReport{Version: f.Version}
	var bad []utils.FieldError
	for _, b := range Bindings {
		raw := f.values[b.Input]
		if !b.validDate(raw) {
			bad = append(bad, utils.FieldError{Field: b.Input, Message: "Please provide a valid date"})
			continue
		}
		b.Set(r, raw)
	}
	for _, t := range RowTables {
		rows := f.tableRows(t)
		for i, cells := range rows {
			for _, field := range t.Fields() {
				if field.Kind != KindDate || trimmed(cells[field.Suffix]) == "" {
					continue
				}
				if _, err := utils.ParseReportDate(trimmed(cells[field.Suffix])); err != nil {
					bad = append(bad, utils.FieldError{Field: RowInput(t, field.Suffix, i+1), Message: "Please provide a valid date"})
					cells[field.Suffix] = ""
				}
			}
		}
		t.extract(rows, r)
	}
	if len(bad) > 0 {
		return nil, utils.NewValidationError("", bad...)
	}
	return r, nil
}

// Populate replaces the form state with r through the same bindings Extract reads.
func (f *Form) Populate(r *models.NewReport) {
	f.values = map[string]string{}
	f.rows = map[string]int{}
	f.Version = r.Version
	for _, b := range Bindings {
		if v := b.Get(r); v != "" {
			f.values[b.Input] = v
		}
	}
	for _, t := range RowTables {
		rows := t.populate(r)
		f.rows[t.Prefix()] = len(rows)
		for i, cells := range rows {
			for suffix, v := range cells {
				if v != "" {
					f.values[RowInput(t, suffix, i+1)] = v
				}
			}
		}
	}
}

// EditInput converts a stored report into the payload shape the form edits.
func EditInput(r *models.Report) *models.NewReport {
	version := r.Version
	return &models.NewReport{
		ReportContent: r.ReportContent,
		ReportDate:    r.ReportDate.Format("2006-01-02"),
		Status:        r.Status,
		Version:       &version,
	}
}
