package sheets

import (
	"fmt"
	"strings"

	"github.com/mmdatafocus/kvk_backend/models"
)

type Kind int

const (
	KindText Kind = iota
	KindInteger
	KindNumber
	KindOptionalInteger
	KindDate
)

func (k Kind) String() string {
	switch k {
	case KindInteger, KindOptionalInteger:
		return "integer"
	case KindNumber:
		return "number"
	case KindDate:
		return "date"
	}
	return "text"
}

// Warning reports a cell, sheet or section that could not be mapped.
type Warning struct {
	Sheet   string `json:"sheet,omitempty"`
	Section string `json:"section,omitempty"`
	Message string `json:"message"`
}

// Field binds one spreadsheet cell to a field of T through a typed accessor.
// Name is the full header for scalar columns and the suffix inside a numbered group.
type Field[T any] struct {
	Name string
	Path string
	Kind Kind

	text     func(*T) *string
	integer  func(*T) *int
	number   func(*T) *float64
	optional func(*T) **int
}

func textField[T any](name, path string, get func(*T) *string) Field[T] {
	return Field[T]{Name: name, Path: path, Kind: KindText, text: get}
}

func dateField[T any](name, path string, get func(*T) *string) Field[T] {
	return Field[T]{Name: name, Path: path, Kind: KindDate, text: get}
}

func intField[T any](name, path string, get func(*T) *int) Field[T] {
	return Field[T]{Name: name, Path: path, Kind: KindInteger, integer: get}
}

func numField[T any](name, path string, get func(*T) *float64) Field[T] {
	return Field[T]{Name: name, Path: path, Kind: KindNumber, number: get}
}

func optIntField[T any](name, path string, get func(*T) **int) Field[T] {
	return Field[T]{Name: name, Path: path, Kind: KindOptionalInteger, optional: get}
}

// assign stores raw into dst. Numeric fields that fail to parse are set to zero
// and the error is returned so the caller can record a warning.
func (f Field[T]) assign(dst *T, raw string) error {
	raw = strings.TrimSpace(raw)
	switch f.Kind {
	case KindText:
		*f.text(dst) = raw
	case KindDate:
		*f.text(dst) = normalizeDate(raw)
	case KindInteger:
		n, err := parseInteger(raw)
		*f.integer(dst) = n
		return err
	case KindNumber:
		n, err := parseNumber(raw)
		*f.number(dst) = n
		return err
	case KindOptionalInteger:
		if raw == "" {
			*f.optional(dst) = nil
			return nil
		}
		n, err := parseInteger(raw)
		if err != nil {
			*f.optional(dst) = nil
			return err
		}
		*f.optional(dst) = &n
	}
	return nil
}

// Column is a fixed header in the single-row template.
type Column = Field[models.NewReport]

// Group is a numbered block of columns such as "Staff 3 Name". Rows whose anchor
// cell is blank are skipped; indexes are not preserved.
type Group[T any] struct {
	Prefix string
	Max    int
	Fields []Field[T]
	Anchor string
	Append func(r *models.NewReport, index int, row T)
}

func (g Group[T]) header(i int, f Field[T]) string {
	if f.Name == "" {
		return fmt.Sprintf("%s %d", g.Prefix, i)
	}
	return fmt.Sprintf("%s %d %s", g.Prefix, i, f.Name)
}

func (g Group[T]) anchorField() Field[T] {
	for _, f := range g.Fields {
		if f.Name == g.Anchor {
			return f
		}
	}
	return g.Fields[0]
}

func (g Group[T]) headers() []string {
	out := make([]string, 0, g.Max*len(g.Fields))
	for i := 1; i <= g.Max; i++ {
		for _, f := range g.Fields {
			out = append(out, g.header(i, f))
		}
	}
	return out
}

func (g Group[T]) docs() []ColumnDoc {
	docs := make([]ColumnDoc, 0, len(g.Fields))
	for _, f := range g.Fields {
		docs = append(docs, ColumnDoc{
			Header: g.header(1, f) + fmt.Sprintf(" .. %d", g.Max),
			Path:   f.Path,
			Kind:   f.Kind.String(),
			Anchor: f.Name == g.Anchor,
		})
	}
	return docs
}

func (g Group[T]) extract(r *models.NewReport, cell func(header string) (string, bool), warn func(header string, err error)) {
	anchor := g.anchorField()
	for i := 1; i <= g.Max; i++ {
		if v, _ := cell(g.header(i, anchor)); strings.TrimSpace(v) == "" {
			continue
		}
		var row T
		for _, f := range g.Fields {
			raw, ok := cell(g.header(i, f))
			if !ok {
				continue
			}
			if err := f.assign(&row, raw); err != nil {
				warn(g.header(i, f), err)
			}
		}
		g.Append(r, i, row)
	}
}

type groupSpec interface {
	headers() []string
	docs() []ColumnDoc
	extract(r *models.NewReport, cell func(header string) (string, bool), warn func(header string, err error))
}

// ColumnDoc describes one template column for operators.
type ColumnDoc struct {
	Header string `json:"header" yaml:"header"`
	Path   string `json:"path" yaml:"path"`
	Kind   string `json:"kind" yaml:"kind"`
	Anchor bool   `json:"anchor,omitempty" yaml:"anchor,omitempty"`
}

type Schema struct {
	Columns []Column
	Groups  []groupSpec
}

// Headers lists every column the single-row import recognises, in template order.
func (s Schema) Headers() []string {
	out := make([]string, 0, len(s.Columns))
	for _, c := range s.Columns {
		out = append(out, c.Name)
	}
	for _, g := range s.Groups {
		out = append(out, g.headers()...)
	}
	return out
}

func (s Schema) Describe() []ColumnDoc {
	out := make([]ColumnDoc, 0, len(s.Columns))
	for _, c := range s.Columns {
		out = append(out, ColumnDoc{Header: c.Name, Path: c.Path, Kind: c.Kind.String()})
	}
	for _, g := range s.Groups {
		out = append(out, g.docs()...)
	}
	return out
}
