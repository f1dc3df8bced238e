package formengine

import (
	"strconv"
	"strings"

	"github.com/mmdatafocus/kvk_backend/utils"
	"github.com/shopspring/decimal"
)

// Kind decides how an input is parsed, formatted and rendered.
type Kind int

const (
	KindText Kind = iota
	KindLongText
	KindDate
	KindInteger
	KindNumber
	KindOptionalInteger
	KindLines
)

func (k Kind) inputType() string {
	switch k {
	case KindDate:
		return "date"
	case KindInteger, KindNumber, KindOptionalInteger:
		return "number"
	}
	return "text"
}

func (k Kind) multiline() bool {
	return k == KindLongText || k == KindLines
}

// accessor reads and writes one field of T as form text.
type accessor[T any] struct {
	kind     Kind
	text     func(*T) *string
	integer  func(*T) *int
	number   func(*T) *float64
	optional func(*T) **int
	lines    func(*T) *[]string
}

func (a accessor[T]) format(v *T) string {
	switch a.kind {
	case KindText, KindLongText, KindDate:
		return *a.text(v)
	case KindInteger:
		return strconv.Itoa(*a.integer(v))
	case KindNumber:
		return decimal.NewFromFloat(*a.number(v)).String()
	case KindOptionalInteger:
		if p := *a.optional(v); p != nil {
			return strconv.Itoa(*p)
		}
		return ""
	case KindLines:
		return strings.Join(*a.lines(v), "\n")
	}
	return ""
}

// assign never fails on numbers: blank or unparseable input stores 0.
func (a accessor[T]) assign(v *T, raw string) {
	raw = strings.TrimSpace(raw)
	switch a.kind {
	case KindText, KindLongText, KindDate:
		*a.text(v) = raw
	case KindInteger:
		*a.integer(v) = int(parseNumber(raw).IntPart())
	case KindNumber:
		*a.number(v) = parseNumber(raw).InexactFloat64()
	case KindOptionalInteger:
		if raw == "" {
			*a.optional(v) = nil
			return
		}
		n := int(parseNumber(raw).IntPart())
		*a.optional(v) = &n
	case KindLines:
		out := []string{}
		for _, line := range strings.Split(raw, "\n") {
			if line = strings.TrimSpace(line); line != "" {
				out = append(out, line)
			}
		}
		*a.lines(v) = out
	}
}

// validDate reports whether a non-blank date input is YYYY-MM-DD (or another accepted report date form).
func (a accessor[T]) validDate(raw string) bool {
	raw = strings.TrimSpace(raw)
	if a.kind != KindDate || raw == "" {
		return true
	}
	_, err := utils.ParseReportDate(raw)
	return err == nil
}

func parseNumber(raw string) decimal.Decimal {
	raw = strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	if raw == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func textOf[T any](p func(*T) *string) accessor[T] {
	return accessor[T]{kind: KindText, text: p}
}

func longTextOf[T any](p func(*T) *string) accessor[T] {
	return accessor[T]{kind: KindLongText, text: p}
}

func dateOf[T any](p func(*T) *string) accessor[T] {
	return accessor[T]{kind: KindDate, text: p}
}

func intOf[T any](p func(*T) *int) accessor[T] {
	return accessor[T]{kind: KindInteger, integer: p}
}

func numOf[T any](p func(*T) *float64) accessor[T] {
	return accessor[T]{kind: KindNumber, number: p}
}

func optIntOf[T any](p func(*T) **int) accessor[T] {
	return accessor[T]{kind: KindOptionalInteger, optional: p}
}

func linesOf[T any](p func(*T) *[]string) accessor[T] {
	return accessor[T]{kind: KindLines, lines: p}
}
