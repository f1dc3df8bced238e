package sheets

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/mmdatafocus/kvk_backend/utils"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

var leadingNumber = regexp.MustCompile(`^[-+]?(\d+\.?\d*|\.\d+)([eE][-+]?\d+)?`)

// cleanNumeric drops thousands separators and any trailing unit ("1,250.5 ha" -> "1250.5").
func cleanNumeric(raw string) (string, bool) {
	s := strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	s = strings.TrimPrefix(s, "₹")
	s = strings.TrimSpace(s)
	m := leadingNumber.FindString(s)
	return m, m != ""
}

func parseDecimal(raw string) (decimal.Decimal, error) {
	if strings.TrimSpace(raw) == "" {
		return decimal.Zero, nil
	}
	s, ok := cleanNumeric(raw)
	if !ok {
		return decimal.Zero, fmt.Errorf("%q is not a number", raw)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%q is not a number", raw)
	}
	return d, nil
}

func parseNumber(raw string) (float64, error) {
	d, err := parseDecimal(raw)
	if err != nil {
		return 0, err
	}
	f, _ := d.Float64()
	return f, nil
}

// parseInteger truncates fractional input; spreadsheets often store counts as 12.0.
func parseInteger(raw string) (int, error) {
	d, err := parseDecimal(raw)
	if err != nil {
		return 0, err
	}
	return int(d.IntPart()), nil
}

// normalizeDate converts a raw Excel serial to YYYY-MM-DD and leaves other text alone.
func normalizeDate(raw string) string {
	if raw == "" {
		return ""
	}
	if _, err := utils.ParseReportDate(raw); err == nil {
		return raw
	}
	d, err := decimal.NewFromString(raw)
	if err != nil || !d.IsPositive() {
		return raw
	}
	serial, _ := d.Float64()
	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return raw
	}
	return t.UTC().Format(time.DateOnly)
}
