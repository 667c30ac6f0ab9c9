package render

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Placeholder replaces null or missing table cells.
const Placeholder = "-"

var viPrinter = message.NewPrinter(language.Vietnamese)

// FormatNumber formats v with vi-VN grouping and at most maxFraction fraction digits.
func FormatNumber(v float64, maxFraction int) string {
	return viPrinter.Sprint(number.Decimal(v,
		number.MinFractionDigits(0),
		number.MaxFractionDigits(maxFraction),
	))
}

// FormatDecimal formats d rounded to two places with vi-VN grouping.
func FormatDecimal(d decimal.Decimal) string {
	return FormatNumber(d.Round(2).InexactFloat64(), 2)
}

// FormatFixed formats v with exactly two fraction digits.
func FormatFixed(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// FormatCell formats a table cell; nil renders as the placeholder.
func FormatCell(v *float64) string {
	if v == nil {
		return Placeholder
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	time.RFC1123Z,
	time.RFC1123,
	"2006-01-02",
}

func parseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatDate renders a timestamp as d/m/yyyy; unparseable input is returned as-is.
func FormatDate(s string) string {
	t, ok := parseTime(s)
	if !ok {
		return s
	}
	return t.Format("2/1/2006")
}

// FormatDateTime renders a timestamp as HH:MM:SS d/m/yyyy; unparseable input is returned as-is.
func FormatDateTime(s string) string {
	t, ok := parseTime(s)
	if !ok {
		return s
	}
	return t.Format("15:04:05 2/1/2006")
}
