package validation

import (
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// IsoDateLayout is the wire form of every date of birth sent downstream.
const IsoDateLayout = "2006-01-02"

// dateLayouts are tried in order before the lenient fallback. Day-first
// forms come before anything month-first.
var dateLayouts = []string{
	IsoDateLayout,
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
	"2-1-2006",
	"02.01.2006",
	"2.1.2006",
	"02/01/06",
	"2/1/06",
	"02-01-06",
	"2-1-06",
	"02.01.06",
	"2.1.06",
	"2006/01/02",
	"2006.01.02",
	"2 January 2006",
	"2 Jan 2006",
	"January 2, 2006",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
}

// ParseDate parses a date-of-birth cell. Explicit layouts win. Purely numeric
// input that none of them accept is refused, since dateparse reads some
// dotted and dashed forms month-first; only worded dates reach it.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	if isNumericDate(s) {
		return time.Time{}, false
	}
	t, err := dateparse.ParseIn(s, time.UTC, dateparse.PreferMonthFirst(false))
	if err != nil || t.Year() < 1000 {
		return time.Time{}, false
	}
	return t, true
}

// NormalizeDate rewrites a parseable date as YYYY-MM-DD and returns anything
// else unchanged, trimmed.
func NormalizeDate(s string) string {
	if t, ok := ParseDate(s); ok {
		return t.Format(IsoDateLayout)
	}
	return strings.TrimSpace(s)
}

// isNumericDate reports whether s holds only digits and date separators.
func isNumericDate(s string) bool {
	return strings.Trim(s, "0123456789/-. ") == ""
}
