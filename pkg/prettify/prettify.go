// Package prettify implements the small set of display-formatting
// helpers the search results prettifier is spec-of-record for (spec.md
// section 8): entity-date normalization and thousand-separated integer
// formatting. The prettifier's URL beautification, relative-date
// humanization, and entity-link HTML rendering are out of scope (spec.md
// section 1, "thin presentation layers") and are not implemented here.
package prettify

import (
	"strconv"
	"strings"
	"time"
)

// PrettifyEntityDate reformats a knowledge-panel date value into
// dd/mm/yyyy, or a "<second date> - <first date>" range when the value
// packs two dates into six space-separated fields (year, month, day, year,
// month, day). Unparseable input is returned unchanged.
func PrettifyEntityDate(value string) string {
	// Leading and trailing whitespace is trimmed; the rest is split on
	// single spaces only, matching the Rust original's literal
	// NaiveDate::parse_from_str format: a run of multiple spaces between
	// fields produces empty fields here, which fail to parse as numbers
	// below and fall through to the unchanged-input path, rather than
	// being collapsed.
	fields := strings.Split(strings.TrimSpace(value), " ")

	if len(fields) == 3 {
		if d, ok := parseYMD(fields[0], fields[1], fields[2]); ok {
			return formatDMY(d)
		}
	}

	if len(fields) == 6 {
		first, ok1 := parseYMD(fields[0], fields[1], fields[2])
		second, ok2 := parseYMD(fields[3], fields[4], fields[5])
		if ok1 && ok2 {
			// The two dates arrive in reverse chronological order in the
			// source value, so the second triple is rendered first.
			return formatDMY(second) + " - " + formatDMY(first)
		}
	}

	return value
}

func parseYMD(yearStr, monthStr, dayStr string) (time.Time, bool) {
	year, err := strconv.Atoi(yearStr)
	if err != nil {
		return time.Time{}, false
	}
	month, err := strconv.Atoi(monthStr)
	if err != nil {
		return time.Time{}, false
	}
	day, err := strconv.Atoi(dayStr)
	if err != nil {
		return time.Time{}, false
	}

	d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	// time.Date silently normalizes out-of-range components (month 13,
	// day 32, ...); reject anything that didn't round-trip instead of
	// accepting a rolled-over date.
	if d.Year() != year || int(d.Month()) != month || d.Day() != day {
		return time.Time{}, false
	}
	return d, true
}

func formatDMY(t time.Time) string {
	return t.Format("02/01/2006")
}

// ThousandSep renders num with a "." inserted every three digits from the
// right, e.g. 9512854 -> "9.512.854".
func ThousandSep(num uint64) string {
	s := strconv.FormatUint(num, 10)
	n := len(s)
	if n <= 3 {
		return s
	}

	var b strings.Builder
	first := n % 3
	if first == 0 {
		first = 3
	}
	b.WriteString(s[:first])
	for i := first; i < n; i += 3 {
		b.WriteByte('.')
		b.WriteString(s[i : i+3])
	}
	return b.String()
}
