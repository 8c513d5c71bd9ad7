package ingest

import (
	"regexp"
	"strconv"
	"strings"
)

// Sheets are inconsistent about periods: some carry separate year and
// quarter columns, some write "2024-Q1" in one cell, some put a month number
// where the quarter belongs. ResolvePeriod applies the inference rules in
// order of confidence and degrades to zero values rather than failing.

var yearPattern = regexp.MustCompile(`20\d{2}`)

// ResolvePeriod derives (year, quarter) from the two period cells. The
// quarter is returned lowercased ("q1".."q4") or empty when nothing could be
// inferred; validation reports the latter.
func ResolvePeriod(yearCell, quarterCell string) (int, string) {
	year := ParseYear(yearCell)
	quarter := ParseQuarter(quarterCell)

	// A combined "2024-Q1" style cell may carry both halves.
	if year == 0 {
		year = ParseYear(quarterCell)
	}
	if quarter == "" {
		quarter = ParseQuarter(yearCell)
	}
	return year, quarter
}

// ParseYear extracts a plausible calendar year. Accepts plain integers,
// float-formatted cells ("2024.0"), and any string embedding a 20xx year.
func ParseYear(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return int(v)
	}
	if m := yearPattern.FindString(s); m != "" {
		v, _ := strconv.Atoi(m)
		return v
	}
	return 0
}

// ParseQuarter normalizes a quarter cell to "q1".."q4". Accepted forms:
// "Q1"/"q1", bare digits 1-4, "quarter 3", and month numbers 5-12 which are
// folded into their calendar quarter. Everything else yields "".
func ParseQuarter(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ""
	}

	if len(s) >= 2 {
		if i := strings.IndexByte(s, 'q'); i >= 0 && i+1 < len(s) {
			if d := s[i+1]; d >= '1' && d <= '4' {
				return "q" + string(d)
			}
		}
	}

	s = strings.TrimPrefix(s, "quarter")
	s = strings.TrimSpace(s)
	n, err := strconv.Atoi(s)
	if err != nil {
		if f, ferr := strconv.ParseFloat(s, 64); ferr == nil {
			n = int(f)
		} else {
			return ""
		}
	}
	switch {
	case n >= 1 && n <= 4:
		return "q" + strconv.Itoa(n)
	case n >= 5 && n <= 12:
		// Month number; fold into its quarter.
		return "q" + strconv.Itoa((n-1)/3+1)
	}
	return ""
}
