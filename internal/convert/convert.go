// Package convert contains the per-value conversion functions used by the
// ingestion pipeline. Every converter follows the same contract: it accepts a
// raw text cell and returns either a typed value or nil. A converter never
// returns an error — an unparseable cell always degrades to SQL NULL so that
// one dirty value cannot abort a row, let alone a run.
//
// The shared null vocabulary is checked first by every converter: an empty
// string, a whitespace-only string, or any of the placeholder literals
// ("NA", "N/A", "null", case-insensitive) converts to nil.
package convert

import (
	"strconv"
	"strings"
	"time"
)

// IsNull reports whether the raw cell belongs to the null vocabulary.
func IsNull(s string) bool {
	t := strings.TrimSpace(s)
	if t == "" {
		return true
	}
	switch strings.ToLower(t) {
	case "na", "n/a", "null":
		return true
	}
	return false
}

// stripSeparators removes thousands separators and embedded whitespace,
// mirroring the numeric cleanup the source extracts need ("1,234" → "1234").
func stripSeparators(s string) string {
	if !strings.ContainsAny(s, ", \t") {
		return strings.TrimSpace(s)
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch r {
		case ',', ' ', '\t':
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ToInt parses an integer after stripping thousands separators and
// whitespace. An optional leading minus is accepted; any other non-digit
// content yields nil.
func ToInt(s string) any {
	if IsNull(s) {
		return nil
	}
	t := stripSeparators(s)
	// ParseInt would accept a leading '+', which the extracts never carry;
	// only a bare minus sign is part of the accepted shape.
	if t == "" || t[0] == '+' {
		return nil
	}
	v, err := strconv.ParseInt(t, 10, 64)
	if err != nil {
		return nil
	}
	return v
}

// ToIntBounded parses like ToInt and then rejects values outside the closed
// range [low, high]. Out-of-range measurements are treated as implausible and
// become nil rather than polluting the table.
func ToIntBounded(s string, low, high int64) any {
	v := ToInt(s)
	if v == nil {
		return nil
	}
	n := v.(int64)
	if n < low || n > high {
		return nil
	}
	return n
}

// ToDecimal parses a decimal number after the same separator cleanup as
// ToInt. Non-numeric content yields nil.
func ToDecimal(s string) any {
	if IsNull(s) {
		return nil
	}
	t := stripSeparators(s)
	if t == "" {
		return nil
	}
	f, err := strconv.ParseFloat(t, 64)
	if err != nil {
		return nil
	}
	return f
}

// ToBool maps the fixed tri-state synonym sets onto 1/0 (the target columns
// are TINYINT): y/yes/1/true/t → 1, n/no/0/false/f → 0, anything else → nil.
func ToBool(s string) any {
	if IsNull(s) {
		return nil
	}
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "y", "yes", "1", "true", "t":
		return int64(1)
	case "n", "no", "0", "false", "f":
		return int64(0)
	}
	return nil
}

// DateLayouts is the ordered list of accepted date formats. The first layout
// that parses wins. ISO first, then the US month/day forms the tree census
// extracts use (e.g. "8/27/15").
var DateLayouts = []string{
	"2006-01-02",
	"1/2/2006",
	"1/2/06",
	"1-2-2006",
	"1-2-06",
}

// ToDate parses a calendar date using DateLayouts and returns it formatted as
// ISO YYYY-MM-DD. No time component survives; no matching layout yields nil.
func ToDate(s string) any {
	if IsNull(s) {
		return nil
	}
	t := strings.TrimSpace(s)
	for _, layout := range DateLayouts {
		if d, err := time.Parse(layout, t); err == nil {
			return d.Format("2006-01-02")
		}
	}
	return nil
}

// ToMonthStart converts a "YYYY-MM" (or "YYYY-M") period into the first day
// of that month in ISO form. The NOAA monthly extracts key their rows on this
// value. Anything that does not split into a numeric year and month yields
// nil.
func ToMonthStart(s string) any {
	if IsNull(s) {
		return nil
	}
	parts := strings.SplitN(strings.TrimSpace(s), "-", 3)
	if len(parts) < 2 {
		return nil
	}
	y, err := strconv.Atoi(parts[0])
	if err != nil {
		return nil
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 1 || m > 12 {
		return nil
	}
	return time.Date(y, time.Month(m), 1, 0, 0, 0, 0, time.UTC).Format("2006-01-02")
}

// Category maps a raw label onto a bucketed output value using an exact
// normalized-label vocabulary. Matching is by full membership, never by
// substring; labels outside the vocabulary yield nil.
func Category(s string, vocab map[string]string) any {
	if IsNull(s) {
		return nil
	}
	out, ok := vocab[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return nil
	}
	return out
}

// CToF converts degrees Celsius to Fahrenheit.
func CToF(c float64) float64 { return c*9/5 + 32 }

// Text trims the cell and applies the null vocabulary; anything else passes
// through unchanged.
func Text(s string) any {
	if IsNull(s) {
		return nil
	}
	return strings.TrimSpace(s)
}
