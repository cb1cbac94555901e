// Package timeparse parses the canonical UTC timestamp text format used on
// the wire, with a fast fixed-position path and layered fallbacks for
// ISO-style input.
package timeparse

import (
	"fmt"
	"strconv"
	"time"
)

// CanonicalLayout is the fixed-width wire format for UTC timestamps:
// fractional seconds to microsecond precision with a literal +0000 offset.
const CanonicalLayout = "2006-01-02T15:04:05.000000-0700"

// fallbackLayouts are tried in order when input does not match the
// canonical format.
var fallbackLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999Z0700",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// FastParse parses a string in the canonical format by slicing fixed
// positions, avoiding the general time.Parse machinery. It only accepts the
// exact canonical shape: separators at fixed offsets and a +0000 suffix.
func FastParse(s string) (time.Time, error) {
	if len(s) < 25 ||
		s[4] != '-' || s[7] != '-' || s[10] != 'T' ||
		s[13] != ':' || s[16] != ':' || s[19] != '.' ||
		s[len(s)-5:] != "+0000" {
		return time.Time{}, fmt.Errorf("timestamp %q does not match canonical format", s)
	}

	year, err := atoi(s[0:4])
	if err != nil {
		return time.Time{}, fmt.Errorf("timestamp %q: %w", s, err)
	}
	month, err := atoi(s[5:7])
	if err != nil {
		return time.Time{}, fmt.Errorf("timestamp %q: %w", s, err)
	}
	day, err := atoi(s[8:10])
	if err != nil {
		return time.Time{}, fmt.Errorf("timestamp %q: %w", s, err)
	}
	hour, err := atoi(s[11:13])
	if err != nil {
		return time.Time{}, fmt.Errorf("timestamp %q: %w", s, err)
	}
	minute, err := atoi(s[14:16])
	if err != nil {
		return time.Time{}, fmt.Errorf("timestamp %q: %w", s, err)
	}
	second, err := atoi(s[17:19])
	if err != nil {
		return time.Time{}, fmt.Errorf("timestamp %q: %w", s, err)
	}

	// The fraction may carry fewer than six digits; scale like a decimal.
	frac, err := strconv.ParseFloat("0"+s[19:len(s)-5], 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("timestamp %q: invalid fraction", s)
	}
	micros := int(frac*1e6 + 0.5)

	return time.Date(year, time.Month(month), day, hour, minute, second, micros*1000, time.UTC), nil
}

// Parse parses a timestamp, trying the fast canonical path first, then the
// canonical layout via time.Parse, then the fallback layouts.
func Parse(s string) (time.Time, error) {
	if t, err := FastParse(s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(CanonicalLayout, s); err == nil {
		return t, nil
	}
	for _, layout := range fallbackLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("timestamp %q does not match any supported format", s)
}

// atoi parses a fixed-width decimal field, rejecting signs and spaces that
// strconv.Atoi would accept.
func atoi(s string) (int, error) {
	n := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("invalid digit %q", c)
		}
		n = n*10 + int(c-'0')
	}
	return n, nil
}
