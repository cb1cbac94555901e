package timeparse

import (
	"testing"
	"time"
)

func TestFastParse_Canonical(t *testing.T) {
	tests := []struct {
		input    string
		expected time.Time
	}{
		{
			input:    "2024-03-15T10:30:45.123456+0000",
			expected: time.Date(2024, 3, 15, 10, 30, 45, 123456000, time.UTC),
		},
		{
			input:    "1999-12-31T23:59:59.000000+0000",
			expected: time.Date(1999, 12, 31, 23, 59, 59, 0, time.UTC),
		},
		{
			// Short fractions scale like decimals: .5 is half a second.
			input:    "2024-03-15T10:30:45.5+0000",
			expected: time.Date(2024, 3, 15, 10, 30, 45, 500000000, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := FastParse(tt.input)
			if err != nil {
				t.Fatalf("FastParse failed: %v", err)
			}
			if !got.Equal(tt.expected) {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestFastParse_Rejects(t *testing.T) {
	inputs := []string{
		"",
		"2024-03-15",
		"2024-03-15T10:30:45Z",
		"2024-03-15T10:30:45.000000-0500", // non-UTC offset
		"2024-03-15 10:30:45.000000+0000", // wrong separator
		"2024-03-15T10:30:45,000000+0000", // wrong fraction marker
		"20XX-03-15T10:30:45.000000+0000", // non-digit field
		"2024-03-15T10:30:45.+0000x",
	}

	for _, input := range inputs {
		if _, err := FastParse(input); err == nil {
			t.Errorf("expected FastParse to reject %q", input)
		}
	}
}

func TestFastParse_MatchesFormatOutput(t *testing.T) {
	instant := time.Date(2024, 3, 15, 10, 30, 45, 987654000, time.UTC)
	text := instant.Format(CanonicalLayout)
	if text != "2024-03-15T10:30:45.987654+0000" {
		t.Fatalf("canonical layout produced %q", text)
	}
	got, err := FastParse(text)
	if err != nil {
		t.Fatalf("FastParse failed on formatted output: %v", err)
	}
	if !got.Equal(instant) {
		t.Errorf("expected %v, got %v", instant, got)
	}
}

func TestParse_Fallbacks(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected time.Time
	}{
		{
			name:     "RFC3339 zulu",
			input:    "2024-03-15T10:30:45Z",
			expected: time.Date(2024, 3, 15, 10, 30, 45, 0, time.UTC),
		},
		{
			name:     "RFC3339 with offset",
			input:    "2024-03-15T05:30:45-05:00",
			expected: time.Date(2024, 3, 15, 10, 30, 45, 0, time.UTC),
		},
		{
			name:     "canonical with non-UTC offset",
			input:    "2024-03-15T05:30:45.000000-0500",
			expected: time.Date(2024, 3, 15, 10, 30, 45, 0, time.UTC),
		},
		{
			name:     "bare datetime",
			input:    "2024-03-15T10:30:45",
			expected: time.Date(2024, 3, 15, 10, 30, 45, 0, time.UTC),
		},
		{
			name:     "space separated",
			input:    "2024-03-15 10:30:45",
			expected: time.Date(2024, 3, 15, 10, 30, 45, 0, time.UTC),
		},
		{
			name:     "date only",
			input:    "2024-03-15",
			expected: time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			if err != nil {
				t.Fatalf("Parse failed: %v", err)
			}
			if !got.Equal(tt.expected) {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestParse_Invalid(t *testing.T) {
	for _, input := range []string{"", "yesterday", "15/03/2024"} {
		if _, err := Parse(input); err == nil {
			t.Errorf("expected Parse to reject %q", input)
		}
	}
}
