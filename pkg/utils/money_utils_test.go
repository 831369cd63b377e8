package utils

import "testing"

func TestParseMoneyToCents(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int64
	}{
		{"whole lira", "120", 12000},
		{"dot decimal", "120.50", 12050},
		{"comma decimal", "120,50", 12050},
		{"one fraction digit", "120.5", 12050},
		{"trailing separator", "120.", 12000},
		{"leading whitespace", "  45", 4500},
		{"empty", "", 0},
		{"whitespace only", "   ", 0},
		{"letters", "abc", 0},
		{"three fraction digits", "1.234", 0},
		{"negative", "-5", 0},
		{"two separators", "1,2,3", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseMoneyToCents(tt.input); got != tt.want {
				t.Errorf("ParseMoneyToCents(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestCentsToInputString(t *testing.T) {
	tests := []struct {
		cents int64
		want  string
	}{
		{12345, "123.45"},
		{12000, "120.00"},
		{5, "0.05"},
		{50, "0.50"},
		{0, "0.00"},
		{-100, "0.00"},
	}
	for _, tt := range tests {
		if got := CentsToInputString(tt.cents); got != tt.want {
			t.Errorf("CentsToInputString(%d) = %q, want %q", tt.cents, got, tt.want)
		}
	}
}

func TestFormatCurrency(t *testing.T) {
	tests := []struct {
		cents int64
		want  string
	}{
		{0, "0 ₺"},
		{900, "9 ₺"},
		{123400, "1.234 ₺"},
		{123456789, "1.234.568 ₺"}, // rounds the fraction
		{100000000, "1.000.000 ₺"},
		{-123400, "-1.234 ₺"},
		{50, "1 ₺"},  // 0.50 rounds up
		{49, "0 ₺"},
	}
	for _, tt := range tests {
		if got := FormatCurrency(tt.cents); got != tt.want {
			t.Errorf("FormatCurrency(%d) = %q, want %q", tt.cents, got, tt.want)
		}
	}
}

func TestToCentsRoundTrip(t *testing.T) {
	for _, cents := range []int64{0, 1, 99, 100, 12345, 999999} {
		if got := ToCents(ToLira(cents)); got != cents {
			t.Errorf("round trip %d -> %d", cents, got)
		}
	}
	if got := ToCents(0.1 + 0.2); got != 30 {
		t.Errorf("ToCents(0.1+0.2) = %d, want 30", got)
	}
}
