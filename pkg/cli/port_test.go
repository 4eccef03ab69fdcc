package cli

import (
	"math"
	"testing"
)

func TestParsePort(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"11434", 11434},
		{"8080", 8080},
		{"0", 0},
		{"", 0},
		{"abc", 0},
		{"8080abc", 8080},
		{"  9000", 9000},
		{"\t\n42", 42},
		{"+80", 80},
		{"-1", -1},
		{"- 1", 0},
		{"70000", 70000},
		{"00080", 80},
		{"2147483647", math.MaxInt32},
		{"2147483648", math.MaxInt32},
		{"99999999999999999999", math.MaxInt32},
		{"-99999999999999999999", -math.MaxInt32},
	}

	for _, tt := range tests {
		if got := ParsePort(tt.in); got != tt.want {
			t.Errorf("ParsePort(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
