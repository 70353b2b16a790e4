package invoice

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0", "0,00"},
		{"5", "5,00"},
		{"999.999", "1 000,00"},
		{"3000", "3 000,00"},
		{"100000", "100 000,00"},
		{"119250", "119 250,00"},
		{"1234567.891", "1 234 567,89"},
		{"-1234.5", "-1 234,50"},
		{"19250.00", "19 250,00"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := FormatNumber(decimal.RequireFromString(tt.in)); got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestFormatCurrency(t *testing.T) {
	amount := decimal.NewFromInt(119250)
	tests := []struct {
		code string
		want string
	}{
		{"XAF", "119 250,00 FCFA"},
		{"FCFA", "119 250,00 FCFA"},
		{"", "119 250,00 FCFA"},
		{"EUR", "EUR 119 250,00"},
		{"USD", "USD 119 250,00"},
	}
	for _, tt := range tests {
		if got := FormatCurrency(amount, tt.code); got != tt.want {
			t.Errorf("FormatCurrency(%q): expected %q, got %q", tt.code, tt.want, got)
		}
	}
}

func TestFormatDate(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "N/A"},
		{"   ", "N/A"},
		{"2024-01-15", "January 15, 2024"},
		{"2024-03-01T10:30:00Z", "March 1, 2024"},
		{"2024-03-01T10:30:00.000Z", "March 1, 2024"},
		{"2024-12-31 23:59:59", "December 31, 2024"},
		{"2024-12-31T08:00:00+01:00", "December 31, 2024"},
		{"not a date", "Invalid Date"},
		{"2024-13-45", "Invalid Date"},
	}
	for _, tt := range tests {
		if got := FormatDate(tt.in); got != tt.want {
			t.Errorf("FormatDate(%q): expected %q, got %q", tt.in, tt.want, got)
		}
	}
}

func TestTaxLabel(t *testing.T) {
	tests := map[string]string{
		"19.25": "Tax (19.25%):",
		"18.00": "Tax (18%):",
		"0":     "Tax (0%):",
	}
	for in, want := range tests {
		if got := taxLabel(decimal.RequireFromString(in)); got != want {
			t.Errorf("taxLabel(%s): expected %q, got %q", in, want, got)
		}
	}
}
