package cli

import (
	"math"
	"testing"
)

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		v    float64
		want string
	}{
		{0, "₪0.00"},
		{50, "₪50.00"},
		{-50, "₪-50.00"},
		{1234.5, "₪1,234.50"},
		{-1234567.891, "₪-1,234,567.89"},
		{-0.001, "₪0.00"},
	}
	for _, tt := range tests {
		if got := FormatMoney("₪", tt.v); got != tt.want {
			t.Errorf("FormatMoney(%v) = %q, want %q", tt.v, got, tt.want)
		}
	}
}

func TestFormatSignedMoney(t *testing.T) {
	if got := FormatSignedMoney("$", 10); got != "+$10.00" {
		t.Errorf("FormatSignedMoney(10) = %q", got)
	}
	if got := FormatSignedMoney("$", -10); got != "$-10.00" {
		t.Errorf("FormatSignedMoney(-10) = %q", got)
	}
	if got := FormatSignedMoney("$", 0); got != "$0.00" {
		t.Errorf("FormatSignedMoney(0) = %q", got)
	}
}

func TestFormatPlain(t *testing.T) {
	if got := FormatPlain(1234.5); got != "1234.50" {
		t.Errorf("FormatPlain = %q, want 1234.50", got)
	}
}

func TestFormatNonFinite(t *testing.T) {
	tests := []struct {
		v    float64
		want string
	}{
		{math.Inf(1), "Inf"},
		{math.Inf(-1), "-Inf"},
		{math.NaN(), "NaN"},
	}
	for _, tt := range tests {
		if got := FormatAmount(tt.v); got != tt.want {
			t.Errorf("FormatAmount(%v) = %q, want %q", tt.v, got, tt.want)
		}
		if got := FormatPlain(tt.v); got != tt.want {
			t.Errorf("FormatPlain(%v) = %q, want %q", tt.v, got, tt.want)
		}
	}
	if got := FormatSignedMoney("$", math.Inf(1)); got != "+$Inf" {
		t.Errorf("FormatSignedMoney(+Inf) = %q", got)
	}
}

func TestFormatNumber(t *testing.T) {
	tests := map[int64]string{
		0:        "0",
		999:      "999",
		1000:     "1,000",
		-1234567: "-1,234,567",
	}
	for n, want := range tests {
		if got := FormatNumber(n); got != want {
			t.Errorf("FormatNumber(%d) = %q, want %q", n, got, want)
		}
	}
}

func TestFormatPercentAndMonths(t *testing.T) {
	if got := FormatPercent(75); got != "75.0%" {
		t.Errorf("FormatPercent(75) = %q", got)
	}
	if got := FormatShare(0.125); got != "12.5%" {
		t.Errorf("FormatShare(0.125) = %q", got)
	}
	if got := FormatMonths(1); got != "1 month" {
		t.Errorf("FormatMonths(1) = %q", got)
	}
	if got := FormatMonths(3); got != "3 months" {
		t.Errorf("FormatMonths(3) = %q", got)
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("Equipment Rental", 6); got != "Equip…" {
		t.Errorf("Truncate = %q", got)
	}
	if got := Truncate("short", 10); got != "short" {
		t.Errorf("Truncate = %q", got)
	}
}
