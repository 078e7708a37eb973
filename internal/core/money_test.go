package core

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"12.34", "12.34", true},
		{"12,34", "12.34", true},
		{" 7 ", "7", true},
		{"0", "", false},
		{"-3", "", false},
		{"abc", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok && err != nil {
			t.Fatalf("ParseAmount(%q) unexpected error %v", tc.in, err)
		}
		if !tc.ok {
			if err == nil {
				t.Fatalf("ParseAmount(%q) expected error", tc.in)
			}
			continue
		}
		want, _ := decimal.NewFromString(tc.want)
		if !got.Equal(want) {
			t.Fatalf("ParseAmount(%q) = %s, want %s", tc.in, got, want)
		}
	}
}

func TestBaseAmount(t *testing.T) {
	cases := []struct {
		orig, rate, want string
	}{
		{"50", "1", "50"},
		{"100", "1.1", "110"},
		{"10", "0.333", "3.33"},
		{"10", "0.335", "3.35"}, // half-up on the third decimal
	}
	for _, tc := range cases {
		orig, _ := decimal.NewFromString(tc.orig)
		rate, _ := decimal.NewFromString(tc.rate)
		want, _ := decimal.NewFromString(tc.want)
		if got := BaseAmount(orig, rate); !got.Equal(want) {
			t.Fatalf("BaseAmount(%s, %s) = %s, want %s", tc.orig, tc.rate, got, want)
		}
	}
}

func TestFormatAmount(t *testing.T) {
	d := decimal.NewFromFloat(1234.5)
	if got := FormatAmount(d); got != "1234,50" {
		t.Fatalf("FormatAmount = %q, want %q", got, "1234,50")
	}
}

func TestFormatRate(t *testing.T) {
	// Rates keep full precision, unlike money amounts.
	d := decimal.RequireFromString("1.0865")
	if got := FormatRate(d); got != "1,0865" {
		t.Fatalf("FormatRate = %q, want %q", got, "1,0865")
	}
	if got := FormatRate(decimal.NewFromInt(1)); got != "1" {
		t.Fatalf("FormatRate = %q, want %q", got, "1")
	}
}
