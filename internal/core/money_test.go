package core

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out string
		ok  bool
	}{
		{"1", "1", true},
		{"0", "0", true},
		{"1.23", "1.23", true},
		{"1,23", "1.23", true},
		{"1.005", "1.01", true}, // half-up rounding
		{" 2.50 ", "2.5", true},
		{"-1", "", false},
		{"+1", "", false},
		{"abc", "", false},
		{"1.2.3", "", false},
		{"", "", false},
		{"10000000000000", "10000000000000", true},
		{"10000000000000.004", "10000000000000", true},
		{"10000000000000.01", "", false},
		{"184467440737095516.17", "", false},
		{"100000000000000000000", "", false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil || !got.Equal(decimal.RequireFromString(tc.out)) {
				t.Fatalf("%q expected %s, got %s (err=%v)", tc.in, tc.out, got, err)
			}
			continue
		}
		if err == nil {
			t.Fatalf("%q expected error", tc.in)
		}
		if !errors.Is(err, ErrValidation) {
			t.Fatalf("%q expected validation error, got %v", tc.in, err)
		}
	}
}

func TestNormalizePrice(t *testing.T) {
	cases := []struct {
		in  string
		out string
	}{
		{"₺120,50", "120.50"},
		{"₺99,00", "99"},
		{"₺1.234,56", "1234.56"},
		{"$1,234.56", "1234.56"},
		{"120,50 TL", "120.50"},
		{"1.299 TL", "1299"},
		{"1,299", "1299"},
		{"12.5", "12.5"},
		{"€ 1 234,5", "1234.5"},
		{"1.234.567,89", "1234567.89"},
		{"€ 120,-", "120"},
		{"120.-", "120"},
		{"1.299,-", "1299"},
		{"0.125", "0.13"},
		{"0,5", "0.5"},
		{" 300,00 ₺", "300"},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := NormalizePrice(tc.in)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !got.Equal(decimal.RequireFromString(tc.out)) {
				t.Fatalf("got %s, want %s", got, tc.out)
			}
		})
	}
}

func TestNormalizePriceRejects(t *testing.T) {
	for _, in := range []string{"", "TL", "free", "-5,00", "1,2.3.4x,5", ",-", "€ 20.000.000.000.000,00"} {
		if _, err := NormalizePrice(in); err == nil {
			t.Fatalf("%q expected error", in)
		}
	}
}

func TestCentsRoundTrip(t *testing.T) {
	if got, err := ToCents(decimal.RequireFromString("120.505")); err != nil || got != 12051 {
		t.Fatalf("ToCents = %d (err=%v), want 12051", got, err)
	}
	if got := FromCents(12050); !got.Equal(decimal.RequireFromString("120.5")) {
		t.Fatalf("FromCents = %s", got)
	}
	if got := FormatAmount(FromCents(7)); got != "0.07" {
		t.Fatalf("FormatAmount = %s", got)
	}
}

func TestToCentsReportsOverflow(t *testing.T) {
	cases := []string{
		"92233720368547758.08", // one cent above the int64 range
		"184467440737095516.17",
		"100000000000000000000",
		"-92233720368547758.09",
	}
	for _, in := range cases {
		t.Run(in, func(t *testing.T) {
			got, err := ToCents(decimal.RequireFromString(in))
			if err == nil {
				t.Fatalf("expected overflow error, got %d", got)
			}
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}

	got, err := ToCents(MaxAmount)
	if err != nil || got != 1_000_000_000_000_000 {
		t.Fatalf("ToCents(MaxAmount) = %d (err=%v)", got, err)
	}
}

func TestCheckAmount(t *testing.T) {
	if err := CheckAmount("amount", MaxAmount); err != nil {
		t.Fatalf("MaxAmount itself should be accepted: %v", err)
	}
	err := CheckAmount("price", MaxAmount.Add(decimal.RequireFromString("0.01")))
	var ve *ValidationError
	if !errors.As(err, &ve) || ve.Field != "price" {
		t.Fatalf("expected price validation error, got %v", err)
	}
	if err := CheckAmount("amount", decimal.NewFromInt(-1)); !errors.Is(err, ErrValidation) {
		t.Fatalf("negative amount should fail validation, got %v", err)
	}
}
