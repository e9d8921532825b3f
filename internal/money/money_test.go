package money

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestBRL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0", "R$ 0,00"},
		{"500", "R$ 500,00"},
		{"250.5", "R$ 250,50"},
		{"1234.56", "R$ 1.234,56"},
		{"1234567.891", "R$ 1.234.567,89"},
		{"-42.1", "R$ -42,10"},
	}
	for _, tc := range tests {
		if got := BRL(decimal.RequireFromString(tc.in)); got != tc.want {
			t.Errorf("BRL(%s) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
