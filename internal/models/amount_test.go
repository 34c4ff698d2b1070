package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestParseSignedAmount(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"decimal comma", "1500,00", "1500"},
		{"negative decimal comma", "-800,00", "-800"},
		{"thousands with decimal comma", "1.234,56", "1234.56"},
		{"plain dot decimal", "45.90", "45.9"},
		{"negative dot decimal", "-45.90", "-45.9"},
		{"parenthesized", "(120.50)", "-120.5"},
		{"currency prefix", "R$ 99,90", "99.9"},
		{"thousands comma no fraction", "1,234", "1234"},
		{"garbage", "abc", "0"},
		{"empty", "", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseSignedAmount(tt.input)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)),
				"got %s, want %s", got, tt.want)
		})
	}
}

func TestParseBrazilianAmount(t *testing.T) {
	got, ok := ParseBrazilianAmount("1.234,56")
	assert.True(t, ok)
	assert.True(t, got.Equal(decimal.RequireFromString("1234.56")))

	got, ok = ParseBrazilianAmount("45,90")
	assert.True(t, ok)
	assert.True(t, got.Equal(decimal.RequireFromString("45.9")))

	_, ok = ParseBrazilianAmount("45.90")
	assert.False(t, ok)

	_, ok = ParseBrazilianAmount("texto")
	assert.False(t, ok)
}

func TestSignedAmountRoundTrip(t *testing.T) {
	c := Candidate{Amount: decimal.RequireFromString("45.9"), Type: TypeExpense}
	assert.True(t, c.SignedAmount().Equal(decimal.RequireFromString("-45.9")))

	c.Type = TypeIncome
	assert.True(t, c.SignedAmount().Equal(decimal.RequireFromString("45.9")))
}

func TestDedupKey(t *testing.T) {
	a := Candidate{Date: "2024-01-15", Description: "Coffee Shop", Amount: decimal.RequireFromString("45.9")}
	b := Candidate{Date: "2024-01-15", Description: "Coffee Shop", Amount: decimal.RequireFromString("45.90")}
	assert.Equal(t, a.DedupKey(), b.DedupKey())

	b.Description = "Coffee"
	assert.NotEqual(t, a.DedupKey(), b.DedupKey())
}
