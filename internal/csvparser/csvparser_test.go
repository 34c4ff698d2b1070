package csvparser

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rferreira/meubolso/internal/logging"
	"rferreira/meubolso/internal/parsererror"
)

func TestExtractSemicolonDelimited(t *testing.T) {
	e := NewExtractor(&logging.MockLogger{})

	input := "01/03/2024;Salary;1500,00\n02/03/2024;Rent;-800,00"
	candidates, err := e.Extract(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, candidates, 2)

	assert.Equal(t, "2024-03-01", candidates[0].Date)
	assert.Equal(t, "Salary", candidates[0].Description)
	assert.True(t, candidates[0].SignedAmount.Equal(decimal.RequireFromString("1500")))

	assert.Equal(t, "2024-03-02", candidates[1].Date)
	assert.Equal(t, "Rent", candidates[1].Description)
	assert.True(t, candidates[1].SignedAmount.Equal(decimal.RequireFromString("-800")))
}

func TestExtractSkipsHeaderLine(t *testing.T) {
	e := NewExtractor(&logging.MockLogger{})

	input := "Data;Descricao;Valor\n01/03/2024;Mercado;-230,45"
	candidates, err := e.Extract(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "Mercado", candidates[0].Description)
}

func TestExtractCommaDelimited(t *testing.T) {
	e := NewExtractor(&logging.MockLogger{})

	input := "2024-03-05,Bookstore,-59.90,settled\n2024-03-06,Refund,20.00,pending"
	candidates, err := e.Extract(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, candidates, 2)

	assert.Equal(t, "2024-03-05", candidates[0].Date)
	assert.True(t, candidates[0].SignedAmount.Equal(decimal.RequireFromString("-59.9")))
}

func TestExtractTabDelimited(t *testing.T) {
	e := NewExtractor(&logging.MockLogger{})

	input := "03-03-2024\tUber\t-25,00"
	candidates, err := e.Extract(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "2024-03-03", candidates[0].Date)
}

func TestExtractSkipsShortLines(t *testing.T) {
	e := NewExtractor(&logging.MockLogger{})

	input := "01/03/2024;Salary;1500,00\njunk line\n;;\n02/03/2024;Rent;-800,00"
	candidates, err := e.Extract(strings.NewReader(input))
	require.NoError(t, err)
	// The ";;" line still splits into 3 empty columns and survives extraction;
	// its zero amount is dropped later by normalization.
	assert.Len(t, candidates, 3)
}

func TestExtractParenthesizedNegative(t *testing.T) {
	e := NewExtractor(&logging.MockLogger{})

	input := "01/03/2024;Chargeback;(120,50)"
	candidates, err := e.Extract(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.True(t, candidates[0].SignedAmount.Equal(decimal.RequireFromString("-120.5")))
}

func TestExtractEmptyInput(t *testing.T) {
	e := NewExtractor(&logging.MockLogger{})

	_, err := e.Extract(strings.NewReader(""))
	assert.ErrorIs(t, err, parsererror.ErrNoTransactions)

	_, err = e.Extract(strings.NewReader("\n\n  \n"))
	assert.ErrorIs(t, err, parsererror.ErrNoTransactions)
}

func TestExtractConfiguredDelimiter(t *testing.T) {
	e := NewExtractor(&logging.MockLogger{})
	e.SetDelimiters([]string{"|"})

	input := "01/03/2024|Mercado|-52,30\n02/03/2024|Farmácia|-18,90"
	candidates, err := e.Extract(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, candidates, 2)

	assert.Equal(t, "Mercado", candidates[0].Description)
	assert.True(t, candidates[0].SignedAmount.Equal(decimal.RequireFromString("-52.3")))
}

func TestExtractConfiguredDateFormat(t *testing.T) {
	e := NewExtractor(&logging.MockLogger{})
	e.SetDateFormats([]string{"2006.01.02"})

	input := "2024.03.01;Padaria;-12,00"
	candidates, err := e.Extract(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "2024-03-01", candidates[0].Date)
}

func TestSetDelimitersEmptyKeepsDefaults(t *testing.T) {
	e := NewExtractor(&logging.MockLogger{})
	e.SetDelimiters(nil)

	input := "01/03/2024;Salary;1500,00"
	candidates, err := e.Extract(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, candidates, 1)
}
