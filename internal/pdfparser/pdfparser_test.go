package pdfparser

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rferreira/meubolso/internal/logging"
	"rferreira/meubolso/internal/parsererror"
)

func newTestExtractor(text string) *Extractor {
	e := NewExtractor(&logging.MockLogger{}, NewMockTextExtractor(text, nil))
	e.now = func() time.Time {
		return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	}
	return e
}

func TestExtractDateDescriptionAmount(t *testing.T) {
	e := newTestExtractor("15/01/2024 Coffee Shop 45,90")

	candidates, err := e.Extract(strings.NewReader("%PDF-1.4"))
	require.NoError(t, err)
	require.Len(t, candidates, 1)

	assert.Equal(t, "2024-01-15", candidates[0].Date)
	assert.Equal(t, "Coffee Shop", candidates[0].Description)
	assert.True(t, candidates[0].SignedAmount.Equal(decimal.RequireFromString("45.9")))
}

func TestExtractShortDateAppendsCurrentYear(t *testing.T) {
	e := newTestExtractor("15/01 RESTAURANTE SABOR 89,90")

	candidates, err := e.Extract(strings.NewReader("%PDF-1.4"))
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "2024-01-15", candidates[0].Date)
	assert.Equal(t, "RESTAURANTE SABOR", candidates[0].Description)
}

func TestExtractAmountFirstLayout(t *testing.T) {
	e := newTestExtractor("1.234,56 SUPERMERCADO BOM PRECO 20/05")

	candidates, err := e.Extract(strings.NewReader("%PDF-1.4"))
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "2024-05-20", candidates[0].Date)
	assert.True(t, candidates[0].SignedAmount.Equal(decimal.RequireFromString("1234.56")))
}

func TestExtractDiscardsShortDescriptions(t *testing.T) {
	e := newTestExtractor("15/01/2024 x 45,90")

	_, err := e.Extract(strings.NewReader("%PDF-1.4"))
	assert.ErrorIs(t, err, parsererror.ErrNoTransactions)
}

func TestExtractDiscardsZeroAmounts(t *testing.T) {
	e := newTestExtractor("15/01/2024 Estorno Compra 0,00")

	_, err := e.Extract(strings.NewReader("%PDF-1.4"))
	assert.ErrorIs(t, err, parsererror.ErrNoTransactions)
}

func TestExtractMultiplePagesAndNoise(t *testing.T) {
	text := `BANCO EXEMPLO S.A.
Extrato de Conta Corrente

15/01/2024 Coffee Shop 45,90
texto sem transacao
16/01/2024 PIX RECEBIDO JOANA -1.500,00

Pagina 2

17/01/2024 FARMACIA CENTRAL 32,10`

	e := newTestExtractor(text)
	candidates, err := e.Extract(strings.NewReader("%PDF-1.4"))
	require.NoError(t, err)
	require.Len(t, candidates, 3)
	assert.Equal(t, "PIX RECEBIDO JOANA", candidates[1].Description)
	assert.True(t, candidates[1].SignedAmount.Equal(decimal.RequireFromString("-1500")))
}

func TestExtractUnavailableTooling(t *testing.T) {
	mock := NewMockTextExtractor("", nil)
	mock.AvailableErr = errors.New("renderer failed to load")
	e := NewExtractor(&logging.MockLogger{}, mock)

	_, err := e.Extract(strings.NewReader("%PDF-1.4"))
	var extractionErr *parsererror.DataExtractionError
	assert.ErrorAs(t, err, &extractionErr)
}

func TestExtractTextFailure(t *testing.T) {
	e := NewExtractor(&logging.MockLogger{}, NewMockTextExtractor("", fmt.Errorf("corrupt file")))

	_, err := e.Extract(strings.NewReader("%PDF-1.4"))
	var parseErr *parsererror.ParseError
	assert.ErrorAs(t, err, &parseErr)
}
