package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"rferreira/meubolso/internal/logging"
	"rferreira/meubolso/internal/models"
)

func TestClassifyCardInvoice(t *testing.T) {
	c := New(nil, 3, &logging.MockLogger{})

	text := `FATURA DO CARTAO
	Vencimento: 10/04/2024
	Pagamento minimo: R$ 150,00
	VISA FINAL 1234`

	assert.Equal(t, models.DocCardInvoice, c.Classify(text))
}

func TestClassifyStatement(t *testing.T) {
	c := New(nil, 3, &logging.MockLogger{})

	text := `Extrato de conta corrente
	01/03/2024 PIX RECEBIDO 1.500,00
	02/03/2024 SUPERMERCADO -230,45`

	assert.Equal(t, models.DocStatement, c.Classify(text))
}

func TestClassifyBelowThresholdStaysStatement(t *testing.T) {
	c := New(nil, 3, &logging.MockLogger{})

	// Two indicators only: not enough to flip the verdict.
	text := "fatura com vencimento em abril"
	assert.Equal(t, models.DocStatement, c.Classify(text))
}

func TestClassifyCustomVocabulary(t *testing.T) {
	c := New([]string{"alpha", "beta"}, 2, &logging.MockLogger{})

	assert.Equal(t, models.DocCardInvoice, c.Classify("ALPHA then BETA"))
	assert.Equal(t, models.DocStatement, c.Classify("only alpha here"))
}
