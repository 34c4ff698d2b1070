package models

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	amountKeepRe    = regexp.MustCompile(`[^0-9,.\-()]`)
	decimalCommaRe  = regexp.MustCompile(`,\d{2}$`)
	brazilianAmount = regexp.MustCompile(`^-?\d{1,3}(?:\.\d{3})*,\d{2}$|^-?\d+,\d{2}$`)
)

// ParseSignedAmount parses a statement amount of unknown locale. It strips
// everything but digits, separators, minus and parentheses, treats a
// parenthesized or minus-prefixed value as negative, and normalizes a decimal
// comma when the value ends in a two-digit comma fraction. Unparseable input
// yields zero, which downstream filtering drops.
func ParseSignedAmount(amountStr string) decimal.Decimal {
	cleaned := amountKeepRe.ReplaceAllString(strings.TrimSpace(amountStr), "")
	if cleaned == "" {
		return decimal.Zero
	}

	negative := false
	if strings.Contains(cleaned, "(") {
		negative = true
		cleaned = strings.NewReplacer("(", "", ")", "").Replace(cleaned)
	}
	if strings.HasPrefix(cleaned, "-") {
		negative = true
	}
	cleaned = strings.ReplaceAll(cleaned, "-", "")

	if decimalCommaRe.MatchString(cleaned) {
		cleaned = strings.ReplaceAll(cleaned, ".", "")
		cleaned = strings.ReplaceAll(cleaned, ",", ".")
	} else {
		cleaned = strings.ReplaceAll(cleaned, ",", "")
	}

	dec, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero
	}
	if negative {
		return dec.Neg()
	}
	return dec
}

// ParseBrazilianAmount parses the strict Brazilian format (thousands separator
// '.', decimal separator ',') used by PDF invoices and statements.
func ParseBrazilianAmount(amountStr string) (decimal.Decimal, bool) {
	cleaned := strings.TrimSpace(amountStr)
	if !brazilianAmount.MatchString(cleaned) {
		return decimal.Zero, false
	}

	cleaned = strings.ReplaceAll(cleaned, ".", "")
	cleaned = strings.ReplaceAll(cleaned, ",", ".")

	dec, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, false
	}
	return dec, true
}
