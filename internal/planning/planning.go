// Package planning backs the monthly budget screen. Targets and actuals are
// computed remotely; this package shapes the stored-procedure calls.
package planning

import (
	"context"
	"fmt"
	"regexp"

	"github.com/shopspring/decimal"

	"rferreira/meubolso/internal/backend"
	"rferreira/meubolso/internal/logging"
)

// monthRe validates the "YYYY-MM" month key used by the remote procedures.
var monthRe = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

// ValidMonth reports whether month is a well-formed "YYYY-MM" key.
func ValidMonth(month string) bool {
	return monthRe.MatchString(month)
}

// CategorySummary is one budget line: planned target vs. actual spend.
type CategorySummary struct {
	CategoryID   string          `json:"category_id"`
	CategoryName string          `json:"category_name"`
	Planned      decimal.Decimal `json:"planned"`
	Actual       decimal.Decimal `json:"actual"`
}

// Summary is the whole month at a glance.
type Summary struct {
	Month        string            `json:"month"`
	TotalPlanned decimal.Decimal   `json:"total_planned"`
	TotalActual  decimal.Decimal   `json:"total_actual"`
	Categories   []CategorySummary `json:"categories"`
}

// Service exposes the planning operations.
type Service struct {
	backend backend.Client
	logger  logging.Logger
}

// NewService creates a planning service.
func NewService(client backend.Client, logger logging.Logger) *Service {
	if logger == nil {
		logger = logging.GetLogger()
	}
	return &Service{backend: client, logger: logger}
}

// Summary fetches the planned-versus-actual breakdown for one month.
func (s *Service) Summary(ctx context.Context, month string) (Summary, error) {
	if !monthRe.MatchString(month) {
		return Summary{}, fmt.Errorf("invalid month %q, expected YYYY-MM", month)
	}

	var summary Summary
	err := s.backend.Call(ctx, "planning_summary", map[string]interface{}{
		"month": month,
	}, &summary)
	if err != nil {
		s.logger.WithError(err).Error("Failed to load planning summary",
			logging.Field{Key: "month", Value: month})
		return Summary{}, fmt.Errorf("failed to load planning summary: %w", err)
	}
	if summary.Month == "" {
		summary.Month = month
	}
	return summary, nil
}

// SetTarget creates or updates the planned amount for one category in one
// month. Negative targets are rejected locally; everything else is the remote
// procedure's business.
func (s *Service) SetTarget(ctx context.Context, categoryID, month string, amount decimal.Decimal) error {
	if categoryID == "" {
		return fmt.Errorf("category is required")
	}
	if !monthRe.MatchString(month) {
		return fmt.Errorf("invalid month %q, expected YYYY-MM", month)
	}
	if amount.IsNegative() {
		return fmt.Errorf("target amount must not be negative")
	}

	err := s.backend.Call(ctx, "upsert_planning_target", map[string]interface{}{
		"category_id": categoryID,
		"month":       month,
		"amount":      amount.StringFixed(2),
	}, nil)
	if err != nil {
		s.logger.WithError(err).Error("Failed to set planning target",
			logging.Field{Key: "category", Value: categoryID},
			logging.Field{Key: "month", Value: month})
		return fmt.Errorf("failed to set planning target: %w", err)
	}

	return nil
}
