package importer

import (
	"strings"

	"rferreira/meubolso/internal/models"
	"rferreira/meubolso/internal/parsererror"
)

// CandidateViolations lists every rule one candidate breaks.
type CandidateViolations struct {
	CandidateID int      `json:"candidate_id"`
	Violations  []string `json:"violations"`
}

// ValidationReport aggregates all violations across the selected subset, so
// the user can fix everything in one pass instead of whack-a-mole.
type ValidationReport struct {
	Items []CandidateViolations `json:"items,omitempty"`
}

// Valid reports whether the selected subset has no violations.
func (r ValidationReport) Valid() bool {
	return len(r.Items) == 0
}

// Validate runs the commit-readiness rules over the selected subset only.
func (s *Session) Validate() ValidationReport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.validateSelected()
}

func (s *Session) validateSelected() ValidationReport {
	var report ValidationReport
	for _, id := range s.selectedInOrder() {
		violations := validateCandidate(*s.arena[id])
		if len(violations) == 0 {
			continue
		}
		item := CandidateViolations{CandidateID: id}
		for _, ve := range violations {
			item.Violations = append(item.Violations, ve.Reason)
		}
		report.Items = append(report.Items, item)
	}
	return report
}

func validateCandidate(c models.Candidate) []*parsererror.ValidationError {
	var violations []*parsererror.ValidationError
	add := func(field, reason string) {
		violations = append(violations, &parsererror.ValidationError{
			CandidateID: c.ID,
			Field:       field,
			Reason:      reason,
		})
	}
	if c.Date == "" {
		add("date", "date is required")
	}
	if strings.TrimSpace(c.Description) == "" {
		add("description", "description is required")
	}
	if c.CategoryID == "" {
		add("category", "category is required")
	}
	if c.AccountID == "" {
		add("account", "account is required")
	}
	if !c.Amount.IsPositive() {
		add("amount", "amount must be greater than zero")
	}
	return violations
}
