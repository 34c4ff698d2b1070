// Package diagnosis runs the financial-health questionnaire. The scoring
// arithmetic lives behind a remote stored procedure; this package only
// validates the answer set and shapes the call.
package diagnosis

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"rferreira/meubolso/internal/backend"
	"rferreira/meubolso/internal/logging"
)

// RequiredQuestions is the answer set the remote procedure expects.
var RequiredQuestions = []string{
	"monthly_income",
	"monthly_expenses",
	"has_emergency_fund",
	"has_debts",
	"savings_rate",
}

// Result is the remote diagnosis verdict.
type Result struct {
	Score           int      `json:"score"`
	Level           string   `json:"level"`
	Recommendations []string `json:"recommendations"`
}

// IncompleteAnswersError lists the questions still missing an answer.
type IncompleteAnswersError struct {
	Missing []string
}

func (e *IncompleteAnswersError) Error() string {
	return fmt.Sprintf("unanswered questions: %s", strings.Join(e.Missing, ", "))
}

// Service validates questionnaires and calls the remote scorer.
type Service struct {
	backend backend.Client
	logger  logging.Logger
}

// NewService creates a diagnosis service.
func NewService(client backend.Client, logger logging.Logger) *Service {
	if logger == nil {
		logger = logging.GetLogger()
	}
	return &Service{backend: client, logger: logger}
}

// Calculate validates the answer set and invokes the remote scoring
// procedure. Answers beyond the required set are passed through untouched.
func (s *Service) Calculate(ctx context.Context, answers map[string]interface{}) (Result, error) {
	var missing []string
	for _, question := range RequiredQuestions {
		value, ok := answers[question]
		if !ok || value == nil {
			missing = append(missing, question)
			continue
		}
		if str, isString := value.(string); isString && strings.TrimSpace(str) == "" {
			missing = append(missing, question)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return Result{}, &IncompleteAnswersError{Missing: missing}
	}

	var result Result
	if err := s.backend.Call(ctx, "calculate_diagnosis", answers, &result); err != nil {
		s.logger.WithError(err).Error("Diagnosis calculation failed")
		return Result{}, fmt.Errorf("failed to calculate diagnosis: %w", err)
	}

	s.logger.Info("Diagnosis calculated",
		logging.Field{Key: "score", Value: result.Score},
		logging.Field{Key: "level", Value: result.Level})
	return result, nil
}
