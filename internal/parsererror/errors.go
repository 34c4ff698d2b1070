// Package parsererror defines the typed errors produced by the statement
// extractors and the import workflow.
package parsererror

import (
	"errors"
	"fmt"
)

// ErrNoTransactions is returned when an extractor ran successfully but found
// no transaction lines in the document.
var ErrNoTransactions = errors.New("no transactions found in the file")

// ParseError represents an error during parsing of a specific field.
type ParseError struct {
	Parser string
	Field  string
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: failed to parse %s='%s': %v",
		e.Parser, e.Field, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// InvalidFormatError represents an error where the input file does not conform
// to the format expected by an extractor.
type InvalidFormatError struct {
	FileName       string
	ExpectedFormat string
	Msg            string
}

func (e *InvalidFormatError) Error() string {
	return fmt.Sprintf("invalid format in file '%s': %s. Expected: %s",
		e.FileName, e.Msg, e.ExpectedFormat)
}

// DataExtractionError represents an error where required data could not be
// extracted even though the file format itself is valid.
type DataExtractionError struct {
	FileName string
	Field    string
	Reason   string
}

func (e *DataExtractionError) Error() string {
	return fmt.Sprintf("data extraction failed in file '%s' for field '%s': %s",
		e.FileName, e.Field, e.Reason)
}

// ValidationError represents a validation failure on a single candidate field.
type ValidationError struct {
	CandidateID int
	Field       string
	Reason      string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("candidate %d: invalid %s: %s", e.CandidateID, e.Field, e.Reason)
}

// UserMessage converts any pipeline error into the single human-readable
// string shown to the user. Typed errors keep their message, everything else
// is wrapped in a generic import failure notice.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var (
		parseErr      *ParseError
		formatErr     *InvalidFormatError
		extractErr    *DataExtractionError
		validationErr *ValidationError
	)
	switch {
	case errors.Is(err, ErrNoTransactions):
		return "No transactions found in the file"
	case errors.As(err, &formatErr), errors.As(err, &parseErr),
		errors.As(err, &extractErr), errors.As(err, &validationErr):
		return err.Error()
	default:
		return fmt.Sprintf("could not process the file: %v", err)
	}
}
