package pdfparser

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
)

// TextExtractor is the capability of rendering a PDF to its text layer. The
// heavy tooling behind it is provisioned lazily: callers must check
// EnsureAvailable before extracting, and a failed check aborts the PDF path
// with no automatic retry.
type TextExtractor interface {
	// EnsureAvailable verifies the extraction tooling is usable. The result
	// is memoized for the lifetime of the process.
	EnsureAvailable() error

	// ExtractText renders every page of the PDF to text, pages separated by
	// newlines.
	ExtractText(r io.Reader) (string, error)
}

// PdftotextExtractor implements TextExtractor by shelling out to the
// pdftotext tool in layout mode.
type PdftotextExtractor struct {
	once sync.Once
	err  error
}

// NewPdftotextExtractor creates the production text extractor.
func NewPdftotextExtractor() *PdftotextExtractor {
	return &PdftotextExtractor{}
}

// EnsureAvailable looks up the pdftotext binary once and caches the outcome.
func (e *PdftotextExtractor) EnsureAvailable() error {
	e.once.Do(func() {
		if _, err := exec.LookPath("pdftotext"); err != nil {
			e.err = fmt.Errorf("pdftotext is not available: %w", err)
		}
	})
	return e.err
}

// ExtractText writes the PDF to a temporary file and runs pdftotext over it.
func (e *PdftotextExtractor) ExtractText(r io.Reader) (string, error) {
	if err := e.EnsureAvailable(); err != nil {
		return "", err
	}

	tempFile, err := os.CreateTemp("", "*.pdf")
	if err != nil {
		return "", fmt.Errorf("failed to create temporary PDF file: %w", err)
	}
	defer func() {
		_ = tempFile.Close()
		_ = os.Remove(tempFile.Name())
	}()

	if _, err := io.Copy(tempFile, r); err != nil {
		return "", fmt.Errorf("failed to write temporary PDF file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return "", fmt.Errorf("failed to flush temporary PDF file: %w", err)
	}

	outFile := tempFile.Name() + ".txt"
	defer func() {
		_ = os.Remove(outFile)
	}()

	cmd := exec.Command("pdftotext", "-layout", tempFile.Name(), outFile)
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("error running pdftotext: %w", err)
	}

	output, err := os.ReadFile(outFile)
	if err != nil {
		return "", fmt.Errorf("error reading extracted text: %w", err)
	}

	return string(output), nil
}

// MockTextExtractor implements TextExtractor for tests.
type MockTextExtractor struct {
	MockText     string
	MockErr      error
	AvailableErr error
}

// NewMockTextExtractor creates a mock returning the given text or error.
func NewMockTextExtractor(mockText string, mockErr error) *MockTextExtractor {
	return &MockTextExtractor{MockText: mockText, MockErr: mockErr}
}

func (e *MockTextExtractor) EnsureAvailable() error {
	return e.AvailableErr
}

func (e *MockTextExtractor) ExtractText(r io.Reader) (string, error) {
	if e.MockErr != nil {
		return "", e.MockErr
	}
	return e.MockText, nil
}
