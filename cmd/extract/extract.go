// Package extract handles offline statement extraction
package extract

import (
	"bytes"
	"fmt"
	"os"

	"rferreira/meubolso/cmd/root"
	"rferreira/meubolso/internal/common"
	"rferreira/meubolso/internal/factory"
	"rferreira/meubolso/internal/logging"
	"rferreira/meubolso/internal/models"
	"rferreira/meubolso/internal/normalizer"
	"rferreira/meubolso/internal/pdfparser"

	"github.com/spf13/cobra"
)

// Cmd represents the extract command
var Cmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract transactions from a statement file",
	Long: `Extract transactions from a bank statement or card invoice (CSV, OFX or PDF)
and write the normalized candidates to a CSV file, without touching the remote
store. Useful for checking what an import would produce.`,
	RunE: extractFunc,
}

func extractFunc(cmd *cobra.Command, args []string) error {
	if root.AppContainer == nil {
		return fmt.Errorf("container not initialized")
	}
	if root.SharedFlags.Input == "" {
		return fmt.Errorf("input file is required (use --input)")
	}
	if root.SharedFlags.Output == "" {
		return fmt.Errorf("output file is required (use --output)")
	}

	log := root.AppContainer.GetLogger()
	log.Info("Extracting statement",
		logging.Field{Key: "input", Value: root.SharedFlags.Input},
		logging.Field{Key: "output", Value: root.SharedFlags.Output})

	data, err := os.ReadFile(root.SharedFlags.Input)
	if err != nil {
		return fmt.Errorf("failed to read input file: %w", err)
	}

	source, err := factory.DetectFormat(root.SharedFlags.Input, data)
	if err != nil {
		return err
	}

	raw, docType, err := extractRaw(source, data)
	if err != nil {
		return err
	}

	cfg := root.AppContainer.GetConfig()
	candidates := normalizer.Normalize(raw, docType, normalizer.Options{
		MinDescription: cfg.Importer.MinDescription,
	})
	for i := range candidates {
		candidates[i].ID = i + 1
	}

	if err := common.WriteCandidatesToCSV(candidates, root.SharedFlags.Output); err != nil {
		return err
	}

	log.Info("Extraction completed",
		logging.Field{Key: "format", Value: source},
		logging.Field{Key: "document_type", Value: docType},
		logging.Field{Key: "candidates", Value: len(candidates)})
	return nil
}

// extractRaw mirrors the import session's dispatch: PDFs render to text once,
// shared between the classifier and the line parser.
func extractRaw(source models.SourceFormat, data []byte) ([]models.RawCandidate, models.DocumentType, error) {
	log := root.AppContainer.GetLogger()
	docClassifier := root.AppContainer.GetClassifier()

	if source == models.SourcePDF {
		textExtractor := pdfparser.NewPdftotextExtractor()
		if err := textExtractor.EnsureAvailable(); err != nil {
			return nil, "", fmt.Errorf("pdf tooling unavailable: %w", err)
		}
		text, err := textExtractor.ExtractText(bytes.NewReader(data))
		if err != nil {
			return nil, "", err
		}
		docType := docClassifier.Classify(text)
		raw := pdfparser.NewExtractor(log, textExtractor).ParseText(text)
		return raw, docType, nil
	}

	docType := docClassifier.Classify(string(data))
	ext, err := factory.GetExtractor(source, root.AppContainer.GetExtractorConfig(), log)
	if err != nil {
		return nil, "", err
	}
	raw, err := ext.Extract(bytes.NewReader(data))
	if err != nil {
		return nil, "", err
	}
	return raw, docType, nil
}
