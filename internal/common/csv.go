// Package common provides shared CSV input/output helpers used by the CLI.
package common

import (
	"fmt"
	"os"

	"github.com/gocarina/gocsv"

	"rferreira/meubolso/internal/logging"
	"rferreira/meubolso/internal/models"
)

// ReadCSVFile reads CSV data into a slice of structs using gocsv.
// TCSVRow is the struct type that maps to the CSV columns.
func ReadCSVFile[TCSVRow any](filePath string) ([]TCSVRow, error) {
	log := logging.GetLogger()
	log.Info("Reading CSV file", logging.Field{Key: "file", Value: filePath})

	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("error opening CSV file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			log.WithError(err).Warn("Failed to close file")
		}
	}()

	var rows []TCSVRow
	if err := gocsv.UnmarshalFile(file, &rows); err != nil {
		return nil, fmt.Errorf("error parsing CSV file: %w", err)
	}

	return rows, nil
}

// WriteCandidatesToCSV writes extracted candidates to a CSV file. Used by the
// extract command to preview a document without touching the remote store.
func WriteCandidatesToCSV(candidates []models.Candidate, csvFile string) error {
	if candidates == nil {
		return fmt.Errorf("cannot write nil candidates to CSV")
	}

	log := logging.GetLogger()
	log.Info("Writing candidates to CSV file",
		logging.Field{Key: "file", Value: csvFile},
		logging.Field{Key: "count", Value: len(candidates)})

	file, err := os.Create(csvFile)
	if err != nil {
		return fmt.Errorf("error creating CSV file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			log.WithError(err).Warn("Failed to close file")
		}
	}()

	if err := gocsv.MarshalFile(&candidates, file); err != nil {
		return fmt.Errorf("error writing CSV file: %w", err)
	}

	return nil
}
