// Package validation holds the boundary checks applied to user input before
// it reaches the import pipeline.
package validation

import (
	"fmt"
	"path/filepath"
	"strings"
)

// AllowedExtensions are the upload file types the pipeline accepts.
var AllowedExtensions = []string{".csv", ".txt", ".ofx", ".pdf"}

// IsValidUploadName checks the uploaded file name and extension.
func IsValidUploadName(filename string) error {
	if strings.TrimSpace(filename) == "" {
		return fmt.Errorf("no file selected")
	}

	ext := strings.ToLower(filepath.Ext(filename))
	for _, allowed := range AllowedExtensions {
		if ext == allowed {
			return nil
		}
	}
	return fmt.Errorf("unsupported file type %q. Supported types are %s",
		ext, strings.Join(AllowedExtensions, ", "))
}

// IsValidUploadSize checks the declared upload size against the configured
// limit. Zero-byte uploads are rejected outright.
func IsValidUploadSize(size, maxBytes int64) error {
	if size <= 0 {
		return fmt.Errorf("uploaded file is empty")
	}
	if maxBytes > 0 && size > maxBytes {
		return fmt.Errorf("file too large: %d bytes (limit %d)", size, maxBytes)
	}
	return nil
}
