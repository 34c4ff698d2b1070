package parser

import (
	"rferreira/meubolso/internal/logging"
)

// BaseParser provides the logger plumbing shared by all extractor
// implementations. Extractors embed it:
//
//	type Extractor struct {
//		parser.BaseParser
//		// format-specific fields
//	}
type BaseParser struct {
	logger logging.Logger
}

// NewBaseParser creates a BaseParser with the provided logger, falling back
// to the default logger when nil.
func NewBaseParser(logger logging.Logger) BaseParser {
	if logger == nil {
		logger = logging.GetLogger()
	}
	return BaseParser{logger: logger}
}

// SetLogger replaces the extractor's logger.
func (b *BaseParser) SetLogger(logger logging.Logger) {
	if logger != nil {
		b.logger = logger
	}
}

// Logger returns the current logger instance.
func (b *BaseParser) Logger() logging.Logger {
	return b.logger
}
