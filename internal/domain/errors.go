package domain

import "errors"

var (
	ErrUnsupportedFileType        = errors.New("unsupported file type")
	ErrFileTooLarge               = errors.New("file exceeds maximum allowed size")
	ErrDocumentDecode             = errors.New("document could not be decoded")
	ErrNoGradableData             = errors.New("no budget data found in the document")
	ErrExternalExtractionRequired = errors.New("document has no table structure and no remote extractor is configured")
	ErrExternalService            = errors.New("external grading service failed")
	ErrInvalidGradingOptions      = errors.New("invalid grading options")
)
