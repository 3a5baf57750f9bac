// Package decoder turns uploaded worksheets (.docx, .xlsx, .pdf) into raw
// tables and free text for the extractor.
package decoder

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"budgetgrader/internal/domain"
	"budgetgrader/internal/port"
)

// Decoder dispatches on file extension and implements port.DocumentDecoder.
type Decoder struct{}

var _ port.DocumentDecoder = (*Decoder)(nil)

// New creates a Decoder.
func New() *Decoder {
	return &Decoder{}
}

// FileTypeOf maps a file name to a supported FileType.
func FileTypeOf(name string) (domain.FileType, error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
	ft, ok := domain.AllowedExtensions[ext]
	if !ok {
		return "", fmt.Errorf("%w: %q", domain.ErrUnsupportedFileType, filepath.Ext(name))
	}
	return ft, nil
}

// Decode reads the uploaded bytes into a DecodedDocument.
func (d *Decoder) Decode(ctx context.Context, input port.DecodeInput) (*domain.DecodedDocument, error) {
	ft, err := FileTypeOf(input.FileName)
	if err != nil {
		return nil, err
	}
	if err := sniff(ft, input.Content); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var doc *domain.DecodedDocument
	switch ft {
	case domain.FileTypeDOCX:
		doc, err = decodeDOCX(input.Content)
	case domain.FileTypeXLSX:
		doc, err = decodeXLSX(input.Content)
	case domain.FileTypePDF:
		doc, err = decodePDF(input.Content)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrDocumentDecode, input.FileName, err)
	}
	doc.FileName = input.FileName
	doc.FileType = ft
	return doc, nil
}

// sniff rejects content whose signature contradicts the extension.
func sniff(ft domain.FileType, content []byte) error {
	if len(content) == 0 {
		return fmt.Errorf("%w: empty file", domain.ErrDocumentDecode)
	}
	detected := http.DetectContentType(content)
	switch ft {
	case domain.FileTypePDF:
		if detected != domain.AllowedFileTypes[ft] {
			return fmt.Errorf("%w: .pdf content detected as %s", domain.ErrUnsupportedFileType, detected)
		}
	case domain.FileTypeDOCX, domain.FileTypeXLSX:
		if detected != "application/zip" {
			return fmt.Errorf("%w: .%s content detected as %s", domain.ErrUnsupportedFileType, ft, detected)
		}
	}
	return nil
}
