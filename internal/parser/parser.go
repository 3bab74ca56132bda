package parser

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dgallion1/timegrid/internal/timeline"
)

// Parser converts raw source bytes into the flat element sequence consumed
// by the tree builder. Parsers tag elements but never validate payloads;
// unknown type tags surface later from timeline.Build.
type Parser interface {
	Parse(r io.Reader, filename string) ([]timeline.Element, error)
}

// SupportedExtensions lists source file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".csv":      true,
	".tsv":      true,
	".json":     true,
	".md":       true,
	".markdown": true,
	".html":     true,
	".htm":      true,
	".docx":     true,
	".pdf":      true,
}

// ForFile returns the appropriate parser for a filename.
func ForFile(filename string) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".csv":
		return &CSVParser{}, nil
	case ".tsv":
		return &CSVParser{Comma: '\t'}, nil
	case ".json":
		return &JSONParser{}, nil
	case ".md", ".markdown":
		return &MarkdownParser{}, nil
	case ".html", ".htm":
		return &HTMLParser{}, nil
	case ".docx":
		return &DOCXParser{}, nil
	case ".pdf":
		return &PDFParser{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// normalizeType canonicalizes a raw type tag. The legacy spreadsheet schema
// used "group-flag" and "unit-flag" for heading rows; both spellings are
// accepted. Unrecognized tags pass through unchanged so the builder can
// reject them with the offending value intact.
func normalizeType(raw string) timeline.ElementType {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "group-flag", "group-heading":
		return timeline.GroupHeading
	case "unit-flag", "unit-heading":
		return timeline.UnitHeading
	case "record":
		return timeline.Record
	}
	return timeline.ElementType(strings.TrimSpace(raw))
}
