// Package export renders candidate lists as downloadable documents.
package export

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownFormat is returned by ParseFormat for unsupported names.
var ErrUnknownFormat = errors.New("unknown export format")

// Format names an export document type.
type Format string

// Supported formats.
const (
	FormatJSON Format = "json"
	FormatSQL  Format = "sql"
	FormatXLSX Format = "xlsx"
)

// Formats lists every supported format.
func Formats() []Format { return []Format{FormatJSON, FormatSQL, FormatXLSX} }

// ParseFormat resolves a case-insensitive format name.
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(name))); f {
	case FormatJSON, FormatSQL, FormatXLSX:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, name)
	}
}

// ContentType returns the MIME type served for f.
func (f Format) ContentType() string {
	switch f {
	case FormatJSON:
		return "application/json"
	case FormatSQL:
		return "application/sql"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "application/octet-stream"
	}
}

// FileName returns the suggested download name for f.
func (f Format) FileName() string {
	switch f {
	case FormatJSON:
		return "candidates.json"
	case FormatSQL:
		return "seed_data.sql"
	case FormatXLSX:
		return "candidate_rankings.xlsx"
	default:
		return "candidates"
	}
}
