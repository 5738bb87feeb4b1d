// Package export renders session results and metadata snapshots as
// downloadable JSON and CSV documents.
package export

import "fmt"

// Format is a download format identifier.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// FormatInfo provides metadata about an export format.
type FormatInfo struct {
	// Name is the format identifier.
	Name Format

	// MIMEType is the standard MIME type.
	MIMEType string

	// Extension is the file extension (with dot).
	Extension string
}

// FormatRegistry contains metadata for all supported formats.
var FormatRegistry = map[Format]FormatInfo{
	FormatJSON: {
		Name:      FormatJSON,
		MIMEType:  "application/json",
		Extension: ".json",
	},
	FormatCSV: {
		Name:      FormatCSV,
		MIMEType:  "text/csv",
		Extension: ".csv",
	},
}

// ParseFormat validates a format string from a request path.
func ParseFormat(s string) (FormatInfo, error) {
	info, ok := FormatRegistry[Format(s)]
	if !ok {
		return FormatInfo{}, fmt.Errorf("format must be 'json' or 'csv', got %q", s)
	}
	return info, nil
}
