// Package codec converts mind-map graphs to and from their stored content
// format and renders them for export.
package codec

import (
	"fmt"
	"io"
	"strings"

	"mindmap/internal/domain"
)

// Export formats
const (
	FormatJSON    = "json"
	FormatYAML    = "yaml"
	FormatMermaid = "mermaid"
)

// Exporter renders a graph in some text format
type Exporter interface {
	Export(g *domain.Graph, w io.Writer) error
	Format() string
	ContentType() string
	FileExtension() string
}

// NewExporter creates the exporter for format
func NewExporter(format string) (Exporter, error) {
	switch ParseFormat(format) {
	case FormatJSON:
		return NewJSONCodec(), nil
	case FormatYAML:
		return NewYAMLCodec(), nil
	case FormatMermaid:
		return NewMermaidExporter(), nil
	default:
		return nil, fmt.Errorf("unsupported export format: %q", format)
	}
}

// ParseFormat normalizes a format name and its common aliases
func ParseFormat(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON
	case "yaml", "yml":
		return FormatYAML
	case "mermaid", "mmd":
		return FormatMermaid
	default:
		return s
	}
}

// Formats lists the available export formats
func Formats() []string {
	return []string{FormatJSON, FormatYAML, FormatMermaid}
}
