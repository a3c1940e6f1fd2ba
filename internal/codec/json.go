package codec

import (
	"encoding/json"
	"fmt"
	"io"

	"mindmap/internal/domain"
)

// JSONCodec exports the stored content format, indented
type JSONCodec struct{}

// NewJSONCodec creates a new JSON codec
func NewJSONCodec() *JSONCodec {
	return &JSONCodec{}
}

// Format returns the codec format identifier
func (c *JSONCodec) Format() string {
	return FormatJSON
}

// ContentType returns the MIME type of the output
func (c *JSONCodec) ContentType() string {
	return "application/json"
}

// FileExtension returns the conventional file extension
func (c *JSONCodec) FileExtension() string {
	return ".json"
}

// Export writes g as indented JSON content
func (c *JSONCodec) Export(g *domain.Graph, w io.Writer) error {
	cont := content{Nodes: g.Nodes, Edges: g.Edges}
	if cont.Nodes == nil {
		cont.Nodes = []domain.Node{}
	}
	if cont.Edges == nil {
		cont.Edges = []domain.Edge{}
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(cont); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}
