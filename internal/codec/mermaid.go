package codec

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"mindmap/internal/domain"
)

// MermaidExporter exports mind maps to Mermaid flowchart syntax
type MermaidExporter struct{}

// NewMermaidExporter creates a new Mermaid exporter
func NewMermaidExporter() *MermaidExporter {
	return &MermaidExporter{}
}

// Format returns the exporter format identifier
func (e *MermaidExporter) Format() string {
	return FormatMermaid
}

// ContentType returns the MIME type of the output
func (e *MermaidExporter) ContentType() string {
	return "text/plain; charset=utf-8"
}

// FileExtension returns the conventional file extension
func (e *MermaidExporter) FileExtension() string {
	return ".mmd"
}

// Export writes g as a left-to-right flowchart. Node ids are replaced by
// positional names since stored ids may contain characters Mermaid rejects.
func (e *MermaidExporter) Export(g *domain.Graph, w io.Writer) error {
	var sb strings.Builder
	sb.WriteString("graph LR\n")

	names := make(map[string]string, len(g.Nodes))
	for i, n := range g.Nodes {
		name := "N" + strconv.Itoa(i)
		names[n.ID] = name
		sb.WriteString(fmt.Sprintf("    %s[\"%s\"]\n", name, e.escapeLabel(n.Label())))
	}

	if len(g.Edges) > 0 {
		sb.WriteString("\n")
	}
	var links []string
	index := 0
	for _, edge := range g.Edges {
		from, ok := names[edge.Source]
		if !ok {
			continue
		}
		to, ok := names[edge.Target]
		if !ok {
			continue
		}
		if s := e.linkStyle(edge.Style); s != "" {
			links = append(links, fmt.Sprintf("    linkStyle %d %s\n", index, s))
		}
		sb.WriteString(fmt.Sprintf("    %s --> %s\n", from, to))
		index++
	}

	var styles []string
	for _, n := range g.Nodes {
		if s := e.nodeStyle(n.Style()); s != "" {
			styles = append(styles, fmt.Sprintf("    style %s %s\n", names[n.ID], s))
		}
	}
	if len(styles)+len(links) > 0 {
		sb.WriteString("\n")
		sb.WriteString(strings.Join(styles, ""))
		sb.WriteString(strings.Join(links, ""))
	}

	if _, err := io.WriteString(w, sb.String()); err != nil {
		return fmt.Errorf("failed to write mermaid: %w", err)
	}
	return nil
}

func (e *MermaidExporter) escapeLabel(label string) string {
	label = strings.ReplaceAll(label, `"`, "#quot;")
	label = strings.ReplaceAll(label, "\n", "<br/>")
	return label
}

func (e *MermaidExporter) nodeStyle(s domain.NodeStyle) string {
	var parts []string
	if s.Color != "" {
		parts = append(parts, "fill:"+s.Color)
	}
	if s.TextColor != "" {
		parts = append(parts, "color:"+s.TextColor)
	}
	if s.FontSize != "" {
		parts = append(parts, "font-size:"+s.FontSize)
	}
	if s.FontWeight != "" {
		parts = append(parts, "font-weight:"+s.FontWeight)
	}
	return strings.Join(parts, ",")
}

func (e *MermaidExporter) linkStyle(s *domain.EdgeStyle) string {
	if s == nil {
		return ""
	}
	var parts []string
	if s.Stroke != "" {
		parts = append(parts, "stroke:"+s.Stroke)
	}
	if s.StrokeWidth > 0 {
		parts = append(parts, "stroke-width:"+strconv.FormatFloat(s.StrokeWidth, 'f', -1, 64)+"px")
	}
	return strings.Join(parts, ",")
}
