package codec

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"mindmap/internal/domain"
)

// YAMLCodec exports a mind map as an indented outline
type YAMLCodec struct{}

// NewYAMLCodec creates a new YAML codec
func NewYAMLCodec() *YAMLCodec {
	return &YAMLCodec{}
}

// Format returns the codec format identifier
func (c *YAMLCodec) Format() string {
	return FormatYAML
}

// ContentType returns the MIME type of the output
func (c *YAMLCodec) ContentType() string {
	return "application/yaml"
}

// FileExtension returns the conventional file extension
func (c *YAMLCodec) FileExtension() string {
	return ".yaml"
}

// yamlOutline represents the YAML structure of an exported map
type yamlOutline struct {
	Nodes []yamlNode `yaml:"nodes"`
	Links []yamlLink `yaml:"links,omitempty"`
}

type yamlNode struct {
	ID       string            `yaml:"id"`
	Label    string            `yaml:"label"`
	Style    *domain.NodeStyle `yaml:"style,omitempty"`
	Children []yamlNode        `yaml:"children,omitempty"`
}

type yamlLink struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

// Export writes g as a tree of nodes under their primary parents; edges
// that do not fit the tree are listed under links
func (c *YAMLCodec) Export(g *domain.Graph, w io.Writer) error {
	o := buildOutline(g)

	var build func(id string) yamlNode
	build = func(id string) yamlNode {
		n, _ := g.Node(id)
		yn := yamlNode{ID: n.ID, Label: n.Label()}
		if s := n.Style(); s != (domain.NodeStyle{}) {
			yn.Style = &s
		}
		for _, child := range o.children[id] {
			yn.Children = append(yn.Children, build(child))
		}
		return yn
	}

	var out yamlOutline
	for _, id := range o.roots {
		out.Nodes = append(out.Nodes, build(id))
	}
	for _, e := range o.links {
		out.Links = append(out.Links, yamlLink{From: e.Source, To: e.Target})
	}

	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(out); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}
	return encoder.Close()
}
