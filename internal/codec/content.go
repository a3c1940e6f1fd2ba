package codec

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"lukechampine.com/blake3"

	"mindmap/internal/domain"
)

// content is the stored shape of a mind map: {"nodes": [...], "edges": [...]}
type content struct {
	Nodes []domain.Node `json:"nodes"`
	Edges []domain.Edge `json:"edges"`
}

// Encode serializes g to its stored content form
func Encode(g *domain.Graph) ([]byte, error) {
	c := content{Nodes: g.Nodes, Edges: g.Edges}
	if c.Nodes == nil {
		c.Nodes = []domain.Node{}
	}
	if c.Edges == nil {
		c.Edges = []domain.Edge{}
	}
	data, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to encode content: %w", err)
	}
	return data, nil
}

// EncodeString is Encode returning a string
func EncodeString(g *domain.Graph) (string, error) {
	data, err := Encode(g)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Decode parses stored content. Empty content is an empty graph. Parsed data
// is sanitized so that the graph invariants hold.
func Decode(data string) (*domain.Graph, error) {
	g := domain.NewGraph()
	if strings.TrimSpace(data) == "" {
		return g, nil
	}

	var c content
	if err := json.Unmarshal([]byte(data), &c); err != nil {
		return nil, fmt.Errorf("failed to parse content: %w", err)
	}
	if c.Nodes != nil {
		g.Nodes = c.Nodes
	}
	if c.Edges != nil {
		g.Edges = c.Edges
	}
	g.Sanitize()
	return g, nil
}

// DecodeLenient is Decode that treats malformed content as an empty graph
func DecodeLenient(data string) (*domain.Graph, bool) {
	g, err := Decode(data)
	if err != nil {
		return domain.NewGraph(), false
	}
	return g, true
}

// CountElements reports the node and edge counts of stored content, or
// zeros when it does not parse
func CountElements(data string) (nodes, edges int) {
	var c struct {
		Nodes []json.RawMessage `json:"nodes"`
		Edges []json.RawMessage `json:"edges"`
	}
	if err := json.Unmarshal([]byte(data), &c); err != nil {
		return 0, 0
	}
	return len(c.Nodes), len(c.Edges)
}

// Digest returns the hex BLAKE3 hash of data
func Digest(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// DigestGraph returns the digest of g's encoded content
func DigestGraph(g *domain.Graph) (string, error) {
	data, err := Encode(g)
	if err != nil {
		return "", err
	}
	return Digest(data), nil
}

// Indent pretty-prints stored content, returning it unchanged when it does
// not parse
func Indent(data string) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, []byte(data), "", "  "); err != nil {
		return data
	}
	return buf.String()
}
