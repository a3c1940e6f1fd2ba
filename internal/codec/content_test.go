package codec

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mindmap/internal/domain"
)

const storedContent = `{
  "nodes": [
    {"id": "1", "position": {"x": 0, "y": 0}, "data": {"label": "Root Node"}, "type": "mindMap"},
    {"id": "abc", "position": {"x": 250, "y": 100}, "data": {"label": "Idea", "color": "#ff0000", "fontWeight": "bold"}, "type": "mindMap"}
  ],
  "edges": [
    {"id": "e1-abc", "source": "1", "target": "abc", "sourceHandle": "right", "targetHandle": "left", "style": {"stroke": "#333", "strokeWidth": 2}, "updatable": true}
  ]
}`

func TestDecode(t *testing.T) {
	g, err := Decode(storedContent)
	require.NoError(t, err)

	require.Len(t, g.Nodes, 2)
	require.Len(t, g.Edges, 1)

	idea, ok := g.Node("abc")
	require.True(t, ok)
	assert.Equal(t, "Idea", idea.Label())
	assert.Equal(t, "#ff0000", idea.Style().Color)
	assert.Equal(t, "bold", idea.Style().FontWeight)
	assert.Equal(t, domain.Position{X: 250, Y: 100}, idea.Position)

	e := g.Edges[0]
	assert.Equal(t, domain.HandleRight, e.SourceHandle)
	require.NotNil(t, e.Style)
	assert.Equal(t, 2.0, e.Style.StrokeWidth)
	assert.True(t, e.Updatable)
}

func TestDecodeEmpty(t *testing.T) {
	for _, in := range []string{"", "   ", "null", "{}"} {
		g, err := Decode(in)
		require.NoError(t, err, in)
		assert.Empty(t, g.Nodes, in)
		assert.Empty(t, g.Edges, in)
	}
}

func TestDecodeSanitizes(t *testing.T) {
	g, err := Decode(`{"nodes":[{"id":"a"}],"edges":[{"id":"x","source":"a","target":"gone"}]}`)
	require.NoError(t, err)

	assert.Empty(t, g.Edges)
	assert.Equal(t, domain.NodeTypeMindMap, g.Nodes[0].Type)
}

func TestDecodeMalformed(t *testing.T) {
	_, err := Decode(`{"nodes": [`)
	assert.Error(t, err)

	g, ok := DecodeLenient(`not json`)
	assert.False(t, ok)
	assert.Empty(t, g.Nodes)

	g, ok = DecodeLenient(storedContent)
	assert.True(t, ok)
	assert.Len(t, g.Nodes, 2)
}

func TestEncodeRoundTrip(t *testing.T) {
	g, err := Decode(storedContent)
	require.NoError(t, err)

	data, err := Encode(g)
	require.NoError(t, err)

	back, err := Decode(string(data))
	require.NoError(t, err)
	assert.Equal(t, g.Nodes, back.Nodes)
	assert.Equal(t, g.Edges, back.Edges)
}

func TestEncodeShape(t *testing.T) {
	g := domain.NewRootGraph()
	g.SetSelected([]string{domain.RootNodeID})

	data, err := Encode(g)
	require.NoError(t, err)

	var raw map[string][]map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))

	require.Len(t, raw["nodes"], 1)
	node := raw["nodes"][0]
	assert.Equal(t, "1", node["id"])
	assert.Equal(t, "mindMap", node["type"])
	assert.Equal(t, map[string]any{"label": "Root Node"}, node["data"])
	assert.NotContains(t, node, "selected")
	assert.NotNil(t, raw["edges"])
}

func TestEncodeNilSlices(t *testing.T) {
	data, err := Encode(&domain.Graph{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"nodes":[],"edges":[]}`, string(data))
}

func TestCountElements(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		wantNodes int
		wantEdges int
	}{
		{"stored", storedContent, 2, 1},
		{"empty object", `{}`, 0, 0},
		{"malformed", `{"nodes": [1,`, 0, 0},
		{"empty string", ``, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nodes, edges := CountElements(tt.content)
			assert.Equal(t, tt.wantNodes, nodes)
			assert.Equal(t, tt.wantEdges, edges)
		})
	}
}

func TestDigest(t *testing.T) {
	a := Digest([]byte("abc"))
	assert.Len(t, a, 64)
	assert.Equal(t, a, Digest([]byte("abc")))
	assert.NotEqual(t, a, Digest([]byte("abd")))

	g := domain.NewRootGraph()
	before, err := DigestGraph(g)
	require.NoError(t, err)

	g.SetSelected([]string{domain.RootNodeID})
	same, _ := DigestGraph(g)
	assert.Equal(t, before, same, "selection is not content")

	g.SetLabel(domain.RootNodeID, "Other")
	after, _ := DigestGraph(g)
	assert.NotEqual(t, before, after)
}

func TestIndent(t *testing.T) {
	assert.Equal(t, "{\n  \"a\": 1\n}", Indent(`{"a":1}`))
	assert.Equal(t, "oops", Indent("oops"))
}
