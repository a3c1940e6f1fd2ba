package clipboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mindmap/internal/domain"
)

// fixture builds a→b, a→c
func fixture() *domain.Graph {
	g := domain.NewGraph()
	g.Nodes = append(g.Nodes,
		domain.NewNode("a", domain.Position{}, "a", domain.NodeStyle{}),
		domain.NewNode("b", domain.Position{X: 100}, "b", domain.NodeStyle{}),
		domain.NewNode("c", domain.Position{X: 200}, "c", domain.NodeStyle{}),
	)
	g.AddEdge("a", "b", domain.HandleRight, domain.HandleLeft)
	g.AddEdge("a", "c", domain.HandleRight, domain.HandleLeft)
	return g
}

func TestClipboardEmpty(t *testing.T) {
	var c Clipboard
	assert.True(t, c.IsEmpty())
	assert.Nil(t, c.Fragment())
	assert.True(t, c.IsEmpty())
}

func TestClipboardCaptureEdgeFilter(t *testing.T) {
	c := New()
	n := c.Capture(fixture(), []string{"a", "b"})
	require.Equal(t, 2, n)

	frag := c.Fragment()
	require.NotNil(t, frag)
	assert.Equal(t, []string{"a", "b"}, frag.NodeIDs())
	assert.Equal(t, []string{domain.EdgeID("a", "b")}, frag.EdgeIDs())
}

func TestClipboardCaptureIsByValue(t *testing.T) {
	g := fixture()
	stroke := "#000"
	g.StyleEdge(domain.EdgeID("a", "b"), domain.EdgeStylePatch{Stroke: &stroke})

	c := New()
	c.Capture(g, []string{"a", "b"})

	g.SetLabel("a", "changed")
	red := "#f00"
	g.StyleEdge(domain.EdgeID("a", "b"), domain.EdgeStylePatch{Stroke: &red})
	g.RemoveNodes("a", "b")

	frag := c.Fragment()
	require.Len(t, frag.Nodes, 2)
	assert.Equal(t, "a", frag.Nodes[0].Label())
	require.Len(t, frag.Edges, 1)
	assert.Equal(t, "#000", frag.Edges[0].Style.Stroke)
}

func TestClipboardFragmentIsCopy(t *testing.T) {
	c := New()
	c.Capture(fixture(), []string{"a"})

	c.Fragment().SetLabel("a", "mutated")
	assert.Equal(t, "a", c.Fragment().Nodes[0].Label())
}

func TestClipboardCaptureDropsSelection(t *testing.T) {
	g := fixture()
	g.SetSelected([]string{"a"})

	c := New()
	c.Capture(g, []string{"a"})
	assert.False(t, c.Fragment().Nodes[0].Selected)
}

func TestClipboardCaptureNothingKeepsContents(t *testing.T) {
	c := New()
	c.Capture(fixture(), []string{"b"})

	assert.Equal(t, 0, c.Capture(fixture(), []string{"missing"}))
	assert.Equal(t, 0, c.Capture(fixture(), nil))
	assert.Len(t, c.Fragment().Nodes, 1)
}

