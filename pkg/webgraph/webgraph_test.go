package webgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewNodeCanonicalizesHost(t *testing.T) {
	cases := map[string]string{
		"https://www.Example.com/path?q=1": "example.com",
		"http://EXAMPLE.ORG":                "example.org",
		"example.net":                       "example.net",
		"https://sub.example.com:8080/":     "sub.example.com",
	}
	for in, want := range cases {
		got := NewNode(in)
		assert.Equal(t, want, got.Name, "input %q", in)
	}
}

func TestNodeIDIsStableAndDistinct(t *testing.T) {
	a := NewNode("https://a.com")
	b := NewNode("https://a.com/")
	c := NewNode("https://b.com")

	assert.Equal(t, a.ID(), b.ID(), "same canonical host must hash identically")
	assert.NotEqual(t, a.ID(), c.ID())
}

func TestMemGraphEdgesAndLookup(t *testing.T) {
	g := NewMemGraph()
	a := NewNode("a.com")
	b := NewNode("b.com")
	c := NewNode("c.com")

	g.AddEdge(a, b)
	g.AddEdge(c, b)

	in := g.RawIngoingEdges(b.ID())
	require.Len(t, in, 2)

	out := g.RawOutgoingEdges(a.ID())
	require.Len(t, out, 1)
	assert.Equal(t, b.ID(), out[0].To)

	node, ok := g.ID2Node(b.ID())
	require.True(t, ok)
	assert.Equal(t, "b.com", node.Name)

	_, ok = g.ID2Node(NodeID(999999))
	assert.False(t, ok)
}

func TestMemGraphUnknownNodeHasNoEdges(t *testing.T) {
	g := NewMemGraph()
	assert.Empty(t, g.RawIngoingEdges(NodeID(1)))
	assert.Empty(t, g.RawOutgoingEdges(NodeID(1)))
}
