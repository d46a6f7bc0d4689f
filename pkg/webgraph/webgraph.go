// Package webgraph defines the host-level directed graph consumed by the
// similar-hosts finder (spec.md section 3, "Web graph (consumed)"): a
// directed graph over host NodeIDs with ingoing/outgoing edge iteration
// and reverse node lookup. This package treats the graph's storage and
// crawl-time population as out of scope (spec.md section 1) and provides
// only the consumer-facing Graph interface plus an in-memory
// implementation for tests and small deployments.
package webgraph

import (
	"net/url"
	"strings"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/cespare/xxhash/v2"
)

// NodeID identifies a host in the web graph.
type NodeID uint64

// Node is a host URL with a canonicalization to its bare host.
type Node struct {
	Name string // canonical host, e.g. "example.com"
}

// ID derives this node's stable NodeID from its canonical host name.
func (n Node) ID() NodeID {
	return NodeID(xxhash.Sum64String(n.Name))
}

// NewNode canonicalizes a raw URL (or bare host) string into a Node,
// mirroring Node::from(url).into_host() from the source system: scheme
// and path are stripped, the host is lower-cased, and a leading "www."
// is dropped.
func NewNode(rawURL string) Node {
	host := rawURL
	if u, err := url.Parse(rawURL); err == nil && u.Host != "" {
		host = u.Host
	}
	host = strings.ToLower(host)
	host = strings.TrimPrefix(host, "www.")
	if i := strings.IndexByte(host, ':'); i >= 0 {
		host = host[:i]
	}
	return Node{Name: host}
}

// Edge is a directed edge between two hosts.
type Edge struct {
	From NodeID
	To   NodeID
}

// Graph is the consumed interface over a host-level web graph (spec.md
// section 3/6).
type Graph interface {
	// RawIngoingEdges yields every edge pointing at n.
	RawIngoingEdges(n NodeID) []Edge
	// RawOutgoingEdges yields every edge leaving n.
	RawOutgoingEdges(n NodeID) []Edge
	// ID2Node resolves a NodeID back to its Node. ok is false for a
	// NodeID the graph has never seen.
	ID2Node(id NodeID) (Node, bool)
}

// MemGraph is an in-memory Graph backed by RoaringBitmap adjacency sets,
// suitable for tests, small crawls, and the demo CLI. Node IDs are
// compacted to roaring's native uint32 domain via a dense index table,
// since a raw 64-bit NodeID does not fit a roaring.Bitmap directly.
type MemGraph struct {
	nodes   map[NodeID]Node
	ids     []NodeID // dense index -> NodeID
	index   map[NodeID]uint32
	out     map[uint32]*roaring.Bitmap
	in      map[uint32]*roaring.Bitmap
}

// NewMemGraph returns an empty graph ready to have edges added.
func NewMemGraph() *MemGraph {
	return &MemGraph{
		nodes: make(map[NodeID]Node),
		index: make(map[NodeID]uint32),
		out:   make(map[uint32]*roaring.Bitmap),
		in:    make(map[uint32]*roaring.Bitmap),
	}
}

func (g *MemGraph) internNode(n Node) uint32 {
	id := n.ID()
	if idx, ok := g.index[id]; ok {
		return idx
	}
	idx := uint32(len(g.ids))
	g.ids = append(g.ids, id)
	g.index[id] = idx
	g.nodes[id] = n
	g.out[idx] = roaring.New()
	g.in[idx] = roaring.New()
	return idx
}

// AddEdge registers a directed edge between two hosts, interning both
// endpoints if new.
func (g *MemGraph) AddEdge(from, to Node) {
	fromIdx := g.internNode(from)
	toIdx := g.internNode(to)
	g.out[fromIdx].Add(toIdx)
	g.in[toIdx].Add(fromIdx)
}

func (g *MemGraph) idAt(idx uint32) NodeID {
	return g.ids[idx]
}

func (g *MemGraph) RawIngoingEdges(n NodeID) []Edge {
	idx, ok := g.index[n]
	if !ok {
		return nil
	}
	bm, ok := g.in[idx]
	if !ok {
		return nil
	}
	edges := make([]Edge, 0, bm.GetCardinality())
	it := bm.Iterator()
	for it.HasNext() {
		from := it.Next()
		edges = append(edges, Edge{From: g.idAt(from), To: n})
	}
	return edges
}

func (g *MemGraph) RawOutgoingEdges(n NodeID) []Edge {
	idx, ok := g.index[n]
	if !ok {
		return nil
	}
	bm, ok := g.out[idx]
	if !ok {
		return nil
	}
	edges := make([]Edge, 0, bm.GetCardinality())
	it := bm.Iterator()
	for it.HasNext() {
		to := it.Next()
		edges = append(edges, Edge{From: n, To: g.idAt(to)})
	}
	return edges
}

func (g *MemGraph) ID2Node(id NodeID) (Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

var _ Graph = (*MemGraph)(nil)
