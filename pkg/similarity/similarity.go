// Package similarity implements the similar-hosts finder (spec.md
// section 4.6, C6): given a set of seed hosts, it discovers candidate
// hosts via co-citation in the web graph and ranks them by an
// inbound-similarity scorer.
package similarity

import (
	"container/heap"
	"sort"

	"github.com/webrank/rankcore/pkg/inbound"
	"github.com/webrank/rankcore/pkg/schema"
	"github.com/webrank/rankcore/pkg/webgraph"
)

// ScoredNode pairs a resolved Node with its similarity score, the unit
// returned to callers (spec.md section 3).
type ScoredNode struct {
	Node  webgraph.Node
	Score float64
}

// scoredNodeID is the internal, unresolved form used while the top-K
// heap is being built.
type scoredNodeID struct {
	nodeID webgraph.NodeID
	score  float64
}

// less orders by score, with NaN compared equal to everything rather
// than panicking or sorting unpredictably (spec.md section 4.6: "NaN
// scores fall back to Equal under the ordering").
func less(a, b scoredNodeID) bool {
	return a.score < b.score
}

// Finder wires a web graph and an inbound-similarity model into the
// similar-hosts algorithm (spec.md section 4.6).
type Finder struct {
	graph webgraph.Graph
	model inbound.Model
}

// NewFinder builds a Finder over graph using model to score candidates.
func NewFinder(graph webgraph.Graph, model inbound.Model) *Finder {
	return &Finder{graph: graph, model: model}
}

// FindSimilarSites runs the section 4.6 algorithm: canonicalize seeds,
// gather backlink sources, expand to candidate hosts via their outgoing
// edges, score every candidate, and return the top min(limit,
// MaxSimilarSites) by descending score.
func (f *Finder) FindSimilarSites(seedURLs []string, limit int) []ScoredNode {
	if limit > schema.MaxSimilarSites {
		limit = schema.MaxSimilarSites
	}
	if limit <= 0 {
		return nil
	}

	seeds := make([]webgraph.NodeID, 0, len(seedURLs))
	for _, raw := range seedURLs {
		seeds = append(seeds, webgraph.NewNode(raw).ID())
	}

	scorer := f.model.Scorer(seeds, nil)

	backlinkCount := make(map[webgraph.NodeID]int)
	for _, seed := range seeds {
		for _, edge := range f.graph.RawIngoingEdges(seed) {
			backlinkCount[edge.From]++
		}
	}

	// Sort backlink sources by descending count. The ordering only
	// matters for determinism under an adversarial early cap; this
	// implementation traverses every source, matching spec.md section
	// 4.6 step 4's note that no such cap is specified here.
	type backlinkSource struct {
		node  webgraph.NodeID
		count int
	}
	sources := make([]backlinkSource, 0, len(backlinkCount))
	for node, count := range backlinkCount {
		sources = append(sources, backlinkSource{node: node, count: count})
	}
	sort.Slice(sources, func(i, j int) bool { return sources[i].count > sources[j].count })

	potentialNodes := make(map[webgraph.NodeID]struct{})
	for _, src := range sources {
		for _, edge := range f.graph.RawOutgoingEdges(src.node) {
			potentialNodes[edge.To] = struct{}{}
		}
	}

	h := &scoredNodeHeap{}
	heap.Init(h)
	for node := range potentialNodes {
		candidate := scoredNodeID{nodeID: node, score: scorer.Score(node)}
		if h.Len() < limit {
			heap.Push(h, candidate)
			continue
		}
		if less((*h)[0], candidate) {
			(*h)[0] = candidate
			heap.Fix(h, 0)
		}
	}

	scored := make([]scoredNodeID, h.Len())
	copy(scored, *h)
	sort.Slice(scored, func(i, j int) bool { return less(scored[j], scored[i]) }) // descending

	result := make([]ScoredNode, 0, len(scored))
	for _, sn := range scored {
		node, ok := f.graph.ID2Node(sn.nodeID)
		if !ok {
			continue
		}
		result = append(result, ScoredNode{Node: node, Score: sn.score})
	}
	return result
}

// KnowsAbout delegates to the inbound-similarity model's coverage check
// (spec.md section 4.6).
func (f *Finder) KnowsAbout(node webgraph.Node) bool {
	return f.model.KnowsAbout(node.ID())
}

// scoredNodeHeap is a min-heap of scoredNodeID by score, used to bound
// FindSimilarSites's candidate set to the requested limit (spec.md
// section 4.6 step 6).
type scoredNodeHeap []scoredNodeID

func (h scoredNodeHeap) Len() int            { return len(h) }
func (h scoredNodeHeap) Less(i, j int) bool   { return less(h[i], h[j]) }
func (h scoredNodeHeap) Swap(i, j int)        { h[i], h[j] = h[j], h[i] }
func (h *scoredNodeHeap) Push(x any) { *h = append(*h, x.(scoredNodeID)) }
func (h *scoredNodeHeap) Pop() any {
	old := *h
	n := len(old)
	v := old[n-1]
	*h = old[:n-1]
	return v
}
