// Package inbound defines the inbound-link similarity model consumed by
// the similar-hosts finder (spec.md section 3, "InboundSimilarity
// (consumed)"): given positive and negative seed hosts, it produces a
// Scorer over every other host in the graph. Building and training this
// model from crawl data is out of scope (spec.md section 1); this
// package provides the consumer-facing interfaces plus a small
// co-citation reference model suitable for tests and the demo CLI.
package inbound

import (
	"github.com/webrank/rankcore/pkg/webgraph"
)

// Scorer answers a similarity score for a host, given the seed set it was
// built from.
type Scorer interface {
	// Score returns a non-negative similarity score for node. Unknown
	// nodes score 0, never an error (spec.md section 4.6: "an unknown
	// host URL ... contributes nothing; no error is raised").
	Score(node webgraph.NodeID) float64
}

// Model is the consumed interface over a trained inbound-similarity
// model (spec.md section 6: "scorer(positive, negative) -> Scorer").
type Model interface {
	// Scorer builds a Scorer from a set of positive and negative seed
	// nodes.
	Scorer(positive, negative []webgraph.NodeID) Scorer
	// KnowsAbout reports whether the model has any signal for node.
	KnowsAbout(node webgraph.NodeID) bool
}

// CoCitationModel is a reference Model grounded in the web graph itself:
// a node's score is the number of its inbound edge sources that also link
// to at least one positive seed (a simple co-citation count), minus the
// number of its inbound edge sources that also link to a negative seed,
// clamped at zero. It exists so the
// similarity finder can be exercised end-to-end without a real trained
// model.
type CoCitationModel struct {
	graph webgraph.Graph
}

// NewCoCitationModel builds a CoCitationModel over graph.
func NewCoCitationModel(graph webgraph.Graph) *CoCitationModel {
	return &CoCitationModel{graph: graph}
}

func (m *CoCitationModel) KnowsAbout(node webgraph.NodeID) bool {
	_, ok := m.graph.ID2Node(node)
	return ok
}

func (m *CoCitationModel) Scorer(positive, negative []webgraph.NodeID) Scorer {
	posSources := backlinkSources(m.graph, positive)
	negSources := backlinkSources(m.graph, negative)
	return &coCitationScorer{graph: m.graph, posSources: posSources, negSources: negSources}
}

func backlinkSources(graph webgraph.Graph, seeds []webgraph.NodeID) map[webgraph.NodeID]struct{} {
	sources := make(map[webgraph.NodeID]struct{})
	for _, seed := range seeds {
		for _, edge := range graph.RawIngoingEdges(seed) {
			sources[edge.From] = struct{}{}
		}
	}
	return sources
}

type coCitationScorer struct {
	graph      webgraph.Graph
	posSources map[webgraph.NodeID]struct{}
	negSources map[webgraph.NodeID]struct{}
}

func (s *coCitationScorer) Score(node webgraph.NodeID) float64 {
	var pos, neg float64
	for _, edge := range s.graph.RawIngoingEdges(node) {
		if _, ok := s.posSources[edge.From]; ok {
			pos++
		}
		if _, ok := s.negSources[edge.From]; ok {
			neg++
		}
	}
	score := pos - neg
	if score < 0 {
		return 0
	}
	return score
}

var (
	_ Model  = (*CoCitationModel)(nil)
	_ Scorer = (*coCitationScorer)(nil)
)
