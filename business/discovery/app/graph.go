// Package app contains application services and port definitions for the
// discovery context.
package app

import (
	"sort"

	"github.com/stxforge/pricegraph/business/discovery/domain"
	"github.com/stxforge/pricegraph/internal/token"
)

// Edge is an adjacency entry: a pool and the token on its far side.
type Edge struct {
	Pool  *domain.Pool
	Other *token.Token
}

// SkippedPool records a pool excluded at graph build time.
type SkippedPool struct {
	PoolID string
	Reason string
}

// PoolGraph is an adjacency structure over a frozen snapshot. It is
// rebuilt wholesale on every fresh snapshot and never mutated after
// construction, so concurrent reads need no locking.
type PoolGraph struct {
	adjacency map[token.ID][]Edge
	snapshot  *domain.Snapshot
	edges     int
	skipped   []SkippedPool
}

// BuildPoolGraph indexes a snapshot's pools by token. Malformed and
// zero-reserve pools are excluded here so nothing downstream divides by
// an empty side.
func BuildPoolGraph(snapshot *domain.Snapshot) *PoolGraph {
	g := &PoolGraph{
		adjacency: make(map[token.ID][]Edge),
		snapshot:  snapshot,
	}

	for _, pool := range snapshot.Pools {
		if err := pool.Validate(); err != nil {
			g.skipped = append(g.skipped, SkippedPool{PoolID: pool.ID, Reason: err.Error()})
			continue
		}
		if !pool.HasLiquidity() {
			g.skipped = append(g.skipped, SkippedPool{PoolID: pool.ID, Reason: "zero reserve"})
			continue
		}

		g.adjacency[pool.TokenX.ID()] = append(g.adjacency[pool.TokenX.ID()], Edge{Pool: pool, Other: pool.TokenY})
		g.adjacency[pool.TokenY.ID()] = append(g.adjacency[pool.TokenY.ID()], Edge{Pool: pool, Other: pool.TokenX})
		g.edges++
	}

	// Deterministic neighbor order keeps path enumeration, and therefore
	// results for a frozen snapshot, stable across runs.
	for id := range g.adjacency {
		edges := g.adjacency[id]
		sort.Slice(edges, func(i, j int) bool { return edges[i].Pool.ID < edges[j].Pool.ID })
	}

	return g
}

// Neighbors returns the edges reachable from the given token.
func (g *PoolGraph) Neighbors(id token.ID) []Edge {
	return g.adjacency[id]
}

// Snapshot returns the snapshot the graph was built from.
func (g *PoolGraph) Snapshot() *domain.Snapshot {
	return g.snapshot
}

// PoolCount returns the number of usable pools in the graph.
func (g *PoolGraph) PoolCount() int {
	return g.edges
}

// TokenCount returns the number of tokens with at least one usable pool.
func (g *PoolGraph) TokenCount() int {
	return len(g.adjacency)
}

// Skipped returns the pools excluded at build time with reasons.
func (g *PoolGraph) Skipped() []SkippedPool {
	return g.skipped
}
