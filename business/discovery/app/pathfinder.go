package app

import (
	"github.com/stxforge/pricegraph/business/discovery/domain"
	"github.com/stxforge/pricegraph/internal/token"
)

// FindPaths enumerates all simple paths (no repeated token) from the query
// token to the anchor within the hop budget. The budget bounds traversal
// depth so enumeration terminates regardless of graph size.
//
// An empty result is a normal outcome: the query token equals the anchor
// (trivial rate 1), or no liquidity route exists.
func FindPaths(g *PoolGraph, from *token.Token, anchor *token.Token, maxHops int) []*domain.Path {
	if from.ID() == anchor.ID() || maxHops < 1 {
		return nil
	}

	var paths []*domain.Path
	visited := map[token.ID]bool{from.ID(): true}

	var walk func(current *token.Token, tokens []*token.Token, pools []*domain.Pool)
	walk = func(current *token.Token, tokens []*token.Token, pools []*domain.Pool) {
		if len(pools) >= maxHops {
			return
		}

		for _, edge := range g.Neighbors(current.ID()) {
			next := edge.Other
			if next.ID() == anchor.ID() {
				paths = append(paths, &domain.Path{
					Tokens: appendTokens(tokens, next),
					Pools:  appendPools(pools, edge.Pool),
				})
				continue
			}
			if visited[next.ID()] {
				continue
			}

			visited[next.ID()] = true
			walk(next, append(tokens, next), append(pools, edge.Pool))
			delete(visited, next.ID())
		}
	}

	walk(from, []*token.Token{from}, nil)
	return paths
}

// appendTokens copies the accumulated prefix so finished paths do not
// alias the DFS working slices.
func appendTokens(prefix []*token.Token, last *token.Token) []*token.Token {
	out := make([]*token.Token, len(prefix)+1)
	copy(out, prefix)
	out[len(prefix)] = last
	return out
}

func appendPools(prefix []*domain.Pool, last *domain.Pool) []*domain.Pool {
	out := make([]*domain.Pool, len(prefix)+1)
	copy(out, prefix)
	out[len(prefix)] = last
	return out
}
