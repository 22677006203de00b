package app_test

import (
	"testing"
	"time"

	"github.com/stxforge/pricegraph/business/discovery/app"
	"github.com/stxforge/pricegraph/internal/token"
)

func TestFindPaths_EnumeratesAllRoutes(t *testing.T) {
	g := app.BuildPoolGraph(testSnapshot(1, time.Now()))

	paths := app.FindPaths(g, token.WELSH, token.SBTC, 4)
	if len(paths) != 2 {
		t.Fatalf("expected 2 routes for WELSH, got %d", len(paths))
	}

	routes := map[string]bool{}
	for _, p := range paths {
		routes[p.String()] = true
		if p.Terminal().ID() != token.SBTC.ID() {
			t.Errorf("path %s does not end at the anchor", p)
		}
	}
	if !routes["WELSH > sBTC"] || !routes["WELSH > STX > sBTC"] {
		t.Errorf("unexpected route set: %v", routes)
	}
}

func TestFindPaths_HopBudget(t *testing.T) {
	g := app.BuildPoolGraph(testSnapshot(1, time.Now()))

	paths := app.FindPaths(g, token.WELSH, token.SBTC, 1)
	if len(paths) != 1 {
		t.Fatalf("expected only the direct route within 1 hop, got %d", len(paths))
	}
	if paths[0].Hops() != 1 {
		t.Errorf("expected 1 hop, got %d", paths[0].Hops())
	}
}

func TestFindPaths_AnchorQueryIsEmpty(t *testing.T) {
	g := app.BuildPoolGraph(testSnapshot(1, time.Now()))

	if paths := app.FindPaths(g, token.SBTC, token.SBTC, 4); len(paths) != 0 {
		t.Errorf("anchor query must yield no paths, got %d", len(paths))
	}
}

func TestFindPaths_DisconnectedToken(t *testing.T) {
	g := app.BuildPoolGraph(testSnapshot(1, time.Now()))

	// ALEX's only pool was excluded for zero reserves.
	if paths := app.FindPaths(g, token.ALEX, token.SBTC, 4); len(paths) != 0 {
		t.Errorf("expected no paths for disconnected token, got %d", len(paths))
	}
}

func TestFindPaths_SimplePathsOnly(t *testing.T) {
	g := app.BuildPoolGraph(testSnapshot(1, time.Now()))

	paths := app.FindPaths(g, token.WELSH, token.SBTC, 4)
	for _, p := range paths {
		seen := map[token.ID]bool{}
		for _, tok := range p.Tokens {
			if seen[tok.ID()] {
				t.Errorf("path %s revisits %s", p, tok.Symbol())
			}
			seen[tok.ID()] = true
		}
	}
}
