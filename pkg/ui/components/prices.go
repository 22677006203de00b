// Package components provides reusable TUI components.
package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// PriceRow represents a row in the price table.
type PriceRow struct {
	Symbol     string
	State      string
	PriceUSD   string
	Confidence float64
	Paths      int
	Route      string
}

// PricesComponent renders the token price table.
type PricesComponent struct {
	rows    []PriceRow
	version uint64
	anchor  string
}

// NewPricesComponent creates a new prices component.
func NewPricesComponent() *PricesComponent {
	return &PricesComponent{
		rows: make([]PriceRow, 0),
	}
}

// Update updates the price data.
func (p *PricesComponent) Update(rows []PriceRow) {
	p.rows = rows
}

// SetSnapshot sets the snapshot version the rows were priced against.
func (p *PricesComponent) SetSnapshot(version uint64) {
	p.version = version
}

// SetAnchor sets the formatted anchor price string.
func (p *PricesComponent) SetAnchor(anchor string) {
	p.anchor = anchor
}

// View renders the prices component.
func (p *PricesComponent) View() string {
	if len(p.rows) == 0 {
		return "Waiting for price data..."
	}

	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	positiveStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
	negativeStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	warnStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B"))

	var result string
	result = headerStyle.Render(fmt.Sprintf("PRICES (snapshot v%d, BTC %s)", p.version, p.anchor))
	result += "\n\n"

	// Simple aligned table without box drawing
	result += fmt.Sprintf("  %-10s  %14s  %10s  %6s  %s\n",
		"Token", "USD Price", "Confidence", "Paths", "Route")
	result += dimStyle.Render("  "+strings.Repeat("─", 70)) + "\n"

	for _, row := range p.rows {
		if row.State != "priced" {
			result += fmt.Sprintf("  %-10s  %s\n",
				row.Symbol, negativeStyle.Render(row.State))
			continue
		}

		confStyle := positiveStyle
		switch {
		case row.Confidence < 0.3:
			confStyle = negativeStyle
		case row.Confidence < 0.6:
			confStyle = warnStyle
		}

		result += fmt.Sprintf("  %-10s  %14s  %s  %6d  %s\n",
			row.Symbol,
			"$"+row.PriceUSD,
			confStyle.Render(fmt.Sprintf("%10.0f%%", row.Confidence*100)),
			row.Paths,
			dimStyle.Render(row.Route),
		)
	}

	return result
}
