// Package ui provides the Bubble Tea TUI for the price monitor.
package ui

import (
	"time"

	"github.com/stxforge/pricegraph/business/discovery/domain"
)

// Message types for TUI updates

// PriceUpdateMsg is sent after each pricing pass over a snapshot.
type PriceUpdateMsg struct {
	Results         []*domain.PriceResult
	SnapshotVersion uint64
	AnchorUSD       string
	TakenAt         time.Time
}

// ConnectionStatusMsg is sent when an upstream connection changes state.
type ConnectionStatusMsg struct {
	Name      string
	Connected bool
}

// ErrorMsg is sent when an error occurs.
type ErrorMsg struct {
	Error error
}

// TickMsg is sent periodically for UI updates.
type TickMsg struct{}

// WelcomeCompleteMsg signals the welcome screen is done (timeout or keypress).
type WelcomeCompleteMsg struct{}

// StartModulesMsg signals that modules should start loading.
type StartModulesMsg struct{}

// LogMsg is sent to display a log message in the UI.
type LogMsg struct {
	Level   string // "info", "warn", "error"
	Message string
}

// StartupMsg is sent during application startup to show progress.
type StartupMsg struct {
	Step    string // Current step name
	Status  string // "connecting", "connected", "failed"
	Message string // Optional message
}
