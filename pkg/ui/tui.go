// Package ui provides the Bubble Tea TUI for the price monitor.
package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/stxforge/pricegraph/pkg/ui/components"
)

// ConnectionInfo holds connection state.
type ConnectionInfo struct {
	Connected bool
	LastSeen  time.Time
}

// StartupStep represents a step in the startup process.
type StartupStep struct {
	Name   string
	Status string // "pending", "connecting", "connected", "failed"
}

// Phase represents the current UI phase.
type Phase string

const (
	PhaseWelcome   Phase = "welcome"   // Initial welcome screen
	PhaseStartup   Phase = "startup"   // Loading/connecting
	PhaseDashboard Phase = "dashboard" // Main dashboard
)

// WelcomeDuration is how long the welcome screen shows before auto-advancing.
const WelcomeDuration = 2 * time.Second

// ErrorEntry represents an error with timestamp.
type ErrorEntry struct {
	Message   string
	Timestamp time.Time
}

// Model is the main Bubble Tea model for the TUI.
type Model struct {
	// Components
	prices *components.PricesComponent

	// Phase state
	phase        Phase
	welcomeStart time.Time

	// State
	ready           bool
	quitting        bool
	paused          bool
	width           int
	height          int
	snapshotVersion uint64
	snapshotTakenAt time.Time
	anchorUSD       string
	pricedCount     int
	totalCount      int
	connectionState map[string]*ConnectionInfo
	lastUpdate      time.Time
	errors          []ErrorEntry // Persistent error panel (last 3)
	logs            []string     // Recent log messages

	// Startup state
	startupComplete bool
	startupSteps    map[string]*StartupStep
	startupTime     time.Time

	// Activity tracking
	passCount    uint64
	activityFeed []string
	lastPassTime time.Time
}

// New creates a new TUI model.
func New() Model {
	now := time.Now()
	return Model{
		prices:       components.NewPricesComponent(),
		phase:        PhaseWelcome,
		welcomeStart: now,
		connectionState: map[string]*ConnectionInfo{
			"DEX Feed": {Connected: false},
			"Oracle":   {Connected: false},
		},
		logs:         make([]string, 0, 10),
		errors:       make([]ErrorEntry, 0, 3),
		activityFeed: make([]string, 0, 8),
		startupSteps: map[string]*StartupStep{
			"config": {Name: "Loading configuration", Status: "pending"},
			"feed":   {Name: "Connecting to DEX feed", Status: "pending"},
			"oracle": {Name: "Connecting to BTC oracle", Status: "pending"},
			"graph":  {Name: "Building pool graph", Status: "pending"},
		},
		startupTime: now,
	}
}

// Init initializes the TUI model.
func (m Model) Init() tea.Cmd {
	return tickCmd()
}

// tickCmd returns a command that sends a tick every 100ms for smooth animations.
func tickCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return TickMsg{}
	})
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		// Always allow quit
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		}
		// During welcome phase, any other key skips to startup
		if m.phase == PhaseWelcome {
			m.phase = PhaseStartup
			m.startupTime = time.Now()
			// Trigger callback directly (don't use Send() from within Update)
			if OnStartModules != nil {
				go OnStartModules()
			}
			return m, tickCmd()
		}
		// Normal key handling
		switch msg.String() {
		case "p":
			m.paused = !m.paused
			return m, nil
		case "e":
			// Clear errors
			m.errors = make([]ErrorEntry, 0, 3)
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true

	case TickMsg:
		// Check if welcome timeout has elapsed
		if m.phase == PhaseWelcome && time.Since(m.welcomeStart) >= WelcomeDuration {
			m.phase = PhaseStartup
			m.startupTime = time.Now()
			// Trigger callback directly (don't use Send() from within Update)
			if OnStartModules != nil {
				go OnStartModules()
			}
		}
		return m, tickCmd()

	case PriceUpdateMsg:
		if m.paused {
			return m, nil
		}
		m.snapshotVersion = msg.SnapshotVersion
		m.snapshotTakenAt = msg.TakenAt
		m.anchorUSD = msg.AnchorUSD
		m.totalCount = len(msg.Results)
		m.pricedCount = 0

		rows := make([]components.PriceRow, 0, len(msg.Results))
		for _, res := range msg.Results {
			row := components.PriceRow{
				Symbol: res.Symbol,
				State:  string(res.State),
			}
			if res.Priced() {
				m.pricedCount++
				row.PriceUSD = res.USDPrice.StringFixed(6)
				row.Confidence = res.Confidence
				if res.PrimaryPath != nil {
					row.Paths = 1 + len(res.AlternativePaths)
					row.Route = res.PrimaryPath.Route
				}
			}
			rows = append(rows, row)
		}
		m.prices.Update(rows)
		m.prices.SetSnapshot(msg.SnapshotVersion)
		m.prices.SetAnchor("$" + msg.AnchorUSD)

		m.passCount++
		m.lastPassTime = time.Now()
		m.lastUpdate = time.Now()
		activity := fmt.Sprintf("Priced %d/%d tokens (snapshot v%d)",
			m.pricedCount, m.totalCount, msg.SnapshotVersion)
		m.activityFeed = addActivity(m.activityFeed, activity)

		if m.startupSteps["graph"] != nil {
			m.startupSteps["graph"].Status = "done"
		}
		m.startupComplete = true

	case ConnectionStatusMsg:
		m.connectionState[msg.Name] = &ConnectionInfo{
			Connected: msg.Connected,
			LastSeen:  time.Now(),
		}
		m.lastUpdate = time.Now()

		stepKey := ""
		switch msg.Name {
		case "DEX Feed":
			stepKey = "feed"
		case "Oracle":
			stepKey = "oracle"
		}
		if step, ok := m.startupSteps[stepKey]; ok {
			if msg.Connected {
				step.Status = "connected"
			} else {
				step.Status = "connecting"
			}
		}
		if m.startupSteps["config"] != nil {
			m.startupSteps["config"].Status = "done"
		}

	case ErrorMsg:
		m.logs = addLog(m.logs, "error", msg.Error.Error())
		// Keep last 3 in the persistent panel
		m.errors = append(m.errors, ErrorEntry{
			Message:   msg.Error.Error(),
			Timestamp: time.Now(),
		})
		if len(m.errors) > 3 {
			m.errors = m.errors[len(m.errors)-3:]
		}

	case LogMsg:
		m.logs = addLog(m.logs, msg.Level, msg.Message)

	case StartupMsg:
		if step, ok := m.startupSteps[msg.Step]; ok {
			step.Status = msg.Status
		}
		allDone := true
		for _, step := range m.startupSteps {
			if step.Status != "connected" && step.Status != "done" {
				allDone = false
				break
			}
		}
		if allDone {
			m.startupComplete = true
		}
	}

	return m, nil
}

// addLog adds a log message and returns the updated slice (keeps last 5).
func addLog(logs []string, level, message string) []string {
	timestamp := time.Now().Format("15:04:05")
	logLine := fmt.Sprintf("[%s] %s: %s", timestamp, level, message)
	logs = append(logs, logLine)
	if len(logs) > 5 {
		logs = logs[len(logs)-5:]
	}
	return logs
}

// addActivity adds an activity message and returns the updated slice (keeps last 6).
func addActivity(feed []string, message string) []string {
	timestamp := time.Now().Format("15:04:05")
	line := fmt.Sprintf("[%s] %s", timestamp, message)
	feed = append(feed, line)
	if len(feed) > 6 {
		feed = feed[len(feed)-6:]
	}
	return feed
}

// View renders the TUI.
func (m Model) View() string {
	if m.quitting {
		return "\n  Goodbye!\n\n"
	}

	switch m.phase {
	case PhaseWelcome:
		return m.renderWelcomeScreen()
	case PhaseStartup:
		// Show startup until the first pricing pass lands
		if m.passCount == 0 && !m.startupComplete {
			return m.renderStartupScreen()
		}
		m.phase = PhaseDashboard
		fallthrough
	case PhaseDashboard:
		// Continue to main dashboard
	}

	var b strings.Builder

	title := TitleStyle.Render(" ₿ Token Price Monitor ")
	b.WriteString(title)
	b.WriteString("\n\n")

	b.WriteString(m.renderStatusBar())
	b.WriteString("\n\n")

	// Main content: prices on left, activity on right
	leftCol := m.prices.View()
	rightCol := m.renderActivityFeed()

	if m.width > 110 {
		left := BoxStyle.Width(2*m.width/3 - 2).Render(leftCol)
		right := BoxStyle.Width(m.width/3 - 2).Render(rightCol)
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, right))
	} else {
		b.WriteString(BoxStyle.Width(m.width - 4).Render(leftCol))
		b.WriteString("\n")
		b.WriteString(BoxStyle.Width(m.width - 4).Render(rightCol))
	}

	b.WriteString("\n\n")

	// Persistent error panel (show last 3 errors)
	if len(m.errors) > 0 {
		errorStyle := lipgloss.NewStyle().Foreground(ColorDanger)
		errorHeader := lipgloss.NewStyle().Bold(true).Foreground(ColorDanger)
		mutedError := lipgloss.NewStyle().Foreground(lipgloss.Color("#9CA3AF"))

		b.WriteString(errorHeader.Render("ERRORS"))
		b.WriteString(mutedError.Render(" (e: clear)"))
		b.WriteString("\n")
		for _, err := range m.errors {
			ago := time.Since(err.Timestamp).Round(time.Second)
			b.WriteString(errorStyle.Render(fmt.Sprintf("  • %s ", err.Message)))
			b.WriteString(mutedError.Render(fmt.Sprintf("(%s ago)", ago)))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	helpText := "q: quit • p: pause • e: clear errors"
	if m.paused {
		pauseStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F59E0B"))
		b.WriteString(pauseStyle.Render("⏸ PAUSED"))
		b.WriteString(" • ")
	}
	b.WriteString(HelpStyle.Render(helpText))

	return b.String()
}

// renderActivityFeed renders the recent activity feed.
func (m Model) renderActivityFeed() string {
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	mutedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))

	var sb strings.Builder
	sb.WriteString(headerStyle.Render("LIVE ACTIVITY"))
	sb.WriteString("\n\n")

	if len(m.activityFeed) == 0 {
		sb.WriteString(mutedStyle.Render("  Waiting for first snapshot..."))
	} else {
		for _, activity := range m.activityFeed {
			sb.WriteString(mutedStyle.Render("  " + activity))
			sb.WriteString("\n")
		}
	}

	if len(m.logs) > 0 {
		sb.WriteString("\n")
		sb.WriteString(headerStyle.Render("LOGS"))
		sb.WriteString("\n\n")
		for _, line := range m.logs {
			sb.WriteString(mutedStyle.Render("  " + line))
			sb.WriteString("\n")
		}
	}

	return sb.String()
}

// renderWelcomeScreen renders the animated welcome screen.
func (m Model) renderWelcomeScreen() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#7C3AED"))

	goldStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#F59E0B"))

	mutedStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#6B7280"))

	greenStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#10B981"))

	// Animated dots based on time
	elapsed := time.Since(m.welcomeStart)
	dotCount := int(elapsed.Milliseconds()/300) % 4
	dots := strings.Repeat(".", dotCount)

	var sb strings.Builder

	sb.WriteString("\n\n\n\n")

	logo := `
   ██████╗ ██████╗ ██╗ ██████╗███████╗ ██████╗ ██████╗  █████╗ ██████╗ ██╗  ██╗
   ██╔══██╗██╔══██╗██║██╔════╝██╔════╝██╔════╝ ██╔══██╗██╔══██╗██╔══██╗██║  ██║
   ██████╔╝██████╔╝██║██║     █████╗  ██║  ███╗██████╔╝███████║██████╔╝███████║
   ██╔═══╝ ██╔══██╗██║██║     ██╔══╝  ██║   ██║██╔══██╗██╔══██║██╔═══╝ ██╔══██║
   ██║     ██║  ██║██║╚██████╗███████╗╚██████╔╝██║  ██║██║  ██║██║     ██║  ██║
   ╚═╝     ╚═╝  ╚═╝╚═╝ ╚═════╝╚══════╝ ╚═════╝ ╚═╝  ╚═╝╚═╝  ╚═╝╚═╝     ╚═╝  ╚═╝
`
	sb.WriteString(titleStyle.Render(logo))
	sb.WriteString("\n")

	subtitle := "          T O K E N   P R I C E   D I S C O V E R Y"
	sb.WriteString(mutedStyle.Render(subtitle))
	sb.WriteString("\n\n\n")

	tagline := "              ₿  Every path tells a price  ₿"
	sb.WriteString(goldStyle.Render(tagline))
	sb.WriteString("\n\n\n")

	loading := fmt.Sprintf("                  Initializing%s", dots)
	sb.WriteString(greenStyle.Render(loading))
	sb.WriteString("\n\n")

	hint := "            Press any key to skip, or wait..."
	sb.WriteString(mutedStyle.Render(hint))
	sb.WriteString("\n")

	return sb.String()
}

// renderStartupScreen renders the loading/startup screen.
func (m Model) renderStartupScreen() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#7C3AED")).
		MarginBottom(1)

	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FFFFFF"))

	mutedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	successStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
	connectingStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B"))
	failedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))

	var sb strings.Builder

	sb.WriteString("\n\n")
	sb.WriteString(titleStyle.Render("  ₿ Token Price Monitor"))
	sb.WriteString("\n\n")
	sb.WriteString(headerStyle.Render("  Starting up..."))
	sb.WriteString("\n\n")

	stepOrder := []string{"config", "feed", "oracle", "graph"}
	for _, key := range stepOrder {
		step, ok := m.startupSteps[key]
		if !ok {
			continue
		}

		var icon, statusText string
		var style lipgloss.Style

		switch step.Status {
		case "connected", "done":
			icon = "✓"
			statusText = "Ready"
			style = successStyle
		case "connecting":
			// Animated spinner based on time
			spinners := []string{"◐", "◓", "◑", "◒"}
			idx := int(time.Since(m.startupTime).Milliseconds()/200) % len(spinners)
			icon = spinners[idx]
			statusText = "Connecting..."
			style = connectingStyle
		case "failed":
			icon = "✗"
			statusText = "Failed"
			style = failedStyle
		default:
			icon = "○"
			statusText = "Pending"
			style = mutedStyle
		}

		sb.WriteString(fmt.Sprintf("  %s %s %s\n",
			style.Render(icon),
			mutedStyle.Render(step.Name),
			style.Render(statusText),
		))
	}

	sb.WriteString("\n")
	elapsed := time.Since(m.startupTime).Round(time.Second)
	sb.WriteString(mutedStyle.Render(fmt.Sprintf("  Elapsed: %s", elapsed)))
	sb.WriteString("\n\n")

	sb.WriteString(mutedStyle.Render("  Waiting for first pool snapshot..."))
	sb.WriteString("\n")

	return sb.String()
}

func (m Model) renderStatusBar() string {
	var parts []string

	// Pricing indicator (animated when a pass just landed)
	if time.Since(m.lastPassTime) < 500*time.Millisecond {
		spinners := []string{"⟳", "◐", "◓", "◑", "◒"}
		idx := int(time.Now().UnixMilli()/100) % len(spinners)
		pricingStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981")).Bold(true)
		parts = append(parts, pricingStyle.Render(spinners[idx]+" Pricing"))
	}

	parts = append(parts, fmt.Sprintf("Snapshot: v%d", m.snapshotVersion))

	if m.anchorUSD != "" {
		parts = append(parts, fmt.Sprintf("BTC: $%s", m.anchorUSD))
	}

	if m.totalCount > 0 {
		countStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
		parts = append(parts, countStyle.Render(fmt.Sprintf("Priced: %d/%d", m.pricedCount, m.totalCount)))
	}

	if m.passCount > 0 {
		parts = append(parts, fmt.Sprintf("Passes: %d", m.passCount))
	}

	// Connection status
	for name, info := range m.connectionState {
		var statusStyle lipgloss.Style
		var icon string
		var status string
		if info != nil && info.Connected {
			statusStyle = StatusConnected
			icon = "●"
			status = name
		} else {
			statusStyle = StatusDisconnected
			icon = "○"
			status = name + " (disconnected)"
		}
		parts = append(parts, statusStyle.Render(icon+" "+status))
	}

	if !m.lastUpdate.IsZero() {
		ago := time.Since(m.lastUpdate).Round(time.Second)
		indicator := ""
		if ago < 2*time.Second {
			indicator = "▪"
		}
		parts = append(parts, MutedValue.Render(fmt.Sprintf("Updated: %s ago %s", ago, indicator)))
	}

	return strings.Join(parts, "  │  ")
}

// Program holds the Bubble Tea program instance for external access.
var Program *tea.Program

// OnStartModules is called when the welcome screen completes and modules should start.
// This is set by main.go to signal when to begin loading modules.
var OnStartModules func()

// Run starts the Bubble Tea program.
func Run() error {
	Program = tea.NewProgram(New(), tea.WithAltScreen())
	_, err := Program.Run()
	return err
}

// Send sends a message to the running program.
func Send(msg tea.Msg) {
	if Program != nil {
		Program.Send(msg)
	}
	// Call OnStartModules callback when StartModulesMsg is sent
	if _, ok := msg.(StartModulesMsg); ok && OnStartModules != nil {
		OnStartModules()
	}
}
