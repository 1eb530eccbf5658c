// Package base holds small presentation helpers shared across the monitor's
// views.
package base

import "github.com/charmbracelet/lipgloss"

// Palette is the monitor's color scheme, keyed by lock/transaction state.
type Palette struct {
	Granted  lipgloss.Color
	Waiting  lipgloss.Color
	Timeout  lipgloss.Color
	Aborted  lipgloss.Color
	Muted    lipgloss.Color
	BgDark   lipgloss.Color
	BgMedium lipgloss.Color
}

// Dark is the monitor's only palette; the dashboard always renders against
// a dark terminal background.
var Dark = Palette{
	Granted:  lipgloss.Color("#10B981"), // Emerald
	Waiting:  lipgloss.Color("#F59E0B"), // Amber
	Timeout:  lipgloss.Color("#EF4444"), // Red
	Aborted:  lipgloss.Color("#EF4444"), // Red
	Muted:    lipgloss.Color("#94A3B8"), // Slate
	BgDark:   lipgloss.Color("#0F172A"),
	BgMedium: lipgloss.Color("#1E293B"),
}
