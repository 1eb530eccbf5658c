package monitor

import (
	"github.com/charmbracelet/lipgloss"

	"akdb/pkg/monitor/base"
)

var palette = base.Dark

var (
	appStyle = lipgloss.NewStyle().
			Background(palette.BgDark).
			Padding(1, 2)

	titleStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#8B5CF6")).
			Foreground(lipgloss.Color("#FFFFFF")).
			Bold(true).
			Padding(0, 2).
			MarginBottom(1)

	statusBarStyle = lipgloss.NewStyle().
			Background(palette.BgMedium).
			Foreground(palette.Muted).
			Padding(0, 1)

	activityStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(palette.Muted).
			Padding(1)

	grantedStyle = lipgloss.NewStyle().Foreground(palette.Granted).Bold(true)
	waitingStyle = lipgloss.NewStyle().Foreground(palette.Waiting).Bold(true)
	abortedStyle = lipgloss.NewStyle().Foreground(palette.Aborted).Bold(true)
)
