// Package monitor is a read-only terminal dashboard over a running lock
// table and transaction manager: a resource table refreshed on a tick, an
// activity log tailing the event bus, and a status bar with the active
// transaction count.
package monitor

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"akdb/pkg/events"
	"akdb/pkg/lock"
	"akdb/pkg/monitor/base"
	"akdb/pkg/txn"
)

const activityBacklog = 256

// Model is the monitor's Bubble Tea state. It polls a LockTable snapshot on
// a tick and tails an events.Bus for activity log lines.
type Model struct {
	lt  *lock.LockTable
	mgr *txn.Manager

	resourceTable table.Model
	activity      viewport.Model
	spinner       spinner.Model
	help          help.Model

	activityCh chan string
	lines      []string

	width, height int
	showHelp      bool
	activeCount   int
}

// NewModel builds a monitor over lt and mgr, subscribing to bus for activity
// lines. The caller still owns bus; subscription lasts for the process
// lifetime of the monitor.
func NewModel(lt *lock.LockTable, mgr *txn.Manager, bus *events.Bus) Model {
	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "Address", Width: 12},
			{Title: "Dominant", Width: 10},
			{Title: "Queue", Width: 40},
		}),
		table.WithFocused(false),
		table.WithHeight(10),
	)
	ts := table.DefaultStyles()
	ts.Header = ts.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(palette.Granted).
		BorderBottom(true).
		Bold(true)
	t.SetStyles(ts)

	vp := viewport.New(80, 8)
	vp.Style = activityStyle

	sp := spinner.New()
	sp.Spinner = spinner.Points
	sp.Style = waitingStyle

	m := Model{
		lt:            lt,
		mgr:           mgr,
		resourceTable: t,
		activity:      vp,
		spinner:       sp,
		help:          help.New(),
		activityCh:    make(chan string, activityBacklog),
	}

	bus.Subscribe(events.LockReleased, m.onEvent("lock released"))
	bus.Subscribe(events.TransactionFinished, m.onEvent("transaction finished"))
	bus.Subscribe(events.AllTransactionsFinished, m.onEvent("all transactions quiesced"))

	return m
}

// onEvent returns a events.Handler that formats e and drops it onto the
// activity channel without blocking the publisher; a full channel means the
// monitor is behind, and the new line is dropped rather than the publisher
// being blocked.
func (m Model) onEvent(label string) events.Handler {
	return func(e events.Event) {
		line := label
		if e.TxnID != 0 {
			line = fmt.Sprintf("%s txn=T%d committed=%v", label, e.TxnID, e.Committed)
		}
		select {
		case m.activityCh <- line:
		default:
		}
	}
}

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(500*time.Millisecond, func(t time.Time) tea.Msg { return tickMsg(t) })
}

type activityMsg string

func waitForActivity(ch chan string) tea.Cmd {
	return func() tea.Msg { return activityMsg(<-ch) }
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, tick(), waitForActivity(m.activityCh))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.Help):
			m.showHelp = !m.showHelp
		}

	case tickMsg:
		m.refresh()
		return m, tick()

	case activityMsg:
		m.lines = append(m.lines, styleActivityLine(string(msg)))
		if len(m.lines) > 200 {
			m.lines = m.lines[len(m.lines)-200:]
		}
		m.activity.SetContent(strings.Join(m.lines, "\n"))
		m.activity.GotoBottom()
		return m, waitForActivity(m.activityCh)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// refresh pulls a fresh snapshot from the lock table and active count from
// the manager; the monitor observes, it never mutates either.
func (m *Model) refresh() {
	m.activeCount = m.mgr.ActiveCount()

	snap := m.lt.Snapshot()
	rows := make([]table.Row, 0, len(snap))
	for _, r := range snap {
		rows = append(rows, table.Row{
			fmt.Sprintf("%d", r.Addr),
			r.Dominant.String(),
			formatQueue(r.Requests),
		})
	}
	m.resourceTable.SetRows(rows)
}

// styleActivityLine colors a finished-transaction line by outcome; every
// other activity line passes through unstyled.
func styleActivityLine(line string) string {
	switch {
	case strings.Contains(line, "committed=false"):
		return abortedStyle.Render(line)
	case strings.Contains(line, "committed=true"):
		return grantedStyle.Render(line)
	default:
		return line
	}
}

func formatQueue(reqs []lock.RequestSnapshot) string {
	parts := make([]string, 0, len(reqs))
	for _, r := range reqs {
		state := "waiting"
		if r.Granted {
			state = "granted"
		}
		parts = append(parts, fmt.Sprintf("%s(%s,%s)", r.Txn.String(), r.Mode.String(), state))
	}
	return base.TruncateString(strings.Join(parts, " "), 60)
}

func (m Model) View() string {
	var sections []string

	sections = append(sections, titleStyle.Render("akdb lock monitor"))
	sections = append(sections, m.renderResourceTable())
	sections = append(sections, m.renderActivity())
	sections = append(sections, m.renderStatusBar())

	if m.showHelp {
		sections = append(sections, m.renderHelp())
	}

	return appStyle.Render(strings.Join(sections, "\n"))
}

func (m Model) renderResourceTable() string {
	label := grantedStyle.Render("Resources")
	return fmt.Sprintf("%s\n%s", label, m.resourceTable.View())
}

func (m Model) renderActivity() string {
	label := waitingStyle.Render("Activity")
	return fmt.Sprintf("%s\n%s", label, m.activity.View())
}

func (m Model) renderStatusBar() string {
	content := fmt.Sprintf("active transactions: %d | press ctrl+h for help, q to quit", m.activeCount)
	return statusBarStyle.Width(base.Max(m.width-4, 0)).Render(content)
}

func (m Model) renderHelp() string {
	helpText := m.help.FullHelpView([][]key.Binding{{keys.Help, keys.Quit}})
	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(palette.Muted).
		Padding(1, 2).
		Render(helpText)
}

func (m *Model) updateLayout() {
	m.resourceTable.SetHeight(base.Max(m.height/3, 5))
	m.activity.Width = base.Max(m.width-6, 20)
	m.activity.Height = base.Max(m.height/3, 5)
}
