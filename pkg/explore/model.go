package explore

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// focusedPane tracks which pane has keyboard focus.
type focusedPane int

const (
	paneStats focusedPane = iota
	paneRows
	paneDetail
)

// overlay tracks which modal overlay is active.
type overlay int

const (
	overlayNone overlay = iota
	overlayHelp
	overlayFilter
)

// Model is the root Bubble Tea model for the explore TUI.
type Model struct {
	data   *fileData
	stats  statsPane
	rows   rowsPane
	detail detailPane

	focus         focusedPane
	activeOverlay overlay
	showStats     bool

	// Help state
	helpContent string
	helpOffset  int

	// Filter state
	filterText  string
	filterInput string

	width  int
	height int
}

// New loads the given file and builds the TUI model.
func New(path string, opts Options) (Model, error) {
	data, err := loadFile(path, opts)
	if err != nil {
		return Model{}, err
	}

	m := Model{
		data:   data,
		stats:  newStatsPane(data),
		rows:   newRowsPane(data),
		detail: newDetailPane(data),
		focus:  paneRows,
	}

	// Set initial focus
	m.rows.focused = true

	// Select first row
	m.detail.setRow(m.rows.selectedRow())

	return m, nil
}

func (m Model) Init() tea.Cmd {
	return tea.SetWindowTitle("skim explore")
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.MouseMsg:
		if m.activeOverlay != overlayNone {
			return m, nil
		}
		if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
			return m, nil
		}
		m.handleMouseClick(msg.X, msg.Y)
		return m, nil

	case tea.KeyMsg:
		// Handle overlays first
		if m.activeOverlay != overlayNone {
			return m.updateOverlay(msg)
		}

		// Global keys (work regardless of focus)
		switch {
		case keyMatches(msg, defaultKeys.ForceQuit):
			return m, tea.Quit
		case keyMatches(msg, defaultKeys.Quit):
			return m, tea.Quit
		case keyMatches(msg, defaultKeys.ToggleHelp):
			m.activeOverlay = overlayHelp
			m.helpOffset = 0
			m.helpContent = renderHelp()
			return m, nil
		case keyMatches(msg, defaultKeys.ToggleStats):
			m.showStats = !m.showStats
			return m, nil
		case keyMatches(msg, defaultKeys.Filter):
			m.filterInput = m.filterText
			m.activeOverlay = overlayFilter
			return m, nil
		case keyMatches(msg, defaultKeys.ClearFilter):
			m.filterText = ""
			m.applyFilter()
			return m, nil
		case keyMatches(msg, defaultKeys.FocusStats):
			m.setFocus(paneStats)
			return m, nil
		case keyMatches(msg, defaultKeys.FocusRows):
			m.setFocus(paneRows)
			return m, nil
		case keyMatches(msg, defaultKeys.FocusDetail):
			m.setFocus(paneDetail)
			return m, nil
		}

		// Delegate to focused pane
		switch m.focus {
		case paneStats:
			var cmd tea.Cmd
			m.stats, cmd = m.stats.Update(msg)
			return m, cmd
		case paneRows:
			prevCursor := m.rows.cursor
			prevSort := m.rows.sortBy
			var cmd tea.Cmd
			m.rows, cmd = m.rows.Update(msg)
			if m.rows.cursor != prevCursor || m.rows.sortBy != prevSort {
				m.detail.setRow(m.rows.selectedRow())
			}
			return m, cmd
		case paneDetail:
			var cmd tea.Cmd
			m.detail, cmd = m.detail.Update(msg)
			return m, cmd
		}
	}

	return m, nil
}

func (m *Model) updateOverlay(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.activeOverlay {
	case overlayHelp:
		switch {
		case keyMatches(msg, defaultKeys.Quit),
			keyMatches(msg, defaultKeys.ForceQuit),
			keyMatches(msg, defaultKeys.ToggleHelp):
			m.activeOverlay = overlayNone
		case keyMatches(msg, defaultKeys.Down):
			m.helpOffset++
		case keyMatches(msg, defaultKeys.Up):
			if m.helpOffset > 0 {
				m.helpOffset--
			}
		case keyMatches(msg, defaultKeys.PageDown):
			m.helpOffset += m.height / 2
		case keyMatches(msg, defaultKeys.PageUp):
			m.helpOffset = max(0, m.helpOffset-m.height/2)
		}
	case overlayFilter:
		switch msg.String() {
		case "enter":
			m.filterText = m.filterInput
			m.applyFilter()
			m.activeOverlay = overlayNone
		case "esc", "ctrl+c":
			m.activeOverlay = overlayNone
		case "backspace":
			if len(m.filterInput) > 0 {
				m.filterInput = m.filterInput[:len(m.filterInput)-1]
			}
		default:
			if len(msg.String()) == 1 || msg.String() == " " {
				m.filterInput += msg.String()
			}
		}
	}
	return *m, nil
}

func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	// Render overlays
	if m.activeOverlay != overlayNone {
		return m.renderOverlay()
	}

	// Status bar (bottom)
	statusBar := m.renderStatusBar()

	// Main layout
	contentHeight := m.height - 2 // status bar + padding

	var mainContent string
	if m.showStats {
		statsWidth := min(m.width*30/100, 44)
		dataWidth := m.width - statsWidth

		rowsHeight := contentHeight * 60 / 100
		detailHeight := contentHeight - rowsHeight

		m.stats.setSize(statsWidth, contentHeight)
		m.rows.setSize(dataWidth, rowsHeight)
		m.detail.setSize(dataWidth, detailHeight)

		dataColumn := lipgloss.JoinVertical(lipgloss.Left, m.rows.View(), m.detail.View())
		mainContent = lipgloss.JoinHorizontal(lipgloss.Top, m.stats.View(), dataColumn)
	} else {
		rowsHeight := contentHeight * 60 / 100
		detailHeight := contentHeight - rowsHeight

		m.rows.setSize(m.width, rowsHeight)
		m.detail.setSize(m.width, detailHeight)

		mainContent = lipgloss.JoinVertical(lipgloss.Left, m.rows.View(), m.detail.View())
	}

	return lipgloss.JoinVertical(lipgloss.Left, mainContent, statusBar)
}

func (m *Model) renderStatusBar() string {
	var parts []string
	parts = append(parts, fmt.Sprintf("%d rows", len(m.data.rows)))
	if m.filterText != "" {
		parts = append(parts, fmt.Sprintf("%d match %q", len(m.rows.rows), m.filterText))
	}
	if m.data.truncated {
		parts = append(parts, "truncated")
	}
	left := statusBarStyle.Render(" " + m.data.path + " | " + strings.Join(parts, " | "))

	right := fmt.Sprintf("%s:%s  %s:%s  %s:%s  %s:%s  %s:%s  %s:%s",
		helpKeyStyle.Render("j/k"), helpDescStyle.Render("nav"),
		helpKeyStyle.Render("/"), helpDescStyle.Render("filter"),
		helpKeyStyle.Render("s"), helpDescStyle.Render("sort"),
		helpKeyStyle.Render("h/l"), helpDescStyle.Render("cols"),
		helpKeyStyle.Render("F7"), helpDescStyle.Render("stats"),
		helpKeyStyle.Render("?"), helpDescStyle.Render("help"),
	)

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	return left + strings.Repeat(" ", gap) + right
}

func (m *Model) renderOverlay() string {
	overlayWidth := m.width * 80 / 100
	overlayHeight := m.height * 80 / 100

	var content string
	var title string

	switch m.activeOverlay {
	case overlayHelp:
		title = " Help (q to close) "
		content = m.renderHelpContent(overlayHeight - 4)
	case overlayFilter:
		title = " Filter (enter to apply, esc to cancel) "
		overlayWidth = min(60, m.width-4)
		overlayHeight = 5
		content = fmt.Sprintf("\n  > %s_\n", m.filterInput)
	}

	box := modalStyle.
		Width(overlayWidth - 4).
		Height(overlayHeight - 2).
		Render(content)

	titleRendered := titleStyle.Render(title)

	overlayView := lipgloss.JoinVertical(lipgloss.Left, titleRendered, box)

	// Center on screen
	hPad := (m.width - lipgloss.Width(overlayView)) / 2
	vPad := (m.height - lipgloss.Height(overlayView)) / 2

	return strings.Repeat("\n", max(0, vPad)) +
		lipgloss.NewStyle().PaddingLeft(max(0, hPad)).Render(overlayView)
}

func (m *Model) renderHelpContent(height int) string {
	lines := strings.Split(m.helpContent, "\n")
	if m.helpOffset >= len(lines) {
		m.helpOffset = max(0, len(lines)-1)
	}
	end := min(m.helpOffset+height, len(lines))
	return strings.Join(lines[m.helpOffset:end], "\n")
}

func (m *Model) setFocus(p focusedPane) {
	if p == paneStats && !m.showStats {
		m.showStats = true
	}
	m.stats.focused = p == paneStats
	m.rows.focused = p == paneRows
	m.detail.focused = p == paneDetail
	m.focus = p
}

func (m *Model) handleMouseClick(x, y int) {
	contentHeight := m.height - 2
	rowsHeight := contentHeight * 60 / 100

	statsWidth := 0
	if m.showStats {
		statsWidth = min(m.width*30/100, 44)
	}

	if x < statsWidth {
		m.setFocus(paneStats)
		return
	}

	if y < rowsHeight {
		// Clicked in rows pane
		m.setFocus(paneRows)
		row := y - 4 // title + border top + header + separator
		if row >= 0 {
			idx := row + m.rows.offset
			if idx >= 0 && idx < len(m.rows.rows) {
				m.rows.cursor = idx
				m.detail.setRow(m.rows.selectedRow())
			}
		}
	} else {
		m.setFocus(paneDetail)
	}
}

// applyFilter narrows the row table to rows containing the filter text,
// case-insensitively. An empty filter restores all rows.
func (m *Model) applyFilter() {
	if m.filterText == "" {
		m.rows.setFilteredRows(m.data.rows)
	} else {
		needle := strings.ToLower(m.filterText)
		var filtered []*rowItem
		for _, r := range m.data.rows {
			if strings.Contains(r.lower, needle) {
				filtered = append(filtered, r)
			}
		}
		m.rows.setFilteredRows(filtered)
	}

	m.detail.setRow(m.rows.selectedRow())
}

// renderHelp generates help text.
func renderHelp() string {
	return `Skim Explore - Interactive Table Browser

NAVIGATION
  j/k or Up/Down    Move cursor up/down
  h/l or Left/Right Scroll columns (rows pane)
  Ctrl+f/Ctrl+b     Page down/up
  g/G               Jump to top/bottom

FOCUS
  F1                Focus column stats pane
  f                 Focus rows pane
  d                 Focus row detail pane
  F7                Toggle column stats pane

FILTER
  /                 Enter a literal row filter
  Ctrl+r            Clear the filter

VIEWS
  s                 Cycle sort column (file order first)
  ?                 Toggle this help screen

QUIT
  q                 Quit
  Ctrl+c            Force quit
`
}
