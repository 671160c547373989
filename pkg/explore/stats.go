package explore

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// statsPane is the left-side column statistics panel, toggled with F7.
type statsPane struct {
	stats   []*colStat
	width   int
	height  int
	offset  int // scroll offset
	focused bool
}

func newStatsPane(data *fileData) statsPane {
	return statsPane{stats: data.stats}
}

func (sp statsPane) Update(msg tea.Msg) (statsPane, tea.Cmd) {
	if !sp.focused {
		return sp, nil
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case keyMatches(msg, defaultKeys.Up):
			if sp.offset > 0 {
				sp.offset--
			}
		case keyMatches(msg, defaultKeys.Down):
			sp.offset++
		case keyMatches(msg, defaultKeys.Home):
			sp.offset = 0
		case keyMatches(msg, defaultKeys.PageDown):
			sp.offset += sp.visibleRows()
		case keyMatches(msg, defaultKeys.PageUp):
			sp.offset = max(0, sp.offset-sp.visibleRows())
		}
	}

	return sp, nil
}

// buildLines renders every column's statistics block.
func (sp statsPane) buildLines() []string {
	var lines []string
	for _, st := range sp.stats {
		lines = append(lines, " "+statLabelStyle.Render(st.Name))
		lines = append(lines, fmt.Sprintf("   %s %d  %s %d",
			statValueStyle.Render("values"), st.Values,
			statValueStyle.Render("nulls"), st.Nulls))
		if st.Values > 0 {
			lines = append(lines, fmt.Sprintf("   %s %d..%d",
				statValueStyle.Render("width"), st.MinWidth, st.MaxWidth))
		}
		if st.Numeric {
			lines = append(lines, fmt.Sprintf("   %s %s  %s %s",
				statValueStyle.Render("min"), formatNum(st.Min),
				statValueStyle.Render("max"), formatNum(st.Max)))
			lines = append(lines, fmt.Sprintf("   %s %s",
				statValueStyle.Render("mean"), formatNum(st.Mean())))
		}
		lines = append(lines, "")
	}
	return lines
}

// formatNum drops the fraction for integral values.
func formatNum(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.2f", v)
}

func (sp statsPane) View() string {
	if sp.width <= 0 || sp.height <= 0 {
		return ""
	}

	lines := sp.buildLines()
	if sp.offset >= len(lines) {
		sp.offset = max(0, len(lines)-1)
	}
	visibleLines := lines[sp.offset:]
	if len(visibleLines) > sp.visibleRows() {
		visibleLines = visibleLines[:sp.visibleRows()]
	}

	var b strings.Builder
	for i, line := range visibleLines {
		b.WriteString(padRight(truncateString(line, sp.width-2), sp.width-2))
		if i < len(visibleLines)-1 {
			b.WriteString("\n")
		}
	}
	for i := len(visibleLines); i < sp.visibleRows(); i++ {
		b.WriteString("\n")
		b.WriteString(strings.Repeat(" ", sp.width-2))
	}

	title := titleStyle.Render(fmt.Sprintf(" Columns (%d) ", len(sp.stats)))

	borderStyle := inactiveBorderStyle
	if sp.focused {
		borderStyle = activeBorderStyle
	}

	content := borderStyle.
		Width(sp.width - 2).
		Height(sp.height - 3).
		Render(b.String())

	return lipgloss.JoinVertical(lipgloss.Left, title, content)
}

func (sp statsPane) visibleRows() int {
	return max(1, sp.height-4) // account for title + border
}

func (sp *statsPane) setSize(w, h int) {
	sp.width = w
	sp.height = h
}

// Helper functions

func keyMatches(msg tea.KeyMsg, binding key.Binding) bool {
	for _, k := range binding.Keys() {
		if msg.String() == k {
			return true
		}
	}
	return false
}

func truncateString(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}

func padRight(s string, width int) string {
	visLen := lipgloss.Width(s)
	if visLen >= width {
		return s
	}
	return s + strings.Repeat(" ", width-visLen)
}
