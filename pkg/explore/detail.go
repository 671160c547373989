package explore

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// detailPane shows every field of the selected row.
type detailPane struct {
	row     *rowItem
	columns []string
	stats   []*colStat
	width   int
	height  int
	offset  int // scroll offset
	focused bool
}

func newDetailPane(data *fileData) detailPane {
	return detailPane{
		columns: data.columns,
		stats:   data.stats,
	}
}

func (dp *detailPane) setRow(r *rowItem) {
	dp.row = r
	dp.offset = 0
}

func (dp detailPane) Update(msg tea.Msg) (detailPane, tea.Cmd) {
	if !dp.focused {
		return dp, nil
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case keyMatches(msg, defaultKeys.Up):
			if dp.offset > 0 {
				dp.offset--
			}
		case keyMatches(msg, defaultKeys.Down):
			dp.offset++
		case keyMatches(msg, defaultKeys.Home):
			dp.offset = 0
		case keyMatches(msg, defaultKeys.PageDown):
			dp.offset += dp.visibleRows()
		case keyMatches(msg, defaultKeys.PageUp):
			dp.offset = max(0, dp.offset-dp.visibleRows())
		}
	}

	return dp, nil
}

func (dp detailPane) View() string {
	if dp.width <= 0 || dp.height <= 0 {
		return ""
	}

	contentWidth := dp.width - 4

	var lines []string
	if dp.row == nil {
		lines = append(lines, "  No row selected")
	} else {
		labelWidth := 0
		for _, c := range dp.columns {
			if len(c) > labelWidth {
				labelWidth = len(c)
			}
		}
		labelWidth = min(labelWidth, 24)

		for i, c := range dp.columns {
			label := fieldLabelStyle.Render(fmt.Sprintf("%-*s", labelWidth, truncateString(c, labelWidth)))
			lines = append(lines, fmt.Sprintf("  %s  %s", label, dp.renderCell(i)))
		}
	}

	// Apply scroll offset
	if dp.offset >= len(lines) {
		dp.offset = max(0, len(lines)-1)
	}
	visibleLines := lines[dp.offset:]
	if len(visibleLines) > dp.visibleRows() {
		visibleLines = visibleLines[:dp.visibleRows()]
	}

	var b strings.Builder
	for i, line := range visibleLines {
		b.WriteString(padRight(truncateString(line, contentWidth), contentWidth))
		if i < len(visibleLines)-1 {
			b.WriteString("\n")
		}
	}
	for i := len(visibleLines); i < dp.visibleRows(); i++ {
		b.WriteString("\n")
		b.WriteString(strings.Repeat(" ", contentWidth))
	}

	title := titleStyle.Render(" Row ")
	if dp.row != nil {
		title = titleStyle.Render(fmt.Sprintf(" Row %d ", dp.row.Index))
	}

	borderStyle := inactiveBorderStyle
	if dp.focused {
		borderStyle = activeBorderStyle
	}

	content := borderStyle.
		Width(dp.width - 2).
		Height(dp.height - 3).
		Render(b.String())

	return lipgloss.JoinVertical(lipgloss.Left, title, content)
}

// renderCell styles one cell value. Empty cells render as a null marker
// and numeric columns are tinted.
func (dp detailPane) renderCell(col int) string {
	v := dp.row.cell(col)
	if v == "" {
		return nullCellStyle.Render("(null)")
	}
	if col < len(dp.stats) && dp.stats[col].Numeric {
		return numericCellStyle.Render(v)
	}
	return fieldValueStyle.Render(v)
}

func (dp detailPane) visibleRows() int {
	return max(1, dp.height-4)
}

func (dp *detailPane) setSize(w, h int) {
	dp.width = w
	dp.height = h
}
