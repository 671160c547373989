package explore

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// rowsPane is the main data table.
type rowsPane struct {
	columns []string
	stats   []*colStat
	rows    []*rowItem // filtered rows
	allRows []*rowItem // all loaded rows

	cursor  int
	offset  int
	width   int
	height  int
	focused bool

	// sortBy is a column index, or -1 for file order.
	sortBy int

	// colOffset scrolls the table horizontally by whole columns.
	colOffset int
}

func newRowsPane(data *fileData) rowsPane {
	rp := rowsPane{
		columns: data.columns,
		stats:   data.stats,
		allRows: data.rows,
		rows:    data.rows,
		sortBy:  -1,
	}
	return rp
}

func (rp *rowsPane) setFilteredRows(rows []*rowItem) {
	rp.rows = rows
	rp.sort()
	if rp.cursor >= len(rp.rows) {
		rp.cursor = max(0, len(rp.rows)-1)
	}
	rp.ensureVisible()
}

func (rp rowsPane) selectedRow() *rowItem {
	if rp.cursor < 0 || rp.cursor >= len(rp.rows) {
		return nil
	}
	return rp.rows[rp.cursor]
}

func (rp rowsPane) Update(msg tea.Msg) (rowsPane, tea.Cmd) {
	if !rp.focused {
		return rp, nil
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case keyMatches(msg, defaultKeys.Up):
			if rp.cursor > 0 {
				rp.cursor--
				rp.ensureVisible()
			}
		case keyMatches(msg, defaultKeys.Down):
			if rp.cursor < len(rp.rows)-1 {
				rp.cursor++
				rp.ensureVisible()
			}
		case keyMatches(msg, defaultKeys.Left):
			if rp.colOffset > 0 {
				rp.colOffset--
			}
		case keyMatches(msg, defaultKeys.Right):
			if rp.colOffset < len(rp.columns)-1 {
				rp.colOffset++
			}
		case keyMatches(msg, defaultKeys.Home):
			rp.cursor = 0
			rp.offset = 0
		case keyMatches(msg, defaultKeys.End):
			rp.cursor = max(0, len(rp.rows)-1)
			rp.ensureVisible()
		case keyMatches(msg, defaultKeys.PageDown):
			rp.cursor = min(rp.cursor+rp.visibleRows(), max(0, len(rp.rows)-1))
			rp.ensureVisible()
		case keyMatches(msg, defaultKeys.PageUp):
			rp.cursor = max(rp.cursor-rp.visibleRows(), 0)
			rp.ensureVisible()
		case keyMatches(msg, defaultKeys.SortNext):
			rp.sortBy++
			if rp.sortBy >= len(rp.columns) {
				rp.sortBy = -1
			}
			rp.sort()
		}
	}

	return rp, nil
}

// sort orders rows by the active sort column. Numeric columns compare by
// value with unparsable cells sorting last; everything else compares as
// strings. File order restores the load sequence.
func (rp *rowsPane) sort() {
	if rp.sortBy < 0 {
		sort.SliceStable(rp.rows, func(i, j int) bool {
			return rp.rows[i].Index < rp.rows[j].Index
		})
		return
	}

	col := rp.sortBy
	numeric := col < len(rp.stats) && rp.stats[col].Numeric
	sort.SliceStable(rp.rows, func(i, j int) bool {
		a, b := rp.rows[i].cell(col), rp.rows[j].cell(col)
		if numeric {
			av, aerr := strconv.ParseFloat(a, 64)
			bv, berr := strconv.ParseFloat(b, 64)
			if aerr == nil && berr == nil {
				return av < bv
			}
			if (aerr == nil) != (berr == nil) {
				return aerr == nil
			}
		}
		return a < b
	})
}

func (r *rowItem) cell(col int) string {
	if col < 0 || col >= len(r.Cells) {
		return ""
	}
	return r.Cells[col]
}

func (rp rowsPane) sortLabel() string {
	if rp.sortBy < 0 {
		return "file order"
	}
	return rp.columns[rp.sortBy]
}

func (rp rowsPane) View() string {
	if rp.width <= 0 || rp.height <= 0 {
		return ""
	}

	contentWidth := rp.width - 4 // borders

	// Row number gutter sized for the largest loaded index.
	gutter := 4
	if n := len(rp.allRows); n > 0 {
		gutter = max(4, len(strconv.Itoa(rp.allRows[n-1].Index))+1)
	}

	// Fixed-width columns starting at colOffset, as many as fit.
	colWidth := 14
	visCols := rp.visibleColumns(contentWidth, gutter, colWidth)

	var b strings.Builder

	// Header row
	var head strings.Builder
	head.WriteString(fmt.Sprintf(" %*s ", gutter, "#"))
	for _, c := range visCols {
		name := rp.columns[c]
		if c == rp.sortBy {
			name += " ^"
		}
		head.WriteString(fmt.Sprintf("%-*s ", colWidth, truncateString(name, colWidth)))
	}
	b.WriteString(headerRowStyle.Render(truncateString(head.String(), contentWidth)))
	b.WriteString("\n")

	// Separator
	b.WriteString(strings.Repeat("─", contentWidth))

	// Data rows
	visibleEnd := min(rp.offset+rp.visibleRows(), len(rp.rows))
	for i := rp.offset; i < visibleEnd; i++ {
		row := rp.rows[i]

		var line strings.Builder
		line.WriteString(fmt.Sprintf(" %*d ", gutter, row.Index))
		for _, c := range visCols {
			line.WriteString(fmt.Sprintf("%-*s ", colWidth, truncateString(row.cell(c), colWidth)))
		}
		rendered := truncateString(line.String(), contentWidth)

		if i == rp.cursor && rp.focused {
			rendered = selectedRowStyle.Width(contentWidth).Render(rendered)
		}

		b.WriteString("\n")
		b.WriteString(padRight(rendered, contentWidth))
	}

	// Fill empty rows
	for i := visibleEnd - rp.offset; i < rp.visibleRows(); i++ {
		b.WriteString("\n")
		b.WriteString(strings.Repeat(" ", contentWidth))
	}

	title := titleStyle.Render(fmt.Sprintf(" Rows (%d/%d) [sort: %s] ",
		len(rp.rows), len(rp.allRows), rp.sortLabel()))

	borderStyle := inactiveBorderStyle
	if rp.focused {
		borderStyle = activeBorderStyle
	}

	content := borderStyle.
		Width(rp.width - 2).
		Height(rp.height - 3).
		Render(b.String())

	return lipgloss.JoinVertical(lipgloss.Left, title, content)
}

// visibleColumns returns the column indices that fit in the content width.
func (rp rowsPane) visibleColumns(contentWidth, gutter, colWidth int) []int {
	avail := contentWidth - gutter - 2
	var cols []int
	for c := rp.colOffset; c < len(rp.columns); c++ {
		if avail < colWidth && len(cols) > 0 {
			break
		}
		cols = append(cols, c)
		avail -= colWidth + 1
	}
	return cols
}

func (rp rowsPane) visibleRows() int {
	return max(1, rp.height-6) // title + border + header + separator
}

func (rp *rowsPane) ensureVisible() {
	if rp.cursor < rp.offset {
		rp.offset = rp.cursor
	}
	if rp.cursor >= rp.offset+rp.visibleRows() {
		rp.offset = rp.cursor - rp.visibleRows() + 1
	}
}

func (rp *rowsPane) setSize(w, h int) {
	rp.width = w
	rp.height = h
}
