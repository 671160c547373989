package explore

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func testData(t *testing.T) *fileData {
	t.Helper()
	path := writeCSV(t, "data.csv", "id,price,note\n1,9.5,alice\n2,,bob\n3,7.25,carol\n")
	data, err := loadFile(path, Options{})
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	return data
}

func testModel(t *testing.T) Model {
	t.Helper()
	data := testData(t)
	m := Model{
		data:   data,
		stats:  newStatsPane(data),
		rows:   newRowsPane(data),
		detail: newDetailPane(data),
		focus:  paneRows,
	}
	m.rows.focused = true
	m.detail.setRow(m.rows.selectedRow())
	return m
}

func keyRune(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestRowsPane_SortCycle(t *testing.T) {
	data := testData(t)
	rp := newRowsPane(data)
	rp.focused = true

	if rp.sortBy != -1 || rp.sortLabel() != "file order" {
		t.Fatalf("expected initial file order, got %d", rp.sortBy)
	}

	rp, _ = rp.Update(keyRune('s'))
	if rp.sortBy != 0 || rp.sortLabel() != "id" {
		t.Errorf("expected sort by id, got %d (%s)", rp.sortBy, rp.sortLabel())
	}

	// Cycling past the last column returns to file order.
	for i := 0; i < len(data.columns); i++ {
		rp, _ = rp.Update(keyRune('s'))
	}
	if rp.sortBy != -1 {
		t.Errorf("expected file order after full cycle, got %d", rp.sortBy)
	}
	if rp.rows[0].Index != 1 || rp.rows[2].Index != 3 {
		t.Errorf("file order not restored: %d, %d", rp.rows[0].Index, rp.rows[2].Index)
	}
}

func TestRowsPane_NumericSort(t *testing.T) {
	data := testData(t)
	rp := newRowsPane(data)
	rp.sortBy = 1 // price
	rp.sort()

	// 7.25 first, 9.5 second, the null price last.
	if rp.rows[0].Cells[1] != "7.25" {
		t.Errorf("expected 7.25 first, got %q", rp.rows[0].Cells[1])
	}
	if rp.rows[1].Cells[1] != "9.5" {
		t.Errorf("expected 9.5 second, got %q", rp.rows[1].Cells[1])
	}
	if rp.rows[2].Cells[1] != "" {
		t.Errorf("expected null last, got %q", rp.rows[2].Cells[1])
	}
}

func TestRowsPane_Navigation(t *testing.T) {
	data := testData(t)
	rp := newRowsPane(data)
	rp.focused = true
	rp.setSize(80, 20)

	rp, _ = rp.Update(keyRune('j'))
	if rp.cursor != 1 {
		t.Errorf("expected cursor 1, got %d", rp.cursor)
	}
	rp, _ = rp.Update(keyRune('G'))
	if rp.cursor != 2 {
		t.Errorf("expected cursor at bottom, got %d", rp.cursor)
	}
	rp, _ = rp.Update(keyRune('g'))
	if rp.cursor != 0 {
		t.Errorf("expected cursor at top, got %d", rp.cursor)
	}
	rp, _ = rp.Update(keyRune('k'))
	if rp.cursor != 0 {
		t.Errorf("cursor should not move above top, got %d", rp.cursor)
	}
}

func TestModel_ApplyFilter(t *testing.T) {
	m := testModel(t)

	m.filterText = "bob"
	m.applyFilter()
	if len(m.rows.rows) != 1 {
		t.Fatalf("expected 1 matching row, got %d", len(m.rows.rows))
	}
	if m.rows.rows[0].Cells[2] != "bob" {
		t.Errorf("unexpected match: %v", m.rows.rows[0].Cells)
	}
	if m.detail.row == nil || m.detail.row.Index != 2 {
		t.Error("detail pane should follow the filtered selection")
	}

	m.filterText = ""
	m.applyFilter()
	if len(m.rows.rows) != 3 {
		t.Errorf("expected all rows restored, got %d", len(m.rows.rows))
	}
}

func TestModel_FilterOverlay(t *testing.T) {
	m := testModel(t)

	// "/" opens the filter overlay.
	next, _ := m.Update(keyRune('/'))
	m = next.(Model)
	if m.activeOverlay != overlayFilter {
		t.Fatalf("expected filter overlay, got %d", m.activeOverlay)
	}

	// Type "bob" and apply.
	for _, r := range "bob" {
		next, _ = m.Update(keyRune(r))
		m = next.(Model)
	}
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(Model)

	if m.activeOverlay != overlayNone {
		t.Error("overlay should close on enter")
	}
	if m.filterText != "bob" {
		t.Errorf("expected filter %q, got %q", "bob", m.filterText)
	}
	if len(m.rows.rows) != 1 {
		t.Errorf("expected 1 matching row, got %d", len(m.rows.rows))
	}

	// Ctrl+r clears the filter.
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlR})
	m = next.(Model)
	if m.filterText != "" || len(m.rows.rows) != 3 {
		t.Errorf("expected cleared filter, got %q with %d rows", m.filterText, len(m.rows.rows))
	}
}

func TestModel_ToggleStats(t *testing.T) {
	m := testModel(t)

	if m.showStats {
		t.Fatal("stats pane should start hidden")
	}
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyF7})
	m = next.(Model)
	if !m.showStats {
		t.Error("F7 should show the stats pane")
	}
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyF7})
	m = next.(Model)
	if m.showStats {
		t.Error("F7 should hide the stats pane again")
	}
}

func TestModel_CursorUpdatesDetail(t *testing.T) {
	m := testModel(t)

	next, _ := m.Update(keyRune('j'))
	m = next.(Model)
	if m.detail.row == nil || m.detail.row.Index != 2 {
		t.Errorf("detail pane should track the cursor, got %+v", m.detail.row)
	}
}

func TestNew(t *testing.T) {
	path := writeCSV(t, "data.csv", "a,b\n1,2\n")

	m, err := New(path, Options{})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if m.rows.selectedRow() == nil {
		t.Error("expected first row selected")
	}
	if m.detail.row == nil {
		t.Error("expected detail pane populated")
	}
}
