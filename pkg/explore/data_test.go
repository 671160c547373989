package explore

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeCSV(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}
	return path
}

func TestLoadFile(t *testing.T) {
	path := writeCSV(t, "data.csv", "id,price,note\n1,9.5,alice\n2,,bob\n3,7.25,carol\n")

	data, err := loadFile(path, Options{})
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if len(data.columns) != 3 || data.columns[0] != "id" || data.columns[2] != "note" {
		t.Errorf("unexpected columns: %v", data.columns)
	}
	if len(data.rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(data.rows))
	}
	if data.truncated {
		t.Error("expected truncated=false")
	}

	r := data.rows[1]
	if r.Index != 2 {
		t.Errorf("expected index 2, got %d", r.Index)
	}
	if r.Raw != "2,,bob" {
		t.Errorf("unexpected raw row: %q", r.Raw)
	}
	if len(r.Cells) != 3 || r.Cells[2] != "bob" {
		t.Errorf("unexpected cells: %v", r.Cells)
	}
}

func TestLoadFile_Stats(t *testing.T) {
	path := writeCSV(t, "data.csv", "id,price,note\n1,9.5,alice\n2,,bob\n3,7.25,carol\n")

	data, err := loadFile(path, Options{})
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(data.stats) != 3 {
		t.Fatalf("expected 3 column stats, got %d", len(data.stats))
	}

	id := data.stats[0]
	if !id.Numeric || id.Values != 3 || id.Nulls != 0 {
		t.Errorf("unexpected id stats: %+v", id)
	}
	if id.Min != 1 || id.Max != 3 || id.Mean() != 2 {
		t.Errorf("unexpected id range: min=%v max=%v mean=%v", id.Min, id.Max, id.Mean())
	}

	price := data.stats[1]
	if !price.Numeric || price.Values != 2 || price.Nulls != 1 {
		t.Errorf("unexpected price stats: %+v", price)
	}
	if price.Min != 7.25 || price.Max != 9.5 {
		t.Errorf("unexpected price range: min=%v max=%v", price.Min, price.Max)
	}

	note := data.stats[2]
	if note.Numeric {
		t.Error("note column should not be numeric")
	}
	if note.MinWidth != 3 || note.MaxWidth != 5 {
		t.Errorf("unexpected note widths: %d..%d", note.MinWidth, note.MaxWidth)
	}
}

func TestLoadFile_NoHeader(t *testing.T) {
	path := writeCSV(t, "data.csv", "1,2\n3,4\n")

	data, err := loadFile(path, Options{NoHeader: true})
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(data.columns) != 2 || data.columns[0] != "c0" || data.columns[1] != "c1" {
		t.Errorf("unexpected columns: %v", data.columns)
	}
	if len(data.rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(data.rows))
	}
	if data.rows[0].Cells[0] != "1" {
		t.Errorf("first line should be data, got %v", data.rows[0].Cells)
	}
}

func TestLoadFile_MaxRows(t *testing.T) {
	var b strings.Builder
	b.WriteString("id\n")
	for i := 0; i < 10; i++ {
		b.WriteString("1\n")
	}
	path := writeCSV(t, "data.csv", b.String())

	data, err := loadFile(path, Options{MaxRows: 4})
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(data.rows) != 4 {
		t.Errorf("expected 4 rows, got %d", len(data.rows))
	}
	if !data.truncated {
		t.Error("expected truncated=true")
	}
}

func TestLoadFile_TSV(t *testing.T) {
	path := writeCSV(t, "data.tsv", "a\tb\n1\t2\n")

	data, err := loadFile(path, Options{Delim: '\t'})
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(data.columns) != 2 || data.columns[1] != "b" {
		t.Errorf("unexpected columns: %v", data.columns)
	}
	if data.rows[0].Raw != "1\t2" {
		t.Errorf("unexpected raw row: %q", data.rows[0].Raw)
	}
}

func TestLoadFile_Missing(t *testing.T) {
	if _, err := loadFile(filepath.Join(t.TempDir(), "absent.csv"), Options{}); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestCountColumns(t *testing.T) {
	cases := []struct {
		data  string
		delim byte
		want  int
	}{
		{"a,b,c\nrest", ',', 3},
		{"a\tb", '\t', 2},
		{"abc", ',', 1},
		{"", ',', 1},
		{"a,b\r\nc,d", ',', 2},
	}
	for _, tc := range cases {
		if got := countColumns([]byte(tc.data), tc.delim); got != tc.want {
			t.Errorf("countColumns(%q) = %d, want %d", tc.data, got, tc.want)
		}
	}
}
