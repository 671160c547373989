package explore

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/skimdata/skim/pkg/reader"
	"github.com/skimdata/skim/pkg/schema"
	"github.com/skimdata/skim/pkg/source"
)

// DefaultMaxRows bounds how many rows are loaded into the TUI.
const DefaultMaxRows = 5000

// Options configures how a file is loaded for exploration.
type Options struct {
	// Delim is the field separator. Zero means comma.
	Delim byte

	// NoHeader treats the first line as data and synthesizes column names.
	NoHeader bool

	// MaxRows bounds the number of rows loaded. Zero means DefaultMaxRows.
	MaxRows int
}

// fileData holds everything the TUI needs from a loaded file. All cell
// values are copied out, so no file handle or mapping stays open.
type fileData struct {
	path      string
	columns   []string
	rows      []*rowItem
	stats     []*colStat
	truncated bool
}

// rowItem is one loaded data row.
type rowItem struct {
	Index int      // 1-based position in the file's data rows
	Cells []string // decoded cell values
	Raw   string   // cells rejoined with the delimiter, for filtering
	lower string   // lowercased Raw, computed once
}

// colStat aggregates per-column statistics over the loaded rows.
type colStat struct {
	Name    string
	Values  int // non-null cells
	Nulls   int
	Numeric bool // every non-null cell parsed as a number

	Min, Max, sum      float64
	MinWidth, MaxWidth int
}

// Mean returns the numeric mean, or zero when the column has no values.
func (c *colStat) Mean() float64 {
	if c.Values == 0 {
		return 0
	}
	return c.sum / float64(c.Values)
}

// loadFile opens a delimited file and loads up to MaxRows rows, computing
// column statistics along the way. The source is closed before returning,
// so every cell value is copied out of the mapped buffer.
func loadFile(path string, opts Options) (*fileData, error) {
	src, err := source.Open(path)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	delim := opts.Delim
	if delim == 0 {
		delim = ','
	}
	maxRows := opts.MaxRows
	if maxRows <= 0 {
		maxRows = DefaultMaxRows
	}

	data := src.Data()
	cols := countColumns(data, delim)

	r, err := reader.New(data, reader.Options{
		Delim:   delim,
		Columns: cols,
		Header:  !opts.NoHeader,
		Errors:  reader.ErrorsOff,
		Nulls:   reader.NullStandard,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	columns := r.ColumnNames()
	if opts.NoHeader {
		columns = schema.Strings(cols).Names()
	}

	stats := make([]*colStat, cols)
	for i := range stats {
		stats[i] = &colStat{Name: columns[i], Numeric: true}
	}

	sep := string(delim)
	nulls := r.Nulls()
	var rows []*rowItem
	n := r.ForEachUntil(func(fields []reader.Field) bool {
		cells := make([]string, len(fields))
		for i, f := range fields {
			cells[i] = f.String()
			updateStat(stats[i], f, nulls)
		}
		raw := strings.Join(cells, sep)
		rows = append(rows, &rowItem{
			Index: len(rows) + 1,
			Cells: cells,
			Raw:   raw,
			lower: strings.ToLower(raw),
		})
		return len(rows) < maxRows
	})

	// The cursor rests past the last accepted row, so one extra probe tells
	// whether the file ends exactly at the bound.
	truncated := false
	if n >= maxRows {
		truncated = r.ForEachUntil(func([]reader.Field) bool { return false }) > 0
	}

	// A column with no non-null values has no numeric summary.
	for _, st := range stats {
		if st.Values == 0 {
			st.Numeric = false
		}
	}

	return &fileData{
		path:      path,
		columns:   columns,
		rows:      rows,
		stats:     stats,
		truncated: truncated,
	}, nil
}

func updateStat(st *colStat, f reader.Field, nulls reader.NullPolicy) {
	if f.IsNull(nulls) {
		st.Nulls++
		return
	}

	w := f.Len()
	if st.Values == 0 || w < st.MinWidth {
		st.MinWidth = w
	}
	if w > st.MaxWidth {
		st.MaxWidth = w
	}

	if st.Numeric {
		v, err := f.Float()
		if err != nil {
			st.Numeric = false
		} else {
			if st.Values == 0 || v < st.Min {
				st.Min = v
			}
			if st.Values == 0 || v > st.Max {
				st.Max = v
			}
			st.sum += v
		}
	}
	st.Values++
}

// countColumns counts fields in the first line of data.
func countColumns(data []byte, delim byte) int {
	end := bytes.IndexByte(data, '\n')
	if end < 0 {
		end = len(data)
	}
	n := 1
	for _, c := range data[:end] {
		if c == delim {
			n++
		}
	}
	return n
}
