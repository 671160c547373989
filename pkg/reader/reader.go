// Package reader decodes fixed-width delimiter-separated buffers into
// zero-copy field views.
//
// A Reader consumes its buffer exactly once: the cursor advances
// monotonically and never rewinds, so a second iteration call picks up
// where the first stopped and reports 0 once the buffer is exhausted.
// Iteration allocates nothing per row. Callback arguments are reused
// between rows and must be copied if retained; the byte spans they point
// at stay valid as long as the underlying buffer does.
package reader

import (
	"fmt"

	"github.com/skimdata/skim/pkg/scan"
)

// Options configures a Reader. The zero delimiter means comma.
type Options struct {
	Delim   byte // field delimiter; must not be CR or LF
	Columns int  // fixed column count, at least 1
	Header  bool // consume the first line as column names
	Errors  ErrorPolicy
	Nulls   NullPolicy
}

// Reader splits one in-memory buffer into rows of exactly Columns fields.
// Not safe for concurrent use.
type Reader struct {
	data    []byte
	cursor  int
	opts    Options
	columns []string
	line    uint32
	lastErr ErrorInfo

	// Reused across rows so iteration stays allocation-free.
	starts []int
	ends   []int
	fields []Field
}

// New wraps data without copying it. When opts.Header is set the first
// line is consumed immediately as column names, with a trailing CR
// stripped the same way data rows strip it.
func New(data []byte, opts Options) (*Reader, error) {
	if opts.Delim == 0 {
		opts.Delim = ','
	}
	if opts.Columns < 1 {
		return nil, fmt.Errorf("reader: column count %d, need at least 1", opts.Columns)
	}
	if opts.Delim == '\n' || opts.Delim == '\r' {
		return nil, fmt.Errorf("reader: delimiter %q collides with line terminators", opts.Delim)
	}
	r := &Reader{
		data:    data,
		opts:    opts,
		columns: make([]string, opts.Columns),
		starts:  make([]int, opts.Columns),
		ends:    make([]int, opts.Columns),
		fields:  make([]Field, opts.Columns),
	}
	if opts.Header {
		r.parseHeader()
	}
	return r, nil
}

// parseHeader consumes the first physical line. Columns beyond the header's
// field count keep empty names; no trailing-empty synthesis and no width
// check apply here.
func (r *Reader) parseHeader() {
	if r.cursor >= len(r.data) {
		return
	}
	if r.opts.Errors.TrackLine {
		r.line++
	}
	r.cursor += splitHeaderLine(r.data[r.cursor:], r.opts.Delim, r.columns)
}

// NumColumns returns the configured column count.
func (r *Reader) NumColumns() int { return r.opts.Columns }

// Nulls returns the null policy the Reader was configured with, for use
// with the null-aware Field helpers.
func (r *Reader) Nulls() NullPolicy { return r.opts.Nulls }

// Data returns the underlying buffer.
func (r *Reader) Data() []byte { return r.data }

// ColumnNames returns the header names, empty strings where the header had
// fewer fields than the configured width. The slice is shared, not copied.
func (r *Reader) ColumnNames() []string { return r.columns }

// ColumnName returns the header name at idx, or "" when idx is out of
// range.
func (r *Reader) ColumnName(idx int) string {
	if idx < 0 || idx >= len(r.columns) {
		return ""
	}
	return r.columns[idx]
}

// ColumnIndex returns the index of the named column, or -1 when absent.
func (r *Reader) ColumnIndex(name string) int {
	for i, n := range r.columns {
		if n == name {
			return i
		}
	}
	return -1
}

// LastError returns the most recent structural error. Meaningful only when
// the error policy is enabled; otherwise it stays zero.
func (r *Reader) LastError() ErrorInfo { return r.lastErr }

// HasError reports whether a structural error has been recorded.
func (r *Reader) HasError() bool { return r.lastErr.Code != CodeNone }

// ForEachRaw walks every remaining row and hands the callback parallel
// start/end offset slices into Data, one entry per column. Empty lines are
// skipped, a trailing CR is stripped from each line, and a row ending in a
// bare delimiter gets one synthesized empty trailing field. Rows whose
// field count differs from the configured width are skipped with the error
// recorded when the error policy is enabled, and delivered as-is when it
// is disabled. Returns the number of rows delivered.
//
// The offset slices are reused between rows.
func (r *Reader) ForEachRaw(fn func(starts, ends []int)) int {
	data, end := r.data, len(r.data)
	delim := r.opts.Delim
	columns := r.opts.Columns
	enabled := r.opts.Errors.Enabled
	trackLine := r.opts.Errors.TrackLine
	trackCol := r.opts.Errors.TrackColumn
	starts, ends := r.starts, r.ends

	count := 0
	cur := r.cursor
	line := r.line

	for cur < end {
		if trackLine {
			line++
		}

		// Skip empty lines. A lone CR may pair with a following LF.
		if data[cur] == '\n' {
			cur++
			continue
		}
		if data[cur] == '\r' {
			cur++
			if cur < end && data[cur] == '\n' {
				cur++
			}
			continue
		}

		lineEnd := cur + scan.IndexNewline(data[cur:])
		eff := lineEnd
		if eff > cur && data[eff-1] == '\r' {
			eff--
		}

		ptr := cur
		col := 0
		for col < columns && ptr < eff {
			starts[col] = ptr
			ptr += scan.IndexTerminator(data[ptr:eff], delim)
			ends[col] = ptr
			col++
			if ptr < eff && data[ptr] == delim {
				ptr++
			}
		}

		// A line ending in a delimiter means one empty trailing field.
		if col > 0 && col < columns && ends[col-1] < eff && data[ends[col-1]] == delim {
			starts[col] = ptr
			ends[col] = ptr
			col++
		}

		if lineEnd < end {
			cur = lineEnd + 1
		} else {
			cur = end
		}

		if enabled && col != columns {
			r.lastErr = ErrorInfo{Code: CodeColumnCount}
			if trackLine {
				r.lastErr.Line = line
			}
			if trackCol {
				r.lastErr.Column = uint16(col)
			}
			continue
		}

		fn(starts, ends)
		count++
	}

	r.cursor = cur
	r.line = line
	return count
}

// ForEach walks every remaining row as a slice of Fields. Splitting and
// error behavior match ForEachRaw. The fields slice is reused between
// rows.
func (r *Reader) ForEach(fn func(fields []Field)) int {
	data := r.data
	fields := r.fields
	return r.ForEachRaw(func(starts, ends []int) {
		for i := range fields {
			fields[i] = Field{raw: data[starts[i]:ends[i]]}
		}
		fn(fields)
	})
}

// ForEachUntil walks rows like ForEach but stops after the first callback
// that returns false. The stopping row is included in the returned count,
// and the cursor rests on the following line, so iteration can resume.
func (r *Reader) ForEachUntil(fn func(fields []Field) bool) int {
	data, end := r.data, len(r.data)
	delim := r.opts.Delim
	columns := r.opts.Columns
	enabled := r.opts.Errors.Enabled
	trackLine := r.opts.Errors.TrackLine
	trackCol := r.opts.Errors.TrackColumn
	starts, ends := r.starts, r.ends
	fields := r.fields

	count := 0
	cur := r.cursor
	line := r.line

	for cur < end {
		if trackLine {
			line++
		}

		if data[cur] == '\n' {
			cur++
			continue
		}
		if data[cur] == '\r' {
			cur++
			if cur < end && data[cur] == '\n' {
				cur++
			}
			continue
		}

		lineEnd := cur + scan.IndexNewline(data[cur:])
		eff := lineEnd
		if eff > cur && data[eff-1] == '\r' {
			eff--
		}

		ptr := cur
		col := 0
		for col < columns && ptr < eff {
			starts[col] = ptr
			ptr += scan.IndexTerminator(data[ptr:eff], delim)
			ends[col] = ptr
			col++
			if ptr < eff && data[ptr] == delim {
				ptr++
			}
		}

		if col > 0 && col < columns && ends[col-1] < eff && data[ends[col-1]] == delim {
			starts[col] = ptr
			ends[col] = ptr
			col++
		}

		if lineEnd < end {
			cur = lineEnd + 1
		} else {
			cur = end
		}

		if enabled && col != columns {
			r.lastErr = ErrorInfo{Code: CodeColumnCount}
			if trackLine {
				r.lastErr.Line = line
			}
			if trackCol {
				r.lastErr.Column = uint16(col)
			}
			continue
		}

		for i := range fields {
			fields[i] = Field{raw: data[starts[i]:ends[i]]}
		}

		count++
		if !fn(fields) {
			break
		}
	}

	r.cursor = cur
	r.line = line
	return count
}
