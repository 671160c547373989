package reader

import (
	"fmt"
	"sync"

	"github.com/skimdata/skim/pkg/scan"
)

// DefaultWorkers is the goroutine count a Parallel reader uses when none
// is configured.
const DefaultWorkers = 4

// ParallelOptions configures a Parallel reader. The zero delimiter means
// comma; a Workers value below 1 means DefaultWorkers.
type ParallelOptions struct {
	Delim   byte
	Columns int
	Header  bool
	Workers int
}

// Parallel splits a buffer into newline-aligned chunks and walks them from
// one goroutine each. It keeps no cursor: every iteration call walks the
// whole buffer again. Rows whose field count differs from the configured
// width are dropped silently; callers needing error accounting should use
// the sequential Reader.
type Parallel struct {
	data    []byte
	opts    ParallelOptions
	columns []string
}

// NewParallel wraps data without copying it. When opts.Header is set the
// first line is consumed as column names exactly as the sequential Reader
// consumes it, and chunking applies to the remainder.
func NewParallel(data []byte, opts ParallelOptions) (*Parallel, error) {
	if opts.Delim == 0 {
		opts.Delim = ','
	}
	if opts.Columns < 1 {
		return nil, fmt.Errorf("reader: column count %d, need at least 1", opts.Columns)
	}
	if opts.Delim == '\n' || opts.Delim == '\r' {
		return nil, fmt.Errorf("reader: delimiter %q collides with line terminators", opts.Delim)
	}
	if opts.Workers < 1 {
		opts.Workers = DefaultWorkers
	}
	p := &Parallel{opts: opts, columns: make([]string, opts.Columns)}
	if opts.Header {
		data = data[splitHeaderLine(data, opts.Delim, p.columns):]
	}
	p.data = data
	return p, nil
}

// NumColumns returns the configured column count.
func (p *Parallel) NumColumns() int { return p.opts.Columns }

// ColumnNames returns the header names, empty strings where the header had
// fewer fields than the configured width. The slice is shared, not copied.
func (p *Parallel) ColumnNames() []string { return p.columns }

// ColumnName returns the header name at idx, or "" when idx is out of
// range.
func (p *Parallel) ColumnName(idx int) string {
	if idx < 0 || idx >= len(p.columns) {
		return ""
	}
	return p.columns[idx]
}

// ColumnIndex returns the index of the named column, or -1 when absent.
func (p *Parallel) ColumnIndex(name string) int {
	for i, n := range p.columns {
		if n == name {
			return i
		}
	}
	return -1
}

// ForEach walks every data row once across the configured workers and
// returns the total row count. fn is invoked concurrently from multiple
// goroutines; the fields slice it receives is owned by one goroutine and
// reused between that goroutine's rows. Row order across chunks is not
// preserved.
func (p *Parallel) ForEach(fn func(fields []Field)) int {
	data := p.data
	size := len(data)
	if size == 0 {
		return 0
	}

	// Chunk boundaries snap forward to the byte after the next newline so
	// no worker starts mid-row. The last chunk absorbs the remainder.
	type span struct{ start, end int }
	chunkSize := size / p.opts.Workers
	chunks := make([]span, 0, p.opts.Workers)
	chunkStart := 0
	for i := 0; i < p.opts.Workers-1 && chunkStart < size; i++ {
		approxEnd := chunkStart + chunkSize
		if approxEnd >= size {
			approxEnd = size
		} else {
			approxEnd += scan.IndexNewline(data[approxEnd:])
			if approxEnd < size {
				approxEnd++
			}
		}
		chunks = append(chunks, span{chunkStart, approxEnd})
		chunkStart = approxEnd
	}
	if chunkStart < size {
		chunks = append(chunks, span{chunkStart, size})
	}

	counts := make([]int, len(chunks))
	var wg sync.WaitGroup
	for i, c := range chunks {
		wg.Add(1)
		go func() {
			defer wg.Done()
			counts[i] = parseChunk(data[c.start:c.end], p.opts.Columns, p.opts.Delim, fn)
		}()
	}
	wg.Wait()

	total := 0
	for _, n := range counts {
		total += n
	}
	return total
}

// parseChunk runs the sequential splitting loop over one chunk with its
// own scratch state. Only rows with exactly columns fields are delivered.
func parseChunk(data []byte, columns int, delim byte, fn func([]Field)) int {
	starts := make([]int, columns)
	ends := make([]int, columns)
	fields := make([]Field, columns)

	count := 0
	cur, end := 0, len(data)

	for cur < end {
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

		if col == columns {
			for i := range fields {
				fields[i] = Field{raw: data[starts[i]:ends[i]]}
			}
			fn(fields)
			count++
		}
	}

	return count
}

// splitHeaderLine parses the first physical line of data into names and
// returns the offset of the first data byte after it. A trailing CR is
// stripped; names beyond the line's field count are left empty.
func splitHeaderLine(data []byte, delim byte, names []string) int {
	if len(data) == 0 {
		return 0
	}
	lineEnd := scan.IndexNewline(data)
	eff := lineEnd
	if eff > 0 && data[eff-1] == '\r' {
		eff--
	}
	ptr := 0
	for col := 0; col < len(names) && ptr < eff; col++ {
		start := ptr
		ptr += scan.IndexTerminator(data[ptr:eff], delim)
		names[col] = string(data[start:ptr])
		if ptr < eff && data[ptr] == delim {
			ptr++
		}
	}
	if lineEnd < len(data) {
		return lineEnd + 1
	}
	return len(data)
}
