// Package skim decodes large CSV and TSV files at memory-bandwidth speed.
//
// Files are memory-mapped and split in place: fields come back as
// zero-copy views into the buffer with typed accessors, and nothing is
// allocated per row. The format is deliberately narrow (single-byte
// delimiter, no quoting or escaping), which is what makes the fast path
// possible.
//
// # Basic Usage
//
// Open a file and walk its rows:
//
//	r, err := skim.Open("trades.csv")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer r.Close()
//
//	total := 0.0
//	n := r.ForEach(func(fields []skim.Field) {
//	    total += fields[2].FloatOr(0)
//	})
//	fmt.Printf("%d rows, %.2f total\n", n, total)
//
// Compressed inputs (.gz, .bz2, .xz, .zst, .7z) are decompressed
// transparently by Open.
//
// # Profiles
//
// The default configuration does no validation at all, matching Turbo.
// Pick a profile to trade speed for checking:
//
//	r, err := skim.Open("trades.csv", skim.Checked())
//	...
//	r.ForEach(process)
//	if r.HasError() {
//	    e := r.LastError()
//	    fmt.Printf("line %d: %s\n", e.Line, e.Code)
//	}
//
// # Parallel Decoding
//
// ForEachParallel fans row batches out over a worker pool. The callback
// must be safe to call from multiple goroutines and rows arrive in no
// particular order:
//
//	n := r.ForEachParallel(func(fields []skim.Field) {
//	    counter.Add(1)
//	})
package skim

import (
	"errors"

	"github.com/skimdata/skim/pkg/reader"
	"github.com/skimdata/skim/pkg/scan"
	"github.com/skimdata/skim/pkg/schema"
	"github.com/skimdata/skim/pkg/source"
)

// Re-export commonly used types for convenience.
// Users can import just "github.com/skimdata/skim" without subpackages.
type (
	// Field is a zero-copy view of one cell with typed accessors.
	Field = reader.Field

	// ErrorInfo describes the last recorded decode error.
	ErrorInfo = reader.ErrorInfo

	// Code classifies a decode error.
	Code = reader.Code

	// NullPolicy selects which textual forms decode as null.
	NullPolicy = reader.NullPolicy

	// ErrorPolicy selects how much error context is recorded.
	ErrorPolicy = reader.ErrorPolicy

	// Schema is a declared column list, loadable from YAML.
	Schema = schema.Schema

	// Column is one name/type pair of a Schema.
	Column = schema.Column
)

// Re-export error codes.
const (
	CodeNone        = reader.CodeNone
	CodeInt         = reader.CodeInt
	CodeRange       = reader.CodeRange
	CodeFloat       = reader.CodeFloat
	CodeBool        = reader.CodeBool
	CodeDate        = reader.CodeDate
	CodeDateTime    = reader.CodeDateTime
	CodeColumnCount = reader.CodeColumnCount
)

// Re-export policy presets.
var (
	ErrorsOff  = reader.ErrorsOff
	ErrorsLine = reader.ErrorsLine
	ErrorsFull = reader.ErrorsFull

	NullOff      = reader.NullOff
	NullStrict   = reader.NullStrict
	NullStandard = reader.NullStandard
	NullLenient  = reader.NullLenient
)

// ErrNoColumns is returned when the column count can neither be derived
// from a header row nor was set with WithColumns.
var ErrNoColumns = errors.New("skim: column count required when no header is present")

// config holds reader configuration assembled from Options.
type config struct {
	delim   byte
	columns int
	header  bool
	errors  reader.ErrorPolicy
	nulls   reader.NullPolicy
	workers int
}

// Option configures a Reader.
type Option func(*config)

// WithDelimiter sets the field separator. Default is comma.
func WithDelimiter(d byte) Option {
	return func(c *config) {
		c.delim = d
	}
}

// TSV is shorthand for WithDelimiter('\t').
func TSV() Option {
	return func(c *config) {
		c.delim = '\t'
	}
}

// WithColumns fixes the column count. Without it the count is taken from
// the header row's field count.
func WithColumns(n int) Option {
	return func(c *config) {
		c.columns = n
	}
}

// WithoutHeader treats the first line as data. WithColumns is then
// required, since there is no header to count.
func WithoutHeader() Option {
	return func(c *config) {
		c.header = false
	}
}

// WithErrorPolicy sets how much error context each pass records.
func WithErrorPolicy(p ErrorPolicy) Option {
	return func(c *config) {
		c.errors = p
	}
}

// WithNullPolicy sets which textual forms decode as null.
func WithNullPolicy(p NullPolicy) Option {
	return func(c *config) {
		c.nulls = p
	}
}

// WithWorkers sets the worker count for ForEachParallel. Default is 4.
func WithWorkers(n int) Option {
	return func(c *config) {
		c.workers = n
	}
}

// Turbo disables all validation: no error recording, no null detection.
// This is also the default configuration.
func Turbo() Option {
	return func(c *config) {
		c.errors = reader.ErrorsOff
		c.nulls = reader.NullOff
	}
}

// Checked records decode errors with their line numbers and decodes the
// common null spellings (empty, NA, null).
func Checked() Option {
	return func(c *config) {
		c.errors = reader.ErrorsLine
		c.nulls = reader.NullStandard
	}
}

// Safe records full error context including the column and accepts the
// widest set of null spellings.
func Safe() Option {
	return func(c *config) {
		c.errors = reader.ErrorsFull
		c.nulls = reader.NullLenient
	}
}

// Reader decodes one in-memory buffer. It is a thin facade over the
// sequential reader in pkg/reader, owning the backing Source.
type Reader struct {
	src *source.Source
	r   *reader.Reader
	cfg config
}

// Open maps (or decompresses) the file at path and builds a Reader over
// its contents. Close releases the mapping.
//
// Example:
//
//	r, err := skim.Open("data.csv.zst", skim.Checked())
func Open(path string, opts ...Option) (*Reader, error) {
	src, err := source.Open(path)
	if err != nil {
		return nil, err
	}
	r, err := build(src, opts)
	if err != nil {
		src.Close()
		return nil, err
	}
	return r, nil
}

// FromBytes builds a Reader over a caller-supplied buffer. The buffer
// must stay immutable for the Reader's lifetime.
func FromBytes(data []byte, opts ...Option) (*Reader, error) {
	return build(source.FromBytes(data), opts)
}

// FromSource builds a Reader over an already-acquired Source and takes
// ownership of it: the Reader's Close releases the Source. On error the
// Source stays open and the caller keeps ownership.
func FromSource(src *source.Source, opts ...Option) (*Reader, error) {
	return build(src, opts)
}

func build(src *source.Source, opts []Option) (*Reader, error) {
	cfg := config{
		delim:   ',',
		header:  true,
		workers: reader.DefaultWorkers,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.workers < 1 {
		cfg.workers = reader.DefaultWorkers
	}

	if cfg.columns <= 0 {
		if !cfg.header {
			return nil, ErrNoColumns
		}
		cfg.columns = countFields(src.Data(), cfg.delim)
	}

	r, err := reader.New(src.Data(), reader.Options{
		Delim:   cfg.delim,
		Columns: cfg.columns,
		Header:  cfg.header,
		Errors:  cfg.errors,
		Nulls:   cfg.nulls,
	})
	if err != nil {
		return nil, err
	}

	return &Reader{src: src, r: r, cfg: cfg}, nil
}

// countFields counts the fields of the first line using the terminator
// scanner.
func countFields(data []byte, delim byte) int {
	n := 1
	pos := 0
	for {
		pos += scan.IndexTerminator(data[pos:], delim)
		if pos >= len(data) || data[pos] != delim {
			return n
		}
		n++
		pos++
	}
}

// Close releases the underlying buffer. The Reader and every Field view
// obtained from it are invalid afterwards.
func (r *Reader) Close() error {
	return r.src.Close()
}

// Data returns the decoded byte buffer backing the Reader. Row offsets
// reported by ForEachRaw index into this slice.
func (r *Reader) Data() []byte { return r.src.Data() }

// Columns returns the fixed column count.
func (r *Reader) Columns() int { return r.r.NumColumns() }

// ColumnName returns the header name of column idx, or "" when out of
// range or when no header was parsed.
func (r *Reader) ColumnName(idx int) string { return r.r.ColumnName(idx) }

// ColumnIndex returns the index of the named header column, or -1.
func (r *Reader) ColumnIndex(name string) int { return r.r.ColumnIndex(name) }

// ColumnNames returns the parsed header names; without a header every
// name is empty.
func (r *Reader) ColumnNames() []string { return r.r.ColumnNames() }

// NullPolicy returns the null policy the Reader decodes with.
func (r *Reader) NullPolicy() NullPolicy { return r.r.Nulls() }

// ForEach walks every remaining row, handing the callback a reused slice
// of Field views. It returns the number of rows delivered.
func (r *Reader) ForEach(fn func(fields []Field)) int {
	return r.r.ForEach(fn)
}

// ForEachRaw walks rows as start/end offset pairs into the buffer,
// skipping Field construction entirely.
func (r *Reader) ForEachRaw(fn func(starts, ends []int)) int {
	return r.r.ForEachRaw(fn)
}

// ForEachUntil walks rows until the callback returns false. The stopping
// row is included in the count and a later call resumes after it.
func (r *Reader) ForEachUntil(fn func(fields []Field) bool) int {
	return r.r.ForEachUntil(fn)
}

// ForEachParallel walks every row using a pool of workers over chunks of
// the same buffer. The callback runs concurrently and must be safe for
// that; row order is not preserved. The sequential cursor is unaffected.
func (r *Reader) ForEachParallel(fn func(fields []Field)) int {
	p, err := reader.NewParallel(r.src.Data(), reader.ParallelOptions{
		Delim:   r.cfg.delim,
		Columns: r.cfg.columns,
		Header:  r.cfg.header,
		Workers: r.cfg.workers,
	})
	if err != nil {
		return 0
	}
	return p.ForEach(fn)
}

// LastError returns the last recorded decode error of the most recent
// pass. Meaningful only when an error policy is enabled.
func (r *Reader) LastError() ErrorInfo { return r.r.LastError() }

// HasError reports whether the most recent pass recorded an error.
func (r *Reader) HasError() bool { return r.r.HasError() }
