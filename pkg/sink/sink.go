// Package sink loads decoded rows into SQL stores.
//
// A Sink receives typed driver values row by row: Begin names the target
// columns, Flush makes the loaded rows durable, Close releases the
// connection. Close without Flush discards uncommitted rows.
package sink

import (
	"fmt"
	"math"
	"strings"

	"github.com/skimdata/skim/pkg/reader"
	"github.com/skimdata/skim/pkg/schema"
)

// Sink is a push-model row loader.
type Sink interface {
	Begin(cols []string) error
	Row(vals []any) error
	Flush() error
	Close() error
}

// LoadOptions configures a load run. Reader.Columns is overwritten with
// the schema width; Reader.Nulls drives SQL NULL conversion. Strict turns
// unparseable values into errors instead of NULLs. Batch > 0 flushes the
// sink every Batch rows; zero loads everything in a single flush.
type LoadOptions struct {
	Reader reader.Options
	Strict bool
	Batch  int
}

// Load decodes data against sch and pushes every row into s. Returns the
// number of rows pushed.
func Load(s Sink, data []byte, sch *schema.Schema, opts LoadOptions) (int, error) {
	ropts := opts.Reader
	ropts.Columns = sch.Len()
	r, err := reader.New(data, ropts)
	if err != nil {
		return 0, err
	}

	if err := s.Begin(sch.Names()); err != nil {
		return 0, err
	}

	var rowErr error
	pushed := 0
	n := r.ForEachUntil(func(fields []reader.Field) bool {
		vals, err := RowValues(fields, sch, ropts.Nulls, opts.Strict)
		if err != nil {
			rowErr = err
			return false
		}
		if err := s.Row(vals); err != nil {
			rowErr = err
			return false
		}
		pushed++
		if opts.Batch > 0 && pushed%opts.Batch == 0 {
			if err := s.Flush(); err != nil {
				rowErr = err
				return false
			}
			if err := s.Begin(sch.Names()); err != nil {
				rowErr = err
				return false
			}
		}
		return true
	})
	if rowErr != nil {
		return n, rowErr
	}
	if err := s.Flush(); err != nil {
		return n, err
	}
	return n, nil
}

// RowValues converts one decoded row into driver values per the schema.
// Null-matched fields become nil; so do missing trailing fields and parse
// failures, unless strict is set, which turns failures into errors naming
// the column.
func RowValues(fields []reader.Field, sch *schema.Schema, nulls reader.NullPolicy, strict bool) ([]any, error) {
	vals := make([]any, sch.Len())
	for i, c := range sch.Columns {
		if i >= len(fields) {
			if strict {
				return nil, fmt.Errorf("column %s: missing value", c.Name)
			}
			continue
		}
		f := fields[i]
		if nulls.Match(f.Bytes()) {
			continue
		}

		var v any
		var err error
		switch c.Type {
		case schema.TypeString:
			v = f.String()
		case schema.TypeInt:
			v, err = f.Int()
		case schema.TypeUint:
			var u uint64
			u, err = f.Uint()
			if err == nil && u > math.MaxInt64 {
				err = fmt.Errorf("value %d overflows BIGINT", u)
			}
			v = int64(u)
		case schema.TypeFloat:
			v, err = f.Float()
		case schema.TypeBool:
			v, err = f.Bool()
		case schema.TypeDate:
			v, err = f.Date()
		case schema.TypeDateTime:
			v, err = f.DateTime()
		}
		if err != nil {
			if strict {
				return nil, fmt.Errorf("column %s: value %q: %w", c.Name, f.Bytes(), err)
			}
			continue
		}
		vals[i] = v
	}
	return vals, nil
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
