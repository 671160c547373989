// Package batch accumulates decoded rows into Arrow record batches.
//
// A Builder maps a declared schema onto an Arrow schema and appends rows
// of zero-copy fields; null-matched fields and failed parses become Arrow
// nulls. The writers drive a full decode into Parquet or Arrow IPC files.
package batch

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/skimdata/skim/pkg/reader"
	"github.com/skimdata/skim/pkg/schema"
)

// Builder accumulates rows for one Arrow record batch at a time.
type Builder struct {
	sch       *arrow.Schema
	rec       *array.RecordBuilder
	nulls     reader.NullPolicy
	appenders []func(reader.Field)
	rows      int
}

// NewBuilder maps sch onto an Arrow schema and prepares column builders.
// Fields matching nulls append as Arrow nulls, as do values the declared
// type cannot parse.
func NewBuilder(mem memory.Allocator, sch *schema.Schema, nulls reader.NullPolicy) (*Builder, error) {
	if err := sch.Validate(); err != nil {
		return nil, err
	}

	fields := make([]arrow.Field, sch.Len())
	for i, c := range sch.Columns {
		dt, err := arrowType(c.Type)
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", c.Name, err)
		}
		fields[i] = arrow.Field{Name: c.Name, Type: dt, Nullable: true}
	}

	b := &Builder{
		sch:   arrow.NewSchema(fields, nil),
		nulls: nulls,
	}
	b.rec = array.NewRecordBuilder(mem, b.sch)

	b.appenders = make([]func(reader.Field), sch.Len())
	for i, c := range sch.Columns {
		b.appenders[i] = b.appender(b.rec.Field(i), c.Type)
	}
	return b, nil
}

func arrowType(t schema.Type) (arrow.DataType, error) {
	switch t {
	case schema.TypeString:
		return arrow.BinaryTypes.String, nil
	case schema.TypeInt:
		return arrow.PrimitiveTypes.Int64, nil
	case schema.TypeUint:
		return arrow.PrimitiveTypes.Uint64, nil
	case schema.TypeFloat:
		return arrow.PrimitiveTypes.Float64, nil
	case schema.TypeBool:
		return arrow.FixedWidthTypes.Boolean, nil
	case schema.TypeDate:
		return arrow.FixedWidthTypes.Date32, nil
	case schema.TypeDateTime:
		return &arrow.TimestampType{Unit: arrow.Second, TimeZone: "UTC"}, nil
	}
	return nil, fmt.Errorf("unknown type %q", t)
}

// appender binds one column builder to its parse-or-null routine.
func (b *Builder) appender(fb array.Builder, t schema.Type) func(reader.Field) {
	switch t {
	case schema.TypeString:
		sb := fb.(*array.StringBuilder)
		return func(f reader.Field) { sb.Append(f.String()) }
	case schema.TypeInt:
		ib := fb.(*array.Int64Builder)
		return func(f reader.Field) {
			if v, err := f.Int(); err == nil {
				ib.Append(v)
			} else {
				ib.AppendNull()
			}
		}
	case schema.TypeUint:
		ub := fb.(*array.Uint64Builder)
		return func(f reader.Field) {
			if v, err := f.Uint(); err == nil {
				ub.Append(v)
			} else {
				ub.AppendNull()
			}
		}
	case schema.TypeFloat:
		flb := fb.(*array.Float64Builder)
		return func(f reader.Field) {
			if v, err := f.Float(); err == nil {
				flb.Append(v)
			} else {
				flb.AppendNull()
			}
		}
	case schema.TypeBool:
		bb := fb.(*array.BooleanBuilder)
		return func(f reader.Field) {
			if v, err := f.Bool(); err == nil {
				bb.Append(v)
			} else {
				bb.AppendNull()
			}
		}
	case schema.TypeDate:
		db := fb.(*array.Date32Builder)
		return func(f reader.Field) {
			if v, err := f.Date(); err == nil {
				db.Append(arrow.Date32FromTime(v))
			} else {
				db.AppendNull()
			}
		}
	default:
		tb := fb.(*array.TimestampBuilder)
		return func(f reader.Field) {
			if v, err := f.DateTime(); err == nil {
				tb.Append(arrow.Timestamp(v.Unix()))
			} else {
				tb.AppendNull()
			}
		}
	}
}

// Schema returns the mapped Arrow schema.
func (b *Builder) Schema() *arrow.Schema { return b.sch }

// Rows returns the number of rows accumulated since the last Flush.
func (b *Builder) Rows() int { return b.rows }

// Append adds one decoded row. Missing trailing fields append as nulls.
func (b *Builder) Append(fields []reader.Field) {
	for i, appendVal := range b.appenders {
		if i >= len(fields) {
			b.rec.Field(i).AppendNull()
			continue
		}
		f := fields[i]
		if b.nulls.Match(f.Bytes()) {
			b.rec.Field(i).AppendNull()
			continue
		}
		appendVal(f)
	}
	b.rows++
}

// Flush emits the accumulated rows as one record and resets the builder.
// The caller releases the record.
func (b *Builder) Flush() arrow.Record {
	b.rows = 0
	return b.rec.NewRecord()
}

// Release frees the underlying column builders.
func (b *Builder) Release() {
	b.rec.Release()
}
