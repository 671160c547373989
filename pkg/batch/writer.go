package batch

import (
	"fmt"
	"io"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"

	"github.com/skimdata/skim/pkg/reader"
	"github.com/skimdata/skim/pkg/schema"
)

// DefaultBatchRows is the record size the writers emit when WriteOptions
// leaves BatchRows unset.
const DefaultBatchRows = 8192

// WriteOptions configures a conversion run. Reader.Columns is overwritten
// with the schema width; Reader.Nulls doubles as the builder's null policy.
type WriteOptions struct {
	Reader    reader.Options
	BatchRows int
}

// WriteParquet decodes data against sch and writes a Snappy-compressed
// Parquet file to w. Returns the number of rows written.
func WriteParquet(w io.Writer, data []byte, sch *schema.Schema, opts WriteOptions) (int, error) {
	mem := memory.NewGoAllocator()
	b, err := NewBuilder(mem, sch, opts.Reader.Nulls)
	if err != nil {
		return 0, err
	}
	defer b.Release()

	props := parquet.NewWriterProperties(parquet.WithCompression(compress.Codecs.Snappy))
	arrowProps := pqarrow.NewArrowWriterProperties(pqarrow.WithStoreSchema())
	fw, err := pqarrow.NewFileWriter(b.Schema(), w, props, arrowProps)
	if err != nil {
		return 0, fmt.Errorf("failed to create parquet writer: %w", err)
	}

	n, err := drive(data, sch, opts, b, fw.Write)
	if err != nil {
		fw.Close()
		return n, err
	}
	if err := fw.Close(); err != nil {
		return n, fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return n, nil
}

// WriteIPC decodes data against sch and writes an Arrow IPC file to w.
// Returns the number of rows written.
func WriteIPC(w io.Writer, data []byte, sch *schema.Schema, opts WriteOptions) (int, error) {
	mem := memory.NewGoAllocator()
	b, err := NewBuilder(mem, sch, opts.Reader.Nulls)
	if err != nil {
		return 0, err
	}
	defer b.Release()

	fw, err := ipc.NewFileWriter(w, ipc.WithSchema(b.Schema()), ipc.WithAllocator(mem))
	if err != nil {
		return 0, fmt.Errorf("failed to create IPC writer: %w", err)
	}

	n, err := drive(data, sch, opts, b, fw.Write)
	if err != nil {
		fw.Close()
		return n, err
	}
	if err := fw.Close(); err != nil {
		return n, fmt.Errorf("failed to finalize IPC file: %w", err)
	}
	return n, nil
}

// drive decodes data into b, emitting a record every BatchRows rows plus a
// final partial record.
func drive(data []byte, sch *schema.Schema, opts WriteOptions, b *Builder, emit func(arrow.Record) error) (int, error) {
	ropts := opts.Reader
	ropts.Columns = sch.Len()
	r, err := reader.New(data, ropts)
	if err != nil {
		return 0, err
	}

	batchRows := opts.BatchRows
	if batchRows <= 0 {
		batchRows = DefaultBatchRows
	}

	flush := func() error {
		if b.Rows() == 0 {
			return nil
		}
		rec := b.Flush()
		defer rec.Release()
		return emit(rec)
	}

	var emitErr error
	total := r.ForEachUntil(func(fields []reader.Field) bool {
		b.Append(fields)
		if b.Rows() >= batchRows {
			if err := flush(); err != nil {
				emitErr = err
				return false
			}
		}
		return true
	})
	if emitErr != nil {
		return total, emitErr
	}
	if err := flush(); err != nil {
		return total, err
	}
	return total, nil
}
