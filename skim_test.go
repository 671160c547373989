package skim

import (
	"compress/gzip"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skimdata/skim/pkg/source"
)

const sample = "id,qty,price\n1,10,9.5\n2,20,1.25\n3,30,4.0\n"

func writeSample(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func TestOpen(t *testing.T) {
	path := writeSample(t, "data.csv", []byte(sample))

	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()

	assert.Equal(t, 3, r.Columns())
	assert.Equal(t, []string{"id", "qty", "price"}, r.ColumnNames())
	assert.Equal(t, "price", r.ColumnName(2))
	assert.Equal(t, 1, r.ColumnIndex("qty"))
	assert.Equal(t, -1, r.ColumnIndex("missing"))

	var qty int64
	n := r.ForEach(func(fields []Field) {
		qty += fields[1].IntOr(0)
	})
	assert.Equal(t, 3, n)
	assert.Equal(t, int64(60), qty)
}

func TestOpen_Missing(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "absent.csv"))
	assert.Error(t, err)
}

func TestOpen_Compressed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.csv.gz")
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := gzip.NewWriter(f)
	_, err = zw.Write([]byte(sample))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()

	n := r.ForEach(func(fields []Field) {})
	assert.Equal(t, 3, n)
}

func TestFromBytes(t *testing.T) {
	r, err := FromBytes([]byte(sample))
	require.NoError(t, err)
	defer r.Close()

	// Column count derived from the header.
	assert.Equal(t, 3, r.Columns())

	var rows [][]string
	r.ForEach(func(fields []Field) {
		row := make([]string, len(fields))
		for i, f := range fields {
			row[i] = f.String()
		}
		rows = append(rows, row)
	})
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"2", "20", "1.25"}, rows[1])
}

func TestFromBytes_WithoutHeader(t *testing.T) {
	r, err := FromBytes([]byte("1,2\n3,4\n"), WithoutHeader(), WithColumns(2))
	require.NoError(t, err)
	defer r.Close()

	var first []string
	n := r.ForEach(func(fields []Field) {
		if first == nil {
			first = []string{fields[0].String(), fields[1].String()}
		}
	})
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"1", "2"}, first)
	assert.Equal(t, "", r.ColumnName(0))
}

func TestFromBytes_WithoutHeaderNeedsColumns(t *testing.T) {
	_, err := FromBytes([]byte("1,2\n"), WithoutHeader())
	assert.ErrorIs(t, err, ErrNoColumns)
}

func TestFromSource(t *testing.T) {
	src, err := source.Open(writeSample(t, "data.csv", []byte(sample)))
	require.NoError(t, err)

	r, err := FromSource(src, Checked())
	require.NoError(t, err)

	n := r.ForEach(func(fields []Field) {})
	assert.Equal(t, 3, n)

	// Closing the Reader releases the adopted Source.
	require.NoError(t, r.Close())
	assert.False(t, src.Valid())
}

func TestFromSource_ErrorKeepsSource(t *testing.T) {
	src := source.FromBytes([]byte("1,2\n"))

	_, err := FromSource(src, WithoutHeader())
	require.ErrorIs(t, err, ErrNoColumns)

	// The caller still owns the Source after a failed build.
	assert.True(t, src.Valid())
	assert.Equal(t, []byte("1,2\n"), src.Data())
	require.NoError(t, src.Close())
}

func TestDelimiters(t *testing.T) {
	r, err := FromBytes([]byte("a\tb\n1\t2\n"), TSV())
	require.NoError(t, err)
	defer r.Close()
	assert.Equal(t, 2, r.Columns())

	r2, err := FromBytes([]byte("a;b;c\n1;2;3\n"), WithDelimiter(';'))
	require.NoError(t, err)
	defer r2.Close()
	assert.Equal(t, 3, r2.Columns())

	var last string
	r2.ForEach(func(fields []Field) {
		last = fields[2].String()
	})
	assert.Equal(t, "3", last)
}

func TestProfiles(t *testing.T) {
	// Default matches Turbo: no nulls, no error recording.
	r, err := FromBytes([]byte(sample))
	require.NoError(t, err)
	defer r.Close()
	assert.Equal(t, NullOff, r.NullPolicy())
	r.ForEach(func(fields []Field) {})
	assert.False(t, r.HasError())

	r, err = FromBytes([]byte(sample), Checked())
	require.NoError(t, err)
	defer r.Close()
	assert.Equal(t, NullStandard, r.NullPolicy())

	r, err = FromBytes([]byte(sample), Safe())
	require.NoError(t, err)
	defer r.Close()
	assert.Equal(t, NullLenient, r.NullPolicy())
}

func TestChecked_ShortRow(t *testing.T) {
	data := "a,b\n1,2\n3\n4,5\n"
	r, err := FromBytes([]byte(data), Checked())
	require.NoError(t, err)
	defer r.Close()

	// The short row is skipped and recorded; the others are delivered.
	n := r.ForEach(func(fields []Field) {})
	assert.Equal(t, 2, n)
	require.True(t, r.HasError())
	assert.Equal(t, CodeColumnCount, r.LastError().Code)
	assert.Equal(t, uint32(3), r.LastError().Line)
}

func TestSafe_TracksColumn(t *testing.T) {
	data := "a,b\n1\n"
	r, err := FromBytes([]byte(data), Safe())
	require.NoError(t, err)
	defer r.Close()

	r.ForEach(func(fields []Field) {})
	require.True(t, r.HasError())
	assert.Equal(t, CodeColumnCount, r.LastError().Code)
	assert.Equal(t, uint32(2), r.LastError().Line)
	assert.Equal(t, uint16(1), r.LastError().Column)
}

func TestForEachUntil(t *testing.T) {
	r, err := FromBytes([]byte(sample))
	require.NoError(t, err)
	defer r.Close()

	n := r.ForEachUntil(func(fields []Field) bool {
		return false
	})
	assert.Equal(t, 1, n, "stopping row is counted")

	// Iteration resumes after the stopping row.
	rest := r.ForEach(func(fields []Field) {})
	assert.Equal(t, 2, rest)
}

func TestForEachRaw(t *testing.T) {
	r, err := FromBytes([]byte(sample))
	require.NoError(t, err)
	defer r.Close()

	rows := 0
	n := r.ForEachRaw(func(starts, ends []int) {
		assert.Len(t, starts, 3)
		assert.Len(t, ends, 3)
		rows++
	})
	assert.Equal(t, 3, n)
	assert.Equal(t, 3, rows)
}

func TestForEachParallel(t *testing.T) {
	path := writeSample(t, "data.csv", []byte(sample))

	r, err := Open(path, WithWorkers(2))
	require.NoError(t, err)
	defer r.Close()

	var rows, qty atomic.Int64
	n := r.ForEachParallel(func(fields []Field) {
		rows.Add(1)
		qty.Add(fields[1].IntOr(0))
	})
	assert.Equal(t, 3, n)
	assert.Equal(t, int64(3), rows.Load())
	assert.Equal(t, int64(60), qty.Load())

	// The sequential cursor is untouched by a parallel pass.
	assert.Equal(t, 3, r.ForEach(func(fields []Field) {}))
}

func TestCountFields(t *testing.T) {
	cases := []struct {
		data  string
		delim byte
		want  int
	}{
		{"a,b,c\n1,2,3\n", ',', 3},
		{"a\tb", '\t', 2},
		{"abc", ',', 1},
		{"", ',', 1},
		{"a,b\r\nc,d\n", ',', 2},
		{"one\n", ',', 1},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, countFields([]byte(tc.data), tc.delim), "data %q", tc.data)
	}
}
