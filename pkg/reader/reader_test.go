package reader

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collectRows(r *Reader) [][]string {
	var rows [][]string
	r.ForEach(func(fields []Field) {
		row := make([]string, len(fields))
		for i, f := range fields {
			row[i] = f.String()
		}
		rows = append(rows, row)
	})
	return rows
}

func TestNew_Validation(t *testing.T) {
	_, err := New([]byte("a,b\n"), Options{Columns: 0})
	assert.Error(t, err)

	_, err = New([]byte("a,b\n"), Options{Columns: -3})
	assert.Error(t, err)

	_, err = New([]byte("a,b\n"), Options{Columns: 2, Delim: '\n'})
	assert.Error(t, err)

	_, err = New([]byte("a,b\n"), Options{Columns: 2, Delim: '\r'})
	assert.Error(t, err)

	// Zero delimiter means comma.
	r, err := New([]byte("a,b\n"), Options{Columns: 2})
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"a", "b"}}, collectRows(r))
}

func TestReader_Header(t *testing.T) {
	data := []byte("id,name,score\n1,alice,10\n2,bob,20\n")
	r, err := New(data, Options{Columns: 3, Header: true})
	require.NoError(t, err)

	assert.Equal(t, []string{"id", "name", "score"}, r.ColumnNames())
	assert.Equal(t, "id", r.ColumnName(0))
	assert.Equal(t, "score", r.ColumnName(2))
	assert.Equal(t, "", r.ColumnName(3))
	assert.Equal(t, "", r.ColumnName(-1))
	assert.Equal(t, 1, r.ColumnIndex("name"))
	assert.Equal(t, -1, r.ColumnIndex("missing"))
	assert.Equal(t, 3, r.NumColumns())

	assert.Equal(t, [][]string{{"1", "alice", "10"}, {"2", "bob", "20"}}, collectRows(r))
}

func TestReader_HeaderCRLF(t *testing.T) {
	data := []byte("id,name\r\n1,alice\r\n")
	r, err := New(data, Options{Columns: 2, Header: true})
	require.NoError(t, err)

	// The header's CR is stripped like a data row's.
	assert.Equal(t, []string{"id", "name"}, r.ColumnNames())
	assert.Equal(t, [][]string{{"1", "alice"}}, collectRows(r))
}

func TestReader_HeaderShorterThanWidth(t *testing.T) {
	r, err := New([]byte("id,name\n1,alice,10\n"), Options{Columns: 3, Header: true})
	require.NoError(t, err)

	assert.Equal(t, []string{"id", "name", ""}, r.ColumnNames())
	assert.Equal(t, -1, r.ColumnIndex("score"))
}

func TestReader_LineEndings(t *testing.T) {
	const rows = 100

	lf := strings.Repeat("a,b\n", rows)
	crlf := strings.Repeat("a,b\r\n", rows)

	for name, data := range map[string]string{"lf": lf, "crlf": crlf} {
		t.Run(name, func(t *testing.T) {
			r, err := New([]byte(data), Options{Columns: 2})
			require.NoError(t, err)
			n := r.ForEach(func(fields []Field) {
				assert.Equal(t, "a", fields[0].String())
				assert.Equal(t, "b", fields[1].String())
			})
			assert.Equal(t, rows, n)

			raw, err := New([]byte(data), Options{Columns: 2})
			require.NoError(t, err)
			m := raw.ForEachRaw(func(starts, ends []int) {
				assert.Len(t, starts, 2)
				assert.Len(t, ends, 2)
			})
			assert.Equal(t, rows, m)
		})
	}
}

func TestReader_NoTrailingNewline(t *testing.T) {
	r, err := New([]byte("x,y\n1,2\n3,4"), Options{Columns: 2, Header: true})
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"1", "2"}, {"3", "4"}}, collectRows(r))
}

func TestReader_FinalBareCR(t *testing.T) {
	// A trailing CR with no LF belongs to the terminator, not the data.
	r, err := New([]byte("1,2\r"), Options{Columns: 2})
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"1", "2"}}, collectRows(r))
}

func TestReader_EmptyLinesSkipped(t *testing.T) {
	data := []byte("\n1,2\n\n\r\n3,4\n\n")
	r, err := New(data, Options{Columns: 2})
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"1", "2"}, {"3", "4"}}, collectRows(r))
}

func TestReader_LoneCRSkippedAsEmptyLine(t *testing.T) {
	r, err := New([]byte("\r1,2\n"), Options{Columns: 2})
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"1", "2"}}, collectRows(r))
}

func TestReader_CRInsideLine(t *testing.T) {
	// A bare CR mid-line ends the field; the remaining columns come out
	// empty and the rest of the line is discarded.
	r, err := New([]byte("a\rjunk,x\n1,2\n"), Options{Columns: 2})
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"a", ""}, {"1", "2"}}, collectRows(r))
}

func TestReader_TrailingDelimiter(t *testing.T) {
	r, err := New([]byte("a,b,\n"), Options{Columns: 3, Nulls: NullStandard})
	require.NoError(t, err)

	var nulls []bool
	rows := 0
	r.ForEach(func(fields []Field) {
		rows++
		assert.Equal(t, "a", fields[0].String())
		assert.Equal(t, "b", fields[1].String())
		assert.Equal(t, "", fields[2].String())
		for _, f := range fields {
			nulls = append(nulls, f.IsNull(r.Nulls()))
		}
	})
	assert.Equal(t, 1, rows)
	assert.Equal(t, []bool{false, false, true}, nulls)
}

func TestReader_ExtraFieldsTruncated(t *testing.T) {
	// A row with more than Columns fields is not a mismatch; the extras
	// are ignored.
	r, err := New([]byte("a,b,c,d\n"), Options{Columns: 3, Errors: ErrorsFull})
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"a", "b", "c"}}, collectRows(r))
	assert.False(t, r.HasError())
}

func TestReader_MismatchSkipped(t *testing.T) {
	data := []byte("c1,c2,c3\n" + // line 1
		"1,2,3\n" + // line 2
		"a,b\n" + // line 3: short, skipped
		"4,5,6\n" + // line 4
		"7,8,9,10\n" + // line 5: long, truncated but delivered
		"z\n") // line 6: short, skipped
	r, err := New(data, Options{Columns: 3, Header: true, Errors: ErrorsFull})
	require.NoError(t, err)

	rows := collectRows(r)
	assert.Equal(t, [][]string{{"1", "2", "3"}, {"4", "5", "6"}, {"7", "8", "9"}}, rows)

	require.True(t, r.HasError())
	assert.Equal(t, CodeColumnCount, r.LastError().Code)
	assert.Equal(t, uint32(6), r.LastError().Line)
	assert.Equal(t, uint16(1), r.LastError().Column)
}

func TestReader_MismatchLineCountsSkippedLines(t *testing.T) {
	data := []byte("c1,c2\n" + // line 1
		"1,2\n" + // line 2
		"\n" + // line 3: empty, skipped but counted
		"bad\n" + // line 4
		"5,6\n") // line 5
	r, err := New(data, Options{Columns: 2, Header: true, Errors: ErrorsFull})
	require.NoError(t, err)

	assert.Equal(t, [][]string{{"1", "2"}, {"5", "6"}}, collectRows(r))
	assert.Equal(t, uint32(4), r.LastError().Line)
	assert.Equal(t, uint16(1), r.LastError().Column)
}

func TestReader_MismatchLineOnlyTracking(t *testing.T) {
	r, err := New([]byte("1,2\nbad\n"), Options{Columns: 2, Errors: ErrorsLine})
	require.NoError(t, err)

	assert.Equal(t, 1, r.ForEach(func([]Field) {}))
	require.True(t, r.HasError())
	assert.Equal(t, uint32(2), r.LastError().Line)
	assert.Equal(t, uint16(0), r.LastError().Column)
}

func TestReader_MismatchDisabledDeliversRow(t *testing.T) {
	r, err := New([]byte("1,2\nonly\n3,4\n"), Options{Columns: 2})
	require.NoError(t, err)

	var firsts []string
	n := r.ForEach(func(fields []Field) {
		firsts = append(firsts, fields[0].String())
	})
	assert.Equal(t, 3, n)
	assert.Equal(t, []string{"1", "only", "3"}, firsts)
	assert.False(t, r.HasError())
}

func TestReader_SinglePass(t *testing.T) {
	r, err := New([]byte("1,2\n3,4\n"), Options{Columns: 2})
	require.NoError(t, err)

	assert.Equal(t, 2, r.ForEach(func([]Field) {}))
	assert.Equal(t, 0, r.ForEach(func([]Field) {}))
	assert.Equal(t, 0, r.ForEachRaw(func(_, _ []int) {}))
}

func TestReader_ForEachUntil(t *testing.T) {
	r, err := New([]byte("1,a\n2,b\n3,c\n4,d\n"), Options{Columns: 2})
	require.NoError(t, err)

	var seen []string
	n := r.ForEachUntil(func(fields []Field) bool {
		seen = append(seen, fields[0].String())
		return fields[0].String() != "2"
	})

	// The stopping row is delivered and counted.
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"1", "2"}, seen)

	// The cursor rests after the stopping row, so iteration resumes there.
	assert.Equal(t, [][]string{{"3", "c"}, {"4", "d"}}, collectRows(r))
}

func TestReader_ForEachUntilRunsToEnd(t *testing.T) {
	r, err := New([]byte("1,a\n2,b\n"), Options{Columns: 2})
	require.NoError(t, err)

	assert.Equal(t, 2, r.ForEachUntil(func([]Field) bool { return true }))
	assert.Equal(t, 0, r.ForEachUntil(func([]Field) bool { return true }))
}

func TestReader_ForEachUntilRecordsMismatch(t *testing.T) {
	r, err := New([]byte("1,2\nbad\n3,4\n"), Options{Columns: 2, Errors: ErrorsFull})
	require.NoError(t, err)

	n := r.ForEachUntil(func([]Field) bool { return true })
	assert.Equal(t, 2, n)
	require.True(t, r.HasError())
	assert.Equal(t, uint32(2), r.LastError().Line)
}

func TestReader_ForEachRawOffsets(t *testing.T) {
	data := []byte("ab,cde\nf,gh\n")
	r, err := New(data, Options{Columns: 2})
	require.NoError(t, err)

	var rows [][]string
	r.ForEachRaw(func(starts, ends []int) {
		row := make([]string, len(starts))
		for i := range starts {
			row[i] = string(data[starts[i]:ends[i]])
		}
		rows = append(rows, row)
	})
	assert.Equal(t, [][]string{{"ab", "cde"}, {"f", "gh"}}, rows)
}

func TestReader_Idempotence(t *testing.T) {
	data := []byte("h1,h2\n1,2\n,\n3,\nx,y\n")
	opts := Options{Columns: 2, Header: true}

	a, err := New(data, opts)
	require.NoError(t, err)
	b, err := New(data, opts)
	require.NoError(t, err)

	assert.Equal(t, collectRows(a), collectRows(b))
}

func TestReader_TabDelimiter(t *testing.T) {
	r, err := New([]byte("a\tb\tc\n1\t2\t3\n"), Options{Columns: 3, Delim: '\t', Header: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, r.ColumnNames())
	assert.Equal(t, [][]string{{"1", "2", "3"}}, collectRows(r))
}

func TestReader_DelimiterInsideFieldCount(t *testing.T) {
	// Semicolon data with comma delimiter keeps semicolons as data.
	r, err := New([]byte("a;b,c\n"), Options{Columns: 2})
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"a;b", "c"}}, collectRows(r))
}

func TestReader_EmptyInput(t *testing.T) {
	r, err := New(nil, Options{Columns: 2, Header: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"", ""}, r.ColumnNames())
	assert.Equal(t, 0, r.ForEach(func([]Field) {}))
	assert.False(t, r.HasError())
}

func TestReader_HeaderOnly(t *testing.T) {
	r, err := New([]byte("a,b\n"), Options{Columns: 2, Header: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, r.ColumnNames())
	assert.Equal(t, 0, r.ForEach(func([]Field) {}))
}

func TestReader_AllEmptyFields(t *testing.T) {
	r, err := New([]byte(",,\n"), Options{Columns: 3, Nulls: NullStrict})
	require.NoError(t, err)

	n := r.ForEach(func(fields []Field) {
		for i, f := range fields {
			assert.True(t, f.IsEmpty(), "field %d", i)
			assert.True(t, f.IsNull(NullStrict), "field %d", i)
		}
	})
	assert.Equal(t, 1, n)
}

func TestReader_DataAccessor(t *testing.T) {
	data := []byte("a,b\n")
	r, err := New(data, Options{Columns: 2})
	require.NoError(t, err)
	assert.Equal(t, data, r.Data())
}
