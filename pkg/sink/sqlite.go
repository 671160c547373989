package sink

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/skimdata/skim/pkg/schema"
)

// sqliteMaxVars caps placeholders per statement (SQLITE_MAX_VARIABLE_NUMBER).
const sqliteMaxVars = 999

// SQLite loads rows into one SQLite table inside a single transaction,
// batching inserts into prepared multi-row statements.
type SQLite struct {
	db    *sql.DB
	table string
	kinds []schema.Type

	cols  []string
	tx    *sql.Tx
	multi *sql.Stmt
	batch int

	buf  []any
	rows int
}

// NewSQLite opens (or creates) the database at path and ensures the target
// table exists with affinities derived from sch. Use ":memory:" for an
// in-memory database.
func NewSQLite(path, table string, sch *schema.Schema) (*SQLite, error) {
	if err := sch.Validate(); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if _, err := db.Exec(createTableSQL(table, sch)); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating table %s: %w", table, err)
	}

	kinds := make([]schema.Type, sch.Len())
	for i, c := range sch.Columns {
		kinds[i] = c.Type
	}
	return &SQLite{db: db, table: table, kinds: kinds}, nil
}

// Begin starts the load transaction and prepares the batched insert.
func (s *SQLite) Begin(cols []string) error {
	if s.tx != nil {
		return fmt.Errorf("load already begun")
	}
	if len(cols) == 0 {
		return fmt.Errorf("no columns to load")
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	batch := sqliteMaxVars / len(cols)
	if batch > 100 {
		batch = 100
	}
	if batch < 1 {
		batch = 1
	}
	multi, err := tx.Prepare(insertSQL(s.table, cols, batch))
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("preparing insert: %w", err)
	}

	s.cols = cols
	s.tx = tx
	s.multi = multi
	s.batch = batch
	s.buf = make([]any, 0, batch*len(cols))
	s.rows = 0
	return nil
}

// Row buffers one row, executing the prepared statement at each full batch.
func (s *SQLite) Row(vals []any) error {
	if s.tx == nil {
		return fmt.Errorf("load not begun")
	}
	for i, v := range vals {
		if t, ok := v.(time.Time); ok {
			v = s.formatTime(i, t)
		}
		s.buf = append(s.buf, v)
	}
	s.rows++

	if s.rows < s.batch {
		return nil
	}
	if _, err := s.multi.Exec(s.buf...); err != nil {
		return fmt.Errorf("inserting batch: %w", err)
	}
	s.buf = s.buf[:0]
	s.rows = 0
	return nil
}

// Flush drains the partial batch and commits the transaction.
func (s *SQLite) Flush() error {
	if s.tx == nil {
		return nil
	}
	if s.rows > 0 {
		if _, err := s.tx.Exec(insertSQL(s.table, s.cols, s.rows), s.buf...); err != nil {
			return fmt.Errorf("inserting final batch: %w", err)
		}
		s.buf = s.buf[:0]
		s.rows = 0
	}
	s.multi.Close()
	if err := s.tx.Commit(); err != nil {
		return fmt.Errorf("committing: %w", err)
	}
	s.tx = nil
	s.multi = nil
	return nil
}

// Close releases the connection. Uncommitted rows are rolled back; call
// Flush first to keep them.
func (s *SQLite) Close() error {
	if s.tx != nil {
		s.tx.Rollback()
		s.tx = nil
	}
	return s.db.Close()
}

// formatTime renders dates and datetimes as ISO text for TEXT affinity.
func (s *SQLite) formatTime(col int, t time.Time) string {
	if col < len(s.kinds) && s.kinds[col] == schema.TypeDate {
		return t.Format("2006-01-02")
	}
	return t.Format("2006-01-02 15:04:05")
}

func createTableSQL(table string, sch *schema.Schema) string {
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE IF NOT EXISTS %s (", quoteIdent(table))
	for i, c := range sch.Columns {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s %s", quoteIdent(c.Name), sqliteAffinity(c.Type))
	}
	b.WriteByte(')')
	return b.String()
}

func sqliteAffinity(t schema.Type) string {
	switch t {
	case schema.TypeInt, schema.TypeUint, schema.TypeBool:
		return "INTEGER"
	case schema.TypeFloat:
		return "REAL"
	default:
		return "TEXT"
	}
}

func insertSQL(table string, cols []string, rows int) string {
	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(quoteIdent(table))
	b.WriteString(" (")
	for i, c := range cols {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(quoteIdent(c))
	}
	b.WriteString(") VALUES ")
	row := "(" + strings.Repeat("?,", len(cols)-1) + "?)"
	for i := 0; i < rows; i++ {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(row)
	}
	return b.String()
}
