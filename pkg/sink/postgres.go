package sink

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/skimdata/skim/pkg/schema"
)

// ResolveDSN returns dsn when set, falling back to the SKIM_PG_DSN
// environment variable after loading .env when one is present.
func ResolveDSN(dsn string) (string, error) {
	if dsn != "" {
		return dsn, nil
	}
	_ = godotenv.Load()
	if v := os.Getenv("SKIM_PG_DSN"); v != "" {
		return v, nil
	}
	return "", fmt.Errorf("no connection string given and SKIM_PG_DSN is unset")
}

// Postgres loads rows into one table through a streaming COPY. Begin
// starts the copy, Row feeds it, Flush completes it.
type Postgres struct {
	pool  *pgxpool.Pool
	ctx   context.Context
	table string

	ch     chan []any
	done   chan copyResult
	res    copyResult
	total  int64
	closed bool
}

type copyResult struct {
	n   int64
	err error
}

// NewPostgres connects to dsn and ensures the target table exists with
// column types derived from sch.
func NewPostgres(ctx context.Context, dsn, table string, sch *schema.Schema) (*Postgres, error) {
	if err := sch.Validate(); err != nil {
		return nil, err
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("parsing connection string: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	if _, err := pool.Exec(ctx, createTablePostgres(table, sch)); err != nil {
		pool.Close()
		return nil, fmt.Errorf("creating table %s: %w", table, err)
	}
	return &Postgres{pool: pool, ctx: ctx, table: table}, nil
}

// Begin starts the COPY in a goroutine fed by Row.
func (p *Postgres) Begin(cols []string) error {
	if p.ch != nil {
		return fmt.Errorf("load already begun")
	}
	p.ch = make(chan []any, 256)
	p.done = make(chan copyResult, 1)

	src := &rowSource{ch: p.ch}
	go func() {
		n, err := p.pool.CopyFrom(p.ctx, pgx.Identifier{p.table}, cols, src)
		p.done <- copyResult{n: n, err: err}
	}()
	return nil
}

// Row feeds one row to the COPY. The values slice is handed off and must
// not be reused by the caller.
func (p *Postgres) Row(vals []any) error {
	if p.ch == nil || p.closed {
		return fmt.Errorf("load not begun")
	}
	select {
	case p.ch <- vals:
		return nil
	case res := <-p.done:
		// The copy ended underneath us.
		p.res = res
		p.closed = true
		if res.err != nil {
			return res.err
		}
		return fmt.Errorf("copy finished early")
	}
}

// Flush completes the running COPY and reports its error, if any. A
// later Begin starts a fresh COPY into the same table.
func (p *Postgres) Flush() error {
	if p.ch == nil {
		return nil
	}
	if !p.closed {
		close(p.ch)
		p.res = <-p.done
	}
	p.total += p.res.n
	p.ch = nil
	p.done = nil
	p.closed = false
	return p.res.err
}

// Copied returns the total row count reported by completed COPYs.
func (p *Postgres) Copied() int64 { return p.total }

// Close abandons any running COPY and releases the pool.
func (p *Postgres) Close() error {
	if p.ch != nil && !p.closed {
		close(p.ch)
		p.res = <-p.done
		p.closed = true
	}
	p.pool.Close()
	return nil
}

// rowSource adapts the Row channel to pgx.CopyFromSource.
type rowSource struct {
	ch  <-chan []any
	cur []any
}

func (s *rowSource) Next() bool {
	v, ok := <-s.ch
	s.cur = v
	return ok
}

func (s *rowSource) Values() ([]any, error) { return s.cur, nil }

func (s *rowSource) Err() error { return nil }

func createTablePostgres(table string, sch *schema.Schema) string {
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE IF NOT EXISTS %s (", quoteIdent(table))
	for i, c := range sch.Columns {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s %s", quoteIdent(c.Name), postgresType(c.Type))
	}
	b.WriteByte(')')
	return b.String()
}

func postgresType(t schema.Type) string {
	switch t {
	case schema.TypeInt, schema.TypeUint:
		return "BIGINT"
	case schema.TypeFloat:
		return "DOUBLE PRECISION"
	case schema.TypeBool:
		return "BOOLEAN"
	case schema.TypeDate:
		return "DATE"
	case schema.TypeDateTime:
		return "TIMESTAMPTZ"
	default:
		return "TEXT"
	}
}
