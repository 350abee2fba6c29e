// Package sqlstore serves record reads from a relational database through
// database/sql. Postgres is reached through the pgx stdlib driver and SQLite
// through the pure-Go modernc driver.
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver
	"go.uber.org/zap"
	_ "modernc.org/sqlite" // pure go sqlite driver

	"github.com/mamadbah2/ganadero/internal/repository"
	"github.com/mamadbah2/ganadero/internal/repository/record"
)

// Dialect selects the driver and placeholder style.
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite"
)

func (d Dialect) driver() string {
	if d == DialectPostgres {
		return "pgx"
	}
	return "sqlite"
}

func (d Dialect) placeholder(n int) string {
	if d == DialectPostgres {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

// PoolConfig tunes the connection pool. Zero values keep database/sql defaults.
type PoolConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

var (
	sqlOpen = sql.Open
	openMu  sync.Mutex
)

// Gateway implements repository.Gateway over one table per collection.
type Gateway struct {
	db      *sql.DB
	dialect Dialect
	logger  *zap.Logger
}

// Open connects to the database and verifies the connection.
func Open(ctx context.Context, dialect Dialect, dsn string, pool PoolConfig, logger *zap.Logger) (*Gateway, error) {
	if dsn == "" {
		return nil, fmt.Errorf("open %s: empty dsn", dialect)
	}
	openMu.Lock()
	db, err := sqlOpen(dialect.driver(), dsn)
	openMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dialect, err)
	}
	if pool.MaxOpenConns > 0 {
		db.SetMaxOpenConns(pool.MaxOpenConns)
	}
	if pool.MaxIdleConns > 0 {
		db.SetMaxIdleConns(pool.MaxIdleConns)
	}
	if pool.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(pool.ConnMaxLifetime)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", dialect, err)
	}
	return New(db, dialect, logger), nil
}

// New wraps an existing handle.
func New(db *sql.DB, dialect Dialect, logger *zap.Logger) *Gateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gateway{db: db, dialect: dialect, logger: logger}
}

// DB exposes the underlying handle.
func (g *Gateway) DB() *sql.DB { return g.db }

// Close releases the pool.
func (g *Gateway) Close() error { return g.db.Close() }

// Fetch implements repository.Gateway.
func (g *Gateway) Fetch(ctx context.Context, collection repository.Collection, query repository.Query) ([]record.Record, error) {
	schema, err := repository.SchemaFor(collection)
	if err != nil {
		return nil, err
	}
	if err := query.Validate(schema); err != nil {
		return nil, err
	}

	stmt, args := buildSelect(g.dialect, schema, query)
	rows, err := g.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", collection, err)
	}
	defer func() { _ = rows.Close() }()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("columns %s: %w", collection, err)
	}

	var out []record.Record
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan %s: %w", collection, err)
		}
		rec := make(record.Record, len(columns))
		for i, col := range columns {
			rec[col] = values[i]
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", collection, err)
	}
	return out, nil
}

// buildSelect renders the query. Identifiers come from the schema whitelist
// only; every value is bound.
func buildSelect(d Dialect, s repository.Schema, q repository.Query) (string, []any) {
	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(strings.Join(s.Fields, ", "))
	b.WriteString(" FROM ")
	b.WriteString(string(s.Collection))

	var where []string
	var args []any
	bind := func(v any) string {
		args = append(args, v)
		return d.placeholder(len(args))
	}
	for _, f := range q.Filters {
		where = append(where, f.Field+" = "+bind(f.Value))
	}
	if q.Since != nil {
		where = append(where, s.DateField+" >= "+bind(dateArg(d, *q.Since)))
	}
	if q.Until != nil {
		where = append(where, s.DateField+" <= "+bind(dateArg(d, *q.Until)))
	}
	if len(where) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(where, " AND "))
	}
	if q.NewestFirst && s.DateField != "" {
		b.WriteString(" ORDER BY ")
		b.WriteString(s.DateField)
		b.WriteString(" DESC")
		if d == DialectPostgres {
			b.WriteString(" NULLS LAST")
		}
	}
	if q.Limit > 0 {
		fmt.Fprintf(&b, " LIMIT %d", q.Limit)
	}
	return b.String(), args
}

// SQLite keeps dates as ISO text, so range bounds compare as strings.
func dateArg(d Dialect, t time.Time) any {
	if d == DialectSQLite {
		return t.UTC().Format("2006-01-02T15:04:05Z")
	}
	return t
}
