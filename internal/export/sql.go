package export

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/KaramelBytes/synthtab-cli/internal/dataset"
	"github.com/Masterminds/squirrel"
)

// Dialect selects identifier quoting, placeholders and column types.
type Dialect string

const (
	SQLite   Dialect = "sqlite3"
	Postgres Dialect = "postgres"
	MySQL    Dialect = "mysql"
)

// DefaultBatchSize is the number of rows per INSERT statement.
const DefaultBatchSize = 500

// maxBindParams stays under the smallest bound-parameter limit of the
// supported drivers (SQLite's 32766).
const maxBindParams = 30000

var ErrUnknownDialect = errors.New("unknown sql dialect")

// ParseDialect maps provider names to a Dialect.
func ParseDialect(s string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sqlite", "sqlite3":
		return SQLite, nil
	case "postgres", "postgresql", "pgx":
		return Postgres, nil
	case "mysql", "mariadb":
		return MySQL, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownDialect, s)
}

// DriverName is the database/sql driver registered for the dialect.
func (d Dialect) DriverName() string {
	if d == Postgres {
		return "pgx"
	}
	return string(d)
}

func (d Dialect) builder() squirrel.StatementBuilderType {
	if d == Postgres {
		return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	}
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)
}

func (d Dialect) quote(ident string) string {
	if d == MySQL {
		return "`" + strings.ReplaceAll(ident, "`", "``") + "`"
	}
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}

func (d Dialect) columnType(k dataset.Kind) string {
	if k == dataset.KindText {
		return "TEXT"
	}
	switch d {
	case Postgres:
		return "DOUBLE PRECISION"
	case MySQL:
		return "DOUBLE"
	}
	return "REAL"
}

// SQLOptions controls ExportSQL.
type SQLOptions struct {
	Dialect   Dialect
	Table     string
	BatchSize int
	// Replace drops an existing table of the same name first.
	Replace bool
}

// CreateTableSQL renders the DDL for t under opt.
func CreateTableSQL(opt SQLOptions, t *dataset.Table) string {
	defs := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		defs[i] = opt.Dialect.quote(c.Name) + " " + opt.Dialect.columnType(c.Kind)
	}
	return fmt.Sprintf("CREATE TABLE %s (%s)", opt.Dialect.quote(opt.Table), strings.Join(defs, ", "))
}

// ExportSQL creates opt.Table and inserts every row of t inside a single
// transaction. Missing cells are written as NULL. It returns the number of
// rows inserted; on error nothing is committed.
func ExportSQL(ctx context.Context, db *sql.DB, opt SQLOptions, t *dataset.Table) (int, error) {
	if opt.Table == "" {
		return 0, errors.New("sql export: table name is required")
	}
	if len(t.Columns) == 0 {
		return 0, errors.New("sql export: table has no columns")
	}
	if _, err := ParseDialect(string(opt.Dialect)); err != nil {
		return 0, err
	}
	batch := opt.BatchSize
	if batch <= 0 {
		batch = DefaultBatchSize
	}
	if batch*len(t.Columns) > maxBindParams {
		batch = max(1, maxBindParams/len(t.Columns))
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if opt.Replace {
		if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+opt.Dialect.quote(opt.Table)); err != nil {
			return 0, fmt.Errorf("drop table %s: %w", opt.Table, err)
		}
	}
	if _, err := tx.ExecContext(ctx, CreateTableSQL(opt, t)); err != nil {
		return 0, fmt.Errorf("create table %s: %w", opt.Table, err)
	}

	cols := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		cols[i] = opt.Dialect.quote(c.Name)
	}
	qb := opt.Dialect.builder()
	for start := 0; start < t.Rows; start += batch {
		end := min(start+batch, t.Rows)
		q := qb.Insert(opt.Dialect.quote(opt.Table)).Columns(cols...)
		for i := start; i < end; i++ {
			q = q.Values(rowValues(t, i)...)
		}
		query, args, err := q.ToSql()
		if err != nil {
			return 0, fmt.Errorf("build insert: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return 0, fmt.Errorf("insert rows %d-%d: %w", start+1, end, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return t.Rows, nil
}

func rowValues(t *dataset.Table, i int) []any {
	vals := make([]any, len(t.Columns))
	for j := range t.Columns {
		c := &t.Columns[j]
		switch {
		case c.IsNull(i):
			vals[j] = nil
		case c.Kind == dataset.KindNumeric:
			if v := c.Numbers[i]; !math.IsNaN(v) && !math.IsInf(v, 0) {
				vals[j] = v
			}
		default:
			vals[j] = c.Text[i]
		}
	}
	return vals
}
