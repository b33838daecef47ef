package query

import (
	"context"
	"database/sql"
	"log/slog"
	"strings"

	"github.com/leapstack-labs/querykit/pkg/compile"
	"github.com/leapstack-labs/querykit/pkg/dialect"
	"github.com/leapstack-labs/querykit/pkg/expr"
	"github.com/leapstack-labs/querykit/pkg/rewrite"
	"github.com/leapstack-labs/querykit/pkg/rowset"
)

// Database binds a live *sql.DB to a dialect. It implements both Compiler
// and Executor, so it is the usual collaborator handed to queries.
type Database struct {
	db       *sql.DB
	dialect  *dialect.Dialect
	compiler *compile.Compiler
	logger   *slog.Logger
}

// Option configures a Database.
type Option func(*Database)

// WithLogger routes statement logging to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Database) { d.logger = logger }
}

// NewDatabase wraps an open connection pool. The pool stays owned by the
// caller; Database never closes it.
func NewDatabase(db *sql.DB, dl *dialect.Dialect, opts ...Option) *Database {
	d := &Database{
		db:       db,
		dialect:  dl,
		compiler: compile.New(dl),
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// DB returns the underlying connection pool.
func (d *Database) DB() *sql.DB { return d.db }

// Dialect returns the SQL dialect statements compile against.
func (d *Database) Dialect() *dialect.Dialect { return d.dialect }

// Compile implements Compiler.
func (d *Database) Compile(e expr.Expr) (*compile.Result, error) {
	return d.compiler.Compile(e)
}

// Query wraps a query expression for execution against this database.
func (d *Database) Query(e expr.QueryExpr) *Query {
	return NewQuery(d, d, e)
}

// ExecuteQuery implements Executor for row-returning statements.
func (d *Database) ExecuteQuery(ctx context.Context, sqlText string, params []compile.Param) (rowset.Source, error) {
	d.logger.Debug("executing query", "sql", sqlText, "params", len(params))
	rows, err := d.db.QueryContext(ctx, sqlText, paramValues(params)...)
	if err != nil {
		return nil, err
	}
	src, err := rowset.NewSQLSource(rows)
	if err != nil {
		rows.Close()
		return nil, err
	}
	return src, nil
}

// ExecuteUpdate implements Executor for mutation statements.
func (d *Database) ExecuteUpdate(ctx context.Context, sqlText string, params []compile.Param) (int64, error) {
	d.logger.Debug("executing update", "sql", sqlText, "params", len(params))
	res, err := d.db.ExecContext(ctx, sqlText, paramValues(params)...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ExecuteInsertReturningKey implements Executor. RETURNING-style dialects
// scan the key from the statement's single result row; the rest read the
// driver's last-insert id.
func (d *Database) ExecuteInsertReturningKey(ctx context.Context, sqlText string, params []compile.Param) (int64, error) {
	d.logger.Debug("executing insert", "sql", sqlText, "params", len(params))
	if d.dialect.GeneratedKeys == dialect.GeneratedKeyReturning {
		var key int64
		if err := d.db.QueryRowContext(ctx, sqlText, paramValues(params)...).Scan(&key); err != nil {
			return 0, err
		}
		return key, nil
	}
	res, err := d.db.ExecContext(ctx, sqlText, paramValues(params)...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// ExecuteStatement compiles and runs a mutation statement, returning the
// affected row count. Aliases are stripped first: statement targets address
// physical tables.
func (d *Database) ExecuteStatement(ctx context.Context, stmt expr.StmtExpr) (int64, error) {
	res, err := d.compiler.Compile(rewrite.StripAliases(stmt))
	if err != nil {
		return 0, err
	}
	return d.ExecuteUpdate(ctx, res.SQL, res.Params)
}

// InsertReturningKey executes an insert and returns the generated value of
// keyColumn, honoring the dialect's generated-key style.
func (d *Database) InsertReturningKey(ctx context.Context, ins *expr.Insert, keyColumn string) (int64, error) {
	res, err := d.compiler.Compile(rewrite.StripAliases(ins))
	if err != nil {
		return 0, err
	}
	sqlText := res.SQL
	if d.dialect.GeneratedKeys == dialect.GeneratedKeyReturning {
		sqlText += " RETURNING " + d.dialect.QuoteIdentifier(keyColumn)
	}
	return d.ExecuteInsertReturningKey(ctx, sqlText, res.Params)
}

// RawQuery runs already-written SQL and drains the result. The CLI and
// gateway surfaces feed user statements through here.
func (d *Database) RawQuery(ctx context.Context, sqlText string, args ...any) (*rowset.RowSet, error) {
	d.logger.Debug("executing raw query", "sql", sqlText)
	rows, err := d.db.QueryContext(ctx, sqlText, args...)
	if err != nil {
		return nil, err
	}
	return rowset.FromSQLRows(rows, sqlText)
}

// RawExec runs already-written SQL and returns the affected row count.
func (d *Database) RawExec(ctx context.Context, sqlText string, args ...any) (int64, error) {
	d.logger.Debug("executing raw statement", "sql", sqlText)
	res, err := d.db.ExecContext(ctx, sqlText, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func paramValues(params []compile.Param) []any {
	args := make([]any, len(params))
	for i, p := range params {
		args[i] = p.Value
	}
	return args
}

// IsReadOnly reports whether the statement's leading keyword starts a
// read-only query. Surfaces that accept user-written SQL use it to route
// statements between RawQuery and RawExec.
func IsReadOnly(sqlText string) bool {
	fields := strings.Fields(sqlText)
	if len(fields) == 0 {
		return false
	}
	switch strings.ToUpper(fields[0]) {
	case "SELECT", "WITH", "VALUES":
		return true
	}
	return false
}

var (
	_ Compiler = (*Database)(nil)
	_ Executor = (*Database)(nil)
)
