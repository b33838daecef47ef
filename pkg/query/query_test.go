package query

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/querykit/pkg/compile"
	"github.com/leapstack-labs/querykit/pkg/dialect"
	"github.com/leapstack-labs/querykit/pkg/expr"
	"github.com/leapstack-labs/querykit/pkg/rewrite"
	"github.com/leapstack-labs/querykit/pkg/sqltype"
)

type countingCompiler struct {
	inner *compile.Compiler
	calls int
}

func (c *countingCompiler) Compile(e expr.Expr) (*compile.Result, error) {
	c.calls++
	return c.inner.Compile(e)
}

func newMockDatabase(t *testing.T, dialectName string) (*Database, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	dl, ok := dialect.Get(dialectName)
	require.True(t, ok)
	return NewDatabase(db, dl), mock
}

func sqliteDialect(t *testing.T) *dialect.Dialect {
	t.Helper()
	dl, ok := dialect.Get("sqlite")
	require.True(t, ok)
	return dl
}

func employeeQuery() *expr.Select {
	employees := expr.NewTable("employees")
	return expr.SelectFrom(employees,
		employees.Col("id", sqltype.BigInt),
		employees.Col("name", sqltype.Varchar),
	)
}

func TestSQLCompilesOnceAndCaches(t *testing.T) {
	cc := &countingCompiler{inner: compile.New(sqliteDialect(t))}
	q := NewQuery(cc, nil, employeeQuery())

	first, err := q.SQL()
	require.NoError(t, err)
	assert.Equal(t, `SELECT "employees"."id", "employees"."name" FROM "employees"`, first)

	again, err := q.SQL()
	require.NoError(t, err)
	assert.Equal(t, first, again)
	assert.Equal(t, 1, cc.calls)
}

func TestMutatorsChain(t *testing.T) {
	employees := expr.NewTable("employees")
	q := NewQuery(compile.New(sqliteDialect(t)), nil, employeeQuery()).
		Where(expr.Eq(employees.Col("dept_id", sqltype.BigInt), expr.Arg(int64(1)))).
		OrderBy(expr.Asc(employees.Col("id", sqltype.BigInt))).
		Limit(10)

	sql, err := q.SQL()
	require.NoError(t, err)
	assert.Equal(t,
		`SELECT "employees"."id", "employees"."name" FROM "employees" WHERE "employees"."dept_id" = ? ORDER BY "employees"."id" ASC LIMIT ?, ?`,
		sql)
	require.NoError(t, q.Err())
}

func TestWhereCombinesWithAnd(t *testing.T) {
	employees := expr.NewTable("employees")
	q := NewQuery(compile.New(sqliteDialect(t)), nil, employeeQuery()).
		Where(expr.Eq(employees.Col("dept_id", sqltype.BigInt), expr.Arg(int64(1)))).
		Where(expr.Greater(employees.Col("salary", sqltype.Integer), expr.Arg(int64(50000))))

	sql, err := q.SQL()
	require.NoError(t, err)
	assert.Contains(t, sql, `WHERE ("employees"."dept_id" = ?) AND ("employees"."salary" > ?)`)
}

func TestMutationInvalidatesCompiledSQL(t *testing.T) {
	cc := &countingCompiler{inner: compile.New(sqliteDialect(t))}
	q := NewQuery(cc, nil, employeeQuery())

	first, err := q.SQL()
	require.NoError(t, err)

	second, err := q.Limit(5).SQL()
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
	assert.Equal(t, 2, cc.calls)
}

func TestCursorFreezesTree(t *testing.T) {
	db, mock := newMockDatabase(t, "sqlite")

	mock.ExpectQuery(`SELECT "employees"."id", "employees"."name" FROM "employees"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).
			AddRow(int64(1), "alice").
			AddRow(int64(2), "bob"))

	q := db.Query(employeeQuery())
	rs, err := q.Cursor(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, rs.Len())

	again, err := q.Cursor(context.Background())
	require.NoError(t, err)
	assert.Same(t, rs, again, "second access is served from the cache")

	q.Limit(10)
	var serr *StaleQueryError
	require.ErrorAs(t, q.Err(), &serr)
	assert.Equal(t, "limit", serr.Op)

	_, err = q.Cursor(context.Background())
	assert.ErrorAs(t, err, &serr)
	_, err = q.SQL()
	assert.ErrorAs(t, err, &serr)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStaleErrorFirstWins(t *testing.T) {
	db, mock := newMockDatabase(t, "sqlite")
	mock.ExpectQuery(`SELECT "employees"."id", "employees"."name" FROM "employees"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}))

	q := db.Query(employeeQuery())
	_, err := q.Cursor(context.Background())
	require.NoError(t, err)

	q.Limit(1).Offset(2).Distinct()

	var serr *StaleQueryError
	require.ErrorAs(t, q.Err(), &serr)
	assert.Equal(t, "limit", serr.Op)
}

func TestTotalRecordsWithoutPaging(t *testing.T) {
	db, mock := newMockDatabase(t, "sqlite")
	mock.ExpectQuery(`SELECT "employees"."id", "employees"."name" FROM "employees"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).
			AddRow(int64(1), "alice").
			AddRow(int64(2), "bob"))

	q := db.Query(employeeQuery())
	total, err := q.TotalRecords(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	// Counting materialized the cursor; no count query was issued.
	rs, err := q.Cursor(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, rs.Len())
	require.NoError(t, mock.ExpectationsWereMet())
}

func pagedEmployeeQuery() *expr.Select {
	employees := expr.NewTable("employees")
	s := expr.SelectFrom(employees, employees.Col("name", sqltype.Varchar))
	s.Where = expr.Eq(employees.Col("dept_id", sqltype.BigInt), expr.Arg(int64(1)))
	s.OrderBy = []*expr.OrderBy{expr.Asc(employees.Col("id", sqltype.BigInt))}
	limit := 10
	s.Limit = &limit
	return s
}

func TestTotalRecordsWithPaging(t *testing.T) {
	db, mock := newMockDatabase(t, "sqlite")

	// Pagination forces a second, unpaged COUNT query with the same filter.
	mock.ExpectQuery(`SELECT COUNT(*) FROM "employees" WHERE "employees"."dept_id" = ?`).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(2)))

	q := db.Query(pagedEmployeeQuery())
	total, err := q.TotalRecords(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	cached, err := q.TotalRecords(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), cached)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTotalRecordsCountWithoutRows(t *testing.T) {
	db, mock := newMockDatabase(t, "sqlite")
	mock.ExpectQuery(`SELECT COUNT(*) FROM "employees" WHERE "employees"."dept_id" = ?`).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}))

	q := db.Query(pagedEmployeeQuery())
	_, err := q.TotalRecords(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "count query returned no rows")
	assert.Contains(t, err.Error(), `SELECT COUNT(*) FROM "employees"`)
}

func unionQuery() *expr.Union {
	staff := expr.NewTable("staff")
	guests := expr.NewTable("guests")
	return expr.NewUnion(
		expr.SelectFrom(staff, expr.As(staff.Col("full_name", sqltype.Varchar), "name")),
		expr.SelectFrom(guests, guests.Col("name", sqltype.Varchar)),
	)
}

func TestOrderByOnUnionResolves(t *testing.T) {
	q := NewQuery(compile.New(sqliteDialect(t)), nil, unionQuery()).
		OrderBy(expr.Asc(&expr.Column{Name: "name", Type: sqltype.Varchar}))

	sql, err := q.SQL()
	require.NoError(t, err)
	assert.Equal(t,
		`SELECT "staff"."full_name" AS "name" FROM "staff" UNION SELECT "guests"."name" FROM "guests" ORDER BY "name" ASC`,
		sql)
}

func TestOrderByOnUnionUnresolvable(t *testing.T) {
	q := NewQuery(compile.New(sqliteDialect(t)), nil, unionQuery()).
		OrderBy(expr.Asc(&expr.Column{Name: "missing", Type: sqltype.Varchar}))

	_, err := q.SQL()
	var rerr *rewrite.ResolutionError
	require.ErrorAs(t, err, &rerr)
	assert.ErrorAs(t, q.Err(), &rerr, "resolution failure sticks")
}

func TestWhereOnUnionIsError(t *testing.T) {
	q := NewQuery(compile.New(sqliteDialect(t)), nil, unionQuery()).
		Where(expr.Eq(&expr.Column{Name: "name", Type: sqltype.Varchar}, expr.Arg("x")))

	_, err := q.SQL()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot filter")
}
