package compile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/querykit/pkg/dialect"
	"github.com/leapstack-labs/querykit/pkg/expr"
	"github.com/leapstack-labs/querykit/pkg/sqltype"
)

func mustDialect(t *testing.T, name string) *dialect.Dialect {
	t.Helper()
	d, ok := dialect.Get(name)
	require.True(t, ok)
	return d
}

func TestCompileSelect(t *testing.T) {
	users := expr.NewTable("users").As("u")
	id := users.Col("id", sqltype.BigInt)
	name := users.Col("name", sqltype.Varchar)

	tests := []struct {
		name     string
		dialect  string
		build    func() expr.Expr
		wantSQL  string
		wantArgs []any
	}{
		{
			name:    "select with where",
			dialect: "sqlite",
			build: func() expr.Expr {
				s := expr.SelectFrom(users, id, name)
				s.Where = expr.Eq(name, expr.Arg("alice"))
				return s
			},
			wantSQL:  `SELECT "u"."id", "u"."name" FROM "users" AS "u" WHERE "u"."name" = ?`,
			wantArgs: []any{"alice"},
		},
		{
			name:    "dollar placeholders",
			dialect: "postgres",
			build: func() expr.Expr {
				s := expr.SelectFrom(users, id)
				s.Where = expr.And(
					expr.Eq(name, expr.Arg("alice")),
					expr.Greater(id, expr.Arg(int64(10))),
				)
				return s
			},
			wantSQL:  `SELECT "u"."id" FROM "users" AS "u" WHERE ("u"."name" = $1) AND ("u"."id" > $2)`,
			wantArgs: []any{"alice", int64(10)},
		},
		{
			name:    "select star",
			dialect: "sqlite",
			build: func() expr.Expr {
				return expr.SelectFrom(expr.NewTable("events"))
			},
			wantSQL: `SELECT * FROM "events"`,
		},
		{
			name:    "distinct with labeled expression",
			dialect: "sqlite",
			build: func() expr.Expr {
				s := expr.SelectFrom(users, expr.As(expr.Add(id, expr.Arg(int64(1))), "next_id"))
				s.Distinct = true
				return s
			},
			wantSQL:  `SELECT DISTINCT "u"."id" + ? AS "next_id" FROM "users" AS "u"`,
			wantArgs: []any{int64(1)},
		},
		{
			name:    "join with condition",
			dialect: "sqlite",
			build: func() expr.Expr {
				orders := expr.NewTable("orders").As("o")
				j := expr.JoinOn(expr.LeftJoin, users, orders,
					expr.Eq(id, orders.Col("user_id", sqltype.BigInt)))
				return expr.SelectFrom(j, name, orders.Col("total", sqltype.Decimal))
			},
			wantSQL: `SELECT "u"."name", "o"."total" FROM "users" AS "u" LEFT JOIN "orders" AS "o" ON "u"."id" = "o"."user_id"`,
		},
		{
			name:    "group by with having",
			dialect: "sqlite",
			build: func() expr.Expr {
				city := users.Col("city", sqltype.Varchar)
				s := expr.SelectFrom(users, city, expr.As(expr.Count(), "n"))
				s.GroupBy = []expr.ScalarExpr{city}
				s.Having = expr.Greater(expr.Count(), expr.Arg(int64(5)))
				return s
			},
			wantSQL:  `SELECT "u"."city", COUNT(*) AS "n" FROM "users" AS "u" GROUP BY "u"."city" HAVING COUNT(*) > ?`,
			wantArgs: []any{int64(5)},
		},
		{
			name:    "between and in render parenthesized",
			dialect: "sqlite",
			build: func() expr.Expr {
				age := users.Col("age", sqltype.Integer)
				city := users.Col("city", sqltype.Varchar)
				s := expr.SelectFrom(users, id)
				s.Where = expr.And(
					expr.NewBetween(age, expr.Arg(int64(18)), expr.Arg(int64(65))),
					expr.In(city, expr.Arg("NYC"), expr.Arg("LA")),
				)
				return s
			},
			wantSQL:  `SELECT "u"."id" FROM "users" AS "u" WHERE ("u"."age" BETWEEN ? AND ?) AND ("u"."city" IN (?, ?))`,
			wantArgs: []any{int64(18), int64(65), "NYC", "LA"},
		},
		{
			name:    "null tests",
			dialect: "sqlite",
			build: func() expr.Expr {
				deleted := users.Col("deleted_at", sqltype.Timestamp)
				s := expr.SelectFrom(users, id)
				s.Where = expr.And(expr.IsNull(deleted), expr.Not(expr.Eq(id, expr.Arg(int64(0)))))
				return s
			},
			wantSQL:  `SELECT "u"."id" FROM "users" AS "u" WHERE ("u"."deleted_at" IS NULL) AND (NOT ("u"."id" = ?))`,
			wantArgs: []any{int64(0)},
		},
		{
			name:    "in subquery",
			dialect: "sqlite",
			build: func() expr.Expr {
				banned := expr.NewTable("banned")
				sub := expr.SelectFrom(banned, banned.Col("user_id", sqltype.BigInt))
				s := expr.SelectFrom(users, name)
				s.Where = expr.NotInQuery(id, sub)
				return s
			},
			wantSQL: `SELECT "u"."name" FROM "users" AS "u" WHERE "u"."id" NOT IN (SELECT "banned"."user_id" FROM "banned")`,
		},
		{
			name:    "exists subquery",
			dialect: "sqlite",
			build: func() expr.Expr {
				orders := expr.NewTable("orders")
				s := expr.SelectFrom(users, id)
				s.Where = expr.NewExists(expr.SelectFrom(orders))
				return s
			},
			wantSQL: `SELECT "u"."id" FROM "users" AS "u" WHERE EXISTS (SELECT * FROM "orders")`,
		},
		{
			name:    "cast uses dialect type name",
			dialect: "postgres",
			build: func() expr.Expr {
				blob := users.Col("payload", sqltype.Varchar)
				return expr.SelectFrom(users, expr.As(expr.Cast(blob, sqltype.Blob), "raw"))
			},
			wantSQL: `SELECT CAST("u"."payload" AS BYTEA) AS "raw" FROM "users" AS "u"`,
		},
		{
			name:    "derived table",
			dialect: "sqlite",
			build: func() expr.Expr {
				inner := expr.SelectFrom(users, id)
				inner.Alias = "t"
				return expr.SelectFrom(inner, &expr.Column{
					Table: &expr.Table{Name: "t"}, Name: "id", Type: sqltype.BigInt,
				})
			},
			wantSQL: `SELECT "t"."id" FROM (SELECT "u"."id" FROM "users" AS "u") AS "t"`,
		},
		{
			name:    "quote escaping",
			dialect: "sqlite",
			build: func() expr.Expr {
				weird := expr.NewTable(`we"ird`)
				return expr.SelectFrom(weird, weird.Col("id", sqltype.BigInt))
			},
			wantSQL: `SELECT "we""ird"."id" FROM "we""ird"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(mustDialect(t, tt.dialect))
			res, err := c.Compile(tt.build())
			require.NoError(t, err)
			assert.Equal(t, tt.wantSQL, res.SQL)
			assert.Equal(t, tt.wantArgs, res.Args())
		})
	}
}

func TestCompilePagination(t *testing.T) {
	users := expr.NewTable("users")
	id := users.Col("id", sqltype.BigInt)
	offset, limit := 20, 10

	t.Run("sqlite binds both with defaults", func(t *testing.T) {
		c := New(mustDialect(t, "sqlite"))

		s := expr.SelectFrom(users, id)
		s.Offset, s.Limit = &offset, &limit
		res, err := c.Compile(s)
		require.NoError(t, err)
		assert.Equal(t, `SELECT "users"."id" FROM "users" LIMIT ?, ?`, res.SQL)
		assert.Equal(t, []any{20, 10}, res.Args())

		onlyOffset := expr.SelectFrom(users, id)
		onlyOffset.Offset = &offset
		res, err = c.Compile(onlyOffset)
		require.NoError(t, err)
		assert.Equal(t, `SELECT "users"."id" FROM "users" LIMIT ?, ?`, res.SQL)
		assert.Equal(t, []any{20, -1}, res.Args(), "missing limit binds -1")
	})

	t.Run("postgres emits parts independently", func(t *testing.T) {
		c := New(mustDialect(t, "postgres"))

		s := expr.SelectFrom(users, id)
		s.Offset, s.Limit = &offset, &limit
		res, err := c.Compile(s)
		require.NoError(t, err)
		assert.Equal(t, `SELECT "users"."id" FROM "users" LIMIT $1 OFFSET $2`, res.SQL)
		assert.Equal(t, []any{10, 20}, res.Args())

		onlyOffset := expr.SelectFrom(users, id)
		onlyOffset.Offset = &offset
		res, err = c.Compile(onlyOffset)
		require.NoError(t, err)
		assert.Equal(t, `SELECT "users"."id" FROM "users" OFFSET $1`, res.SQL)
		assert.Equal(t, []any{20}, res.Args())
	})

	t.Run("pagination parameters follow where parameters", func(t *testing.T) {
		c := New(mustDialect(t, "postgres"))

		s := expr.SelectFrom(users, id)
		s.Where = expr.Greater(id, expr.Arg(int64(100)))
		s.Limit = &limit
		res, err := c.Compile(s)
		require.NoError(t, err)
		assert.Equal(t, `SELECT "users"."id" FROM "users" WHERE "users"."id" > $1 LIMIT $2`, res.SQL)
		assert.Equal(t, []any{int64(100), 10}, res.Args())
		assert.Equal(t, sqltype.Integer, res.Params[1].Type)
	})
}

func TestCompileUnion(t *testing.T) {
	staff := expr.NewTable("staff")
	guests := expr.NewTable("guests")
	left := expr.SelectFrom(staff, expr.As(staff.Col("full_name", sqltype.Varchar), "name"))
	right := expr.SelectFrom(guests, guests.Col("name", sqltype.Varchar))

	t.Run("union with resolved ordering", func(t *testing.T) {
		u := expr.NewUnion(left, right)
		u.OrderBy = []*expr.OrderBy{expr.Desc(&expr.Column{Name: "name", Type: sqltype.Varchar})}

		res, err := New(mustDialect(t, "sqlite")).Compile(u)
		require.NoError(t, err)
		assert.Equal(t,
			`SELECT "staff"."full_name" AS "name" FROM "staff" UNION SELECT "guests"."name" FROM "guests" ORDER BY "name" DESC`,
			res.SQL)
	})

	t.Run("union all", func(t *testing.T) {
		u := expr.UnionAll(left, right)

		res, err := New(mustDialect(t, "sqlite")).Compile(u)
		require.NoError(t, err)
		assert.Contains(t, res.SQL, " UNION ALL ")
	})

	t.Run("branch with ordering is rejected", func(t *testing.T) {
		ordered := expr.SelectFrom(staff, staff.Col("full_name", sqltype.Varchar))
		ordered.OrderBy = []*expr.OrderBy{expr.Asc(staff.Col("full_name", sqltype.Varchar))}
		u := expr.NewUnion(ordered, right)

		_, err := New(mustDialect(t, "sqlite")).Compile(u)
		var uerr *UnsupportedExprError
		require.ErrorAs(t, err, &uerr)
		assert.Contains(t, err.Error(), "ordering")
	})

	t.Run("branch with paging is rejected", func(t *testing.T) {
		limit := 3
		paged := expr.SelectFrom(staff, staff.Col("full_name", sqltype.Varchar))
		paged.Limit = &limit
		u := expr.NewUnion(paged, right)

		_, err := New(mustDialect(t, "sqlite")).Compile(u)
		var uerr *UnsupportedExprError
		require.ErrorAs(t, err, &uerr)
	})
}

func TestCompileDerivedTableRequiresAlias(t *testing.T) {
	users := expr.NewTable("users")
	inner := expr.SelectFrom(users, users.Col("id", sqltype.BigInt))

	_, err := New(mustDialect(t, "sqlite")).Compile(expr.SelectFrom(inner))

	var uerr *UnsupportedExprError
	require.ErrorAs(t, err, &uerr)
	assert.Contains(t, err.Error(), "alias")
}

func TestCompileStatements(t *testing.T) {
	users := expr.NewTable("users")
	id := users.Col("id", sqltype.BigInt)
	name := users.Col("name", sqltype.Varchar)
	age := users.Col("age", sqltype.Integer)

	tests := []struct {
		name     string
		dialect  string
		build    func() expr.Expr
		wantSQL  string
		wantArgs []any
	}{
		{
			name:    "insert",
			dialect: "sqlite",
			build: func() expr.Expr {
				return expr.NewInsert(users,
					expr.AssignValue(name, "bob"),
					expr.AssignValue(age, 42),
				)
			},
			wantSQL:  `INSERT INTO "users" ("name", "age") VALUES (?, ?)`,
			wantArgs: []any{"bob", 42},
		},
		{
			name:    "insert from query",
			dialect: "sqlite",
			build: func() expr.Expr {
				archive := expr.NewTable("archive")
				q := expr.SelectFrom(users, id)
				return expr.NewInsertFromQuery(archive, []*expr.Column{archive.Col("id", sqltype.BigInt)}, q)
			},
			wantSQL: `INSERT INTO "archive" ("id") SELECT "users"."id" FROM "users"`,
		},
		{
			name:    "update",
			dialect: "postgres",
			build: func() expr.Expr {
				return expr.NewUpdate(users, expr.Eq(id, expr.Arg(int64(7))),
					expr.AssignValue(name, "carol"))
			},
			wantSQL:  `UPDATE "users" SET "name" = $1 WHERE "users"."id" = $2`,
			wantArgs: []any{"carol", int64(7)},
		},
		{
			name:    "delete",
			dialect: "sqlite",
			build: func() expr.Expr {
				return expr.NewDelete(users, expr.Less(age, expr.Arg(int64(18))))
			},
			wantSQL:  `DELETE FROM "users" WHERE "users"."age" < ?`,
			wantArgs: []any{int64(18)},
		},
		{
			name:    "statement target ignores alias",
			dialect: "sqlite",
			build: func() expr.Expr {
				aliased := users.As("u")
				return expr.NewDelete(aliased, nil)
			},
			wantSQL: `DELETE FROM "users"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := New(mustDialect(t, tt.dialect)).Compile(tt.build())
			require.NoError(t, err)
			assert.Equal(t, tt.wantSQL, res.SQL)
			assert.Equal(t, tt.wantArgs, res.Args())
		})
	}
}

func TestCompileEmptyStatementsRejected(t *testing.T) {
	users := expr.NewTable("users")
	c := New(mustDialect(t, "sqlite"))

	_, err := c.Compile(expr.NewInsert(users))
	var uerr *UnsupportedExprError
	require.ErrorAs(t, err, &uerr)

	_, err = c.Compile(expr.NewUpdate(users, nil))
	require.ErrorAs(t, err, &uerr)
}
