// Package query glues expression trees to a database: it compiles a tree
// once, executes it once, and serves every later access from caches. A
// Query is single-threaded; nothing here locks.
package query

import (
	"context"
	"fmt"

	"github.com/leapstack-labs/querykit/pkg/compile"
	"github.com/leapstack-labs/querykit/pkg/expr"
	"github.com/leapstack-labs/querykit/pkg/rewrite"
	"github.com/leapstack-labs/querykit/pkg/rowset"
)

// Query pairs a query expression with the collaborators that compile and
// execute it. Chaining mutators derive new trees until the cursor
// materializes; from then on the tree is frozen and further mutation is an
// error. The first misuse error sticks and is returned by every later
// terminal call.
type Query struct {
	compiler Compiler
	executor Executor
	tree     expr.QueryExpr

	compiled *compile.Result
	cursor   *rowset.RowSet
	total    *int64
	stale    error
}

// NewQuery builds a Query over tree. Database implements both collaborator
// interfaces, so callers usually go through Database.Query instead.
func NewQuery(c Compiler, x Executor, tree expr.QueryExpr) *Query {
	return &Query{compiler: c, executor: x, tree: tree}
}

// Expression returns the current tree.
func (q *Query) Expression() expr.QueryExpr { return q.tree }

// Err returns the first recorded misuse error, or nil.
func (q *Query) Err() error { return q.stale }

// mutate applies f to the tree unless the query is frozen or already
// carries an error. Tree changes invalidate the compiled and total caches.
func (q *Query) mutate(op string, f func(expr.QueryExpr) (expr.QueryExpr, error)) *Query {
	if q.stale != nil {
		return q
	}
	if q.cursor != nil {
		q.stale = &StaleQueryError{Op: op}
		return q
	}
	tree, err := f(q.tree)
	if err != nil {
		q.stale = err
		return q
	}
	q.tree = tree
	q.compiled = nil
	q.total = nil
	return q
}

// Limit caps the number of returned rows.
func (q *Query) Limit(n int) *Query {
	return q.mutate("limit", func(t expr.QueryExpr) (expr.QueryExpr, error) {
		offset, _ := t.Paging()
		return expr.WithPaging(t, offset, &n), nil
	})
}

// Offset skips the first n rows.
func (q *Query) Offset(n int) *Query {
	return q.mutate("offset", func(t expr.QueryExpr) (expr.QueryExpr, error) {
		_, limit := t.Paging()
		return expr.WithPaging(t, &n, limit), nil
	})
}

// OrderBy replaces the query's ordering. On a union the keys are first
// resolved against the leftmost select's declared columns; an unmatched key
// is an error.
func (q *Query) OrderBy(keys ...*expr.OrderBy) *Query {
	return q.mutate("order by", func(t expr.QueryExpr) (expr.QueryExpr, error) {
		if u, ok := t.(*expr.Union); ok {
			resolved, err := rewrite.ResolveUnionOrderBys(u, keys)
			if err != nil {
				return nil, err
			}
			return expr.WithOrderBy(u, resolved), nil
		}
		return expr.WithOrderBy(t, keys), nil
	})
}

// Where AND-combines cond with the query's filter. Filtering a union is not
// supported; wrap it as a derived table instead.
func (q *Query) Where(cond expr.ScalarExpr) *Query {
	return q.mutate("where", func(t expr.QueryExpr) (expr.QueryExpr, error) {
		sel, ok := t.(*expr.Select)
		if !ok {
			return nil, fmt.Errorf("where: cannot filter a %T directly", t)
		}
		cp := *sel
		if cp.Where != nil {
			cp.Where = expr.And(cp.Where, cond)
		} else {
			cp.Where = cond
		}
		return &cp, nil
	})
}

// Distinct switches the query to DISTINCT selection.
func (q *Query) Distinct() *Query {
	return q.mutate("distinct", func(t expr.QueryExpr) (expr.QueryExpr, error) {
		sel, ok := t.(*expr.Select)
		if !ok {
			return nil, fmt.Errorf("distinct: cannot apply to a %T directly", t)
		}
		cp := *sel
		cp.Distinct = true
		return &cp, nil
	})
}

// SQL compiles the tree once and returns the statement text without
// executing anything.
func (q *Query) SQL() (string, error) {
	res, err := q.compile()
	if err != nil {
		return "", err
	}
	return res.SQL, nil
}

func (q *Query) compile() (*compile.Result, error) {
	if q.stale != nil {
		return nil, q.stale
	}
	if q.compiled == nil {
		res, err := q.compiler.Compile(q.tree)
		if err != nil {
			return nil, err
		}
		q.compiled = res
	}
	return q.compiled, nil
}

// Cursor compiles and executes the query on first call and detaches the
// result into memory, freezing the tree. Later calls return the same row
// set without touching the database.
func (q *Query) Cursor(ctx context.Context) (*rowset.RowSet, error) {
	if q.stale != nil {
		return nil, q.stale
	}
	if q.cursor != nil {
		return q.cursor, nil
	}
	res, err := q.compile()
	if err != nil {
		return nil, err
	}
	src, err := q.executor.ExecuteQuery(ctx, res.SQL, res.Params)
	if err != nil {
		return nil, err
	}
	defer src.Close()
	rs, err := rowset.Drain(src, res.SQL)
	if err != nil {
		return nil, err
	}
	q.cursor = rs
	return rs, nil
}

// TotalRecords returns the number of rows the query matches with its
// pagination removed. Without pagination that is the materialized cursor's
// length; with pagination a derived COUNT(*) query runs instead, so the
// cursor still holds at most one page.
func (q *Query) TotalRecords(ctx context.Context) (int64, error) {
	if q.stale != nil {
		return 0, q.stale
	}
	if q.total != nil {
		return *q.total, nil
	}
	if offset, limit := q.tree.Paging(); offset == nil && limit == nil {
		rs, err := q.Cursor(ctx)
		if err != nil {
			return 0, err
		}
		n := int64(rs.Len())
		q.total = &n
		return n, nil
	}
	res, err := q.compiler.Compile(rewrite.DeriveCountQuery(q.tree, false))
	if err != nil {
		return 0, err
	}
	src, err := q.executor.ExecuteQuery(ctx, res.SQL, res.Params)
	if err != nil {
		return 0, err
	}
	defer src.Close()
	rs, err := rowset.Drain(src, res.SQL)
	if err != nil {
		return 0, err
	}
	if !rs.First() {
		// A COUNT(*) query returns exactly one row; an empty result means
		// something upstream is broken.
		return 0, fmt.Errorf("count query returned no rows: %s", res.SQL)
	}
	n, err := rs.Int64(1)
	if err != nil {
		return 0, err
	}
	q.total = &n
	return n, nil
}
