package rewrite

import "github.com/leapstack-labs/querykit/pkg/expr"

// CountAlias is the derived-table alias used when a query must be wrapped to
// be counted.
const CountAlias = "tmp_count"

// DeriveCountQuery builds the SELECT COUNT(*) query for q. A simple select
// (no grouping, no distinct, only bare column references in its output) has
// its column list swapped for COUNT(*) in place; anything else is wrapped as
// a derived table aliased tmp_count and counted from the outside, since
// collapsing its column list would change the row multiplicity being
// counted.
//
// keepPaging controls whether q's own offset and limit survive into the
// counted query. Row counting passes false so the count covers the whole
// result; true preserves the paged view.
func DeriveCountQuery(q expr.QueryExpr, keepPaging bool) *expr.Select {
	trimmed := ElideOrderBy(q)
	countColumns := []*expr.ColumnDeclaring{{Expr: expr.Count()}}

	if s, ok := trimmed.(*expr.Select); ok && isSimpleSelect(s) {
		cp := *s
		cp.Columns = countColumns
		if !keepPaging {
			cp.Offset, cp.Limit = nil, nil
		}
		return &cp
	}

	inner := trimmed
	if !keepPaging {
		inner = expr.WithPaging(inner, nil, nil)
	}
	inner = expr.WithAlias(inner, CountAlias)
	return &expr.Select{Columns: countColumns, From: inner}
}

// isSimpleSelect reports whether swapping the column list for COUNT(*)
// preserves the row count: nothing groups or deduplicates rows, and every
// output is a bare column whose removal cannot change multiplicity. Computed
// outputs wrap instead; an aggregate or a scalar subquery in the list would
// otherwise be counted with the wrong shape.
func isSimpleSelect(s *expr.Select) bool {
	if s.Distinct || len(s.GroupBy) > 0 {
		return false
	}
	for _, d := range s.Columns {
		if _, ok := d.Expr.(*expr.Column); !ok {
			return false
		}
	}
	return true
}
