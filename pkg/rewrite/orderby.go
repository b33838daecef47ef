package rewrite

import "github.com/leapstack-labs/querykit/pkg/expr"

// ElideOrderBy drops q's top-level ordering. Ordering does not affect a row
// count, but when any ordering key binds an argument the whole list is kept:
// dropping it would desynchronize the compiled parameter list from the
// placeholders the caller expects. Nested queries keep their ordering either
// way, since paging inside a derived table depends on it.
func ElideOrderBy(q expr.QueryExpr) expr.QueryExpr {
	orders := q.OrderByList()
	if len(orders) == 0 {
		return q
	}
	for _, o := range orders {
		if containsArgument(o.Expr) {
			return q
		}
	}
	return expr.WithOrderBy(q, nil)
}

func containsArgument(e expr.Expr) bool {
	var found bool
	expr.Walk(e, func(n expr.Expr) bool {
		if found {
			return false
		}
		if _, ok := n.(*expr.Argument); ok {
			found = true
			return false
		}
		return true
	})
	return found
}
