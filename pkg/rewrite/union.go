package rewrite

import (
	"fmt"

	"github.com/leapstack-labs/querykit/pkg/expr"
)

// ResolutionError reports an ordering key that could not be matched to any
// declared output column of a union. Silently dropping or approximating the
// key would reorder results behind the caller's back, so resolution fails
// instead.
type ResolutionError struct {
	Target expr.ScalarExpr
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("cannot order union by %s: no declared output column matches", describe(e.Target))
}

func describe(e expr.ScalarExpr) string {
	switch n := e.(type) {
	case *expr.Column:
		if n.Table != nil && n.Table.Name != "" {
			return fmt.Sprintf("column %q of table %q", n.Name, n.Table.Name)
		}
		return fmt.Sprintf("column %q", n.Name)
	default:
		return fmt.Sprintf("expression %T", e)
	}
}

// ResolveUnionOrderBys maps ordering keys onto the declared output columns
// of a union. Databases refuse ordering a union by inner-table columns, so
// each key is rewritten to reference an output column by its declared name.
// A key matches a declared column when the declared name is set and either
// the declared expression structurally equals the key or the key is a bare
// column carrying the declared name. Keys that match nothing produce a
// ResolutionError.
func ResolveUnionOrderBys(u *expr.Union, orders []*expr.OrderBy) ([]*expr.OrderBy, error) {
	declared := declaredColumns(u)
	out := make([]*expr.OrderBy, len(orders))
	for i, o := range orders {
		resolved := resolveOrderBy(declared, o)
		if resolved == nil {
			return nil, &ResolutionError{Target: o.Expr}
		}
		out[i] = resolved
	}
	return out, nil
}

// declaredColumns returns the output columns a union exposes, which are the
// declared columns of its leftmost select.
func declaredColumns(q expr.QueryExpr) []*expr.ColumnDeclaring {
	switch n := q.(type) {
	case *expr.Select:
		return n.Columns
	case *expr.Union:
		return declaredColumns(n.Left)
	default:
		panic(fmt.Sprintf("rewrite: unknown query type %T", q))
	}
}

func resolveOrderBy(declared []*expr.ColumnDeclaring, o *expr.OrderBy) *expr.OrderBy {
	for _, d := range declared {
		if d.DeclaredName == "" {
			continue
		}
		if expr.Equal(d.Expr, o.Expr) || matchesDeclaredName(d.DeclaredName, o.Expr) {
			return &expr.OrderBy{
				Expr:       &expr.Column{Name: d.DeclaredName, Type: d.Expr.TypeCode()},
				Descending: o.Descending,
			}
		}
	}
	return nil
}

func matchesDeclaredName(declared string, e expr.ScalarExpr) bool {
	c, ok := e.(*expr.Column)
	return ok && c.Table == nil && c.Name == declared
}
