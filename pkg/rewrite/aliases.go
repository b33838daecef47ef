// Package rewrite provides the tree rewriting passes applied to queries
// before compilation: alias stripping for mutation statements, order-by
// elision and COUNT(*) derivation for row counting, and ordering resolution
// for unions.
package rewrite

import "github.com/leapstack-labs/querykit/pkg/expr"

// StripAliases returns a copy of e with the alias removed from every table
// reference, including tables nested inside column references. Mutation
// statements must address physical tables, so this runs on every tree before
// INSERT, UPDATE, and DELETE compilation. Applying it twice returns the
// first result unchanged.
func StripAliases(e expr.Expr) expr.Expr {
	r := &expr.Rewriter{
		RewriteTable: func(t *expr.Table) *expr.Table {
			if t.Alias == "" {
				return t
			}
			cp := *t
			cp.Alias = ""
			return &cp
		},
	}
	return r.Rewrite(e)
}
