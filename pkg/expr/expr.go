// Package expr defines the SQL expression tree: an immutable, typed model of
// queries and mutation statements that programs build directly instead of
// writing SQL text. Trees are rebuilt, never mutated, by the Rewriter, so
// subtrees can be shared freely between versions of a query.
package expr

import "github.com/leapstack-labs/querykit/pkg/sqltype"

// Expr is implemented by every node in the tree.
//
// The node set is closed: the rewriter and the compiler dispatch on concrete
// types and treat an unknown node as a programming error.
type Expr interface {
	exprNode()
}

// ScalarExpr is a node that evaluates to a single SQL value and carries the
// type code of that value.
type ScalarExpr interface {
	Expr
	scalarNode()
	TypeCode() sqltype.Code
}

// SourceExpr is a node that can appear in a FROM clause: a table reference,
// a join, or a query used as a derived table.
type SourceExpr interface {
	Expr
	sourceNode()
}

// QueryExpr is a complete query: a Select or a Union. Queries are also
// sources, so they nest as derived tables.
type QueryExpr interface {
	SourceExpr
	queryNode()

	// OrderByList returns the query's own ordering, which may be nil.
	OrderByList() []*OrderBy
	// Paging returns the query's offset and limit; nil means unset.
	Paging() (offset, limit *int)
	// TableAlias returns the alias the query carries when used as a
	// derived table, or "".
	TableAlias() string
}

// StmtExpr is a mutation statement: Insert, InsertFromQuery, Update, Delete.
type StmtExpr interface {
	Expr
	stmtNode()
}
