package query

import (
	"context"

	"github.com/leapstack-labs/querykit/pkg/compile"
	"github.com/leapstack-labs/querykit/pkg/expr"
	"github.com/leapstack-labs/querykit/pkg/rowset"
)

// Compiler turns an expression tree into executable SQL. *compile.Compiler
// is the standard implementation; tests substitute their own.
type Compiler interface {
	Compile(e expr.Expr) (*compile.Result, error)
}

// Executor runs compiled SQL against a live connection. The query layer
// never touches database/sql directly, so execution can be redirected or
// instrumented by swapping this out.
type Executor interface {
	// ExecuteQuery runs a row-returning statement. The caller owns the
	// returned source and closes it after draining.
	ExecuteQuery(ctx context.Context, sql string, params []compile.Param) (rowset.Source, error)
	// ExecuteUpdate runs a mutation statement and returns the affected
	// row count.
	ExecuteUpdate(ctx context.Context, sql string, params []compile.Param) (int64, error)
	// ExecuteInsertReturningKey runs an insert and returns the generated
	// key, in whatever way the engine exposes it.
	ExecuteInsertReturningKey(ctx context.Context, sql string, params []compile.Param) (int64, error)
}
