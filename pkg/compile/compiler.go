// Package compile renders expression trees to executable SQL text plus an
// ordered parameter list. Rendering is dialect-driven: identifier quoting,
// placeholder markers, pagination syntax, and CAST type names all come from
// the dialect. Argument values never appear in the SQL text.
package compile

import (
	"fmt"

	"github.com/leapstack-labs/querykit/pkg/dialect"
	"github.com/leapstack-labs/querykit/pkg/expr"
	"github.com/leapstack-labs/querykit/pkg/sqltype"
)

// Param is one bound parameter of a compiled statement, in placeholder
// order.
type Param struct {
	Value any
	Type  sqltype.Code
}

// Result is a compiled statement: SQL text with placeholders and the
// parameters to bind, in order.
type Result struct {
	SQL    string
	Params []Param
}

// Args returns the parameter values alone, in order, for passing to
// database/sql.
func (r *Result) Args() []any {
	if len(r.Params) == 0 {
		return nil
	}
	args := make([]any, len(r.Params))
	for i, p := range r.Params {
		args[i] = p.Value
	}
	return args
}

// UnsupportedExprError reports a tree shape the compiler cannot render,
// such as a derived table without an alias or a union branch carrying its
// own ordering.
type UnsupportedExprError struct {
	Node   expr.Expr
	Reason string
}

func (e *UnsupportedExprError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("compile: cannot render %T: %s", e.Node, e.Reason)
	}
	return fmt.Sprintf("compile: cannot render %T", e.Node)
}

// Compiler renders trees for one dialect. It is stateless and safe for
// concurrent use.
type Compiler struct {
	dialect *dialect.Dialect
}

// New returns a compiler for the given dialect.
func New(d *dialect.Dialect) *Compiler {
	return &Compiler{dialect: d}
}

// Dialect returns the compiler's dialect.
func (c *Compiler) Dialect() *dialect.Dialect {
	return c.dialect
}

// Compile renders any query or statement tree.
func (c *Compiler) Compile(e expr.Expr) (*Result, error) {
	p := &printer{dialect: c.dialect}
	if err := p.emit(e); err != nil {
		return nil, err
	}
	return &Result{SQL: p.buf.String(), Params: p.params}, nil
}
