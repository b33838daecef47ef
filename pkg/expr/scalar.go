package expr

import "github.com/leapstack-labs/querykit/pkg/sqltype"

// UnaryOp enumerates unary operators.
type UnaryOp int

const (
	UnaryMinus UnaryOp = iota
	UnaryPlus
	UnaryNot
	UnaryIsNull
	UnaryIsNotNull
)

// String returns the SQL spelling of the operator.
func (op UnaryOp) String() string {
	switch op {
	case UnaryMinus:
		return "-"
	case UnaryPlus:
		return "+"
	case UnaryNot:
		return "NOT"
	case UnaryIsNull:
		return "IS NULL"
	case UnaryIsNotNull:
		return "IS NOT NULL"
	default:
		return "?unary?"
	}
}

// Postfix reports whether the operator follows its operand.
func (op UnaryOp) Postfix() bool {
	return op == UnaryIsNull || op == UnaryIsNotNull
}

// BinaryOp enumerates binary operators.
type BinaryOp int

const (
	OpAdd BinaryOp = iota
	OpSub
	OpMul
	OpDiv
	OpRem
	OpEq
	OpNotEq
	OpLess
	OpLessEq
	OpGreater
	OpGreaterEq
	OpLike
	OpNotLike
	OpAnd
	OpOr
	OpXor
)

// String returns the SQL spelling of the operator.
func (op BinaryOp) String() string {
	switch op {
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	case OpRem:
		return "%"
	case OpEq:
		return "="
	case OpNotEq:
		return "<>"
	case OpLess:
		return "<"
	case OpLessEq:
		return "<="
	case OpGreater:
		return ">"
	case OpGreaterEq:
		return ">="
	case OpLike:
		return "LIKE"
	case OpNotLike:
		return "NOT LIKE"
	case OpAnd:
		return "AND"
	case OpOr:
		return "OR"
	case OpXor:
		return "XOR"
	default:
		return "?binary?"
	}
}

// AggregateFn enumerates aggregate functions.
type AggregateFn int

const (
	FnCount AggregateFn = iota
	FnSum
	FnAvg
	FnMin
	FnMax
)

// String returns the SQL spelling of the function.
func (fn AggregateFn) String() string {
	switch fn {
	case FnCount:
		return "COUNT"
	case FnSum:
		return "SUM"
	case FnAvg:
		return "AVG"
	case FnMin:
		return "MIN"
	case FnMax:
		return "MAX"
	default:
		return "?aggregate?"
	}
}

// Column references a column, optionally qualified by a table reference.
type Column struct {
	// Table is the owning table reference; nil for a bare column name,
	// as produced when resolving union ordering against declared labels.
	Table *Table
	Name  string
	Type  sqltype.Code
}

func (*Column) exprNode()   {}
func (*Column) scalarNode() {}

// TypeCode returns the column's declared type.
func (c *Column) TypeCode() sqltype.Code { return c.Type }

// Argument is a bound parameter. The compiler emits a placeholder for it and
// appends Value to the parameter list; the value never appears in SQL text.
type Argument struct {
	Value any
	Type  sqltype.Code
}

func (*Argument) exprNode()   {}
func (*Argument) scalarNode() {}

// TypeCode returns the declared type of the bound value.
func (a *Argument) TypeCode() sqltype.Code { return a.Type }

// Unary applies a unary operator to an operand.
type Unary struct {
	Op      UnaryOp
	Operand ScalarExpr
	Type    sqltype.Code
}

func (*Unary) exprNode()   {}
func (*Unary) scalarNode() {}

// TypeCode returns the result type of the operation.
func (u *Unary) TypeCode() sqltype.Code { return u.Type }

// Binary applies a binary operator to two operands.
type Binary struct {
	Op    BinaryOp
	Left  ScalarExpr
	Right ScalarExpr
	Type  sqltype.Code
}

func (*Binary) exprNode()   {}
func (*Binary) scalarNode() {}

// TypeCode returns the result type of the operation.
func (b *Binary) TypeCode() sqltype.Code { return b.Type }

// Between tests whether Operand falls inside [Lower, Upper].
type Between struct {
	Operand ScalarExpr
	Lower   ScalarExpr
	Upper   ScalarExpr
	Not     bool
}

func (*Between) exprNode()   {}
func (*Between) scalarNode() {}

// TypeCode returns sqltype.Boolean.
func (*Between) TypeCode() sqltype.Code { return sqltype.Boolean }

// InList tests membership of Operand in an explicit value list or in the
// result of a subquery. Exactly one of Values and Query is set.
type InList struct {
	Operand ScalarExpr
	Values  []ScalarExpr
	Query   QueryExpr
	Not     bool
}

func (*InList) exprNode()   {}
func (*InList) scalarNode() {}

// TypeCode returns sqltype.Boolean.
func (*InList) TypeCode() sqltype.Code { return sqltype.Boolean }

// Exists tests whether a subquery returns any rows.
type Exists struct {
	Query QueryExpr
	Not   bool
}

func (*Exists) exprNode()   {}
func (*Exists) scalarNode() {}

// TypeCode returns sqltype.Boolean.
func (*Exists) TypeCode() sqltype.Code { return sqltype.Boolean }

// Aggregate applies an aggregate function. A nil Operand compiles to
// FN(*), which is only meaningful for COUNT.
type Aggregate struct {
	Fn       AggregateFn
	Operand  ScalarExpr
	Distinct bool
	Type     sqltype.Code
}

func (*Aggregate) exprNode()   {}
func (*Aggregate) scalarNode() {}

// TypeCode returns the result type of the aggregate.
func (a *Aggregate) TypeCode() sqltype.Code { return a.Type }

// Casting converts an expression to another SQL type.
type Casting struct {
	Operand ScalarExpr
	Type    sqltype.Code
}

func (*Casting) exprNode()   {}
func (*Casting) scalarNode() {}

// TypeCode returns the target type of the cast.
func (c *Casting) TypeCode() sqltype.Code { return c.Type }

// ColumnDeclaring is one entry of a select list: an expression plus the
// label it is declared under. DeclaredName may be empty for an unlabeled
// expression, in which case the database assigns the output name.
type ColumnDeclaring struct {
	Expr         ScalarExpr
	DeclaredName string
}

func (*ColumnDeclaring) exprNode()   {}
func (*ColumnDeclaring) scalarNode() {}

// TypeCode returns the type of the declared expression.
func (d *ColumnDeclaring) TypeCode() sqltype.Code { return d.Expr.TypeCode() }

// OrderBy is one ordering key. It is a tree node but not a scalar: it only
// appears in ORDER BY lists.
type OrderBy struct {
	Expr       ScalarExpr
	Descending bool
}

func (*OrderBy) exprNode() {}
