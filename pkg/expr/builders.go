package expr

import "github.com/leapstack-labs/querykit/pkg/sqltype"

// NewTable returns a reference to a table in the default schema.
func NewTable(name string) *Table {
	return &Table{Name: name}
}

// SchemaTable returns a reference to a schema-qualified table.
func SchemaTable(schema, name string) *Table {
	return &Table{Schema: schema, Name: name}
}

// As returns a copy of the table carrying an alias.
func (t *Table) As(alias string) *Table {
	cp := *t
	cp.Alias = alias
	return &cp
}

// Col returns a typed column of the table.
func (t *Table) Col(name string, typ sqltype.Code) *Column {
	return &Column{Table: t, Name: name, Type: typ}
}

// Arg binds a value as a parameter, inferring its type code from the Go
// value. Use TypedArg when the column type is known.
func Arg(value any) *Argument {
	return &Argument{Value: value, Type: sqltype.Of(value)}
}

// TypedArg binds a value as a parameter with an explicit type code.
func TypedArg(value any, typ sqltype.Code) *Argument {
	return &Argument{Value: value, Type: typ}
}

func compare(op BinaryOp, left, right ScalarExpr) *Binary {
	return &Binary{Op: op, Left: left, Right: right, Type: sqltype.Boolean}
}

// Eq builds left = right.
func Eq(left, right ScalarExpr) *Binary { return compare(OpEq, left, right) }

// NotEq builds left <> right.
func NotEq(left, right ScalarExpr) *Binary { return compare(OpNotEq, left, right) }

// Less builds left < right.
func Less(left, right ScalarExpr) *Binary { return compare(OpLess, left, right) }

// LessEq builds left <= right.
func LessEq(left, right ScalarExpr) *Binary { return compare(OpLessEq, left, right) }

// Greater builds left > right.
func Greater(left, right ScalarExpr) *Binary { return compare(OpGreater, left, right) }

// GreaterEq builds left >= right.
func GreaterEq(left, right ScalarExpr) *Binary { return compare(OpGreaterEq, left, right) }

// Like builds left LIKE right.
func Like(left, right ScalarExpr) *Binary { return compare(OpLike, left, right) }

// NotLike builds left NOT LIKE right.
func NotLike(left, right ScalarExpr) *Binary { return compare(OpNotLike, left, right) }

// And builds left AND right.
func And(left, right ScalarExpr) *Binary { return compare(OpAnd, left, right) }

// Or builds left OR right.
func Or(left, right ScalarExpr) *Binary { return compare(OpOr, left, right) }

// Xor builds left XOR right.
func Xor(left, right ScalarExpr) *Binary { return compare(OpXor, left, right) }

func arith(op BinaryOp, left, right ScalarExpr) *Binary {
	return &Binary{Op: op, Left: left, Right: right, Type: left.TypeCode()}
}

// Add builds left + right, typed after the left operand.
func Add(left, right ScalarExpr) *Binary { return arith(OpAdd, left, right) }

// Sub builds left - right, typed after the left operand.
func Sub(left, right ScalarExpr) *Binary { return arith(OpSub, left, right) }

// Mul builds left * right, typed after the left operand.
func Mul(left, right ScalarExpr) *Binary { return arith(OpMul, left, right) }

// Div builds left / right, typed after the left operand.
func Div(left, right ScalarExpr) *Binary { return arith(OpDiv, left, right) }

// Rem builds left % right, typed after the left operand.
func Rem(left, right ScalarExpr) *Binary { return arith(OpRem, left, right) }

// Not builds NOT operand.
func Not(operand ScalarExpr) *Unary {
	return &Unary{Op: UnaryNot, Operand: operand, Type: sqltype.Boolean}
}

// Neg builds -operand.
func Neg(operand ScalarExpr) *Unary {
	return &Unary{Op: UnaryMinus, Operand: operand, Type: operand.TypeCode()}
}

// IsNull builds operand IS NULL.
func IsNull(operand ScalarExpr) *Unary {
	return &Unary{Op: UnaryIsNull, Operand: operand, Type: sqltype.Boolean}
}

// IsNotNull builds operand IS NOT NULL.
func IsNotNull(operand ScalarExpr) *Unary {
	return &Unary{Op: UnaryIsNotNull, Operand: operand, Type: sqltype.Boolean}
}

// NewBetween builds operand BETWEEN lower AND upper.
func NewBetween(operand, lower, upper ScalarExpr) *Between {
	return &Between{Operand: operand, Lower: lower, Upper: upper}
}

// NotBetween builds operand NOT BETWEEN lower AND upper.
func NotBetween(operand, lower, upper ScalarExpr) *Between {
	return &Between{Operand: operand, Lower: lower, Upper: upper, Not: true}
}

// In builds operand IN (values...).
func In(operand ScalarExpr, values ...ScalarExpr) *InList {
	return &InList{Operand: operand, Values: values}
}

// NotIn builds operand NOT IN (values...).
func NotIn(operand ScalarExpr, values ...ScalarExpr) *InList {
	return &InList{Operand: operand, Values: values, Not: true}
}

// InQuery builds operand IN (query).
func InQuery(operand ScalarExpr, query QueryExpr) *InList {
	return &InList{Operand: operand, Query: query}
}

// NotInQuery builds operand NOT IN (query).
func NotInQuery(operand ScalarExpr, query QueryExpr) *InList {
	return &InList{Operand: operand, Query: query, Not: true}
}

// NewExists builds EXISTS (query).
func NewExists(query QueryExpr) *Exists {
	return &Exists{Query: query}
}

// NotExists builds NOT EXISTS (query).
func NotExists(query QueryExpr) *Exists {
	return &Exists{Query: query, Not: true}
}

// Count builds COUNT(*).
func Count() *Aggregate {
	return &Aggregate{Fn: FnCount, Type: sqltype.BigInt}
}

// CountOf builds COUNT(operand).
func CountOf(operand ScalarExpr) *Aggregate {
	return &Aggregate{Fn: FnCount, Operand: operand, Type: sqltype.BigInt}
}

// CountDistinct builds COUNT(DISTINCT operand).
func CountDistinct(operand ScalarExpr) *Aggregate {
	return &Aggregate{Fn: FnCount, Operand: operand, Distinct: true, Type: sqltype.BigInt}
}

// Sum builds SUM(operand), typed after the operand.
func Sum(operand ScalarExpr) *Aggregate {
	return &Aggregate{Fn: FnSum, Operand: operand, Type: operand.TypeCode()}
}

// Avg builds AVG(operand).
func Avg(operand ScalarExpr) *Aggregate {
	return &Aggregate{Fn: FnAvg, Operand: operand, Type: sqltype.Double}
}

// Min builds MIN(operand), typed after the operand.
func Min(operand ScalarExpr) *Aggregate {
	return &Aggregate{Fn: FnMin, Operand: operand, Type: operand.TypeCode()}
}

// Max builds MAX(operand), typed after the operand.
func Max(operand ScalarExpr) *Aggregate {
	return &Aggregate{Fn: FnMax, Operand: operand, Type: operand.TypeCode()}
}

// Cast builds CAST(operand AS type).
func Cast(operand ScalarExpr, typ sqltype.Code) *Casting {
	return &Casting{Operand: operand, Type: typ}
}

// As declares an expression under an output label.
func As(e ScalarExpr, name string) *ColumnDeclaring {
	return &ColumnDeclaring{Expr: e, DeclaredName: name}
}

// Asc builds an ascending ordering key.
func Asc(e ScalarExpr) *OrderBy {
	return &OrderBy{Expr: e}
}

// Desc builds a descending ordering key.
func Desc(e ScalarExpr) *OrderBy {
	return &OrderBy{Expr: e, Descending: true}
}

// SelectFrom builds a SELECT over a source. Plain columns are declared under
// their own name; other expressions stay unlabeled unless wrapped with As.
// No columns means SELECT *.
func SelectFrom(from SourceExpr, columns ...ScalarExpr) *Select {
	s := &Select{From: from}
	for _, c := range columns {
		switch d := c.(type) {
		case *ColumnDeclaring:
			s.Columns = append(s.Columns, d)
		case *Column:
			s.Columns = append(s.Columns, &ColumnDeclaring{Expr: d, DeclaredName: d.Name})
		default:
			s.Columns = append(s.Columns, &ColumnDeclaring{Expr: c})
		}
	}
	return s
}

// NewUnion builds left UNION right.
func NewUnion(left, right QueryExpr) *Union {
	return &Union{Left: left, Right: right}
}

// UnionAll builds left UNION ALL right.
func UnionAll(left, right QueryExpr) *Union {
	return &Union{Left: left, Right: right, All: true}
}

// JoinOn builds a join between two sources. Pass a nil condition for cross
// joins.
func JoinOn(kind JoinKind, left, right SourceExpr, condition ScalarExpr) *Join {
	return &Join{Kind: kind, Left: left, Right: right, Condition: condition}
}

// Assign pairs a column with an expression value.
func Assign(column *Column, value ScalarExpr) Assignment {
	return Assignment{Column: column, Value: value}
}

// AssignValue pairs a column with a bound Go value typed after the column.
func AssignValue(column *Column, value any) Assignment {
	return Assignment{Column: column, Value: TypedArg(value, column.Type)}
}

// NewInsert builds an INSERT of one row.
func NewInsert(table *Table, assignments ...Assignment) *Insert {
	return &Insert{Table: table, Assignments: assignments}
}

// NewInsertFromQuery builds an INSERT fed by a query.
func NewInsertFromQuery(table *Table, columns []*Column, query QueryExpr) *InsertFromQuery {
	return &InsertFromQuery{Table: table, Columns: columns, Query: query}
}

// NewUpdate builds an UPDATE of the rows matching where.
func NewUpdate(table *Table, where ScalarExpr, assignments ...Assignment) *Update {
	return &Update{Table: table, Assignments: assignments, Where: where}
}

// NewDelete builds a DELETE of the rows matching where.
func NewDelete(table *Table, where ScalarExpr) *Delete {
	return &Delete{Table: table, Where: where}
}
