package expr

import "reflect"

// Equal reports whether two trees are structurally equal: same node kinds,
// same operators, flags, names and type codes, and equal children in order.
// Argument values are compared with reflect.DeepEqual. Node identity does
// not matter; two independently built trees compare equal.
func Equal(a, b Expr) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch x := a.(type) {
	case *Column:
		y, ok := b.(*Column)
		return ok && x.Name == y.Name && x.Type == y.Type && equalTable(x.Table, y.Table)
	case *Argument:
		y, ok := b.(*Argument)
		return ok && x.Type == y.Type && reflect.DeepEqual(x.Value, y.Value)
	case *Unary:
		y, ok := b.(*Unary)
		return ok && x.Op == y.Op && x.Type == y.Type && equalScalar(x.Operand, y.Operand)
	case *Binary:
		y, ok := b.(*Binary)
		return ok && x.Op == y.Op && x.Type == y.Type &&
			equalScalar(x.Left, y.Left) && equalScalar(x.Right, y.Right)
	case *Between:
		y, ok := b.(*Between)
		return ok && x.Not == y.Not && equalScalar(x.Operand, y.Operand) &&
			equalScalar(x.Lower, y.Lower) && equalScalar(x.Upper, y.Upper)
	case *InList:
		y, ok := b.(*InList)
		return ok && x.Not == y.Not && equalScalar(x.Operand, y.Operand) &&
			equalScalars(x.Values, y.Values) && equalQuery(x.Query, y.Query)
	case *Exists:
		y, ok := b.(*Exists)
		return ok && x.Not == y.Not && equalQuery(x.Query, y.Query)
	case *Aggregate:
		y, ok := b.(*Aggregate)
		return ok && x.Fn == y.Fn && x.Distinct == y.Distinct && x.Type == y.Type &&
			equalScalar(x.Operand, y.Operand)
	case *Casting:
		y, ok := b.(*Casting)
		return ok && x.Type == y.Type && equalScalar(x.Operand, y.Operand)
	case *ColumnDeclaring:
		y, ok := b.(*ColumnDeclaring)
		return ok && x.DeclaredName == y.DeclaredName && equalScalar(x.Expr, y.Expr)
	case *OrderBy:
		y, ok := b.(*OrderBy)
		return ok && x.Descending == y.Descending && equalScalar(x.Expr, y.Expr)
	case *Table:
		y, ok := b.(*Table)
		return ok && equalTable(x, y)
	case *Join:
		y, ok := b.(*Join)
		return ok && x.Kind == y.Kind && equalSource(x.Left, y.Left) &&
			equalSource(x.Right, y.Right) && equalScalar(x.Condition, y.Condition)
	case *Select:
		y, ok := b.(*Select)
		return ok && x.Distinct == y.Distinct && x.Alias == y.Alias &&
			equalDeclarings(x.Columns, y.Columns) && equalSource(x.From, y.From) &&
			equalScalar(x.Where, y.Where) && equalScalars(x.GroupBy, y.GroupBy) &&
			equalScalar(x.Having, y.Having) && equalOrderBys(x.OrderBy, y.OrderBy) &&
			equalIntPtr(x.Offset, y.Offset) && equalIntPtr(x.Limit, y.Limit)
	case *Union:
		y, ok := b.(*Union)
		return ok && x.All == y.All && x.Alias == y.Alias &&
			equalQuery(x.Left, y.Left) && equalQuery(x.Right, y.Right) &&
			equalOrderBys(x.OrderBy, y.OrderBy) &&
			equalIntPtr(x.Offset, y.Offset) && equalIntPtr(x.Limit, y.Limit)
	case *Insert:
		y, ok := b.(*Insert)
		return ok && equalTable(x.Table, y.Table) && equalAssignments(x.Assignments, y.Assignments)
	case *InsertFromQuery:
		y, ok := b.(*InsertFromQuery)
		return ok && equalTable(x.Table, y.Table) &&
			equalColumns(x.Columns, y.Columns) && equalQuery(x.Query, y.Query)
	case *Update:
		y, ok := b.(*Update)
		return ok && equalTable(x.Table, y.Table) &&
			equalAssignments(x.Assignments, y.Assignments) && equalScalar(x.Where, y.Where)
	case *Delete:
		y, ok := b.(*Delete)
		return ok && equalTable(x.Table, y.Table) && equalScalar(x.Where, y.Where)
	default:
		panic(unknownNode(a))
	}
}

func equalTable(a, b *Table) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Catalog == b.Catalog && a.Schema == b.Schema &&
		a.Name == b.Name && a.Alias == b.Alias
}

func equalScalar(a, b ScalarExpr) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return Equal(a, b)
}

func equalSource(a, b SourceExpr) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return Equal(a, b)
}

func equalQuery(a, b QueryExpr) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return Equal(a, b)
}

func equalScalars(a, b []ScalarExpr) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !equalScalar(a[i], b[i]) {
			return false
		}
	}
	return true
}

func equalDeclarings(a, b []*ColumnDeclaring) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

func equalOrderBys(a, b []*OrderBy) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

func equalColumns(a, b []*Column) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

func equalAssignments(a, b []Assignment) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i].Column, b[i].Column) || !equalScalar(a[i].Value, b[i].Value) {
			return false
		}
	}
	return true
}

func equalIntPtr(a, b *int) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
