package expr

import "fmt"

func unknownNode(e Expr) string {
	return fmt.Sprintf("expr: unknown node type %T", e)
}

// Rewriter rebuilds expression trees bottom-up. Each hook takes over the
// visit for one node kind; kinds without a hook get the default behavior,
// which rewrites the children and returns the original node untouched when
// no child changed. Passes that leave most of a tree alone therefore
// preserve node identity, which callers rely on to detect no-op rewrites.
//
// Hooks must return a node usable in the original node's position; the
// zero Rewriter is a no-op. Encountering a node kind outside the closed set
// is a programming error and panics.
type Rewriter struct {
	RewriteColumn          func(*Column) ScalarExpr
	RewriteArgument        func(*Argument) ScalarExpr
	RewriteUnary           func(*Unary) ScalarExpr
	RewriteBinary          func(*Binary) ScalarExpr
	RewriteBetween         func(*Between) ScalarExpr
	RewriteInList          func(*InList) ScalarExpr
	RewriteExists          func(*Exists) ScalarExpr
	RewriteAggregate       func(*Aggregate) ScalarExpr
	RewriteCasting         func(*Casting) ScalarExpr
	RewriteColumnDeclaring func(*ColumnDeclaring) *ColumnDeclaring
	RewriteOrderBy         func(*OrderBy) *OrderBy
	RewriteTable           func(*Table) *Table
	RewriteJoin            func(*Join) SourceExpr
	RewriteSelect          func(*Select) QueryExpr
	RewriteUnion           func(*Union) QueryExpr
	RewriteInsert          func(*Insert) StmtExpr
	RewriteInsertFromQuery func(*InsertFromQuery) StmtExpr
	RewriteUpdate          func(*Update) StmtExpr
	RewriteDelete          func(*Delete) StmtExpr
}

// Rewrite rewrites any tree node.
func (r *Rewriter) Rewrite(e Expr) Expr {
	switch n := e.(type) {
	case nil:
		return nil
	case *Column, *Argument, *Unary, *Binary, *Between, *InList,
		*Exists, *Aggregate, *Casting, *ColumnDeclaring:
		return r.scalar(n.(ScalarExpr))
	case *OrderBy:
		return r.orderBy(n)
	case *Table:
		return r.table(n)
	case *Join:
		return r.join(n)
	case *Select:
		return r.selectQuery(n)
	case *Union:
		return r.union(n)
	case *Insert:
		return r.insert(n)
	case *InsertFromQuery:
		return r.insertFromQuery(n)
	case *Update:
		return r.update(n)
	case *Delete:
		return r.delete(n)
	default:
		panic(unknownNode(e))
	}
}

// RewriteQuery rewrites a query, preserving its query-ness.
func (r *Rewriter) RewriteQuery(q QueryExpr) QueryExpr {
	if q == nil {
		return nil
	}
	return r.query(q)
}

func (r *Rewriter) scalar(e ScalarExpr) ScalarExpr {
	switch n := e.(type) {
	case *Column:
		if r.RewriteColumn != nil {
			return r.RewriteColumn(n)
		}
		t := r.tablePtr(n.Table)
		if t == n.Table {
			return n
		}
		cp := *n
		cp.Table = t
		return &cp
	case *Argument:
		if r.RewriteArgument != nil {
			return r.RewriteArgument(n)
		}
		return n
	case *Unary:
		if r.RewriteUnary != nil {
			return r.RewriteUnary(n)
		}
		operand := r.scalarOrNil(n.Operand)
		if operand == n.Operand {
			return n
		}
		cp := *n
		cp.Operand = operand
		return &cp
	case *Binary:
		if r.RewriteBinary != nil {
			return r.RewriteBinary(n)
		}
		left := r.scalarOrNil(n.Left)
		right := r.scalarOrNil(n.Right)
		if left == n.Left && right == n.Right {
			return n
		}
		cp := *n
		cp.Left, cp.Right = left, right
		return &cp
	case *Between:
		if r.RewriteBetween != nil {
			return r.RewriteBetween(n)
		}
		operand := r.scalarOrNil(n.Operand)
		lower := r.scalarOrNil(n.Lower)
		upper := r.scalarOrNil(n.Upper)
		if operand == n.Operand && lower == n.Lower && upper == n.Upper {
			return n
		}
		cp := *n
		cp.Operand, cp.Lower, cp.Upper = operand, lower, upper
		return &cp
	case *InList:
		if r.RewriteInList != nil {
			return r.RewriteInList(n)
		}
		operand := r.scalarOrNil(n.Operand)
		values, valuesChanged := r.scalars(n.Values)
		query := r.queryOrNil(n.Query)
		if operand == n.Operand && !valuesChanged && query == n.Query {
			return n
		}
		cp := *n
		cp.Operand, cp.Values, cp.Query = operand, values, query
		return &cp
	case *Exists:
		if r.RewriteExists != nil {
			return r.RewriteExists(n)
		}
		query := r.queryOrNil(n.Query)
		if query == n.Query {
			return n
		}
		cp := *n
		cp.Query = query
		return &cp
	case *Aggregate:
		if r.RewriteAggregate != nil {
			return r.RewriteAggregate(n)
		}
		operand := r.scalarOrNil(n.Operand)
		if operand == n.Operand {
			return n
		}
		cp := *n
		cp.Operand = operand
		return &cp
	case *Casting:
		if r.RewriteCasting != nil {
			return r.RewriteCasting(n)
		}
		operand := r.scalarOrNil(n.Operand)
		if operand == n.Operand {
			return n
		}
		cp := *n
		cp.Operand = operand
		return &cp
	case *ColumnDeclaring:
		return r.columnDeclaring(n)
	default:
		panic(unknownNode(e))
	}
}

func (r *Rewriter) columnDeclaring(n *ColumnDeclaring) *ColumnDeclaring {
	if r.RewriteColumnDeclaring != nil {
		return r.RewriteColumnDeclaring(n)
	}
	e := r.scalarOrNil(n.Expr)
	if e == n.Expr {
		return n
	}
	cp := *n
	cp.Expr = e
	return &cp
}

func (r *Rewriter) orderBy(n *OrderBy) *OrderBy {
	if r.RewriteOrderBy != nil {
		return r.RewriteOrderBy(n)
	}
	e := r.scalarOrNil(n.Expr)
	if e == n.Expr {
		return n
	}
	cp := *n
	cp.Expr = e
	return &cp
}

func (r *Rewriter) table(n *Table) *Table {
	if r.RewriteTable != nil {
		return r.RewriteTable(n)
	}
	return n
}

func (r *Rewriter) join(n *Join) SourceExpr {
	if r.RewriteJoin != nil {
		return r.RewriteJoin(n)
	}
	left := r.source(n.Left)
	right := r.source(n.Right)
	cond := r.scalarOrNil(n.Condition)
	if left == n.Left && right == n.Right && cond == n.Condition {
		return n
	}
	cp := *n
	cp.Left, cp.Right, cp.Condition = left, right, cond
	return &cp
}

func (r *Rewriter) selectQuery(n *Select) QueryExpr {
	if r.RewriteSelect != nil {
		return r.RewriteSelect(n)
	}
	columns, columnsChanged := r.declarings(n.Columns)
	from := r.sourceOrNil(n.From)
	where := r.scalarOrNil(n.Where)
	groupBy, groupByChanged := r.scalars(n.GroupBy)
	having := r.scalarOrNil(n.Having)
	orderBy, orderByChanged := r.orderBys(n.OrderBy)
	if !columnsChanged && from == n.From && where == n.Where &&
		!groupByChanged && having == n.Having && !orderByChanged {
		return n
	}
	cp := *n
	cp.Columns, cp.From, cp.Where = columns, from, where
	cp.GroupBy, cp.Having, cp.OrderBy = groupBy, having, orderBy
	return &cp
}

func (r *Rewriter) union(n *Union) QueryExpr {
	if r.RewriteUnion != nil {
		return r.RewriteUnion(n)
	}
	left := r.query(n.Left)
	right := r.query(n.Right)
	orderBy, orderByChanged := r.orderBys(n.OrderBy)
	if left == n.Left && right == n.Right && !orderByChanged {
		return n
	}
	cp := *n
	cp.Left, cp.Right, cp.OrderBy = left, right, orderBy
	return &cp
}

func (r *Rewriter) insert(n *Insert) StmtExpr {
	if r.RewriteInsert != nil {
		return r.RewriteInsert(n)
	}
	table := r.tablePtr(n.Table)
	assignments, assignmentsChanged := r.assignments(n.Assignments)
	if table == n.Table && !assignmentsChanged {
		return n
	}
	cp := *n
	cp.Table, cp.Assignments = table, assignments
	return &cp
}

func (r *Rewriter) insertFromQuery(n *InsertFromQuery) StmtExpr {
	if r.RewriteInsertFromQuery != nil {
		return r.RewriteInsertFromQuery(n)
	}
	table := r.tablePtr(n.Table)
	columns, columnsChanged := r.columns(n.Columns)
	query := r.queryOrNil(n.Query)
	if table == n.Table && !columnsChanged && query == n.Query {
		return n
	}
	cp := *n
	cp.Table, cp.Columns, cp.Query = table, columns, query
	return &cp
}

func (r *Rewriter) update(n *Update) StmtExpr {
	if r.RewriteUpdate != nil {
		return r.RewriteUpdate(n)
	}
	table := r.tablePtr(n.Table)
	assignments, assignmentsChanged := r.assignments(n.Assignments)
	where := r.scalarOrNil(n.Where)
	if table == n.Table && !assignmentsChanged && where == n.Where {
		return n
	}
	cp := *n
	cp.Table, cp.Assignments, cp.Where = table, assignments, where
	return &cp
}

func (r *Rewriter) delete(n *Delete) StmtExpr {
	if r.RewriteDelete != nil {
		return r.RewriteDelete(n)
	}
	table := r.tablePtr(n.Table)
	where := r.scalarOrNil(n.Where)
	if table == n.Table && where == n.Where {
		return n
	}
	cp := *n
	cp.Table, cp.Where = table, where
	return &cp
}

func (r *Rewriter) source(e SourceExpr) SourceExpr {
	switch n := e.(type) {
	case *Table:
		return r.table(n)
	case *Join:
		return r.join(n)
	case *Select:
		return r.selectQuery(n)
	case *Union:
		return r.union(n)
	default:
		panic(unknownNode(e))
	}
}

func (r *Rewriter) query(q QueryExpr) QueryExpr {
	switch n := q.(type) {
	case *Select:
		return r.selectQuery(n)
	case *Union:
		return r.union(n)
	default:
		panic(unknownNode(q))
	}
}

func (r *Rewriter) scalarOrNil(e ScalarExpr) ScalarExpr {
	if e == nil {
		return nil
	}
	return r.scalar(e)
}

func (r *Rewriter) sourceOrNil(e SourceExpr) SourceExpr {
	if e == nil {
		return nil
	}
	return r.source(e)
}

func (r *Rewriter) queryOrNil(q QueryExpr) QueryExpr {
	if q == nil {
		return nil
	}
	return r.query(q)
}

func (r *Rewriter) tablePtr(t *Table) *Table {
	if t == nil {
		return nil
	}
	return r.table(t)
}

// columnExpr rewrites a column that must remain a column, such as an
// assignment target.
func (r *Rewriter) columnExpr(c *Column) *Column {
	rewritten := r.scalar(c)
	out, ok := rewritten.(*Column)
	if !ok {
		panic(fmt.Sprintf("expr: rewrite replaced assignment target column with %T", rewritten))
	}
	return out
}

func (r *Rewriter) scalars(list []ScalarExpr) ([]ScalarExpr, bool) {
	var out []ScalarExpr
	for i, e := range list {
		rewritten := r.scalarOrNil(e)
		if out == nil && rewritten != e {
			out = make([]ScalarExpr, len(list))
			copy(out, list[:i])
		}
		if out != nil {
			out[i] = rewritten
		}
	}
	if out == nil {
		return list, false
	}
	return out, true
}

func (r *Rewriter) declarings(list []*ColumnDeclaring) ([]*ColumnDeclaring, bool) {
	var out []*ColumnDeclaring
	for i, d := range list {
		rewritten := r.columnDeclaring(d)
		if out == nil && rewritten != d {
			out = make([]*ColumnDeclaring, len(list))
			copy(out, list[:i])
		}
		if out != nil {
			out[i] = rewritten
		}
	}
	if out == nil {
		return list, false
	}
	return out, true
}

func (r *Rewriter) orderBys(list []*OrderBy) ([]*OrderBy, bool) {
	var out []*OrderBy
	for i, o := range list {
		rewritten := r.orderBy(o)
		if out == nil && rewritten != o {
			out = make([]*OrderBy, len(list))
			copy(out, list[:i])
		}
		if out != nil {
			out[i] = rewritten
		}
	}
	if out == nil {
		return list, false
	}
	return out, true
}

func (r *Rewriter) columns(list []*Column) ([]*Column, bool) {
	var out []*Column
	for i, c := range list {
		rewritten := r.columnExpr(c)
		if out == nil && rewritten != c {
			out = make([]*Column, len(list))
			copy(out, list[:i])
		}
		if out != nil {
			out[i] = rewritten
		}
	}
	if out == nil {
		return list, false
	}
	return out, true
}

func (r *Rewriter) assignments(list []Assignment) ([]Assignment, bool) {
	var out []Assignment
	for i, a := range list {
		column := r.columnExpr(a.Column)
		value := r.scalarOrNil(a.Value)
		if out == nil && (column != a.Column || value != a.Value) {
			out = make([]Assignment, len(list))
			copy(out, list[:i])
		}
		if out != nil {
			out[i] = Assignment{Column: column, Value: value}
		}
	}
	if out == nil {
		return list, false
	}
	return out, true
}

// Walk calls fn for e and, when fn returns true, for each child of e in
// depth-first order. Returning false prunes the subtree below the current
// node; siblings are still visited.
func Walk(e Expr, fn func(Expr) bool) {
	if e == nil {
		return
	}
	if !fn(e) {
		return
	}
	switch n := e.(type) {
	case *Column:
		if n.Table != nil {
			Walk(n.Table, fn)
		}
	case *Argument, *Table:
		// leaves
	case *Unary:
		walkScalar(n.Operand, fn)
	case *Binary:
		walkScalar(n.Left, fn)
		walkScalar(n.Right, fn)
	case *Between:
		walkScalar(n.Operand, fn)
		walkScalar(n.Lower, fn)
		walkScalar(n.Upper, fn)
	case *InList:
		walkScalar(n.Operand, fn)
		for _, v := range n.Values {
			walkScalar(v, fn)
		}
		if n.Query != nil {
			Walk(n.Query, fn)
		}
	case *Exists:
		if n.Query != nil {
			Walk(n.Query, fn)
		}
	case *Aggregate:
		walkScalar(n.Operand, fn)
	case *Casting:
		walkScalar(n.Operand, fn)
	case *ColumnDeclaring:
		walkScalar(n.Expr, fn)
	case *OrderBy:
		walkScalar(n.Expr, fn)
	case *Join:
		if n.Left != nil {
			Walk(n.Left, fn)
		}
		if n.Right != nil {
			Walk(n.Right, fn)
		}
		walkScalar(n.Condition, fn)
	case *Select:
		for _, d := range n.Columns {
			Walk(d, fn)
		}
		if n.From != nil {
			Walk(n.From, fn)
		}
		walkScalar(n.Where, fn)
		for _, g := range n.GroupBy {
			walkScalar(g, fn)
		}
		walkScalar(n.Having, fn)
		for _, o := range n.OrderBy {
			Walk(o, fn)
		}
	case *Union:
		Walk(n.Left, fn)
		Walk(n.Right, fn)
		for _, o := range n.OrderBy {
			Walk(o, fn)
		}
	case *Insert:
		Walk(n.Table, fn)
		for _, a := range n.Assignments {
			Walk(a.Column, fn)
			walkScalar(a.Value, fn)
		}
	case *InsertFromQuery:
		Walk(n.Table, fn)
		for _, c := range n.Columns {
			Walk(c, fn)
		}
		if n.Query != nil {
			Walk(n.Query, fn)
		}
	case *Update:
		Walk(n.Table, fn)
		for _, a := range n.Assignments {
			Walk(a.Column, fn)
			walkScalar(a.Value, fn)
		}
		walkScalar(n.Where, fn)
	case *Delete:
		Walk(n.Table, fn)
		walkScalar(n.Where, fn)
	default:
		panic(unknownNode(e))
	}
}

func walkScalar(e ScalarExpr, fn func(Expr) bool) {
	if e == nil {
		return
	}
	Walk(e, fn)
}
