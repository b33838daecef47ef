package compile

import (
	"bytes"
	"strings"

	"github.com/leapstack-labs/querykit/pkg/dialect"
	"github.com/leapstack-labs/querykit/pkg/expr"
	"github.com/leapstack-labs/querykit/pkg/sqltype"
)

// printer accumulates SQL text and the parameter list during one compile.
type printer struct {
	dialect *dialect.Dialect
	buf     bytes.Buffer
	params  []Param
}

func (p *printer) write(s string) {
	p.buf.WriteString(s)
}

// keyword writes upper-cased keywords separated by single spaces.
func (p *printer) keyword(words ...string) {
	p.write(strings.Join(words, " "))
}

// param appends a bound parameter and writes its placeholder. Placeholder
// indexes are 1-based and follow emission order.
func (p *printer) param(value any, typ sqltype.Code) {
	p.params = append(p.params, Param{Value: value, Type: typ})
	p.write(p.dialect.FormatPlaceholder(len(p.params)))
}

func (p *printer) ident(name string) {
	p.write(p.dialect.QuoteIdentifier(name))
}

func (p *printer) emit(e expr.Expr) error {
	switch n := e.(type) {
	case *expr.Column:
		p.column(n)
		return nil
	case *expr.Argument:
		p.param(n.Value, n.Type)
		return nil
	case *expr.Unary:
		return p.unary(n)
	case *expr.Binary:
		return p.binary(n)
	case *expr.Between:
		return p.between(n)
	case *expr.InList:
		return p.inList(n)
	case *expr.Exists:
		return p.exists(n)
	case *expr.Aggregate:
		return p.aggregate(n)
	case *expr.Casting:
		return p.casting(n)
	case *expr.ColumnDeclaring:
		// A declaring in scalar position renders as its expression; the
		// AS label only exists in select lists.
		return p.emit(n.Expr)
	case *expr.OrderBy:
		return p.orderBy(n)
	case *expr.Table:
		p.table(n, true)
		return nil
	case *expr.Join:
		return p.join(n)
	case *expr.Select:
		return p.selectQuery(n)
	case *expr.Union:
		return p.union(n)
	case *expr.Insert:
		return p.insert(n)
	case *expr.InsertFromQuery:
		return p.insertFromQuery(n)
	case *expr.Update:
		return p.update(n)
	case *expr.Delete:
		return p.deleteStmt(n)
	default:
		return &UnsupportedExprError{Node: e}
	}
}

// operand emits a scalar child, parenthesizing composite expressions so the
// output never depends on operator precedence.
func (p *printer) operand(e expr.ScalarExpr) error {
	if atomic(e) {
		return p.emit(e)
	}
	p.write("(")
	if err := p.emit(e); err != nil {
		return err
	}
	p.write(")")
	return nil
}

// atomic reports whether e renders as a self-delimiting unit.
func atomic(e expr.ScalarExpr) bool {
	switch n := e.(type) {
	case *expr.Column, *expr.Argument, *expr.Aggregate, *expr.Casting, *expr.Exists:
		return true
	case *expr.ColumnDeclaring:
		return atomic(n.Expr)
	default:
		return false
	}
}

func (p *printer) column(n *expr.Column) {
	if n.Table != nil {
		qualifier := n.Table.Alias
		if qualifier == "" {
			qualifier = n.Table.Name
		}
		p.ident(qualifier)
		p.write(".")
	}
	p.ident(n.Name)
}

func (p *printer) unary(n *expr.Unary) error {
	if n.Op.Postfix() {
		if err := p.operand(n.Operand); err != nil {
			return err
		}
		p.write(" ")
		p.keyword(n.Op.String())
		return nil
	}
	p.keyword(n.Op.String())
	if n.Op == expr.UnaryNot {
		p.write(" ")
	}
	return p.operand(n.Operand)
}

func (p *printer) binary(n *expr.Binary) error {
	if err := p.operand(n.Left); err != nil {
		return err
	}
	p.write(" ")
	p.keyword(n.Op.String())
	p.write(" ")
	return p.operand(n.Right)
}

func (p *printer) between(n *expr.Between) error {
	if err := p.operand(n.Operand); err != nil {
		return err
	}
	if n.Not {
		p.write(" NOT")
	}
	p.write(" BETWEEN ")
	if err := p.operand(n.Lower); err != nil {
		return err
	}
	p.write(" AND ")
	return p.operand(n.Upper)
}

func (p *printer) inList(n *expr.InList) error {
	if err := p.operand(n.Operand); err != nil {
		return err
	}
	if n.Not {
		p.write(" NOT")
	}
	p.write(" IN (")
	if n.Query != nil {
		if err := p.emit(n.Query); err != nil {
			return err
		}
	} else {
		for i, v := range n.Values {
			if i > 0 {
				p.write(", ")
			}
			if err := p.emit(v); err != nil {
				return err
			}
		}
	}
	p.write(")")
	return nil
}

func (p *printer) exists(n *expr.Exists) error {
	if n.Not {
		p.write("NOT ")
	}
	p.write("EXISTS (")
	if err := p.emit(n.Query); err != nil {
		return err
	}
	p.write(")")
	return nil
}

func (p *printer) aggregate(n *expr.Aggregate) error {
	p.keyword(n.Fn.String())
	p.write("(")
	if n.Distinct {
		p.write("DISTINCT ")
	}
	if n.Operand == nil {
		p.write("*")
	} else if err := p.emit(n.Operand); err != nil {
		return err
	}
	p.write(")")
	return nil
}

func (p *printer) casting(n *expr.Casting) error {
	p.write("CAST(")
	if err := p.emit(n.Operand); err != nil {
		return err
	}
	p.write(" AS ")
	p.write(p.dialect.TypeName(n.Type))
	p.write(")")
	return nil
}

func (p *printer) orderBy(n *expr.OrderBy) error {
	if err := p.operand(n.Expr); err != nil {
		return err
	}
	if n.Descending {
		p.write(" DESC")
	} else {
		p.write(" ASC")
	}
	return nil
}

// table renders a table reference; withAlias is false for statement targets,
// which always address the physical table.
func (p *printer) table(n *expr.Table, withAlias bool) {
	if n.Catalog != "" {
		p.ident(n.Catalog)
		p.write(".")
	}
	if n.Schema != "" {
		p.ident(n.Schema)
		p.write(".")
	}
	p.ident(n.Name)
	if withAlias && n.Alias != "" {
		p.write(" AS ")
		p.ident(n.Alias)
	}
}

func (p *printer) join(n *expr.Join) error {
	if err := p.source(n.Left); err != nil {
		return err
	}
	p.write(" ")
	p.keyword(n.Kind.String())
	p.write(" ")
	if err := p.source(n.Right); err != nil {
		return err
	}
	if n.Condition != nil {
		p.write(" ON ")
		if err := p.emit(n.Condition); err != nil {
			return err
		}
	}
	return nil
}

// source renders a FROM clause entry. Queries render as parenthesized
// derived tables and must carry an alias; engines like Postgres reject
// anonymous subqueries in FROM.
func (p *printer) source(e expr.SourceExpr) error {
	switch n := e.(type) {
	case *expr.Table:
		p.table(n, true)
		return nil
	case *expr.Join:
		return p.join(n)
	case expr.QueryExpr:
		alias := n.TableAlias()
		if alias == "" {
			return &UnsupportedExprError{Node: e, Reason: "derived table requires an alias"}
		}
		p.write("(")
		if err := p.emit(e); err != nil {
			return err
		}
		p.write(") AS ")
		p.ident(alias)
		return nil
	default:
		return &UnsupportedExprError{Node: e}
	}
}

func (p *printer) selectQuery(n *expr.Select) error {
	p.write("SELECT ")
	if n.Distinct {
		p.write("DISTINCT ")
	}
	if len(n.Columns) == 0 {
		p.write("*")
	}
	for i, d := range n.Columns {
		if i > 0 {
			p.write(", ")
		}
		if err := p.declaring(d); err != nil {
			return err
		}
	}
	if n.From != nil {
		p.write(" FROM ")
		if err := p.source(n.From); err != nil {
			return err
		}
	}
	if n.Where != nil {
		p.write(" WHERE ")
		if err := p.emit(n.Where); err != nil {
			return err
		}
	}
	if len(n.GroupBy) > 0 {
		p.write(" GROUP BY ")
		for i, g := range n.GroupBy {
			if i > 0 {
				p.write(", ")
			}
			if err := p.emit(g); err != nil {
				return err
			}
		}
	}
	if n.Having != nil {
		p.write(" HAVING ")
		if err := p.emit(n.Having); err != nil {
			return err
		}
	}
	if err := p.ordering(n.OrderBy); err != nil {
		return err
	}
	return p.paging(n.Offset, n.Limit)
}

// declaring renders a select list entry, skipping the AS label when it
// would restate a column's own name.
func (p *printer) declaring(d *expr.ColumnDeclaring) error {
	if err := p.emit(d.Expr); err != nil {
		return err
	}
	if d.DeclaredName == "" {
		return nil
	}
	if c, ok := d.Expr.(*expr.Column); ok && c.Name == d.DeclaredName {
		return nil
	}
	p.write(" AS ")
	p.ident(d.DeclaredName)
	return nil
}

func (p *printer) union(n *expr.Union) error {
	if err := p.unionBranch(n.Left); err != nil {
		return err
	}
	if n.All {
		p.write(" UNION ALL ")
	} else {
		p.write(" UNION ")
	}
	if err := p.unionBranch(n.Right); err != nil {
		return err
	}
	if err := p.ordering(n.OrderBy); err != nil {
		return err
	}
	return p.paging(n.Offset, n.Limit)
}

// unionBranch renders one side of a union. Branches compile inline without
// parentheses (SQLite rejects parenthesized compound selects), so a branch
// with its own ordering or paging would corrupt the combined statement.
func (p *printer) unionBranch(q expr.QueryExpr) error {
	if len(q.OrderByList()) > 0 {
		return &UnsupportedExprError{Node: q, Reason: "union branch cannot carry ordering; order the union"}
	}
	if offset, limit := q.Paging(); offset != nil || limit != nil {
		return &UnsupportedExprError{Node: q, Reason: "union branch cannot carry paging; page the union"}
	}
	return p.emit(q)
}

func (p *printer) ordering(orderBy []*expr.OrderBy) error {
	if len(orderBy) == 0 {
		return nil
	}
	p.write(" ORDER BY ")
	for i, o := range orderBy {
		if i > 0 {
			p.write(", ")
		}
		if err := p.orderBy(o); err != nil {
			return err
		}
	}
	return nil
}

// paging renders OFFSET/LIMIT in the dialect's style. Values bind as
// parameters like any other argument.
func (p *printer) paging(offset, limit *int) error {
	if offset == nil && limit == nil {
		return nil
	}
	switch p.dialect.Pagination {
	case dialect.PaginationOffsetCommaLimit:
		// LIMIT offset, limit with both always bound: -1 means unlimited.
		off, lim := 0, -1
		if offset != nil {
			off = *offset
		}
		if limit != nil {
			lim = *limit
		}
		p.write(" LIMIT ")
		p.param(off, sqltype.Integer)
		p.write(", ")
		p.param(lim, sqltype.Integer)
	case dialect.PaginationOffsetFetch:
		off := 0
		if offset != nil {
			off = *offset
		}
		p.write(" OFFSET ")
		p.param(off, sqltype.Integer)
		p.write(" ROWS")
		if limit != nil {
			p.write(" FETCH NEXT ")
			p.param(*limit, sqltype.Integer)
			p.write(" ROWS ONLY")
		}
	default: // PaginationLimitOffset
		if limit != nil {
			p.write(" LIMIT ")
			p.param(*limit, sqltype.Integer)
		}
		if offset != nil {
			p.write(" OFFSET ")
			p.param(*offset, sqltype.Integer)
		}
	}
	return nil
}

func (p *printer) insert(n *expr.Insert) error {
	if len(n.Assignments) == 0 {
		return &UnsupportedExprError{Node: n, Reason: "insert requires at least one assignment"}
	}
	p.write("INSERT INTO ")
	p.table(n.Table, false)
	p.write(" (")
	for i, a := range n.Assignments {
		if i > 0 {
			p.write(", ")
		}
		p.ident(a.Column.Name)
	}
	p.write(") VALUES (")
	for i, a := range n.Assignments {
		if i > 0 {
			p.write(", ")
		}
		if err := p.emit(a.Value); err != nil {
			return err
		}
	}
	p.write(")")
	return nil
}

func (p *printer) insertFromQuery(n *expr.InsertFromQuery) error {
	p.write("INSERT INTO ")
	p.table(n.Table, false)
	if len(n.Columns) > 0 {
		p.write(" (")
		for i, c := range n.Columns {
			if i > 0 {
				p.write(", ")
			}
			p.ident(c.Name)
		}
		p.write(")")
	}
	p.write(" ")
	return p.emit(n.Query)
}

func (p *printer) update(n *expr.Update) error {
	if len(n.Assignments) == 0 {
		return &UnsupportedExprError{Node: n, Reason: "update requires at least one assignment"}
	}
	p.write("UPDATE ")
	p.table(n.Table, false)
	p.write(" SET ")
	for i, a := range n.Assignments {
		if i > 0 {
			p.write(", ")
		}
		p.ident(a.Column.Name)
		p.write(" = ")
		if err := p.emit(a.Value); err != nil {
			return err
		}
	}
	if n.Where != nil {
		p.write(" WHERE ")
		if err := p.emit(n.Where); err != nil {
			return err
		}
	}
	return nil
}

func (p *printer) deleteStmt(n *expr.Delete) error {
	p.write("DELETE FROM ")
	p.table(n.Table, false)
	if n.Where != nil {
		p.write(" WHERE ")
		if err := p.emit(n.Where); err != nil {
			return err
		}
	}
	return nil
}
