package expr

// Table references a physical table, optionally qualified and aliased.
type Table struct {
	Catalog string
	Schema  string
	Name    string
	Alias   string
}

func (*Table) exprNode()   {}
func (*Table) sourceNode() {}

// JoinKind enumerates join types.
type JoinKind int

const (
	CrossJoin JoinKind = iota
	InnerJoin
	LeftJoin
	RightJoin
	FullJoin
)

// String returns the SQL spelling of the join.
func (k JoinKind) String() string {
	switch k {
	case CrossJoin:
		return "CROSS JOIN"
	case InnerJoin:
		return "INNER JOIN"
	case LeftJoin:
		return "LEFT JOIN"
	case RightJoin:
		return "RIGHT JOIN"
	case FullJoin:
		return "FULL JOIN"
	default:
		return "?join?"
	}
}

// Join combines two sources. Condition is nil for cross joins.
type Join struct {
	Kind      JoinKind
	Left      SourceExpr
	Right     SourceExpr
	Condition ScalarExpr
}

func (*Join) exprNode()   {}
func (*Join) sourceNode() {}

// Select is a single SELECT query. An empty Columns list selects every
// column of the source (SELECT *).
type Select struct {
	Columns  []*ColumnDeclaring
	From     SourceExpr
	Where    ScalarExpr
	GroupBy  []ScalarExpr
	Having   ScalarExpr
	Distinct bool
	OrderBy  []*OrderBy
	Offset   *int
	Limit    *int
	// Alias names the query when it is used as a derived table.
	Alias string
}

func (*Select) exprNode()   {}
func (*Select) sourceNode() {}
func (*Select) queryNode()  {}

// OrderByList returns the query's ordering.
func (s *Select) OrderByList() []*OrderBy { return s.OrderBy }

// Paging returns the query's offset and limit.
func (s *Select) Paging() (offset, limit *int) { return s.Offset, s.Limit }

// TableAlias returns the derived-table alias.
func (s *Select) TableAlias() string { return s.Alias }

// Union combines two queries. Ordering and paging apply to the combined
// result, never to either side.
type Union struct {
	Left    QueryExpr
	Right   QueryExpr
	All     bool
	OrderBy []*OrderBy
	Offset  *int
	Limit   *int
	Alias   string
}

func (*Union) exprNode()   {}
func (*Union) sourceNode() {}
func (*Union) queryNode()  {}

// OrderByList returns the query's ordering.
func (u *Union) OrderByList() []*OrderBy { return u.OrderBy }

// Paging returns the query's offset and limit.
func (u *Union) Paging() (offset, limit *int) { return u.Offset, u.Limit }

// TableAlias returns the derived-table alias.
func (u *Union) TableAlias() string { return u.Alias }

// WithOrderBy returns a copy of q with its ordering replaced.
func WithOrderBy(q QueryExpr, orderBy []*OrderBy) QueryExpr {
	switch n := q.(type) {
	case *Select:
		cp := *n
		cp.OrderBy = orderBy
		return &cp
	case *Union:
		cp := *n
		cp.OrderBy = orderBy
		return &cp
	default:
		panic(unknownNode(q))
	}
}

// WithPaging returns a copy of q with its offset and limit replaced.
func WithPaging(q QueryExpr, offset, limit *int) QueryExpr {
	switch n := q.(type) {
	case *Select:
		cp := *n
		cp.Offset, cp.Limit = offset, limit
		return &cp
	case *Union:
		cp := *n
		cp.Offset, cp.Limit = offset, limit
		return &cp
	default:
		panic(unknownNode(q))
	}
}

// WithAlias returns a copy of q carrying the given derived-table alias.
func WithAlias(q QueryExpr, alias string) QueryExpr {
	switch n := q.(type) {
	case *Select:
		cp := *n
		cp.Alias = alias
		return &cp
	case *Union:
		cp := *n
		cp.Alias = alias
		return &cp
	default:
		panic(unknownNode(q))
	}
}
