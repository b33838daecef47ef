package expr

// Assignment pairs a target column with the value written to it. It is part
// of Insert and Update nodes rather than a tree node of its own.
type Assignment struct {
	Column *Column
	Value  ScalarExpr
}

// Insert writes one row built from explicit assignments.
type Insert struct {
	Table       *Table
	Assignments []Assignment
}

func (*Insert) exprNode() {}
func (*Insert) stmtNode() {}

// InsertFromQuery writes the rows produced by a query. Columns names the
// target columns in query output order; empty means the table's natural
// column order.
type InsertFromQuery struct {
	Table   *Table
	Columns []*Column
	Query   QueryExpr
}

func (*InsertFromQuery) exprNode() {}
func (*InsertFromQuery) stmtNode() {}

// Update rewrites columns of the rows matching Where. A nil Where updates
// every row.
type Update struct {
	Table       *Table
	Assignments []Assignment
	Where       ScalarExpr
}

func (*Update) exprNode() {}
func (*Update) stmtNode() {}

// Delete removes the rows matching Where. A nil Where deletes every row.
type Delete struct {
	Table *Table
	Where ScalarExpr
}

func (*Delete) exprNode() {}
func (*Delete) stmtNode() {}
