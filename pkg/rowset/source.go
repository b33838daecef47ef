package rowset

import (
	"database/sql"

	"github.com/leapstack-labs/querykit/pkg/sqltype"
)

// Column describes one output column of a row set. Label is the name the
// column was selected under; Name is the physical column name and TableName
// the owning table, both empty when the driver cannot report them.
type Column struct {
	Label     string
	Name      string
	TableName string
	Type      sqltype.Code
}

// Source is a forward-only, connection-bound row stream. Drain consumes a
// Source exactly once; the caller keeps ownership and closes it.
type Source interface {
	Columns() []Column
	Next() bool
	Values() ([]any, error)
	Err() error
	Close() error
}

// Drain copies every remaining row of src into a detached RowSet positioned
// before the first row. Byte slices are cloned so the rows stay valid after
// the source's connection is released; database/sql reuses scan buffers
// between rows.
func Drain(src Source, sqlText string) (*RowSet, error) {
	columns := append([]Column(nil), src.Columns()...)
	var rows [][]any
	for src.Next() {
		vals, err := src.Values()
		if err != nil {
			return nil, err
		}
		row := make([]any, len(vals))
		for i, v := range vals {
			row[i] = detach(v)
		}
		rows = append(rows, row)
	}
	if err := src.Err(); err != nil {
		return nil, err
	}
	return &RowSet{columns: columns, rows: rows, sql: sqlText, pos: -1}, nil
}

// detach copies values that alias driver-owned memory.
func detach(v any) any {
	switch b := v.(type) {
	case sql.RawBytes:
		return append([]byte(nil), b...)
	case []byte:
		return append([]byte(nil), b...)
	default:
		return v
	}
}

// SQLSource adapts *sql.Rows to the Source interface. Table names are left
// empty: database/sql does not expose the owning table of a column.
type SQLSource struct {
	rows    *sql.Rows
	columns []Column
}

// NewSQLSource reads the column metadata of rows and wraps it as a Source.
func NewSQLSource(rows *sql.Rows) (*SQLSource, error) {
	labels, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, err
	}
	columns := make([]Column, len(labels))
	for i, label := range labels {
		columns[i] = Column{Label: label, Name: label}
		if i < len(types) {
			columns[i].Type = sqltype.FromDatabaseTypeName(types[i].DatabaseTypeName())
		}
	}
	return &SQLSource{rows: rows, columns: columns}, nil
}

func (s *SQLSource) Columns() []Column { return s.columns }

func (s *SQLSource) Next() bool { return s.rows.Next() }

func (s *SQLSource) Values() ([]any, error) {
	vals := make([]any, len(s.columns))
	ptrs := make([]any, len(vals))
	for i := range vals {
		ptrs[i] = &vals[i]
	}
	if err := s.rows.Scan(ptrs...); err != nil {
		return nil, err
	}
	return vals, nil
}

func (s *SQLSource) Err() error { return s.rows.Err() }

func (s *SQLSource) Close() error { return s.rows.Close() }

var _ Source = (*SQLSource)(nil)

// FromSQLRows drains rows into a RowSet and closes them.
func FromSQLRows(rows *sql.Rows, sqlText string) (*RowSet, error) {
	defer rows.Close()
	src, err := NewSQLSource(rows)
	if err != nil {
		return nil, err
	}
	return Drain(src, sqlText)
}
