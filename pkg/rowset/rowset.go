// Package rowset implements a detached, scrollable, read-only row cursor.
//
// A RowSet copies every row of a Source into memory up front, so the
// originating connection can be released while the results stay
// addressable. Positions run from -1 (before the first row) through Len()
// (after the last row); the current row number is 1-based. One instance is
// not safe for concurrent use: navigation and the was-null flag mutate
// instance state, and callers coordinate their own locking.
package rowset

import "strings"

// RowSet is an in-memory table with cursor-style navigation. The zero value
// is an empty row set positioned before the first row.
type RowSet struct {
	columns []Column
	rows    [][]any
	sql     string
	pos     int
	wasNull bool
}

// Len returns the number of rows.
func (rs *RowSet) Len() int { return len(rs.rows) }

// Columns returns the column metadata in select-list order.
func (rs *RowSet) Columns() []Column { return rs.columns }

// SQL returns the statement that produced the row set, for diagnostics.
func (rs *RowSet) SQL() string { return rs.sql }

// WasNull reports whether the most recent value read was SQL NULL.
func (rs *RowSet) WasNull() bool { return rs.wasNull }

// Next advances one position and reports whether a row is now current. It
// returns a *CursorStateError when the cursor is already after the last
// row, where advancing would leave the legal position range.
func (rs *RowSet) Next() (bool, error) {
	if rs.pos >= len(rs.rows) {
		return false, &CursorStateError{Op: "next", Position: rs.pos, RowCount: len(rs.rows)}
	}
	rs.pos++
	return rs.pos < len(rs.rows), nil
}

// Previous retreats one position and reports whether a row is now current.
// It returns a *CursorStateError when the cursor is already before the
// first row.
func (rs *RowSet) Previous() (bool, error) {
	if rs.pos <= -1 {
		return false, &CursorStateError{Op: "previous", Position: rs.pos, RowCount: len(rs.rows)}
	}
	rs.pos--
	return rs.pos > -1, nil
}

// BeforeFirst moves before the first row.
func (rs *RowSet) BeforeFirst() { rs.pos = -1 }

// AfterLast moves after the last row.
func (rs *RowSet) AfterLast() { rs.pos = len(rs.rows) }

// First moves to the first row and reports whether one exists.
func (rs *RowSet) First() bool { return rs.Absolute(1) }

// Last moves to the last row and reports whether one exists.
func (rs *RowSet) Last() bool { return rs.Absolute(-1) }

// Absolute moves to the 1-based row n and reports whether a row is now
// current. 0 positions before the first row; n beyond the end positions
// after the last row; negative n counts from the end (-1 is the last row),
// re-resolved through the same rule.
func (rs *RowSet) Absolute(n int) bool {
	switch {
	case n == 0:
		rs.pos = -1
		return false
	case n > len(rs.rows):
		rs.pos = len(rs.rows)
		return false
	case n < 0:
		return rs.Absolute(len(rs.rows) + n + 1)
	default:
		rs.pos = n - 1
		return true
	}
}

// Relative moves k positions from the current one and reports whether a row
// is now current. Moves past either end clamp to before-first or after-last
// and return false.
func (rs *RowSet) Relative(k int) bool {
	target := rs.pos + k
	switch {
	case target >= len(rs.rows):
		rs.pos = len(rs.rows)
		return false
	case target <= -1:
		rs.pos = -1
		return false
	default:
		rs.pos = target
		return true
	}
}

// IsBeforeFirst reports whether the cursor is before the first row. An
// empty row set reports false.
func (rs *RowSet) IsBeforeFirst() bool { return len(rs.rows) > 0 && rs.pos == -1 }

// IsAfterLast reports whether the cursor is after the last row. An empty
// row set reports false.
func (rs *RowSet) IsAfterLast() bool { return len(rs.rows) > 0 && rs.pos == len(rs.rows) }

// IsFirst reports whether the cursor is on the first row.
func (rs *RowSet) IsFirst() bool { return len(rs.rows) > 0 && rs.pos == 0 }

// IsLast reports whether the cursor is on the last row.
func (rs *RowSet) IsLast() bool { return len(rs.rows) > 0 && rs.pos == len(rs.rows)-1 }

// Row returns the 1-based number of the current row, or 0 when the cursor
// is not on a row.
func (rs *RowSet) Row() int {
	if rs.pos < 0 || rs.pos >= len(rs.rows) {
		return 0
	}
	return rs.pos + 1
}

// FindColumn resolves a label to a 1-based column index, matching
// case-insensitively. A "table.column" form restricts the match to columns
// of that table. A label matching more than one column is an error, never a
// silent pick of the first match.
func (rs *RowSet) FindColumn(name string) (int, error) {
	table, label := "", name
	if i := strings.LastIndex(name, "."); i >= 0 {
		table, label = name[:i], name[i+1:]
	}
	index, matches := 0, 0
	for i, c := range rs.columns {
		if !strings.EqualFold(c.Label, label) {
			continue
		}
		if table != "" && !strings.EqualFold(c.TableName, table) {
			continue
		}
		index = i + 1
		matches++
	}
	switch matches {
	case 1:
		return index, nil
	case 0:
		return 0, &ColumnAccessError{Name: name, Count: len(rs.columns), SQL: rs.sql}
	default:
		return 0, &ColumnAccessError{Name: name, Ambiguous: true, Count: len(rs.columns), SQL: rs.sql}
	}
}

// UpdateValue always returns a *MutationError.
func (rs *RowSet) UpdateValue(col any, value any) error {
	return &MutationError{Op: "update value"}
}

// UpdateRow always returns a *MutationError.
func (rs *RowSet) UpdateRow() error {
	return &MutationError{Op: "update row"}
}

// InsertRow always returns a *MutationError.
func (rs *RowSet) InsertRow() error {
	return &MutationError{Op: "insert row"}
}

// DeleteRow always returns a *MutationError.
func (rs *RowSet) DeleteRow() error {
	return &MutationError{Op: "delete row"}
}
