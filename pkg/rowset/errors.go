package rowset

import "fmt"

// CursorStateError reports navigation or value access outside the cursor's
// legal position range.
type CursorStateError struct {
	Op       string
	Position int
	RowCount int
}

func (e *CursorStateError) Error() string {
	return fmt.Sprintf("invalid cursor state: %s at position %d of %d rows", e.Op, e.Position, e.RowCount)
}

// ColumnAccessError reports a column lookup that failed: an unknown or
// ambiguous label, or an index outside [1, Count]. SQL carries the statement
// that produced the row set, when known.
type ColumnAccessError struct {
	Name      string
	Index     int
	Count     int
	Ambiguous bool
	SQL       string
}

func (e *ColumnAccessError) Error() string {
	switch {
	case e.Ambiguous:
		msg := fmt.Sprintf("ambiguous column %q", e.Name)
		if e.SQL != "" {
			msg += " in result of: " + e.SQL
		}
		return msg
	case e.Name != "":
		return fmt.Sprintf("no column %q", e.Name)
	default:
		return fmt.Sprintf("column index %d out of range [1, %d]", e.Index, e.Count)
	}
}

// MutationError reports a write attempted on the read-only row set. The
// limitation is permanent: a RowSet is a snapshot, not a live view.
type MutationError struct {
	Op string
}

func (e *MutationError) Error() string {
	return fmt.Sprintf("%s: row set is read-only", e.Op)
}

// ConversionError reports a value that could not be coerced to the requested
// target type. The message names both the stored value's runtime kind and
// the target.
type ConversionError struct {
	Value  any
	Target string
	Err    error
}

func (e *ConversionError) Error() string {
	msg := fmt.Sprintf("cannot convert %T (%v) to %s", e.Value, e.Value, e.Target)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ConversionError) Unwrap() error { return e.Err }
