package query

import "fmt"

// StaleQueryError reports a mutation attempted on a Query whose cursor has
// already materialized. The tree and the cursor would no longer agree, so
// the mutation is refused before any database round-trip.
type StaleQueryError struct {
	Op string
}

func (e *StaleQueryError) Error() string {
	return fmt.Sprintf("%s: query already materialized its cursor; build a new query instead", e.Op)
}
