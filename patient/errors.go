package patient

import "fmt"

// ValidationError reports a stored entry that does not have the Record shape.
// Index is the 0-based position of the entry, Field the path inside it.
type ValidationError struct {
	Index  int
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("patient record at index %d: %s %s", e.Index, e.Field, e.Reason)
}
