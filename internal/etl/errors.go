package etl

import "fmt"

// ValidationError is returned for malformed job submissions. The job is
// never created.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
