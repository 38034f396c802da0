package topdeck

import "fmt"

const serviceName = "topdeck"

// ExternalServiceError is returned when the API responds with a non-2xx
// status or a structurally invalid payload. The status and a truncated body
// are preserved for diagnostics.
type ExternalServiceError struct {
	Service string
	Status  int
	Body    string
}

func (e *ExternalServiceError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: unexpected status %d: %s", e.Service, e.Status, e.Body)
	}
	return fmt.Sprintf("%s: %s", e.Service, e.Body)
}

// TimeoutError is returned when a call exceeds its deadline. Distinct from
// ExternalServiceError so callers can decide retryability.
type TimeoutError struct {
	Service string
	Op      string
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s: %s timed out", e.Service, e.Op)
}
