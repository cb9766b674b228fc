package llm

import "fmt"

// ModelUnreachableError indicates a transport-level failure reaching the
// model endpoint.
type ModelUnreachableError struct {
	Endpoint string
	Err      error
}

func (e *ModelUnreachableError) Error() string {
	return fmt.Sprintf("model endpoint %s unreachable: %v", e.Endpoint, e.Err)
}

func (e *ModelUnreachableError) Unwrap() error { return e.Err }

// ModelError indicates the endpoint was reachable but returned a non-success
// status or a malformed payload.
type ModelError struct {
	StatusCode int
	Detail     string
}

func (e *ModelError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("model returned status %d: %s", e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("model error: %s", e.Detail)
}
