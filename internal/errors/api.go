package apierrors

import "fmt"

// APIError carries an HTTP status and a machine-readable code for the JSON
// error envelope.
type APIError struct {
	Status int
	Code   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Code)
}

func NewAPIError(status int, code string) *APIError {
	return &APIError{Status: status, Code: code}
}
