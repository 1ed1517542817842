package utils

// APIError is a request-scoped failure with the HTTP status it should map to.
// Handlers return it up the chain; the error-handler middleware is the single
// place that turns it into a response.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

func NewAPIError(statusCode int, message string) *APIError {
	return &APIError{StatusCode: statusCode, Message: message}
}
