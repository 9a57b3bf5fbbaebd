package models

// AcceptedResponse is returned on a successful submission.
type AcceptedResponse struct {
	ID string `json:"id"`
}

// ValidationErrorResponse lists every violated field in one pass.
type ValidationErrorResponse struct {
	Errors []string `json:"errors"`
}

// RateLimitResponse carries the retry hint and the limit scope breached.
type RateLimitResponse struct {
	RetryAfterSeconds int64  `json:"retryAfterSeconds"`
	Scope             string `json:"scope"`
}

// ErrorResponse is the generic error body for conflict and internal errors.
type ErrorResponse struct {
	Error string `json:"error"`
}
