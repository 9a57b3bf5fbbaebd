package logging

import "log/slog"

// Common field names for consistent logging across the service.
const (
	FieldService      = "service"
	FieldIP           = "ip"
	FieldMethod       = "method"
	FieldPath         = "path"
	FieldStatus       = "status"
	FieldDuration     = "duration_ms"
	FieldError        = "error"
	FieldSubmissionID = "submission_id"
	FieldContentHash  = "content_hash"
	FieldScope        = "scope"
	FieldChannel      = "channel"
)

// Service returns a slog attribute for the service name.
func Service(name string) slog.Attr {
	return slog.String(FieldService, name)
}

// IP returns a slog attribute for the caller's source IP.
func IP(ip string) slog.Attr {
	return slog.String(FieldIP, ip)
}

// Method returns a slog attribute for the HTTP method.
func Method(method string) slog.Attr {
	return slog.String(FieldMethod, method)
}

// Path returns a slog attribute for the HTTP path.
func Path(path string) slog.Attr {
	return slog.String(FieldPath, path)
}

// Status returns a slog attribute for the HTTP status code.
func Status(code int) slog.Attr {
	return slog.Int(FieldStatus, code)
}

// Duration returns a slog attribute for duration in milliseconds.
func Duration(ms int64) slog.Attr {
	return slog.Int64(FieldDuration, ms)
}

// Error returns a slog attribute for an error.
func Error(err error) slog.Attr {
	return slog.String(FieldError, err.Error())
}

// SubmissionID returns a slog attribute for a stored submission ID.
func SubmissionID(id string) slog.Attr {
	return slog.String(FieldSubmissionID, id)
}

// ContentHash returns a slog attribute for a submission content hash.
func ContentHash(hash string) slog.Attr {
	return slog.String(FieldContentHash, hash)
}

// Scope returns a slog attribute for a rate-limit scope.
func Scope(scope string) slog.Attr {
	return slog.String(FieldScope, scope)
}

// Channel returns a slog attribute for a notification channel type.
func Channel(name string) slog.Attr {
	return slog.String(FieldChannel, name)
}
