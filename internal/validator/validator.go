// Package validator enforces required-field and format constraints on
// normalized submissions.
package validator

import (
	"fmt"
	"net/mail"
	"strings"

	"github.com/formgate-io/contact-gate/internal/normalizer"
)

// Reason classifies why a field failed validation.
type Reason string

const (
	ReasonMissing Reason = "missing"
	ReasonFormat  Reason = "format"
)

// Violation records a single failed constraint.
type Violation struct {
	Field  string
	Reason Reason
}

// Error reports every violated field found in one pass, never just the first.
type Error struct {
	Violations []Violation
}

func (e *Error) Error() string {
	fields := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		fields[i] = v.Field
	}
	return fmt.Sprintf("invalid submission: %s", strings.Join(fields, ", "))
}

// Fields returns the violated field names in check order.
func (e *Error) Fields() []string {
	fields := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		fields[i] = v.Field
	}
	return fields
}

// Validate checks that name, email, and body are present and that the email
// has a well-formed address shape. All violations are collected before
// returning. Returns nil when the submission is acceptable.
func Validate(f normalizer.Fields) error {
	var violations []Violation

	if f.Name == "" {
		violations = append(violations, Violation{Field: "name", Reason: ReasonMissing})
	}
	if f.Email == "" {
		violations = append(violations, Violation{Field: "email", Reason: ReasonMissing})
	} else if !validEmail(f.Email) {
		violations = append(violations, Violation{Field: "email", Reason: ReasonFormat})
	}
	if f.Body == "" {
		violations = append(violations, Violation{Field: "message", Reason: ReasonMissing})
	}

	if len(violations) > 0 {
		return &Error{Violations: violations}
	}
	return nil
}

// validEmail accepts a bare RFC 5322 address. Display names and angle
// brackets are rejected so the stored address is always the plain form.
func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	if err != nil {
		return false
	}
	return addr.Address == email
}
