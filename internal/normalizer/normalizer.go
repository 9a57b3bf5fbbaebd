// Package normalizer canonicalizes raw submission fields before any
// validation, hashing, or history check touches them.
package normalizer

import "strings"

// Fields holds the canonical form of a submission's text fields.
type Fields struct {
	Name  string
	Email string
	Body  string
}

// Normalize trims surrounding whitespace from every field and lower-cases
// the email address. It is a pure transform with no failure mode.
func Normalize(name, email, body string) Fields {
	return Fields{
		Name:  strings.TrimSpace(name),
		Email: strings.ToLower(strings.TrimSpace(email)),
		Body:  strings.TrimSpace(body),
	}
}
