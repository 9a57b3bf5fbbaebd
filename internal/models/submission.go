package models

import "time"

// Submission is the persisted entity. Submissions are append-only: once
// written they are never mutated or deleted, only consulted as history by
// later duplicate and rate-limit checks.
type Submission struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Body           string    `json:"body"`
	ContentHash    string    `json:"content_hash"`
	SourceIdentity string    `json:"source_identity"`
	CreatedAt      time.Time `json:"created_at"`
}

// SubmissionRequest is the wire format accepted on POST /contact.
type SubmissionRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}
