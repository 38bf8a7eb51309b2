package domain

import "time"

// SubmissionStatus summarizes how much of a submission reached the platform.
type SubmissionStatus string

const (
	SubmissionApplied SubmissionStatus = "applied"
	SubmissionPartial SubmissionStatus = "partial"
	SubmissionFailed  SubmissionStatus = "failed"
	// Every write was applied but the profile could not be described.
	SubmissionUnverified SubmissionStatus = "unverified"
)

// Submission is the record of statements sent for one profile.
type Submission struct {
	ID            string            `json:"id"`
	QualifiedName string            `json:"qualified_name"`
	Status        SubmissionStatus  `json:"status"`
	Error         string            `json:"error,omitempty"`
	Statements    []StatementRecord `json:"statements"`
	CreatedAt     time.Time         `json:"created_at"`
}

// StatementRecord is one statement of a submission and whether it was applied.
type StatementRecord struct {
	Position  int    `json:"position"`
	Statement string `json:"statement"`
	Applied   bool   `json:"applied"`
}
