package models

import "time"

// SubmissionRecord is one accepted submission in the append-only ledger.
// Rows are immutable after insert; the retention job deletes them once they
// fall out of the retention window.
type SubmissionRecord struct {
	ID          string    `json:"id"`
	DeviceID    string    `json:"device_id"`
	SubmittedAt time.Time `json:"submitted_at"`

	Name     string `json:"name,omitempty"`
	MemberID string `json:"member_id,omitempty"`
}

// Submission is the payload a visitor hands over when submitting the form.
type Submission struct {
	Name     string `json:"name,omitempty"`
	MemberID string `json:"member_id,omitempty"`
}

// FormPayload is the full attendance form as posted by the gate page.
// SubjectName and WeekNumber are only present on the extended form shape.
type FormPayload struct {
	SubjectName string `json:"subjectName,omitempty"`
	Name        string `json:"name"`
	MemberID    string `json:"id"`
	WeekNumber  string `json:"weekNumber,omitempty"`
}

// Submission narrows the form down to the fields the ledger records.
func (p FormPayload) Submission() Submission {
	return Submission{
		Name:     p.Name,
		MemberID: p.MemberID,
	}
}

// CooldownStatus is derived, never stored: how long a device still has to
// wait before it may submit again. Remaining is clamped at zero.
type CooldownStatus struct {
	InCooldown bool          `json:"inCooldown"`
	Remaining  time.Duration `json:"remaining"`
}

// SubmitOutcome tags the result of a ledger submit so callers can tell a
// policy rejection apart from an infrastructure failure.
type SubmitOutcome string

const (
	SubmitAccepted SubmitOutcome = "accepted"
	SubmitRejected SubmitOutcome = "rejected"
	SubmitFailed   SubmitOutcome = "failed"
)

// SubmitResult is what a ledger submit hands back. On SubmitAccepted, Record
// and CooldownUntil are set. On SubmitRejected, Remaining carries the time
// left in the active cooldown. On SubmitFailed the accompanying error carries
// the cause.
type SubmitResult struct {
	Outcome       SubmitOutcome     `json:"outcome"`
	Record        *SubmissionRecord `json:"record,omitempty"`
	CooldownUntil time.Time         `json:"cooldownUntil,omitempty"`
	Remaining     time.Duration     `json:"remaining,omitempty"`
}
