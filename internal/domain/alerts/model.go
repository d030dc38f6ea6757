// Package alerts implements the missed-dose batch job: scan every active
// medication whose owner has a caretaker on file, work out which doses are
// past their reminder window without an intake log, and email one digest per
// patient to their caretaker.
package alerts

import (
	"github.com/google/uuid"
)

// Candidate is one active medication joined with its owner's alert settings.
type Candidate struct {
	MedicationID   uuid.UUID
	UserID         uuid.UUID
	Name           string
	Dosage         string
	ScheduledTime  string
	PatientEmail   string
	CaretakerEmail string
	WindowMinutes  int
}

// DigestItem is a single missed dose inside a digest.
type DigestItem struct {
	Name          string
	Dosage        string
	ScheduledTime string
}

// Digest is the per-patient alert delivered to one caretaker.
type Digest struct {
	PatientEmail   string
	CaretakerEmail string
	Date           string
	Items          []DigestItem
}

// Result is the tally one job run reports back.
type Result struct {
	Checked  int `json:"checked"`
	Missed   int `json:"missed"`
	Notified int `json:"notified"`
}
