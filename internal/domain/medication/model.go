// Package medication implements the patient-facing medication roster and the
// daily intake log behind it.
package medication

import (
	"time"

	"github.com/google/uuid"

	"github.com/medsbuddy/medsbuddy/internal/domain/adherence"
)

// Frequency values a medication can carry. Every frequency, as_needed
// included, records a scheduled_time that missed-dose detection evaluates.
const (
	FrequencyOnceDaily       = "once_daily"
	FrequencyTwiceDaily      = "twice_daily"
	FrequencyThreeTimesDaily = "three_times_daily"
	FrequencyAsNeeded        = "as_needed"
)

var validFrequencies = map[string]bool{
	FrequencyOnceDaily:       true,
	FrequencyTwiceDaily:      true,
	FrequencyThreeTimesDaily: true,
	FrequencyAsNeeded:        true,
}

// Field length limits enforced at the service layer and mirrored by schema
// CHECK constraints.
const (
	MaxNameLen   = 100
	MaxDosageLen = 50
	MaxNotesLen  = 500
)

// Medication maps to the medications table.
type Medication struct {
	ID            uuid.UUID `db:"id" json:"id"`
	UserID        uuid.UUID `db:"user_id" json:"user_id"`
	Name          string    `db:"name" json:"name"`
	Dosage        string    `db:"dosage" json:"dosage"`
	Frequency     string    `db:"frequency" json:"frequency"`
	ScheduledTime string    `db:"scheduled_time" json:"scheduled_time"`
	Notes         *string   `db:"notes" json:"notes,omitempty"`
	IsActive      bool      `db:"is_active" json:"is_active"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// MedicationLog maps to the medication_logs table. The unique
// (medication_id, taken_date) constraint enforces one intake record per
// medication per day.
type MedicationLog struct {
	ID           uuid.UUID `db:"id" json:"id"`
	MedicationID uuid.UUID `db:"medication_id" json:"medication_id"`
	UserID       uuid.UUID `db:"user_id" json:"user_id"`
	TakenDate    time.Time `db:"taken_date" json:"taken_date"`
	TakenAt      time.Time `db:"taken_at" json:"taken_at"`
	Notes        *string   `db:"notes" json:"notes,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Status is a medication annotated with its dose state for one day. It is
// derived, never persisted.
type Status struct {
	Medication
	State      adherence.State `json:"state"`
	TakenToday bool            `json:"taken_today"`
	LogID      *uuid.UUID      `json:"log_id,omitempty"`
}

// TodayView is the response shape of the daily dashboard: every active
// medication with its state plus the aggregate summary.
type TodayView struct {
	Date        string            `json:"date"`
	Medications []Status          `json:"medications"`
	Summary     adherence.Summary `json:"summary"`
}
