// Package caretaker serves the remote adherence dashboard for caretakers.
// A caretaker sees the daily statuses of every patient who listed their
// email address in profile settings.
package caretaker

import (
	"context"

	"github.com/google/uuid"

	"github.com/medsbuddy/medsbuddy/internal/domain/medication"
	"github.com/medsbuddy/medsbuddy/internal/domain/profile"
)

// PatientOverview is one patient's daily dashboard as seen by the caretaker.
type PatientOverview struct {
	PatientID    uuid.UUID             `json:"patient_id"`
	PatientEmail string                `json:"patient_email"`
	Today        *medication.TodayView `json:"today"`
}

// MedicationViewer builds a patient's daily dashboard. Implemented by the
// medication service.
type MedicationViewer interface {
	TodayStatuses(ctx context.Context, userID uuid.UUID) (*medication.TodayView, error)
}

// PatientSource resolves the patients observed by a caretaker. Implemented by
// the profile service.
type PatientSource interface {
	PatientsOf(ctx context.Context, caretakerEmail string) ([]*profile.Profile, error)
}

type Service struct {
	patients PatientSource
	meds     MedicationViewer
}

func NewService(patients PatientSource, meds MedicationViewer) *Service {
	return &Service{patients: patients, meds: meds}
}

// PatientOverviews returns one overview per observed patient, ordered by
// patient email. Each call re-reads everything; the caretaker view holds no
// state between polls.
func (s *Service) PatientOverviews(ctx context.Context, caretakerEmail string) ([]PatientOverview, error) {
	patients, err := s.patients.PatientsOf(ctx, caretakerEmail)
	if err != nil {
		return nil, err
	}

	overviews := make([]PatientOverview, 0, len(patients))
	for _, p := range patients {
		today, err := s.meds.TodayStatuses(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		overviews = append(overviews, PatientOverview{
			PatientID:    p.ID,
			PatientEmail: p.Email,
			Today:        today,
		})
	}
	return overviews, nil
}
