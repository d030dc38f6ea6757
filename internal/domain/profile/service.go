package profile

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/google/uuid"

	"github.com/medsbuddy/medsbuddy/internal/domain/adherence"
	"github.com/medsbuddy/medsbuddy/internal/platform/auth"
)

// ErrInvalid marks validation failures so handlers can map them to 422.
var ErrInvalid = errors.New("invalid settings")

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

const defaultWindowMinutes = 60

type Service struct {
	profiles Repository
}

func NewService(profiles Repository) *Service {
	return &Service{profiles: profiles}
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Profile, error) {
	return s.profiles.GetByID(ctx, id)
}

// EnsureProfile provisions a profile row on first login using the identity
// from the auth token. Existing profiles are returned unchanged.
func (s *Service) EnsureProfile(ctx context.Context, id uuid.UUID, email, role string) (*Profile, error) {
	existing, err := s.profiles.GetByID(ctx, id)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	if role != auth.RolePatient && role != auth.RoleCaretaker {
		role = auth.RolePatient
	}
	p := &Profile{
		ID:            id,
		Email:         email,
		Role:          role,
		WindowMinutes: defaultWindowMinutes,
	}
	if err := s.profiles.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// UpdateSettings saves the caretaker address and reminder window. An empty
// caretaker email clears the setting and stops alerts for this patient.
func (s *Service) UpdateSettings(ctx context.Context, id uuid.UUID, caretakerEmail string, windowMinutes int) (*Profile, error) {
	var email *string
	if caretakerEmail != "" {
		if !emailPattern.MatchString(caretakerEmail) {
			return nil, fmt.Errorf("%w: caretaker_email is not a valid address", ErrInvalid)
		}
		email = &caretakerEmail
	}

	if windowMinutes < adherence.MinWindowMinutes || windowMinutes > adherence.MaxWindowMinutes {
		return nil, fmt.Errorf("%w: notification_window_minutes must be between %d and %d",
			ErrInvalid, adherence.MinWindowMinutes, adherence.MaxWindowMinutes)
	}

	return s.profiles.UpdateSettings(ctx, id, email, windowMinutes)
}

// WindowMinutes satisfies the medication domain's SettingsSource. A missing
// profile falls back to the default window rather than failing the dashboard.
func (s *Service) WindowMinutes(ctx context.Context, userID uuid.UUID) (int, error) {
	p, err := s.profiles.GetByID(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return defaultWindowMinutes, nil
	}
	if err != nil {
		return 0, err
	}
	return p.WindowMinutes, nil
}

// PatientsOf returns the patient profiles that list the given caretaker
// address. Rows with a non-patient role are excluded even if they carry a
// caretaker email.
func (s *Service) PatientsOf(ctx context.Context, caretakerEmail string) ([]*Profile, error) {
	profiles, err := s.profiles.ListPatientsByCaretakerEmail(ctx, caretakerEmail)
	if err != nil {
		return nil, err
	}
	patients := profiles[:0]
	for _, p := range profiles {
		if p.Role == auth.RolePatient {
			patients = append(patients, p)
		}
	}
	return patients, nil
}
