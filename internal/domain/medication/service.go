package medication

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/medsbuddy/medsbuddy/internal/domain/adherence"
)

// ErrInvalid marks validation failures so handlers can map them to 422.
var ErrInvalid = errors.New("invalid medication")

// SettingsSource resolves the reminder window a user has configured.
type SettingsSource interface {
	WindowMinutes(ctx context.Context, userID uuid.UUID) (int, error)
}

type Service struct {
	meds     Repository
	logs     LogRepository
	settings SettingsSource
	now      func() time.Time
}

func NewService(meds Repository, logs LogRepository, settings SettingsSource) *Service {
	return &Service{
		meds:     meds,
		logs:     logs,
		settings: settings,
		now:      time.Now,
	}
}

// DateOf truncates t to a calendar date suitable for the taken_date column.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// angleBrackets are stripped from free-text fields so stored values are
// safe to interpolate into notification bodies.
var angleBrackets = strings.NewReplacer("<", "", ">", "")

func cleanText(s string) string {
	return strings.TrimSpace(angleBrackets.Replace(s))
}

func validate(m *Medication) error {
	m.Name = cleanText(m.Name)
	m.Dosage = cleanText(m.Dosage)
	m.ScheduledTime = strings.TrimSpace(m.ScheduledTime)
	if m.Notes != nil {
		n := cleanText(*m.Notes)
		m.Notes = &n
	}
	if m.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalid)
	}
	if len(m.Name) > MaxNameLen {
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalid, MaxNameLen)
	}
	if m.Dosage == "" {
		return fmt.Errorf("%w: dosage is required", ErrInvalid)
	}
	if len(m.Dosage) > MaxDosageLen {
		return fmt.Errorf("%w: dosage exceeds %d characters", ErrInvalid, MaxDosageLen)
	}
	if m.Frequency == "" {
		m.Frequency = FrequencyOnceDaily
	}
	if !validFrequencies[m.Frequency] {
		return fmt.Errorf("%w: invalid frequency: %s", ErrInvalid, m.Frequency)
	}
	if _, _, err := adherence.ParseClock(m.ScheduledTime); err != nil {
		return fmt.Errorf("%w: scheduled_time must be HH:MM", ErrInvalid)
	}
	if m.Notes != nil && len(*m.Notes) > MaxNotesLen {
		return fmt.Errorf("%w: notes exceed %d characters", ErrInvalid, MaxNotesLen)
	}
	return nil
}

func (s *Service) Create(ctx context.Context, userID uuid.UUID, m *Medication) error {
	m.UserID = userID
	if err := validate(m); err != nil {
		return err
	}
	return s.meds.Create(ctx, m)
}

// Update replaces a medication's editable fields. A medication belonging to
// another user is reported as not found rather than forbidden.
func (s *Service) Update(ctx context.Context, userID, id uuid.UUID, m *Medication) (*Medication, error) {
	existing, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	m.ID = existing.ID
	m.UserID = existing.UserID
	if err := validate(m); err != nil {
		return nil, err
	}
	if err := s.meds.Update(ctx, m); err != nil {
		return nil, err
	}
	return s.meds.GetByID(ctx, id)
}

// Deactivate soft-deletes a medication. History in medication_logs is kept.
func (s *Service) Deactivate(ctx context.Context, userID, id uuid.UUID) error {
	if _, err := s.owned(ctx, userID, id); err != nil {
		return err
	}
	return s.meds.Deactivate(ctx, id)
}

func (s *Service) List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Medication, int, error) {
	return s.meds.ListByUser(ctx, userID, limit, offset)
}

func (s *Service) ListActive(ctx context.Context, userID uuid.UUID) ([]*Medication, error) {
	return s.meds.ListActiveByUser(ctx, userID)
}

// MarkTaken records today's intake of a medication. Logging twice for the
// same date returns ErrAlreadyLogged.
func (s *Service) MarkTaken(ctx context.Context, userID, id uuid.UUID, notes *string) (*MedicationLog, error) {
	med, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if !med.IsActive {
		return nil, ErrNotFound
	}
	if notes != nil && len(*notes) > MaxNotesLen {
		return nil, fmt.Errorf("%w: notes exceed %d characters", ErrInvalid, MaxNotesLen)
	}

	now := s.now()
	log := &MedicationLog{
		MedicationID: med.ID,
		UserID:       userID,
		TakenDate:    DateOf(now),
		TakenAt:      now,
		Notes:        notes,
	}
	if err := s.logs.Create(ctx, log); err != nil {
		return nil, err
	}
	return log, nil
}

// TodayStatuses builds the daily dashboard: each active medication with its
// taken/pending/missed state and the aggregate summary.
func (s *Service) TodayStatuses(ctx context.Context, userID uuid.UUID) (*TodayView, error) {
	now := s.now()

	meds, err := s.meds.ListActiveByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	logs, err := s.logs.ListByUserAndDate(ctx, userID, DateOf(now))
	if err != nil {
		return nil, err
	}
	window, err := s.settings.WindowMinutes(ctx, userID)
	if err != nil {
		return nil, err
	}

	items := make([]adherence.Item, len(meds))
	for i, m := range meds {
		items[i] = adherence.Item{
			ID:            m.ID,
			ScheduledTime: m.ScheduledTime,
		}
	}
	logIDs := make(map[uuid.UUID]uuid.UUID, len(logs))
	for _, l := range logs {
		logIDs[l.MedicationID] = l.ID
	}

	annotated := adherence.Annotate(items, logIDs, window, now)

	statuses := make([]Status, len(meds))
	for i, m := range meds {
		statuses[i] = Status{
			Medication: *m,
			State:      annotated[i].State,
			TakenToday: annotated[i].State == adherence.StateTaken,
			LogID:      annotated[i].LogID,
		}
	}

	return &TodayView{
		Date:        now.Format("2006-01-02"),
		Medications: statuses,
		Summary:     adherence.Summarize(annotated),
	}, nil
}

func (s *Service) owned(ctx context.Context, userID, id uuid.UUID) (*Medication, error) {
	med, err := s.meds.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if med.UserID != userID {
		return nil, ErrNotFound
	}
	return med, nil
}
