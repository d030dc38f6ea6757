package medication

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/medsbuddy/medsbuddy/internal/domain/adherence"
)

// -- Mock Repositories --

type mockRepo struct {
	meds map[uuid.UUID]*Medication
}

func newMockRepo() *mockRepo {
	return &mockRepo{meds: make(map[uuid.UUID]*Medication)}
}

func (m *mockRepo) Create(_ context.Context, med *Medication) error {
	med.ID = uuid.New()
	med.IsActive = true
	med.CreatedAt = time.Now()
	med.UpdatedAt = time.Now()
	copied := *med
	m.meds[med.ID] = &copied
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Medication, error) {
	med, ok := m.meds[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *med
	return &copied, nil
}

func (m *mockRepo) Update(_ context.Context, med *Medication) error {
	existing, ok := m.meds[med.ID]
	if !ok || !existing.IsActive {
		return ErrNotFound
	}
	med.IsActive = existing.IsActive
	med.UpdatedAt = time.Now()
	copied := *med
	m.meds[med.ID] = &copied
	return nil
}

func (m *mockRepo) Deactivate(_ context.Context, id uuid.UUID) error {
	med, ok := m.meds[id]
	if !ok || !med.IsActive {
		return ErrNotFound
	}
	med.IsActive = false
	return nil
}

func (m *mockRepo) ListActiveByUser(_ context.Context, userID uuid.UUID) ([]*Medication, error) {
	var result []*Medication
	for _, med := range m.meds {
		if med.UserID == userID && med.IsActive {
			copied := *med
			result = append(result, &copied)
		}
	}
	return result, nil
}

func (m *mockRepo) ListByUser(_ context.Context, userID uuid.UUID, limit, offset int) ([]*Medication, int, error) {
	all, _ := m.ListActiveByUser(context.Background(), userID)
	total := len(all)
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

type mockLogRepo struct {
	logs map[uuid.UUID]*MedicationLog
}

func newMockLogRepo() *mockLogRepo {
	return &mockLogRepo{logs: make(map[uuid.UUID]*MedicationLog)}
}

func (m *mockLogRepo) Create(_ context.Context, l *MedicationLog) error {
	for _, existing := range m.logs {
		if existing.MedicationID == l.MedicationID && existing.TakenDate.Equal(l.TakenDate) {
			return ErrAlreadyLogged
		}
	}
	l.ID = uuid.New()
	l.CreatedAt = time.Now()
	copied := *l
	m.logs[l.ID] = &copied
	return nil
}

func (m *mockLogRepo) ListByUserAndDate(_ context.Context, userID uuid.UUID, date time.Time) ([]*MedicationLog, error) {
	var result []*MedicationLog
	for _, l := range m.logs {
		if l.UserID == userID && l.TakenDate.Equal(date) {
			copied := *l
			result = append(result, &copied)
		}
	}
	return result, nil
}

type mockSettings struct {
	window int
	err    error
}

func (m *mockSettings) WindowMinutes(_ context.Context, _ uuid.UUID) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	return m.window, nil
}

func newTestService() (*Service, *mockRepo, *mockLogRepo) {
	meds := newMockRepo()
	logs := newMockLogRepo()
	svc := NewService(meds, logs, &mockSettings{window: 60})
	return svc, meds, logs
}

func fixedTime(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse("2006-01-02 15:04:05", value)
	if err != nil {
		t.Fatalf("parse time %q: %v", value, err)
	}
	return parsed
}

func validMedication() *Medication {
	return &Medication{
		Name:          "Metformin",
		Dosage:        "500mg",
		Frequency:     FrequencyOnceDaily,
		ScheduledTime: "08:00",
	}
}

// -- Create --

func TestCreate_Valid(t *testing.T) {
	svc, meds, _ := newTestService()
	userID := uuid.New()

	m := validMedication()
	if err := svc.Create(context.Background(), userID, m); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.UserID != userID {
		t.Errorf("expected user id %s, got %s", userID, m.UserID)
	}
	if !m.IsActive {
		t.Error("expected new medication to be active")
	}
	if len(meds.meds) != 1 {
		t.Errorf("expected 1 stored medication, got %d", len(meds.meds))
	}
}

func TestCreate_SanitizesFreeText(t *testing.T) {
	svc, _, _ := newTestService()

	notes := "  before <b>meals</b> "
	m := validMedication()
	m.Name = "  <script>Metformin</script>  "
	m.Dosage = " 500mg<br> "
	m.Notes = &notes
	if err := svc.Create(context.Background(), uuid.New(), m); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Name != "scriptMetformin/script" {
		t.Errorf("name not sanitized: %q", m.Name)
	}
	if m.Dosage != "500mgbr" {
		t.Errorf("dosage not sanitized: %q", m.Dosage)
	}
	if *m.Notes != "before bmeals/b" {
		t.Errorf("notes not sanitized: %q", *m.Notes)
	}
}

func TestCreate_DefaultsFrequency(t *testing.T) {
	svc, _, _ := newTestService()

	m := validMedication()
	m.Frequency = ""
	if err := svc.Create(context.Background(), uuid.New(), m); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Frequency != FrequencyOnceDaily {
		t.Errorf("expected default frequency once_daily, got %s", m.Frequency)
	}
}

func TestCreate_Validation(t *testing.T) {
	longNotes := string(make([]byte, MaxNotesLen+1))

	tests := []struct {
		name   string
		mutate func(*Medication)
	}{
		{"missing name", func(m *Medication) { m.Name = "" }},
		{"name too long", func(m *Medication) { m.Name = string(make([]byte, MaxNameLen+1)) }},
		{"missing dosage", func(m *Medication) { m.Dosage = "" }},
		{"dosage too long", func(m *Medication) { m.Dosage = string(make([]byte, MaxDosageLen+1)) }},
		{"bad frequency", func(m *Medication) { m.Frequency = "hourly" }},
		{"bad scheduled time", func(m *Medication) { m.ScheduledTime = "25:99" }},
		{"missing scheduled time", func(m *Medication) { m.ScheduledTime = "" }},
		{"notes too long", func(m *Medication) { m.Notes = &longNotes }},
	}

	svc, _, _ := newTestService()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := validMedication()
			tt.mutate(m)
			err := svc.Create(context.Background(), uuid.New(), m)
			if !errors.Is(err, ErrInvalid) {
				t.Errorf("expected ErrInvalid, got %v", err)
			}
		})
	}
}

// -- Update / Deactivate --

func TestUpdate_OwnMedication(t *testing.T) {
	svc, _, _ := newTestService()
	userID := uuid.New()

	m := validMedication()
	if err := svc.Create(context.Background(), userID, m); err != nil {
		t.Fatalf("create: %v", err)
	}

	changed := validMedication()
	changed.Name = "Metformin XR"
	updated, err := svc.Update(context.Background(), userID, m.ID, changed)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Name != "Metformin XR" {
		t.Errorf("expected updated name, got %s", updated.Name)
	}
}

func TestUpdate_OtherUsersMedicationIsNotFound(t *testing.T) {
	svc, _, _ := newTestService()
	owner := uuid.New()

	m := validMedication()
	if err := svc.Create(context.Background(), owner, m); err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err := svc.Update(context.Background(), uuid.New(), m.ID, validMedication())
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDeactivate_KeepsLogs(t *testing.T) {
	svc, meds, logs := newTestService()
	userID := uuid.New()

	m := validMedication()
	if err := svc.Create(context.Background(), userID, m); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.MarkTaken(context.Background(), userID, m.ID, nil); err != nil {
		t.Fatalf("mark taken: %v", err)
	}

	if err := svc.Deactivate(context.Background(), userID, m.ID); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	if meds.meds[m.ID].IsActive {
		t.Error("expected medication to be inactive")
	}
	if len(logs.logs) != 1 {
		t.Error("expected log history to survive deactivation")
	}
}

func TestDeactivate_OtherUsersMedicationIsNotFound(t *testing.T) {
	svc, _, _ := newTestService()
	owner := uuid.New()

	m := validMedication()
	if err := svc.Create(context.Background(), owner, m); err != nil {
		t.Fatalf("create: %v", err)
	}

	err := svc.Deactivate(context.Background(), uuid.New(), m.ID)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

// -- MarkTaken --

func TestMarkTaken_Once(t *testing.T) {
	svc, _, _ := newTestService()
	userID := uuid.New()
	svc.now = func() time.Time { return fixedTime(t, "2026-03-10 09:30:00") }

	m := validMedication()
	if err := svc.Create(context.Background(), userID, m); err != nil {
		t.Fatalf("create: %v", err)
	}

	log, err := svc.MarkTaken(context.Background(), userID, m.ID, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if log.MedicationID != m.ID {
		t.Errorf("expected medication id %s, got %s", m.ID, log.MedicationID)
	}
	wantDate := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	if !log.TakenDate.Equal(wantDate) {
		t.Errorf("expected taken date %v, got %v", wantDate, log.TakenDate)
	}
}

func TestMarkTaken_TwiceSameDayConflicts(t *testing.T) {
	svc, _, _ := newTestService()
	userID := uuid.New()
	svc.now = func() time.Time { return fixedTime(t, "2026-03-10 09:30:00") }

	m := validMedication()
	if err := svc.Create(context.Background(), userID, m); err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.MarkTaken(context.Background(), userID, m.ID, nil); err != nil {
		t.Fatalf("first mark: %v", err)
	}
	_, err := svc.MarkTaken(context.Background(), userID, m.ID, nil)
	if !errors.Is(err, ErrAlreadyLogged) {
		t.Errorf("expected ErrAlreadyLogged, got %v", err)
	}
}

func TestMarkTaken_NextDayAllowed(t *testing.T) {
	svc, _, _ := newTestService()
	userID := uuid.New()

	m := validMedication()
	if err := svc.Create(context.Background(), userID, m); err != nil {
		t.Fatalf("create: %v", err)
	}

	svc.now = func() time.Time { return fixedTime(t, "2026-03-10 09:30:00") }
	if _, err := svc.MarkTaken(context.Background(), userID, m.ID, nil); err != nil {
		t.Fatalf("day one: %v", err)
	}

	svc.now = func() time.Time { return fixedTime(t, "2026-03-11 08:15:00") }
	if _, err := svc.MarkTaken(context.Background(), userID, m.ID, nil); err != nil {
		t.Errorf("expected next-day log to succeed, got %v", err)
	}
}

func TestMarkTaken_InactiveMedication(t *testing.T) {
	svc, _, _ := newTestService()
	userID := uuid.New()

	m := validMedication()
	if err := svc.Create(context.Background(), userID, m); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.Deactivate(context.Background(), userID, m.ID); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	_, err := svc.MarkTaken(context.Background(), userID, m.ID, nil)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestMarkTaken_OtherUsersMedication(t *testing.T) {
	svc, _, _ := newTestService()
	owner := uuid.New()

	m := validMedication()
	if err := svc.Create(context.Background(), owner, m); err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err := svc.MarkTaken(context.Background(), uuid.New(), m.ID, nil)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

// -- TodayStatuses --

func TestTodayStatuses(t *testing.T) {
	svc, _, _ := newTestService()
	userID := uuid.New()
	svc.now = func() time.Time { return fixedTime(t, "2026-03-10 10:00:00") }

	taken := validMedication() // 08:00, will be logged
	missed := validMedication()
	missed.Name = "Lisinopril"
	missed.ScheduledTime = "08:30" // 60 min window expired by 10:00
	pending := validMedication()
	pending.Name = "Atorvastatin"
	pending.ScheduledTime = "21:00"
	asNeeded := validMedication() // evaluated like any other schedule
	asNeeded.Name = "Ibuprofen"
	asNeeded.Frequency = FrequencyAsNeeded
	asNeeded.ScheduledTime = "08:00" // window also expired by 10:00

	for _, m := range []*Medication{taken, missed, pending, asNeeded} {
		if err := svc.Create(context.Background(), userID, m); err != nil {
			t.Fatalf("create %s: %v", m.Name, err)
		}
	}
	if _, err := svc.MarkTaken(context.Background(), userID, taken.ID, nil); err != nil {
		t.Fatalf("mark taken: %v", err)
	}

	view, err := svc.TodayStatuses(context.Background(), userID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if view.Date != "2026-03-10" {
		t.Errorf("expected date 2026-03-10, got %s", view.Date)
	}
	if len(view.Medications) != 4 {
		t.Fatalf("expected 4 statuses, got %d", len(view.Medications))
	}

	states := make(map[string]adherence.State)
	for _, s := range view.Medications {
		states[s.Name] = s.State
	}
	if states["Metformin"] != adherence.StateTaken {
		t.Errorf("expected Metformin taken, got %s", states["Metformin"])
	}
	if states["Lisinopril"] != adherence.StateMissed {
		t.Errorf("expected Lisinopril missed, got %s", states["Lisinopril"])
	}
	if states["Atorvastatin"] != adherence.StatePending {
		t.Errorf("expected Atorvastatin pending, got %s", states["Atorvastatin"])
	}
	if states["Ibuprofen"] != adherence.StateMissed {
		t.Errorf("expected as-needed Ibuprofen missed, got %s", states["Ibuprofen"])
	}

	sum := view.Summary
	if sum.Total != 4 || sum.Taken != 1 || sum.Remaining != 3 {
		t.Errorf("unexpected summary %+v", sum)
	}
	if sum.Percent != 25 {
		t.Errorf("expected 25%%, got %d", sum.Percent)
	}
	if sum.AllDone {
		t.Error("expected AllDone false")
	}
}

func TestTodayStatuses_Empty(t *testing.T) {
	svc, _, _ := newTestService()

	view, err := svc.TodayStatuses(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(view.Medications) != 0 {
		t.Errorf("expected no statuses, got %d", len(view.Medications))
	}
	if view.Summary.Total != 0 || view.Summary.Percent != 0 || view.Summary.AllDone {
		t.Errorf("expected zero summary, got %+v", view.Summary)
	}
}
