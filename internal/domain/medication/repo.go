package medication

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Sentinel errors shared by repositories and the service.
var (
	ErrNotFound      = errors.New("medication not found")
	ErrAlreadyLogged = errors.New("medication already logged for this date")
)

type Repository interface {
	Create(ctx context.Context, m *Medication) error
	GetByID(ctx context.Context, id uuid.UUID) (*Medication, error)
	Update(ctx context.Context, m *Medication) error
	Deactivate(ctx context.Context, id uuid.UUID) error
	ListActiveByUser(ctx context.Context, userID uuid.UUID) ([]*Medication, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Medication, int, error)
}

type LogRepository interface {
	// Create returns ErrAlreadyLogged when a log already exists for the
	// medication and date.
	Create(ctx context.Context, l *MedicationLog) error
	ListByUserAndDate(ctx context.Context, userID uuid.UUID, date time.Time) ([]*MedicationLog, error)
}
