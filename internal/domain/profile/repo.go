package profile

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("profile not found")

type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Profile, error)
	Create(ctx context.Context, p *Profile) error
	UpdateSettings(ctx context.Context, id uuid.UUID, caretakerEmail *string, windowMinutes int) (*Profile, error)
	// ListPatientsByCaretakerEmail returns every patient profile that names
	// the given address as its caretaker.
	ListPatientsByCaretakerEmail(ctx context.Context, email string) ([]*Profile, error)
}
