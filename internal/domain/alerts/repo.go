package alerts

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Source is the read side of the batch job.
type Source interface {
	// ActiveWithCaretaker returns every active medication whose owner has a
	// caretaker email on file.
	ActiveWithCaretaker(ctx context.Context) ([]Candidate, error)
	// TakenMedicationIDs returns which of the given medications have an
	// intake log for the date.
	TakenMedicationIDs(ctx context.Context, medicationIDs []uuid.UUID, date time.Time) (map[uuid.UUID]bool, error)
}
