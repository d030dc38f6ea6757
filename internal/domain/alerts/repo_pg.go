package alerts

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type sourcePG struct{ pool *pgxpool.Pool }

func NewSourcePG(pool *pgxpool.Pool) Source {
	return &sourcePG{pool: pool}
}

func (r *sourcePG) ActiveWithCaretaker(ctx context.Context) ([]Candidate, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT m.id, m.user_id, m.name, m.dosage, m.scheduled_time,
		       p.email, p.caretaker_email, p.notification_window_minutes
		FROM medications m
		JOIN profiles p ON p.id = m.user_id
		WHERE m.is_active
		  AND p.caretaker_email IS NOT NULL
		  AND p.caretaker_email <> ''
		ORDER BY p.email, m.scheduled_time`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var candidates []Candidate
	for rows.Next() {
		var c Candidate
		if err := rows.Scan(&c.MedicationID, &c.UserID, &c.Name, &c.Dosage,
			&c.ScheduledTime, &c.PatientEmail, &c.CaretakerEmail,
			&c.WindowMinutes); err != nil {
			return nil, err
		}
		candidates = append(candidates, c)
	}
	return candidates, rows.Err()
}

func (r *sourcePG) TakenMedicationIDs(ctx context.Context, medicationIDs []uuid.UUID, date time.Time) (map[uuid.UUID]bool, error) {
	taken := make(map[uuid.UUID]bool, len(medicationIDs))
	if len(medicationIDs) == 0 {
		return taken, nil
	}

	rows, err := r.pool.Query(ctx, `
		SELECT medication_id FROM medication_logs
		WHERE medication_id = ANY($1) AND taken_date = $2`,
		medicationIDs, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		taken[id] = true
	}
	return taken, rows.Err()
}
