package medication

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

const medCols = `id, user_id, name, dosage, frequency, scheduled_time, notes,
	is_active, created_at, updated_at`

func scanMedication(row pgx.Row) (*Medication, error) {
	var m Medication
	err := row.Scan(&m.ID, &m.UserID, &m.Name, &m.Dosage, &m.Frequency,
		&m.ScheduledTime, &m.Notes, &m.IsActive, &m.CreatedAt, &m.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *repoPG) Create(ctx context.Context, m *Medication) error {
	m.ID = uuid.New()
	m.IsActive = true
	return r.pool.QueryRow(ctx, `
		INSERT INTO medications (id, user_id, name, dosage, frequency, scheduled_time, notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING created_at, updated_at`,
		m.ID, m.UserID, m.Name, m.Dosage, m.Frequency, m.ScheduledTime, m.Notes).
		Scan(&m.CreatedAt, &m.UpdatedAt)
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Medication, error) {
	return scanMedication(r.pool.QueryRow(ctx,
		`SELECT `+medCols+` FROM medications WHERE id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, m *Medication) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE medications
		SET name=$2, dosage=$3, frequency=$4, scheduled_time=$5, notes=$6, updated_at=NOW()
		WHERE id = $1 AND is_active`,
		m.ID, m.Name, m.Dosage, m.Frequency, m.ScheduledTime, m.Notes)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) Deactivate(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE medications SET is_active = FALSE, updated_at = NOW()
		WHERE id = $1 AND is_active`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) ListActiveByUser(ctx context.Context, userID uuid.UUID) ([]*Medication, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+medCols+` FROM medications
		WHERE user_id = $1 AND is_active
		ORDER BY scheduled_time, created_at`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*Medication
	for rows.Next() {
		m, err := scanMedication(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	return items, rows.Err()
}

func (r *repoPG) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Medication, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM medications WHERE user_id = $1 AND is_active`, userID).
		Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+medCols+` FROM medications
		WHERE user_id = $1 AND is_active
		ORDER BY scheduled_time, created_at
		LIMIT $2 OFFSET $3`, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Medication
	for rows.Next() {
		m, err := scanMedication(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, m)
	}
	return items, total, rows.Err()
}

type logRepoPG struct{ pool *pgxpool.Pool }

func NewLogRepoPG(pool *pgxpool.Pool) LogRepository {
	return &logRepoPG{pool: pool}
}

func (r *logRepoPG) Create(ctx context.Context, l *MedicationLog) error {
	l.ID = uuid.New()
	err := r.pool.QueryRow(ctx, `
		INSERT INTO medication_logs (id, medication_id, user_id, taken_date, taken_at, notes)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING created_at`,
		l.ID, l.MedicationID, l.UserID, l.TakenDate, l.TakenAt, l.Notes).
		Scan(&l.CreatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrAlreadyLogged
	}
	return err
}

func (r *logRepoPG) ListByUserAndDate(ctx context.Context, userID uuid.UUID, date time.Time) ([]*MedicationLog, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, medication_id, user_id, taken_date, taken_at, notes, created_at
		FROM medication_logs
		WHERE user_id = $1 AND taken_date = $2
		ORDER BY taken_at`, userID, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*MedicationLog
	for rows.Next() {
		var l MedicationLog
		if err := rows.Scan(&l.ID, &l.MedicationID, &l.UserID, &l.TakenDate,
			&l.TakenAt, &l.Notes, &l.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, &l)
	}
	return items, rows.Err()
}
