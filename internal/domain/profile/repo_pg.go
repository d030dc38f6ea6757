package profile

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

const profileCols = `id, email, role, caretaker_email, notification_window_minutes,
	created_at, updated_at`

func scanProfile(row pgx.Row) (*Profile, error) {
	var p Profile
	err := row.Scan(&p.ID, &p.Email, &p.Role, &p.CaretakerEmail, &p.WindowMinutes,
		&p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Profile, error) {
	return scanProfile(r.pool.QueryRow(ctx,
		`SELECT `+profileCols+` FROM profiles WHERE id = $1`, id))
}

func (r *repoPG) Create(ctx context.Context, p *Profile) error {
	// ON CONFLICT keeps concurrent first-login requests idempotent.
	return r.pool.QueryRow(ctx, `
		INSERT INTO profiles (id, email, role, notification_window_minutes)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET updated_at = profiles.updated_at
		RETURNING `+profileCols,
		p.ID, p.Email, p.Role, p.WindowMinutes).
		Scan(&p.ID, &p.Email, &p.Role, &p.CaretakerEmail, &p.WindowMinutes,
			&p.CreatedAt, &p.UpdatedAt)
}

func (r *repoPG) UpdateSettings(ctx context.Context, id uuid.UUID, caretakerEmail *string, windowMinutes int) (*Profile, error) {
	return scanProfile(r.pool.QueryRow(ctx, `
		UPDATE profiles
		SET caretaker_email = $2, notification_window_minutes = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING `+profileCols,
		id, caretakerEmail, windowMinutes))
}

func (r *repoPG) ListPatientsByCaretakerEmail(ctx context.Context, email string) ([]*Profile, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+profileCols+` FROM profiles
		WHERE caretaker_email = $1 AND role = 'patient'
		ORDER BY email`, email)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}
