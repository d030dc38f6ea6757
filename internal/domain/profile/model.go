// Package profile manages user profiles and their notification settings.
package profile

import (
	"time"

	"github.com/google/uuid"
)

// Profile maps to the profiles table. CaretakerEmail is nil when the user has
// not opted in to caretaker alerts.
type Profile struct {
	ID             uuid.UUID `db:"id" json:"id"`
	Email          string    `db:"email" json:"email"`
	Role           string    `db:"role" json:"role"`
	CaretakerEmail *string   `db:"caretaker_email" json:"caretaker_email,omitempty"`
	WindowMinutes  int       `db:"notification_window_minutes" json:"notification_window_minutes"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}
