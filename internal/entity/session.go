package entity

import (
	"time"

	"github.com/google/uuid"
)

// Session owns one user's prompt state and their latest report.
type Session struct {
	ID        uuid.UUID `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
