package domain

import (
	"time"

	"github.com/google/uuid"
)

// Vehicle is a registered vehicle. Capacity is measured in capacity units
// and is always positive for a well-formed row.
type Vehicle struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	Capacity  int       `json:"capacity"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
