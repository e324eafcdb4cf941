package domain

import (
	"time"

	"github.com/google/uuid"
)

// Cargo is a named item assigned to exactly one trip. Size is in capacity units.
type Cargo struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Size      int       `json:"size"`
	TripID    uuid.UUID `json:"trip_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CargoPatch carries a partial cargo update: rename, resize, transfer, or any mix.
// Nil fields are left unchanged.
type CargoPatch struct {
	Name   *string
	Size   *int
	TripID *uuid.UUID
}

// Apply returns a copy of c with the patch fields applied.
func (p CargoPatch) Apply(c Cargo) Cargo {
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Size != nil {
		c.Size = *p.Size
	}
	if p.TripID != nil {
		c.TripID = *p.TripID
	}
	return c
}

// MovesFrom reports whether the patch moves a cargo away from tripID.
func (p CargoPatch) MovesFrom(tripID uuid.UUID) bool {
	return p.TripID != nil && *p.TripID != tripID
}

// Resizes reports whether the patch changes a cargo of the given size.
func (p CargoPatch) Resizes(size int) bool {
	return p.Size != nil && *p.Size != size
}
