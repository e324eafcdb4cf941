// Package domain contains the core data types for the cargotrack backend.
// This package depends only on uuid and is imported by every other
// internal package (repo, service, handler).
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Trip is a journey to a single destination carried out by one vehicle.
// Cargos belong to a trip; the vehicle is only referenced.
//
// Vehicle is populated on reads (joined from the vehicles table) and is
// ignored on writes, where VehicleID is authoritative.
type Trip struct {
	ID          uuid.UUID `json:"id"`
	Destination string    `json:"destination"`
	VehicleID   uuid.UUID `json:"vehicle_id"`
	Vehicle     *Vehicle  `json:"vehicle,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TripPatch carries a partial trip update. Nil fields are left unchanged.
type TripPatch struct {
	Destination *string
	VehicleID   *uuid.UUID
}

// Empty reports whether the patch changes nothing.
func (p TripPatch) Empty() bool {
	return p.Destination == nil && p.VehicleID == nil
}

// Apply returns a copy of t with the patch fields applied.
func (p TripPatch) Apply(t Trip) Trip {
	if p.Destination != nil {
		t.Destination = *p.Destination
	}
	if p.VehicleID != nil && *p.VehicleID != t.VehicleID {
		t.VehicleID = *p.VehicleID
		t.Vehicle = nil
	}
	return t
}

// TripLoad is a trip together with the cargos it carries and its space accounting.
type TripLoad struct {
	Trip   Trip
	Cargos []Cargo
	Space  Space
}
