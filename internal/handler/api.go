package handler

import (
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/cargotrack/backend/internal/domain"
)

// Wire types for the JSON API. They mirror the schemas in spec/openapi.yaml.

type HealthResponse struct {
	Status string `json:"status"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	// AvailableSpace is set on capacity_exceeded.
	AvailableSpace *int `json:"available_space,omitempty"`
	// From and To are set on destination_mismatch.
	From *string `json:"from,omitempty"`
	To   *string `json:"to,omitempty"`
}

type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
}

type Vehicle struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	Capacity  int       `json:"capacity"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Trip struct {
	ID          uuid.UUID `json:"id"`
	Destination string    `json:"destination"`
	VehicleID   uuid.UUID `json:"vehicle_id"`
	Vehicle     *Vehicle  `json:"vehicle,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TripWithLoad is a trip plus the cargos it carries and its space totals.
type TripWithLoad struct {
	Trip
	Cargos         []Cargo `json:"cargos"`
	UsedSpace      int     `json:"used_space"`
	AvailableSpace int     `json:"available_space"`
}

type TripList struct {
	Data       []TripWithLoad `json:"data"`
	Pagination Pagination     `json:"pagination"`
}

type DestinationList struct {
	Data []string `json:"data"`
}

type Cargo struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Size      int       `json:"size"`
	TripID    uuid.UUID `json:"trip_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CargoList struct {
	Data       []Cargo    `json:"data"`
	Pagination Pagination `json:"pagination"`
}

type Space struct {
	TripID         uuid.UUID `json:"trip_id"`
	Capacity       int       `json:"capacity"`
	UsedSpace      int       `json:"used_space"`
	AvailableSpace int       `json:"available_space"`
}

type CreateTripRequest struct {
	Destination string    `json:"destination"`
	VehicleID   uuid.UUID `json:"vehicle_id"`
}

type UpdateTripRequest struct {
	Destination *string    `json:"destination,omitempty"`
	VehicleID   *uuid.UUID `json:"vehicle_id,omitempty"`
}

type CreateCargoRequest struct {
	Name   string    `json:"name"`
	Size   int       `json:"size"`
	TripID uuid.UUID `json:"trip_id"`
}

type UpdateCargoRequest struct {
	Name   *string    `json:"name,omitempty"`
	Size   *int       `json:"size,omitempty"`
	TripID *uuid.UUID `json:"trip_id,omitempty"`
}

type ManifestRow struct {
	TripID          uuid.UUID  `json:"trip_id"`
	Destination     string     `json:"destination"`
	VehicleName     string     `json:"vehicle_name"`
	VehicleType     string     `json:"vehicle_type"`
	VehicleCapacity int        `json:"vehicle_capacity"`
	CargoID         *uuid.UUID `json:"cargo_id,omitempty"`
	CargoName       *string    `json:"cargo_name,omitempty"`
	CargoSize       *int       `json:"cargo_size,omitempty"`
	UsedSpace       int        `json:"used_space"`
	AvailableSpace  int        `json:"available_space"`
}

// --- mapping helpers --------------------------------------------------------

func vehicleToResponse(v domain.Vehicle) Vehicle {
	return Vehicle{
		ID:        v.ID,
		Name:      v.Name,
		Type:      v.Type,
		Capacity:  v.Capacity,
		CreatedAt: v.CreatedAt,
		UpdatedAt: v.UpdatedAt,
	}
}

func tripToResponse(t domain.Trip) Trip {
	resp := Trip{
		ID:          t.ID,
		Destination: t.Destination,
		VehicleID:   t.VehicleID,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
	if t.Vehicle != nil {
		v := vehicleToResponse(*t.Vehicle)
		resp.Vehicle = &v
	}
	return resp
}

func tripLoadToResponse(l domain.TripLoad) TripWithLoad {
	return TripWithLoad{
		Trip:           tripToResponse(l.Trip),
		Cargos:         cargosToResponse(l.Cargos),
		UsedSpace:      l.Space.Used,
		AvailableSpace: l.Space.Available(),
	}
}

func cargoToResponse(c domain.Cargo) Cargo {
	return Cargo{
		ID:        c.ID,
		Name:      c.Name,
		Size:      c.Size,
		TripID:    c.TripID,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// cargosToResponse never returns nil so the JSON is [] rather than null.
func cargosToResponse(cs []domain.Cargo) []Cargo {
	out := make([]Cargo, len(cs))
	for i, c := range cs {
		out[i] = cargoToResponse(c)
	}
	return out
}

func spaceToResponse(s domain.Space) Space {
	return Space{
		TripID:         s.TripID,
		Capacity:       s.Capacity,
		UsedSpace:      s.Used,
		AvailableSpace: s.Available(),
	}
}
