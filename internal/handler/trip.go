package handler

import (
	"net/http"

	"github.com/pkordes/cargotrack/backend/internal/domain"
)

// CreateTrip handles POST /api/v1/trips.
func (s *Server) CreateTrip(w http.ResponseWriter, r *http.Request) {
	var body CreateTripRequest
	if !decodeBody(w, r, &body) {
		return
	}

	created, err := s.trips.Create(r.Context(), domain.Trip{
		Destination: body.Destination,
		VehicleID:   body.VehicleID,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, tripToResponse(created))
}

// ListTrips handles GET /api/v1/trips.
// Supports ?page= and ?limit= (defaults: page=1, limit=20, max=100). Every
// trip carries its cargos and space totals.
func (s *Server) ListTrips(w http.ResponseWriter, r *http.Request) {
	params, ok := pagination(w, r)
	if !ok {
		return
	}

	loads, total, err := s.trips.List(r.Context(), params)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	data := make([]TripWithLoad, len(loads))
	for i, l := range loads {
		data[i] = tripLoadToResponse(l)
	}
	writeJSON(w, http.StatusOK, TripList{Data: data, Pagination: paginationBody(params, total)})
}

// ListDestinations handles GET /api/v1/trips/destinations.
func (s *Server) ListDestinations(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, DestinationList{Data: s.trips.Destinations()})
}

// GetTrip handles GET /api/v1/trips/{id}. The trip comes with its load.
func (s *Server) GetTrip(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	load, err := s.trips.GetLoad(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tripLoadToResponse(load))
}

// UpdateTrip handles PUT /api/v1/trips/{id}. Absent fields are left unchanged.
func (s *Server) UpdateTrip(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var body UpdateTripRequest
	if !decodeBody(w, r, &body) {
		return
	}

	updated, err := s.trips.Update(r.Context(), id, domain.TripPatch{
		Destination: body.Destination,
		VehicleID:   body.VehicleID,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tripToResponse(updated))
}

// DeleteTrip handles DELETE /api/v1/trips/{id}. Cargos on the trip go with it.
func (s *Server) DeleteTrip(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.trips.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetTripSpace handles GET /api/v1/trips/{id}/space.
// ?exclude= leaves one cargo's size out of the used space, which is how a
// client previews a resize.
func (s *Server) GetTripSpace(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	exclude, ok := optionalUUIDQuery(w, r, "exclude")
	if !ok {
		return
	}

	space, err := s.space.Space(r.Context(), id, exclude)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, spaceToResponse(space))
}
