package handler

import (
	"net/http"

	"github.com/pkordes/cargotrack/backend/internal/domain"
)

// CreateCargo handles POST /api/v1/cargos.
// 409 with available_space when the trip has no room.
func (s *Server) CreateCargo(w http.ResponseWriter, r *http.Request) {
	var body CreateCargoRequest
	if !decodeBody(w, r, &body) {
		return
	}

	created, err := s.cargos.Create(r.Context(), domain.Cargo{
		Name:   body.Name,
		Size:   body.Size,
		TripID: body.TripID,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, cargoToResponse(created))
}

// ListCargos handles GET /api/v1/cargos.
func (s *Server) ListCargos(w http.ResponseWriter, r *http.Request) {
	params, ok := pagination(w, r)
	if !ok {
		return
	}

	cargos, total, err := s.cargos.List(r.Context(), params)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, CargoList{Data: cargosToResponse(cargos), Pagination: paginationBody(params, total)})
}

// ListTripCargos handles GET /api/v1/trips/{id}/cargos.
func (s *Server) ListTripCargos(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	cargos, err := s.cargos.ListByTrip(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cargosToResponse(cargos))
}

// GetCargo handles GET /api/v1/cargos/{id}.
func (s *Server) GetCargo(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	cargo, err := s.cargos.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cargoToResponse(cargo))
}

// UpdateCargo handles PUT /api/v1/cargos/{id}: rename, resize, transfer, or a mix.
func (s *Server) UpdateCargo(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var body UpdateCargoRequest
	if !decodeBody(w, r, &body) {
		return
	}

	updated, err := s.cargos.Update(r.Context(), id, domain.CargoPatch{
		Name:   body.Name,
		Size:   body.Size,
		TripID: body.TripID,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cargoToResponse(updated))
}

// DeleteCargo handles DELETE /api/v1/cargos/{id}.
func (s *Server) DeleteCargo(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.cargos.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
