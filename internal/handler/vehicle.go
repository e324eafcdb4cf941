package handler

import "net/http"

// ListVehicles handles GET /api/v1/vehicles.
func (s *Server) ListVehicles(w http.ResponseWriter, r *http.Request) {
	vehicles, err := s.vehicles.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	out := make([]Vehicle, len(vehicles))
	for i, v := range vehicles {
		out[i] = vehicleToResponse(v)
	}
	writeJSON(w, http.StatusOK, out)
}

// GetVehicle handles GET /api/v1/vehicles/{id}.
func (s *Server) GetVehicle(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	v, err := s.vehicles.GetByID(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, vehicleToResponse(v))
}

// GetTripVehicle handles GET /api/v1/trips/{id}/vehicle.
func (s *Server) GetTripVehicle(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	v, err := s.vehicles.GetByTripID(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, vehicleToResponse(v))
}
