// Package handler: export.go implements GET /api/v1/export.
// Returns the cargo manifest as a flat table, JSON by default or CSV with ?format=csv.
package handler

import (
	"bytes"
	"encoding/csv"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/oapi-codegen/runtime"

	"github.com/pkordes/cargotrack/backend/internal/domain"
)

// Export formats accepted by ?format=.
const (
	formatJSON = "json"
	formatCSV  = "csv"
)

// csvHeaders defines the column names written as the first row of any CSV export.
var csvHeaders = []string{
	"trip_id", "destination", "vehicle_name", "vehicle_type", "vehicle_capacity",
	"cargo_id", "cargo_name", "cargo_size", "used_space", "available_space",
}

// GetExport handles GET /api/v1/export.
func (s *Server) GetExport(w http.ResponseWriter, r *http.Request) {
	var format *string
	if err := runtime.BindQueryParameter("form", true, false, "format", r.URL.Query(), &format); err != nil {
		badRequest(w, "invalid format for parameter format: "+err.Error())
		return
	}
	wantCSV := false
	if format != nil {
		switch *format {
		case formatCSV:
			wantCSV = true
		case formatJSON:
		default:
			badRequest(w, "format must be one of json, csv")
			return
		}
	}

	rows, err := s.export.Manifest(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if wantCSV {
		writeCSV(w, rows)
		return
	}
	out := make([]ManifestRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, manifestRowToResponse(row))
	}
	writeJSON(w, http.StatusOK, out)
}

// writeCSV buffers the whole manifest so a late encoding failure cannot
// leave a truncated 200 behind.
func writeCSV(w http.ResponseWriter, rows []domain.ManifestRow) {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)

	_ = cw.Write(csvHeaders)
	for _, r := range rows {
		_ = cw.Write(manifestRowToCSVRecord(r))
	}
	cw.Flush()

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="manifest.csv"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// manifestRowToResponse maps a row to its JSON shape.
// Empty cargo fields become nil pointers (omitted in JSON).
func manifestRowToResponse(r domain.ManifestRow) ManifestRow {
	tripID, _ := uuid.Parse(r.TripID)
	row := ManifestRow{
		TripID:          tripID,
		Destination:     r.Destination,
		VehicleName:     r.VehicleName,
		VehicleType:     r.VehicleType,
		VehicleCapacity: r.VehicleCapacity,
		UsedSpace:       r.UsedSpace,
		AvailableSpace:  r.AvailableSpace,
	}
	if r.CargoID != "" {
		cargoID, _ := uuid.Parse(r.CargoID)
		name, size := r.CargoName, r.CargoSize
		row.CargoID, row.CargoName, row.CargoSize = &cargoID, &name, &size
	}
	return row
}

// manifestRowToCSVRecord encodes a row as a flat string slice.
// A trip without cargo leaves the three cargo columns empty.
func manifestRowToCSVRecord(r domain.ManifestRow) []string {
	cargoSize := ""
	if r.CargoID != "" {
		cargoSize = strconv.Itoa(r.CargoSize)
	}
	return []string{
		r.TripID,
		r.Destination,
		r.VehicleName,
		r.VehicleType,
		strconv.Itoa(r.VehicleCapacity),
		r.CargoID,
		r.CargoName,
		cargoSize,
		strconv.Itoa(r.UsedSpace),
		strconv.Itoa(r.AvailableSpace),
	}
}
