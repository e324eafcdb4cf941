package service

import (
	"context"
	"fmt"

	"github.com/pkordes/cargotrack/backend/internal/domain"
	"github.com/pkordes/cargotrack/backend/internal/repo"
)

// ExportService assembles the flat cargo manifest across all trips.
type ExportService struct {
	uow repo.UnitOfWork
}

// NewExportService constructs an ExportService backed by the provided unit of work.
func NewExportService(uow repo.UnitOfWork) *ExportService {
	return &ExportService{uow: uow}
}

// Manifest returns one ManifestRow per cargo across all trips, newest trip
// first. Trips with no cargo contribute one row with empty cargo fields.
// The whole manifest is read in one pass so each trip's rows agree on its totals.
func (s *ExportService) Manifest(ctx context.Context) ([]domain.ManifestRow, error) {
	rows := []domain.ManifestRow{}
	err := s.uow.Read(ctx, func(ctx context.Context, st repo.Stores) error {
		trips, err := st.Trips.ListAll(ctx)
		if err != nil {
			return err
		}
		for _, trip := range trips {
			load, err := loadOf(ctx, st, trip)
			if err != nil {
				return err
			}
			rows = append(rows, manifestRows(load)...)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("service.ExportService.Manifest: %w", err)
	}
	return rows, nil
}

func manifestRows(load domain.TripLoad) []domain.ManifestRow {
	base := domain.ManifestRow{
		TripID:         load.Trip.ID.String(),
		Destination:    load.Trip.Destination,
		UsedSpace:      load.Space.Used,
		AvailableSpace: load.Space.Available(),
	}
	if v := load.Trip.Vehicle; v != nil {
		base.VehicleName = v.Name
		base.VehicleType = v.Type
		base.VehicleCapacity = v.Capacity
	}

	if len(load.Cargos) == 0 {
		return []domain.ManifestRow{base}
	}

	out := make([]domain.ManifestRow, 0, len(load.Cargos))
	for _, c := range load.Cargos {
		row := base
		row.CargoID = c.ID.String()
		row.CargoName = c.Name
		row.CargoSize = c.Size
		out = append(out, row)
	}
	return out
}
