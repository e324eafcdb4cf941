package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/cargotrack/backend/internal/service"
)

func TestExportService_Manifest_OneRowPerCargo(t *testing.T) {
	f := newFleet(t)
	second := f.store.addCargo("Barrels", 2, f.tripA)

	rows, err := service.NewExportService(f.store).Manifest(context.Background())
	require.NoError(t, err)

	// trip C (1 cargo), trip B (none), trip A (2 cargos): newest trip first.
	require.Len(t, rows, 4)

	assert.Equal(t, f.tripC.ID.String(), rows[0].TripID)
	assert.Equal(t, "GAZelle", rows[0].VehicleName)
	assert.Equal(t, 5, rows[0].VehicleCapacity)
	assert.Equal(t, 3, rows[0].UsedSpace)
	assert.Equal(t, 2, rows[0].AvailableSpace)

	assert.Equal(t, f.tripB.ID.String(), rows[1].TripID)
	assert.Empty(t, rows[1].CargoID, "trip without cargo yields an empty cargo row")
	assert.Equal(t, 10, rows[1].AvailableSpace)

	assert.Equal(t, f.cargo.ID.String(), rows[2].CargoID)
	assert.Equal(t, second.ID.String(), rows[3].CargoID)
	for _, r := range rows[2:] {
		assert.Equal(t, "Moscow", r.Destination)
		assert.Equal(t, 8, r.UsedSpace)
		assert.Equal(t, 2, r.AvailableSpace)
	}
}

func TestExportService_Manifest_NoTrips(t *testing.T) {
	rows, err := service.NewExportService(newMemStore()).Manifest(context.Background())

	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}
