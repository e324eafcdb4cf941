package domain

// ManifestRow is a single row in the cargo manifest export.
// It is a flat, denormalized view: one row per cargo, with trip and vehicle
// fields repeated for every cargo on that trip. Trips with no cargo yield
// one row with zero values for all cargo fields.
type ManifestRow struct {
	// Trip fields, repeated for every cargo on the trip.
	TripID      string
	Destination string

	// Vehicle fields.
	VehicleName     string
	VehicleType     string
	VehicleCapacity int

	// Cargo fields, zero values when the trip has no cargo.
	CargoID   string
	CargoName string
	CargoSize int

	// Running totals for the trip, identical on every row of that trip.
	UsedSpace      int
	AvailableSpace int
}
