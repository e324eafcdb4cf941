package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/cargotrack/backend/internal/domain"
)

// VehicleRepo is the read-only vehicle registry.
type VehicleRepo interface {
	// List returns all vehicles ordered by name.
	List(ctx context.Context) ([]domain.Vehicle, error)

	// GetByID retrieves a vehicle by primary key.
	// Returns domain.ErrNotFound if no vehicle with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Vehicle, error)

	// GetByTripID returns the vehicle assigned to a trip.
	// Returns domain.ErrNotFound if the trip does not exist.
	GetByTripID(ctx context.Context, tripID uuid.UUID) (domain.Vehicle, error)
}

type pgVehicleRepo struct {
	db db
}

// NewVehicleRepo constructs a VehicleRepo backed by the provided db connection.
func NewVehicleRepo(db db) VehicleRepo {
	return &pgVehicleRepo{db: db}
}

const vehicleColumns = `v.id, v.name, v.type, v.capacity, v.created_at, v.updated_at`

func (r *pgVehicleRepo) List(ctx context.Context) ([]domain.Vehicle, error) {
	q := `SELECT ` + vehicleColumns + ` FROM vehicles v ORDER BY v.name, v.id`

	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("repo.VehicleRepo.List: %w", classify(err))
	}
	defer rows.Close()

	vehicles := []domain.Vehicle{}
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.VehicleRepo.List: scan: %w", err)
		}
		vehicles = append(vehicles, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.VehicleRepo.List: rows: %w", classify(err))
	}
	return vehicles, nil
}

func (r *pgVehicleRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Vehicle, error) {
	q := `SELECT ` + vehicleColumns + ` FROM vehicles v WHERE v.id = @id`

	v, err := scanVehicle(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Vehicle{}, fmt.Errorf("repo.VehicleRepo.GetByID: %w", err)
	}
	return v, nil
}

func (r *pgVehicleRepo) GetByTripID(ctx context.Context, tripID uuid.UUID) (domain.Vehicle, error) {
	q := `SELECT ` + vehicleColumns + `
		FROM vehicles v
		JOIN trips t ON t.vehicle_id = v.id
		WHERE t.id = @trip_id`

	v, err := scanVehicle(r.db.QueryRow(ctx, q, pgx.NamedArgs{"trip_id": tripID}))
	if err != nil {
		return domain.Vehicle{}, fmt.Errorf("repo.VehicleRepo.GetByTripID: %w", err)
	}
	return v, nil
}

// scanVehicle maps one row into a domain.Vehicle. A NULL or non-positive
// capacity is a data integrity failure, never a zero-capacity vehicle.
func scanVehicle(s scanner) (domain.Vehicle, error) {
	var (
		v        domain.Vehicle
		id       pgtype.UUID
		capacity pgtype.Int8
	)
	if err := s.Scan(&id, &v.Name, &v.Type, &capacity, &v.CreatedAt, &v.UpdatedAt); err != nil {
		return domain.Vehicle{}, classify(err)
	}
	v.ID = uuid.UUID(id.Bytes)

	c, err := capacityValue(capacity)
	if err != nil {
		return domain.Vehicle{}, fmt.Errorf("vehicle %s: %w", v.ID, err)
	}
	v.Capacity = c
	return v, nil
}

// capacityValue validates a scanned capacity column.
func capacityValue(c pgtype.Int8) (int, error) {
	if !c.Valid {
		return 0, fmt.Errorf("%w: capacity is NULL", domain.ErrDataIntegrity)
	}
	if c.Int64 <= 0 {
		return 0, fmt.Errorf("%w: capacity %d is not positive", domain.ErrDataIntegrity, c.Int64)
	}
	return int(c.Int64), nil
}
