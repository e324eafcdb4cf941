// Package repo contains all database access logic for the cargotrack backend.
// Each resource has its own file with an interface and a Postgres implementation.
// No business logic lives here, only SQL, type mapping, and error classification.
package repo

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/cargotrack/backend/internal/domain"
)

// db is the minimal interface satisfied by *pgxpool.Pool, pgx.Conn, and pgx.Tx.
// Accepting this interface instead of *pgxpool.Pool directly lets the unit of
// work bind every repo to one transaction, and lets integration tests pass a
// transaction that is rolled back after each test.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// TripRepo defines the persistence operations for Trips.
// Reads return the trip with its vehicle resolved.
type TripRepo interface {
	// Create inserts a new trip and returns the persisted record.
	// A vehicle_id that does not resolve fails with domain.ErrInvalidReference.
	Create(ctx context.Context, trip domain.Trip) (domain.Trip, error)

	// GetByID retrieves a single trip by its UUID primary key.
	// Returns domain.ErrNotFound if no trip with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error)

	// List returns one page of trips, newest first, and the total count.
	List(ctx context.Context, p domain.PaginationParams) ([]domain.Trip, int64, error)

	// ListAll returns every trip, newest first.
	ListAll(ctx context.Context) ([]domain.Trip, error)

	// Update overwrites destination and vehicle_id and returns the updated record.
	// Returns domain.ErrNotFound if no trip with that ID exists.
	Update(ctx context.Context, trip domain.Trip) (domain.Trip, error)

	// Delete removes a trip by ID and reports whether a row was removed.
	// Cargos must be removed first; the foreign key rejects orphans.
	Delete(ctx context.Context, id uuid.UUID) (bool, error)

	// Lock takes row locks on the given trips for the rest of the enclosing
	// transaction. Locks are acquired in ascending id order so two transactions
	// locking overlapping sets cannot deadlock on each other. Missing trips are
	// skipped; callers look them up afterwards.
	Lock(ctx context.Context, ids ...uuid.UUID) error
}

// pgTripRepo is the Postgres implementation of TripRepo.
type pgTripRepo struct {
	db db
}

// NewTripRepo constructs a TripRepo backed by the provided db connection.
// In production pass *pgxpool.Pool or a pgx.Tx from the unit of work; in tests
// pass a pgx.Tx for rollback isolation.
func NewTripRepo(db db) TripRepo {
	return &pgTripRepo{db: db}
}

const tripSelect = `
		SELECT t.id, t.destination, t.vehicle_id, t.created_at, t.updated_at,
		       v.id, v.name, v.type, v.capacity, v.created_at, v.updated_at
		FROM trips t
		LEFT JOIN vehicles v ON v.id = t.vehicle_id`

// Create inserts a trip row and returns it joined with its vehicle.
func (r *pgTripRepo) Create(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	const q = `
		WITH t AS (
			INSERT INTO trips (destination, vehicle_id)
			VALUES (@destination, @vehicle_id)
			RETURNING id, destination, vehicle_id, created_at, updated_at
		)
		SELECT t.id, t.destination, t.vehicle_id, t.created_at, t.updated_at,
		       v.id, v.name, v.type, v.capacity, v.created_at, v.updated_at
		FROM t
		LEFT JOIN vehicles v ON v.id = t.vehicle_id`

	args := pgx.NamedArgs{
		"destination": trip.Destination,
		"vehicle_id":  trip.VehicleID,
	}

	result, err := scanTrip(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Create: %w", err)
	}
	return result, nil
}

// GetByID retrieves a trip by primary key.
func (r *pgTripRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	q := tripSelect + ` WHERE t.id = @id`

	result, err := scanTrip(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.GetByID: %w", err)
	}
	return result, nil
}

// List returns one page of trips ordered by created_at descending.
func (r *pgTripRepo) List(ctx context.Context, p domain.PaginationParams) ([]domain.Trip, int64, error) {
	var total int64
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM trips`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repo.TripRepo.List: count: %w", classify(err))
	}

	q := tripSelect + `
		ORDER BY t.created_at DESC, t.id
		LIMIT @limit OFFSET @offset`

	trips, err := r.query(ctx, q, pgx.NamedArgs{"limit": p.Limit, "offset": p.Offset()})
	if err != nil {
		return nil, 0, fmt.Errorf("repo.TripRepo.List: %w", err)
	}
	return trips, total, nil
}

// ListAll returns every trip ordered by created_at descending.
func (r *pgTripRepo) ListAll(ctx context.Context) ([]domain.Trip, error) {
	trips, err := r.query(ctx, tripSelect+` ORDER BY t.created_at DESC, t.id`, pgx.NamedArgs{})
	if err != nil {
		return nil, fmt.Errorf("repo.TripRepo.ListAll: %w", err)
	}
	return trips, nil
}

func (r *pgTripRepo) query(ctx context.Context, q string, args pgx.NamedArgs) ([]domain.Trip, error) {
	rows, err := r.db.Query(ctx, q, args)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	trips := []domain.Trip{}
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		trips = append(trips, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", classify(err))
	}
	return trips, nil
}

// Update overwrites the mutable fields of a trip and returns the updated record.
func (r *pgTripRepo) Update(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	const q = `
		WITH t AS (
			UPDATE trips
			SET destination = @destination,
			    vehicle_id  = @vehicle_id,
			    updated_at  = now()
			WHERE id = @id
			RETURNING id, destination, vehicle_id, created_at, updated_at
		)
		SELECT t.id, t.destination, t.vehicle_id, t.created_at, t.updated_at,
		       v.id, v.name, v.type, v.capacity, v.created_at, v.updated_at
		FROM t
		LEFT JOIN vehicles v ON v.id = t.vehicle_id`

	args := pgx.NamedArgs{
		"id":          trip.ID,
		"destination": trip.Destination,
		"vehicle_id":  trip.VehicleID,
	}

	result, err := scanTrip(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Update: %w", err)
	}
	return result, nil
}

// Delete removes a trip by primary key.
func (r *pgTripRepo) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	const q = `DELETE FROM trips WHERE id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id})
	if err != nil {
		return false, fmt.Errorf("repo.TripRepo.Delete: %w", classify(err))
	}
	return tag.RowsAffected() > 0, nil
}

// Lock issues SELECT ... FOR UPDATE per trip in ascending id order.
func (r *pgTripRepo) Lock(ctx context.Context, ids ...uuid.UUID) error {
	const q = `SELECT id FROM trips WHERE id = @id FOR UPDATE`

	for _, id := range lockOrder(ids) {
		var got pgtype.UUID
		err := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}).Scan(&got)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("repo.TripRepo.Lock: %w", classify(err))
		}
	}
	return nil
}

// lockOrder returns ids sorted and de-duplicated. Postgres compares uuid
// values bytewise, so this matches the server's ordering.
func lockOrder(ids []uuid.UUID) []uuid.UUID {
	out := slices.Clone(ids)
	slices.SortFunc(out, func(a, b uuid.UUID) int { return bytes.Compare(a[:], b[:]) })
	return slices.Compact(out)
}

// scanner is satisfied by both pgx.Row and pgx.Rows, allowing the scan helpers
// to be reused for both QueryRow and Query calls.
type scanner interface {
	Scan(dest ...any) error
}

// scanTrip maps a trip row joined with its (possibly missing) vehicle.
func scanTrip(s scanner) (domain.Trip, error) {
	var (
		t         domain.Trip
		id        pgtype.UUID
		vehicleID pgtype.UUID
		vID       pgtype.UUID
		vName     pgtype.Text
		vType     pgtype.Text
		vCapacity pgtype.Int8
		vCreated  pgtype.Timestamptz
		vUpdated  pgtype.Timestamptz
	)

	err := s.Scan(&id, &t.Destination, &vehicleID, &t.CreatedAt, &t.UpdatedAt,
		&vID, &vName, &vType, &vCapacity, &vCreated, &vUpdated)
	if err != nil {
		return domain.Trip{}, classify(err)
	}

	t.ID = uuid.UUID(id.Bytes)
	t.VehicleID = uuid.UUID(vehicleID.Bytes)

	if vID.Valid {
		capacity, err := capacityValue(vCapacity)
		if err != nil {
			return domain.Trip{}, fmt.Errorf("trip %s: vehicle %s: %w", t.ID, uuid.UUID(vID.Bytes), err)
		}
		t.Vehicle = &domain.Vehicle{
			ID:        uuid.UUID(vID.Bytes),
			Name:      vName.String,
			Type:      vType.String,
			Capacity:  capacity,
			CreatedAt: vCreated.Time,
			UpdatedAt: vUpdated.Time,
		}
	}

	return t, nil
}
