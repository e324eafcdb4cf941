package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/cargotrack/backend/internal/domain"
)

// CargoRepo defines the persistence operations for Cargos and the space
// queries the capacity engine is built on. It performs no capacity checks.
type CargoRepo interface {
	// Create inserts a new cargo and returns the persisted record.
	Create(ctx context.Context, cargo domain.Cargo) (domain.Cargo, error)

	// GetByID retrieves a cargo by primary key.
	// Returns domain.ErrNotFound if no cargo with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Cargo, error)

	// GetForUpdate is GetByID plus a row lock held until the enclosing
	// transaction ends.
	GetForUpdate(ctx context.Context, id uuid.UUID) (domain.Cargo, error)

	// ListByTripID returns all cargos on a trip, oldest first.
	ListByTripID(ctx context.Context, tripID uuid.UUID) ([]domain.Cargo, error)

	// List returns one page of cargos, newest first, and the total count.
	List(ctx context.Context, p domain.PaginationParams) ([]domain.Cargo, int64, error)

	// Update overwrites name, size, and trip_id and returns the updated record.
	// Returns domain.ErrNotFound if no cargo with that ID exists.
	Update(ctx context.Context, cargo domain.Cargo) (domain.Cargo, error)

	// Delete removes a cargo and reports whether a row was removed.
	Delete(ctx context.Context, id uuid.UUID) (bool, error)

	// DeleteByTripID removes every cargo on a trip and returns how many went.
	DeleteByTripID(ctx context.Context, tripID uuid.UUID) (int64, error)

	// Space returns the capacity of the trip's vehicle and the summed size of
	// the trip's cargos, leaving out exclude when it is non-nil.
	// Returns a *domain.NotFoundError naming the trip or the vehicle when
	// either cannot be resolved.
	Space(ctx context.Context, tripID uuid.UUID, exclude *uuid.UUID) (domain.Space, error)

	// Overloaded returns the space of every trip whose cargo exceeds its
	// vehicle's capacity.
	Overloaded(ctx context.Context) ([]domain.Space, error)
}

type pgCargoRepo struct {
	db db
}

// NewCargoRepo constructs a CargoRepo backed by the provided db connection.
func NewCargoRepo(db db) CargoRepo {
	return &pgCargoRepo{db: db}
}

const cargoColumns = `id, name, size, trip_id, created_at, updated_at`

func (r *pgCargoRepo) Create(ctx context.Context, cargo domain.Cargo) (domain.Cargo, error) {
	const q = `
		INSERT INTO cargos (name, size, trip_id)
		VALUES (@name, @size, @trip_id)
		RETURNING ` + cargoColumns

	args := pgx.NamedArgs{
		"name":    cargo.Name,
		"size":    cargo.Size,
		"trip_id": cargo.TripID,
	}

	result, err := scanCargo(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Cargo{}, fmt.Errorf("repo.CargoRepo.Create: %w", err)
	}
	return result, nil
}

func (r *pgCargoRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Cargo, error) {
	const q = `SELECT ` + cargoColumns + ` FROM cargos WHERE id = @id`

	result, err := scanCargo(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Cargo{}, fmt.Errorf("repo.CargoRepo.GetByID: %w", err)
	}
	return result, nil
}

func (r *pgCargoRepo) GetForUpdate(ctx context.Context, id uuid.UUID) (domain.Cargo, error) {
	const q = `SELECT ` + cargoColumns + ` FROM cargos WHERE id = @id FOR UPDATE`

	result, err := scanCargo(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Cargo{}, fmt.Errorf("repo.CargoRepo.GetForUpdate: %w", err)
	}
	return result, nil
}

func (r *pgCargoRepo) ListByTripID(ctx context.Context, tripID uuid.UUID) ([]domain.Cargo, error) {
	const q = `
		SELECT ` + cargoColumns + `
		FROM cargos
		WHERE trip_id = @trip_id
		ORDER BY created_at, id`

	cargos, err := r.query(ctx, q, pgx.NamedArgs{"trip_id": tripID})
	if err != nil {
		return nil, fmt.Errorf("repo.CargoRepo.ListByTripID: %w", err)
	}
	return cargos, nil
}

func (r *pgCargoRepo) List(ctx context.Context, p domain.PaginationParams) ([]domain.Cargo, int64, error) {
	var total int64
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM cargos`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repo.CargoRepo.List: count: %w", classify(err))
	}

	const q = `
		SELECT ` + cargoColumns + `
		FROM cargos
		ORDER BY created_at DESC, id
		LIMIT @limit OFFSET @offset`

	cargos, err := r.query(ctx, q, pgx.NamedArgs{"limit": p.Limit, "offset": p.Offset()})
	if err != nil {
		return nil, 0, fmt.Errorf("repo.CargoRepo.List: %w", err)
	}
	return cargos, total, nil
}

func (r *pgCargoRepo) query(ctx context.Context, q string, args pgx.NamedArgs) ([]domain.Cargo, error) {
	rows, err := r.db.Query(ctx, q, args)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	cargos := []domain.Cargo{}
	for rows.Next() {
		c, err := scanCargo(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		cargos = append(cargos, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", classify(err))
	}
	return cargos, nil
}

func (r *pgCargoRepo) Update(ctx context.Context, cargo domain.Cargo) (domain.Cargo, error) {
	const q = `
		UPDATE cargos
		SET name       = @name,
		    size       = @size,
		    trip_id    = @trip_id,
		    updated_at = now()
		WHERE id = @id
		RETURNING ` + cargoColumns

	args := pgx.NamedArgs{
		"id":      cargo.ID,
		"name":    cargo.Name,
		"size":    cargo.Size,
		"trip_id": cargo.TripID,
	}

	result, err := scanCargo(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Cargo{}, fmt.Errorf("repo.CargoRepo.Update: %w", err)
	}
	return result, nil
}

func (r *pgCargoRepo) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM cargos WHERE id = @id`, pgx.NamedArgs{"id": id})
	if err != nil {
		return false, fmt.Errorf("repo.CargoRepo.Delete: %w", classify(err))
	}
	return tag.RowsAffected() > 0, nil
}

func (r *pgCargoRepo) DeleteByTripID(ctx context.Context, tripID uuid.UUID) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM cargos WHERE trip_id = @trip_id`, pgx.NamedArgs{"trip_id": tripID})
	if err != nil {
		return 0, fmt.Errorf("repo.CargoRepo.DeleteByTripID: %w", classify(err))
	}
	return tag.RowsAffected(), nil
}

// Space reads capacity and used space in one statement so both values come
// from the same snapshot. The exclusion is applied inside the aggregate;
// IS DISTINCT FROM keeps every row when exclude is NULL.
func (r *pgCargoRepo) Space(ctx context.Context, tripID uuid.UUID, exclude *uuid.UUID) (domain.Space, error) {
	const q = `
		SELECT t.vehicle_id,
		       v.id IS NOT NULL,
		       v.capacity,
		       COALESCE(SUM(c.size) FILTER (WHERE c.id IS DISTINCT FROM @exclude::uuid), 0)::bigint
		FROM trips t
		LEFT JOIN vehicles v ON v.id = t.vehicle_id
		LEFT JOIN cargos c ON c.trip_id = t.id
		WHERE t.id = @trip_id
		GROUP BY t.id, t.vehicle_id, v.id, v.capacity`

	excl := pgtype.UUID{}
	if exclude != nil {
		excl = pgtype.UUID{Bytes: *exclude, Valid: true}
	}

	var (
		vehicleID    pgtype.UUID
		vehicleFound bool
		capacity     pgtype.Int8
		used         pgtype.Int8
	)
	err := r.db.QueryRow(ctx, q, pgx.NamedArgs{"trip_id": tripID, "exclude": excl}).
		Scan(&vehicleID, &vehicleFound, &capacity, &used)
	if err != nil {
		err = classify(err)
		if errors.Is(err, domain.ErrNotFound) {
			err = domain.NewNotFound("trip", tripID)
		}
		return domain.Space{}, fmt.Errorf("repo.CargoRepo.Space: %w", err)
	}
	if !vehicleFound {
		return domain.Space{}, fmt.Errorf("repo.CargoRepo.Space: trip %s: %w",
			tripID, domain.NewNotFound("vehicle", uuid.UUID(vehicleID.Bytes)))
	}

	space, err := spaceValue(tripID, capacity, used)
	if err != nil {
		return domain.Space{}, fmt.Errorf("repo.CargoRepo.Space: trip %s: %w", tripID, err)
	}
	return space, nil
}

func (r *pgCargoRepo) Overloaded(ctx context.Context) ([]domain.Space, error) {
	const q = `
		SELECT t.id, v.capacity, COALESCE(SUM(c.size), 0)::bigint AS used
		FROM trips t
		JOIN vehicles v ON v.id = t.vehicle_id
		LEFT JOIN cargos c ON c.trip_id = t.id
		GROUP BY t.id, v.capacity
		HAVING COALESCE(SUM(c.size), 0) > v.capacity
		ORDER BY t.id`

	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("repo.CargoRepo.Overloaded: %w", classify(err))
	}
	defer rows.Close()

	out := []domain.Space{}
	for rows.Next() {
		var (
			id       pgtype.UUID
			capacity pgtype.Int8
			used     pgtype.Int8
		)
		if err := rows.Scan(&id, &capacity, &used); err != nil {
			return nil, fmt.Errorf("repo.CargoRepo.Overloaded: scan: %w", classify(err))
		}
		space, err := spaceValue(uuid.UUID(id.Bytes), capacity, used)
		if err != nil {
			return nil, fmt.Errorf("repo.CargoRepo.Overloaded: %w", err)
		}
		out = append(out, space)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.CargoRepo.Overloaded: rows: %w", classify(err))
	}
	return out, nil
}

func spaceValue(tripID uuid.UUID, capacity, used pgtype.Int8) (domain.Space, error) {
	c, err := capacityValue(capacity)
	if err != nil {
		return domain.Space{}, err
	}
	if !used.Valid || used.Int64 < 0 {
		return domain.Space{}, fmt.Errorf("%w: used space is NULL or negative", domain.ErrDataIntegrity)
	}
	return domain.Space{TripID: tripID, Capacity: c, Used: int(used.Int64)}, nil
}

// scanCargo maps one cargo row. A NULL or non-positive size is a data
// integrity failure.
func scanCargo(s scanner) (domain.Cargo, error) {
	var (
		c      domain.Cargo
		id     pgtype.UUID
		tripID pgtype.UUID
		size   pgtype.Int8
	)
	if err := s.Scan(&id, &c.Name, &size, &tripID, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return domain.Cargo{}, classify(err)
	}
	c.ID = uuid.UUID(id.Bytes)
	c.TripID = uuid.UUID(tripID.Bytes)

	if !size.Valid || size.Int64 <= 0 {
		return domain.Cargo{}, fmt.Errorf("cargo %s: %w: size is NULL or not positive", c.ID, domain.ErrDataIntegrity)
	}
	c.Size = int(size.Int64)
	return c, nil
}
