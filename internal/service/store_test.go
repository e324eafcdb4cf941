package service_test

import (
	"cmp"
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/cargotrack/backend/internal/domain"
	"github.com/pkordes/cargotrack/backend/internal/repo"
)

// ---- in-memory unit of work ------------------------------------------------
//
// memStore backs every service test. WithinTx holds the store mutex for the
// whole callback and restores a snapshot when the callback fails, which gives
// the same all-or-nothing behaviour as the Postgres transaction.

type memStore struct {
	mu       sync.Mutex
	clock    time.Time
	vehicles map[uuid.UUID]domain.Vehicle
	trips    map[uuid.UUID]domain.Trip
	cargos   map[uuid.UUID]domain.Cargo

	// locks records every Lock call in order.
	locks [][]uuid.UUID
	// failTripDelete, when set, is returned by TripRepo.Delete.
	failTripDelete error
	// failCargoCreate, when set, is returned by CargoRepo.Create.
	failCargoCreate error
	txCount         int
}

func newMemStore() *memStore {
	return &memStore{
		clock:    time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC),
		vehicles: map[uuid.UUID]domain.Vehicle{},
		trips:    map[uuid.UUID]domain.Trip{},
		cargos:   map[uuid.UUID]domain.Cargo{},
	}
}

func (m *memStore) tick() time.Time {
	m.clock = m.clock.Add(time.Second)
	return m.clock
}

func (m *memStore) stores() repo.Stores {
	return repo.Stores{
		Vehicles: memVehicles{m},
		Trips:    memTrips{m},
		Cargos:   memCargos{m},
	}
}

func (m *memStore) Read(ctx context.Context, fn func(ctx context.Context, s repo.Stores) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(ctx, m.stores())
}

func (m *memStore) WithinTx(ctx context.Context, fn func(ctx context.Context, s repo.Stores) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.txCount++

	vehicles, trips, cargos := maps.Clone(m.vehicles), maps.Clone(m.trips), maps.Clone(m.cargos)
	if err := fn(ctx, m.stores()); err != nil {
		m.vehicles, m.trips, m.cargos = vehicles, trips, cargos
		return err
	}
	return nil
}

var _ repo.UnitOfWork = (*memStore)(nil)

// ---- seeding helpers (take the lock themselves) -----------------------------

func (m *memStore) addVehicle(name string, capacity int) domain.Vehicle {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.tick()
	v := domain.Vehicle{ID: uuid.New(), Name: name, Type: "truck", Capacity: capacity, CreatedAt: now, UpdatedAt: now}
	m.vehicles[v.ID] = v
	return v
}

func (m *memStore) addTrip(destination string, vehicle domain.Vehicle) domain.Trip {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.tick()
	t := domain.Trip{ID: uuid.New(), Destination: destination, VehicleID: vehicle.ID, CreatedAt: now, UpdatedAt: now}
	m.trips[t.ID] = t
	return m.withVehicle(t)
}

func (m *memStore) addCargo(name string, size int, trip domain.Trip) domain.Cargo {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.tick()
	c := domain.Cargo{ID: uuid.New(), Name: name, Size: size, TripID: trip.ID, CreatedAt: now, UpdatedAt: now}
	m.cargos[c.ID] = c
	return c
}

// used sums cargo sizes on a trip.
func (m *memStore) used(tripID uuid.UUID) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.usedLocked(tripID, nil)
}

func (m *memStore) cargo(id uuid.UUID) (domain.Cargo, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.cargos[id]
	return c, ok
}

func (m *memStore) cargoCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.cargos)
}

// ---- internals (caller holds the lock) ---------------------------------------

func (m *memStore) withVehicle(t domain.Trip) domain.Trip {
	if v, ok := m.vehicles[t.VehicleID]; ok {
		t.Vehicle = &v
	} else {
		t.Vehicle = nil
	}
	return t
}

func (m *memStore) usedLocked(tripID uuid.UUID, exclude *uuid.UUID) int {
	total := 0
	for _, c := range m.cargos {
		if c.TripID != tripID {
			continue
		}
		if exclude != nil && c.ID == *exclude {
			continue
		}
		total += c.Size
	}
	return total
}

func page[T any](all []T, p domain.PaginationParams) []T {
	start := min(p.Offset(), len(all))
	end := min(start+p.Limit, len(all))
	return all[start:end]
}

// ---- VehicleRepo --------------------------------------------------------------

type memVehicles struct{ m *memStore }

func (r memVehicles) List(_ context.Context) ([]domain.Vehicle, error) {
	out := slices.Collect(maps.Values(r.m.vehicles))
	slices.SortFunc(out, func(a, b domain.Vehicle) int { return cmp.Compare(a.Name, b.Name) })
	return out, nil
}

func (r memVehicles) GetByID(_ context.Context, id uuid.UUID) (domain.Vehicle, error) {
	v, ok := r.m.vehicles[id]
	if !ok {
		return domain.Vehicle{}, domain.ErrNotFound
	}
	return v, nil
}

func (r memVehicles) GetByTripID(ctx context.Context, tripID uuid.UUID) (domain.Vehicle, error) {
	t, ok := r.m.trips[tripID]
	if !ok {
		return domain.Vehicle{}, domain.ErrNotFound
	}
	return r.GetByID(ctx, t.VehicleID)
}

// ---- TripRepo -------------------------------------------------------------------

type memTrips struct{ m *memStore }

func (r memTrips) Create(_ context.Context, trip domain.Trip) (domain.Trip, error) {
	if _, ok := r.m.vehicles[trip.VehicleID]; !ok {
		return domain.Trip{}, domain.ErrInvalidReference
	}
	now := r.m.tick()
	trip.ID, trip.CreatedAt, trip.UpdatedAt = uuid.New(), now, now
	r.m.trips[trip.ID] = trip
	return r.m.withVehicle(trip), nil
}

func (r memTrips) GetByID(_ context.Context, id uuid.UUID) (domain.Trip, error) {
	t, ok := r.m.trips[id]
	if !ok {
		return domain.Trip{}, domain.ErrNotFound
	}
	return r.m.withVehicle(t), nil
}

func (r memTrips) all() []domain.Trip {
	out := make([]domain.Trip, 0, len(r.m.trips))
	for _, t := range r.m.trips {
		out = append(out, r.m.withVehicle(t))
	}
	slices.SortFunc(out, func(a, b domain.Trip) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return out
}

func (r memTrips) List(_ context.Context, p domain.PaginationParams) ([]domain.Trip, int64, error) {
	all := r.all()
	return page(all, p), int64(len(all)), nil
}

func (r memTrips) ListAll(_ context.Context) ([]domain.Trip, error) {
	return r.all(), nil
}

func (r memTrips) Update(_ context.Context, trip domain.Trip) (domain.Trip, error) {
	if _, ok := r.m.trips[trip.ID]; !ok {
		return domain.Trip{}, domain.ErrNotFound
	}
	if _, ok := r.m.vehicles[trip.VehicleID]; !ok {
		return domain.Trip{}, domain.ErrInvalidReference
	}
	trip.Vehicle = nil
	trip.UpdatedAt = r.m.tick()
	r.m.trips[trip.ID] = trip
	return r.m.withVehicle(trip), nil
}

func (r memTrips) Delete(_ context.Context, id uuid.UUID) (bool, error) {
	if r.m.failTripDelete != nil {
		return false, r.m.failTripDelete
	}
	if _, ok := r.m.trips[id]; !ok {
		return false, nil
	}
	for _, c := range r.m.cargos {
		if c.TripID == id {
			return false, domain.ErrInvalidReference
		}
	}
	delete(r.m.trips, id)
	return true, nil
}

func (r memTrips) Lock(_ context.Context, ids ...uuid.UUID) error {
	r.m.locks = append(r.m.locks, slices.Clone(ids))
	return nil
}

// ---- CargoRepo ------------------------------------------------------------------

type memCargos struct{ m *memStore }

func (r memCargos) Create(_ context.Context, cargo domain.Cargo) (domain.Cargo, error) {
	if r.m.failCargoCreate != nil {
		return domain.Cargo{}, r.m.failCargoCreate
	}
	if _, ok := r.m.trips[cargo.TripID]; !ok {
		return domain.Cargo{}, domain.ErrInvalidReference
	}
	now := r.m.tick()
	cargo.ID, cargo.CreatedAt, cargo.UpdatedAt = uuid.New(), now, now
	r.m.cargos[cargo.ID] = cargo
	return cargo, nil
}

func (r memCargos) GetByID(_ context.Context, id uuid.UUID) (domain.Cargo, error) {
	c, ok := r.m.cargos[id]
	if !ok {
		return domain.Cargo{}, domain.ErrNotFound
	}
	return c, nil
}

func (r memCargos) GetForUpdate(ctx context.Context, id uuid.UUID) (domain.Cargo, error) {
	return r.GetByID(ctx, id)
}

func (r memCargos) ListByTripID(_ context.Context, tripID uuid.UUID) ([]domain.Cargo, error) {
	var out []domain.Cargo
	for _, c := range r.m.cargos {
		if c.TripID == tripID {
			out = append(out, c)
		}
	}
	slices.SortFunc(out, func(a, b domain.Cargo) int { return a.CreatedAt.Compare(b.CreatedAt) })
	return out, nil
}

func (r memCargos) List(_ context.Context, p domain.PaginationParams) ([]domain.Cargo, int64, error) {
	all := slices.Collect(maps.Values(r.m.cargos))
	slices.SortFunc(all, func(a, b domain.Cargo) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return page(all, p), int64(len(all)), nil
}

func (r memCargos) Update(_ context.Context, cargo domain.Cargo) (domain.Cargo, error) {
	if _, ok := r.m.cargos[cargo.ID]; !ok {
		return domain.Cargo{}, domain.ErrNotFound
	}
	if _, ok := r.m.trips[cargo.TripID]; !ok {
		return domain.Cargo{}, domain.ErrInvalidReference
	}
	cargo.UpdatedAt = r.m.tick()
	r.m.cargos[cargo.ID] = cargo
	return cargo, nil
}

func (r memCargos) Delete(_ context.Context, id uuid.UUID) (bool, error) {
	if _, ok := r.m.cargos[id]; !ok {
		return false, nil
	}
	delete(r.m.cargos, id)
	return true, nil
}

func (r memCargos) DeleteByTripID(_ context.Context, tripID uuid.UUID) (int64, error) {
	var n int64
	for id, c := range r.m.cargos {
		if c.TripID == tripID {
			delete(r.m.cargos, id)
			n++
		}
	}
	return n, nil
}

func (r memCargos) Space(_ context.Context, tripID uuid.UUID, exclude *uuid.UUID) (domain.Space, error) {
	t, ok := r.m.trips[tripID]
	if !ok {
		return domain.Space{}, domain.NewNotFound("trip", tripID)
	}
	v, ok := r.m.vehicles[t.VehicleID]
	if !ok {
		return domain.Space{}, domain.NewNotFound("vehicle", t.VehicleID)
	}
	return domain.Space{TripID: tripID, Capacity: v.Capacity, Used: r.m.usedLocked(tripID, exclude)}, nil
}

func (r memCargos) Overloaded(_ context.Context) ([]domain.Space, error) {
	out := []domain.Space{}
	for id, t := range r.m.trips {
		v := r.m.vehicles[t.VehicleID]
		s := domain.Space{TripID: id, Capacity: v.Capacity, Used: r.m.usedLocked(id, nil)}
		if s.Overloaded() {
			out = append(out, s)
		}
	}
	slices.SortFunc(out, func(a, b domain.Space) int { return cmp.Compare(a.TripID.String(), b.TripID.String()) })
	return out, nil
}

var (
	_ repo.VehicleRepo = memVehicles{}
	_ repo.TripRepo    = memTrips{}
	_ repo.CargoRepo   = memCargos{}
)

// ---- fixtures -------------------------------------------------------------------

func intPtr(v int) *int { return &v }
func strPtr(v string) *string { return &v }
func idPtr(v uuid.UUID) *uuid.UUID { return &v }
