package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/cargotrack/backend/internal/domain"
	"github.com/pkordes/cargotrack/backend/internal/handler"
)

// ---- mock servicers ----------------------------------------------------------
// Each method is a function field; set only the ones your test needs.

type mockVehicleServicer struct {
	list        func(ctx context.Context) ([]domain.Vehicle, error)
	getByID     func(ctx context.Context, id uuid.UUID) (domain.Vehicle, error)
	getByTripID func(ctx context.Context, tripID uuid.UUID) (domain.Vehicle, error)
}

func (m *mockVehicleServicer) List(ctx context.Context) ([]domain.Vehicle, error) {
	return m.list(ctx)
}
func (m *mockVehicleServicer) GetByID(ctx context.Context, id uuid.UUID) (domain.Vehicle, error) {
	return m.getByID(ctx, id)
}
func (m *mockVehicleServicer) GetByTripID(ctx context.Context, tripID uuid.UUID) (domain.Vehicle, error) {
	return m.getByTripID(ctx, tripID)
}

type mockTripServicer struct {
	create       func(ctx context.Context, trip domain.Trip) (domain.Trip, error)
	getLoad      func(ctx context.Context, id uuid.UUID) (domain.TripLoad, error)
	list         func(ctx context.Context, p domain.PaginationParams) ([]domain.TripLoad, int64, error)
	update       func(ctx context.Context, id uuid.UUID, patch domain.TripPatch) (domain.Trip, error)
	delete       func(ctx context.Context, id uuid.UUID) error
	destinations func() []string
}

func (m *mockTripServicer) Create(ctx context.Context, t domain.Trip) (domain.Trip, error) {
	return m.create(ctx, t)
}
func (m *mockTripServicer) GetLoad(ctx context.Context, id uuid.UUID) (domain.TripLoad, error) {
	return m.getLoad(ctx, id)
}
func (m *mockTripServicer) List(ctx context.Context, p domain.PaginationParams) ([]domain.TripLoad, int64, error) {
	return m.list(ctx, p)
}
func (m *mockTripServicer) Update(ctx context.Context, id uuid.UUID, p domain.TripPatch) (domain.Trip, error) {
	return m.update(ctx, id, p)
}
func (m *mockTripServicer) Delete(ctx context.Context, id uuid.UUID) error {
	return m.delete(ctx, id)
}
func (m *mockTripServicer) Destinations() []string {
	return m.destinations()
}

type mockCargoServicer struct {
	create     func(ctx context.Context, c domain.Cargo) (domain.Cargo, error)
	get        func(ctx context.Context, id uuid.UUID) (domain.Cargo, error)
	listByTrip func(ctx context.Context, tripID uuid.UUID) ([]domain.Cargo, error)
	list       func(ctx context.Context, p domain.PaginationParams) ([]domain.Cargo, int64, error)
	update     func(ctx context.Context, id uuid.UUID, p domain.CargoPatch) (domain.Cargo, error)
	delete     func(ctx context.Context, id uuid.UUID) error
}

func (m *mockCargoServicer) Create(ctx context.Context, c domain.Cargo) (domain.Cargo, error) {
	return m.create(ctx, c)
}
func (m *mockCargoServicer) Get(ctx context.Context, id uuid.UUID) (domain.Cargo, error) {
	return m.get(ctx, id)
}
func (m *mockCargoServicer) ListByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.Cargo, error) {
	return m.listByTrip(ctx, tripID)
}
func (m *mockCargoServicer) List(ctx context.Context, p domain.PaginationParams) ([]domain.Cargo, int64, error) {
	return m.list(ctx, p)
}
func (m *mockCargoServicer) Update(ctx context.Context, id uuid.UUID, p domain.CargoPatch) (domain.Cargo, error) {
	return m.update(ctx, id, p)
}
func (m *mockCargoServicer) Delete(ctx context.Context, id uuid.UUID) error {
	return m.delete(ctx, id)
}

type mockSpaceServicer struct {
	space func(ctx context.Context, tripID uuid.UUID, exclude *uuid.UUID) (domain.Space, error)
}

func (m *mockSpaceServicer) Space(ctx context.Context, tripID uuid.UUID, exclude *uuid.UUID) (domain.Space, error) {
	return m.space(ctx, tripID, exclude)
}

type mockExportServicer struct {
	manifest func(ctx context.Context) ([]domain.ManifestRow, error)
}

func (m *mockExportServicer) Manifest(ctx context.Context) ([]domain.ManifestRow, error) {
	return m.manifest(ctx)
}

// compile-time checks
var (
	_ handler.VehicleServicer = (*mockVehicleServicer)(nil)
	_ handler.TripServicer    = (*mockTripServicer)(nil)
	_ handler.CargoServicer   = (*mockCargoServicer)(nil)
	_ handler.SpaceServicer   = (*mockSpaceServicer)(nil)
	_ handler.ExportServicer  = (*mockExportServicer)(nil)
)

// ---- helpers ---------------------------------------------------------------

// mocks bundles the servicers; nil fields are never called by the test using them.
type mocks struct {
	vehicles *mockVehicleServicer
	trips    *mockTripServicer
	cargos   *mockCargoServicer
	space    *mockSpaceServicer
	export   *mockExportServicer
}

// newHTTPHandler wires a Server with the given mocks into a chi router,
// the same way main.go does in production.
func newHTTPHandler(m mocks) http.Handler {
	srv := handler.NewServer(m.vehicles, m.trips, m.cargos, m.space, m.export, nil)
	return srv.Handler()
}

// do runs one request through h and returns the recorder.
func do(h http.Handler, method, path string, body io.Reader) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) handler.ErrorDetail {
	t.Helper()
	var resp handler.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp.Error
}
