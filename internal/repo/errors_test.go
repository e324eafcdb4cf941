package repo

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/pkordes/cargotrack/backend/internal/domain"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		in   error
		want error
	}{
		{"no rows", pgx.ErrNoRows, domain.ErrNotFound},
		{"deadline", context.DeadlineExceeded, domain.ErrTransientStorage},
		{"serialization", &pgconn.PgError{Code: "40001"}, domain.ErrTransientStorage},
		{"deadlock", &pgconn.PgError{Code: "40P01"}, domain.ErrTransientStorage},
		{"connection class", &pgconn.PgError{Code: "08006"}, domain.ErrTransientStorage},
		{"admin shutdown", &pgconn.PgError{Code: "57P01"}, domain.ErrTransientStorage},
		{"too many connections", &pgconn.PgError{Code: "53300"}, domain.ErrTransientStorage},
		{"foreign key", &pgconn.PgError{Code: "23503"}, domain.ErrInvalidReference},
		{"check", &pgconn.PgError{Code: "23514"}, domain.ErrDataIntegrity},
		{"not null", &pgconn.PgError{Code: "23502"}, domain.ErrDataIntegrity},
		{"numeric out of range", &pgconn.PgError{Code: "22003"}, domain.ErrValidation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := classify(fmt.Errorf("wrapped: %w", tc.in))
			assert.ErrorIs(t, got, tc.want)
		})
	}
}

func TestClassify_KeepsDriverError(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "40001"}

	got := classify(pgErr)

	var target *pgconn.PgError
	assert.ErrorAs(t, got, &target)
	assert.True(t, isRetryableConflict(got))
	assert.True(t, domain.IsRetryable(got))
}

func TestClassify_Passthrough(t *testing.T) {
	assert.NoError(t, classify(nil))

	other := errors.New("boom")
	assert.Equal(t, other, classify(other))

	unique := &pgconn.PgError{Code: "23505"}
	assert.Equal(t, error(unique), classify(unique))
}

func TestIsRetryableConflict(t *testing.T) {
	assert.True(t, isRetryableConflict(&pgconn.PgError{Code: "40P01"}))
	assert.False(t, isRetryableConflict(&pgconn.PgError{Code: "08006"}), "connection loss is not replayed")
	assert.False(t, isRetryableConflict(errors.New("boom")))
}

func TestLockOrder_SortsAndDeduplicates(t *testing.T) {
	a := uuid.MustParse("00000000-0000-0000-0000-000000000001")
	b := uuid.MustParse("00000000-0000-0000-0000-000000000002")
	c := uuid.MustParse("ffffffff-0000-0000-0000-000000000000")

	in := []uuid.UUID{c, a, b, a}
	got := lockOrder(in)

	assert.Equal(t, []uuid.UUID{a, b, c}, got)
	assert.Equal(t, []uuid.UUID{c, a, b, a}, in, "input is not reordered")
}
