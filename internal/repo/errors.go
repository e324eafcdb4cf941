package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/pkordes/cargotrack/backend/internal/domain"
)

// SQLSTATE codes the repo layer reacts to.
const (
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeForeignKeyViolation  = "23503"
	codeCheckViolation       = "23514"
	codeNotNullViolation     = "23502"
	codeNumericOutOfRange    = "22003"
	codeTooManyConnections   = "53300"
)

// classify maps driver errors onto the domain taxonomy.
// The original error stays in the chain so callers can still inspect it.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", domain.ErrTransientStorage, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == codeSerializationFailure,
			pgErr.Code == codeDeadlockDetected,
			pgErr.Code == codeTooManyConnections,
			strings.HasPrefix(pgErr.Code, "08"), // connection exception class
			strings.HasPrefix(pgErr.Code, "57P"): // admin shutdown, crash shutdown, cannot connect now
			return fmt.Errorf("%w: %w", domain.ErrTransientStorage, err)
		case pgErr.Code == codeForeignKeyViolation:
			return fmt.Errorf("%w: %w", domain.ErrInvalidReference, err)
		case pgErr.Code == codeCheckViolation, pgErr.Code == codeNotNullViolation:
			return fmt.Errorf("%w: %w", domain.ErrDataIntegrity, err)
		case pgErr.Code == codeNumericOutOfRange:
			return fmt.Errorf("%w: value out of range: %w", domain.ErrValidation, err)
		}
		return err
	}

	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) || pgconn.Timeout(err) || pgconn.SafeToRetry(err) {
		return fmt.Errorf("%w: %w", domain.ErrTransientStorage, err)
	}
	return err
}

// isRetryableConflict reports whether err is a serialization failure or
// deadlock, i.e. the whole transaction can be replayed from the start.
func isRetryableConflict(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == codeSerializationFailure || pgErr.Code == codeDeadlockDetected
}
