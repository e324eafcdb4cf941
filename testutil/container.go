//go:build integration

package testutil

import (
	"context"
	"fmt"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/pkordes/cargotrack/backend/migrations"
)

// PostgresContainer is a throwaway, fully migrated Postgres instance.
type PostgresContainer struct {
	container *postgres.PostgresContainer
	DSN       string
}

// StartPostgres boots Postgres in Docker and applies every migration.
// Callers must Terminate the container.
func StartPostgres(ctx context.Context) (*PostgresContainer, error) {
	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("cargotrack"),
		postgres.WithUsername("cargotrack"),
		postgres.WithPassword("cargotrack"),
		testcontainers.WithWaitStrategy(wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		return nil, fmt.Errorf("testutil.StartPostgres: run: %w", err)
	}
	pc := &PostgresContainer{container: container}

	pc.DSN, err = container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = pc.Terminate(ctx)
		return nil, fmt.Errorf("testutil.StartPostgres: dsn: %w", err)
	}

	db := MustOpenSQLDB(pc.DSN)
	defer db.Close()
	if _, err := migrations.Up(ctx, db); err != nil {
		_ = pc.Terminate(ctx)
		return nil, fmt.Errorf("testutil.StartPostgres: %w", err)
	}
	return pc, nil
}

// Terminate stops and removes the container.
func (pc *PostgresContainer) Terminate(ctx context.Context) error {
	return pc.container.Terminate(ctx)
}
