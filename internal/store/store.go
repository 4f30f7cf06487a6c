// Package store defines the installation record store contract and an
// in-memory implementation. The Postgres implementation lives in
// internal/repository; engines and services only ever see this interface so
// tests can inject isolated fixtures.
package store

import (
	"context"

	"pvcommunity/internal/models"
)

// Store persists installations and their monthly readings. Iteration is
// snapshot-consistent: concurrent writes never surface a half-updated
// record to a running aggregation. Per (installation, period) the conflict
// policy is last write wins; no cross-record transactions exist.
type Store interface {
	// UpsertInstallation creates the record or updates its attributes,
	// keyed by hash. The attributes the hash is derived from (kwp, region,
	// installation year) and the fixed mounting geometry (ausrichtung,
	// neigung_grad) never change on update; only equipment attributes do.
	// Reports whether a new record was created.
	UpsertInstallation(ctx context.Context, inst *models.Installation) (created bool, err error)

	// AppendReadings upserts readings by (jahr, monat). Resubmitting a
	// period overwrites the stored values. Fails with
	// community.ErrNotFound for unknown hashes.
	AppendReadings(ctx context.Context, hash string, readings []models.MonthlyReading) error

	// GetInstallation loads the record with all readings, newest first.
	GetInstallation(ctx context.Context, hash string) (*models.Installation, error)

	// DeleteInstallation removes the record and every reading, returning
	// the number of deleted months.
	DeleteInstallation(ctx context.Context, hash string) (deletedMonths int, err error)

	// Iterate streams every installation (with readings) through fn,
	// holding only one record in memory at a time. The sequence restarts
	// on every call. A non-nil error from fn aborts the scan.
	Iterate(ctx context.Context, fn func(*models.Installation) error) error

	// CountInstallations returns the number of stored installations.
	CountInstallations(ctx context.Context) (int, error)

	// CountReadings returns the total number of stored monthly readings.
	CountReadings(ctx context.Context) (int, error)
}
