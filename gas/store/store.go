// Package store persists convolved spectra between runs so that a cache miss can be served
// without convolving again.
package store

import (
	"context"
	"fmt"
	"os"

	"github.com/linetiles/linetiles/gas"
)

// Driver names a backing implementation.
type Driver string

const (
	DriverMemory   Driver = "memory"
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
)

// Environment variables read by OpenFromEnv.
const (
	EnvDriver      = "LINETILES_STORE_DRIVER"
	EnvSQLitePath  = "LINETILES_SQLITE_PATH"
	EnvPostgresDSN = "LINETILES_POSTGRES_DSN"
)

// Store is a gas.SpectrumBacking that can be closed.
type Store interface {
	gas.SpectrumBacking
	Driver() Driver
	Close() error
}

// Open returns the store for driver. dsn is the sqlite path or the postgres DSN and is
// ignored by the memory driver.
func Open(ctx context.Context, driver Driver, dsn string) (Store, error) {
	switch driver {
	case DriverMemory:
		return NewMemory(), nil
	case DriverSQLite:
		return NewSQLite(ctx, dsn)
	case DriverPostgres:
		return NewPostgres(ctx, dsn)
	default:
		return nil, fmt.Errorf("%w: unknown store driver %q", gas.ErrConfiguration, driver)
	}
}

// OpenFromEnv selects the driver from LINETILES_STORE_DRIVER, defaulting to memory.
func OpenFromEnv(ctx context.Context) (Store, error) {
	driver := Driver(os.Getenv(EnvDriver))
	if driver == "" {
		driver = DriverMemory
	}
	dsn := ""
	switch driver {
	case DriverSQLite:
		dsn = os.Getenv(EnvSQLitePath)
	case DriverPostgres:
		dsn = os.Getenv(EnvPostgresDSN)
	}
	return Open(ctx, driver, dsn)
}
