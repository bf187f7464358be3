package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver
	_ "modernc.org/sqlite"             // pure go sqlite driver

	"github.com/linetiles/linetiles/gas"
)

const (
	defaultSQLitePath  = "linetiles.db"
	defaultPostgresDSN = "postgres://localhost/linetiles?sslmode=disable"
)

// payload is the JSON column of a stored spectrum.
type payload struct {
	X values `json:"x"`
	Y values `json:"y"`
}

// values encodes NaN and infinities, which plain JSON numbers cannot hold, as the strings
// "NaN", "+Inf" and "-Inf".
type values []float64

func (v values) MarshalJSON() ([]byte, error) {
	out := make([]any, len(v))
	for i, f := range v {
		switch {
		case math.IsNaN(f):
			out[i] = "NaN"
		case math.IsInf(f, 1):
			out[i] = "+Inf"
		case math.IsInf(f, -1):
			out[i] = "-Inf"
		default:
			out[i] = f
		}
	}
	return json.Marshal(out)
}

func (v *values) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make([]float64, len(raw))
	for i, r := range raw {
		var s string
		if err := json.Unmarshal(r, &s); err == nil {
			f, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return fmt.Errorf("value %d: %w", i, err)
			}
			out[i] = f
			continue
		}
		if err := json.Unmarshal(r, &out[i]); err != nil {
			return fmt.Errorf("value %d: %w", i, err)
		}
	}
	*v = out
	return nil
}

// SQL stores spectra in a single table keyed by (model, segment) with JSON payloads.
type SQL struct {
	db     *sql.DB
	driver Driver
	mu     sync.Mutex
}

var _ Store = (*SQL)(nil)

// NewSQLite opens (creating if needed) the sqlite database at path.
func NewSQLite(ctx context.Context, path string) (*SQL, error) {
	if path == "" {
		path = defaultSQLitePath
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	return newSQL(ctx, db, DriverSQLite, "BLOB")
}

// NewPostgres opens the postgres database at dsn.
func NewPostgres(ctx context.Context, dsn string) (*SQL, error) {
	if dsn == "" {
		dsn = defaultPostgresDSN
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return newSQL(ctx, db, DriverPostgres, "JSONB")
}

func newSQL(ctx context.Context, db *sql.DB, driver Driver, payloadType string) (*SQL, error) {
	ddl := `CREATE TABLE IF NOT EXISTS spectra (
		model TEXT NOT NULL,
		segment TEXT NOT NULL,
		payload ` + payloadType + ` NOT NULL,
		PRIMARY KEY (model, segment)
	)`
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create spectra table: %w", err)
	}
	return &SQL{db: db, driver: driver}, nil
}

// Load implements gas.SpectrumBacking.
func (s *SQL) Load(ctx context.Context, key gas.SpectrumKey) (gas.Spectrum, bool, error) {
	var raw []byte
	err := s.db.QueryRowContext(ctx,
		s.rebind(`SELECT payload FROM spectra WHERE model = ? AND segment = ?`),
		key.Model, key.Segment).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return gas.Spectrum{}, false, nil
	}
	if err != nil {
		return gas.Spectrum{}, false, fmt.Errorf("select spectrum: %w", err)
	}
	var p payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return gas.Spectrum{}, false, fmt.Errorf("decode spectrum %s/%s: %w", key.Model, key.Segment, err)
	}
	return gas.Spectrum{X: p.X, Y: p.Y}, true, nil
}

// Save implements gas.SpectrumBacking, replacing any previous spectrum for key.
func (s *SQL) Save(ctx context.Context, key gas.SpectrumKey, sp gas.Spectrum) error {
	raw, err := json.Marshal(payload{X: sp.X, Y: sp.Y})
	if err != nil {
		return fmt.Errorf("encode spectrum: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err = s.db.ExecContext(ctx, s.rebind(`INSERT INTO spectra (model, segment, payload) VALUES (?, ?, ?)
		ON CONFLICT (model, segment) DO UPDATE SET payload = excluded.payload`),
		key.Model, key.Segment, raw)
	if err != nil {
		return fmt.Errorf("upsert spectrum: %w", err)
	}
	return nil
}

// Delete removes every spectrum of model.
func (s *SQL) Delete(ctx context.Context, model string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.db.ExecContext(ctx, s.rebind(`DELETE FROM spectra WHERE model = ?`), model); err != nil {
		return fmt.Errorf("delete spectra: %w", err)
	}
	return nil
}

func (s *SQL) Driver() Driver { return s.driver }
func (s *SQL) Close() error   { return s.db.Close() }

// rebind turns ? placeholders into $n for postgres.
func (s *SQL) rebind(query string) string {
	if s.driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
