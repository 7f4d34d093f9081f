package ephem

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Store is a sqlite-backed Provider for ephemeris tables too large to keep
// resident. Reads interpolate between the bracketing rows per query.
type Store struct {
	db *sql.DB
}

// OpenStore opens (or creates) an ephemeris database at path.
func OpenStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS ephemeris (
			observer   TEXT NOT NULL,
			mjd        DOUBLE NOT NULL,
			pos_x      DOUBLE NOT NULL,
			pos_y      DOUBLE NOT NULL,
			pos_z      DOUBLE NOT NULL,
			vel_x      DOUBLE NOT NULL,
			vel_y      DOUBLE NOT NULL,
			vel_z      DOUBLE NOT NULL,
			import_id  TEXT NOT NULL,
			PRIMARY KEY (observer, mjd)
		);
		CREATE INDEX IF NOT EXISTS idx_ephemeris_observer_mjd
			ON ephemeris(observer, mjd);
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create ephemeris schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

// Import inserts a batch of samples for an observer and returns the
// generated import batch id.
func (s *Store) Import(observer string, states []State) (string, error) {
	if len(states) == 0 {
		return "", fmt.Errorf("no samples to import for observer %q", observer)
	}
	importID := uuid.New().String()

	tx, err := s.db.Begin()
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO ephemeris (observer, mjd, pos_x, pos_y, pos_z, vel_x, vel_y, vel_z, import_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", err
	}
	defer stmt.Close()

	for _, st := range states {
		_, err := stmt.Exec(observer, st.MJD,
			st.Pos[0], st.Pos[1], st.Pos[2],
			st.Vel[0], st.Vel[1], st.Vel[2],
			importID)
		if err != nil {
			return "", fmt.Errorf("insert ephemeris sample at MJD %v: %w", st.MJD, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return "", err
	}
	return importID, nil
}

// Covers reports whether mjd falls inside the observer's stored range.
func (s *Store) Covers(observer string, mjd float64) bool {
	start, end, ok := s.coverage(observer)
	return ok && mjd >= start && mjd <= end
}

func (s *Store) coverage(observer string) (start, end float64, ok bool) {
	var minMJD, maxMJD sql.NullFloat64
	err := s.db.QueryRow(
		`SELECT MIN(mjd), MAX(mjd) FROM ephemeris WHERE observer = ?`, observer,
	).Scan(&minMJD, &maxMJD)
	if err != nil || !minMJD.Valid {
		return 0, 0, false
	}
	return minMJD.Float64, maxMJD.Float64, true
}

// State returns the interpolated state at mjd, reading only the bracketing
// rows.
func (s *Store) State(observer string, mjd float64) (State, error) {
	start, end, ok := s.coverage(observer)
	if !ok {
		return State{}, &EphemerisUnavailableError{Observer: observer, Epoch: mjd}
	}
	if mjd < start || mjd > end {
		return State{}, &EphemerisUnavailableError{Observer: observer, Epoch: mjd, Start: start, End: end}
	}

	below, err := s.queryRow(observer,
		`SELECT mjd, pos_x, pos_y, pos_z, vel_x, vel_y, vel_z FROM ephemeris
		 WHERE observer = ? AND mjd <= ? ORDER BY mjd DESC LIMIT 1`, mjd)
	if err != nil {
		return State{}, err
	}
	if below.MJD == mjd {
		return below, nil
	}
	above, err := s.queryRow(observer,
		`SELECT mjd, pos_x, pos_y, pos_z, vel_x, vel_y, vel_z FROM ephemeris
		 WHERE observer = ? AND mjd > ? ORDER BY mjd ASC LIMIT 1`, mjd)
	if err != nil {
		return State{}, err
	}
	return lerp(below, above, mjd), nil
}

func (s *Store) queryRow(observer, query string, mjd float64) (State, error) {
	var st State
	err := s.db.QueryRow(query, observer, mjd).Scan(
		&st.MJD,
		&st.Pos[0], &st.Pos[1], &st.Pos[2],
		&st.Vel[0], &st.Vel[1], &st.Vel[2])
	if err != nil {
		return State{}, fmt.Errorf("query ephemeris for %q: %w", observer, err)
	}
	return st, nil
}
