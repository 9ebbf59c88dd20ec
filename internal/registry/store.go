package registry

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

const freshnessWindow = 365 * 24 * 60 * 60 // 1 year, in seconds

// Record is a single registration row.
type Record struct {
	ID        string
	Address   string
	Nonce     string
	UpdatedAt int64
}

func (r Record) fresh(now int64) bool {
	return now-r.UpdatedAt < freshnessWindow
}

// Store persists registrations in a single-table SQLite database.
type Store struct {
	db *sql.DB
}

// OpenStore opens (creating if needed) the SQLite-backed registration
// store at path.
func OpenStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open registry db: %w", err)
	}
	db.SetMaxOpenConns(1) // registry access is already serialised by Server.mu

	const schema = `
CREATE TABLE IF NOT EXISTS registrations (
	id TEXT PRIMARY KEY,
	address TEXT NOT NULL,
	nonce TEXT NOT NULL,
	updated_at INTEGER NOT NULL
)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create registrations table: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// ErrExists is returned by Insert when the id is already registered.
var ErrExists = fmt.Errorf("id already registered")

// Insert creates a new record with a freshly minted nonce. It fails with
// ErrExists if id is already present — re-registration is refused
// outright, never merged.
func (s *Store) Insert(id, address string) (Record, error) {
	id = NormalizeID(id)

	var exists int
	if err := s.db.QueryRow(`SELECT 1 FROM registrations WHERE id = ?`, id).Scan(&exists); err == nil {
		return Record{}, ErrExists
	} else if err != sql.ErrNoRows {
		return Record{}, fmt.Errorf("check existing id: %w", err)
	}

	rec := Record{
		ID:        id,
		Address:   address,
		Nonce:     newNonce(),
		UpdatedAt: time.Now().Unix(),
	}
	_, err := s.db.Exec(
		`INSERT INTO registrations (id, address, nonce, updated_at) VALUES (?, ?, ?, ?)`,
		rec.ID, rec.Address, rec.Nonce, rec.UpdatedAt,
	)
	if err != nil {
		return Record{}, fmt.Errorf("insert registration: %w", err)
	}
	return rec, nil
}

// Get returns the raw stored record regardless of freshness.
func (s *Store) Get(id string) (Record, bool, error) {
	id = NormalizeID(id)
	var rec Record
	rec.ID = id
	err := s.db.QueryRow(
		`SELECT address, nonce, updated_at FROM registrations WHERE id = ?`, id,
	).Scan(&rec.Address, &rec.Nonce, &rec.UpdatedAt)
	if err == sql.ErrNoRows {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, fmt.Errorf("get registration: %w", err)
	}
	return rec, true, nil
}

// GetFresh returns the record only if it falls within the freshness
// window; stale rows are reported as absent without being deleted.
func (s *Store) GetFresh(id string) (Record, bool, error) {
	rec, ok, err := s.Get(id)
	if err != nil || !ok {
		return rec, ok, err
	}
	if !rec.fresh(time.Now().Unix()) {
		return Record{}, false, nil
	}
	return rec, true, nil
}

// UpdateAddress overwrites address and updated_at for id. Callers are
// responsible for authenticating the nonce beforehand.
func (s *Store) UpdateAddress(id, address string) error {
	id = NormalizeID(id)
	_, err := s.db.Exec(
		`UPDATE registrations SET address = ?, updated_at = ? WHERE id = ?`,
		address, time.Now().Unix(), id,
	)
	if err != nil {
		return fmt.Errorf("update registration: %w", err)
	}
	return nil
}
