// Package adamsdb implements the SQLite persistence layer of the resolution
// engine: the slice-transactional sink of a resolution run, the loaders used
// to resume a run and to drive the chain-lifting passes, and the frozen
// global-id encoding shared by all tables.
package adamsdb

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// LocVBits is the number of low bits of a global generator id holding the
// index within a homological degree; the bits above hold s. The split is
// frozen: ids never change once emitted.
const LocVBits = 19

// LocID packs the global id of the generator with the given homological
// degree and per-degree index.
func LocID(s, v int) int64 {
	return int64(s)<<LocVBits | int64(v)
}

// SplitID recovers (s, v) from a global id.
func SplitID(id int64) (s, v int) {
	return int(id >> LocVBits), int(id & (1<<LocVBits - 1))
}

// DB wraps a SQLite database holding resolution data.
type DB struct {
	*sql.DB
	path string
}

// Open opens (creating if needed) the database at the given path.
func Open(path string) (*DB, error) {
	sqldb, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("adamsdb: open %s: %w", path, err)
	}
	// The sink is single-writer; a single connection keeps transactions and
	// reads on the same handle.
	sqldb.SetMaxOpenConns(1)
	if _, err := sqldb.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		sqldb.Close()
		return nil, fmt.Errorf("adamsdb: %s: %w", path, err)
	}
	return &DB{DB: sqldb, path: path}, nil
}

// Path returns the filesystem path of the database.
func (db *DB) Path() string {
	return db.path
}

func (db *DB) hasTable(name string) (bool, error) {
	var n int
	err := db.QueryRow("SELECT count(*) FROM sqlite_master WHERE type='table' AND name=?1", name).Scan(&n)
	return n > 0, err
}

// Version keys of the version table. The ids follow the original table
// layout: fixed integers with a descriptive name column.
const (
	verKeyVersion     = 0
	verKeyTMax        = 817812698
	verKeyTimestamp   = 1954841564
	verKeyCheckpointS = 528792904
	verKeyCheckpointT = 1044883879
	verKeyFingerprint = 1472355827
)

// FormatVersion identifies the persisted schema.
const FormatVersion = 1

func createVersionTable(tx *sql.Tx) error {
	_, err := tx.Exec("CREATE TABLE IF NOT EXISTS version (id INTEGER PRIMARY KEY, name TEXT, value);")
	return err
}

func setVersion(tx *sql.Tx, id int64, name string, value any) error {
	_, err := tx.Exec(
		"INSERT INTO version (id, name, value) VALUES (?1, ?2, ?3) ON CONFLICT(id) DO UPDATE SET value=excluded.value;",
		id, name, value)
	return err
}

func getVersionInt(db *DB, id int64) (int64, bool, error) {
	var v int64
	err := db.QueryRow("SELECT value FROM version WHERE id=?1", id).Scan(&v)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return v, true, nil
}

func getVersionText(db *DB, id int64) (string, bool, error) {
	var v string
	err := db.QueryRow("SELECT value FROM version WHERE id=?1", id).Scan(&v)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}
