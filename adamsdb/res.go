package adamsdb

import (
	"encoding/hex"
	"fmt"
	"time"

	"github.com/zeebo/blake3"

	"github.com/sseq-go/adams/resolution"
	"github.com/sseq-go/adams/steenrod"
)

// ResSink persists a resolution run into four tables:
//
//	<table>_generators (id INTEGER PRIMARY KEY, s SMALLINT, t SMALLINT, diff BLOB)
//	<table>_gb         (id INTEGER PRIMARY KEY, s SMALLINT, t SMALLINT, x1 BLOB, x2 BLOB)
//	<table>_cycles     (s SMALLINT, t SMALLINT, idx INTEGER, cycle BLOB, PRIMARY KEY (s, t, idx))
//	<table>_time       (s SMALLINT, t SMALLINT, time REAL, PRIMARY KEY (s, t))
//
// plus the version table carrying the schema version, a timestamp, the last
// committed (s, t) and a chained blake3 fingerprint of all committed blobs.
// Every slice is one transaction: after a crash the database holds exactly
// the slices committed so far.
type ResSink struct {
	db    *DB
	table string

	fingerprint [32]byte
}

// NewResSink prepares a sink writing to the given table prefix, creating the
// tables if they do not exist.
func NewResSink(db *DB, table string) (*ResSink, error) {
	tx, err := db.Begin()
	if err != nil {
		return nil, fmt.Errorf("adamsdb: %w", err)
	}
	defer tx.Rollback()
	if err := createVersionTable(tx); err != nil {
		return nil, fmt.Errorf("adamsdb: %w", err)
	}
	stmts := []string{
		fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s_generators (id INTEGER PRIMARY KEY, s SMALLINT, t SMALLINT, diff BLOB);", table),
		fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s_gb (id INTEGER PRIMARY KEY, s SMALLINT, t SMALLINT, x1 BLOB, x2 BLOB);", table),
		fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s_cycles (s SMALLINT, t SMALLINT, idx INTEGER, cycle BLOB, PRIMARY KEY (s, t, idx));", table),
		fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s_time (s SMALLINT, t SMALLINT, time REAL, PRIMARY KEY (s, t));", table),
	}
	for _, s := range stmts {
		if _, err := tx.Exec(s); err != nil {
			return nil, fmt.Errorf("adamsdb: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("adamsdb: %w", err)
	}
	sink := &ResSink{db: db, table: table}
	if fp, ok, err := getVersionText(db, verKeyFingerprint); err != nil {
		return nil, fmt.Errorf("adamsdb: %w", err)
	} else if ok {
		b, err := hex.DecodeString(fp)
		if err != nil || len(b) != len(sink.fingerprint) {
			return nil, fmt.Errorf("adamsdb: corrupt fingerprint %q", fp)
		}
		copy(sink.fingerprint[:], b)
	}
	return sink, nil
}

// Start implements [resolution.Sink]: it records the schema version and the
// level-0 generators of the presentation.
func (k *ResSink) Start(p *resolution.Presentation) error {
	tx, err := k.db.Begin()
	if err != nil {
		return fmt.Errorf("adamsdb: %w", err)
	}
	defer tx.Rollback()
	if err := setVersion(tx, verKeyVersion, "version", FormatVersion); err != nil {
		return fmt.Errorf("adamsdb: %w", err)
	}
	if err := setVersion(tx, verKeyTimestamp, "timestamp", time.Now().Unix()); err != nil {
		return fmt.Errorf("adamsdb: %w", err)
	}
	if err := setVersion(tx, verKeyTMax, "t_max", -1); err != nil {
		return fmt.Errorf("adamsdb: %w", err)
	}
	for i, d := range p.GenDegs {
		if _, err := tx.Exec(
			fmt.Sprintf("INSERT OR REPLACE INTO %s_generators (id, s, t, diff) VALUES (?1, 0, ?2, ?3);", k.table),
			LocID(0, i), d, []byte{}); err != nil {
			return fmt.Errorf("adamsdb: %w", err)
		}
	}
	return tx.Commit()
}

// CommitSlice implements [resolution.Sink].
func (k *ResSink) CommitSlice(sl *resolution.Slice) error {
	tx, err := k.db.Begin()
	if err != nil {
		return fmt.Errorf("adamsdb: %w", err)
	}
	defer tx.Rollback()

	h := blake3.New()
	h.Write(k.fingerprint[:])

	for _, g := range sl.Gens {
		blob := g.Diff.Bytes()
		h.Write(blob)
		if _, err := tx.Exec(
			fmt.Sprintf("INSERT INTO %s_generators (id, s, t, diff) VALUES (?1, ?2, ?3, ?4);", k.table),
			LocID(sl.S+1, g.Index), sl.S+1, sl.T, blob); err != nil {
			return fmt.Errorf("adamsdb: generator: %w", err)
		}
	}
	for _, e := range sl.Gb {
		b1, b2 := e.X1.Bytes(), e.X2.Bytes()
		h.Write(b1)
		h.Write(b2)
		if _, err := tx.Exec(
			fmt.Sprintf("INSERT INTO %s_gb (id, s, t, x1, x2) VALUES (?1, ?2, ?3, ?4, ?5);", k.table),
			LocID(sl.S, e.Index), sl.S, sl.T, b1, b2); err != nil {
			return fmt.Errorf("adamsdb: gb: %w", err)
		}
	}
	for i, z := range sl.Cycles {
		blob := z.Bytes()
		h.Write(blob)
		if _, err := tx.Exec(
			fmt.Sprintf("INSERT INTO %s_cycles (s, t, idx, cycle) VALUES (?1, ?2, ?3, ?4);", k.table),
			sl.S+1, sl.T, i, blob); err != nil {
			return fmt.Errorf("adamsdb: cycle: %w", err)
		}
	}
	if sl.ConsumedCycles > 0 {
		if _, err := tx.Exec(
			fmt.Sprintf("DELETE FROM %s_cycles WHERE s=?1 AND t=?2;", k.table),
			sl.S, sl.T); err != nil {
			return fmt.Errorf("adamsdb: cycle cleanup: %w", err)
		}
	}
	if _, err := tx.Exec(
		fmt.Sprintf("INSERT OR IGNORE INTO %s_time (s, t, time) VALUES (?1, ?2, ?3);", k.table),
		sl.S, sl.T, sl.Seconds); err != nil {
		return fmt.Errorf("adamsdb: time: %w", err)
	}

	var fp [32]byte
	h.Sum(fp[:0])
	if err := setVersion(tx, verKeyCheckpointS, "checkpoint_s", sl.S); err != nil {
		return fmt.Errorf("adamsdb: %w", err)
	}
	if err := setVersion(tx, verKeyCheckpointT, "checkpoint_t", sl.T); err != nil {
		return fmt.Errorf("adamsdb: %w", err)
	}
	if err := setVersion(tx, verKeyFingerprint, "fingerprint", hex.EncodeToString(fp[:])); err != nil {
		return fmt.Errorf("adamsdb: %w", err)
	}
	if sl.S == sl.T {
		if err := setVersion(tx, verKeyTMax, "t_max", sl.T); err != nil {
			return fmt.Errorf("adamsdb: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("adamsdb: commit: %w", err)
	}
	k.fingerprint = fp
	return nil
}

// Fingerprint returns the chained blake3 digest of everything committed so
// far.
func (k *ResSink) Fingerprint() string {
	return hex.EncodeToString(k.fingerprint[:])
}

// LoadState reloads the committed state of an interrupted run. The second
// return value is false when the database holds no committed slice yet.
func LoadState(db *DB, table string) (*resolution.State, bool, error) {
	if ok, err := db.hasTable(table + "_gb"); err != nil || !ok {
		return nil, false, err
	}
	lastS, okS, err := getVersionInt(db, verKeyCheckpointS)
	if err != nil {
		return nil, false, err
	}
	lastT, okT, err := getVersionInt(db, verKeyCheckpointT)
	if err != nil {
		return nil, false, err
	}
	if !okS || !okT {
		return nil, false, nil
	}

	st := &resolution.State{Pending: make(map[int][]steenrod.Mod)}
	rows, err := db.Query(fmt.Sprintf("SELECT id, s, t FROM %s_generators ORDER BY s, id;", table))
	if err != nil {
		return nil, false, err
	}
	defer rows.Close()
	for rows.Next() {
		var id int64
		var s, t int
		if err := rows.Scan(&id, &s, &t); err != nil {
			return nil, false, err
		}
		for len(st.GenDegs) <= s {
			st.GenDegs = append(st.GenDegs, nil)
		}
		st.GenDegs[s] = append(st.GenDegs[s], t)
	}
	if err := rows.Err(); err != nil {
		return nil, false, err
	}

	gbRows, err := db.Query(fmt.Sprintf("SELECT id, s, x1, x2 FROM %s_gb ORDER BY s, id;", table))
	if err != nil {
		return nil, false, err
	}
	defer gbRows.Close()
	for gbRows.Next() {
		var id int64
		var s int
		var b1, b2 []byte
		if err := gbRows.Scan(&id, &s, &b1, &b2); err != nil {
			return nil, false, err
		}
		x1, err := steenrod.ModFromBytes(b1)
		if err != nil {
			return nil, false, err
		}
		x2, err := steenrod.ModFromBytes(b2)
		if err != nil {
			return nil, false, err
		}
		for len(st.Gb) <= s {
			st.Gb = append(st.Gb, nil)
		}
		st.Gb[s] = append(st.Gb[s], resolution.Element{X1: x1, X2: x2})
	}
	if err := gbRows.Err(); err != nil {
		return nil, false, err
	}

	cycRows, err := db.Query(fmt.Sprintf("SELECT s, idx, cycle FROM %s_cycles ORDER BY s, idx;", table))
	if err != nil {
		return nil, false, err
	}
	defer cycRows.Close()
	for cycRows.Next() {
		var s, idx int
		var blob []byte
		if err := cycRows.Scan(&s, &idx, &blob); err != nil {
			return nil, false, err
		}
		z, err := steenrod.ModFromBytes(blob)
		if err != nil {
			return nil, false, err
		}
		st.Pending[s] = append(st.Pending[s], z)
	}
	if err := cycRows.Err(); err != nil {
		return nil, false, err
	}

	if int(lastS) < int(lastT) {
		st.NextS, st.NextT = int(lastS)+1, int(lastT)
	} else {
		st.NextS, st.NextT = 0, int(lastT)+1
	}
	return st, true, nil
}
