package adamsdb

import (
	"fmt"

	"github.com/sseq-go/adams/resolution"
	"github.com/sseq-go/adams/steenrod"
)

// GenCohort is the set of generators of one (s, t) bidegree of a persisted
// resolution, with their differentials. FirstV is the per-degree index of
// the first generator; the cohort's generators are contiguous.
type GenCohort struct {
	S, T   int
	FirstV int
	Diffs  []steenrod.Mod
}

// FirstID returns the global id of the first generator of the cohort.
func (c *GenCohort) FirstID() int64 {
	return LocID(c.S, c.FirstV)
}

// LoadCohorts loads the generators of a resolution grouped by bidegree, in
// lexicographic (t, s) order, truncated by t <= tMax and t-s <= stemMax.
func LoadCohorts(db *DB, table string, tMax, stemMax int) ([]GenCohort, error) {
	rows, err := db.Query(fmt.Sprintf(
		"SELECT id, s, t, diff FROM %s_generators WHERE t<=?1 AND t-s<=?2 ORDER BY t, s, id;", table),
		tMax, stemMax)
	if err != nil {
		return nil, fmt.Errorf("adamsdb: load generators: %w", err)
	}
	defer rows.Close()

	var cohorts []GenCohort
	for rows.Next() {
		var id int64
		var s, t int
		var blob []byte
		if err := rows.Scan(&id, &s, &t, &blob); err != nil {
			return nil, fmt.Errorf("adamsdb: load generators: %w", err)
		}
		diff, err := steenrod.ModFromBytes(blob)
		if err != nil {
			return nil, fmt.Errorf("adamsdb: generator %d: %w", id, err)
		}
		_, v := SplitID(id)
		if n := len(cohorts); n == 0 || cohorts[n-1].S != s || cohorts[n-1].T != t {
			cohorts = append(cohorts, GenCohort{S: s, T: t, FirstV: v})
		}
		cohorts[len(cohorts)-1].Diffs = append(cohorts[len(cohorts)-1].Diffs, diff)
	}
	return cohorts, rows.Err()
}

// LoadGb loads the Gröbner data of a persisted resolution up to internal
// degree tMax, per homological degree in append order, along with the
// generator degrees of every level.
func LoadGb(db *DB, table string, tMax int) (gb [][]resolution.Element, genDegs [][]int, err error) {
	rows, err := db.Query(fmt.Sprintf(
		"SELECT id, s, x1, x2 FROM %s_gb WHERE t<=?1 ORDER BY s, id;", table), tMax)
	if err != nil {
		return nil, nil, fmt.Errorf("adamsdb: load gb: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id int64
		var s int
		var b1, b2 []byte
		if err := rows.Scan(&id, &s, &b1, &b2); err != nil {
			return nil, nil, fmt.Errorf("adamsdb: load gb: %w", err)
		}
		x1, err := steenrod.ModFromBytes(b1)
		if err != nil {
			return nil, nil, fmt.Errorf("adamsdb: gb %d: %w", id, err)
		}
		x2, err := steenrod.ModFromBytes(b2)
		if err != nil {
			return nil, nil, fmt.Errorf("adamsdb: gb %d: %w", id, err)
		}
		for len(gb) <= s {
			gb = append(gb, nil)
		}
		gb[s] = append(gb[s], resolution.Element{X1: x1, X2: x2})
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	genDegs, err = LoadGenDegs(db, table, tMax)
	if err != nil {
		return nil, nil, err
	}
	return gb, genDegs, nil
}

// LoadGbLevel loads the Gröbner data of a single homological degree in
// append order, up to internal degree tMax. The rotating band loader of the
// map pass uses it to hold only two levels in memory.
func LoadGbLevel(db *DB, table string, s, tMax int) ([]resolution.Element, error) {
	rows, err := db.Query(fmt.Sprintf(
		"SELECT id, x1, x2 FROM %s_gb WHERE s=?1 AND t<=?2 ORDER BY id;", table), s, tMax)
	if err != nil {
		return nil, fmt.Errorf("adamsdb: load gb level %d: %w", s, err)
	}
	defer rows.Close()
	var elems []resolution.Element
	for rows.Next() {
		var id int64
		var b1, b2 []byte
		if err := rows.Scan(&id, &b1, &b2); err != nil {
			return nil, err
		}
		x1, err := steenrod.ModFromBytes(b1)
		if err != nil {
			return nil, fmt.Errorf("adamsdb: gb %d: %w", id, err)
		}
		x2, err := steenrod.ModFromBytes(b2)
		if err != nil {
			return nil, fmt.Errorf("adamsdb: gb %d: %w", id, err)
		}
		elems = append(elems, resolution.Element{X1: x1, X2: x2})
	}
	return elems, rows.Err()
}

// LoadGenDegs loads the generator degrees of every level up to tMax.
func LoadGenDegs(db *DB, table string, tMax int) ([][]int, error) {
	rows, err := db.Query(fmt.Sprintf(
		"SELECT s, t FROM %s_generators WHERE t<=?1 ORDER BY s, id;", table), tMax)
	if err != nil {
		return nil, fmt.Errorf("adamsdb: load generator degrees: %w", err)
	}
	defer rows.Close()
	var genDegs [][]int
	for rows.Next() {
		var s, t int
		if err := rows.Scan(&s, &t); err != nil {
			return nil, err
		}
		for len(genDegs) <= s {
			genDegs = append(genDegs, nil)
		}
		genDegs[s] = append(genDegs[s], t)
	}
	return genDegs, rows.Err()
}

// GensAt returns the global ids and internal degrees of the generators at
// homological degree s, in id order.
func GensAt(db *DB, table string, s int) (ids []int64, ts []int, err error) {
	rows, err := db.Query(fmt.Sprintf(
		"SELECT id, t FROM %s_generators WHERE s=?1 ORDER BY id;", table), s)
	if err != nil {
		return nil, nil, fmt.Errorf("adamsdb: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id int64
		var t int
		if err := rows.Scan(&id, &t); err != nil {
			return nil, nil, err
		}
		ids = append(ids, id)
		ts = append(ts, t)
	}
	return ids, ts, rows.Err()
}
