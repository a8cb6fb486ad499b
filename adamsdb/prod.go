package adamsdb

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/sseq-go/adams/steenrod"
)

// Version keys of product and map databases, matching the resolution layout
// style.
const (
	verKeyFiltration = 651971502
	verKeySuspension = 1585932889
	verKeyFrom       = 446174262
	verKeyTo         = 1713085477
)

// SerializeInts prints a coefficient-index vector as a comma separated TEXT
// column value.
func SerializeInts(v []int) string {
	if len(v) == 0 {
		return ""
	}
	parts := make([]string, len(v))
	for i, x := range v {
		parts[i] = strconv.Itoa(x)
	}
	return strings.Join(parts, ",")
}

// ParseInts decodes a TEXT column produced by [SerializeInts].
func ParseInts(s string) ([]int, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	v := make([]int, len(parts))
	for i, p := range parts {
		x, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("adamsdb: bad int list %q: %w", s, err)
		}
		v[i] = x
	}
	return v, nil
}

// ProdDB wraps the output database of a product pass.
type ProdDB struct {
	*DB
	Table string
}

// NewProdDB opens the product tables with the given prefix, creating them if
// needed.
func NewProdDB(db *DB, table string) (*ProdDB, error) {
	tx, err := db.Begin()
	if err != nil {
		return nil, fmt.Errorf("adamsdb: %w", err)
	}
	defer tx.Rollback()
	if err := createVersionTable(tx); err != nil {
		return nil, fmt.Errorf("adamsdb: %w", err)
	}
	stmts := []string{
		fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s_generators (id INTEGER PRIMARY KEY, indecomposable TINYINT, s SMALLINT, t SMALLINT);", table),
		fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s_products (id INTEGER, id_ind INTEGER, prod BLOB, prod_h TEXT, PRIMARY KEY (id, id_ind));", table),
		fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s_products_time (s SMALLINT, t SMALLINT, time REAL, PRIMARY KEY (s, t));", table),
	}
	for _, s := range stmts {
		if _, err := tx.Exec(s); err != nil {
			return nil, fmt.Errorf("adamsdb: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("adamsdb: %w", err)
	}
	return &ProdDB{DB: db, Table: table}, nil
}

// InsertGen records one generator row inside the given transaction.
func (p *ProdDB) InsertGen(tx *sql.Tx, id int64, s, t int) error {
	_, err := tx.Exec(fmt.Sprintf(
		"INSERT INTO %s_generators (id, indecomposable, s, t) VALUES (?1, 0, ?2, ?3);", p.Table), id, s, t)
	return err
}

// MarkIndecomposable marks a generator as indecomposable.
func (p *ProdDB) MarkIndecomposable(tx *sql.Tx, id int64) error {
	_, err := tx.Exec(fmt.Sprintf(
		"UPDATE %s_generators SET indecomposable=1 WHERE id=?1 AND indecomposable=0;", p.Table), id)
	return err
}

// InsertProduct records one product row. prod may be nil for rows carrying
// only the cohomology-basis vector.
func (p *ProdDB) InsertProduct(tx *sql.Tx, id, idInd int64, prod []byte, prodH []int) error {
	var blob any
	if prod != nil {
		blob = prod
	}
	_, err := tx.Exec(fmt.Sprintf(
		"INSERT INTO %s_products (id, id_ind, prod, prod_h) VALUES (?1, ?2, ?3, ?4);", p.Table),
		id, idInd, blob, SerializeInts(prodH))
	return err
}

// SaveTime records the wall time of one product cohort.
func (p *ProdDB) SaveTime(tx *sql.Tx, s, t int, seconds float64) error {
	_, err := tx.Exec(fmt.Sprintf(
		"INSERT OR IGNORE INTO %s_products_time (s, t, time) VALUES (?1, ?2, ?3);", p.Table), s, t, seconds)
	return err
}

// LoadOldIDs returns the distinct generator ids already present in the
// products table, as a set. A restarted pass skips their cohorts.
func (p *ProdDB) LoadOldIDs() (map[int64]bool, error) {
	rows, err := p.Query(fmt.Sprintf("SELECT DISTINCT id FROM %s_products ORDER BY id;", p.Table))
	if err != nil {
		return nil, fmt.Errorf("adamsdb: %w", err)
	}
	defer rows.Close()
	ids := make(map[int64]bool)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids[id] = true
	}
	return ids, rows.Err()
}

// LoadProducts returns, for every multiplier id g with products recorded at
// homological degree s, the images of the degree-s generators under the map
// dual to multiplication by g: result[g][v] is the image of v. Multipliers
// listed in exclude are skipped.
func (p *ProdDB) LoadProducts(s int, exclude map[int64]bool) (map[int64][]steenrod.Mod, error) {
	rows, err := p.Query(fmt.Sprintf(
		"SELECT id, id_ind, prod FROM %s_products WHERE (id>>%d)=?1 AND prod IS NOT NULL ORDER BY id;", p.Table, LocVBits), s)
	if err != nil {
		return nil, fmt.Errorf("adamsdb: %w", err)
	}
	defer rows.Close()
	result := make(map[int64][]steenrod.Mod)
	for rows.Next() {
		var id, g int64
		var blob []byte
		if err := rows.Scan(&id, &g, &blob); err != nil {
			return nil, err
		}
		if exclude[g] {
			continue
		}
		x, err := steenrod.ModFromBytes(blob)
		if err != nil {
			return nil, fmt.Errorf("adamsdb: product (%d, %d): %w", id, g, err)
		}
		_, v := SplitID(id)
		imgs := result[g]
		for len(imgs) <= v {
			imgs = append(imgs, nil)
		}
		imgs[v] = x
		result[g] = imgs
	}
	return result, rows.Err()
}

// EnsureHiTable creates the table holding products with the Hopf classes,
// keyed by global target ids.
func (p *ProdDB) EnsureHiTable() error {
	_, err := p.Exec(fmt.Sprintf(
		"CREATE TABLE IF NOT EXISTS %s_products_hi (id INTEGER, id_ind INTEGER, prod_h_glo TEXT, PRIMARY KEY (id, id_ind));", p.Table))
	return err
}

// InsertHi records the h_i-multiples of one generator as global ids.
func (p *ProdDB) InsertHi(tx *sql.Tx, id, idInd int64, prodHGlo []int64) error {
	parts := make([]string, len(prodHGlo))
	for i, x := range prodHGlo {
		parts[i] = strconv.FormatInt(x, 10)
	}
	_, err := tx.Exec(fmt.Sprintf(
		"INSERT INTO %s_products_hi (id, id_ind, prod_h_glo) VALUES (?1, ?2, ?3);", p.Table),
		id, idInd, strings.Join(parts, ","))
	return err
}

// MapDB wraps the output database of a map pass.
type MapDB struct {
	*DB
	Table string
}

// NewMapDB opens the chain-map tables with the given prefix, creating them
// if needed.
func NewMapDB(db *DB, table string) (*MapDB, error) {
	tx, err := db.Begin()
	if err != nil {
		return nil, fmt.Errorf("adamsdb: %w", err)
	}
	defer tx.Rollback()
	if err := createVersionTable(tx); err != nil {
		return nil, fmt.Errorf("adamsdb: %w", err)
	}
	stmts := []string{
		fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (id INTEGER PRIMARY KEY, map BLOB, map_h TEXT);", table),
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
	return &MapDB{DB: db, Table: table}, nil
}

// SetMapMeta records the filtration shift, suspension and endpoint names of
// the map.
func (m *MapDB) SetMapMeta(from, to string, suspension, filtration int) error {
	tx, err := m.Begin()
	if err != nil {
		return fmt.Errorf("adamsdb: %w", err)
	}
	defer tx.Rollback()
	if err := setVersion(tx, verKeyFiltration, "filtration", filtration); err != nil {
		return err
	}
	if err := setVersion(tx, verKeySuspension, "suspension", suspension); err != nil {
		return err
	}
	if err := setVersion(tx, verKeyFrom, "from", from); err != nil {
		return err
	}
	if err := setVersion(tx, verKeyTo, "to", to); err != nil {
		return err
	}
	return tx.Commit()
}

// MapMeta reads back the metadata recorded by [MapDB.SetMapMeta].
func (m *MapDB) MapMeta() (from, to string, suspension, filtration int, err error) {
	if from, _, err = getVersionText(m.DB, verKeyFrom); err != nil {
		return
	}
	if to, _, err = getVersionText(m.DB, verKeyTo); err != nil {
		return
	}
	var v int64
	if v, _, err = getVersionInt(m.DB, verKeySuspension); err != nil {
		return
	}
	suspension = int(v)
	if v, _, err = getVersionInt(m.DB, verKeyFiltration); err != nil {
		return
	}
	filtration = int(v)
	return
}

// InsertMap records the image of one generator.
func (m *MapDB) InsertMap(tx *sql.Tx, id int64, image []byte, imageH []int) error {
	_, err := tx.Exec(fmt.Sprintf(
		"INSERT INTO %s (id, map, map_h) VALUES (?1, ?2, ?3);", m.Table), id, image, SerializeInts(imageH))
	return err
}

// SaveTime records the wall time of one map cohort.
func (m *MapDB) SaveTime(tx *sql.Tx, s, t int, seconds float64) error {
	_, err := tx.Exec(fmt.Sprintf(
		"INSERT OR IGNORE INTO %s_time (s, t, time) VALUES (?1, ?2, ?3);", m.Table), s, t, seconds)
	return err
}

// LoadMap returns the images of the degree-s generators recorded so far:
// result[v] is the image of the generator with per-degree index v.
func (m *MapDB) LoadMap(s int) ([]steenrod.Mod, error) {
	rows, err := m.Query(fmt.Sprintf(
		"SELECT id, map FROM %s WHERE (id>>%d)=?1 ORDER BY id;", m.Table, LocVBits), s)
	if err != nil {
		return nil, fmt.Errorf("adamsdb: %w", err)
	}
	defer rows.Close()
	var result []steenrod.Mod
	for rows.Next() {
		var id int64
		var blob []byte
		if err := rows.Scan(&id, &blob); err != nil {
			return nil, err
		}
		x, err := steenrod.ModFromBytes(blob)
		if err != nil {
			return nil, fmt.Errorf("adamsdb: map %d: %w", id, err)
		}
		_, v := SplitID(id)
		for len(result) <= v {
			result = append(result, nil)
		}
		result[v] = x
	}
	return result, rows.Err()
}

// LoadMappedIDs returns the generator ids already present in the map table.
func (m *MapDB) LoadMappedIDs() (map[int64]bool, error) {
	rows, err := m.Query(fmt.Sprintf("SELECT id FROM %s ORDER BY id;", m.Table))
	if err != nil {
		return nil, fmt.Errorf("adamsdb: %w", err)
	}
	defer rows.Close()
	ids := make(map[int64]bool)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids[id] = true
	}
	return ids, rows.Err()
}
