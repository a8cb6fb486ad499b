package lift

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sseq-go/adams/adamsdb"
	"github.com/sseq-go/adams/complexes"
	"github.com/sseq-go/adams/resolution"
	"github.com/sseq-go/adams/steenrod"
)

func resolveS0(t *testing.T, dir string, tMax int) (*adamsdb.DB, string) {
	t.Helper()
	db, err := adamsdb.Open(filepath.Join(dir, "S0_Adams_res.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	sink, err := adamsdb.NewResSink(db, "S0_Adams_res")
	require.NoError(t, err)
	r, err := resolution.NewResolver(complexes.S0(tMax), resolution.Params{TMax: tMax, StemMax: tMax, Workers: 2}, sink)
	require.NoError(t, err)
	require.NoError(t, r.Run(context.Background()))
	return db, "S0_Adams_res"
}

func queryProdH(t *testing.T, out *adamsdb.ProdDB, id, idInd int64) (string, bool) {
	t.Helper()
	var prodH string
	err := out.QueryRow(fmt.Sprintf(
		"SELECT prod_h FROM %s_products WHERE id=?1 AND id_ind=?2;", out.Table), id, idInd).Scan(&prodH)
	if err != nil {
		return "", false
	}
	return prodH, true
}

func TestDiffInv(t *testing.T) {
	const tMax = 8
	dir := t.TempDir()
	db, table := resolveS0(t, dir, tMax)

	gb, genDegs, err := adamsdb.LoadGb(db, table, tMax)
	require.NoError(t, err)
	target := NewTarget(gb, genDegs)

	// d(h0) = Sq(1) v0 is a boundary with preimage h0.
	x, err := target.DiffInv(steenrod.NewMod(steenrod.Sq(1), 0), 0)
	require.NoError(t, err)
	require.Equal(t, steenrod.Gen(0).Add(nil), x.Add(nil))

	// Sq(2)Sq(1) v0 is a boundary; its preimage must satisfy d(x) = w.
	w := steenrod.MulMod(steenrod.Sq(2), steenrod.NewMod(steenrod.Sq(1), 0))
	x, err = target.DiffInv(w.Clone(), 0)
	require.NoError(t, err)
	diffs := make([]steenrod.Mod, len(genDegs[1]))
	cohorts, err := adamsdb.LoadCohorts(db, table, tMax, tMax)
	require.NoError(t, err)
	for _, c := range cohorts {
		if c.S == 1 {
			for j, d := range c.Diffs {
				diffs[c.FirstV+j] = d
			}
		}
	}
	require.True(t, steenrod.Subs(x, diffs).Add(w).IsZero())

	// A generator itself is not a boundary.
	_, err = target.DiffInv(steenrod.Gen(0), 0)
	require.Error(t, err)
}

func TestProductsByH0Lifted(t *testing.T) {
	const tMax = 11
	dir := t.TempDir()
	db, table := resolveS0(t, dir, tMax)

	outDB, err := adamsdb.Open(filepath.Join(dir, "prod.db"))
	require.NoError(t, err)
	defer outDB.Close()
	out, err := adamsdb.NewProdDB(outDB, table)
	require.NoError(t, err)

	require.NoError(t, ComputeProducts(db, table, db, table, out, ProductsParams{
		TMax: tMax, StemMax: tMax, Workers: 2,
	}))

	h0 := adamsdb.LocID(1, 0)
	// The h0 tower: h0 * h0^(s-1) = h0^s through s = 3 and beyond.
	for s := 2; s <= 5; s++ {
		prodH, ok := queryProdH(t, out, adamsdb.LocID(s, 0), h0)
		require.True(t, ok, "missing tower product at s=%d", s)
		require.Equal(t, "0", prodH)
	}

	// h1 * h1 = h1^2: the level-2 generators are minted in degree order
	// (t=2, 4, 5, ...), so h1^2 has index 1.
	h1 := adamsdb.LocID(1, 1)
	prodH, ok := queryProdH(t, out, adamsdb.LocID(2, 1), h1)
	require.True(t, ok)
	require.Equal(t, "1", prodH)

	// h0 * h1 = 0: the product map of h0 sends the h1^2 generator into the
	// augmentation ideal, so its Hom-projection is empty.
	if prodH, ok := queryProdH(t, out, adamsdb.LocID(2, 1), h0); ok {
		require.Equal(t, "", prodH)
	}

	// The h_i are indecomposable; h0^2 is not.
	for _, id := range []int64{adamsdb.LocID(1, 0), adamsdb.LocID(1, 1), adamsdb.LocID(1, 2), adamsdb.LocID(1, 3)} {
		var ind int
		require.NoError(t, out.QueryRow(fmt.Sprintf(
			"SELECT indecomposable FROM %s_generators WHERE id=?1;", out.Table), id).Scan(&ind))
		require.Equal(t, 1, ind, "id %d", id)
	}
	var ind int
	require.NoError(t, out.QueryRow(fmt.Sprintf(
		"SELECT indecomposable FROM %s_generators WHERE id=?1;", out.Table), adamsdb.LocID(2, 0)).Scan(&ind))
	require.Equal(t, 0, ind)
}

func TestProductsWithHopfRows(t *testing.T) {
	const tMax = 10
	dir := t.TempDir()
	db, table := resolveS0(t, dir, tMax)

	outDB, err := adamsdb.Open(filepath.Join(dir, "prod_hopf.db"))
	require.NoError(t, err)
	defer outDB.Close()
	out, err := adamsdb.NewProdDB(outDB, table)
	require.NoError(t, err)

	require.NoError(t, ComputeProducts(db, table, db, table, out, ProductsParams{
		TMax: tMax, StemMax: tMax, Workers: 1, WithHopf: true,
	}))

	// With the Hopf shortcut the tower rows are read off the differentials.
	h0 := adamsdb.LocID(1, 0)
	for s := 2; s <= 4; s++ {
		prodH, ok := queryProdH(t, out, adamsdb.LocID(s, 0), h0)
		require.True(t, ok, "missing tower product at s=%d", s)
		require.Equal(t, "0", prodH)
	}
}

func TestIdentityMapRes(t *testing.T) {
	const tMax = 9
	dir := t.TempDir()
	db, table := resolveS0(t, dir, tMax)

	mapRaw, err := adamsdb.Open(filepath.Join(dir, "map.db"))
	require.NoError(t, err)
	defer mapRaw.Close()
	mdb, err := adamsdb.NewMapDB(mapRaw, "map_Adams_res_S0_to_S0")
	require.NoError(t, err)
	require.NoError(t, SeedMap(mdb, "S0", "S0", []steenrod.Mod{steenrod.Gen(0)}, 0, 0))

	require.NoError(t, ComputeMapRes(mdb, db, table, db, table, MapParams{
		TMax: tMax, StemMax: tMax, Workers: 2,
	}))

	// The identity seed extends to the identity chain map.
	genDegs, err := adamsdb.LoadGenDegs(db, table, tMax)
	require.NoError(t, err)
	for s := 0; s < len(genDegs); s++ {
		images, err := mdb.LoadMap(s)
		require.NoError(t, err)
		for i := range genDegs[s] {
			require.Less(t, i, len(images), "missing image at (s=%d, i=%d)", s, i)
			require.Equal(t, steenrod.Gen(i), images[i], "image at (s=%d, i=%d)", s, i)
		}
	}
}

func TestProductsWithHi(t *testing.T) {
	const tMax = 8
	dir := t.TempDir()
	db, table := resolveS0(t, dir, tMax)

	outDB, err := adamsdb.Open(filepath.Join(dir, "hi.db"))
	require.NoError(t, err)
	defer outDB.Close()
	out, err := adamsdb.NewProdDB(outDB, table)
	require.NoError(t, err)

	require.NoError(t, ComputeProductsWithHi(db, table, db, table, out, tMax, tMax))

	var glo string
	require.NoError(t, out.QueryRow(fmt.Sprintf(
		"SELECT prod_h_glo FROM %s_products_hi WHERE id=?1 AND id_ind=?2;", out.Table),
		adamsdb.LocID(2, 0), adamsdb.LocID(1, 0)).Scan(&glo))
	require.Equal(t, fmt.Sprint(adamsdb.LocID(1, 0)), glo)
}

func TestHomToK(t *testing.T) {
	x := steenrod.Gen(2).Add(steenrod.NewMod(steenrod.Sq(1), 0))
	require.Equal(t, []int{2}, HomToK(x))
	require.Nil(t, HomToK(steenrod.NewMod(steenrod.Sq(3), 1)))

	d := steenrod.NewMod(steenrod.Sq(2), 1).Add(steenrod.NewMod(steenrod.Sq(1), 4))
	require.Equal(t, []int{1}, HomToMSq(d, 2))
	require.Equal(t, []int{4}, HomToMSq(d, 1))
	require.Nil(t, HomToMSq(d, 4))
}

func TestIndecomposables(t *testing.T) {
	// Rows covering columns 0 and 2 leave 1 and 3 indecomposable.
	rows := [][]int{{0}, {0, 2}, nil}
	require.Equal(t, []int{1, 3}, Indecomposables(rows, 4))
	require.Equal(t, []int{0, 1}, Indecomposables(nil, 2))
}
