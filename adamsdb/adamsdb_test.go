package adamsdb

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/sseq-go/adams/resolution"
	"github.com/sseq-go/adams/steenrod"
)

func s0(tMax int) *resolution.Presentation {
	p := &resolution.Presentation{Name: "S0", GenDegs: []int{0}}
	for i := 0; 1<<i <= tMax; i++ {
		p.Rels = append(p.Rels, steenrod.NewMod(steenrod.P(i, i+1), 0))
	}
	return p
}

func TestLocID(t *testing.T) {
	id := LocID(3, 7)
	s, v := SplitID(id)
	require.Equal(t, 3, s)
	require.Equal(t, 7, v)
	require.Equal(t, int64(3<<LocVBits|7), id)
}

func TestSerializeInts(t *testing.T) {
	require.Equal(t, "", SerializeInts(nil))
	require.Equal(t, "3,1,4", SerializeInts([]int{3, 1, 4}))
	v, err := ParseInts("3,1,4")
	require.NoError(t, err)
	require.Equal(t, []int{3, 1, 4}, v)
	v, err = ParseInts("")
	require.NoError(t, err)
	require.Nil(t, v)
	_, err = ParseInts("a,b")
	require.Error(t, err)
}

func resolveInto(t *testing.T, path string, tMax int, interruptAfter int) (string, error) {
	t.Helper()
	db, err := Open(path)
	require.NoError(t, err)
	defer db.Close()
	sink, err := NewResSink(db, "S0_Adams_res")
	require.NoError(t, err)

	runSink := resolution.Sink(sink)
	if interruptAfter > 0 {
		runSink = &interruptingSink{inner: sink, after: interruptAfter}
	}

	params := resolution.Params{TMax: tMax, StemMax: tMax, Workers: 2}
	var r *resolution.Resolver
	if st, found, err := LoadState(db, "S0_Adams_res"); err != nil {
		return "", err
	} else if found {
		r, err = resolution.ResumeResolver(s0(tMax), st, params, runSink)
		require.NoError(t, err)
	} else {
		r, err = resolution.NewResolver(s0(tMax), params, runSink)
		require.NoError(t, err)
	}
	err = r.Run(context.Background())
	return sink.Fingerprint(), err
}

// interruptingSink forwards a fixed number of commits, then fails.
type interruptingSink struct {
	inner resolution.Sink
	after int
	n     int
}

var errInterrupted = errors.New("interrupted")

func (k *interruptingSink) Start(p *resolution.Presentation) error { return k.inner.Start(p) }

func (k *interruptingSink) CommitSlice(sl *resolution.Slice) error {
	if k.n >= k.after {
		return errInterrupted
	}
	k.n++
	return k.inner.CommitSlice(sl)
}

func dumpTables(t *testing.T, path string) map[string][]string {
	t.Helper()
	db, err := Open(path)
	require.NoError(t, err)
	defer db.Close()
	dump := make(map[string][]string)
	for _, table := range []string{"S0_Adams_res_generators", "S0_Adams_res_gb", "S0_Adams_res_cycles"} {
		rows, err := db.Query(fmt.Sprintf("SELECT * FROM %s ORDER BY 1, 2, 3;", table))
		require.NoError(t, err)
		cols, err := rows.Columns()
		require.NoError(t, err)
		for rows.Next() {
			vals := make([]any, len(cols))
			ptrs := make([]any, len(cols))
			for i := range vals {
				ptrs[i] = &vals[i]
			}
			require.NoError(t, rows.Scan(ptrs...))
			dump[table] = append(dump[table], fmt.Sprint(vals...))
		}
		require.NoError(t, rows.Err())
		rows.Close()
	}
	return dump
}

func TestPersistAndReload(t *testing.T) {
	const tMax = 8
	path := filepath.Join(t.TempDir(), "s0.db")
	fp, err := resolveInto(t, path, tMax, 0)
	require.NoError(t, err)
	require.NotEmpty(t, fp)

	db, err := Open(path)
	require.NoError(t, err)
	defer db.Close()

	st, found, err := LoadState(db, "S0_Adams_res")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, tMax+1, st.NextT)
	require.Equal(t, []int{0}, st.GenDegs[0])
	// h0, h1, h2, h3 minted through t = 8.
	require.Equal(t, []int{1, 2, 4, 8}, st.GenDegs[1])

	cohorts, err := LoadCohorts(db, "S0_Adams_res", tMax, tMax)
	require.NoError(t, err)
	require.NotEmpty(t, cohorts)
	require.Equal(t, 0, cohorts[0].S)
	require.Equal(t, 0, cohorts[0].T)

	gb, genDegs, err := LoadGb(db, "S0_Adams_res", tMax)
	require.NoError(t, err)
	require.Equal(t, st.GenDegs, genDegs)
	require.NotEmpty(t, gb[0])
	for _, e := range gb[0] {
		require.False(t, e.X1.IsZero())
	}
}

func TestResumeByteIdentical(t *testing.T) {
	const tMax = 9
	full := filepath.Join(t.TempDir(), "full.db")
	fpFull, err := resolveInto(t, full, tMax, 0)
	require.NoError(t, err)

	// Interrupt mid-run, then resume to completion.
	cut := filepath.Join(t.TempDir(), "cut.db")
	_, err = resolveInto(t, cut, tMax, 17)
	require.ErrorIs(t, err, errInterrupted)
	fpResumed, err := resolveInto(t, cut, tMax, 0)
	require.NoError(t, err)

	require.Equal(t, fpFull, fpResumed)
	require.Empty(t, cmp.Diff(dumpTables(t, full), dumpTables(t, cut)))
}
