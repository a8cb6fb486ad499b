package resolution

import (
	"bytes"
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/sseq-go/adams/steenrod"
)

// s0 presents the sphere: one generator in degree 0 killed by the Sq(2^i).
func s0(tMax int) *Presentation {
	p := &Presentation{Name: "S0", GenDegs: []int{0}}
	for i := 0; 1<<i <= tMax; i++ {
		p.Rels = append(p.Rels, steenrod.NewMod(steenrod.P(i, i+1), 0))
	}
	return p
}

// memSink collects the committed slices and a byte image of everything that
// would be persisted.
type memSink struct {
	slices []*Slice
	image  bytes.Buffer
}

func (k *memSink) Start(p *Presentation) error { return nil }

func (k *memSink) CommitSlice(sl *Slice) error {
	k.slices = append(k.slices, sl)
	for _, g := range sl.Gens {
		k.image.Write(g.Diff.Bytes())
	}
	for _, e := range sl.Gb {
		k.image.Write(e.X1.Bytes())
		k.image.Write(e.X2.Bytes())
	}
	for _, z := range sl.Cycles {
		k.image.Write(z.Bytes())
	}
	return nil
}

func resolveS0(t *testing.T, tMax, workers int) (*Resolver, *memSink) {
	t.Helper()
	sink := &memSink{}
	r, err := NewResolver(s0(tMax), Params{TMax: tMax, StemMax: tMax, Workers: workers}, sink)
	require.NoError(t, err)
	require.NoError(t, r.Run(context.Background()))
	return r, sink
}

// The published Adams chart of the sphere for t <= 17. Below stem 14 there
// are no Adams differentials, so the E2 chart in this range is forced by
// the 2-components of the stable stems; the t = 16, 17 columns add h4 and
// the h3^2 family.
func TestResolveS0Chart(t *testing.T) {
	const tMax = 17
	r, _ := resolveS0(t, tMax, 4)
	levels := r.Levels()

	expected := map[int][]int{
		0: {0},
		1: {1, 2, 4, 8, 16},          // h0, h1, h2, h3, h4
		2: {2, 4, 5, 8, 9, 10, 16, 17}, // h0^2, h1^2, h0h2, h2^2, h0h3, h1h3, h3^2, h0h4
		3: {3, 6, 10, 11, 12, 17},    // h0^3, h0^2h2, h0^2h3, c0, h1^2h3, h0h3^2
		4: {4, 11, 13},               // h0^4, h0^3h3, h1c0
		5: {5, 14, 16},               // h0^5, Ph1, Ph2
		6: {6, 16, 17},               // h0^6, h1Ph1, h0Ph2
	}
	for s := 7; s <= tMax; s++ {
		expected[s] = []int{s} // the h0 tower
	}

	for s := 0; s <= tMax; s++ {
		var got []int
		if s < len(levels) {
			got = levels[s].GenDegs
		}
		require.Equal(t, expected[s], got, "generator degrees at s=%d", s)
	}
}

// Substituting the differentials of level s into any Gröbner element of
// level s gives exactly zero: d composed with d vanishes.
func TestChainComplexLaw(t *testing.T) {
	const tMax = 20
	r, sink := resolveS0(t, tMax, 1)
	levels := r.Levels()

	// diffs[s][i] is the differential of generator i at level s.
	diffs := make([][]steenrod.Mod, len(levels))
	for s := range levels {
		diffs[s] = make([]steenrod.Mod, len(levels[s].GenDegs))
	}
	for _, sl := range sink.slices {
		for _, g := range sl.Gens {
			diffs[sl.S+1][g.Index] = g.Diff
		}
	}

	for s := 1; s < len(levels); s++ {
		for _, e := range levels[s].Gb() {
			dd := steenrod.Subs(e.X1, diffs[s])
			require.True(t, dd.IsZero(), "d o d != 0 at level %d: %v -> %v", s, e.X1, dd)
			dx2 := steenrod.Subs(e.X2, diffs[s+1])
			require.True(t, dx2.Add(e.X1).IsZero(), "d(X2) != X1 at level %d", s)
		}
	}
}

// No differential of a minted generator involves a unit coefficient, and no
// leading term is divisible by an earlier lead of its level.
func TestMinimality(t *testing.T) {
	const tMax = 20
	r, sink := resolveS0(t, tMax, 1)
	levels := r.Levels()

	for _, sl := range sink.slices {
		for _, g := range sl.Gens {
			for _, term := range g.Diff {
				require.False(t, term.M().IsIdentity(),
					"unit coefficient in d of generator (s=%d, t=%d)", sl.S+1, sl.T)
			}
		}
	}
	for s := 0; s < len(levels); s++ {
		lvl := levels[s]
		for k, e := range lvl.Gb() {
			for k2, lead := range lvl.leads[:k] {
				require.False(t, lead.DividesLF(e.X1.Lead()),
					"lead %d divides lead %d at level %d", k2, k, s)
			}
		}
	}
}

func TestDeterminismAcrossWorkers(t *testing.T) {
	const tMax = 13
	_, sink1 := resolveS0(t, tMax, 1)
	_, sink4 := resolveS0(t, tMax, 4)
	_, sink16 := resolveS0(t, tMax, 16)
	require.Equal(t, sink1.image.Bytes(), sink4.image.Bytes())
	require.Equal(t, sink1.image.Bytes(), sink16.image.Bytes())

	order := func(k *memSink) [][2]int {
		var out [][2]int
		for _, sl := range k.slices {
			out = append(out, [2]int{sl.T, sl.S})
		}
		return out
	}
	require.Empty(t, cmp.Diff(order(sink1), order(sink16)))
}

func TestResumeMidBand(t *testing.T) {
	const tMax = 11
	_, fullSink := resolveS0(t, tMax, 2)

	// Re-run, stopping after an arbitrary committed slice, and rebuild a
	// resolver from the collected state.
	for _, cut := range []int{5, 17, 29, 41} {
		if cut >= len(fullSink.slices) {
			continue
		}
		partial := &memSink{}
		st := &State{Pending: make(map[int][]steenrod.Mod)}
		for _, sl := range fullSink.slices[:cut+1] {
			partial.CommitSlice(sl)
		}

		// State as a sink implementation would reload it.
		st.GenDegs = append(st.GenDegs, []int{0})
		for _, sl := range fullSink.slices[:cut+1] {
			for len(st.GenDegs) <= sl.S+1 {
				st.GenDegs = append(st.GenDegs, nil)
			}
			for range sl.Gens {
				st.GenDegs[sl.S+1] = append(st.GenDegs[sl.S+1], sl.T)
			}
			for len(st.Gb) <= sl.S {
				st.Gb = append(st.Gb, nil)
			}
			for _, e := range sl.Gb {
				st.Gb[sl.S] = append(st.Gb[sl.S], Element{X1: e.X1, X2: e.X2})
			}
			if sl.ConsumedCycles > 0 {
				delete(st.Pending, sl.S)
			}
			if len(sl.Cycles) > 0 {
				st.Pending[sl.S+1] = append([]steenrod.Mod(nil), sl.Cycles...)
			}
		}
		last := fullSink.slices[cut]
		if last.S < last.T {
			st.NextS, st.NextT = last.S+1, last.T
		} else {
			st.NextS, st.NextT = 0, last.T+1
		}

		r, err := ResumeResolver(s0(tMax), st, Params{TMax: tMax, StemMax: tMax, Workers: 2}, partial)
		require.NoError(t, err)
		require.NoError(t, r.Run(context.Background()))
		require.Equal(t, fullSink.image.Bytes(), partial.image.Bytes(), "cut after slice %d", cut)
	}
}

func TestCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r, err := NewResolver(s0(10), Params{TMax: 10, StemMax: 10}, DiscardSink{})
	require.NoError(t, err)
	err = r.Run(ctx)
	var cancelled *CancelledError
	require.ErrorAs(t, err, &cancelled)
	require.Equal(t, 0, cancelled.T)
}

func TestPresentationValidate(t *testing.T) {
	p := &Presentation{GenDegs: []int{0}, Rels: []steenrod.Mod{steenrod.NewMod(steenrod.Sq(1), 3)}}
	require.Error(t, p.Validate())

	inhomog := &Presentation{
		GenDegs: []int{0, 5},
		Rels:    []steenrod.Mod{steenrod.Gen(1).Add(steenrod.NewMod(steenrod.Sq(1), 0))},
	}
	require.Error(t, inhomog.Validate())

	require.NoError(t, s0(20).Validate())
}
