package resolution

import (
	"fmt"

	"github.com/sseq-go/adams/steenrod"
)

// State is the committed state of an interrupted run, as reloaded from a
// persistence sink: the generator degrees and Gröbner elements of every
// level in append order, the promoted cycles of the partially finished
// band, and the first slice still to compute.
type State struct {
	GenDegs [][]int
	Gb      [][]Element
	Pending map[int][]steenrod.Mod

	NextS, NextT int
}

// ResumeResolver rebuilds a resolver from persisted state. The presentation
// must be the one the interrupted run was started with; the critical-pair
// store is reconstructed by replaying the appends and the drains of every
// committed slice, so the resumed run continues exactly as the uninterrupted
// one would have.
func ResumeResolver(p *Presentation, st *State, params Params, sink Sink) (*Resolver, error) {
	r, err := NewResolver(p, params, sink)
	if err != nil {
		return nil, err
	}
	r.started = true
	r.nextS, r.nextT = st.NextS, st.NextT

	if len(st.GenDegs) > 0 {
		lvl0 := r.level(0)
		if len(st.GenDegs[0]) < len(lvl0.GenDegs) {
			return nil, fmt.Errorf("resolution: persisted state has %d level-0 generators, presentation has %d",
				len(st.GenDegs[0]), len(lvl0.GenDegs))
		}
		lvl0.GenDegs = append([]int(nil), st.GenDegs[0]...)
	}
	for s := 1; s < len(st.GenDegs); s++ {
		r.level(s).GenDegs = append([]int(nil), st.GenDegs[s]...)
	}
	for s := range st.Gb {
		lvl := r.level(s)
		for _, e := range st.Gb[s] {
			lvl.append(e)
		}
	}

	// Replay the pair-store consumption of every slice the interrupted run
	// committed, in the original (t, s) order.
	for t := 0; t <= st.NextT && t <= params.TMax; t++ {
		for s := r.sMin(t); s <= t && s < len(r.levels); s++ {
			if t == st.NextT && s >= st.NextS {
				break
			}
			lvl := r.levels[s]
			lvl.pairs.Minimize(lvl.leads, t)
			lvl.pairs.Drain(t)
		}
	}

	// Seeds already consumed by the committed prefix.
	for t := range r.seeds {
		if t < st.NextT || (t == st.NextT && st.NextS > 0) {
			delete(r.seeds, t)
		}
	}

	for s, cycles := range st.Pending {
		r.pending[s] = append([]steenrod.Mod(nil), cycles...)
	}
	return r, nil
}
