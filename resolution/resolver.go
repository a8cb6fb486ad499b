package resolution

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"time"

	"github.com/sseq-go/adams/bench"
	"github.com/sseq-go/adams/steenrod"
	"github.com/sseq-go/adams/utils/concurrency"
)

// Params bundles the truncation and execution parameters of a resolution
// run.
type Params struct {
	// TMax is the inclusive bound on the internal degree t.
	TMax int
	// StemMax is the inclusive bound on the stem t-s.
	StemMax int
	// Workers is the number of parallel reduction workers; 0 means
	// runtime.GOMAXPROCS(0). The persisted output is identical for every
	// worker count.
	Workers int
	// Instrument optionally records per-slice timings and counters.
	Instrument *bench.Instrument
	// Progress optionally receives a line per committed slice.
	Progress func(s, t int, seconds float64)
}

func (p *Params) workers() int {
	if p.Workers > 0 {
		return p.Workers
	}
	return runtime.GOMAXPROCS(0)
}

// CancelledError is returned by Run when the context is cancelled; the last
// committed slice identifies the resume point.
type CancelledError struct {
	S, T int
}

func (e *CancelledError) Error() string {
	return fmt.Sprintf("resolution: cancelled at (s=%d, t=%d)", e.S, e.T)
}

// ErrCapacity is wrapped by errors reporting that a level exceeded the
// generator capacity of the packed module-monomial encoding.
var ErrCapacity = fmt.Errorf("resolution: generator capacity exceeded")

// Resolver drives the construction of the minimal free resolution of a
// presented module, slice by slice in lexicographic (t, s) order.
type Resolver struct {
	pres   *Presentation
	params Params
	sink   Sink

	levels []*Level

	// seeds[t] are the presentation relations of degree t, consumed by the
	// (0, t) slice. pending[s] are the cycles promoted to level s by the
	// (s-1, t) slice of the current t band.
	seeds   map[int][]steenrod.Mod
	pending map[int][]steenrod.Mod

	nextS, nextT int
	started      bool
}

// NewResolver prepares a fresh run for the given presentation.
func NewResolver(p *Presentation, params Params, sink Sink) (*Resolver, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if params.TMax > steenrod.DegMax {
		return nil, fmt.Errorf("resolution: t_max=%d exceeds the maximum representable degree %d", params.TMax, steenrod.DegMax)
	}
	r := &Resolver{
		pres:    p,
		params:  params,
		sink:    sink,
		seeds:   make(map[int][]steenrod.Mod),
		pending: make(map[int][]steenrod.Mod),
	}
	lvl0 := r.level(0)
	lvl0.GenDegs = append(lvl0.GenDegs, p.GenDegs...)
	for _, rel := range p.Rels {
		t := rel.Deg(p.GenDegs)
		if t <= params.TMax {
			r.seeds[t] = append(r.seeds[t], rel)
		}
	}
	return r, nil
}

// level returns the state of homological degree s, growing the slice of
// levels as needed.
func (r *Resolver) level(s int) *Level {
	for len(r.levels) <= s {
		r.levels = append(r.levels, newLevel(r.params.TMax))
	}
	return r.levels[s]
}

// Levels exposes the in-memory levels, for tests and for the lifter.
func (r *Resolver) Levels() []*Level {
	return r.levels
}

// sMin returns the first homological degree processed in the band of
// internal degree t. One column beyond the stem bound is still processed so
// that the generators minted at (s+1, t) cover the full stem window.
func (r *Resolver) sMin(t int) int {
	if s := t - r.params.StemMax - 1; s > 0 {
		return s
	}
	return 0
}

// Run resolves up to the truncation, committing every finished slice to the
// sink. The context is only observed at slice boundaries.
func (r *Resolver) Run(ctx context.Context) error {
	if !r.started {
		if err := r.sink.Start(r.pres); err != nil {
			return fmt.Errorf("resolution: sink start: %w", err)
		}
		r.started = true
	}
	for t := r.nextT; t <= r.params.TMax; t++ {
		s0 := r.sMin(t)
		if t == r.nextT && r.nextS > s0 {
			s0 = r.nextS
		}
		for s := s0; s <= t; s++ {
			select {
			case <-ctx.Done():
				return &CancelledError{S: s, T: t}
			default:
			}
			start := time.Now()
			sl, err := r.processSlice(s, t)
			if err != nil {
				return err
			}
			sl.Seconds = time.Since(start).Seconds()
			if err := r.sink.CommitSlice(sl); err != nil {
				return fmt.Errorf("resolution: commit slice (s=%d, t=%d): %w", s, t, err)
			}
			r.params.Instrument.ObserveSlice(sl.Seconds)
			if r.params.Progress != nil {
				r.params.Progress(s, t, sl.Seconds)
			}
		}
		r.nextS = 0
	}
	r.nextT = r.params.TMax + 1
	return nil
}

// job is one unit of the parallel phase of a slice: an S-element of a
// critical pair or single (withTrail), or a fresh input of the level (a seed
// relation at s=0, a promoted cycle at s>0).
type job struct {
	crit      CriticalPair
	input     steenrod.Mod
	withTrail bool
}

type jobResult struct {
	x1, x2 steenrod.Mod
}

// processSlice performs the (s, t) step: drain the minimal critical pairs
// and level inputs of degree t, reduce them in parallel, triangulate the
// cohort serially, extend the basis and mint generators.
func (r *Resolver) processSlice(s, t int) (*Slice, error) {
	lvl := r.level(s)
	next := r.level(s + 1)

	lvl.pairs.Minimize(lvl.leads, t)
	crits := lvl.pairs.Drain(t)

	var inputs []steenrod.Mod
	if s == 0 {
		inputs = r.seeds[t]
		delete(r.seeds, t)
	} else {
		inputs = r.pending[s]
		delete(r.pending, s)
	}

	jobs := make([]job, 0, len(crits)+len(inputs))
	for _, c := range crits {
		jobs = append(jobs, job{crit: c, withTrail: true})
	}
	for _, z := range inputs {
		jobs = append(jobs, job{input: z})
	}

	sl := &Slice{S: s, T: t, ConsumedCycles: len(inputs)}
	if s == 0 {
		sl.ConsumedCycles = 0
	}
	if len(jobs) == 0 {
		return sl, nil
	}

	results := make([]jobResult, len(jobs))
	if w := r.params.workers(); w > 1 && len(jobs) > 1 {
		rm := concurrency.NewResourceManager(make([]struct{}, w))
		for i := range jobs {
			i := i
			rm.Run(func(struct{}) error {
				results[i] = r.runJob(lvl, jobs[i])
				return nil
			})
		}
		if err := rm.Wait(); err != nil {
			return nil, err
		}
	} else {
		for i := range jobs {
			results[i] = r.runJob(lvl, jobs[i])
		}
	}

	// Serial triangulation. Results that already reduced to zero are
	// resolved first in job order; the rest are processed in block order of
	// their reduced leads (ties by job index), re-reduced against the basis
	// as it grows, and either accepted or resolved as zero.
	var order []int
	for i, res := range results {
		if res.x1.IsZero() {
			if err := r.resolveZero(s, t, sl, jobs[i], res.x2); err != nil {
				return nil, err
			}
		} else {
			order = append(order, i)
		}
	}
	sort.Slice(order, func(a, b int) bool {
		la, lb := results[order[a]].x1.Lead(), results[order[b]].x1.Lead()
		if la != lb {
			return la < lb
		}
		return order[a] < order[b]
	})

	for _, i := range order {
		x1, x2, steps := lvl.reduce(results[i].x1, results[i].x2)
		r.params.Instrument.AddReductions(steps)
		if x1.IsZero() {
			if err := r.resolveZero(s, t, sl, jobs[i], x2); err != nil {
				return nil, err
			}
			continue
		}
		e := Element{X1: x1, X2: x2}
		if !jobs[i].withTrail {
			// A fresh kernel element with no known preimage: it is the
			// differential of a new resolution generator.
			v := len(next.GenDegs)
			if v >= steenrod.VMax {
				return nil, fmt.Errorf("%w: level %d at t=%d", ErrCapacity, s+1, t)
			}
			next.GenDegs = append(next.GenDegs, t)
			e.X2 = steenrod.Gen(v)
			sl.Gens = append(sl.Gens, NewGen{Index: v, Diff: e.X1})
		}
		sl.Gb = append(sl.Gb, NewGb{Index: len(lvl.gb), X1: e.X1, X2: e.X2})
		lvl.append(e)
	}
	return sl, nil
}

// resolveZero handles a job whose S-element reduced to zero: the preimage
// trail of a critical pair is a cycle one level up and is promoted to the
// (s+1, t) slice; a fresh input that reduces to zero was already a boundary
// and is dropped.
func (r *Resolver) resolveZero(s, t int, sl *Slice, jb job, x2 steenrod.Mod) error {
	if !jb.withTrail || x2.IsZero() {
		return nil
	}
	if s+1 > t {
		return fmt.Errorf("resolution: cycle promoted beyond the vanishing line at (s=%d, t=%d)", s+1, t)
	}
	sl.Cycles = append(sl.Cycles, x2)
	r.pending[s+1] = append(r.pending[s+1], x2)
	return nil
}

// runJob builds the S-element of a job and top-reduces it against the
// level's basis.
func (r *Resolver) runJob(lvl *Level, jb job) jobResult {
	var x1, x2 steenrod.Mod
	if jb.withTrail {
		c := jb.crit
		x1 = steenrod.MulMod(c.M2, lvl.gb[c.I2].X1)
		x2 = steenrod.MulMod(c.M2, lvl.gb[c.I2].X2)
		if !c.IsSingle() {
			x1 = x1.Add(steenrod.MulMod(c.M1, lvl.gb[c.I1].X1))
			x2 = x2.Add(steenrod.MulMod(c.M1, lvl.gb[c.I1].X2))
		}
	} else {
		x1 = jb.input
	}
	x1, x2, steps := lvl.reduce(x1, x2)
	r.params.Instrument.AddReductions(steps)
	return jobResult{x1: x1, x2: x2}
}
