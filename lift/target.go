// Package lift implements the chain-lifting passes built on a finished
// resolution: multiplication of Ext by chosen classes, chain maps induced by
// maps of modules, and the direct products with the Hopf classes h_i.
//
// The central primitive inverts the differential of a read-only target
// resolution on boundaries: reducing a boundary against the Gröbner basis of
// the image of d yields, through the stored preimages, an explicit solution
// of d(x) = w. Cohorts of independent solves run in parallel.
package lift

import (
	"fmt"

	"github.com/sseq-go/adams/resolution"
	"github.com/sseq-go/adams/steenrod"
	"github.com/sseq-go/adams/utils/concurrency"
)

type targetLevel struct {
	gb    []resolution.Element
	leads []steenrod.MMod
	index map[int][]int
}

func newTargetLevel(gb []resolution.Element) targetLevel {
	lvl := targetLevel{gb: gb, index: make(map[int][]int)}
	for k, e := range gb {
		lead := e.X1.Lead()
		lvl.leads = append(lvl.leads, lead)
		lvl.index[lead.V()] = append(lvl.index[lead.V()], k)
	}
	return lvl
}

func (lvl *targetLevel) findDivisor(x steenrod.MMod) int {
	for _, k := range lvl.index[x.V()] {
		if lvl.leads[k].DividesLF(x) {
			return k
		}
	}
	return -1
}

// Target is a read-only view of a finished resolution, loaded either fully
// up to a degree bound or band by band via [Target.Rotate].
type Target struct {
	levels  []targetLevel
	loaded  []bool
	genDegs [][]int
}

// NewTarget builds a fully loaded target from persisted Gröbner data.
func NewTarget(gb [][]resolution.Element, genDegs [][]int) *Target {
	t := &Target{genDegs: genDegs}
	for _, lvlGb := range gb {
		t.levels = append(t.levels, newTargetLevel(lvlGb))
		t.loaded = append(t.loaded, true)
	}
	return t
}

// NewRotatingTarget builds an empty target holding only generator degrees;
// levels are populated on demand with [Target.Rotate].
func NewRotatingTarget(genDegs [][]int) *Target {
	return &Target{genDegs: genDegs}
}

// GenDegs returns the generator degrees of level s, or nil beyond the loaded
// range.
func (t *Target) GenDegs(s int) []int {
	if s < 0 || s >= len(t.genDegs) {
		return nil
	}
	return t.genDegs[s]
}

// Rotate loads levels s and s-1 through the provided loader and drops every
// other level. It must only be called between cohorts, when no solver
// goroutine is running.
func (t *Target) Rotate(s int, load func(s int) ([]resolution.Element, error)) error {
	for k := range t.levels {
		if t.loaded[k] && k != s && k != s-1 {
			t.levels[k] = targetLevel{}
			t.loaded[k] = false
		}
	}
	for _, k := range []int{s - 1, s} {
		if k < 0 {
			continue
		}
		for len(t.levels) <= k {
			t.levels = append(t.levels, targetLevel{})
			t.loaded = append(t.loaded, false)
		}
		if t.loaded[k] {
			continue
		}
		gb, err := load(k)
		if err != nil {
			return fmt.Errorf("lift: rotate level %d: %w", k, err)
		}
		t.levels[k] = newTargetLevel(gb)
		t.loaded[k] = true
	}
	return nil
}

// DiffInv solves d(x) = w for x in level s+1, where w is a boundary in
// level s: reducing w against the basis of the image of d accumulates the
// preimage of every subtracted multiple. A non-zero remainder means w was
// not a boundary.
func (t *Target) DiffInv(w steenrod.Mod, s int) (steenrod.Mod, error) {
	if s < 0 || s >= len(t.levels) {
		if w.IsZero() {
			return nil, nil
		}
		return nil, fmt.Errorf("lift: no Gröbner data at level %d", s)
	}
	lvl := &t.levels[s]
	var x steenrod.Mod
	for !w.IsZero() {
		k := lvl.findDivisor(w.Lead())
		if k < 0 {
			return nil, fmt.Errorf("lift: element is not a boundary at level %d: lead %v", s, w.Lead())
		}
		q := w.Lead().M().DivLF(lvl.leads[k].M())
		w = w.Add(steenrod.MulMod(q, lvl.gb[k].X1))
		x = x.Add(steenrod.MulMod(q, lvl.gb[k].X2))
	}
	return x, nil
}

// DiffInvBatch solves d(x_j) = w_j for a batch of independent boundaries,
// in parallel over the given number of workers. Results land in res, which
// must have the batch length.
func (t *Target) DiffInvBatch(ws, res []steenrod.Mod, s, workers int) error {
	if len(ws) != len(res) {
		return fmt.Errorf("lift: batch size mismatch: %d vs %d", len(ws), len(res))
	}
	if workers <= 1 || len(ws) <= 1 {
		for j := range ws {
			x, err := t.DiffInv(ws[j], s)
			if err != nil {
				return err
			}
			res[j] = x
		}
		return nil
	}
	rm := concurrency.NewResourceManager(make([]struct{}, workers))
	for j := range ws {
		j := j
		rm.Run(func(struct{}) error {
			x, err := t.DiffInv(ws[j], s)
			if err != nil {
				return err
			}
			res[j] = x
			return nil
		})
	}
	return rm.Wait()
}
