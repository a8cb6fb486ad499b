// Package resolution implements the minimal free resolution engine over the
// mod-2 Steenrod algebra.
//
// The engine maintains, for each homological degree s, a Gröbner basis of
// the image of the differential d_{s+1} in the free module F_s, together
// with the explicit preimage of every basis element. Critical pairs of the
// basis are generated incrementally, minimized, and consumed in increasing
// internal degree; the reductions of their S-elements either extend the
// basis, promote a cycle one homological degree up, or mint a new resolution
// generator. Slices are produced in lexicographic order on (t, s) and
// committed to a persistence sink one at a time, which makes runs resumable
// and byte-deterministic for any worker count.
package resolution

import (
	"fmt"

	"github.com/sseq-go/adams/steenrod"
)

// Presentation is a finite presentation of a graded module over the Steenrod
// algebra: the internal degrees of its generators and a list of relations
// between them. It seeds homological degree zero of a resolution.
type Presentation struct {
	Name    string
	GenDegs []int
	Rels    []steenrod.Mod
}

// Validate checks the presentation for out-of-range generator references,
// inhomogeneous relations and unrepresentable degrees.
func (p *Presentation) Validate() error {
	for i, d := range p.GenDegs {
		if d < 0 {
			return fmt.Errorf("resolution: generator %d has negative degree %d", i, d)
		}
		if d > steenrod.DegMax {
			return fmt.Errorf("resolution: generator %d degree %d exceeds DegMax=%d", i, d, steenrod.DegMax)
		}
	}
	for k, rel := range p.Rels {
		if rel.IsZero() {
			return fmt.Errorf("resolution: relation %d is zero", k)
		}
		deg := -1
		for _, term := range rel {
			if term.V() >= len(p.GenDegs) {
				return fmt.Errorf("resolution: relation %d references generator v_%d of %d (%v)",
					k, term.V(), len(p.GenDegs), rel)
			}
			d := term.Deg(p.GenDegs)
			if deg < 0 {
				deg = d
			} else if d != deg {
				return fmt.Errorf("resolution: relation %d is not homogeneous (%v)", k, rel)
			}
		}
	}
	return nil
}

// Element is one Gröbner basis element at homological degree s: an element
// X1 of F_s together with its preimage X2 in F_{s+1}, d(X2) = X1. For
// elements recording the differential of a minted resolution generator, X2
// is the bare generator.
type Element struct {
	X1 steenrod.Mod
	X2 steenrod.Mod
}

// Level holds the state of one homological degree of the resolution under
// construction.
type Level struct {
	// GenDegs[i] is the internal degree of the generator v_i of F_s.
	// Generators are only ever appended.
	GenDegs []int

	gb    []Element
	leads []steenrod.MMod
	index map[int][]int // v of a lead -> positions in gb sharing it
	pairs *CriticalPairs
}

func newLevel(tTrunc int) *Level {
	return &Level{
		index: make(map[int][]int),
		pairs: NewCriticalPairs(tTrunc),
	}
}

// Gb returns the basis elements of the level.
func (lvl *Level) Gb() []Element {
	return lvl.gb
}

// append adds a basis element, updates the divisibility index and seeds the
// critical pairs of its lead.
func (lvl *Level) append(e Element) {
	lead := e.X1.Lead()
	lvl.pairs.AddLead(lvl.leads, lvl.GenDegs, lead, len(lvl.leads))
	lvl.index[lead.V()] = append(lvl.index[lead.V()], len(lvl.gb))
	lvl.leads = append(lvl.leads, lead)
	lvl.gb = append(lvl.gb, e)
}

// findDivisor returns the smallest basis position whose lead divides x, or
// -1 when none does.
func (lvl *Level) findDivisor(x steenrod.MMod) int {
	for _, k := range lvl.index[x.V()] {
		if lvl.leads[k].DividesLF(x) {
			return k
		}
	}
	return -1
}

// reduce top-reduces x1 against the basis, accumulating the preimage of the
// subtracted part on x2. It returns the pair and the number of reduction
// steps taken.
func (lvl *Level) reduce(x1, x2 steenrod.Mod) (steenrod.Mod, steenrod.Mod, int64) {
	var steps int64
	for !x1.IsZero() {
		k := lvl.findDivisor(x1.Lead())
		if k < 0 {
			break
		}
		q := x1.Lead().M().DivLF(lvl.leads[k].M())
		x1 = x1.Add(steenrod.MulMod(q, lvl.gb[k].X1))
		x2 = x2.Add(steenrod.MulMod(q, lvl.gb[k].X2))
		steps++
	}
	return x1, x2, steps
}
