package resolution

import (
	"golang.org/x/exp/slices"

	"github.com/sseq-go/adams/steenrod"
	"github.com/sseq-go/adams/utils"
)

// CriticalPair describes one S-element of a level's Gröbner basis.
//
// For a proper pair, I1 < I2 index two basis elements with leads sharing a
// generator of the free module, and M1, M2 are the complementary multipliers
// with M1*lead(I1) = M2*lead(I2) = lcm of the leads. A single has I1 = -1
// and records the exterior self-relation M2*gb[I2], where M2 is one of the
// Milnor generators of lead(I2) (the associated graded is exterior, so these
// self-pairs are genuine syzygies of a single lead).
type CriticalPair struct {
	I1, I2 int
	M1, M2 steenrod.MMilnor
}

// IsSingle reports whether the pair is an exterior self-relation.
func (c CriticalPair) IsSingle() bool {
	return c.I1 < 0
}

// CriticalPairs is the per-level store of critical pairs: pairs are buffered
// by the internal degree of their S-element, minimized in place when their
// degree is reached, and drained exactly once.
type CriticalPairs struct {
	tTrunc int

	// gbPairs[j] holds the pairs with second index j buffered at every
	// minimized degree, including the ones a redundancy chain removed from
	// the buffer; they drive the redundancy chains of higher degrees.
	gbPairs [][]CriticalPair

	minPairs  map[int][]CriticalPair     // degree -> buffered pairs
	singles   map[int][]CriticalPair     // degree -> buffered singles
	redundant map[int]map[uint64]struct{} // degree -> packed (i1, i2) marked redundant
}

// NewCriticalPairs instantiates a store truncated at the given internal
// degree.
func NewCriticalPairs(tTrunc int) *CriticalPairs {
	return &CriticalPairs{
		tTrunc:    tTrunc,
		minPairs:  make(map[int][]CriticalPair),
		singles:   make(map[int][]CriticalPair),
		redundant: make(map[int]map[uint64]struct{}),
	}
}

// AddLead buffers the critical pairs of a new lead against all previous
// leads, plus its exterior singles. leads are the existing leads of the
// level, j the index the new lead is about to occupy, and genDegs the
// generator degrees of the level.
func (cp *CriticalPairs) AddLead(leads []steenrod.MMod, genDegs []int, lead steenrod.MMod, j int) {
	mv := lead.V()
	mm := lead.M()
	tv := genDegs[mv]

	type cand struct {
		pair CriticalPair
		deg  int
	}
	var cands []cand
	for i, li := range leads {
		if li.V() != mv {
			continue
		}
		lim := li.M()
		lcm := lim.LcmLF(mm)
		d := lcm.Deg() + tv
		if d > cp.tTrunc {
			continue
		}
		gcd := lim.GcdLF(mm)
		cands = append(cands, cand{
			pair: CriticalPair{I1: i, I2: j, M1: mm.DivLF(gcd), M2: lim.DivLF(gcd)},
			deg:  d,
		})
	}

	// Keep only pairs whose multiplier M2 is minimal among the new cohort:
	// if M2(i', j) divides M2(i, j) the pair (i, j) is redundant. When two
	// kept pairs have disjoint M1 multipliers, the older pair (i, i') they
	// subsume is marked for removal at its own degree.
	alive := make([]bool, len(cands))
	for i := range alive {
		alive[i] = true
	}
	for b := 1; b < len(cands); b++ {
		if !alive[b] {
			continue
		}
		for a := 0; a < b; a++ {
			if !alive[a] {
				continue
			}
			if cands[a].pair.M2.DividesLF(cands[b].pair.M2) {
				alive[b] = false
				break
			}
			if cands[b].pair.M2.DividesLF(cands[a].pair.M2) {
				alive[a] = false
				continue
			}
			if cands[a].pair.M1.GcdLF(cands[b].pair.M1).IsIdentity() {
				i1, i2 := cands[a].pair.I1, cands[b].pair.I1
				if i1 > i2 {
					i1, i2 = i2, i1
				}
				dij := leads[i1].M().LcmLF(leads[i2].M()).Deg() + tv
				if dij <= cp.tTrunc {
					if cp.redundant[dij] == nil {
						cp.redundant[dij] = make(map[uint64]struct{})
					}
					cp.redundant[dij][utils.Bind(i1, i2)] = struct{}{}
				}
			}
		}
	}
	for i, c := range cands {
		if alive[i] {
			cp.minPairs[c.deg] = append(cp.minPairs[c.deg], c.pair)
		}
	}

	// Exterior singles: one per Milnor generator of the new lead.
	mm.ForEachGen(func(n int) {
		d := steenrod.FromIndex(n).Deg() + mm.Deg() + tv
		if d <= cp.tTrunc {
			cp.singles[d] = append(cp.singles[d], CriticalPair{I1: -1, I2: j, M2: steenrod.FromIndex(n)})
		}
	})
}

// Minimize appends every pair buffered at degree t to the per-index Gröbner
// basis of pairs, then removes from the buffer the pairs subsumed by
// redundancy chains. Removed pairs stay in the pair basis; only Drain skips
// them.
func (cp *CriticalPairs) Minimize(leads []steenrod.MMod, t int) {
	// The buffered pairs join the pair basis first, so that the redundancy
	// chains of this degree can walk through them.
	for _, pair := range cp.minPairs[t] {
		for len(cp.gbPairs) <= pair.I2 {
			cp.gbPairs = append(cp.gbPairs, nil)
		}
		cp.gbPairs[pair.I2] = append(cp.gbPairs[pair.I2], pair)
	}

	red := cp.redundant[t]
	if len(red) > 0 {
		keys := make([]uint64, 0, len(red))
		for ij := range red {
			keys = append(keys, ij)
		}
		slices.Sort(keys)
		buf := cp.minPairs[t]
		for _, ij := range keys {
			i, j := utils.UnBind(ij)
			cp.removeChain(leads, buf, i, j)
		}
	}
	delete(cp.redundant, t)
}

// removeChain walks the redundancy chain of the pair (i, j): if the pair is
// still buffered it is marked dead; otherwise the pair of smaller degree
// that replaced it is followed, until either a buffered pair is killed or
// the chain terminates on a disjoint-multiplier pair.
func (cp *CriticalPairs) removeChain(leads []steenrod.MMod, buf []CriticalPair, i, j int) {
	for {
		gcd := leads[i].M().GcdLF(leads[j].M())
		m2 := leads[i].M().DivLF(gcd)
		killed := false
		for k := range buf {
			if buf[k].I2 == j && buf[k].I1 >= 0 && buf[k].M2 == m2 {
				buf[k].I2 = -2
				killed = true
				break
			}
		}
		if killed {
			return
		}
		if j >= len(cp.gbPairs) {
			return
		}
		next := -1
		for _, c := range cp.gbPairs[j] {
			if c.M2.DividesLF(m2) {
				m1 := leads[j].M().DivLF(gcd)
				if !c.M1.GcdLF(m1).IsIdentity() {
					return
				}
				next = c.I1
				break
			}
		}
		if next < 0 {
			return
		}
		j = next
		if i > j {
			i, j = j, i
		}
	}
}

// Drain returns the singles and the surviving minimal pairs buffered at
// degree t, in insertion order, and erases the buffers. Minimize must have
// been called for t first.
func (cp *CriticalPairs) Drain(t int) []CriticalPair {
	result := append([]CriticalPair(nil), cp.singles[t]...)
	for _, pair := range cp.minPairs[t] {
		if pair.I2 >= 0 {
			result = append(result, pair)
		}
	}
	delete(cp.singles, t)
	delete(cp.minPairs, t)
	return result
}
