package complexes

import (
	"sort"

	"github.com/sseq-go/adams/steenrod"
)

// MinimizePresentation eliminates the superfluous generators of a
// presentation: every relation whose leading monomial is a bare generator
// expresses that generator in terms of the others and is folded into the
// remaining relations, until no such relation is left. The surviving
// generators are re-indexed in the original order.
func MinimizePresentation(genDegs []int, rels []steenrod.Mod) ([]int, []steenrod.Mod) {
	// images[v] is nil while v is alive; once eliminated it holds the
	// expression of v in terms of alive generators, kept fully expanded.
	images := make([]steenrod.Mod, len(genDegs))
	expand := func(x steenrod.Mod) steenrod.Mod {
		for {
			reduced := false
			var out steenrod.Mod
			for _, term := range x {
				if img := images[term.V()]; img != nil {
					out = out.Add(steenrod.MulMod(term.M(), img))
					reduced = true
				} else {
					out = out.Add(steenrod.Mod{term})
				}
			}
			x = out
			if !reduced {
				return x
			}
		}
	}
	eliminate := func(rel steenrod.Mod) {
		v := rel.Lead().V()
		images[v] = rel.Add(steenrod.Gen(v))
		for w := range images {
			if images[w] != nil && w != v {
				images[w] = expand(images[w])
			}
		}
	}

	pending := make([]steenrod.Mod, len(rels))
	copy(pending, rels)
	sort.SliceStable(pending, func(a, b int) bool {
		return pending[a].Deg(genDegs) < pending[b].Deg(genDegs)
	})

	var kept []steenrod.Mod
	for {
		progress := false
		kept = kept[:0]
		for _, rel := range pending {
			rel = expand(rel)
			if rel.IsZero() {
				continue
			}
			if rel.Lead().M().IsIdentity() {
				eliminate(rel)
				progress = true
				continue
			}
			kept = append(kept, rel)
		}
		pending = append(pending[:0], kept...)
		if !progress {
			break
		}
	}

	// Re-index the alive generators. Re-indexing preserves the relative
	// generator order, so the terms of every relation stay sorted.
	newIndex := make([]int, len(genDegs))
	var newDegs []int
	for v, img := range images {
		if img == nil {
			newIndex[v] = len(newDegs)
			newDegs = append(newDegs, genDegs[v])
		} else {
			newIndex[v] = -1
		}
	}
	var newRels []steenrod.Mod
	for _, rel := range kept {
		out := make(steenrod.Mod, 0, len(rel))
		for _, term := range rel {
			out = append(out, steenrod.NewMMod(term.M(), newIndex[term.V()]))
		}
		newRels = append(newRels, out)
	}
	return newDegs, newRels
}
