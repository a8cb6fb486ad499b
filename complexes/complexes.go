// Package complexes generates module presentations for the complexes whose
// Adams resolutions the engine computes: the sphere, real projective spaces
// and the connected cover X<2>. Each generator returns a plain presentation
// (generator degrees and relations); the resolution engine has no knowledge
// of where a presentation came from.
package complexes

import (
	"fmt"

	"github.com/sseq-go/adams/resolution"
	"github.com/sseq-go/adams/steenrod"
)

// S0 presents the cohomology of the sphere: one generator in degree zero,
// killed by every Sq(2^i) within the truncation.
func S0(tMax int) *resolution.Presentation {
	p := &resolution.Presentation{Name: "S0", GenDegs: []int{0}}
	for i := 0; 1<<i <= tMax; i++ {
		p.Rels = append(p.Rels, steenrod.NewMod(steenrod.P(i, i+1), 0))
	}
	return p
}

// xTo expresses the cell x^m of projective space over the module generators
// x^(2^k - 1): x^m = Sq(m - 2^k + 1) x^(2^k - 1) for the largest 2^k <= m+1.
func xTo(m int) steenrod.Mod {
	k := 1
	for 1<<(k+1) <= m+1 {
		k++
	}
	return steenrod.NewMod(steenrod.Sq(m-(1<<k)+1), k-1)
}

// RP presents the (reduced) cohomology of RP^n: generators x^(2^k - 1) and
// the relations Sq^(2^i) x^m = binom(m, 2^i) x^(m + 2^i).
// n < 0 presents the infinite projective space truncated at tMax.
func RP(n, tMax int) *resolution.Presentation {
	if n < 0 {
		n = tMax
	}
	p := &resolution.Presentation{Name: fmt.Sprintf("RP%d", n)}
	for i := 1; 1<<i-1 <= n; i++ {
		p.GenDegs = append(p.GenDegs, 1<<i-1)
	}
	for i := 0; 1<<i <= tMax; i++ {
		k := 1 << i
		for m := 1; m+k <= tMax && m <= n; m++ {
			rel := steenrod.MulMod(steenrod.Sq(k), xTo(m))
			if m+k <= n && k <= m && k&(m-k) == 0 {
				rel = rel.Add(xTo(m + k))
			}
			if !rel.IsZero() {
				p.Rels = append(p.Rels, rel)
			}
		}
	}
	return p
}

// X2 presents the cohomology of the connected cover X<2>: a polynomial-like
// basis indexed by pairs (b, c) with b + 3c = t, with the Sq action carried
// over from the cover. The raw presentation is highly redundant and is
// reduced with [MinimizePresentation].
func X2(tMax int) *resolution.Presentation {
	type bc struct{ b, c int }
	var degs []int
	var bcs []bc
	index := make(map[bc]int)
	for t := 0; t <= tMax; t++ {
		for c := 0; 3*c <= t; c++ {
			b := t - 3*c
			index[bc{b, c}] = len(bcs)
			bcs = append(bcs, bc{b, c})
			degs = append(degs, t)
		}
	}

	var rels []steenrod.Mod
	for i := 0; 1<<i <= tMax; i++ {
		a := 1 << i
		for j, p := range bcs {
			d := degs[j]
			if a+d > tMax {
				continue
			}
			rel := steenrod.NewMod(steenrod.Sq(a), j)
			for n := 0; 3*n <= a+d; n++ {
				m := a + d - 3*n
				b, c := p.b, p.c
				if a+2*c >= 2*n && b+c >= n && (a+2*c-2*n)&(b+c-n) == 0 && c <= n && c&(n-c) == 0 {
					rel = rel.Add(steenrod.Gen(index[bc{m, n}]))
				}
			}
			if !rel.IsZero() {
				rels = append(rels, rel)
			}
		}
	}

	genDegs, minRels := MinimizePresentation(degs, rels)
	return &resolution.Presentation{Name: "X2", GenDegs: genDegs, Rels: minRels}
}

// ByName returns the presentation generator registered under the CLI name.
func ByName(name string, n, tMax int) (*resolution.Presentation, error) {
	switch name {
	case "S0":
		return S0(tMax), nil
	case "RP":
		return RP(n, tMax), nil
	case "X2":
		return X2(tMax), nil
	}
	return nil, fmt.Errorf("complexes: unknown complex %q", name)
}
