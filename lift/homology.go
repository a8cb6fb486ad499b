package lift

import (
	"github.com/sseq-go/adams/steenrod"
)

// HomToK projects an element of a resolution level onto the cohomology basis
// dual to the minted generators: the indices of the generators appearing
// with the identity monomial.
func HomToK(x steenrod.Mod) []int {
	var result []int
	for _, t := range x {
		if t.M().IsIdentity() {
			result = append(result, t.V())
		}
	}
	return result
}

// HomToMSq reads the coefficient vector of a differential on the top cell of
// a two-cell complex: the generators appearing with monomial Sq(tCell).
// Applied to d(v) with tCell = 2^i this is the h_i-component of v.
func HomToMSq(x steenrod.Mod, tCell int) []int {
	sq := steenrod.Sq(tCell)
	var result []int
	for _, t := range x {
		if t.M() == sq {
			result = append(result, t.V())
		}
	}
	return result
}

// f2vec is a dense vector over F_2.
type f2vec []uint64

func newF2vec(n int) f2vec {
	return make(f2vec, (n+63)/64)
}

func (v f2vec) set(i int) {
	v[i/64] |= 1 << (i % 64)
}

func (v f2vec) get(i int) bool {
	return v[i/64]>>(i%64)&1 != 0
}

func (v f2vec) xor(w f2vec) {
	for i := range v {
		v[i] ^= w[i]
	}
}

func (v f2vec) firstSet() int {
	for i, w := range v {
		if w != 0 {
			for b := 0; b < 64; b++ {
				if w>>b&1 != 0 {
					return 64*i + b
				}
			}
		}
	}
	return -1
}

// Indecomposables row-reduces the product matrix of a cohort over F_2 and
// returns the cohort indices not hit as the lead of any row: the generators
// that no product of lower classes reaches.
//
// rows[r] lists the cohort indices with a non-zero coefficient in the r-th
// product vector; n is the cohort size.
func Indecomposables(rows [][]int, n int) []int {
	var basis []f2vec
	for _, row := range rows {
		v := newF2vec(n)
		for _, i := range row {
			v.set(i)
		}
		for _, b := range basis {
			lead := b.firstSet()
			if v.get(lead) {
				v.xor(b)
			}
		}
		if v.firstSet() >= 0 {
			basis = append(basis, v)
		}
	}
	covered := make([]bool, n)
	for _, b := range basis {
		covered[b.firstSet()] = true
	}
	var result []int
	for i := 0; i < n; i++ {
		if !covered[i] {
			result = append(result, i)
		}
	}
	return result
}
