package steenrod

import (
	"fmt"
	"math/bits"
	"strings"
)

// MMilnor is a Milnor basis element of the mod-2 Steenrod algebra, packed in
// a single 64-bit word: the low GenNum bits form the exterior bitfield and
// the bits above it hold the total May weight of the set bits.
//
// The zero value is the identity monomial Sq(0) = 1.
//
// The natural uint64 order on the packed word is the May order: weight
// ascending, then the exterior bitfield. It is a monomial order for the
// associated-graded product.
type MMilnor uint64

// P returns the exterior generator P^i_j, of internal degree 2^j - 2^i and
// May weight 2(j-i)-1.
func P(i, j int) MMilnor {
	return MMilnor(genOne>>(j*(j+1)/2-i-1) | uint64(2*(j-i)-1)<<GenNum)
}

// FromIndex returns the generator with the given index in the bit
// enumeration.
func FromIndex(n int) MMilnor {
	return MMilnor(genOne>>n | uint64(genWeight[n])<<GenNum)
}

// Sq returns the Milnor basis element Sq(n) = ξ_1^n.
// Sq(2^i) is the generator P^i_{i+1}.
func Sq(n int) MMilnor {
	var data, weight uint64
	for i := 0; n != 0; n, i = n>>1, i+1 {
		if n&1 != 0 {
			data |= genOne >> ((i + 1) * (i + 2) / 2 - i - 1)
			weight++
		}
	}
	return MMilnor(data | weight<<GenNum)
}

// FromXi packs the Milnor basis element Sq(xi[0], xi[1], ...). It returns an
// error if an exponent does not fit the bit width of the encoding.
func FromXi(xi []int) (MMilnor, error) {
	if len(xi) > XiMax {
		for _, r := range xi[XiMax:] {
			if r != 0 {
				return 0, fmt.Errorf("steenrod: xi_%d exceeds XiMax=%d", len(xi), XiMax)
			}
		}
		xi = xi[:XiMax]
	}
	var data, weight uint64
	for d0, r := range xi {
		d := d0 + 1
		for i := 0; r != 0; r, i = r>>1, i+1 {
			if r&1 != 0 {
				j := i + d
				if j > XiMax+1 {
					return 0, fmt.Errorf("steenrod: exponent of xi_%d too large for the packed encoding", d)
				}
				data |= genOne >> (j*(j+1)/2 - i - 1)
				weight += uint64(2*d - 1)
			}
		}
	}
	return MMilnor(data | weight<<GenNum), nil
}

func mustFromXi(xi *[XiMax]int) MMilnor {
	m, err := FromXi(xi[:])
	if err != nil {
		panic(err)
	}
	return m
}

// Xi returns the exponent vector (r_1, ..., r_XiMax) of the monomial.
func (m MMilnor) Xi() (xi [XiMax]int) {
	m.ForEachGen(func(n int) {
		xi[genJ[n]-genI[n]-1] += 1 << genI[n]
	})
	return
}

// ForEachGen calls f with the index of every set exterior bit, in descending
// index order.
func (m MMilnor) ForEachGen(f func(n int)) {
	w := uint64(m) & maskM
	for w != 0 {
		n := GenNum - 1 - bits.TrailingZeros64(w)
		f(n)
		w &= w - 1
	}
}

// IsIdentity reports whether m is the identity monomial.
func (m MMilnor) IsIdentity() bool {
	return uint64(m)&maskM == 0
}

// Weight returns the May weight of the monomial, read from the packed word.
func (m MMilnor) Weight() int {
	return int(uint64(m) >> GenNum)
}

// Deg returns the internal degree of the monomial.
func (m MMilnor) Deg() (deg int) {
	m.ForEachGen(func(n int) { deg += genDeg[n] })
	return
}

// MulLF returns the product of m and n in the May associated graded. The two
// monomials must have disjoint exterior bitfields; overlapping operands are a
// programming error and panic.
func (m MMilnor) MulLF(n MMilnor) MMilnor {
	if uint64(m)&uint64(n)&maskM != 0 {
		panic(fmt.Sprintf("steenrod: MulLF of non-disjoint monomials %v, %v", m, n))
	}
	return MMilnor((uint64(m) | uint64(n)&maskM) + uint64(n)&^maskM)
}

// DividesLF reports whether m divides n in the associated graded, i.e.
// whether the exterior bits of m form a subset of those of n.
func (m MMilnor) DividesLF(n MMilnor) bool {
	return uint64(m)&maskM&^(uint64(n)&maskM) == 0
}

// DivLF returns m / n in the associated graded. n must divide m; a
// non-divisible operand is a programming error and panics.
func (m MMilnor) DivLF(n MMilnor) MMilnor {
	if !n.DividesLF(m) {
		panic(fmt.Sprintf("steenrod: DivLF of non-divisible monomials %v / %v", m, n))
	}
	return MMilnor((uint64(m) ^ uint64(n)&maskM) - uint64(n)&^maskM)
}

// GcdLF returns the greatest common divisor of the two leading monomials.
func (m MMilnor) GcdLF(n MMilnor) MMilnor {
	return addWeight(uint64(m) & uint64(n) & maskM)
}

// LcmLF returns the least common multiple of the two leading monomials.
func (m MMilnor) LcmLF(n MMilnor) MMilnor {
	return addWeight((uint64(m) | uint64(n)) & maskM)
}

// addWeight recomputes the weight field of a bare exterior bitfield.
func addWeight(data uint64) MMilnor {
	var weight uint64
	w := data
	for w != 0 {
		weight += uint64(genWeight[GenNum-1-bits.TrailingZeros64(w)])
		w &= w - 1
	}
	return MMilnor(data | weight<<GenNum)
}

// String prints the monomial in the form Sq(r_1, ..., r_k).
func (m MMilnor) String() string {
	if m.IsIdentity() {
		return "1"
	}
	xi := m.Xi()
	k := XiMax
	for k > 0 && xi[k-1] == 0 {
		k--
	}
	parts := make([]string, k)
	for i := 0; i < k; i++ {
		parts[i] = fmt.Sprint(xi[i])
	}
	return "Sq(" + strings.Join(parts, ",") + ")"
}
