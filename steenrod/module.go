package steenrod

import (
	"fmt"
	"strings"

	"golang.org/x/exp/slices"
)

// MMod is a monomial m*v_i in a free module over the Steenrod algebra,
// packed in a single 64-bit word: the top vBits bits hold the complemented
// generator index and the rest is the packed Milnor monomial. The weight
// field of an MMilnor never carries into the generator field because the May
// weight of a monomial is bounded by its degree, which is at most DegMax.
//
// The natural uint64 order on the packed word is the block order: generator
// index descending, then the May order on the monomial.
type MMod uint64

// NewMMod packs the module monomial m*v_v. The generator index must be below
// VMax; the resolver refuses to mint generators beyond that capacity before
// this can overflow.
func NewMMod(m MMilnor, v int) MMod {
	if uint(v) >= VMax {
		panic(fmt.Sprintf("steenrod: generator index %d exceeds the %d-bit field", v, vBits))
	}
	return MMod(uint64(m) | ^uint64(v)<<vShift)
}

// M returns the Milnor monomial part, including its weight field.
func (x MMod) M() MMilnor {
	return MMilnor(uint64(x) & maskMW)
}

// V returns the generator index.
func (x MMod) V() int {
	return int(^uint64(x) >> vShift)
}

// DegM returns the internal degree of the monomial part.
func (x MMod) DegM() int {
	return x.M().Deg()
}

// Deg returns the internal degree of the module monomial given the degrees
// of the module generators.
func (x MMod) Deg(genDegs []int) int {
	return x.M().Deg() + genDegs[x.V()]
}

// DividesLF reports whether x divides y: same generator and the monomial of
// x divides that of y in the associated graded.
func (x MMod) DividesLF(y MMod) bool {
	return uint64(x)>>vShift == uint64(y)>>vShift && x.M().DividesLF(y.M())
}

// MulLF returns the associated-graded product m * x.
func MulLF(m MMilnor, x MMod) MMod {
	return NewMMod(m.MulLF(x.M()), x.V())
}

// String prints the module monomial as Sq(...)*v_i.
func (x MMod) String() string {
	if x.M().IsIdentity() {
		return fmt.Sprintf("v_%d", x.V())
	}
	return fmt.Sprintf("%v*v_%d", x.M(), x.V())
}

// Mod is an element of a free module over the Steenrod algebra: a strictly
// increasing sequence of module monomials in the block order, summed mod 2.
type Mod []MMod

// NewMod returns the element with the single monomial m*v_v.
func NewMod(m MMilnor, v int) Mod {
	return Mod{NewMMod(m, v)}
}

// Gen returns the element v_v.
func Gen(v int) Mod {
	return Mod{NewMMod(0, v)}
}

// IsZero reports whether the element is zero.
func (x Mod) IsZero() bool {
	return len(x) == 0
}

// Lead returns the leading monomial of the element.
// The element must be non-zero.
func (x Mod) Lead() MMod {
	if len(x) == 0 {
		panic("steenrod: Lead of zero module element")
	}
	return x[0]
}

// Deg returns the internal degree of the leading monomial, which is the
// degree of the element when it is homogeneous.
func (x Mod) Deg(genDegs []int) int {
	return x.Lead().Deg(genDegs)
}

// Add returns x + y as the symmetric difference of the two sorted sequences.
func (x Mod) Add(y Mod) Mod {
	result := make(Mod, 0, len(x)+len(y))
	i, j := 0, 0
	for i < len(x) && j < len(y) {
		switch {
		case x[i] < y[j]:
			result = append(result, x[i])
			i++
		case y[j] < x[i]:
			result = append(result, y[j])
			j++
		default:
			i++
			j++
		}
	}
	result = append(result, x[i:]...)
	result = append(result, y[j:]...)
	return result
}

// Clone returns a copy of the element.
func (x Mod) Clone() Mod {
	return append(Mod(nil), x...)
}

// MulMod returns the full product m * x, distributing the Milnor product
// over the terms of x and cancelling duplicates once at the end.
func MulMod(m MMilnor, x Mod) Mod {
	var scratch Milnor
	result := make(Mod, 0, 2*len(x))
	for _, t := range x {
		scratch = scratch[:0]
		mulMilnorAppend(m, t.M(), &scratch)
		v := t.V()
		for _, p := range scratch {
			result = append(result, NewMMod(p, v))
		}
	}
	return sortCancelMod(result)
}

// MulElem returns the product a * x for a general algebra element a.
func MulElem(a Milnor, x Mod) Mod {
	var scratch Milnor
	result := make(Mod, 0, len(a)*len(x))
	for _, m := range a {
		for _, t := range x {
			scratch = scratch[:0]
			mulMilnorAppend(m, t.M(), &scratch)
			v := t.V()
			for _, p := range scratch {
				result = append(result, NewMMod(p, v))
			}
		}
	}
	return sortCancelMod(result)
}

// Subs substitutes images[i] for v_i in x. Generators with a nil image are
// sent to zero.
func Subs(x Mod, images []Mod) Mod {
	var result Mod
	for _, t := range x {
		v := t.V()
		if v >= len(images) || images[v] == nil {
			continue
		}
		result = result.Add(MulMod(t.M(), images[v]))
	}
	return result
}

// sortCancelMod sorts the buffer in the block order and removes pairs of
// equal monomials mod 2, in place.
func sortCancelMod(buf Mod) Mod {
	slices.Sort(buf)
	out := buf[:0]
	for i := 0; i < len(buf); {
		if i+1 < len(buf) && buf[i] == buf[i+1] {
			i += 2
			continue
		}
		out = append(out, buf[i])
		i++
	}
	return out
}

// String prints the element as a sum of module monomials, or "0".
func (x Mod) String() string {
	if len(x) == 0 {
		return "0"
	}
	parts := make([]string, len(x))
	for i, t := range x {
		parts[i] = t.String()
	}
	return strings.Join(parts, " + ")
}
