package steenrod

import (
	"strings"

	"golang.org/x/exp/slices"
)

// Milnor is an element of the Steenrod algebra: a strictly increasing
// sequence of Milnor monomials in the May order, summed mod 2.
type Milnor []MMilnor

// NewMilnor returns the element with the single monomial m.
func NewMilnor(m MMilnor) Milnor {
	return Milnor{m}
}

// IsZero reports whether the element is zero.
func (x Milnor) IsZero() bool {
	return len(x) == 0
}

// Lead returns the leading (minimal) monomial of the element.
// The element must be non-zero.
func (x Milnor) Lead() MMilnor {
	if len(x) == 0 {
		panic("steenrod: Lead of zero element")
	}
	return x[0]
}

// Add returns x + y. Both operands must be sorted; the result is their
// symmetric difference.
func (x Milnor) Add(y Milnor) Milnor {
	result := make(Milnor, 0, len(x)+len(y))
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

// Mul returns the product x * y, using the Milnor product formula on every
// pair of monomials and cancelling duplicates mod 2 once at the end.
func (x Milnor) Mul(y Milnor) Milnor {
	var buf Milnor
	for _, a := range x {
		for _, b := range y {
			mulMilnorAppend(a, b, &buf)
		}
	}
	return sortCancel(buf)
}

// sortCancel sorts the buffer in the May order and removes pairs of equal
// monomials mod 2, in place.
func sortCancel(buf Milnor) Milnor {
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

// String prints the element as a sum of monomials, or "0".
func (x Milnor) String() string {
	if len(x) == 0 {
		return "0"
	}
	parts := make([]string, len(x))
	for i, m := range x {
		parts[i] = m.String()
	}
	return strings.Join(parts, " + ")
}
