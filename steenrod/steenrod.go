// Package steenrod implements arithmetic in the mod-2 Steenrod algebra in the
// Milnor basis, together with free modules over it.
//
// A Milnor basis element is encoded in a single 64-bit word as a subset of
// the exterior generators P^i_j of the May associated graded, with the total
// May weight of the subset carried in the same word. This makes comparisons,
// divisibility tests and gcd/lcm of leading terms single-word operations.
package steenrod

// XiMax is the largest Milnor generator ξ_i carried by the packed encoding.
const XiMax = 8

// DegMax is the maximum internal degree representable with XiMax.
const DegMax = 1<<(XiMax+1) - 1

// GenNum is the number of exterior generators P^i_j with 0 <= i < j <= XiMax+1,
// excluding ξ_{XiMax+1} itself.
const GenNum = (XiMax+1)*(XiMax+2)/2 - 1

const (
	genOne = uint64(1) << (GenNum - 1) // bit of the generator with index 0

	maskM  = uint64(1)<<GenNum - 1           // exterior bitfield
	maskW  = (uint64(1)<<vShift - 1) &^ maskM // weight field
	maskMW = uint64(1)<<vShift - 1            // monomial including its weight

	vBits  = 12 // generator-index field of an MMod
	vShift = 64 - vBits
)

// VMax is the maximum number of free-module generators per homological degree.
const VMax = 1 << vBits

// Per-generator tables, indexed by the bit enumeration of the packed word:
// index n runs over j = 1..XiMax+1, i = j-1..0. genI/genJ recover (i, j),
// genDeg is 2^j - 2^i and genWeight is the May weight 2(j-i)-1.
var (
	genI      [GenNum]int
	genJ      [GenNum]int
	genDeg    [GenNum]int
	genWeight [GenNum]int
)

func init() {
	n := 0
	for j := 1; j <= XiMax+1; j++ {
		for i := j - 1; i >= 0 && n < GenNum; i-- {
			genI[n] = i
			genJ[n] = j
			genDeg[n] = 1<<j - 1<<i
			genWeight[n] = 2*(j-i) - 1
			n++
		}
	}
}
