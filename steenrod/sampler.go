package steenrod

import (
	"encoding/binary"

	"github.com/sseq-go/adams/utils/sampling"
)

// Sampler draws random Milnor monomials and elements of bounded internal
// degree from a PRNG. With a keyed PRNG the stream is deterministic, which
// the randomized property tests rely on.
type Sampler struct {
	prng   sampling.PRNG
	maxDeg int
	buf    [8]byte
}

// NewSampler instantiates a Sampler producing monomials of internal degree
// at most maxDeg.
func NewSampler(prng sampling.PRNG, maxDeg int) *Sampler {
	if maxDeg > DegMax {
		maxDeg = DegMax
	}
	return &Sampler{prng: prng, maxDeg: maxDeg}
}

func (s *Sampler) next() uint64 {
	if _, err := s.prng.Read(s.buf[:]); err != nil {
		panic(err)
	}
	return binary.LittleEndian.Uint64(s.buf[:])
}

// MMilnor returns a random monomial of degree at most the sampler bound: a
// random subset of the exterior generators, thinned from the highest degrees
// down until it fits.
func (s *Sampler) MMilnor() MMilnor {
	w := s.next() & maskM
	m := addWeight(w)
	for deg := m.Deg(); deg > s.maxDeg; deg = m.Deg() {
		// Drop the generator of largest degree (the lowest set bit).
		w &= w - 1
		m = addWeight(w)
	}
	return m
}

// Milnor returns a random element with the given number of draws (the result
// can be shorter after cancellation).
func (s *Sampler) Milnor(terms int) Milnor {
	buf := make(Milnor, 0, terms)
	for i := 0; i < terms; i++ {
		buf = append(buf, s.MMilnor())
	}
	return sortCancel(buf)
}

// Mod returns a random module element over numGens generators with the given
// number of draws.
func (s *Sampler) Mod(terms, numGens int) Mod {
	buf := make(Mod, 0, terms)
	for i := 0; i < terms; i++ {
		v := int(s.next() % uint64(numGens))
		buf = append(buf, NewMMod(s.MMilnor(), v))
	}
	return sortCancelMod(buf)
}
