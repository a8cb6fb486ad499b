package resolution

import (
	"github.com/sseq-go/adams/steenrod"
)

// NewGen is a resolution generator minted by a slice, at homological degree
// Slice.S+1 and internal degree Slice.T. Index is its position within its
// homological degree; Diff is its differential, an element of F_{Slice.S}.
type NewGen struct {
	Index int
	Diff  steenrod.Mod
}

// NewGb is a Gröbner basis element appended to level Slice.S by a slice.
// Index is its position within the level's basis.
type NewGb struct {
	Index  int
	X1, X2 steenrod.Mod
}

// Slice is the complete output of one (s, t) step of the resolver: the
// minted generators, the appended basis elements, the cycles promoted to
// level S+1 (to be consumed by the (S+1, T) slice), the number of pending
// cycles of level S that this slice consumed, and its wall time.
type Slice struct {
	S, T int

	Gens   []NewGen
	Gb     []NewGb
	Cycles []steenrod.Mod

	ConsumedCycles int
	Seconds        float64
}

// Sink receives the output of a resolution run. Implementations must commit
// each slice atomically: after a crash, the persisted state is the prefix of
// slices committed so far, from which a run can resume.
type Sink interface {
	// Start is called once before the first slice of a fresh run, with the
	// validated presentation seeding level 0.
	Start(p *Presentation) error

	// CommitSlice persists one finished slice.
	CommitSlice(sl *Slice) error
}

// DiscardSink drops everything. It is used by tests that only inspect the
// in-memory state of the resolver.
type DiscardSink struct{}

// Start implements [Sink].
func (DiscardSink) Start(p *Presentation) error { return nil }

// CommitSlice implements [Sink].
func (DiscardSink) CommitSlice(sl *Slice) error { return nil }
