package complexes

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sseq-go/adams/resolution"
	"github.com/sseq-go/adams/steenrod"
)

func TestS0(t *testing.T) {
	p := S0(20)
	require.NoError(t, p.Validate())
	require.Equal(t, []int{0}, p.GenDegs)
	// Sq(1), Sq(2), Sq(4), Sq(8), Sq(16).
	require.Len(t, p.Rels, 5)
	for i, rel := range p.Rels {
		require.Equal(t, steenrod.NewMod(steenrod.P(i, i+1), 0), rel)
	}
}

func TestRPGenerators(t *testing.T) {
	p := RP(4, 10)
	require.NoError(t, p.Validate())
	// Cells x^1 and x^3 generate H^*(RP^4) over the Steenrod algebra.
	require.Equal(t, []int{1, 3}, p.GenDegs)
	for _, rel := range p.Rels {
		require.False(t, rel.Lead().M().IsIdentity(), "identity lead in %v", rel)
	}
}

func TestRPResolutionLowDegrees(t *testing.T) {
	p := RP(4, 10)
	r, err := resolution.NewResolver(p, resolution.Params{TMax: 10, StemMax: 10}, resolution.DiscardSink{})
	require.NoError(t, err)
	require.NoError(t, r.Run(context.Background()))
	// Level 0 keeps the module generators in degrees 1 and 3.
	require.Equal(t, []int{1, 3}, r.Levels()[0].GenDegs)
	// The minimal resolution mints at least the degree-3 and degree-5
	// syzygies hitting Sq(2)x and Sq(2)x^3.
	require.NotEmpty(t, r.Levels()[1].GenDegs)
}

func TestX2Minimized(t *testing.T) {
	p := X2(12)
	require.NoError(t, p.Validate())
	require.NotEmpty(t, p.GenDegs)
	// The raw (b, c) basis is collapsed onto the module generators; no
	// relation may express a generator directly.
	for _, rel := range p.Rels {
		require.False(t, rel.Lead().M().IsIdentity(), "identity lead in %v", rel)
	}
	// X<2> is 2-connected: the bottom generator sits in degree 0 for the
	// sphere-like unit cell, with nothing in degrees 1 and 2.
	require.Equal(t, 0, p.GenDegs[0])
	for _, d := range p.GenDegs[1:] {
		require.NotContains(t, []int{1, 2}, d)
	}
}

func TestMinimizePresentation(t *testing.T) {
	// v_1 = Sq(1) v_0 folds into the remaining relation Sq(2) v_1.
	genDegs := []int{0, 1}
	rels := []steenrod.Mod{
		steenrod.Gen(1).Add(steenrod.NewMod(steenrod.Sq(1), 0)),
		steenrod.NewMod(steenrod.Sq(2), 1),
	}
	newDegs, newRels := MinimizePresentation(genDegs, rels)
	require.Equal(t, []int{0}, newDegs)
	require.Len(t, newRels, 1)
	require.Equal(t, steenrod.MulMod(steenrod.Sq(2), steenrod.NewMod(steenrod.Sq(1), 0)), newRels[0])
}

func TestByName(t *testing.T) {
	for _, name := range []string{"S0", "RP", "X2"} {
		p, err := ByName(name, 4, 10)
		require.NoError(t, err)
		require.NoError(t, p.Validate())
	}
	_, err := ByName("nope", 0, 10)
	require.Error(t, err)
}
