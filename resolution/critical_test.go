package resolution

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sseq-go/adams/steenrod"
)

func TestCriticalPairsBuffering(t *testing.T) {
	cp := NewCriticalPairs(20)
	genDegs := []int{0}

	var leads []steenrod.MMod
	add := func(m steenrod.MMilnor) {
		lead := steenrod.NewMMod(m, 0)
		cp.AddLead(leads, genDegs, lead, len(leads))
		leads = append(leads, lead)
	}

	// Sq(1) = P^0_1: one exterior single at degree 2.
	add(steenrod.Sq(1))
	cp.Minimize(leads, 2)
	crits := cp.Drain(2)
	require.Len(t, crits, 1)
	require.True(t, crits[0].IsSingle())
	require.Equal(t, steenrod.Sq(1), crits[0].M2)
	require.Equal(t, 0, crits[0].I2)

	// Sq(2) = P^1_2: its single sits at degree 4, the pair with Sq(1) at
	// degree 3 = deg lcm(P^0_1, P^1_2).
	add(steenrod.Sq(2))
	cp.Minimize(leads, 3)
	crits = cp.Drain(3)
	require.Len(t, crits, 1)
	require.False(t, crits[0].IsSingle())
	require.Equal(t, 0, crits[0].I1)
	require.Equal(t, 1, crits[0].I2)
	require.Equal(t, steenrod.Sq(2), crits[0].M1)
	require.Equal(t, steenrod.Sq(1), crits[0].M2)

	cp.Minimize(leads, 4)
	crits = cp.Drain(4)
	require.Len(t, crits, 1)
	require.True(t, crits[0].IsSingle())
	require.Equal(t, 1, crits[0].I2)

	// Draining is one-shot.
	require.Empty(t, cp.Drain(3))
}

func TestCriticalPairsTruncation(t *testing.T) {
	cp := NewCriticalPairs(2)
	genDegs := []int{0}
	lead := steenrod.NewMMod(steenrod.Sq(2), 0)
	cp.AddLead(nil, genDegs, lead, 0)
	// The single of Sq(2) would sit at degree 4 > truncation.
	cp.Minimize([]steenrod.MMod{lead}, 4)
	require.Empty(t, cp.Drain(4))
}

func TestCriticalPairsDifferentGenerators(t *testing.T) {
	cp := NewCriticalPairs(20)
	genDegs := []int{0, 1}
	l0 := steenrod.NewMMod(steenrod.Sq(1), 0)
	l1 := steenrod.NewMMod(steenrod.Sq(1), 1)
	cp.AddLead(nil, genDegs, l0, 0)
	cp.AddLead([]steenrod.MMod{l0}, genDegs, l1, 1)
	// Leads on distinct generators never pair; only the two singles exist.
	for d := 0; d <= 20; d++ {
		cp.Minimize([]steenrod.MMod{l0, l1}, d)
		for _, c := range cp.Drain(d) {
			require.True(t, c.IsSingle(), "degree %d", d)
		}
	}
}
