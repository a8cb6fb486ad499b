package lift

import (
	"fmt"
	"runtime"
	"time"

	"github.com/sseq-go/adams/adamsdb"
	"github.com/sseq-go/adams/steenrod"
	"github.com/sseq-go/adams/utils"
	"github.com/sseq-go/adams/utils/concurrency"
)

// ProductsParams bundles the inputs of a product pass.
//
//	F_s ----f----> F_{s-g}
//	 |               |
//	 d               d
//	 V               V
//	F_{s-1} --f--> F_{s-1-g}
//
// For every generator cohort of the module resolution, the maps f dual to
// multiplication by each indecomposable class g are extended one homological
// degree: f(d(v)) is computed by substitution, d is inverted on the result,
// and the projection to the cohomology basis is stored alongside.
type ProductsParams struct {
	TMax, StemMax int
	Workers       int
	// WithHopf records the products with the Hopf classes h_i directly off
	// the differentials (ring resolutions whose level-1 generators are the
	// h_i).
	WithHopf bool
	Progress func(s, t int, seconds float64)
}

// ComputeProducts runs the product pass of a resolution over itself (or of
// a module resolution over a ring resolution when ringDB differs), writing
// into the product tables of out.
func ComputeProducts(resDB *adamsdb.DB, resTable string, ringDB *adamsdb.DB, ringTable string, out *adamsdb.ProdDB, p ProductsParams) error {
	gbData, genDegs, err := adamsdb.LoadGb(ringDB, ringTable, p.TMax)
	if err != nil {
		return err
	}
	target := NewTarget(gbData, genDegs)

	cohorts, err := adamsdb.LoadCohorts(resDB, resTable, p.TMax, p.StemMax)
	if err != nil {
		return err
	}

	var hopfIDs []int64
	var hopfTs []int
	exclude := make(map[int64]bool)
	if p.WithHopf {
		if hopfIDs, hopfTs, err = adamsdb.GensAt(ringDB, ringTable, 1); err != nil {
			return err
		}
		for _, id := range hopfIDs {
			exclude[id] = true
		}
	}

	oldIDs, err := out.LoadOldIDs()
	if err != nil {
		return err
	}

	workers := p.Workers
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}

	for ci := range cohorts {
		cohort := &cohorts[ci]
		if oldIDs[cohort.FirstID()] {
			continue
		}
		start := time.Now()
		n := len(cohort.Diffs)

		if cohort.T == 0 {
			tx, err := out.Begin()
			if err != nil {
				return fmt.Errorf("lift: %w", err)
			}
			for i := 0; i < n; i++ {
				if err := out.InsertGen(tx, adamsdb.LocID(cohort.S, cohort.FirstV+i), cohort.S, cohort.T); err != nil {
					tx.Rollback()
					return fmt.Errorf("lift: %w", err)
				}
			}
			if err := tx.Commit(); err != nil {
				return fmt.Errorf("lift: %w", err)
			}
			continue
		}

		// f_{s-1}[g] is the map F_{s-1} -> F_{s-1-deg(g)} dual to the
		// multiplication by g, as computed so far.
		fsm1, err := out.LoadProducts(cohort.S-1, exclude)
		if err != nil {
			return err
		}
		gs := utils.GetSortedKeys(fsm1)

		// fd[g][j] = f_{s-1}(d(v_j)), then f[g][j] with d(f[g][j]) = fd[g][j].
		fd := make(map[int64][]steenrod.Mod, len(gs))
		f := make(map[int64][]steenrod.Mod, len(gs))
		for _, g := range gs {
			fd[g] = make([]steenrod.Mod, n)
			f[g] = make([]steenrod.Mod, n)
		}
		rm := concurrency.NewResourceManager(make([]struct{}, workers))
		for _, g := range gs {
			g := g
			for j := 0; j < n; j++ {
				j := j
				rm.Run(func(struct{}) error {
					fd[g][j] = steenrod.Subs(cohort.Diffs[j], fsm1[g])
					return nil
				})
			}
		}
		if err := rm.Wait(); err != nil {
			return err
		}
		for _, g := range gs {
			sg, _ := adamsdb.SplitID(g)
			if err := target.DiffInvBatch(fd[g], f[g], cohort.S-1-sg, workers); err != nil {
				return fmt.Errorf("lift: products of %d at (s=%d, t=%d): %w", g, cohort.S, cohort.T, err)
			}
		}

		// Projections to the cohomology basis, Hopf classes read directly
		// off the differentials.
		fh := make(map[int64][][]int, len(gs))
		for _, g := range gs {
			rows := make([][]int, n)
			for j := 0; j < n; j++ {
				rows[j] = HomToK(f[g][j])
			}
			fh[g] = rows
		}
		hopfRows := make([][][]int, len(hopfIDs))
		if p.WithHopf && cohort.S > 1 {
			for hi, tCell := range hopfTs {
				rows := make([][]int, n)
				for j := 0; j < n; j++ {
					rows[j] = HomToMSq(cohort.Diffs[j], tCell)
				}
				hopfRows[hi] = rows
			}
		}

		tx, err := out.Begin()
		if err != nil {
			return fmt.Errorf("lift: %w", err)
		}
		commit := func() error {
			for i := 0; i < n; i++ {
				if err := out.InsertGen(tx, adamsdb.LocID(cohort.S, cohort.FirstV+i), cohort.S, cohort.T); err != nil {
					return err
				}
			}
			for _, g := range gs {
				for j := 0; j < n; j++ {
					if !f[g][j].IsZero() {
						id := adamsdb.LocID(cohort.S, cohort.FirstV+j)
						if err := out.InsertProduct(tx, id, g, f[g][j].Bytes(), fh[g][j]); err != nil {
							return err
						}
					}
				}
			}
			if p.WithHopf && cohort.S > 1 {
				for hi, id := range hopfIDs {
					for j := 0; j < n; j++ {
						if len(hopfRows[hi][j]) != 0 {
							srcID := adamsdb.LocID(cohort.S, cohort.FirstV+j)
							if err := out.InsertProduct(tx, srcID, id, nil, hopfRows[hi][j]); err != nil {
								return err
							}
						}
					}
				}
			}

			// Generators not reached by any product of lower classes are the
			// new indecomposables; they multiply with themselves to one.
			// The product matrix rows are indexed by (multiplier, target
			// basis element) and list the cohort indices hitting it.
			var rows [][]int
			addRows := func(mat [][]int) {
				maxK := -1
				for _, ks := range mat {
					for _, k := range ks {
						if k > maxK {
							maxK = k
						}
					}
				}
				byK := make([][]int, maxK+1)
				for j, ks := range mat {
					for _, k := range ks {
						byK[k] = append(byK[k], j)
					}
				}
				rows = append(rows, byK...)
			}
			for _, g := range gs {
				addRows(fh[g])
			}
			if p.WithHopf && cohort.S > 1 {
				for hi := range hopfIDs {
					addRows(hopfRows[hi])
				}
			}
			one := steenrod.Gen(0)
			for _, i := range Indecomposables(rows, n) {
				id := adamsdb.LocID(cohort.S, cohort.FirstV+i)
				if err := out.MarkIndecomposable(tx, id); err != nil {
					return err
				}
				if err := out.InsertProduct(tx, id, id, one.Bytes(), []int{0}); err != nil {
					return err
				}
			}
			seconds := time.Since(start).Seconds()
			if err := out.SaveTime(tx, cohort.S, cohort.T, seconds); err != nil {
				return err
			}
			if p.Progress != nil {
				p.Progress(cohort.S, cohort.T, seconds)
			}
			return nil
		}
		if err := commit(); err != nil {
			tx.Rollback()
			return fmt.Errorf("lift: cohort (s=%d, t=%d): %w", cohort.S, cohort.T, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("lift: %w", err)
		}
	}
	return nil
}
