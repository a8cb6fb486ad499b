package lift

import (
	"fmt"

	"github.com/sseq-go/adams/adamsdb"
)

// ComputeProductsWithHi records the h_i-multiples of every generator of a
// module resolution directly off its differentials, as global ids in the
// target resolution. The h_i are the level-1 generators of the ring
// resolution (S0), whose internal degrees are the 2^i.
func ComputeProductsWithHi(ringDB *adamsdb.DB, ringTable string, modDB *adamsdb.DB, modTable string, out *adamsdb.ProdDB, tMax, stemMax int) error {
	hopfIDs, hopfTs, err := adamsdb.GensAt(ringDB, ringTable, 1)
	if err != nil {
		return err
	}

	cohorts, err := adamsdb.LoadCohorts(modDB, modTable, tMax, stemMax)
	if err != nil {
		return err
	}

	if err := out.EnsureHiTable(); err != nil {
		return fmt.Errorf("lift: %w", err)
	}

	for ci := range cohorts {
		cohort := &cohorts[ci]
		if cohort.S == 0 {
			continue
		}
		tx, err := out.Begin()
		if err != nil {
			return fmt.Errorf("lift: %w", err)
		}
		commit := func() error {
			for j, diff := range cohort.Diffs {
				for hi, tCell := range hopfTs {
					prodHi := HomToMSq(diff, tCell)
					if len(prodHi) == 0 {
						continue
					}
					glo := make([]int64, len(prodHi))
					for k, v := range prodHi {
						glo[k] = adamsdb.LocID(cohort.S-1, v)
					}
					id := adamsdb.LocID(cohort.S, cohort.FirstV+j)
					if err := out.InsertHi(tx, id, hopfIDs[hi], glo); err != nil {
						return err
					}
				}
			}
			return nil
		}
		if err := commit(); err != nil {
			tx.Rollback()
			return fmt.Errorf("lift: hi cohort (s=%d, t=%d): %w", cohort.S, cohort.T, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("lift: %w", err)
		}
	}
	return nil
}
