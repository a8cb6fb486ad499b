package lift

import (
	"fmt"
	"runtime"
	"time"

	"github.com/sseq-go/adams/adamsdb"
	"github.com/sseq-go/adams/resolution"
	"github.com/sseq-go/adams/steenrod"
	"github.com/sseq-go/adams/utils/concurrency"
)

// MapParams bundles the inputs of a chain-map pass.
//
//	F_s -----f-----> G_{s-fil}
//	 |                 |
//	 d                 d
//	 V                 V
//	F_{s-1} --f--> G_{s-1-fil}
//
// F is the resolution of the codomain complex, G that of the domain; the
// stored map is the contravariant one on Ext. The seed images of the
// filtration-fil layer must already be present in the map table (written by
// the presentation layer or a previous run).
type MapParams struct {
	TMax, StemMax int
	Workers       int
	Progress      func(s, t int, seconds float64)
}

// ComputeMapRes extends a seeded chain map cohort by cohort. srcDB/srcTable
// hold the resolution being mapped from (loaded band by band), dstDB/
// dstTable the resolution whose generators are lifted.
func ComputeMapRes(mdb *adamsdb.MapDB, srcDB *adamsdb.DB, srcTable string, dstDB *adamsdb.DB, dstTable string, p MapParams) error {
	_, _, sus, fil, err := mdb.MapMeta()
	if err != nil {
		return fmt.Errorf("lift: map metadata: %w", err)
	}

	genDegs, err := adamsdb.LoadGenDegs(srcDB, srcTable, p.TMax+sus)
	if err != nil {
		return err
	}
	target := NewRotatingTarget(genDegs)

	cohorts, err := adamsdb.LoadCohorts(dstDB, dstTable, p.TMax-sus, p.StemMax-sus)
	if err != nil {
		return err
	}

	mapped, err := mdb.LoadMappedIDs()
	if err != nil {
		return err
	}

	workers := p.Workers
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}

	for ci := range cohorts {
		cohort := &cohorts[ci]
		if cohort.S < fil || mapped[cohort.FirstID()] {
			continue
		}
		start := time.Now()
		n := len(cohort.Diffs)

		// The band loader is serialized with the solver: Rotate only runs
		// here, before the cohort's workers start.
		if err := target.Rotate(cohort.S-fil, func(s int) ([]resolution.Element, error) {
			return adamsdb.LoadGbLevel(srcDB, srcTable, s, p.TMax+sus)
		}); err != nil {
			return err
		}

		fsm1, err := mdb.LoadMap(cohort.S - 1)
		if err != nil {
			return err
		}

		fd := make([]steenrod.Mod, n)
		rm := concurrency.NewResourceManager(make([]struct{}, workers))
		for j := 0; j < n; j++ {
			j := j
			rm.Run(func(struct{}) error {
				fd[j] = steenrod.Subs(cohort.Diffs[j], fsm1)
				return nil
			})
		}
		if err := rm.Wait(); err != nil {
			return err
		}

		f := make([]steenrod.Mod, n)
		if err := target.DiffInvBatch(fd, f, cohort.S-1-fil, workers); err != nil {
			return fmt.Errorf("lift: map at (s=%d, t=%d): %w", cohort.S, cohort.T, err)
		}

		tx, err := mdb.Begin()
		if err != nil {
			return fmt.Errorf("lift: %w", err)
		}
		commit := func() error {
			for j := 0; j < n; j++ {
				if f[j].IsZero() {
					continue
				}
				id := adamsdb.LocID(cohort.S, cohort.FirstV+j)
				if err := mdb.InsertMap(tx, id, f[j].Bytes(), HomToK(f[j])); err != nil {
					return err
				}
			}
			seconds := time.Since(start).Seconds()
			if err := mdb.SaveTime(tx, cohort.S, cohort.T, seconds); err != nil {
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

// SeedMap writes the seed images of a chain map: images[i] is the image of
// the generator with per-degree index i at homological degree fil.
func SeedMap(mdb *adamsdb.MapDB, from, to string, images []steenrod.Mod, sus, fil int) error {
	if err := mdb.SetMapMeta(from, to, sus, fil); err != nil {
		return err
	}
	tx, err := mdb.Begin()
	if err != nil {
		return fmt.Errorf("lift: %w", err)
	}
	for i, img := range images {
		if err := mdb.InsertMap(tx, adamsdb.LocID(fil, i), img.Bytes(), HomToK(img)); err != nil {
			tx.Rollback()
			return fmt.Errorf("lift: seed: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("lift: %w", err)
	}
	return nil
}
