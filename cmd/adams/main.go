// Command adams computes minimal Adams resolutions over the mod-2 Steenrod
// algebra and the multiplicative structure on their Ext groups.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sseq-go/adams/adamsdb"
	"github.com/sseq-go/adams/bench"
	"github.com/sseq-go/adams/complexes"
	"github.com/sseq-go/adams/lift"
	"github.com/sseq-go/adams/resolution"
	"github.com/sseq-go/adams/steenrod"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "adams",
		Short:         "Adams spectral sequence E2 computations over the mod-2 Steenrod algebra",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	var workers int
	var showBench bool
	rootCmd.PersistentFlags().IntVar(&workers, "workers", 0, "Number of parallel workers (0 = NumCPU)")
	rootCmd.PersistentFlags().BoolVar(&showBench, "bench", false, "Print timing statistics at the end of the run")

	resCmd := &cobra.Command{
		Use:   "res <complex> [t_max] [stem_max] [db] [table]",
		Short: "Compute the minimal resolution of a complex (S0, RP<n>, X2)",
		Args:  cobra.RangeArgs(1, 5),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			tMax, err := optInt(args, 1, 100)
			if err != nil {
				return err
			}
			stemMax, err := optInt(args, 2, steenrod.DegMax)
			if err != nil {
				return err
			}
			dbFile := optStr(args, 3, name+"_Adams_res.db")
			table := optStr(args, 4, name+"_Adams_res")

			base, n := splitComplexName(name)
			pres, err := complexes.ByName(base, n, tMax)
			if err != nil {
				return err
			}

			db, err := adamsdb.Open(dbFile)
			if err != nil {
				return err
			}
			defer db.Close()
			sink, err := adamsdb.NewResSink(db, table)
			if err != nil {
				return err
			}

			instr := bench.New()
			params := resolution.Params{
				TMax:       tMax,
				StemMax:    stemMax,
				Workers:    workers,
				Instrument: instr,
				Progress: func(s, t int, seconds float64) {
					fmt.Printf("t=%d s=%d time=%f\n", t, s, seconds)
				},
			}

			var r *resolution.Resolver
			if st, found, err := adamsdb.LoadState(db, table); err != nil {
				return err
			} else if found {
				if r, err = resolution.ResumeResolver(pres, st, params, sink); err != nil {
					return err
				}
			} else if r, err = resolution.NewResolver(pres, params, sink); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()
			err = r.Run(ctx)
			var cancelled *resolution.CancelledError
			if errors.As(err, &cancelled) {
				fmt.Println(cancelled.Error())
				err = nil
			}
			if showBench {
				fmt.Println(instr.Summary())
			}
			return err
		},
	}

	prodCmd := &cobra.Command{
		Use:   "prod <ring> <t_max> [stem_max]",
		Short: "Compute the products of a ring resolution with its indecomposables",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ring := args[0]
			tMax, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("bad t_max %q: %w", args[1], err)
			}
			stemMax, err := optInt(args, 2, steenrod.DegMax)
			if err != nil {
				return err
			}

			resDB, err := adamsdb.Open(mustExist(ring + "_Adams_res.db"))
			if err != nil {
				return err
			}
			defer resDB.Close()
			outDB, err := adamsdb.Open(ring + "_Adams_res_prod.db")
			if err != nil {
				return err
			}
			defer outDB.Close()
			out, err := adamsdb.NewProdDB(outDB, ring+"_Adams_res")
			if err != nil {
				return err
			}

			return lift.ComputeProducts(resDB, ring+"_Adams_res", resDB, ring+"_Adams_res", out, lift.ProductsParams{
				TMax:     tMax,
				StemMax:  stemMax,
				Workers:  workers,
				WithHopf: ring == "S0" || ring == "tmf",
				Progress: progressLine,
			})
		},
	}

	prodModCmd := &cobra.Command{
		Use:   "prod_mod <mod> <ring> <t_max> [stem_max]",
		Short: "Compute the module action of a ring resolution on a module resolution",
		Args:  cobra.RangeArgs(3, 4),
		RunE: func(cmd *cobra.Command, args []string) error {
			mod, ring := args[0], args[1]
			tMax, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("bad t_max %q: %w", args[2], err)
			}
			stemMax, err := optInt(args, 3, steenrod.DegMax)
			if err != nil {
				return err
			}

			modDB, err := adamsdb.Open(mustExist(mod + "_Adams_res.db"))
			if err != nil {
				return err
			}
			defer modDB.Close()
			ringDB, err := adamsdb.Open(mustExist(ring + "_Adams_res.db"))
			if err != nil {
				return err
			}
			defer ringDB.Close()
			outDB, err := adamsdb.Open(mod + "_Adams_res_prod.db")
			if err != nil {
				return err
			}
			defer outDB.Close()
			out, err := adamsdb.NewProdDB(outDB, fmt.Sprintf("%s_over_%s_Adams_res", mod, ring))
			if err != nil {
				return err
			}

			return lift.ComputeProducts(modDB, mod+"_Adams_res", ringDB, ring+"_Adams_res", out, lift.ProductsParams{
				TMax:     tMax,
				StemMax:  stemMax,
				Workers:  workers,
				Progress: progressLine,
			})
		},
	}

	mapResCmd := &cobra.Command{
		Use:   "map_res <cw1> <cw2> <t_max> [stem_max]",
		Short: "Extend the chain map of a map of complexes through the resolutions",
		Args:  cobra.RangeArgs(3, 4),
		RunE: func(cmd *cobra.Command, args []string) error {
			cw1, cw2 := args[0], args[1]
			tMax, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("bad t_max %q: %w", args[2], err)
			}
			stemMax, err := optInt(args, 3, steenrod.DegMax)
			if err != nil {
				return err
			}

			mapFile := mustExist(fmt.Sprintf("map_Adams_res_%s_to_%s.db", cw1, cw2))
			mapRaw, err := adamsdb.Open(mapFile)
			if err != nil {
				return err
			}
			defer mapRaw.Close()
			mdb, err := adamsdb.NewMapDB(mapRaw, fmt.Sprintf("map_Adams_res_%s_to_%s", cw1, cw2))
			if err != nil {
				return err
			}
			from, to, _, _, err := mdb.MapMeta()
			if err != nil {
				return err
			}
			if from == "" {
				from = cw1
			}
			if to == "" {
				to = cw2
			}

			srcDB, err := adamsdb.Open(mustExist(from + "_Adams_res.db"))
			if err != nil {
				return err
			}
			defer srcDB.Close()
			dstDB, err := adamsdb.Open(mustExist(to + "_Adams_res.db"))
			if err != nil {
				return err
			}
			defer dstDB.Close()

			return lift.ComputeMapRes(mdb, srcDB, from+"_Adams_res", dstDB, to+"_Adams_res", lift.MapParams{
				TMax:     tMax,
				StemMax:  stemMax,
				Workers:  workers,
				Progress: progressLine,
			})
		},
	}

	prodHiCmd := &cobra.Command{
		Use:   "prod_hi <cw> [db_S0] [db_mod] [db_out]",
		Short: "Record the products with the Hopf classes h_i off the differentials",
		Args:  cobra.RangeArgs(1, 4),
		RunE: func(cmd *cobra.Command, args []string) error {
			cw := args[0]
			dbS0 := optStr(args, 1, "S0_Adams_res.db")
			dbMod := optStr(args, 2, cw+"_Adams_res.db")
			dbOut := optStr(args, 3, cw+"_Adams_res_prod.db")

			ringDB, err := adamsdb.Open(mustExist(dbS0))
			if err != nil {
				return err
			}
			defer ringDB.Close()
			modDB, err := adamsdb.Open(mustExist(dbMod))
			if err != nil {
				return err
			}
			defer modDB.Close()
			outDB, err := adamsdb.Open(dbOut)
			if err != nil {
				return err
			}
			defer outDB.Close()
			out, err := adamsdb.NewProdDB(outDB, cw+"_Adams_res")
			if err != nil {
				return err
			}
			return lift.ComputeProductsWithHi(ringDB, "S0_Adams_res", modDB, cw+"_Adams_res", out, steenrod.DegMax, steenrod.DegMax)
		},
	}

	rootCmd.AddCommand(resCmd, prodCmd, prodModCmd, mapResCmd, prodHiCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func progressLine(s, t int, seconds float64) {
	fmt.Printf("t=%d s=%d time=%f\n", t, s, seconds)
}

func optInt(args []string, i, def int) (int, error) {
	if i >= len(args) {
		return def, nil
	}
	v, err := strconv.Atoi(args[i])
	if err != nil {
		return 0, fmt.Errorf("bad argument %q: %w", args[i], err)
	}
	return v, nil
}

func optStr(args []string, i int, def string) string {
	if i >= len(args) {
		return def
	}
	return args[i]
}

// splitComplexName parses the complex argument: "RP" or "RPn" select real
// projective space (n < 0 means infinite), everything else is a plain name.
func splitComplexName(name string) (string, int) {
	if strings.HasPrefix(name, "RP") {
		suffix := name[2:]
		if suffix == "" || suffix == "inf" {
			return "RP", -1
		}
		if n, err := strconv.Atoi(suffix); err == nil {
			return "RP", n
		}
	}
	return name, -1
}

func mustExist(path string) string {
	if _, err := os.Stat(path); err != nil {
		fmt.Fprintf(os.Stderr, "Error: file %s does not exist\n", path)
		os.Exit(1)
	}
	return path
}
