// Command geomag computes geomagnetic declination from a WMM/IGRF coefficient
// file and inspects such files.
//
// Usage:
//
//	geomag declination --model data/WMM.COF --lat 41.26 --lon -95.94 --date 2024-04-26
//	geomag catalog --model data/IGRF14.COF --format yaml
//	geomag validate --model data/WMM.COF
//	geomag enrich --model data/WMM.COF --in events.json --out declinations.json
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "geomag",
		Short:         "Geomagnetic declination from spherical-harmonic coefficient files",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("model", "data/WMM.COF", "path to the coefficient file")

	root.AddCommand(
		newDeclinationCmd(),
		newCatalogCmd(),
		newValidateCmd(),
		newEnrichCmd(),
	)
	return root
}

func modelPath(cmd *cobra.Command) string {
	p, _ := cmd.Flags().GetString("model")
	return p
}
