package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/couchcryptid/storm-data-geomag/internal/geomag"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newCatalogCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "List the models in a coefficient file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cat, err := geomag.LoadCatalogFile(modelPath(cmd))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch format {
			case "json":
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(cat)
			case "yaml":
				enc := yaml.NewEncoder(out)
				enc.SetIndent(2)
				if err := enc.Encode(cat); err != nil {
					return err
				}
				return enc.Close()
			case "table":
				tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
				fmt.Fprintln(tw, "MODEL\tEPOCH\tDEGREE\tSV DEGREE\tVALID\tALTITUDE (km)")
				for _, m := range cat.Models {
					fmt.Fprintf(tw, "%s\t%.2f\t%d\t%d\t%.2f-%.2f\t%g..%g\n",
						m.Name, m.Epoch, m.MaxDegree, m.SVMaxDegree, m.MinYear, m.MaxYear, m.MinAltitudeKm, m.MaxAltitudeKm)
				}
				if err := tw.Flush(); err != nil {
					return err
				}
				fmt.Fprintf(out, "\n%d models, valid %.2f to %.2f\n", len(cat.Models), cat.MinYear, cat.MaxYear)
				return nil
			}
			return fmt.Errorf("unknown format %q (want table, json or yaml)", format)
		},
	}
	cmd.Flags().StringVar(&format, "format", "table", "output format: table, json or yaml")
	return cmd
}
