package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/synthtab-cli/internal/export"
	"github.com/KaramelBytes/synthtab-cli/internal/fields"
	"github.com/KaramelBytes/synthtab-cli/internal/session"
	"github.com/KaramelBytes/synthtab-cli/internal/synth"
)

var (
	listFields  bool
	listDists   bool
	listFormats bool
	listColumns bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List field kinds, distributions, export formats or the current dataset's columns",
	RunE: func(cmd *cobra.Command, args []string) error {
		n := 0
		for _, b := range []bool{listFields, listDists, listFormats, listColumns} {
			if b {
				n++
			}
		}
		if n != 1 {
			return fmt.Errorf("specify exactly one of --fields, --distributions, --formats or --columns")
		}
		out := cmd.OutOrStdout()
		switch {
		case listFields:
			for _, k := range fields.AllKinds() {
				fmt.Fprintf(out, "- %s\n", k)
			}
		case listDists:
			for _, d := range synth.Distributions() {
				fmt.Fprintf(out, "- %s\n", d)
			}
		case listFormats:
			for _, f := range []export.Format{export.CSV, export.XLSX, export.DTA, export.SQL} {
				if name := f.DefaultFileName(); name != "" {
					fmt.Fprintf(out, "- %s (%s)\n", f, name)
				} else {
					fmt.Fprintf(out, "- %s (table in a SQLite, PostgreSQL or MySQL database)\n", f)
				}
			}
		case listColumns:
			c, err := currentConfig()
			if err != nil {
				return err
			}
			res, err := session.NewStore(c.DataDir).Load()
			if err != nil {
				return err
			}
			for i := range res.Table.Columns {
				col := &res.Table.Columns[i]
				fmt.Fprintf(out, "- %s: %s (%d missing)\n", col.Name, col.Kind, col.MissingCount())
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().BoolVar(&listFields, "fields", false, "list personal-information field kinds")
	listCmd.Flags().BoolVar(&listDists, "distributions", false, "list numeric distributions")
	listCmd.Flags().BoolVar(&listFormats, "formats", false, "list export formats")
	listCmd.Flags().BoolVar(&listColumns, "columns", false, "list columns of the current dataset")
}
