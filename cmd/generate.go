package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/synthtab-cli/internal/export"
	"github.com/KaramelBytes/synthtab-cli/internal/session"
	"github.com/KaramelBytes/synthtab-cli/internal/synth"
)

var (
	genRows          int
	genNumeric       int
	genCategorical   int
	genFields        []string
	genMissing       float64
	genCorrelation   float64
	genNoCorrelation bool
	genDists         []string
	genOutput        string
	genQuiet         bool
	genJSON          bool
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a synthetic dataset and keep it as the current result",
	Long: `Generate builds a table with the requested personal-information fields, numeric columns
(optionally correlated), categorical columns and missing values. The result replaces the
current dataset used by preview and export.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := currentConfig()
		if err != nil {
			return err
		}
		req, err := buildRequest(cmd, c)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
		defer stop()

		gen := &synth.Generator{
			Seed:     c.Seed,
			Reporter: synth.ReporterFunc(func(msg string) { warnf("%s", msg) }),
		}
		res, err := gen.Generate(ctx, req)
		if err != nil {
			return err
		}

		store := session.NewStore(c.DataDir)
		if err := store.Save(res); err != nil {
			return fmt.Errorf("save dataset: %w", err)
		}
		debugf("seed=%d correlation=%s store=%s", res.Seed, res.Correlation, store.Dir())

		if err := writeSummary(res, summaryOptions{JSON: genJSON, Quiet: genQuiet, Verbose: debug, Writer: cmd.OutOrStdout()}); err != nil {
			return err
		}

		if genOutput != "" {
			f, err := export.FormatFromPath(genOutput)
			if err != nil {
				return err
			}
			if err := export.WriteFile(genOutput, f, res.Table); err != nil {
				return fmt.Errorf("export %s: %w", f, err)
			}
			if !genQuiet && !genJSON {
				abs, _ := filepath.Abs(genOutput)
				okf("Wrote %s", abs)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(generateCmd)
	generateCmd.Flags().IntVarP(&genRows, "rows", "n", 0, "number of rows (default from config)")
	generateCmd.Flags().IntVar(&genNumeric, "numeric", 0, "number of numeric columns")
	generateCmd.Flags().IntVar(&genCategorical, "categorical", 0, "number of categorical columns")
	generateCmd.Flags().StringSliceVar(&genFields, "fields", nil, "personal-information fields: name,email,address,phone,company,job,credit_card (empty for none)")
	generateCmd.Flags().Float64Var(&genMissing, "missing", 0, "fraction of cells to blank out, 0 to 0.5")
	generateCmd.Flags().Float64Var(&genCorrelation, "correlation", 0, "target pairwise correlation between numeric columns, -1 to 1")
	generateCmd.Flags().BoolVar(&genNoCorrelation, "no-correlation", false, "leave numeric columns independent")
	generateCmd.Flags().StringSliceVar(&genDists, "dist", nil, "numeric distribution per column: normal|uniform|exponential|lognormal (one value applies to all)")
	generateCmd.Flags().StringVarP(&genOutput, "out", "o", "", "also export to this file (.csv, .xlsx or .dta)")
	generateCmd.Flags().BoolVar(&genQuiet, "quiet", false, "suppress non-essential output")
	generateCmd.Flags().BoolVar(&genJSON, "json", false, "print the dataset metadata as JSON")
}
