package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/synthtab-cli/internal/config"
	"github.com/KaramelBytes/synthtab-cli/internal/fields"
	"github.com/KaramelBytes/synthtab-cli/internal/synth"
	"github.com/KaramelBytes/synthtab-cli/internal/utils"
)

// buildRequest starts from the configured defaults and applies only the flags
// the user actually set.
func buildRequest(cmd *cobra.Command, c *cfgpkg.Global) (synth.Request, error) {
	req := synth.Request{
		Rows:               c.DefaultRows,
		NumericColumns:     c.DefaultNumeric,
		CategoricalColumns: c.DefaultCategorical,
		MissingRate:        c.DefaultMissingRate,
		Correlate:          c.Correlate,
		Correlation:        c.DefaultCorrelation,
	}
	names := c.DefaultFields

	f := cmd.Flags()
	if f.Changed("rows") {
		req.Rows = genRows
	}
	if f.Changed("numeric") {
		req.NumericColumns = genNumeric
	}
	if f.Changed("categorical") {
		req.CategoricalColumns = genCategorical
	}
	if f.Changed("fields") {
		names = genFields
	}
	if f.Changed("missing") {
		req.MissingRate = genMissing
	}
	if f.Changed("correlation") {
		req.Correlation = genCorrelation
		req.Correlate = true
	}
	if genNoCorrelation {
		req.Correlate = false
	}

	kinds, err := fields.ParseKinds(names)
	if err != nil {
		return req, err
	}
	req.Fields = kinds

	if len(genDists) > 0 {
		ds, err := synth.ParseDistributions(genDists)
		if err != nil {
			return req, err
		}
		// A single family applies to every numeric column.
		if len(ds) == 1 && req.NumericColumns > 1 {
			for len(ds) < req.NumericColumns {
				ds = append(ds, ds[0])
			}
		}
		req.Distributions = ds
	}
	return req, nil
}

type summaryOptions struct {
	JSON    bool
	Quiet   bool
	Verbose bool
	Writer  io.Writer
}

// writeSummary reports a finished generation: the stored metadata as JSON,
// or a short status block.
func writeSummary(res *synth.Result, opts summaryOptions) error {
	w := opts.Writer
	if w == nil {
		w = os.Stdout
	}
	if opts.JSON {
		b, err := utils.PrettyJSON(res)
		if err != nil {
			return fmt.Errorf("marshal output: %w", err)
		}
		fmt.Fprintln(w, string(b))
		return nil
	}
	if opts.Quiet {
		return nil
	}
	fmt.Fprintf(w, "%s Generated dataset %s\n", okMark("✓"), res.ID)
	fmt.Fprintf(w, "  Rows: %d\n", res.Summary.Rows)
	fmt.Fprintf(w, "  Columns: %d\n", res.Summary.Columns)
	fmt.Fprintf(w, "  Missing cells: %d\n", res.Summary.Missing)
	if opts.Verbose {
		fmt.Fprintf(w, "  Seed: %d\n", res.Seed)
		fmt.Fprintf(w, "  Correlation: %s\n", res.Correlation)
		if res.Table != nil {
			fmt.Fprintf(w, "  Names: %s\n", strings.Join(res.Table.Names(), ", "))
		}
	}
	return nil
}
