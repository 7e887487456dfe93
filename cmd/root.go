package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/synthtab-cli/internal/config"
)

var (
	// Global flags
	cfgFile  string
	debug    bool
	flagSeed uint64

	// Loaded configuration
	cfg *cfgpkg.Global
)

var (
	okMark   = color.New(color.FgGreen).SprintFunc()
	warnMark = color.New(color.FgYellow).SprintFunc()
	errMark  = color.New(color.FgRed).SprintFunc()
)

var rootCmd = &cobra.Command{
	Use:   "synthtab",
	Short: "synthtab: generate synthetic tabular datasets",
	Long: `synthtab generates synthetic tables with personal-information fields, correlated numeric
columns, categorical columns and injected missing values, then previews or exports them
to CSV, Excel, Stata or a SQL database.`,
	SilenceUsage: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	cobra.OnInitialize(loadConfig)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errMark("✗ Error:"), err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.synthtab/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")
	rootCmd.PersistentFlags().Uint64Var(&flagSeed, "seed", 0, "random seed for reproducible output (overrides config; 0 draws a fresh seed)")
}

func loadConfig() {
	cfgpkg.LoadDotEnv()
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: commands fall back to built-in defaults
		warnf("failed to load config: %v", err)
		return
	}
	cfg = c
	if rootCmd.PersistentFlags().Changed("seed") {
		cfg.Seed = flagSeed
	}
}

// currentConfig returns the config loaded at startup, loading it on demand when
// the startup hook did not run or failed.
func currentConfig() (*cfgpkg.Global, error) {
	if cfg != nil {
		return cfg, nil
	}
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	if rootCmd.PersistentFlags().Changed("seed") {
		c.Seed = flagSeed
	}
	return c, nil
}

func okf(format string, args ...any) {
	fmt.Printf("%s %s\n", okMark("✓"), fmt.Sprintf(format, args...))
}

func warnf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "%s %s\n", warnMark("⚠ Warning:"), fmt.Sprintf(format, args...))
}

func debugf(format string, args ...any) {
	if debug {
		fmt.Fprintf(os.Stderr, "[debug] "+format+"\n", args...)
	}
}
