package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/synthtab-cli/internal/config"
	"github.com/KaramelBytes/synthtab-cli/internal/fields"
	"github.com/KaramelBytes/synthtab-cli/internal/synth"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set synthtab configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := currentConfig()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "default_rows: %d\n", c.DefaultRows)
		fmt.Fprintf(out, "default_numeric: %d\n", c.DefaultNumeric)
		fmt.Fprintf(out, "default_categorical: %d\n", c.DefaultCategorical)
		fmt.Fprintf(out, "default_fields: %s\n", strings.Join(c.DefaultFields, ","))
		fmt.Fprintf(out, "default_missing_rate: %.3f\n", c.DefaultMissingRate)
		fmt.Fprintf(out, "default_correlation: %.3f\n", c.DefaultCorrelation)
		fmt.Fprintf(out, "correlate: %t\n", c.Correlate)
		fmt.Fprintf(out, "seed: %d\n", c.Seed)
		fmt.Fprintf(out, "data_dir: %s\n", c.DataDir)
		fmt.Fprintf(out, "export_dir: %s\n", c.ExportDir)
		fmt.Fprintf(out, "s3_region: %s\n", c.S3Region)
		if c.S3Endpoint != "" {
			fmt.Fprintf(out, "s3_endpoint: %s\n", c.S3Endpoint)
		}
		fmt.Fprintf(out, "s3_path_style: %t\n", c.S3PathStyle)
		fmt.Fprintf(out, "sql_batch_size: %d\n", c.SQLBatchSize)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		c, err := currentConfig()
		if err != nil {
			return err
		}
		switch key {
		case "default_rows":
			i, err := strconv.Atoi(val)
			if err != nil || i < 1 || i > synth.MaxRows {
				return fmt.Errorf("invalid int for default_rows: %v (use 1..%d)", val, synth.MaxRows)
			}
			c.DefaultRows = i
		case "default_numeric", "default_categorical":
			i, err := strconv.Atoi(val)
			if err != nil || i < 0 || i > synth.MaxColumns {
				return fmt.Errorf("invalid int for %s: %v (use 0..%d)", key, val, synth.MaxColumns)
			}
			if key == "default_numeric" {
				c.DefaultNumeric = i
			} else {
				c.DefaultCategorical = i
			}
		case "default_fields":
			kinds, err := fields.ParseKinds(strings.Split(val, ","))
			if err != nil {
				return err
			}
			c.DefaultFields = c.DefaultFields[:0]
			for _, k := range kinds {
				c.DefaultFields = append(c.DefaultFields, string(k))
			}
		case "default_missing_rate":
			f, err := strconv.ParseFloat(val, 64)
			if err != nil || f < 0 || f > synth.MaxMissingRate {
				return fmt.Errorf("invalid float for default_missing_rate: %v (use 0..%.1f)", val, synth.MaxMissingRate)
			}
			c.DefaultMissingRate = f
		case "default_correlation":
			f, err := strconv.ParseFloat(val, 64)
			if err != nil || f < -1 || f > 1 {
				return fmt.Errorf("invalid float for default_correlation: %v (use -1..1)", val)
			}
			c.DefaultCorrelation = f
		case "correlate":
			b, err := strconv.ParseBool(val)
			if err != nil {
				return fmt.Errorf("invalid bool for correlate: %w", err)
			}
			c.Correlate = b
		case "seed":
			u, err := strconv.ParseUint(val, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid seed: %w", err)
			}
			c.Seed = u
		case "data_dir":
			c.DataDir = val
		case "export_dir":
			c.ExportDir = val
		case "s3_region":
			c.S3Region = val
		case "s3_endpoint":
			c.S3Endpoint = val
		case "s3_path_style":
			b, err := strconv.ParseBool(val)
			if err != nil {
				return fmt.Errorf("invalid bool for s3_path_style: %w", err)
			}
			c.S3PathStyle = b
		case "sql_batch_size":
			i, err := strconv.Atoi(val)
			if err != nil || i < 1 {
				return fmt.Errorf("invalid int for sql_batch_size: %v", val)
			}
			c.SQLBatchSize = i
		default:
			return fmt.Errorf("unknown key: %s (use one of %s)", key, strings.Join(cfgpkg.Keys, ", "))
		}
		if err := cfgpkg.Save(c, cfgFile); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
