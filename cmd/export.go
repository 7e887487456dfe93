package cmd

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"

	"github.com/KaramelBytes/synthtab-cli/internal/export"
	"github.com/KaramelBytes/synthtab-cli/internal/session"
	"github.com/KaramelBytes/synthtab-cli/internal/storage"
	"github.com/KaramelBytes/synthtab-cli/internal/utils"
)

var (
	expFormat     string
	expOutput     string
	expDBURL      string
	expDialect    string
	expTable      string
	expReplace    bool
	expBatch      int
	expUpload     string
	expTimeoutSec int
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the current dataset to CSV, Excel, Stata or a SQL database",
	Long: `Export writes the current dataset. File formats default to synthetic_data.<ext> in the
configured export directory. The sql format creates a table and inserts every row.

Examples:
  synthtab export --format xlsx
  synthtab export -o out/people.dta
  synthtab export --format sql --db-url ./synth.db --table people
  synthtab export --format sql --dialect postgres --db-url postgres://localhost/synth
  synthtab export --format csv --upload s3://my-bucket/datasets`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := currentConfig()
		if err != nil {
			return err
		}
		res, err := session.NewStore(c.DataDir).Load()
		if err != nil {
			return err
		}
		f, err := resolveFormat()
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		if expTimeoutSec > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, time.Duration(expTimeoutSec)*time.Second)
			defer cancel()
		}

		if f == export.SQL {
			if expUpload != "" {
				return errors.New("--upload applies to file formats only")
			}
			if expDBURL == "" {
				return errors.New("--db-url is required for the sql format")
			}
			d, err := resolveDialect(expDialect, expDBURL)
			if err != nil {
				return err
			}
			db, err := openDB(d, expDBURL)
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer db.Close()
			batch := c.SQLBatchSize
			if expBatch > 0 {
				batch = expBatch
			}
			n, err := export.ExportSQL(ctx, db, export.SQLOptions{
				Dialect:   d,
				Table:     expTable,
				BatchSize: batch,
				Replace:   expReplace,
			}, res.Table)
			if err != nil {
				return err
			}
			okf("Inserted %d rows into %s table %s", n, d, expTable)
			return nil
		}

		path := expOutput
		if path == "" {
			path = filepath.Join(c.ExportDir, f.DefaultFileName())
		}
		if p, err := utils.ExpandHome(path); err == nil {
			path = p
		}
		if err := export.WriteFile(path, f, res.Table); err != nil {
			return fmt.Errorf("export %s: %w", f, err)
		}
		abs, _ := filepath.Abs(path)
		okf("Exported %d rows to %s", res.Table.Rows, abs)

		if expUpload != "" {
			dest, err := storage.ParseDestination(expUpload)
			if err != nil {
				return err
			}
			st, err := storage.Open(ctx, dest, storage.S3Config{
				Region:       c.S3Region,
				Endpoint:     c.S3Endpoint,
				UsePathStyle: c.S3PathStyle,
			})
			if err != nil {
				return err
			}
			obj := dest.ObjectPath(filepath.Base(path))
			exists, err := st.Exists(ctx, obj)
			if err != nil {
				return err
			}
			if exists {
				warnf("overwriting existing %s", st.Location(obj))
			}
			if err := st.Upload(ctx, path, obj); err != nil {
				return err
			}
			okf("Uploaded to %s", st.Location(obj))
		}
		return nil
	},
}

// resolveFormat picks --format, then the --out extension, then sql when a
// database URL is given, and finally csv. A --format that contradicts a
// recognized --out extension is rejected.
func resolveFormat() (export.Format, error) {
	switch {
	case expFormat != "":
		f, err := export.ParseFormat(expFormat)
		if err != nil {
			return f, err
		}
		if expOutput != "" {
			if ext, err := export.FormatFromPath(expOutput); err == nil && ext != f {
				return f, fmt.Errorf("--format %s does not match the %s extension of %s", f, ext, expOutput)
			}
		}
		return f, nil
	case expOutput != "":
		return export.FormatFromPath(expOutput)
	case expDBURL != "":
		return export.SQL, nil
	}
	return export.CSV, nil
}

// resolveDialect uses --dialect when set, otherwise guesses from the URL
// scheme and falls back to a SQLite file.
func resolveDialect(name, url string) (export.Dialect, error) {
	if name != "" {
		return export.ParseDialect(name)
	}
	lower := strings.ToLower(url)
	switch {
	case strings.HasPrefix(lower, "postgres://"), strings.HasPrefix(lower, "postgresql://"):
		return export.Postgres, nil
	case strings.Contains(lower, "@tcp("):
		return export.MySQL, nil
	}
	return export.SQLite, nil
}

func openDB(d export.Dialect, url string) (*sql.DB, error) {
	db, err := sql.Open(d.DriverName(), url)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&expFormat, "format", "f", "", "export format: csv|xlsx|dta|sql (default from --out, else csv)")
	exportCmd.Flags().StringVarP(&expOutput, "out", "o", "", "output file path (default synthetic_data.<ext> in export_dir)")
	exportCmd.Flags().StringVar(&expDBURL, "db-url", "", "database URL or DSN for the sql format (SQLite file path, postgres://..., user:pass@tcp(host)/db)")
	exportCmd.Flags().StringVar(&expDialect, "dialect", "", "sql dialect: sqlite|postgres|mysql (guessed from --db-url)")
	exportCmd.Flags().StringVar(&expTable, "table", export.DefaultBaseName, "destination table for the sql format")
	exportCmd.Flags().BoolVar(&expReplace, "replace", false, "drop the destination table first if it exists")
	exportCmd.Flags().IntVar(&expBatch, "batch", 0, "rows per INSERT statement (default from config)")
	exportCmd.Flags().StringVar(&expUpload, "upload", "", "upload the exported file to s3://bucket/prefix or a directory")
	exportCmd.Flags().IntVar(&expTimeoutSec, "timeout-sec", 0, "abort the export after this many seconds (0 disables)")
}
