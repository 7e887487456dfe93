package cmd

import (
	"bytes"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/KaramelBytes/synthtab-cli/internal/session"
	"github.com/KaramelBytes/synthtab-cli/internal/synth"
)

// resetFlags puts every flag back to its default so values from one
// invocation do not leak into the next.
func resetFlags(c *cobra.Command) {
	reset := func(fl *pflag.Flag) {
		if sv, ok := fl.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = fl.Value.Set(fl.DefValue)
		}
		fl.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func execCmd(args ...string) (string, error) {
	resetFlags(rootCmd)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	defer rootCmd.SetOut(nil)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

// runCmd is a helper to execute the root command with args.
func runCmd(t *testing.T, args ...string) string {
	t.Helper()
	out, err := execCmd(args...)
	if err != nil {
		t.Fatalf("command %v failed: %v", args, err)
	}
	return out
}

func withHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	oldHome := os.Getenv("HOME")
	t.Cleanup(func() { os.Setenv("HOME", oldHome) })
	os.Setenv("HOME", home)
	return home
}

func TestCLI_Generate_Preview_Export_Analyze(t *testing.T) {
	home := withHome(t)
	out := filepath.Join(home, "out")

	runCmd(t, "generate", "--rows", "200", "--numeric", "3", "--categorical", "2",
		"--fields", "name,email,address", "--missing", "0.1", "--seed", "42", "--quiet")
	if _, err := os.Stat(filepath.Join(home, ".synthtab", "data", "current.json")); err != nil {
		t.Fatalf("expected stored dataset: %v", err)
	}

	preview := runCmd(t, "preview", "--rows", "5")
	for _, want := range []string{"[DATASET SUMMARY]", "Rows: 200", "Columns: 8", "[CORRELATIONS]", "numeric_1", "category_2", "address"} {
		if !strings.Contains(preview, want) {
			t.Fatalf("preview missing %q:\n%s", want, preview)
		}
	}

	for _, name := range []string{"data.csv", "data.xlsx", "data.dta"} {
		runCmd(t, "export", "-o", filepath.Join(out, name))
		st, err := os.Stat(filepath.Join(out, name))
		if err != nil || st.Size() == 0 {
			t.Fatalf("expected non-empty %s: %v", name, err)
		}
	}

	for _, name := range []string{"data.csv", "data.xlsx"} {
		summary := runCmd(t, "analyze", filepath.Join(out, name))
		if !strings.Contains(summary, "Rows: 200") || !strings.Contains(summary, "Columns: 8") {
			t.Fatalf("analyze %s summary unexpected:\n%s", name, summary)
		}
	}

	dbPath := filepath.Join(out, "synth.db")
	runCmd(t, "export", "--format", "sql", "--db-url", dbPath, "--table", "people", "--batch", "64")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer db.Close()
	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM "people"`).Scan(&n); err != nil {
		t.Fatalf("count rows: %v", err)
	}
	if n != 200 {
		t.Fatalf("expected 200 rows in sqlite, got %d", n)
	}

	// A second export into the same table needs --replace.
	if _, err := execCmd("export", "--format", "sql", "--db-url", dbPath, "--table", "people"); err == nil {
		t.Fatalf("expected error when the table already exists")
	}
	runCmd(t, "export", "--format", "sql", "--db-url", dbPath, "--table", "people", "--replace")
}

func TestCLI_SeedIsReproducible(t *testing.T) {
	home := withHome(t)
	a := filepath.Join(home, "a.csv")
	b := filepath.Join(home, "b.csv")

	runCmd(t, "generate", "--rows", "100", "--seed", "7", "--quiet", "-o", a)
	runCmd(t, "generate", "--rows", "100", "--seed", "7", "--quiet", "-o", b)

	ab, err := os.ReadFile(a)
	if err != nil {
		t.Fatal(err)
	}
	bb, err := os.ReadFile(b)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(ab, bb) {
		t.Fatalf("same seed produced different files")
	}
}

func TestCLI_Errors(t *testing.T) {
	withHome(t)

	if _, err := execCmd("preview"); !errors.Is(err, session.ErrNoDataset) {
		t.Fatalf("expected ErrNoDataset before generate, got %v", err)
	}
	if _, err := execCmd("generate", "--rows", "0"); !errors.Is(err, synth.ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest for zero rows, got %v", err)
	}
	if _, err := execCmd("generate", "--missing", "0.9"); !errors.Is(err, synth.ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest for missing rate, got %v", err)
	}
	runCmd(t, "generate", "--rows", "10", "--quiet")
	if _, err := execCmd("export", "--format", "parquet"); err == nil {
		t.Fatalf("expected unsupported format error")
	}
	if _, err := execCmd("export", "--format", "sql"); err == nil {
		t.Fatalf("expected error without --db-url")
	}
}

func TestCLI_ExportRejectsFormatExtensionMismatch(t *testing.T) {
	home := withHome(t)
	runCmd(t, "generate", "--rows", "10", "--quiet")

	path := filepath.Join(home, "out.csv")
	_, err := execCmd("export", "--format", "xlsx", "-o", path)
	if err == nil || !strings.Contains(err.Error(), "does not match") {
		t.Fatalf("expected mismatch error, got %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("nothing should be written on mismatch")
	}

	// Matching or unrecognized extensions are accepted.
	runCmd(t, "export", "--format", "CSV", "-o", path)
	runCmd(t, "export", "--format", "xlsx", "-o", filepath.Join(home, "sheet.bin"))
}

func TestCLI_ConfigSetShow(t *testing.T) {
	withHome(t)

	runCmd(t, "config", "set", "default_rows", "50")
	runCmd(t, "config", "set", "default_categorical", "0")
	show := runCmd(t, "config", "show")
	if !strings.Contains(show, "default_rows: 50") {
		t.Fatalf("config show did not reflect update:\n%s", show)
	}
	if _, err := execCmd("config", "set", "default_rows", "-3"); err == nil {
		t.Fatalf("expected error for invalid default_rows")
	}
	if _, err := execCmd("config", "set", "nope", "1"); err == nil {
		t.Fatalf("expected error for unknown key")
	}

	runCmd(t, "generate", "--quiet")
	preview := runCmd(t, "preview")
	if !strings.Contains(preview, "Rows: 50") || strings.Contains(preview, "category_1") {
		t.Fatalf("generate did not use configured defaults:\n%s", preview)
	}
}

func TestCLI_ExportUploadToDirectory(t *testing.T) {
	home := withHome(t)
	dest := filepath.Join(home, "bucket")

	runCmd(t, "generate", "--rows", "20", "--quiet")
	runCmd(t, "export", "-o", filepath.Join(home, "x.csv"), "--upload", dest)
	if _, err := os.Stat(filepath.Join(dest, "x.csv")); err != nil {
		t.Fatalf("expected uploaded file: %v", err)
	}
	// A second upload to the same object overwrites it.
	runCmd(t, "export", "-o", filepath.Join(home, "x.csv"), "--upload", dest)
}

func TestCLI_DatasetShowListClear(t *testing.T) {
	withHome(t)

	if _, err := execCmd("list"); err == nil {
		t.Fatalf("expected error without a list selector")
	}
	kinds := runCmd(t, "list", "--fields")
	if !strings.Contains(kinds, "- credit_card") {
		t.Fatalf("list --fields missing credit_card:\n%s", kinds)
	}
	formats := runCmd(t, "list", "--formats")
	if !strings.Contains(formats, "synthetic_data.dta") {
		t.Fatalf("list --formats missing default file name:\n%s", formats)
	}

	runCmd(t, "generate", "--rows", "30", "--numeric", "2", "--categorical", "1", "--seed", "11", "--quiet")
	show := runCmd(t, "dataset", "show")
	for _, want := range []string{"seed: 11", "rows: 30", "numeric_columns: 2", "correlation: applied"} {
		if !strings.Contains(show, want) {
			t.Fatalf("dataset show missing %q:\n%s", want, show)
		}
	}
	cols := runCmd(t, "list", "--columns")
	if !strings.Contains(cols, "- numeric_2: numeric") || !strings.Contains(cols, "- category_1: text") {
		t.Fatalf("list --columns unexpected:\n%s", cols)
	}

	runCmd(t, "dataset", "clear")
	if _, err := execCmd("dataset", "show"); !errors.Is(err, session.ErrNoDataset) {
		t.Fatalf("expected ErrNoDataset after clear, got %v", err)
	}
}
