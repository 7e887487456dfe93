package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestAnalyzeBatch_CollisionSuffixAndNoSamples(t *testing.T) {
	home := withHome(t)

	// Two CSV files with the same basename in different directories
	d1 := filepath.Join(home, "d1")
	d2 := filepath.Join(home, "d2")
	if err := os.MkdirAll(d1, 0o755); err != nil {
		t.Fatalf("mkdir d1: %v", err)
	}
	if err := os.MkdirAll(d2, 0o755); err != nil {
		t.Fatalf("mkdir d2: %v", err)
	}
	csv := "col1,col2\nA,1\nB,2\nC,3\n"
	if err := os.WriteFile(filepath.Join(d1, "metrics.csv"), []byte(csv), 0o644); err != nil {
		t.Fatalf("write p1: %v", err)
	}
	if err := os.WriteFile(filepath.Join(d2, "metrics.csv"), []byte(csv), 0o644); err != nil {
		t.Fatalf("write p2: %v", err)
	}

	outDir := filepath.Join(home, "summaries")
	runCmd(t, "analyze-batch", filepath.Join(home, "d*", "metrics.csv"), "--out-dir", outDir, "--sample-rows", "0", "--quiet")

	b1 := filepath.Join(outDir, "metrics.summary.md")
	b2 := filepath.Join(outDir, "metrics__2.summary.md")
	for _, p := range []string{b1, b2} {
		body, err := os.ReadFile(p)
		if err != nil {
			t.Fatalf("missing summary %s: %v", p, err)
		}
		if strings.Contains(string(body), "[HEAD]") {
			t.Fatalf("expected no sample rows in %s", p)
		}
		if !strings.Contains(string(body), "Rows: 3") {
			t.Fatalf("unexpected summary in %s:\n%s", p, body)
		}
	}
}

func TestAnalyzeBatch_NoMatches(t *testing.T) {
	home := withHome(t)
	if _, err := execCmd("analyze-batch", filepath.Join(home, "nothing*.csv")); err == nil {
		t.Fatalf("expected error when no files match")
	}
}

func TestSummaryPathSheetSuffix(t *testing.T) {
	dir := t.TempDir()
	got := summaryPath(dir, "/data/book.xlsx", "Synthetic Data")
	want := filepath.Join(dir, "book__sheet-synthetic-data.summary.md")
	if got != want {
		t.Fatalf("summaryPath = %q, want %q", got, want)
	}
}
