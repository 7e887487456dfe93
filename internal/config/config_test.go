package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	c, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.DefaultRows != 1000 || c.DefaultNumeric != 3 || c.DefaultCategorical != 2 {
		t.Fatalf("unexpected defaults: %+v", c)
	}
	if !reflect.DeepEqual(c.DefaultFields, []string{"name", "email"}) {
		t.Fatalf("default fields = %v", c.DefaultFields)
	}
	if c.DefaultMissingRate != 0.05 || c.DefaultCorrelation != 0.7 || !c.Correlate {
		t.Fatalf("unexpected rates: %+v", c)
	}
	if want := filepath.Join(home, ".synthtab", "data"); c.DataDir != want {
		t.Fatalf("data dir = %q want %q", c.DataDir, want)
	}
}

func TestSaveThenLoadWithEnvOverride(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	c, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	c.DefaultRows = 250
	c.DefaultFields = []string{"phone", "job"}
	c.S3Endpoint = "http://127.0.0.1:9000"
	if err := Save(c, path); err != nil {
		t.Fatalf("save: %v", err)
	}
	t.Setenv("SYNTHTAB_DEFAULT_NUMERIC", "7")
	t.Setenv("SYNTHTAB_DEFAULT_FIELDS", "name, company")
	got, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.DefaultRows != 250 || got.S3Endpoint != "http://127.0.0.1:9000" {
		t.Fatalf("file values not loaded: %+v", got)
	}
	if got.DefaultNumeric != 7 {
		t.Fatalf("env override ignored: %d", got.DefaultNumeric)
	}
	if !reflect.DeepEqual(got.DefaultFields, []string{"name", "company"}) {
		t.Fatalf("env list = %v", got.DefaultFields)
	}
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("default_rows: [unterminated\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected error for malformed yaml")
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	wd, _ := os.Getwd()
	t.Cleanup(func() { _ = os.Chdir(wd) })
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(".env", []byte("SYNTHTAB_DEFAULT_ROWS=42\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("HOME", t.TempDir())
	t.Setenv("SYNTHTAB_DEFAULT_ROWS", "")
	os.Unsetenv("SYNTHTAB_DEFAULT_ROWS")
	LoadDotEnv()
	c, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if c.DefaultRows != 42 {
		t.Fatalf("dotenv value not applied: %d", c.DefaultRows)
	}
}
