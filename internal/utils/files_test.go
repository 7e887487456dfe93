package utils_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/KaramelBytes/synthtab-cli/internal/utils"
)

func TestSafeWriteFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "out.json")
	if err := utils.SafeWriteFile(p, []byte(`{"a":1}`)); err != nil {
		t.Fatalf("write: %v", err)
	}
	b, err := os.ReadFile(p)
	if err != nil || string(b) != `{"a":1}` {
		t.Fatalf("read back %q, %v", b, err)
	}
	if _, err := os.Stat(p + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("temp file should be gone")
	}
}

func TestExpandHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	got, err := utils.ExpandHome("~/data/x.csv")
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(home, "data", "x.csv"); got != want {
		t.Fatalf("got %q want %q", got, want)
	}
	if got, _ := utils.ExpandHome("rel/path"); got != "rel/path" {
		t.Fatalf("relative path changed: %q", got)
	}
}

func TestHumanBytes(t *testing.T) {
	cases := map[int64]string{0: "0 B", 1023: "1023 B", 1024: "1.0 KiB", 1536: "1.5 KiB", 5 << 20: "5.0 MiB"}
	for in, want := range cases {
		if got := utils.HumanBytes(in); got != want {
			t.Errorf("HumanBytes(%d) = %q, want %q", in, got, want)
		}
	}
}
