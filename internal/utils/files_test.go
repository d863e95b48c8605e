package utils

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestSafeWriteFileCreatesParents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports", "2024", "page.md")
	if err := SafeWriteFile(path, []byte("# hello\n")); err != nil {
		t.Fatalf("write: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(b) != "# hello\n" {
		t.Fatalf("content = %q", b)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("temp file left behind: %v", err)
	}
}

func TestSafeWriteFileOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	if err := SafeWriteFile(path, []byte("one")); err != nil {
		t.Fatal(err)
	}
	if err := SafeWriteFile(path, []byte("two")); err != nil {
		t.Fatal(err)
	}
	b, _ := os.ReadFile(path)
	if string(b) != "two" {
		t.Fatalf("content = %q, want two", b)
	}
}

func TestPrettyJSON(t *testing.T) {
	b, err := PrettyJSON(map[string]int{"rows": 6})
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "{\n  \"rows\": 6\n}" {
		t.Fatalf("json = %q", b)
	}
	if _, err := PrettyJSON(math.Inf(1)); err == nil {
		t.Fatalf("expected error for +Inf")
	}
}
