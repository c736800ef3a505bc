// SPDX-License-Identifier: Apache-2.0

package fsutil

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNumericEntries_StripsExtensionFromFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"02.md", "01.md", "readme.md"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	got, err := NumericEntries(dir)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"01", "02"}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestNumericEntries_SortsDirectoriesNumerically(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"10", "2", "1"} {
		if err := os.MkdirAll(filepath.Join(dir, name), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	got, err := NumericEntries(dir)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"1", "2", "10"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestResolveBookRoot_GitLayoutThenZipLayout(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "repo_name", "tit"), 0o755); err != nil {
		t.Fatal(err)
	}
	root, ok := ResolveBookRoot(dir, "tit")
	if !ok {
		t.Fatal("expected zip-layout fallback to resolve")
	}
	if filepath.Base(root) != "tit" {
		t.Fatalf("expected root ending in tit, got %s", root)
	}
}

func TestResolveFile_FallsBackOneLevel(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "nested"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "nested", "a.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, ok := ResolveFile(dir, "missing.txt"); ok {
		t.Fatal("did not expect a match for a nonexistent file")
	}
	if _, ok := ResolveFile(dir, "a.txt"); !ok {
		t.Fatal("expected nested fallback match")
	}
}

func TestFirstExisting_PicksFirstMatch(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "intro.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, ok := FirstExisting(dir, "intro.md", "intro.txt")
	if !ok || filepath.Base(got) != "intro.txt" {
		t.Fatalf("expected intro.txt to be selected, got %q ok=%v", got, ok)
	}
}
