package main

import (
	"os"
	"path/filepath"
	"testing"

	"graphite/interpreter-go/pkg/driver"
	"graphite/interpreter-go/pkg/interpreter"
)

func TestFindManifestWalksUp(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	manifestPath := filepath.Join(root, driver.ManifestFileName)
	if err := os.WriteFile(manifestPath, []byte("name: demo\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	found, err := findManifest(nested)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found != manifestPath {
		t.Fatalf("expected %s, got %s", manifestPath, found)
	}
}

func TestFindManifestMissing(t *testing.T) {
	_, err := findManifest(t.TempDir())
	if err == nil {
		t.Fatalf("expected missing manifest error")
	}
}

func TestSettingsConfigMapping(t *testing.T) {
	cfg := settingsConfig(nil)
	if cfg.Precision != interpreter.PrecisionFloat64 {
		t.Fatalf("expected default precision, got %q", cfg.Precision)
	}

	manifest := &driver.Manifest{
		Settings: driver.Settings{
			Precision:     "big",
			Integer:       true,
			Unsigned:      true,
			CollectErrors: true,
		},
	}
	cfg = settingsConfig(manifest)
	if cfg.Precision != interpreter.PrecisionBig || !cfg.IntegerMode || !cfg.UnsignedMode || !cfg.CollectErrors {
		t.Fatalf("unexpected config: %#v", cfg)
	}
}

func TestResolveTargetMainRelativeToManifest(t *testing.T) {
	manifest := &driver.Manifest{Path: filepath.Join("/work", "proj", driver.ManifestFileName)}
	target := &driver.TargetSpec{Name: "cli", OriginalName: "cli", Type: driver.TargetTypeProgram, Main: "programs/main.grf.json"}

	resolved, err := resolveTargetMain(manifest, target)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := filepath.Join("/work", "proj", "programs", "main.grf.json")
	if resolved != want {
		t.Fatalf("expected %s, got %s", want, resolved)
	}
}

func TestLooksLikePathCandidate(t *testing.T) {
	cases := []struct {
		arg  string
		want bool
	}{
		{"programs/main", true},
		{"main.grf.json", true},
		{"./main", true},
		{"main", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := looksLikePathCandidate(tc.arg); got != tc.want {
			t.Fatalf("looksLikePathCandidate(%q) = %v, want %v", tc.arg, got, tc.want)
		}
	}
}
