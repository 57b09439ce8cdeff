package driver

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ManifestFileName)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	return path
}

func TestLoadManifestFullDocument(t *testing.T) {
	path := writeManifest(t, `
name: route-planner
version: 1.2.0
license: MIT
authors:
  - Dev One
  - Dev Two
settings:
  precision: big
  integer: true
  collect_errors: true
targets:
  planner-cli:
    type: program
    main: programs/main.grf.json
  shared:
    type: library
dependencies:
  graphlib:
    git: https://example.com/graphlib.git
    tag: v2.1.0
  local-utils:
    path: ../utils
`)
	manifest, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if manifest.Name != "route_planner" {
		t.Fatalf("expected sanitized name, got %q", manifest.Name)
	}
	if manifest.Version != "1.2.0" || manifest.License != "MIT" {
		t.Fatalf("unexpected metadata: %#v", manifest)
	}
	if len(manifest.Authors) != 2 {
		t.Fatalf("expected two authors, got %v", manifest.Authors)
	}
	if manifest.Settings.Precision != "big" || !manifest.Settings.Integer || !manifest.Settings.CollectErrors {
		t.Fatalf("unexpected settings: %#v", manifest.Settings)
	}

	target, ok := manifest.FindTarget("planner-cli")
	if !ok {
		t.Fatalf("expected target by original name")
	}
	if target.Name != "planner_cli" || target.Main != "programs/main.grf.json" {
		t.Fatalf("unexpected target: %#v", target)
	}
	if _, ok := manifest.FindTarget("planner_cli"); !ok {
		t.Fatalf("expected target by sanitized name")
	}

	dep, ok := manifest.Dependencies["graphlib"]
	if !ok || dep.Git == "" || dep.Tag != "v2.1.0" {
		t.Fatalf("unexpected dependency: %#v", dep)
	}
	if local, ok := manifest.Dependencies["local-utils"]; !ok || local.Path != "../utils" {
		t.Fatalf("unexpected path dependency: %#v", local)
	}
}

func TestDefaultProgramTargetFollowsManifestOrder(t *testing.T) {
	path := writeManifest(t, `
name: demo
targets:
  lib:
    type: library
  second:
    type: program
    main: second.grf.json
  first:
    type: program
    main: first.grf.json
`)
	manifest, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	target, err := manifest.DefaultProgramTarget()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if target.Name != "second" {
		t.Fatalf("expected the first program target in order, got %q", target.Name)
	}
}

func TestDefaultProgramTargetMissing(t *testing.T) {
	path := writeManifest(t, `
name: demo
targets:
  lib:
    type: library
`)
	manifest, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := manifest.DefaultProgramTarget(); err != ErrNoProgramTarget {
		t.Fatalf("expected ErrNoProgramTarget, got %v", err)
	}
}

func TestManifestValidationErrors(t *testing.T) {
	path := writeManifest(t, `
name: ""
settings:
  precision: quantum
targets:
  cli:
    type: program
dependencies:
  broken:
    path: ../x
    git: https://example.com/x.git
    rev: abc
    tag: v1
`)
	_, err := LoadManifest(path)
	if err == nil {
		t.Fatalf("expected validation failure")
	}
	verr, ok := err.(*ValidationError)
	if !ok {
		t.Fatalf("expected ValidationError, got %T: %v", err, err)
	}
	joined := verr.Error()
	for _, want := range []string{
		"name must be provided",
		"precision",
		"requires a main entrypoint",
		"path overrides cannot also specify a git source",
		"at most one of rev, tag, branch",
	} {
		if !strings.Contains(joined, want) {
			t.Fatalf("expected issue %q in %q", want, joined)
		}
	}
}

func TestManifestRejectsUnknownFields(t *testing.T) {
	path := writeManifest(t, `
name: demo
flavour: chocolate
`)
	if _, err := LoadManifest(path); err == nil {
		t.Fatalf("expected unknown field error")
	}
}

func TestManifestEmptyFile(t *testing.T) {
	path := writeManifest(t, "")
	if _, err := LoadManifest(path); err == nil {
		t.Fatalf("expected empty manifest error")
	}
}

func TestTargetSanitizationCollision(t *testing.T) {
	path := writeManifest(t, `
name: demo
targets:
  my-app:
    type: program
    main: a.grf.json
  my_app:
    type: program
    main: b.grf.json
`)
	_, err := LoadManifest(path)
	if err == nil {
		t.Fatalf("expected collision error")
	}
	if !strings.Contains(err.Error(), "collide after sanitization") {
		t.Fatalf("expected collision issue, got %v", err)
	}
}
