package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"graphite/interpreter-go/pkg/driver"
	"graphite/interpreter-go/pkg/interpreter"
)

func runEntry(args []string) int {
	if len(args) > 1 {
		fmt.Fprintf(os.Stderr, "unexpected arguments: %s\n", strings.Join(args[1:], " "))
		return 1
	}

	var manifest *driver.Manifest
	if m, err := loadManifestFrom("."); err == nil {
		manifest = m
	} else if !errors.Is(err, errManifestNotFound) {
		if len(args) == 1 && looksLikePathCandidate(args[0]) {
			fmt.Fprintf(os.Stderr, "warning: unable to load manifest (%v); falling back to direct file execution\n", err)
		} else {
			fmt.Fprintf(os.Stderr, "failed to load manifest: %v\n", err)
			return 1
		}
	}

	if len(args) == 0 {
		if manifest == nil {
			fmt.Fprintln(os.Stderr, "graphite run requires a manifest target or program file (graphite.yml not found)")
			return 1
		}
		target, err := manifest.DefaultProgramTarget()
		if err != nil {
			fmt.Fprintf(os.Stderr, "manifest error: %v\n", err)
			return 1
		}
		entryPath, err := resolveTargetMain(manifest, target)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to resolve target entrypoint: %v\n", err)
			return 1
		}
		return executeEntry(entryPath, manifest)
	}

	candidate := args[0]
	if manifest != nil {
		if target, ok := manifest.FindTarget(candidate); ok {
			entryPath, err := resolveTargetMain(manifest, target)
			if err != nil {
				fmt.Fprintf(os.Stderr, "failed to resolve target %q: %v\n", target.OriginalName, err)
				return 1
			}
			return executeEntry(entryPath, manifest)
		}
	}

	// Not a target name; treat the argument as a program file path. A
	// manifest next to the file, if any, still supplies settings.
	activeManifest := manifest
	if absCandidate, err := filepath.Abs(candidate); err == nil {
		if m, loadErr := loadManifestFrom(filepath.Dir(absCandidate)); loadErr == nil {
			activeManifest = m
		} else if !errors.Is(loadErr, errManifestNotFound) {
			fmt.Fprintf(os.Stderr, "failed to read manifest for %s: %v\n", candidate, loadErr)
			return 1
		}
	}
	return executeEntry(candidate, activeManifest)
}

func executeEntry(entry string, manifest *driver.Manifest) int {
	entry = strings.TrimSpace(entry)
	if entry == "" {
		fmt.Fprintln(os.Stderr, "graphite run requires a program file")
		return 1
	}
	entryAbs, err := filepath.Abs(entry)
	if err != nil {
		fmt.Fprintf(os.Stderr, "resolve entry path: %v\n", err)
		return 1
	}

	interp := interpreter.NewWithConfig(settingsConfig(manifest))
	if _, err := interp.ExecuteFile(entryAbs); err != nil {
		fmt.Fprintln(os.Stderr, interpreter.DescribeError(err))
		return 1
	}
	for _, diag := range interp.Diagnostics() {
		fmt.Fprintln(os.Stderr, diag.String())
	}
	return 0
}

// settingsConfig maps the manifest settings block onto an interpreter
// configuration.
func settingsConfig(manifest *driver.Manifest) interpreter.Config {
	cfg := interpreter.DefaultConfig()
	if manifest == nil {
		return cfg
	}
	if manifest.Settings.Precision != "" {
		cfg.Precision = manifest.Settings.Precision
	}
	cfg.IntegerMode = manifest.Settings.Integer
	cfg.UnsignedMode = manifest.Settings.Unsigned
	cfg.CollectErrors = manifest.Settings.CollectErrors
	return cfg
}

func loadManifestFrom(start string) (*driver.Manifest, error) {
	if start == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("resolve working directory: %w", err)
		}
		start = cwd
	}
	absStart, err := filepath.Abs(start)
	if err != nil {
		return nil, fmt.Errorf("resolve manifest search path %q: %w", start, err)
	}
	if info, statErr := os.Stat(absStart); statErr == nil && !info.IsDir() {
		absStart = filepath.Dir(absStart)
	}
	manifestPath, err := findManifest(absStart)
	if err != nil {
		return nil, err
	}
	return driver.LoadManifest(manifestPath)
}

func findManifest(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolve start directory %q: %w", start, err)
	}
	if info, statErr := os.Stat(dir); statErr == nil && !info.IsDir() {
		dir = filepath.Dir(dir)
	}
	origin := dir
	for {
		candidate := filepath.Join(dir, driver.ManifestFileName)
		info, err := os.Stat(candidate)
		if err == nil && !info.IsDir() {
			return candidate, nil
		}
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return "", err
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("no %s found from %s upwards: %w", driver.ManifestFileName, origin, errManifestNotFound)
		}
		dir = parent
	}
}

func resolveTargetMain(manifest *driver.Manifest, target *driver.TargetSpec) (string, error) {
	if manifest == nil || target == nil {
		return "", fmt.Errorf("missing manifest or target")
	}
	mainPath := strings.TrimSpace(target.Main)
	if mainPath == "" {
		return "", fmt.Errorf("target %q missing main entrypoint", target.OriginalName)
	}
	if filepath.IsAbs(mainPath) {
		return filepath.Clean(mainPath), nil
	}
	base := filepath.Dir(manifest.Path)
	if base == "" {
		return filepath.Clean(filepath.FromSlash(mainPath)), nil
	}
	return filepath.Join(base, filepath.FromSlash(mainPath)), nil
}

func looksLikePathCandidate(arg string) bool {
	if arg == "" {
		return false
	}
	if strings.Contains(arg, "/") || strings.Contains(arg, "\\") {
		return true
	}
	if strings.HasSuffix(arg, interpreter.ProgramExt) || strings.HasSuffix(arg, ".json") {
		return true
	}
	return strings.HasPrefix(arg, ".")
}
