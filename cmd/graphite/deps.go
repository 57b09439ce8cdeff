package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"graphite/interpreter-go/pkg/driver"
)

func runDeps(args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "graphite deps requires a subcommand (install, update)")
		return 1
	}
	switch args[0] {
	case "install":
		if len(args) > 1 {
			fmt.Fprintf(os.Stderr, "graphite deps install does not take arguments (received %s)\n", strings.Join(args[1:], " "))
			return 1
		}
		return runDepsInstall(nil)
	case "update":
		return runDepsInstall(args[1:])
	default:
		fmt.Fprintf(os.Stderr, "unknown deps subcommand %q\n", args[0])
		return 1
	}
}

// runDepsInstall resolves manifest dependencies into the cache and pins
// them in graphite.lock. When refresh names are given, those entries are
// dropped from the lockfile first so they re-resolve.
func runDepsInstall(refresh []string) int {
	cwd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to determine working directory: %v\n", err)
		return 1
	}
	manifestPath, err := findManifest(cwd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "unable to locate %s: %v\n", driver.ManifestFileName, err)
		return 1
	}
	manifest, err := driver.LoadManifest(manifestPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to read manifest: %v\n", err)
		return 1
	}
	cacheDir, err := resolveGraphiteHome()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to resolve GRAPHITE_HOME: %v\n", err)
		return 1
	}

	fmt.Fprintf(os.Stdout, "Manifest: %s\n", manifest.Path)
	fmt.Fprintf(os.Stdout, "Root package: %s\n", manifest.Name)
	fmt.Fprintf(os.Stdout, "Dependencies: %d\n", len(manifest.Dependencies))
	fmt.Fprintf(os.Stdout, "Cache directory: %s\n", cacheDir)

	lockPath := filepath.Join(filepath.Dir(manifest.Path), driver.LockFileName)
	lock, err := driver.LoadLockfile(lockPath)
	lockCreated := false
	switch {
	case err == nil:
		if lock.Root != manifest.Name {
			fmt.Fprintf(os.Stderr, "lockfile root %q does not match manifest name %q\n", lock.Root, manifest.Name)
			return 1
		}
	case errors.Is(err, os.ErrNotExist):
		lock = driver.NewLockfile(manifest.Name, cliToolVersion)
		lock.Path = lockPath
		lockCreated = true
	default:
		fmt.Fprintf(os.Stderr, "failed to read lockfile: %v\n", err)
		return 1
	}
	lock.Path = lockPath
	lock.Tool = cliToolVersion

	if len(refresh) > 0 {
		if code := dropLockedEntries(manifest, lock, refresh); code != 0 {
			return code
		}
	}

	installer := newDependencyInstaller(manifest, cacheDir)
	changed, logs, err := installer.Install(lock)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to resolve dependencies: %v\n", err)
		return 1
	}
	for _, line := range logs {
		fmt.Fprintln(os.Stdout, line)
	}

	if changed || lockCreated {
		action := "Updated"
		if lockCreated {
			action = "Created"
		}
		if err := driver.WriteLockfile(lock, lockPath); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write lockfile: %v\n", err)
			return 1
		}
		fmt.Fprintf(os.Stdout, "%s %s: %s\n", action, driver.LockFileName, lock.Path)
	} else {
		fmt.Fprintf(os.Stdout, "%s already up to date: %s\n", driver.LockFileName, lock.Path)
	}

	fmt.Fprintln(os.Stdout, "Dependencies installed.")
	return 0
}

func dropLockedEntries(manifest *driver.Manifest, lock *driver.Lockfile, names []string) int {
	declared := make(map[string]struct{}, len(manifest.Dependencies))
	for name := range manifest.Dependencies {
		declared[sanitizeName(name)] = struct{}{}
	}
	drop := make(map[string]struct{}, len(names))
	for _, name := range names {
		key := sanitizeName(name)
		if _, ok := declared[key]; !ok {
			fmt.Fprintf(os.Stderr, "dependency %q not declared in manifest\n", name)
			return 1
		}
		drop[key] = struct{}{}
	}
	filtered := lock.Packages[:0]
	for _, pkg := range lock.Packages {
		if pkg == nil {
			continue
		}
		if _, ok := drop[sanitizeName(pkg.Name)]; ok {
			continue
		}
		filtered = append(filtered, pkg)
	}
	lock.Packages = filtered
	return 0
}

type dependencyInstaller struct {
	manifest *driver.Manifest
	git      *gitFetcher
}

func newDependencyInstaller(manifest *driver.Manifest, cacheDir string) *dependencyInstaller {
	return &dependencyInstaller{
		manifest: manifest,
		git:      newGitFetcher(cacheDir),
	}
}

// Install brings every manifest dependency into the cache, reusing
// lockfile pins where they still satisfy the spec. It reports whether the
// lockfile changed plus per-dependency log lines.
func (d *dependencyInstaller) Install(lock *driver.Lockfile) (bool, []string, error) {
	names := make([]string, 0, len(d.manifest.Dependencies))
	for name := range d.manifest.Dependencies {
		names = append(names, name)
	}
	sort.Strings(names)

	changed := false
	var logs []string
	for _, name := range names {
		spec := d.manifest.Dependencies[name]
		if spec == nil {
			continue
		}
		var resolved *driver.LockedPackage
		var err error
		switch {
		case spec.Path != "":
			resolved, err = resolvePathDependency(d.manifest, name, spec)
		case spec.Git != "":
			resolved, err = d.git.Fetch(name, spec, lock)
		default:
			err = fmt.Errorf("dependency %q: no source specified", name)
		}
		if err != nil {
			return changed, logs, err
		}
		if lock.Upsert(resolved) {
			changed = true
		}
		logs = append(logs, fmt.Sprintf("  %s %s (%s)", resolved.Name, resolved.Version, resolved.Source))
	}
	return changed, logs, nil
}

// resolvePathDependency validates a local path override relative to the
// manifest and pins it without copying.
func resolvePathDependency(manifest *driver.Manifest, name string, spec *driver.DependencySpec) (*driver.LockedPackage, error) {
	dir := spec.Path
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(filepath.Dir(manifest.Path), filepath.FromSlash(dir))
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("dependency %q: path %s: %w", name, dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("dependency %q: path %s is not a directory", name, dir)
	}
	checksum, err := dirChecksum(dir)
	if err != nil {
		return nil, fmt.Errorf("dependency %q: checksum %s: %w", name, dir, err)
	}
	return &driver.LockedPackage{
		Name:     sanitizeName(name),
		Version:  "local",
		Source:   "path+" + dir,
		Checksum: checksum,
	}, nil
}

func sanitizeName(name string) string {
	name = strings.TrimSpace(name)
	return strings.ReplaceAll(name, "-", "_")
}

func resolveGraphiteHome() (string, error) {
	if home := strings.TrimSpace(os.Getenv("GRAPHITE_HOME")); home != "" {
		abs, err := filepath.Abs(home)
		if err != nil {
			return "", fmt.Errorf("resolve GRAPHITE_HOME %q: %w", home, err)
		}
		return abs, nil
	}
	userHome, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve user home: %w", err)
	}
	return filepath.Join(userHome, ".graphite"), nil
}
