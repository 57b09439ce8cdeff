package driver

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ManifestFileName is the project manifest a Graphite workspace carries
// at its root.
const ManifestFileName = "graphite.yml"

// Manifest represents the parsed contents of graphite.yml.
type Manifest struct {
	Path         string
	Name         string
	Version      string
	License      string
	Authors      []string
	Settings     Settings
	Targets      map[string]*TargetSpec
	TargetOrder  []string
	Dependencies map[string]*DependencySpec

	targetEntries []manifestTargetEntry
}

// Settings carries the interpreter configuration a project pins in its
// manifest: numeric representation modes and the collect error mode.
type Settings struct {
	Precision     string `yaml:"precision"`
	Integer       bool   `yaml:"integer"`
	Unsigned      bool   `yaml:"unsigned"`
	CollectErrors bool   `yaml:"collect_errors"`
}

// TargetSpec describes a runnable target from the manifest. Main names
// the serialized program file relative to the manifest.
type TargetSpec struct {
	Name         string
	OriginalName string
	Type         TargetType
	Main         string
}

type manifestTargetEntry struct {
	sanitized string
	spec      *TargetSpec
}

// TargetType enumerates supported target kinds.
type TargetType string

const (
	TargetTypeProgram TargetType = "program"
	TargetTypeLibrary TargetType = "library"
)

// DependencySpec describes one dependency descriptor: a git source with
// an optional pin, or a local path override.
type DependencySpec struct {
	Git    string `yaml:"git"`
	Rev    string `yaml:"rev"`
	Tag    string `yaml:"tag"`
	Branch string `yaml:"branch"`
	Path   string `yaml:"path"`
}

// ValidationError aggregates manifest validation failures.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "manifest: invalid configuration"
	}
	var b strings.Builder
	b.WriteString("manifest validation failed:")
	for _, issue := range e.Issues {
		b.WriteString("\n- ")
		b.WriteString(issue)
	}
	return b.String()
}

// LoadManifest parses graphite.yml from disk, returning a validated
// manifest.
func LoadManifest(path string) (*Manifest, error) {
	if path == "" {
		return nil, fmt.Errorf("manifest: empty path")
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("manifest: resolve %s: %w", path, err)
	}
	file, err := os.Open(absPath)
	if err != nil {
		return nil, fmt.Errorf("manifest: open %s: %w", absPath, err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)

	var raw manifestFile
	if err := decoder.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("manifest: %s is empty", absPath)
		}
		return nil, fmt.Errorf("manifest: parse %s: %w", absPath, err)
	}

	manifest := raw.toManifest(absPath)
	if err := manifest.validate(); err != nil {
		return nil, err
	}
	return manifest, nil
}

func (m *Manifest) validate() error {
	var errs ValidationError
	if m.Name == "" {
		errs.Issues = append(errs.Issues, "name must be provided")
	}
	for i, author := range m.Authors {
		if author == "" {
			errs.Issues = append(errs.Issues, fmt.Sprintf("authors[%d] must be a non-empty string", i))
		}
	}
	switch m.Settings.Precision {
	case "", "float64", "float128", "big":
	default:
		errs.Issues = append(errs.Issues, fmt.Sprintf("settings.precision %q is not one of float64, float128, big", m.Settings.Precision))
	}

	targetNames := make(map[string]string, len(m.targetEntries))
	for _, entry := range m.targetEntries {
		target := entry.spec
		if target == nil {
			continue
		}
		key := entry.sanitized
		if target.OriginalName == "" {
			errs.Issues = append(errs.Issues, "targets must not use empty keys")
			continue
		}
		if other, exists := targetNames[key]; exists {
			errs.Issues = append(errs.Issues, fmt.Sprintf("targets %q and %q collide after sanitization", other, target.OriginalName))
		} else {
			targetNames[key] = target.OriginalName
		}
		if target.Type == "" {
			errs.Issues = append(errs.Issues, fmt.Sprintf("target %q missing type", target.OriginalName))
		} else if !target.Type.IsValid() {
			errs.Issues = append(errs.Issues, fmt.Sprintf("target %q has unsupported type %q", target.OriginalName, target.Type))
		}
		if target.Type == TargetTypeProgram && target.Main == "" {
			errs.Issues = append(errs.Issues, fmt.Sprintf("target %q requires a main entrypoint", target.OriginalName))
		}
	}

	for depName, dep := range m.Dependencies {
		if dep == nil {
			continue
		}
		for _, issue := range dep.validate() {
			errs.Issues = append(errs.Issues, fmt.Sprintf("dependencies.%s: %s", depName, issue))
		}
	}

	if len(errs.Issues) > 0 {
		return &errs
	}
	return nil
}

// IsValid reports whether the target type is recognised.
func (t TargetType) IsValid() bool {
	switch t {
	case TargetTypeProgram, TargetTypeLibrary:
		return true
	default:
		return false
	}
}

var ErrNoProgramTarget = errors.New("manifest: no program targets defined")

// DefaultProgramTarget returns the first program target in manifest
// order.
func (m *Manifest) DefaultProgramTarget() (*TargetSpec, error) {
	if m == nil {
		return nil, ErrNoProgramTarget
	}
	for _, entry := range m.targetEntries {
		if entry.spec != nil && entry.spec.Type == TargetTypeProgram {
			return entry.spec, nil
		}
	}
	return nil, ErrNoProgramTarget
}

// FindTarget looks up a target by sanitized or original name.
func (m *Manifest) FindTarget(name string) (*TargetSpec, bool) {
	if m == nil {
		return nil, false
	}
	key := sanitizeSegment(strings.TrimSpace(name))
	if key != "" {
		if target, ok := m.Targets[key]; ok && target != nil {
			return target, true
		}
	}
	for _, entry := range m.targetEntries {
		if entry.spec == nil {
			continue
		}
		if strings.EqualFold(entry.spec.OriginalName, strings.TrimSpace(name)) {
			return entry.spec, true
		}
	}
	return nil, false
}

func (d *DependencySpec) validate() []string {
	var errs []string
	if d == nil {
		return errs
	}
	if d.Path != "" && d.Git != "" {
		errs = append(errs, "path overrides cannot also specify a git source")
	}
	if d.Git == "" && d.Path == "" {
		errs = append(errs, "must specify git or path")
	}
	pins := 0
	for _, pin := range []string{d.Rev, d.Tag, d.Branch} {
		if pin != "" {
			pins++
		}
	}
	if pins > 1 {
		errs = append(errs, "at most one of rev, tag, branch may be set")
	}
	if pins > 0 && d.Git == "" {
		errs = append(errs, "rev, tag, and branch apply only to git sources")
	}
	return errs
}

type manifestFile struct {
	Name         string        `yaml:"name"`
	Version      string        `yaml:"version"`
	License      string        `yaml:"license"`
	Authors      stringList    `yaml:"authors"`
	Settings     Settings      `yaml:"settings"`
	Targets      targetMap     `yaml:"targets"`
	Dependencies dependencyMap `yaml:"dependencies"`
}

type targetYAML struct {
	Type TargetType `yaml:"type"`
	Main string     `yaml:"main"`
}

type targetMap struct {
	items []targetMapEntry
}

type targetMapEntry struct {
	name string
	spec *targetYAML
}

func (tm *targetMap) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == 0 {
		tm.items = nil
		return nil
	}
	if value.Kind == yaml.ScalarNode && value.Tag == "!!null" {
		tm.items = nil
		return nil
	}
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("manifest: targets must be a mapping")
	}
	items := make([]targetMapEntry, 0, len(value.Content)/2)
	for i := 0; i < len(value.Content); i += 2 {
		keyNode := value.Content[i]
		valueNode := value.Content[i+1]

		var key string
		if err := keyNode.Decode(&key); err != nil {
			return err
		}
		key = strings.TrimSpace(key)
		if key == "" {
			return fmt.Errorf("manifest: targets must not use empty keys")
		}
		entry := new(targetYAML)
		if err := valueNode.Decode(entry); err != nil {
			return fmt.Errorf("manifest: target %q: %w", key, err)
		}
		items = append(items, targetMapEntry{name: key, spec: entry})
	}
	tm.items = items
	return nil
}

type dependencyMap map[string]*DependencySpec

type stringList []string

func (mf manifestFile) toManifest(path string) *Manifest {
	targetCapacity := len(mf.Targets.items)
	result := &Manifest{
		Path:          path,
		Name:          sanitizeSegment(strings.TrimSpace(mf.Name)),
		Version:       strings.TrimSpace(mf.Version),
		License:       strings.TrimSpace(mf.License),
		Authors:       mf.Authors.Clone(),
		Settings:      mf.Settings,
		Targets:       make(map[string]*TargetSpec, targetCapacity),
		TargetOrder:   make([]string, 0, targetCapacity),
		Dependencies:  cloneDependencyMap(mf.Dependencies),
		targetEntries: make([]manifestTargetEntry, 0, targetCapacity),
	}
	result.Settings.Precision = strings.TrimSpace(result.Settings.Precision)

	seenTargets := make(map[string]struct{}, targetCapacity)
	for _, item := range mf.Targets.items {
		target := item.spec
		if target == nil {
			continue
		}
		original := strings.TrimSpace(item.name)
		if original == "" {
			continue
		}
		sanitized := sanitizeSegment(original)
		spec := &TargetSpec{
			Name:         sanitized,
			OriginalName: original,
			Type:         target.Type,
			Main:         strings.TrimSpace(target.Main),
		}
		if _, exists := result.Targets[sanitized]; !exists {
			result.Targets[sanitized] = spec
		}
		if _, exists := seenTargets[sanitized]; !exists {
			result.TargetOrder = append(result.TargetOrder, sanitized)
			seenTargets[sanitized] = struct{}{}
		}
		result.targetEntries = append(result.targetEntries, manifestTargetEntry{
			sanitized: sanitized,
			spec:      spec,
		})
	}
	return result
}

func cloneDependencyMap(src dependencyMap) map[string]*DependencySpec {
	out := make(map[string]*DependencySpec, len(src))
	for name, dep := range src {
		if dep == nil {
			continue
		}
		copied := *dep
		copied.Git = strings.TrimSpace(copied.Git)
		copied.Rev = strings.TrimSpace(copied.Rev)
		copied.Tag = strings.TrimSpace(copied.Tag)
		copied.Branch = strings.TrimSpace(copied.Branch)
		copied.Path = strings.TrimSpace(copied.Path)
		out[name] = &copied
	}
	return out
}

func sanitizeSegment(seg string) string {
	seg = strings.TrimSpace(seg)
	seg = strings.ReplaceAll(seg, "-", "_")
	return seg
}

func (l stringList) Clone() []string {
	if len(l) == 0 {
		return nil
	}
	out := make([]string, 0, len(l))
	for _, item := range l {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}

func (l *stringList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		if value.Tag == "!!null" || strings.TrimSpace(value.Value) == "" {
			*l = nil
			return nil
		}
		*l = stringList{strings.TrimSpace(value.Value)}
		return nil
	case yaml.SequenceNode:
		items := make([]string, 0, len(value.Content))
		for _, node := range value.Content {
			var str string
			if err := node.Decode(&str); err != nil {
				return err
			}
			str = strings.TrimSpace(str)
			if str == "" {
				continue
			}
			items = append(items, str)
		}
		*l = stringList(items)
		return nil
	case yaml.AliasNode:
		return l.UnmarshalYAML(value.Alias)
	case 0:
		*l = nil
		return nil
	default:
		return fmt.Errorf("manifest: expected string or sequence for list but found %s", value.ShortTag())
	}
}

func (dm *dependencyMap) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == 0 {
		*dm = make(dependencyMap)
		return nil
	}
	if value.Kind == yaml.ScalarNode && value.Tag == "!!null" {
		*dm = make(dependencyMap)
		return nil
	}
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("manifest: dependencies must be a mapping")
	}
	result := make(dependencyMap, len(value.Content)/2)
	for i := 0; i < len(value.Content); i += 2 {
		keyNode := value.Content[i]
		valNode := value.Content[i+1]

		var key string
		if err := keyNode.Decode(&key); err != nil {
			return err
		}
		key = strings.TrimSpace(key)
		if key == "" {
			return fmt.Errorf("manifest: dependency names must be non-empty")
		}
		var dep DependencySpec
		if err := valNode.Decode(&dep); err != nil {
			return fmt.Errorf("manifest: dependency %q: %w", key, err)
		}
		result[key] = &dep
	}
	*dm = result
	return nil
}
