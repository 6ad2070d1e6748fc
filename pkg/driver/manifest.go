// Package driver hosts the project-level machinery around the evaluator:
// the quest.yml manifest, git dependency checkouts, and the module loader
// that resolves `use` paths.
package driver

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-multierror"
	"gopkg.in/yaml.v3"
)

// Manifest is the parsed quest.yml of a project.
type Manifest struct {
	Path         string
	Name         string
	Version      string
	Entry        string
	Dependencies map[string]*DependencySpec
}

// DependencySpec describes one dependency source: a git repository pinned by
// tag, branch or rev, or a local path override.
type DependencySpec struct {
	Git    string
	Tag    string
	Branch string
	Rev    string
	Path   string
}

// LoadManifest parses and validates quest.yml.
func LoadManifest(path string) (*Manifest, error) {
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
	var errs *multierror.Error
	if m.Name == "" {
		errs = multierror.Append(errs, errors.New("manifest: name must be provided"))
	}
	if m.Entry == "" {
		errs = multierror.Append(errs, errors.New("manifest: entry must point at a module document"))
	}
	for name, dep := range m.Dependencies {
		if dep == nil {
			continue
		}
		if dep.Git == "" && dep.Path == "" {
			errs = multierror.Append(errs, fmt.Errorf("manifest: dependency %q must specify git or path", name))
			continue
		}
		if dep.Git != "" && dep.Path != "" {
			errs = multierror.Append(errs, fmt.Errorf("manifest: dependency %q cannot specify both git and path", name))
		}
		pins := 0
		for _, pin := range []string{dep.Tag, dep.Branch, dep.Rev} {
			if pin != "" {
				pins++
			}
		}
		if pins > 1 {
			errs = multierror.Append(errs, fmt.Errorf("manifest: dependency %q may pin at most one of tag, branch, rev", name))
		}
		if dep.Path != "" && pins > 0 {
			errs = multierror.Append(errs, fmt.Errorf("manifest: dependency %q path overrides cannot be pinned", name))
		}
	}
	return errs.ErrorOrNil()
}

// Root reports the project directory holding the manifest.
func (m *Manifest) Root() string {
	return filepath.Dir(m.Path)
}

type manifestFile struct {
	Name         string              `yaml:"name"`
	Version      string              `yaml:"version"`
	Entry        string              `yaml:"entry"`
	Dependencies map[string]*depYAML `yaml:"dependencies"`
}

type depYAML struct {
	spec DependencySpec
}

func (d *depYAML) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		// A bare string is a git URL tracking the default branch.
		d.spec = DependencySpec{Git: strings.TrimSpace(value.Value)}
		return nil
	case yaml.MappingNode:
		var raw struct {
			Git    string `yaml:"git"`
			Tag    string `yaml:"tag"`
			Branch string `yaml:"branch"`
			Rev    string `yaml:"rev"`
			Path   string `yaml:"path"`
		}
		if err := value.Decode(&raw); err != nil {
			return err
		}
		d.spec = DependencySpec{
			Git:    strings.TrimSpace(raw.Git),
			Tag:    strings.TrimSpace(raw.Tag),
			Branch: strings.TrimSpace(raw.Branch),
			Rev:    strings.TrimSpace(raw.Rev),
			Path:   strings.TrimSpace(raw.Path),
		}
		return nil
	case yaml.AliasNode:
		return d.UnmarshalYAML(value.Alias)
	default:
		return fmt.Errorf("expected string or mapping, found %s", value.ShortTag())
	}
}

func (mf manifestFile) toManifest(path string) *Manifest {
	deps := make(map[string]*DependencySpec, len(mf.Dependencies))
	for name, dep := range mf.Dependencies {
		name = strings.TrimSpace(name)
		if name == "" || dep == nil {
			continue
		}
		spec := dep.spec
		deps[name] = &spec
	}
	return &Manifest{
		Path:         path,
		Name:         strings.TrimSpace(mf.Name),
		Version:      strings.TrimSpace(mf.Version),
		Entry:        strings.TrimSpace(mf.Entry),
		Dependencies: deps,
	}
}
