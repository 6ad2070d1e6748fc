package driver

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeManifest(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "quest.yml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadManifest(t *testing.T) {
	path := writeManifest(t, `
name: demo
version: 0.2.0
entry: main.json
dependencies:
  strutil: https://example.com/strutil.git
  mathlib:
    git: https://example.com/mathlib.git
    tag: v1.4.0
  local:
    path: ../local
`)
	manifest, err := LoadManifest(path)
	require.NoError(t, err)

	require.Equal(t, "demo", manifest.Name)
	require.Equal(t, "0.2.0", manifest.Version)
	require.Equal(t, "main.json", manifest.Entry)
	require.Equal(t, filepath.Dir(path), manifest.Root())

	require.Len(t, manifest.Dependencies, 3)
	require.Equal(t, &DependencySpec{Git: "https://example.com/strutil.git"}, manifest.Dependencies["strutil"])
	require.Equal(t, &DependencySpec{Git: "https://example.com/mathlib.git", Tag: "v1.4.0"}, manifest.Dependencies["mathlib"])
	require.Equal(t, &DependencySpec{Path: "../local"}, manifest.Dependencies["local"])
}

func TestLoadManifestCollectsValidationErrors(t *testing.T) {
	path := writeManifest(t, `
version: 1.0.0
dependencies:
  broken: {}
  conflicted:
    git: https://example.com/x.git
    path: ../x
  overpinned:
    git: https://example.com/y.git
    tag: v1
    branch: main
  pinnedpath:
    path: ../z
    rev: abc123
`)
	_, err := LoadManifest(path)
	require.Error(t, err)

	msg := err.Error()
	require.Contains(t, msg, "name must be provided")
	require.Contains(t, msg, "entry must point at a module document")
	require.Contains(t, msg, `dependency "broken" must specify git or path`)
	require.Contains(t, msg, `dependency "conflicted" cannot specify both git and path`)
	require.Contains(t, msg, `dependency "overpinned" may pin at most one of tag, branch, rev`)
	require.Contains(t, msg, `dependency "pinnedpath" path overrides cannot be pinned`)
}

func TestLoadManifestRejectsUnknownFields(t *testing.T) {
	path := writeManifest(t, `
name: demo
entry: main.json
flavor: spicy
`)
	_, err := LoadManifest(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "flavor")
}

func TestLoadManifestEmptyFile(t *testing.T) {
	path := writeManifest(t, "")
	_, err := LoadManifest(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "is empty")
}

func TestLoadManifestMissingFile(t *testing.T) {
	_, err := LoadManifest(filepath.Join(t.TempDir(), "quest.yml"))
	require.Error(t, err)
}
