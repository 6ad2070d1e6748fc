package driver

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/rs/zerolog"
)

// Fetcher materialises manifest dependencies into a checkout directory, one
// subdirectory per dependency. Path dependencies resolve in place.
type Fetcher struct {
	DepsDir string
	Log     zerolog.Logger
}

// NewFetcher builds a fetcher writing under depsDir.
func NewFetcher(depsDir string, log zerolog.Logger) *Fetcher {
	return &Fetcher{DepsDir: depsDir, Log: log}
}

// Sync ensures every dependency of the manifest has a local checkout and
// returns the directory for each, keyed by dependency name.
func (f *Fetcher) Sync(manifest *Manifest) (map[string]string, error) {
	dirs := make(map[string]string, len(manifest.Dependencies))
	for name, dep := range manifest.Dependencies {
		dir, err := f.ensure(manifest, name, dep)
		if err != nil {
			return nil, err
		}
		dirs[name] = dir
	}
	return dirs, nil
}

func (f *Fetcher) ensure(manifest *Manifest, name string, dep *DependencySpec) (string, error) {
	if dep.Path != "" {
		dir := dep.Path
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(manifest.Root(), dir)
		}
		if _, err := os.Stat(dir); err != nil {
			return "", fmt.Errorf("fetch: dependency %q path %s: %w", name, dir, err)
		}
		f.Log.Debug().Str("dependency", name).Str("dir", dir).Msg("using path dependency")
		return dir, nil
	}

	target := filepath.Join(f.DepsDir, sanitizeSegment(name))
	if _, err := os.Stat(target); err == nil {
		f.Log.Debug().Str("dependency", name).Str("dir", target).Msg("checkout already present")
		return target, nil
	}
	if err := os.MkdirAll(f.DepsDir, 0o755); err != nil {
		return "", fmt.Errorf("fetch: create deps dir: %w", err)
	}

	tmpDir, err := os.MkdirTemp(f.DepsDir, "fetch-*")
	if err != nil {
		return "", err
	}
	if err := os.RemoveAll(tmpDir); err != nil {
		return "", err
	}

	f.Log.Info().Str("dependency", name).Str("url", dep.Git).Msg("cloning dependency")
	repo, err := git.PlainClone(tmpDir, false, &git.CloneOptions{URL: dep.Git})
	if err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", fmt.Errorf("fetch: clone %s: %w", dep.Git, err)
	}

	if revision := dep.revision(); revision != "" {
		hash, err := repo.ResolveRevision(plumbing.Revision(revision))
		if err != nil {
			_ = os.RemoveAll(tmpDir)
			return "", fmt.Errorf("fetch: resolve %s of %s: %w", revision, dep.Git, err)
		}
		worktree, err := repo.Worktree()
		if err != nil {
			_ = os.RemoveAll(tmpDir)
			return "", err
		}
		if err := worktree.Checkout(&git.CheckoutOptions{Hash: *hash, Force: true}); err != nil {
			_ = os.RemoveAll(tmpDir)
			return "", fmt.Errorf("fetch: checkout %s: %w", revision, err)
		}
		f.Log.Info().Str("dependency", name).Str("commit", hash.String()).Msg("pinned checkout")
	}

	if err := os.Rename(tmpDir, target); err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", err
	}
	return target, nil
}

// revision picks the pin to check out; an unpinned dependency stays on the
// clone's default branch.
func (d *DependencySpec) revision() string {
	switch {
	case d.Rev != "":
		return d.Rev
	case d.Tag != "":
		return d.Tag
	case d.Branch != "":
		return d.Branch
	default:
		return ""
	}
}

func sanitizeSegment(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}
