package driver

import (
	"io"
	"path/filepath"
	"sort"

	"github.com/rs/zerolog"

	"github.com/lolsborn/quest-sub012/pkg/astcodec"
	"github.com/lolsborn/quest-sub012/pkg/interpreter"
	"github.com/lolsborn/quest-sub012/pkg/runtime"
	"github.com/lolsborn/quest-sub012/pkg/stdlib"
)

// Project couples a manifest with a ready-to-run interpreter whose loader
// searches the project tree and its synced dependency checkouts.
type Project struct {
	Manifest *Manifest
	Interp   *interpreter.Interpreter
	Log      zerolog.Logger
}

// OpenProject loads quest.yml, syncs git dependencies under .quest/deps, and
// wires the interpreter with the stdlib and a module loader.
func OpenProject(manifestPath string, stdout io.Writer, log zerolog.Logger) (*Project, error) {
	manifest, err := LoadManifest(manifestPath)
	if err != nil {
		return nil, err
	}

	fetcher := NewFetcher(filepath.Join(manifest.Root(), ".quest", "deps"), log)
	depDirs, err := fetcher.Sync(manifest)
	if err != nil {
		return nil, err
	}

	searchDirs := []string{manifest.Root()}
	names := make([]string, 0, len(depDirs))
	for name := range depDirs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		searchDirs = append(searchDirs, depDirs[name])
	}

	loader := &ModuleLoader{SearchDirs: searchDirs, Log: log}
	interp := interpreter.New(
		interpreter.WithLoader(loader),
		interpreter.WithStdout(stdout),
	)
	stdlib.Register(interp)
	loader.Interp = interp

	return &Project{Manifest: manifest, Interp: interp, Log: log}, nil
}

// RunEntry evaluates the manifest's entry module document and returns its
// result value.
func (p *Project) RunEntry() (runtime.Value, error) {
	entry := p.Manifest.Entry
	if !filepath.IsAbs(entry) {
		entry = filepath.Join(p.Manifest.Root(), entry)
	}
	doc, err := astcodec.DecodeFile(entry)
	if err != nil {
		return nil, err
	}
	p.Log.Debug().Str("entry", entry).Msg("running entry module")
	return p.Interp.EvaluateModule(doc)
}

// RunFile evaluates a standalone module document with the stdlib registered
// and a loader rooted at the file's directory.
func RunFile(path string, stdout io.Writer, log zerolog.Logger) (runtime.Value, error) {
	doc, err := astcodec.DecodeFile(path)
	if err != nil {
		return nil, err
	}
	loader := &ModuleLoader{SearchDirs: []string{filepath.Dir(path)}, Log: log}
	interp := interpreter.New(
		interpreter.WithLoader(loader),
		interpreter.WithStdout(stdout),
	)
	stdlib.Register(interp)
	loader.Interp = interp
	return interp.EvaluateModule(doc)
}
