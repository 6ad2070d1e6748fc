package driver

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/lolsborn/quest-sub012/pkg/astcodec"
	"github.com/lolsborn/quest-sub012/pkg/interpreter"
	"github.com/lolsborn/quest-sub012/pkg/runtime"
)

// ModuleLoader resolves `use` paths against the project's source tree and its
// dependency checkouts. A path like "lib/helpers" maps to
// lib/helpers.json (or .yaml) under each search directory in order.
type ModuleLoader struct {
	Interp     *interpreter.Interpreter
	SearchDirs []string
	Log        zerolog.Logger
}

var moduleExtensions = []string{".json", ".yaml", ".yml"}

// Load decodes and evaluates the first matching module document. The module
// body runs in a fresh frame under the global scope; its top-level bindings
// become the namespace members.
func (l *ModuleLoader) Load(path string) (*runtime.ModuleValue, error) {
	for _, dir := range l.SearchDirs {
		for _, ext := range moduleExtensions {
			candidate := filepath.Join(dir, filepath.FromSlash(path)+ext)
			if _, err := os.Stat(candidate); err != nil {
				continue
			}
			l.Log.Debug().Str("module", path).Str("file", candidate).Msg("loading module")
			doc, err := astcodec.DecodeFile(candidate)
			if err != nil {
				return nil, err
			}
			env := runtime.NewEnvironment(l.Interp.GlobalEnvironment())
			if _, err := l.Interp.EvaluateIn(doc, env); err != nil {
				return nil, fmt.Errorf("evaluate module %q: %w", path, err)
			}
			return &runtime.ModuleValue{Name: path, Members: env.Snapshot()}, nil
		}
	}
	return nil, fmt.Errorf("module %q not found in search path", path)
}
