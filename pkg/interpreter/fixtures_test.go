package interpreter

import (
	"os"
	"path/filepath"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/lolsborn/quest-sub012/pkg/astcodec"
	"github.com/lolsborn/quest-sub012/pkg/runtime"
)

// fixture is an end-to-end program: a module document plus the display form
// of the value it evaluates to.
type fixture struct {
	Expect string         `yaml:"expect"`
	Module map[string]any `yaml:"module"`
}

func TestProgramFixtures(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("testdata", "*.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) == 0 {
		t.Fatal("no fixtures found under testdata")
	}

	for _, path := range paths {
		path := path
		t.Run(filepath.Base(path), func(t *testing.T) {
			raw, err := os.ReadFile(path)
			if err != nil {
				t.Fatal(err)
			}
			var f fixture
			if err := yaml.Unmarshal(raw, &f); err != nil {
				t.Fatalf("parse fixture: %v", err)
			}

			doc, err := yaml.Marshal(f.Module)
			if err != nil {
				t.Fatal(err)
			}
			mod, err := astcodec.DecodeYAML(doc)
			if err != nil {
				t.Fatalf("decode module: %v", err)
			}

			val, err := New().EvaluateModule(mod)
			if err != nil {
				t.Fatalf("evaluate: %v", err)
			}
			if got := runtime.ToDisplayString(val); got != f.Expect {
				t.Fatalf("expected %q, got %q", f.Expect, got)
			}
		})
	}
}
