package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/rs/zerolog"

	"github.com/lolsborn/quest-sub012/pkg/driver"
	"github.com/lolsborn/quest-sub012/pkg/interpreter"
	"github.com/lolsborn/quest-sub012/pkg/runtime"
)

const cliToolVersion = "quest-cli 0.1.0-dev"

var errManifestNotFound = errors.New("quest.yml not found")

var (
	errColor   = color.New(color.FgRed, color.Bold)
	traceColor = color.New(color.FgYellow)
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	verbose := false
	filtered := make([]string, 0, len(args))
	for _, arg := range args {
		if arg == "-v" || arg == "--verbose" {
			verbose = true
			continue
		}
		filtered = append(filtered, arg)
	}
	args = filtered

	if len(args) == 0 {
		printUsage()
		return 1
	}

	switch args[0] {
	case "--help", "-h":
		printUsage()
		return 0
	case "--version", "-V", "version":
		fmt.Fprintln(os.Stdout, cliToolVersion)
		return 0
	case "run":
		return runEntry(args[1:], verbose)
	default:
		return runEntry(args, verbose)
	}
}

func runEntry(args []string, verbose bool) int {
	log := newLogger(verbose)

	if len(args) > 1 {
		fmt.Fprintf(os.Stderr, "unexpected arguments: %s\n", strings.Join(args[1:], " "))
		return 1
	}

	// A module document argument runs standalone; otherwise resolve the
	// project manifest from the argument directory (or the cwd).
	if len(args) == 1 && isModuleDocument(args[0]) {
		result, err := driver.RunFile(args[0], os.Stdout, log)
		return report(result, err)
	}

	start := "."
	if len(args) == 1 {
		start = args[0]
	}
	manifestPath, err := findManifest(start)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to locate manifest: %v\n", err)
		return 1
	}

	project, err := driver.OpenProject(manifestPath, os.Stdout, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open project: %v\n", err)
		return 1
	}
	result, err := project.RunEntry()
	return report(result, err)
}

// report prints an unhandled exception with its stack, or the script's final
// value when it is not nil.
func report(result runtime.Value, err error) int {
	if err != nil {
		var unhandled *interpreter.UnhandledException
		if errors.As(err, &unhandled) {
			errColor.Fprintf(os.Stderr, "%s: %s\n", unhandled.Exc.ExcType, unhandled.Exc.Message)
			for idx := len(unhandled.Exc.Stack) - 1; idx >= 0; idx-- {
				traceColor.Fprintf(os.Stderr, "  in %s\n", unhandled.Exc.Stack[idx])
			}
			for cause := unhandled.Exc.Cause; cause != nil; cause = cause.Cause {
				errColor.Fprintf(os.Stderr, "caused by %s: %s\n", cause.ExcType, cause.Message)
			}
			return 1
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	if _, isNil := result.(runtime.NilValue); !isNil && result != nil {
		fmt.Fprintln(os.Stdout, runtime.ToDisplayString(result))
	}
	return 0
}

func newLogger(verbose bool) zerolog.Logger {
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	writer := zerolog.ConsoleWriter{Out: os.Stderr}
	return zerolog.New(writer).Level(level).With().Timestamp().Logger()
}

func isModuleDocument(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		info, err := os.Stat(path)
		return err == nil && !info.IsDir()
	default:
		return false
	}
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
		candidate := filepath.Join(dir, "quest.yml")
		info, err := os.Stat(candidate)
		if err == nil && !info.IsDir() {
			return candidate, nil
		}
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return "", err
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("no quest.yml found from %s upwards: %w", origin, errManifestNotFound)
		}
		dir = parent
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "usage:")
	fmt.Fprintln(os.Stderr, "  quest run <module.json|module.yaml>")
	fmt.Fprintln(os.Stderr, "  quest run [project-dir]")
	fmt.Fprintln(os.Stderr, "  quest version")
	fmt.Fprintln(os.Stderr, "flags:")
	fmt.Fprintln(os.Stderr, "  -v, --verbose   enable debug logging")
}
