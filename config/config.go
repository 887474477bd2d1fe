// Package config loads benchmark suites from YAML and merges command-line
// overrides into a harness.Config.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/weiihann/cmpbench/harness"
)

// File is the on-disk suite description.
//
//	iterations: 3
//	baseline: python
//	commands:
//	  - name: python
//	    executable: python3
//	  - name: rusty
//	    executable: ./target/release/rusty
//	    build:
//	      command: [cargo, build, --release]
//	inputs:
//	  - tests/addition.py
type File struct {
	Iterations int           `yaml:"iterations"`
	Strict     bool          `yaml:"strict"`
	Timeout    string        `yaml:"timeout"`
	Baseline   string        `yaml:"baseline"`
	Commands   []CommandSpec `yaml:"commands"`
	Inputs     []string      `yaml:"inputs"`

	// dir is the directory relative paths resolve against.
	dir string
}

// CommandSpec describes one command in a suite file.
type CommandSpec struct {
	Name       string     `yaml:"name"`
	Executable string     `yaml:"executable"`
	Args       []string   `yaml:"args"`
	Env        []string   `yaml:"env"`
	Build      *BuildSpec `yaml:"build"`
}

// BuildSpec is a command run once to produce the executable.
type BuildSpec struct {
	Dir     string   `yaml:"dir"`
	Command []string `yaml:"command"`
}

// Overrides are values given on the command line. Zero values leave the
// file untouched; Commands and Inputs are appended.
type Overrides struct {
	Iterations int
	Strict     bool
	Timeout    string
	Baseline   string
	Commands   []string
	Inputs     []string
}

// Default returns an empty suite with a single iteration.
func Default() *File {
	return &File{Iterations: 1}
}

// Load parses the suite file at path. Unknown keys are rejected.
func Load(path string) (*File, error) {
	if path == "" {
		return nil, fmt.Errorf("config: empty path")
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("config: resolve %s: %w", path, err)
	}

	file, err := os.Open(abs)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	defer file.Close()

	f, err := Decode(file)
	if err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", abs, err)
	}

	f.dir = filepath.Dir(abs)

	return f, nil
}

// Decode reads a suite from r. Relative paths stay relative to the
// working directory.
func Decode(r io.Reader) (*File, error) {
	f := Default()

	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)

	if err := decoder.Decode(f); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}

	return f, nil
}

// Apply merges command-line overrides into f.
func (f *File) Apply(o Overrides) error {
	if o.Iterations != 0 {
		f.Iterations = o.Iterations
	}

	f.Strict = f.Strict || o.Strict

	if o.Timeout != "" {
		f.Timeout = o.Timeout
	}

	if o.Baseline != "" {
		f.Baseline = o.Baseline
	}

	for _, raw := range o.Commands {
		spec, err := ParseCommand(raw)
		if err != nil {
			return err
		}

		f.Commands = append(f.Commands, spec)
	}

	f.Inputs = append(f.Inputs, o.Inputs...)

	return nil
}

// ParseCommand parses a "name=executable arg..." flag value.
func ParseCommand(raw string) (CommandSpec, error) {
	name, rest, ok := strings.Cut(raw, "=")
	fields := strings.Fields(rest)

	if !ok || strings.TrimSpace(name) == "" || len(fields) == 0 {
		return CommandSpec{}, &harness.ConfigError{
			Field:  "--command",
			Reason: fmt.Sprintf("want name=executable [args...], got %q", raw),
		}
	}

	return CommandSpec{
		Name:       strings.TrimSpace(name),
		Executable: fields[0],
		Args:       fields[1:],
	}, nil
}

// Harness converts f into a validated harness.Config.
func (f *File) Harness() (harness.Config, error) {
	cfg, err := f.convert()
	if err != nil {
		return harness.Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return harness.Config{}, err
	}

	return cfg, nil
}

// CheckCommands validates everything but the inputs, for callers that
// still have to produce inputs.
func (f *File) CheckCommands() error {
	cfg, err := f.convert()
	if err != nil {
		return err
	}

	return cfg.ValidateCommands()
}

func (f *File) convert() (harness.Config, error) {
	cfg := harness.Config{
		Iterations: f.Iterations,
		Strict:     f.Strict,
		Baseline:   f.Baseline,
		Commands:   make([]harness.Command, 0, len(f.Commands)),
		Inputs:     make([]harness.Input, 0, len(f.Inputs)),
	}

	if f.Timeout != "" {
		d, err := time.ParseDuration(f.Timeout)
		if err != nil {
			return harness.Config{}, &harness.ConfigError{
				Field:  "timeout",
				Reason: err.Error(),
			}
		}

		cfg.Timeout = d
	}

	for _, spec := range f.Commands {
		c := harness.Command{
			Name:       spec.Name,
			Executable: f.resolveExecutable(spec.Executable),
			Args:       spec.Args,
			Env:        spec.Env,
		}

		if spec.Build != nil {
			dir := spec.Build.Dir
			if dir == "" {
				dir = "."
			}

			c.Build = &harness.BuildStep{
				Dir:  f.resolve(dir),
				Argv: spec.Build.Command,
			}
		}

		cfg.Commands = append(cfg.Commands, c)
	}

	for _, path := range f.Inputs {
		in := harness.NewInput(path)
		in.Path = f.resolve(path)
		cfg.Inputs = append(cfg.Inputs, in)
	}

	return cfg, nil
}

// resolve anchors relative paths at the suite file's directory.
func (f *File) resolve(path string) string {
	if f.dir == "" || path == "" || filepath.IsAbs(path) {
		return path
	}

	return filepath.Join(f.dir, path)
}

// resolveExecutable is resolve, except bare names are left for PATH lookup.
func (f *File) resolveExecutable(path string) string {
	if !strings.ContainsRune(path, '/') && !strings.ContainsRune(path, filepath.Separator) {
		return path
	}

	return f.resolve(path)
}
