package harness

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// InputPlaceholder is replaced by the input path inside command arguments.
const InputPlaceholder = "{input}"

// BuildStep is an optional command run once to produce a Command's
// executable before measuring.
type BuildStep struct {
	Dir  string
	Argv []string
}

// Command is an external program and its fixed arguments.
type Command struct {
	Name       string
	Executable string
	Args       []string
	Env        []string
	Build      *BuildStep
}

// Argv returns the arguments for invoking c on inputPath. If any fixed
// argument contains InputPlaceholder it is substituted, otherwise the
// path is appended.
func (c Command) Argv(inputPath string) []string {
	args := make([]string, 0, len(c.Args)+1)
	substituted := false

	for _, a := range c.Args {
		if strings.Contains(a, InputPlaceholder) {
			a = strings.ReplaceAll(a, InputPlaceholder, inputPath)
			substituted = true
		}

		args = append(args, a)
	}

	if !substituted {
		args = append(args, inputPath)
	}

	return args
}

// Input is a file passed to every command.
type Input struct {
	Name string
	Path string
}

// NewInput builds an Input named after the base of path.
func NewInput(path string) Input {
	return Input{Name: filepath.Base(path), Path: path}
}

// Config describes one run.
type Config struct {
	Commands   []Command
	Inputs     []Input
	Iterations int
	// Strict aborts the run on the first LaunchError.
	Strict bool
	// Timeout bounds each invocation when positive. Zero waits forever.
	Timeout time.Duration
	// Baseline names the ratio numerator; empty means the first command.
	Baseline string
}

// Validate checks cfg and returns a *ConfigError describing the first
// problem found.
func (cfg Config) Validate() error {
	if err := cfg.ValidateCommands(); err != nil {
		return err
	}

	if len(cfg.Inputs) == 0 {
		return &ConfigError{Field: "inputs", Reason: "at least one input is required"}
	}

	for i, in := range cfg.Inputs {
		if strings.TrimSpace(in.Path) == "" {
			return &ConfigError{
				Field:  fmt.Sprintf("inputs[%d]", i),
				Reason: "empty input path",
			}
		}
	}

	return nil
}

// ValidateCommands checks everything Validate does except the inputs, so
// a caller can reject a bad configuration before producing inputs.
func (cfg Config) ValidateCommands() error {
	if len(cfg.Commands) == 0 {
		return &ConfigError{Field: "commands", Reason: "at least one command is required"}
	}

	if cfg.Iterations < 1 {
		return &ConfigError{
			Field:  "iterations",
			Reason: fmt.Sprintf("must be positive, got %d", cfg.Iterations),
		}
	}

	if cfg.Timeout < 0 {
		return &ConfigError{Field: "timeout", Reason: "must not be negative"}
	}

	seen := make(map[string]bool, len(cfg.Commands))

	for i, c := range cfg.Commands {
		field := fmt.Sprintf("commands[%d]", i)

		if strings.TrimSpace(c.Name) == "" {
			return &ConfigError{Field: field + ".name", Reason: "empty name"}
		}

		if seen[c.Name] {
			return &ConfigError{
				Field:  field + ".name",
				Reason: fmt.Sprintf("duplicate command %q", c.Name),
			}
		}

		seen[c.Name] = true

		if strings.TrimSpace(c.Executable) == "" {
			return &ConfigError{Field: field + ".executable", Reason: "empty executable path"}
		}

		if c.Build != nil && len(c.Build.Argv) == 0 {
			return &ConfigError{Field: field + ".build", Reason: "empty build command"}
		}
	}

	if cfg.Baseline != "" && !seen[cfg.Baseline] {
		return &ConfigError{
			Field:  "baseline",
			Reason: fmt.Sprintf("unknown command %q", cfg.Baseline),
		}
	}

	return nil
}

func (cfg Config) baseline() string {
	if cfg.Baseline != "" {
		return cfg.Baseline
	}

	return cfg.Commands[0].Name
}
