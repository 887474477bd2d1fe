package harness

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
)

// Build runs c's build step, if any, and verifies that the executable
// exists afterwards. Build output goes to stderr.
func Build(ctx context.Context, logger *slog.Logger, c Command) error {
	if c.Build == nil {
		return nil
	}

	logger.InfoContext(ctx, "building command",
		slog.String("command", c.Name),
		slog.String("dir", c.Build.Dir),
		slog.Any("argv", c.Build.Argv),
	)

	cmd := exec.CommandContext(ctx, c.Build.Argv[0], c.Build.Argv[1:]...)
	cmd.Dir = c.Build.Dir
	cmd.Stdout = os.Stderr
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("build %s: %w", c.Name, err)
	}

	if _, err := exec.LookPath(c.Executable); err != nil {
		return fmt.Errorf(
			"build %s: executable not found at %s: %w",
			c.Name, c.Executable, err,
		)
	}

	logger.InfoContext(ctx, "command built",
		slog.String("command", c.Name),
		slog.String("executable", c.Executable),
	)

	return nil
}

// BuildAll builds every command that has a build step, in order.
func BuildAll(ctx context.Context, logger *slog.Logger, commands []Command) error {
	for _, c := range commands {
		if err := Build(ctx, logger, c); err != nil {
			return err
		}
	}

	return nil
}
