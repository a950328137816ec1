package display

import (
	"context"
	"log/slog"
	"os"
	"os/exec"
	"time"
)

// DefaultCommandTimeout bounds how long a click command may run.
const DefaultCommandTimeout = 30 * time.Second

// CommandRunner runs node click commands through the user's shell.
type CommandRunner struct {
	shell   string
	timeout time.Duration
	logger  *slog.Logger
}

// NewCommandRunner creates a runner using $SHELL, falling back to /bin/sh.
func NewCommandRunner(logger *slog.Logger) *CommandRunner {
	if logger == nil {
		logger = slog.Default()
	}
	shell := os.Getenv("SHELL")
	if shell == "" {
		shell = "/bin/sh"
	}
	return &CommandRunner{shell: shell, timeout: DefaultCommandTimeout, logger: logger}
}

// Run starts command in the background. The node name is exported as
// NOTCHBAR_NAME.
func (r *CommandRunner) Run(name, command string) {
	if command == "" {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		defer cancel()

		cmd := exec.CommandContext(ctx, r.shell, "-c", command)
		cmd.Env = append(os.Environ(), "NOTCHBAR_NAME="+name)
		if out, err := cmd.CombinedOutput(); err != nil {
			r.logger.Warn("click command failed",
				"name", name,
				"command", command,
				"error", err,
				"output", string(out))
			return
		}
		r.logger.Debug("click command finished", "name", name)
	}()
}
