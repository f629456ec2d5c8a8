package llm

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/ishaan812/farmer/internal/logger"
)

// killWaitDelay bounds how long a killed process may hold its output pipes open.
const killWaitDelay = 2 * time.Second

// CLIClient runs a local AI command-line tool once per prompt and reads its stdout.
type CLIClient struct {
	name        string
	command     string
	args        func(prompt string) []string
	rejectEmpty bool
	log         logger.Logger
}

// NewClaudeCodeClient runs `<command> -p <prompt>`. Empty output is a valid result.
func NewClaudeCodeClient(command string, log logger.Logger) *CLIClient {
	return &CLIClient{
		name:    "claude",
		command: command,
		args:    func(prompt string) []string { return []string{"-p", prompt} },
		log:     log,
	}
}

// NewOpenCodeClient runs `<command> run <prompt>`. Empty output is an error.
func NewOpenCodeClient(command string, log logger.Logger) *CLIClient {
	return &CLIClient{
		name:        "opencode",
		command:     command,
		args:        func(prompt string) []string { return []string{"run", prompt} },
		rejectEmpty: true,
		log:         log,
	}
}

// Complete runs the command to completion. The process is not killed when ctx is
// cancelled; cancellation is only observed once it exits.
func (c *CLIClient) Complete(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	cmd := exec.Command(c.command, c.args(prompt)...)
	out, runErr := c.run(cmd, prompt)
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return c.result(out, runErr)
}

// Stream runs the command, killing it if ctx is cancelled, and delivers the whole
// output as a single chunk once the process exits.
func (c *CLIClient) Stream(ctx context.Context, prompt string, onChunk ChunkFunc) (string, error) {
	cmd := exec.CommandContext(ctx, c.command, c.args(prompt)...)
	cmd.WaitDelay = killWaitDelay
	out, runErr := c.run(cmd, prompt)
	if err := ctx.Err(); err != nil {
		return "", err
	}
	text, err := c.result(out, runErr)
	if err != nil {
		return "", err
	}
	if text != "" && onChunk != nil {
		onChunk(text)
	}
	return text, nil
}

type cliOutput struct {
	stdout string
	stderr string
}

func (c *CLIClient) run(cmd *exec.Cmd, prompt string) (cliOutput, error) {
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	c.log.Debug("running backend command", "backend", c.name, "command", c.command, "prompt_len", len(prompt))
	err := cmd.Run()
	out := cliOutput{stdout: stdout.String(), stderr: stderr.String()}
	c.log.Debug("backend command finished", "backend", c.name,
		"stdout_len", len(out.stdout), "stderr", logger.Safe(out.stderr, 300))
	return out, err
}

func (c *CLIClient) result(out cliOutput, runErr error) (string, error) {
	if runErr != nil {
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			detail := strings.TrimSpace(out.stderr)
			if detail == "" {
				detail = strings.TrimSpace(out.stdout)
			}
			return "", &BackendError{Backend: c.name, ExitCode: exitErr.ExitCode(), Detail: detail}
		}
		return "", fmt.Errorf("failed to execute %s: %w", c.command, runErr)
	}

	text := strings.TrimSpace(out.stdout)
	if text == "" && c.rejectEmpty {
		return "", fmt.Errorf("%s: %w; check that a model is configured", c.name, ErrEmptyResponse)
	}
	return text, nil
}
