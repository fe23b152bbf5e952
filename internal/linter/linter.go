package linter

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/scan-io-git/lintfix/internal/config"
	lferrors "github.com/scan-io-git/lintfix/internal/errors"
)

// Options describe how the linter is invoked.
type Options struct {
	Path           string   // Linter executable, resolved through PATH when it has no separator
	Format         Format   // Output format requested from the linter
	IssueExitCodes []int    // Exit codes meaning "issues were found"
	FormatFirst    bool     // Run "<linter> format <root>" before checking
	ApplySafeFixes bool     // Let the linter apply its own safe fixes first
	CommandArgs    []string // Replaces the default check argv; must contain config.RootPlaceholder
	AdditionalArgs []string // Appended to the check argv before the target
}

// Linter runs an external linter and collects its issues.
type Linter struct {
	opts   Options
	logger hclog.Logger
}

// New creates a new Linter with the provided options.
func New(opts Options, logger hclog.Logger) *Linter {
	if len(opts.IssueExitCodes) == 0 {
		opts.IssueExitCodes = config.DefaultIssueExitCodes()
	}
	if opts.Format == "" {
		opts.Format = FormatJSONLines
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Linter{opts: opts, logger: logger}
}

// NewFromConfig builds the linter options from the linter section of cfg.
func NewFromConfig(path string, cfg *config.Config, logger hclog.Logger) *Linter {
	return New(Options{
		Path:           path,
		Format:         Format(cfg.Linter.Format),
		IssueExitCodes: cfg.Linter.IssueExitCodes,
		FormatFirst:    cfg.Linter.FormatFirst,
		ApplySafeFixes: cfg.Linter.ApplySafeFixes,
		CommandArgs:    cfg.Linter.CommandArgs,
		AdditionalArgs: cfg.Linter.AdditionalArgs,
	}, logger)
}

// Resolve returns the absolute path of the linter executable.
func (l *Linter) Resolve() (string, error) {
	resolved, err := exec.LookPath(l.opts.Path)
	if err != nil {
		return "", &lferrors.LinterInvocationError{Linter: l.opts.Path, Err: err}
	}
	return resolved, nil
}

// outputFormatFlag maps the parse format onto ruff's --output-format value.
func outputFormatFlag(format Format) string {
	if format == FormatText {
		return "concise"
	}
	return string(format)
}

// BuildCommandArgs constructs the command-line arguments for the check run.
func (l *Linter) BuildCommandArgs(root string) []string {
	var commandArgs []string

	appendArg := func(arg ...string) {
		commandArgs = append(commandArgs, arg...)
	}

	if len(l.opts.CommandArgs) > 0 {
		for _, arg := range l.opts.CommandArgs {
			appendArg(strings.ReplaceAll(arg, config.RootPlaceholder, root))
		}
		appendArg(l.opts.AdditionalArgs...)
		return commandArgs
	}

	appendArg("check", "--output-format", outputFormatFlag(l.opts.Format))
	if l.opts.ApplySafeFixes {
		appendArg("--fix")
	}
	appendArg(l.opts.AdditionalArgs...)
	appendArg(root)

	return commandArgs
}

// Collect runs the linter over root and returns the parsed issues grouped by file.
// Only an exit code of 0 or one of the configured issue exit codes is accepted; anything else is a LinterInvocationError.
func (l *Linter) Collect(ctx context.Context, root string) (*ParseResult, error) {
	resolved, err := l.Resolve()
	if err != nil {
		l.logger.Error("linter executable not found", "linter", l.opts.Path, "error", err)
		return nil, err
	}

	if l.opts.FormatFirst {
		if err := l.format(ctx, resolved, root); err != nil {
			return nil, err
		}
	}

	commandArgs := l.BuildCommandArgs(root)
	cmd := exec.CommandContext(ctx, resolved, commandArgs...)
	l.logger.Debug("debug info", "cmd", cmd.Args)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = io.MultiWriter(l.logger.StandardWriter(&hclog.StandardLoggerOptions{
		InferLevels: true,
		ForceLevel:  hclog.Debug,
	}), &stderr)

	l.logger.Info("linter check is starting", "root", root, "format", l.opts.Format)
	exitCode, err := run(cmd)
	if err != nil {
		l.logger.Error("linter execution error", "error", err)
		return nil, &lferrors.LinterInvocationError{Linter: l.opts.Path, Err: err, Output: strings.TrimSpace(stderr.String())}
	}
	if exitCode != 0 && !containsCode(l.opts.IssueExitCodes, exitCode) {
		output := strings.TrimSpace(stderr.String())
		if output == "" {
			output = strings.TrimSpace(stdout.String())
		}
		l.logger.Error("linter exited with an unexpected status", "exitCode", exitCode)
		return nil, &lferrors.LinterInvocationError{Linter: l.opts.Path, ExitCode: exitCode, Output: output}
	}

	result, err := ParseInRoot(l.opts.Format, root, &stdout, l.logger)
	if err != nil {
		return nil, &lferrors.LinterInvocationError{Linter: l.opts.Path, ExitCode: exitCode, Err: err}
	}

	l.logger.Info("linter check finished", "exitCode", exitCode, "files", result.Group.Len(), "issues", result.Group.TotalIssues(), "skipped", len(result.Skipped))
	return result, nil
}

// format runs the linter's formatter over root.
func (l *Linter) format(ctx context.Context, resolved, root string) error {
	cmd := exec.CommandContext(ctx, resolved, "format", root)
	l.logger.Debug("debug info", "cmd", cmd.Args)

	var output bytes.Buffer
	cmd.Stdout = io.MultiWriter(l.logger.StandardWriter(&hclog.StandardLoggerOptions{
		InferLevels: true,
		ForceLevel:  hclog.Debug,
	}), &output)
	cmd.Stderr = cmd.Stdout

	l.logger.Info("formatting code", "root", root)
	exitCode, err := run(cmd)
	if err != nil {
		return &lferrors.LinterInvocationError{Linter: l.opts.Path, Err: fmt.Errorf("format: %w", err), Output: strings.TrimSpace(output.String())}
	}
	if exitCode != 0 {
		return &lferrors.LinterInvocationError{Linter: l.opts.Path, ExitCode: exitCode, Err: errors.New("format failed"), Output: strings.TrimSpace(output.String())}
	}
	return nil
}

// Version returns the first line printed by "<linter> --version".
func (l *Linter) Version(ctx context.Context) (string, error) {
	resolved, err := l.Resolve()
	if err != nil {
		return "", err
	}

	out, err := exec.CommandContext(ctx, resolved, "--version").Output()
	if err != nil {
		return "", &lferrors.LinterInvocationError{Linter: l.opts.Path, Err: err}
	}
	version, _, _ := strings.Cut(strings.TrimSpace(string(out)), "\n")
	return version, nil
}

// run executes cmd and separates "ran and exited non-zero" from "could not run".
func run(cmd *exec.Cmd) (int, error) {
	err := cmd.Run()
	if err == nil {
		return 0, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() >= 0 {
		return exitErr.ExitCode(), nil
	}
	return -1, err
}

func containsCode(codes []int, code int) bool {
	for _, c := range codes {
		if c == code {
			return true
		}
	}
	return false
}
