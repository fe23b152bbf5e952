package fix

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/scan-io-git/lintfix/internal/config"
	lferrors "github.com/scan-io-git/lintfix/internal/errors"
	"github.com/scan-io-git/lintfix/internal/fixer"
	"github.com/scan-io-git/lintfix/internal/httpclient"
	"github.com/scan-io-git/lintfix/internal/linter"
	"github.com/scan-io-git/lintfix/internal/llm"
	"github.com/scan-io-git/lintfix/internal/logger"
)

// RunOptionsFix holds the arguments for the fix command.
type RunOptionsFix struct {
	APIKey         string
	LinterPath     string
	Root           string
	ConfigPath     string
	Format         string
	Threads        int
	Model          string
	APIURL         string
	RateLimit      int
	FormatFirst    bool
	LinterFix      bool
	ShowDiff       bool
	OutputPath     string
	AdditionalArgs []string
}

var exampleFixUsage = `  # Fixing every issue ruff reports in a project
  lintfix sk-... ruff /path/to/my_project

  # Using a linter binary from a virtualenv and 8 concurrent requests
  lintfix -j 8 sk-... ./.venv/bin/ruff /path/to/my_project

  # Formatting first, showing the applied diffs and saving the report
  lintfix --format-first --show-diff --output report.json sk-... ruff /path/to/my_project

  # Passing additional arguments to the linter
  lintfix sk-... ruff /path/to/my_project -- --select E,F --ignore E501

  # Using a configuration file
  lintfix --config /path/to/lintfix.yml sk-... ruff /path/to/my_project`

// NewFixCmd creates the command that lints a folder and asks a chat-completions API to fix every reported file.
func NewFixCmd() *cobra.Command {
	var options RunOptionsFix

	cmd := &cobra.Command{
		Use:                   "lintfix [flags] <api_key> <linter_path> <root_folder> [-- linter args...]",
		SilenceUsage:          true,
		SilenceErrors:         true,
		DisableFlagsInUseLine: true,
		Args:                  cobra.ArbitraryArgs,
		Example:               exampleFixUsage,
		Short:                 "Lintfix runs a linter and rewrites offending files with fixes from a language model.",
		Long: `Lintfix runs a linter (ruff by default) over a folder, groups the reported issues by file
and asks a chat-completions API to return a corrected version of every file with issues.
Each file is overwritten in place with the returned content, no backup is kept.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFixCommand(cmd, &options, args)
		},
	}

	cmd.Flags().StringVarP(&options.ConfigPath, "config", "c", "", "Path to a YAML configuration file. Defaults to $"+config.EnvConfigPath+" when set.")
	cmd.Flags().StringVarP(&options.Format, "format", "f", config.DefaultLinterFormat, "Linter output format: json-lines, json, sarif or text.")
	cmd.Flags().IntVarP(&options.Threads, "threads", "j", config.DefaultConcurrentJobs, "Number of files fixed concurrently.")
	cmd.Flags().StringVarP(&options.Model, "model", "m", config.DefaultModel, "Chat model used for fixes.")
	cmd.Flags().StringVar(&options.APIURL, "api-url", config.DefaultAPIURL, "Chat-completions endpoint.")
	cmd.Flags().IntVar(&options.RateLimit, "rate-limit", 0, "Maximum completion requests per minute, 0 for unlimited.")
	cmd.Flags().BoolVar(&options.FormatFirst, "format-first", false, "Run the linter's formatter over the root folder before checking.")
	cmd.Flags().BoolVar(&options.LinterFix, "linter-fix", false, "Let the linter apply its own safe fixes before reporting.")
	cmd.Flags().BoolVar(&options.ShowDiff, "show-diff", false, "Print the diff of every applied fix.")
	cmd.Flags().StringVarP(&options.OutputPath, "output", "o", "", "Path to a JSON file where the run report is saved.")
	cmd.Flags().BoolP("help", "h", false, "Show help for lintfix.")

	return cmd
}

// runFixCommand executes the fix flow: collect, fix, report.
func runFixCommand(cmd *cobra.Command, options *RunOptionsFix, args []string) error {
	if len(args) == 0 {
		_ = cmd.Help()
		return lferrors.NewCommandError(fmt.Errorf("missing arguments <api_key> <linter_path> <root_folder>"), 1)
	}

	if err := validateFixArgs(options, args, cmd.ArgsLenAtDash()); err != nil {
		return lferrors.NewCommandError(err, 1)
	}

	cfg, err := config.LoadConfig(options.ConfigPath)
	if err != nil {
		return lferrors.NewCommandError(err, 1)
	}
	applyFlagOverrides(cmd.Flags(), options, cfg)
	if err := config.ValidateConfig(cfg); err != nil {
		return lferrors.NewCommandError(err, 1)
	}

	log := logger.NewLogger(cfg, "core-fix")

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	l := linter.NewFromConfig(options.LinterPath, cfg, log.Named("linter"))
	collected, err := l.Collect(ctx, options.Root)
	if err != nil {
		log.Error("failed to collect linter issues", "error", err)
		return lferrors.NewCommandError(err, 1)
	}
	group := collected.Group

	if group.Len() > 0 {
		warnDirtyFiles(log, options.Root, group.Files())
	}

	restyClient := httpclient.InitializeRestyClient(log.Named("http"), cfg)
	client, err := llm.NewClientFromConfig(options.APIKey, cfg, restyClient, log.Named("llm"))
	if err != nil {
		return lferrors.NewCommandError(err, 1)
	}

	f := fixer.NewFromConfig(client, options.Root, cfg, log.Named("fixer")).
		WithDiffOutput(cmd.OutOrStdout())

	report := f.FixAll(ctx, group)
	report.Linter = options.LinterPath
	report.ParseErrors = len(collected.Skipped)

	if err := report.Render(cmd.OutOrStdout()); err != nil {
		log.Error("failed to print report", "error", err)
	}

	if options.OutputPath != "" {
		if err := report.WriteJSON(options.OutputPath); err != nil {
			log.Error("failed to write report", "error", err)
			return lferrors.NewCommandError(err, 1)
		}
		log.Info("report saved to file", "path", options.OutputPath)
	}

	log.Info("fix command completed", "fixed", report.Fixed(), "failed", report.Failed())
	return nil
}
