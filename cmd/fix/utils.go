package fix

import (
	"errors"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/pflag"

	"github.com/scan-io-git/lintfix/internal/config"
	"github.com/scan-io-git/lintfix/internal/git"
)

// applyFlagOverrides copies explicitly set flags over the loaded configuration.
func applyFlagOverrides(flags *pflag.FlagSet, options *RunOptionsFix, cfg *config.Config) {
	if flags.Changed("format") {
		cfg.Linter.Format = options.Format
	}
	if flags.Changed("format-first") {
		cfg.Linter.FormatFirst = options.FormatFirst
	}
	if flags.Changed("linter-fix") {
		cfg.Linter.ApplySafeFixes = options.LinterFix
	}
	if flags.Changed("threads") {
		cfg.Fixer.ConcurrentJobs = options.Threads
	}
	if flags.Changed("show-diff") {
		cfg.Fixer.ShowDiff = options.ShowDiff
	}
	if flags.Changed("model") {
		cfg.LLM.Model = options.Model
	}
	if flags.Changed("api-url") {
		cfg.LLM.APIURL = options.APIURL
	}
	if flags.Changed("rate-limit") {
		cfg.LLM.RequestsPerMinute = options.RateLimit
	}
	cfg.Linter.AdditionalArgs = append(cfg.Linter.AdditionalArgs, options.AdditionalArgs...)
}

// warnDirtyFiles logs files that are about to be overwritten without a committed copy.
func warnDirtyFiles(logger hclog.Logger, root string, paths []string) {
	dirty, err := git.DirtyFiles(root, paths)
	if err != nil {
		if errors.Is(err, git.ErrNotRepository) {
			logger.Warn("root folder is not under version control, files are overwritten without backup", "root", root)
			return
		}
		logger.Warn("failed to check version control status", "root", root, "error", err)
		return
	}
	if len(dirty) > 0 {
		logger.Warn("files with uncommitted changes will be overwritten", "files", dirty)
	}
}
