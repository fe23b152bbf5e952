package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/scan-io-git/lintfix/cmd/fix"
	"github.com/scan-io-git/lintfix/cmd/version"
	lferrors "github.com/scan-io-git/lintfix/internal/errors"
)

// NewRootCmd builds the lintfix command tree.
func NewRootCmd() *cobra.Command {
	rootCmd := fix.NewFixCmd()
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.AddCommand(version.NewVersionCmd())
	return rootCmd
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		return ExitCode(err)
	}
	return 0
}

// ExitCode maps a command error onto the process exit code.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var cmdErr *lferrors.CommandError
	if errors.As(err, &cmdErr) && cmdErr.ExitCode != 0 {
		return cmdErr.ExitCode
	}
	return 1
}
