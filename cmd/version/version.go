package version

import (
	"fmt"
	"io"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/scan-io-git/lintfix/internal/linter"
)

var (
	CoreVersion   = "unknown"
	GolangVersion = runtime.Version()
	BuildTime     = "unknown"
)

// Versions holds version information for the core application and the linter.
type Versions struct {
	Version       string `json:"version"`
	GolangVersion string `json:"golang_version"`
	BuildTime     string `json:"build_time"`
	Linter        string `json:"linter,omitempty"`
}

// NewVersionCmd creates a new cobra.Command for the version command.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:                   "version [linter_path]",
		SilenceUsage:          true,
		DisableFlagsInUseLine: true,
		Args:                  cobra.MaximumNArgs(1),
		Short:                 "Print the version number of the application and, optionally, of a linter",
		RunE: func(cmd *cobra.Command, args []string) error {
			versions := Versions{
				Version:       CoreVersion,
				GolangVersion: GolangVersion,
				BuildTime:     BuildTime,
			}
			if len(args) == 1 {
				v, err := linter.New(linter.Options{Path: args[0]}, nil).Version(cmd.Context())
				if err != nil {
					return err
				}
				versions.Linter = v
			}

			printVersionInfo(cmd.OutOrStdout(), &versions)
			return nil
		},
	}
}

// printVersionInfo prints the version information for the core application and the linter.
func printVersionInfo(w io.Writer, versions *Versions) {
	fmt.Fprintf(w, "Core Version: v%s\n", versions.Version)
	if versions.Linter != "" {
		fmt.Fprintf(w, "Linter Version: %s\n", versions.Linter)
	}
	fmt.Fprintf(w, "Go Version: %s\n", versions.GolangVersion)
	fmt.Fprintf(w, "Build Time: %s\n", versions.BuildTime)
}
