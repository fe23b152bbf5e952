package fix

import (
	"fmt"
	"strings"

	"github.com/scan-io-git/lintfix/internal/files"
)

// validateFixArgs validates the positional arguments and fills the matching options.
func validateFixArgs(options *RunOptionsFix, args []string, argsLenAtDash int) error {
	positional := args
	if argsLenAtDash > -1 {
		positional = args[:argsLenAtDash]
		options.AdditionalArgs = args[argsLenAtDash:]
	}

	if len(positional) != 3 {
		return fmt.Errorf("expected 3 arguments <api_key> <linter_path> <root_folder>, got %d", len(positional))
	}

	options.APIKey = positional[0]
	options.LinterPath = positional[1]
	options.Root = positional[2]

	if strings.TrimSpace(options.APIKey) == "" {
		return fmt.Errorf("the api key must not be empty")
	}
	if strings.TrimSpace(options.LinterPath) == "" {
		return fmt.Errorf("the linter path must not be empty")
	}
	if err := files.ValidateDir(options.Root); err != nil {
		return fmt.Errorf("invalid root folder %q: %w", options.Root, err)
	}

	if options.Threads < 0 {
		return fmt.Errorf("the 'threads' flag must be a positive integer")
	}
	if options.RateLimit < 0 {
		return fmt.Errorf("the 'rate-limit' flag must not be negative")
	}

	return nil
}
