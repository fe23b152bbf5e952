package main

import (
	"os"

	"github.com/scan-io-git/lintfix/cmd"
)

func main() {
	code := cmd.Execute()
	os.Exit(code)
}
