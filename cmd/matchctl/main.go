package main

import (
	"os"

	"github.com/imadgeboyega/sitter-backend/internal/cli"
)

// Version information (set by build flags)
var (
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	cli.SetVersionInfo(Version, Commit)
	if err := cli.NewRootCmd(os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}
