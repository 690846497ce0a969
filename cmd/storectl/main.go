package main

import (
	"os"

	"github.com/seafresh/backend/cmd/storectl/commands"
)

// Version information, set during build
var (
	version = "dev"
	commit  = "none"
)

func main() {
	commands.SetVersionInfo(version, commit)

	// errors are printed by the commands package
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
