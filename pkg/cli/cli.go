// Package cli provides the command-line interface for fitrunner.
package cli

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

// Version is set at build time.
var Version = "dev"

// GlobalFlags are available to all commands.
var GlobalFlags = []cli.Flag{
	&cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to fitrunner.yaml (defaults to the current directory)",
		EnvVars: []string{"FITRUNNER_CONFIG"},
	},
	&cli.StringFlag{
		Name:    "agent-url",
		Usage:   "On-device automation agent URL",
		Value:   "http://127.0.0.1:6790",
		EnvVars: []string{"FITRUNNER_AGENT_URL"},
	},
	&cli.StringFlag{
		Name:    "api-url",
		Usage:   "FitTrack backend base URL",
		EnvVars: []string{"FITRUNNER_API_URL"},
	},
	&cli.StringFlag{
		Name:    "app-id",
		Usage:   "Bundle ID / package name of the app under test",
		EnvVars: []string{"FITRUNNER_APP_ID"},
	},
	&cli.BoolFlag{
		Name:    "verbose",
		Usage:   "Enable verbose logging",
		EnvVars: []string{"FITRUNNER_VERBOSE"},
	},
}

// Execute runs the CLI.
func Execute() {
	app := &cli.App{
		Name:    "fitrunner",
		Usage:   "End-to-end UI test suite for the FitTrack app",
		Version: Version,
		Description: `fitrunner drives the FitTrack app through its accessibility tree
and cross-checks what the UI shows against the backend API.

Examples:
  fitrunner run
  fitrunner run --tags smoke --retries 1
  fitrunner hierarchy
  fitrunner doctor`,
		Flags: GlobalFlags,
		Commands: []*cli.Command{
			runCommand,
			hierarchyCommand,
			doctorCommand,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
