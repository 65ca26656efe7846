// Package command provides CLI command definitions for predkv-cli.
//
// It uses urfave/cli/v2 for command parsing. Each invocation opens
// one connection, performs one operation, prints the result, and
// exits.
package command

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/predkv/predkv/internal/infra/buildinfo"
)

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:    "predkv-cli",
		Usage:   "PredKV command-line client",
		Version: buildinfo.String(),
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			ReadCommand(),
			AddCommand(),
			DeleteCommand(),
			QueryCommand(),
		},
	}
}

// globalFlags returns the global CLI flags.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "server",
			Aliases: []string{"s"},
			Usage:   "PredKV server address",
			EnvVars: []string{"PREDKV_SERVER"},
			Value:   "127.0.0.1:65535",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output format: plain, json",
			Value:   "plain",
		},
		&cli.BoolFlag{
			Name:  "string",
			Usage: "Treat key and value arguments as strings, skipping numeric detection",
		},
	}
}

// GlobalFlags holds flags available to all commands.
type GlobalFlags struct {
	Server      string
	Output      string
	ForceString bool
}

// ParseGlobalFlags extracts global flags from context.
func ParseGlobalFlags(c *cli.Context) *GlobalFlags {
	return &GlobalFlags{
		Server:      c.String("server"),
		Output:      c.String("output"),
		ForceString: c.Bool("string"),
	}
}

func argError(c *cli.Context, want string) error {
	return cli.Exit(fmt.Sprintf("usage: predkv-cli %s %s", c.Command.Name, want), 2)
}
