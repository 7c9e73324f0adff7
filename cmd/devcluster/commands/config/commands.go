package config

import (
	"github.com/urfave/cli/v3"
)

// Command is the config command group
var Command = &cli.Command{
	Name:  "config",
	Usage: "Manage devcluster configuration",
	Commands: []*cli.Command{
		InitCommand,
		ShowCommand,
	},
}
