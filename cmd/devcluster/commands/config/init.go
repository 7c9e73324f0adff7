package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/catalystcommunity/devcluster/v1/cmd/devcluster/commands/shared"
	"github.com/catalystcommunity/devcluster/v1/internal/config"
	"github.com/urfave/cli/v3"
)

// InitCommand writes the default configuration to the config directory
var InitCommand = &cli.Command{
	Name:  "init",
	Usage: "Write a default configuration file",
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:  "force",
			Usage: "Overwrite an existing configuration file",
		},
	},
	Action: runInit,
}

func runInit(ctx context.Context, cmd *cli.Command) error {
	dir, err := config.EnsureConfigDir()
	if err != nil {
		return err
	}

	path := filepath.Join(dir, config.DefaultConfigName)
	if _, err := os.Stat(path); err == nil && !cmd.Bool("force") {
		return fmt.Errorf("config file %s already exists (use --force to overwrite)", path)
	}

	if err := config.Save(config.Default(), path); err != nil {
		return err
	}

	shared.Printer(cmd).Success("Wrote %s", path)
	return nil
}
