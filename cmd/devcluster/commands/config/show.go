package config

import (
	"context"
	"fmt"

	"github.com/catalystcommunity/devcluster/v1/cmd/devcluster/commands/shared"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

// ShowCommand prints the effective configuration
var ShowCommand = &cli.Command{
	Name:   "show",
	Usage:  "Print the effective configuration",
	Action: runShow,
}

func runShow(ctx context.Context, cmd *cli.Command) error {
	cfg, path, err := shared.LoadConfig(cmd)
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	w := shared.Printer(cmd).Writer()
	if path == "" {
		fmt.Fprintln(w, "# built-in defaults")
	} else {
		fmt.Fprintf(w, "# %s\n", path)
	}
	fmt.Fprint(w, string(data))
	return nil
}
