package versions

import (
	"context"
	"fmt"

	"github.com/catalystcommunity/devcluster/v1/cmd/devcluster/commands/shared"
	"github.com/urfave/cli/v3"
)

// Command prints the versions a bootstrap would install
var Command = &cli.Command{
	Name:   "versions",
	Usage:  "Show the latest tool and chart versions and where they came from",
	Action: runVersions,
}

func runVersions(ctx context.Context, cmd *cli.Command) error {
	cfg, _, err := shared.LoadConfig(cmd)
	if err != nil {
		return err
	}

	w := shared.Printer(cmd).Writer()
	set := shared.NewResolver(cfg).ResolveAll(ctx)

	fmt.Fprintf(w, "%-10s %-12s %s\n", "NAME", "VERSION", "SOURCE")
	for _, r := range set.All() {
		source := string(r.Origin)
		if r.Err != nil {
			source = fmt.Sprintf("%s (%v)", source, r.Err)
		}
		fmt.Fprintf(w, "%-10s %-12s %s\n", r.Name, r.Version, source)
	}

	return nil
}
