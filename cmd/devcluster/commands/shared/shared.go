// Package shared holds setup used by several devcluster commands.
package shared

import (
	"os"

	"github.com/catalystcommunity/devcluster/v1/internal/config"
	"github.com/catalystcommunity/devcluster/v1/internal/output"
	"github.com/catalystcommunity/devcluster/v1/internal/secrets"
	"github.com/catalystcommunity/devcluster/v1/internal/shell"
	"github.com/catalystcommunity/devcluster/v1/internal/versions"
	"github.com/urfave/cli/v3"
)

// Global flag names
const (
	ConfigFlag  = "config"
	VerboseFlag = "verbose"
	UpdateFlag  = "update"
)

// LoadConfig loads the config named by --config, the default config file, or
// the built-in defaults, in that order
func LoadConfig(cmd *cli.Command) (*config.Config, string, error) {
	return config.Resolve(cmd.String(ConfigFlag))
}

// Printer returns a printer on the root command's writer honoring --verbose
func Printer(cmd *cli.Command) *output.Printer {
	w := cmd.Root().Writer
	if w == nil {
		w = os.Stdout
	}
	p := output.New(w)
	p.SetVerbose(cmd.Bool(VerboseFlag))
	return p
}

// Runner returns a local command runner; with --verbose, command output
// (cilium status, sudo install) is echoed to the printer
func Runner(out *output.Printer) *shell.LocalRunner {
	runner := shell.NewLocalRunner()
	if out.Verbose() {
		runner.Stream = out.Writer()
	}
	return runner
}

// NewResolver builds a version resolver for the configured endpoints,
// authenticating to GitHub when a token is available
func NewResolver(cfg *config.Config) *versions.Resolver {
	fetcher := versions.NewHTTPFetcher(secrets.GitHubToken())
	return versions.NewResolver(fetcher, versions.SourcesFromConfig(cfg)...)
}
