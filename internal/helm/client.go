package helm

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"helm.sh/helm/v3/pkg/action"
	"helm.sh/helm/v3/pkg/chart"
	"helm.sh/helm/v3/pkg/chart/loader"
	"helm.sh/helm/v3/pkg/cli"
	"helm.sh/helm/v3/pkg/getter"
	"helm.sh/helm/v3/pkg/release"
	"helm.sh/helm/v3/pkg/repo"
	"helm.sh/helm/v3/pkg/storage/driver"
)

// DebugLog receives Helm SDK debug output
type DebugLog func(format string, v ...interface{})

// Client runs Helm actions against one cluster.
// Repositories and cache live in a private work dir so the user's helm setup is untouched.
type Client struct {
	namespace string
	workDir   string
	settings  *cli.EnvSettings
	debug     DebugLog

	// newActionConfig overrides action configuration in tests
	newActionConfig func(namespace string) (*action.Configuration, error)
}

// NewClient creates a Helm client for the cluster described by kubeconfig.
// namespace is used when an operation does not name one.
func NewClient(kubeconfig []byte, namespace string) (*Client, error) {
	if len(kubeconfig) == 0 {
		return nil, fmt.Errorf("kubeconfig cannot be empty")
	}
	if namespace == "" {
		namespace = "default"
	}

	workDir, err := os.MkdirTemp("", "devcluster-helm-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create helm work dir: %w", err)
	}

	// The SDK only accepts a kubeconfig path
	kubeconfigPath := filepath.Join(workDir, "kubeconfig")
	if err := os.WriteFile(kubeconfigPath, kubeconfig, 0600); err != nil {
		os.RemoveAll(workDir)
		return nil, fmt.Errorf("failed to write kubeconfig: %w", err)
	}

	settings := cli.New()
	settings.KubeConfig = kubeconfigPath
	settings.SetNamespace(namespace)
	settings.RepositoryConfig = filepath.Join(workDir, "repositories.yaml")
	settings.RepositoryCache = filepath.Join(workDir, "cache")

	return &Client{
		namespace: namespace,
		workDir:   workDir,
		settings:  settings,
	}, nil
}

// SetDebugLog routes Helm SDK debug output to fn
func (c *Client) SetDebugLog(fn DebugLog) {
	c.debug = fn
}

// Close removes the work dir
func (c *Client) Close() error {
	if c.workDir == "" {
		return nil
	}
	return os.RemoveAll(c.workDir)
}

func (c *Client) actionConfig(namespace string) (*action.Configuration, error) {
	if namespace == "" {
		namespace = c.namespace
	}

	if c.newActionConfig != nil {
		return c.newActionConfig(namespace)
	}

	log := func(format string, v ...interface{}) {
		if c.debug != nil {
			c.debug(format, v...)
		}
	}

	cfg := new(action.Configuration)
	if err := cfg.Init(c.settings.RESTClientGetter(), namespace, "secret", log); err != nil {
		return nil, fmt.Errorf("failed to initialize helm for namespace %s: %w", namespace, err)
	}
	return cfg, nil
}

// AddRepo registers a chart repository and downloads its index.
// Adding a repo that already exists with the same URL is a no-op apart from
// refreshing the index; a different URL needs ForceUpdate.
func (c *Client) AddRepo(ctx context.Context, opts RepoAddOptions) error {
	if opts.Name == "" {
		return fmt.Errorf("repository name cannot be empty")
	}
	if opts.URL == "" {
		return fmt.Errorf("repository URL cannot be empty")
	}

	if err := os.MkdirAll(c.settings.RepositoryCache, 0755); err != nil {
		return fmt.Errorf("failed to create repository cache: %w", err)
	}

	repoFile, err := repo.LoadFile(c.settings.RepositoryConfig)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to read repository file: %w", err)
		}
		repoFile = repo.NewFile()
	}

	entry := &repo.Entry{Name: opts.Name, URL: opts.URL}
	if existing := repoFile.Get(opts.Name); existing != nil && existing.URL != opts.URL && !opts.ForceUpdate {
		return fmt.Errorf("repository %s already exists with URL %s", opts.Name, existing.URL)
	}
	repoFile.Update(entry)

	if err := repoFile.WriteFile(c.settings.RepositoryConfig, 0644); err != nil {
		return fmt.Errorf("failed to write repository file: %w", err)
	}

	chartRepo, err := repo.NewChartRepository(entry, getter.All(c.settings))
	if err != nil {
		return fmt.Errorf("invalid repository %s: %w", opts.Name, err)
	}
	chartRepo.CachePath = c.settings.RepositoryCache

	if _, err := chartRepo.DownloadIndexFile(); err != nil {
		return fmt.Errorf("failed to download index for %s: %w", opts.Name, err)
	}
	return nil
}

// Install installs a chart as a new release
func (c *Client) Install(ctx context.Context, opts InstallOptions) error {
	if err := validateRef(opts.ReleaseName, opts.Chart); err != nil {
		return err
	}

	namespace := c.namespaceOr(opts.Namespace)
	cfg, err := c.actionConfig(namespace)
	if err != nil {
		return err
	}

	install := action.NewInstall(cfg)
	install.ReleaseName = opts.ReleaseName
	install.Namespace = namespace
	install.Version = opts.Version
	install.Wait = opts.Wait
	if opts.Timeout > 0 {
		install.Timeout = opts.Timeout
	}

	ch, err := c.loadChart(&install.ChartPathOptions, opts.Chart)
	if err != nil {
		return err
	}

	if _, err := install.RunWithContext(ctx, ch, opts.Values); err != nil {
		return fmt.Errorf("failed to install %s: %w", opts.ReleaseName, err)
	}
	return nil
}

// Upgrade upgrades an existing release
func (c *Client) Upgrade(ctx context.Context, opts UpgradeOptions) error {
	if err := validateRef(opts.ReleaseName, opts.Chart); err != nil {
		return err
	}

	namespace := c.namespaceOr(opts.Namespace)
	cfg, err := c.actionConfig(namespace)
	if err != nil {
		return err
	}

	upgrade := action.NewUpgrade(cfg)
	upgrade.Namespace = namespace
	upgrade.Version = opts.Version
	upgrade.ReuseValues = opts.ReuseValues
	upgrade.Wait = opts.Wait
	if opts.Timeout > 0 {
		upgrade.Timeout = opts.Timeout
	}

	ch, err := c.loadChart(&upgrade.ChartPathOptions, opts.Chart)
	if err != nil {
		return err
	}

	if _, err := upgrade.RunWithContext(ctx, opts.ReleaseName, ch, opts.Values); err != nil {
		return fmt.Errorf("failed to upgrade %s: %w", opts.ReleaseName, err)
	}
	return nil
}

// GetRelease returns the latest revision of a release.
// A missing release wraps ErrReleaseNotFound.
func (c *Client) GetRelease(ctx context.Context, namespace, name string) (*Release, error) {
	if name == "" {
		return nil, fmt.Errorf("release name cannot be empty")
	}

	cfg, err := c.actionConfig(namespace)
	if err != nil {
		return nil, err
	}

	rel, err := action.NewGet(cfg).Run(name)
	if errors.Is(err, driver.ErrReleaseNotFound) {
		return nil, fmt.Errorf("%s: %w", name, ErrReleaseNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get release %s: %w", name, err)
	}

	result := convertRelease(rel)
	return &result, nil
}

func (c *Client) namespaceOr(namespace string) string {
	if namespace == "" {
		return c.namespace
	}
	return namespace
}

// loadChart resolves a "repo/chart" reference through the configured repos
func (c *Client) loadChart(pathOpts *action.ChartPathOptions, ref string) (*chart.Chart, error) {
	path, err := pathOpts.LocateChart(ref, c.settings)
	if err != nil {
		return nil, fmt.Errorf("failed to locate chart %s: %w", ref, err)
	}

	ch, err := loader.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load chart %s: %w", ref, err)
	}
	return ch, nil
}

func validateRef(releaseName, chartRef string) error {
	if releaseName == "" {
		return fmt.Errorf("release name cannot be empty")
	}
	if chartRef == "" {
		return fmt.Errorf("chart cannot be empty")
	}
	return nil
}

func convertRelease(rel *release.Release) Release {
	r := Release{
		Name:      rel.Name,
		Namespace: rel.Namespace,
		Revision:  rel.Version,
	}

	if rel.Info != nil {
		r.Status = rel.Info.Status.String()
		r.Updated = rel.Info.LastDeployed.Time
	}

	if rel.Chart != nil && rel.Chart.Metadata != nil {
		r.Chart = rel.Chart.Metadata.Name
		r.Version = rel.Chart.Metadata.Version
		r.AppVersion = rel.Chart.Metadata.AppVersion
	}

	return r
}
