package config

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/catalystcommunity/devcluster/v1/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	root := &cli.Command{
		Name:      "devcluster",
		Writer:    &buf,
		ErrWriter: &buf,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config"},
		},
		Commands: []*cli.Command{Command},
	}
	err := root.Run(context.Background(), append([]string{"devcluster"}, args...))
	return buf.String(), err
}

func TestInit_WritesDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(config.ConfigDirEnv, dir)

	out, err := run(t, "config", "init")
	require.NoError(t, err)

	path := filepath.Join(dir, config.DefaultConfigName)
	assert.Contains(t, out, path)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, config.Default().Cluster.Name, cfg.Cluster.Name)
}

func TestInit_RefusesOverwrite(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(config.ConfigDirEnv, dir)

	path := filepath.Join(dir, config.DefaultConfigName)
	require.NoError(t, os.WriteFile(path, []byte("cluster:\n  name: mine\n"), 0644))

	_, err := run(t, "config", "init")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "mine")

	_, err = run(t, "config", "init", "--force")
	require.NoError(t, err)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, config.Default().Cluster.Name, cfg.Cluster.Name)
}

func TestShow_Defaults(t *testing.T) {
	t.Setenv(config.ConfigDirEnv, t.TempDir())

	out, err := run(t, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "# built-in defaults")
	assert.Contains(t, out, config.Default().Cluster.Name)
}

func TestShow_ExplicitFile(t *testing.T) {
	t.Setenv(config.ConfigDirEnv, t.TempDir())

	path := filepath.Join(t.TempDir(), "custom.yaml")
	cfg := config.Default()
	cfg.Cluster.Name = "custom-cluster"
	require.NoError(t, config.Save(cfg, path))

	out, err := run(t, "--config", path, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "# "+path)
	assert.Contains(t, out, "custom-cluster")
}
