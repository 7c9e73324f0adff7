package cilium

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/catalystcommunity/devcluster/v1/internal/helm"
	"github.com/catalystcommunity/devcluster/v1/internal/output"
	"github.com/catalystcommunity/devcluster/v1/internal/retry"
)

// Install adds the Cilium chart repository, installs the release and polls
// until Cilium is ready
func Install(ctx context.Context, helmClient HelmClient, checker StatusChecker, out *output.Printer, version string, user map[string]interface{}, policy Policy) error {
	if helmClient == nil {
		return fmt.Errorf("helm client cannot be nil")
	}
	if checker == nil {
		return fmt.Errorf("status checker cannot be nil")
	}

	if err := helmClient.AddRepo(ctx, helm.RepoAddOptions{
		Name:        RepoName,
		URL:         RepoURL,
		ForceUpdate: true,
	}); err != nil {
		return fmt.Errorf("failed to add helm repository: %w", err)
	}
	out.Success("Added helm repository %s (%s)", RepoName, RepoURL)

	if LegacyValuesIgnored(version) {
		out.Warn("cilium %s ignores kubeProxyReplacement=partial and the hostServices/nodePort/hostPort/externalIPs toggles; kube-proxy keeps handling services", version)
	}

	if err := helmClient.Install(ctx, helm.InstallOptions{
		ReleaseName: ReleaseName,
		Namespace:   Namespace,
		Chart:       Chart,
		Version:     version,
		Values:      BuildValues(user),
		Timeout:     installTimeout,
	}); err != nil {
		return fmt.Errorf("failed to install cilium: %w", err)
	}
	out.Success("Installed %s %s into %s", Chart, version, Namespace)

	return WaitReady(ctx, checker, out, policy)
}

// WaitReady polls checker with a linear back-off. Failed attempt n waits
// n*Step before the next one; after MaxAttempts failures ErrNotReady is returned.
func WaitReady(ctx context.Context, checker StatusChecker, out *output.Printer, policy Policy) error {
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = DefaultPolicy().MaxAttempts
	}
	if policy.Step <= 0 {
		policy.Step = DefaultPolicy().Step
	}

	opts := []retry.Option{
		retry.WithMaxAttempts(policy.MaxAttempts),
		retry.WithStep(policy.Step),
		retry.WithOnFailure(func(attempt int, delay time.Duration, err error) {
			out.Info("Cilium not ready (attempt %d/%d): %v, retrying in %s", attempt, policy.MaxAttempts, err, delay)
		}),
	}
	if policy.Sleep != nil {
		opts = append(opts, retry.WithSleep(policy.Sleep))
	}

	err := retry.Linear(ctx, checker.Check, opts...)
	if err != nil {
		var exhausted *retry.ExhaustedError
		if errors.As(err, &exhausted) {
			return fmt.Errorf("%w after %d attempts: %v", ErrNotReady, exhausted.Attempts, exhausted.Err)
		}
		return err
	}

	out.Success("Cilium is ready")
	return nil
}
