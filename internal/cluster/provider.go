// Package cluster manages the local Kind cluster.
package cluster

import (
	"fmt"

	"github.com/catalystcommunity/devcluster/v1/internal/output"
	"sigs.k8s.io/kind/pkg/cluster"
	"sigs.k8s.io/kind/pkg/log"
)

// Provider is the subset of the Kind cluster provider used by Manager
type Provider interface {
	Create(name string, options ...cluster.CreateOption) error
	Delete(name, explicitKubeconfigPath string) error
	List() ([]string, error)
	KubeConfig(name string, internal bool) (string, error)
}

// NewKindProvider creates a Kind provider for the detected container runtime,
// logging through out
func NewKindProvider(out *output.Printer) (Provider, error) {
	runtime, err := cluster.DetectNodeProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to detect a container runtime for kind: %w", err)
	}

	return cluster.NewProvider(runtime, cluster.ProviderWithLogger(NewLogger(out))), nil
}

// Logger adapts the printer to Kind's logger interface.
// V(0) messages are shown as info lines, higher levels only when verbose.
type Logger struct {
	out *output.Printer
}

var _ log.Logger = (*Logger)(nil)

// NewLogger returns a Kind logger writing to out
func NewLogger(out *output.Printer) *Logger {
	return &Logger{out: out}
}

func (l *Logger) Warn(message string) {
	l.out.Warn("%s", message)
}

func (l *Logger) Warnf(format string, args ...interface{}) {
	l.out.Warn(format, args...)
}

func (l *Logger) Error(message string) {
	l.out.Fail("%s", message)
}

func (l *Logger) Errorf(format string, args ...interface{}) {
	l.out.Fail(format, args...)
}

func (l *Logger) V(level log.Level) log.InfoLogger {
	return &infoLogger{out: l.out, debug: level > 0}
}

type infoLogger struct {
	out   *output.Printer
	debug bool
}

func (i *infoLogger) Info(message string) {
	i.Infof("%s", message)
}

func (i *infoLogger) Infof(format string, args ...interface{}) {
	if i.debug {
		i.out.Debugf(format, args...)
		return
	}
	i.out.Info(format, args...)
}

func (i *infoLogger) Enabled() bool {
	return !i.debug || i.out.Verbose()
}
