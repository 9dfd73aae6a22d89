/*
Copyright 2025.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package cli implements the wdctl command: it maps flags to watchdog
// operations, runs them in a fixed order against one lazily opened
// handle and always closes that handle before returning.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-logr/logr"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/multierr"

	"github.com/medik8s/wdctl/pkg/metrics"
	"github.com/medik8s/wdctl/pkg/version"
	"github.com/medik8s/wdctl/pkg/watchdog"
)

// App is one wdctl invocation environment. Zero fields fall back to the
// real system: the system backend, os.Stdout/os.Stderr and a zap logger.
type App struct {
	// Backend performs device control, nil for watchdog.NewSystemBackend()
	Backend watchdog.Backend
	// Stdout receives operation results
	Stdout io.Writer
	// Stderr receives logs, usage and errors
	Stderr io.Writer
	// Logger overrides the logger built from --log-level
	Logger *logr.Logger
	// FindDevices overrides watchdog.FindDevices for --list-devices
	FindDevices func() []string
}

// config holds the non-operation settings after flag and env resolution
type config struct {
	device      string
	logLevel    string
	metricsFile string
	listDevices bool
	showVersion bool
}

// Run executes args (without the program name) and returns the process exit code.
func (a *App) Run(args []string) int {
	stderr := a.stderr()
	if err := a.run(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(stderr, "wdctl: %v\n", err)
		return 1
	}
	return 0
}

func (a *App) run(args []string) (err error) {
	fs := pflag.NewFlagSet("wdctl", pflag.ContinueOnError)
	fs.SetOutput(a.stderr())
	fs.SortFlags = false

	fs.StringP(FlagDevice, "d", DefaultDevice, "Path to the watchdog device")
	fs.String(FlagLogLevel, DefaultLogLevel, "Log level (debug, info, warn, error)")
	fs.String(FlagMetricsFile, DefaultMetricsFile, "Write Prometheus textfile metrics to this path after the run")
	fs.Bool(FlagListDevices, false, "List watchdog device nodes without opening them")
	fs.Bool(FlagVersion, false, "Print build information and exit")
	for _, op := range operations {
		if op.hasArg {
			fs.String(op.flag, "", op.usage)
		} else {
			fs.Bool(op.flag, false, op.usage)
		}
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("%w: unexpected arguments %v", watchdog.ErrInvalidArgument, fs.Args())
	}

	cfg, err := loadConfig(fs)
	if err != nil {
		return err
	}

	if cfg.showVersion {
		fmt.Fprintln(a.stdout(), version.Get().String())
		return nil
	}

	logger, err := a.logger(cfg.logLevel)
	if err != nil {
		return err
	}
	logger.V(1).Info("wdctl starting", "device", cfg.device, "buildInfo", version.GetFormattedBuildInfo())

	if cfg.listDevices {
		a.listDevices()
	}

	// Parse every argument before anything touches the device.
	var actions []action
	for _, op := range operations {
		if !fs.Changed(op.flag) {
			continue
		}
		arg := fs.Lookup(op.flag).Value.String()
		if !op.hasArg && arg != "true" {
			continue
		}
		act, err := op.prepare(arg)
		if err != nil {
			return err
		}
		actions = append(actions, act)
	}

	if len(actions) == 0 {
		if cfg.listDevices {
			return nil
		}
		fmt.Fprintf(a.stderr(), "Usage of wdctl:\n%s", fs.FlagUsages())
		return fmt.Errorf("%w: no operation requested", watchdog.ErrInvalidArgument)
	}

	recorder := metrics.New()
	if cfg.metricsFile != "" {
		defer func() {
			if werr := recorder.WriteTextfile(cfg.metricsFile); werr != nil {
				logger.Error(werr, "Failed to write metrics", "path", cfg.metricsFile)
				err = multierr.Append(err, werr)
			}
		}()
	}

	s := &session{
		path:    cfg.device,
		backend: a.backend(),
		logger:  logger,
		out:     a.stdout(),
		metrics: recorder,
	}
	defer func() {
		if cerr := s.close(); cerr != nil {
			logger.Error(cerr, "Failed to close watchdog, timer may still be armed", "device", cfg.device)
			err = multierr.Append(err, cerr)
		}
	}()

	for _, act := range actions {
		if err := act(s); err != nil {
			return err
		}
	}
	return nil
}

// loadConfig resolves settings as flag > WDCTL_* environment > default
func loadConfig(fs *pflag.FlagSet) (config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	for _, name := range []string{FlagDevice, FlagLogLevel, FlagMetricsFile} {
		if err := v.BindPFlag(name, fs.Lookup(name)); err != nil {
			return config{}, fmt.Errorf("failed to bind flag %s: %w", name, err)
		}
	}

	listDevices, _ := fs.GetBool(FlagListDevices)
	showVersion, _ := fs.GetBool(FlagVersion)

	return config{
		device:      v.GetString(FlagDevice),
		logLevel:    v.GetString(FlagLogLevel),
		metricsFile: v.GetString(FlagMetricsFile),
		listDevices: listDevices,
		showVersion: showVersion,
	}, nil
}

func (a *App) listDevices() {
	find := a.FindDevices
	if find == nil {
		find = watchdog.FindDevices
	}
	for _, device := range find() {
		fmt.Fprintln(a.stdout(), device)
	}
}

func (a *App) logger(level string) (logr.Logger, error) {
	if a.Logger != nil {
		return *a.Logger, nil
	}
	return newLogger(level, a.stderr())
}

func (a *App) backend() watchdog.Backend {
	if a.Backend != nil {
		return a.Backend
	}
	return watchdog.NewSystemBackend()
}

func (a *App) stdout() io.Writer {
	if a.Stdout != nil {
		return a.Stdout
	}
	return os.Stdout
}

func (a *App) stderr() io.Writer {
	if a.Stderr != nil {
		return a.Stderr
	}
	return os.Stderr
}
