/*
Copyright 2017 The Nuclio Authors.

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

// Package harnesscli is the harness command line: run scenarios, list them, and print
// the version
package harnesscli

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/nuclio/percentile-harness/pkg/harness"
	"github.com/nuclio/percentile-harness/pkg/harnessconfig"
	"github.com/nuclio/percentile-harness/pkg/version"

	"github.com/nuclio/errors"
	"github.com/nuclio/logger"
	nucliozap "github.com/nuclio/zap"
	"github.com/spf13/cobra"
)

type RootCommandeer struct {
	loggerInstance logger.Logger
	cmd            *cobra.Command
	config         *harnessconfig.Config
	configPath     string
	verbose        bool
	logFormat      string
	estimatorKind  string
	lifetime       string
	namespace      string
}

func NewRootCommandeer() *RootCommandeer {
	commandeer := &RootCommandeer{}

	cmd := &cobra.Command{
		Use:   "harness [selector]",
		Short: "Compare a streaming percentile estimator against exact percentiles",
		Long: `Runs the configured scenarios one after the other, reporting the exact and the
estimated percentiles of what each scenario generated every reporter period.

The optional selector picks the scenarios whose 1-based ordinal contains it (e.g. "13"
runs the first and the third), or the one scenario named exactly like it.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			selector := ""
			if len(args) == 1 {
				selector = args[0]
			}

			return commandeer.run(cmd.OutOrStdout(), selector)
		},
	}

	defaultConfigPath := os.Getenv("HARNESS_CONFIG")

	cmd.PersistentFlags().StringVarP(&commandeer.configPath, "config", "c", defaultConfigPath, "Path of a YAML configuration file (defaults apply when missing)")
	cmd.PersistentFlags().BoolVarP(&commandeer.verbose, "verbose", "v", false, "Verbose output")
	cmd.PersistentFlags().StringVarP(&commandeer.logFormat, "log-format", "", "", "Log format - \"console\" or \"json\"")
	cmd.PersistentFlags().StringVarP(&commandeer.estimatorKind, "estimator", "e", "", "Estimator kind, overriding the configuration")
	cmd.PersistentFlags().StringVarP(&commandeer.lifetime, "lifetime", "l", "", "How long each scenario runs, overriding the configuration")
	cmd.PersistentFlags().StringVarP(&commandeer.namespace, "namespace", "n", "", "Metric namespace, overriding the configuration")

	// add children
	cmd.AddCommand(
		newScenariosCommandeer(commandeer).cmd,
		newVersionCommandeer(commandeer).cmd,
	)

	commandeer.cmd = cmd

	return commandeer
}

// Execute uses os.Args to execute the command
func (rc *RootCommandeer) Execute() error {
	return rc.cmd.Execute()
}

// GetCmd returns the underlying cobra command
func (rc *RootCommandeer) GetCmd() *cobra.Command {
	return rc.cmd
}

func (rc *RootCommandeer) run(output io.Writer, selector string) error {
	if err := rc.initialize(); err != nil {
		return errors.Wrap(err, "Failed to initialize")
	}

	version.Log(rc.loggerInstance)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	harnessInstance, err := harness.NewHarness(rc.loggerInstance, rc.config, output)
	if err != nil {
		return errors.Wrap(err, "Failed to create harness")
	}

	return harnessInstance.Run(ctx, selector)
}

func (rc *RootCommandeer) initialize() error {
	var err error

	if err = rc.readConfig(); err != nil {
		return errors.Wrap(err, "Failed to read configuration")
	}

	rc.loggerInstance, err = rc.createLogger()
	if err != nil {
		return errors.Wrap(err, "Failed to create logger")
	}

	rc.loggerInstance.DebugWith("Read configuration",
		"path", rc.configPath,
		"estimator", rc.config.Estimator.Kind,
		"scenarios", len(rc.config.Scenarios))

	return nil
}

// readConfig reads the configuration and applies the flags on top of it
func (rc *RootCommandeer) readConfig() error {
	reader, err := harnessconfig.NewReader()
	if err != nil {
		return errors.Wrap(err, "Failed to create configuration reader")
	}

	rc.config, err = reader.ReadFileOrDefault(rc.configPath)
	if err != nil {
		return errors.Wrap(err, "Failed to read configuration file")
	}

	if rc.verbose {
		rc.config.Logger.Level = harnessconfig.LoggerLevelDebug
	}

	if rc.logFormat != "" {
		rc.config.Logger.Format = rc.logFormat
	}

	if rc.estimatorKind != "" {
		rc.config.Estimator.Kind = rc.estimatorKind
	}

	if rc.lifetime != "" {
		rc.config.Lifetime = rc.lifetime
	}

	if rc.namespace != "" {
		rc.config.Namespace = rc.namespace
	}

	return rc.config.Validate()
}

func (rc *RootCommandeer) createLogger() (logger.Logger, error) {
	var loggerLevel nucliozap.Level

	switch rc.config.Logger.Level {
	case harnessconfig.LoggerLevelDebug:
		loggerLevel = nucliozap.DebugLevel
	case harnessconfig.LoggerLevelWarn:
		loggerLevel = nucliozap.WarnLevel
	case harnessconfig.LoggerLevelError:
		loggerLevel = nucliozap.ErrorLevel
	default:
		loggerLevel = nucliozap.InfoLevel
	}

	var loggerInstance *nucliozap.NuclioZap
	var err error

	if rc.config.Logger.Format == harnessconfig.LoggerFormatJSON {
		loggerInstance, err = nucliozap.NewNuclioZap("harness", "json", nil, os.Stdout, os.Stderr, loggerLevel)
	} else {
		loggerInstance, err = nucliozap.NewNuclioZapCmd("harness", loggerLevel, nucliozap.NewRedactor(os.Stdout))
	}

	if err != nil {
		return nil, errors.Wrap(err, "Failed to create logger")
	}

	return loggerInstance, nil
}
