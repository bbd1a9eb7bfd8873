/* Apache v2 license
*  Copyright (C) <2019> MindWear
*
*  SPDX-License-Identifier: Apache-2.0
 */

package main

import (
	"context"
	"os"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	metrics "github.com/rcrowley/go-metrics"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/mindwear/comparison-service/app/chart"
	"github.com/mindwear/comparison-service/app/config"
	"github.com/mindwear/comparison-service/app/device"
	"github.com/mindwear/comparison-service/app/mindboggle"
	"github.com/mindwear/comparison-service/app/organize"
	"github.com/mindwear/comparison-service/pkg/healthcheck"
)

func main() {
	mConfigurationError := metrics.GetOrRegisterGauge("Comparison.Main.ConfigurationError", nil)
	mOrganizeError := metrics.GetOrRegisterGauge("Comparison.Main.OrganizeError", nil)
	mChartError := metrics.GetOrRegisterGauge("Comparison.Main.ChartError", nil)
	mPipelineError := metrics.GetOrRegisterGauge("Comparison.Main.PipelineError", nil)

	// Ensure simple text format
	log.SetFormatter(&log.TextFormatter{
		DisableColors: true,
		FullTimestamp: true,
	})

	var configFile string
	runID := uuid.New().String()

	rootCmd := &cobra.Command{
		Use:   "comparison-service",
		Short: "Batch service comparing wearable sensor exports across devices",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.InitConfig(configFile); err != nil {
				mConfigurationError.Update(1)
				return err
			}
			setLoggingLevel(config.AppConfig.LoggingLevel)
			log.WithFields(log.Fields{
				"Method":  "main",
				"Action":  "Start",
				"RunID":   runID,
				"Command": cmd.Name(),
			}).Info("Starting " + config.AppConfig.ServiceName)
			return nil
		},
	}
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "path to the config file")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "organize",
		Short: "Ingest vendor exports into organized per-device tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			units, err := geneactivUnits()
			if err != nil {
				errorHandler("bad geneactiv unit config", err, mConfigurationError)
				return err
			}

			results := organize.Run(organize.Config{
				ActigraphDir:   config.AppConfig.ActigraphDir,
				E4Dir:          config.AppConfig.E4Dir,
				GENEActivDir:   config.AppConfig.GENEActivDir,
				WaveletDir:     config.AppConfig.WaveletDir,
				OrganizedDir:   config.AppConfig.OrganizedDir,
				GENEActivUnits: units,
			})
			for _, result := range results {
				errorHandler("unable to organize "+string(result.Device)+" "+result.Sensor,
					result.Err, mOrganizeError)
			}
			return nil
		},
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "chart",
		Short: "Build per-person comparison tables from the placement log",
		RunE: func(cmd *cobra.Command, args []string) error {
			err := chart.BuildAll(chart.BuildConfig{
				OrganizedDir: config.AppConfig.OrganizedDir,
				PlacementDir: config.AppConfig.PlacementDir,
			})
			errorHandler("unable to build comparison tables", err, mChartError)
			return err
		},
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "plot",
		Short: "Render normalized overlay figures and cross-correlations",
		RunE: func(cmd *cobra.Command, args []string) error {
			colors, err := chart.LoadColors(config.AppConfig.ColorsFile)
			if err != nil {
				errorHandler("unable to load colors", err, mConfigurationError)
				return err
			}
			definitions, err := chart.LoadPlotDefinitions(config.AppConfig.PlotDefinitionsFile)
			if err != nil {
				errorHandler("unable to load plot definitions", err, mConfigurationError)
				return err
			}

			chart.PlotAll(chart.PlotConfig{
				OrganizedDir: config.AppConfig.OrganizedDir,
				PlacementDir: config.AppConfig.PlacementDir,
				ChartDir:     config.AppConfig.ChartDir,
				Colors:       colors,
			}, definitions)
			return nil
		},
	})

	var execute bool
	pipelineCmd := &cobra.Command{
		Use:   "pipeline",
		Short: "Build the neuroimaging workflow graph and optionally run it",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := mindboggle.LoadEnvironment()
			if err != nil {
				fatalErrorHandler("neuroimaging environment is incomplete", err, mConfigurationError)
			}

			workflow, err := mindboggle.BuildPipeline(env,
				config.AppConfig.PipelineOutputDir,
				config.AppConfig.PipelineSubjects,
				mindboggle.Options{})
			if err != nil {
				errorHandler("unable to build the workflow graph", err, mPipelineError)
				return err
			}

			if !execute {
				sorted, err := workflow.Sort()
				if err != nil {
					errorHandler("workflow graph is not runnable", err, mPipelineError)
					return err
				}
				log.WithFields(log.Fields{
					"Method": "main",
					"Nodes":  len(sorted),
				}).Info("Workflow graph built, not executing")
				return nil
			}

			err = workflow.Run(context.Background(), mindboggle.ExecRunner{})
			errorHandler("workflow execution failed", err, mPipelineError)
			return err
		},
	}
	pipelineCmd.Flags().BoolVar(&execute, "execute", false, "run the workflow after building it")
	rootCmd.AddCommand(pipelineCmd)

	rootCmd.AddCommand(&cobra.Command{
		Use:   "check",
		Short: "Preflight the configured directories and environment",
		Run: func(cmd *cobra.Command, args []string) {
			dirs := []string{
				config.AppConfig.OrganizedDir,
				config.AppConfig.PlacementDir,
			}
			var envVars []string
			if config.AppConfig.PipelineOutputDir != "" {
				envVars = []string{"SUBJECTS_DIR", "MINDBOGGLE", "MINDBOGGLE_DATA", "MINDBOGGLE_TOOLS"}
			}
			os.Exit(healthcheck.Healthcheck(dirs, envVars))
		},
	})

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// geneactivUnits converts the configured filename substring lookup into
// device identities, rejecting unknown unit names.
func geneactivUnits() (map[string]device.Device, error) {
	units := map[string]device.Device{}
	for substring, name := range config.AppConfig.GENEActivUnits {
		d := device.Device(name)
		if !device.Valid(d) {
			return nil, errors.Errorf("unknown GENEActiv unit %q for %q", name, substring)
		}
		units[substring] = d
	}
	return units, nil
}
