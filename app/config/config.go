/* Apache v2 license
*  Copyright (C) <2019> MindWear
*
*  SPDX-License-Identifier: Apache-2.0
 */

package config

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

type (
	variables struct {
		ServiceName         string
		LoggingLevel        string
		ActigraphDir        string
		E4Dir               string
		GENEActivDir        string
		WaveletDir          string
		OrganizedDir        string
		PlacementDir        string
		ChartDir            string
		ColorsFile          string
		PlotDefinitionsFile string
		GENEActivUnits      map[string]string
		PipelineOutputDir   string
		PipelineSubjects    []string
	}
)

// AppConfig exports all the config variables available to the application.
var AppConfig variables

// InitConfig loads the .env file (if any), reads the config file, and applies
// environment overrides. Required values missing from every source are fatal
// configuration errors.
func InitConfig(configFile string) error {
	AppConfig = variables{}

	if err := godotenv.Load(); err != nil {
		log.WithFields(log.Fields{
			"Method": "config.InitConfig",
		}).Debug("no .env file found, relying on the process environment")
	}

	v := viper.New()
	v.SetEnvPrefix("comparison")
	v.AutomaticEnv()
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return errors.Wrapf(err, "unable to read config file %s", configFile)
		}
	}

	AppConfig.ServiceName = getOrDefaultString(v, "serviceName", "comparison-service")
	AppConfig.LoggingLevel = getOrDefaultString(v, "loggingLevel", "info")

	AppConfig.ActigraphDir = getOrDefaultString(v, "actigraphDir", "")
	AppConfig.E4Dir = getOrDefaultString(v, "e4Dir", "")
	AppConfig.GENEActivDir = getOrDefaultString(v, "geneactivDir", "")
	AppConfig.WaveletDir = getOrDefaultString(v, "waveletDir", "")

	AppConfig.OrganizedDir = v.GetString("organizedDir")
	if AppConfig.OrganizedDir == "" {
		return errors.New("required config value organizedDir is not set")
	}
	AppConfig.PlacementDir = v.GetString("placementDir")
	if AppConfig.PlacementDir == "" {
		return errors.New("required config value placementDir is not set")
	}

	AppConfig.ChartDir = getOrDefaultString(v, "chartDir", AppConfig.OrganizedDir)
	AppConfig.ColorsFile = getOrDefaultString(v, "colorsFile", "colors.json")
	AppConfig.PlotDefinitionsFile = getOrDefaultString(v, "plotDefinitionsFile", "plots.json")

	AppConfig.GENEActivUnits = getOrDefaultStringMap(v, "geneactivUnits", map[string]string{})
	AppConfig.PipelineOutputDir = getOrDefaultString(v, "pipelineOutputDir", "")
	AppConfig.PipelineSubjects = v.GetStringSlice("pipelineSubjects")

	return nil
}

func getOrDefaultString(v *viper.Viper, key, defaultValue string) string {
	if !v.IsSet(key) {
		return defaultValue
	}
	return v.GetString(key)
}

func getOrDefaultStringMap(v *viper.Viper, key string, defaultValue map[string]string) map[string]string {
	if !v.IsSet(key) {
		return defaultValue
	}
	return v.GetStringMapString(key)
}

// RequireDirs verifies that the given directories exist, for the preflight
// check.
func RequireDirs(paths ...string) error {
	for _, path := range paths {
		if path == "" {
			continue
		}
		info, err := os.Stat(path)
		if err != nil {
			return errors.Wrapf(err, "configured directory %s is not usable", path)
		}
		if !info.IsDir() {
			return errors.Errorf("configured path %s is not a directory", path)
		}
	}
	return nil
}
