/* Apache v2 license
*  Copyright (C) <2019> MindWear
*
*  SPDX-License-Identifier: Apache-2.0
 */

package main

import (
	"testing"

	log "github.com/sirupsen/logrus"

	"github.com/mindwear/comparison-service/app/config"
)

func TestSetLoggingLevel(t *testing.T) {
	cases := []struct {
		level string
		want  log.Level
	}{
		{"error", log.ErrorLevel},
		{"WARN", log.WarnLevel},
		{"debug", log.DebugLevel},
		{"nonsense", log.InfoLevel},
	}

	for _, tc := range cases {
		setLoggingLevel(tc.level)
		if log.GetLevel() != tc.want {
			t.Errorf("level %q: expected %s, got %s", tc.level, tc.want, log.GetLevel())
		}
	}
}

func TestGeneactivUnits(t *testing.T) {
	config.AppConfig.GENEActivUnits = map[string]string{
		"jon":   "GENEActiv_black",
		"alice": "GENEActiv_pink",
	}

	units, err := geneactivUnits()
	if err != nil {
		t.Fatal(err)
	}
	if len(units) != 2 {
		t.Fatalf("expected 2 units, got %d", len(units))
	}

	config.AppConfig.GENEActivUnits = map[string]string{"jon": "NotADevice"}
	if _, err := geneactivUnits(); err == nil {
		t.Error("expected an unknown unit name to be rejected")
	}
}
