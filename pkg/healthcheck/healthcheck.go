/* Apache v2 license
*  Copyright (C) <2019> MindWear
*
*  SPDX-License-Identifier: Apache-2.0
 */

package healthcheck

import (
	"os"

	log "github.com/sirupsen/logrus"
)

// Healthcheck verifies that the batch service's configured directories and
// required environment variables are usable. It returns a process exit code,
// 0 healthy, 1 not.
func Healthcheck(dirs []string, envVars []string) int {
	healthy := true

	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			log.WithFields(log.Fields{
				"Method": "Healthcheck",
				"Path":   dir,
			}).Warning("Configured directory is not usable.")
			healthy = false
		}
	}

	for _, key := range envVars {
		if os.Getenv(key) == "" {
			log.WithFields(log.Fields{
				"Method":   "Healthcheck",
				"Variable": key,
			}).Warning("Required environment variable is unset.")
			healthy = false
		}
	}

	if !healthy {
		return 1
	}
	return 0
}
