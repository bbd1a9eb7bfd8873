/* Apache v2 license
*  Copyright (C) <2019> MindWear
*
*  SPDX-License-Identifier: Apache-2.0
 */

package healthcheck

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
)

func TestHealthcheck(t *testing.T) {
	dir, err := ioutil.TempDir("", "healthcheck")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	os.Setenv("HEALTHCHECK_TEST_VAR", "set")
	defer os.Unsetenv("HEALTHCHECK_TEST_VAR")

	if code := Healthcheck([]string{dir, ""}, []string{"HEALTHCHECK_TEST_VAR"}); code != 0 {
		t.Errorf("expected a healthy exit code, got %d", code)
	}

	if code := Healthcheck([]string{filepath.Join(dir, "missing")}, nil); code != 1 {
		t.Errorf("expected a missing directory to be unhealthy, got %d", code)
	}

	os.Unsetenv("HEALTHCHECK_TEST_VAR")
	if code := Healthcheck(nil, []string{"HEALTHCHECK_TEST_VAR"}); code != 1 {
		t.Errorf("expected an unset variable to be unhealthy, got %d", code)
	}
}
