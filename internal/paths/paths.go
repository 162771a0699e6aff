// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package paths

import (
	"os"
	"path/filepath"
)

// ConfigDirEnv overrides the per-user configuration directory
const ConfigDirEnv = "PHONE_SCAN_CONFIG_DIR"

// GetConfigDir returns the phone-scan configuration directory. It is
// $PHONE_SCAN_CONFIG_DIR when set, otherwise phone-scan under the platform
// user config directory ($XDG_CONFIG_HOME or ~/.config on Unix, %AppData%
// on Windows). It returns "" when neither can be determined.
func GetConfigDir() string {
	if dir := os.Getenv(ConfigDirEnv); dir != "" {
		return dir
	}

	base, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(base, "phone-scan")
}

// GetConfigFile returns the path to the per-user config file
func GetConfigFile() string {
	return join("config.yaml")
}

// GetSuppressionsFile returns the path to the per-user suppressions file
func GetSuppressionsFile() string {
	return join("suppressions.yaml")
}

func join(name string) string {
	dir := GetConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, name)
}
