// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package version

import (
	"fmt"
	"runtime"
)

// Build information, overridden with -ldflags "-X phone-scan/internal/version.Version=..."
var (
	Version   = "0.0.0-development"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Name is the program name reported by the CLI and the web API
const Name = "phone-scan"

// Info returns formatted version information
func Info() string {
	return fmt.Sprintf("%s %s (commit: %s, built: %s, go: %s, platform: %s)",
		Name, Version, GitCommit, BuildDate, runtime.Version(), platform())
}

// Short returns just the version number
func Short() string {
	return Version
}

// UserAgent returns the value sent in the Server header
func UserAgent() string {
	return Name + "/" + Version
}

// Full returns detailed version information
func Full() map[string]string {
	return map[string]string{
		"name":      Name,
		"version":   Version,
		"commit":    GitCommit,
		"buildDate": BuildDate,
		"goVersion": runtime.Version(),
		"platform":  platform(),
	}
}

func platform() string {
	return runtime.GOOS + "/" + runtime.GOARCH
}
