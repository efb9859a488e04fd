// Copyright 2024
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package pkginfo

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"sort"

	"github.com/rs/zerolog/log"
)

// Set with -ldflags at build time. Empty values fall back to the VCS stamp
// the go tool embeds in the binary.
var (
	BuildDate  string
	CommitHash string
	Version    string
)

// Info describes the running pvsnapshot binary
type Info struct {
	Version    string
	CommitHash string
	BuildDate  string
	Modified   bool
	OSArch     string
	GoVersion  string
}

// Current returns the build info of the running binary
func Current() Info {
	info := Info{
		Version:    Version,
		CommitHash: CommitHash,
		BuildDate:  BuildDate,
		OSArch:     runtime.GOOS + "/" + runtime.GOARCH,
		GoVersion:  runtime.Version(),
	}

	if buildInfo, ok := debug.ReadBuildInfo(); ok {
		applyBuildSettings(&info, buildInfo.Settings)
	}

	if info.Version == "" {
		info.Version = "dev"
	}

	return info
}

func applyBuildSettings(info *Info, settings []debug.BuildSetting) {
	for _, setting := range settings {
		switch setting.Key {
		case "vcs.revision":
			if info.CommitHash == "" {
				info.CommitHash = setting.Value
			}
		case "vcs.time":
			if info.BuildDate == "" {
				info.BuildDate = setting.Value
			}
		case "vcs.modified":
			info.Modified = setting.Value == "true"
		}
	}
}

// BuildVersionString returns a version info string suitable for printing on the command line
func BuildVersionString() string {
	info := Current()

	commit := info.CommitHash
	if info.Modified {
		commit += " (modified)"
	}

	return fmt.Sprintf(`pvsnapshot %s %s

Build Date: %s
Commit: %s
Built with: %s`, info.Version, info.OSArch, info.BuildDate, commit, info.GoVersion)
}

// UserAgent identifies pvsnapshot in outbound HTTP requests
func UserAgent() string {
	return fmt.Sprintf("pvsnapshot/%s (+https://github.com/penny-vault/pvsnapshot)", Current().Version)
}

// GetDependencyList returns an array of all dependencies linked in with this program
// each string is of the form `package="version"`
func GetDependencyList() []string {
	var deps []string

	buildInfo, ok := debug.ReadBuildInfo()
	if !ok {
		log.Error().Msg("could not get package build info")
		return deps
	}

	for _, dep := range buildInfo.Deps {
		deps = append(deps, fmt.Sprintf("%s=%q", dep.Path, dep.Version))
	}

	sort.Strings(deps)

	return deps
}
