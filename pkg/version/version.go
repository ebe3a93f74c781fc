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

package version

import (
	"runtime"

	"github.com/nuclio/logger"
)

type Info struct {
	Label     string `json:"label"`
	GitCommit string `json:"gitCommit"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
	GoVersion string `json:"goVersion"`
}

// these global variables are initialized by the build process through -ldflags
var (
	label     = ""
	gitCommit = ""
)

// Get returns the version information. Unreleased builds are labelled "unstable"
func Get() *Info {
	info := &Info{
		Label:     label,
		GitCommit: gitCommit,
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
		GoVersion: runtime.Version(),
	}

	if info.Label == "" {
		info.Label = "unstable"
	}

	return info
}

// Set will update the stored version info, used primarily for tests
func Set(info *Info) {
	label = info.Label
	gitCommit = info.GitCommit
}

// Log will log the version
func Log(loggerInstance logger.Logger) {
	loggerInstance.InfoWith("Read version", "version", *Get())
}
