/*
Copyright 2025.

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

package watchdog

import (
	"os"
	"path/filepath"
	"sort"
)

// DevicePatterns are the glob patterns scanned by FindDevices
var DevicePatterns = []string{
	"/dev/watchdog*",
	"/dev/wdt*",
}

// FindDevices lists the watchdog character devices present on the system.
// It never opens them, so calling it does not arm any timer.
func FindDevices() []string {
	return findDevices(DevicePatterns)
}

func findDevices(patterns []string) []string {
	devices := []string{}

	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			continue
		}

		for _, match := range matches {
			info, err := os.Stat(match)
			if err != nil {
				continue
			}
			if info.Mode()&os.ModeCharDevice != 0 {
				devices = append(devices, match)
			}
		}
	}

	sort.Strings(devices)
	return devices
}
