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

package cli

import "github.com/medik8s/wdctl/pkg/watchdog"

// wdctl command line flag constants
const (
	// FlagDevice specifies the path to the watchdog device
	FlagDevice = "device"

	// FlagLogLevel specifies the log level (debug, info, warn, error)
	FlagLogLevel = "log-level"

	// FlagMetricsFile specifies where to write Prometheus textfile metrics
	FlagMetricsFile = "metrics-file"

	// FlagListDevices lists watchdog device nodes without opening them
	FlagListDevices = "list-devices"

	// FlagVersion prints build information
	FlagVersion = "version"

	// Device operation flags, see operations.go for their order
	FlagSetTimeout    = "set-timeout"
	FlagSetPreTimeout = "set-pretimeout"
	FlagSetOptions    = "set-options"
	FlagKeepalive     = "keepalive"
	FlagGetTimeout    = "get-timeout"
	FlagGetPreTimeout = "get-pretimeout"
	FlagGetTimeLeft   = "get-timeleft"
	FlagGetBootStatus = "get-bootstatus"
	FlagGetStatus     = "get-status"
	FlagGetTemp       = "get-temp"
	FlagGetInfo       = "get-info"
)

// Default values for wdctl flags
const (
	// DefaultDevice is the default path to the watchdog device
	DefaultDevice = watchdog.DefaultDevicePath

	// DefaultLogLevel is the default log level
	DefaultLogLevel = "info"

	// DefaultMetricsFile disables metrics output
	DefaultMetricsFile = ""
)

// EnvPrefix is the prefix of environment variables overriding flag defaults,
// e.g. WDCTL_DEVICE or WDCTL_LOG_LEVEL
const EnvPrefix = "WDCTL"
