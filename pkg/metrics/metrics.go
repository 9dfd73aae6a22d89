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

// Package metrics records the outcome of watchdog operations in a private
// Prometheus registry that can be dumped in the node-exporter textfile format.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/medik8s/wdctl/pkg/watchdog"
)

// Result label values
const (
	ResultSuccess = "success"
	ResultError   = "error"
)

// Flag sources for the flag gauge
const (
	SourceStatus     = "status"
	SourceBootStatus = "bootstatus"
	SourceOptions    = "options"
)

// Recorder holds the wdctl metrics for one invocation
type Recorder struct {
	registry *prometheus.Registry

	// wdctl_operations_total: operations issued, by operation and result
	operations *prometheus.CounterVec
	// wdctl_keepalives_total: successful keepalive requests
	keepalives prometheus.Counter
	// wdctl_watchdog_*: last values read from the device
	timeoutSeconds        prometheus.Gauge
	preTimeoutSeconds     prometheus.Gauge
	timeLeftSeconds       prometheus.Gauge
	temperatureFahrenheit prometheus.Gauge
	// wdctl_watchdog_flag: 1 for each bit set in the last status/bootstatus/options read
	flags *prometheus.GaugeVec
}

// New creates a Recorder with its own registry
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wdctl_operations_total",
			Help: "Watchdog device operations issued, by operation and result",
		}, []string{"operation", "result"}),
		keepalives: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wdctl_keepalives_total",
			Help: "Total number of times the watchdog has been successfully petted",
		}),
		timeoutSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "wdctl_watchdog_timeout_seconds",
			Help: "Configured watchdog timeout",
		}),
		preTimeoutSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "wdctl_watchdog_pretimeout_seconds",
			Help: "Configured watchdog pre-timeout (0 = disabled)",
		}),
		timeLeftSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "wdctl_watchdog_timeleft_seconds",
			Help: "Seconds left before the watchdog resets the system",
		}),
		temperatureFahrenheit: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "wdctl_watchdog_temperature_fahrenheit",
			Help: "Temperature reported by the watchdog card",
		}),
		flags: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "wdctl_watchdog_flag",
			Help: "Watchdog flag bits (1 = set) as last read, by source and flag",
		}, []string{"source", "flag"}),
	}

	r.registry.MustRegister(
		r.operations,
		r.keepalives,
		r.timeoutSeconds,
		r.preTimeoutSeconds,
		r.timeLeftSeconds,
		r.temperatureFahrenheit,
		r.flags,
	)
	return r
}

// Registry exposes the underlying registry, e.g. for testutil
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// ObserveOperation counts one operation and its result
func (r *Recorder) ObserveOperation(operation string, err error) {
	result := ResultSuccess
	if err != nil {
		result = ResultError
	}
	r.operations.WithLabelValues(operation, result).Inc()
}

// ObserveKeepalive counts a successful pet
func (r *Recorder) ObserveKeepalive() {
	r.keepalives.Inc()
}

// SetTimeout records the timeout last read or written
func (r *Recorder) SetTimeout(seconds uint32) {
	r.timeoutSeconds.Set(float64(seconds))
}

// SetPreTimeout records the pre-timeout last read or written
func (r *Recorder) SetPreTimeout(seconds uint32) {
	r.preTimeoutSeconds.Set(float64(seconds))
}

// SetTimeLeft records the time left last read
func (r *Recorder) SetTimeLeft(seconds uint32) {
	r.timeLeftSeconds.Set(float64(seconds))
}

// SetTemperature records the temperature last read
func (r *Recorder) SetTemperature(fahrenheit int32) {
	r.temperatureFahrenheit.Set(float64(fahrenheit))
}

// ObserveFlags sets one gauge per known bit for the given source.
// FlagsUnknown is exported as a single flag="unknown" series.
func (r *Recorder) ObserveFlags(source string, flags watchdog.Flags) {
	if flags == watchdog.FlagsUnknown {
		r.flags.WithLabelValues(source, "unknown").Set(1)
		return
	}
	for _, fd := range watchdog.FlagDescriptions {
		v := 0.0
		if flags&fd.Flag != 0 {
			v = 1
		}
		r.flags.WithLabelValues(source, fd.Name).Set(v)
	}
}

// WriteTextfile atomically writes all metrics to path in the text exposition format
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}
