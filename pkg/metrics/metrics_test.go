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

package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/medik8s/wdctl/pkg/watchdog"
)

func TestObserveOperation(t *testing.T) {
	r := New()

	r.ObserveOperation("get timeout", nil)
	r.ObserveOperation("get timeout", nil)
	r.ObserveOperation("keepalive", errors.New("boom"))

	if v := testutil.ToFloat64(r.operations.WithLabelValues("get timeout", ResultSuccess)); v != 2 {
		t.Errorf("Expected 2 successful get timeout, got %v", v)
	}
	if v := testutil.ToFloat64(r.operations.WithLabelValues("keepalive", ResultError)); v != 1 {
		t.Errorf("Expected 1 failed keepalive, got %v", v)
	}
	if v := testutil.ToFloat64(r.operations.WithLabelValues("keepalive", ResultSuccess)); v != 0 {
		t.Errorf("Expected 0 successful keepalive, got %v", v)
	}
}

func TestGauges(t *testing.T) {
	r := New()

	r.SetTimeout(60)
	r.SetPreTimeout(10)
	r.SetTimeLeft(42)
	r.SetTemperature(-4)
	r.ObserveKeepalive()

	tests := []struct {
		name     string
		got      float64
		expected float64
	}{
		{"timeout", testutil.ToFloat64(r.timeoutSeconds), 60},
		{"pretimeout", testutil.ToFloat64(r.preTimeoutSeconds), 10},
		{"timeleft", testutil.ToFloat64(r.timeLeftSeconds), 42},
		{"temperature", testutil.ToFloat64(r.temperatureFahrenheit), -4},
		{"keepalives", testutil.ToFloat64(r.keepalives), 1},
	}
	for _, tt := range tests {
		if tt.got != tt.expected {
			t.Errorf("%s: expected %v, got %v", tt.name, tt.expected, tt.got)
		}
	}
}

func TestObserveFlags(t *testing.T) {
	r := New()

	r.ObserveFlags(SourceBootStatus, watchdog.FlagCardReset|watchdog.FlagOverheat)

	if v := testutil.ToFloat64(r.flags.WithLabelValues(SourceBootStatus, "cardreset")); v != 1 {
		t.Errorf("Expected cardreset=1, got %v", v)
	}
	if v := testutil.ToFloat64(r.flags.WithLabelValues(SourceBootStatus, "fanfault")); v != 0 {
		t.Errorf("Expected fanfault=0, got %v", v)
	}
	if n := testutil.CollectAndCount(r.flags); n != len(watchdog.FlagDescriptions) {
		t.Errorf("Expected one series per known flag, got %d", n)
	}

	r.ObserveFlags(SourceStatus, watchdog.FlagsUnknown)
	if v := testutil.ToFloat64(r.flags.WithLabelValues(SourceStatus, "unknown")); v != 1 {
		t.Errorf("Expected unknown=1, got %v", v)
	}
}

func TestWriteTextfile(t *testing.T) {
	r := New()
	r.SetTimeout(8)
	r.ObserveOperation("set timeout", nil)

	path := filepath.Join(t.TempDir(), "wdctl.prom")
	if err := r.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read textfile: %v", err)
	}
	content := string(data)
	for _, want := range []string{
		"wdctl_watchdog_timeout_seconds 8",
		`wdctl_operations_total{operation="set timeout",result="success"} 1`,
	} {
		if !strings.Contains(content, want) {
			t.Errorf("Expected textfile to contain %q, got:\n%s", want, content)
		}
	}
}

func TestWriteTextfileBadPath(t *testing.T) {
	r := New()
	err := r.WriteTextfile(filepath.Join(t.TempDir(), "missing-dir", "wdctl.prom"))
	if err == nil {
		t.Error("Expected error for unwritable path")
	}
}
