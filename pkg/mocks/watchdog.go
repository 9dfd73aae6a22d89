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

package mocks

import (
	"fmt"
	"sync"

	"github.com/medik8s/wdctl/pkg/watchdog"
)

// Backend call names recorded in Call.Method
const (
	MethodOpen    = "open"
	MethodGet     = "get"
	MethodSet     = "set"
	MethodGetInfo = "getinfo"
	MethodWrite   = "write"
	MethodClose   = "close"
)

// Call is one recorded backend invocation
type Call struct {
	Method  string
	Path    string
	FD      int
	Request watchdog.Request
	Value   uint32
	Data    []byte
}

// WatchdogBackend is an in-memory watchdog.Backend that echoes stored state.
// Set requests update the exported fields and Get requests read them back.
// Every call is recorded in order.
type WatchdogBackend struct {
	Timeout     uint32
	PreTimeout  uint32
	TimeLeft    uint32
	BootStatus  watchdog.Flags
	Status      watchdog.Flags
	Temperature int32
	Options     watchdog.Options
	Info        watchdog.Info

	// KeepaliveCount counts successful keepalive requests
	KeepaliveCount int

	// Injected failures
	OpenErr       error
	WriteErr      error
	CloseErr      error
	RequestErrors map[watchdog.Request]error

	calls  []Call
	nextFD int
	mutex  sync.Mutex
}

// NewWatchdogBackend creates a mock backend with a 60 second timeout and a
// driver that advertises settimeout, magicclose and keepaliveping.
func NewWatchdogBackend() *WatchdogBackend {
	return &WatchdogBackend{
		Timeout:  60,
		TimeLeft: 60,
		Info: watchdog.Info{
			Options:         watchdog.FlagSetTimeout | watchdog.FlagMagicClose | watchdog.FlagKeepalivePing,
			FirmwareVersion: 0,
			Identity:        "mock0",
		},
		RequestErrors: map[watchdog.Request]error{},
		nextFD:        3,
	}
}

// FailRequest makes every subsequent req fail with err
func (m *WatchdogBackend) FailRequest(req watchdog.Request, err error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.RequestErrors == nil {
		m.RequestErrors = map[watchdog.Request]error{}
	}
	m.RequestErrors[req] = err
}

// Open implements watchdog.Backend
func (m *WatchdogBackend) Open(path string) (int, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.calls = append(m.calls, Call{Method: MethodOpen, Path: path, FD: watchdog.InvalidFD})
	if m.OpenErr != nil {
		return watchdog.InvalidFD, m.OpenErr
	}
	fd := m.nextFD
	m.nextFD++
	return fd, nil
}

// Get implements watchdog.Backend
func (m *WatchdogBackend) Get(fd int, req watchdog.Request) (uint32, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.calls = append(m.calls, Call{Method: MethodGet, FD: fd, Request: req})
	if err := m.RequestErrors[req]; err != nil {
		return 0, err
	}

	switch req {
	case watchdog.RequestGetTimeout:
		return m.Timeout, nil
	case watchdog.RequestGetPreTimeout:
		return m.PreTimeout, nil
	case watchdog.RequestGetTimeLeft:
		return m.TimeLeft, nil
	case watchdog.RequestGetBootStatus:
		return uint32(m.BootStatus), nil
	case watchdog.RequestGetStatus:
		return uint32(m.Status), nil
	case watchdog.RequestGetTemp:
		return uint32(m.Temperature), nil
	default:
		return 0, fmt.Errorf("mock: %s is not a get request", req)
	}
}

// Set implements watchdog.Backend
func (m *WatchdogBackend) Set(fd int, req watchdog.Request, value uint32) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.calls = append(m.calls, Call{Method: MethodSet, FD: fd, Request: req, Value: value})
	if err := m.RequestErrors[req]; err != nil {
		return err
	}

	switch req {
	case watchdog.RequestSetTimeout:
		m.Timeout = value
		m.TimeLeft = value
	case watchdog.RequestSetPreTimeout:
		m.PreTimeout = value
	case watchdog.RequestSetOptions:
		m.Options = watchdog.Options(value)
	case watchdog.RequestKeepalive:
		m.TimeLeft = m.Timeout
		m.KeepaliveCount++
	default:
		return fmt.Errorf("mock: %s is not a set request", req)
	}
	return nil
}

// GetInfo implements watchdog.Backend
func (m *WatchdogBackend) GetInfo(fd int) (watchdog.Info, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.calls = append(m.calls, Call{Method: MethodGetInfo, FD: fd, Request: watchdog.RequestGetSupport})
	if err := m.RequestErrors[watchdog.RequestGetSupport]; err != nil {
		return watchdog.Info{}, err
	}
	return m.Info, nil
}

// Write implements watchdog.Backend
func (m *WatchdogBackend) Write(fd int, p []byte) (int, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.calls = append(m.calls, Call{Method: MethodWrite, FD: fd, Data: append([]byte(nil), p...)})
	if m.WriteErr != nil {
		return 0, m.WriteErr
	}
	return len(p), nil
}

// Close implements watchdog.Backend
func (m *WatchdogBackend) Close(fd int) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.calls = append(m.calls, Call{Method: MethodClose, FD: fd})
	return m.CloseErr
}

// Calls returns a copy of every recorded call in order
func (m *WatchdogBackend) Calls() []Call {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	out := make([]Call, len(m.calls))
	copy(out, m.calls)
	return out
}

// Methods returns the recorded method names in order
func (m *WatchdogBackend) Methods() []string {
	calls := m.Calls()
	methods := make([]string, 0, len(calls))
	for _, c := range calls {
		methods = append(methods, c.Method)
	}
	return methods
}

// CallCount returns the number of recorded calls of the given method,
// or of all methods when method is empty
func (m *WatchdogBackend) CallCount(method string) int {
	count := 0
	for _, c := range m.Calls() {
		if method == "" || c.Method == method {
			count++
		}
	}
	return count
}

// IoctlCount returns the number of device-control requests issued
func (m *WatchdogBackend) IoctlCount() int {
	return m.CallCount(MethodGet) + m.CallCount(MethodSet) + m.CallCount(MethodGetInfo)
}

// Reset clears the call log
func (m *WatchdogBackend) Reset() {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.calls = nil
}
