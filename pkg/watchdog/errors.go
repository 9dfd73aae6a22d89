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
	"errors"
	"fmt"
)

// Errors for watchdog operations
var (
	// ErrOpen indicates the watchdog device could not be opened
	ErrOpen = errors.New("cannot open watchdog device")
	// ErrInvalidHandle indicates an operation on a watchdog that is not open
	ErrInvalidHandle = errors.New("invalid watchdog handle")
	// ErrInvalidArgument indicates a malformed argument, such as an unparseable number
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrInvalidOption indicates an option mask outside the accepted WDIOS_* bits
	ErrInvalidOption = errors.New("invalid watchdog option")
	// ErrDeviceIO indicates the device-control request itself failed
	ErrDeviceIO = errors.New("watchdog device request failed")
	// ErrClose indicates the magic-write-then-close sequence failed
	ErrClose = errors.New("cannot close watchdog device")
	// ErrUnsupportedPlatform indicates the system backend is not available on this OS
	ErrUnsupportedPlatform = errors.New("watchdog devices are not supported on this platform")
)

// OpError records a failed watchdog operation together with the device path
// and the underlying cause (usually a unix.Errno from the driver).
type OpError struct {
	// Op is the operation name, e.g. "get timeout"
	Op string
	// Path is the device path the handle was opened on
	Path string
	// Kind is one of the package sentinel errors
	Kind error
	// Err is the underlying cause, may be nil
	Err error
}

func (e *OpError) Error() string {
	msg := fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Kind)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes both the sentinel kind and the cause to errors.Is/As.
func (e *OpError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func newOpError(op, path string, kind, err error) *OpError {
	return &OpError{Op: op, Path: path, Kind: kind, Err: err}
}
