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

// Package watchdog controls a Linux watchdog timer through its device node.
//
// Every method on Watchdog issues exactly one synchronous device-control
// request and reports failure immediately; nothing is retried and no
// background petting takes place. Feeding the watchdog periodically is the
// caller's job.
//
// A Watchdog is not safe for concurrent use.
package watchdog

import (
	"fmt"
	"io"

	"github.com/go-logr/logr"
	"go.uber.org/multierr"
)

const (
	// DefaultDevicePath is used when Open is given an empty path
	DefaultDevicePath = "/dev/watchdog"

	// MagicCloseByte is written right before close. Drivers supporting
	// WDIOF_MAGICCLOSE only stop the timer on close if they saw it; without
	// it the timer stays armed and the system will be reset.
	MagicCloseByte byte = 'V'

	// InvalidFD marks a Watchdog that is not (or no longer) open
	InvalidFD = -1
)

// Watchdog represents one open session on a watchdog device.
type Watchdog struct {
	// fd is the descriptor handed out by the backend, InvalidFD once closed
	fd int
	// path is the filesystem path to the watchdog device
	path string
	// backend performs the actual device-control calls
	backend Backend
	// logger for logging watchdog operations
	logger logr.Logger
}

// Open opens the watchdog device at path using the system backend.
// An empty path selects DefaultDevicePath.
//
// Opening a watchdog device usually arms the timer: the caller must either
// pet it with Keepalive or disarm it with Close.
func Open(path string) (*Watchdog, error) {
	return OpenWithLogger(path, logr.Discard())
}

// OpenWithLogger opens the watchdog device with a logger for device operations
func OpenWithLogger(path string, logger logr.Logger) (*Watchdog, error) {
	return OpenWithBackend(path, NewSystemBackend(), logger)
}

// OpenWithBackend opens path through the given backend.
//
// Parameters:
//   - path: device path, empty for DefaultDevicePath
//   - backend: device-control implementation, e.g. NewSystemBackend() or a fake
//   - logger: logger for device operations
//
// Returns:
//   - *Watchdog: an open handle
//   - error: an *OpError matching ErrOpen that names the path attempted
func OpenWithBackend(path string, backend Backend, logger logr.Logger) (*Watchdog, error) {
	if path == "" {
		path = DefaultDevicePath
	}
	if backend == nil {
		return nil, newOpError("open", path, ErrInvalidArgument, fmt.Errorf("nil backend"))
	}

	fd, err := backend.Open(path)
	if err != nil {
		return nil, newOpError("open", path, ErrOpen, err)
	}

	w := &Watchdog{
		fd:      fd,
		path:    path,
		backend: backend,
		logger:  logger.WithName("watchdog").WithValues("path", path),
	}
	w.logger.V(1).Info("Watchdog device opened")
	return w, nil
}

// Close writes MagicCloseByte and then closes the descriptor.
//
// Both steps are always attempted. If either fails the returned error
// matches ErrClose and carries every cause. The handle is invalid
// afterwards in all cases; closing it again fails with ErrInvalidHandle.
func (w *Watchdog) Close() error {
	if err := w.check("close"); err != nil {
		return err
	}

	var errs error
	n, err := w.backend.Write(w.fd, []byte{MagicCloseByte})
	if err == nil && n != 1 {
		err = io.ErrShortWrite
	}
	if err != nil {
		errs = multierr.Append(errs, fmt.Errorf("write magic close character: %w", err))
	}
	if err := w.backend.Close(w.fd); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("close descriptor: %w", err))
	}
	w.fd = InvalidFD

	if errs != nil {
		w.logger.Error(errs, "Watchdog close sequence failed, timer may still be armed")
		return newOpError("close", w.path, ErrClose, errs)
	}

	w.logger.V(1).Info("Watchdog device closed")
	return nil
}

// IsOpen returns true if the handle can still be used for operations.
func (w *Watchdog) IsOpen() bool {
	return w != nil && w.backend != nil && w.fd != InvalidFD
}

// Path returns the filesystem path of the watchdog device.
func (w *Watchdog) Path() string {
	if w == nil {
		return ""
	}
	return w.path
}

// Timeout returns the configured timeout in seconds.
func (w *Watchdog) Timeout() (uint32, error) {
	return w.get("get timeout", RequestGetTimeout)
}

// SetTimeout sets the timeout in seconds. The driver may clamp the value;
// read it back with Timeout to see what was applied.
func (w *Watchdog) SetTimeout(seconds uint32) error {
	return w.set("set timeout", RequestSetTimeout, seconds)
}

// PreTimeout returns the pre-timeout in seconds, 0 meaning disabled.
func (w *Watchdog) PreTimeout() (uint32, error) {
	return w.get("get pretimeout", RequestGetPreTimeout)
}

// SetPreTimeout sets the pre-timeout in seconds.
func (w *Watchdog) SetPreTimeout(seconds uint32) error {
	return w.set("set pretimeout", RequestSetPreTimeout, seconds)
}

// Keepalive pets the watchdog, restarting its countdown.
func (w *Watchdog) Keepalive() error {
	return w.set("keepalive", RequestKeepalive, 0)
}

// TimeLeft returns the seconds remaining before the watchdog resets the system.
func (w *Watchdog) TimeLeft() (uint32, error) {
	return w.get("get timeleft", RequestGetTimeLeft)
}

// BootStatus returns the flags describing the cause of the last boot.
func (w *Watchdog) BootStatus() (Flags, error) {
	v, err := w.get("get bootstatus", RequestGetBootStatus)
	return Flags(v), err
}

// Status returns the current status flags.
func (w *Watchdog) Status() (Flags, error) {
	v, err := w.get("get status", RequestGetStatus)
	return Flags(v), err
}

// Temperature returns the temperature in degrees Fahrenheit.
func (w *Watchdog) Temperature() (int32, error) {
	v, err := w.get("get temperature", RequestGetTemp)
	return int32(v), err
}

// Info returns the driver identification and supported options.
func (w *Watchdog) Info() (Info, error) {
	const op = "get info"
	if err := w.check(op); err != nil {
		return Info{}, err
	}

	info, err := w.backend.GetInfo(w.fd)
	if err != nil {
		return Info{}, newOpError(op, w.path, ErrDeviceIO, fmt.Errorf("%s: %w", RequestGetSupport, err))
	}

	w.logger.V(1).Info("Read watchdog info", "identity", info.Identity,
		"firmwareVersion", info.FirmwareVersion, "options", info.Options.String())
	return info, nil
}

// SetOptions writes a WDIOS_* mask. The mask is validated first; an
// invalid mask never reaches the driver.
func (w *Watchdog) SetOptions(opts Options) error {
	const op = "set options"
	if err := w.check(op); err != nil {
		return err
	}
	if err := opts.Validate(); err != nil {
		return fmt.Errorf("%s %s: %w", op, w.path, err)
	}
	return w.set(op, RequestSetOptions, uint32(opts))
}

// check rejects handles that were never opened or are already closed.
func (w *Watchdog) check(op string) error {
	if !w.IsOpen() {
		return newOpError(op, w.Path(), ErrInvalidHandle, nil)
	}
	return nil
}

func (w *Watchdog) get(op string, req Request) (uint32, error) {
	if err := w.check(op); err != nil {
		return 0, err
	}

	w.logger.V(2).Info("Issuing watchdog request", "request", req.String())
	v, err := w.backend.Get(w.fd, req)
	if err != nil {
		return 0, newOpError(op, w.path, ErrDeviceIO, fmt.Errorf("%s: %w", req, err))
	}

	w.logger.V(1).Info("Watchdog request succeeded", "request", req.String(), "value", v)
	return v, nil
}

func (w *Watchdog) set(op string, req Request, value uint32) error {
	if err := w.check(op); err != nil {
		return err
	}

	w.logger.V(2).Info("Issuing watchdog request", "request", req.String(), "value", value)
	if err := w.backend.Set(w.fd, req, value); err != nil {
		return newOpError(op, w.path, ErrDeviceIO, fmt.Errorf("%s: %w", req, err))
	}

	w.logger.V(1).Info("Watchdog request succeeded", "request", req.String())
	return nil
}
