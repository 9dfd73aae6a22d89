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

import "fmt"

// Request identifies one watchdog device-control request.
// Each Watchdog operation issues exactly one Request; the Backend maps it
// to the platform request code (WDIOC_* on Linux).
type Request int

const (
	// RequestGetSupport reads the driver's watchdog_info (WDIOC_GETSUPPORT)
	RequestGetSupport Request = iota + 1
	// RequestGetStatus reads the current status flags (WDIOC_GETSTATUS)
	RequestGetStatus
	// RequestGetBootStatus reads the flags describing the last reboot (WDIOC_GETBOOTSTATUS)
	RequestGetBootStatus
	// RequestGetTemp reads the temperature in degrees Fahrenheit (WDIOC_GETTEMP)
	RequestGetTemp
	// RequestSetOptions writes the card option mask (WDIOC_SETOPTIONS)
	RequestSetOptions
	// RequestKeepalive pets the watchdog (WDIOC_KEEPALIVE)
	RequestKeepalive
	// RequestSetTimeout writes the timeout in seconds (WDIOC_SETTIMEOUT)
	RequestSetTimeout
	// RequestGetTimeout reads the timeout in seconds (WDIOC_GETTIMEOUT)
	RequestGetTimeout
	// RequestSetPreTimeout writes the pre-timeout in seconds (WDIOC_SETPRETIMEOUT)
	RequestSetPreTimeout
	// RequestGetPreTimeout reads the pre-timeout in seconds (WDIOC_GETPRETIMEOUT)
	RequestGetPreTimeout
	// RequestGetTimeLeft reads the seconds left before reset (WDIOC_GETTIMELEFT)
	RequestGetTimeLeft
)

var requestNames = map[Request]string{
	RequestGetSupport:    "WDIOC_GETSUPPORT",
	RequestGetStatus:     "WDIOC_GETSTATUS",
	RequestGetBootStatus: "WDIOC_GETBOOTSTATUS",
	RequestGetTemp:       "WDIOC_GETTEMP",
	RequestSetOptions:    "WDIOC_SETOPTIONS",
	RequestKeepalive:     "WDIOC_KEEPALIVE",
	RequestSetTimeout:    "WDIOC_SETTIMEOUT",
	RequestGetTimeout:    "WDIOC_GETTIMEOUT",
	RequestSetPreTimeout: "WDIOC_SETPRETIMEOUT",
	RequestGetPreTimeout: "WDIOC_GETPRETIMEOUT",
	RequestGetTimeLeft:   "WDIOC_GETTIMELEFT",
}

func (r Request) String() string {
	if name, ok := requestNames[r]; ok {
		return name
	}
	return fmt.Sprintf("Request(%d)", int(r))
}

// Info is the driver identification returned by WDIOC_GETSUPPORT.
type Info struct {
	// Options lists the WDIOF_* capabilities the driver supports
	Options Flags
	// FirmwareVersion is the driver-reported firmware version
	FirmwareVersion uint32
	// Identity is the driver name, trimmed at the first NUL
	Identity string
}

// Backend is the OS device-control facility a Watchdog talks to.
// File descriptors are plain ints so that fake backends can hand out
// arbitrary values without touching the filesystem.
type Backend interface {
	// Open opens the device node for reading and writing
	Open(path string) (int, error)
	// Get issues a request that produces an unsigned 32-bit value
	Get(fd int, req Request) (uint32, error)
	// Set issues a request that consumes an unsigned 32-bit value
	Set(fd int, req Request, value uint32) error
	// GetInfo issues RequestGetSupport
	GetInfo(fd int) (Info, error)
	// Write writes raw bytes to the device
	Write(fd int, p []byte) (int, error)
	// Close releases the descriptor
	Close(fd int) error
}
