//go:build linux

package watchdog

import (
	"bytes"
	"fmt"

	"golang.org/x/sys/unix"
)

// requestCodes maps each Request to its ioctl number.
// x/sys carries the per-architecture _IOR/_IOWR encodings.
var requestCodes = map[Request]uint{
	RequestGetSupport:    unix.WDIOC_GETSUPPORT,
	RequestGetStatus:     unix.WDIOC_GETSTATUS,
	RequestGetBootStatus: unix.WDIOC_GETBOOTSTATUS,
	RequestGetTemp:       unix.WDIOC_GETTEMP,
	RequestSetOptions:    unix.WDIOC_SETOPTIONS,
	RequestKeepalive:     unix.WDIOC_KEEPALIVE,
	RequestSetTimeout:    unix.WDIOC_SETTIMEOUT,
	RequestGetTimeout:    unix.WDIOC_GETTIMEOUT,
	RequestSetPreTimeout: unix.WDIOC_SETPRETIMEOUT,
	RequestGetPreTimeout: unix.WDIOC_GETPRETIMEOUT,
	RequestGetTimeLeft:   unix.WDIOC_GETTIMELEFT,
}

// Code returns the Linux ioctl request number for r.
func (r Request) Code() (uint, bool) {
	code, ok := requestCodes[r]
	return code, ok
}

// systemBackend issues real ioctl syscalls (Linux-specific)
type systemBackend struct{}

// NewSystemBackend returns the Backend that talks to real device nodes.
func NewSystemBackend() Backend {
	return systemBackend{}
}

func (systemBackend) Open(path string) (int, error) {
	return unix.Open(path, unix.O_RDWR|unix.O_CLOEXEC, 0)
}

func (systemBackend) Get(fd int, req Request) (uint32, error) {
	code, ok := req.Code()
	if !ok {
		return 0, fmt.Errorf("unknown request %s", req)
	}
	return unix.IoctlGetUint32(fd, code)
}

func (systemBackend) Set(fd int, req Request, value uint32) error {
	if req == RequestKeepalive {
		return unix.IoctlWatchdogKeepalive(fd)
	}
	code, ok := req.Code()
	if !ok {
		return fmt.Errorf("unknown request %s", req)
	}
	return unix.IoctlSetPointerInt(fd, code, int(int32(value)))
}

func (systemBackend) GetInfo(fd int) (Info, error) {
	wi, err := unix.IoctlGetWatchdogInfo(fd)
	if err != nil {
		return Info{}, err
	}
	identity := wi.Identity[:]
	if i := bytes.IndexByte(identity, 0); i >= 0 {
		identity = identity[:i]
	}
	return Info{
		Options:         Flags(wi.Options),
		FirmwareVersion: wi.Version,
		Identity:        string(identity),
	}, nil
}

func (systemBackend) Write(fd int, p []byte) (int, error) {
	return unix.Write(fd, p)
}

func (systemBackend) Close(fd int) error {
	return unix.Close(fd)
}
