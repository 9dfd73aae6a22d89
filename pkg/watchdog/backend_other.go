//go:build !linux

package watchdog

import "errors"

// unsupportedBackend fails every call; the watchdog ioctl interface is Linux only.
type unsupportedBackend struct{}

// NewSystemBackend returns a Backend whose Open always fails with ErrUnsupportedPlatform.
func NewSystemBackend() Backend {
	return unsupportedBackend{}
}

func (unsupportedBackend) Open(string) (int, error) { return InvalidFD, ErrUnsupportedPlatform }

func (unsupportedBackend) Get(int, Request) (uint32, error) { return 0, errors.ErrUnsupported }

func (unsupportedBackend) Set(int, Request, uint32) error { return errors.ErrUnsupported }

func (unsupportedBackend) GetInfo(int) (Info, error) { return Info{}, errors.ErrUnsupported }

func (unsupportedBackend) Write(int, []byte) (int, error) { return 0, errors.ErrUnsupported }

func (unsupportedBackend) Close(int) error { return errors.ErrUnsupported }
