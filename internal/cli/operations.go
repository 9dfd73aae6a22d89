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

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/go-logr/logr"

	"github.com/medik8s/wdctl/pkg/metrics"
	"github.com/medik8s/wdctl/pkg/watchdog"
)

// action runs one requested operation against the session
type action func(s *session) error

// operation maps one flag to one watchdog operation.
// prepare parses the flag argument up front so that bad input is
// rejected before the device is opened.
type operation struct {
	flag    string
	usage   string
	hasArg  bool
	prepare func(arg string) (action, error)
}

// operations run in this order regardless of the order given on the
// command line: writes first, then the keepalive, then reads.
var operations = []operation{
	{
		flag:   FlagSetTimeout,
		usage:  "Set the watchdog timeout in seconds",
		hasArg: true,
		prepare: func(arg string) (action, error) {
			seconds, err := parseSeconds(FlagSetTimeout, arg)
			if err != nil {
				return nil, err
			}
			return func(s *session) error {
				return s.do("set timeout", func(wd *watchdog.Watchdog) error {
					if err := wd.SetTimeout(seconds); err != nil {
						return err
					}
					s.metrics.SetTimeout(seconds)
					fmt.Fprintf(s.out, "Timeout set to %d seconds\n", seconds)
					return nil
				})
			}, nil
		},
	},
	{
		flag:   FlagSetPreTimeout,
		usage:  "Set the watchdog pre-timeout in seconds (0 disables it where supported)",
		hasArg: true,
		prepare: func(arg string) (action, error) {
			seconds, err := parseSeconds(FlagSetPreTimeout, arg)
			if err != nil {
				return nil, err
			}
			return func(s *session) error {
				return s.do("set pretimeout", func(wd *watchdog.Watchdog) error {
					if err := wd.SetPreTimeout(seconds); err != nil {
						return err
					}
					s.metrics.SetPreTimeout(seconds)
					fmt.Fprintf(s.out, "Pretimeout set to %d seconds\n", seconds)
					return nil
				})
			}, nil
		},
	},
	{
		flag:   FlagSetOptions,
		usage:  "Set card options: comma separated disable,enable,temppanic or a numeric mask",
		hasArg: true,
		prepare: func(arg string) (action, error) {
			opts, err := watchdog.ParseOptions(arg)
			if err != nil {
				return nil, fmt.Errorf("--%s: %w", FlagSetOptions, err)
			}
			if err := opts.Validate(); err != nil {
				return nil, fmt.Errorf("--%s: %w", FlagSetOptions, err)
			}
			return func(s *session) error {
				return s.do("set options", func(wd *watchdog.Watchdog) error {
					if err := wd.SetOptions(opts); err != nil {
						return err
					}
					fmt.Fprintf(s.out, "Options set to 0x%x\n", uint32(opts))
					return nil
				})
			}, nil
		},
	},
	{
		flag:  FlagKeepalive,
		usage: "Pet the watchdog once",
		prepare: func(string) (action, error) {
			return func(s *session) error {
				return s.do("keepalive", func(wd *watchdog.Watchdog) error {
					if err := wd.Keepalive(); err != nil {
						return err
					}
					s.metrics.ObserveKeepalive()
					return nil
				})
			}, nil
		},
	},
	{
		flag:  FlagGetTimeout,
		usage: "Print the watchdog timeout",
		prepare: func(string) (action, error) {
			return func(s *session) error {
				return s.do("get timeout", func(wd *watchdog.Watchdog) error {
					seconds, err := wd.Timeout()
					if err != nil {
						return err
					}
					s.metrics.SetTimeout(seconds)
					fmt.Fprintf(s.out, "Timeout: %d seconds\n", seconds)
					return nil
				})
			}, nil
		},
	},
	{
		flag:  FlagGetPreTimeout,
		usage: "Print the watchdog pre-timeout",
		prepare: func(string) (action, error) {
			return func(s *session) error {
				return s.do("get pretimeout", func(wd *watchdog.Watchdog) error {
					seconds, err := wd.PreTimeout()
					if err != nil {
						return err
					}
					s.metrics.SetPreTimeout(seconds)
					fmt.Fprintf(s.out, "Pretimeout: %d seconds\n", seconds)
					return nil
				})
			}, nil
		},
	},
	{
		flag:  FlagGetTimeLeft,
		usage: "Print the seconds left before the watchdog resets the system",
		prepare: func(string) (action, error) {
			return func(s *session) error {
				return s.do("get timeleft", func(wd *watchdog.Watchdog) error {
					seconds, err := wd.TimeLeft()
					if err != nil {
						return err
					}
					s.metrics.SetTimeLeft(seconds)
					fmt.Fprintf(s.out, "Time left: %d seconds\n", seconds)
					return nil
				})
			}, nil
		},
	},
	{
		flag:  FlagGetBootStatus,
		usage: "Print and decode the boot status flags",
		prepare: func(string) (action, error) {
			return func(s *session) error {
				return s.do("get bootstatus", func(wd *watchdog.Watchdog) error {
					flags, err := wd.BootStatus()
					if err != nil {
						return err
					}
					s.metrics.ObserveFlags(metrics.SourceBootStatus, flags)
					printFlags(s.out, "Boot status", flags)
					return nil
				})
			}, nil
		},
	},
	{
		flag:  FlagGetStatus,
		usage: "Print and decode the status flags",
		prepare: func(string) (action, error) {
			return func(s *session) error {
				return s.do("get status", func(wd *watchdog.Watchdog) error {
					flags, err := wd.Status()
					if err != nil {
						return err
					}
					s.metrics.ObserveFlags(metrics.SourceStatus, flags)
					printFlags(s.out, "Status", flags)
					return nil
				})
			}, nil
		},
	},
	{
		flag:  FlagGetTemp,
		usage: "Print the temperature in degrees Fahrenheit",
		prepare: func(string) (action, error) {
			return func(s *session) error {
				return s.do("get temperature", func(wd *watchdog.Watchdog) error {
					temp, err := wd.Temperature()
					if err != nil {
						return err
					}
					s.metrics.SetTemperature(temp)
					fmt.Fprintf(s.out, "Temperature: %d F\n", temp)
					return nil
				})
			}, nil
		},
	},
	{
		flag:  FlagGetInfo,
		usage: "Print driver identity, firmware version and supported options",
		prepare: func(string) (action, error) {
			return func(s *session) error {
				return s.do("get info", func(wd *watchdog.Watchdog) error {
					info, err := wd.Info()
					if err != nil {
						return err
					}
					s.metrics.ObserveFlags(metrics.SourceOptions, info.Options)
					for _, line := range watchdog.FormatInfo(info) {
						fmt.Fprintln(s.out, line)
					}
					return nil
				})
			}, nil
		},
	},
}

// parseSeconds parses an unsigned 32-bit decimal argument
func parseSeconds(flag, arg string) (uint32, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(arg), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: --%s expects seconds as an unsigned integer, got %q",
			watchdog.ErrInvalidArgument, flag, arg)
	}
	return uint32(n), nil
}

func printFlags(out io.Writer, title string, flags watchdog.Flags) {
	fmt.Fprintf(out, "%s: 0x%x\n", title, uint32(flags))
	for _, line := range watchdog.DecodeFlags(flags) {
		fmt.Fprintf(out, "\t%s\n", line)
	}
}

// session owns the watchdog handle for one invocation. The device is
// opened on the first operation and reused by every later one.
type session struct {
	path    string
	backend watchdog.Backend
	logger  logr.Logger
	out     io.Writer
	metrics *metrics.Recorder

	wd *watchdog.Watchdog
}

// handle opens the device on first use
func (s *session) handle() (*watchdog.Watchdog, error) {
	if s.wd != nil {
		return s.wd, nil
	}

	wd, err := watchdog.OpenWithBackend(s.path, s.backend, s.logger)
	s.metrics.ObserveOperation("open", err)
	if err != nil {
		return nil, err
	}
	s.wd = wd
	return wd, nil
}

// do runs fn against the (lazily opened) handle and records the result
func (s *session) do(name string, fn func(wd *watchdog.Watchdog) error) error {
	wd, err := s.handle()
	if err != nil {
		return err
	}

	err = fn(wd)
	s.metrics.ObserveOperation(name, err)
	if err != nil {
		s.logger.Error(err, "Watchdog operation failed", "operation", name)
		return err
	}
	return nil
}

// close releases the handle if one was opened
func (s *session) close() error {
	if s.wd == nil {
		return nil
	}

	err := s.wd.Close()
	s.metrics.ObserveOperation("close", err)
	s.wd = nil
	return err
}
