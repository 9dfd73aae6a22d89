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
	"bytes"
	"errors"
	"os"
	"path/filepath"

	"github.com/go-logr/logr"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/medik8s/wdctl/pkg/mocks"
	"github.com/medik8s/wdctl/pkg/watchdog"
)

var _ = Describe("wdctl", func() {
	var (
		backend *mocks.WatchdogBackend
		stdout  *bytes.Buffer
		stderr  *bytes.Buffer
		app     *App
	)

	run := func(args ...string) int {
		return app.Run(args)
	}

	BeforeEach(func() {
		backend = mocks.NewWatchdogBackend()
		stdout = &bytes.Buffer{}
		stderr = &bytes.Buffer{}
		logger := logr.Discard()
		app = &App{
			Backend: backend,
			Stdout:  stdout,
			Stderr:  stderr,
			Logger:  &logger,
		}
		for _, env := range []string{"WDCTL_DEVICE", "WDCTL_LOG_LEVEL", "WDCTL_METRICS_FILE"} {
			if old, ok := os.LookupEnv(env); ok {
				DeferCleanup(os.Setenv, env, old)
			} else {
				DeferCleanup(os.Unsetenv, env)
			}
			Expect(os.Unsetenv(env)).To(Succeed())
		}
	})

	Context("Successful operations", func() {
		It("should set and read back the timeout on the default device", func() {
			Expect(run("--set-timeout", "8", "--get-timeout")).To(Equal(0))

			Expect(stdout.String()).To(Equal("Timeout set to 8 seconds\nTimeout: 8 seconds\n"))
			Expect(backend.Methods()).To(Equal([]string{
				mocks.MethodOpen, mocks.MethodSet, mocks.MethodGet, mocks.MethodWrite, mocks.MethodClose,
			}))
			Expect(backend.Calls()[0].Path).To(Equal(watchdog.DefaultDevicePath))
			Expect(backend.Calls()[3].Data).To(Equal([]byte{watchdog.MagicCloseByte}))
		})

		It("should run operations in table order regardless of argument order", func() {
			Expect(run("--get-timeout", "--keepalive", "--set-timeout", "30")).To(Equal(0))

			calls := backend.Calls()
			Expect(calls).To(HaveLen(6))
			Expect(calls[1].Request).To(Equal(watchdog.RequestSetTimeout))
			Expect(calls[2].Request).To(Equal(watchdog.RequestKeepalive))
			Expect(calls[3].Request).To(Equal(watchdog.RequestGetTimeout))
		})

		It("should open the device only once for many operations", func() {
			Expect(run("--get-timeout", "--get-pretimeout", "--get-timeleft", "--get-temp", "--get-status")).To(Equal(0))

			Expect(backend.CallCount(mocks.MethodOpen)).To(Equal(1))
			Expect(backend.CallCount(mocks.MethodClose)).To(Equal(1))
			Expect(backend.IoctlCount()).To(Equal(5))
		})

		It("should print nothing for keepalive", func() {
			Expect(run("--keepalive")).To(Equal(0))

			Expect(stdout.String()).To(BeEmpty())
			Expect(backend.KeepaliveCount).To(Equal(1))
		})

		It("should format driver info", func() {
			backend.Info = watchdog.Info{
				FirmwareVersion: 3,
				Identity:        "mock0",
				Options:         watchdog.FlagOverheat | watchdog.FlagMagicClose,
			}

			Expect(run("--get-info")).To(Equal(0))

			Expect(stdout.String()).To(Equal("Firmware version: 3\nIdentity: mock0\nOptions:\n" +
				"\tReset due to CPU overheat\n\tSupports magic close char\n"))
		})

		It("should decode boot status and status flags", func() {
			backend.BootStatus = watchdog.FlagCardReset
			backend.Status = watchdog.FlagsUnknown

			Expect(run("--get-bootstatus", "--get-status")).To(Equal(0))

			Expect(stdout.String()).To(Equal("Boot status: 0x20\n\tCard previously reset the CPU\n" +
				"Status: 0xffffffff\n\tUnknown flag error\n"))
		})

		It("should print the temperature and pretimeout", func() {
			backend.Temperature = 104
			backend.PreTimeout = 5

			Expect(run("--get-temp", "--get-pretimeout")).To(Equal(0))

			Expect(stdout.String()).To(ContainSubstring("Pretimeout: 5 seconds\n"))
			Expect(stdout.String()).To(ContainSubstring("Temperature: 104 F\n"))
		})

		It("should set options by name", func() {
			Expect(run("--set-options", "enable,temppanic")).To(Equal(0))

			Expect(backend.Options).To(Equal(watchdog.OptionEnableCard | watchdog.OptionTempPanic))
			Expect(stdout.String()).To(Equal("Options set to 0x6\n"))
		})

		It("should set the pretimeout", func() {
			Expect(run("--set-pretimeout", "0")).To(Equal(0))
			Expect(backend.PreTimeout).To(BeZero())
			Expect(stdout.String()).To(Equal("Pretimeout set to 0 seconds\n"))
		})
	})

	Context("Device selection", func() {
		It("should honour --device", func() {
			Expect(run("-d", "/dev/watchdog1", "--get-timeout")).To(Equal(0))
			Expect(backend.Calls()[0].Path).To(Equal("/dev/watchdog1"))
		})

		It("should fall back to WDCTL_DEVICE", func() {
			Expect(os.Setenv("WDCTL_DEVICE", "/dev/watchdog2")).To(Succeed())

			Expect(run("--get-timeout")).To(Equal(0))
			Expect(backend.Calls()[0].Path).To(Equal("/dev/watchdog2"))
		})

		It("should prefer the flag over WDCTL_DEVICE", func() {
			Expect(os.Setenv("WDCTL_DEVICE", "/dev/watchdog2")).To(Succeed())

			Expect(run("--device", "/dev/watchdog3", "--get-timeout")).To(Equal(0))
			Expect(backend.Calls()[0].Path).To(Equal("/dev/watchdog3"))
		})
	})

	Context("Validation failures", func() {
		DescribeTable("should reject bad arguments before opening the device",
			func(args []string) {
				Expect(run(args...)).To(Equal(1))
				Expect(backend.CallCount("")).To(BeZero())
				Expect(stderr.String()).To(ContainSubstring("wdctl:"))
			},
			Entry("non-numeric timeout", []string{"--set-timeout", "ten"}),
			Entry("negative timeout", []string{"--set-timeout", "-1"}),
			Entry("timeout overflow", []string{"--set-timeout", "4294967296"}),
			Entry("non-numeric pretimeout", []string{"--get-timeout", "--set-pretimeout", "x"}),
			Entry("unsupported option bit", []string{"--set-options", "0x8"}),
			Entry("unknown option sentinel", []string{"--set-options", "0xffffffff"}),
			Entry("unknown option name", []string{"--set-options", "reboot"}),
			Entry("positional argument", []string{"--get-timeout", "extra"}),
			Entry("unknown flag", []string{"--frobnicate"}),
			Entry("no operation", []string{}),
		)

		It("should report invalid argument kinds", func() {
			Expect(run("--set-timeout", "abc")).To(Equal(1))
			Expect(stderr.String()).To(ContainSubstring(watchdog.ErrInvalidArgument.Error()))

			stderr.Reset()
			Expect(run("--set-options", "0x10")).To(Equal(1))
			Expect(stderr.String()).To(ContainSubstring(watchdog.ErrInvalidOption.Error()))
		})

		It("should reject an invalid log level", func() {
			app.Logger = nil

			Expect(run("--log-level", "verbose", "--get-timeout")).To(Equal(1))
			Expect(stderr.String()).To(ContainSubstring("invalid log level"))
			Expect(backend.CallCount("")).To(BeZero())
		})
	})

	Context("Device failures", func() {
		It("should abort remaining operations and still close", func() {
			backend.FailRequest(watchdog.RequestGetTimeout, errors.New("inappropriate ioctl for device"))

			Expect(run("--set-timeout", "5", "--get-timeout", "--get-info")).To(Equal(1))

			Expect(backend.Methods()).To(Equal([]string{
				mocks.MethodOpen, mocks.MethodSet, mocks.MethodGet, mocks.MethodWrite, mocks.MethodClose,
			}))
			Expect(stderr.String()).To(ContainSubstring("get timeout"))
			Expect(stderr.String()).To(ContainSubstring("inappropriate ioctl for device"))
		})

		It("should report open failures with the path and not close", func() {
			backend.OpenErr = errors.New("device or resource busy")

			Expect(run("-d", "/dev/watchdog0", "--keepalive")).To(Equal(1))

			Expect(backend.Methods()).To(Equal([]string{mocks.MethodOpen}))
			Expect(stderr.String()).To(ContainSubstring("/dev/watchdog0"))
			Expect(stderr.String()).To(ContainSubstring("device or resource busy"))
		})

		It("should fail when the close sequence fails", func() {
			backend.WriteErr = errors.New("magic write rejected")

			Expect(run("--get-timeout")).To(Equal(1))

			Expect(stdout.String()).To(Equal("Timeout: 60 seconds\n"))
			Expect(backend.CallCount(mocks.MethodClose)).To(Equal(1))
			Expect(stderr.String()).To(ContainSubstring("magic write rejected"))
		})

		It("should report both the operation and the close failure", func() {
			backend.FailRequest(watchdog.RequestKeepalive, errors.New("keepalive refused"))
			backend.CloseErr = errors.New("close refused")

			Expect(run("--keepalive")).To(Equal(1))

			Expect(stderr.String()).To(ContainSubstring("keepalive refused"))
			Expect(stderr.String()).To(ContainSubstring("close refused"))
		})
	})

	Context("Auxiliary flags", func() {
		It("should list devices without opening any", func() {
			app.FindDevices = func() []string { return []string{"/dev/watchdog", "/dev/watchdog0"} }

			Expect(run("--list-devices")).To(Equal(0))

			Expect(stdout.String()).To(Equal("/dev/watchdog\n/dev/watchdog0\n"))
			Expect(backend.CallCount("")).To(BeZero())
		})

		It("should print the version", func() {
			Expect(run("--version")).To(Equal(0))

			Expect(stdout.String()).To(HavePrefix("wdctl "))
			Expect(backend.CallCount("")).To(BeZero())
		})

		It("should print usage for --help", func() {
			Expect(run("--help")).To(Equal(0))
			Expect(stderr.String()).To(ContainSubstring("--" + FlagSetTimeout))
		})

		It("should write metrics after the run", func() {
			metricsFile := filepath.Join(GinkgoT().TempDir(), "wdctl.prom")

			Expect(run("--metrics-file", metricsFile, "--set-timeout", "8", "--keepalive")).To(Equal(0))

			data, err := os.ReadFile(metricsFile)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(data)).To(ContainSubstring("wdctl_watchdog_timeout_seconds 8"))
			Expect(string(data)).To(ContainSubstring("wdctl_keepalives_total 1"))
			Expect(string(data)).To(ContainSubstring(`wdctl_operations_total{operation="close",result="success"} 1`))
		})

		It("should read the metrics path from WDCTL_METRICS_FILE", func() {
			metricsFile := filepath.Join(GinkgoT().TempDir(), "env.prom")
			Expect(os.Setenv("WDCTL_METRICS_FILE", metricsFile)).To(Succeed())

			Expect(run("--get-timeout")).To(Equal(0))
			Expect(metricsFile).To(BeAnExistingFile())
		})
	})
})

var _ = Describe("Helpers", func() {
	It("should parse seconds", func() {
		seconds, err := parseSeconds(FlagSetTimeout, " 120 ")
		Expect(err).NotTo(HaveOccurred())
		Expect(seconds).To(Equal(uint32(120)))

		_, err = parseSeconds(FlagSetTimeout, "0x10")
		Expect(err).To(MatchError(watchdog.ErrInvalidArgument))
	})

	It("should build a JSON logger honouring the level", func() {
		buf := &bytes.Buffer{}
		logger, err := newLogger("info", buf)
		Expect(err).NotTo(HaveOccurred())

		logger.V(1).Info("hidden debug message")
		logger.Info("visible message", "device", "/dev/watchdog")

		Expect(buf.String()).NotTo(ContainSubstring("hidden debug message"))
		Expect(buf.String()).To(ContainSubstring(`"message":"visible message"`))
		Expect(buf.String()).To(ContainSubstring(`"level":"info"`))

		buf.Reset()
		logger, err = newLogger("debug", buf)
		Expect(err).NotTo(HaveOccurred())
		logger.V(1).Info("debug message")
		Expect(buf.String()).To(ContainSubstring("debug message"))
	})

	It("should reject unknown log levels", func() {
		_, err := newLogger("trace", &bytes.Buffer{})
		Expect(err).To(MatchError(watchdog.ErrInvalidArgument))
	})
})
