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
	"fmt"
	"strconv"
	"strings"
)

// Flags is a WDIOF_* bitmask as reported by WDIOC_GETSTATUS,
// WDIOC_GETBOOTSTATUS and the options field of WDIOC_GETSUPPORT.
type Flags uint32

// Status and capability bits
// Reference: include/uapi/linux/watchdog.h
const (
	FlagOverheat      Flags = 0x0001
	FlagFanFault      Flags = 0x0002
	FlagExtern1       Flags = 0x0004
	FlagExtern2       Flags = 0x0008
	FlagPowerUnder    Flags = 0x0010
	FlagCardReset     Flags = 0x0020
	FlagPowerOver     Flags = 0x0040
	FlagSetTimeout    Flags = 0x0080
	FlagMagicClose    Flags = 0x0100
	FlagPreTimeout    Flags = 0x0200
	FlagAlarmOnly     Flags = 0x0400
	FlagKeepalivePing Flags = 0x8000

	// FlagsUnknown is WDIOF_UNKNOWN (-1): the driver reported nothing usable
	FlagsUnknown Flags = 0xFFFFFFFF
)

// UnknownFlagsDescription is the only line produced for FlagsUnknown.
const UnknownFlagsDescription = "Unknown flag error"

// FlagDescription pairs one status bit with its human readable meaning.
type FlagDescription struct {
	Flag        Flags
	Name        string
	Description string
}

// FlagDescriptions is the decode table, in output order.
var FlagDescriptions = []FlagDescription{
	{FlagOverheat, "overheat", "Reset due to CPU overheat"},
	{FlagFanFault, "fanfault", "Fan failed"},
	{FlagExtern1, "extern1", "External relay 1"},
	{FlagExtern2, "extern2", "External relay 2"},
	{FlagPowerUnder, "powerunder", "Power bad/power fault"},
	{FlagCardReset, "cardreset", "Card previously reset the CPU"},
	{FlagPowerOver, "powerover", "Power over voltage"},
	{FlagSetTimeout, "settimeout", "Set timeout (in seconds)"},
	{FlagMagicClose, "magicclose", "Supports magic close char"},
	{FlagPreTimeout, "pretimeout", "Pretimeout (in seconds), get/set"},
	{FlagAlarmOnly, "alarmonly", "Watchdog triggers external alarm not a reboot"},
	{FlagKeepalivePing, "keepaliveping", "Keep alive ping reply"},
}

// DecodeFlags returns one description per set bit, in table order.
// FlagsUnknown yields exactly one line and no per-bit output.
// A zero value yields an empty slice.
func DecodeFlags(flags Flags) []string {
	if flags == FlagsUnknown {
		return []string{UnknownFlagsDescription}
	}

	lines := []string{}
	for _, fd := range FlagDescriptions {
		if flags&fd.Flag != 0 {
			lines = append(lines, fd.Description)
		}
	}
	return lines
}

// String returns the short names of the set bits joined by "|".
func (f Flags) String() string {
	if f == FlagsUnknown {
		return "unknown"
	}
	if f == 0 {
		return "none"
	}

	var names []string
	rest := f
	for _, fd := range FlagDescriptions {
		if f&fd.Flag != 0 {
			names = append(names, fd.Name)
			rest &^= fd.Flag
		}
	}
	if rest != 0 {
		names = append(names, fmt.Sprintf("0x%x", uint32(rest)))
	}
	return strings.Join(names, "|")
}

// FormatInfo renders driver info: firmware version, identity, then the
// decoded option lines indented by a tab.
func FormatInfo(info Info) []string {
	lines := []string{
		fmt.Sprintf("Firmware version: %d", info.FirmwareVersion),
		fmt.Sprintf("Identity: %s", info.Identity),
		"Options:",
	}
	for _, line := range DecodeFlags(info.Options) {
		lines = append(lines, "\t"+line)
	}
	return lines
}

// Options is a WDIOS_* mask accepted by WDIOC_SETOPTIONS.
type Options uint32

// Card options
const (
	// OptionDisableCard turns off the watchdog timer
	OptionDisableCard Options = 0x0001
	// OptionEnableCard turns on the watchdog timer
	OptionEnableCard Options = 0x0002
	// OptionTempPanic requests a kernel panic on temperature trip
	OptionTempPanic Options = 0x0004

	// OptionsUnknown is WDIOS_UNKNOWN (-1)
	OptionsUnknown Options = 0xFFFFFFFF

	validOptions = OptionDisableCard | OptionEnableCard | OptionTempPanic
)

var optionNames = map[string]Options{
	"disable":   OptionDisableCard,
	"enable":    OptionEnableCard,
	"temppanic": OptionTempPanic,
}

// Validate rejects OptionsUnknown and any bit outside the three card options.
// Vendor-specific bits are rejected too, even if a driver would accept them.
func (o Options) Validate() error {
	if o == OptionsUnknown {
		return fmt.Errorf("%w: unknown option mask", ErrInvalidOption)
	}
	if extra := o &^ validOptions; extra != 0 {
		return fmt.Errorf("%w: unsupported bits 0x%x in mask 0x%x", ErrInvalidOption, uint32(extra), uint32(o))
	}
	return nil
}

// ParseOptions parses a comma separated list of option names
// (disable, enable, temppanic) or a numeric mask (decimal, 0x hex, 0 octal).
func ParseOptions(s string) (Options, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty option list", ErrInvalidArgument)
	}

	if n, err := strconv.ParseUint(s, 0, 32); err == nil {
		return Options(n), nil
	}

	var opts Options
	for _, part := range strings.Split(s, ",") {
		name := strings.ToLower(strings.TrimSpace(part))
		opt, ok := optionNames[name]
		if !ok {
			return 0, fmt.Errorf("%w: unknown option name %q (valid: disable, enable, temppanic)", ErrInvalidOption, part)
		}
		opts |= opt
	}
	return opts, nil
}
