// Package options contains the program options.
package options

import (
	"fmt"
	"slices"
	"strings"
)

// Profile modes accepted by the -profile flag. An empty mode disables
// profiling.
const (
	ProfileCPU = "cpu"
	ProfileMem = "mem"
)

// ProfileModes lists the supported profile modes.
var ProfileModes = []string{ProfileCPU, ProfileMem}

// ValidateProfile checks that mode is empty or one of ProfileModes.
func ValidateProfile(mode string) error {
	if mode == "" || slices.Contains(ProfileModes, mode) {
		return nil
	}
	return fmt.Errorf("unsupported profile mode: %s. Valid options: %s",
		mode, strings.Join(ProfileModes, ", "))
}

// Parameters contains file path options.
type Parameters struct {
	ROM string // program image, passed as the only positional argument
}

// Display contains window options.
type Display struct {
	Scale      int    // host pixels per display cell
	Background uint32 // 0xRRGGBB
	Foreground uint32 // 0xRRGGBB
}

// Flags contains behavior options.
type Flags struct {
	ClockRate     int    // instructions per second
	Debug         bool   // enable debug logging
	Quiet         bool   // only log errors
	Version       bool   // print version and exit
	Profile       string // cpu or mem, empty disables profiling
	KeyWaitLegacy bool   // FX0A stores 1 instead of the key index
	Mute          bool   // disable the buzzer
}

// Program options of the interpreter.
type Program struct {
	Parameters
	Display
	Flags
}

// RGB splits a 0xRRGGBB color into its components.
func RGB(color uint32) (r, g, b uint8) {
	return uint8(color >> 16), uint8(color >> 8), uint8(color)
}
