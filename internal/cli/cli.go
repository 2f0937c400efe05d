// Package cli handles command line interface logic
package cli

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	chip8 "github.com/p47t/vip8"
	"github.com/p47t/vip8/internal/options"
)

const (
	defaultScale      = 10
	defaultBackground = 0x000000
	defaultForeground = 0xFFFFFF
)

// ParseFlags parses the command line arguments, args[0] being the program name.
func ParseFlags(args []string) (options.Program, error) {
	name := "chip8"
	if len(args) > 0 {
		name = args[0]
		args = args[1:]
	}

	flags := flag.NewFlagSet(name, flag.ContinueOnError)
	flags.SetOutput(io.Discard)
	opts := options.Program{
		Display: options.Display{
			Scale:      defaultScale,
			Background: defaultBackground,
			Foreground: defaultForeground,
		},
	}
	readOptionFlags(flags, &opts)

	if err := flags.Parse(args); err != nil {
		return opts, &UsageError{flags: flags, msg: err.Error()}
	}
	if opts.Version {
		return opts, nil
	}

	positional := flags.Args()
	if len(positional) == 0 {
		return opts, &UsageError{flags: flags, msg: "no program file given"}
	}
	if err := validateArgs(flags, positional); err != nil {
		return opts, err
	}
	opts.ROM = positional[0]

	if err := validateOptions(opts); err != nil {
		return opts, err
	}
	return opts, nil
}

// UsageError represents an error that should show usage information
type UsageError struct {
	flags *flag.FlagSet
	msg   string
}

func (e *UsageError) Error() string {
	return e.msg
}

func (e *UsageError) ShowUsage() {
	if e.msg != "" && e.msg != flag.ErrHelp.Error() {
		fmt.Printf("%s\n\n", e.msg)
	}
	fmt.Printf("usage: %s [options] <program file>\n\n", e.flags.Name())
	e.flags.SetOutput(os.Stdout)
	e.flags.PrintDefaults()
	fmt.Println()
}

// validateArgs checks if arguments are in correct order
func validateArgs(flags *flag.FlagSet, args []string) error {
	for i, arg := range args {
		if i > 0 && strings.HasPrefix(arg, "-") {
			return &UsageError{
				flags: flags,
				msg:   fmt.Sprintf("argument %s found after the program file, please pass the program file as last argument", arg),
			}
		}
	}
	if len(args) > 1 {
		return &UsageError{flags: flags, msg: fmt.Sprintf("unexpected argument %s", args[1])}
	}
	return nil
}

func validateOptions(opts options.Program) error {
	if opts.Scale < 1 {
		return fmt.Errorf("invalid scale %d: must be at least 1", opts.Scale)
	}
	if opts.ClockRate != 0 && opts.ClockRate < chip8.TimerHz {
		return fmt.Errorf("%w: %d", chip8.ErrInvalidClockRate, opts.ClockRate)
	}
	return options.ValidateProfile(opts.Profile)
}

func readOptionFlags(flags *flag.FlagSet, opts *options.Program) {
	flags.IntVar(&opts.Scale, "scale", defaultScale, "window pixels per display cell")
	flags.Var((*colorValue)(&opts.Background), "bg", "background color as 0xRRGGBB, #RRGGBB or decimal")
	flags.Var((*colorValue)(&opts.Foreground), "fg", "foreground color as 0xRRGGBB, #RRGGBB or decimal")
	flags.IntVar(&opts.ClockRate, "clock", chip8.DefaultClockRate, "instructions per second, a multiple of 60")
	flags.BoolVar(&opts.Debug, "debug", false, "enable debugging options for extended logging")
	flags.BoolVar(&opts.Quiet, "q", false, "perform operations quietly")
	flags.BoolVar(&opts.Version, "version", false, "print version information and exit")
	flags.StringVar(&opts.Profile, "profile", "", "write a cpu or mem profile of the session")
	flags.BoolVar(&opts.KeyWaitLegacy, "legacy-keywait", false, "FX0A stores 1 instead of the pressed key")
	flags.BoolVar(&opts.Mute, "mute", false, "disable the buzzer")
}

// colorValue is a 0xRRGGBB color flag.
type colorValue uint32

func (c *colorValue) String() string {
	return fmt.Sprintf("0x%06X", uint32(*c))
}

func (c *colorValue) Set(s string) error {
	color, err := ParseColor(s)
	if err != nil {
		return err
	}
	*c = colorValue(color)
	return nil
}

// ParseColor parses a 24 bit RGB color given as 0xRRGGBB, #RRGGBB or a
// decimal number.
func ParseColor(s string) (uint32, error) {
	s = strings.TrimSpace(s)
	if rest, ok := strings.CutPrefix(s, "#"); ok {
		s = "0x" + rest
	}
	value, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid color %q: %w", s, err)
	}
	if value > 0xFFFFFF {
		return 0, fmt.Errorf("invalid color %q: exceeds 0xFFFFFF", s)
	}
	return uint32(value), nil
}
