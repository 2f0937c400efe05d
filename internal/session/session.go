// Package session loads a program file and runs it with a frontend.
package session

import (
	"context"
	"fmt"

	chip8 "github.com/p47t/vip8"
	"github.com/p47t/vip8/internal/audio"
	"github.com/p47t/vip8/internal/options"
	"github.com/pkg/profile"
	"github.com/retroenv/retrogolib/buildinfo"
	"github.com/retroenv/retrogolib/log"
)

// Frontend is the host window or terminal of a session.
type Frontend interface {
	chip8.Input
	chip8.Renderer
}

// Session is one loaded program with its scheduler.
type Session struct {
	logger *log.Logger
	sys    *chip8.System
	sched  *chip8.Scheduler
	buzzer *audio.Buzzer
}

// New loads the program named in opts and prepares it to run in RUNNING
// state. The buzzer is disabled when opts.Mute is set or no audio device
// is available.
func New(logger *log.Logger, opts options.Program, frontend Frontend) (*Session, error) {
	sys := chip8.NewSystem(logger, chip8.WithLegacyKeyWait(opts.KeyWaitLegacy))
	if err := sys.LoadFile(opts.ROM); err != nil {
		return nil, fmt.Errorf("loading program: %w", err)
	}
	logger.Debug("Program loaded", log.String("file", opts.ROM))

	s := &Session{
		logger: logger,
		sys:    sys,
	}

	cfg := chip8.SchedulerConfig{
		ClockRate: opts.ClockRate,
		Input:     frontend,
		Renderer:  frontend,
	}
	if !opts.Mute {
		buzzer, err := audio.NewBuzzer()
		if err != nil {
			logger.Warn("Sound disabled", log.Err(err))
		} else {
			s.buzzer = buzzer
			cfg.Buzzer = buzzer
		}
	}

	sched, err := chip8.NewScheduler(sys, logger, cfg)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("creating scheduler: %w", err)
	}
	s.sched = sched
	return s, nil
}

// Run executes the program until it is quit, ctx is canceled or a fault
// occurs.
func (s *Session) Run(ctx context.Context) error {
	if err := s.sched.Run(ctx); err != nil {
		return fmt.Errorf("running program: %w", err)
	}
	s.logger.Debug("Session ended", log.Hex("pc", s.sys.PC()))
	return nil
}

// System returns the machine of the session.
func (s *Session) System() *chip8.System {
	return s.sys
}

// Close releases the audio device.
func (s *Session) Close() {
	if s.buzzer != nil {
		s.buzzer.Close()
		s.buzzer = nil
	}
}

// StartProfile starts a cpu or mem profile written to the working
// directory. An empty mode returns a no-op stopper.
func StartProfile(mode string) (interface{ Stop() }, error) {
	if err := options.ValidateProfile(mode); err != nil {
		return nil, err
	}
	switch mode {
	case options.ProfileCPU:
		return profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.NoShutdownHook), nil
	case options.ProfileMem:
		return profile.Start(profile.MemProfile, profile.ProfilePath("."), profile.NoShutdownHook), nil
	default:
		return nopStopper{}, nil
	}
}

type nopStopper struct{}

func (nopStopper) Stop() {}

// PrintBanner logs the program name and build version.
func PrintBanner(logger *log.Logger, opts options.Program, name, version, commit, date string) {
	if opts.Quiet {
		return
	}
	logger.Info(name, log.String("version", buildinfo.Version(version, commit, date)))
}
