package chip8

import (
	"context"
	"fmt"
	"time"

	"github.com/retroenv/retrogolib/log"
)

const (
	TimerHz          = 60
	DefaultClockRate = 720 // instructions per second
)

type RunState int

const (
	Running RunState = iota
	Stopped
	Quit
)

func (s RunState) String() string {
	switch s {
	case Running:
		return "running"
	case Stopped:
		return "stopped"
	case Quit:
		return "quit"
	default:
		return fmt.Sprintf("RunState(%d)", int(s))
	}
}

// Controller is the view of the scheduler an Input gets once per tick.
type Controller interface {
	SetKey(key int, pressed bool)
	SetRunState(state RunState)
	RunState() RunState
}

// Input samples the host keyboard and window. Poll is called once per tick
// before any instruction runs.
type Input interface {
	Poll(c Controller)
}

// Renderer draws a frame. The frame is only valid during the call.
type Renderer interface {
	Render(frame *Frame)
}

// Buzzer plays a tone while the sound timer is running.
type Buzzer interface {
	SetTone(on bool)
}

type SchedulerConfig struct {
	ClockRate int // instructions per second, 0 selects DefaultClockRate
	Input     Input
	Renderer  Renderer
	Buzzer    Buzzer
}

// Scheduler runs a System at a fixed number of instructions per 60Hz tick.
// Each tick: input, instructions, render, timers, pacing.
type Scheduler struct {
	sys    *System
	logger *log.Logger

	input    Input
	renderer Renderer
	buzzer   Buzzer

	perTick int
	state   RunState
	frame   Frame
	tone    bool
}

func NewScheduler(sys *System, logger *log.Logger, cfg SchedulerConfig) (*Scheduler, error) {
	rate := cfg.ClockRate
	if rate == 0 {
		rate = DefaultClockRate
	}
	if rate < TimerHz {
		return nil, fmt.Errorf("%w: %d", ErrInvalidClockRate, rate)
	}
	if rate%TimerHz != 0 {
		logger.Warn("Clock rate is not a multiple of the timer rate, truncating",
			log.Int("clock_rate", rate),
			log.Int("effective_rate", rate/TimerHz*TimerHz))
	}

	return &Scheduler{
		sys:      sys,
		logger:   logger,
		input:    cfg.Input,
		renderer: cfg.Renderer,
		buzzer:   cfg.Buzzer,
		perTick:  rate / TimerHz,
		state:    Running,
	}, nil
}

func (s *Scheduler) SetKey(key int, pressed bool) {
	s.sys.SetKey(key, pressed)
}

func (s *Scheduler) SetRunState(state RunState) {
	if state == s.state || s.state == Quit {
		return
	}
	switch state {
	case Running:
		s.logger.Info("Resumed")
	case Stopped:
		s.logger.Info("Paused")
	}
	s.state = state
}

func (s *Scheduler) RunState() RunState {
	return s.state
}

// InstructionsPerTick is the batch size executed per tick.
func (s *Scheduler) InstructionsPerTick() int {
	return s.perTick
}

// Tick performs one scheduler iteration without pacing. A returned error is
// a fatal fault; the scheduler is in Quit afterwards and nothing from the
// faulting tick is rendered.
func (s *Scheduler) Tick() (RunState, error) {
	if s.input != nil {
		s.input.Poll(s)
	}

	switch s.state {
	case Quit:
		s.setTone(false)
		return Quit, nil
	case Stopped:
		s.setTone(false)
		s.publish()
		return Stopped, nil
	}

	for i := 0; i < s.perTick; i++ {
		if err := s.sys.Step(); err != nil {
			return s.halt(err)
		}
		if s.sys.AwaitingKey() {
			break
		}
	}

	if pc := s.sys.PC(); pc >= MemorySize {
		return s.halt(&Fault{Err: ErrPCOutOfRange, PC: pc})
	}

	s.publish()
	s.setTone(s.sys.Sounding())
	s.sys.UpdateTimers()

	return s.state, nil
}

// Run ticks at TimerHz until the run state becomes Quit, ctx is done, or a
// fault occurs.
func (s *Scheduler) Run(ctx context.Context) error {
	period := time.Second / TimerHz
	timer := time.NewTimer(period)
	defer timer.Stop()

	for {
		if ctx.Err() != nil {
			s.SetRunState(Quit)
			s.setTone(false)
			return nil
		}

		start := time.Now()
		state, err := s.Tick()
		if err != nil {
			return err
		}
		if state == Quit {
			return nil
		}

		elapsed := time.Since(start)
		if elapsed >= period {
			continue
		}
		timer.Reset(period - elapsed)
		select {
		case <-ctx.Done():
		case <-timer.C:
		}
	}
}

func (s *Scheduler) halt(err error) (RunState, error) {
	s.state = Quit
	s.setTone(false)
	return Quit, err
}

func (s *Scheduler) publish() {
	if s.renderer == nil {
		return
	}
	s.sys.Frame(&s.frame)
	s.renderer.Render(&s.frame)
}

func (s *Scheduler) setTone(on bool) {
	if s.buzzer == nil || on == s.tone {
		return
	}
	s.tone = on
	s.buzzer.SetTone(on)
}
