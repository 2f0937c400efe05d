// Package audio plays the buzzer tone through the system speaker.
package audio

import (
	"fmt"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/speaker"
)

const (
	SampleRate = beep.SampleRate(44100)
	ToneHz     = 440
	Volume     = 0.15
)

// Buzzer is a chip8.Buzzer producing a square wave while the tone is on.
type Buzzer struct {
	ctrl *beep.Ctrl
}

// NewBuzzer initializes the speaker and starts a paused tone stream.
func NewBuzzer() (*Buzzer, error) {
	if err := speaker.Init(SampleRate, SampleRate.N(time.Second/30)); err != nil {
		return nil, fmt.Errorf("initializing speaker: %w", err)
	}

	ctrl := &beep.Ctrl{
		Streamer: newSquareWave(SampleRate, ToneHz, Volume),
		Paused:   true,
	}
	speaker.Play(ctrl)
	return &Buzzer{ctrl: ctrl}, nil
}

func (b *Buzzer) SetTone(on bool) {
	speaker.Lock()
	b.ctrl.Paused = !on
	speaker.Unlock()
}

// Close stops playback and releases the audio device.
func (b *Buzzer) Close() {
	speaker.Clear()
	speaker.Close()
}

// squareWave is an endless streamer alternating between +volume and -volume.
type squareWave struct {
	period int // samples per cycle
	pos    int
	volume float64
}

func newSquareWave(sr beep.SampleRate, hz int, volume float64) *squareWave {
	period := int(sr) / hz
	if period < 2 {
		period = 2
	}
	return &squareWave{period: period, volume: volume}
}

func (w *squareWave) Stream(samples [][2]float64) (int, bool) {
	for i := range samples {
		v := w.volume
		if w.pos >= w.period/2 {
			v = -v
		}
		samples[i][0], samples[i][1] = v, v
		w.pos = (w.pos + 1) % w.period
	}
	return len(samples), true
}

func (w *squareWave) Err() error {
	return nil
}
