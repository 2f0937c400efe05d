package term

import (
	"io"
	"time"

	chip8 "github.com/p47t/vip8"
	"github.com/p47t/vip8/internal/keymap"
)

// DefaultHold is how long a key stays pressed after its last character
// arrived. A raw terminal reports no key releases, so a held key is only
// seen through the terminal's autorepeat.
const DefaultHold = time.Second / 5

const (
	keyCtrlC  = 0x03
	keyEscape = 0x1b
)

// Keyboard is a chip8.Input reading characters from a terminal.
type Keyboard struct {
	chunks chan []byte
	hold   time.Duration
	now    func() time.Time

	released [chip8.KeyCount]time.Time
}

// NewKeyboard starts reading r in the background. r is expected to be a
// terminal in raw mode.
func NewKeyboard(r io.Reader, hold time.Duration) *Keyboard {
	k := newKeyboard(hold, time.Now)
	go k.read(r)
	return k
}

func newKeyboard(hold time.Duration, now func() time.Time) *Keyboard {
	return &Keyboard{
		chunks: make(chan []byte, 16),
		hold:   hold,
		now:    now,
	}
}

func (k *Keyboard) read(r io.Reader) {
	defer close(k.chunks)
	buf := make([]byte, 32)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			k.chunks <- chunk
		}
		if err != nil {
			return
		}
	}
}

// Poll releases expired keys and applies all characters read since the
// last tick. A closed input quits the session.
func (k *Keyboard) Poll(c chip8.Controller) {
	now := k.now()
	for key, deadline := range k.released {
		if !deadline.IsZero() && !now.Before(deadline) {
			c.SetKey(key, false)
			k.released[key] = time.Time{}
		}
	}

	for {
		select {
		case chunk, ok := <-k.chunks:
			if !ok {
				c.SetRunState(chip8.Quit)
				return
			}
			k.handle(chunk, c, now)
		default:
			return
		}
	}
}

func (k *Keyboard) handle(chunk []byte, c chip8.Controller, now time.Time) {
	for i, b := range chunk {
		switch b {
		case keyCtrlC:
			c.SetRunState(chip8.Quit)
			return
		case keyEscape:
			// escape sequences of cursor and function keys are ignored
			if i+1 < len(chunk) && (chunk[i+1] == '[' || chunk[i+1] == 'O') {
				return
			}
			c.SetRunState(chip8.Quit)
			return
		case ' ':
			switch c.RunState() {
			case chip8.Running:
				c.SetRunState(chip8.Stopped)
			case chip8.Stopped:
				c.SetRunState(chip8.Running)
			}
		default:
			if key, ok := keymap.Lookup(rune(b)); ok {
				c.SetKey(key, true)
				k.released[key] = now.Add(k.hold)
			}
		}
	}
}
