package delay

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-revo/dsp/interp"
)

// interpolationGuard is the number of extra slots a fractional read may touch
// beyond the requested delay.
const interpolationGuard = 3

// Line is a circular delay line.
type Line struct {
	buffer   []float64
	writePos int
	mode     interp.Mode
}

// Option configures a Line at construction time.
type Option func(*Line)

// WithMode selects the interpolation used by ReadFractional.
func WithMode(mode interp.Mode) Option {
	return func(d *Line) {
		if mode.Valid() {
			d.mode = mode
		}
	}
}

// Capacity returns the line size that holds maxSeconds of audio at
// sampleRate plus headroom samples and the interpolation guard.
func Capacity(maxSeconds, sampleRate float64, headroom int) int {
	if headroom < 0 {
		headroom = 0
	}
	return int(math.Ceil(maxSeconds*sampleRate)) + headroom + interpolationGuard
}

// New returns a delay line of fixed size. The default read mode is linear.
func New(size int, opts ...Option) (*Line, error) {
	if size <= interpolationGuard {
		return nil, fmt.Errorf("delay size must be > %d: %d", interpolationGuard, size)
	}
	d := &Line{buffer: make([]float64, size), mode: interp.Linear}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
	return d, nil
}

// Len returns internal buffer size.
func (d *Line) Len() int {
	return len(d.buffer)
}

// Mode returns the interpolation mode used by ReadFractional.
func (d *Line) Mode() interp.Mode {
	return d.mode
}

// MaxDelay returns the largest delay ReadFractional accepts without clamping.
func (d *Line) MaxDelay() float64 {
	return float64(len(d.buffer) - interpolationGuard)
}

// Write writes one sample and advances the write head.
func (d *Line) Write(sample float64) {
	d.buffer[d.writePos] = sample
	d.writePos++
	if d.writePos >= len(d.buffer) {
		d.writePos = 0
	}
}

// Read reads an integer delay in samples. Read(1) is the most recently
// written sample; delays are clamped to [0, Len()].
func (d *Line) Read(delay int) float64 {
	size := len(d.buffer)
	if size == 0 {
		return 0
	}
	if delay < 0 {
		delay = 0
	} else if delay > size {
		delay = size
	}
	readPos := d.writePos - delay
	if readPos < 0 {
		readPos += size
	}
	return d.buffer[readPos]
}

// ReadFractional reads a fractional delay in samples using the line's
// interpolation mode. Delays are clamped to [1, MaxDelay()].
func (d *Line) ReadFractional(delay float64) float64 {
	if len(d.buffer) == 0 {
		return 0
	}
	if !(delay >= 1) {
		delay = 1
	}
	if maxDelay := d.MaxDelay(); delay > maxDelay {
		delay = maxDelay
	}

	p := int(delay)
	t := delay - float64(p)

	x0 := d.Read(p)
	x1 := d.Read(p + 1)
	if d.mode == interp.Linear {
		return interp.Linear2(t, x0, x1)
	}

	xm1 := d.Read(max(1, p-1))
	x2 := d.Read(p + 2)
	return interp.Hermite4(t, xm1, x0, x1, x2)
}

// Recirculate writes the sample found delay samples back as the newest
// sample, so the last delay samples repeat without taking new input. It
// returns the recirculated value.
func (d *Line) Recirculate(delay int) float64 {
	if delay < 1 {
		delay = 1
	}
	v := d.Read(delay)
	d.Write(v)
	return v
}

// Reset clears line state.
func (d *Line) Reset() {
	for i := range d.buffer {
		d.buffer[i] = 0
	}
	d.writePos = 0
}
