package pingpong

import "math"

// PanPolicy maps an oscillator phase in cycles, [0, 1), to a pan position in
// [-1, 1]. Negative values favor the first channel, positive the second.
type PanPolicy interface {
	Pan(phase float64) float64
}

// PanFunc adapts a plain function to PanPolicy.
type PanFunc func(phase float64) float64

// Pan calls f(phase).
func (f PanFunc) Pan(phase float64) float64 { return f(phase) }

// SinePan sweeps the echo smoothly with a sine oscillator.
type SinePan struct{}

// Pan returns sin(2*pi*phase).
func (SinePan) Pan(phase float64) float64 {
	return math.Sin(2 * math.Pi * phase)
}

// SquarePan bounces the echo hard between the two channels.
type SquarePan struct{}

// Pan returns +1 during the first half cycle and -1 during the second.
func (SquarePan) Pan(phase float64) float64 {
	if phase < 0.5 {
		return 1
	}
	return -1
}
