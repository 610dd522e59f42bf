package pingpong

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-revo/dsp/interp"
	"github.com/cwbudde/algo-revo/dsp/params"
)

const defaultMaxFrames = 1024

// Option mutates kernel construction parameters.
type Option func(*config) error

type config struct {
	store       *params.Store
	pan         PanPolicy
	tempo       TempoSync
	mode        interp.Mode
	smoothingMs float64
	maxFrames   int
}

func defaultConfig() config {
	return config{
		pan:       SinePan{},
		tempo:     FreeTime{},
		mode:      interp.Linear,
		maxFrames: defaultMaxFrames,
	}
}

// WithStore shares an existing parameter store instead of creating one.
func WithStore(store *params.Store) Option {
	return func(cfg *config) error {
		if store == nil {
			return errors.New("pingpong: parameter store must not be nil")
		}
		cfg.store = store
		return nil
	}
}

// WithPanPolicy selects the ping-pong pan law. Default: SinePan.
func WithPanPolicy(p PanPolicy) Option {
	return func(cfg *config) error {
		if p == nil {
			return errors.New("pingpong: pan policy must not be nil")
		}
		cfg.pan = p
		return nil
	}
}

// WithTempoSync selects how the musical context shapes the delay time.
// Default: FreeTime.
func WithTempoSync(t TempoSync) Option {
	return func(cfg *config) error {
		if t == nil {
			return errors.New("pingpong: tempo sync must not be nil")
		}
		cfg.tempo = t
		return nil
	}
}

// WithInterpolation selects the fractional read mode. Default: interp.Linear.
func WithInterpolation(mode interp.Mode) Option {
	return func(cfg *config) error {
		if !mode.Valid() {
			return fmt.Errorf("pingpong: unknown interpolation mode: %d", mode)
		}
		cfg.mode = mode
		return nil
	}
}

// WithDelaySmoothing glides the delay time towards its target with a
// one-pole filter of the given time constant. Zero disables smoothing.
func WithDelaySmoothing(ms float64) Option {
	return func(cfg *config) error {
		if ms < 0 || math.IsNaN(ms) || math.IsInf(ms, 0) {
			return fmt.Errorf("pingpong: delay smoothing must be >= 0 and finite: %f", ms)
		}
		cfg.smoothingMs = ms
		return nil
	}
}

// WithMaxFrames sets the initial maximum render block size.
func WithMaxFrames(n int) Option {
	return func(cfg *config) error {
		if n <= 0 {
			return fmt.Errorf("pingpong: max frames must be > 0: %d", n)
		}
		cfg.maxFrames = n
		return nil
	}
}
