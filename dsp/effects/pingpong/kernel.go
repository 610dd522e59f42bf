package pingpong

import (
	"errors"
	"fmt"
	"math"
	"sync/atomic"

	"github.com/cwbudde/algo-revo/dsp/buffer"
	"github.com/cwbudde/algo-revo/dsp/delay"
	"github.com/cwbudde/algo-revo/dsp/interp"
	"github.com/cwbudde/algo-revo/dsp/params"
)

// ErrFailedInitialization is returned by Initialize when the channel layout
// or sample rate cannot be rendered.
var ErrFailedInitialization = errors.New("pingpong: failed initialization")

// State is the kernel lifecycle state.
type State int

// Kernel states.
const (
	Uninitialized State = iota
	Initialized
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Initialized:
		return "initialized"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// RenderContext carries per-call host information into Process.
type RenderContext struct {
	SampleTime int64
	// SampleRate of the incoming audio; zero means the initialized rate.
	SampleRate float64
	// Musical is nil when the host provides no transport information.
	Musical *MusicalContext
}

// Kernel is the echo DSP core. Control methods (Initialize, DeInitialize,
// Reset, SetMaximumFramesToRender) must not run concurrently with Process or
// with each other. Parameter and bypass access is safe from any goroutine.
type Kernel struct {
	store       *params.Store
	pan         PanPolicy
	tempo       TempoSync
	mode        interp.Mode
	smoothingMs float64
	maxFrames   int

	bypassed atomic.Bool
	faults   atomic.Uint64

	state       State
	sampleRate  float64
	channels    int
	allocFrames int
	maxDelay    float64

	lines   []*delay.Line
	delayed *buffer.List
	wet     *buffer.List

	scratch    []float64
	gainL      []float64
	gainR      []float64
	delayTrack []float64

	phase        float64
	currentDelay float64
	smoothCoef   float64
	primed       bool
}

// New creates an uninitialized kernel.
func New(opts ...Option) (*Kernel, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}
	if cfg.store == nil {
		cfg.store = params.NewStore()
	}

	return &Kernel{
		store:       cfg.store,
		pan:         cfg.pan,
		tempo:       cfg.tempo,
		mode:        cfg.mode,
		smoothingMs: cfg.smoothingMs,
		maxFrames:   cfg.maxFrames,
	}, nil
}

// Initialize prepares the kernel for inputChannels == outputChannels
// channels at sampleRate. On failure the kernel is left uninitialized.
// Calling Initialize on an initialized kernel re-initializes it.
func (k *Kernel) Initialize(inputChannels, outputChannels int, sampleRate float64) error {
	k.DeInitialize()

	if inputChannels != outputChannels {
		return fmt.Errorf("%w: input has %d channels, output has %d",
			ErrFailedInitialization, inputChannels, outputChannels)
	}
	if inputChannels <= 0 {
		return fmt.Errorf("%w: channel count must be > 0: %d", ErrFailedInitialization, inputChannels)
	}
	if !(sampleRate > 0) || math.IsInf(sampleRate, 0) {
		return fmt.Errorf("%w: sample rate must be > 0 and finite: %f", ErrFailedInitialization, sampleRate)
	}

	frames := k.maxFrames
	size := delay.Capacity(params.MaxTimeInterval, sampleRate, frames)
	lines := make([]*delay.Line, inputChannels)
	for ch := range lines {
		line, err := delay.New(size, delay.WithMode(k.mode))
		if err != nil {
			return fmt.Errorf("%w: %w", ErrFailedInitialization, err)
		}
		lines[ch] = line
	}

	k.lines = lines
	k.channels = inputChannels
	k.sampleRate = sampleRate
	k.allocFrames = frames
	k.maxDelay = math.Ceil(params.MaxTimeInterval * sampleRate)
	k.delayed = buffer.NewList(inputChannels, frames)
	k.wet = buffer.NewList(inputChannels, frames)
	k.scratch = make([]float64, frames)
	k.gainL = make([]float64, frames)
	k.gainR = make([]float64, frames)
	k.delayTrack = make([]float64, frames)

	k.smoothCoef = 0
	if k.smoothingMs > 0 {
		k.smoothCoef = 1 - math.Exp(-1/(k.smoothingMs*0.001*sampleRate))
	}
	k.phase = 0
	k.primed = false
	k.state = Initialized
	return nil
}

// DeInitialize releases the delay lines and scratch buffers. Parameter
// values and bypass survive.
func (k *Kernel) DeInitialize() {
	k.state = Uninitialized
	k.lines = nil
	k.delayed = nil
	k.wet = nil
	k.scratch = nil
	k.gainL = nil
	k.gainR = nil
	k.delayTrack = nil
	k.channels = 0
	k.allocFrames = 0
}

// Reset clears the delay lines and restarts the pan oscillator.
func (k *Kernel) Reset() {
	for _, line := range k.lines {
		line.Reset()
	}
	k.phase = 0
	k.primed = false
}

// State returns the lifecycle state.
func (k *Kernel) State() State { return k.state }

// Channels returns the initialized channel count, or 0.
func (k *Kernel) Channels() int { return k.channels }

// SampleRate returns the initialized sample rate, or 0.
func (k *Kernel) SampleRate() float64 {
	if k.state != Initialized {
		return 0
	}
	return k.sampleRate
}

// Store returns the parameter store the kernel reads from.
func (k *Kernel) Store() *params.Store { return k.store }

// MaximumFramesToRender returns the largest frame count Process accepts
// after the next Initialize.
func (k *Kernel) MaximumFramesToRender() int { return k.maxFrames }

// SetMaximumFramesToRender sets the block size used by the next Initialize.
// Non-positive values are ignored.
func (k *Kernel) SetMaximumFramesToRender(n int) {
	if n > 0 {
		k.maxFrames = n
	}
}

// IsBypassed reports whether the kernel passes input through unchanged.
func (k *Kernel) IsBypassed() bool { return k.bypassed.Load() }

// SetBypass enables or disables bypass. The delay lines keep running while
// bypassed.
func (k *Kernel) SetBypass(on bool) { k.bypassed.Store(on) }

// GetParameter returns the current value of a parameter.
func (k *Kernel) GetParameter(addr params.Address) float64 { return k.store.Get(addr) }

// SetParameter clamps and publishes a parameter value.
func (k *Kernel) SetParameter(addr params.Address, value float64) { k.store.Set(addr, value) }

// Faults returns the number of Process calls that degraded to passthrough.
func (k *Kernel) Faults() uint64 { return k.faults.Load() }
