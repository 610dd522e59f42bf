package unit

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"

	"github.com/GeoffreyPlitt/debuggo"

	"github.com/cwbudde/algo-revo/dsp/core"
	"github.com/cwbudde/algo-revo/dsp/effects/pingpong"
	"github.com/cwbudde/algo-revo/dsp/params"
)

var debug = debuggo.Debug("revo:unit")

// Render errors. They are preallocated so that Render never formats.
var (
	ErrNotAllocated      = errors.New("unit: render resources not allocated")
	ErrTooManyFrames     = errors.New("unit: frame count exceeds maximum frames to render")
	ErrInvalidFrameCount = errors.New("unit: negative frame count")
	ErrChannelMismatch   = errors.New("unit: output channel count does not match bus format")
	ErrBufferTooShort    = errors.New("unit: output buffer shorter than frame count")
)

// Control-path errors.
var (
	ErrAllocated     = errors.New("unit: render resources are allocated")
	ErrInvalidFormat = errors.New("unit: invalid bus format")
)

// Format describes one bus: deinterleaved float64 channels at a sample rate.
type Format struct {
	SampleRate float64
	Channels   int
}

func (f Format) validate() error {
	if f.Channels <= 0 {
		return fmt.Errorf("%w: channel count must be > 0: %d", ErrInvalidFormat, f.Channels)
	}
	if !(f.SampleRate > 0) || math.IsInf(f.SampleRate, 0) {
		return fmt.Errorf("%w: sample rate must be > 0 and finite: %f", ErrInvalidFormat, f.SampleRate)
	}
	return nil
}

// MusicalContextFunc reports the host transport state. It is called at most
// once per Render; ok=false means no musical context is available.
type MusicalContextFunc func() (mc pingpong.MusicalContext, ok bool)

// Option mutates unit construction parameters.
type Option func(*config) error

type config struct {
	processor  core.ProcessorConfig
	kernelOpts []pingpong.Option
	musical    MusicalContextFunc
}

// WithFormat sets both bus formats.
func WithFormat(sampleRate float64, channels int) Option {
	return func(cfg *config) error {
		if err := (Format{SampleRate: sampleRate, Channels: channels}).validate(); err != nil {
			return err
		}
		cfg.processor = core.ApplyProcessorOptions(
			core.WithSampleRate(sampleRate),
			core.WithChannels(channels),
			core.WithMaxFrames(cfg.processor.MaxFrames),
		)
		return nil
	}
}

// WithMaxFrames sets the maximum frame count per Render call.
func WithMaxFrames(n int) Option {
	return func(cfg *config) error {
		if n <= 0 {
			return fmt.Errorf("unit: max frames must be > 0: %d", n)
		}
		cfg.processor.MaxFrames = n
		return nil
	}
}

// WithKernelOptions forwards options to the echo kernel.
func WithKernelOptions(opts ...pingpong.Option) Option {
	return func(cfg *config) error {
		cfg.kernelOpts = append(cfg.kernelOpts, opts...)
		return nil
	}
}

// WithMusicalContext installs the host transport callback.
func WithMusicalContext(fn MusicalContextFunc) Option {
	return func(cfg *config) error {
		cfg.musical = fn
		return nil
	}
}

// Unit is the echo audio unit.
type Unit struct {
	mu sync.Mutex

	kernel    *pingpong.Kernel
	input     Format
	output    Format
	maxFrames int
	musical   atomic.Pointer[MusicalContextFunc]

	allocated bool
	bus       *InputBus
	mc        pingpong.MusicalContext
}

// New creates an unallocated unit. The default format is the
// core.DefaultProcessorConfig one on both buses.
func New(opts ...Option) (*Unit, error) {
	cfg := config{processor: core.DefaultProcessorConfig()}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	kernel, err := pingpong.New(cfg.kernelOpts...)
	if err != nil {
		return nil, fmt.Errorf("unit: create kernel: %w", err)
	}

	f := Format{SampleRate: cfg.processor.SampleRate, Channels: cfg.processor.Channels}
	u := &Unit{
		kernel:    kernel,
		input:     f,
		output:    f,
		maxFrames: cfg.processor.MaxFrames,
	}
	u.SetMusicalContextFunc(cfg.musical)
	return u, nil
}

// Kernel exposes the echo kernel.
func (u *Unit) Kernel() *pingpong.Kernel { return u.kernel }

// InputFormat returns the input bus format.
func (u *Unit) InputFormat() Format {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.input
}

// OutputFormat returns the output bus format.
func (u *Unit) OutputFormat() Format {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.output
}

// SetInputFormat changes the input bus format. It fails while render
// resources are allocated.
func (u *Unit) SetInputFormat(f Format) error {
	return u.setFormat(&u.input, f, "input")
}

// SetOutputFormat changes the output bus format. It fails while render
// resources are allocated.
func (u *Unit) SetOutputFormat(f Format) error {
	return u.setFormat(&u.output, f, "output")
}

func (u *Unit) setFormat(dst *Format, f Format, bus string) error {
	if err := f.validate(); err != nil {
		return err
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.allocated {
		return fmt.Errorf("set %s format: %w", bus, ErrAllocated)
	}
	*dst = f
	debug("%s format: %d channels at %.0f Hz", bus, f.Channels, f.SampleRate)
	return nil
}

// MaximumFramesToRender returns the largest frame count Render accepts.
func (u *Unit) MaximumFramesToRender() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.maxFrames
}

// SetMaximumFramesToRender changes the block size. It fails while render
// resources are allocated.
func (u *Unit) SetMaximumFramesToRender(n int) error {
	if n <= 0 {
		return fmt.Errorf("unit: max frames must be > 0: %d", n)
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.allocated {
		return fmt.Errorf("set maximum frames: %w", ErrAllocated)
	}
	u.maxFrames = n
	return nil
}

// SetMusicalContextFunc replaces the host transport callback. Pass nil to
// render without musical context. It may be called while rendering; the
// change applies from the next Render call.
func (u *Unit) SetMusicalContextFunc(fn MusicalContextFunc) {
	if fn == nil {
		u.musical.Store(nil)
		return
	}
	u.musical.Store(&fn)
}

// IsBypassed reports whether the unit passes audio through unchanged.
func (u *Unit) IsBypassed() bool { return u.kernel.IsBypassed() }

// SetBypass takes effect from the next Render call.
func (u *Unit) SetBypass(on bool) { u.kernel.SetBypass(on) }

// Parameter returns the current value of a parameter.
func (u *Unit) Parameter(addr params.Address) float64 { return u.kernel.GetParameter(addr) }

// SetParameter clamps and publishes a parameter value.
func (u *Unit) SetParameter(addr params.Address, value float64) {
	u.kernel.SetParameter(addr, value)
}

// ParameterString formats the current value of a parameter for display.
func (u *Unit) ParameterString(addr params.Address) string {
	return params.Stringify(addr, u.kernel.GetParameter(addr))
}

// Parameters returns the parameter table.
func (u *Unit) Parameters() [params.Count]params.Descriptor { return params.Table() }
