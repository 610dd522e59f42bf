package host

import (
	"sync/atomic"

	"github.com/GeoffreyPlitt/debuggo"

	"github.com/cwbudde/algo-revo/dsp/buffer"
	"github.com/cwbudde/algo-revo/unit"
)

var debug = debuggo.Debug("revo:host")

// Renderer is the render surface of a unit. *unit.Unit implements it.
type Renderer interface {
	Render(output [][]float64, frameCount int, sampleTime int64, pull unit.PullFunc) error
	MaximumFramesToRender() int
	OutputFormat() unit.Format
}

// Processor feeds planar host buffers through a Renderer. Its Process
// method does not allocate and may run on a real-time thread.
type Processor[S buffer.Sample] struct {
	r         Renderer
	channels  int
	maxFrames int

	out     *buffer.List
	inView  [][]S
	outView [][]S
	pull    unit.PullFunc

	sampleTime int64
	errors     atomic.Uint64
}

// NewProcessor sizes a processor for r's current output format and block
// size. Create it after the unit's render resources are allocated.
func NewProcessor[S buffer.Sample](r Renderer) *Processor[S] {
	f := r.OutputFormat()
	maxFrames := max(r.MaximumFramesToRender(), 1)
	p := &Processor[S]{
		r:         r,
		channels:  f.Channels,
		maxFrames: maxFrames,
		out:       buffer.NewList(f.Channels, maxFrames),
		inView:    make([][]S, f.Channels),
		outView:   make([][]S, f.Channels),
	}
	p.pull = p.pullInput
	debug("processor: %d channels, %d frames per chunk", f.Channels, maxFrames)
	return p
}

// Process renders frames frames from in to out. Host blocks larger than
// the unit's maximum are split. Missing or short input channels read as
// silence; a failed render chunk is written as silence and counted.
func (p *Processor[S]) Process(in, out [][]S, frames int) {
	for done := 0; done < frames; {
		n := min(frames-done, p.maxFrames)
		slice(p.inView, in, done, n)
		slice(p.outView, out, done, n)

		view := p.out.View(n)
		if err := p.r.Render(view, n, p.sampleTime, p.pull); err != nil {
			p.errors.Add(1)
			buffer.Store[S](p.outView, nil, n)
		} else {
			buffer.Store(p.outView, view, n)
		}

		p.sampleTime += int64(n)
		done += n
	}
}

func (p *Processor[S]) pullInput(frameCount int, _ int64, dst [][]float64) error {
	buffer.Load(dst, p.inView, frameCount)
	return nil
}

// slice points each view channel at src[ch][off:off+n], or nil when the
// host channel is missing or too short.
func slice[S buffer.Sample](view, src [][]S, off, n int) {
	for ch := range view {
		view[ch] = nil
		if ch < len(src) && len(src[ch]) >= off+n {
			view[ch] = src[ch][off : off+n]
		}
	}
}

// SampleTime returns the number of frames processed so far.
func (p *Processor[S]) SampleTime() int64 { return p.sampleTime }

// Errors returns the number of render chunks that failed.
func (p *Processor[S]) Errors() uint64 { return p.errors.Load() }
