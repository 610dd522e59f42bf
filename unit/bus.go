package unit

import (
	"sync/atomic"

	"github.com/cwbudde/algo-revo/dsp/buffer"
)

// PullFunc fills dst, one slice of frameCount samples per input channel,
// with the host's input for the buffer starting at sampleTime.
type PullFunc func(frameCount int, sampleTime int64, dst [][]float64) error

// InputBus owns the input buffers of an allocated unit.
type InputBus struct {
	list     *buffer.List
	failures atomic.Uint64
}

// NewInputBus allocates an input bus for channels x maxFrames samples.
func NewInputBus(channels, maxFrames int) *InputBus {
	return &InputBus{list: buffer.NewList(channels, maxFrames)}
}

// Channels returns the bus channel count.
func (b *InputBus) Channels() int { return b.list.Channels() }

// Pull returns a frameCount view of the bus filled by pull. A nil pull
// function or a failing pull yields silence.
func (b *InputBus) Pull(frameCount int, sampleTime int64, pull PullFunc) [][]float64 {
	view := b.list.View(frameCount)
	if pull == nil {
		b.list.Zero()
		return view
	}
	if err := pull(frameCount, sampleTime, view); err != nil {
		b.failures.Add(1)
		b.list.Zero()
	}
	return view
}

// Failures returns the number of failed pulls.
func (b *InputBus) Failures() uint64 { return b.failures.Load() }
