package unit

import (
	"fmt"

	"github.com/cwbudde/algo-revo/dsp/effects/pingpong"
)

// AllocateRenderResources verifies the bus formats, sizes the input bus for
// the maximum block and initializes the kernel. On failure the unit stays
// unallocated and the error wraps pingpong.ErrFailedInitialization.
// Allocating an allocated unit reallocates it.
func (u *Unit) AllocateRenderResources() error {
	u.mu.Lock()
	defer u.mu.Unlock()

	u.deallocate()

	if u.input.Channels != u.output.Channels {
		return fmt.Errorf("%w: input bus has %d channels, output bus has %d",
			pingpong.ErrFailedInitialization, u.input.Channels, u.output.Channels)
	}
	if u.input.SampleRate != u.output.SampleRate {
		return fmt.Errorf("%w: input bus runs at %.0f Hz, output bus at %.0f Hz",
			pingpong.ErrFailedInitialization, u.input.SampleRate, u.output.SampleRate)
	}

	u.kernel.SetMaximumFramesToRender(u.maxFrames)
	if err := u.kernel.Initialize(u.input.Channels, u.output.Channels, u.output.SampleRate); err != nil {
		return fmt.Errorf("allocate render resources: %w", err)
	}

	u.bus = NewInputBus(u.input.Channels, u.maxFrames)
	u.allocated = true
	debug("allocated %d channels at %.0f Hz, %d frames", u.output.Channels, u.output.SampleRate, u.maxFrames)
	return nil
}

// DeallocateRenderResources releases the buffers and returns the kernel to
// the uninitialized state. It is idempotent.
func (u *Unit) DeallocateRenderResources() {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.deallocate()
}

func (u *Unit) deallocate() {
	if !u.allocated {
		return
	}
	u.kernel.DeInitialize()
	u.bus = nil
	u.allocated = false
	debug("deallocated render resources")
}

// RenderResourcesAllocated reports whether Render may be called.
func (u *Unit) RenderResourcesAllocated() bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.allocated
}

// Reset clears the echo tail without reallocating.
func (u *Unit) Reset() {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.allocated {
		u.kernel.Reset()
	}
}

// Faults returns the number of render calls the kernel degraded.
func (u *Unit) Faults() uint64 { return u.kernel.Faults() }

// PullFailures returns the number of input pulls that failed and were
// replaced by silence.
func (u *Unit) PullFailures() uint64 {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.bus == nil {
		return 0
	}
	return u.bus.Failures()
}
