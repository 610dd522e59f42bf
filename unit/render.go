package unit

import "github.com/cwbudde/algo-revo/dsp/effects/pingpong"

// Render processes frameCount frames. Input is pulled through pull into the
// unit's own bus; output is written to output, which must hold one slice per
// output channel. A nil channel slice renders in place into the input bus
// and is replaced by that buffer, valid until the next Render call.
func (u *Unit) Render(output [][]float64, frameCount int, sampleTime int64, pull PullFunc) error {
	if !u.allocated {
		return ErrNotAllocated
	}
	if frameCount < 0 {
		return ErrInvalidFrameCount
	}
	if frameCount > u.maxFrames {
		return ErrTooManyFrames
	}
	if len(output) != u.output.Channels {
		return ErrChannelMismatch
	}
	for _, o := range output {
		if o != nil && len(o) < frameCount {
			return ErrBufferTooShort
		}
	}

	in := u.bus.Pull(frameCount, sampleTime, pull)
	for ch := range output {
		if output[ch] == nil {
			output[ch] = in[ch]
		}
	}

	ctx := pingpong.RenderContext{SampleTime: sampleTime, SampleRate: u.output.SampleRate}
	if fn := u.musical.Load(); fn != nil {
		if mc, ok := (*fn)(); ok {
			u.mc = mc
			ctx.Musical = &u.mc
		}
	}

	u.kernel.Process(in, output, frameCount, ctx)
	return nil
}
