package pingpong

import (
	"math"

	"github.com/cwbudde/algo-revo/dsp/core"
	"github.com/cwbudde/algo-revo/dsp/delay"
	"github.com/cwbudde/algo-vecmath"
)

// Process renders frameCount frames from in to out. in and out may alias.
// Requests the kernel cannot honor (not initialized, too many frames, short
// or missing channels, changed sample rate) are passed through unchanged.
func (k *Kernel) Process(in, out [][]float64, frameCount int, ctx RenderContext) {
	defer k.recoverFault(in, out, frameCount)

	if !k.renderable(in, out, frameCount, ctx) {
		k.faults.Add(1)
		passthrough(in, out, frameCount)
		return
	}
	if frameCount == 0 {
		return
	}

	n := frameCount
	p := k.store.Snapshot()

	interval := p.TimeInterval
	if ctx.Musical != nil {
		interval = k.tempo.DelaySeconds(interval, *ctx.Musical)
	}
	target := core.Clamp(interval*k.sampleRate, 1, k.maxDelay)
	if math.IsNaN(target) {
		target = 1
	}
	track := k.delayTrack[:n]
	k.fillDelayTrack(track, target)

	fb := p.FeedbackGain()
	delayed := k.delayed.View(n)
	for ch := 0; ch < k.channels; ch++ {
		if p.Zeno {
			recirculate(k.lines[ch], delayed[ch], track)
		} else {
			feed(k.lines[ch], in[ch][:n], delayed[ch], track, fb)
		}
	}

	wet := delayed
	if p.PingPong && k.channels >= 2 {
		wet = k.route(delayed, n, p.Frequency)
	}

	if k.bypassed.Load() {
		for ch := 0; ch < k.channels; ch++ {
			copy(out[ch][:n], in[ch][:n])
		}
		return
	}

	dry, wg := p.DryGain(), p.WetGain()
	tmp := k.scratch[:n]
	for ch := 0; ch < k.channels; ch++ {
		o := out[ch][:n]
		vecmath.ScaleBlock(tmp, wet[ch], wg)
		vecmath.ScaleBlock(o, in[ch][:n], dry)
		vecmath.AddBlockInPlace(o, tmp)
	}
}

func (k *Kernel) renderable(in, out [][]float64, frameCount int, ctx RenderContext) bool {
	if k.state != Initialized || frameCount < 0 || frameCount > k.allocFrames {
		return false
	}
	if ctx.SampleRate != 0 && ctx.SampleRate != k.sampleRate {
		return false
	}
	if len(in) < k.channels || len(out) < k.channels {
		return false
	}
	for ch := 0; ch < k.channels; ch++ {
		if len(in[ch]) < frameCount || len(out[ch]) < frameCount {
			return false
		}
	}
	return true
}

// recoverFault turns a panic inside Process into a counted passthrough.
func (k *Kernel) recoverFault(in, out [][]float64, frameCount int) {
	if r := recover(); r != nil {
		k.faults.Add(1)
		passthrough(in, out, frameCount)
	}
}

// passthrough copies whatever input exists to out and silences the rest.
func passthrough(in, out [][]float64, frameCount int) {
	if frameCount < 0 {
		frameCount = 0
	}
	for ch, o := range out {
		m := min(frameCount, len(o))
		o = o[:m]
		var src []float64
		if ch < len(in) {
			src = in[ch]
		}
		core.CopyPadded(o, src)
	}
}

// fillDelayTrack writes the per-sample delay in samples, gliding towards
// target when smoothing is enabled.
func (k *Kernel) fillDelayTrack(track []float64, target float64) {
	if !k.primed {
		k.currentDelay = target
		k.primed = true
	}
	if k.smoothCoef == 0 {
		k.currentDelay = target
		for i := range track {
			track[i] = target
		}
		return
	}
	for i := range track {
		k.currentDelay += k.smoothCoef * (target - k.currentDelay)
		track[i] = k.currentDelay
	}
}

// feed reads the echo and writes input plus feedback into the line.
func feed(line *delay.Line, in, delayed, track []float64, fb float64) {
	for i, x := range in {
		if !core.IsFinite(x) {
			x = 0
		}
		d := line.ReadFractional(track[i])
		delayed[i] = d
		line.Write(core.Sanitize(x + d*fb))
	}
}

// recirculate loops the buffered content with unity gain, ignoring input.
func recirculate(line *delay.Line, delayed, track []float64) {
	for i := range delayed {
		delayed[i] = line.Recirculate(int(math.Round(track[i])))
	}
}

// route pans the echoes of the first two channels with the pan oscillator:
// channel 0 is scaled by the left gain and channel 1 by the right gain, so
// each side keeps its own echo. Further channels keep their echo unpanned.
func (k *Kernel) route(delayed [][]float64, n int, freq float64) [][]float64 {
	gl, gr := k.gainL[:n], k.gainR[:n]
	inc := freq / k.sampleRate
	for i := range gl {
		pan := core.Clamp(k.pan.Pan(k.phase), -1, 1)
		gl[i] = (1 - pan) * 0.5
		gr[i] = (1 + pan) * 0.5
		k.phase += inc
		if k.phase >= 1 {
			k.phase -= math.Floor(k.phase)
		}
	}

	wet := k.wet.View(n)
	vecmath.MulBlock(wet[0], delayed[0], gl)
	vecmath.MulBlock(wet[1], delayed[1], gr)
	for ch := 2; ch < k.channels; ch++ {
		copy(wet[ch], delayed[ch])
	}
	return wet
}
