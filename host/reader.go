package host

import (
	"cmp"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"slices"

	"github.com/cwbudde/algo-revo/dsp/buffer"
	"github.com/cwbudde/algo-revo/unit"
)

// Reader renders planar source audio on demand and serves it as
// interleaved float32 little-endian PCM, the format oto players consume.
// After the source ends, tail frames of silence are rendered so the echo
// can ring out.
type Reader struct {
	r        Renderer
	src      [][]float64
	channels int
	total    int
	pos      int

	out         *buffer.List
	interleaved []float32
	bytes       []byte
	pending     []byte
	pull        unit.PullFunc
	err         error
}

// NewReader creates a reader that renders src followed by tail frames of
// silence through r.
func NewReader(r Renderer, src [][]float64, tail int) *Reader {
	f := r.OutputFormat()
	maxFrames := max(r.MaximumFramesToRender(), 1)
	frames := 0
	if len(src) > 0 {
		frames = len(src[0])
	}
	rd := &Reader{
		r:           r,
		src:         src,
		channels:    f.Channels,
		total:       frames + max(tail, 0),
		out:         buffer.NewList(f.Channels, maxFrames),
		interleaved: make([]float32, maxFrames*f.Channels),
		bytes:       make([]byte, 4*maxFrames*f.Channels),
	}
	rd.pull = rd.pullSource
	return rd
}

// Read implements io.Reader.
func (rd *Reader) Read(p []byte) (int, error) {
	if len(rd.pending) == 0 {
		if rd.err != nil {
			return 0, rd.err
		}
		if rd.pos >= rd.total {
			return 0, io.EOF
		}
		if err := rd.renderChunk(); err != nil {
			rd.err = err
			return 0, err
		}
	}
	n := copy(p, rd.pending)
	rd.pending = rd.pending[n:]
	return n, nil
}

func (rd *Reader) renderChunk() error {
	n := min(rd.out.MaxFrames(), rd.total-rd.pos)
	view := rd.out.View(n)
	if err := rd.r.Render(view, n, int64(rd.pos), rd.pull); err != nil {
		return err
	}

	samples := rd.interleaved[:n*rd.channels]
	buffer.Interleave(samples, view, rd.channels)
	b := rd.bytes[:4*len(samples)]
	for i, s := range samples {
		binary.LittleEndian.PutUint32(b[4*i:], math.Float32bits(s))
	}
	rd.pending = b
	rd.pos += n
	return nil
}

func (rd *Reader) pullSource(frameCount int, sampleTime int64, dst [][]float64) error {
	start := int(sampleTime)
	for ch, d := range dst {
		var s []float64
		if ch < len(rd.src) && start < len(rd.src[ch]) {
			s = rd.src[ch][start:min(start+frameCount, len(rd.src[ch]))]
		}
		n := copy(d, s)
		for i := n; i < len(d); i++ {
			d[i] = 0
		}
	}
	return nil
}

// ErrNilCue is returned by RenderOffline for a cue without an action.
var ErrNilCue = errors.New("host: cue has no action")

// Cue runs Do on the control path before the frame at sample time At is
// rendered, e.g. to automate a parameter.
type Cue struct {
	At int64
	Do func()
}

// RenderOffline runs src, followed by tail frames of silence, through r and
// returns the planar output. Render chunks are split at cue times so every
// cue takes effect on its exact frame.
func RenderOffline(r Renderer, src [][]float64, tail int, cues ...Cue) ([][]float64, error) {
	for i, c := range cues {
		if c.Do == nil {
			return nil, fmt.Errorf("cue %d at frame %d: %w", i, c.At, ErrNilCue)
		}
	}

	f := r.OutputFormat()
	rd := NewReader(r, src, tail)
	out := make([][]float64, f.Channels)
	for ch := range out {
		out[ch] = make([]float64, rd.total)
	}

	pending := slices.Clone(cues)
	slices.SortStableFunc(pending, func(a, b Cue) int { return cmp.Compare(a.At, b.At) })

	for rd.pos < rd.total {
		for len(pending) > 0 && pending[0].At <= int64(rd.pos) {
			pending[0].Do()
			pending = pending[1:]
		}

		n := min(rd.out.MaxFrames(), rd.total-rd.pos)
		if len(pending) > 0 {
			n = min(n, int(pending[0].At)-rd.pos)
		}
		view := rd.out.View(n)
		if err := r.Render(view, n, int64(rd.pos), rd.pull); err != nil {
			return nil, err
		}
		for ch := range out {
			copy(out[ch][rd.pos:], view[ch])
		}
		rd.pos += n
	}
	debug("rendered %d frames offline, %d cues", rd.total, len(cues))
	return out, nil
}
