// Package audiofile loads WAV and FLAC files into planar float64 clips and
// writes clips back as PCM WAV.
package audiofile

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/GeoffreyPlitt/debuggo"
	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/mewkiz/flac"

	"github.com/cwbudde/algo-revo/dsp/buffer"
)

var debug = debuggo.Debug("revo:audiofile")

var (
	ErrUnsupportedFormat = errors.New("audiofile: unsupported format")
	ErrInvalidFile       = errors.New("audiofile: invalid file")
	ErrEmptyClip         = errors.New("audiofile: clip has no channels")
)

// Clip is decoded audio: one slice per channel, all of equal length.
type Clip struct {
	SampleRate int
	Channels   [][]float64
}

// NewClip allocates a silent clip.
func NewClip(sampleRate, channels, frames int) *Clip {
	c := &Clip{SampleRate: sampleRate, Channels: make([][]float64, channels)}
	for ch := range c.Channels {
		c.Channels[ch] = make([]float64, frames)
	}
	return c
}

// NumChannels returns the channel count.
func (c *Clip) NumChannels() int { return len(c.Channels) }

// Frames returns the length of the clip in samples per channel.
func (c *Clip) Frames() int {
	if len(c.Channels) == 0 {
		return 0
	}
	return len(c.Channels[0])
}

// Duration returns the clip length in seconds.
func (c *Clip) Duration() float64 {
	if c.SampleRate <= 0 {
		return 0
	}
	return float64(c.Frames()) / float64(c.SampleRate)
}

// Load decodes a .wav or .flac file.
func Load(path string) (*Clip, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("audiofile: open %s: %w", path, err)
	}
	defer f.Close()

	var clip *Clip
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".wav":
		clip, err = ReadWAV(f)
	case ".flac":
		clip, err = ReadFLAC(f)
	default:
		return nil, fmt.Errorf("%w: %q (supported: .wav, .flac)", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	debug("loaded %s (rate: %d Hz, channels: %d, frames: %d)", path, clip.SampleRate, clip.NumChannels(), clip.Frames())
	return clip, nil
}

// ReadWAV decodes PCM WAV data.
func ReadWAV(r io.ReadSeeker) (*Clip, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("%w: not a WAV stream", ErrInvalidFile)
	}
	pcm, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("audiofile: read WAV data: %w", err)
	}
	channels := pcm.Format.NumChannels
	if channels <= 0 {
		return nil, fmt.Errorf("%w: %d channels", ErrInvalidFile, channels)
	}

	scale := fullScale(int(dec.BitDepth))
	interleaved := make([]float64, len(pcm.Data))
	for i, v := range pcm.Data {
		interleaved[i] = float64(v) / scale
	}

	clip := NewClip(pcm.Format.SampleRate, channels, len(interleaved)/channels)
	buffer.Deinterleave(clip.Channels, interleaved, channels)
	return clip, nil
}

// ReadFLAC decodes a FLAC stream.
func ReadFLAC(r io.Reader) (*Clip, error) {
	stream, err := flac.New(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFile, err)
	}
	defer stream.Close()

	info := stream.Info
	if info == nil || info.NChannels == 0 {
		return nil, fmt.Errorf("%w: missing stream info", ErrInvalidFile)
	}
	channels := int(info.NChannels)
	scale := fullScale(int(info.BitsPerSample))

	clip := &Clip{SampleRate: int(info.SampleRate), Channels: make([][]float64, channels)}
	for {
		frame, err := stream.ParseNext()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("audiofile: read FLAC frame: %w", err)
		}
		for ch := 0; ch < channels && ch < len(frame.Subframes); ch++ {
			for _, v := range frame.Subframes[ch].Samples {
				clip.Channels[ch] = append(clip.Channels[ch], float64(v)/scale)
			}
		}
	}
	return clip, nil
}

// WriteWAV encodes c as integer PCM with the given bit depth (16, 24 or 32).
// Samples are clipped to the representable range.
func WriteWAV(w io.WriteSeeker, c *Clip, bitDepth int) error {
	if c.NumChannels() == 0 {
		return ErrEmptyClip
	}
	switch bitDepth {
	case 16, 24, 32:
	default:
		return fmt.Errorf("%w: %d-bit PCM", ErrUnsupportedFormat, bitDepth)
	}

	channels := c.NumChannels()
	interleaved := make([]float64, c.Frames()*channels)
	buffer.Interleave(interleaved, c.Channels, channels)

	scale := fullScale(bitDepth)
	data := make([]int, len(interleaved))
	for i, v := range interleaved {
		data[i] = quantize(v, scale)
	}

	enc := wav.NewEncoder(w, c.SampleRate, bitDepth, channels, 1)
	err := enc.Write(&audio.IntBuffer{
		Format:         &audio.Format{NumChannels: channels, SampleRate: c.SampleRate},
		Data:           data,
		SourceBitDepth: bitDepth,
	})
	if err != nil {
		return fmt.Errorf("audiofile: write WAV data: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("audiofile: finish WAV: %w", err)
	}
	return nil
}

// Save writes c to path as PCM WAV.
func Save(path string, c *Clip, bitDepth int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("audiofile: create %s: %w", path, err)
	}
	if err := WriteWAV(f, c, bitDepth); err != nil {
		f.Close()
		return fmt.Errorf("%s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("audiofile: close %s: %w", path, err)
	}
	debug("saved %s (%d-bit, %d channels, %d frames)", path, bitDepth, c.NumChannels(), c.Frames())
	return nil
}

func fullScale(bitDepth int) float64 {
	if bitDepth <= 0 || bitDepth > 32 {
		bitDepth = 16
	}
	return math.Ldexp(1, bitDepth-1)
}

func quantize(v, scale float64) int {
	if math.IsNaN(v) {
		return 0
	}
	q := math.Round(v * scale)
	if q > scale-1 {
		q = scale - 1
	}
	if q < -scale {
		q = -scale
	}
	return int(q)
}
