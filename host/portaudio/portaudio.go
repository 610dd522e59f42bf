// Package portaudio runs a unit on the default PortAudio duplex stream.
package portaudio

import (
	"fmt"

	"github.com/GeoffreyPlitt/debuggo"
	"github.com/gordonklaus/portaudio"

	"github.com/cwbudde/algo-revo/host"
)

var debug = debuggo.Debug("revo:portaudio")

// Stream is an open duplex stream rendering through a unit.
type Stream struct {
	stream *portaudio.Stream
	proc   *host.Processor[float32]
}

// Open initializes PortAudio and opens the default input and output devices
// with the unit's channel count and sample rate. framesPerBuffer 0 lets
// PortAudio choose.
func Open(r host.Renderer, framesPerBuffer int) (*Stream, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize PortAudio: %w", err)
	}

	f := r.OutputFormat()
	s := &Stream{proc: host.NewProcessor[float32](r)}
	stream, err := portaudio.OpenDefaultStream(f.Channels, f.Channels, f.SampleRate, framesPerBuffer, s.process)
	if err != nil {
		portaudio.Terminate()
		return nil, fmt.Errorf("failed to open duplex stream: %w", err)
	}
	s.stream = stream

	debug("opened default stream: %d channels at %.0f Hz", f.Channels, f.SampleRate)
	return s, nil
}

func (s *Stream) process(in, out [][]float32) {
	frames := 0
	if len(out) > 0 {
		frames = len(out[0])
	}
	s.proc.Process(in, out, frames)
}

// Start begins audio processing.
func (s *Stream) Start() error {
	return s.stream.Start()
}

// Stop halts audio processing.
func (s *Stream) Stop() error {
	return s.stream.Stop()
}

// Close closes the stream and terminates PortAudio.
func (s *Stream) Close() error {
	err := s.stream.Close()
	if terr := portaudio.Terminate(); err == nil {
		err = terr
	}
	debug("closed stream after %d frames, %d failed chunks", s.proc.SampleTime(), s.proc.Errors())
	return err
}

// Errors returns the number of render chunks that failed.
func (s *Stream) Errors() uint64 { return s.proc.Errors() }
