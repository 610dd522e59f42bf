// Package oto plays rendered unit output through the system audio device.
package oto

import (
	"fmt"
	"time"

	"github.com/GeoffreyPlitt/debuggo"
	"github.com/ebitengine/oto/v3"

	"github.com/cwbudde/algo-revo/host"
)

var debug = debuggo.Debug("revo:oto")

// Play renders src plus tail frames of silence through r and blocks until
// playback has finished.
func Play(r host.Renderer, src [][]float64, tail int) error {
	f := r.OutputFormat()
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   int(f.SampleRate),
		ChannelCount: f.Channels,
		Format:       oto.FormatFloat32LE,
	})
	if err != nil {
		return fmt.Errorf("failed to create audio context: %w", err)
	}
	<-ready

	player := ctx.NewPlayer(host.NewReader(r, src, tail))
	defer player.Close()

	debug("playing %d channels at %.0f Hz", f.Channels, f.SampleRate)
	player.Play()
	for player.IsPlaying() {
		time.Sleep(10 * time.Millisecond)
	}
	return player.Err()
}
