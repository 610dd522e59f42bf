//go:build jack

// Package jack runs a unit as a JACK client with one input and one output
// port per channel.
package jack

import (
	"fmt"

	"github.com/GeoffreyPlitt/debuggo"
	"github.com/xthexder/go-jack"

	"github.com/cwbudde/algo-revo/host"
)

var debug = debuggo.Debug("revo:jack")

// Client is an open JACK client rendering through a unit.
type Client struct {
	client *jack.Client
	ins    []*jack.Port
	outs   []*jack.Port
	proc   *host.Processor[jack.AudioSample]

	inBufs  [][]jack.AudioSample
	outBufs [][]jack.AudioSample
}

// Open connects to a running JACK server and registers the ports. The
// unit must run at the server's sample rate.
func Open(r host.Renderer, name string) (*Client, error) {
	client, status := jack.ClientOpen(name, jack.NoStartServer)
	if client == nil {
		return nil, fmt.Errorf("failed to open JACK client: %w", jack.StrError(status))
	}

	f := r.OutputFormat()
	if rate := float64(client.GetSampleRate()); rate != f.SampleRate {
		client.Close()
		return nil, fmt.Errorf("JACK runs at %.0f Hz, unit at %.0f Hz", rate, f.SampleRate)
	}

	c := &Client{
		client:  client,
		proc:    host.NewProcessor[jack.AudioSample](r),
		inBufs:  make([][]jack.AudioSample, f.Channels),
		outBufs: make([][]jack.AudioSample, f.Channels),
	}
	for ch := 0; ch < f.Channels; ch++ {
		in := client.PortRegister(fmt.Sprintf("in_%d", ch+1), jack.DEFAULT_AUDIO_TYPE, jack.PortIsInput, 0)
		out := client.PortRegister(fmt.Sprintf("out_%d", ch+1), jack.DEFAULT_AUDIO_TYPE, jack.PortIsOutput, 0)
		if in == nil || out == nil {
			client.Close()
			return nil, fmt.Errorf("failed to register ports for channel %d", ch+1)
		}
		c.ins = append(c.ins, in)
		c.outs = append(c.outs, out)
	}

	if code := client.SetProcessCallback(c.process); code != 0 {
		client.Close()
		return nil, fmt.Errorf("failed to set process callback: %w", jack.StrError(code))
	}

	debug("JACK client %q: %d channels at %.0f Hz, buffer %d", name, f.Channels, f.SampleRate, client.GetBufferSize())
	return c, nil
}

func (c *Client) process(nframes uint32) int {
	for ch := range c.ins {
		c.inBufs[ch] = c.ins[ch].GetBuffer(nframes)
		c.outBufs[ch] = c.outs[ch].GetBuffer(nframes)
	}
	c.proc.Process(c.inBufs, c.outBufs, int(nframes))
	return 0
}

// Start activates the client.
func (c *Client) Start() error {
	if code := c.client.Activate(); code != 0 {
		return fmt.Errorf("failed to activate JACK client: %w", jack.StrError(code))
	}
	return nil
}

// Stop deactivates the client.
func (c *Client) Stop() error {
	if code := c.client.Deactivate(); code != 0 {
		return fmt.Errorf("failed to deactivate JACK client: %w", jack.StrError(code))
	}
	return nil
}

// Close disconnects from the server.
func (c *Client) Close() error {
	if code := c.client.Close(); code != 0 {
		return fmt.Errorf("failed to close JACK client: %w", jack.StrError(code))
	}
	debug("JACK client closed after %d frames", c.proc.SampleTime())
	return nil
}

// Errors returns the number of render chunks that failed.
func (c *Client) Errors() uint64 { return c.proc.Errors() }
