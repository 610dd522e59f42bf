//go:build !jack

// Package jack runs a unit as a JACK client. Build with -tags jack and the
// JACK development headers installed to enable it.
package jack

import (
	"errors"

	"github.com/cwbudde/algo-revo/host"
)

// ErrNotEnabled is returned when the binary was built without JACK support.
var ErrNotEnabled = errors.New("JACK support not enabled - rebuild with '-tags jack' and ensure JACK development headers are installed")

// Client is a placeholder for builds without JACK support.
type Client struct{}

// Open always fails with ErrNotEnabled.
func Open(host.Renderer, string) (*Client, error) { return nil, ErrNotEnabled }

// Start returns ErrNotEnabled.
func (c *Client) Start() error { return ErrNotEnabled }

// Stop returns ErrNotEnabled.
func (c *Client) Stop() error { return ErrNotEnabled }

// Close returns ErrNotEnabled.
func (c *Client) Close() error { return ErrNotEnabled }

// Errors returns 0.
func (c *Client) Errors() uint64 { return 0 }
