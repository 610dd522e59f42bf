// Package unit wraps the ping-pong echo kernel in a host-facing audio unit:
// bus formats and the maximum block size are negotiated first, render
// resources are allocated, and the host then calls Render once per buffer.
//
// Render never locks, allocates, or formats errors. All other methods belong
// to the control path and must not overlap a Render call, except parameter
// and bypass access, which is safe from any goroutine at any time.
package unit
