// Package pingpong implements the echo kernel: a multichannel fractional
// delay with feedback, dry/wet mix, a "zeno" freeze mode that loops the
// buffered content, and a ping-pong mode that moves the echo of the first
// two channels from side to side with a pan oscillator.
//
// The kernel owns one delay line per channel. Process never allocates, never
// blocks, and never panics out of the call; malformed render requests degrade
// to passthrough and are counted by Faults.
package pingpong
