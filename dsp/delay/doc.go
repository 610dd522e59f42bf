// Package delay provides the circular delay line behind the echo kernel.
//
// A [Line] is sized once and never grows: [Capacity] computes the size needed
// for a maximum delay time plus a render-block headroom, and every read and
// write after construction is allocation-free.
package delay
