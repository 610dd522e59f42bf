// Package buffer provides the planar multi-channel buffer list the render
// bridge hands to the kernel, plus allocation-free conversions between host
// sample formats and the float64 samples the DSP code works on.
//
// A [List] is allocated once for a channel count and a maximum frame count.
// [List.View] then exposes a stable [][]float64 sized to the current render
// call without allocating.
package buffer
