// Package host drives a unit from audio back ends. Processor adapts
// planar host buffers of any float sample type and any block size to the
// unit's maximum render size; Reader exposes a rendered stream as
// interleaved float32 little-endian bytes for players; RenderOffline runs a
// whole clip through a unit.
//
// Back-end bindings live in the portaudio, jack and oto subpackages.
package host
