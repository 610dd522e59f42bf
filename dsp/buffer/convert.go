package buffer

// Sample is a host sample type that converts to and from float64.
type Sample interface {
	~float32 | ~float64
}

// Load copies frames samples of each planar source channel into dst.
// Channels missing from src, or shorter than frames, are zero-filled.
func Load[S Sample](dst [][]float64, src [][]S, frames int) {
	for ch, d := range dst {
		n := min(frames, len(d))
		var s []S
		if ch < len(src) {
			s = src[ch]
		}
		m := min(n, len(s))
		for i := 0; i < m; i++ {
			d[i] = float64(s[i])
		}
		for i := m; i < n; i++ {
			d[i] = 0
		}
	}
}

// Store copies frames samples of each source channel into the planar host
// buffers in dst. Extra destination channels are zero-filled.
func Store[S Sample](dst [][]S, src [][]float64, frames int) {
	for ch, d := range dst {
		n := min(frames, len(d))
		var s []float64
		if ch < len(src) {
			s = src[ch]
		}
		m := min(n, len(s))
		for i := 0; i < m; i++ {
			d[i] = S(s[i])
		}
		for i := m; i < n; i++ {
			d[i] = 0
		}
	}
}

// Deinterleave splits an interleaved host buffer into planar channels.
// It returns the number of frames written.
func Deinterleave[S Sample](dst [][]float64, src []S, channels int) int {
	if channels <= 0 {
		return 0
	}
	frames := len(src) / channels
	for ch, d := range dst {
		n := min(frames, len(d))
		if ch >= channels {
			for i := 0; i < n; i++ {
				d[i] = 0
			}
			continue
		}
		for i := 0; i < n; i++ {
			d[i] = float64(src[i*channels+ch])
		}
	}
	return frames
}

// Interleave merges planar channels into an interleaved host buffer with the
// given channel count. It returns the number of frames written.
func Interleave[S Sample](dst []S, src [][]float64, channels int) int {
	if channels <= 0 {
		return 0
	}
	frames := len(dst) / channels
	for ch := 0; ch < channels; ch++ {
		var s []float64
		if ch < len(src) {
			s = src[ch]
		}
		for i := 0; i < frames; i++ {
			v := 0.0
			if i < len(s) {
				v = s[i]
			}
			dst[i*channels+ch] = S(v)
		}
	}
	return frames
}
