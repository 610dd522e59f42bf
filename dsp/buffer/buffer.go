package buffer

// List is a planar buffer list: one fixed-capacity sample slice per channel.
type List struct {
	data   [][]float64
	view   [][]float64
	frames int
}

// NewList returns a zero-filled list with the given channel count and
// per-channel capacity. Negative sizes are treated as zero.
func NewList(channels, maxFrames int) *List {
	if channels < 0 {
		channels = 0
	}
	if maxFrames < 0 {
		maxFrames = 0
	}
	backing := make([]float64, channels*maxFrames)
	l := &List{
		data:   make([][]float64, channels),
		view:   make([][]float64, channels),
		frames: maxFrames,
	}
	for ch := range l.data {
		l.data[ch] = backing[ch*maxFrames : (ch+1)*maxFrames : (ch+1)*maxFrames]
		l.view[ch] = l.data[ch]
	}
	return l
}

// Channels returns the number of channels.
func (l *List) Channels() int {
	return len(l.data)
}

// MaxFrames returns the per-channel capacity.
func (l *List) MaxFrames() int {
	if len(l.data) == 0 {
		return 0
	}
	return len(l.data[0])
}

// Frames returns the length of the current view.
func (l *List) Frames() int {
	return l.frames
}

// View resizes the view to frames samples per channel and returns it.
// frames is clamped to [0, MaxFrames()]. The returned slice headers are
// owned by the list and stay valid until the next View call.
func (l *List) View(frames int) [][]float64 {
	if frames < 0 {
		frames = 0
	}
	if m := l.MaxFrames(); frames > m {
		frames = m
	}
	for ch := range l.data {
		l.view[ch] = l.data[ch][:frames]
	}
	l.frames = frames
	return l.view
}

// Channel returns the current view of one channel, or nil when ch is out of
// range.
func (l *List) Channel(ch int) []float64 {
	if ch < 0 || ch >= len(l.view) {
		return nil
	}
	return l.view[ch]
}

// Zero sets every sample of the current view to 0.
func (l *List) Zero() {
	for _, ch := range l.view {
		for i := range ch {
			ch[i] = 0
		}
	}
}

// Reset zeroes the whole capacity and restores a full-length view.
func (l *List) Reset() {
	for _, ch := range l.data {
		for i := range ch {
			ch[i] = 0
		}
	}
	l.View(l.MaxFrames())
}
