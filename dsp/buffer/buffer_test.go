package buffer

import "testing"

func TestNewList(t *testing.T) {
	l := NewList(2, 8)
	if l.Channels() != 2 {
		t.Fatalf("Channels() = %d, want 2", l.Channels())
	}
	if l.MaxFrames() != 8 {
		t.Fatalf("MaxFrames() = %d, want 8", l.MaxFrames())
	}
	if l.Frames() != 8 {
		t.Fatalf("Frames() = %d, want 8", l.Frames())
	}
}

func TestNewListNegative(t *testing.T) {
	l := NewList(-1, -5)
	if l.Channels() != 0 || l.MaxFrames() != 0 {
		t.Fatalf("unexpected size: %d x %d", l.Channels(), l.MaxFrames())
	}
	if v := l.View(10); len(v) != 0 {
		t.Fatalf("View on empty list returned %d channels", len(v))
	}
}

func TestViewClampsAndKeepsData(t *testing.T) {
	l := NewList(2, 4)
	v := l.View(4)
	v[0][3] = 7
	v[1][0] = 3

	short := l.View(2)
	if len(short[0]) != 2 || len(short[1]) != 2 {
		t.Fatalf("short view lengths = %d/%d, want 2", len(short[0]), len(short[1]))
	}
	if short[1][0] != 3 {
		t.Fatalf("short[1][0] = %v, want 3", short[1][0])
	}

	long := l.View(100)
	if len(long[0]) != 4 {
		t.Fatalf("clamped view len = %d, want 4", len(long[0]))
	}
	if long[0][3] != 7 {
		t.Fatalf("long[0][3] = %v, want 7", long[0][3])
	}

	if got := l.View(-3); len(got[0]) != 0 {
		t.Fatalf("negative view len = %d, want 0", len(got[0]))
	}
}

func TestChannelsDoNotOverlap(t *testing.T) {
	l := NewList(3, 4)
	v := l.View(4)
	for ch := range v {
		for i := range v[ch] {
			v[ch][i] = float64(ch)
		}
	}
	for ch := range v {
		for i, s := range l.Channel(ch) {
			if s != float64(ch) {
				t.Fatalf("channel %d sample %d = %v", ch, i, s)
			}
		}
	}
	if l.Channel(3) != nil || l.Channel(-1) != nil {
		t.Fatal("out-of-range Channel should be nil")
	}
}

func TestViewDoesNotAllocate(t *testing.T) {
	l := NewList(2, 64)
	allocs := testing.AllocsPerRun(100, func() {
		_ = l.View(17)
		_ = l.View(64)
	})
	if allocs != 0 {
		t.Fatalf("View allocated %v times per run", allocs)
	}
}

func TestZeroAndReset(t *testing.T) {
	l := NewList(1, 4)
	v := l.View(4)
	for i := range v[0] {
		v[0][i] = 1
	}

	l.View(2)
	l.Zero()
	full := l.View(4)
	if full[0][0] != 0 || full[0][1] != 0 || full[0][2] != 1 {
		t.Fatalf("Zero touched wrong range: %v", full[0])
	}

	l.View(1)
	l.Reset()
	if l.Frames() != 4 {
		t.Fatalf("Reset Frames() = %d, want 4", l.Frames())
	}
	for i, s := range l.Channel(0) {
		if s != 0 {
			t.Fatalf("after Reset sample %d = %v", i, s)
		}
	}
}
