package delay

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-revo/dsp/interp"
)

func approxEqual(a, b, eps float64) bool {
	return math.Abs(a-b) < eps
}

// --- construction and validation ---

func TestNewValidation(t *testing.T) {
	if _, err := New(0); err == nil {
		t.Fatal("expected error for size=0")
	}

	if _, err := New(3); err == nil {
		t.Fatal("expected error for size=3")
	}
}

func TestNewDefaults(t *testing.T) {
	d, err := New(16)
	if err != nil {
		t.Fatal(err)
	}

	if d.Len() != 16 {
		t.Fatalf("Len: got %d want 16", d.Len())
	}

	if d.Mode() != interp.Linear {
		t.Fatalf("default mode: got %v want Linear", d.Mode())
	}

	if d.MaxDelay() != 13 {
		t.Fatalf("MaxDelay: got %v want 13", d.MaxDelay())
	}
}

func TestNewWithOptions(t *testing.T) {
	d, err := New(16, WithMode(interp.Hermite))
	if err != nil {
		t.Fatal(err)
	}

	if d.Mode() != interp.Hermite {
		t.Fatalf("mode: got %v want Hermite", d.Mode())
	}

	d, err = New(16, WithMode(interp.Mode(9)))
	if err != nil {
		t.Fatal(err)
	}
	if d.Mode() != interp.Linear {
		t.Fatalf("invalid mode should be ignored, got %v", d.Mode())
	}
}

func TestCapacity(t *testing.T) {
	// 3 s at 48 kHz, 512 frames headroom, 3 guard samples.
	if got := Capacity(3, 48000, 512); got != 144000+512+3 {
		t.Fatalf("Capacity = %d, want %d", got, 144000+512+3)
	}
	if got := Capacity(0.0105, 1000, -4); got != 11+3 {
		t.Fatalf("Capacity with rounding = %d, want 14", got)
	}
}

// --- integer Read/Write ---

func TestReadWrite(t *testing.T) {
	d, err := New(8)
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 8; i++ {
		d.Write(float64(i))
	}
	// delay=1 => most recently written (7)
	if got := d.Read(1); got != 7 {
		t.Fatalf("got %v want 7", got)
	}
	// delay=3 => 3 samples back from write head
	if got := d.Read(3); got != 5 {
		t.Fatalf("got %v want 5", got)
	}
}

func TestReadWraparound(t *testing.T) {
	d, err := New(4 + interpolationGuard)
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 20; i++ {
		d.Write(float64(i))
	}
	if got := d.Read(1); got != 19 {
		t.Fatalf("got %v want 19", got)
	}
	if got := d.Read(d.Len()); got != float64(20-d.Len()) {
		t.Fatalf("oldest: got %v want %v", got, 20-d.Len())
	}
}

func TestReadClampsOutOfRange(t *testing.T) {
	d, err := New(8)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 8; i++ {
		d.Write(float64(i + 1))
	}
	if got, want := d.Read(100), d.Read(8); got != want {
		t.Fatalf("Read(100) = %v, want oldest %v", got, want)
	}
}

func TestReset(t *testing.T) {
	d, err := New(8)
	if err != nil {
		t.Fatal(err)
	}

	d.Write(1)
	d.Write(2)
	d.Reset()

	for i := 1; i <= 8; i++ {
		if got := d.Read(i); got != 0 {
			t.Fatalf("after reset Read(%d): got %v want 0", i, got)
		}
	}
}

// --- fractional reads ---

// fillRamp fills a delay line with a linear ramp [0, 1, 2, ..., size-1].
func fillRamp(d *Line) {
	for i := 0; i < d.Len(); i++ {
		d.Write(float64(i))
	}
}

func TestReadFractionalLinear(t *testing.T) {
	d, err := New(32)
	if err != nil {
		t.Fatal(err)
	}

	fillRamp(d)
	// With a linear ramp, linear interpolation is exact.
	got := d.ReadFractional(5.5)

	want := float64(d.Len()) - 5.5 // 26.5
	if !approxEqual(got, want, 1e-10) {
		t.Fatalf("Linear: got %v want %v", got, want)
	}
}

func TestReadFractionalHermite(t *testing.T) {
	d, err := New(32, WithMode(interp.Hermite))
	if err != nil {
		t.Fatal(err)
	}

	fillRamp(d)
	got := d.ReadFractional(5.5)

	want := float64(d.Len()) - 5.5
	if !approxEqual(got, want, 1e-10) {
		t.Fatalf("Hermite: got %v want %v", got, want)
	}
}

func TestReadFractionalIntegerMatchesRead(t *testing.T) {
	d, err := New(32)
	if err != nil {
		t.Fatal(err)
	}
	fillRamp(d)

	for _, delay := range []int{1, 2, 10, 29} {
		if got, want := d.ReadFractional(float64(delay)), d.Read(delay); got != want {
			t.Fatalf("ReadFractional(%d) = %v, want %v", delay, got, want)
		}
	}
}

func TestReadFractionalClamps(t *testing.T) {
	d, err := New(16)
	if err != nil {
		t.Fatal(err)
	}
	fillRamp(d)

	if got, want := d.ReadFractional(-1), d.Read(1); got != want {
		t.Fatalf("negative delay: got %v want %v", got, want)
	}
	if got, want := d.ReadFractional(math.NaN()), d.Read(1); got != want {
		t.Fatalf("NaN delay: got %v want %v", got, want)
	}
	if got, want := d.ReadFractional(1000), d.Read(int(d.MaxDelay())); got != want {
		t.Fatalf("huge delay: got %v want %v", got, want)
	}
}

func TestAllModesDCPreservation(t *testing.T) {
	for _, mode := range []interp.Mode{interp.Linear, interp.Hermite} {
		d, err := New(32, WithMode(mode))
		if err != nil {
			t.Fatal(err)
		}
		for i := 0; i < d.Len(); i++ {
			d.Write(42.0)
		}

		got := d.ReadFractional(5.3)
		if !approxEqual(got, 42.0, 1e-9) {
			t.Fatalf("%s DC: got %v want 42", mode, got)
		}
	}
}

func TestAllModesSineQuality(t *testing.T) {
	freq := 0.02 // low frequency relative to sample rate
	size := 256

	for _, tc := range []struct {
		mode interp.Mode
		tol  float64
	}{
		{interp.Linear, 0.01},
		{interp.Hermite, 1e-4},
	} {
		d, err := New(size, WithMode(tc.mode))
		if err != nil {
			t.Fatal(err)
		}

		for i := 0; i < size; i++ {
			d.Write(math.Sin(2 * math.Pi * freq * float64(i)))
		}

		delay := 20.37
		// Read(k) returns the sample written at index size-k.
		want := math.Sin(2 * math.Pi * freq * (float64(size) - delay))
		got := d.ReadFractional(delay)

		if diff := math.Abs(got - want); diff > tc.tol {
			t.Fatalf("%s sine: got %v want %v (err=%e, tol=%e)", tc.mode, got, want, diff, tc.tol)
		}
	}
}

// --- recirculation ---

func TestRecirculateLoopsContent(t *testing.T) {
	d, err := New(16)
	if err != nil {
		t.Fatal(err)
	}
	for _, v := range []float64{1, 2, 3, 4} {
		d.Write(v)
	}

	var got []float64
	for i := 0; i < 8; i++ {
		got = append(got, d.Recirculate(4))
	}

	want := []float64{1, 2, 3, 4, 1, 2, 3, 4}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Recirculate step %d: got %v want %v", i, got[i], want[i])
		}
	}
}

// --- benchmarks ---

func BenchmarkReadFractionalLinear(b *testing.B) {
	d, _ := New(1024)
	fillRamp(d)
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		d.ReadFractional(100.37)
	}
}

func BenchmarkReadFractionalHermite(b *testing.B) {
	d, _ := New(1024, WithMode(interp.Hermite))
	fillRamp(d)
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		d.ReadFractional(100.37)
	}
}
