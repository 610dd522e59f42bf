package unit

import (
	"errors"
	"math"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/cwbudde/algo-revo/dsp/effects/pingpong"
	"github.com/cwbudde/algo-revo/dsp/params"
	"github.com/cwbudde/algo-revo/internal/testutil"
)

const testRate = 1000.0

func newAllocatedUnit(t *testing.T, channels, maxFrames int, opts ...Option) *Unit {
	t.Helper()
	opts = append([]Option{WithFormat(testRate, channels), WithMaxFrames(maxFrames)}, opts...)
	u, err := New(opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := u.AllocateRenderResources(); err != nil {
		t.Fatalf("AllocateRenderResources() error = %v", err)
	}
	return u
}

// sourcePull serves src to the unit, indexed by sample time.
func sourcePull(src [][]float64) PullFunc {
	return func(frameCount int, sampleTime int64, dst [][]float64) error {
		for ch := range dst {
			copy(dst[ch], src[ch][sampleTime:sampleTime+int64(frameCount)])
		}
		return nil
	}
}

func newOutput(channels, frames int) [][]float64 {
	out := make([][]float64, channels)
	for ch := range out {
		out[ch] = make([]float64, frames)
	}
	return out
}

func TestNewDefaults(t *testing.T) {
	u, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	want := Format{SampleRate: 44100, Channels: 2}
	if u.InputFormat() != want || u.OutputFormat() != want {
		t.Fatalf("formats = %+v / %+v, want %+v", u.InputFormat(), u.OutputFormat(), want)
	}
	if got := u.MaximumFramesToRender(); got != 1024 {
		t.Fatalf("MaximumFramesToRender() = %d, want 1024", got)
	}
	if u.RenderResourcesAllocated() {
		t.Fatal("RenderResourcesAllocated() = true before allocation")
	}
}

func TestNewRejectsInvalidOptions(t *testing.T) {
	tests := []struct {
		name string
		opt  Option
	}{
		{"zero channels", WithFormat(48000, 0)},
		{"zero rate", WithFormat(0, 2)},
		{"nan rate", WithFormat(math.NaN(), 2)},
		{"zero frames", WithMaxFrames(0)},
		{"bad kernel option", WithKernelOptions(pingpong.WithDelaySmoothing(-1))},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := New(tc.opt); err == nil {
				t.Fatal("New() error = nil, want error")
			}
		})
	}
}

func TestWithFormatKeepsMaxFrames(t *testing.T) {
	u, err := New(WithMaxFrames(96), WithFormat(48000, 4))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if got := u.MaximumFramesToRender(); got != 96 {
		t.Fatalf("MaximumFramesToRender() = %d, want 96", got)
	}
	if got := u.OutputFormat(); got != (Format{SampleRate: 48000, Channels: 4}) {
		t.Fatalf("OutputFormat() = %+v", got)
	}
}

func TestAllocateRejectsMismatchedBuses(t *testing.T) {
	tests := []struct {
		name string
		in   Format
	}{
		{"channel count", Format{SampleRate: testRate, Channels: 1}},
		{"sample rate", Format{SampleRate: 2 * testRate, Channels: 2}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			u, err := New(WithFormat(testRate, 2))
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			if err := u.SetInputFormat(tc.in); err != nil {
				t.Fatalf("SetInputFormat() error = %v", err)
			}
			err = u.AllocateRenderResources()
			if !errors.Is(err, pingpong.ErrFailedInitialization) {
				t.Fatalf("AllocateRenderResources() error = %v, want ErrFailedInitialization", err)
			}
			if u.RenderResourcesAllocated() {
				t.Fatal("RenderResourcesAllocated() = true after failure")
			}
			if u.Kernel().State() != pingpong.Uninitialized {
				t.Fatalf("kernel state = %v, want uninitialized", u.Kernel().State())
			}
		})
	}
}

func TestControlChangesRejectedWhileAllocated(t *testing.T) {
	u := newAllocatedUnit(t, 2, 64)

	if err := u.SetInputFormat(Format{SampleRate: 48000, Channels: 2}); !errors.Is(err, ErrAllocated) {
		t.Fatalf("SetInputFormat() error = %v, want ErrAllocated", err)
	}
	if err := u.SetOutputFormat(Format{SampleRate: 48000, Channels: 2}); !errors.Is(err, ErrAllocated) {
		t.Fatalf("SetOutputFormat() error = %v, want ErrAllocated", err)
	}
	if err := u.SetMaximumFramesToRender(128); !errors.Is(err, ErrAllocated) {
		t.Fatalf("SetMaximumFramesToRender() error = %v, want ErrAllocated", err)
	}
	if err := u.SetOutputFormat(Format{SampleRate: 48000}); !errors.Is(err, ErrInvalidFormat) {
		t.Fatalf("SetOutputFormat(invalid) error = %v, want ErrInvalidFormat", err)
	}

	u.DeallocateRenderResources()
	if err := u.SetMaximumFramesToRender(128); err != nil {
		t.Fatalf("SetMaximumFramesToRender() after deallocate error = %v", err)
	}
}

func TestDeallocateAllocateRoundTrip(t *testing.T) {
	u := newAllocatedUnit(t, 2, 64)
	u.SetParameter(params.Feedback, 61)
	u.SetBypass(true)

	u.DeallocateRenderResources()
	u.DeallocateRenderResources()
	if u.RenderResourcesAllocated() {
		t.Fatal("RenderResourcesAllocated() = true after deallocate")
	}
	if err := u.Render(newOutput(2, 8), 8, 0, nil); !errors.Is(err, ErrNotAllocated) {
		t.Fatalf("Render() error = %v, want ErrNotAllocated", err)
	}

	if err := u.AllocateRenderResources(); err != nil {
		t.Fatalf("AllocateRenderResources() error = %v", err)
	}
	if got := u.Parameter(params.Feedback); got != 61 {
		t.Fatalf("Parameter(Feedback) = %v, want 61", got)
	}
	if !u.IsBypassed() {
		t.Fatal("IsBypassed() = false, want true")
	}
	if err := u.Render(newOutput(2, 8), 8, 0, nil); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
}

func TestRenderRejectsBadRequests(t *testing.T) {
	u := newAllocatedUnit(t, 2, 32)

	tests := []struct {
		name   string
		output [][]float64
		frames int
		want   error
	}{
		{"too many frames", newOutput(2, 64), 33, ErrTooManyFrames},
		{"negative frames", newOutput(2, 8), -1, ErrInvalidFrameCount},
		{"missing channel", newOutput(1, 8), 8, ErrChannelMismatch},
		{"extra channel", newOutput(3, 8), 8, ErrChannelMismatch},
		{"short buffer", [][]float64{make([]float64, 8), make([]float64, 4)}, 8, ErrBufferTooShort},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if err := u.Render(tc.output, tc.frames, 0, nil); !errors.Is(err, tc.want) {
				t.Fatalf("Render() error = %v, want %v", err, tc.want)
			}
		})
	}
	if u.Faults() != 0 {
		t.Fatalf("Faults() = %d, want 0", u.Faults())
	}
}

func TestRenderDryPassthrough(t *testing.T) {
	u := newAllocatedUnit(t, 2, 64)
	u.SetParameter(params.Wet, 0)

	src := testutil.NoiseChannels(1, 2, 64)
	out := newOutput(2, 64)
	if err := u.Render(out, 64, 0, sourcePull(src)); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	testutil.RequireChannelsNearlyEqual(t, out, src, 0)
}

func TestRenderVariableBlockSizes(t *testing.T) {
	u := newAllocatedUnit(t, 1, 64)
	u.SetParameter(params.TimeInterval, 0.01)
	u.SetParameter(params.Dry, 0)
	u.SetParameter(params.Wet, 100)
	u.SetParameter(params.Feedback, 0)

	src := [][]float64{testutil.DeterministicNoise(3, 1, 200)}
	got := make([]float64, 0, 200)
	pos := 0
	for _, n := range []int{10, 64, 1, 0, 37, 64, 24} {
		out := newOutput(1, n)
		if err := u.Render(out, n, int64(pos), sourcePull(src)); err != nil {
			t.Fatalf("Render(%d) error = %v", n, err)
		}
		got = append(got, out[0]...)
		pos += n
	}

	want := make([]float64, pos)
	copy(want[10:], src[0][:pos-10])
	testutil.RequireSliceNearlyEqual(t, got, want, 1e-12)
}

func TestRenderWithoutPullIsSilence(t *testing.T) {
	u := newAllocatedUnit(t, 2, 16)
	out := newOutput(2, 16)
	for ch := range out {
		for i := range out[ch] {
			out[ch][i] = 1
		}
	}
	if err := u.Render(out, 16, 0, nil); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	for ch := range out {
		testutil.RequireSliceNearlyEqual(t, out[ch], make([]float64, 16), 0)
	}
}

func TestRenderFailedPullIsSilence(t *testing.T) {
	u := newAllocatedUnit(t, 1, 16)
	pull := func(frameCount int, _ int64, dst [][]float64) error {
		dst[0][0] = 1
		return errors.New("device unplugged")
	}
	out := newOutput(1, 16)
	if err := u.Render(out, 16, 0, pull); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	testutil.RequireSliceNearlyEqual(t, out[0], make([]float64, 16), 0)
	if got := u.PullFailures(); got != 1 {
		t.Fatalf("PullFailures() = %d, want 1", got)
	}
}

func TestRenderNilOutputRendersInPlace(t *testing.T) {
	u := newAllocatedUnit(t, 2, 32)
	u.SetParameter(params.Wet, 0)

	src := testutil.NoiseChannels(4, 2, 32)
	out := [][]float64{nil, make([]float64, 32)}
	if err := u.Render(out, 32, 0, sourcePull(src)); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if out[0] == nil {
		t.Fatal("output channel 0 still nil")
	}
	testutil.RequireChannelsNearlyEqual(t, out, src, 0)
}

func TestRenderPassesMusicalContext(t *testing.T) {
	calls := 0
	musical := func() (pingpong.MusicalContext, bool) {
		calls++
		return pingpong.MusicalContext{Tempo: 120, TimeSignatureNumerator: 4, TimeSignatureDenominator: 4}, true
	}
	u := newAllocatedUnit(t, 1, 100,
		WithKernelOptions(pingpong.WithTempoSync(pingpong.Subdivision{Beats: 0.25})),
		WithMusicalContext(musical),
	)
	u.SetParameter(params.TimeInterval, 0.3)
	u.SetParameter(params.Dry, 0)
	u.SetParameter(params.Wet, 100)
	u.SetParameter(params.Feedback, 0)

	src := [][]float64{testutil.Impulse(300, 0)}
	got := make([]float64, 0, 300)
	for pos := 0; pos < 300; pos += 100 {
		out := newOutput(1, 100)
		if err := u.Render(out, 100, int64(pos), sourcePull(src)); err != nil {
			t.Fatalf("Render() error = %v", err)
		}
		got = append(got, out[0]...)
	}
	if calls != 3 {
		t.Fatalf("musical context calls = %d, want 3", calls)
	}
	if math.Abs(got[250]-1) > 1e-9 {
		t.Fatalf("echo at 250 = %v, want 1", got[250])
	}

	u.SetMusicalContextFunc(nil)
	if err := u.Render(newOutput(1, 10), 10, 300, nil); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if calls != 3 {
		t.Fatalf("musical context calls = %d after removal, want 3", calls)
	}
}

func TestSetMusicalContextFuncWhileRendering(t *testing.T) {
	u := newAllocatedUnit(t, 2, 32,
		WithKernelOptions(pingpong.WithTempoSync(pingpong.Subdivision{Beats: 0.25})),
	)

	var calls atomic.Int64
	musical := func() (pingpong.MusicalContext, bool) {
		calls.Add(1)
		return pingpong.MusicalContext{Tempo: 120, TimeSignatureNumerator: 4, TimeSignatureDenominator: 4}, true
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		out := newOutput(2, 32)
		for i := 0; i < 500; i++ {
			if err := u.Render(out, 32, int64(i*32), nil); err != nil {
				t.Errorf("Render() error = %v", err)
				return
			}
		}
	}()
	for i := 0; i < 500; i++ {
		if i%2 == 0 {
			u.SetMusicalContextFunc(musical)
		} else {
			u.SetMusicalContextFunc(nil)
		}
	}
	wg.Wait()

	u.SetMusicalContextFunc(musical)
	before := calls.Load()
	if err := u.Render(newOutput(2, 32), 32, 0, nil); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if got := calls.Load() - before; got != 1 {
		t.Fatalf("musical context calls = %d, want 1", got)
	}
}

func TestResetClearsTail(t *testing.T) {
	u := newAllocatedUnit(t, 1, 64)
	u.SetParameter(params.TimeInterval, 0.01)
	u.SetParameter(params.Feedback, 90)

	src := [][]float64{testutil.Ones(64)}
	if err := u.Render(newOutput(1, 64), 64, 0, sourcePull(src)); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	u.Reset()

	out := newOutput(1, 64)
	if err := u.Render(out, 64, 64, nil); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	testutil.RequireSliceNearlyEqual(t, out[0], make([]float64, 64), 0)
}

func TestParameterString(t *testing.T) {
	u, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if got := u.ParameterString(params.TimeInterval); got != "500 ms" {
		t.Fatalf("ParameterString(TimeInterval) = %q, want %q", got, "500 ms")
	}
	u.SetParameter(params.PingPong, 1)
	if got := u.ParameterString(params.PingPong); got != "On" {
		t.Fatalf("ParameterString(PingPong) = %q, want %q", got, "On")
	}
	if got := u.Parameters()[params.Wet].Identifier; got != "wet" {
		t.Fatalf("Parameters()[Wet].Identifier = %q, want wet", got)
	}
}

func TestRenderDoesNotAllocate(t *testing.T) {
	u := newAllocatedUnit(t, 2, 128,
		WithMusicalContext(func() (pingpong.MusicalContext, bool) {
			return pingpong.MusicalContext{Tempo: 100}, true
		}),
	)
	u.SetParameter(params.PingPong, 1)

	src := testutil.NoiseChannels(6, 2, 128)
	pull := sourcePull(src)
	out := newOutput(2, 128)

	allocs := testing.AllocsPerRun(100, func() {
		if err := u.Render(out, 128, 0, pull); err != nil {
			t.Fatal(err)
		}
	})
	if allocs != 0 {
		t.Fatalf("Render allocations = %v, want 0", allocs)
	}
}
