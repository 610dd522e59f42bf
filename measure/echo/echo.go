package echo

import (
	"errors"
	"math"

	"github.com/cwbudde/algo-revo/dsp/core"
)

// Errors returned by echo analysis functions.
var (
	ErrEmptyInput        = errors.New("echo: input is empty")
	ErrInvalidSampleRate = errors.New("echo: sample rate must be positive")
	ErrLengthMismatch    = errors.New("echo: input lengths differ")
	ErrNoEcho            = errors.New("echo: no echo above threshold")
)

// DefaultThreshold is the tap detection level relative to the loudest
// sample (-60 dB).
const DefaultThreshold = 1e-3

// Tap is one detected repeat.
type Tap struct {
	Index int     // sample index
	Time  float64 // seconds
	Gain  float64 // signed amplitude at Index
}

// Report summarizes an echo response.
type Report struct {
	Taps       []Tap
	Delay      float64 // mean repeat interval in seconds
	DecayRatio float64 // mean amplitude ratio between successive repeats
	DecayDB    float64 // DecayRatio in dB, negative for a decaying tail
}

// Analyzer computes echo metrics from rendered audio.
type Analyzer struct {
	SampleRate float64
	Threshold  float64
}

// NewAnalyzer creates an analyzer with DefaultThreshold.
func NewAnalyzer(sampleRate float64) *Analyzer {
	return &Analyzer{SampleRate: sampleRate, Threshold: DefaultThreshold}
}

// Taps returns the local amplitude maxima of response that reach Threshold
// times the absolute peak, in time order.
func (a *Analyzer) Taps(response []float64) ([]Tap, error) {
	if len(response) == 0 {
		return nil, ErrEmptyInput
	}
	if !(a.SampleRate > 0) {
		return nil, ErrInvalidSampleRate
	}

	peak := 0.0
	for _, v := range response {
		peak = math.Max(peak, math.Abs(v))
	}
	if peak == 0 {
		return nil, nil
	}
	level := peak * a.Threshold

	var taps []Tap
	for i, v := range response {
		m := math.Abs(v)
		if m < level || m == 0 {
			continue
		}
		if i > 0 && math.Abs(response[i-1]) >= m {
			continue
		}
		if i+1 < len(response) && math.Abs(response[i+1]) > m {
			continue
		}
		taps = append(taps, Tap{Index: i, Time: float64(i) / a.SampleRate, Gain: v})
	}
	return taps, nil
}

// Analyze detects the taps of an impulse response rendered without dry
// signal and derives the repeat interval and decay.
func (a *Analyzer) Analyze(response []float64) (Report, error) {
	taps, err := a.Taps(response)
	if err != nil {
		return Report{}, err
	}
	if len(taps) == 0 {
		return Report{}, ErrNoEcho
	}

	r := Report{Taps: taps, Delay: taps[0].Time, DecayRatio: 1}
	if n := len(taps); n > 1 {
		first, last := taps[0], taps[n-1]
		r.Delay = (last.Time - first.Time) / float64(n-1)
		r.DecayRatio = math.Pow(math.Abs(last.Gain/first.Gain), 1/float64(n-1))
	}
	r.DecayDB = core.LinearToDB(r.DecayRatio)
	return r, nil
}

// Balance returns, per window of the given length, the energy balance
// (R-L)/(R+L) in [-1, 1]. Silent windows report 0.
func Balance(left, right []float64, window int) ([]float64, error) {
	if len(left) == 0 || window <= 0 {
		return nil, ErrEmptyInput
	}
	if len(left) != len(right) {
		return nil, ErrLengthMismatch
	}

	out := make([]float64, 0, (len(left)+window-1)/window)
	for start := 0; start < len(left); start += window {
		end := min(start+window, len(left))
		el, er := energy(left[start:end]), energy(right[start:end])
		if el+er == 0 {
			out = append(out, 0)
			continue
		}
		out = append(out, (er-el)/(er+el))
	}
	return out, nil
}

func energy(x []float64) float64 {
	var sum float64
	for _, v := range x {
		sum += v * v
	}
	return sum
}
