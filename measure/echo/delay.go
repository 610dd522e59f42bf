package echo

import (
	"fmt"

	algofft "github.com/MeKo-Christian/algo-fft"
)

// EstimateDelay returns the lag in seconds, at least one sample, at which
// processed best matches reference. The zero lag is skipped because it
// carries the dry path.
func (a *Analyzer) EstimateDelay(reference, processed []float64) (float64, error) {
	if !(a.SampleRate > 0) {
		return 0, ErrInvalidSampleRate
	}
	lag, err := EstimateLag(reference, processed)
	if err != nil {
		return 0, err
	}
	return float64(lag) / a.SampleRate, nil
}

// EstimateLag returns the positive lag in samples that maximizes the
// cross-correlation sum_i processed[i+lag] * reference[i].
func EstimateLag(reference, processed []float64) (int, error) {
	if len(reference) == 0 || len(processed) < 2 {
		return 0, ErrEmptyInput
	}

	corr, err := correlateFFT(processed, reference)
	if err != nil {
		return 0, err
	}

	best, bestValue := 1, corr[1]
	for k := 2; k < len(corr); k++ {
		if corr[k] > bestValue {
			best, bestValue = k, corr[k]
		}
	}
	return best, nil
}

// correlateFFT returns the non-negative lags of the linear cross-correlation
// of a against b: out[k] = sum_i a[i+k] * b[i], k in [0, len(a)).
func correlateFFT(a, b []float64) ([]float64, error) {
	n, m := len(a), len(b)
	fftSize := nextPowerOf2(n + m - 1)

	plan, err := algofft.NewPlan64(fftSize)
	if err != nil {
		return nil, fmt.Errorf("echo: failed to create FFT plan: %w", err)
	}

	aPadded := make([]complex128, fftSize)
	bPadded := make([]complex128, fftSize)
	for i, v := range a {
		aPadded[i] = complex(v, 0)
	}
	for i, v := range b {
		bPadded[i] = complex(v, 0)
	}

	aFreq := make([]complex128, fftSize)
	bFreq := make([]complex128, fftSize)
	if err := plan.Forward(aFreq, aPadded); err != nil {
		return nil, fmt.Errorf("echo: forward FFT failed: %w", err)
	}
	if err := plan.Forward(bFreq, bPadded); err != nil {
		return nil, fmt.Errorf("echo: forward FFT failed: %w", err)
	}

	for i := range aFreq {
		aFreq[i] *= complex(real(bFreq[i]), -imag(bFreq[i]))
	}

	if err := plan.Inverse(aPadded, aFreq); err != nil {
		return nil, fmt.Errorf("echo: inverse FFT failed: %w", err)
	}

	out := make([]float64, n)
	for i := range out {
		out[i] = real(aPadded[i])
	}
	return out, nil
}

func nextPowerOf2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
