package pingpong

import (
	"math"

	"github.com/cwbudde/algo-revo/dsp/params"
)

// MusicalContext is the host's transport state for one render call.
type MusicalContext struct {
	Tempo                    float64 // beats per minute
	BeatPosition             float64
	TimeSignatureNumerator   int
	TimeSignatureDenominator int
}

// TempoSync derives the effective delay time from the time-interval
// parameter and the host's musical context.
type TempoSync interface {
	DelaySeconds(interval float64, mc MusicalContext) float64
}

// FreeTime ignores the musical context.
type FreeTime struct{}

// DelaySeconds returns interval unchanged.
func (FreeTime) DelaySeconds(interval float64, _ MusicalContext) float64 {
	return interval
}

// Subdivision quantizes the delay to whole multiples of a note value
// expressed in beats, e.g. 0.5 for eighth notes in 4/4.
type Subdivision struct {
	Beats float64
}

// DelaySeconds rounds interval to the nearest non-zero multiple of the
// subdivision length at the current tempo, never exceeding
// params.MaxTimeInterval. A missing or invalid tempo leaves interval
// unchanged.
func (s Subdivision) DelaySeconds(interval float64, mc MusicalContext) float64 {
	if !(mc.Tempo > 0) || math.IsInf(mc.Tempo, 0) || !(s.Beats > 0) || math.IsInf(s.Beats, 0) {
		return interval
	}

	step := s.Beats * 60 / mc.Tempo
	maxSteps := math.Floor(params.MaxTimeInterval / step)
	if maxSteps < 1 {
		return params.MaxTimeInterval
	}

	steps := math.Round(interval / step)
	if steps < 1 {
		steps = 1
	}
	if steps > maxSteps {
		steps = maxSteps
	}
	return steps * step
}
