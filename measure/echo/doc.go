// Package echo measures rendered echo responses.
//
// It detects the discrete repeats in an impulse response, derives the
// repeat interval and the per-repeat decay ratio, estimates the delay
// between a reference and a processed signal by FFT cross-correlation, and
// reports the left/right energy balance over time to show ping-pong motion.
//
// # Usage
//
//	analyzer := echo.NewAnalyzer(48000)
//	report, err := analyzer.Analyze(response)
//	fmt.Printf("delay = %.3f s, decay = %.1f dB/repeat\n", report.Delay, report.DecayDB)
package echo
