package main

import (
	"fmt"
	"io"
	"math"
	"text/tabwriter"

	"github.com/cwbudde/algo-revo/dsp/params"
	"github.com/cwbudde/algo-revo/host"
	"github.com/cwbudde/algo-revo/internal/audiofile"
	"github.com/cwbudde/algo-revo/measure/echo"
	"github.com/cwbudde/algo-revo/unit"
)

// analyze prints the echo pattern of the current settings, the delay found
// in the rendered file and, for stereo, how far the echo travels.
func analyze(w io.Writer, u *unit.Unit, clip *audiofile.Clip, rendered [][]float64) error {
	a := echo.NewAnalyzer(float64(clip.SampleRate))

	response, err := impulseResponse(u, clip)
	if err != nil {
		return err
	}
	report, err := a.Analyze(response)
	if err != nil {
		return fmt.Errorf("analyze impulse response: %w", err)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SETTING\tVALUE")
	for _, d := range params.Table() {
		fmt.Fprintf(tw, "%s\t%s\n", d.Name, u.ParameterString(d.Address))
	}
	fmt.Fprintln(tw)

	fmt.Fprintln(tw, "METRIC\tVALUE")
	fmt.Fprintf(tw, "Repeats above -60 dB\t%d\n", len(report.Taps))
	fmt.Fprintf(tw, "Repeat interval\t%.1f ms\n", report.Delay*1000)
	fmt.Fprintf(tw, "Decay per repeat\t%.2f dB\n", report.DecayDB)

	ref, proc := mono(clip.Channels), mono(rendered)
	if len(proc) > len(ref) {
		proc = proc[:len(ref)]
	}
	if delay, err := a.EstimateDelay(ref, proc); err == nil {
		fmt.Fprintf(tw, "Delay found in output\t%.1f ms\n", delay*1000)
	}

	if len(rendered) >= 2 {
		window := clip.SampleRate / 4
		balance, err := echo.Balance(rendered[0], rendered[1], window)
		if err == nil && len(balance) > 0 {
			lo, hi := balance[0], balance[0]
			for _, b := range balance {
				lo, hi = math.Min(lo, b), math.Max(hi, b)
			}
			fmt.Fprintf(tw, "L/R balance range\t%+.2f .. %+.2f\n", lo, hi)
		}
	}
	return tw.Flush()
}

// impulseResponse renders a wet-only impulse through a fresh unit with the
// same settings.
func impulseResponse(u *unit.Unit, clip *audiofile.Clip) ([]float64, error) {
	probe, err := unit.New(
		unit.WithFormat(float64(clip.SampleRate), 1),
		unit.WithMaxFrames(u.MaximumFramesToRender()),
	)
	if err != nil {
		return nil, err
	}
	for _, d := range params.Table() {
		probe.SetParameter(d.Address, u.Parameter(d.Address))
	}
	probe.SetParameter(params.Dry, 0)
	probe.SetParameter(params.Wet, 100)
	probe.SetParameter(params.Zeno, 0)
	probe.SetParameter(params.PingPong, 0)
	if err := probe.AllocateRenderResources(); err != nil {
		return nil, err
	}
	defer probe.DeallocateRenderResources()

	n := int(2*params.MaxTimeInterval*float64(clip.SampleRate)) + 1
	impulse := make([]float64, n)
	impulse[0] = 1
	out, err := host.RenderOffline(probe, [][]float64{impulse}, 0)
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

func mono(channels [][]float64) []float64 {
	if len(channels) == 0 {
		return nil
	}
	out := make([]float64, len(channels[0]))
	for _, ch := range channels {
		for i := range out {
			if i < len(ch) {
				out[i] += ch[i] / float64(len(channels))
			}
		}
	}
	return out
}
