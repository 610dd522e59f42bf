// Command revo-render runs an audio file through the ping-pong echo.
//
// Usage:
//
//	revo-render [flags] input.{wav,flac} [output.wav]
//
// Every echo parameter has a flag named after its identifier. Values accept
// the display forms, e.g. -timeinterval 250ms, -wet 70%, -pingpong.
//
// Examples:
//
//	revo-render -wet 60% -feedback 45% in.wav out.wav
//	revo-render -pingpong -frequency 0.5Hz -stereo vocal.flac out.wav
//	revo-render -tempo 120 -sync 1/8d -timeinterval 400ms in.wav out.wav
//	revo-render -zeno-at 2.5 -tail 6 in.wav frozen.wav
//	revo-render -analyze -feedback 50% in.wav
//	revo-render -play in.wav
//	revo-render -params
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/GeoffreyPlitt/debuggo"

	"github.com/cwbudde/algo-revo/dsp/effects/pingpong"
	"github.com/cwbudde/algo-revo/dsp/interp"
	"github.com/cwbudde/algo-revo/dsp/params"
	"github.com/cwbudde/algo-revo/host"
	hostoto "github.com/cwbudde/algo-revo/host/oto"
	"github.com/cwbudde/algo-revo/internal/audiofile"
	"github.com/cwbudde/algo-revo/internal/cli"
	"github.com/cwbudde/algo-revo/unit"
)

var debug = debuggo.Debug("revo:render")

type options struct {
	bits     int
	block    int
	tail     float64
	tempo    float64
	sync     string
	pan      string
	smooth   float64
	hermite  bool
	stereo   bool
	zenoAt   float64
	analyze  bool
	play     bool
	params   bool
	paramSet *cli.ParamFlags
}

func main() {
	var o options
	flag.IntVar(&o.bits, "bits", 24, "output bit depth (16, 24 or 32)")
	flag.IntVar(&o.block, "block", 512, "render block size in frames")
	flag.Float64Var(&o.tail, "tail", 3, "seconds of echo tail rendered after the input ends")
	flag.Float64Var(&o.tempo, "tempo", 0, "host tempo in BPM for -sync (0 disables musical context)")
	flag.StringVar(&o.sync, "sync", "free", "tempo sync: free or a note value such as 1/8, 1/8d, 1/4t")
	flag.StringVar(&o.pan, "pan", "sine", "ping-pong pan law: sine or square")
	flag.Float64Var(&o.smooth, "smooth", 0, "delay-time glide in ms (0 disables)")
	flag.BoolVar(&o.hermite, "hermite", false, "use 4-point Hermite instead of linear interpolation")
	flag.BoolVar(&o.stereo, "stereo", false, "upmix mono input to stereo so ping-pong can move")
	flag.Float64Var(&o.zenoAt, "zeno-at", -1, "switch zeno freeze on at this input time in seconds (negative disables)")
	flag.BoolVar(&o.analyze, "analyze", false, "print an echo analysis instead of only rendering")
	flag.BoolVar(&o.play, "play", false, "play the result through the default audio device")
	flag.BoolVar(&o.params, "params", false, "list the echo parameters and exit")
	o.paramSet = cli.RegisterParams(flag.CommandLine)
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: revo-render [flags] input.{wav,flac} [output.wav]\n\n")
		fmt.Fprintf(os.Stderr, "Runs an audio file through the ping-pong echo.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if o.params {
		store := params.NewStore()
		o.paramSet.Apply(store.Set)
		if err := cli.PrintParams(os.Stdout, store.Get); err != nil {
			fatal(err)
		}
		return
	}

	if flag.NArg() < 1 || flag.NArg() > 2 {
		flag.Usage()
		os.Exit(2)
	}
	if flag.NArg() == 1 && !o.analyze && !o.play {
		fatal(fmt.Errorf("no output file given; pass one or use -analyze / -play"))
	}

	if err := run(o, flag.Arg(0), flag.Arg(1)); err != nil {
		fatal(err)
	}
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}

func run(o options, inPath, outPath string) error {
	clip, err := audiofile.Load(inPath)
	if err != nil {
		return err
	}
	if o.stereo && clip.NumChannels() == 1 {
		clip.Channels = append(clip.Channels, append([]float64(nil), clip.Channels[0]...))
	}

	u, err := newUnit(o, clip)
	if err != nil {
		return err
	}
	defer u.DeallocateRenderResources()

	tail := int(o.tail * float64(clip.SampleRate))
	var cues []host.Cue
	if o.zenoAt >= 0 {
		cues = append(cues, host.Cue{
			At: int64(o.zenoAt * float64(clip.SampleRate)),
			Do: func() { u.SetParameter(params.Zeno, 1) },
		})
	}

	if outPath != "" || o.analyze {
		rendered, err := host.RenderOffline(u, clip.Channels, tail, cues...)
		if err != nil {
			return fmt.Errorf("render: %w", err)
		}
		if u.Faults() > 0 {
			fmt.Fprintf(os.Stderr, "warning: %d render calls degraded to passthrough\n", u.Faults())
		}

		if outPath != "" {
			out := &audiofile.Clip{SampleRate: clip.SampleRate, Channels: rendered}
			if err := audiofile.Save(outPath, out, o.bits); err != nil {
				return err
			}
			fmt.Printf("wrote %s: %d channels, %.2f s\n", outPath, out.NumChannels(), out.Duration())
		}

		if o.analyze {
			if err := analyze(os.Stdout, u, clip, rendered); err != nil {
				return err
			}
		}
	}

	if o.play {
		u.Reset()
		if o.zenoAt >= 0 {
			u.SetParameter(params.Zeno, 0)
		}
		o.paramSet.Apply(u.SetParameter)
		debug("playing %s", inPath)
		if err := hostoto.Play(u, clip.Channels, tail); err != nil {
			return fmt.Errorf("play: %w", err)
		}
	}
	return nil
}

func newUnit(o options, clip *audiofile.Clip) (*unit.Unit, error) {
	sync, err := cli.ParseTempoSync(o.sync)
	if err != nil {
		return nil, err
	}
	pan, err := cli.ParsePan(o.pan)
	if err != nil {
		return nil, err
	}
	kernelOpts := []pingpong.Option{
		pingpong.WithTempoSync(sync),
		pingpong.WithPanPolicy(pan),
		pingpong.WithDelaySmoothing(o.smooth),
	}
	if o.hermite {
		kernelOpts = append(kernelOpts, pingpong.WithInterpolation(interp.Hermite))
	}

	opts := []unit.Option{
		unit.WithFormat(float64(clip.SampleRate), clip.NumChannels()),
		unit.WithMaxFrames(o.block),
		unit.WithKernelOptions(kernelOpts...),
	}
	if o.tempo > 0 {
		mc := pingpong.MusicalContext{Tempo: o.tempo, TimeSignatureNumerator: 4, TimeSignatureDenominator: 4}
		opts = append(opts, unit.WithMusicalContext(func() (pingpong.MusicalContext, bool) { return mc, true }))
	}

	u, err := unit.New(opts...)
	if err != nil {
		return nil, err
	}
	n := o.paramSet.Apply(u.SetParameter)
	debug("%d parameters set from flags", n)

	if err := u.AllocateRenderResources(); err != nil {
		return nil, err
	}
	return u, nil
}
