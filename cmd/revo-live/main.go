// Command revo-live runs the ping-pong echo on a live audio device.
//
// Usage:
//
//	revo-live [flags]
//
// The echo runs until interrupted. With -nats, parameters can be changed
// remotely by publishing JSON requests to revo.<id>.set, for example
//
//	{"param": "feedback", "text": "60%"}
//	{"param": "zeno", "value": 1}
//	{"bypass": true}
//
// and the current state is returned on revo.<id>.get.
//
// Examples:
//
//	revo-live -wet 40% -timeinterval 350ms
//	revo-live -backend jack -rate 48000 -pingpong
//	revo-live -tempo 96 -sync 1/8d -nats nats://localhost:4222 -id stage
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/GeoffreyPlitt/debuggo"

	"github.com/cwbudde/algo-revo/control/natsctl"
	"github.com/cwbudde/algo-revo/dsp/effects/pingpong"
	"github.com/cwbudde/algo-revo/host/jack"
	"github.com/cwbudde/algo-revo/host/portaudio"
	"github.com/cwbudde/algo-revo/internal/cli"
	"github.com/cwbudde/algo-revo/unit"
)

var debug = debuggo.Debug("revo:live")

// backend is the part of a device adapter the command drives.
type backend interface {
	Start() error
	Stop() error
	Close() error
	Errors() uint64
}

type options struct {
	backend  string
	rate     float64
	channels int
	frames   int
	natsURL  string
	id       string
	tempo    float64
	sync     string
	pan      string
	smooth   float64
	paramSet *cli.ParamFlags
}

func main() {
	var o options
	flag.StringVar(&o.backend, "backend", "portaudio", "audio backend: portaudio or jack")
	flag.Float64Var(&o.rate, "rate", 44100, "sample rate in Hz (must match the JACK server for -backend jack)")
	flag.IntVar(&o.channels, "channels", 2, "number of input and output channels")
	flag.IntVar(&o.frames, "frames", 256, "frames per device buffer and maximum render size")
	flag.StringVar(&o.natsURL, "nats", "", "NATS server URL for remote control (empty disables)")
	flag.StringVar(&o.id, "id", "revo", "instance id used in NATS subjects")
	flag.Float64Var(&o.tempo, "tempo", 0, "tempo in BPM for -sync (0 disables musical context)")
	flag.StringVar(&o.sync, "sync", "free", "tempo sync: free or a note value such as 1/8, 1/8d, 1/4t")
	flag.StringVar(&o.pan, "pan", "sine", "ping-pong pan law: sine or square")
	flag.Float64Var(&o.smooth, "smooth", 20, "delay-time glide in ms (0 disables)")
	o.paramSet = cli.RegisterParams(flag.CommandLine)
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: revo-live [flags]\n\n")
		fmt.Fprintf(os.Stderr, "Runs the ping-pong echo on a live audio device until interrupted.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 0 {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(o); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(o options) error {
	u, err := newUnit(o)
	if err != nil {
		return err
	}
	if err := u.AllocateRenderResources(); err != nil {
		return err
	}
	defer u.DeallocateRenderResources()

	var dev backend
	switch o.backend {
	case "portaudio":
		dev, err = portaudio.Open(u, o.frames)
	case "jack":
		dev, err = jack.Open(u, "revo-"+o.id)
	default:
		return fmt.Errorf("unknown backend %q (want portaudio or jack)", o.backend)
	}
	if err != nil {
		return err
	}
	defer dev.Close()

	var ctl *natsctl.Controller
	if o.natsURL != "" {
		ctl, err = natsctl.Connect(o.natsURL, o.id, u)
		if err != nil {
			return err
		}
		defer ctl.Close()
		if err := ctl.Start(); err != nil {
			return err
		}
		fmt.Printf("remote control on %s and %s\n", ctl.SetSubject(), ctl.GetSubject())
	}

	if err := dev.Start(); err != nil {
		return err
	}
	f := u.OutputFormat()
	fmt.Printf("running on %s: %d channels at %.0f Hz, %d frames (Ctrl-C to stop)\n",
		o.backend, f.Channels, f.SampleRate, o.frames)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	start := time.Now()
	<-sig
	debug("stopping after %s", time.Since(start))

	if err := dev.Stop(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}

	fmt.Printf("ran %s\n", time.Since(start).Round(time.Second))
	fmt.Printf("  failed render blocks:  %d\n", dev.Errors())
	fmt.Printf("  degraded render calls: %d\n", u.Faults())
	fmt.Printf("  failed input pulls:    %d\n", u.PullFailures())
	if ctl != nil {
		applied, rejected := ctl.Stats()
		fmt.Printf("  remote changes:        %d applied, %d rejected\n", applied, rejected)
	}
	return nil
}

func newUnit(o options) (*unit.Unit, error) {
	sync, err := cli.ParseTempoSync(o.sync)
	if err != nil {
		return nil, err
	}
	pan, err := cli.ParsePan(o.pan)
	if err != nil {
		return nil, err
	}

	opts := []unit.Option{
		unit.WithFormat(o.rate, o.channels),
		unit.WithMaxFrames(o.frames),
		unit.WithKernelOptions(
			pingpong.WithTempoSync(sync),
			pingpong.WithPanPolicy(pan),
			pingpong.WithDelaySmoothing(o.smooth),
		),
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
	return u, nil
}
