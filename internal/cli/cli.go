// Package cli holds the flag plumbing shared by the revo commands.
package cli

import (
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/cwbudde/algo-revo/dsp/effects/pingpong"
	"github.com/cwbudde/algo-revo/dsp/params"
)

// paramValue is a flag.Value backed by one parameter descriptor.
type paramValue struct {
	desc  params.Descriptor
	value float64
}

func (v *paramValue) String() string {
	if v == nil {
		return ""
	}
	return params.Stringify(v.desc.Address, v.value)
}

func (v *paramValue) Set(s string) error {
	x, err := params.Parse(v.desc.Address, s)
	if err != nil {
		return err
	}
	v.value = x
	return nil
}

// IsBoolFlag lets boolean parameters be given as a bare -zeno.
func (v *paramValue) IsBoolFlag() bool { return v.desc.Unit == params.UnitBoolean }

// ParamFlags registers one flag per parameter, named by its identifier.
type ParamFlags struct {
	fs *flag.FlagSet
}

// RegisterParams adds the parameter flags to fs.
func RegisterParams(fs *flag.FlagSet) *ParamFlags {
	for _, d := range params.Table() {
		v := &paramValue{desc: d, value: d.Default}
		fs.Var(v, d.Identifier, usage(d))
	}
	return &ParamFlags{fs: fs}
}

func usage(d params.Descriptor) string {
	if d.Unit == params.UnitBoolean {
		return d.Name
	}
	return fmt.Sprintf("%s (%s to %s)", d.Name,
		params.Stringify(d.Address, d.Min), params.Stringify(d.Address, d.Max))
}

// Apply calls set for every parameter flag given on the command line and
// returns how many were applied. Unset flags keep the target's values.
func (p *ParamFlags) Apply(set func(params.Address, float64)) int {
	n := 0
	p.fs.Visit(func(f *flag.Flag) {
		v, ok := f.Value.(*paramValue)
		if !ok {
			return
		}
		set(v.desc.Address, v.value)
		n++
	})
	return n
}

// PrintParams writes the parameter table.
func PrintParams(w io.Writer, get func(params.Address) float64) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ADDR\tIDENTIFIER\tNAME\tRANGE\tVALUE")
	for _, d := range params.Table() {
		rng := "off/on"
		if d.Unit != params.UnitBoolean {
			rng = params.Stringify(d.Address, d.Min) + " .. " + params.Stringify(d.Address, d.Max)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", d.Address, d.Identifier, d.Name, rng,
			params.Stringify(d.Address, get(d.Address)))
	}
	return tw.Flush()
}

// ParseTempoSync maps "free" or a note value such as "1/8", "1/8d" (dotted)
// or "1/4t" (triplet) to a tempo-sync policy. Note values assume a quarter
// note beat.
func ParseTempoSync(s string) (pingpong.TempoSync, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || s == "free" {
		return pingpong.FreeTime{}, nil
	}

	factor := 1.0
	switch {
	case strings.HasSuffix(s, "d"):
		factor, s = 1.5, strings.TrimSuffix(s, "d")
	case strings.HasSuffix(s, "t"):
		factor, s = 2.0/3.0, strings.TrimSuffix(s, "t")
	}

	num, den, ok := strings.Cut(s, "/")
	if !ok {
		return nil, fmt.Errorf("tempo sync %q: want free or a note value like 1/8", s)
	}
	n, err := strconv.Atoi(num)
	if err != nil || n <= 0 {
		return nil, fmt.Errorf("tempo sync %q: invalid numerator", s)
	}
	d, err := strconv.Atoi(den)
	if err != nil || d <= 0 {
		return nil, fmt.Errorf("tempo sync %q: invalid denominator", s)
	}
	return pingpong.Subdivision{Beats: 4 * float64(n) / float64(d) * factor}, nil
}

// ParsePan maps "sine" or "square" to a pan policy.
func ParsePan(s string) (pingpong.PanPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "sine":
		return pingpong.SinePan{}, nil
	case "square":
		return pingpong.SquarePan{}, nil
	default:
		return nil, fmt.Errorf("unknown pan law %q (want sine or square)", s)
	}
}
