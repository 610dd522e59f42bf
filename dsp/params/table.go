package params

// Address identifies a parameter. Addresses are stable and dense.
type Address uint32

// Parameter addresses.
const (
	TimeInterval Address = iota
	Dry
	Wet
	Feedback
	Zeno
	PingPong
	Frequency

	// Count is the number of parameters.
	Count = int(Frequency) + 1
)

// Unit describes how a parameter value is interpreted and displayed.
type Unit int

// Parameter units.
const (
	UnitSeconds Unit = iota
	UnitPercent
	UnitBoolean
	UnitHertz
)

// String returns the display suffix of the unit.
func (u Unit) String() string {
	switch u {
	case UnitSeconds:
		return "s"
	case UnitPercent:
		return "%"
	case UnitBoolean:
		return "bool"
	case UnitHertz:
		return "Hz"
	default:
		return "?"
	}
}

// Descriptor is the immutable description of one parameter.
type Descriptor struct {
	Address    Address
	Identifier string
	Name       string
	Unit       Unit
	Min        float64
	Max        float64
	Default    float64
}

var table = [Count]Descriptor{
	{Address: TimeInterval, Identifier: "timeinterval", Name: "Time Interval", Unit: UnitSeconds, Min: 0, Max: 3, Default: 0.5},
	{Address: Dry, Identifier: "dry", Name: "Dry Mix", Unit: UnitPercent, Min: 0, Max: 100, Default: 100},
	{Address: Wet, Identifier: "wet", Name: "Wet Mix", Unit: UnitPercent, Min: 0, Max: 100, Default: 50},
	{Address: Feedback, Identifier: "feedback", Name: "Feedback", Unit: UnitPercent, Min: 0, Max: 100, Default: 25},
	{Address: Zeno, Identifier: "zeno", Name: "Zeno Mode", Unit: UnitBoolean, Min: 0, Max: 1, Default: 0},
	{Address: PingPong, Identifier: "pingpong", Name: "Ping Pong", Unit: UnitBoolean, Min: 0, Max: 1, Default: 0},
	{Address: Frequency, Identifier: "frequency", Name: "Frequency", Unit: UnitHertz, Min: 0, Max: 5, Default: 0.25},
}

// MaxTimeInterval is the upper bound of the timeinterval parameter in seconds.
// Delay lines are sized from it.
const MaxTimeInterval = 3.0

// Table returns a copy of the full parameter table in address order.
func Table() [Count]Descriptor {
	return table
}

// Lookup returns the descriptor for addr.
func Lookup(addr Address) (Descriptor, bool) {
	if int(addr) >= Count {
		return Descriptor{}, false
	}
	return table[addr], true
}

// ByIdentifier returns the descriptor with the given identifier.
func ByIdentifier(id string) (Descriptor, bool) {
	for _, d := range table {
		if d.Identifier == id {
			return d, true
		}
	}
	return Descriptor{}, false
}

// Clamp maps v into the descriptor's range. Boolean parameters snap any
// non-zero value to 1.
func (d Descriptor) Clamp(v float64) float64 {
	if v < d.Min {
		v = d.Min
	} else if v > d.Max {
		v = d.Max
	}
	if d.Unit == UnitBoolean && v != 0 {
		return 1
	}
	return v
}
