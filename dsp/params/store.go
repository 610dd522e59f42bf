package params

import (
	"math"
	"sync/atomic"
)

// Store holds the live parameter values. Set and Get may be called from any
// goroutine; neither blocks.
type Store struct {
	slots [Count]atomic.Uint64
}

// NewStore returns a store holding every parameter's default value.
func NewStore() *Store {
	s := &Store{}
	s.Reset()
	return s
}

// Reset publishes the default value of every parameter.
func (s *Store) Reset() {
	for i := range table {
		s.slots[i].Store(math.Float64bits(table[i].Default))
	}
}

// Set clamps value to the parameter's range and publishes it. NaN values
// and unknown addresses are ignored.
func (s *Store) Set(addr Address, value float64) {
	if int(addr) >= Count || math.IsNaN(value) {
		return
	}
	s.slots[addr].Store(math.Float64bits(table[addr].Clamp(value)))
}

// Get returns the last published value, or 0 for an unknown address.
func (s *Store) Get(addr Address) float64 {
	if int(addr) >= Count {
		return 0
	}
	return math.Float64frombits(s.slots[addr].Load())
}

// Bool reports whether a boolean parameter is on.
func (s *Store) Bool(addr Address) bool {
	return s.Get(addr) != 0
}

// Snapshot is a per-render-call copy of every parameter.
// Each field is individually consistent; fields are not read as one
// transaction, which a per-call read does not need.
type Snapshot struct {
	TimeInterval float64
	Dry          float64
	Wet          float64
	Feedback     float64
	Zeno         bool
	PingPong     bool
	Frequency    float64
}

// Snapshot loads every parameter once.
func (s *Store) Snapshot() Snapshot {
	return Snapshot{
		TimeInterval: s.Get(TimeInterval),
		Dry:          s.Get(Dry),
		Wet:          s.Get(Wet),
		Feedback:     s.Get(Feedback),
		Zeno:         s.Bool(Zeno),
		PingPong:     s.Bool(PingPong),
		Frequency:    s.Get(Frequency),
	}
}

// DryGain returns the linear dry gain.
func (p Snapshot) DryGain() float64 { return p.Dry / 100 }

// WetGain returns the linear wet gain.
func (p Snapshot) WetGain() float64 { return p.Wet / 100 }

// FeedbackGain returns the linear feedback gain.
func (p Snapshot) FeedbackGain() float64 { return p.Feedback / 100 }
