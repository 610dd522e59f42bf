package params

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrUnknownParameter is returned for an address or identifier outside the table.
var ErrUnknownParameter = errors.New("unknown parameter")

// Stringify formats value for display according to the parameter's unit.
// It is meant for editors and logs, not the render path.
func Stringify(addr Address, value float64) string {
	d, ok := Lookup(addr)
	if !ok {
		return "-"
	}
	switch d.Unit {
	case UnitSeconds:
		if value < 1 {
			return fmt.Sprintf("%.0f ms", value*1000)
		}
		return fmt.Sprintf("%.2f s", value)
	case UnitPercent:
		return fmt.Sprintf("%.0f%%", value)
	case UnitBoolean:
		if value != 0 {
			return "On"
		}
		return "Off"
	case UnitHertz:
		return fmt.Sprintf("%.2f Hz", value)
	default:
		return strconv.FormatFloat(value, 'f', -1, 64)
	}
}

// Parse converts display text back into a parameter value. It accepts the
// forms Stringify produces plus bare numbers; the result is clamped.
func Parse(addr Address, text string) (float64, error) {
	d, ok := Lookup(addr)
	if !ok {
		return 0, fmt.Errorf("%w: address %d", ErrUnknownParameter, addr)
	}

	s := strings.ToLower(strings.TrimSpace(text))
	if d.Unit == UnitBoolean {
		switch s {
		case "on", "true", "yes":
			return 1, nil
		case "off", "false", "no":
			return 0, nil
		}
	}

	divisor := 1.0
	switch {
	case d.Unit == UnitSeconds && strings.HasSuffix(s, "ms"):
		s, divisor = strings.TrimSuffix(s, "ms"), 1000
	case d.Unit == UnitSeconds:
		s = strings.TrimSuffix(s, "s")
	case d.Unit == UnitPercent:
		s = strings.TrimSuffix(s, "%")
	case d.Unit == UnitHertz:
		s = strings.TrimSuffix(s, "hz")
	}

	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("parse %s value %q: %w", d.Identifier, text, err)
	}
	if math.IsNaN(v) {
		return 0, fmt.Errorf("parse %s value %q: not a number", d.Identifier, text)
	}
	return d.Clamp(v / divisor), nil
}
