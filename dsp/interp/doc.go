// Package interp provides the fractional-read interpolators used by the
// delay lines.
//
//   - [Linear2]:  2-point linear interpolation (the delay's default)
//   - [Hermite4]: 4-point cubic Hermite, smoother for modulated delay times
//
// The [Mode] enum selects one of them when a [delay.Line] is constructed.
package interp
