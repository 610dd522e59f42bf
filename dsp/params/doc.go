// Package params defines the delay's parameter table and the store that
// publishes parameter values from the control path to the render path.
//
// The table is a fixed array of [Descriptor] values. The [Store] keeps one
// atomic slot per address, so a writer never blocks a reader and a reader
// never observes a torn or out-of-range value.
package params
