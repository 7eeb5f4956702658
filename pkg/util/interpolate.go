package util

import "sort"

// Interpolate samples a series at an arbitrary point on its sorted
// axis, interpolating between neighbors and extrapolating linearly past
// either end. Axis and data must have the same length of at least two;
// anything else is a caller bug and panics.
func Interpolate(at float64, axis, data []float64) float64 {
	if len(axis) != len(data) {
		panic("util.Interpolate: axis and data lengths differ")
	}
	if len(axis) < 2 {
		panic("util.Interpolate: need at least two points")
	}

	right := sort.SearchFloat64s(axis, at)

	switch {
	case right == 0:
		// extrapolate to the left
		slope := (data[1] - data[0]) / (axis[1] - axis[0])
		return data[0] - slope*(axis[0]-at)

	case right == len(axis):
		// extrapolate to the right
		last := len(axis) - 1
		slope := (data[last] - data[last-1]) / (axis[last] - axis[last-1])
		return data[last] + slope*(at-axis[last])

	default:
		left := right - 1
		fraction := (at - axis[left]) / (axis[right] - axis[left])
		return data[left] + fraction*(data[right]-data[left])
	}
}
