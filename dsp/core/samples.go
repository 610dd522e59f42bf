package core

// CopyPadded copies src into dst and zeroes whatever part of dst src does
// not cover. It returns the number of samples copied.
func CopyPadded(dst, src []float64) int {
	n := copy(dst, src)
	clear(dst[n:])
	return n
}
