// Package mathutil provides small integer math helpers.
package mathutil

// Min returns the smaller of two integers.
func Min(a, b int) int {
	if a < b {
		return a
	}

	return b
}
