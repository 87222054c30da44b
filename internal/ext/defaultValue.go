/*
Package ext is "language extensions", functionality that in a perfect world would be part of the golang standard library
*/
package ext

func DefaultValue[T comparable](value T, fallback T) T {
	var zero T
	if value == zero {
		return fallback
	}
	return value
}

// Clamp limits value to the closed range [low, high].
func Clamp(value, low, high int) int {
	return min(max(value, low), high)
}
