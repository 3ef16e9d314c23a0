package common

// Coalesce returns the first value that differs from T's zero value, or the
// zero value when every argument is zero. Builders and descriptors use it to
// substitute defaults for unset fields.
//
// Parameters:
//   - values: candidate values in priority order
//
// Returns:
//   - T: the first non-zero value, or the zero value
func Coalesce[T comparable](values ...T) T {
	var zero T
	for _, v := range values {
		if v != zero {
			return v
		}
	}
	return zero
}
