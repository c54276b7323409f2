// Package shared holds small helpers for handling secret material.
package shared

// WipeByteArray zeroes b. A nil slice is a no-op.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// WithSecret passes a fresh byte copy of s to fn and zeroes it afterwards.
// fn must not retain the slice.
func WithSecret[T any](s string, fn func([]byte) (T, error)) (T, error) {
	b := []byte(s)
	defer WipeByteArray(b)
	return fn(b)
}
