// Package utils carries small generic helpers shared across packages.
package utils

// Value dereferences v, returning the zero value when v is nil. Handy for
// reading optional filter fields.
func Value[T any](v *T) T {
	if v == nil {
		return *new(T)
	}
	return *v
}

// Ptr returns a pointer to v, for filling optional filter fields inline.
func Ptr[T any](v T) *T {
	return &v
}
