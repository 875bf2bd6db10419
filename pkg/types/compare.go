package types

import "cmp"

// CompareFunc returns -1 if a is less than b, 0 if they are equal, and 1 if a
// is greater than b.
type CompareFunc[K any] func(a, b K) int

// Comparable interface.
type Comparable[T any] interface {
	// Compare with other value. Returns -1 if less than, 0 if
	// equals, and 1 if greater than the other value.
	Compare(other T) int
}

// Ordered returns the natural ordering of K.
func Ordered[K cmp.Ordered]() CompareFunc[K] {
	return cmp.Compare[K]
}

// ByComparable orders values by their own Compare method.
func ByComparable[T Comparable[T]]() CompareFunc[T] {
	return func(a, b T) int {
		return a.Compare(b)
	}
}

// Reverse flips the given ordering.
func Reverse[K any](f CompareFunc[K]) CompareFunc[K] {
	return func(a, b K) int {
		return f(b, a)
	}
}
