package structs

import (
	"fmt"
	"slices"

	"github.com/google/go-cmp/cmp"
)

// Vector is a slice of components of type T, where T is a primitive
// number type or a type whose pointer implements the interfaces
// required by the method called (Cloner, Copyer or Equatable).
type Vector[T any] []T

// isPrimitive returns true if T is a primitive number type.
func isPrimitive[T any]() bool {
	var t T
	switch any(t).(type) {
	case uint, uint64, uint32, uint16, uint8, int, int64, int32, int16, int8, float64, float32:
		return true
	}
	return false
}

// Size returns the number of components.
func (v Vector[T]) Size() int {
	return len(v)
}

// Copy copies the components of other on the receiver, up to the shortest of both.
// Panics if T is neither primitive nor a Copyer.
func (v Vector[T]) Copy(other Vector[T]) {

	if isPrimitive[T]() {
		copy(v, other)
		return
	}

	for i := range min(len(v), len(other)) {
		c, ok := any(&v[i]).(Copyer[T])
		if !ok {
			panic(fmt.Errorf("cannot Copy: %T does not implement Copyer", &v[i]))
		}
		c.Copy(&other[i])
	}
}

// Clone returns a deep copy of the receiver.
// Panics if T is neither primitive nor a Cloner.
func (v Vector[T]) Clone() Vector[T] {

	if isPrimitive[T]() {
		return slices.Clone(v)
	}

	cpy := make(Vector[T], len(v))
	for i := range v {
		c, ok := any(&v[i]).(Cloner[T])
		if !ok {
			panic(fmt.Errorf("cannot Clone: %T does not implement Cloner", &v[i]))
		}
		cpy[i] = *c.Clone()
	}
	return cpy
}

// Equal returns true if both vectors have the same size and equal components.
// Components are compared with their Equal method if *T is Equatable and with
// [cmp.Equal] otherwise.
func (v Vector[T]) Equal(other Vector[T]) bool {

	if len(v) != len(other) {
		return false
	}

	for i := range v {
		if e, ok := any(&v[i]).(Equatable[T]); ok {
			if !e.Equal(&other[i]) {
				return false
			}
		} else if !cmp.Equal(v[i], other[i]) {
			return false
		}
	}

	return true
}
