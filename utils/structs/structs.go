// Package structs implements vectors of components that are either
// primitive numbers or objects with pointer-receiver Clone, Copy and
// Equal methods, such as the rows of an RNS polynomial.
package structs

// Equatable is implemented by *T when T can be compared with another T.
type Equatable[T any] interface {
	Equal(*T) bool
}

// Cloner is implemented by *T when T can be deep copied.
type Cloner[T any] interface {
	Clone() *T
}

// Copyer is implemented by *T when T can be overwritten by another T.
type Copyer[T any] interface {
	Copy(*T)
}
