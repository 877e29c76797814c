package dutil

import "reflect"

// Dataset represents an indexable collection of samples.
type Dataset interface {
	// Len returns the number of samples.
	Len() int
	// Item returns the sample at idx.
	Item(idx int) (interface{}, error)
	// DType returns the reflection type of a sample.
	DType() reflect.Type
}
