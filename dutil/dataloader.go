package dutil

import (
	"fmt"
	"reflect"
)

// DataLoader iterates a Dataset in the batch order produced by a Sampler.
// Next returns a typed slice of samples (e.g. []ImageMask) so callers can
// type-assert without per-item reflection.
type DataLoader struct {
	ds      Dataset
	batches [][]int
	pos     int
}

// NewDataLoader creates a DataLoader.
func NewDataLoader(ds Dataset, s Sampler) (*DataLoader, error) {
	if ds == nil || ds.Len() == 0 {
		return nil, fmt.Errorf("Empty dataset.\n")
	}

	return &DataLoader{
		ds:      ds,
		batches: s.Batches(),
		pos:     0,
	}, nil
}

// HasNext reports whether a batch remains in the current pass.
func (dl *DataLoader) HasNext() bool {
	return dl.pos < len(dl.batches)
}

// Next returns the next batch of samples.
func (dl *DataLoader) Next() (interface{}, error) {
	if !dl.HasNext() {
		return nil, fmt.Errorf("No more batches. Call Reset to start a new pass.\n")
	}

	indexes := dl.batches[dl.pos]
	dl.pos++

	first, err := dl.ds.Item(indexes[0])
	if err != nil {
		return nil, err
	}

	batch := reflect.MakeSlice(reflect.SliceOf(reflect.TypeOf(first)), 0, len(indexes))
	batch = reflect.Append(batch, reflect.ValueOf(first))
	for _, idx := range indexes[1:] {
		item, err := dl.ds.Item(idx)
		if err != nil {
			return nil, err
		}
		batch = reflect.Append(batch, reflect.ValueOf(item))
	}

	return batch.Interface(), nil
}

// Reset rewinds the loader, re-sampling nothing: the batch order of the
// pass is fixed at construction.
func (dl *DataLoader) Reset() {
	dl.pos = 0
}
