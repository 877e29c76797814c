package dutil

import (
	"fmt"
	"math/rand"
)

// Sampler yields batches of dataset indexes.
type Sampler interface {
	// Batches returns the ordered index batches for one pass.
	Batches() [][]int
}

// BatchSampler draws fixed-size index batches over a dataset, optionally
// shuffled, optionally dropping the trailing partial batch.
type BatchSampler struct {
	n         int
	batchSize int
	dropLast  bool
	shuffle   bool
}

// NewBatchSampler creates a BatchSampler over a dataset of size n.
func NewBatchSampler(n, batchSize int, dropLast, shuffle bool) (*BatchSampler, error) {
	if n <= 0 {
		return nil, fmt.Errorf("Invalid dataset size: %v\n", n)
	}
	if batchSize <= 0 || batchSize > n {
		return nil, fmt.Errorf("Invalid batch size: %v for dataset of size %v\n", batchSize, n)
	}

	return &BatchSampler{
		n:         n,
		batchSize: batchSize,
		dropLast:  dropLast,
		shuffle:   shuffle,
	}, nil
}

// Batches implements Sampler for BatchSampler struct.
func (s *BatchSampler) Batches() [][]int {
	indexes := make([]int, s.n)
	for i := range indexes {
		indexes[i] = i
	}

	if s.shuffle {
		rand.Shuffle(len(indexes), func(i, j int) {
			indexes[i], indexes[j] = indexes[j], indexes[i]
		})
	}

	var batches [][]int
	for start := 0; start < len(indexes); start += s.batchSize {
		end := start + s.batchSize
		if end > len(indexes) {
			if s.dropLast {
				break
			}
			end = len(indexes)
		}
		batches = append(batches, indexes[start:end])
	}

	return batches
}
