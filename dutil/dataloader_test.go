package dutil_test

import (
	"reflect"
	"testing"

	"github.com/sugarme/igen/dutil"
)

type intDataset struct {
	data []int
}

func (ds *intDataset) Len() int { return len(ds.data) }

func (ds *intDataset) Item(idx int) (interface{}, error) {
	return ds.data[idx], nil
}

func (ds *intDataset) DType() reflect.Type {
	return reflect.TypeOf(ds.data)
}

func TestBatchSampler(t *testing.T) {
	s, err := dutil.NewBatchSampler(10, 3, false, false)
	if err != nil {
		t.Fatal(err)
	}

	batches := s.Batches()
	if len(batches) != 4 {
		t.Errorf("Expected 4 batches. Got %v\n", len(batches))
	}
	if len(batches[3]) != 1 {
		t.Errorf("Expected trailing batch of 1. Got %v\n", len(batches[3]))
	}
}

func TestBatchSamplerDropLast(t *testing.T) {
	s, err := dutil.NewBatchSampler(10, 3, true, false)
	if err != nil {
		t.Fatal(err)
	}

	batches := s.Batches()
	if len(batches) != 3 {
		t.Errorf("Expected 3 full batches. Got %v\n", len(batches))
	}
}

func TestBatchSamplerInvalidSize(t *testing.T) {
	if _, err := dutil.NewBatchSampler(5, 10, false, false); err == nil {
		t.Errorf("Expected error for batch size larger than dataset.\n")
	}
}

func TestDataLoader(t *testing.T) {
	ds := &intDataset{data: []int{0, 1, 2, 3, 4, 5}}
	s, err := dutil.NewBatchSampler(ds.Len(), 2, false, false)
	if err != nil {
		t.Fatal(err)
	}
	dl, err := dutil.NewDataLoader(ds, s)
	if err != nil {
		t.Fatal(err)
	}

	var seen []int
	for dl.HasNext() {
		b, err := dl.Next()
		if err != nil {
			t.Fatal(err)
		}
		batch, ok := b.([]int)
		if !ok {
			t.Fatalf("Expected []int batch. Got %T\n", b)
		}
		seen = append(seen, batch...)
	}

	if !reflect.DeepEqual(seen, ds.data) {
		t.Errorf("Expected to iterate %v. Got %v\n", ds.data, seen)
	}

	dl.Reset()
	if !dl.HasNext() {
		t.Errorf("Expected loader to have batches after Reset.\n")
	}
}
