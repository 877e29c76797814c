package spade_test

import (
	"reflect"
	"testing"

	"github.com/sugarme/gotch"
	"github.com/sugarme/gotch/nn"
	ts "github.com/sugarme/gotch/tensor"

	"github.com/sugarme/igen/spade"
)

func TestResBlockChannelChange(t *testing.T) {
	vs := nn.NewVarStore(gotch.CPU)
	blk := spade.NewResBlock(vs.Root(), 2, 32, 8, 1e-6, 64, 2, 16)

	x := ts.MustRand([]int64{1, 32, 16, 16}, gotch.Float, gotch.CPU)
	// Full-resolution segmentation map; the SPADE norm resizes it itself.
	seg := ts.MustRand([]int64{1, 2, 64, 64}, gotch.Float, gotch.CPU)

	out := blk.ForwardCond(x, seg, false)
	if got := out.MustSize(); !reflect.DeepEqual(got, []int64{1, 64, 16, 16}) {
		t.Errorf("Expected output shape [1 64 16 16]. Got %v\n", got)
	}

	out.MustDrop()
	x.MustDrop()
	seg.MustDrop()
}

func TestResBlockIdentityShortcut(t *testing.T) {
	vs := nn.NewVarStore(gotch.CPU)
	blk := spade.NewResBlock(vs.Root(), 2, 32, 8, 1e-6, 32, 2, 16)

	x := ts.MustRand([]int64{2, 32, 8, 8}, gotch.Float, gotch.CPU)
	seg := ts.MustRand([]int64{2, 2, 8, 8}, gotch.Float, gotch.CPU)

	out := blk.ForwardCond(x, seg, false)
	if got := out.MustSize(); !reflect.DeepEqual(got, x.MustSize()) {
		t.Errorf("Expected output shape to match input %v. Got %v\n", x.MustSize(), got)
	}

	out.MustDrop()
	x.MustDrop()
	seg.MustDrop()
}

// Zero out-channels falls back to the input width.
func TestResBlockZeroOutChannels(t *testing.T) {
	vs := nn.NewVarStore(gotch.CPU)
	blk := spade.NewResBlock(vs.Root(), 2, 32, 8, 1e-6, 0, 2, 16)

	x := ts.MustRand([]int64{1, 32, 8, 8}, gotch.Float, gotch.CPU)
	seg := ts.MustRand([]int64{1, 2, 8, 8}, gotch.Float, gotch.CPU)

	out := blk.ForwardCond(x, seg, false)
	if got := out.MustSize(); !reflect.DeepEqual(got, []int64{1, 32, 8, 8}) {
		t.Errorf("Expected output shape [1 32 8 8]. Got %v\n", got)
	}

	out.MustDrop()
	x.MustDrop()
	seg.MustDrop()
}

func TestNormModulation(t *testing.T) {
	vs := nn.NewVarStore(gotch.CPU)
	norm := spade.NewNorm(vs.Root(), 2, 3, 16, 8, 3, 8, 1e-6)

	x := ts.MustRand([]int64{1, 16, 8, 8}, gotch.Float, gotch.CPU)
	seg := ts.MustRand([]int64{1, 3, 32, 32}, gotch.Float, gotch.CPU)

	out := norm.ForwardCond(x, seg, false)
	if got := out.MustSize(); !reflect.DeepEqual(got, x.MustSize()) {
		t.Errorf("Expected normalized shape to match input %v. Got %v\n", x.MustSize(), got)
	}

	out.MustDrop()
	x.MustDrop()
	seg.MustDrop()
}
