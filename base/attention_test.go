package base_test

import (
	"math"
	"reflect"
	"testing"

	"github.com/sugarme/gotch"
	"github.com/sugarme/gotch/nn"
	ts "github.com/sugarme/gotch/tensor"

	"github.com/sugarme/igen/base"
)

func TestSpatialAttentionShape(t *testing.T) {
	vs := nn.NewVarStore(gotch.CPU)
	attn := base.NewSpatialAttention(vs.Root(), 2, 16, 8, 1e-6)

	x := ts.MustRand([]int64{2, 16, 8, 8}, gotch.Float, gotch.CPU)
	out := attn.ForwardT(x, false)

	if got := out.MustSize(); !reflect.DeepEqual(got, x.MustSize()) {
		t.Errorf("Expected attention to preserve shape %v. Got %v\n", x.MustSize(), got)
	}

	out.MustDrop()
	x.MustDrop()
}

func TestUpsampleDoublesSpatialDims(t *testing.T) {
	vs := nn.NewVarStore(gotch.CPU)
	up := base.NewUpsample(vs.Root(), 2, 16)

	x := ts.MustRand([]int64{1, 16, 8, 8}, gotch.Float, gotch.CPU)
	out := up.ForwardT(x, false)

	if got := out.MustSize(); !reflect.DeepEqual(got, []int64{1, 16, 16, 16}) {
		t.Errorf("Expected upsampled shape [1 16 16 16]. Got %v\n", got)
	}

	out.MustDrop()
	x.MustDrop()
}

func TestResizeNearest(t *testing.T) {
	x := ts.MustRand([]int64{1, 3, 32, 32}, gotch.Float, gotch.CPU)

	down := base.ResizeNearest(x, []int64{8, 8})
	if got := down.MustSize(); !reflect.DeepEqual(got, []int64{1, 3, 8, 8}) {
		t.Errorf("Expected resized shape [1 3 8 8]. Got %v\n", got)
	}

	down.MustDrop()
	x.MustDrop()
}

func TestConv3d(t *testing.T) {
	vs := nn.NewVarStore(gotch.CPU)
	conv := base.Conv(vs.Root(), 3, 2, 4, 3, 1, 1)

	x := ts.MustRand([]int64{1, 2, 4, 4, 4}, gotch.Float, gotch.CPU)
	out := conv.ForwardT(x, false)

	if got := out.MustSize(); !reflect.DeepEqual(got, []int64{1, 4, 4, 4, 4}) {
		t.Errorf("Expected conv output shape [1 4 4 4 4]. Got %v\n", got)
	}

	out.MustDrop()
	x.MustDrop()
}

func TestGroupNormZeroMean(t *testing.T) {
	vs := nn.NewVarStore(gotch.CPU)
	gn := base.NewGroupNorm(vs.Root(), 4, 8, 1e-6)

	// Fresh weight is 1 and bias 0, so the output mean must be zero.
	x := ts.MustRand([]int64{2, 8, 4, 4}, gotch.Float, gotch.CPU)
	out := gn.Forward(x)

	mean := out.MustMean(gotch.Double, true)
	if got := mean.Float64Values()[0]; math.Abs(got) > 1e-4 {
		t.Errorf("Expected normalized output with zero mean. Got %v\n", got)
	}

	mean.MustDrop()
	x.MustDrop()
}

func TestGroupNormShape(t *testing.T) {
	vs := nn.NewVarStore(gotch.CPU)
	gn := base.NewGroupNorm(vs.Root(), 8, 16, 1e-6)

	x := ts.MustRand([]int64{2, 16, 4, 4}, gotch.Float, gotch.CPU)
	out := gn.Forward(x)

	if got := out.MustSize(); !reflect.DeepEqual(got, x.MustSize()) {
		t.Errorf("Expected group norm to preserve shape %v. Got %v\n", x.MustSize(), got)
	}

	out.MustDrop()
	x.MustDrop()
}
