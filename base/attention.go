package base

import (
	"math"

	"github.com/sugarme/gotch"
	"github.com/sugarme/gotch/nn"
	ts "github.com/sugarme/gotch/tensor"
)

// SpatialAttention is a single-head non-local self-attention block over
// spatial positions: group norm, 1x1 query/key/value projections, scaled
// dot-product attention across the flattened spatial axis, 1x1 output
// projection and a residual connection.
type SpatialAttention struct {
	norm    *GroupNorm
	toQ     ts.ModuleT
	toK     ts.ModuleT
	toV     ts.ModuleT
	projOut ts.ModuleT
}

// NewSpatialAttention creates a SpatialAttention module.
func NewSpatialAttention(p *nn.Path, spatialDims, numChannels, normNumGroups int64, normEps float64) *SpatialAttention {
	return &SpatialAttention{
		norm:    NewGroupNorm(p.Sub("norm"), normNumGroups, numChannels, normEps),
		toQ:     Conv(p.Sub("to_q"), spatialDims, numChannels, numChannels, 1, 0, 1),
		toK:     Conv(p.Sub("to_k"), spatialDims, numChannels, numChannels, 1, 0, 1),
		toV:     Conv(p.Sub("to_v"), spatialDims, numChannels, numChannels, 1, 0, 1),
		projOut: Conv(p.Sub("proj_attn"), spatialDims, numChannels, numChannels, 1, 0, 1),
	}
}

// ForwardT implements ts.ModuleT for SpatialAttention struct.
func (a *SpatialAttention) ForwardT(x *ts.Tensor, train bool) *ts.Tensor {
	size := x.MustSize()
	b, c := size[0], size[1]

	n := a.norm.Forward(x)
	q := a.toQ.ForwardT(n, train)
	k := a.toK.ForwardT(n, train)
	v := a.toV.ForwardT(n, train)
	n.MustDrop()

	flat := []int64{b, c, -1}
	qf := q.MustView(flat, true)                 // [b c s]
	kf := k.MustView(flat, true)                 // [b c s]
	vf := v.MustView(flat, true)                 // [b c s]
	qt := qf.MustPermute([]int64{0, 2, 1}, true) // [b s c]

	attn := qt.MustBmm(kf, true) // [b s s]
	kf.MustDrop()
	scaled := attn.MustMul1(ts.FloatScalar(1.0/math.Sqrt(float64(c))), true)
	w := scaled.MustSoftmax(-1, gotch.Float, true)

	wt := w.MustPermute([]int64{0, 2, 1}, true)
	out := vf.MustBmm(wt, true) // [b c s]
	wt.MustDrop()

	h := out.MustReshape(size, true)
	proj := a.projOut.ForwardT(h, train)
	h.MustDrop()

	return proj.MustAdd(x, true)
}
