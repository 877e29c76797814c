package base

import (
	"github.com/sugarme/gotch/nn"
	ts "github.com/sugarme/gotch/tensor"
)

// GroupNorm is an affine group normalization module.
// `gotch/nn` has no group-norm layer, so weight and bias are registered
// on the path the same way nn.BatchNorm registers its parameters and the
// normalization itself runs through the substrate's `group_norm` op.
type GroupNorm struct {
	NumGroups int64
	Eps       float64
	Ws        *ts.Tensor
	Bs        *ts.Tensor
}

// NewGroupNorm creates a GroupNorm module.
// numChannels must be divisible by numGroups.
func NewGroupNorm(p *nn.Path, numGroups, numChannels int64, eps float64) *GroupNorm {
	return &GroupNorm{
		NumGroups: numGroups,
		Eps:       eps,
		Ws:        p.NewVar("weight", []int64{numChannels}, nn.NewConstInit(1.0)),
		Bs:        p.NewVar("bias", []int64{numChannels}, nn.NewConstInit(0.0)),
	}
}

// Forward implements ts.Module for GroupNorm struct.
func (g *GroupNorm) Forward(x *ts.Tensor) *ts.Tensor {
	return ts.MustGroupNorm(x, g.NumGroups, g.Ws, g.Bs, g.Eps, false)
}

// ForwardT implements ts.ModuleT for GroupNorm struct.
// Group statistics do not depend on train mode.
func (g *GroupNorm) ForwardT(x *ts.Tensor, train bool) *ts.Tensor {
	return g.Forward(x)
}
