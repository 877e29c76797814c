package spade

import (
	"github.com/sugarme/gotch/nn"
	ts "github.com/sugarme/gotch/tensor"

	"github.com/sugarme/igen/base"
)

// Norm is a spatially-adaptive (SPADE) normalization layer.
// Ref. Park et. al (2019): https://github.com/NVlabs/SPADE
//
// The feature map is normalized with a parameter-free group norm, then
// modulated per pixel with scale and shift maps computed from the
// segmentation map: out = normalized*(1+gamma) + beta. The segmentation
// map is resized (nearest) to the feature resolution on every call, so
// callers never resize themselves.
type Norm struct {
	numGroups int64
	eps       float64
	mlpShared *nn.SequentialT
	mlpGamma  ts.ModuleT
	mlpBeta   ts.ModuleT
}

// NewNorm creates a SPADE normalization layer.
//
// labelNc:  number of semantic channels of the segmentation map.
// normNc:   number of channels of the normalized feature map.
// hiddenNc: width of the shared conv trunk computing gamma/beta.
func NewNorm(p *nn.Path, spatialDims, labelNc, normNc, hiddenNc, ksize, normNumGroups int64, normEps float64) *Norm {
	padding := ksize / 2

	shared := nn.SeqT()
	shared.Add(base.Conv(p.Sub("mlp_shared"), spatialDims, labelNc, hiddenNc, ksize, padding, 1))
	shared.AddFn(nn.NewFunc(func(xs *ts.Tensor) *ts.Tensor {
		return xs.MustRelu(false)
	}))

	return &Norm{
		numGroups: normNumGroups,
		eps:       normEps,
		mlpShared: shared,
		mlpGamma:  base.Conv(p.Sub("mlp_gamma"), spatialDims, hiddenNc, normNc, ksize, padding, 1),
		mlpBeta:   base.Conv(p.Sub("mlp_beta"), spatialDims, hiddenNc, normNc, ksize, padding, 1),
	}
}

// ForwardCond normalizes x conditioned on segmentation map seg.
// seg may be at any spatial resolution.
func (n *Norm) ForwardCond(x, seg *ts.Tensor, train bool) *ts.Tensor {
	size := x.MustSize()

	// Parameter-free normalization: undefined weight/bias tensors.
	normalized := ts.MustGroupNorm(x, n.numGroups, ts.NewTensor(), ts.NewTensor(), n.eps, false)

	segResized := base.ResizeNearest(seg, size[2:])
	actv := n.mlpShared.ForwardT(segResized, train)
	segResized.MustDrop()

	gamma := n.mlpGamma.ForwardT(actv, train)
	beta := n.mlpBeta.ForwardT(actv, train)
	actv.MustDrop()

	scale := gamma.MustAdd1(ts.FloatScalar(1.0), true)
	out := normalized.MustMul(scale, true).MustAdd(beta, true)
	scale.MustDrop()
	beta.MustDrop()

	return out
}
