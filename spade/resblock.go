package spade

import (
	"github.com/sugarme/gotch/nn"
	ts "github.com/sugarme/gotch/tensor"

	"github.com/sugarme/igen/base"
)

// ResBlock is a residual block of two (SPADE norm -> SiLU -> 3x3 conv)
// stages with a shortcut from input to output. When input and output
// widths differ the shortcut is a 1x1 projection, otherwise the input is
// added back directly.
type ResBlock struct {
	norm1       *Norm
	conv1       ts.ModuleT
	norm2       *Norm
	conv2       ts.ModuleT
	ninShortcut ts.ModuleT // nil when cIn == cOut
}

// NewResBlock creates a SPADE residual block.
// outChannels of zero falls back to inChannels.
func NewResBlock(p *nn.Path, spatialDims, inChannels, normNumGroups int64, normEps float64, outChannels, labelNc, hiddenNc int64) *ResBlock {
	cOut := outChannels
	if cOut == 0 {
		cOut = inChannels
	}

	b := &ResBlock{
		norm1: NewNorm(p.Sub("norm1"), spatialDims, labelNc, inChannels, hiddenNc, 3, normNumGroups, normEps),
		conv1: base.Conv(p.Sub("conv1"), spatialDims, inChannels, cOut, 3, 1, 1),
		norm2: NewNorm(p.Sub("norm2"), spatialDims, labelNc, cOut, hiddenNc, 3, normNumGroups, normEps),
		conv2: base.Conv(p.Sub("conv2"), spatialDims, cOut, cOut, 3, 1, 1),
	}

	if inChannels != cOut {
		b.ninShortcut = base.Conv(p.Sub("nin_shortcut"), spatialDims, inChannels, cOut, 1, 0, 1)
	}

	return b
}

// ForwardCond forwards feature map x conditioned on segmentation map seg.
func (b *ResBlock) ForwardCond(x, seg *ts.Tensor, train bool) *ts.Tensor {
	n1 := b.norm1.ForwardCond(x, seg, train)
	a1 := base.Silu(n1)
	n1.MustDrop()
	h := b.conv1.ForwardT(a1, train)
	a1.MustDrop()

	n2 := b.norm2.ForwardCond(h, seg, train)
	h.MustDrop()
	a2 := base.Silu(n2)
	n2.MustDrop()
	h = b.conv2.ForwardT(a2, train)
	a2.MustDrop()

	if b.ninShortcut != nil {
		sc := b.ninShortcut.ForwardT(x, train)
		res := sc.MustAdd(h, true)
		h.MustDrop()
		return res
	}

	return h.MustAdd(x, true)
}
