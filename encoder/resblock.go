package encoder

import (
	"github.com/sugarme/gotch/nn"
	ts "github.com/sugarme/gotch/tensor"

	"github.com/sugarme/igen/base"
)

// ResBlock is the unconditioned counterpart of spade.ResBlock used on the
// encoding path: two (group norm -> SiLU -> 3x3 conv) stages plus a
// shortcut, with a 1x1 projection when the channel width changes.
type ResBlock struct {
	norm1       *base.GroupNorm
	conv1       ts.ModuleT
	norm2       *base.GroupNorm
	conv2       ts.ModuleT
	ninShortcut ts.ModuleT // nil when cIn == cOut
}

// NewResBlock creates a residual block.
// outChannels of zero falls back to inChannels.
func NewResBlock(p *nn.Path, spatialDims, inChannels, normNumGroups int64, normEps float64, outChannels int64) *ResBlock {
	cOut := outChannels
	if cOut == 0 {
		cOut = inChannels
	}

	b := &ResBlock{
		norm1: base.NewGroupNorm(p.Sub("norm1"), normNumGroups, inChannels, normEps),
		conv1: base.Conv(p.Sub("conv1"), spatialDims, inChannels, cOut, 3, 1, 1),
		norm2: base.NewGroupNorm(p.Sub("norm2"), normNumGroups, cOut, normEps),
		conv2: base.Conv(p.Sub("conv2"), spatialDims, cOut, cOut, 3, 1, 1),
	}

	if inChannels != cOut {
		b.ninShortcut = base.Conv(p.Sub("nin_shortcut"), spatialDims, inChannels, cOut, 1, 0, 1)
	}

	return b
}

// ForwardT implements ts.ModuleT for ResBlock struct.
func (b *ResBlock) ForwardT(x *ts.Tensor, train bool) *ts.Tensor {
	n1 := b.norm1.Forward(x)
	a1 := base.Silu(n1)
	n1.MustDrop()
	h := b.conv1.ForwardT(a1, train)
	a1.MustDrop()

	n2 := b.norm2.Forward(h)
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
