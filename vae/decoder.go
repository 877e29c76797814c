package vae

import (
	"fmt"

	"github.com/sugarme/gotch/nn"
	ts "github.com/sugarme/gotch/tensor"

	"github.com/sugarme/igen/base"
	"github.com/sugarme/igen/spade"
)

// DecoderConfig holds the construction parameters of a Decoder.
// Schedule validation is the caller's responsibility (see New).
type DecoderConfig struct {
	SpatialDims      int64
	Channels         []int64
	InChannels       int64
	OutChannels      int64
	NumResBlocks     []int64
	NormNumGroups    int64
	NormEps          float64
	AttentionLevels  []bool
	LabelNc          int64
	WithNonlocalAttn bool
	SPADEHiddenNc    int64
}

// block pairs a layer with its conditioning behavior: SPADE residual
// blocks consume the segmentation map, every other layer ignores it.
type block struct {
	res *spade.ResBlock
	mod ts.ModuleT
}

func (b block) forward(x, seg *ts.Tensor, train bool) *ts.Tensor {
	if b.res != nil {
		return b.res.ForwardCond(x, seg, train)
	}

	return b.mod.ForwardT(x, train)
}

// Decoder is a convolutional cascade upsampling a spatial latent code
// back to image space, with SPADE conditioning on a segmentation map at
// every residual block so that semantic alignment is re-imposed at each
// resolution level. The channel schedule runs in reverse of the encoder:
// from the bottleneck width out to the first level's width.
type Decoder struct {
	blocks []block
}

// NewDecoder creates a Decoder from config.
func NewDecoder(p *nn.Path, cfg *DecoderConfig) *Decoder {
	bp := p.Sub("blocks")
	var blocks []block

	sub := func() *nn.Path {
		return bp.Sub(fmt.Sprint(len(blocks)))
	}
	appendMod := func(m ts.ModuleT) {
		blocks = append(blocks, block{mod: m})
	}
	appendRes := func(cIn, cOut int64) {
		blocks = append(blocks, block{res: spade.NewResBlock(sub(), cfg.SpatialDims, cIn, cfg.NormNumGroups, cfg.NormEps, cOut, cfg.LabelNc, cfg.SPADEHiddenNc)})
	}

	reversedChannels := make([]int64, len(cfg.Channels))
	reversedAttention := make([]bool, len(cfg.AttentionLevels))
	reversedNumResBlocks := make([]int64, len(cfg.NumResBlocks))
	for i := range cfg.Channels {
		j := len(cfg.Channels) - 1 - i
		reversedChannels[i] = cfg.Channels[j]
		reversedAttention[i] = cfg.AttentionLevels[j]
		reversedNumResBlocks[i] = cfg.NumResBlocks[j]
	}

	// Initial convolution from the latent width to the bottleneck width
	appendMod(base.Conv(sub(), cfg.SpatialDims, cfg.InChannels, reversedChannels[0], 3, 1, 1))

	// Non-local attention at the bottleneck resolution
	if cfg.WithNonlocalAttn {
		appendRes(reversedChannels[0], reversedChannels[0])
		appendMod(base.NewSpatialAttention(sub(), cfg.SpatialDims, reversedChannels[0], cfg.NormNumGroups, cfg.NormEps))
		appendRes(reversedChannels[0], reversedChannels[0])
	}

	// Residual and upsampling blocks
	blockInCh := reversedChannels[0]
	blockOutCh := reversedChannels[0]
	for i := range reversedChannels {
		blockInCh = blockOutCh
		blockOutCh = reversedChannels[i]
		isFinalBlock := i == len(cfg.Channels)-1

		for n := int64(0); n < reversedNumResBlocks[i]; n++ {
			appendRes(blockInCh, blockOutCh)
			blockInCh = blockOutCh

			if reversedAttention[i] {
				appendMod(base.NewSpatialAttention(sub(), cfg.SpatialDims, blockInCh, cfg.NormNumGroups, cfg.NormEps))
			}
		}

		if !isFinalBlock {
			appendMod(base.NewUpsample(sub(), cfg.SpatialDims, blockInCh))
		}
	}

	// Final normalization and projection to image channels
	out := nn.SeqT()
	out.Add(base.NewGroupNorm(sub().Sub("norm_out"), cfg.NormNumGroups, blockInCh, cfg.NormEps))
	out.Add(base.Conv(sub().Sub("conv_out"), cfg.SpatialDims, blockInCh, cfg.OutChannels, 3, 1, 1))
	appendMod(out)

	return &Decoder{blocks: blocks}
}

// ForwardCond decodes latent feature map z conditioned on segmentation
// map seg (at full image resolution; each SPADE block resizes it).
func (d *Decoder) ForwardCond(z, seg *ts.Tensor, train bool) *ts.Tensor {
	h := d.blocks[0].forward(z, seg, train)
	for _, blk := range d.blocks[1:] {
		next := blk.forward(h, seg, train)
		h.MustDrop()
		h = next
	}

	return h
}
