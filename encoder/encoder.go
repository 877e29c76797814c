package encoder

import (
	"fmt"

	"github.com/sugarme/gotch/nn"
	ts "github.com/sugarme/gotch/tensor"

	"github.com/sugarme/igen/base"
)

// Config holds the construction parameters of an Encoder.
// Schedule validation is the caller's responsibility (see vae.New).
type Config struct {
	SpatialDims      int64
	InChannels       int64
	Channels         []int64
	OutChannels      int64
	NumResBlocks     []int64
	NormNumGroups    int64
	NormEps          float64
	AttentionLevels  []bool
	WithNonlocalAttn bool
}

// Encoder compresses an image tensor BxCx[spatial] into a latent feature
// map Bx[OutChannels]x[spatial / 2^(levels-1)]: an initial convolution,
// per-level residual blocks with optional spatial attention, a stride-2
// downsampling convolution between levels, an optional non-local stage at
// the bottleneck and a final group norm + convolution.
type Encoder struct {
	blocks []ts.ModuleT
}

// New creates an Encoder from config.
func New(p *nn.Path, cfg *Config) *Encoder {
	bp := p.Sub("blocks")
	var blocks []ts.ModuleT

	sub := func() *nn.Path {
		return bp.Sub(fmt.Sprint(len(blocks)))
	}

	// Initial convolution
	blocks = append(blocks, base.Conv(sub(), cfg.SpatialDims, cfg.InChannels, cfg.Channels[0], 3, 1, 1))

	// Residual and downsampling blocks
	blockInCh := cfg.Channels[0]
	blockOutCh := cfg.Channels[0]
	for i := range cfg.Channels {
		blockInCh = blockOutCh
		blockOutCh = cfg.Channels[i]
		isFinalBlock := i == len(cfg.Channels)-1

		for n := int64(0); n < cfg.NumResBlocks[i]; n++ {
			blocks = append(blocks, NewResBlock(sub(), cfg.SpatialDims, blockInCh, cfg.NormNumGroups, cfg.NormEps, blockOutCh))
			blockInCh = blockOutCh

			if cfg.AttentionLevels[i] {
				blocks = append(blocks, base.NewSpatialAttention(sub(), cfg.SpatialDims, blockInCh, cfg.NormNumGroups, cfg.NormEps))
			}
		}

		if !isFinalBlock {
			blocks = append(blocks, base.Conv(sub(), cfg.SpatialDims, blockInCh, blockInCh, 3, 1, 2))
		}
	}

	// Non-local attention at the bottleneck resolution
	if cfg.WithNonlocalAttn {
		blocks = append(blocks, NewResBlock(sub(), cfg.SpatialDims, blockOutCh, cfg.NormNumGroups, cfg.NormEps, blockOutCh))
		blocks = append(blocks, base.NewSpatialAttention(sub(), cfg.SpatialDims, blockOutCh, cfg.NormNumGroups, cfg.NormEps))
		blocks = append(blocks, NewResBlock(sub(), cfg.SpatialDims, blockOutCh, cfg.NormNumGroups, cfg.NormEps, blockOutCh))
	}

	// Final normalization and projection to latent channels
	out := nn.SeqT()
	out.Add(base.NewGroupNorm(sub().Sub("norm_out"), cfg.NormNumGroups, blockOutCh, cfg.NormEps))
	out.Add(base.Conv(sub().Sub("conv_out"), cfg.SpatialDims, blockOutCh, cfg.OutChannels, 3, 1, 1))
	blocks = append(blocks, out)

	return &Encoder{blocks: blocks}
}

// ForwardT implements ts.ModuleT for Encoder struct.
func (e *Encoder) ForwardT(x *ts.Tensor, train bool) *ts.Tensor {
	h := e.blocks[0].ForwardT(x, train)
	for _, blk := range e.blocks[1:] {
		next := blk.ForwardT(h, train)
		h.MustDrop()
		h = next
	}

	return h
}
