package vae

import (
	"fmt"

	"github.com/sugarme/gotch"
	"github.com/sugarme/gotch/nn"
	ts "github.com/sugarme/gotch/tensor"

	"github.com/sugarme/igen/base"
	"github.com/sugarme/igen/encoder"
)

// Config holds the construction parameters of an AutoencoderKL.
type Config struct {
	SpatialDims             int64   // number of spatial dimensions (1, 2 or 3)
	LabelNc                 int64   // semantic channels of the segmentation map
	InChannels              int64   // image input channels
	OutChannels             int64   // image output channels
	NumResBlocks            []int64 // residual blocks per level; a single entry broadcasts
	Channels                []int64 // channel width per resolution level
	AttentionLevels         []bool  // levels carrying spatial attention
	LatentChannels          int64
	NormNumGroups           int64
	NormEps                 float64
	WithEncoderNonlocalAttn bool
	WithDecoderNonlocalAttn bool
	SPADEHiddenNc           int64 // hidden width of the SPADE conv trunk
}

// DefaultConfig returns the reference configuration for 2D images with
// labelNc semantic channels.
func DefaultConfig(labelNc int64) *Config {
	return &Config{
		SpatialDims:             2,
		LabelNc:                 labelNc,
		InChannels:              1,
		OutChannels:             1,
		NumResBlocks:            []int64{2, 2, 2, 2},
		Channels:                []int64{32, 64, 64, 64},
		AttentionLevels:         []bool{false, false, true, true},
		LatentChannels:          3,
		NormNumGroups:           32,
		NormEps:                 1e-6,
		WithEncoderNonlocalAttn: true,
		WithDecoderNonlocalAttn: true,
		SPADEHiddenNc:           128,
	}
}

// AutoencoderKL is an autoencoder with a KL-regularized latent space and
// SPADE semantic conditioning of the decoder.
// Ref. Rombach et al.: https://arxiv.org/abs/2112.10752
// Ref. Pinaya et al.: https://arxiv.org/abs/2209.07162
// Ref. Park et al.:   https://github.com/NVlabs/SPADE
type AutoencoderKL struct {
	LatentChannels int64

	encoder           *encoder.Encoder
	decoder           *Decoder
	quantConvMu       ts.ModuleT
	quantConvLogSigma ts.ModuleT
	postQuantConv     ts.ModuleT
}

// New creates an AutoencoderKL from config.
// It returns an error when a channel width is not divisible by
// NormNumGroups or when the per-level schedules disagree in length.
func New(p *nn.Path, cfg *Config) (*AutoencoderKL, error) {
	for _, c := range cfg.Channels {
		if c%cfg.NormNumGroups != 0 {
			return nil, fmt.Errorf("AutoencoderKL expects all channels being multiple of norm_num_groups. Got channels %v, norm_num_groups %v", cfg.Channels, cfg.NormNumGroups)
		}
	}

	if len(cfg.Channels) != len(cfg.AttentionLevels) {
		return nil, fmt.Errorf("AutoencoderKL expects channels being same size of attention_levels. Got %v and %v", len(cfg.Channels), len(cfg.AttentionLevels))
	}

	numResBlocks := cfg.NumResBlocks
	switch {
	case len(numResBlocks) == 1:
		n := numResBlocks[0]
		numResBlocks = make([]int64, len(cfg.Channels))
		for i := range numResBlocks {
			numResBlocks[i] = n
		}
	case len(numResBlocks) != len(cfg.Channels):
		return nil, fmt.Errorf("num_res_blocks should be a single count or one count per level. Got %v counts for %v levels", len(numResBlocks), len(cfg.Channels))
	}

	enc := encoder.New(p.Sub("encoder"), &encoder.Config{
		SpatialDims:      cfg.SpatialDims,
		InChannels:       cfg.InChannels,
		Channels:         cfg.Channels,
		OutChannels:      cfg.LatentChannels,
		NumResBlocks:     numResBlocks,
		NormNumGroups:    cfg.NormNumGroups,
		NormEps:          cfg.NormEps,
		AttentionLevels:  cfg.AttentionLevels,
		WithNonlocalAttn: cfg.WithEncoderNonlocalAttn,
	})

	dec := NewDecoder(p.Sub("decoder"), &DecoderConfig{
		SpatialDims:      cfg.SpatialDims,
		Channels:         cfg.Channels,
		InChannels:       cfg.LatentChannels,
		OutChannels:      cfg.OutChannels,
		NumResBlocks:     numResBlocks,
		NormNumGroups:    cfg.NormNumGroups,
		NormEps:          cfg.NormEps,
		AttentionLevels:  cfg.AttentionLevels,
		LabelNc:          cfg.LabelNc,
		WithNonlocalAttn: cfg.WithDecoderNonlocalAttn,
		SPADEHiddenNc:    cfg.SPADEHiddenNc,
	})

	return &AutoencoderKL{
		LatentChannels:    cfg.LatentChannels,
		encoder:           enc,
		decoder:           dec,
		quantConvMu:       base.Conv(p.Sub("quant_conv_mu"), cfg.SpatialDims, cfg.LatentChannels, cfg.LatentChannels, 1, 0, 1),
		quantConvLogSigma: base.Conv(p.Sub("quant_conv_log_sigma"), cfg.SpatialDims, cfg.LatentChannels, cfg.LatentChannels, 1, 0, 1),
		postQuantConv:     base.Conv(p.Sub("post_quant_conv"), cfg.SpatialDims, cfg.LatentChannels, cfg.LatentChannels, 1, 0, 1),
	}, nil
}

// Encode forwards an image BxCx[spatial] through the encoder and returns
// the latent mean and standard deviation, each
// Bx[LatentChannels]x[latent spatial]. The raw log-variance is clamped to
// [-30, 20] so the exponential stays in numerical range.
func (m *AutoencoderKL) Encode(x *ts.Tensor, train bool) (mu, sigma *ts.Tensor) {
	h := m.encoder.ForwardT(x, train)

	mu = m.quantConvMu.ForwardT(h, train)
	logVar := m.quantConvLogSigma.ForwardT(h, train)
	h.MustDrop()

	sigma = logVar.
		MustClip(ts.FloatScalar(-30.0), ts.FloatScalar(20.0), true).
		MustDiv1(ts.FloatScalar(2.0), true).
		MustExp(true)

	return mu, sigma
}

// Sample draws a latent sample via the reparameterization trick:
// mu + eps*sigma with eps standard-normal noise, so the result stays
// differentiable with respect to mu and sigma.
func (m *AutoencoderKL) Sample(mu, sigma *ts.Tensor) *ts.Tensor {
	eps := ts.MustRandn(sigma.MustSize(), gotch.Float, sigma.MustDevice())
	return eps.MustMul(sigma, true).MustAdd(mu, true)
}

// Decode maps a latent sample back to image space, conditioned on
// segmentation map seg.
func (m *AutoencoderKL) Decode(z, seg *ts.Tensor, train bool) *ts.Tensor {
	h := m.postQuantConv.ForwardT(z, train)
	dec := m.decoder.ForwardCond(h, seg, train)
	h.MustDrop()

	return dec
}

// Reconstruct encodes and decodes an image deterministically, using the
// latent mean and bypassing sampling.
func (m *AutoencoderKL) Reconstruct(x, seg *ts.Tensor, train bool) *ts.Tensor {
	mu, sigma := m.Encode(x, train)
	sigma.MustDrop()

	rec := m.Decode(mu, seg, train)
	mu.MustDrop()

	return rec
}

// Forward runs the full stochastic pass: encode, sample, decode. It
// returns the reconstruction together with the latent mean and standard
// deviation for downstream loss computation.
func (m *AutoencoderKL) Forward(x, seg *ts.Tensor, train bool) (rec, mu, sigma *ts.Tensor) {
	mu, sigma = m.Encode(x, train)
	z := m.Sample(mu, sigma)
	rec = m.Decode(z, seg, train)
	z.MustDrop()

	return rec, mu, sigma
}

// EncodeStage2Inputs encodes and samples, returning the latent sample
// for use as input of a second-stage generative model.
func (m *AutoencoderKL) EncodeStage2Inputs(x *ts.Tensor, train bool) *ts.Tensor {
	mu, sigma := m.Encode(x, train)
	z := m.Sample(mu, sigma)
	mu.MustDrop()
	sigma.MustDrop()

	return z
}

// DecodeStage2Outputs decodes latents produced by a second-stage model.
func (m *AutoencoderKL) DecodeStage2Outputs(z, seg *ts.Tensor, train bool) *ts.Tensor {
	return m.Decode(z, seg, train)
}
