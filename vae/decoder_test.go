package vae_test

import (
	"reflect"
	"testing"

	"github.com/sugarme/gotch"
	"github.com/sugarme/gotch/nn"
	ts "github.com/sugarme/gotch/tensor"

	"github.com/sugarme/igen/vae"
)

// The decoder must walk the encoder's channel schedule in reverse:
// [32 64 64 64] decodes through widths 64, 64, 64, 32 with an upsample
// between levels, expanding an 8x8 latent back to 64x64.
func TestDecoderMirrorsChannelSchedule(t *testing.T) {
	vs := nn.NewVarStore(gotch.CPU)
	dec := vae.NewDecoder(vs.Root(), &vae.DecoderConfig{
		SpatialDims:      2,
		Channels:         []int64{32, 64, 64, 64},
		InChannels:       3,
		OutChannels:      1,
		NumResBlocks:     []int64{1, 1, 1, 1},
		NormNumGroups:    32,
		NormEps:          1e-6,
		AttentionLevels:  []bool{false, false, false, false},
		LabelNc:          2,
		WithNonlocalAttn: false,
		SPADEHiddenNc:    32,
	})

	z := ts.MustRand([]int64{1, 3, 8, 8}, gotch.Float, gotch.CPU)
	seg := ts.MustRand([]int64{1, 2, 64, 64}, gotch.Float, gotch.CPU)

	out := dec.ForwardCond(z, seg, false)
	if got := out.MustSize(); !reflect.DeepEqual(got, []int64{1, 1, 64, 64}) {
		t.Errorf("Expected decoded shape [1 1 64 64]. Got %v\n", got)
	}

	out.MustDrop()
	z.MustDrop()
	seg.MustDrop()
}

func TestDecoderNonlocalAttention(t *testing.T) {
	vs := nn.NewVarStore(gotch.CPU)
	dec := vae.NewDecoder(vs.Root(), &vae.DecoderConfig{
		SpatialDims:      2,
		Channels:         []int64{32, 64},
		InChannels:       3,
		OutChannels:      1,
		NumResBlocks:     []int64{1, 1},
		NormNumGroups:    32,
		NormEps:          1e-6,
		AttentionLevels:  []bool{false, true},
		LabelNc:          2,
		WithNonlocalAttn: true,
		SPADEHiddenNc:    32,
	})

	z := ts.MustRand([]int64{1, 3, 8, 8}, gotch.Float, gotch.CPU)
	seg := ts.MustRand([]int64{1, 2, 16, 16}, gotch.Float, gotch.CPU)

	out := dec.ForwardCond(z, seg, false)
	if got := out.MustSize(); !reflect.DeepEqual(got, []int64{1, 1, 16, 16}) {
		t.Errorf("Expected decoded shape [1 1 16 16]. Got %v\n", got)
	}

	out.MustDrop()
	z.MustDrop()
	seg.MustDrop()
}
