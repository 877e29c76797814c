package base

import (
	"log"

	"github.com/sugarme/gotch/nn"
	ts "github.com/sugarme/gotch/tensor"
)

// Conv creates a convolution module for 1, 2 or 3 spatial dimensions.
// Kernel size, padding and stride apply uniformly to every spatial dim.
func Conv(p *nn.Path, spatialDims, cIn, cOut, ksize, padding, stride int64) ts.ModuleT {
	switch spatialDims {
	case 1:
		config := nn.DefaultConv1DConfig()
		config.Stride = []int64{stride}
		config.Padding = []int64{padding}
		return nn.NewConv1D(p, cIn, cOut, ksize, config)
	case 2:
		config := nn.DefaultConv2DConfig()
		config.Stride = []int64{stride, stride}
		config.Padding = []int64{padding, padding}
		return nn.NewConv2D(p, cIn, cOut, ksize, config)
	case 3:
		// No DefaultConv3DConfig in gotch; mirror the 1D/2D defaults.
		config := &nn.Conv3DConfig{
			Stride:   []int64{stride, stride, stride},
			Padding:  []int64{padding, padding, padding},
			Dilation: []int64{1, 1, 1},
			Groups:   1,
			Bias:     true,
			WsInit:   nn.NewKaimingUniformInit(),
			BsInit:   nn.NewConstInit(0.0),
		}
		return nn.NewConv3D(p, cIn, cOut, ksize, config)
	default:
		log.Fatalf("Unsupported number of spatial dimensions. Expect 1, 2 or 3. Got %v\n", spatialDims)
	}

	return nil
}

// Silu computes x * sigmoid(x).
func Silu(x *ts.Tensor) *ts.Tensor {
	sig := x.MustSigmoid(false)
	res := x.MustMul(sig, false)
	sig.MustDrop()

	return res
}
