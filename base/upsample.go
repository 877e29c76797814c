package base

import (
	"log"

	"github.com/sugarme/gotch/nn"
	ts "github.com/sugarme/gotch/tensor"
)

// ResizeNearest resizes the spatial dims of x (shape BxCx[spatial]) to
// `size` using nearest-neighbor interpolation. len(size) picks the
// 1, 2 or 3-D kernel.
func ResizeNearest(x *ts.Tensor, size []int64) *ts.Tensor {
	switch len(size) {
	case 1:
		return x.MustUpsampleNearest1d(size, nil, false)
	case 2:
		return x.MustUpsampleNearest2d(size, nil, nil, false)
	case 3:
		return x.MustUpsampleNearest3d(size, nil, nil, nil, false)
	default:
		log.Fatalf("Unsupported number of spatial dimensions. Expect 1, 2 or 3. Got %v\n", len(size))
	}

	return nil
}

// Upsample doubles every spatial dim with nearest-neighbor interpolation,
// then applies a same-channel 3x3 convolution.
type Upsample struct {
	conv ts.ModuleT
}

// NewUpsample creates an Upsample module.
func NewUpsample(p *nn.Path, spatialDims, channels int64) *Upsample {
	return &Upsample{
		conv: Conv(p.Sub("post_conv"), spatialDims, channels, channels, 3, 1, 1),
	}
}

// ForwardT implements ts.ModuleT for Upsample struct.
func (u *Upsample) ForwardT(x *ts.Tensor, train bool) *ts.Tensor {
	size := x.MustSize()
	outSize := make([]int64, len(size)-2)
	for i := range outSize {
		outSize[i] = size[i+2] * 2
	}

	up := ResizeNearest(x, outSize)
	res := u.conv.ForwardT(up, train)
	up.MustDrop()

	return res
}
