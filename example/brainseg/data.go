package main

import (
	"fmt"
	"reflect"

	ts "github.com/sugarme/gotch/tensor"
	"github.com/sugarme/gotch/vision"

	"github.com/sugarme/gotch"
)

// BrainSegDataset pairs grayscale brain scans with one-hot semantic label
// maps from <input>/proc/{image,label}.
type BrainSegDataset struct {
	fnames  []string
	labelNc int64
}

func NewBrainSegDataset(fnames []string, labelNc int64) *BrainSegDataset {
	return &BrainSegDataset{fnames: fnames, labelNc: labelNc}
}

func (ds *BrainSegDataset) Len() int {
	return len(ds.fnames)
}

// ImageSeg is one training sample: a 1xHxW intensity tensor in [0, 1]
// and its KxHxW one-hot segmentation tensor.
type ImageSeg struct {
	image ts.Tensor
	seg   ts.Tensor
}

// Item implements dutil.Dataset interface.
func (ds *BrainSegDataset) Item(idx int) (interface{}, error) {
	fname := ds.fnames[idx]
	imgPath := fmt.Sprintf("%v/proc/image/%v", DataPath, fname)
	labelPath := fmt.Sprintf("%v/proc/label/%v", DataPath, fname)

	imgTs, err := vision.Load(imgPath)
	if err != nil {
		return nil, err
	}
	grayImg, err := rgb2GrayScale(imgTs)
	if err != nil {
		return nil, err
	}
	imgTs.MustDrop()
	img := grayImg.
		MustDiv1(ts.FloatScalar(255.0), true).
		MustUnsqueeze(0, true) // [1 H W]

	labelTs, err := vision.Load(labelPath)
	if err != nil {
		return nil, err
	}
	seg, err := oneHotSeg(labelTs, ds.labelNc)
	if err != nil {
		return nil, err
	}
	labelTs.MustDrop()

	return ImageSeg{
		image: *img,
		seg:   *seg,
	}, nil
}

func (ds *BrainSegDataset) DType() reflect.Type {
	return reflect.TypeOf(ds.fnames)
}

// oneHotSeg converts a loaded label image (3xHxW, class index stored in
// the pixel value) into a one-hot KxHxW float tensor. The class index is
// read from the first channel; luminance weighting would shift it.
func oneHotSeg(label *ts.Tensor, labelNc int64) (*ts.Tensor, error) {
	idx := label.
		MustSelect(0, 0, false).
		MustTotype(gotch.Int64, true) // [H W]
	hot := idx.MustOneHot(labelNc, true) // [H W K]
	seg := hot.
		MustTotype(gotch.Float, true).
		MustPermute([]int64{2, 0, 1}, true) // [K H W]

	return seg, nil
}
