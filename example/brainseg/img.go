package main

import (
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io/ioutil"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chai2010/tiff"
	"github.com/disintegration/imaging"
	"github.com/nfnt/resize"
	ts "github.com/sugarme/gotch/tensor"
	"golang.org/x/image/draw"
)

// readImage reads image from file.
func readImage(filename string) (image.Image, error) {
	ext := filepath.Ext(filename)
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	switch ext {
	case ".png", ".PNG":
		return png.Decode(f)
	case ".jpg", ".jpeg", ".JPG", ".JPEG":
		return jpeg.Decode(f)
	case ".tiff", ".tif", ".TIFF", ".TIF":
		return tiff.Decode(f)
	default:
		err = fmt.Errorf("Unsupported image format: %v\n", ext)
		return nil, err
	}
}

// resizeScan resizes an intensity image with Lanczos resampling.
func resizeScan(img image.Image, w, h int) image.Image {
	return resize.Resize(uint(w), uint(h), img, resize.Lanczos3)
}

// resizeLabel resizes a label map with nearest-neighbor sampling so class
// indexes are never interpolated into non-existing classes.
func resizeLabel(img image.Image, w, h int) image.Image {
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst
}

// augmentPair applies the same random horizontal/vertical flip to a scan
// and its label map.
func augmentPair(img, label image.Image) (image.Image, image.Image) {
	if rand.Float64() < 0.5 {
		img = imaging.FlipH(img)
		label = imaging.FlipH(label)
	}
	if rand.Float64() < 0.5 {
		img = imaging.FlipV(img)
		label = imaging.FlipV(label)
	}

	return img, label
}

// savePNG writes an image to a .png file, creating parent directories.
func savePNG(img image.Image, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return png.Encode(f, img)
}

// rgb2GrayScale converts a RGB (3xHxW) tensor to grayscale (HxW).
// (0.2989 * r + 0.587 * g + 0.114 * b)
func rgb2GrayScale(x *ts.Tensor) (*ts.Tensor, error) {
	size := x.MustSize()
	if len(size) < 3 {
		err := fmt.Errorf("Expect at least 3D tensor. Got %v dimensions.\n", len(size))
		return nil, err
	}

	chanSize := size[len(size)-3]
	if chanSize != 3 {
		err := fmt.Errorf("Expect image of 3 channels for RGB. Got %v .\n", chanSize)
		return nil, err
	}

	channels := x.MustUnbind(-3, false)
	r := channels[0].MustMul1(ts.FloatScalar(0.2989), true)
	g := channels[1].MustMul1(ts.FloatScalar(0.587), true)
	b := channels[2].MustMul1(ts.FloatScalar(0.114), true)

	rg := r.MustAdd(g, true)
	g.MustDrop()
	gray := rg.MustAdd(b, true)
	b.MustDrop()

	return gray, nil
}

// processImage converts raw scans (TIFF or PNG) and their label maps into
// size-normalized PNG pairs under <input>/proc/{image,label}.
func processImage() {
	start := time.Now()

	rawImgPath := fmt.Sprintf("%v/raw/image", DataPath)
	rawLabelPath := fmt.Sprintf("%v/raw/label", DataPath)
	procImgPath := fmt.Sprintf("%v/proc/image", DataPath)
	procLabelPath := fmt.Sprintf("%v/proc/label", DataPath)

	files, err := ioutil.ReadDir(rawImgPath)
	if err != nil {
		log.Fatal(err)
	}

	count := 0
	for _, f := range files {
		name := f.Name()
		ext := filepath.Ext(name)
		stem := strings.TrimSuffix(name, ext)

		img, err := readImage(fmt.Sprintf("%v/%v", rawImgPath, name))
		if err != nil {
			log.Fatal(err)
		}

		// Label maps are stored as PNG with the class index in the pixel value.
		label, err := readImage(fmt.Sprintf("%v/%v.png", rawLabelPath, stem))
		if err != nil {
			log.Fatal(err)
		}

		img = resizeScan(img, ImageSize, ImageSize)
		label = resizeLabel(label, ImageSize, ImageSize)

		if err := savePNG(img, fmt.Sprintf("%v/%v.png", procImgPath, stem)); err != nil {
			log.Fatal(err)
		}
		if err := savePNG(label, fmt.Sprintf("%v/%v.png", procLabelPath, stem)); err != nil {
			log.Fatal(err)
		}

		for i := 0; i < AugmentN; i++ {
			aimg, alabel := augmentPair(img, label)
			if err := savePNG(aimg, fmt.Sprintf("%v/%v_aug%v.png", procImgPath, stem, i)); err != nil {
				log.Fatal(err)
			}
			if err := savePNG(alabel, fmt.Sprintf("%v/%v_aug%v.png", procLabelPath, stem, i)); err != nil {
				log.Fatal(err)
			}
		}

		count++
	}

	fmt.Printf("Image processing: completed (%v pairs).\n", count)
	fmt.Printf("Duration: %.2f (min)\n", time.Since(start).Minutes())
}
