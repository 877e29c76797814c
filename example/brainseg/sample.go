package main

import (
	"fmt"
	"io/ioutil"
	"log"
	"os"

	"github.com/sugarme/gotch"
	"github.com/sugarme/gotch/nn"
	ts "github.com/sugarme/gotch/tensor"
	"github.com/sugarme/gotch/vision"

	"github.com/sugarme/igen/vae"
)

// runSample draws random latent codes and decodes them conditioned on
// label maps from the processed dataset, writing the synthesized scans
// next to the input data.
func runSample() {
	vs := nn.NewVarStore(Device)
	model := buildModel(vs)
	if err := vs.Load(ModelPath); err != nil {
		log.Fatal(err)
	}

	files, err := ioutil.ReadDir(fmt.Sprintf("%v/proc/label", DataPath))
	if err != nil {
		log.Fatal(err)
	}

	cfg := vae.DefaultConfig(int64(LabelNc))
	// One upsampling stage fewer than resolution levels.
	latentSize := int64(ImageSize)
	for i := 0; i < len(cfg.Channels)-1; i++ {
		latentSize /= 2
	}

	if err := os.MkdirAll(fmt.Sprintf("%v/sample", DataPath), 0755); err != nil {
		log.Fatal(err)
	}

	count := 0
	for _, f := range files {
		labelPath := fmt.Sprintf("%v/proc/label/%v", DataPath, f.Name())
		labelTs, err := vision.Load(labelPath)
		if err != nil {
			log.Fatal(err)
		}
		segHW, err := oneHotSeg(labelTs, int64(LabelNc))
		if err != nil {
			log.Fatal(err)
		}
		labelTs.MustDrop()

		seg := segHW.MustUnsqueeze(0, true).MustTo(Device, true)

		ts.NoGrad(func() {
			z := ts.MustRandn([]int64{1, cfg.LatentChannels, latentSize, latentSize}, gotch.Float, Device)
			img := model.DecodeStage2Outputs(z, seg, false)
			z.MustDrop()

			scaled := img.
				MustClip(ts.FloatScalar(0.0), ts.FloatScalar(1.0), true).
				MustMul1(ts.FloatScalar(255.0), true).
				MustSqueeze1(0, true) // [1 H W]

			out := fmt.Sprintf("%v/sample/%v", DataPath, f.Name())
			if err := vision.Save(scaled, out); err != nil {
				log.Fatal(err)
			}
			scaled.MustDrop()
		})

		seg.MustDrop()
		count++
	}

	fmt.Printf("Sampling: completed (%v images).\n", count)
}
