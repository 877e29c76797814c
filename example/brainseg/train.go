package main

import (
	"fmt"
	"io/ioutil"
	"log"

	"github.com/sugarme/gotch/nn"
	ts "github.com/sugarme/gotch/tensor"

	"github.com/sugarme/igen/dutil"
	"github.com/sugarme/igen/metric"
	"github.com/sugarme/igen/vae"
)

func buildModel(vs *nn.VarStore) *vae.AutoencoderKL {
	cfg := vae.DefaultConfig(int64(LabelNc))
	model, err := vae.New(vs.Root(), cfg)
	if err != nil {
		log.Fatal(err)
	}

	return model
}

func buildOptimizer(vs *nn.VarStore) *nn.Optimizer {
	var (
		opt *nn.Optimizer
		err error
	)
	switch OptStr {
	case "SGD":
		opt, err = nn.DefaultSGDConfig().Build(vs, LR)
	case "Adam":
		opt, err = nn.DefaultAdamConfig().Build(vs, LR)
	default:
		err = fmt.Errorf("Unspecified/Invalid Optimizer option: '%v'.\n", OptStr)
	}
	if err != nil {
		log.Fatal(err)
	}

	return opt
}

// stackBatch collates a loader batch into batched image and seg tensors.
func stackBatch(samples []ImageSeg) (imgTs, segTs *ts.Tensor) {
	var img, seg []ts.Tensor
	for _, s := range samples {
		img = append(img, s.image)
		seg = append(seg, s.seg)
	}

	imgTs = ts.MustStack(img, 0)
	for _, x := range img {
		x.MustDrop()
	}
	segTs = ts.MustStack(seg, 0)
	for _, x := range seg {
		x.MustDrop()
	}

	return imgTs, segTs
}

func runTrain() {
	files, err := ioutil.ReadDir(fmt.Sprintf("%v/proc/image", DataPath))
	if err != nil {
		log.Fatal(err)
	}

	var fnames []string
	for _, f := range files {
		fnames = append(fnames, f.Name())
	}

	nValid := len(fnames) / 10
	if nValid == 0 {
		nValid = 1
	}
	trainFiles := fnames[nValid:]
	validFiles := fnames[:nValid]

	vs := nn.NewVarStore(Device)
	model := buildModel(vs)
	opt := buildOptimizer(vs)

	trainDS := NewBrainSegDataset(trainFiles, int64(LabelNc))

	count := 0
	for epoch := 0; epoch < Epochs; epoch++ {
		s, err := dutil.NewBatchSampler(trainDS.Len(), BatchSize, true, true)
		if err != nil {
			log.Fatal(err)
		}
		trainDL, err := dutil.NewDataLoader(trainDS, s)
		if err != nil {
			log.Fatal(err)
		}

		for trainDL.HasNext() {
			batch, err := trainDL.Next()
			if err != nil {
				log.Fatal(err)
			}

			count++
			if count%ValidateSize == 0 {
				doValidate(model, validFiles)
			}

			imgTs, segTs := stackBatch(batch.([]ImageSeg))
			img := imgTs.MustTo(Device, true)
			seg := segTs.MustTo(Device, true)

			rec, mu, sigma := model.Forward(img, seg, true)

			recLoss := metric.L1Loss(rec, img)
			klLoss := metric.KLLoss(mu, sigma).MustMul1(ts.FloatScalar(KLWeight), true)
			loss := recLoss.MustAdd(klLoss, true)
			klLoss.MustDrop()

			opt.BackwardStep(loss)

			fmt.Printf("epoch %v\t iter %v\t loss: %.5f\n", epoch, count, loss.Float64Values()[0])

			loss.MustDrop()
			rec.MustDrop()
			mu.MustDrop()
			sigma.MustDrop()
			img.MustDrop()
			seg.MustDrop()
		}
	}

	if err := vs.Save(ModelPath); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Saved model weights to %v\n", ModelPath)
}

func doValidate(model *vae.AutoencoderKL, fnames []string) {
	validDS := NewBrainSegDataset(fnames, int64(LabelNc))
	s, err := dutil.NewBatchSampler(validDS.Len(), 1, false, false) // no shuffle
	if err != nil {
		log.Fatal(err)
	}
	validDL, err := dutil.NewDataLoader(validDS, s)
	if err != nil {
		log.Fatal(err)
	}

	var (
		psnr float64
		n    int
	)
	for validDL.HasNext() {
		batch, err := validDL.Next()
		if err != nil {
			log.Fatal(err)
		}

		imgTs, segTs := stackBatch(batch.([]ImageSeg))

		ts.NoGrad(func() {
			img := imgTs.MustTo(Device, true)
			seg := segTs.MustTo(Device, true)

			rec := model.Reconstruct(img, seg, false)
			psnr += metric.PSNR(rec, img, 1.0)
			n++

			rec.MustDrop()
			img.MustDrop()
			seg.MustDrop()
		})
	}

	fmt.Printf("validation PSNR: %.2f dB (%v images)\n", psnr/float64(n), n)
}
