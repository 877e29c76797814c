package main

import (
	"flag"
	"fmt"
	"log"
	"path/filepath"

	"github.com/sugarme/gotch"
)

// flag variables
var (
	DataPath  string
	ModelPath string
	OptStr    string
	Cuda      bool
	task      string
	Device    gotch.Device
)

// hyperparameters
var (
	LabelNc      int     // number of semantic label classes
	ImageSize    int     // training image size (pixels per side)
	LR           float64 // learning rate
	KLWeight     float64 // weight of the KL term in the training loss
	BatchSize    int     // batch size
	Epochs       int     // number of training epochs
	ValidateSize int     // number of iterations that triggers running validation task
	AugmentN     int     // number of augmented copies per image pair at processing time
)

func init() {
	flag.StringVar(&DataPath, "input", "./input", "specify input data directory")
	flag.StringVar(&ModelPath, "model", "./model/spade-vae.ot", "specify full path to model weight '.ot' file.")
	flag.BoolVar(&Cuda, "cuda", false, "specify whether using CUDA or not.")
	flag.StringVar(&task, "task", "train", "specify task to run")
	flag.Float64Var(&LR, "lr", 0.0001, "specify learning rate")
	flag.Float64Var(&KLWeight, "klweight", 1e-6, "specify KL loss weight")
	flag.IntVar(&LabelNc, "labels", 4, "specify number of semantic label classes")
	flag.IntVar(&ImageSize, "size", 128, "specify training image size")
	flag.IntVar(&BatchSize, "batch", 8, "specify batch size")
	flag.IntVar(&Epochs, "epochs", 10, "specify number of training epochs")
	flag.IntVar(&ValidateSize, "validate", 50, "specify size of validation cycles.")
	flag.IntVar(&AugmentN, "augment", 0, "specify number of augmented copies per image pair")
	flag.StringVar(&OptStr, "opt", "Adam", "specify optimizer type")
}

func main() {
	flag.Parse()

	DataPath = absPath(DataPath)
	ModelPath = absPath(ModelPath)

	Device = gotch.CPU
	if Cuda {
		Device = gotch.NewCuda().CudaIfAvailable()
	}

	switch task {
	case "train":
		runTrain()
	case "sample":
		runSample()
	case "eda":
		runEDA()
	case "image":
		processImage()
	default:
		err := fmt.Errorf("Unknown 'task' name. Please specify valid 'task' flag to run.\n")
		panic(err)
	}
}

// helper to get absolute file path
func absPath(p string) string {
	fullpath, err := filepath.Abs(p)
	if err != nil {
		log.Fatal(err)
	}
	return fullpath
}
