package metric_test

import (
	"math"
	"testing"

	"github.com/sugarme/gotch"
	ts "github.com/sugarme/gotch/tensor"

	"github.com/sugarme/igen/metric"
)

func TestKLLoss(t *testing.T) {
	// Posterior equal to the prior: KL must be zero.
	mu := ts.MustZeros([]int64{1, 3, 4, 4}, gotch.Float, gotch.CPU)
	sigma := ts.MustOnes([]int64{1, 3, 4, 4}, gotch.Float, gotch.CPU)

	kl := metric.KLLoss(mu, sigma)
	got := kl.Float64Values()[0]
	if math.Abs(got) > 1e-6 {
		t.Errorf("Expected zero KL for the standard normal posterior. Got %v\n", got)
	}

	kl.MustDrop()
	mu.MustDrop()
	sigma.MustDrop()
}

func TestKLLossPositive(t *testing.T) {
	mu := ts.MustOnes([]int64{1, 3, 4, 4}, gotch.Float, gotch.CPU)
	sigma := ts.MustOnes([]int64{1, 3, 4, 4}, gotch.Float, gotch.CPU)

	// mean(1 + 1 - 0 - 1)/2 = 0.5
	kl := metric.KLLoss(mu, sigma)
	got := kl.Float64Values()[0]
	if math.Abs(got-0.5) > 1e-6 {
		t.Errorf("Expected KL of 0.5. Got %v\n", got)
	}

	kl.MustDrop()
	mu.MustDrop()
	sigma.MustDrop()
}

func TestL1Loss(t *testing.T) {
	input := ts.MustOfSlice([]float64{1.0, 2.0, 3.0})
	target := ts.MustOfSlice([]float64{2.0, 2.0, 1.0})

	loss := metric.L1Loss(input, target)
	got := loss.Float64Values()[0]
	if math.Abs(got-1.0) > 1e-6 {
		t.Errorf("Expected L1 loss of 1.0. Got %v\n", got)
	}

	loss.MustDrop()
	input.MustDrop()
	target.MustDrop()
}

func TestMSELoss(t *testing.T) {
	input := ts.MustOfSlice([]float64{1.0, 2.0, 3.0})
	target := ts.MustOfSlice([]float64{2.0, 2.0, 1.0})

	loss := metric.MSELoss(input, target)
	got := loss.Float64Values()[0]
	if math.Abs(got-5.0/3.0) > 1e-6 {
		t.Errorf("Expected MSE loss of 5/3. Got %v\n", got)
	}

	loss.MustDrop()
	input.MustDrop()
	target.MustDrop()
}

func TestPSNRIdentical(t *testing.T) {
	input := ts.MustOfSlice([]float64{0.1, 0.5, 0.9})
	target := ts.MustOfSlice([]float64{0.1, 0.5, 0.9})

	psnr := metric.PSNR(input, target, 1.0)
	if !math.IsInf(psnr, 1) {
		t.Errorf("Expected infinite PSNR for identical tensors. Got %v\n", psnr)
	}

	input.MustDrop()
	target.MustDrop()
}
