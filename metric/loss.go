package metric

import (
	"math"

	"github.com/sugarme/gotch"
	ts "github.com/sugarme/gotch/tensor"
)

// KLLoss computes the closed-form KL divergence between the diagonal
// Gaussian posterior N(mu, sigma^2) and the standard normal prior,
// averaged over batch and latent positions:
//
//	0.5 * mean(mu^2 + sigma^2 - log(sigma^2) - 1)
func KLLoss(mu, sigma *ts.Tensor) *ts.Tensor {
	mu2 := mu.MustMul(mu, false)
	sigma2 := sigma.MustMul(sigma, false)
	logSigma2 := sigma2.MustLog(false)

	sum := mu2.
		MustAdd(sigma2, true).
		MustSub(logSigma2, true).
		MustAdd1(ts.FloatScalar(-1.0), true)
	sigma2.MustDrop()
	logSigma2.MustDrop()

	return sum.MustMean(gotch.Double, true).MustMul1(ts.FloatScalar(0.5), true)
}

// L1Loss computes the mean absolute error between input and target.
func L1Loss(input, target *ts.Tensor) *ts.Tensor {
	diff := input.MustSub(target, false)
	return diff.MustAbs(true).MustMean(gotch.Double, true)
}

// MSELoss computes the mean squared error between input and target.
func MSELoss(input, target *ts.Tensor) *ts.Tensor {
	diff := input.MustSub(target, false)
	sq := diff.MustMul(diff, false)
	diff.MustDrop()

	return sq.MustMean(gotch.Double, true)
}

// PSNR computes the peak signal-to-noise ratio (dB) of a reconstruction
// against its target, for intensities scaled to [0, maxVal].
func PSNR(input, target *ts.Tensor, maxVal float64) float64 {
	mseTs := MSELoss(input, target)
	mse := mseTs.Float64Values()[0]
	mseTs.MustDrop()

	if mse == 0 {
		return math.Inf(1)
	}

	return 20*math.Log10(maxVal) - 10*math.Log10(mse)
}
