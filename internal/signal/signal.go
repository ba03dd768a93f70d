// Package signal provides 1-D smoothing and differentiation for the
// noisy time series extracted from pose sequences.
package signal

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// GaussianTruncate is the kernel radius in standard deviations.
const GaussianTruncate = 4.0

// SavitzkyGolay smooths series by fitting a local polynomial of
// polyOrder over a sliding window by least squares and evaluating it at
// each sample position. Even window sizes are widened by one. Series
// shorter than the window are returned unchanged.
//
// Windows near the boundaries are shifted inward rather than shrunk, so
// the fit order is preserved across the whole series.
func SavitzkyGolay(series []float64, window, polyOrder int) []float64 {
	n := len(series)
	if window < 3 {
		window = 3
	}
	if window%2 == 0 {
		window++
	}
	if n < window {
		out := make([]float64, n)
		copy(out, series)
		return out
	}
	if polyOrder >= window {
		polyOrder = window - 1
	}

	half := window / 2
	out := make([]float64, n)
	coef := make([]float64, polyOrder+1)

	for i := 0; i < n; i++ {
		start := i - half
		if start < 0 {
			start = 0
		}
		if start+window > n {
			start = n - window
		}
		fitWindow(series[start:start+window], polyOrder, coef)
		out[i] = evalPoly(coef, float64(i-start))
	}
	return out
}

// fitWindow fits a polynomial of the given order to the window samples
// (abscissae 0..len-1) and writes the coefficients into coef.
func fitWindow(window []float64, order int, coef []float64) {
	w := len(window)
	a := mat.NewDense(w, order+1, nil)
	for r := 0; r < w; r++ {
		x := 1.0
		for c := 0; c <= order; c++ {
			a.Set(r, c, x)
			x *= float64(r)
		}
	}
	y := mat.NewVecDense(w, window)

	var qr mat.QR
	qr.Factorize(a)
	var sol mat.VecDense
	if err := qr.SolveVecTo(&sol, false, y); err != nil {
		// Singular fit: fall back to the window mean.
		mean := 0.0
		for _, v := range window {
			mean += v
		}
		mean /= float64(w)
		coef[0] = mean
		for c := 1; c <= order; c++ {
			coef[c] = 0
		}
		return
	}
	for c := 0; c <= order; c++ {
		coef[c] = sol.AtVec(c)
	}
}

func evalPoly(coef []float64, x float64) float64 {
	v := 0.0
	for i := len(coef) - 1; i >= 0; i-- {
		v = v*x + coef[i]
	}
	return v
}

// Gradient returns the first derivative of series using central
// differences, with forward/backward differences at the boundaries.
// Series with fewer than two samples yield all zeros.
func Gradient(series []float64) []float64 {
	n := len(series)
	out := make([]float64, n)
	if n < 2 {
		return out
	}
	out[0] = series[1] - series[0]
	out[n-1] = series[n-1] - series[n-2]
	for i := 1; i < n-1; i++ {
		out[i] = (series[i+1] - series[i-1]) / 2
	}
	return out
}

// GaussianKernel returns a normalized Gaussian kernel for the given
// sigma, truncated at GaussianTruncate standard deviations.
func GaussianKernel(sigma float64) []float64 {
	if sigma <= 0 {
		return []float64{1}
	}
	radius := int(math.Ceil(GaussianTruncate * sigma))
	kernel := make([]float64, 2*radius+1)
	sum := 0.0
	for i := -radius; i <= radius; i++ {
		v := math.Exp(-float64(i*i) / (2 * sigma * sigma))
		kernel[i+radius] = v
		sum += v
	}
	for i := range kernel {
		kernel[i] /= sum
	}
	return kernel
}

// GaussianSmooth convolves series with a Gaussian kernel of the given
// sigma, replicating edge values beyond the boundaries.
func GaussianSmooth(series []float64, sigma float64) []float64 {
	n := len(series)
	if n == 0 {
		return nil
	}
	kernel := GaussianKernel(sigma)
	radius := len(kernel) / 2
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		acc := 0.0
		for k := -radius; k <= radius; k++ {
			j := i + k
			if j < 0 {
				j = 0
			} else if j >= n {
				j = n - 1
			}
			acc += series[j] * kernel[k+radius]
		}
		out[i] = acc
	}
	return out
}
