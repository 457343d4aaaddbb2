package analysis

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// PowerSpectrum returns the magnitude of the first half of the spectrum
// of data after removing its mean. Any length is accepted.
func PowerSpectrum(data []float64) []float64 {
	if len(data) == 0 {
		return nil
	}
	var mean float64
	for _, v := range data {
		mean += v
	}
	mean /= float64(len(data))

	centered := make([]float64, len(data))
	for i, v := range data {
		centered[i] = v - mean
	}

	spectrum := fft.FFTReal(centered)
	ps := make([]float64, len(spectrum)/2)
	for i := range ps {
		ps[i] = cmplx.Abs(spectrum[i])
	}
	return ps
}

// DominantPeriod is the period of the strongest non-zero frequency in data
// sampled every dt. It fails for flat or too-short series.
func DominantPeriod(data []float64, dt float64) (float64, bool) {
	if len(data) < 4 || dt <= 0 {
		return 0, false
	}
	ps := PowerSpectrum(data)
	best, bestPower := 0, 0.0
	for k := 1; k < len(ps); k++ {
		if ps[k] > bestPower {
			best, bestPower = k, ps[k]
		}
	}
	if best == 0 || bestPower < 1e-9 {
		return 0, false
	}
	return float64(len(data)) * dt / float64(best), true
}
