package analysis

import (
	"math"
	"math/bits"
	"math/cmplx"
)

// FFT is a radix-2 transform. len(data) must be a power of two.
func FFT(data []float64) []complex128 {
	n := len(data)
	if n <= 1 {
		result := make([]complex128, n)
		for i := range data {
			result[i] = complex(data[i], 0)
		}
		return result
	}

	even := make([]float64, n/2)
	odd := make([]float64, n/2)
	for i := 0; i < n/2; i++ {
		even[i] = data[2*i]
		odd[i] = data[2*i+1]
	}

	feven := FFT(even)
	fodd := FFT(odd)

	result := make([]complex128, n)
	for k := 0; k < n/2; k++ {
		w := cmplx.Exp(complex(0, -2*math.Pi*float64(k)/float64(n)))
		result[k] = feven[k] + w*fodd[k]
		result[k+n/2] = feven[k] - w*fodd[k]
	}
	return result
}

// nextPow2 returns the smallest power of two >= n.
func nextPow2(n int) int {
	if n <= 1 {
		return 1
	}
	return 1 << bits.Len(uint(n-1))
}

// PowerSpectrum removes the mean, zero-pads to a power of two and returns
// the magnitudes of the non-negative frequency bins.
func PowerSpectrum(series []float64) []float64 {
	if len(series) == 0 {
		return nil
	}
	mean := 0.0
	for _, v := range series {
		mean += v
	}
	mean /= float64(len(series))

	padded := make([]float64, nextPow2(len(series)))
	for i, v := range series {
		padded[i] = v - mean
	}

	spec := FFT(padded)
	ps := make([]float64, len(spec)/2+1)
	for i := range ps {
		ps[i] = cmplx.Abs(spec[i%len(spec)])
	}
	return ps
}

// DominantFrequency returns the frequency in Hz of the strongest non-zero
// bin, for samples spaced sampleDt seconds apart. It returns 0 for a flat
// or too short series.
func DominantFrequency(series []float64, sampleDt float64) float64 {
	if len(series) < 4 || sampleDt <= 0 {
		return 0
	}
	ps := PowerSpectrum(series)
	n := nextPow2(len(series))

	best, bestMag := 0, 1e-12
	for i := 1; i < len(ps); i++ {
		if ps[i] > bestMag {
			best, bestMag = i, ps[i]
		}
	}
	return float64(best) / (float64(n) * sampleDt)
}

// SettleTime returns the index of the first sample after which the series
// stays within tol of its final value, or -1 when it never settles before
// the end.
func SettleTime(series []float64, tol float64) int {
	if len(series) == 0 {
		return -1
	}
	final := series[len(series)-1]
	settled := -1
	for i, v := range series {
		if math.Abs(v-final) > tol {
			settled = -1
			continue
		}
		if settled < 0 {
			settled = i
		}
	}
	if settled == len(series)-1 && len(series) > 1 {
		return -1
	}
	return settled
}
