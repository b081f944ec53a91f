package analysis

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Aberration returns xs[j] - xs[0].
func Aberration(xs []float64) []float64 {
	out := make([]float64, len(xs))
	if len(xs) == 0 {
		return out
	}
	copy(out, xs)
	floats.AddConst(-xs[0], out)
	return out
}

// Stats summarises an aberration profile.
type Stats struct {
	Mean         float64
	StdDev       float64
	Min          float64
	Max          float64
	PeakToValley float64
}

func Summarize(profile []float64) Stats {
	if len(profile) == 0 {
		return Stats{}
	}
	mean, std := stat.MeanStdDev(profile, nil)
	if len(profile) == 1 {
		std = 0
	}
	lo, hi := floats.Min(profile), floats.Max(profile)
	return Stats{Mean: mean, StdDev: std, Min: lo, Max: hi, PeakToValley: hi - lo}
}

// Spectrum returns the magnitudes of the non-negative frequency bins of the
// mean-removed profile, len(profile)/2+1 values.
func Spectrum(profile []float64) []float64 {
	if len(profile) == 0 {
		return nil
	}
	centred := make([]float64, len(profile))
	copy(centred, profile)
	floats.AddConst(-stat.Mean(profile, nil), centred)

	bins := fft.FFTReal(centred)
	out := make([]float64, len(profile)/2+1)
	for i := range out {
		out[i] = cmplx.Abs(bins[i])
	}
	return out
}

// DominantBin returns the index of the strongest non-DC bin, or 0 when the
// spectrum is flat.
func DominantBin(spectrum []float64) int {
	if len(spectrum) < 2 {
		return 0
	}
	best := 1
	for i := 2; i < len(spectrum); i++ {
		if spectrum[i] > spectrum[best] {
			best = i
		}
	}
	if spectrum[best] == 0 {
		return 0
	}
	return best
}

// Parabola is x = A + B·y + C·y².
type Parabola struct {
	A, B, C   float64
	Curvature float64 // d²x/dy²
	// FocalLength is 1/(4C); +Inf for a flat front.
	FocalLength float64
	Residual    float64 // RMS of the fit
}

// FitCurvature fits a parabola x(y) by least squares.
func FitCurvature(ys, xs []float64) (Parabola, error) {
	n := len(ys)
	if n != len(xs) {
		return Parabola{}, fmt.Errorf("curvature fit: %d ys but %d xs", n, len(xs))
	}
	if n < 3 {
		return Parabola{}, fmt.Errorf("curvature fit needs at least 3 samples, got %d", n)
	}

	design := mat.NewDense(n, 3, nil)
	for i, y := range ys {
		design.Set(i, 0, 1)
		design.Set(i, 1, y)
		design.Set(i, 2, y*y)
	}
	target := mat.NewVecDense(n, append([]float64(nil), xs...))

	var qr mat.QR
	qr.Factorize(design)
	var coef mat.VecDense
	if err := qr.SolveVecTo(&coef, false, target); err != nil {
		return Parabola{}, fmt.Errorf("curvature fit: %w", err)
	}

	p := Parabola{A: coef.AtVec(0), B: coef.AtVec(1), C: coef.AtVec(2)}
	p.Curvature = 2 * p.C
	p.FocalLength = math.Inf(1)
	if p.C != 0 {
		p.FocalLength = 1 / (4 * p.C)
	}

	var ss float64
	for i, y := range ys {
		r := xs[i] - (p.A + p.B*y + p.C*y*y)
		ss += r * r
	}
	p.Residual = math.Sqrt(ss / float64(n))
	return p, nil
}

// PhaseRate returns the least-squares slope of phase against time.
func PhaseRate(times, phases []float64) (float64, error) {
	if len(times) != len(phases) {
		return 0, fmt.Errorf("phase rate: %d times but %d phases", len(times), len(phases))
	}
	if len(times) < 2 {
		return 0, fmt.Errorf("phase rate needs at least 2 samples, got %d", len(times))
	}
	_, slope := stat.LinearRegression(times, phases, nil, false)
	return slope, nil
}
