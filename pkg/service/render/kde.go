package render

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot/plotter"
)

// silvermanBandwidth returns the rule-of-thumb bandwidth 1.06*sd*n^(-1/5)
// for a gaussian kernel over xs. Identical samples get a nominal positive
// width so the estimate stays finite.
func silvermanBandwidth(xs []float64) float64 {
	sd := stat.StdDev(xs, nil)
	bw := 1.06 * sd * math.Pow(float64(len(xs)), -1.0/5.0)
	if bw <= 0 || math.IsNaN(bw) {
		bw = math.Max(math.Abs(stat.Mean(xs, nil)), 1e-9) * 0.05
	}
	return bw
}

// kdeCurve evaluates a gaussian kernel density estimate of xs on a regular
// grid spanning the sample range padded by three bandwidths.
func kdeCurve(xs []float64, points int) plotter.XYs {
	if len(xs) == 0 || points < 2 {
		return nil
	}
	bw := silvermanBandwidth(xs)
	lo := floats.Min(xs) - 3*bw
	hi := floats.Max(xs) + 3*bw
	step := (hi - lo) / float64(points-1)

	norm := float64(len(xs)) * bw * math.Sqrt(2*math.Pi)
	curve := make(plotter.XYs, points)
	for i := range curve {
		x := lo + float64(i)*step
		var sum float64
		for _, sample := range xs {
			z := (x - sample) / bw
			sum += math.Exp(-0.5 * z * z)
		}
		curve[i] = plotter.XY{X: x, Y: sum / norm}
	}
	return curve
}

func curvePeak(curve plotter.XYs) float64 {
	var peak float64
	for _, pt := range curve {
		if pt.Y > peak {
			peak = pt.Y
		}
	}
	return peak
}
