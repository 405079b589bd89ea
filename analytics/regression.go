// Package analytics holds pure numeric helpers for reports built on the
// warehouse, such as cost or production trends over time.
package analytics

import (
	"github.com/montanaflynn/stats"
)

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func split(points []Point) (stats.Float64Data, stats.Float64Data) {
	xs := make(stats.Float64Data, len(points))
	ys := make(stats.Float64Data, len(points))
	for i, p := range points {
		xs[i] = p.X
		ys[i] = p.Y
	}
	return xs, ys
}

// LinearRegression fits y = slope*x + intercept by least squares. Fewer than
// two points, or no spread in x, returns zeros.
func LinearRegression(points []Point) (slope, intercept, r2 float64) {
	if len(points) < 2 {
		return 0, 0, 0
	}
	xs, ys := split(points)
	varX, err := stats.PopulationVariance(xs)
	if err != nil || varX == 0 {
		return 0, 0, 0
	}
	cov, err := stats.CovariancePopulation(xs, ys)
	if err != nil {
		return 0, 0, 0
	}
	meanX, _ := stats.Mean(xs)
	meanY, _ := stats.Mean(ys)

	slope = cov / varX
	intercept = meanY - slope*meanX
	r := Pearson(points)
	return slope, intercept, r * r
}

// Pearson is the correlation coefficient of x and y, or 0 when either has no
// spread.
func Pearson(points []Point) float64 {
	if len(points) < 2 {
		return 0
	}
	xs, ys := split(points)
	varX, _ := stats.PopulationVariance(xs)
	varY, _ := stats.PopulationVariance(ys)
	if varX == 0 || varY == 0 {
		return 0
	}
	r, err := stats.Pearson(xs, ys)
	if err != nil {
		return 0
	}
	return r
}
