package services

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"airbnb-analytics/models"
)

// spearman returns the Spearman rank correlation of x and y and its
// two-sided p-value under the t approximation with n-2 degrees of freedom.
// Constant input yields NaN for both.
func spearman(x, y []float64) (float64, float64) {
	rho := stat.Correlation(averageRanks(x), averageRanks(y), nil)
	if math.IsNaN(rho) {
		return math.NaN(), math.NaN()
	}
	if rho >= 1 || rho <= -1 {
		return rho, 0
	}

	df := float64(len(x) - 2)
	t := rho * math.Sqrt(df/((1-rho)*(1+rho)))
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	return rho, 2 * dist.Survival(math.Abs(t))
}

// averageRanks assigns 1-based ranks, giving tied values the mean of the
// ranks they span.
func averageRanks(values []float64) []float64 {
	idx := make([]int, len(values))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return values[idx[a]] < values[idx[b]] })

	ranks := make([]float64, len(values))
	for i := 0; i < len(idx); {
		j := i + 1
		for j < len(idx) && values[idx[j]] == values[idx[i]] {
			j++
		}
		avg := float64(i+j+1) / 2
		for k := i; k < j; k++ {
			ranks[idx[k]] = avg
		}
		i = j
	}
	return ranks
}

// Correlation computes the rank correlation between price and satisfaction.
// At least three points are needed for a p-value.
func Correlation(points []models.PricePoint) (models.Correlation, error) {
	if len(points) < 3 {
		return models.Correlation{}, &EmptyInputError{Reason: "fewer than 3 price/satisfaction points"}
	}

	prices := make([]float64, len(points))
	ratings := make([]float64, len(points))
	for i, p := range points {
		prices[i] = p.Price
		ratings[i] = p.Satisfaction
	}

	rho, p := spearman(prices, ratings)
	return models.Correlation{Coefficient: rho, PValue: p, Samples: len(points)}, nil
}
