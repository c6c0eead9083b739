package services

import (
	"fmt"
	"math"
	"slices"
	"time"

	"gonum.org/v1/gonum/stat"

	"sales-dashboard/internal/models"
)

// ComputationError wraps an unexpected failure while fitting a trend.
type ComputationError struct {
	Product string
	Err     error
}

func (e *ComputationError) Error() string {
	return fmt.Sprintf("trend fit for %s failed: %v", e.Product, e.Err)
}

func (e *ComputationError) Unwrap() error {
	return e.Err
}

// MonthlyUnits sums units sold per calendar month, ordered by date.
func MonthlyUnits(records []models.SalesRecord) []models.TrendPoint {
	totals := make(map[time.Time]float64)
	for _, r := range records {
		totals[r.Date] += r.UnitsSold
	}

	points := make([]models.TrendPoint, 0, len(totals))
	for date, units := range totals {
		points = append(points, models.TrendPoint{Date: date, Actual: models.Metric(units), Fitted: models.Metric(math.NaN())})
	}
	slices.SortFunc(points, func(a, b models.TrendPoint) int {
		return a.Date.Compare(b.Date)
	})
	return points
}

// FitTrend fits units sold per month against the month index 0..n-1 with
// ordinary least squares. It never fails: empty input, a single month, or a
// numeric failure are returned as placeholder results.
func FitTrend(product string, records []models.SalesRecord) models.TrendResult {
	if len(records) == 0 {
		return placeholder(product, models.TrendNoData, fmt.Sprintf("no data for product %s", product))
	}

	points := MonthlyUnits(records)
	if len(points) < 2 {
		return placeholder(product, models.TrendInsufficientData,
			fmt.Sprintf("insufficient data to fit a trend for product %s", product))
	}

	slope, intercept, err := fitLine(points)
	if err != nil {
		cerr := &ComputationError{Product: product, Err: err}
		return placeholder(product, models.TrendComputationError, cerr.Error())
	}

	for i := range points {
		points[i].Fitted = models.Metric(intercept + slope*float64(i))
	}

	return models.TrendResult{
		Product:   product,
		Kind:      models.TrendOK,
		Points:    points,
		Slope:     models.Metric(slope),
		Intercept: models.Metric(intercept),
	}
}

func fitLine(points []models.TrendPoint) (slope, intercept float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}
	}()

	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	for i, p := range points {
		xs[i] = float64(i)
		ys[i] = p.Actual.Float()
	}

	intercept, slope = stat.LinearRegression(xs, ys, nil, false)
	if math.IsNaN(slope) || math.IsInf(slope, 0) || math.IsNaN(intercept) || math.IsInf(intercept, 0) {
		return 0, 0, fmt.Errorf("non-finite coefficients (slope %v, intercept %v)", slope, intercept)
	}
	return slope, intercept, nil
}

func placeholder(product string, kind models.TrendKind, message string) models.TrendResult {
	return models.TrendResult{
		Product:   product,
		Kind:      kind,
		Message:   message,
		Slope:     models.Metric(math.NaN()),
		Intercept: models.Metric(math.NaN()),
	}
}
