package services

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"sales-dashboard/internal/models"
)

// Summarize computes the KPIs of one product. records must already be
// restricted to the selected branch and to that product.
//
// Divisions by zero are not guarded: a row with zero units yields an
// infinite (or NaN) price and the metric carries it through. NaN entries are
// skipped when averaging, infinities are not.
func Summarize(product string, records []models.SalesRecord) models.ProductSummary {
	n := len(records)
	prices := make([]float64, n)
	margins := make([]float64, n)
	units := make([]float64, n)
	years := make([]int, n)

	for i, r := range records {
		prices[i] = r.RevenueTotal / r.UnitsSold
		margins[i] = (r.RevenueTotal - r.CostTotal) / r.RevenueTotal * 100
		units[i] = r.UnitsSold
		years[i] = r.Year
	}

	return models.ProductSummary{
		Product:            product,
		Rows:               n,
		AveragePrice:       models.Metric(nanMean(prices)),
		PriceYoYChangePct:  models.Metric(yearOverYearPct(years, prices)),
		AverageMarginPct:   models.Metric(nanMean(margins)),
		MarginYoYChangePct: models.Metric(yearOverYearPct(years, margins)),
		TotalUnits:         models.Metric(floats.Sum(units)),
		AverageUnits:       models.Metric(nanMean(units)),
		UnitsYoYChangePct:  models.Metric(yearOverYearPct(years, units)),
	}
}

// yearOverYearPct groups values by year, averages each year, and returns the
// mean of the consecutive percentage changes. Fewer than two years gives NaN.
func yearOverYearPct(years []int, values []float64) float64 {
	byYear := make(map[int][]float64)
	for i, y := range years {
		byYear[y] = append(byYear[y], values[i])
	}

	keys := make([]int, 0, len(byYear))
	for y := range byYear {
		keys = append(keys, y)
	}
	slices.Sort(keys)

	yearly := make([]float64, len(keys))
	for i, y := range keys {
		yearly[i] = nanMean(byYear[y])
	}

	return nanMean(pctChange(yearly)) * 100
}

func pctChange(series []float64) []float64 {
	if len(series) < 2 {
		return nil
	}
	out := make([]float64, len(series)-1)
	for i := 1; i < len(series); i++ {
		out[i-1] = (series[i] - series[i-1]) / series[i-1]
	}
	return out
}

func nanMean(values []float64) float64 {
	kept := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			kept = append(kept, v)
		}
	}
	if len(kept) == 0 {
		return math.NaN()
	}
	return stat.Mean(kept, nil)
}
