package services

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"sales-dashboard/internal/dataset"
	"sales-dashboard/internal/models"
)

func rec(year, month int, product, branch string, units, revenue, cost float64) models.SalesRecord {
	return models.SalesRecord{
		Year:         year,
		Month:        month,
		Product:      product,
		Branch:       branch,
		UnitsSold:    units,
		RevenueTotal: revenue,
		CostTotal:    cost,
		Date:         dataset.MonthStart(year, month),
	}
}

func TestSummarize_WidgetExample(t *testing.T) {
	records := []models.SalesRecord{
		rec(2023, 1, "Widget", "Centro", 10, 100, 80),
		rec(2023, 2, "Widget", "Centro", 20, 220, 160),
	}

	s := Summarize("Widget", records)

	assert.Equal(t, "Widget", s.Product)
	assert.Equal(t, 2, s.Rows)
	assert.InDelta(t, 10.5, s.AveragePrice.Float(), 1e-9)
	assert.InDelta(t, (20.0+600.0/22.0)/2, s.AverageMarginPct.Float(), 1e-9)
	assert.InDelta(t, 23.636, s.AverageMarginPct.Float(), 1e-3)
	assert.Equal(t, 30.0, s.TotalUnits.Float())
	assert.InDelta(t, 15.0, s.AverageUnits.Float(), 1e-9)
}

func TestSummarize_SingleYearHasNoYoY(t *testing.T) {
	records := []models.SalesRecord{
		rec(2023, 1, "Widget", "Centro", 10, 100, 80),
		rec(2023, 5, "Widget", "Centro", 20, 220, 160),
		rec(2023, 9, "Widget", "Norte", 5, 60, 30),
	}

	s := Summarize("Widget", records)

	assert.False(t, s.PriceYoYChangePct.Finite())
	assert.False(t, s.MarginYoYChangePct.Finite())
	assert.False(t, s.UnitsYoYChangePct.Finite())
	assert.True(t, s.AveragePrice.Finite())
}

func TestSummarize_YearOverYear(t *testing.T) {
	records := []models.SalesRecord{
		// 2022: price 10, margin 20%, units mean 10
		rec(2022, 1, "Widget", "Centro", 10, 100, 80),
		// 2023: prices 12 and 12, margin 50%, units mean 15
		rec(2023, 1, "Widget", "Centro", 10, 120, 60),
		rec(2023, 2, "Widget", "Centro", 20, 240, 120),
		// 2024: price 15, margin 50%, units mean 30
		rec(2024, 3, "Widget", "Centro", 30, 450, 225),
	}

	s := Summarize("Widget", records)

	// price: +20%, +25% -> 22.5
	assert.InDelta(t, 22.5, s.PriceYoYChangePct.Float(), 1e-9)
	// margin: +150%, 0% -> 75
	assert.InDelta(t, 75.0, s.MarginYoYChangePct.Float(), 1e-9)
	// units: +50%, +100% -> 75
	assert.InDelta(t, 75.0, s.UnitsYoYChangePct.Float(), 1e-9)
	assert.Equal(t, 70.0, s.TotalUnits.Float())
}

func TestSummarize_YearsOrderedRegardlessOfInput(t *testing.T) {
	forward := []models.SalesRecord{
		rec(2022, 1, "W", "B", 10, 100, 50),
		rec(2023, 1, "W", "B", 20, 200, 100),
	}
	backward := []models.SalesRecord{forward[1], forward[0]}

	assert.InDelta(t, 100.0, Summarize("W", forward).UnitsYoYChangePct.Float(), 1e-9)
	assert.InDelta(t, 100.0, Summarize("W", backward).UnitsYoYChangePct.Float(), 1e-9)
}

func TestSummarize_ZeroDenominatorsPropagate(t *testing.T) {
	t.Run("zero units with revenue", func(t *testing.T) {
		s := Summarize("W", []models.SalesRecord{
			rec(2023, 1, "W", "B", 0, 100, 50),
			rec(2023, 2, "W", "B", 10, 100, 50),
		})
		assert.True(t, math.IsInf(s.AveragePrice.Float(), 1))
		assert.Equal(t, 10.0, s.TotalUnits.Float())
	})

	t.Run("zero units and zero revenue is skipped", func(t *testing.T) {
		s := Summarize("W", []models.SalesRecord{
			rec(2023, 1, "W", "B", 0, 0, 0),
			rec(2023, 2, "W", "B", 10, 100, 50),
		})
		assert.InDelta(t, 10.0, s.AveragePrice.Float(), 1e-9)
		assert.InDelta(t, 50.0, s.AverageMarginPct.Float(), 1e-9)
	})

	t.Run("zero revenue with cost", func(t *testing.T) {
		s := Summarize("W", []models.SalesRecord{
			rec(2023, 1, "W", "B", 5, 0, 10),
		})
		assert.True(t, math.IsInf(s.AverageMarginPct.Float(), -1))
	})
}

func TestSummarize_TotalUnitsIsSum(t *testing.T) {
	records := []models.SalesRecord{
		rec(2021, 1, "W", "A", 1.5, 10, 5),
		rec(2022, 7, "W", "B", 2.5, 10, 5),
		rec(2023, 3, "W", "A", 100, 10, 5),
		rec(2023, 3, "W", "C", 0, 0, 0),
	}

	var want float64
	for _, r := range records {
		want += r.UnitsSold
	}
	assert.Equal(t, want, Summarize("W", records).TotalUnits.Float())
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize("W", nil)

	assert.Equal(t, 0, s.Rows)
	assert.Equal(t, 0.0, s.TotalUnits.Float())
	assert.False(t, s.AveragePrice.Finite())
	assert.False(t, s.UnitsYoYChangePct.Finite())
}

func TestPctChange(t *testing.T) {
	assert.Nil(t, pctChange([]float64{5}))
	assert.Equal(t, []float64{1, -0.5}, pctChange([]float64{2, 4, 2}))
	assert.True(t, math.IsInf(pctChange([]float64{0, 3})[0], 1))
}

func TestNanMean(t *testing.T) {
	assert.True(t, math.IsNaN(nanMean(nil)))
	assert.True(t, math.IsNaN(nanMean([]float64{math.NaN()})))
	assert.Equal(t, 2.0, nanMean([]float64{1, math.NaN(), 3}))
	assert.True(t, math.IsInf(nanMean([]float64{1, math.Inf(1)}), 1))
}
