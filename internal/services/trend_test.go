package services

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sales-dashboard/internal/models"
)

func TestFitTrend_NoData(t *testing.T) {
	result := FitTrend("Widget", nil)

	assert.Equal(t, models.TrendNoData, result.Kind)
	assert.False(t, result.OK())
	assert.Contains(t, result.Message, "no data for product Widget")
	assert.Empty(t, result.Points)
	assert.False(t, result.Slope.Finite())
}

func TestFitTrend_SingleMonth(t *testing.T) {
	records := []models.SalesRecord{
		rec(2023, 4, "Widget", "Centro", 10, 100, 80),
		rec(2023, 4, "Widget", "Norte", 7, 70, 50),
	}

	result := FitTrend("Widget", records)

	assert.Equal(t, models.TrendInsufficientData, result.Kind)
	assert.Contains(t, result.Message, "insufficient data to fit a trend for product Widget")
	assert.Empty(t, result.Points)
}

func TestFitTrend_TwoPointsPassesThroughBoth(t *testing.T) {
	records := []models.SalesRecord{
		rec(2023, 2, "Widget", "Centro", 20, 220, 160),
		rec(2023, 1, "Widget", "Centro", 10, 100, 80),
	}

	result := FitTrend("Widget", records)

	require.Equal(t, models.TrendOK, result.Kind)
	require.Len(t, result.Points, 2)
	assert.InDelta(t, 10.0, result.Slope.Float(), 1e-9)
	assert.InDelta(t, 10.0, result.Intercept.Float(), 1e-9)

	for _, p := range result.Points {
		assert.InDelta(t, p.Actual.Float(), p.Fitted.Float(), 1e-9)
	}
	assert.True(t, result.Points[0].Date.Before(result.Points[1].Date))
}

func TestFitTrend_AggregatesByMonthInOrder(t *testing.T) {
	records := []models.SalesRecord{
		rec(2024, 1, "W", "A", 4, 1, 1),
		rec(2023, 12, "W", "A", 2, 1, 1),
		rec(2023, 11, "W", "A", 1, 1, 1),
		rec(2023, 12, "W", "B", 3, 1, 1),
	}

	result := FitTrend("W", records)
	require.True(t, result.OK())

	got := make([]float64, len(result.Points))
	for i, p := range result.Points {
		got[i] = p.Actual.Float()
	}
	assert.Equal(t, []float64{1, 5, 4}, got)
	assert.Equal(t, time.Date(2023, 11, 1, 0, 0, 0, 0, time.UTC), result.Points[0].Date)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), result.Points[2].Date)

	// y = 1, 5, 4 on x = 0, 1, 2: slope 1.5, intercept 1.833...
	assert.InDelta(t, 1.5, result.Slope.Float(), 1e-9)
	assert.InDelta(t, 11.0/6.0, result.Intercept.Float(), 1e-9)
	assert.InDelta(t, 11.0/6.0+3, result.Points[2].Fitted.Float(), 1e-9)
}

func TestFitTrend_ComputationErrorIsContained(t *testing.T) {
	records := []models.SalesRecord{
		rec(2023, 1, "W", "A", 1e308, 1, 1),
		rec(2023, 1, "W", "B", 1e308, 1, 1),
		rec(2023, 2, "W", "A", 1, 1, 1),
	}

	var result models.TrendResult
	assert.NotPanics(t, func() {
		result = FitTrend("W", records)
	})

	assert.Equal(t, models.TrendComputationError, result.Kind)
	assert.Contains(t, result.Message, "trend fit for W failed")
	assert.Empty(t, result.Points)
}

func TestFitLine_RecoversPanics(t *testing.T) {
	_, _, err := fitLine(nil)
	assert.Error(t, err)

	cerr := &ComputationError{Product: "W", Err: errors.New("boom")}
	assert.ErrorContains(t, cerr, "boom")
	assert.Equal(t, "boom", errors.Unwrap(cerr).Error())
}
