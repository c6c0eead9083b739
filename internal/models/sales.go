package models

import (
	"encoding/json"
	"math"
	"time"
)

// SalesRecord is one validated row of the uploaded sales table.
type SalesRecord struct {
	Year         int       `json:"year"`
	Month        int       `json:"month"`
	Branch       string    `json:"branch"`
	Product      string    `json:"product"`
	UnitsSold    float64   `json:"units_sold"`
	RevenueTotal float64   `json:"revenue_total"`
	CostTotal    float64   `json:"cost_total"`
	Date         time.Time `json:"date"`
}

// Metric is a KPI value that may legitimately be NaN or ±Inf. It encodes
// non-finite values as JSON null.
type Metric float64

func (m Metric) Float() float64 {
	return float64(m)
}

func (m Metric) Finite() bool {
	f := float64(m)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func (m Metric) MarshalJSON() ([]byte, error) {
	if !m.Finite() {
		return []byte("null"), nil
	}
	return json.Marshal(float64(m))
}

func (m *Metric) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*m = Metric(math.NaN())
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*m = Metric(f)
	return nil
}

type ProductSummary struct {
	Product            string  `json:"product"`
	Rows               int     `json:"rows"`
	AveragePrice       Metric  `json:"average_price"`
	PriceYoYChangePct  Metric  `json:"price_yoy_change_pct"`
	AverageMarginPct   Metric  `json:"average_margin_pct"`
	MarginYoYChangePct Metric  `json:"margin_yoy_change_pct"`
	TotalUnits         Metric  `json:"total_units"`
	AverageUnits       Metric  `json:"average_units"`
	UnitsYoYChangePct  Metric  `json:"units_yoy_change_pct"`
}

type TrendKind string

const (
	TrendOK               TrendKind = "ok"
	TrendNoData           TrendKind = "no_data"
	TrendInsufficientData TrendKind = "insufficient_data"
	TrendComputationError TrendKind = "computation_error"
)

type TrendPoint struct {
	Date   time.Time `json:"date"`
	Actual Metric    `json:"actual"`
	Fitted Metric    `json:"fitted"`
}

// TrendResult is either a fitted monthly series (Kind == TrendOK) or a
// placeholder carrying Message.
type TrendResult struct {
	Product   string       `json:"product"`
	Kind      TrendKind    `json:"kind"`
	Message   string       `json:"message,omitempty"`
	Points    []TrendPoint `json:"points,omitempty"`
	Slope     Metric       `json:"slope"`
	Intercept Metric       `json:"intercept"`
}

func (t TrendResult) OK() bool {
	return t.Kind == TrendOK
}

type ProductReport struct {
	Product  string         `json:"product"`
	Summary  ProductSummary `json:"summary"`
	Trend    TrendResult    `json:"trend"`
	Warnings []string       `json:"warnings,omitempty"`
}

type Dashboard struct {
	Branch      string          `json:"branch"`
	Branches    []string        `json:"branches"`
	Reports     []ProductReport `json:"reports"`
	RecordCount int             `json:"record_count"`
}
