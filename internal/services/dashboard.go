package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"sales-dashboard/internal/dataset"
	"sales-dashboard/internal/models"
	"sales-dashboard/internal/observability"
)

// AllBranches selects every branch.
const AllBranches = ""

const defaultWorkers = 4

var (
	ErrNoDataset      = errors.New("no dataset loaded")
	ErrUnknownBranch  = errors.New("unknown branch")
	ErrUnknownProduct = errors.New("unknown product")
)

// Dashboard turns a validated dataset into per-product reports. It holds no
// dataset itself; callers pass the session's dataset on every call.
type Dashboard struct {
	logger  *slog.Logger
	metrics *observability.Metrics
	tracer  trace.Tracer
	workers int
}

func NewDashboard(logger *slog.Logger, metrics *observability.Metrics, workers int) *Dashboard {
	if workers < 1 {
		workers = defaultWorkers
	}
	return &Dashboard{
		logger:  logger,
		metrics: metrics,
		tracer:  otel.Tracer("sales-dashboard/services"),
		workers: workers,
	}
}

// Build computes the report of every product sold in branch.
func (d *Dashboard) Build(ctx context.Context, ds *dataset.Dataset, branch string) (models.Dashboard, error) {
	ctx, span := d.tracer.Start(ctx, "dashboard.build",
		trace.WithAttributes(attribute.String("branch", branch)))
	defer span.End()

	start := time.Now()

	records, err := d.branchRecords(ds, branch)
	if err != nil {
		span.RecordError(err)
		return models.Dashboard{}, err
	}

	products := dataset.ProductsOf(records)
	reports := make([]models.ProductReport, len(products))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.workers)

	for i, product := range products {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			reports[i] = d.report(product, dataset.ForProduct(records, product))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		span.RecordError(err)
		return models.Dashboard{}, fmt.Errorf("build dashboard: %w", err)
	}

	for _, r := range reports {
		d.metrics.ObserveTrend(string(r.Trend.Kind))
	}
	duration := time.Since(start)
	d.metrics.ObserveBuild(duration)

	span.SetAttributes(
		attribute.Int("products", len(products)),
		attribute.Int("records", len(records)),
	)

	d.logger.Debug("dashboard built",
		"branch", branch,
		"products", len(products),
		"records", len(records),
		"duration", duration,
	)

	return models.Dashboard{
		Branch:      branch,
		Branches:    ds.Branches,
		Reports:     reports,
		RecordCount: len(records),
	}, nil
}

func (d *Dashboard) Summary(ctx context.Context, ds *dataset.Dataset, branch, product string) (models.ProductSummary, error) {
	_, span := d.tracer.Start(ctx, "dashboard.summary",
		trace.WithAttributes(attribute.String("branch", branch), attribute.String("product", product)))
	defer span.End()

	records, err := d.productRecords(ds, branch, product)
	if err != nil {
		span.RecordError(err)
		return models.ProductSummary{}, err
	}
	return Summarize(product, records), nil
}

func (d *Dashboard) Trend(ctx context.Context, ds *dataset.Dataset, branch, product string) (models.TrendResult, error) {
	_, span := d.tracer.Start(ctx, "dashboard.trend",
		trace.WithAttributes(attribute.String("branch", branch), attribute.String("product", product)))
	defer span.End()

	records, err := d.productRecords(ds, branch, product)
	if err != nil {
		span.RecordError(err)
		return models.TrendResult{}, err
	}

	result := FitTrend(product, records)
	d.metrics.ObserveTrend(string(result.Kind))
	return result, nil
}

// Stats describes a dataset for the admin endpoint.
func (d *Dashboard) Stats(ds *dataset.Dataset) map[string]any {
	if ds == nil {
		return map[string]any{"loaded": false}
	}
	return map[string]any{
		"loaded":    true,
		"source":    ds.Source,
		"records":   len(ds.Records),
		"branches":  len(ds.Branches),
		"products":  len(ds.Products),
		"loaded_at": ds.LoadedAt,
	}
}

func (d *Dashboard) report(product string, records []models.SalesRecord) models.ProductReport {
	report := models.ProductReport{
		Product:  product,
		Summary:  Summarize(product, records),
		Trend:    FitTrend(product, records),
		Warnings: divisionWarnings(records),
	}

	if report.Trend.Kind == models.TrendComputationError {
		d.logger.Warn("trend fit failed", "product", product, "error", report.Trend.Message)
	}
	if len(report.Warnings) > 0 {
		d.logger.Warn("non-finite metrics", "product", product, "warnings", report.Warnings)
	}
	return report
}

func (d *Dashboard) branchRecords(ds *dataset.Dataset, branch string) ([]models.SalesRecord, error) {
	if ds == nil {
		return nil, ErrNoDataset
	}
	if branch != AllBranches && !ds.HasBranch(branch) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownBranch, branch)
	}
	return ds.ForBranch(branch), nil
}

func (d *Dashboard) productRecords(ds *dataset.Dataset, branch, product string) ([]models.SalesRecord, error) {
	records, err := d.branchRecords(ds, branch)
	if err != nil {
		return nil, err
	}
	filtered := dataset.ForProduct(records, product)
	if len(filtered) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProduct, product)
	}
	return filtered, nil
}

// divisionWarnings flags rows whose zero denominators make price or margin
// non-finite.
func divisionWarnings(records []models.SalesRecord) []string {
	var zeroUnits, zeroRevenue int
	for _, r := range records {
		if r.UnitsSold == 0 {
			zeroUnits++
		}
		if r.RevenueTotal == 0 {
			zeroRevenue++
		}
	}

	var warnings []string
	if zeroUnits > 0 {
		warnings = append(warnings, fmt.Sprintf("%d row(s) with zero units sold, average price may be non-finite", zeroUnits))
	}
	if zeroRevenue > 0 {
		warnings = append(warnings, fmt.Sprintf("%d row(s) with zero revenue, average margin may be non-finite", zeroRevenue))
	}
	return warnings
}
