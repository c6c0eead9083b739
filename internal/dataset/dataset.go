// Package dataset validates uploaded sales tables and holds the resulting
// immutable record set.
package dataset

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"sales-dashboard/internal/models"
)

// Required header names, in the order they are reported when missing.
const (
	ColumnYear    = "Año"
	ColumnMonth   = "Mes"
	ColumnProduct = "Producto"
	ColumnUnits   = "Unidades_vendidas"
	ColumnRevenue = "Ingreso_total"
	ColumnCost    = "Costo_total"
	ColumnBranch  = "Sucursal"
)

var RequiredColumns = []string{
	ColumnYear,
	ColumnMonth,
	ColumnProduct,
	ColumnUnits,
	ColumnRevenue,
	ColumnCost,
	ColumnBranch,
}

var (
	ErrNoRows            = errors.New("dataset has no data rows")
	ErrEmptyFile         = errors.New("file is empty")
	ErrUnsupportedFormat = errors.New("unsupported file format, expected .csv or .xlsx")
)

// SchemaError reports required columns absent from the header. A dataset
// with a SchemaError is never partially processed.
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("missing required columns: %s", strings.Join(e.Missing, ", "))
}

// RowError reports a cell that could not be parsed. Line is 1-based and
// counts the header.
type RowError struct {
	Line   int
	Column string
	Value  string
	Reason string
}

func (e *RowError) Error() string {
	return fmt.Sprintf("line %d, column %s: %s (value %q)", e.Line, e.Column, e.Reason, e.Value)
}

type Dataset struct {
	Source   string
	Records  []models.SalesRecord
	Branches []string
	Products []string
	LoadedAt time.Time
}

func newDataset(source string, records []models.SalesRecord) *Dataset {
	return &Dataset{
		Source:   source,
		Records:  records,
		Branches: uniqueOrdered(records, func(r models.SalesRecord) string { return r.Branch }),
		Products: uniqueOrdered(records, func(r models.SalesRecord) string { return r.Product }),
		LoadedAt: time.Now(),
	}
}

func (d *Dataset) HasBranch(branch string) bool {
	for _, b := range d.Branches {
		if b == branch {
			return true
		}
	}
	return false
}

// ForBranch returns the records of one branch, or every record when branch
// is empty.
func (d *Dataset) ForBranch(branch string) []models.SalesRecord {
	if branch == "" {
		return d.Records
	}
	out := make([]models.SalesRecord, 0, len(d.Records))
	for _, r := range d.Records {
		if r.Branch == branch {
			out = append(out, r)
		}
	}
	return out
}

// ProductsOf lists the products present in records in first-appearance order.
func ProductsOf(records []models.SalesRecord) []string {
	return uniqueOrdered(records, func(r models.SalesRecord) string { return r.Product })
}

// ForProduct returns the subset of records for product.
func ForProduct(records []models.SalesRecord, product string) []models.SalesRecord {
	out := make([]models.SalesRecord, 0)
	for _, r := range records {
		if r.Product == product {
			out = append(out, r)
		}
	}
	return out
}

func uniqueOrdered(records []models.SalesRecord, key func(models.SalesRecord) string) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, r := range records {
		k := key(r)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}
