package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"sales-dashboard/internal/models"
)

const utf8BOM = "\ufeff"

// Parse picks the reader from the file extension of name.
func Parse(name string, r io.Reader) (*Dataset, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		return ParseCSV(name, r)
	case ".xlsx":
		return ParseXLSX(name, r)
	default:
		return nil, fmt.Errorf("%s: %w", name, ErrUnsupportedFormat)
	}
}

// LoadFile parses a dataset from disk.
func LoadFile(path string) (*Dataset, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer file.Close()

	return Parse(filepath.Base(path), file)
}

func ParseCSV(name string, r io.Reader) (*Dataset, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyFile
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	index, err := indexHeader(header)
	if err != nil {
		return nil, err
	}

	var records []models.SalesRecord
	line := 1
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}

		record, err := parseRow(index, row, line)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	if len(records) == 0 {
		return nil, ErrNoRows
	}

	return newDataset(name, records), nil
}

// ParseXLSX reads the first worksheet; its first row is the header.
func ParseXLSX(name string, r io.Reader) (*Dataset, error) {
	book, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer book.Close()

	sheets := book.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptyFile
	}

	// Raw values: displayed text follows the cell's number format ("1,500.00").
	rows, err := book.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, ErrEmptyFile
	}

	index, err := indexHeader(rows[0])
	if err != nil {
		return nil, err
	}

	records := make([]models.SalesRecord, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if len(row) == 0 {
			continue
		}
		record, err := parseRow(index, row, i+2)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	if len(records) == 0 {
		return nil, ErrNoRows
	}

	return newDataset(name, records), nil
}

func indexHeader(header []string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	for i, col := range header {
		if i == 0 {
			col = strings.TrimPrefix(col, utf8BOM)
		}
		if _, dup := index[col]; !dup {
			index[col] = i
		}
	}

	var missing []string
	for _, col := range RequiredColumns {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, &SchemaError{Missing: missing}
	}

	return index, nil
}

func parseRow(index map[string]int, row []string, line int) (models.SalesRecord, error) {
	cell := func(col string) string {
		if i := index[col]; i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}

	year, err := parseInt(cell(ColumnYear), ColumnYear, line)
	if err != nil {
		return models.SalesRecord{}, err
	}

	month, err := parseInt(cell(ColumnMonth), ColumnMonth, line)
	if err != nil {
		return models.SalesRecord{}, err
	}
	if month < 1 || month > 12 {
		return models.SalesRecord{}, &RowError{Line: line, Column: ColumnMonth, Value: cell(ColumnMonth), Reason: "month must be between 1 and 12"}
	}

	branch, err := parseLabel(cell(ColumnBranch), ColumnBranch, line)
	if err != nil {
		return models.SalesRecord{}, err
	}
	product, err := parseLabel(cell(ColumnProduct), ColumnProduct, line)
	if err != nil {
		return models.SalesRecord{}, err
	}

	units, err := parseNumber(cell(ColumnUnits), ColumnUnits, line)
	if err != nil {
		return models.SalesRecord{}, err
	}
	revenue, err := parseNumber(cell(ColumnRevenue), ColumnRevenue, line)
	if err != nil {
		return models.SalesRecord{}, err
	}
	cost, err := parseNumber(cell(ColumnCost), ColumnCost, line)
	if err != nil {
		return models.SalesRecord{}, err
	}

	return models.SalesRecord{
		Year:         year,
		Month:        month,
		Branch:       branch,
		Product:      product,
		UnitsSold:    units,
		RevenueTotal: revenue,
		CostTotal:    cost,
		Date:         MonthStart(year, month),
	}, nil
}

// MonthStart is the derived date of a record: day 1 of year/month, UTC.
func MonthStart(year, month int) time.Time {
	return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
}

func parseInt(value, column string, line int) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, &RowError{Line: line, Column: column, Value: value, Reason: "expected an integer"}
	}
	return n, nil
}

// parseLabel rejects blank branch and product names; an empty branch would
// be indistinguishable from the all-branches selection.
func parseLabel(value, column string, line int) (string, error) {
	if value == "" {
		return "", &RowError{Line: line, Column: column, Value: value, Reason: "must not be blank"}
	}
	return value, nil
}

func parseNumber(value, column string, line int) (float64, error) {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, &RowError{Line: line, Column: column, Value: value, Reason: "expected a number"}
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, &RowError{Line: line, Column: column, Value: value, Reason: "expected a finite number"}
	}
	return f, nil
}
