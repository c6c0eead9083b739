package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/xuri/excelize/v2"

	"sales-dashboard/internal/errors"
	"sales-dashboard/internal/models"
	"sales-dashboard/internal/observability"
	"sales-dashboard/internal/services"
	"sales-dashboard/internal/session"
)

const (
	kpiSheet   = "KPIs"
	trendSheet = "Trend"
	xlsxType   = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var kpiHeader = []any{
	"Product", "Rows", "Average price", "Price YoY %", "Average margin %",
	"Margin YoY %", "Units sold", "Average units", "Units YoY %",
}

var trendHeader = []any{"Product", "Month", "Units sold", "Trend"}

type ExportHandlers struct {
	dashboard *services.Dashboard
	logger    *slog.Logger
}

func NewExportHandlers(dashboard *services.Dashboard, logger *slog.Logger) *ExportHandlers {
	return &ExportHandlers{dashboard: dashboard, logger: logger}
}

// HandleWorkbook downloads the dashboard for ?branch= as an xlsx workbook.
func (h *ExportHandlers) HandleWorkbook(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	requestID := observability.GetRequestID(r.Context())

	view, err := h.dashboard.Build(r.Context(), sess.Dataset(), r.URL.Query().Get("branch"))
	if err != nil {
		errors.WriteError(w, h.logger, serviceError(err), requestID)
		return
	}

	book, err := Workbook(view)
	if err != nil {
		errors.WriteError(w, h.logger, errors.InternalWrap(err, "failed to build workbook"), requestID)
		return
	}
	defer book.Close()

	w.Header().Set("Content-Type", xlsxType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, exportName(view.Branch)))
	w.Header().Set("Cache-Control", "no-store")
	if err := book.Write(w); err != nil {
		h.logger.Error("write workbook", "error", err, "request_id", requestID)
	}
}

// Workbook lays the dashboard out as a KPI sheet and a monthly trend sheet.
// Non-finite values are left as empty cells.
func Workbook(view models.Dashboard) (*excelize.File, error) {
	book := excelize.NewFile()

	if err := book.SetSheetName("Sheet1", kpiSheet); err != nil {
		book.Close()
		return nil, err
	}
	if _, err := book.NewSheet(trendSheet); err != nil {
		book.Close()
		return nil, err
	}

	kpiRows := [][]any{kpiHeader}
	trendRows := [][]any{trendHeader}
	for _, r := range view.Reports {
		s := r.Summary
		kpiRows = append(kpiRows, []any{
			r.Product,
			s.Rows,
			cell(s.AveragePrice),
			cell(s.PriceYoYChangePct),
			cell(s.AverageMarginPct),
			cell(s.MarginYoYChangePct),
			cell(s.TotalUnits),
			cell(s.AverageUnits),
			cell(s.UnitsYoYChangePct),
		})
		for _, p := range r.Trend.Points {
			trendRows = append(trendRows, []any{
				r.Product,
				p.Date.Format("2006-01"),
				cell(p.Actual),
				cell(p.Fitted),
			})
		}
	}

	for sheet, rows := range map[string][][]any{kpiSheet: kpiRows, trendSheet: trendRows} {
		if err := writeRows(book, sheet, rows); err != nil {
			book.Close()
			return nil, err
		}
	}
	return book, nil
}

func writeRows(book *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		addr, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := book.SetSheetRow(sheet, addr, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

func cell(m models.Metric) any {
	if !m.Finite() {
		return nil
	}
	return m.Float()
}

func exportName(branch string) string {
	if branch == services.AllBranches {
		return "dashboard.xlsx"
	}
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, branch)
	return "dashboard-" + name + ".xlsx"
}
