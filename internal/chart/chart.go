// Package chart draws the per-product monthly sales chart as inline SVG:
// the actual series with markers and the fitted trend as a dashed line.
package chart

import (
	"fmt"
	"html"
	"math"
	"strings"

	"sales-dashboard/internal/models"
)

const (
	width     = 720.0
	height    = 300.0
	padLeft   = 64.0
	padRight  = 16.0
	padTop    = 52.0
	padBottom = 72.0
	yTicks    = 4
	maxLabels = 12

	actualColor = "#1f6feb"
	trendColor  = "#d1242f"
)

// SVG renders result. Placeholder results render as a box carrying their
// message so a failed product never breaks the page.
func SVG(result models.TrendResult) string {
	if !result.OK() || len(result.Points) < 2 {
		message := result.Message
		if message == "" {
			message = fmt.Sprintf("no chart for product %s", result.Product)
		}
		return Placeholder(result.Kind, message)
	}
	return lineChart(result)
}

func Placeholder(kind models.TrendKind, message string) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<svg class="chart chart-placeholder chart-%s" viewBox="0 0 %.0f %.0f" role="img" xmlns="http://www.w3.org/2000/svg">`,
		html.EscapeString(string(kind)), width, height)
	fmt.Fprintf(&b, `<text x="%.0f" y="%.0f" text-anchor="middle" dominant-baseline="middle" fill="#57606a">%s</text>`,
		width/2, height/2, html.EscapeString(message))
	b.WriteString(`</svg>`)
	return b.String()
}

func lineChart(result models.TrendResult) string {
	points := result.Points
	lo, hi := bounds(points)

	x := func(i int) float64 {
		return padLeft + float64(i)*(width-padLeft-padRight)/float64(len(points)-1)
	}
	y := func(v float64) float64 {
		return height - padBottom - (v-lo)*(height-padTop-padBottom)/(hi-lo)
	}

	var b strings.Builder
	fmt.Fprintf(&b, `<svg class="chart" viewBox="0 0 %.0f %.0f" role="img" xmlns="http://www.w3.org/2000/svg">`, width, height)
	fmt.Fprintf(&b, `<title>Monthly sales of %s</title>`, html.EscapeString(result.Product))
	fmt.Fprintf(&b, `<text class="chart-title" x="%.0f" y="18" text-anchor="middle" font-size="14" font-weight="600">Sales trend for %s</text>`,
		width/2, html.EscapeString(result.Product))
	axisCaptions(&b)

	for i := 0; i <= yTicks; i++ {
		v := lo + float64(i)*(hi-lo)/yTicks
		fmt.Fprintf(&b, `<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="#d0d7de" stroke-opacity="0.6"/>`,
			padLeft, y(v), width-padRight, y(v))
		fmt.Fprintf(&b, `<text x="%.1f" y="%.1f" text-anchor="end" font-size="11" fill="#57606a">%s</text>`,
			padLeft-6, y(v)+4, axisLabel(v))
	}

	step := int(math.Ceil(float64(len(points)) / maxLabels))
	for i, p := range points {
		if i%step != 0 {
			continue
		}
		fmt.Fprintf(&b, `<text x="%.1f" y="%.1f" text-anchor="end" font-size="11" fill="#57606a" transform="rotate(-45 %.1f %.1f)">%s</text>`,
			x(i), height-padBottom+16, x(i), height-padBottom+16, p.Date.Format("2006-01"))
	}

	actual := make([]string, len(points))
	fitted := make([]string, len(points))
	for i, p := range points {
		actual[i] = fmt.Sprintf("%.1f,%.1f", x(i), y(p.Actual.Float()))
		fitted[i] = fmt.Sprintf("%.1f,%.1f", x(i), y(p.Fitted.Float()))
	}

	fmt.Fprintf(&b, `<polyline class="series-actual" points="%s" fill="none" stroke="%s" stroke-width="1.5"/>`,
		strings.Join(actual, " "), actualColor)
	for i, p := range points {
		fmt.Fprintf(&b, `<circle cx="%.1f" cy="%.1f" r="3" fill="%s"><title>%s: %g</title></circle>`,
			x(i), y(p.Actual.Float()), actualColor, p.Date.Format("2006-01"), p.Actual.Float())
	}
	fmt.Fprintf(&b, `<polyline class="series-trend" points="%s" fill="none" stroke="%s" stroke-width="1.5" stroke-dasharray="6 4"/>`,
		strings.Join(fitted, " "), trendColor)

	legend(&b, result.Product)
	b.WriteString(`</svg>`)
	return b.String()
}

func legend(b *strings.Builder, product string) {
	fmt.Fprintf(b, `<line x1="%.0f" y1="34" x2="%.0f" y2="34" stroke="%s" stroke-width="1.5"/>`, padLeft, padLeft+20, actualColor)
	fmt.Fprintf(b, `<text x="%.0f" y="38" font-size="12">%s</text>`, padLeft+26, html.EscapeString(product))
	fmt.Fprintf(b, `<line x1="%.0f" y1="34" x2="%.0f" y2="34" stroke="%s" stroke-width="1.5" stroke-dasharray="6 4"/>`, padLeft+180, padLeft+200, trendColor)
	fmt.Fprintf(b, `<text x="%.0f" y="38" font-size="12">Trend</text>`, padLeft+206)
}

const (
	xCaption = "Year-Month"
	yCaption = "Units sold"
)

func axisCaptions(b *strings.Builder) {
	midX := padLeft + (width-padLeft-padRight)/2
	midY := padTop + (height-padTop-padBottom)/2
	fmt.Fprintf(b, `<text class="axis-x" x="%.1f" y="%.0f" text-anchor="middle" font-size="12" fill="#57606a">%s</text>`,
		midX, height-6, xCaption)
	fmt.Fprintf(b, `<text class="axis-y" x="14" y="%.1f" text-anchor="middle" font-size="12" fill="#57606a" transform="rotate(-90 14 %.1f)">%s</text>`,
		midY, midY, yCaption)
}

// bounds spans both series and always includes zero.
func bounds(points []models.TrendPoint) (lo, hi float64) {
	lo, hi = 0, 0
	for _, p := range points {
		for _, v := range []float64{p.Actual.Float(), p.Fitted.Float()} {
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}
	if hi == lo {
		hi = lo + 1
	}
	return lo, hi
}

func axisLabel(v float64) string {
	switch {
	case math.Abs(v) >= 1e6:
		return fmt.Sprintf("%.1fM", v/1e6)
	case math.Abs(v) >= 1e4:
		return fmt.Sprintf("%.0fk", v/1e3)
	default:
		return fmt.Sprintf("%.0f", v)
	}
}
