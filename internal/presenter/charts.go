package presenter

import (
	"fmt"
	"strconv"
	"strings"

	"shieldboard/internal/domain"
)

// Bar is one horizontal bar scaled against the largest count in its series.
type Bar struct {
	Label   string  `json:"label"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
	Value   string  `json:"value"`
	Width   float64 `json:"width"`
}

// WidthCSS renders Width as a CSS percentage.
func (b Bar) WidthCSS() string {
	return cssPercent(b.Width)
}

// Column is one bar of the signups-over-time chart.
type Column struct {
	Month  string  `json:"month"`
	Label  string  `json:"label"`
	Count  int     `json:"count"`
	Height float64 `json:"height"`
}

func (c Column) HeightCSS() string {
	return cssPercent(c.Height)
}

// DonutSlice is one plan segment; Start and End are cumulative percentages of
// the summed counts.
type DonutSlice struct {
	Label   string  `json:"label"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
	Color   string  `json:"color"`
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Legend  string  `json:"legend"`
}

type Donut struct {
	Total  int          `json:"total"`
	Slices []DonutSlice `json:"slices"`
}

var donutColors = []string{"#0d2818", "#2d7a4f", "#e8610a"}

// ScaleDenominator is the largest count in the series, or 1 when the series
// is empty or all zero.
func ScaleDenominator(counts []int) int {
	denom := 1
	for _, c := range counts {
		if c > denom {
			denom = c
		}
	}
	return denom
}

// ScaleWidths maps each count to a 0..100 share of the series maximum.
func ScaleWidths(counts []int) []float64 {
	denom := float64(ScaleDenominator(counts))
	out := make([]float64, len(counts))
	for i, c := range counts {
		out[i] = float64(c) / denom * 100
	}
	return out
}

func ProviderBars(shares []domain.ProviderShare) []Bar {
	counts := make([]int, len(shares))
	for i, s := range shares {
		counts[i] = s.Count
	}
	widths := ScaleWidths(counts)

	bars := make([]Bar, len(shares))
	for i, s := range shares {
		bars[i] = Bar{
			Label:   s.Provider,
			Count:   s.Count,
			Percent: s.Percent,
			Value:   fmt.Sprintf("%d (%s)", s.Count, FormatPercent(s.Percent)),
			Width:   widths[i],
		}
	}
	return bars
}

func TrialBars(shares []domain.TrialShare) []Bar {
	counts := make([]int, len(shares))
	for i, s := range shares {
		counts[i] = s.Count
	}
	widths := ScaleWidths(counts)

	bars := make([]Bar, len(shares))
	for i, s := range shares {
		bars[i] = Bar{
			Label:   s.Label,
			Count:   s.Count,
			Percent: s.Percent,
			Value:   fmt.Sprintf("%d (%s)", s.Count, FormatPercent(s.Percent)),
			Width:   widths[i],
		}
	}
	return bars
}

// MonthLabels formats each month of the series with a short month name, and
// adds the year once the series covers more than one calendar year.
func MonthLabels(series []domain.MonthlyCount) []string {
	years := make(map[int]struct{})
	for _, r := range series {
		if t, ok := parseTimestamp(r.Month); ok {
			years[t.Year()] = struct{}{}
		}
	}
	withYear := len(years) > 1

	labels := make([]string, len(series))
	for i, r := range series {
		labels[i] = FormatMonth(r.Month, withYear)
	}
	return labels
}

// SignupColumns builds the signups chart in chronological order.
func SignupColumns(series []domain.MonthlyCount) []Column {
	counts := make([]int, len(series))
	for i, r := range series {
		counts[i] = r.Count
	}
	heights := ScaleWidths(counts)
	labels := MonthLabels(series)

	cols := make([]Column, len(series))
	for i, r := range series {
		cols[i] = Column{
			Month:  r.Month,
			Label:  labels[i],
			Count:  r.Count,
			Height: heights[i],
		}
	}
	return cols
}

// PlanDonut builds the plan distribution donut. Segment sizes follow counts;
// the legend shows the backend percentages.
func PlanDonut(dist []domain.PlanShare, total int) Donut {
	sum := 0
	for _, d := range dist {
		sum += d.Count
	}

	slices := make([]DonutSlice, len(dist))
	cursor := 0.0
	for i, d := range dist {
		share := 0.0
		if sum > 0 {
			share = float64(d.Count) / float64(sum) * 100
		}
		label := Capitalize(d.Plan)
		slices[i] = DonutSlice{
			Label:   label,
			Count:   d.Count,
			Percent: d.Percent,
			Color:   donutColors[i%len(donutColors)],
			Start:   cursor,
			End:     cursor + share,
			Legend:  fmt.Sprintf("%s: %d (%s)", label, d.Count, FormatPercent(d.Percent)),
		}
		cursor += share
	}

	return Donut{Total: total, Slices: slices}
}

// Gradient renders the donut as a CSS conic-gradient.
func (d Donut) Gradient() string {
	if len(d.Slices) == 0 {
		return "conic-gradient(#e5e7eb 0% 100%)"
	}
	stops := make([]string, len(d.Slices))
	for i, s := range d.Slices {
		stops[i] = fmt.Sprintf("%s %s %s", s.Color, cssPercent(s.Start), cssPercent(s.End))
	}
	return "conic-gradient(" + strings.Join(stops, ", ") + ")"
}

func cssPercent(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "%"
}
