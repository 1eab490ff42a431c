// Package chart renders small text charts for record series.
package chart

import (
	"strconv"

	"github.com/verte-zerg/agromind/internal/model"
)

// Kind identifies a chart type.
type Kind string

const (
	KindBar  Kind = "bar"
	KindLine Kind = "line"
)

// Chart is a renderable series.
type Chart interface {
	Kind() Kind
	Title() string
	// Len reports the number of bars or points.
	Len() int
	// Render draws the chart into at most width columns and height rows plus the axis line.
	Render(width, height int) string
}

// XY is one plotted sample. X is the day of month.
type XY struct {
	X int
	Y float64
}

// DayOfMonth reads the day from a YYYY-MM-DD... timestamp by fixed position.
// Anything shorter or non-numeric there yields 0.
func DayOfMonth(ts string) int {
	if len(ts) < 10 {
		return 0
	}
	day, err := strconv.Atoi(ts[8:10])
	if err != nil {
		return 0
	}
	return day
}

// FromPoints maps record points to samples, keeping order.
func FromPoints(points []model.Point) []XY {
	out := make([]XY, 0, len(points))
	for _, p := range points {
		out = append(out, XY{X: DayOfMonth(p.Time), Y: p.Value})
	}
	return out
}

// Titles used for record series.
const (
	IrrigationTitle  = "Irrigation"
	TemperatureTitle = "Temperature"
)

// ForRecord returns the charts a record carries: a bar chart for irrigation and a
// line chart for temperature, each omitted when its series is absent or empty.
func ForRecord(r model.ListRecord) []Chart {
	if r.Data == nil {
		return nil
	}
	var charts []Chart
	if len(r.Data.Irrigation) > 0 {
		charts = append(charts, NewBar(IrrigationTitle, FromPoints(r.Data.Irrigation)))
	}
	if len(r.Data.Temperature) > 0 {
		charts = append(charts, NewLine(TemperatureTitle, FromPoints(r.Data.Temperature)))
	}
	return charts
}
